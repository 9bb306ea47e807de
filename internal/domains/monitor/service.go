package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/entities"
)

type (
	ITelemetryService interface {
		FetchDevices() ([]entities.Device, error)
		FetchDownstream() ([]entities.DownstreamChannel, error)
		FetchUpstream() ([]entities.UpstreamChannel, error)
		FetchTemperature() (*entities.Temperature, error)
		FetchCmStatus() (*entities.CmStatus, error)
		FetchEventLog() ([]entities.LogEvent, error)
	}

	IHistoryService interface {
		LastEventEpoch() (epoch int64, ok bool, err error)
		SetLastEventEpoch(epoch int64) error
		SaveSnapshot(snapshot entities.TelemetrySnapshot) error
	}

	IMessagePublisher interface {
		Publish(subject string, payload any) error
	}
)

// Service polls the box on an interval and exports what it finds. The
// box serializes one session, so every fetch inside a tick runs
// strictly in sequence; a failed tick is skipped, not retried, the next
// tick re-authenticates on its own.
type Service struct {
	telemetryService ITelemetryService
	historyService   IHistoryService
	messagePublisher IMessagePublisher
	interval         time.Duration
}

func NewService(
	telemetryService ITelemetryService,
	historyService IHistoryService,
	messagePublisher IMessagePublisher,
	interval time.Duration,
) *Service {
	return &Service{
		telemetryService: telemetryService,
		historyService:   historyService,
		messagePublisher: messagePublisher,
		interval:         interval,
	}
}

func (s *Service) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Collect(); err != nil {
				log.Error().Err(err).Msg("Start: collect error, skipping tick")
			}
		}
	}
}

func (s *Service) Collect() error {
	snapshot := entities.TelemetrySnapshot{
		CollectedAt: time.Now().UTC(),
	}

	var err error
	if snapshot.Devices, err = s.telemetryService.FetchDevices(); err != nil {
		return err
	}
	if snapshot.Downstream, err = s.telemetryService.FetchDownstream(); err != nil {
		return err
	}
	if snapshot.Upstream, err = s.telemetryService.FetchUpstream(); err != nil {
		return err
	}
	if snapshot.Temperature, err = s.telemetryService.FetchTemperature(); err != nil {
		return err
	}
	if snapshot.CmStatus, err = s.telemetryService.FetchCmStatus(); err != nil {
		return err
	}

	if err = s.messagePublisher.Publish(constants.MQSubjectTelemetry, snapshot); err != nil {
		return err
	}

	if err = s.historyService.SaveSnapshot(snapshot); err != nil {
		return err
	}

	if err = s.exportNewEvents(); err != nil {
		return err
	}

	log.Debug().
		Int("devices", len(snapshot.Devices)).
		Int("downstream", len(snapshot.Downstream)).
		Int("upstream", len(snapshot.Upstream)).
		Msg("collect: snapshot exported")

	return nil
}

// exportNewEvents publishes only the log events newer than the stored
// high-water epoch, then advances it.
func (s *Service) exportNewEvents() error {
	events, err := s.telemetryService.FetchEventLog()
	if err != nil {
		return err
	}

	lastEpoch, ok, err := s.historyService.LastEventEpoch()
	if err != nil {
		return err
	}

	fresh := events
	if ok {
		// events arrive sorted by epoch ascending
		cut := len(events)
		for i, event := range events {
			if event.Epoch > lastEpoch {
				cut = i
				break
			}
		}
		fresh = events[cut:]
	}

	if len(fresh) == 0 {
		return nil
	}

	if err = s.messagePublisher.Publish(constants.MQSubjectEvents, fresh); err != nil {
		return err
	}

	return s.historyService.SetLastEventEpoch(fresh[len(fresh)-1].Epoch)
}
