package telemetry

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/connectbox-tools/connectbox-agent/internal/entities"
	"github.com/connectbox-tools/connectbox-agent/internal/errs"
)

type (
	ISessionService interface {
		EnsureAuthenticated() error
		RefreshToken() error
		Token() string
		Invalidate()
		Host() string
		Get(fun int) (string, error)
	}
)

// Service fetches telemetry snapshots from the box. Every fetch clears
// the stored copy of its kind first and replaces it wholesale on
// success; a decode failure leaves it cleared.
type Service struct {
	session ISessionService

	devices         []entities.Device
	dsChannels      []entities.DownstreamChannel
	usChannels      []entities.UpstreamChannel
	eventLog        []entities.LogEvent
	temperature     *entities.Temperature
	cmStatus        *entities.CmStatus
	downstreamFlows []entities.ServiceFlow
	upstreamFlows   []entities.ServiceFlow
	lanStatus       *entities.LanStatus
	wanStatus       *entities.WanStatus
	cmSystemInfo    *entities.CmSystemInfo
	globalSettings  *entities.GlobalSettings
}

func NewService(sessionService ISessionService) *Service {
	return &Service{
		session: sessionService,
	}
}

func (s *Service) Devices() []entities.Device { return s.devices }

func (s *Service) DownstreamChannels() []entities.DownstreamChannel { return s.dsChannels }

func (s *Service) UpstreamChannels() []entities.UpstreamChannel { return s.usChannels }

func (s *Service) EventLog() []entities.LogEvent { return s.eventLog }

func (s *Service) Temperature() *entities.Temperature { return s.temperature }

func (s *Service) CmStatus() *entities.CmStatus { return s.cmStatus }

func (s *Service) DownstreamServiceFlows() []entities.ServiceFlow { return s.downstreamFlows }

func (s *Service) UpstreamServiceFlows() []entities.ServiceFlow { return s.upstreamFlows }

func (s *Service) LanStatus() *entities.LanStatus { return s.lanStatus }

func (s *Service) WanStatus() *entities.WanStatus { return s.wanStatus }

func (s *Service) CmSystemInfo() *entities.CmSystemInfo { return s.cmSystemInfo }

func (s *Service) GlobalSettings() *entities.GlobalSettings { return s.globalSettings }

// noData is the shared failure path for malformed payloads: a body that
// does not decode usually means the session silently expired, so the
// token is dropped along with surfacing the error.
func (s *Service) noData(op string, err error) error {
	log.Warn().Err(err).Str("host", s.session.Host()).Msg(op + ": malformed response")
	s.session.Invalidate()

	return fmt.Errorf("%s: %w: %v", op, errs.ErrNoData, err)
}
