package infrastructure

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/nats-io/nats.go"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/deviceaction"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/filter"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/history"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/monitor"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/mq"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/session"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/telemetry"
	"github.com/connectbox-tools/connectbox-agent/internal/environment"
)

type IInjector interface {
	InjectSessionService() *session.Service
	InjectTelemetryService() *telemetry.Service
	InjectFilterService() *filter.Service
	InjectDeviceActionService() *deviceaction.Service
	InjectHistoryService() *history.Service
	InjectMessagePublisher() *mq.Publisher
	InjectMonitorService() *monitor.Service
}

type Kernel struct {
	env environment.Environment

	DB *badger.DB
	NC *nats.Conn
}

func Inject(env environment.Environment) (k *Kernel, err error) {
	k = &Kernel{
		env: env,
	}

	options := badger.DefaultOptions(env.Agent.HistoryPath).
		WithLogger(nil).
		WithMemTableSize(64 << 17) // ~8MB

	if k.DB, err = badger.Open(options); err != nil {
		return k, fmt.Errorf("Inject: %w", err)
	}

	return k, nil
}

// ConnectMQ dials the broker; only the monitor mode needs it.
func (k *Kernel) ConnectMQ() (err error) {
	if k.NC, err = nats.Connect(k.env.Agent.NatsURL, nats.Name("connectbox-agent")); err != nil {
		return fmt.Errorf("ConnectMQ: %w", err)
	}

	return nil
}

func (k *Kernel) InjectTelemetryService() *telemetry.Service {
	return telemetry.NewService(
		k.InjectSessionService(),
	)
}

func (k *Kernel) InjectFilterService() *filter.Service {
	return filter.NewService(
		k.InjectSessionService(),
	)
}

func (k *Kernel) InjectDeviceActionService() *deviceaction.Service {
	return deviceaction.NewService(
		k.InjectSessionService(),
	)
}

func (k *Kernel) InjectHistoryService() *history.Service {
	return history.NewService(k.DB)
}

func (k *Kernel) InjectMessagePublisher() *mq.Publisher {
	return mq.NewPublisher(k.NC, constants.MQSubjectPrefix)
}

func (k *Kernel) InjectMonitorService() *monitor.Service {
	return monitor.NewService(
		k.InjectTelemetryService(),
		k.InjectHistoryService(),
		k.InjectMessagePublisher(),
		k.env.Agent.PollInterval,
	)
}
