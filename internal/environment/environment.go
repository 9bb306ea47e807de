package environment

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
)

const defaultPollInterval = time.Minute

type Environment struct {
	Agent
}

type Agent struct {
	Host         string `validate:"required,hostname|ip"`
	Password     string `validate:"required"`
	NatsURL      string
	PollInterval time.Duration
	HistoryPath  string
	LogfilePath  string
	LogLevel     string
	Oneshot      bool
}

func New() (e Environment, err error) {
	v := viper.New()
	v.SetEnvPrefix("CBOX")
	v.AutomaticEnv()

	e.Agent.Host = v.GetString("HOST")
	if lo.IsEmpty(e.Agent.Host) {
		e.Agent.Host = constants.DefaultHost
	}

	e.Agent.Password = v.GetString("PASSWORD")

	e.Agent.NatsURL = v.GetString("NATS_URL")
	if lo.IsEmpty(e.Agent.NatsURL) {
		e.Agent.NatsURL = nats.DefaultURL
	}

	e.Agent.PollInterval = v.GetDuration("POLL_INTERVAL")
	if e.Agent.PollInterval <= 0 {
		e.Agent.PollInterval = defaultPollInterval
	}

	e.Agent.HistoryPath = v.GetString("HISTORY_PATH")
	if lo.IsEmpty(e.Agent.HistoryPath) {
		e.Agent.HistoryPath = constants.DefaultHistoryPath
	}

	e.Agent.LogfilePath = v.GetString("LOG_FILE")
	if lo.IsEmpty(e.Agent.LogfilePath) {
		e.Agent.LogfilePath = constants.DefaultLogfilePath
	}

	e.Agent.LogLevel = v.GetString("LOG_LEVEL")
	if lo.IsEmpty(e.Agent.LogLevel) {
		e.Agent.LogLevel = "info"
	}

	e.Agent.Oneshot = v.GetBool("ONESHOT")

	if err = validator.New().Struct(e.Agent); err != nil {
		return e, fmt.Errorf("New: %w", err)
	}

	return e, nil
}

func (e Agent) IsDebug() bool {
	return e.LogLevel == "debug"
}
