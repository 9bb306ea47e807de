package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/connectbox-tools/connectbox-agent/infrastructure"
	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/domains/report"
	"github.com/connectbox-tools/connectbox-agent/internal/environment"
)

var (
	env            environment.Environment
	serviceVersion = "0.0.1"
)

func init() {
	var err error
	if env, err = environment.New(); err != nil {
		log.Fatal().Err(err).Msg("error loading environment")
	}
}

func main() {
	if env.Agent.Oneshot {
		// tables go to stdout, logs stay on stderr
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logWriter, err := setupRollingLogFile(env.Agent.LogfilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("main")
		}
		log.Logger = log.Output(logWriter)
	}

	level, err := zerolog.ParseLevel(env.Agent.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("main")
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("agent version", serviceVersion).
		Str("host", env.Agent.Host).
		Str("log level", env.Agent.LogLevel).
		Msg("main: app started")

	cancelCtx, cancelFunc := signal.NotifyContext(context.Background(), os.Kill, os.Interrupt, syscall.SIGTERM)
	defer cancelFunc()

	kernel, err := infrastructure.Inject(env)
	if err != nil {
		log.Fatal().Err(err).Msg("main")
	}

	if env.Agent.Oneshot {
		if err = runOneshot(kernel); err != nil {
			log.Fatal().Err(err).Msg("main")
		}
		shutdownServices(kernel)
		return
	}

	log.Info().Msg("main: connecting to MQ broker...")
	if err = kernel.ConnectMQ(); err != nil {
		log.Fatal().Err(err).Msg("main")
	}
	log.Info().Msg("main: connected to MQ broker")

	log.Info().Msg("main: starting monitor service...")
	go kernel.InjectMonitorService().Start(cancelCtx)

	<-cancelCtx.Done()

	log.Info().Msg("main: stopping app...")
	shutdownServices(kernel)
	log.Info().Msg("main: app gracefully stopped")
}

// runOneshot fetches a single snapshot and prints it as tables.
func runOneshot(kernel *infrastructure.Kernel) error {
	telemetryService := kernel.InjectTelemetryService()

	devices, err := telemetryService.FetchDevices()
	if err != nil {
		return fmt.Errorf("runOneshot: %w", err)
	}

	downstream, err := telemetryService.FetchDownstream()
	if err != nil {
		return fmt.Errorf("runOneshot: %w", err)
	}

	upstream, err := telemetryService.FetchUpstream()
	if err != nil {
		return fmt.Errorf("runOneshot: %w", err)
	}

	temperature, err := telemetryService.FetchTemperature()
	if err != nil {
		return fmt.Errorf("runOneshot: %w", err)
	}

	fmt.Println(report.FormatDevices(devices))
	fmt.Println(report.FormatDownstream(downstream))
	fmt.Println(report.FormatUpstream(upstream))
	fmt.Printf("temperature: %.2f°C (tuner %.2f°C)\n", temperature.Temperature, temperature.TunerTemperature)

	return nil
}

func shutdownServices(kernel *infrastructure.Kernel) {
	if err := kernel.InjectSessionService().Logout(); err != nil {
		log.Error().Err(err).Msg("shutdownServices: device logout error")
	}

	if kernel.NC != nil {
		kernel.NC.Close()
	}

	if err := kernel.DB.Close(); err != nil {
		log.Error().Err(err).Msg("shutdownServices: close badger error")
	}
}

func setupRollingLogFile(filename string) (logWriter *lumberjack.Logger, err error) {
	// create log dir if not exists
	if err = os.MkdirAll(filepath.Dir(filename), constants.FilePerm); err != nil {
		return logWriter, fmt.Errorf("setupRollingLogFile: %w", err)
	}

	if _, statErr := os.Stat(filename); statErr != nil {
		if !os.IsNotExist(statErr) {
			return logWriter, fmt.Errorf("setupRollingLogFile: %w", statErr)
		}

		// create new log file
		logFile, err := os.OpenFile(filename, os.O_CREATE, constants.LogFilePerm)
		if err != nil {
			return logWriter, fmt.Errorf("setupRollingLogFile: %w", err)
		}
		defer logFile.Close()
	}

	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    15,
		MaxAge:     30,
		MaxBackups: 10,
		Compress:   true,
	}, nil
}
