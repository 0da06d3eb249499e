package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks-admin/internal/config"
)

const serviceName = "go-tasks-admin"

var globalLogger zerolog.Logger

// envLogLevels are the levels used when LOG_LEVEL is not set.
var envLogLevels = map[string]zerolog.Level{
	config.EnvLocal: zerolog.TraceLevel,
	config.EnvDev:   zerolog.DebugLevel,
	config.EnvProd:  zerolog.InfoLevel,
}

// InitDefaultLogger sets up a JSON logger for the time before
// the config is read.
func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	globalLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Int("pid", os.Getpid()).
		Logger()

	globalLogger.Info().Msg("initialized default logger")
}

func MustInitApplicationLogger() {
	cfg := config.Global()

	level, err := resolveLogLevel(cfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("env", cfg.Env).
			Str("log_level", cfg.Log.Level).
			Msg("failed to resolve log level")
		panic(err)
	}
	zerolog.SetGlobalLevel(level)

	globalLogger = globalLogger.Output(newLogWriter(cfg, os.Stdout))
	globalLogger.Info().
		Str("level", level.String()).
		Msg("initialized application logger")
}

func resolveLogLevel(cfg *config.Config) (zerolog.Level, error) {
	if cfg.Log.Level != "" {
		return zerolog.ParseLevel(cfg.Log.Level)
	}

	level, ok := envLogLevels[cfg.Env]
	if !ok {
		return zerolog.NoLevel, fmt.Errorf("%w: %s", config.ErrUnknownEnv, cfg.Env)
	}
	return level, nil
}

// newLogWriter wraps out in a console writer for the console format,
// which is also the default in the local env.
func newLogWriter(cfg *config.Config, out io.Writer) io.Writer {
	format := cfg.Log.Format
	if format == "" {
		format = config.LogFormatJSON
		if cfg.Env == config.EnvLocal {
			format = config.LogFormatConsole
		}
	}

	if format != config.LogFormatConsole {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.DateTime,
		NoColor:    out != os.Stdout,
	}
}

func componentLogger(component string) zerolog.Logger {
	return globalLogger.With().
		Str("component", component).
		Logger()
}
