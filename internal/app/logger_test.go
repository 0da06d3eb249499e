package app

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tasks-admin/internal/config"
)

func TestResolveLogLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want zerolog.Level
	}{
		{"local", config.Config{Env: config.EnvLocal}, zerolog.TraceLevel},
		{"dev", config.Config{Env: config.EnvDev}, zerolog.DebugLevel},
		{"prod", config.Config{Env: config.EnvProd}, zerolog.InfoLevel},
		{
			"override",
			config.Config{Env: config.EnvProd, Log: config.LogConfig{Level: "warn"}},
			zerolog.WarnLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveLogLevel(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLogLevelErrors(t *testing.T) {
	_, err := resolveLogLevel(&config.Config{Env: "staging"})
	assert.ErrorIs(t, err, config.ErrUnknownEnv)

	_, err = resolveLogLevel(&config.Config{Env: config.EnvProd, Log: config.LogConfig{Level: "loud"}})
	assert.Error(t, err)
}

func TestNewLogWriter(t *testing.T) {
	var buf bytes.Buffer

	w := newLogWriter(&config.Config{Env: config.EnvProd}, &buf)
	assert.Same(t, &buf, w)

	w = newLogWriter(&config.Config{Env: config.EnvLocal}, &buf)
	assert.IsType(t, zerolog.ConsoleWriter{}, w)

	w = newLogWriter(&config.Config{
		Env: config.EnvLocal,
		Log: config.LogConfig{Format: config.LogFormatJSON},
	}, &buf)
	assert.Same(t, &buf, w)
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	globalLogger = zerolog.New(&buf)
	t.Cleanup(func() { globalLogger = zerolog.Nop() })

	logger := componentLogger("task_service")
	logger.Info().Msg("created task")

	assert.Contains(t, buf.String(), `"component":"task_service"`)
	assert.Contains(t, buf.String(), `"message":"created task"`)
}
