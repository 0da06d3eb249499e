package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tasks-admin/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ENV", config.EnvLocal)
	t.Setenv("JWT_SIGNING_KEY", "key")
	t.Setenv("ADMIN_PASSWORD_HASH", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA")
}

func TestEnvReaderMemoryStorage(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", config.StorageDriverMemory)

	cfg, err := config.NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, config.StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "admin", cfg.Admin.Username)
}

func TestEnvReaderPostgresRequiresConnection(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", config.StorageDriverPostgres)

	_, err := config.NewEnvReader().Read()
	assert.ErrorIs(t, err, config.ErrMissingPostgres)

	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USERNAME", "postgres")
	t.Setenv("POSTGRES_DATABASE", "tasks")

	cfg, err := config.NewEnvReader().Read()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.True(t, cfg.Postgres.AutoMigrate)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cfg := &config.Config{Env: "staging", StorageDriver: config.StorageDriverMemory}
	assert.ErrorIs(t, cfg.Validate(), config.ErrUnknownEnv)

	cfg = &config.Config{Env: config.EnvProd, StorageDriver: "sqlite"}
	assert.ErrorIs(t, cfg.Validate(), config.ErrUnknownStorageDriver)

	cfg = &config.Config{
		Env:           config.EnvProd,
		StorageDriver: config.StorageDriverMemory,
		Log:           config.LogConfig{Format: "xml"},
	}
	assert.ErrorIs(t, cfg.Validate(), config.ErrUnknownLogFormat)
}

func TestEnvReaderMissingRequired(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("JWT_SIGNING_KEY", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	_, err := config.NewEnvReader().Read()
	assert.Error(t, err)
}
