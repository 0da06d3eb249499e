package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrUnknownEnv           = errors.New("unknown env")
	ErrUnknownStorageDriver = errors.New("unknown storage driver")
	ErrMissingPostgres      = errors.New("missing postgres settings")
	ErrUnknownLogFormat     = errors.New("unknown log format")
)

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that depend on each other.
func (cfg *Config) Validate() error {
	switch cfg.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEnv, cfg.Env)
	}

	switch cfg.Log.Format {
	case "", LogFormatJSON, LogFormatConsole:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownLogFormat, cfg.Log.Format)
	}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		pg := cfg.Postgres
		if pg.Host == "" || pg.Username == "" || pg.Database == "" {
			return ErrMissingPostgres
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStorageDriver, cfg.StorageDriver)
	}
	return nil
}
