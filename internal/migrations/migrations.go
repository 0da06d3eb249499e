// Package migrations holds the postgres schema as embedded SQL scripts.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed *.sql
var scriptsFS embed.FS

// Names returns the migration file names in the order they are applied.
func Names() ([]string, error) {
	return fs.Glob(scriptsFS, "*.sql")
}

// Script returns the SQL of the named migration.
func Script(name string) (string, error) {
	data, err := scriptsFS.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Apply runs every migration in file name order and returns how many ran.
// The scripts are idempotent, so Apply is safe on every start.
func Apply(ctx context.Context, logger zerolog.Logger, pgPool *pgxpool.Pool) (int, error) {
	names, err := Names()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to list migrations")
		return 0, err
	}

	for _, name := range names {
		script, err := Script(name)
		if err != nil {
			logger.Error().
				Err(err).
				Str("migration", name).
				Msg("failed to read migration")
			return 0, err
		}

		_, err = pgPool.Exec(ctx, script)
		if err != nil {
			logger.Error().
				Err(err).
				Str("migration", name).
				Msg("failed to apply migration")
			return 0, fmt.Errorf("migration %s: %w", name, err)
		}
		logger.Debug().
			Str("migration", name).
			Msg("applied migration")
	}
	return len(names), nil
}
