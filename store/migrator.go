package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// The schema is small enough to ship as a single LATEST.sql per driver,
// applied once on a fresh database.
//
//go:embed migration
var migrationFS embed.FS

// Migrate initializes the database schema if it is not present yet.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database state")
	}
	if initialized {
		return nil
	}

	schemaPath := fmt.Sprintf("migration/%s/LATEST.sql", s.profile.Driver)
	schema, err := migrationFS.ReadFile(schemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema file %s", schemaPath)
	}

	if err := s.driver.Exec(ctx, string(schema)); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}

	slog.Info("database schema initialized", slog.String("driver", s.profile.Driver))
	return nil
}
