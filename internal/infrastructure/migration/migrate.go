// Package migration applies the SQL migrations for the portal's import audit table.
package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator wraps golang-migrate with logging
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// New creates a Migrator on top of an open postgres connection
func New(db *sql.DB, dir string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "portal_schema_migrations"})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{m: m, logger: logger.Named("migrate")}, nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	return mg.run("up", mg.m.Up)
}

// Down rolls back every applied migration
func (mg *Migrator) Down() error {
	return mg.run("down", mg.m.Down)
}

// Steps applies n migrations, rolling back when n is negative
func (mg *Migrator) Steps(n int) error {
	return mg.run(fmt.Sprintf("steps %d", n), func() error { return mg.m.Steps(n) })
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	return mg.run(fmt.Sprintf("goto %d", version), func() error { return mg.m.Migrate(version) })
}

func (mg *Migrator) run(op string, fn func() error) error {
	mg.logger.Info("Running migration", zap.String("op", op))
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.logger.Info("Schema already up to date", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", op, err)
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.logger.Info("Migration finished",
		zap.String("op", op),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Version returns the applied version; zero when nothing has run
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force marks version as applied without running it. Only for repairing a dirty schema.
func (mg *Migrator) Force(version int) error {
	mg.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database handles
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
