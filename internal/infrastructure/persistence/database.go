package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/marketplace/portal/internal/infrastructure/config"
	"github.com/marketplace/portal/internal/infrastructure/persistence/models"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the connection to the portal's own tables (import audit)
type Database struct {
	DB     *gorm.DB
	driver string
}

type dbOptions struct {
	logger  gormlogger.Interface
	tracing bool
}

// Option configures NewDatabase
type Option func(*dbOptions)

// WithLogger sets the gorm logger; defaults to silent
func WithLogger(l gormlogger.Interface) Option {
	return func(o *dbOptions) { o.logger = l }
}

// WithTracing registers the otelgorm plugin
func WithTracing(enabled bool) Option {
	return func(o *dbOptions) { o.tracing = enabled }
}

// NewDatabase opens postgres or sqlite according to cfg.Driver
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	o := dbOptions{logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	for _, opt := range opts {
		opt(&o)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver != "sqlite",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if o.tracing {
		plugin := otelgorm.NewPlugin(
			otelgorm.WithDBName(cfg.DBName),
			otelgorm.WithoutQueryVariables(),
		)
		if err := db.Use(plugin); err != nil {
			return nil, fmt.Errorf("failed to register db tracing: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// one writer; an in-memory database exists per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, driver: cfg.Driver}, nil
}

// EnsureSchema creates the portal tables on sqlite, which golang-migrate's
// postgres driver does not serve. Postgres schemas belong to cmd/migrate and
// are left alone.
func (d *Database) EnsureSchema(ctx context.Context) error {
	if d.driver != "sqlite" {
		return nil
	}
	if err := d.DB.WithContext(ctx).AutoMigrate(&models.ImportHistoryModel{}); err != nil {
		return fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return nil
}

// IsPostgres reports whether migrations apply to this database
func (d *Database) IsPostgres() bool {
	return d.driver != "sqlite"
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}

// Stats returns pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	s := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration,
	}, nil
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
