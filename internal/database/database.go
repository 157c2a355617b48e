package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Options controls the connection pool and the startup retry loop
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Attempts        int
	RetryDelay      time.Duration
}

// Connect connects to PostgreSQL with retries
func Connect(ctx context.Context, opts Options, logger *zap.Logger) (*sqlx.DB, error) {
	if opts.Attempts <= 0 {
		opts.Attempts = 30
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}

	var err error
	for i := 0; i < opts.Attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("failed to connect to database: %w", ctx.Err())
			case <-time.After(opts.RetryDelay):
			}
		}

		var db *sqlx.DB
		db, err = sqlx.Open("postgres", opts.DSN)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			continue
		}

		// Test connection
		if err = db.PingContext(ctx); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			continue
		}

		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxIdleConns)
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", opts.Attempts, err)
}

// Migrator applies and rolls back schema migrations
type Migrator struct {
	mu     sync.Mutex
	m      *migrate.Migrate
	logger *zap.Logger
}

// NewMigrator binds the migration source to an open database.
// The migrator borrows db; closing it is left to the caller.
func NewMigrator(db *sqlx.DB, sourceURL string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgresdb.WithInstance(db.DB, &postgresdb.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return &Migrator{m: m, logger: logger}, nil
}

// Up runs all pending migrations
func (mg *Migrator) Up() error {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	return mg.up()
}

// Reset drops every table and recreates the schema
func (mg *Migrator) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()

	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	mg.logger.Warn("Database schema dropped")

	return mg.up()
}

func (mg *Migrator) up() error {
	err := mg.m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		mg.logger.Info("No new migrations to apply")
	} else {
		version, _, _ := mg.m.Version()
		mg.logger.Info("Migrations applied successfully", zap.Uint("version", version))
	}
	return nil
}
