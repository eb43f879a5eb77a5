// Package db implements the GORM-backed store for applications, reviewer
// accounts, the team roster, events, notices and the visitor log.
package db

import (
	"context"
	"errors"
	"fmt"

	dbmodels "github.com/gartstein/clubhire/internal/hiring/db/models"
	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the libpq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func NewRepository(cfg *Config) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewRepositoryFromDB(db)
}

// NewRepositoryFromDB wraps an already opened connection and migrates the
// schema.
func NewRepositoryFromDB(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(dbmodels.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Ping checks that the underlying connection is alive.
func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// Exec runs a raw statement, used by maintenance and test cleanup.
func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	return r.db.WithContext(ctx).Exec(query, params...).Error
}

// mapError translates GORM errors into the package's sentinel errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return e.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return e.ErrDuplicate
	default:
		return err
	}
}
