// Package store is the durable entity store for rooms and their child
// records. It is the single synchronization point of the engine: every
// mutation is one atomic write (or one transaction) against this store, and
// commit order is the tie-break for concurrent writes.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned by point lookups when the record does not exist.
var ErrNotFound = errors.New("record not found")

type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and returns a ready store.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an already-open gorm handle. Tests use this with sqlite.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&Room{},
		&Member{},
		&Vote{},
		&CanvasObject{},
		&Presence{},
		&Activity{},
	)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Transaction runs fn against a transactional view of the store. Any error
// rolls the whole transaction back, so multi-write operations never partially
// commit.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
