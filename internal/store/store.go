// Package store owns every read and write against the database.
// A Store is bound either to the pool or to an open transaction.
package store

import (
	"context"
	"errors"

	apperr "threadcraft-api/internal/errors"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a Store bound to a single database transaction.
// Any error from fn rolls everything back and is returned unchanged.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the connection; used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperr.Persistence("store.ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Persistence("store.ping", err)
	}
	return nil
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// wrap leaves categorised errors alone and marks everything else as a persistence failure.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Persistence(op, err)
}

func wrapNotFound(op string, err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(op, format, args...)
	}
	return apperr.Persistence(op, err)
}
