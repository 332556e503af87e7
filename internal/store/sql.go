package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-bookclub-guard/internal/repo"
)

// SQLStore persists entries in the kv_entries table through the repo layer.
type SQLStore struct {
	DB *gorm.DB
}

// NewSQLStore wraps an already migrated database handle.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{DB: db}
}

// Get returns the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	e, err := repo.GetKV(ctx, s.DB, key)
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

// Set stores value under key.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	return repo.PutKV(ctx, s.DB, key, value)
}

// Remove deletes key.
func (s *SQLStore) Remove(ctx context.Context, key string) error {
	return repo.DeleteKV(ctx, s.DB, key)
}

// Keys lists stored keys with the given prefix, sorted ascending.
func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return repo.ListKVKeys(ctx, s.DB, prefix)
}
