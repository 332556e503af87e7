// Package store defines the key-value contract the moderation and access
// services persist through, plus adapters for memory, SQLite (GORM), Redis
// and Valkey.
//
// Values are opaque strings; services store one JSON document per key and
// own any schema migration. Adapters never retry: a backend failure is
// returned to the caller as-is, and a document that does not decode is
// reported as ErrCorrupt.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Store is the key-value contract consumed by the services.
//
// Get reports ok=false (and a nil error) when the key is absent. Set and
// Remove are last-write-wins; callers must not assume atomicity across
// several calls.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// ErrCorrupt is returned when a stored document cannot be decoded.
var ErrCorrupt = errors.New("store: corrupt document")

// LoadJSON reads key and decodes it into v. It reports found=false when the
// key is absent, leaving v untouched.
func LoadJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("%w: key %q: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, string(b))
}
