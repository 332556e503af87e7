package store

import (
	"context"
	"fmt"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

// ValkeyConfig holds the connection settings for DialValkey.
type ValkeyConfig struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration
}

// ValkeyStore is a Store backed by Valkey strings.
type ValkeyStore struct {
	inner  valkeylib.Client
	prefix string
}

// DialValkey creates the client and pings it within the configured timeout.
// The caller is responsible for calling Close.
func DialValkey(ctx context.Context, cfg ValkeyConfig) (*ValkeyStore, error) {
	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := inner.Do(pctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to ping valkey (timeout: %v): %w", timeout, err)
	}

	return &ValkeyStore{inner: inner, prefix: normalizePrefix(cfg.KeyPrefix)}, nil
}

// Get returns the value stored under key.
func (s *ValkeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.inner.Do(ctx, s.inner.B().Get().Key(s.prefix+key).Build()).ToString()
	if valkeylib.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key without expiry.
func (s *ValkeyStore) Set(ctx context.Context, key, value string) error {
	cmd := s.inner.B().Set().Key(s.prefix + key).Value(value).Build()
	return s.inner.Do(ctx, cmd).Error()
}

// Remove deletes key.
func (s *ValkeyStore) Remove(ctx context.Context, key string) error {
	return s.inner.Do(ctx, s.inner.B().Del().Key(s.prefix+key).Build()).Error()
}

// Close closes the Valkey connection.
func (s *ValkeyStore) Close() error {
	s.inner.Close()
	return nil
}
