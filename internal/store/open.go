package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-bookclub-guard/internal/config"
)

// Open builds the Store selected by cfg.Backend. The returned close func is
// never nil. The sqlite backend requires a migrated db handle.
func Open(ctx context.Context, cfg config.StoreConfig, db *gorm.DB) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), noop, nil
	case "sqlite", "":
		if db == nil {
			return nil, noop, errors.New("store: sqlite backend requires a database handle")
		}
		return NewSQLStore(db), noop, nil
	case "redis":
		s, err := DialRedis(ctx, redisConfig(cfg))
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case "valkey":
		s, err := DialValkey(ctx, valkeyConfig(cfg))
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}

func redisConfig(cfg config.StoreConfig) RedisConfig {
	return RedisConfig{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		KeyPrefix:   cfg.KeyPrefix,
		DialTimeout: cfg.Timeout,
	}
}

func valkeyConfig(cfg config.StoreConfig) ValkeyConfig {
	return ValkeyConfig{
		Address:        cfg.ValkeyAddr,
		Password:       cfg.ValkeyPassword,
		DB:             cfg.ValkeyDB,
		KeyPrefix:      cfg.KeyPrefix,
		ConnectTimeout: cfg.Timeout,
	}
}
