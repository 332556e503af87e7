// Package app is the composition root: it opens the database and the
// configured key-value store, builds the services and serves the admin API.
// Both the HTTP server and the admin CLI commands start from New.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-bookclub-guard/internal/config"
	httpapi "github.com/tbourn/go-bookclub-guard/internal/http"
	"github.com/tbourn/go-bookclub-guard/internal/moderation"
	"github.com/tbourn/go-bookclub-guard/internal/observability"
	"github.com/tbourn/go-bookclub-guard/internal/repo"
	"github.com/tbourn/go-bookclub-guard/internal/services"
	"github.com/tbourn/go-bookclub-guard/internal/store"
)

// Version is reported in traces and by the CLI. Overridden at build time
// with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// App holds the wired services for one process.
type App struct {
	Config config.Config
	DB     *gorm.DB
	Store  store.Store

	Moderation *services.ModerationService
	Channels   *services.ChannelService
	Access     *services.AccessService
	Webhooks   *services.HotmartService

	closeStore func() error
}

// New opens and migrates the SQLite database, opens the configured store and
// builds the services. The database always backs webhook deduplication,
// even when the key-value store lives elsewhere.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	st, closeStore, err := store.Open(ctx, cfg.Store, db)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	engine := moderation.New(
		moderation.WithMaxMessageLength(cfg.Moderation.MaxMessageLength),
		moderation.WithBlockExternalLinks(cfg.Moderation.BlockExternalLinks),
		moderation.WithInternalDomains(cfg.Moderation.InternalDomains...),
		moderation.WithMaskToken(cfg.Moderation.MaskToken),
	)

	channels := services.NewChannelService(st)
	mod, err := services.NewModerationService(ctx, st, engine, channels)
	if err != nil {
		_ = closeStore()
		closeDB(db)
		return nil, fmt.Errorf("load global words: %w", err)
	}
	acc := services.NewAccessService(st)

	return &App{
		Config:     cfg,
		DB:         db,
		Store:      st,
		Moderation: mod,
		Channels:   channels,
		Access:     acc,
		Webhooks:   services.NewHotmartService(db, acc, cfg.Hotmart.Hottok),
		closeStore: closeStore,
	}, nil
}

// Close releases the store and the database.
func (a *App) Close() error {
	var errs []error
	if a.closeStore != nil {
		errs = append(errs, a.closeStore())
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}

// Router builds the gin engine with every route mounted.
func (a *App) Router() *gin.Engine {
	gin.SetMode(a.Config.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Services{
		Moderation: a.Moderation,
		Channels:   a.Channels,
		Access:     a.Access,
		Webhook:    a.Webhooks,
	}, a.Config)
	return r
}

// Server returns an http.Server for the router using the configured
// timeouts.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", a.Config.Port),
		Handler:           a.Router(),
		ReadTimeout:       a.Config.ReadTimeout,
		ReadHeaderTimeout: a.Config.ReadHeaderTimeout,
		WriteTimeout:      a.Config.WriteTimeout,
		IdleTimeout:       a.Config.IdleTimeout,
		MaxHeaderBytes:    a.Config.MaxHeaderBytes,
	}
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down
// gracefully. Tracing is set up for the lifetime of the server.
func (a *App) Serve(ctx context.Context) error {
	shutdownOTel, err := observability.SetupOTel(ctx, a.Config.OTEL, Version,
		observability.StoreBackend(a.Config.Store.Backend))
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	srv := a.Server()
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("store", a.Config.Store.Backend).
			Bool("webhooks", a.Config.Hotmart.WebhookEnabled).
			Str("version", Version).
			Msg("admin API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
