// Package httpapi wires the Gin engine to the admin services: middleware,
// operational endpoints (/health, /metrics, /swagger) and the versioned
// admin API under the configured base path.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID, Actor
//  3. RedactingLogger
//  4. Recovery
//  5. Body size limit
//  6. Metrics
//  7. gzip
//  8. CORS and security headers
//
// Rate limiting is applied per group: the admin API is keyed by actor or
// IP, the webhook group by IP only.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/tbourn/go-bookclub-guard/docs"
	"github.com/tbourn/go-bookclub-guard/internal/config"
	"github.com/tbourn/go-bookclub-guard/internal/http/handlers"
	"github.com/tbourn/go-bookclub-guard/internal/http/middleware"
)

// maxBodyBytes caps request bodies. Webhook payloads and transaction
// documents are far smaller.
const maxBodyBytes = 1 << 20

// Services are the application services behind the admin API. Webhook may
// be nil; its route is then not mounted.
type Services struct {
	Moderation handlers.ModerationService
	Channels   handlers.ChannelService
	Access     handlers.AccessService
	Webhook    handlers.WebhookService
}

// RegisterRoutes attaches middleware and all endpoints to r.
func RegisterRoutes(r *gin.Engine, svc Services, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID(), middleware.Actor())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(corsMiddleware(cfg.CORS))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svc.Moderation, svc.Channels, svc.Access, svc.Webhook)
	base := groupWithPrefix(r, cfg.APIBasePath)

	admin := base.Group("")
	admin.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByActorOrIP()).Handler())
	{
		admin.POST("/moderation/check", h.CheckMessage)
		admin.POST("/moderation/filter", h.FilterMessage)
		admin.GET("/moderation/words", h.ListWords)
		admin.POST("/moderation/words", h.AddWord)
		admin.DELETE("/moderation/words/:word", h.RemoveWord)

		admin.GET("/channels", h.ListChannels)
		admin.GET("/channels/:id", h.GetChannel)
		admin.PUT("/channels/:id", h.PutChannel)
		admin.DELETE("/channels/:id", h.DeleteChannel)

		admin.POST("/access/validate", h.ValidateAccess)
		admin.GET("/access/transactions", h.ListTransactions)
		admin.PUT("/access/transactions", h.UpsertTransaction)
		// gin needs one wildcard name per segment: :key is the buyer email
		// for GET/DELETE and the platform transaction id for PATCH.
		admin.GET("/access/transactions/:key", h.GetTransaction)
		admin.DELETE("/access/transactions/:key", h.DeleteTransaction)
		admin.PATCH("/access/transactions/:key/status", h.UpdateTransactionStatus)
	}

	if cfg.Hotmart.WebhookEnabled && svc.Webhook != nil {
		hooks := base.Group("/webhooks")
		hooks.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP()).Handler())
		hooks.POST("/hotmart", h.HotmartWebhook)
	}
}

// corsMiddleware allows any origin when no allowlist is configured and
// echoes allowlisted origins otherwise. Credentials are never allowed.
func corsMiddleware(c config.CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-User", "X-Request-ID"},
		ExposeHeaders: []string{
			"X-Request-ID", "Content-Length", "Retry-After",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cors.New(cc)
}

// limitBody caps the request body at maxBytes. Reads past the cap fail,
// which the handlers report as a bad request.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
