// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, storage backends, moderation policy, Hotmart webhook settings,
// rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// ModerationConfig defines the message policy applied by the moderation engine.
type ModerationConfig struct {
	MaxMessageLength   int      // MAX_MESSAGE_LENGTH (runes)
	BlockExternalLinks bool     // BLOCK_EXTERNAL_LINKS
	InternalDomains    []string // INTERNAL_DOMAINS (CSV, lowercased)
	MaskToken          string   // MASK_TOKEN
}

// StoreConfig selects and configures the key-value store backend.
type StoreConfig struct {
	Backend        string        // STORE_BACKEND: sqlite|memory|redis|valkey
	RedisAddr      string        // REDIS_ADDR
	RedisPassword  string        // REDIS_PASSWORD
	RedisDB        int           // REDIS_DB
	ValkeyAddr     string        // VALKEY_ADDR
	ValkeyPassword string        // VALKEY_PASSWORD
	ValkeyDB       int           // VALKEY_DB
	KeyPrefix      string        // STORE_KEY_PREFIX (redis/valkey only)
	Timeout        time.Duration // STORE_TIMEOUT, connect/ping timeout
}

// HotmartConfig defines the inbound webhook settings.
type HotmartConfig struct {
	WebhookEnabled bool   // HOTMART_WEBHOOK_ENABLED
	Hottok         string // HOTMART_HOTTOK shared secret
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-bookclub-guard")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath     string // SQLite path
	Store      StoreConfig
	Moderation ModerationConfig
	Hotmart    HotmartConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath: getenv("DB_PATH", "bookclub.db"),
		Store: StoreConfig{
			Backend:        strings.ToLower(strings.TrimSpace(getenv("STORE_BACKEND", "sqlite"))),
			RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:  getenv("REDIS_PASSWORD", ""),
			RedisDB:        getint("REDIS_DB", 0),
			ValkeyAddr:     getenv("VALKEY_ADDR", "localhost:6379"),
			ValkeyPassword: getenv("VALKEY_PASSWORD", ""),
			ValkeyDB:       getint("VALKEY_DB", 0),
			KeyPrefix:      getenv("STORE_KEY_PREFIX", "bookclub"),
			Timeout:        getdur("STORE_TIMEOUT", 5*time.Second),
		},
		Moderation: ModerationConfig{
			MaxMessageLength:   getint("MAX_MESSAGE_LENGTH", 5000),
			BlockExternalLinks: getbool("BLOCK_EXTERNAL_LINKS", false),
			InternalDomains:    splitCSV(getenv("INTERNAL_DOMAINS", "")),
			MaskToken:          getenv("MASK_TOKEN", "***"),
		},
		Hotmart: HotmartConfig{
			WebhookEnabled: getbool("HOTMART_WEBHOOK_ENABLED", false),
			Hottok:         getenv("HOTMART_HOTTOK", ""),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-bookclub-guard"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	for i, d := range cfg.Moderation.InternalDomains {
		cfg.Moderation.InternalDomains[i] = strings.TrimSuffix(strings.ToLower(d), ".")
	}
	cfg.Hotmart.Hottok = strings.TrimSpace(cfg.Hotmart.Hottok)

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	switch cfg.Store.Backend {
	case "sqlite", "memory":
	case "redis":
		if strings.TrimSpace(cfg.Store.RedisAddr) == "" {
			return cfg, errors.New("REDIS_ADDR must not be empty when STORE_BACKEND=redis")
		}
	case "valkey":
		if strings.TrimSpace(cfg.Store.ValkeyAddr) == "" {
			return cfg, errors.New("VALKEY_ADDR must not be empty when STORE_BACKEND=valkey")
		}
	default:
		return cfg, errors.New("STORE_BACKEND must be one of: sqlite, memory, redis, valkey")
	}
	if cfg.Store.RedisDB < 0 || cfg.Store.ValkeyDB < 0 {
		return cfg, errors.New("REDIS_DB and VALKEY_DB must be >= 0")
	}
	if cfg.Store.Timeout <= 0 {
		return cfg, errors.New("STORE_TIMEOUT must be > 0")
	}
	if cfg.Moderation.MaxMessageLength < 1 {
		return cfg, errors.New("MAX_MESSAGE_LENGTH must be >= 1")
	}
	if cfg.Moderation.MaskToken == "" {
		return cfg, errors.New("MASK_TOKEN must not be empty")
	}
	if cfg.Hotmart.WebhookEnabled && cfg.Hotmart.Hottok == "" {
		return cfg, errors.New("HOTMART_HOTTOK is required when HOTMART_WEBHOOK_ENABLED is set")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
