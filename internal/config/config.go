// Package config provides centralized configuration management for the
// projector server and CLI. It loads configuration from environment
// variables with sensible defaults and validates all settings on startup to
// fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
	"unicode/utf8"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Ingest    IngestConfig
	Run       RunConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Pipelines PipelinesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// Compression enables gzip response compression (default: true)
	Compression bool `env:"SERVER_COMPRESSION" default:"true"`

	// CompressionMinSize is the smallest response body compressed, in bytes (default: 1024)
	CompressionMinSize int `env:"SERVER_COMPRESSION_MIN_SIZE" default:"1024"`
}

// DatabaseConfig holds settings for the optional Postgres publish target.
// Publishing is disabled when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a publish database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// IngestConfig holds source reading and parsing settings.
type IngestConfig struct {
	// MaxFileSize is the maximum decoded source size in bytes (default: 100MB)
	MaxFileSize int64 `env:"INGEST_MAX_FILE_SIZE" default:"104857600"`

	// Separator is the default field separator, a single character (default: ,)
	Separator string `env:"INGEST_SEPARATOR" default:","`

	// HasHeader reports whether sources start with a header line by default (default: true)
	HasHeader bool `env:"INGEST_HAS_HEADER" default:"true"`

	// Encoding is the default source encoding: utf-8, latin1, windows-1252 (default: utf-8)
	Encoding string `env:"INGEST_ENCODING" default:"utf-8"`

	// FetchTimeout bounds remote source downloads (default: 60s)
	FetchTimeout time.Duration `env:"INGEST_FETCH_TIMEOUT" default:"60s"`

	// FetchAllowPrivate permits downloads from loopback, private and
	// link-local addresses (default: false)
	FetchAllowPrivate bool `env:"INGEST_FETCH_ALLOW_PRIVATE" default:"false"`
}

// SeparatorRune returns the configured separator as a rune, or ',' when unset.
func (c *IngestConfig) SeparatorRune() rune {
	if c.Separator == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(c.Separator)
	return r
}

// RunConfig holds pipeline run settings.
type RunConfig struct {
	// MaxConcurrent is the maximum number of parallel runs (default: 4)
	MaxConcurrent int `env:"RUN_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a run slot (default: 30s)
	MaxWaitTime time.Duration `env:"RUN_MAX_WAIT_TIME" default:"30s"`

	// ResultTTL is how long finished results stay available (default: 30m)
	ResultTTL time.Duration `env:"RUN_RESULT_TTL" default:"30m"`

	// HeadRows is the default number of rows shown in previews (default: 5)
	HeadRows int `env:"RUN_HEAD_ROWS" default:"5"`

	// Timeout is the maximum duration for a single run (default: 5m)
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"5m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// PipelinesConfig points at extra pipeline definitions.
type PipelinesConfig struct {
	// File is an optional YAML file of pipeline definitions
	File string `env:"PIPELINES_FILE"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
