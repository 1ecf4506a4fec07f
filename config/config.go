// Package config provides the unified configuration surface: defaults,
// YAML file loading, and environment variable overrides.
//
// Precedence: defaults, then YAML file, then environment variables with
// the AGENTSWARM prefix.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	LLM       LLMConfig       `yaml:"llm" env:"LLM"`
	Redis     RedisConfig     `yaml:"redis" env:"REDIS"`
	Database  DatabaseConfig  `yaml:"database" env:"DATABASE"`
	RAG       RAGConfig       `yaml:"rag" env:"RAG"`
	WebSearch WebSearchConfig `yaml:"web_search" env:"WEB_SEARCH"`
	Support   SupportConfig   `yaml:"support" env:"SUPPORT"`
	Auth      AuthConfig      `yaml:"auth" env:"AUTH"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig holds the HTTP serving parameters.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// LLMConfig holds the completion-service parameters.
type LLMConfig struct {
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	Model   string        `yaml:"model" env:"MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// CacheEnabled puts the Redis response cache in front of the provider.
	CacheEnabled bool          `yaml:"cache_enabled" env:"CACHE_ENABLED"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
}

// RedisConfig holds the cache backend parameters.
type RedisConfig struct {
	Addr         string `yaml:"addr" env:"ADDR"`
	Password     string `yaml:"password" env:"PASSWORD"`
	DB           int    `yaml:"db" env:"DB"`
	PoolSize     int    `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int    `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// DatabaseConfig holds the action-service store parameters. The store is
// sqlite-backed; Path is the database file, or ":memory:" for tests.
type DatabaseConfig struct {
	Path         string `yaml:"path" env:"PATH"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// RAGConfig holds the retrieval-service parameters.
type RAGConfig struct {
	IndexPath string `yaml:"index_path" env:"INDEX_PATH"`
	DocsDir   string `yaml:"docs_dir" env:"DOCS_DIR"`
	TopK      int    `yaml:"top_k" env:"TOP_K"`
	// Embeddings endpoint; empty selects the deterministic local embedder.
	EmbedBaseURL string `yaml:"embed_base_url" env:"EMBED_BASE_URL"`
	EmbedAPIKey  string `yaml:"embed_api_key" env:"EMBED_API_KEY"`
	EmbedModel   string `yaml:"embed_model" env:"EMBED_MODEL"`
	ChunkSize    int    `yaml:"chunk_size" env:"CHUNK_SIZE"`
	ChunkOverlap int    `yaml:"chunk_overlap" env:"CHUNK_OVERLAP"`
}

// WebSearchConfig holds the web search provider parameters. An empty
// APIKey disables the tool's provider and it reports errors as output.
type WebSearchConfig struct {
	BaseURL    string `yaml:"base_url" env:"BASE_URL"`
	APIKey     string `yaml:"api_key" env:"API_KEY"`
	MaxResults int    `yaml:"max_results" env:"MAX_RESULTS"`
}

// SupportConfig holds support-worker parameters.
type SupportConfig struct {
	// DataDir is the directory of per-intent request data files; empty
	// derives the request from the turn input.
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`
}

// AuthConfig holds the optional JWT bearer authentication parameters.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Secret  string `yaml:"secret" env:"SECRET"`
}

// LogConfig holds the zap logger parameters.
type LogConfig struct {
	Level            string   `yaml:"level" env:"LEVEL"`
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig holds the OTel exporter parameters.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// Validate checks the configuration for values no deployment can run
// with.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, "invalid metrics port")
	}
	if c.LLM.Model == "" {
		errs = append(errs, "llm model must be set")
	}
	if c.RAG.TopK <= 0 {
		errs = append(errs, "rag top_k must be positive")
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		errs = append(errs, "auth secret must be set when auth is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
