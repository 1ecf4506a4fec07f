package config

import "time"

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		LLM:       DefaultLLMConfig(),
		Redis:     DefaultRedisConfig(),
		Database:  DefaultDatabaseConfig(),
		RAG:       DefaultRAGConfig(),
		WebSearch: DefaultWebSearchConfig(),
		Support:   SupportConfig{},
		Auth:      AuthConfig{},
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig returns the default serving parameters.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    50,
		RateLimitBurst:  100,
	}
}

// DefaultLLMConfig returns the default completion-service parameters.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		BaseURL:      "https://api.groq.com/openai/v1",
		Model:        "meta-llama/llama-4-maverick-17b-128e-instruct",
		Timeout:      2 * time.Minute,
		CacheEnabled: false,
		CacheTTL:     time.Hour,
	}
}

// DefaultRedisConfig returns the default cache backend parameters.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultDatabaseConfig returns the default store parameters.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Path:         "agentswarm.db",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}
}

// DefaultRAGConfig returns the default retrieval parameters.
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		IndexPath:    "vectorstore/index.json",
		DocsDir:      "docs",
		TopK:         4,
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// DefaultWebSearchConfig returns the default web search parameters.
func DefaultWebSearchConfig() WebSearchConfig {
	return WebSearchConfig{
		BaseURL:    "https://api.tavily.com",
		MaxResults: 5,
	}
}

// DefaultLogConfig returns the default logger parameters.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry parameters.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "agentswarm",
		SampleRate:   0.1,
	}
}
