package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/agentswarm/agent"
	"github.com/BaSui01/agentswarm/api/handlers"
	"github.com/BaSui01/agentswarm/config"
	"github.com/BaSui01/agentswarm/internal/metrics"
	"github.com/BaSui01/agentswarm/internal/server"
	"github.com/BaSui01/agentswarm/internal/telemetry"
	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/llm/cache"
	"github.com/BaSui01/agentswarm/llm/groq"
	"github.com/BaSui01/agentswarm/rag"
	"github.com/BaSui01/agentswarm/tools"
	"github.com/BaSui01/agentswarm/workflow"
)

// Server assembles the full service: the conversation graph and its
// collaborators, the turn API, and the metrics listener.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	group     *server.Group
	providers *telemetry.Providers
	cancel    context.CancelFunc
}

// NewServer wires the service from configuration.
func NewServer(cfg *config.Config, logger *zap.Logger, providers *telemetry.Providers) (*Server, error) {
	collector := metrics.NewCollector("agentswarm", logger)

	provider := buildProvider(cfg, logger)

	registry, err := buildRegistry(cfg, provider, logger)
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	var source agent.RequestSource
	if cfg.Support.DataDir != "" {
		source = agent.FileRequestSource{Dir: cfg.Support.DataDir}
	}

	graph, err := agent.BuildGraph(agent.GraphConfig{
		Provider:      provider,
		Model:         cfg.LLM.Model,
		Registry:      registry,
		RequestSource: source,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}

	executor, err := workflow.NewExecutor(graph, logger, workflow.WithObserver(collector))
	if err != nil {
		return nil, fmt.Errorf("building executor: %w", err)
	}

	chatHandler := handlers.NewChatHandler(executor, logger)
	healthHandler := handlers.NewHealthHandler(Version, logger)
	healthHandler.RegisterCheck(providerCheck{provider})

	ctx, cancel := context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("/chat", chatHandler.HandleChat)
	mux.HandleFunc("/health", healthHandler.HandleHealth)

	middlewares := []Middleware{
		Recovery(logger),
		RequestID(),
		RequestLogger(logger),
		MetricsMiddleware(collector),
		RateLimiter(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger),
	}
	if cfg.Auth.Enabled {
		middlewares = append(middlewares, JWTAuth(cfg.Auth, []string{"/health"}, logger))
	}
	apiHandler := Chain(mux, middlewares...)

	apiServer := server.NewManager(apiHandler, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     120 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := server.NewManager(metricsMux, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	return &Server{
		cfg:       cfg,
		logger:    logger,
		group:     server.NewGroup(logger, apiServer, metricsServer),
		providers: providers,
		cancel:    cancel,
	}, nil
}

// Run blocks serving until shutdown.
func (s *Server) Run(ctx context.Context) error {
	defer s.cancel()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.providers.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()
	return s.group.Run(ctx)
}

// buildProvider creates the completion provider, optionally fronted by
// the Redis response cache.
func buildProvider(cfg *config.Config, logger *zap.Logger) llm.Provider {
	var provider llm.Provider = groq.New(groq.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger)

	if cfg.LLM.CacheEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		cacheCfg := cache.DefaultConfig()
		if cfg.LLM.CacheTTL > 0 {
			cacheCfg.TTL = cfg.LLM.CacheTTL
		}
		respCache := cache.NewResponseCache(rdb, cacheCfg, logger)
		provider = cache.NewCachingProvider(provider, respCache, logger)
		logger.Info("completion cache enabled", zap.String("redis", cfg.Redis.Addr))
	}

	return provider
}

// buildRegistry opens the action store and registers the four worker
// tools.
func buildRegistry(cfg *config.Config, provider llm.Provider, logger *zap.Logger) (*tools.Registry, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}

	store, err := tools.NewStore(db, logger)
	if err != nil {
		return nil, err
	}

	var embedder rag.Embedder
	if cfg.RAG.EmbedBaseURL != "" {
		embedder = rag.NewHTTPEmbedder(rag.HTTPEmbedderConfig{
			BaseURL: cfg.RAG.EmbedBaseURL,
			APIKey:  cfg.RAG.EmbedAPIKey,
			Model:   cfg.RAG.EmbedModel,
		}, 0, logger)
	} else {
		embedder = rag.NewLocalEmbedder(0)
	}

	retriever := rag.NewRetriever(rag.Config{
		IndexPath: cfg.RAG.IndexPath,
		DocsDir:   cfg.RAG.DocsDir,
		TopK:      cfg.RAG.TopK,
		Chunking: rag.ChunkConfig{
			Size:    cfg.RAG.ChunkSize,
			Overlap: cfg.RAG.ChunkOverlap,
		},
	}, embedder, provider, cfg.LLM.Model, logger)

	search := tools.NewHTTPSearchProvider(tools.HTTPSearchConfig{
		Endpoint: cfg.WebSearch.BaseURL,
		APIKey:   cfg.WebSearch.APIKey,
		Timeout:  30 * time.Second,
	}, logger)

	registry := tools.NewRegistry(logger)
	for _, tool := range []tools.Tool{
		tools.NewRAGSearchTool(retriever, logger),
		tools.NewWebSearchTool(search, cfg.WebSearch.MaxResults, logger),
		tools.NewTicketTool(store, logger),
		tools.NewScheduleTool(tools.NewScheduler(store, logger)),
	} {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// providerCheck probes the completion provider for the health endpoint.
type providerCheck struct {
	provider llm.Provider
}

func (c providerCheck) Name() string { return c.provider.Name() }

func (c providerCheck) Check(ctx context.Context) error {
	status, err := c.provider.HealthCheck(ctx)
	if err != nil {
		return err
	}
	if !status.Healthy {
		return fmt.Errorf("provider unhealthy")
	}
	return nil
}
