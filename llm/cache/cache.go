// Package cache provides a Redis-backed completion response cache. Only
// tool-free requests are cached: a request carrying tool schemas may
// trigger side effects on replay, so it always passes through.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
)

// ErrCacheMiss is returned when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// Config configures the response cache.
type Config struct {
	TTL       time.Duration `yaml:"ttl"`
	KeyPrefix string        `yaml:"key_prefix"`
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:       time.Hour,
		KeyPrefix: "agentswarm:completion:",
	}
}

// ResponseCache stores completion responses in Redis keyed by a request hash.
type ResponseCache struct {
	rdb    *redis.Client
	cfg    Config
	logger *zap.Logger
}

// NewResponseCache creates a response cache over an existing Redis client.
func NewResponseCache(rdb *redis.Client, cfg Config, logger *zap.Logger) *ResponseCache {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &ResponseCache{
		rdb:    rdb,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "completion_cache")),
	}
}

// Key derives a deterministic cache key from the request content.
func (c *ResponseCache) Key(req *llm.ChatRequest) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return c.cfg.KeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached response for a request, or ErrCacheMiss.
func (c *ResponseCache) Get(ctx context.Context, key string) (*llm.ChatResponse, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var resp llm.ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Set stores a response under a key with the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, resp *llm.ChatResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.cfg.TTL).Err()
}

// CachingProvider decorates an llm.Provider with the response cache.
// Cache failures degrade to a direct provider call, never to an error.
type CachingProvider struct {
	inner  llm.Provider
	cache  *ResponseCache
	logger *zap.Logger
}

// NewCachingProvider wraps a provider with the response cache.
func NewCachingProvider(inner llm.Provider, cache *ResponseCache, logger *zap.Logger) *CachingProvider {
	return &CachingProvider{
		inner:  inner,
		cache:  cache,
		logger: logger.With(zap.String("component", "caching_provider")),
	}
}

func (p *CachingProvider) Name() string { return p.inner.Name() }

func (p *CachingProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return p.inner.HealthCheck(ctx)
}

// Completion serves tool-free requests from the cache when possible.
func (p *CachingProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if req == nil || len(req.Tools) > 0 {
		return p.inner.Completion(ctx, req)
	}

	key := p.cache.Key(req)
	if key != "" {
		if resp, err := p.cache.Get(ctx, key); err == nil {
			p.logger.Debug("completion cache hit", zap.String("key", key))
			return resp, nil
		} else if !errors.Is(err, ErrCacheMiss) {
			p.logger.Warn("completion cache read failed", zap.Error(err))
		}
	}

	resp, err := p.inner.Completion(ctx, req)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := p.cache.Set(ctx, key, resp); err != nil {
			p.logger.Warn("completion cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}
