package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/types"
)

func newTestCache(t *testing.T) (*ResponseCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewResponseCache(rdb, Config{TTL: time.Minute}, zap.NewNop()), mr
}

type countingProvider struct {
	calls int
	resp  *llm.ChatResponse
	err   error
}

func (p *countingProvider) Completion(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.calls++
	return p.resp, p.err
}

func (p *countingProvider) HealthCheck(context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (p *countingProvider) Name() string { return "counting" }

func testResponse(text string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model:   "test",
		Choices: []llm.ChatChoice{{Message: types.NewAssistantMessage(text)}},
	}
}

func TestResponseCache_GetSet(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	ctx := context.Background()

	req := &llm.ChatRequest{Model: "m", Messages: []types.Message{{Role: types.RoleUser, Content: "hi"}}}
	key := c.Key(req)
	require.NotEmpty(t, key)

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, key, testResponse("hello")))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", llm.FirstText(got))
}

func TestResponseCache_KeyIsContentAddressed(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	a := &llm.ChatRequest{Model: "m", Messages: []types.Message{{Role: types.RoleUser, Content: "one"}}}
	b := &llm.ChatRequest{Model: "m", Messages: []types.Message{{Role: types.RoleUser, Content: "two"}}}

	assert.Equal(t, c.Key(a), c.Key(a))
	assert.NotEqual(t, c.Key(a), c.Key(b))
}

func TestResponseCache_TTLExpiry(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()

	req := &llm.ChatRequest{Model: "m", Messages: []types.Message{{Role: types.RoleUser, Content: "hi"}}}
	key := c.Key(req)
	require.NoError(t, c.Set(ctx, key, testResponse("hello")))

	mr.FastForward(2 * time.Minute)
	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCachingProvider_ServesFromCache(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	inner := &countingProvider{resp: testResponse("answer")}
	p := NewCachingProvider(inner, c, zap.NewNop())
	ctx := context.Background()

	req := &llm.ChatRequest{Model: "m", Messages: []types.Message{{Role: types.RoleUser, Content: "hi"}}}

	first, err := p.Completion(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "answer", llm.FirstText(first))
	assert.Equal(t, 1, inner.calls)

	second, err := p.Completion(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "answer", llm.FirstText(second))
	assert.Equal(t, 1, inner.calls, "second identical request is a cache hit")
}

func TestCachingProvider_ToolRequestsBypassCache(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	inner := &countingProvider{resp: testResponse("answer")}
	p := NewCachingProvider(inner, c, zap.NewNop())
	ctx := context.Background()

	req := &llm.ChatRequest{
		Model:    "m",
		Messages: []types.Message{{Role: types.RoleUser, Content: "hi"}},
		Tools: []llm.ToolSchema{{
			Name:       "create_support_ticket",
			Parameters: json.RawMessage(`{"type":"object"}`),
		}},
	}

	for i := 0; i < 3; i++ {
		_, err := p.Completion(ctx, req)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls, "tool-bearing requests must never be served from cache")
}

func TestCachingProvider_CacheFailureDegradesToDirectCall(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	inner := &countingProvider{resp: testResponse("answer")}
	p := NewCachingProvider(inner, c, zap.NewNop())

	mr.Close()

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Model:    "m",
		Messages: []types.Message{{Role: types.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "answer", llm.FirstText(resp))
	assert.Equal(t, 1, inner.calls)
}
