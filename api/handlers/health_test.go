package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCheck struct {
	name string
	err  error
}

func (c stubCheck) Name() string                { return c.name }
func (c stubCheck) Check(context.Context) error { return c.err }

func getHealth(t *testing.T, h *HealthHandler) (int, HealthStatus) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return rec.Code, status
}

func TestHealthHandler_Healthy(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("1.2.3", zap.NewNop())
	h.RegisterCheck(stubCheck{name: "llm"})
	h.RegisterCheck(stubCheck{name: "redis"})

	code, status := getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	require.Len(t, status.Checks, 2)
	assert.Equal(t, "pass", status.Checks["llm"].Status)
	assert.Equal(t, "pass", status.Checks["redis"].Status)
}

func TestHealthHandler_DegradedStays200(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("1.2.3", zap.NewNop())
	h.RegisterCheck(stubCheck{name: "llm"})
	h.RegisterCheck(stubCheck{name: "redis", err: fmt.Errorf("connection refused")})

	code, status := getHealth(t, h)
	assert.Equal(t, http.StatusOK, code, "a degraded dependency does not make the process dead")
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "pass", status.Checks["llm"].Status)
	assert.Equal(t, "fail", status.Checks["redis"].Status)
	assert.Equal(t, "connection refused", status.Checks["redis"].Message)
}

func TestHealthHandler_NoChecks(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("", zap.NewNop())
	code, status := getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Empty(t, status.Checks)
}
