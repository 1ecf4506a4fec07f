package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/api"
	"github.com/BaSui01/agentswarm/workflow"
)

type stubRunner struct {
	payload *workflow.Payload
	inputs  []string
}

func (r *stubRunner) Invoke(_ context.Context, input string) *workflow.Payload {
	r.inputs = append(r.inputs, input)
	return r.payload
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)
	return rec
}

func TestChatHandler_Success(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{payload: &workflow.Payload{
		Response:            "Hey! Fees start at 2.5%.",
		SourceAgentResponse: "Fees start at 2.5%.",
		AgentWorkflow:       []workflow.HistoryEntry{{AgentName: "router", Action: "start_routing"}},
		ConversationActive:  true,
		NeedsFollowup:       true,
	}}
	h := NewChatHandler(runner, zap.NewNop())

	rec := postChat(t, h, `{"message": "what are the fees?", "user_id": "client789"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"what are the fees?"}, runner.inputs)

	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hey! Fees start at 2.5%.", resp.Response)
	assert.Equal(t, "Fees start at 2.5%.", resp.SourceAgentResponse)
	require.Len(t, resp.AgentWorkflow, 1)
	assert.True(t, resp.ConversationActive)
	assert.Empty(t, resp.Error)
}

func TestChatHandler_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "empty message",
			body:    `{"message": "", "user_id": "u1"}`,
			wantMsg: "message cannot be empty or just whitespace",
		},
		{
			name:    "whitespace message",
			body:    `{"message": "   \n\t ", "user_id": "u1"}`,
			wantMsg: "message cannot be empty or just whitespace",
		},
		{
			name:    "digits only",
			body:    `{"message": "12345", "user_id": "u1"}`,
			wantMsg: "message cannot contain only numbers",
		},
		{
			name:    "digits with spaces",
			body:    `{"message": "123 456 789", "user_id": "u1"}`,
			wantMsg: "message cannot contain only numbers",
		},
		{
			name:    "oversized message",
			body:    `{"message": "` + strings.Repeat("a", 4001) + `", "user_id": "u1"}`,
			wantMsg: "message exceeds maximum length",
		},
		{
			name:    "empty user id",
			body:    `{"message": "hello", "user_id": ""}`,
			wantMsg: "user_id cannot be empty or just whitespace",
		},
		{
			name:    "whitespace user id",
			body:    `{"message": "hello", "user_id": "   "}`,
			wantMsg: "user_id cannot be empty or just whitespace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{payload: &workflow.Payload{}}
			h := NewChatHandler(runner, zap.NewNop())

			rec := postChat(t, h, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, runner.inputs, "invalid requests must not start a turn")

			var envelope Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.False(t, envelope.Success)
			require.NotNil(t, envelope.Error)
			assert.Equal(t, "VALIDATION", envelope.Error.Code)
			assert.Equal(t, tt.wantMsg, envelope.Error.Message)
		})
	}
}

func TestChatHandler_BoundaryLengthAccepted(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{payload: &workflow.Payload{Response: "ok"}}
	h := NewChatHandler(runner, zap.NewNop())

	msg := strings.Repeat("a", 4000)
	rec := postChat(t, h, `{"message": "`+msg+`", "user_id": "u1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatHandler_MixedDigitsAccepted(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{payload: &workflow.Payload{Response: "ok"}}
	h := NewChatHandler(runner, zap.NewNop())

	rec := postChat(t, h, `{"message": "order 12345 failed", "user_id": "u1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"order 12345 failed"}, runner.inputs)
}

func TestChatHandler_MalformedBody(t *testing.T) {
	t.Parallel()

	h := NewChatHandler(&stubRunner{payload: &workflow.Payload{}}, zap.NewNop())

	t.Run("invalid json", func(t *testing.T) {
		rec := postChat(t, h, `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		rec := postChat(t, h, `{"message": "hi", "user_id": "u1", "admin": true}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := NewChatHandler(&stubRunner{payload: &workflow.Payload{}}, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChatHandler_CarriesTurnError(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{payload: &workflow.Payload{
		Response: "An error occurred processing your request.",
		Error:    "Invalid result type",
	}}
	h := NewChatHandler(runner, zap.NewNop())

	rec := postChat(t, h, `{"message": "goodbye friend", "user_id": "u1"}`)
	require.Equal(t, http.StatusOK, rec.Code, "turn errors are payload content, not transport failures")

	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid result type", resp.Error)
}
