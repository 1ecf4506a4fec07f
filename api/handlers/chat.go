package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/api"
	"github.com/BaSui01/agentswarm/types"
	"github.com/BaSui01/agentswarm/workflow"
)

// maxMessageLength bounds the inbound message size.
const maxMessageLength = 4000

// TurnRunner executes one conversation turn. The workflow executor
// implements it.
type TurnRunner interface {
	Invoke(ctx context.Context, input string) *workflow.Payload
}

// ChatHandler serves the turn endpoint.
type ChatHandler struct {
	runner TurnRunner
	logger *zap.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(runner TurnRunner, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		runner: runner,
		logger: logger.With(zap.String("handler", "chat")),
	}
}

// HandleChat processes POST /chat.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest,
			"method not allowed", h.logger)
		return
	}

	var req api.ChatRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if err := validateChatRequest(&req); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	payload := h.runner.Invoke(r.Context(), req.Message)

	h.logger.Info("turn processed",
		zap.String("user_id", req.UserID),
		zap.Bool("conversation_active", payload.ConversationActive),
		zap.Bool("has_error", payload.Error != ""),
	)

	WriteJSON(w, http.StatusOK, api.FromPayload(payload))
}

// validateChatRequest rejects malformed turns before the graph runs:
// empty or whitespace-only messages, digits-only messages, oversized
// messages, and empty user ids.
func validateChatRequest(req *api.ChatRequest) *types.Error {
	req.Message = strings.TrimSpace(req.Message)
	req.UserID = strings.TrimSpace(req.UserID)

	if req.Message == "" {
		return types.NewError(types.ErrValidation, "message cannot be empty or just whitespace")
	}
	if len(req.Message) > maxMessageLength {
		return types.NewError(types.ErrValidation, "message exceeds maximum length")
	}
	if isDigitsOnly(req.Message) {
		return types.NewError(types.ErrValidation, "message cannot contain only numbers")
	}
	if req.UserID == "" {
		return types.NewError(types.ErrValidation, "user_id cannot be empty or just whitespace")
	}
	return nil
}

func isDigitsOnly(s string) bool {
	seen := false
	for _, c := range s {
		if c == ' ' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
		seen = true
	}
	return seen
}
