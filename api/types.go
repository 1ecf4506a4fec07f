// Package api defines the HTTP wire types for the turn endpoint.
package api

import "github.com/BaSui01/agentswarm/workflow"

// ChatRequest is one inbound conversation turn.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ChatResponse mirrors the turn payload returned by the executor.
type ChatResponse struct {
	Response            string                  `json:"response"`
	SourceAgentResponse string                  `json:"source_agent_response"`
	AgentWorkflow       []workflow.HistoryEntry `json:"agent_workflow"`
	ConversationActive  bool                    `json:"conversation_active"`
	NeedsFollowup       bool                    `json:"needs_followup"`
	Error               string                  `json:"error,omitempty"`
}

// FromPayload converts an executor payload to the wire response.
func FromPayload(p *workflow.Payload) ChatResponse {
	return ChatResponse{
		Response:            p.Response,
		SourceAgentResponse: p.SourceAgentResponse,
		AgentWorkflow:       p.AgentWorkflow,
		ConversationActive:  p.ConversationActive,
		NeedsFollowup:       p.NeedsFollowup,
		Error:               p.Error,
	}
}
