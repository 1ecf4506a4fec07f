package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/types"
	"github.com/BaSui01/agentswarm/workflow"
)

const routerLLMKey = "router_llm"

// endTokens terminate the turn deterministically, without a completion
// call.
var endTokens = map[string]bool{
	"goodbye": true,
	"bye":     true,
	"exit":    true,
	"quit":    true,
	"end":     true,
}

// RouterNode classifies the current input onto one of the two worker
// destinations or the terminal signal. Classification never aborts the
// turn: a failed completion call records the error and falls through to
// the support worker.
type RouterNode struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
}

// NewRouterNode creates the classifier step.
func NewRouterNode(provider llm.Provider, model string, logger *zap.Logger) *RouterNode {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouterNode{
		provider: provider,
		model:    model,
		logger:   logger.With(zap.String("component", "router")),
	}
}

func (n *RouterNode) Name() string { return string(workflow.AgentRouter) }

func (n *RouterNode) Run(ctx context.Context, st *workflow.State) error {
	st.PushAgent(workflow.AgentRouter)
	st.Ledger.Record(workflow.HistoryEntry{
		AgentName: string(workflow.AgentRouter),
		Action:    "start_routing",
		Input:     st.Input,
		ToolCalls: map[string]any{
			routerLLMKey: map[string]any{
				"model":  n.model,
				"status": "initialized",
			},
		},
	})

	// Deterministic fast path for explicit end commands.
	if endTokens[strings.ToLower(strings.TrimSpace(st.Input))] {
		st.ConversationActive = false
		st.Next = workflow.End
		return nil
	}

	messages := make([]types.Message, 0, len(st.Messages)+2)
	messages = append(messages, types.NewSystemMessage(routerInstructions))
	messages = append(messages, st.Messages...)
	messages = append(messages, types.NewUserMessage(st.Input))

	resp, err := n.provider.Completion(ctx, &llm.ChatRequest{
		Model:    n.model,
		Messages: messages,
	})
	if err != nil {
		n.logger.Warn("routing call failed, defaulting to support", zap.Error(err))
		st.Err = err.Error()
		st.Next = string(workflow.RouteSupport)
		return nil
	}

	decision := strings.ToLower(strings.TrimSpace(llm.FirstText(resp)))
	st.Ledger.RecordProviderCall(routerLLMKey, map[string]any{
		"input": st.Input,
		"model": n.model,
	}, decision)

	var next string
	switch decision {
	case "end":
		next = workflow.End
		st.ConversationActive = false
		st.NeedsFollowup = false
	case string(workflow.RouteKnowledge), string(workflow.RouteSupport):
		next = decision
	default:
		n.logger.Warn("unexpected routing decision, defaulting to support",
			zap.String("decision", decision))
		next = string(workflow.RouteSupport)
	}

	st.Ledger.Record(workflow.HistoryEntry{
		AgentName: string(workflow.AgentRouter),
		Action:    "complete_routing",
		Input:     st.Input,
		Output:    next,
		ToolCalls: n.routerCallSnapshot(st),
	})

	// Termination happens only via the fast path above, an explicit "end"
	// from the model, or the continuation policy. It never falls out of
	// classification as a default.
	if next == workflow.End && st.ConversationActive && st.NeedsFollowup {
		n.logger.Warn("preventing automatic end, routing to support for follow-up")
		next = string(workflow.RouteSupport)
	}

	st.Next = next
	return nil
}

// routerCallSnapshot captures the router_llm call history for an audit
// entry.
func (n *RouterNode) routerCallSnapshot(st *workflow.State) map[string]any {
	stats := st.Ledger.ToolOutputs(routerLLMKey)
	if stats == nil {
		return nil
	}
	return map[string]any{
		routerLLMKey: map[string]any{
			"calls":      stats.Calls,
			"total_uses": stats.TotalUses,
			"last_used":  stats.LastUsed,
			"model":      n.model,
			"status":     "success",
		},
	}
}
