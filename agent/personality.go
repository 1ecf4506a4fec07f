package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/types"
	"github.com/BaSui01/agentswarm/workflow"
)

const personalityLLMKey = "personality_llm"

const (
	degradedPrefix  = "I apologize, but I'm having trouble formatting the response. Let me provide the direct answer:"
	missingOriginal = "Error retrieving original response"
)

// PersonalityNode transforms the worker's answer for tone while
// preserving its facts. It always produces a payload: a failed
// transformation degrades to a fixed apology, never an error.
type PersonalityNode struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
}

// NewPersonalityNode creates the formatter step.
func NewPersonalityNode(provider llm.Provider, model string, logger *zap.Logger) *PersonalityNode {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonalityNode{
		provider: provider,
		model:    model,
		logger:   logger.With(zap.String("component", "personality")),
	}
}

func (n *PersonalityNode) Name() string { return string(workflow.AgentPersonality) }

func (n *PersonalityNode) Run(ctx context.Context, st *workflow.State) error {
	original := ""
	if st.Outcome != nil {
		original = st.Outcome.Text
	}
	if original == "" {
		original = types.LastAssistantText(st.Messages)
	}

	transformed := original
	if original != "" {
		resp, err := n.provider.Completion(ctx, &llm.ChatRequest{
			Model: n.model,
			Messages: []types.Message{
				types.NewSystemMessage(personalityInstructions),
				types.NewUserMessage(original),
			},
		})
		if err != nil {
			n.logger.Warn("personality transformation failed, degrading", zap.Error(err))
			n.degrade(st, original, err)
			return nil
		}
		if text := llm.FirstText(resp); text != "" {
			transformed = text
		}
		st.Ledger.RecordProviderCall(personalityLLMKey, map[string]any{
			"input": original,
			"model": n.model,
		}, transformed)
	}

	st.Ledger.Record(workflow.HistoryEntry{
		AgentName: string(workflow.AgentPersonality),
		Action:    "enhance_response",
		Input:     original,
		Output:    transformed,
		ToolCalls: st.Ledger.OutputsSnapshot(),
	})

	st.PersonalityOutput = &workflow.Payload{
		Response:            transformed,
		SourceAgentResponse: original,
		AgentWorkflow:       st.Ledger.HistorySnapshot(),
		ConversationActive:  st.ConversationActive,
		NeedsFollowup:       st.NeedsFollowup,
		Error:               st.Err,
	}

	st.AppendMessage(types.NewAssistantMessage(transformed))
	st.PushAgent(workflow.AgentPersonality)
	return nil
}

// degrade assembles the fixed fallback payload after a transformation
// failure.
func (n *PersonalityNode) degrade(st *workflow.State, original string, cause error) {
	st.Err = "personality agent: " + cause.Error()
	source := original
	if source == "" {
		source = missingOriginal
	}
	st.PersonalityOutput = &workflow.Payload{
		Response:            degradedPrefix,
		SourceAgentResponse: source,
		AgentWorkflow: []workflow.HistoryEntry{{
			AgentName: "error",
			Action:    "enhance_response",
			Error:     st.Err,
		}},
		ConversationActive: true,
		NeedsFollowup:      true,
	}
	st.PushAgent(workflow.AgentPersonality)
}
