package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/tools"
	"github.com/BaSui01/agentswarm/types"
	"github.com/BaSui01/agentswarm/workflow"
)

const knowledgeApology = "I apologize, but I encountered an error while retrieving the information. Could you please rephrase your question?"

// KnowledgeNode answers informational queries with a bounded tool set of
// documentation retrieval and web search.
type KnowledgeNode struct {
	provider llm.Provider
	model    string
	tools    []tools.Tool
	logger   *zap.Logger
}

// NewKnowledgeNode creates the knowledge worker. The tool set is selected
// from the registry by name; an unknown name is a construction error, not
// a runtime surprise.
func NewKnowledgeNode(provider llm.Provider, model string, registry *tools.Registry, logger *zap.Logger) (*KnowledgeNode, error) {
	set, err := registry.Select(tools.RAGSearchToolName, tools.WebSearchToolName)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeNode{
		provider: provider,
		model:    model,
		tools:    set,
		logger:   logger.With(zap.String("component", "knowledge")),
	}, nil
}

func (n *KnowledgeNode) Name() string { return string(workflow.AgentKnowledge) }

func (n *KnowledgeNode) Run(ctx context.Context, st *workflow.State) error {
	st.PushAgent(workflow.AgentKnowledge)
	if st.KnowledgeContext == nil {
		st.KnowledgeContext = make(map[string]string)
	}
	st.Ledger.Record(workflow.HistoryEntry{
		AgentName: string(workflow.AgentKnowledge),
		Action:    "start_query",
		Input:     st.Input,
		ToolCalls: map[string]any{
			"status":          "started",
			"tools_available": tools.Names(n.tools),
		},
	})

	answer, err := toolLoop(ctx, n.provider, n.model, knowledgeInstructions, st, n.tools, st.Input, n.logger)
	if err != nil {
		n.logger.Warn("knowledge query failed", zap.Error(err))
		st.Err = fmt.Sprintf("knowledge agent: %v", err)
		st.AppendMessage(types.NewAssistantMessage(knowledgeApology))
		st.NeedsFollowup = true
		return nil
	}

	st.Ledger.Record(workflow.HistoryEntry{
		AgentName: string(workflow.AgentKnowledge),
		Action:    "complete_query",
		Input:     st.Input,
		Output:    answer,
		ToolCalls: st.Ledger.OutputsSnapshot(),
	})

	st.AppendMessage(types.NewAssistantMessage(answer))
	st.Outcome = &workflow.Outcome{
		Text: answer,
		Log:  fmt.Sprintf("tools used: %v", tools.Names(n.tools)),
	}
	st.Err = ""
	st.NeedsFollowup = true
	st.IsComplete = true
	st.ConversationActive = true
	return nil
}
