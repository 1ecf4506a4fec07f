package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/tools"
	"github.com/BaSui01/agentswarm/types"
	"github.com/BaSui01/agentswarm/workflow"
)

const supportApology = "I apologize, but I need some additional information. " +
	"Could you please provide:\n" +
	"1. A detailed description of your issue\n" +
	"2. Your preferred priority level (if applicable)\n" +
	"3. The best time to contact you (if you'd like a call)"

// engagementPhrases mark a reply as already inviting a follow-up.
var engagementPhrases = []string{
	"anything else", "other questions", "can i help",
	"need clarification", "is there anything",
}

// SupportNode handles tickets and call scheduling with a bounded action
// tool set.
type SupportNode struct {
	provider llm.Provider
	model    string
	tools    []tools.Tool
	source   RequestSource
	logger   *zap.Logger
}

// NewSupportNode creates the support worker. When source is nil the
// request data is derived from the turn input.
func NewSupportNode(provider llm.Provider, model string, registry *tools.Registry, source RequestSource, logger *zap.Logger) (*SupportNode, error) {
	set, err := registry.Select(tools.TicketToolName, tools.ScheduleToolName)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportNode{
		provider: provider,
		model:    model,
		tools:    set,
		source:   source,
		logger:   logger.With(zap.String("component", "support")),
	}, nil
}

func (n *SupportNode) Name() string { return string(workflow.AgentSupport) }

func (n *SupportNode) Run(ctx context.Context, st *workflow.State) error {
	st.PushAgent(workflow.AgentSupport)
	if st.SupportContext == nil {
		st.SupportContext = &workflow.SupportContext{}
	}
	st.Ledger.Record(workflow.HistoryEntry{
		AgentName: string(workflow.AgentSupport),
		Action:    "handle_request",
		Input:     st.Input,
		ToolCalls: map[string]any{
			"status":          "started",
			"tools_available": tools.Names(n.tools),
		},
	})

	intent := ClassifyIntent(st.Input)
	source := n.source
	if source == nil {
		source = InputRequestSource{Input: st.Input}
	}
	data, err := source.Load(intent)
	if err != nil {
		st.Err = err.Error()
		st.AppendMessage(types.NewAssistantMessage(fmt.Sprintf(
			"I apologize, but I encountered an issue: %v. Could you please provide your request details again?", err)))
		st.NeedsFollowup = true
		return nil
	}

	// Scheduling requires all three fields up front. Missing data
	// short-circuits without a completion call.
	if intent == IntentScheduleCall {
		if missing := data.MissingCallFields(); len(missing) > 0 {
			st.Err = fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", "))
			st.AppendMessage(types.NewAssistantMessage(fmt.Sprintf(
				"I need some additional information to schedule your support call. Please provide: %s.",
				strings.Join(missing, ", "))))
			st.NeedsFollowup = true
			return nil
		}
	}

	answer, err := toolLoop(ctx, n.provider, n.model, supportInstructions, st, n.tools, taskInput(intent, data), n.logger)
	if err != nil {
		n.failTurn(st, err)
		return nil
	}

	st.Ledger.Record(workflow.HistoryEntry{
		AgentName: string(workflow.AgentSupport),
		Action:    "complete_request",
		Input:     st.Input,
		Output:    answer,
		ToolCalls: st.Ledger.OutputsSnapshot(),
	})

	n.captureReferences(st)

	answer = ensureEngagement(answer)
	st.AppendMessage(types.NewAssistantMessage(answer))
	st.Outcome = &workflow.Outcome{
		Text: answer,
		Log:  fmt.Sprintf("intent: %s", intent),
	}
	st.Err = ""
	st.NeedsFollowup = true
	st.IsComplete = true
	return nil
}

// taskInput renders the structured request into the worker's task
// instruction.
func taskInput(intent Intent, data RequestData) string {
	if intent == IntentScheduleCall {
		return fmt.Sprintf(
			"Schedule a support call: date %s, time %s, issue summary %q, call type general.",
			data.PreferredDate, data.PreferredTime, data.IssueSummary)
	}
	return fmt.Sprintf(
		"Create a support ticket with:\n- issue_description: %s\n- priority: normal\n- category: general",
		data.IssueDescription)
}

// failTurn applies the support failure path: apology, error record, and
// removal of partial action records so a retried turn starts clean.
func (n *SupportNode) failTurn(st *workflow.State, err error) {
	msg := fmt.Sprintf("support agent: %v", err)
	n.logger.Warn("support request failed", zap.Error(err))
	st.Err = msg
	st.AppendMessage(types.NewAssistantMessage(supportApology))
	st.NeedsFollowup = true
	st.Ledger.Record(workflow.HistoryEntry{
		AgentName: string(workflow.AgentSupport),
		Action:    "error_handling",
		Error:     msg,
	})
	st.Ledger.DropTools(tools.TicketToolName, tools.ScheduleToolName)
	st.SupportContext.ResetPointers()
}

// captureReferences pulls created ticket/appointment identifiers out of
// the recorded tool outputs into the support scratch context.
func (n *SupportNode) captureReferences(st *workflow.State) {
	if id := lastReference(st, tools.TicketToolName, "TICK-"); id != "" {
		st.SupportContext.CurrentTicket = id
		st.SupportContext.InteractionHistory = append(st.SupportContext.InteractionHistory, id)
	}
	if id := lastReference(st, tools.ScheduleToolName, "APT-"); id != "" {
		st.SupportContext.CurrentAppointment = id
		st.SupportContext.InteractionHistory = append(st.SupportContext.InteractionHistory, id)
	}
}

func lastReference(st *workflow.State, tool, prefix string) string {
	stats := st.Ledger.ToolOutputs(tool)
	if stats == nil {
		return ""
	}
	for i := len(stats.Calls) - 1; i >= 0; i-- {
		if id := extractID(stats.Calls[i].Output, prefix); id != "" {
			return id
		}
	}
	return ""
}

// extractID finds the first prefix-marked identifier in text.
func extractID(text, prefix string) string {
	idx := strings.Index(text, prefix)
	if idx < 0 {
		return ""
	}
	end := idx + len(prefix)
	for end < len(text) && (isIDChar(text[end])) {
		end++
	}
	if end == idx+len(prefix) {
		return ""
	}
	return text[idx:end]
}

func isIDChar(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z'
}

// ensureEngagement appends the follow-up invitation when the reply lacks
// one.
func ensureEngagement(answer string) string {
	lowered := strings.ToLower(answer)
	for _, phrase := range engagementPhrases {
		if strings.Contains(lowered, phrase) {
			return answer
		}
	}
	return answer + "\n\nIs there anything else I can help you with?"
}
