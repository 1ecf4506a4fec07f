package workflow

import (
	"github.com/BaSui01/agentswarm/types"
)

// AgentName identifies a step in the conversation graph.
type AgentName string

const (
	AgentRouter      AgentName = "router"
	AgentKnowledge   AgentName = "knowledge"
	AgentSupport     AgentName = "support"
	AgentPersonality AgentName = "personality"
	AgentNone        AgentName = ""
)

// Outcome is the last worker's final answer payload, consumed by the
// personality step and cleared on loop-back.
type Outcome struct {
	Text string
	Log  string
}

// SupportContext is scratch data scoped to one support-step activation.
// The interaction history list survives resets; the ticket and appointment
// pointers do not.
type SupportContext struct {
	CurrentTicket      string
	CurrentAppointment string
	InteractionHistory []string
}

// ResetPointers clears the ticket/appointment pointers while preserving
// the interaction history.
func (c *SupportContext) ResetPointers() {
	c.CurrentTicket = ""
	c.CurrentAppointment = ""
}

// Payload is the assembled turn result, the sole output consumed by the
// caller.
type Payload struct {
	Response            string         `json:"response"`
	SourceAgentResponse string         `json:"source_agent_response"`
	AgentWorkflow       []HistoryEntry `json:"agent_workflow"`
	ConversationActive  bool           `json:"conversation_active"`
	NeedsFollowup       bool           `json:"needs_followup"`
	Error               string         `json:"error,omitempty"`
}

// State is the single mutable record threaded through every step of a
// turn. It is created fresh at turn start, mutated exclusively by the step
// currently executing, and discarded after the executor extracts the
// payload.
type State struct {
	// Input is the current utterance to process. The continuation policy
	// overwrites it when injecting a follow-up prompt.
	Input string

	// Messages is the full transcript, append-only within a turn.
	Messages []types.Message

	// CurrentAgent and AgentStack form the call stack of steps entered.
	// Invariant: CurrentAgent equals the last stack element whenever the
	// stack is non-empty.
	CurrentAgent AgentName
	AgentStack   []AgentName

	// Next is the classifier's raw routing decision, consumed by the
	// executor's conditional edge.
	Next string

	// Outcome is the last worker's final answer, nil until a worker
	// succeeds and cleared on loop-back.
	Outcome *Outcome

	// Ledger holds the append-only audit structures: workflow history,
	// per-tool outputs and the flat tool usage trail.
	Ledger *Ledger

	// Err is set by any step on failure. Once set it propagates until the
	// next turn's initialization.
	Err string

	// Turn-continuation flags.
	ConversationActive bool
	NeedsFollowup      bool
	IsComplete         bool

	// Worker scratch contexts.
	KnowledgeContext map[string]string
	SupportContext   *SupportContext

	// PersonalityOutput is the assembled final payload.
	PersonalityOutput *Payload
}

// NewState creates a fresh turn state with all flags at their defaults.
func NewState(input string) *State {
	return &State{
		Input:              input,
		Messages:           make([]types.Message, 0, 8),
		CurrentAgent:       AgentNone,
		AgentStack:         make([]AgentName, 0, 8),
		Ledger:             NewLedger(),
		ConversationActive: true,
		NeedsFollowup:      true,
		KnowledgeContext:   make(map[string]string),
		SupportContext: &SupportContext{
			InteractionHistory: make([]string, 0, 4),
		},
	}
}

// PushAgent records entry into a step, maintaining the stack invariant.
func (s *State) PushAgent(name AgentName) {
	s.AgentStack = append(s.AgentStack, name)
	s.CurrentAgent = name
}

// PopAgent records completion of the top step and updates CurrentAgent to
// the new top, or AgentNone when the stack empties.
func (s *State) PopAgent() {
	if len(s.AgentStack) == 0 {
		return
	}
	s.AgentStack = s.AgentStack[:len(s.AgentStack)-1]
	if len(s.AgentStack) > 0 {
		s.CurrentAgent = s.AgentStack[len(s.AgentStack)-1]
	} else {
		s.CurrentAgent = AgentNone
	}
}

// AppendMessage appends a message to the transcript.
func (s *State) AppendMessage(msg types.Message) {
	s.Messages = append(s.Messages, msg)
}

// LastMessageText returns the content of the last message, or "".
func (s *State) LastMessageText() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].Content
}
