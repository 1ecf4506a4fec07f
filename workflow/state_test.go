package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentswarm/types"
)

func TestNewState_Defaults(t *testing.T) {
	t.Parallel()

	st := NewState("hello")

	assert.Equal(t, "hello", st.Input)
	assert.Empty(t, st.Messages)
	assert.Equal(t, AgentNone, st.CurrentAgent)
	assert.Empty(t, st.AgentStack)
	assert.Nil(t, st.Outcome)
	require.NotNil(t, st.Ledger)
	assert.Zero(t, st.Ledger.HistoryLen())
	assert.Empty(t, st.Err)
	assert.True(t, st.ConversationActive)
	assert.True(t, st.NeedsFollowup)
	assert.False(t, st.IsComplete)
	require.NotNil(t, st.SupportContext)
	assert.Empty(t, st.SupportContext.InteractionHistory)
	assert.Nil(t, st.PersonalityOutput)
}

func TestState_PushPopAgent(t *testing.T) {
	t.Parallel()

	st := NewState("x")

	st.PushAgent(AgentRouter)
	assert.Equal(t, AgentRouter, st.CurrentAgent)
	assert.Equal(t, []AgentName{AgentRouter}, st.AgentStack)

	st.PushAgent(AgentKnowledge)
	assert.Equal(t, AgentKnowledge, st.CurrentAgent)
	assert.Len(t, st.AgentStack, 2)

	st.PopAgent()
	assert.Equal(t, AgentRouter, st.CurrentAgent)
	assert.Len(t, st.AgentStack, 1)

	st.PopAgent()
	assert.Equal(t, AgentNone, st.CurrentAgent)
	assert.Empty(t, st.AgentStack)

	// popping an empty stack is a no-op
	st.PopAgent()
	assert.Equal(t, AgentNone, st.CurrentAgent)
}

func TestState_StackInvariant(t *testing.T) {
	t.Parallel()

	st := NewState("x")
	names := []AgentName{AgentRouter, AgentSupport, AgentPersonality, AgentRouter, AgentKnowledge}
	for _, n := range names {
		st.PushAgent(n)
		require.Equal(t, st.AgentStack[len(st.AgentStack)-1], st.CurrentAgent)
	}
	for len(st.AgentStack) > 0 {
		st.PopAgent()
		if len(st.AgentStack) > 0 {
			require.Equal(t, st.AgentStack[len(st.AgentStack)-1], st.CurrentAgent)
		}
	}
	assert.Equal(t, AgentNone, st.CurrentAgent)
}

func TestState_LastMessageText(t *testing.T) {
	t.Parallel()

	st := NewState("x")
	assert.Empty(t, st.LastMessageText())

	st.AppendMessage(types.NewUserMessage("first"))
	st.AppendMessage(types.NewAssistantMessage("second"))
	assert.Equal(t, "second", st.LastMessageText())
}

func TestSupportContext_ResetPointers(t *testing.T) {
	t.Parallel()

	ctx := &SupportContext{
		CurrentTicket:      "TICK-123",
		CurrentAppointment: "APT-456",
		InteractionHistory: []string{"created ticket TICK-123"},
	}
	ctx.ResetPointers()

	assert.Empty(t, ctx.CurrentTicket)
	assert.Empty(t, ctx.CurrentAppointment)
	assert.Equal(t, []string{"created ticket TICK-123"}, ctx.InteractionHistory)
}
