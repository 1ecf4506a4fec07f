package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/types"
	"github.com/BaSui01/agentswarm/workflow"
)

func TestPersonalityNode_TransformsOutcome(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{responses: []*llm.ChatResponse{
		textResponse("Hey there! Fees start at just 2.5% per transaction. 🎉"),
	}}
	node := NewPersonalityNode(provider, "test", zap.NewNop())

	st := workflow.NewState("what are the fees?")
	st.Outcome = &workflow.Outcome{Text: "Fees start at 2.5% per transaction."}
	require.NoError(t, node.Run(context.Background(), st))

	require.NotNil(t, st.PersonalityOutput)
	payload := st.PersonalityOutput
	assert.Equal(t, "Hey there! Fees start at just 2.5% per transaction. 🎉", payload.Response)
	assert.Equal(t, "Fees start at 2.5% per transaction.", payload.SourceAgentResponse)
	assert.Empty(t, payload.Error)
	assert.Equal(t, payload.Response, st.LastMessageText())

	// transformation is audited like the classifier's call
	stats := st.Ledger.ToolOutputs(personalityLLMKey)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.TotalUses)
	assert.Empty(t, st.Ledger.ToolUsage())

	history := st.Ledger.History()
	require.Len(t, history, 1)
	assert.Equal(t, "enhance_response", history[0].Action)
}

func TestPersonalityNode_FallsBackToTranscript(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{responses: []*llm.ChatResponse{
		textResponse("Friendly version of the transcript answer."),
	}}
	node := NewPersonalityNode(provider, "test", zap.NewNop())

	st := workflow.NewState("x")
	st.AppendMessage(types.NewAssistantMessage("Transcript answer."))
	require.NoError(t, node.Run(context.Background(), st))

	require.NotNil(t, st.PersonalityOutput)
	assert.Equal(t, "Transcript answer.", st.PersonalityOutput.SourceAgentResponse)
	require.Len(t, provider.requests, 1)
	assert.Equal(t, "Transcript answer.", provider.requests[0].Messages[1].Content)
}

func TestPersonalityNode_EmptyOriginalSkipsCompletion(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{}
	node := NewPersonalityNode(provider, "test", zap.NewNop())

	st := workflow.NewState("x")
	require.NoError(t, node.Run(context.Background(), st))

	assert.Empty(t, provider.requests)
	require.NotNil(t, st.PersonalityOutput)
	assert.Empty(t, st.PersonalityOutput.Response)
}

func TestPersonalityNode_DegradesOnProviderFailure(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{errs: []error{fmt.Errorf("upstream timeout")}}
	node := NewPersonalityNode(provider, "test", zap.NewNop())

	st := workflow.NewState("x")
	st.Outcome = &workflow.Outcome{Text: "The direct answer."}
	require.NoError(t, node.Run(context.Background(), st), "the formatter never fails the turn")

	assert.Contains(t, st.Err, "personality agent:")
	require.NotNil(t, st.PersonalityOutput)
	payload := st.PersonalityOutput
	assert.Equal(t, degradedPrefix, payload.Response)
	assert.Equal(t, "The direct answer.", payload.SourceAgentResponse)
	require.Len(t, payload.AgentWorkflow, 1)
	assert.Equal(t, "error", payload.AgentWorkflow[0].AgentName)
	assert.True(t, payload.ConversationActive)
	assert.True(t, payload.NeedsFollowup)
}

func TestPersonalityNode_DegradeKeepsTranscriptOriginal(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{errs: []error{fmt.Errorf("boom")}}
	node := NewPersonalityNode(provider, "test", zap.NewNop())

	st := workflow.NewState("x")
	st.AppendMessage(types.NewUserMessage("hi"))
	st.AppendMessage(types.NewAssistantMessage("original"))
	require.NoError(t, node.Run(context.Background(), st))

	require.NotNil(t, st.PersonalityOutput)
	assert.Equal(t, "original", st.PersonalityOutput.SourceAgentResponse)
	assert.Equal(t, degradedPrefix, st.PersonalityOutput.Response)
}
