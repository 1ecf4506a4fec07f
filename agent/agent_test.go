package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/tools"
	"github.com/BaSui01/agentswarm/types"
)

// scriptedProvider returns canned responses in order, failing once the
// script runs out.
type scriptedProvider struct {
	responses []*llm.ChatResponse
	errs      []error
	requests  []*llm.ChatRequest
}

func (p *scriptedProvider) Completion(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.requests = append(p.requests, req)
	i := len(p.requests) - 1
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i >= len(p.responses) {
		return nil, fmt.Errorf("scripted provider exhausted after %d calls", len(p.responses))
	}
	return p.responses[i], nil
}

func (p *scriptedProvider) HealthCheck(_ context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func textResponse(text string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model: "test",
		Choices: []llm.ChatChoice{{
			Message: types.NewAssistantMessage(text),
		}},
	}
}

func toolCallResponse(calls ...types.ToolCall) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model: "test",
		Choices: []llm.ChatChoice{{
			Message: types.Message{
				Role:      types.RoleAssistant,
				ToolCalls: calls,
			},
		}},
	}
}

func mustArgs(v map[string]any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}

// stubTool answers with a fixed output or error.
type stubTool struct {
	name   string
	output string
	err    error
	calls  []map[string]any
}

func (t *stubTool) Name() string { return t.name }

func (t *stubTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:       t.name,
		Parameters: json.RawMessage(`{"type":"object"}`),
	}
}

func (t *stubTool) Execute(_ context.Context, args map[string]any) (string, error) {
	t.calls = append(t.calls, args)
	if t.err != nil {
		return "", t.err
	}
	return t.output, nil
}

// testRegistry registers the four production tool names as stubs.
func testRegistry(stubs ...*stubTool) *tools.Registry {
	reg := tools.NewRegistry(zap.NewNop())
	registered := make(map[string]bool)
	for _, s := range stubs {
		if err := reg.Register(s); err != nil {
			panic(err)
		}
		registered[s.name] = true
	}
	for _, name := range []string{
		tools.RAGSearchToolName, tools.WebSearchToolName,
		tools.TicketToolName, tools.ScheduleToolName,
	} {
		if !registered[name] {
			if err := reg.Register(&stubTool{name: name, output: "ok"}); err != nil {
				panic(err)
			}
		}
	}
	return reg
}
