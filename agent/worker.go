package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/tools"
	"github.com/BaSui01/agentswarm/types"
	"github.com/BaSui01/agentswarm/workflow"
)

// maxToolIterations bounds the completion/tool loop per worker
// activation.
const maxToolIterations = 10

// toolLoop drives the "completion -> tools -> completion" cycle until the
// model returns a final text answer. The worker's declared tool set is the
// whole universe: a call naming anything outside it fails that call, not
// the loop. Every executed tool is recorded into the state ledger.
func toolLoop(ctx context.Context, provider llm.Provider, model string, instructions string, st *workflow.State, set []tools.Tool, input string, logger *zap.Logger) (string, error) {
	byName := make(map[string]tools.Tool, len(set))
	for _, t := range set {
		byName[t.Name()] = t
	}

	messages := make([]types.Message, 0, len(st.Messages)+2)
	messages = append(messages, types.NewSystemMessage(instructions))
	messages = append(messages, st.Messages...)
	messages = append(messages, types.NewUserMessage(input))

	req := &llm.ChatRequest{
		Model:      model,
		Tools:      tools.Schemas(set),
		ToolChoice: "auto",
	}

	for i := 0; i < maxToolIterations; i++ {
		callReq := *req
		callReq.Messages = messages
		resp, err := provider.Completion(ctx, &callReq)
		if err != nil {
			return "", fmt.Errorf("completion failed at iteration %d: %w", i+1, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("completion returned no choices")
		}

		choice := resp.Choices[0]
		calls := choice.Message.ToolCalls
		if len(calls) == 0 {
			return choice.Message.Content, nil
		}

		messages = append(messages, choice.Message)
		for _, call := range calls {
			output := runToolCall(ctx, byName, call, st, logger)
			messages = append(messages, types.NewToolMessage(call.ID, call.Name, output))
		}
	}

	return "", fmt.Errorf("tool loop exceeded %d iterations", maxToolIterations)
}

// runToolCall executes one model-elected tool call and records it. Failures
// come back as observation text so the model can react to them.
func runToolCall(ctx context.Context, byName map[string]tools.Tool, call types.ToolCall, st *workflow.State, logger *zap.Logger) string {
	args := map[string]any{}
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			msg := fmt.Sprintf("Error: invalid arguments for %s: %v", call.Name, err)
			st.Ledger.RecordToolError(call.Name, map[string]any{"raw": string(call.Arguments)}, msg)
			return msg
		}
	}

	tool, ok := byName[call.Name]
	if !ok {
		msg := fmt.Sprintf("Error: tool %s is not available", call.Name)
		logger.Warn("model requested undeclared tool", zap.String("tool", call.Name))
		st.Ledger.RecordToolError(call.Name, args, msg)
		return msg
	}

	output, err := tool.Execute(ctx, args)
	if err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		logger.Warn("tool execution failed",
			zap.String("tool", call.Name), zap.Error(err))
		st.Ledger.RecordToolError(call.Name, args, msg)
		return msg
	}

	st.Ledger.RecordToolCall(call.Name, args, output)
	return output
}
