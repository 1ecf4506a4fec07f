// Package tools implements the bounded tool sets the workers may invoke:
// the knowledge lookups (rag_search, web_search) and the support actions
// (create_support_ticket, schedule_support_call), plus the registry that
// binds them behind each worker's declared set.
package tools

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
)

// Tool is an executable tool exposed to a worker. Execute returns the
// tool's textual output; expected domain failures (a rejected schedule, a
// failed lookup) come back as output text, not as an error. An error
// return means the call itself could not be performed.
type Tool interface {
	// Name returns the tool's unique name.
	Name() string
	// Schema returns the JSON schema advertised to the completion service.
	Schema() llm.ToolSchema
	// Execute runs the tool with decoded arguments.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Registry holds registered tools by name.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.With(zap.String("component", "tool_registry")),
	}
}

// Register adds a tool. Registering a duplicate name is an error.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	r.logger.Info("tool registered", zap.String("name", name))
	return nil
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Select returns the named subset of tools, in order. Unknown names are
// an error: a worker must never reference a tool outside the registry.
func (r *Registry) Select(names ...string) ([]Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		tool, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("tool %s not found", name)
		}
		out = append(out, tool)
	}
	return out, nil
}

// Schemas returns the schemas for a tool set.
func Schemas(set []Tool) []llm.ToolSchema {
	out := make([]llm.ToolSchema, 0, len(set))
	for _, t := range set {
		out = append(out, t.Schema())
	}
	return out
}

// Names returns the names of a tool set.
func Names(set []Tool) []string {
	out := make([]string, 0, len(set))
	for _, t := range set {
		out = append(out, t.Name())
	}
	return out
}
