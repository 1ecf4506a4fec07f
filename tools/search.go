package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/rag"
)

// Knowledge tool names.
const (
	RAGSearchToolName = "rag_search"
	WebSearchToolName = "web_search"
)

// RAGSearchTool answers queries from the documentation index. Retrieval
// failures are returned as the tool's textual output so the worker can
// surface them instead of aborting.
type RAGSearchTool struct {
	retriever *rag.Retriever
	logger    *zap.Logger
}

// NewRAGSearchTool creates the documentation lookup tool.
func NewRAGSearchTool(retriever *rag.Retriever, logger *zap.Logger) *RAGSearchTool {
	return &RAGSearchTool{
		retriever: retriever,
		logger:    logger.With(zap.String("component", "rag_search_tool")),
	}
}

func (t *RAGSearchTool) Name() string { return RAGSearchToolName }

func (t *RAGSearchTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        RAGSearchToolName,
		Description: "Find information from the official product documentation. Use this FIRST for product-specific questions.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "The search query"}
			},
			"required": ["query"]
		}`),
	}
}

func (t *RAGSearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is required")
	}

	result, err := t.retriever.Retrieve(ctx, query)
	if err != nil {
		t.logger.Warn("rag search failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("RAG search error: %v", err), nil
	}
	return result, nil
}

// WebSearchProvider is the boundary for general-purpose web lookups.
type WebSearchProvider interface {
	// Search performs a web search and returns a digest of the results.
	Search(ctx context.Context, query string, maxResults int) (string, error)
	// Name returns the backend name.
	Name() string
}

// WebSearchTool performs general-purpose lookups through a pluggable
// backend.
type WebSearchTool struct {
	provider   WebSearchProvider
	maxResults int
	logger     *zap.Logger
}

// NewWebSearchTool creates the general lookup tool.
func NewWebSearchTool(provider WebSearchProvider, maxResults int, logger *zap.Logger) *WebSearchTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebSearchTool{
		provider:   provider,
		maxResults: maxResults,
		logger:     logger.With(zap.String("component", "web_search_tool")),
	}
}

func (t *WebSearchTool) Name() string { return WebSearchToolName }

func (t *WebSearchTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        WebSearchToolName,
		Description: "Find general information from the web. Use for complementary information not covered by the documentation.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "The search query"}
			},
			"required": ["query"]
		}`),
	}
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is required")
	}

	result, err := t.provider.Search(ctx, query, t.maxResults)
	if err != nil {
		t.logger.Warn("web search failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("Web search error: %v", err), nil
	}
	return result, nil
}
