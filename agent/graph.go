package agent

import (
	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/tools"
	"github.com/BaSui01/agentswarm/workflow"
)

// GraphConfig carries the collaborators every step needs.
type GraphConfig struct {
	Provider llm.Provider
	Model    string
	Registry *tools.Registry
	// RequestSource supplies structured support request data; nil derives
	// it from the turn input.
	RequestSource RequestSource
	Logger        *zap.Logger
}

// BuildGraph assembles the fixed conversation topology:
//
//	router -(conditional)-> {knowledge, support, router, end}
//	knowledge -> personality
//	support -> personality
//	personality -(continuation)-> {router, end}
func BuildGraph(cfg GraphConfig) (*workflow.Graph, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	knowledge, err := NewKnowledgeNode(cfg.Provider, cfg.Model, cfg.Registry, logger)
	if err != nil {
		return nil, err
	}
	support, err := NewSupportNode(cfg.Provider, cfg.Model, cfg.Registry, cfg.RequestSource, logger)
	if err != nil {
		return nil, err
	}

	g := workflow.NewGraph()
	g.AddNode(NewRouterNode(cfg.Provider, cfg.Model, logger))
	g.AddNode(knowledge)
	g.AddNode(support)
	g.AddNode(NewPersonalityNode(cfg.Provider, cfg.Model, logger))

	g.AddConditionalEdge(string(workflow.AgentRouter), workflow.RouterEdge(logger))
	g.AddEdge(string(workflow.AgentKnowledge), string(workflow.AgentPersonality))
	g.AddEdge(string(workflow.AgentSupport), string(workflow.AgentPersonality))
	g.AddConditionalEdge(string(workflow.AgentPersonality), workflow.PersonalityEdge(logger))
	g.SetEntry(string(workflow.AgentRouter))

	return g, nil
}
