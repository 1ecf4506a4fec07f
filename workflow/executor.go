package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxStepsPerTurn bounds the number of node executions in one turn. The
// continuation policy and the router's end handling terminate turns in
// practice; the cap is the backstop against a misbehaving classifier
// looping forever.
const maxStepsPerTurn = 24

// fallbackResponse is returned when the graph produced no usable payload.
const fallbackResponse = "An error occurred processing your request."

// StepObserver receives step and turn timings. The metrics collector
// implements it; a nil observer disables observation.
type StepObserver interface {
	ObserveStep(agent string, duration time.Duration, failed bool)
	ObserveTurn(duration time.Duration, failed bool)
}

// Executor owns the fixed conversation topology and drives one turn at a
// time from the entry node to a terminal state.
type Executor struct {
	graph    *Graph
	logger   *zap.Logger
	tracer   trace.Tracer
	observer StepObserver
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithObserver attaches a step observer.
func WithObserver(obs StepObserver) ExecutorOption {
	return func(e *Executor) { e.observer = obs }
}

// NewExecutor creates an executor over a validated graph.
func NewExecutor(graph *Graph, logger *zap.Logger, opts ...ExecutorOption) (*Executor, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph cannot be nil")
	}
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	e := &Executor{
		graph:  graph,
		logger: logger.With(zap.String("component", "executor")),
		tracer: otel.Tracer("agentswarm/workflow"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Invoke runs one full turn: it constructs a fresh state for the input,
// runs the graph to a terminal node, applies the cleanup pass, and returns
// a payload with every field populated even when the graph produced
// something malformed.
func (e *Executor) Invoke(ctx context.Context, input string) *Payload {
	st := NewState(input)
	turnStart := time.Now()

	current := e.graph.Entry()
	for steps := 0; current != End; steps++ {
		if steps >= maxStepsPerTurn {
			e.logger.Warn("turn exceeded step budget, forcing termination",
				zap.Int("steps", steps))
			st.Err = "turn exceeded step budget"
			break
		}

		node, ok := e.graph.Node(current)
		if !ok {
			e.logger.Error("node not found, terminating turn", zap.String("node", current))
			st.Err = fmt.Sprintf("node not found: %s", current)
			break
		}

		e.runNode(ctx, node, st)
		current = e.graph.NextAfter(node.Name(), st)
	}

	e.cleanup(st)
	payload := e.extractPayload(st)

	if e.observer != nil {
		e.observer.ObserveTurn(time.Since(turnStart), payload.Error != "")
	}
	e.logger.Info("turn completed",
		zap.Int("history_entries", st.Ledger.HistoryLen()),
		zap.Bool("conversation_active", payload.ConversationActive),
		zap.Duration("duration", time.Since(turnStart)),
	)
	return payload
}

// runNode executes one step. A step absorbs its own collaborator failures
// into the state; an error returned here is structural and recorded as
// such.
func (e *Executor) runNode(ctx context.Context, node Node, st *State) {
	ctx, span := e.tracer.Start(ctx, "step."+node.Name(),
		trace.WithAttributes(attribute.String("agent", node.Name())))
	defer span.End()

	start := time.Now()
	err := node.Run(ctx, st)
	duration := time.Since(start)

	if err != nil {
		e.logger.Error("step failed structurally",
			zap.String("agent", node.Name()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		st.Err = err.Error()
	} else {
		e.logger.Debug("step completed",
			zap.String("agent", node.Name()),
			zap.Duration("duration", duration),
		)
	}

	if e.observer != nil {
		e.observer.ObserveStep(node.Name(), duration, err != nil || st.Err != "")
	}
}

// RouterEdge builds the conditional edge out of the classifier. Empty
// decisions default to support with a warning; end markers terminate;
// anything unrecognized also defaults to support.
func RouterEdge(logger *zap.Logger) EdgeFunc {
	return func(st *State) string {
		if st.Next == "" {
			logger.Warn("no next agent specified, routing to support by default")
			st.Next = string(RouteSupport)
			return string(RouteSupport)
		}

		route, recognized := NormalizeRoute(st.Next)
		if !recognized {
			logger.Warn("invalid routing decision, defaulting to support",
				zap.String("decision", st.Next))
			st.Next = string(RouteSupport)
			return string(RouteSupport)
		}
		if route == RouteTerminal {
			return End
		}
		return string(route)
	}
}

// PersonalityEdge builds the conditional edge out of the personality step,
// applying the continuation policy.
func PersonalityEdge(logger *zap.Logger) EdgeFunc {
	return func(st *State) string {
		if st.Err != "" {
			logger.Debug("ending turn due to error state")
			return End
		}

		decision := ApplyContinuation(st)
		logger.Debug("continuation decision", zap.String("decision", string(decision)))
		if decision == RouteRouter {
			return string(AgentRouter)
		}
		return End
	}
}

// cleanup is the post-run pass: pop the completed step off the agent
// stack, drop scratch contexts for completed turns, and force the
// conversation inactive when an error is set or no follow-up is pending.
func (e *Executor) cleanup(st *State) {
	st.PopAgent()

	if st.IsComplete {
		st.KnowledgeContext = make(map[string]string)
		st.SupportContext = &SupportContext{
			InteractionHistory: make([]string, 0, 4),
		}
	}

	if st.Err != "" {
		st.ConversationActive = false
		st.NeedsFollowup = false
	} else if !st.NeedsFollowup {
		st.ConversationActive = false
	}
}

// extractPayload returns the personality output with every required field
// populated, or a synthesized fallback when the graph produced none.
func (e *Executor) extractPayload(st *State) *Payload {
	payload := st.PersonalityOutput
	if payload == nil {
		e.logger.Warn("turn produced no payload, synthesizing fallback")
		errText := st.Err
		if errText == "" {
			errText = "Invalid result type"
		}
		return &Payload{
			Response:            fallbackResponse,
			SourceAgentResponse: "",
			AgentWorkflow:       st.Ledger.HistorySnapshot(),
			ConversationActive:  false,
			NeedsFollowup:       false,
			Error:               errText,
		}
	}

	if payload.Response == "" {
		payload.Response = fallbackResponse
	}
	if payload.AgentWorkflow == nil {
		payload.AgentWorkflow = st.Ledger.HistorySnapshot()
	}
	payload.ConversationActive = st.ConversationActive
	payload.NeedsFollowup = st.NeedsFollowup
	if payload.Error == "" {
		payload.Error = st.Err
	}
	return payload
}
