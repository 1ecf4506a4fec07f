package workflow

import "strings"

// endIndicators are the natural-ending phrases that terminate a turn when
// they appear in the last message.
var endIndicators = []string{
	"goodbye",
	"thank you",
	"thanks",
	"have a good day",
	"that's all",
	"ticket has been created",
	"appointment has been scheduled",
}

// FollowupPrompt is injected as the next input when the turn loops back to
// the router.
const FollowupPrompt = "Do you have any other questions or is there anything else I can help you with?"

// ShouldContinue is the continuation policy, a pure function of state
// invoked after the personality step produced its payload. It returns
// RouteRouter to loop back to the classifier or RouteTerminal to end the
// turn.
func ShouldContinue(st *State) Route {
	if st.Err != "" {
		return RouteTerminal
	}

	last := strings.ToLower(st.LastMessageText())
	for _, indicator := range endIndicators {
		if strings.Contains(last, indicator) {
			return RouteTerminal
		}
	}

	if st.NeedsFollowup {
		return RouteRouter
	}
	return RouteTerminal
}

// ApplyContinuation evaluates the continuation policy and applies its
// state transitions: on loop-back it resets completion, injects the
// follow-up prompt, clears the outcome and the scratch pointers; on
// termination it clears the knowledge context and the support
// ticket/appointment pointers, preserving interaction history either way.
func ApplyContinuation(st *State) Route {
	decision := ShouldContinue(st)

	switch decision {
	case RouteRouter:
		st.IsComplete = false
		st.Input = FollowupPrompt
		st.Outcome = nil
		st.SupportContext.ResetPointers()
		st.CurrentAgent = AgentRouter
	case RouteTerminal:
		st.KnowledgeContext = make(map[string]string)
		st.SupportContext.ResetPointers()
	}
	return decision
}
