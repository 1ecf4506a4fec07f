package workflow

import "strings"

// Route is the closed set of routing destinations. Classifier output is
// free text; NormalizeRoute maps it onto this set so the rest of the
// engine never compares raw strings.
type Route string

const (
	RouteKnowledge Route = "knowledge"
	RouteSupport   Route = "support"
	RouteRouter    Route = "router"
	RouteTerminal  Route = End
)

// End is the distinguished terminal marker ending the turn.
const End = "__end__"

// NormalizeRoute maps a raw routing decision onto the closed Route set.
// Empty or unrecognized values default to the support route: the engine
// fails open to the most capable generic handler, never closed to silence.
// The ok result reports whether the value was recognized as-is.
func NormalizeRoute(raw string) (Route, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "knowledge":
		return RouteKnowledge, true
	case "support":
		return RouteSupport, true
	case "router":
		return RouteRouter, true
	case "end", End, "terminal":
		return RouteTerminal, true
	default:
		return RouteSupport, false
	}
}
