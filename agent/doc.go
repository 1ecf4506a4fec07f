// Package agent implements the four conversation steps: the router
// classifier, the knowledge and support workers, and the personality
// formatter, plus the fixed graph topology connecting them.
//
// Each step absorbs its own collaborator failures into the shared turn
// state; a step never aborts the turn.
package agent
