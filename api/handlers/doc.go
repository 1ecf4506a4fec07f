// Package handlers implements the HTTP handlers for the turn API: the
// chat endpoint driving the conversation graph, and the health probes.
package handlers
