// Package workflow implements the conversation orchestration engine: the
// shared per-turn state record, the append-only audit ledger, the fixed
// directed graph of agent steps with conditional routing edges, and the
// turn executor with its continuation policy.
//
// A single State value is threaded through every step of a turn. The
// executor owns it exclusively: no two steps ever observe it concurrently,
// and it is discarded once the final payload has been extracted.
package workflow
