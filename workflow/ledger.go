package workflow

import (
	"time"
)

// ToolCallRecord is one recorded external call: input, output, timestamp.
type ToolCallRecord struct {
	Input     map[string]any `json:"input"`
	Output    string         `json:"output"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ToolStats aggregates the calls recorded for one tool.
type ToolStats struct {
	Calls     []ToolCallRecord `json:"calls"`
	TotalUses int              `json:"total_uses"`
	LastUsed  time.Time        `json:"last_used"`
}

// ToolUsageRecord is one entry in the flat, ordered tool usage trail.
type ToolUsageRecord struct {
	Tool      string         `json:"tool"`
	Input     map[string]any `json:"input"`
	Output    string         `json:"output"`
	Timestamp time.Time      `json:"timestamp"`
}

// HistoryEntry is one step in the workflow audit trail.
type HistoryEntry struct {
	AgentName string         `json:"agent_name"`
	Action    string         `json:"action"`
	Input     string         `json:"input,omitempty"`
	Output    string         `json:"output,omitempty"`
	ToolCalls map[string]any `json:"tool_calls,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Ledger centralizes the turn's append-only audit structures so the
// ordering and completeness invariants are enforced in one place instead
// of duplicated per step. History is never truncated within a turn.
type Ledger struct {
	toolOutputs map[string]*ToolStats
	toolUsage   []ToolUsageRecord
	history     []HistoryEntry
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		toolOutputs: make(map[string]*ToolStats),
		toolUsage:   make([]ToolUsageRecord, 0, 8),
		history:     make([]HistoryEntry, 0, 8),
	}
}

// RecordToolCall appends one entry to the named tool's output list and one
// to the flat usage trail, with matching input and output. Every
// successful external call goes through here exactly once.
func (l *Ledger) RecordToolCall(tool string, input map[string]any, output string) {
	now := time.Now()
	stats := l.toolOutputs[tool]
	if stats == nil {
		stats = &ToolStats{Calls: make([]ToolCallRecord, 0, 2)}
		l.toolOutputs[tool] = stats
	}
	stats.Calls = append(stats.Calls, ToolCallRecord{
		Input:     input,
		Output:    output,
		Timestamp: now,
	})
	stats.TotalUses++
	stats.LastUsed = now

	l.toolUsage = append(l.toolUsage, ToolUsageRecord{
		Tool:      tool,
		Input:     input,
		Output:    output,
		Timestamp: now,
	})
}

// RecordProviderCall appends a completion-service call to the named
// pseudo-tool's output list, updating its use counter and last-used
// timestamp. Provider calls are audited but do not enter the usage trail,
// which records tool work only.
func (l *Ledger) RecordProviderCall(tool string, input map[string]any, output string) {
	now := time.Now()
	stats := l.toolOutputs[tool]
	if stats == nil {
		stats = &ToolStats{Calls: make([]ToolCallRecord, 0, 2)}
		l.toolOutputs[tool] = stats
	}
	stats.Calls = append(stats.Calls, ToolCallRecord{
		Input:     input,
		Output:    output,
		Timestamp: now,
	})
	stats.TotalUses++
	stats.LastUsed = now
}

// RecordToolError appends a failed call to the tool's output list only.
// Failed calls carry no usage entry: the usage trail records work that
// actually happened.
func (l *Ledger) RecordToolError(tool string, input map[string]any, errMsg string) {
	now := time.Now()
	stats := l.toolOutputs[tool]
	if stats == nil {
		stats = &ToolStats{Calls: make([]ToolCallRecord, 0, 2)}
		l.toolOutputs[tool] = stats
	}
	stats.Calls = append(stats.Calls, ToolCallRecord{
		Input:     input,
		Error:     errMsg,
		Timestamp: now,
	})
}

// Record appends a history entry, stamping the timestamp.
func (l *Ledger) Record(entry HistoryEntry) {
	entry.Timestamp = time.Now()
	l.history = append(l.history, entry)
}

// DropTools removes all recorded outputs for the named tools. Used by the
// support step to discard partial action records on failure.
func (l *Ledger) DropTools(names ...string) {
	for _, name := range names {
		delete(l.toolOutputs, name)
	}
}

// ToolOutputs returns the stats recorded for a tool, or nil.
func (l *Ledger) ToolOutputs(tool string) *ToolStats {
	return l.toolOutputs[tool]
}

// ToolUsage returns the flat usage trail.
func (l *Ledger) ToolUsage() []ToolUsageRecord {
	return l.toolUsage
}

// History returns the workflow history. Callers must treat it as
// read-only.
func (l *Ledger) History() []HistoryEntry {
	return l.history
}

// HistoryLen returns the number of history entries.
func (l *Ledger) HistoryLen() int {
	return len(l.history)
}

// HistorySnapshot returns a copy of the history safe to hand to callers.
func (l *Ledger) HistorySnapshot() []HistoryEntry {
	out := make([]HistoryEntry, len(l.history))
	copy(out, l.history)
	return out
}

// OutputsSnapshot returns a shallow snapshot of all tool outputs keyed by
// tool name, for embedding into audit entries.
func (l *Ledger) OutputsSnapshot() map[string]any {
	out := make(map[string]any, len(l.toolOutputs))
	for name, stats := range l.toolOutputs {
		out[name] = map[string]any{
			"calls":      stats.Calls,
			"total_uses": stats.TotalUses,
			"last_used":  stats.LastUsed,
		}
	}
	return out
}
