package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLedger_RecordToolCall(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.RecordToolCall("create_ticket", map[string]any{"summary": "login broken"}, "Ticket TICK-20250526143000 created")
	l.RecordToolCall("create_ticket", map[string]any{"summary": "billing issue"}, "Ticket TICK-20250526143001 created")

	stats := l.ToolOutputs("create_ticket")
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.TotalUses)
	require.Len(t, stats.Calls, 2)
	assert.Equal(t, "Ticket TICK-20250526143000 created", stats.Calls[0].Output)
	assert.Equal(t, stats.Calls[1].Timestamp, stats.LastUsed)

	usage := l.ToolUsage()
	require.Len(t, usage, 2)
	assert.Equal(t, "create_ticket", usage[0].Tool)
	assert.Equal(t, stats.Calls[0].Output, usage[0].Output)
	assert.Equal(t, stats.Calls[0].Input, usage[0].Input)
}

func TestLedger_RecordProviderCall_NoUsageEntry(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.RecordProviderCall("router_llm", map[string]any{"input": "hi"}, "knowledge")

	stats := l.ToolOutputs("router_llm")
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.TotalUses)
	assert.Empty(t, l.ToolUsage(), "provider calls must not enter the usage trail")
}

func TestLedger_RecordToolError_NoUsageEntry(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.RecordToolError("schedule_call", map[string]any{"date": "bogus"}, "invalid date format")

	stats := l.ToolOutputs("schedule_call")
	require.NotNil(t, stats)
	assert.Zero(t, stats.TotalUses, "failed calls do not count as uses")
	require.Len(t, stats.Calls, 1)
	assert.Equal(t, "invalid date format", stats.Calls[0].Error)
	assert.Empty(t, l.ToolUsage())
}

func TestLedger_DropTools(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.RecordToolCall("create_ticket", map[string]any{"a": 1}, "ok")
	l.RecordToolCall("rag_search", map[string]any{"q": "fees"}, "result")

	l.DropTools("create_ticket", "schedule_call")

	assert.Nil(t, l.ToolOutputs("create_ticket"))
	assert.NotNil(t, l.ToolOutputs("rag_search"))
	// the flat usage trail is untouched by drops
	assert.Len(t, l.ToolUsage(), 2)
}

func TestLedger_HistorySnapshotIsCopy(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Record(HistoryEntry{AgentName: "router", Action: "start_routing"})

	snap := l.HistorySnapshot()
	require.Len(t, snap, 1)
	snap[0].Action = "mutated"

	assert.Equal(t, "start_routing", l.History()[0].Action)
}

func TestLedger_RecordStampsTimestamp(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Record(HistoryEntry{AgentName: "support", Action: "handle_request"})

	require.Equal(t, 1, l.HistoryLen())
	assert.False(t, l.History()[0].Timestamp.IsZero())
}

func TestLedger_OutputsSnapshot(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.RecordToolCall("rag_search", map[string]any{"query": "machines"}, "doc text")
	l.RecordProviderCall("router_llm", map[string]any{"input": "hi"}, "support")

	snap := l.OutputsSnapshot()
	require.Contains(t, snap, "rag_search")
	require.Contains(t, snap, "router_llm")

	entry, ok := snap["rag_search"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, entry["total_uses"])
}

// History grows monotonically and preserves insertion order no matter how
// records interleave with tool calls and drops.
func TestLedger_HistoryAppendOnlyProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		l := NewLedger()
		var actions []string

		n := rapid.IntRange(0, 50).Draw(rt, "ops")
		for i := 0; i < n; i++ {
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				action := rapid.StringMatching(`[a-z_]{1,12}`).Draw(rt, "action")
				l.Record(HistoryEntry{AgentName: "agent", Action: action})
				actions = append(actions, action)
			case 1:
				l.RecordToolCall("tool_a", map[string]any{"i": i}, "out")
			case 2:
				l.RecordToolError("tool_b", map[string]any{"i": i}, "boom")
			case 3:
				l.DropTools("tool_a", "tool_b")
			}

			history := l.History()
			require.Len(t, history, len(actions))
			for j, want := range actions {
				require.Equal(t, want, history[j].Action)
			}
		}
	})
}

// Every successful tool call adds exactly one usage entry whose input and
// output match the per-tool record appended at the same time.
func TestLedger_UsageMirrorsOutputsProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		l := NewLedger()
		tools := []string{"create_ticket", "schedule_call", "rag_search"}
		perTool := make(map[string]int)

		n := rapid.IntRange(1, 40).Draw(rt, "calls")
		for i := 0; i < n; i++ {
			tool := rapid.SampledFrom(tools).Draw(rt, "tool")
			out := rapid.StringMatching(`[a-zA-Z0-9 ]{0,20}`).Draw(rt, "output")
			l.RecordToolCall(tool, map[string]any{"seq": i}, out)
			perTool[tool]++
		}

		usage := l.ToolUsage()
		require.Len(t, usage, n)
		for tool, count := range perTool {
			stats := l.ToolOutputs(tool)
			require.NotNil(t, stats)
			require.Equal(t, count, stats.TotalUses)
			require.Len(t, stats.Calls, count)
		}
	})
}
