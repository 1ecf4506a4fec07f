package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Intent
	}{
		{name: "plain issue", input: "my card machine is not working", want: IntentCreateTicket},
		{name: "call request", input: "I'd like to schedule a call about fees", want: IntentScheduleCall},
		{name: "appointment", input: "can we book an appointment?", want: IntentScheduleCall},
		{name: "phone", input: "please phone me tomorrow", want: IntentScheduleCall},
		{name: "demo", input: "I want a demo of the product", want: IntentScheduleCall},
		{name: "training", input: "we need training for the new staff", want: IntentScheduleCall},
		{name: "uppercase keyword", input: "SCHEDULE something for me", want: IntentScheduleCall},
		{name: "empty input", input: "", want: IntentCreateTicket},
		{name: "billing complaint", input: "I was charged twice this month", want: IntentCreateTicket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.input))
		})
	}
}

func TestRequestData_MissingCallFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data RequestData
		want []string
	}{
		{
			name: "all present",
			data: RequestData{IssueSummary: "fees", PreferredDate: "2025-05-26", PreferredTime: "14:30"},
			want: nil,
		},
		{
			name: "all missing, reported in fixed order",
			data: RequestData{},
			want: []string{"preferred time", "issue summary", "preferred date"},
		},
		{
			name: "whitespace counts as missing",
			data: RequestData{IssueSummary: "   ", PreferredDate: "2025-05-26", PreferredTime: "14:30"},
			want: []string{"issue summary"},
		},
		{
			name: "only date missing",
			data: RequestData{IssueSummary: "fees", PreferredTime: "14:30"},
			want: []string{"preferred date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.data.MissingCallFields())
		})
	}
}

func TestFileRequestSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ticket.json"), []byte(`{
		"request_data": {"issue_description": "card machine offline"}
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "call.json"), []byte(`{
		"request_data": {
			"issue_summary": "onboarding help",
			"preferred_date": "2025-05-26",
			"preferred_time": "14:30"
		}
	}`), 0o644))

	source := FileRequestSource{Dir: dir}

	ticket, err := source.Load(IntentCreateTicket)
	require.NoError(t, err)
	assert.Equal(t, "card machine offline", ticket.IssueDescription)

	call, err := source.Load(IntentScheduleCall)
	require.NoError(t, err)
	assert.Equal(t, "onboarding help", call.IssueSummary)
	assert.Equal(t, "2025-05-26", call.PreferredDate)
	assert.Equal(t, "14:30", call.PreferredTime)
}

func TestFileRequestSource_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		source := FileRequestSource{Dir: t.TempDir()}
		_, err := source.Load(IntentCreateTicket)
		assert.ErrorContains(t, err, "loading customer data")
	})

	t.Run("malformed json", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "call.json"), []byte("{"), 0o644))
		_, err := FileRequestSource{Dir: dir}.Load(IntentScheduleCall)
		assert.ErrorContains(t, err, "loading customer data")
	})
}

func TestInputRequestSource(t *testing.T) {
	t.Parallel()

	t.Run("extracts date and time tokens", func(t *testing.T) {
		source := InputRequestSource{Input: "schedule a call on 2025-05-26 at 14:30 about fees."}
		data, err := source.Load(IntentScheduleCall)
		require.NoError(t, err)
		assert.Equal(t, "2025-05-26", data.PreferredDate)
		assert.Equal(t, "14:30", data.PreferredTime)
		assert.NotEmpty(t, data.IssueSummary)
	})

	t.Run("trailing punctuation stripped", func(t *testing.T) {
		source := InputRequestSource{Input: "call me at 09:15."}
		data, err := source.Load(IntentScheduleCall)
		require.NoError(t, err)
		assert.Equal(t, "09:15", data.PreferredTime)
	})

	t.Run("no tokens leaves fields empty", func(t *testing.T) {
		source := InputRequestSource{Input: "schedule a call sometime soon"}
		data, err := source.Load(IntentScheduleCall)
		require.NoError(t, err)
		assert.Empty(t, data.PreferredDate)
		assert.Empty(t, data.PreferredTime)
	})
}
