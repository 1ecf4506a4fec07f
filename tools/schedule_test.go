package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"pgregory.net/rapid"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	store, err := NewStore(db, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestScheduler_Schedule(t *testing.T) {
	t.Parallel()

	scheduler := NewScheduler(testStore(t), zap.NewNop())

	tests := []struct {
		name     string
		date     string
		time     string
		wantKind ScheduleKind
	}{
		{name: "weekday inside window", date: "2025-05-26", time: "14:30", wantKind: ScheduleOK},
		{name: "opening boundary", date: "2025-05-26", time: "09:00", wantKind: ScheduleOK},
		{name: "last bookable slot", date: "2025-05-26", time: "16:59", wantKind: ScheduleOK},
		{name: "before opening", date: "2025-05-26", time: "08:00", wantKind: ScheduleOutsideWindow},
		{name: "closing boundary rejected", date: "2025-05-26", time: "17:00", wantKind: ScheduleOutsideWindow},
		{name: "evening", date: "2025-05-26", time: "20:15", wantKind: ScheduleOutsideWindow},
		{name: "saturday", date: "2025-05-24", time: "10:00", wantKind: ScheduleOutsideWindow},
		{name: "sunday", date: "2025-05-25", time: "10:00", wantKind: ScheduleOutsideWindow},
		{name: "malformed date", date: "26/05/2025", time: "10:00", wantKind: ScheduleInvalidFormat},
		{name: "malformed time", date: "2025-05-26", time: "2pm", wantKind: ScheduleInvalidFormat},
		{name: "empty date", date: "", time: "10:00", wantKind: ScheduleInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := scheduler.Schedule(tt.date, tt.time, "fee discussion", "general")
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, result.Kind)
			if tt.wantKind == ScheduleOK {
				assert.True(t, strings.HasPrefix(result.AppointmentID, "APT-"))
				assert.Contains(t, result.Confirmation, result.AppointmentID)
			} else {
				assert.NotEmpty(t, result.Reason)
			}
		})
	}
}

func TestScheduler_PersistsAppointment(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	scheduler := NewScheduler(store, zap.NewNop())

	result, err := scheduler.Schedule("2025-05-26", "14:30", "onboarding help", "consultation")
	require.NoError(t, err)
	require.Equal(t, ScheduleOK, result.Kind)

	saved, err := store.AppointmentByID(result.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-26", saved.Date)
	assert.Equal(t, "14:30", saved.Time)
	assert.Equal(t, "onboarding help", saved.IssueSummary)
	assert.Equal(t, "consultation", saved.CallType)
	assert.Equal(t, "scheduled", saved.Status)
}

func TestScheduler_UnknownCallTypeNormalizes(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	scheduler := NewScheduler(store, zap.NewNop())

	result, err := scheduler.Schedule("2025-05-26", "10:00", "x", "emergency")
	require.NoError(t, err)
	require.Equal(t, ScheduleOK, result.Kind)

	saved, err := store.AppointmentByID(result.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, "general", saved.CallType)
}

func TestScheduleTool_Execute(t *testing.T) {
	t.Parallel()

	tool := NewScheduleTool(NewScheduler(testStore(t), zap.NewNop()))

	t.Run("booked", func(t *testing.T) {
		out, err := tool.Execute(context.Background(), map[string]any{
			"preferred_date": "2025-05-26",
			"preferred_time": "14:30",
			"issue_summary":  "fees",
		})
		require.NoError(t, err)
		assert.Contains(t, out, "Support Call Scheduled Successfully!")
		assert.Contains(t, out, "APT-")
	})

	t.Run("rejection is output text, not error", func(t *testing.T) {
		out, err := tool.Execute(context.Background(), map[string]any{
			"preferred_date": "2025-05-24",
			"preferred_time": "10:00",
			"issue_summary":  "fees",
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Error:"))
		assert.Contains(t, out, "weekdays")
	})
}

// Any hour inside 09:00-16:59 on a weekday books; any hour outside is
// rejected with an OutsideWindow result, never an error.
func TestScheduler_WindowProperty(t *testing.T) {
	t.Parallel()

	scheduler := NewScheduler(testStore(t), zap.NewNop())

	rapid.Check(t, func(rt *rapid.T) {
		dayOffset := rapid.IntRange(0, 27).Draw(rt, "dayOffset")
		hour := rapid.IntRange(0, 23).Draw(rt, "hour")
		minute := rapid.IntRange(0, 59).Draw(rt, "minute")

		day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayOffset)
		date := day.Format("2006-01-02")
		slot := fmt.Sprintf("%02d:%02d", hour, minute)

		result, err := scheduler.Schedule(date, slot, "property check", "general")
		require.NoError(t, err)

		weekend := day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
		insideHours := hour >= businessOpenHour && hour < businessCloseHour

		if insideHours && !weekend {
			assert.Equal(t, ScheduleOK, result.Kind)
			assert.NotEmpty(t, result.AppointmentID)
		} else {
			assert.Equal(t, ScheduleOutsideWindow, result.Kind)
			assert.Empty(t, result.AppointmentID)
		}
	})
}
