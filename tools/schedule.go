package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
)

// ScheduleToolName is the support worker's call scheduling action.
const ScheduleToolName = "schedule_support_call"

var callTypes = map[string]bool{"technical": true, "billing": true, "consultation": true, "general": true}

// Business window for support calls: weekdays, 09:00 to 17:00 local.
const (
	businessOpenHour  = 9
	businessCloseHour = 17
)

// ScheduleKind discriminates the scheduling result. Rejections are
// expected, frequent outcomes and are modeled as values, not errors.
type ScheduleKind int

const (
	// ScheduleOK means the call was booked.
	ScheduleOK ScheduleKind = iota
	// ScheduleInvalidFormat means the date or time failed to parse.
	ScheduleInvalidFormat
	// ScheduleOutsideWindow means the slot falls outside business hours
	// or on a weekend.
	ScheduleOutsideWindow
)

// ScheduleResult is the outcome of a scheduling attempt.
type ScheduleResult struct {
	Kind          ScheduleKind
	AppointmentID string
	Confirmation  string
	Reason        string
}

// Scheduler books support calls inside the business window.
type Scheduler struct {
	store  *Store
	logger *zap.Logger
}

// NewScheduler creates a call scheduler over the action store.
func NewScheduler(store *Store, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		logger: logger.With(zap.String("component", "scheduler")),
	}
}

// Schedule validates the slot and books the call. Format and window
// violations come back as non-OK results; only a storage failure is an
// error.
func (s *Scheduler) Schedule(date, timeOfDay, summary, callType string) (ScheduleResult, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ScheduleResult{
			Kind:   ScheduleInvalidFormat,
			Reason: "Date format (YYYY-MM-DD) and time format (HH:MM) required.",
		}, nil
	}
	slot, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return ScheduleResult{
			Kind:   ScheduleInvalidFormat,
			Reason: "Date format (YYYY-MM-DD) and time format (HH:MM) required.",
		}, nil
	}

	if slot.Hour() < businessOpenHour || slot.Hour() >= businessCloseHour {
		return ScheduleResult{
			Kind:   ScheduleOutsideWindow,
			Reason: "Time must be between 9:00 AM and 5:00 PM.",
		}, nil
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return ScheduleResult{
			Kind:   ScheduleOutsideWindow,
			Reason: "Appointments only on weekdays.",
		}, nil
	}

	ct := strings.ToLower(callType)
	if !callTypes[ct] {
		ct = "general"
	}

	appointmentID := fmt.Sprintf("APT-%s", strings.ToUpper(uuid.NewString()[:8]))
	appointment := &Appointment{
		AppointmentID: appointmentID,
		Date:          date,
		Time:          timeOfDay,
		IssueSummary:  summary,
		CallType:      ct,
		Status:        "scheduled",
		CreatedAt:     time.Now(),
	}
	if err := s.store.SaveAppointment(appointment); err != nil {
		return ScheduleResult{}, err
	}

	formattedDate := day.Format("Monday, January 02, 2006")
	formattedTime := slot.Format("03:04 PM")
	confirmation := fmt.Sprintf(
		"Support Call Scheduled Successfully!\n"+
			"Appointment ID: %s\n"+
			"Scheduled: %s at %s\n"+
			"Call Type: %s\n"+
			"Issue: %s\n"+
			"Note: Calls occur only during business hours (9 AM - 5 PM, Mon-Fri).",
		appointmentID, formattedDate, formattedTime, titleCase(ct), summary,
	)
	return ScheduleResult{
		Kind:          ScheduleOK,
		AppointmentID: appointmentID,
		Confirmation:  confirmation,
	}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ScheduleTool exposes the scheduler to the support worker. Rejections
// are surfaced verbatim as the tool's textual output so the worker
// forwards them to the caller instead of retrying.
type ScheduleTool struct {
	scheduler *Scheduler
}

// NewScheduleTool creates the scheduling action tool.
func NewScheduleTool(scheduler *Scheduler) *ScheduleTool {
	return &ScheduleTool{scheduler: scheduler}
}

func (t *ScheduleTool) Name() string { return ScheduleToolName }

func (t *ScheduleTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        ScheduleToolName,
		Description: "Schedule a support call. Required: preferred_date (YYYY-MM-DD), preferred_time (HH:MM), issue_summary. Calls are available Monday-Friday, 9 AM - 5 PM only.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"preferred_date": {"type": "string", "description": "Preferred call date, YYYY-MM-DD"},
				"preferred_time": {"type": "string", "description": "Preferred call time, HH:MM"},
				"issue_summary": {"type": "string", "description": "Brief issue summary"},
				"call_type": {"type": "string", "enum": ["technical", "billing", "consultation", "general"]}
			},
			"required": ["preferred_date", "preferred_time", "issue_summary"]
		}`),
	}
}

func (t *ScheduleTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	result, err := t.scheduler.Schedule(
		stringArg(args, "preferred_date"),
		stringArg(args, "preferred_time"),
		stringArg(args, "issue_summary"),
		stringArg(args, "call_type"),
	)
	if err != nil {
		return "", err
	}
	if result.Kind != ScheduleOK {
		return fmt.Sprintf("Error: %s", result.Reason), nil
	}
	return result.Confirmation, nil
}
