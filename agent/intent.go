package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Intent is the support worker's pre-classified handling mode.
type Intent string

const (
	IntentCreateTicket Intent = "create_ticket"
	IntentScheduleCall Intent = "schedule_call"
)

// callKeywords flag an input as a call-scheduling request. Anything else
// defaults to ticket creation.
var callKeywords = []string{
	"call", "schedule", "appointment", "meeting", "talk",
	"discuss", "phone", "speak", "consultation", "demo",
	"training", "walkthrough", "setup",
}

// ClassifyIntent determines the support handling mode by keyword match
// against the input.
func ClassifyIntent(input string) Intent {
	lowered := strings.ToLower(input)
	for _, kw := range callKeywords {
		if strings.Contains(lowered, kw) {
			return IntentScheduleCall
		}
	}
	return IntentCreateTicket
}

// RequestData is the structured customer request accompanying a support
// turn: the issue description for tickets, plus the three scheduling
// fields for calls.
type RequestData struct {
	IssueDescription string `json:"issue_description,omitempty"`
	IssueSummary     string `json:"issue_summary,omitempty"`
	PreferredDate    string `json:"preferred_date,omitempty"`
	PreferredTime    string `json:"preferred_time,omitempty"`
}

// MissingCallFields lists which of the three scheduling fields are
// absent, in the order they are reported to the customer.
func (d RequestData) MissingCallFields() []string {
	var missing []string
	if strings.TrimSpace(d.PreferredTime) == "" {
		missing = append(missing, "preferred time")
	}
	if strings.TrimSpace(d.IssueSummary) == "" {
		missing = append(missing, "issue summary")
	}
	if strings.TrimSpace(d.PreferredDate) == "" {
		missing = append(missing, "preferred date")
	}
	return missing
}

type requestEnvelope struct {
	RequestData RequestData `json:"request_data"`
}

// RequestSource supplies the structured request data for a support turn.
type RequestSource interface {
	Load(intent Intent) (RequestData, error)
}

// FileRequestSource reads request data from per-intent JSON files in a
// fixed directory (ticket.json, call.json), each wrapping a request_data
// object.
type FileRequestSource struct {
	Dir string
}

func (s FileRequestSource) Load(intent Intent) (RequestData, error) {
	name := "ticket.json"
	if intent == IntentScheduleCall {
		name = "call.json"
	}
	raw, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return RequestData{}, fmt.Errorf("loading customer data: %w", err)
	}
	var env requestEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return RequestData{}, fmt.Errorf("loading customer data: %w", err)
	}
	return env.RequestData, nil
}

// InputRequestSource derives request data from the turn input itself:
// the whole input becomes the issue description/summary and the
// scheduling fields are extracted by simple pattern scanning. Used when
// no structured request channel exists.
type InputRequestSource struct {
	Input string
}

func (s InputRequestSource) Load(intent Intent) (RequestData, error) {
	data := RequestData{
		IssueDescription: strings.TrimSpace(s.Input),
		IssueSummary:     strings.TrimSpace(s.Input),
	}
	data.PreferredDate = scanToken(s.Input, isDateToken)
	data.PreferredTime = scanToken(s.Input, isTimeToken)
	return data, nil
}

func scanToken(input string, match func(string) bool) string {
	for _, field := range strings.Fields(input) {
		token := strings.Trim(field, ".,;:!?()")
		if match(token) {
			return token
		}
	}
	return ""
}

// isDateToken matches YYYY-MM-DD shaped tokens.
func isDateToken(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// isTimeToken matches HH:MM shaped tokens.
func isTimeToken(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for i, c := range s {
		if i == 2 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
