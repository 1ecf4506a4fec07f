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

// TicketToolName is the support worker's ticket action.
const TicketToolName = "create_support_ticket"

var ticketPriorities = map[string]bool{"low": true, "normal": true, "high": true, "urgent": true}
var ticketCategories = map[string]bool{"billing": true, "technical": true, "account": true, "general": true, "refund": true}

// TicketTool creates support tickets through the action store.
type TicketTool struct {
	store  *Store
	logger *zap.Logger
}

// NewTicketTool creates the ticket action tool.
func NewTicketTool(store *Store, logger *zap.Logger) *TicketTool {
	return &TicketTool{
		store:  store,
		logger: logger.With(zap.String("component", "ticket_tool")),
	}
}

func (t *TicketTool) Name() string { return TicketToolName }

func (t *TicketTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        TicketToolName,
		Description: "Create a support ticket for customer issues. Required: issue_description. Optional: priority (low/normal/high/urgent), category (billing/technical/account/general/refund).",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"issue_description": {"type": "string", "description": "Description of the issue"},
				"priority": {"type": "string", "enum": ["low", "normal", "high", "urgent"]},
				"category": {"type": "string", "enum": ["billing", "technical", "account", "general", "refund"]}
			},
			"required": ["issue_description"]
		}`),
	}
}

// Execute creates a ticket with an auto-generated identifier. Unknown
// priority or category values normalize to the defaults rather than
// failing.
func (t *TicketTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	description, _ := args["issue_description"].(string)
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("issue_description is required")
	}

	priority := strings.ToLower(stringArg(args, "priority"))
	if !ticketPriorities[priority] {
		priority = "normal"
	}
	category := strings.ToLower(stringArg(args, "category"))
	if !ticketCategories[category] {
		category = "general"
	}

	ticketID := fmt.Sprintf("TICK-%s", strings.ToUpper(uuid.NewString()[:8]))
	ticket := &Ticket{
		TicketID:    ticketID,
		Description: description,
		Priority:    priority,
		Category:    category,
		CreatedAt:   time.Now(),
	}
	if err := t.store.SaveTicket(ticket); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Support Ticket Created Successfully!\n"+
			"Ticket ID: %s\n"+
			"Issue Description: %s\n"+
			"Priority: %s | Category: %s\n"+
			"Expected Response Time:\n"+
			"- Low: 24-48 hrs | Normal: 12-24 hrs | High: 4-8 hrs | Urgent: 1-2 hrs",
		ticketID, description, priority, category,
	), nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
