// ABOUTME: Scheduled interaction MCP tool handlers
// ABOUTME: Implements schedule_interaction and list_interactions tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type InteractionHandlers struct {
	db *sql.DB
}

func NewInteractionHandlers(database *sql.DB) *InteractionHandlers {
	return &InteractionHandlers{db: database}
}

type ScheduleInteractionInput struct {
	ClientID    string `json:"client_id" jsonschema:"Client ID (required)"`
	Channel     string `json:"channel" jsonschema:"Delivery channel: EMAIL, WHATSAPP, or VOICE (required)"`
	Content     string `json:"content" jsonschema:"Message content (required)"`
	Subject     string `json:"subject,omitempty" jsonschema:"Email subject (EMAIL channel only)"`
	Template    string `json:"template,omitempty" jsonschema:"Template label, e.g. birthday or payment_due"`
	ScheduledAt string `json:"scheduled_at,omitempty" jsonschema:"RFC3339 delivery time (default: now)"`
}

type InteractionOutput struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	Channel     string `json:"channel"`
	Template    string `json:"template,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Content     string `json:"content"`
	ScheduledAt string `json:"scheduled_at"`
	Status      string `json:"status"`
	ExternalID  string `json:"external_id,omitempty"`
	Error       string `json:"error,omitempty"`
	AttemptedAt string `json:"attempted_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func (h *InteractionHandlers) ScheduleInteraction(_ context.Context, request *mcp.CallToolRequest, input ScheduleInteractionInput) (*mcp.CallToolResult, InteractionOutput, error) {
	if input.ClientID == "" {
		return nil, InteractionOutput{}, fmt.Errorf("client_id is required")
	}
	if input.Content == "" {
		return nil, InteractionOutput{}, fmt.Errorf("content is required")
	}

	switch input.Channel {
	case models.ChannelEmail, models.ChannelWhatsApp, models.ChannelVoice:
	default:
		return nil, InteractionOutput{}, fmt.Errorf("invalid channel %q", input.Channel)
	}

	clientID, err := uuid.Parse(input.ClientID)
	if err != nil {
		return nil, InteractionOutput{}, fmt.Errorf("invalid client_id: %w", err)
	}

	client, err := db.GetClient(h.db, clientID)
	if err != nil {
		return nil, InteractionOutput{}, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, InteractionOutput{}, fmt.Errorf("client not found")
	}

	scheduledAt := time.Now()
	if input.ScheduledAt != "" {
		scheduledAt, err = time.Parse(time.RFC3339, input.ScheduledAt)
		if err != nil {
			return nil, InteractionOutput{}, fmt.Errorf("invalid scheduled_at: %w", err)
		}
	}

	in := &models.ScheduledInteraction{
		ClientID:    clientID,
		Channel:     input.Channel,
		Template:    input.Template,
		Subject:     input.Subject,
		Content:     input.Content,
		ScheduledAt: scheduledAt,
	}
	if err := db.CreateInteraction(h.db, in); err != nil {
		return nil, InteractionOutput{}, fmt.Errorf("failed to schedule interaction: %w", err)
	}

	return nil, interactionToOutput(in), nil
}

type ListInteractionsInput struct {
	ClientID string `json:"client_id" jsonschema:"Client ID (required)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListInteractionsOutput struct {
	Interactions []InteractionOutput `json:"interactions"`
}

func (h *InteractionHandlers) ListInteractions(_ context.Context, request *mcp.CallToolRequest, input ListInteractionsInput) (*mcp.CallToolResult, ListInteractionsOutput, error) {
	if input.ClientID == "" {
		return nil, ListInteractionsOutput{}, fmt.Errorf("client_id is required")
	}

	clientID, err := uuid.Parse(input.ClientID)
	if err != nil {
		return nil, ListInteractionsOutput{}, fmt.Errorf("invalid client_id: %w", err)
	}

	interactions, err := db.ListClientInteractions(h.db, clientID, input.Limit)
	if err != nil {
		return nil, ListInteractionsOutput{}, fmt.Errorf("failed to list interactions: %w", err)
	}

	result := make([]InteractionOutput, len(interactions))
	for i, in := range interactions {
		result[i] = interactionToOutput(&in)
	}

	return nil, ListInteractionsOutput{Interactions: result}, nil
}

func interactionToOutput(in *models.ScheduledInteraction) InteractionOutput {
	out := InteractionOutput{
		ID:          in.ID.String(),
		ClientID:    in.ClientID.String(),
		Channel:     in.Channel,
		Template:    in.Template,
		Subject:     in.Subject,
		Content:     in.Content,
		ScheduledAt: in.ScheduledAt.Format(time.RFC3339),
		Status:      in.Status,
		ExternalID:  in.ExternalID,
		Error:       in.Error,
		CreatedAt:   in.CreatedAt.Format(time.RFC3339),
	}
	if in.AttemptedAt != nil {
		out.AttemptedAt = in.AttemptedAt.Format(time.RFC3339)
	}
	return out
}
