// ABOUTME: Sync status MCP tool handler
// ABOUTME: Reports organization CRM links plus interaction and outbox queue counts
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chronusdev/bridge/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type StatusHandlers struct {
	db *sql.DB
}

func NewStatusHandlers(database *sql.DB) *StatusHandlers {
	return &StatusHandlers{db: database}
}

type SyncStatusInput struct{}

type OrganizationLinkOutput struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	CRMOrganizationID string `json:"crm_organization_id,omitempty"`
	Linked            bool   `json:"linked"`
}

type SyncStatusOutput struct {
	Organizations []OrganizationLinkOutput `json:"organizations"`
	Interactions  map[string]int           `json:"interactions"`
	Outbox        map[string]int           `json:"outbox"`
}

func (h *StatusHandlers) SyncStatus(_ context.Context, request *mcp.CallToolRequest, input SyncStatusInput) (*mcp.CallToolResult, SyncStatusOutput, error) {
	orgs, err := db.ListOrganizations(h.db)
	if err != nil {
		return nil, SyncStatusOutput{}, fmt.Errorf("failed to list organizations: %w", err)
	}

	links := make([]OrganizationLinkOutput, len(orgs))
	for i, org := range orgs {
		links[i] = OrganizationLinkOutput{
			ID:                org.ID.String(),
			Name:              org.Name,
			CRMOrganizationID: org.CRMOrganizationID,
			Linked:            org.CRMOrganizationID != "",
		}
	}

	interactions, err := db.CountInteractionsByStatus(h.db)
	if err != nil {
		return nil, SyncStatusOutput{}, fmt.Errorf("failed to count interactions: %w", err)
	}

	outbox, err := db.CountOutboxByStatus(h.db)
	if err != nil {
		return nil, SyncStatusOutput{}, fmt.Errorf("failed to count outbox entries: %w", err)
	}

	return nil, SyncStatusOutput{
		Organizations: links,
		Interactions:  interactions,
		Outbox:        outbox,
	}, nil
}
