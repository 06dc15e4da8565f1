// ABOUTME: Client MCP tool handlers
// ABOUTME: Implements find_clients and get_client tools
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

type ClientHandlers struct {
	db *sql.DB
}

func NewClientHandlers(database *sql.DB) *ClientHandlers {
	return &ClientHandlers{db: database}
}

type FindClientsInput struct {
	Query          string `json:"query,omitempty" jsonschema:"Search query (searches name and email)"`
	OrganizationID string `json:"organization_id,omitempty" jsonschema:"Filter by organization ID"`
	Limit          int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type ClientOutput struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Notes          string `json:"notes,omitempty"`
	CRMCustomerID  string `json:"crm_customer_id,omitempty"`
	Birthday       string `json:"birthday,omitempty"`
	PaymentDay     *int   `json:"payment_day,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type FindClientsOutput struct {
	Clients []ClientOutput `json:"clients"`
}

func (h *ClientHandlers) FindClients(_ context.Context, request *mcp.CallToolRequest, input FindClientsInput) (*mcp.CallToolResult, FindClientsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	var orgID *uuid.UUID
	if input.OrganizationID != "" {
		oid, err := uuid.Parse(input.OrganizationID)
		if err != nil {
			return nil, FindClientsOutput{}, fmt.Errorf("invalid organization_id: %w", err)
		}
		orgID = &oid
	}

	clients, err := db.FindClients(h.db, input.Query, orgID, limit)
	if err != nil {
		return nil, FindClientsOutput{}, fmt.Errorf("failed to find clients: %w", err)
	}

	result := make([]ClientOutput, len(clients))
	for i, client := range clients {
		result[i] = clientToOutput(&client)
	}

	return nil, FindClientsOutput{Clients: result}, nil
}

type GetClientInput struct {
	ID            string `json:"id,omitempty" jsonschema:"Client ID"`
	CRMCustomerID string `json:"crm_customer_id,omitempty" jsonschema:"CRM external customer ID"`
}

func (h *ClientHandlers) GetClient(_ context.Context, request *mcp.CallToolRequest, input GetClientInput) (*mcp.CallToolResult, ClientOutput, error) {
	var client *models.Client
	var err error

	switch {
	case input.ID != "":
		var clientID uuid.UUID
		clientID, err = uuid.Parse(input.ID)
		if err != nil {
			return nil, ClientOutput{}, fmt.Errorf("invalid id: %w", err)
		}
		client, err = db.GetClient(h.db, clientID)
	case input.CRMCustomerID != "":
		client, err = db.FindClientByCRMID(h.db, input.CRMCustomerID)
	default:
		return nil, ClientOutput{}, fmt.Errorf("id or crm_customer_id is required")
	}

	if err != nil {
		return nil, ClientOutput{}, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, ClientOutput{}, fmt.Errorf("client not found")
	}

	return nil, clientToOutput(client), nil
}

func clientToOutput(client *models.Client) ClientOutput {
	out := ClientOutput{
		ID:             client.ID.String(),
		OrganizationID: client.OrganizationID.String(),
		Name:           client.Name,
		Email:          client.Email,
		Phone:          client.Phone,
		Notes:          client.Notes,
		CRMCustomerID:  client.CRMCustomerID,
		PaymentDay:     client.PaymentDay,
		CreatedAt:      client.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      client.UpdatedAt.Format(time.RFC3339),
	}
	if client.Birthday != nil {
		out.Birthday = client.Birthday.Format("2006-01-02")
	}
	return out
}
