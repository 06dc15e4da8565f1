// ABOUTME: MCP server subcommand
// ABOUTME: Registers bridge tools and serves them over stdio
package cli

import (
	"context"
	"database/sql"
	"log"

	"github.com/chronusdev/bridge/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(db *sql.DB) error {
	log.Println("Starting bridge MCP server...")

	clientHandlers := handlers.NewClientHandlers(db)
	interactionHandlers := handlers.NewInteractionHandlers(db)
	statusHandlers := handlers.NewStatusHandlers(db)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chronusdev-bridge",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_clients",
		Description: "Search for clients by name, email, or organization",
	}, clientHandlers.FindClients)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_client",
		Description: "Get a client by local ID or CRM customer ID",
	}, clientHandlers.GetClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "schedule_interaction",
		Description: "Schedule an email, WhatsApp, or voice interaction for a client",
	}, interactionHandlers.ScheduleInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_interactions",
		Description: "List a client's scheduled and delivered interactions",
	}, interactionHandlers.ListInteractions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Report organization CRM links and interaction/outbox queue counts",
	}, statusHandlers.SyncStatus)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
