// ABOUTME: Webhook server subcommand
// ABOUTME: Starts the HTTP receiver for CRM webhooks
package cli

import (
	"database/sql"
	"flag"
	"fmt"

	"github.com/chronusdev/bridge/config"
	"github.com/chronusdev/bridge/web"
)

// ServeCommand starts the webhook HTTP server
func ServeCommand(database *sql.DB, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 8080, "Port to listen on")
	_ = fs.Parse(args)

	if *port < 1 || *port > 65535 {
		return fmt.Errorf("invalid port %d", *port)
	}

	server := web.NewServer(database, cfg.CRMSyncKey)
	return server.Start(*port)
}
