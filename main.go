// ABOUTME: Entry point for the ChronusDev bridge
// ABOUTME: Routes to the webhook server, dispatcher, reminder job, MCP server, and admin commands
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chronusdev/bridge/cli"
	"github.com/chronusdev/bridge/config"
	"github.com/chronusdev/bridge/db"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: $BRIDGE_DB_PATH or XDG data dir)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("bridge version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg := config.Load()
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if *initOnly {
		log.Printf("Database initialized at %s", cfg.DBPath)
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "serve":
		if err := cli.ServeCommand(database, cfg, commandArgs); err != nil {
			log.Fatalf("Webhook server failed: %v", err)
		}

	case "dispatch":
		if err := cli.DispatchCommand(database, cfg, commandArgs); err != nil {
			log.Fatalf("Dispatcher failed: %v", err)
		}

	case "remind":
		if err := cli.RemindCommand(database, commandArgs); err != nil {
			log.Fatalf("Reminder job failed: %v", err)
		}

	case "mcp":
		if err := cli.MCPCommand(database); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "client":
		if len(commandArgs) == 0 {
			fmt.Println("Error: client requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		runSubcommand(commandArgs[0], commandArgs[1:], map[string]func(args []string) error{
			"list":          func(args []string) error { return cli.ListClientsCommand(database, args) },
			"show":          func(args []string) error { return cli.ShowClientCommand(database, args) },
			"set-reminders": func(args []string) error { return cli.SetRemindersCommand(database, args) },
		})

	case "org":
		if len(commandArgs) == 0 {
			fmt.Println("Error: org requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		runSubcommand(commandArgs[0], commandArgs[1:], map[string]func(args []string) error{
			"add":      func(args []string) error { return cli.AddOrgCommand(database, args) },
			"list":     func(args []string) error { return cli.ListOrgsCommand(database, args) },
			"link":     func(args []string) error { return cli.LinkOrgCommand(database, args) },
			"add-user": func(args []string) error { return cli.AddUserCommand(database, args) },
			"set-smtp": func(args []string) error { return cli.SetSMTPCommand(database, args) },
		})

	case "task":
		if len(commandArgs) == 0 {
			fmt.Println("Error: task requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		runSubcommand(commandArgs[0], commandArgs[1:], map[string]func(args []string) error{
			"set-status": func(args []string) error { return cli.SetTaskStatusCommand(database, args) },
		})

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runSubcommand(name string, args []string, commands map[string]func(args []string) error) {
	cmd, ok := commands[name]
	if !ok {
		fmt.Printf("Unknown subcommand: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}
	if err := cmd(args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func printUsage() {
	fmt.Println(`bridge - CRM to ChronusDev synchronization bridge

Usage:
  bridge [flags] <command>

Commands:
  serve                 Start the CRM webhook server
  dispatch              Run the interaction dispatcher (use -once for a single pass)
  remind                Run the daily reminder pass
  mcp                   Start the MCP tool server on stdio

  client list           List clients
  client show           Show one client with interactions and activity
  client set-reminders  Set a client's birthday / payment-day reminders

  org add               Create an organization
  org list              List organizations and CRM links
  org link              Link an organization to a CRM organization
  org add-user          Add a user to an organization
  org set-smtp          Configure an organization's SMTP transport

  task set-status       Update a task's status

Flags:
  -version              Show version and exit
  -db-path <path>       Override the database path
  -init                 Initialize the database and exit`)
}
