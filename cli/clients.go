// ABOUTME: Client CLI commands
// ABOUTME: Listing, detail view with activity, and reminder profile editing
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

// ListClientsCommand lists clients, optionally filtered by search query
func ListClientsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-clients", flag.ExitOnError)
	query := fs.String("query", "", "Search query (name or email)")
	org := fs.String("org", "", "Filter by organization ID")
	limit := fs.Int("limit", 25, "Maximum number of clients to show")
	_ = fs.Parse(args)

	var orgID *uuid.UUID
	if *org != "" {
		oid, err := uuid.Parse(*org)
		if err != nil {
			return fmt.Errorf("invalid org id: %w", err)
		}
		orgID = &oid
	}

	clients, err := db.FindClients(database, *query, orgID, *limit)
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tCRM ID")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t-----\t------")
	for _, c := range clients {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone, c.CRMCustomerID)
	}
	_ = w.Flush()

	return nil
}

// ShowClientCommand prints one client with its interactions and activity log
func ShowClientCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("show-client", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: show-client <client-id>")
	}

	clientID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid client id: %w", err)
	}

	client, err := db.GetClient(database, clientID)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client not found")
	}

	fmt.Printf("Name:    %s\n", client.Name)
	fmt.Printf("Email:   %s\n", client.Email)
	if client.Phone != "" {
		fmt.Printf("Phone:   %s\n", client.Phone)
	}
	if client.CRMCustomerID != "" {
		fmt.Printf("CRM ID:  %s\n", client.CRMCustomerID)
	}
	if client.Birthday != nil {
		fmt.Printf("Birthday:    %s\n", client.Birthday.Format("2006-01-02"))
	}
	if client.PaymentDay != nil {
		fmt.Printf("Payment day: %d\n", *client.PaymentDay)
	}

	if project, err := db.FindProjectByClientKind(database, client.ID, models.ProjectKindSupport); err == nil && project != nil {
		fmt.Printf("Support project: %s (%s)\n", project.Name, project.ID)
	}

	interactions, err := db.ListClientInteractions(database, client.ID, 10)
	if err != nil {
		return fmt.Errorf("failed to list interactions: %w", err)
	}
	if len(interactions) > 0 {
		fmt.Println("\nRecent interactions:")
		for _, in := range interactions {
			fmt.Printf("  %s  %-8s  %-10s  %s\n",
				in.ScheduledAt.Format("2006-01-02 15:04"), in.Channel, in.Status, in.Subject)
		}
	}

	entries, err := db.ListEntityActivity(database, "client", client.ID.String())
	if err != nil {
		return fmt.Errorf("failed to list activity: %w", err)
	}
	if len(entries) > 0 {
		fmt.Println("\nActivity:")
		for _, e := range entries {
			fmt.Printf("  %s  %s\n", e.CreatedAt.Format(time.RFC3339), e.Verb)
		}
	}

	return nil
}

// SetRemindersCommand sets or clears a client's reminder profile
func SetRemindersCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("set-reminders", flag.ExitOnError)
	birthday := fs.String("birthday", "", "Birthday (YYYY-MM-DD, empty to clear)")
	paymentDay := fs.Int("payment-day", 0, "Monthly payment day 1-31 (0 to clear)")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: set-reminders <client-id> [-birthday YYYY-MM-DD] [-payment-day N]")
	}

	clientID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid client id: %w", err)
	}

	client, err := db.GetClient(database, clientID)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client not found")
	}

	var bday *time.Time
	if *birthday != "" {
		parsed, err := time.Parse("2006-01-02", *birthday)
		if err != nil {
			return fmt.Errorf("invalid birthday %q: %w", *birthday, err)
		}
		bday = &parsed
	}

	var payDay *int
	if *paymentDay != 0 {
		if *paymentDay < 1 || *paymentDay > 31 {
			return fmt.Errorf("payment day must be between 1 and 31")
		}
		payDay = paymentDay
	}

	if err := db.SetClientReminderProfile(database, clientID, bday, payDay); err != nil {
		return err
	}

	fmt.Printf("Updated reminder profile for %s\n", client.Name)
	return nil
}
