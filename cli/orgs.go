// ABOUTME: Organization CLI commands
// ABOUTME: Tenant creation, CRM linking, user management, and SMTP configuration
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

// AddOrgCommand creates a tenant, optionally pre-linked to a CRM organization
func AddOrgCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-org", flag.ExitOnError)
	name := fs.String("name", "", "Organization name (required)")
	crmID := fs.String("crm-id", "", "CRM organization ID to link")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("name is required")
	}

	org := &models.Organization{Name: *name, CRMOrganizationID: *crmID}
	if err := db.CreateOrganization(database, org); err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	fmt.Printf("Created organization %s (%s)\n", org.Name, org.ID)
	return nil
}

// ListOrgsCommand lists tenants and their CRM links
func ListOrgsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-orgs", flag.ExitOnError)
	_ = fs.Parse(args)

	orgs, err := db.ListOrganizations(database)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCRM ORG ID")
	_, _ = fmt.Fprintln(w, "--\t----\t----------")
	for _, org := range orgs {
		crmID := org.CRMOrganizationID
		if crmID == "" {
			crmID = "(unlinked)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", org.ID, org.Name, crmID)
	}
	_ = w.Flush()

	return nil
}

// LinkOrgCommand links an existing tenant to a CRM organization
func LinkOrgCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("link-org", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: link-org <org-id> <crm-org-id>")
	}

	orgID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid org id: %w", err)
	}

	org, err := db.GetOrganization(database, orgID)
	if err != nil {
		return fmt.Errorf("failed to get organization: %w", err)
	}
	if org == nil {
		return fmt.Errorf("organization not found")
	}

	if err := db.LinkOrganizationToCRM(database, orgID, fs.Arg(1)); err != nil {
		return err
	}

	fmt.Printf("Linked %s to CRM organization %s\n", org.Name, fs.Arg(1))
	return nil
}

// AddUserCommand adds a user to a tenant
func AddUserCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	org := fs.String("org", "", "Organization ID (required)")
	name := fs.String("name", "", "User name (required)")
	email := fs.String("email", "", "User email (required)")
	role := fs.String("role", models.RoleMember, "Role: ADMIN, MANAGER, or MEMBER")
	_ = fs.Parse(args)

	if *org == "" || *name == "" || *email == "" {
		return fmt.Errorf("org, name, and email are required")
	}

	switch *role {
	case models.RoleAdmin, models.RoleManager, models.RoleMember:
	default:
		return fmt.Errorf("invalid role %q", *role)
	}

	orgID, err := uuid.Parse(*org)
	if err != nil {
		return fmt.Errorf("invalid org id: %w", err)
	}

	user := &models.User{
		OrganizationID: orgID,
		Name:           *name,
		Email:          *email,
		Role:           *role,
	}
	if err := db.CreateUser(database, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %s (%s) with role %s\n", user.Name, user.ID, user.Role)
	return nil
}

// SetSMTPCommand configures a tenant's SMTP transport
func SetSMTPCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("set-smtp", flag.ExitOnError)
	org := fs.String("org", "", "Organization ID (required)")
	host := fs.String("host", "", "SMTP host (required)")
	port := fs.Int("port", 587, "SMTP port")
	username := fs.String("username", "", "SMTP username")
	password := fs.String("password", "", "SMTP password")
	from := fs.String("from", "", "From address (required)")
	_ = fs.Parse(args)

	if *org == "" || *host == "" || *from == "" {
		return fmt.Errorf("org, host, and from are required")
	}

	orgID, err := uuid.Parse(*org)
	if err != nil {
		return fmt.Errorf("invalid org id: %w", err)
	}

	err = db.SetSMTPSettings(database, &db.SMTPSettings{
		OrganizationID: orgID,
		Host:           *host,
		Port:           *port,
		Username:       *username,
		Password:       *password,
		FromAddr:       *from,
	})
	if err != nil {
		return err
	}

	fmt.Printf("SMTP transport for %s set to %s:%d\n", orgID, *host, *port)
	return nil
}
