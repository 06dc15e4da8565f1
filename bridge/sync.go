// ABOUTME: CRM synchronization functions for clients and organizations
// ABOUTME: Idempotent external-id upserts with move detection and fallback emails
package bridge

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

// FallbackEmailDomain is appended to external ids when the CRM omits an
// email, so the unique-email constraint can never be violated by sync.
const FallbackEmailDomain = "crm.local"

// ResolveOrganization maps a webhook organization hint to a local tenant.
// Lookup order: linked CRM organization id, exact local id, then a
// placeholder organization auto-created and self-linked to the hint so the
// webhook never hard-fails. Returns whether an organization was created.
func ResolveOrganization(database *sql.DB, hint string) (*models.Organization, bool, error) {
	if hint == "" {
		return nil, false, fmt.Errorf("organization hint is required")
	}

	org, err := db.FindOrganizationByCRMID(database, hint)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve organization: %w", err)
	}
	if org != nil {
		return org, false, nil
	}

	// Legacy senders pass the local organization id directly
	if id, perr := uuid.Parse(hint); perr == nil {
		org, err = db.GetOrganization(database, id)
		if err != nil {
			return nil, false, fmt.Errorf("failed to resolve organization: %w", err)
		}
		if org != nil {
			if org.CRMOrganizationID == "" {
				if err := db.LinkOrganizationToCRM(database, org.ID, hint); err != nil {
					log.Printf("Warning: failed to self-link organization %s: %v", org.ID, err)
				}
			}
			return org, false, nil
		}
	}

	// Last resort: placeholder tenant self-linked to the CRM org id
	org = &models.Organization{
		Name:              fmt.Sprintf("CRM %s", hint),
		CRMOrganizationID: hint,
	}
	if err := db.CreateOrganization(database, org); err != nil {
		// Concurrent delivery may have created it first
		existing, ferr := db.FindOrganizationByCRMID(database, hint)
		if ferr == nil && existing != nil {
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to auto-create organization: %w", err)
	}

	return org, true, nil
}

// SyncClientFromCRM upserts the local client for a remote customer, keyed by
// the CRM customer id. A record found under a different organization is
// moved, not duplicated, and the move is recorded in the activity log.
// Returns the surviving client and whether it was created.
func SyncClientFromCRM(database *sql.DB, customer CustomerPayload, organizationID uuid.UUID) (*models.Client, bool, error) {
	if customer.ID == "" {
		return nil, false, fmt.Errorf("customer id is required")
	}

	previous, err := db.FindClientByCRMID(database, customer.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up client: %w", err)
	}

	email := customer.Email
	if email == "" {
		if previous != nil {
			// Keep whatever address the record already has
			email = previous.Email
		} else {
			email = fmt.Sprintf("%s@%s", customer.ID, FallbackEmailDomain)
		}
	}

	client := &models.Client{
		OrganizationID: organizationID,
		Name:           customer.Name,
		Email:          email,
		Phone:          customer.Phone,
		Notes:          customer.Notes,
		CRMCustomerID:  customer.ID,
	}
	if err := db.UpsertClientByCRMID(database, client); err != nil {
		return nil, false, err
	}

	created := previous == nil

	switch {
	case created:
		if err := db.LogActivity(database, organizationID, "client", client.ID.String(), models.VerbCreated,
			map[string]interface{}{"source": "crm", "crmCustomerId": customer.ID}); err != nil {
			log.Printf("Warning: failed to log client creation: %v", err)
		}
	case previous.OrganizationID != organizationID:
		if err := db.LogActivity(database, organizationID, "client", client.ID.String(), models.VerbMoved,
			map[string]interface{}{"movedFrom": previous.OrganizationID.String(), "crmCustomerId": customer.ID}); err != nil {
			log.Printf("Warning: failed to log client move: %v", err)
		}
	default:
		if err := db.LogActivity(database, organizationID, "client", client.ID.String(), models.VerbUpdated,
			map[string]interface{}{"source": "crm"}); err != nil {
			log.Printf("Warning: failed to log client update: %v", err)
		}
	}

	return client, created, nil
}

// SyncCustomer handles customer-created and customer-updated deliveries:
// organization resolution followed by the client upsert. No project or task
// side effects.
func SyncCustomer(database *sql.DB, payload CustomerWebhook) (*models.Client, error) {
	org, _, err := ResolveOrganization(database, payload.OrganizationID)
	if err != nil {
		return nil, err
	}

	client, _, err := SyncClientFromCRM(database, payload.Customer, org.ID)
	return client, err
}
