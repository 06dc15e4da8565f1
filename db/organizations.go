// ABOUTME: Organization database operations
// ABOUTME: Handles tenant lookups by local id and CRM organization link
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

func CreateOrganization(db *sql.DB, org *models.Organization) error {
	org.ID = uuid.New()
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now

	var crmOrgID *string
	if org.CRMOrganizationID != "" {
		crmOrgID = &org.CRMOrganizationID
	}

	_, err := db.Exec(`
		INSERT INTO organizations (id, name, crm_organization_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, org.ID.String(), org.Name, crmOrgID, org.CreatedAt, org.UpdatedAt)

	return err
}

func GetOrganization(db *sql.DB, id uuid.UUID) (*models.Organization, error) {
	return scanOrganization(db.QueryRow(`
		SELECT id, name, crm_organization_id, created_at, updated_at
		FROM organizations WHERE id = ?
	`, id.String()))
}

// FindOrganizationByCRMID looks up the organization linked to a CRM org.
func FindOrganizationByCRMID(db *sql.DB, crmOrgID string) (*models.Organization, error) {
	if crmOrgID == "" {
		return nil, nil
	}
	return scanOrganization(db.QueryRow(`
		SELECT id, name, crm_organization_id, created_at, updated_at
		FROM organizations WHERE crm_organization_id = ?
	`, crmOrgID))
}

// LinkOrganizationToCRM sets the CRM organization link on an existing tenant.
func LinkOrganizationToCRM(db *sql.DB, id uuid.UUID, crmOrgID string) error {
	_, err := db.Exec(`
		UPDATE organizations
		SET crm_organization_id = ?, updated_at = ?
		WHERE id = ?
	`, crmOrgID, time.Now(), id.String())

	if err != nil {
		return fmt.Errorf("failed to link organization: %w", err)
	}
	return nil
}

// ListOrganizations returns all tenants, oldest first.
func ListOrganizations(db *sql.DB) ([]models.Organization, error) {
	rows, err := db.Query(`
		SELECT id, name, crm_organization_id, created_at, updated_at
		FROM organizations ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var orgs []models.Organization
	for rows.Next() {
		var org models.Organization
		var id string
		var crmOrgID sql.NullString

		if err := rows.Scan(&id, &org.Name, &crmOrgID, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, err
		}
		org.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to parse organization ID: %w", err)
		}
		if crmOrgID.Valid {
			org.CRMOrganizationID = crmOrgID.String
		}
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}

// ListOrgUsersByRole returns organization users holding any of the given roles.
func ListOrgUsersByRole(db *sql.DB, orgID uuid.UUID, roles ...string) ([]models.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, organization_id, name, email, role, created_at
		FROM users
		WHERE organization_id = ? AND role IN (?` + repeatPlaceholder(len(roles)-1) + `)
		ORDER BY created_at
	`
	args := []interface{}{orgID.String()}
	for _, r := range roles {
		args = append(args, r)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []models.User
	for rows.Next() {
		var u models.User
		var id, orgIDStr string
		if err := rows.Scan(&id, &orgIDStr, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user ID: %w", err)
		}
		u.OrganizationID, err = uuid.Parse(orgIDStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse organization ID: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func CreateUser(db *sql.DB, user *models.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()

	_, err := db.Exec(`
		INSERT INTO users (id, organization_id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID.String(), user.OrganizationID.String(), user.Name, user.Email, user.Role, user.CreatedAt)

	return err
}

func scanOrganization(row *sql.Row) (*models.Organization, error) {
	org := &models.Organization{}
	var id string
	var crmOrgID sql.NullString

	err := row.Scan(&id, &org.Name, &crmOrgID, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	org.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse organization ID: %w", err)
	}
	if crmOrgID.Valid {
		org.CRMOrganizationID = crmOrgID.String
	}

	return org, nil
}

func repeatPlaceholder(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}
