// ABOUTME: Client database operations
// ABOUTME: Handles CRUD, CRM external-id lookups, and the atomic sync upsert
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

const clientColumns = `id, organization_id, name, email, phone, notes, crm_customer_id,
	birthday, payment_day, created_at, updated_at`

func CreateClient(db *sql.DB, client *models.Client) error {
	client.ID = uuid.New()
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	var crmCustomerID *string
	if client.CRMCustomerID != "" {
		crmCustomerID = &client.CRMCustomerID
	}

	_, err := db.Exec(`
		INSERT INTO clients (id, organization_id, name, email, phone, notes, crm_customer_id, birthday, payment_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, client.ID.String(), client.OrganizationID.String(), client.Name, client.Email,
		client.Phone, client.Notes, crmCustomerID, client.Birthday, client.PaymentDay,
		client.CreatedAt, client.UpdatedAt)

	return err
}

func GetClient(db *sql.DB, id uuid.UUID) (*models.Client, error) {
	return scanClient(db.QueryRow(`
		SELECT `+clientColumns+`
		FROM clients WHERE id = ?
	`, id.String()))
}

// FindClientByCRMID looks up a client by its CRM external id across all
// organizations. Cross-tenant hits are how moves are detected.
func FindClientByCRMID(db *sql.DB, crmCustomerID string) (*models.Client, error) {
	if crmCustomerID == "" {
		return nil, nil
	}
	return scanClient(db.QueryRow(`
		SELECT `+clientColumns+`
		FROM clients WHERE crm_customer_id = ?
	`, crmCustomerID))
}

// UpsertClientByCRMID performs the sync upsert keyed by the CRM external id.
// The unique constraint on crm_customer_id makes concurrent webhook
// deliveries for the same customer converge on a single row; the conflict
// clause also rewrites organization_id so a customer relinked in the CRM is
// moved rather than duplicated. Reminder fields are managed locally and are
// left untouched on the update path.
func UpsertClientByCRMID(db *sql.DB, client *models.Client) error {
	if client.CRMCustomerID == "" {
		return fmt.Errorf("crm customer id is required for upsert")
	}

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO clients (id, organization_id, name, email, phone, notes, crm_customer_id, birthday, payment_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(crm_customer_id) DO UPDATE SET
			organization_id = excluded.organization_id,
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, client.ID.String(), client.OrganizationID.String(), client.Name, client.Email,
		client.Phone, client.Notes, client.CRMCustomerID, client.Birthday, client.PaymentDay,
		client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert client: %w", err)
	}

	// Re-read so the caller sees the surviving row id on the update path.
	existing, err := FindClientByCRMID(db, client.CRMCustomerID)
	if err != nil {
		return err
	}
	if existing != nil {
		*client = *existing
	}

	return nil
}

// SetClientReminderProfile stores the locally managed reminder fields.
func SetClientReminderProfile(db *sql.DB, id uuid.UUID, birthday *time.Time, paymentDay *int) error {
	_, err := db.Exec(`
		UPDATE clients
		SET birthday = ?, payment_day = ?, updated_at = ?
		WHERE id = ?
	`, birthday, paymentDay, time.Now(), id.String())

	if err != nil {
		return fmt.Errorf("failed to set reminder profile: %w", err)
	}
	return nil
}

// ListClientsWithReminders returns clients that have a birthday or payment
// day configured, for the daily reminder job.
func ListClientsWithReminders(db *sql.DB) ([]models.Client, error) {
	rows, err := db.Query(`
		SELECT ` + clientColumns + `
		FROM clients
		WHERE birthday IS NOT NULL OR payment_day IS NOT NULL
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectClients(rows)
}

func FindClients(db *sql.DB, query string, orgID *uuid.UUID, limit int) ([]models.Client, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows *sql.Rows
	var err error

	if orgID != nil {
		rows, err = db.Query(`
			SELECT `+clientColumns+`
			FROM clients
			WHERE organization_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		`, orgID.String(), limit)
	} else if query != "" {
		searchPattern := "%" + strings.ToLower(query) + "%"
		rows, err = db.Query(`
			SELECT `+clientColumns+`
			FROM clients
			WHERE LOWER(name) LIKE ? OR LOWER(email) LIKE ?
			ORDER BY created_at DESC
			LIMIT ?
		`, searchPattern, searchPattern, limit)
	} else {
		rows, err = db.Query(`
			SELECT `+clientColumns+`
			FROM clients
			ORDER BY created_at DESC
			LIMIT ?
		`, limit)
	}

	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectClients(rows)
}

func collectClients(rows *sql.Rows) ([]models.Client, error) {
	var clients []models.Client
	for rows.Next() {
		c, err := scanClientRow(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func scanClientFields(s rowScanner) (*models.Client, error) {
	c := &models.Client{}
	var id, orgIDStr string
	var phone, notes, crmCustomerID sql.NullString
	var birthday sql.NullTime
	var paymentDay sql.NullInt64

	err := s.Scan(&id, &orgIDStr, &c.Name, &c.Email, &phone, &notes, &crmCustomerID,
		&birthday, &paymentDay, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client ID: %w", err)
	}
	c.OrganizationID, err = uuid.Parse(orgIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse organization ID: %w", err)
	}
	if phone.Valid {
		c.Phone = phone.String
	}
	if notes.Valid {
		c.Notes = notes.String
	}
	if crmCustomerID.Valid {
		c.CRMCustomerID = crmCustomerID.String
	}
	if birthday.Valid {
		c.Birthday = &birthday.Time
	}
	if paymentDay.Valid {
		day := int(paymentDay.Int64)
		c.PaymentDay = &day
	}

	return c, nil
}

func scanClient(row *sql.Row) (*models.Client, error) {
	c, err := scanClientFields(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func scanClientRow(rows *sql.Rows) (*models.Client, error) {
	return scanClientFields(rows)
}
