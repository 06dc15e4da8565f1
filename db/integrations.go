// ABOUTME: Per-tenant SMTP settings and integration rows
// ABOUTME: Backs the transport resolution chain for the email sender
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SMTPSettings is a tenant's explicit mail transport configuration, the
// highest-precedence tier in transport resolution.
type SMTPSettings struct {
	OrganizationID uuid.UUID
	Host           string
	Port           int
	Username       string
	Password       string
	FromAddr       string
}

// GetSMTPSettings returns a tenant's SMTP configuration, or nil when unset.
func GetSMTPSettings(db *sql.DB, orgID uuid.UUID) (*SMTPSettings, error) {
	s := &SMTPSettings{OrganizationID: orgID}
	var username, password sql.NullString

	err := db.QueryRow(`
		SELECT host, port, username, password, from_addr
		FROM smtp_settings WHERE organization_id = ?
	`, orgID.String()).Scan(&s.Host, &s.Port, &username, &password, &s.FromAddr)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get smtp settings: %w", err)
	}

	if username.Valid {
		s.Username = username.String
	}
	if password.Valid {
		s.Password = password.String
	}

	return s, nil
}

// SetSMTPSettings upserts a tenant's SMTP configuration.
func SetSMTPSettings(db *sql.DB, s *SMTPSettings) error {
	_, err := db.Exec(`
		INSERT INTO smtp_settings (organization_id, host, port, username, password, from_addr)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(organization_id) DO UPDATE SET
			host = excluded.host,
			port = excluded.port,
			username = excluded.username,
			password = excluded.password,
			from_addr = excluded.from_addr
	`, s.OrganizationID.String(), s.Host, s.Port, s.Username, s.Password, s.FromAddr)

	if err != nil {
		return fmt.Errorf("failed to set smtp settings: %w", err)
	}
	return nil
}

// GetIntegrationSettings returns the raw settings JSON of a tenant
// integration, or empty when none is configured.
func GetIntegrationSettings(db *sql.DB, orgID uuid.UUID, kind string) (string, error) {
	var settings string
	err := db.QueryRow(`
		SELECT settings FROM integrations
		WHERE organization_id = ? AND kind = ?
	`, orgID.String(), kind).Scan(&settings)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get integration: %w", err)
	}

	return settings, nil
}

// SetIntegrationSettings upserts a tenant integration's settings JSON.
func SetIntegrationSettings(db *sql.DB, orgID uuid.UUID, kind, settings string) error {
	_, err := db.Exec(`
		INSERT INTO integrations (id, organization_id, kind, settings, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(organization_id, kind) DO UPDATE SET
			settings = excluded.settings
	`, uuid.New().String(), orgID.String(), kind, settings, time.Now())

	if err != nil {
		return fmt.Errorf("failed to set integration: %w", err)
	}
	return nil
}
