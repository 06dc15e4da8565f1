// ABOUTME: Shared test fixtures for the dispatch package
// ABOUTME: In-memory database setup plus organization, client and interaction helpers
package dispatch

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	if err := db.InitSchema(database); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	return database
}

func createTestOrg(t *testing.T, database *sql.DB, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name}
	if err := db.CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	return org
}

func createTestClient(t *testing.T, database *sql.DB, org *models.Organization, name, email, phone string) *models.Client {
	t.Helper()
	client := &models.Client{
		OrganizationID: org.ID,
		Name:           name,
		Email:          email,
		Phone:          phone,
	}
	if err := db.CreateClient(database, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	return client
}

func createTestInteraction(t *testing.T, database *sql.DB, client *models.Client, channel string, scheduledAt time.Time) *models.ScheduledInteraction {
	t.Helper()
	in := &models.ScheduledInteraction{
		ClientID:    client.ID,
		Channel:     channel,
		Subject:     "Hola",
		Content:     "Contenido de prueba",
		ScheduledAt: scheduledAt,
	}
	if err := db.CreateInteraction(database, in); err != nil {
		t.Fatalf("CreateInteraction failed: %v", err)
	}
	return in
}

// stubSender records calls and returns a fixed external id or error.
type stubSender struct {
	externalID string
	err        error
	calls      []*models.ScheduledInteraction
}

func (s *stubSender) Send(_ context.Context, _ *models.Client, in *models.ScheduledInteraction) (string, error) {
	s.calls = append(s.calls, in)
	if s.err != nil {
		return "", s.err
	}
	return s.externalID, nil
}
