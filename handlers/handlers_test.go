// ABOUTME: Shared test fixtures for MCP tool handlers
// ABOUTME: In-memory database setup and entity helpers
package handlers

import (
	"database/sql"
	"testing"

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

func createTestOrg(t *testing.T, database *sql.DB, name, crmID string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name, CRMOrganizationID: crmID}
	if err := db.CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	return org
}

func createTestClient(t *testing.T, database *sql.DB, org *models.Organization, name, email string) *models.Client {
	t.Helper()
	client := &models.Client{OrganizationID: org.ID, Name: name, Email: email}
	if err := db.CreateClient(database, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	return client
}
