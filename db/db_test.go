// ABOUTME: Shared test setup and organization operation tests
// ABOUTME: Uses in-memory SQLite databases for isolation
package db

import (
	"database/sql"
	"testing"

	"github.com/chronusdev/bridge/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	if err := InitSchema(database); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	return database
}

func TestCreateOrganization(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Acme SA", CRMOrganizationID: "crm-org-1"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	found, err := FindOrganizationByCRMID(database, "crm-org-1")
	if err != nil {
		t.Fatalf("FindOrganizationByCRMID failed: %v", err)
	}
	if found == nil {
		t.Fatal("Organization not found by CRM id")
	}
	if found.ID != org.ID {
		t.Errorf("Expected organization %s, got %s", org.ID, found.ID)
	}
}

func TestFindOrganizationByCRMIDEmpty(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	// Orgs without a CRM link must not match an empty lookup
	org := &models.Organization{Name: "Unlinked"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	found, err := FindOrganizationByCRMID(database, "")
	if err != nil {
		t.Fatalf("FindOrganizationByCRMID failed: %v", err)
	}
	if found != nil {
		t.Error("Empty CRM id should not match any organization")
	}
}

func TestLinkOrganizationToCRM(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Acme SA"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	if err := LinkOrganizationToCRM(database, org.ID, "crm-org-9"); err != nil {
		t.Fatalf("LinkOrganizationToCRM failed: %v", err)
	}

	found, err := FindOrganizationByCRMID(database, "crm-org-9")
	if err != nil {
		t.Fatalf("FindOrganizationByCRMID failed: %v", err)
	}
	if found == nil || found.ID != org.ID {
		t.Error("Organization was not linked to CRM org")
	}
}

func TestListOrgUsersByRole(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Acme SA"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	for _, u := range []models.User{
		{OrganizationID: org.ID, Name: "Ana", Email: "ana@acme.test", Role: models.RoleAdmin},
		{OrganizationID: org.ID, Name: "Marta", Email: "marta@acme.test", Role: models.RoleManager},
		{OrganizationID: org.ID, Name: "Luis", Email: "luis@acme.test", Role: models.RoleMember},
	} {
		user := u
		if err := CreateUser(database, &user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	users, err := ListOrgUsersByRole(database, org.ID, models.RoleAdmin, models.RoleManager)
	if err != nil {
		t.Fatalf("ListOrgUsersByRole failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 admin/manager users, got %d", len(users))
	}
	for _, u := range users {
		if u.Role == models.RoleMember {
			t.Errorf("Member %s should not be in admin/manager list", u.Name)
		}
	}
}
