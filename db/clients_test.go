// ABOUTME: Tests for client database operations
// ABOUTME: Covers the external-id upsert, move semantics, and unique email
package db

import (
	"strings"
	"testing"

	"github.com/chronusdev/bridge/models"
)

func TestUpsertClientCreatesOnce(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Org A", CRMOrganizationID: "crm-a"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	client := &models.Client{
		OrganizationID: org.ID,
		Name:           "Acme",
		Email:          "acme@example.com",
		CRMCustomerID:  "c1",
	}
	if err := UpsertClientByCRMID(database, client); err != nil {
		t.Fatalf("UpsertClientByCRMID failed: %v", err)
	}

	found, err := FindClientByCRMID(database, "c1")
	if err != nil {
		t.Fatalf("FindClientByCRMID failed: %v", err)
	}
	if found == nil {
		t.Fatal("Client not found after upsert")
	}
	if found.ID != client.ID {
		t.Errorf("Expected client %s, got %s", client.ID, found.ID)
	}
}

func TestUpsertClientMovesBetweenOrganizations(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	orgA := &models.Organization{Name: "Org A", CRMOrganizationID: "crm-a"}
	orgB := &models.Organization{Name: "Org B", CRMOrganizationID: "crm-b"}
	for _, org := range []*models.Organization{orgA, orgB} {
		if err := CreateOrganization(database, org); err != nil {
			t.Fatalf("CreateOrganization failed: %v", err)
		}
	}

	first := &models.Client{
		OrganizationID: orgA.ID,
		Name:           "Acme",
		Email:          "acme@example.com",
		CRMCustomerID:  "c1",
	}
	if err := UpsertClientByCRMID(database, first); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	// Same external id arrives under organization B: the record moves.
	second := &models.Client{
		OrganizationID: orgB.ID,
		Name:           "Acme",
		Email:          "acme@example.com",
		CRMCustomerID:  "c1",
	}
	if err := UpsertClientByCRMID(database, second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Move created a new record: %s != %s", second.ID, first.ID)
	}
	if second.OrganizationID != orgB.ID {
		t.Errorf("Client was not moved to org B")
	}

	clients, err := FindClients(database, "", nil, 50)
	if err != nil {
		t.Fatalf("FindClients failed: %v", err)
	}
	if len(clients) != 1 {
		t.Errorf("Expected exactly one client after move, got %d", len(clients))
	}
}

func TestUpsertClientRequiresExternalID(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Org A"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	client := &models.Client{OrganizationID: org.ID, Name: "NoExt", Email: "x@y.test"}
	err := UpsertClientByCRMID(database, client)
	if err == nil {
		t.Fatal("Expected error for upsert without external id")
	}
	if !strings.Contains(err.Error(), "crm customer id") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestClientUniqueEmailConstraint(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Org A"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	a := &models.Client{OrganizationID: org.ID, Name: "A", Email: "dup@example.com"}
	if err := CreateClient(database, a); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	b := &models.Client{OrganizationID: org.ID, Name: "B", Email: "dup@example.com"}
	if err := CreateClient(database, b); err == nil {
		t.Error("Duplicate email should violate the unique constraint")
	}
}

func TestFindClientsByOrganization(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	orgA := &models.Organization{Name: "Org A"}
	orgB := &models.Organization{Name: "Org B"}
	for _, org := range []*models.Organization{orgA, orgB} {
		if err := CreateOrganization(database, org); err != nil {
			t.Fatalf("CreateOrganization failed: %v", err)
		}
	}

	for i, org := range []*models.Organization{orgA, orgA, orgB} {
		c := &models.Client{
			OrganizationID: org.ID,
			Name:           "Client",
			Email:          string(rune('a'+i)) + "@example.com",
		}
		if err := CreateClient(database, c); err != nil {
			t.Fatalf("CreateClient failed: %v", err)
		}
	}

	clients, err := FindClients(database, "", &orgA.ID, 50)
	if err != nil {
		t.Fatalf("FindClients failed: %v", err)
	}
	if len(clients) != 2 {
		t.Errorf("Expected 2 clients in org A, got %d", len(clients))
	}
}
