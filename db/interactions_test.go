// ABOUTME: Tests for scheduled interaction database operations
// ABOUTME: Covers claiming, terminal transitions, and same-day reminder dedup
package db

import (
	"testing"
	"time"

	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

func TestClaimInteraction(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Org"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	client := &models.Client{OrganizationID: org.ID, Name: "Acme", Email: "acme@example.com"}
	if err := CreateClient(database, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	in := &models.ScheduledInteraction{
		ClientID:    client.ID,
		Channel:     models.ChannelEmail,
		Content:     "hello",
		ScheduledAt: time.Now().Add(-time.Minute),
	}
	if err := CreateInteraction(database, in); err != nil {
		t.Fatalf("CreateInteraction failed: %v", err)
	}

	claimed, err := ClaimInteraction(database, in.ID, time.Now())
	if err != nil {
		t.Fatalf("ClaimInteraction failed: %v", err)
	}
	if !claimed {
		t.Fatal("Expected first claim to succeed")
	}

	// A second claimer loses the race
	claimed, err = ClaimInteraction(database, in.ID, time.Now())
	if err != nil {
		t.Fatalf("Second ClaimInteraction failed: %v", err)
	}
	if claimed {
		t.Error("A claimed row must not be claimable again")
	}
}

func TestInteractionTerminalStates(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Org"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	client := &models.Client{OrganizationID: org.ID, Name: "Acme", Email: "acme@example.com"}
	if err := CreateClient(database, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	success := &models.ScheduledInteraction{
		ClientID: client.ID, Channel: models.ChannelEmail,
		Content: "ok", ScheduledAt: time.Now().Add(-time.Minute),
	}
	failure := &models.ScheduledInteraction{
		ClientID: client.ID, Channel: models.ChannelWhatsApp,
		Content: "boom", ScheduledAt: time.Now().Add(-time.Minute),
	}
	for _, in := range []*models.ScheduledInteraction{success, failure} {
		if err := CreateInteraction(database, in); err != nil {
			t.Fatalf("CreateInteraction failed: %v", err)
		}
		if _, err := ClaimInteraction(database, in.ID, time.Now()); err != nil {
			t.Fatalf("ClaimInteraction failed: %v", err)
		}
	}

	if err := CompleteInteraction(database, success.ID, "msg-123"); err != nil {
		t.Fatalf("CompleteInteraction failed: %v", err)
	}
	if err := FailInteraction(database, failure.ID, "gateway unreachable"); err != nil {
		t.Fatalf("FailInteraction failed: %v", err)
	}

	got, err := GetInteraction(database, success.ID)
	if err != nil {
		t.Fatalf("GetInteraction failed: %v", err)
	}
	if got.Status != models.InteractionCompleted {
		t.Errorf("Expected COMPLETED, got %s", got.Status)
	}
	if got.ExternalID != "msg-123" {
		t.Errorf("Expected provider id msg-123, got %q", got.ExternalID)
	}

	got, err = GetInteraction(database, failure.ID)
	if err != nil {
		t.Fatalf("GetInteraction failed: %v", err)
	}
	if got.Status != models.InteractionFailed {
		t.Errorf("Expected FAILED, got %s", got.Status)
	}
	if got.Error != "gateway unreachable" {
		t.Errorf("Expected error message recorded, got %q", got.Error)
	}

	// Terminal rows never show up as due again
	due, err := ListDueInteractions(database, time.Now().Add(time.Hour), 100)
	if err != nil {
		t.Fatalf("ListDueInteractions failed: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("Expected no due rows after terminal transitions, got %d", len(due))
	}
}

func TestListDueInteractionsSkipsFuture(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Org"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	client := &models.Client{OrganizationID: org.ID, Name: "Acme", Email: "acme@example.com"}
	if err := CreateClient(database, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	now := time.Now()
	past := &models.ScheduledInteraction{
		ClientID: client.ID, Channel: models.ChannelEmail,
		Content: "due", ScheduledAt: now.Add(-time.Minute),
	}
	future := &models.ScheduledInteraction{
		ClientID: client.ID, Channel: models.ChannelEmail,
		Content: "later", ScheduledAt: now.Add(time.Hour),
	}
	for _, in := range []*models.ScheduledInteraction{past, future} {
		if err := CreateInteraction(database, in); err != nil {
			t.Fatalf("CreateInteraction failed: %v", err)
		}
	}

	due, err := ListDueInteractions(database, now, 100)
	if err != nil {
		t.Fatalf("ListDueInteractions failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("Expected 1 due row, got %d", len(due))
	}
	if due[0].ID != past.ID {
		t.Error("Wrong row selected as due")
	}
}

func TestHasInteractionOnDay(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Org"}
	if err := CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	client := &models.Client{OrganizationID: org.ID, Name: "Acme", Email: "acme@example.com"}
	if err := CreateClient(database, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	in := &models.ScheduledInteraction{
		ClientID: client.ID, Channel: models.ChannelEmail,
		Template: models.TemplateBirthday, Content: "feliz cumpleaños",
		ScheduledAt: day,
	}
	if err := CreateInteraction(database, in); err != nil {
		t.Fatalf("CreateInteraction failed: %v", err)
	}

	exists, err := HasInteractionOnDay(database, client.ID, models.TemplateBirthday, day)
	if err != nil {
		t.Fatalf("HasInteractionOnDay failed: %v", err)
	}
	if !exists {
		t.Error("Expected same-day reminder to be detected")
	}

	exists, err = HasInteractionOnDay(database, client.ID, models.TemplateBirthday, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("HasInteractionOnDay failed: %v", err)
	}
	if exists {
		t.Error("Next-day check must not match")
	}

	exists, err = HasInteractionOnDay(database, client.ID, models.TemplatePaymentDue, day)
	if err != nil {
		t.Fatalf("HasInteractionOnDay failed: %v", err)
	}
	if exists {
		t.Error("Different template must not match")
	}

	exists, err = HasInteractionOnDay(database, uuid.New(), models.TemplateBirthday, day)
	if err != nil {
		t.Fatalf("HasInteractionOnDay failed: %v", err)
	}
	if exists {
		t.Error("Different client must not match")
	}
}
