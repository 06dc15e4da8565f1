// ABOUTME: Tests for scheduled interaction MCP tool handlers
// ABOUTME: Validates scheduling inputs, defaults, and per-client listing
package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/chronusdev/bridge/models"
)

func TestScheduleInteraction(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := createTestOrg(t, database, "Org A", "")
	client := createTestClient(t, database, org, "Acme SL", "contacto@acme.example")

	handler := NewInteractionHandlers(database)
	scheduledAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	_, out, err := handler.ScheduleInteraction(context.Background(), nil, ScheduleInteractionInput{
		ClientID:    client.ID.String(),
		Channel:     models.ChannelEmail,
		Subject:     "Seguimiento",
		Content:     "Hola, ¿cómo va todo?",
		ScheduledAt: scheduledAt.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("ScheduleInteraction failed: %v", err)
	}

	if out.Status != models.InteractionPending {
		t.Errorf("Expected PENDING, got %s", out.Status)
	}
	if out.ScheduledAt != scheduledAt.Format(time.RFC3339) {
		t.Errorf("Expected scheduled_at %s, got %s", scheduledAt.Format(time.RFC3339), out.ScheduledAt)
	}
}

func TestScheduleInteractionDefaultsToNow(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := createTestOrg(t, database, "Org A", "")
	client := createTestClient(t, database, org, "Acme SL", "contacto@acme.example")

	handler := NewInteractionHandlers(database)
	before := time.Now().Add(-time.Second)

	_, out, err := handler.ScheduleInteraction(context.Background(), nil, ScheduleInteractionInput{
		ClientID: client.ID.String(),
		Channel:  models.ChannelWhatsApp,
		Content:  "Hola",
	})
	if err != nil {
		t.Fatalf("ScheduleInteraction failed: %v", err)
	}

	got, err := time.Parse(time.RFC3339, out.ScheduledAt)
	if err != nil {
		t.Fatalf("Bad scheduled_at in output: %v", err)
	}
	if got.Before(before) || got.After(time.Now().Add(time.Second)) {
		t.Errorf("Expected scheduled_at near now, got %v", got)
	}
}

func TestScheduleInteractionValidation(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := createTestOrg(t, database, "Org A", "")
	client := createTestClient(t, database, org, "Acme SL", "contacto@acme.example")

	handler := NewInteractionHandlers(database)
	ctx := context.Background()

	if _, _, err := handler.ScheduleInteraction(ctx, nil, ScheduleInteractionInput{
		Channel: models.ChannelEmail, Content: "Hola",
	}); err == nil {
		t.Error("Expected error for missing client_id")
	}

	if _, _, err := handler.ScheduleInteraction(ctx, nil, ScheduleInteractionInput{
		ClientID: client.ID.String(), Channel: "FAX", Content: "Hola",
	}); err == nil {
		t.Error("Expected error for invalid channel")
	}

	if _, _, err := handler.ScheduleInteraction(ctx, nil, ScheduleInteractionInput{
		ClientID: client.ID.String(), Channel: models.ChannelEmail,
	}); err == nil {
		t.Error("Expected error for missing content")
	}

	if _, _, err := handler.ScheduleInteraction(ctx, nil, ScheduleInteractionInput{
		ClientID: client.ID.String(), Channel: models.ChannelEmail,
		Content: "Hola", ScheduledAt: "mañana",
	}); err == nil {
		t.Error("Expected error for unparseable scheduled_at")
	}
}

func TestListInteractions(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := createTestOrg(t, database, "Org A", "")
	client := createTestClient(t, database, org, "Acme SL", "contacto@acme.example")
	other := createTestClient(t, database, org, "Beta SA", "info@beta.example")

	handler := NewInteractionHandlers(database)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, _, err := handler.ScheduleInteraction(ctx, nil, ScheduleInteractionInput{
			ClientID: client.ID.String(), Channel: models.ChannelEmail, Content: "Hola",
		}); err != nil {
			t.Fatalf("ScheduleInteraction failed: %v", err)
		}
	}
	if _, _, err := handler.ScheduleInteraction(ctx, nil, ScheduleInteractionInput{
		ClientID: other.ID.String(), Channel: models.ChannelEmail, Content: "Hola",
	}); err != nil {
		t.Fatalf("ScheduleInteraction failed: %v", err)
	}

	_, out, err := handler.ListInteractions(ctx, nil, ListInteractionsInput{ClientID: client.ID.String()})
	if err != nil {
		t.Fatalf("ListInteractions failed: %v", err)
	}
	if len(out.Interactions) != 2 {
		t.Errorf("Expected 2 interactions, got %d", len(out.Interactions))
	}
}
