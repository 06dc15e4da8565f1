// ABOUTME: Tests for the outbox delivery worker
// ABOUTME: Covers notification and callback routing, backoff rescheduling, and bad payloads
package dispatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/chronusdev/bridge/bridge"
	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
)

type stubNotifier struct {
	err    error
	emails []string
}

func (n *stubNotifier) Notify(_ context.Context, email, _, _ string) (string, error) {
	n.emails = append(n.emails, email)
	return "msg-1", n.err
}

type stubCallbackPoster struct {
	err      error
	payloads []bridge.TicketReceivedCallback
}

func (p *stubCallbackPoster) PostTicketReceived(_ context.Context, payload bridge.TicketReceivedCallback) error {
	p.payloads = append(p.payloads, payload)
	return p.err
}

func enqueueNotification(t *testing.T, database *sql.DB, email string) *models.OutboxEntry {
	t.Helper()
	raw, err := json.Marshal(bridge.NotificationPayload{
		UserID: "u1", Email: email, Subject: "Nuevo ticket", Body: "Detalle",
	})
	if err != nil {
		t.Fatalf("Failed to encode payload: %v", err)
	}
	entry, err := db.EnqueueOutbox(database, models.OutboxNotification, string(raw))
	if err != nil {
		t.Fatalf("EnqueueOutbox failed: %v", err)
	}
	return entry
}

func outboxStatus(t *testing.T, database *sql.DB, id string) (string, int) {
	t.Helper()
	var status string
	var attempts int
	err := database.QueryRow(`SELECT status, attempts FROM outbox WHERE id = ?`, id).Scan(&status, &attempts)
	if err != nil {
		t.Fatalf("Failed to read outbox row: %v", err)
	}
	return status, attempts
}

func TestOutboxWorkerDeliversNotification(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	entry := enqueueNotification(t, database, "admin@example.com")

	notifier := &stubNotifier{}
	worker := NewOutboxWorker(database, notifier, &stubCallbackPoster{})
	if err := worker.RunOnce(context.Background(), time.Now().Add(time.Second)); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if len(notifier.emails) != 1 || notifier.emails[0] != "admin@example.com" {
		t.Errorf("Expected one notification to admin@example.com, got %v", notifier.emails)
	}
	status, _ := outboxStatus(t, database, entry.ID)
	if status != models.OutboxDelivered {
		t.Errorf("Expected DELIVERED, got %s", status)
	}
}

func TestOutboxWorkerDeliversCallback(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	raw, _ := json.Marshal(bridge.TicketReceivedCallback{
		TicketID: "t1", TaskID: "task-1", ProjectName: "Soporte Acme", ReceivedAt: time.Now().UTC(),
	})
	entry, err := db.EnqueueOutbox(database, models.OutboxCRMCallback, string(raw))
	if err != nil {
		t.Fatalf("EnqueueOutbox failed: %v", err)
	}

	poster := &stubCallbackPoster{}
	worker := NewOutboxWorker(database, &stubNotifier{}, poster)
	if err := worker.RunOnce(context.Background(), time.Now().Add(time.Second)); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if len(poster.payloads) != 1 || poster.payloads[0].TicketID != "t1" {
		t.Errorf("Expected one callback for ticket t1, got %v", poster.payloads)
	}
	status, _ := outboxStatus(t, database, entry.ID)
	if status != models.OutboxDelivered {
		t.Errorf("Expected DELIVERED, got %s", status)
	}
}

func TestOutboxWorkerReschedulesOnFailure(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	entry := enqueueNotification(t, database, "admin@example.com")

	notifier := &stubNotifier{err: errors.New("smtp down")}
	worker := NewOutboxWorker(database, notifier, &stubCallbackPoster{})

	now := time.Now().Add(time.Second)
	if err := worker.RunOnce(context.Background(), now); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	status, attempts := outboxStatus(t, database, entry.ID)
	if status != models.OutboxPending {
		t.Errorf("Expected entry to stay PENDING for retry, got %s", status)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}

	// The entry was pushed into the future, so an immediate second pass
	// must not touch it again.
	if err := worker.RunOnce(context.Background(), now); err != nil {
		t.Fatalf("Second RunOnce failed: %v", err)
	}
	if len(notifier.emails) != 1 {
		t.Errorf("Rescheduled entry delivered early: %d attempts", len(notifier.emails))
	}

	// After the backoff window passes it is retried.
	if err := worker.RunOnce(context.Background(), now.Add(db.BackoffDelay(1)+time.Second)); err != nil {
		t.Fatalf("Third RunOnce failed: %v", err)
	}
	if len(notifier.emails) != 2 {
		t.Errorf("Expected retry after backoff, got %d attempts", len(notifier.emails))
	}
}

func TestOutboxWorkerFailsUnknownKind(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	entry, err := db.EnqueueOutbox(database, "MYSTERY", "{}")
	if err != nil {
		t.Fatalf("EnqueueOutbox failed: %v", err)
	}

	worker := NewOutboxWorker(database, &stubNotifier{}, &stubCallbackPoster{})
	if err := worker.RunOnce(context.Background(), time.Now().Add(time.Second)); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	status, attempts := outboxStatus(t, database, entry.ID)
	if status != models.OutboxPending || attempts != 1 {
		t.Errorf("Unknown kind should count as a failed attempt, got status=%s attempts=%d", status, attempts)
	}
}
