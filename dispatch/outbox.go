// ABOUTME: Outbox worker that delivers queued side effects with retry and backoff
// ABOUTME: Handles admin notification emails and CRM acknowledgement callbacks
package dispatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/chronusdev/bridge/bridge"
	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
)

// Notifier sends a notification email outside any tenant context.
type Notifier interface {
	Notify(ctx context.Context, email, subject, body string) (string, error)
}

// CallbackPoster posts ticket-received acknowledgements to the CRM.
type CallbackPoster interface {
	PostTicketReceived(ctx context.Context, payload bridge.TicketReceivedCallback) error
}

// OutboxWorker drains due outbox entries. Failed deliveries are rescheduled
// with exponential backoff until the attempt cap marks them FAILED.
type OutboxWorker struct {
	db       *sql.DB
	notifier Notifier
	callback CallbackPoster
}

func NewOutboxWorker(database *sql.DB, notifier Notifier, callback CallbackPoster) *OutboxWorker {
	return &OutboxWorker{
		db:       database,
		notifier: notifier,
		callback: callback,
	}
}

// RunOnce delivers every entry due at the given instant.
func (w *OutboxWorker) RunOnce(ctx context.Context, now time.Time) error {
	due, err := db.ListDueOutbox(w.db, now, 0)
	if err != nil {
		return fmt.Errorf("failed to list due outbox entries: %w", err)
	}

	for i := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.process(ctx, &due[i], now)
	}

	return nil
}

func (w *OutboxWorker) process(ctx context.Context, entry *models.OutboxEntry, now time.Time) {
	if err := w.deliver(ctx, entry); err != nil {
		log.Printf("Outbox entry %s (%s) attempt %d failed: %v", entry.ID, entry.Kind, entry.Attempts+1, err)
		if merr := db.MarkOutboxAttemptFailed(w.db, entry, err.Error(), now); merr != nil {
			log.Printf("Warning: failed to reschedule outbox entry %s: %v", entry.ID, merr)
		}
		return
	}

	if err := db.MarkOutboxDelivered(w.db, entry.ID); err != nil {
		log.Printf("Warning: failed to mark outbox entry %s delivered: %v", entry.ID, err)
	}
}

func (w *OutboxWorker) deliver(ctx context.Context, entry *models.OutboxEntry) error {
	switch entry.Kind {
	case models.OutboxNotification:
		var payload bridge.NotificationPayload
		if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
			return fmt.Errorf("invalid notification payload: %w", err)
		}
		_, err := w.notifier.Notify(ctx, payload.Email, payload.Subject, payload.Body)
		return err

	case models.OutboxCRMCallback:
		var payload bridge.TicketReceivedCallback
		if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
			return fmt.Errorf("invalid callback payload: %w", err)
		}
		return w.callback.PostTicketReceived(ctx, payload)

	default:
		return fmt.Errorf("unknown outbox kind %s", entry.Kind)
	}
}
