// ABOUTME: Outbox database operations
// ABOUTME: Durable queue for best-effort side effects with retry scheduling
package db

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/chronusdev/bridge/models"
	"github.com/oklog/ulid/v2"
)

// Backoff parameters for outbox redelivery.
const (
	OutboxBaseDelay   = time.Minute
	OutboxMaxDelay    = time.Hour
	OutboxMaxAttempts = 8
)

func newOutboxID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// EnqueueOutbox records a side effect for asynchronous delivery.
func EnqueueOutbox(db *sql.DB, kind, payload string) (*models.OutboxEntry, error) {
	now := time.Now()
	entry := &models.OutboxEntry{
		ID:            newOutboxID(),
		Kind:          kind,
		Payload:       payload,
		Status:        models.OutboxPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := db.Exec(`
		INSERT INTO outbox (id, kind, payload, status, attempts, next_attempt_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?)
	`, entry.ID, entry.Kind, entry.Payload, entry.Status, entry.NextAttemptAt, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue outbox entry: %w", err)
	}

	return entry, nil
}

// ListDueOutbox returns pending entries whose next attempt time has passed.
func ListDueOutbox(db *sql.DB, now time.Time, limit int) ([]models.OutboxEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.Query(`
		SELECT id, kind, payload, status, attempts, next_attempt_at, last_error, created_at, updated_at, delivered_at
		FROM outbox
		WHERE status = ? AND next_attempt_at <= ?
		ORDER BY next_attempt_at
		LIMIT ?
	`, models.OutboxPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []models.OutboxEntry
	for rows.Next() {
		var e models.OutboxEntry
		var lastError sql.NullString
		var deliveredAt sql.NullTime

		if err := rows.Scan(&e.ID, &e.Kind, &e.Payload, &e.Status, &e.Attempts,
			&e.NextAttemptAt, &lastError, &e.CreatedAt, &e.UpdatedAt, &deliveredAt); err != nil {
			return nil, err
		}
		if lastError.Valid {
			e.LastError = lastError.String
		}
		if deliveredAt.Valid {
			e.DeliveredAt = &deliveredAt.Time
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// MarkOutboxDelivered finalizes a successfully delivered entry.
func MarkOutboxDelivered(db *sql.DB, id string) error {
	now := time.Now()
	_, err := db.Exec(`
		UPDATE outbox
		SET status = ?, delivered_at = ?, updated_at = ?
		WHERE id = ?
	`, models.OutboxDelivered, now, now, id)

	if err != nil {
		return fmt.Errorf("failed to mark outbox delivered: %w", err)
	}
	return nil
}

// MarkOutboxAttemptFailed records a failed attempt, rescheduling with
// exponential backoff until the attempt cap, after which the entry is FAILED.
func MarkOutboxAttemptFailed(db *sql.DB, entry *models.OutboxEntry, message string, now time.Time) error {
	attempts := entry.Attempts + 1

	if attempts >= OutboxMaxAttempts {
		_, err := db.Exec(`
			UPDATE outbox
			SET status = ?, attempts = ?, last_error = ?, updated_at = ?
			WHERE id = ?
		`, models.OutboxFailed, attempts, message, now, entry.ID)
		if err != nil {
			return fmt.Errorf("failed to mark outbox failed: %w", err)
		}
		return nil
	}

	next := now.Add(BackoffDelay(attempts))
	_, err := db.Exec(`
		UPDATE outbox
		SET attempts = ?, last_error = ?, next_attempt_at = ?, updated_at = ?
		WHERE id = ?
	`, attempts, message, next, now, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to reschedule outbox entry: %w", err)
	}

	return nil
}

// CountOutboxByStatus returns status -> row count for sync_status views.
func CountOutboxByStatus(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

// BackoffDelay computes the delay before the next attempt: base doubled per
// attempt, capped at the maximum.
func BackoffDelay(attempts int) time.Duration {
	delay := OutboxBaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= OutboxMaxDelay {
			return OutboxMaxDelay
		}
	}
	if delay > OutboxMaxDelay {
		return OutboxMaxDelay
	}
	return delay
}
