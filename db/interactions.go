// ABOUTME: Scheduled interaction database operations
// ABOUTME: Handles queue inserts, due-row claiming, terminal updates, and reminder dedup
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

func CreateInteraction(db *sql.DB, in *models.ScheduledInteraction) error {
	in.ID = uuid.New()
	in.CreatedAt = time.Now()
	if in.Status == "" {
		in.Status = models.InteractionPending
	}

	_, err := db.Exec(`
		INSERT INTO scheduled_interactions
			(id, client_id, channel, template, subject, content, scheduled_at, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, in.ID.String(), in.ClientID.String(), in.Channel, in.Template, in.Subject, in.Content,
		in.ScheduledAt, in.Status, in.CreatedAt)

	return err
}

// ListDueInteractions returns PENDING rows whose scheduled time has passed.
func ListDueInteractions(db *sql.DB, now time.Time, limit int) ([]models.ScheduledInteraction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.Query(`
		SELECT id, client_id, channel, template, subject, content, scheduled_at,
		       status, external_id, error, attempted_at, created_at
		FROM scheduled_interactions
		WHERE status = ? AND scheduled_at <= ?
		ORDER BY scheduled_at
		LIMIT ?
	`, models.InteractionPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var due []models.ScheduledInteraction
	for rows.Next() {
		in, err := scanInteractionRow(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, *in)
	}

	return due, rows.Err()
}

// ClaimInteraction transitions a row PENDING -> PROCESSING. Returns false if
// the row was already claimed or finished by another dispatcher, making the
// check-then-act on due rows safe across instances.
func ClaimInteraction(db *sql.DB, id uuid.UUID, now time.Time) (bool, error) {
	res, err := db.Exec(`
		UPDATE scheduled_interactions
		SET status = ?, attempted_at = ?
		WHERE id = ? AND status = ?
	`, models.InteractionProcessing, now, id.String(), models.InteractionPending)
	if err != nil {
		return false, fmt.Errorf("failed to claim interaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CompleteInteraction marks a claimed row COMPLETED with the provider id.
func CompleteInteraction(db *sql.DB, id uuid.UUID, externalID string) error {
	_, err := db.Exec(`
		UPDATE scheduled_interactions
		SET status = ?, external_id = ?, error = NULL
		WHERE id = ?
	`, models.InteractionCompleted, externalID, id.String())

	if err != nil {
		return fmt.Errorf("failed to complete interaction: %w", err)
	}
	return nil
}

// FailInteraction marks a claimed row FAILED with the captured error message.
// FAILED is terminal; rows are never retried automatically.
func FailInteraction(db *sql.DB, id uuid.UUID, message string) error {
	_, err := db.Exec(`
		UPDATE scheduled_interactions
		SET status = ?, error = ?
		WHERE id = ?
	`, models.InteractionFailed, message, id.String())

	if err != nil {
		return fmt.Errorf("failed to fail interaction: %w", err)
	}
	return nil
}

func GetInteraction(db *sql.DB, id uuid.UUID) (*models.ScheduledInteraction, error) {
	row := db.QueryRow(`
		SELECT id, client_id, channel, template, subject, content, scheduled_at,
		       status, external_id, error, attempted_at, created_at
		FROM scheduled_interactions WHERE id = ?
	`, id.String())

	in, err := scanInteraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return in, err
}

func ListClientInteractions(db *sql.DB, clientID uuid.UUID, limit int) ([]models.ScheduledInteraction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id, client_id, channel, template, subject, content, scheduled_at,
		       status, external_id, error, attempted_at, created_at
		FROM scheduled_interactions
		WHERE client_id = ?
		ORDER BY scheduled_at DESC
		LIMIT ?
	`, clientID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var interactions []models.ScheduledInteraction
	for rows.Next() {
		in, err := scanInteractionRow(rows)
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, *in)
	}

	return interactions, rows.Err()
}

// HasInteractionOnDay reports whether a reminder for the same client and
// template already exists on the given calendar day. Guards the daily
// reminder job against duplicate creation.
func HasInteractionOnDay(db *sql.DB, clientID uuid.UUID, template string, day time.Time) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM scheduled_interactions
		WHERE client_id = ? AND template = ? AND scheduled_at >= ? AND scheduled_at < ?
	`, clientID.String(), template, dayStart, dayEnd).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check reminder dedup: %w", err)
	}

	return count > 0, nil
}

// CountInteractionsByStatus returns status -> row count for sync_status views.
func CountInteractionsByStatus(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT status, COUNT(*) FROM scheduled_interactions GROUP BY status
	`)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInteraction(s rowScanner) (*models.ScheduledInteraction, error) {
	in := &models.ScheduledInteraction{}
	var id, clientIDStr string
	var template, subject, externalID, errMsg sql.NullString
	var attemptedAt sql.NullTime

	err := s.Scan(&id, &clientIDStr, &in.Channel, &template, &subject, &in.Content,
		&in.ScheduledAt, &in.Status, &externalID, &errMsg, &attemptedAt, &in.CreatedAt)
	if err != nil {
		return nil, err
	}

	in.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse interaction ID: %w", err)
	}
	in.ClientID, err = uuid.Parse(clientIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client ID: %w", err)
	}
	if template.Valid {
		in.Template = template.String
	}
	if subject.Valid {
		in.Subject = subject.String
	}
	if externalID.Valid {
		in.ExternalID = externalID.String
	}
	if errMsg.Valid {
		in.Error = errMsg.String
	}
	if attemptedAt.Valid {
		in.AttemptedAt = &attemptedAt.Time
	}

	return in, nil
}

func scanInteractionRow(rows *sql.Rows) (*models.ScheduledInteraction, error) {
	return scanInteraction(rows)
}
