// ABOUTME: Task database operations
// ABOUTME: Handles task creation and CRM ticket-id idempotency lookups
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

func CreateTask(db *sql.DB, task *models.Task) error {
	task.ID = uuid.New()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.TaskStatusOpen
	}

	var crmTicketID *string
	if task.CRMTicketID != "" {
		crmTicketID = &task.CRMTicketID
	}

	_, err := db.Exec(`
		INSERT INTO tasks (id, project_id, title, description, status, crm_ticket_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID.String(), task.ProjectID.String(), task.Title, task.Description, task.Status,
		crmTicketID, task.CreatedAt, task.UpdatedAt)

	return err
}

// FindTaskByCRMTicketID is the idempotency check for ticket webhooks.
func FindTaskByCRMTicketID(db *sql.DB, crmTicketID string) (*models.Task, error) {
	if crmTicketID == "" {
		return nil, nil
	}
	return scanTask(db.QueryRow(`
		SELECT id, project_id, title, description, status, crm_ticket_id, created_at, updated_at
		FROM tasks WHERE crm_ticket_id = ?
	`, crmTicketID))
}

func GetTask(db *sql.DB, id uuid.UUID) (*models.Task, error) {
	return scanTask(db.QueryRow(`
		SELECT id, project_id, title, description, status, crm_ticket_id, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id.String()))
}

func UpdateTaskStatus(db *sql.DB, id uuid.UUID, status string) error {
	_, err := db.Exec(`
		UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?
	`, status, time.Now(), id.String())

	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

func scanTask(row *sql.Row) (*models.Task, error) {
	t := &models.Task{}
	var id, projectIDStr string
	var description, crmTicketID sql.NullString

	err := row.Scan(&id, &projectIDStr, &t.Title, &description, &t.Status, &crmTicketID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse task ID: %w", err)
	}
	t.ProjectID, err = uuid.Parse(projectIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse project ID: %w", err)
	}
	if description.Valid {
		t.Description = description.String
	}
	if crmTicketID.Valid {
		t.CRMTicketID = crmTicketID.String
	}

	return t, nil
}
