// ABOUTME: Ticket ingestion flow for ticket-created webhooks
// ABOUTME: Resolves tenant, ensures client and support project, creates the task idempotently
package bridge

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
)

// TicketResult is what a ticket-created delivery resolves to.
type TicketResult struct {
	TaskID      string
	ClientID    string
	ProjectName string
	Created     bool
}

// IngestTicket processes a ticket-created delivery end to end. Repeated
// deliveries for the same ticket id return the original task. Side effects
// past task creation (membership, notifications, CRM callback) are best
// effort: their failures are logged, enqueued for retry where durable, and
// never roll back the task.
func IngestTicket(database *sql.DB, payload TicketWebhook) (*TicketResult, error) {
	if payload.Ticket.ID == "" {
		return nil, fmt.Errorf("ticket id is required")
	}

	org, orgCreated, err := ResolveOrganization(database, payload.OrganizationID)
	if err != nil {
		return nil, err
	}
	if orgCreated {
		log.Printf("Auto-created placeholder organization %s for CRM org %s", org.ID, payload.OrganizationID)
	}

	client, _, err := SyncClientFromCRM(database, payload.Customer, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sync client: %w", err)
	}

	projectName := fmt.Sprintf("Soporte %s", client.Name)
	project, projectCreated, err := db.EnsureSupportProject(database, org.ID, client.ID, projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure support project: %w", err)
	}
	if projectCreated {
		log.Printf("Created support project %q for client %s", project.Name, client.ID)
	}

	ensureAdminMembership(database, org, project)

	// Idempotency: a re-delivered webhook returns the original task
	existing, err := db.FindTaskByCRMTicketID(database, payload.Ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed idempotency lookup: %w", err)
	}
	if existing != nil {
		return &TicketResult{
			TaskID:      existing.ID.String(),
			ClientID:    client.ID.String(),
			ProjectName: project.Name,
			Created:     false,
		}, nil
	}

	task := &models.Task{
		ProjectID:   project.ID,
		Title:       fmt.Sprintf("[TICKET] %s", payload.Ticket.Title),
		Description: payload.Ticket.Description,
		CRMTicketID: payload.Ticket.ID,
	}
	if err := db.CreateTask(database, task); err != nil {
		// A concurrent delivery may have won the unique crm_ticket_id race
		winner, ferr := db.FindTaskByCRMTicketID(database, payload.Ticket.ID)
		if ferr == nil && winner != nil {
			return &TicketResult{
				TaskID:      winner.ID.String(),
				ClientID:    client.ID.String(),
				ProjectName: project.Name,
				Created:     false,
			}, nil
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	enqueueTicketSideEffects(database, org, project, task, payload)

	return &TicketResult{
		TaskID:      task.ID.String(),
		ClientID:    client.ID.String(),
		ProjectName: project.Name,
		Created:     true,
	}, nil
}

// ensureAdminMembership adds org admins and managers to the project.
// Best effort: a membership failure never blocks ticket ingestion.
func ensureAdminMembership(database *sql.DB, org *models.Organization, project *models.Project) {
	users, err := db.ListOrgUsersByRole(database, org.ID, models.RoleAdmin, models.RoleManager)
	if err != nil {
		log.Printf("Warning: failed to list org admins for %s: %v", org.ID, err)
		return
	}

	for _, u := range users {
		if err := db.AddProjectMember(database, project.ID, u.ID, u.Role); err != nil {
			log.Printf("Warning: failed to add %s to project %s: %v", u.Email, project.ID, err)
		}
	}
}

// enqueueTicketSideEffects records the admin notifications and the CRM
// acknowledgement callback in the outbox for asynchronous delivery.
func enqueueTicketSideEffects(database *sql.DB, org *models.Organization, project *models.Project, task *models.Task, payload TicketWebhook) {
	admins, err := db.ListOrgUsersByRole(database, org.ID, models.RoleAdmin)
	if err != nil {
		log.Printf("Warning: failed to list admins for notification fan-out: %v", err)
	}
	for _, admin := range admins {
		notification := NotificationPayload{
			UserID:  admin.ID.String(),
			Email:   admin.Email,
			Subject: fmt.Sprintf("Nuevo ticket: %s", payload.Ticket.Title),
			Body:    fmt.Sprintf("Se creó la tarea %q en el proyecto %q.", task.Title, project.Name),
		}
		raw, err := json.Marshal(notification)
		if err != nil {
			log.Printf("Warning: failed to encode notification: %v", err)
			continue
		}
		if _, err := db.EnqueueOutbox(database, models.OutboxNotification, string(raw)); err != nil {
			log.Printf("Warning: failed to enqueue notification for %s: %v", admin.Email, err)
		}
	}

	callback := TicketReceivedCallback{
		TicketID:    payload.Ticket.ID,
		TaskID:      task.ID.String(),
		ProjectName: project.Name,
		ReceivedAt:  time.Now().UTC(),
	}
	raw, err := json.Marshal(callback)
	if err != nil {
		log.Printf("Warning: failed to encode CRM callback: %v", err)
		return
	}
	if _, err := db.EnqueueOutbox(database, models.OutboxCRMCallback, string(raw)); err != nil {
		log.Printf("Warning: failed to enqueue CRM callback for ticket %s: %v", payload.Ticket.ID, err)
	}
}
