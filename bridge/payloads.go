// ABOUTME: Wire payload types for CRM webhooks and callbacks
// ABOUTME: Mirrors the JSON bodies exchanged between the CRM and ChronusDev
package bridge

import "time"

// CustomerPayload is the remote customer entity as delivered by the CRM.
type CustomerPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// TicketPayload is the remote ticket entity as delivered by the CRM.
type TicketPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// CustomerWebhook is the body of customer-created and customer-updated
// deliveries. OrganizationID is a hint: a CRM organization id, or a local
// organization id for legacy senders.
type CustomerWebhook struct {
	Customer       CustomerPayload `json:"customer"`
	OrganizationID string          `json:"organizationId"`
}

// TicketWebhook is the body of ticket-created deliveries.
type TicketWebhook struct {
	Ticket         TicketPayload   `json:"ticket"`
	Customer       CustomerPayload `json:"customer"`
	OrganizationID string          `json:"organizationId"`
}

// TicketReceivedCallback is the acknowledgement posted back to the CRM after
// a ticket has been ingested.
type TicketReceivedCallback struct {
	TicketID    string    `json:"ticketId"`
	TaskID      string    `json:"taskId"`
	ProjectName string    `json:"projectName"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

// NotificationPayload is the outbox payload for admin fan-out.
type NotificationPayload struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
