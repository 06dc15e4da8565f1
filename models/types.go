// ABOUTME: Data models for bridge entities
// ABOUTME: Defines Organization, Client, Project, Task, ScheduledInteraction, and Outbox structs
package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	CRMOrganizationID string    `json:"crm_organization_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Client struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CRMCustomerID  string     `json:"crm_customer_id,omitempty"`
	Birthday       *time.Time `json:"birthday,omitempty"`
	PaymentDay     *int       `json:"payment_day,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Project struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	Name           string     `json:"name"`
	Kind           string     `json:"kind"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type User struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type Task struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CRMTicketID string    `json:"crm_ticket_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ScheduledInteraction struct {
	ID          uuid.UUID  `json:"id"`
	ClientID    uuid.UUID  `json:"client_id"`
	Channel     string     `json:"channel"`
	Template    string     `json:"template,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Content     string     `json:"content"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Status      string     `json:"status"`
	ExternalID  string     `json:"external_id,omitempty"`
	Error       string     `json:"error,omitempty"`
	AttemptedAt *time.Time `json:"attempted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type OutboxEntry struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	Payload       string     `json:"payload"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
	LastError     string     `json:"last_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
}

type ActivityEntry struct {
	ID             string    `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	EntityKind     string    `json:"entity_kind"`
	EntityID       string    `json:"entity_id"`
	Verb           string    `json:"verb"`
	Metadata       string    `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Project kind constants.
const (
	ProjectKindSupport = "SUPPORT"
	ProjectKindGeneral = "GENERAL"
)

// User role constants.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleMember  = "MEMBER"
)

// Task status constants.
const (
	TaskStatusOpen       = "OPEN"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

// Interaction channel constants.
const (
	ChannelEmail    = "EMAIL"
	ChannelWhatsApp = "WHATSAPP"
	ChannelVoice    = "VOICE"
)

// Interaction status constants. PROCESSING marks a row claimed by a
// dispatcher instance; a claimed row never reverts to PENDING.
const (
	InteractionPending    = "PENDING"
	InteractionProcessing = "PROCESSING"
	InteractionCompleted  = "COMPLETED"
	InteractionFailed     = "FAILED"
)

// Reminder template constants.
const (
	TemplateBirthday   = "birthday"
	TemplatePaymentDue = "payment_due"
)

// Outbox kind constants.
const (
	OutboxNotification = "NOTIFICATION"
	OutboxCRMCallback  = "CRM_CALLBACK"
)

// Outbox status constants.
const (
	OutboxPending   = "PENDING"
	OutboxDelivered = "DELIVERED"
	OutboxFailed    = "FAILED"
)

// Activity verb constants.
const (
	VerbCreated = "created"
	VerbUpdated = "updated"
	VerbMoved   = "moved"
)

// IsTerminalStatus reports whether an interaction status is final.
func IsTerminalStatus(status string) bool {
	return status == InteractionCompleted || status == InteractionFailed
}
