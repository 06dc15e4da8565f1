// ABOUTME: Email sender with per-tenant SMTP transport resolution
// ABOUTME: Resolution order is tenant settings, integration row, process env
package dispatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/chronusdev/bridge/cache"
	"github.com/chronusdev/bridge/config"
	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// IntegrationKindSMTP is the integrations-table kind carrying mail settings.
const IntegrationKindSMTP = "SMTP"

// transportCacheTTL bounds how long a resolved transport is reused before
// the settings tables are consulted again.
const transportCacheTTL = 10 * time.Minute

// Transport is a resolved SMTP endpoint.
type Transport struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	From     string `json:"from"`
}

type dialFunc func(ctx context.Context, t *Transport, msg *mail.Msg) error

// EmailSender delivers EMAIL interactions over SMTP. The transport is
// resolved per tenant and cached in the TTL store.
type EmailSender struct {
	db    *sql.DB
	cache *cache.Store
	cfg   *config.Config
	dial  dialFunc
}

func NewEmailSender(database *sql.DB, store *cache.Store, cfg *config.Config) *EmailSender {
	return &EmailSender{
		db:    database,
		cache: store,
		cfg:   cfg,
		dial:  smtpDial,
	}
}

func (e *EmailSender) Send(ctx context.Context, client *models.Client, in *models.ScheduledInteraction) (string, error) {
	if client.Email == "" {
		return "", fmt.Errorf("client %s has no email address", client.ID)
	}

	transport, err := e.ResolveTransport(client.OrganizationID)
	if err != nil {
		return "", err
	}

	msg := mail.NewMsg()
	if err := msg.From(transport.From); err != nil {
		return "", fmt.Errorf("invalid from address %q: %w", transport.From, err)
	}
	if err := msg.To(client.Email); err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", client.Email, err)
	}

	subject := in.Subject
	if subject == "" {
		subject = "Mensaje de " + transport.From
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, in.Content)
	msg.SetMessageID()

	if err := e.dial(ctx, transport, msg); err != nil {
		return "", err
	}

	return msg.GetMessageID(), nil
}

// Notify delivers an outbox notification using the tenant-independent
// process transport.
func (e *EmailSender) Notify(ctx context.Context, email, subject, body string) (string, error) {
	transport := e.envTransport()
	if transport == nil {
		return "", errors.New("no system smtp transport configured")
	}

	msg := mail.NewMsg()
	if err := msg.From(transport.From); err != nil {
		return "", fmt.Errorf("invalid from address %q: %w", transport.From, err)
	}
	if err := msg.To(email); err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", email, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	msg.SetMessageID()

	if err := e.dial(ctx, transport, msg); err != nil {
		return "", err
	}
	return msg.GetMessageID(), nil
}

// ResolveTransport returns the SMTP transport for a tenant: explicit tenant
// settings, then the tenant's SMTP integration, then the process env. First
// match wins. Results are cached with a TTL.
func (e *EmailSender) ResolveTransport(orgID uuid.UUID) (*Transport, error) {
	cacheKey := "smtp:" + orgID.String()

	if e.cache != nil {
		if raw, err := e.cache.Get(cacheKey); err == nil {
			var t Transport
			if err := json.Unmarshal(raw, &t); err == nil {
				return &t, nil
			}
		}
	}

	transport, err := e.resolveUncached(orgID)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if raw, err := json.Marshal(transport); err == nil {
			if err := e.cache.Set(cacheKey, raw, transportCacheTTL); err != nil {
				log.Printf("Warning: failed to cache transport for %s: %v", orgID, err)
			}
		}
	}

	return transport, nil
}

func (e *EmailSender) resolveUncached(orgID uuid.UUID) (*Transport, error) {
	// Tier 1: explicit tenant settings
	settings, err := db.GetSMTPSettings(e.db, orgID)
	if err != nil {
		return nil, err
	}
	if settings != nil && settings.Host != "" {
		return &Transport{
			Host:     settings.Host,
			Port:     settings.Port,
			Username: settings.Username,
			Password: settings.Password,
			From:     settings.FromAddr,
		}, nil
	}

	// Tier 2: tenant SMTP integration
	raw, err := db.GetIntegrationSettings(e.db, orgID, IntegrationKindSMTP)
	if err != nil {
		return nil, err
	}
	if raw != "" {
		var t Transport
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("invalid smtp integration settings: %w", err)
		}
		if t.Host != "" {
			return &t, nil
		}
	}

	// Tier 3: process env
	if t := e.envTransport(); t != nil {
		return t, nil
	}

	return nil, fmt.Errorf("no smtp transport configured for organization %s", orgID)
}

func (e *EmailSender) envTransport() *Transport {
	if e.cfg == nil || !e.cfg.HasSMTP() {
		return nil
	}
	port, err := strconv.Atoi(e.cfg.SMTPPort)
	if err != nil {
		port = 587
	}
	return &Transport{
		Host:     e.cfg.SMTPHost,
		Port:     port,
		Username: e.cfg.SMTPUser,
		Password: e.cfg.SMTPPass,
		From:     e.cfg.SMTPFrom,
	}
}

func smtpDial(ctx context.Context, t *Transport, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(t.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if t.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.Username),
			mail.WithPassword(t.Password),
		)
	}

	client, err := mail.NewClient(t.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
