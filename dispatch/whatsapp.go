// ABOUTME: WhatsApp sender backed by a third-party messaging gateway
// ABOUTME: Static bearer token or OAuth2 client-credentials authentication
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chronusdev/bridge/config"
	"github.com/chronusdev/bridge/models"
	"golang.org/x/oauth2/clientcredentials"
)

// WhatsAppSender posts messages to the configured gateway.
type WhatsAppSender struct {
	apiURL string
	token  string
	client *http.Client
}

// NewWhatsAppSender builds a sender from config. When gateway client
// credentials are configured, tokens are fetched and refreshed via OAuth2;
// otherwise the static token is sent as a bearer header.
func NewWhatsAppSender(cfg *config.Config) *WhatsAppSender {
	s := &WhatsAppSender{
		apiURL: cfg.WhatsAppAPIURL,
		token:  cfg.WhatsAppToken,
	}

	if cfg.WhatsAppClientID != "" && cfg.WhatsAppClientSecret != "" && cfg.WhatsAppTokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.WhatsAppClientID,
			ClientSecret: cfg.WhatsAppClientSecret,
			TokenURL:     cfg.WhatsAppTokenURL,
		}
		s.client = cc.Client(context.Background())
		s.token = ""
	} else {
		s.client = &http.Client{Timeout: 15 * time.Second}
	}

	return s
}

type whatsAppRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type whatsAppResponse struct {
	MessageID string `json:"messageId"`
	Error     string `json:"error,omitempty"`
}

func (s *WhatsAppSender) Send(ctx context.Context, client *models.Client, in *models.ScheduledInteraction) (string, error) {
	if s.apiURL == "" {
		return "", fmt.Errorf("whatsapp gateway is not configured")
	}
	if client.Phone == "" {
		return "", fmt.Errorf("client %s has no phone number", client.ID)
	}

	body, err := json.Marshal(whatsAppRequest{To: client.Phone, Body: in.Content})
	if err != nil {
		return "", fmt.Errorf("failed to encode whatsapp request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp gateway unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("whatsapp gateway returned status %d: %s", resp.StatusCode, raw)
	}

	var parsed whatsAppResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("invalid whatsapp gateway response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("whatsapp gateway error: %s", parsed.Error)
	}

	return parsed.MessageID, nil
}
