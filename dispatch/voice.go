// ABOUTME: Voice call sender that triggers outbound calls via the voice agent API
// ABOUTME: Posts call requests and records the provider call id as external id
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
)

// VoiceSender triggers an outbound agent call through the voice provider.
type VoiceSender struct {
	apiURL  string
	apiKey  string
	agentID string
	client  *http.Client
}

func NewVoiceSender(cfg *config.Config) *VoiceSender {
	return &VoiceSender{
		apiURL:  cfg.VoiceAPIURL,
		apiKey:  cfg.VoiceAPIKey,
		agentID: cfg.VoiceAgentID,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type voiceRequest struct {
	To      string `json:"to"`
	AgentID string `json:"agentId"`
}

type voiceResponse struct {
	CallID string `json:"callId"`
	Error  string `json:"error,omitempty"`
}

func (s *VoiceSender) Send(ctx context.Context, client *models.Client, in *models.ScheduledInteraction) (string, error) {
	if s.apiURL == "" || s.apiKey == "" {
		return "", fmt.Errorf("voice provider is not configured")
	}
	if client.Phone == "" {
		return "", fmt.Errorf("client %s has no phone number", client.ID)
	}

	body, err := json.Marshal(voiceRequest{To: client.Phone, AgentID: s.agentID})
	if err != nil {
		return "", fmt.Errorf("failed to encode voice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/calls", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build voice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("voice provider unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("voice provider returned status %d: %s", resp.StatusCode, raw)
	}

	var parsed voiceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("invalid voice provider response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("voice provider error: %s", parsed.Error)
	}

	return parsed.CallID, nil
}
