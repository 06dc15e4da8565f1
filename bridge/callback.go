// ABOUTME: HTTP client for acknowledgement callbacks to the CRM
// ABOUTME: Posts ticket-received notifications with the shared sync key
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CallbackClient posts acknowledgements back to the CRM.
type CallbackClient struct {
	baseURL string
	syncKey string
	client  *http.Client
}

func NewCallbackClient(baseURL, syncKey string) *CallbackClient {
	return &CallbackClient{
		baseURL: baseURL,
		syncKey: syncKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// PostTicketReceived delivers the ticket-received acknowledgement. Non-2xx
// responses are errors so the outbox can reschedule.
func (c *CallbackClient) PostTicketReceived(ctx context.Context, payload TicketReceivedCallback) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode callback: %w", err)
	}

	url := c.baseURL + "/webhooks/chronusdev/ticket-received"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Sync-Key", c.syncKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback to CRM failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("CRM callback returned status %d", resp.StatusCode)
	}

	return nil
}
