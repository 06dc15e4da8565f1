// ABOUTME: Channel sender contract for the interaction dispatcher
// ABOUTME: One sender per channel, each treated as an opaque collaborator
package dispatch

import (
	"context"

	"github.com/chronusdev/bridge/models"
)

// Sender delivers one interaction over its channel. On success it returns
// the provider's message/call id; any error marks the row FAILED.
type Sender interface {
	Send(ctx context.Context, client *models.Client, in *models.ScheduledInteraction) (externalID string, err error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, client *models.Client, in *models.ScheduledInteraction) (string, error)

func (f SenderFunc) Send(ctx context.Context, client *models.Client, in *models.ScheduledInteraction) (string, error) {
	return f(ctx, client, in)
}
