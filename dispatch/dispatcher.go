// ABOUTME: Scheduled interaction dispatcher that claims due interactions and sends them
// ABOUTME: Every interaction gets exactly one delivery attempt and lands in a terminal state
package dispatch

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
)

// Dispatcher polls the scheduled_interactions table and hands due rows to
// the channel senders. A row is claimed (PENDING -> PROCESSING) before any
// send, so concurrent dispatchers never deliver the same interaction twice.
type Dispatcher struct {
	db       *sql.DB
	senders  map[string]Sender
	interval time.Duration
}

func NewDispatcher(database *sql.DB, senders map[string]Sender, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		db:       database,
		senders:  senders,
		interval: interval,
	}
}

// Run polls until the context is cancelled. The first pass happens
// immediately rather than one interval in.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	log.Printf("Dispatcher started (interval: %v)", d.interval)

	for {
		if err := d.RunOnce(ctx, time.Now()); err != nil {
			log.Printf("Dispatch pass failed: %v", err)
		}

		select {
		case <-ctx.Done():
			log.Printf("Dispatcher stopping: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce processes everything due at the given instant. Send failures are
// recorded on the interaction and do not abort the pass.
func (d *Dispatcher) RunOnce(ctx context.Context, now time.Time) error {
	due, err := db.ListDueInteractions(d.db, now, 0)
	if err != nil {
		return fmt.Errorf("failed to list due interactions: %w", err)
	}

	for i := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.process(ctx, &due[i], now)
	}

	return nil
}

func (d *Dispatcher) process(ctx context.Context, in *models.ScheduledInteraction, now time.Time) {
	claimed, err := db.ClaimInteraction(d.db, in.ID, now)
	if err != nil {
		log.Printf("Warning: failed to claim interaction %s: %v", in.ID, err)
		return
	}
	if !claimed {
		// Another dispatcher got there first.
		return
	}

	externalID, err := d.send(ctx, in)
	if err != nil {
		log.Printf("Interaction %s failed: %v", in.ID, err)
		if ferr := db.FailInteraction(d.db, in.ID, err.Error()); ferr != nil {
			log.Printf("Warning: failed to record failure for interaction %s: %v", in.ID, ferr)
		}
		return
	}

	if err := db.CompleteInteraction(d.db, in.ID, externalID); err != nil {
		log.Printf("Warning: failed to mark interaction %s completed: %v", in.ID, err)
		return
	}
	log.Printf("Interaction %s delivered via %s (external id: %s)", in.ID, in.Channel, externalID)
}

func (d *Dispatcher) send(ctx context.Context, in *models.ScheduledInteraction) (string, error) {
	sender, ok := d.senders[in.Channel]
	if !ok {
		return "", fmt.Errorf("no sender configured for channel %s", in.Channel)
	}

	client, err := db.GetClient(d.db, in.ClientID)
	if err != nil {
		return "", fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return "", fmt.Errorf("client %s not found", in.ClientID)
	}

	return sender.Send(ctx, client, in)
}
