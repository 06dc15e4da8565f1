// ABOUTME: Daemon combining the dispatcher, outbox worker and daily reminder job
// ABOUTME: Runs delivery on every tick and the reminder job once per calendar day
package dispatch

import (
	"context"
	"log"
	"time"
)

// Daemon drives the three background loops off one ticker.
type Daemon struct {
	dispatcher *Dispatcher
	outbox     *OutboxWorker
	reminders  *ReminderJob
	interval   time.Duration

	lastReminderDay string
}

func NewDaemon(dispatcher *Dispatcher, outbox *OutboxWorker, reminders *ReminderJob, interval time.Duration) *Daemon {
	return &Daemon{
		dispatcher: dispatcher,
		outbox:     outbox,
		reminders:  reminders,
		interval:   interval,
	}
}

// Run ticks until the context is cancelled. The first pass happens
// immediately rather than one interval in.
func (d *Daemon) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	log.Printf("Bridge daemon started (interval: %v)", d.interval)

	for {
		d.tick(ctx, time.Now())

		select {
		case <-ctx.Done():
			log.Printf("Bridge daemon stopping: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *Daemon) tick(ctx context.Context, now time.Time) {
	day := now.Format("2006-01-02")
	if day != d.lastReminderDay {
		if err := d.reminders.RunDaily(now); err != nil {
			log.Printf("Reminder job failed: %v", err)
		} else {
			d.lastReminderDay = day
		}
	}

	if err := d.dispatcher.RunOnce(ctx, now); err != nil {
		log.Printf("Dispatch pass failed: %v", err)
	}

	if err := d.outbox.RunOnce(ctx, now); err != nil {
		log.Printf("Outbox pass failed: %v", err)
	}
}
