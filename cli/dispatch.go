// ABOUTME: Dispatcher daemon subcommand
// ABOUTME: Wires senders, outbox worker, and reminder job into the polling loop
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chronusdev/bridge/bridge"
	"github.com/chronusdev/bridge/cache"
	"github.com/chronusdev/bridge/config"
	"github.com/chronusdev/bridge/dispatch"
	"github.com/chronusdev/bridge/models"
)

// DispatchCommand runs the interaction dispatcher, either once or as a daemon
func DispatchCommand(database *sql.DB, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dispatch", flag.ExitOnError)
	interval := fs.Duration("interval", time.Minute, "Polling interval (minimum 10s)")
	once := fs.Bool("once", false, "Run a single pass and exit")
	_ = fs.Parse(args)

	if *interval < 10*time.Second {
		return fmt.Errorf("interval %v is too short (minimum 10s)", *interval)
	}

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	emailSender := dispatch.NewEmailSender(database, store, cfg)

	senders := map[string]dispatch.Sender{
		models.ChannelEmail: emailSender,
	}
	if cfg.HasWhatsApp() {
		senders[models.ChannelWhatsApp] = dispatch.NewWhatsAppSender(cfg)
	} else {
		log.Println("WhatsApp gateway not configured; WHATSAPP interactions will fail")
	}
	if cfg.HasVoice() {
		senders[models.ChannelVoice] = dispatch.NewVoiceSender(cfg)
	} else {
		log.Println("Voice provider not configured; VOICE interactions will fail")
	}

	dispatcher := dispatch.NewDispatcher(database, senders, *interval)
	callback := bridge.NewCallbackClient(cfg.CRMAPIURL, cfg.CRMSyncKey)
	outbox := dispatch.NewOutboxWorker(database, emailSender, callback)
	reminders := dispatch.NewReminderJob(database)

	if *once {
		ctx := context.Background()
		now := time.Now()
		if err := reminders.RunDaily(now); err != nil {
			return err
		}
		if err := dispatcher.RunOnce(ctx, now); err != nil {
			return err
		}
		return outbox.RunOnce(ctx, now)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	daemon := dispatch.NewDaemon(dispatcher, outbox, reminders, *interval)
	if err := daemon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
