// ABOUTME: Daily reminder job that schedules birthday and payment-due interactions
// ABOUTME: Deduplicates per client, template and calendar day before scheduling
package dispatch

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
)

// Reminder interactions are scheduled for this hour of the local day.
const reminderHour = 9

// ReminderJob walks clients with a reminder profile and schedules the
// matching interactions for today.
type ReminderJob struct {
	db *sql.DB
}

func NewReminderJob(database *sql.DB) *ReminderJob {
	return &ReminderJob{db: database}
}

// RunDaily schedules today's reminders. Safe to run more than once per day:
// an existing interaction for the same client, template and day is skipped.
func (j *ReminderJob) RunDaily(now time.Time) error {
	clients, err := db.ListClientsWithReminders(j.db)
	if err != nil {
		return fmt.Errorf("failed to list clients with reminders: %w", err)
	}

	scheduled := 0
	for i := range clients {
		client := &clients[i]

		if client.Birthday != nil && isBirthday(*client.Birthday, now) {
			ok, err := j.scheduleReminder(client, models.TemplateBirthday, now)
			if err != nil {
				log.Printf("Warning: failed to schedule birthday reminder for %s: %v", client.ID, err)
			} else if ok {
				scheduled++
			}
		}

		if client.PaymentDay != nil && isPaymentDay(*client.PaymentDay, now) {
			ok, err := j.scheduleReminder(client, models.TemplatePaymentDue, now)
			if err != nil {
				log.Printf("Warning: failed to schedule payment reminder for %s: %v", client.ID, err)
			} else if ok {
				scheduled++
			}
		}
	}

	if scheduled > 0 {
		log.Printf("Reminder job scheduled %d interaction(s)", scheduled)
	}
	return nil
}

func (j *ReminderJob) scheduleReminder(client *models.Client, template string, now time.Time) (bool, error) {
	exists, err := db.HasInteractionOnDay(j.db, client.ID, template, now)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	in := reminderInteraction(client, template, now)
	if err := db.CreateInteraction(j.db, in); err != nil {
		return false, err
	}
	return true, nil
}

func reminderInteraction(client *models.Client, template string, now time.Time) *models.ScheduledInteraction {
	in := &models.ScheduledInteraction{
		ClientID:    client.ID,
		Template:    template,
		ScheduledAt: time.Date(now.Year(), now.Month(), now.Day(), reminderHour, 0, 0, 0, now.Location()),
	}

	switch template {
	case models.TemplatePaymentDue:
		in.Subject = "Recordatorio de pago"
		in.Content = fmt.Sprintf("Hola %s, te recordamos que hoy vence tu pago mensual.", client.Name)
		// Payment reminders go over WhatsApp when we have a phone on file.
		if client.Phone != "" {
			in.Channel = models.ChannelWhatsApp
		} else {
			in.Channel = models.ChannelEmail
		}
	default:
		in.Channel = models.ChannelEmail
		in.Subject = "¡Feliz cumpleaños!"
		in.Content = fmt.Sprintf("¡Feliz cumpleaños, %s! Todo el equipo te desea un gran día.", client.Name)
	}

	return in
}

func isBirthday(birthday, now time.Time) bool {
	return birthday.Month() == now.Month() && birthday.Day() == now.Day()
}

// isPaymentDay also fires on the last day of short months, so a client with
// payment day 31 is still reminded in February.
func isPaymentDay(paymentDay int, now time.Time) bool {
	if now.Day() == paymentDay {
		return true
	}
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return paymentDay > lastDay && now.Day() == lastDay
}
