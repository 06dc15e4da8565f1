// ABOUTME: Reminder subcommand
// ABOUTME: Runs the daily birthday and payment reminder pass once
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"time"

	"github.com/chronusdev/bridge/dispatch"
)

// RemindCommand runs the daily reminder pass for a given date
func RemindCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("remind", flag.ExitOnError)
	date := fs.String("date", "", "Run for a specific date (YYYY-MM-DD, default today)")
	_ = fs.Parse(args)

	now := time.Now()
	if *date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", *date, err)
		}
		now = parsed
	}

	return dispatch.NewReminderJob(database).RunDaily(now)
}
