// ABOUTME: Tests for CLI subcommand wiring
// ABOUTME: Covers flag validation and single-pass dispatch runs
package cli

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/chronusdev/bridge/config"
	"github.com/chronusdev/bridge/db"
	"github.com/chronusdev/bridge/models"
	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	if err := db.InitSchema(database); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	return database
}

func TestServeCommandRejectsInvalidPort(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	cfg := &config.Config{CRMSyncKey: "k"}
	if err := ServeCommand(database, cfg, []string{"-port", "70000"}); err == nil {
		t.Error("Expected error for out-of-range port")
	}
}

func TestDispatchCommandRejectsShortInterval(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	cfg := &config.Config{CachePath: filepath.Join(t.TempDir(), "cache")}
	if err := DispatchCommand(database, cfg, []string{"-interval", "1s"}); err == nil {
		t.Error("Expected error for interval below minimum")
	}
}

func TestDispatchCommandOncePassesOnEmptyQueue(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	cfg := &config.Config{
		CRMAPIURL:  "http://localhost:3000",
		CRMSyncKey: "k",
		CachePath:  filepath.Join(t.TempDir(), "cache"),
	}
	if err := DispatchCommand(database, cfg, []string{"-once"}); err != nil {
		t.Fatalf("DispatchCommand -once failed: %v", err)
	}
}

func TestRemindCommandRejectsBadDate(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	if err := RemindCommand(database, []string{"-date", "mañana"}); err == nil {
		t.Error("Expected error for unparseable date")
	}
}

func TestRemindCommandSchedulesForGivenDate(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	org := &models.Organization{Name: "Org A"}
	if err := db.CreateOrganization(database, org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	client := &models.Client{OrganizationID: org.ID, Name: "Ana", Email: "ana@example.com"}
	if err := db.CreateClient(database, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	birthday := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
	if err := db.SetClientReminderProfile(database, client.ID, &birthday, nil); err != nil {
		t.Fatalf("SetClientReminderProfile failed: %v", err)
	}

	if err := RemindCommand(database, []string{"-date", "2026-03-14"}); err != nil {
		t.Fatalf("RemindCommand failed: %v", err)
	}

	interactions, err := db.ListClientInteractions(database, client.ID, 0)
	if err != nil {
		t.Fatalf("ListClientInteractions failed: %v", err)
	}
	if len(interactions) != 1 {
		t.Errorf("Expected 1 reminder, got %d", len(interactions))
	}
}
