// ABOUTME: Activity log database operations
// ABOUTME: Records provenance entries, including cross-tenant client moves
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

func newActivityID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// LogActivity appends a provenance entry for an entity.
func LogActivity(db *sql.DB, orgID uuid.UUID, entityKind, entityID, verb string, metadata map[string]interface{}) error {
	var metaJSON string
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to encode activity metadata: %w", err)
		}
		metaJSON = string(raw)
	}

	_, err := db.Exec(`
		INSERT INTO activity_log (id, organization_id, entity_kind, entity_id, verb, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, newActivityID(), orgID.String(), entityKind, entityID, verb, metaJSON, time.Now())

	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// ListEntityActivity returns entries for one entity, newest first.
func ListEntityActivity(db *sql.DB, entityKind, entityID string) ([]models.ActivityEntry, error) {
	rows, err := db.Query(`
		SELECT id, organization_id, entity_kind, entity_id, verb, metadata, created_at
		FROM activity_log
		WHERE entity_kind = ? AND entity_id = ?
		ORDER BY created_at DESC
	`, entityKind, entityID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		var orgIDStr string
		var metadata sql.NullString

		if err := rows.Scan(&e.ID, &orgIDStr, &e.EntityKind, &e.EntityID, &e.Verb, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.OrganizationID, err = uuid.Parse(orgIDStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse organization ID: %w", err)
		}
		if metadata.Valid {
			e.Metadata = metadata.String
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
