// ABOUTME: Project and project membership database operations
// ABOUTME: Handles the keyed support-project upsert and best-effort membership
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chronusdev/bridge/models"
	"github.com/google/uuid"
)

func CreateProject(db *sql.DB, project *models.Project) error {
	project.ID = uuid.New()
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	var clientID *string
	if project.ClientID != nil {
		s := project.ClientID.String()
		clientID = &s
	}

	_, err := db.Exec(`
		INSERT INTO projects (id, organization_id, client_id, name, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, project.ID.String(), project.OrganizationID.String(), clientID, project.Name, project.Kind,
		project.CreatedAt, project.UpdatedAt)

	return err
}

// EnsureSupportProject returns the client's support project, creating it if
// absent. Keyed by the (client_id, kind) unique tuple rather than a name
// match, so re-delivered webhooks converge on one project.
func EnsureSupportProject(db *sql.DB, orgID, clientID uuid.UUID, name string) (*models.Project, bool, error) {
	existing, err := FindProjectByClientKind(db, clientID, models.ProjectKindSupport)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	project := &models.Project{
		OrganizationID: orgID,
		ClientID:       &clientID,
		Name:           name,
		Kind:           models.ProjectKindSupport,
	}
	if err := CreateProject(db, project); err != nil {
		// Lost a race with a concurrent delivery; the unique tuple
		// guarantees the winner's row is the one to use.
		existing, ferr := FindProjectByClientKind(db, clientID, models.ProjectKindSupport)
		if ferr == nil && existing != nil {
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create support project: %w", err)
	}

	return project, true, nil
}

func FindProjectByClientKind(db *sql.DB, clientID uuid.UUID, kind string) (*models.Project, error) {
	return scanProject(db.QueryRow(`
		SELECT id, organization_id, client_id, name, kind, created_at, updated_at
		FROM projects WHERE client_id = ? AND kind = ?
	`, clientID.String(), kind))
}

func GetProject(db *sql.DB, id uuid.UUID) (*models.Project, error) {
	return scanProject(db.QueryRow(`
		SELECT id, organization_id, client_id, name, kind, created_at, updated_at
		FROM projects WHERE id = ?
	`, id.String()))
}

// AddProjectMember inserts a membership row, ignoring duplicates.
func AddProjectMember(db *sql.DB, projectID, userID uuid.UUID, role string) error {
	_, err := db.Exec(`
		INSERT INTO project_members (project_id, user_id, role)
		VALUES (?, ?, ?)
		ON CONFLICT(project_id, user_id) DO NOTHING
	`, projectID.String(), userID.String(), role)

	if err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}

func ListProjectMembers(db *sql.DB, projectID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Query(`
		SELECT user_id FROM project_members WHERE project_id = ?
	`, projectID.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var members []uuid.UUID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user ID: %w", err)
		}
		members = append(members, id)
	}

	return members, rows.Err()
}

func scanProject(row *sql.Row) (*models.Project, error) {
	p := &models.Project{}
	var id, orgIDStr string
	var clientID sql.NullString

	err := row.Scan(&id, &orgIDStr, &clientID, &p.Name, &p.Kind, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse project ID: %w", err)
	}
	p.OrganizationID, err = uuid.Parse(orgIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse organization ID: %w", err)
	}
	if clientID.Valid {
		cid, err := uuid.Parse(clientID.String)
		if err == nil {
			p.ClientID = &cid
		}
	}

	return p, nil
}
