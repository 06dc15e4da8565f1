// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	crm_organization_id TEXT UNIQUE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_organizations_name ON organizations(name);

CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	phone TEXT,
	notes TEXT,
	crm_customer_id TEXT UNIQUE,
	birthday DATE,
	payment_day INTEGER,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (organization_id) REFERENCES organizations(id)
);

CREATE INDEX IF NOT EXISTS idx_clients_organization_id ON clients(organization_id);
CREATE INDEX IF NOT EXISTS idx_clients_crm_customer_id ON clients(crm_customer_id);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'MEMBER',
	created_at DATETIME NOT NULL,
	FOREIGN KEY (organization_id) REFERENCES organizations(id)
);

CREATE INDEX IF NOT EXISTS idx_users_organization_id ON users(organization_id);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	client_id TEXT,
	name TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT 'GENERAL',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (organization_id) REFERENCES organizations(id),
	FOREIGN KEY (client_id) REFERENCES clients(id),
	UNIQUE (client_id, kind)
);

CREATE INDEX IF NOT EXISTS idx_projects_organization_id ON projects(organization_id);

CREATE TABLE IF NOT EXISTS project_members (
	project_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'MEMBER',
	PRIMARY KEY (project_id, user_id),
	FOREIGN KEY (project_id) REFERENCES projects(id),
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'OPEN',
	crm_ticket_id TEXT UNIQUE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (project_id) REFERENCES projects(id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_crm_ticket_id ON tasks(crm_ticket_id);

CREATE TABLE IF NOT EXISTS scheduled_interactions (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL,
	channel TEXT NOT NULL,
	template TEXT,
	subject TEXT,
	content TEXT NOT NULL,
	scheduled_at DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING',
	external_id TEXT,
	error TEXT,
	attempted_at DATETIME,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (client_id) REFERENCES clients(id)
);

CREATE INDEX IF NOT EXISTS idx_interactions_due ON scheduled_interactions(status, scheduled_at);
CREATE INDEX IF NOT EXISTS idx_interactions_client_id ON scheduled_interactions(client_id);

CREATE TABLE IF NOT EXISTS outbox (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	payload TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING',
	attempts INTEGER NOT NULL DEFAULT 0,
	next_attempt_at DATETIME NOT NULL,
	last_error TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	delivered_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_outbox_due ON outbox(status, next_attempt_at);

CREATE TABLE IF NOT EXISTS smtp_settings (
	organization_id TEXT PRIMARY KEY,
	host TEXT NOT NULL,
	port INTEGER NOT NULL DEFAULT 587,
	username TEXT,
	password TEXT,
	from_addr TEXT NOT NULL,
	FOREIGN KEY (organization_id) REFERENCES organizations(id)
);

CREATE TABLE IF NOT EXISTS integrations (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	settings TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE (organization_id, kind),
	FOREIGN KEY (organization_id) REFERENCES organizations(id)
);

CREATE TABLE IF NOT EXISTS activity_log (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	entity_kind TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	verb TEXT NOT NULL,
	metadata TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_entity ON activity_log(entity_kind, entity_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
