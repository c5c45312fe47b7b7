package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// schemaVersionDDL is applied before any migration so the current version
// can be read on a fresh database.
const schemaVersionDDL = `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
// The DDL is kept to the subset understood by both sqlite and postgres.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS users (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	email             TEXT NOT NULL UNIQUE,
	password          TEXT NOT NULL,
	profile_image_url TEXT,
	role              TEXT NOT NULL DEFAULT 'member' CHECK(role IN ('admin', 'member')),
	created_at        TIMESTAMP NOT NULL,
	updated_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL DEFAULT 'Medium' CHECK(priority IN ('Low', 'Medium', 'High')),
	status      TEXT NOT NULL DEFAULT 'Pending' CHECK(status IN ('Pending', 'In Progress', 'Completed')),
	due_date    TIMESTAMP,
	created_by  TEXT NOT NULL,
	attachments TEXT NOT NULL DEFAULT '[]',
	progress    INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);

CREATE TABLE IF NOT EXISTS task_assignees (
	task_id  TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	user_id  TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (task_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_task_assignees_user_id ON task_assignees(user_id);

CREATE TABLE IF NOT EXISTS checklist_items (
	task_id   TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	text      TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (task_id, position)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
