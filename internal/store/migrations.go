package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	host              TEXT NOT NULL,
	port              TEXT NOT NULL DEFAULT '993',
	username          TEXT NOT NULL,
	tls               INTEGER NOT NULL DEFAULT 1,
	enabled           INTEGER NOT NULL DEFAULT 1,
	fetch_window_days INTEGER NOT NULL DEFAULT 7,
	fetch_limit       INTEGER NOT NULL DEFAULT 200,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_accounts_enabled ON accounts(enabled);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
