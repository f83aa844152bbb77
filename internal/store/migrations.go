package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create history entries",
		SQL: `
			CREATE TABLE history_entries (
				id          TEXT PRIMARY KEY,
				profile_id  TEXT NOT NULL,
				kind        TEXT NOT NULL,
				payload     TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_history_profile ON history_entries (profile_id, created_at);
		`,
	},
}
