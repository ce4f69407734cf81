package db

const (
	// SchemaV1 defines the SQL statements for version 1 of the notes storage schema.
	// kv_store mirrors browser local storage: one opaque value per key, written wholesale.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS notetable_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS kv_store (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    created_at REAL DEFAULT (unixepoch()),
    updated_at REAL DEFAULT (unixepoch())
);
`
)
