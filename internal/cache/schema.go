package cache

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

func ensureSchema(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS meta (
  schema_version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS modules (
  modname TEXT NOT NULL PRIMARY KEY,
  label TEXT NOT NULL,
  filename TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS module_imports (
  modname TEXT NOT NULL REFERENCES modules(modname) ON DELETE CASCADE,
  target TEXT NOT NULL,
  PRIMARY KEY (modname, target)
);

CREATE TABLE IF NOT EXISTS import_records (
  modname TEXT NOT NULL REFERENCES modules(modname) ON DELETE CASCADE,
  name TEXT NOT NULL,
  alias TEXT NOT NULL DEFAULT '',
  filename TEXT NOT NULL,
  lineno INTEGER NOT NULL,
  level INTEGER NOT NULL DEFAULT 0,
  unused INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_import_records_modname ON import_records(modname);
`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create cache tables: %w", err)
	}

	var version int
	err := db.QueryRow(`SELECT schema_version FROM meta LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec(`INSERT INTO meta (schema_version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("unsupported cache schema version %d", version)
	}
	return nil
}
