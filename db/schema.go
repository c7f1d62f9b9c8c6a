// ABOUTME: Database schema definitions
// ABOUTME: One records table holds every backend table's rows as JSON field maps
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	table_name TEXT NOT NULL,
	fields TEXT NOT NULL DEFAULT '{}',
	created_on TEXT NOT NULL,
	modified_on TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_table ON records(table_name, id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
