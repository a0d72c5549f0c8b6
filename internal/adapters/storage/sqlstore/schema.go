package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
)

// schemaStatements returns the DDL creating both tables for the store's dialect.
// Every statement is idempotent. MySQL text columns use a binary collation so
// option names, values and component types compare byte for byte, as they do
// on the other engines.
func (s *Store) schemaStatements() []string {
	slots, options := s.slotsTable, s.optionsTable

	switch s.dialect.Name() {
	case DialectMySQL:
		return []string{
			`CREATE TABLE IF NOT EXISTS ` + slots + ` (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	view_id BIGINT NOT NULL,
	component_type VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
	column_start SMALLINT NOT NULL,
	row_start SMALLINT NOT NULL,
	column_end SMALLINT NOT NULL,
	row_end SMALLINT NOT NULL,
	UNIQUE KEY ` + slots + `_cell_uq (view_id, column_start, row_start),
	KEY ` + slots + `_component_idx (component_type)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`,
			`CREATE TABLE IF NOT EXISTS ` + options + ` (
	contentslot_id BIGINT NOT NULL,
	name VARCHAR(191) COLLATE utf8mb4_bin NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (contentslot_id, name),
	CONSTRAINT ` + options + `_slot_fk FOREIGN KEY (contentslot_id) REFERENCES ` + slots + ` (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`,
		}
	case DialectPostgres:
		return []string{
			`CREATE TABLE IF NOT EXISTS ` + slots + ` (
	id BIGSERIAL PRIMARY KEY,
	view_id BIGINT NOT NULL,
	component_type TEXT NOT NULL,
	column_start SMALLINT NOT NULL,
	row_start SMALLINT NOT NULL,
	column_end SMALLINT NOT NULL,
	row_end SMALLINT NOT NULL,
	CONSTRAINT ` + slots + `_cell_uq UNIQUE (view_id, column_start, row_start)
)`,
			`CREATE INDEX IF NOT EXISTS ` + slots + `_component_idx ON ` + slots + ` (component_type)`,
			`CREATE TABLE IF NOT EXISTS ` + options + ` (
	contentslot_id BIGINT NOT NULL REFERENCES ` + slots + ` (id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (contentslot_id, name)
)`,
		}
	default:
		return []string{
			`CREATE TABLE IF NOT EXISTS ` + slots + ` (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	view_id INTEGER NOT NULL,
	component_type TEXT NOT NULL,
	column_start INTEGER NOT NULL,
	row_start INTEGER NOT NULL,
	column_end INTEGER NOT NULL,
	row_end INTEGER NOT NULL,
	UNIQUE (view_id, column_start, row_start)
)`,
			`CREATE INDEX IF NOT EXISTS ` + slots + `_component_idx ON ` + slots + ` (component_type)`,
			`CREATE TABLE IF NOT EXISTS ` + options + ` (
	contentslot_id INTEGER NOT NULL REFERENCES ` + slots + ` (id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (contentslot_id, name)
)`,
		}
	}
}

// EnsureSchema creates the slot and option tables when they do not exist.
// It does not alter existing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.withConn(ctx, "ensure_schema", func(ctx context.Context, conn Conn) error {
		for _, stmt := range s.schemaStatements() {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("applying schema: %w", err)
			}
		}

		s.logger.InfoContext(ctx, "schema ensured",
			slog.String("slots_table", s.slotsTable),
			slog.String("options_table", s.optionsTable),
		)

		return nil
	})
}
