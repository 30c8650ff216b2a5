package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hire/internal/database"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// requireColumns fails when any of columns is absent from public.table, so a
// seeder never writes against a schema the migrations have not produced yet.
func requireColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	if db == nil {
		return database.ErrNilDB
	}
	if strings.TrimSpace(table) == "" || len(columns) == 0 {
		return fmt.Errorf("%w: table and columns are required", ErrSchemaMismatch)
	}

	rows, err := db.Query(ctx, `
		SELECT c.name
		FROM unnest($2::text[]) AS c(name)
		WHERE NOT EXISTS (
			SELECT 1 FROM information_schema.columns ic
			WHERE ic.table_schema = 'public' AND ic.table_name = $1 AND ic.column_name = c.name
		)`,
		table, columns,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		missing = append(missing, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s missing %s", ErrSchemaMismatch, table, strings.Join(missing, ", "))
	}
	return nil
}
