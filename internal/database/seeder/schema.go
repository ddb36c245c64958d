package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devhub/internal/database"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// RequireColumns fails with ErrSchemaMismatch naming every column of table
// that the public schema lacks.
func RequireColumns(ctx context.Context, q database.Querier, table string, columns ...string) error {
	if q == nil {
		return errors.New("nil db")
	}
	if table == "" || len(columns) == 0 {
		return errors.New("table and columns are required")
	}

	rows, err := q.Query(ctx,
		`SELECT c.name
		 FROM unnest($2::text[]) AS c(name)
		 WHERE NOT EXISTS (
		   SELECT 1 FROM information_schema.columns ic
		   WHERE ic.table_schema = 'public' AND ic.table_name = $1 AND ic.column_name = c.name
		 )`,
		table, columns,
	)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		missing = append(missing, table+"."+name)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}
