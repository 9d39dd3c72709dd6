package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SchemaStore implements catalog.SchemaDescriber, a read-only diagnostic
// tool that lets the model introspect the gateway's own table/column
// layout rather than guessing at it.
type SchemaStore struct{ db *sql.DB }

func NewSchemaStore(db *sql.DB) *SchemaStore { return &SchemaStore{db: db} }

func (s *SchemaStore) DescribeSchema(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position`)
	if err != nil {
		return "", fmt.Errorf("describe schema: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	currentTable := ""
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return "", err
		}
		if table != currentTable {
			if currentTable != "" {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s:\n", table)
			currentTable = table
		}
		fmt.Fprintf(&b, "  %s %s\n", column, dataType)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}
