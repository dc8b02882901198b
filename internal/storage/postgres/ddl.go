package postgres

import (
	"fmt"
	"strings"

	"transform/internal/storage"
)

// createTableSQL renders CREATE TABLE IF NOT EXISTS with nullable text
// columns.
func createTableSQL(table string, columns []string) (string, error) {
	cols := storage.QuoteAll(columns, pgIdent)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		storage.QuoteFQN(table, pgIdent),
		strings.Join(cols, " text,\n  ")+" text",
	), nil
}

// pgIdent quotes a single identifier segment.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
