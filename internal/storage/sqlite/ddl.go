package sqlite

import (
	"fmt"
	"strings"

	"transform/internal/storage"
)

func createTableSQL(table string, columns []string) (string, error) {
	cols := storage.QuoteAll(columns, quoteIdent)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		storage.QuoteFQN(table, quoteIdent),
		strings.Join(cols, " TEXT,\n  ")+" TEXT",
	), nil
}

// insertSQL renders INSERT INTO table (cols) VALUES (?, ...).
func insertSQL(table string, columns []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		storage.QuoteFQN(table, quoteIdent),
		strings.Join(storage.QuoteAll(columns, quoteIdent), ", "),
		marks,
	)
}

// quoteIdent double-quotes an identifier, doubling embedded quotes.
func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
