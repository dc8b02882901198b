package mysql

import (
	"fmt"
	"strings"

	"transform/internal/storage"
)

func createTableSQL(table string, columns []string) (string, error) {
	cols := storage.QuoteAll(columns, myIdent)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n) DEFAULT CHARSET=utf8mb4;",
		myFQN(table),
		strings.Join(cols, " TEXT NULL,\n  ")+" TEXT NULL",
	), nil
}

func insertSQL(table string, columns []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		myFQN(table),
		strings.Join(storage.QuoteAll(columns, myIdent), ", "),
		marks,
	)
}

// myIdent backtick-quotes an identifier, doubling embedded backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// myFQN quotes each dot-separated segment of name.
func myFQN(name string) string { return storage.QuoteFQN(name, myIdent) }
