package mssql

import (
	"fmt"
	"strings"

	"transform/internal/storage"
)

// createTableSQL guards CREATE TABLE with OBJECT_ID because T-SQL has no
// CREATE TABLE IF NOT EXISTS. Columns are NVARCHAR(MAX) NULL.
func createTableSQL(table string, columns []string) (string, error) {
	fqn := storage.QuoteFQN(table, msIdent)
	cols := storage.QuoteAll(columns, msIdent)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(fqn, "'", "''"),
		fqn,
		strings.Join(cols, " NVARCHAR(MAX) NULL,\n    ")+" NVARCHAR(MAX) NULL",
	), nil
}

// msIdent quotes an identifier with [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }
