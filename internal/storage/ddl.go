package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrColumns is returned for an unusable column list: empty, containing a
// blank name, or naming a column twice.
var ErrColumns = errors.New("invalid column list")

// CreateTableFunc renders the backend's CREATE TABLE statement for table
// with every column as nullable text. The statement must be a no-op when the
// table already exists.
type CreateTableFunc func(table string, columns []string) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]CreateTableFunc{}
)

// RegisterDDL installs (or replaces) the DDL builder for kind.
func RegisterDDL(kind string, fn CreateTableFunc) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// CreateTableSQL renders the DDL for kind without executing it.
func CreateTableSQL(kind, table string, columns []string) (string, error) {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: no DDL builder for storage.kind=%q", ErrUnsupportedKind, kind)
	}
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("%s ddl: table name must not be empty", kind)
	}
	if err := CheckColumns(columns); err != nil {
		return "", fmt.Errorf("%s ddl: %w", kind, err)
	}
	return fn(table, columns)
}

// EnsureTable creates table on repo when it does not exist yet.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, columns []string) error {
	stmt, err := CreateTableSQL(kind, table, columns)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// CheckColumns reports an ErrColumns for empty lists, blank names and
// duplicates.
func CheckColumns(columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("%w: at least one column is required", ErrColumns)
	}
	seen := make(map[string]int, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: column %d has an empty name", ErrColumns, i)
		}
		if j, dup := seen[c]; dup {
			return fmt.Errorf("%w: column %q appears at %d and %d", ErrColumns, c, j, i)
		}
		seen[c] = i
	}
	return nil
}

// QuoteFQN splits a possibly schema-qualified name on dots, drops empty
// segments and quotes each one with quote.
func QuoteFQN(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// QuoteAll quotes every name with quote.
func QuoteAll(names []string, quote func(string) string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quote(n)
	}
	return out
}
