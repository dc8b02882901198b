package mysql

import (
	"context"
	"strings"
	"testing"

	"transform/internal/storage"
)

// TestMyIdent verifies that myIdent backtick-quotes identifiers and escapes
// backticks by doubling them.
func TestMyIdent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"simple", "`simple`"},
		{"tick`name", "`tick``name`"},
		{"weird``x", "`weird````x`"},
	}
	for _, tc := range cases {
		if got := myIdent(tc.in); got != tc.want {
			t.Fatalf("myIdent(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

// TestMyFQN verifies segment-wise quoting of qualified names.
func TestMyFQN(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"table", "`table`"},
		{"hr.table", "`hr`.`table`"},
		{"sales.q4.table", "`sales`.`q4`.`table`"},
	}
	for _, tc := range cases {
		if got := myFQN(tc.in); got != tc.want {
			t.Fatalf("myFQN(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

// TestSQL verifies the generated DDL and INSERT.
func TestSQL(t *testing.T) {
	t.Parallel()

	ddl, err := storage.CreateTableSQL("mysql", "db.ynab", []string{"Date", "Payee"})
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS `db`.`ynab` (\n  `Date` TEXT NULL,\n  `Payee` TEXT NULL\n) DEFAULT CHARSET=utf8mb4;"
	if ddl != want {
		t.Fatalf("got\n%s\nwant\n%s", ddl, want)
	}
	if got := insertSQL("ynab", []string{"a", "b", "c"}); got != "INSERT INTO `ynab` (`a`, `b`, `c`) VALUES (?, ?, ?)" {
		t.Fatalf("insertSQL = %s", got)
	}
}

// TestNewRepository_BadDSN verifies that DSN parsing fails before dialing.
func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{DSN: "not a dsn"})
	if err == nil || !strings.Contains(err.Error(), "mysql dsn") {
		t.Fatalf("expected dsn error, got %v", err)
	}
}

// TestAdapterUsesHook verifies that storage.New routes through newRepository.
func TestAdapterUsesHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u@tcp(h)/db", Table: "t"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg != (Config{DSN: "u@tcp(h)/db", Table: "t"}) {
		t.Fatalf("cfg = %+v", gotCfg)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not reach closeFn")
	}
}
