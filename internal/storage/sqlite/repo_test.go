package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"transform/internal/storage"
	"transform/internal/transformer"
)

func openTestRepo(t *testing.T, table string) (storage.Repository, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "out.db")
	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: dsn, Table: table})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(repo.Close)
	return repo, dsn
}

func queryRows(t *testing.T, dsn, q string) [][]sql.NullString {
	t.Helper()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	rows, err := db.Query(q)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	cols, _ := rows.Columns()
	var out [][]sql.NullString
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	return out
}

/*
TestSink_EndToEnd auto-creates a table from the header, batches rows through
a real SQLite file, and reads them back, including a NULL for an empty value.
*/
func TestSink_EndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, dsn := openTestRepo(t, "ynab")
	sink, err := storage.NewSink(ctx, repo, storage.SinkConfig{
		Kind: "sqlite", Table: "ynab", BatchSize: 2, AutoCreate: true, EmptyAsNull: true,
	})
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}

	src := transformer.NewSliceSource(
		transformer.Row{"Date", "Description", "Amount"},
		transformer.Row{"1/02/2015", "Grocer", "10.00"},
		transformer.Row{"1/03/2015", "", "4.50"},
		transformer.Row{"1/04/2015", "Cafe \"Q\"", "2.00"},
	)
	script := transformer.Script{
		transformer.Copy("Date"),
		transformer.Rename("Description", "Payee"),
		transformer.Rename("Amount", "Outflow"),
	}
	if _, err := transformer.Transform(src, sink, script); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := sink.Stats(); got != (storage.Stats{Rows: 3, Batches: 2}) {
		t.Fatalf("Stats = %+v", got)
	}

	got := queryRows(t, dsn, `SELECT "Date", "Payee", "Outflow" FROM ynab ORDER BY rowid`)
	s := func(v string) sql.NullString { return sql.NullString{String: v, Valid: true} }
	want := [][]sql.NullString{
		{s("1/02/2015"), s("Grocer"), s("10.00")},
		{s("1/03/2015"), {}, s("4.50")},
		{s("1/04/2015"), s("Cafe \"Q\""), s("2.00")},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

/*
TestEnsureTable_Idempotent verifies that repeated auto-creation is harmless
and that rows append across sinks.
*/
func TestEnsureTable_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, dsn := openTestRepo(t, "main.t")
	for i := 0; i < 2; i++ {
		sink, err := storage.NewSink(ctx, repo, storage.SinkConfig{Kind: "sqlite", Table: "main.t", AutoCreate: true})
		if err != nil {
			t.Fatalf("NewSink: %v", err)
		}
		if err := sink.Write(transformer.Row{"a b"}); err != nil {
			t.Fatalf("header: %v", err)
		}
		if err := sink.Write(transformer.Row{"v"}); err != nil {
			t.Fatalf("row: %v", err)
		}
		if err := sink.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	if rows := queryRows(t, dsn, `SELECT "a b" FROM t`); len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
}

/*
TestCopyFrom_Errors covers empty columns, width mismatch and a missing table.
*/
func TestCopyFrom_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, _ := openTestRepo(t, "missing")
	if _, err := repo.CopyFrom(ctx, nil, [][]any{{"x"}}); err == nil {
		t.Fatalf("expected error for empty columns")
	}
	if n, err := repo.CopyFrom(ctx, []string{"a"}, nil); err != nil || n != 0 {
		t.Fatalf("empty batch: n=%d err=%v", n, err)
	}
	if err := repo.Exec(ctx, `CREATE TABLE missing (a TEXT)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if _, err := repo.CopyFrom(ctx, []string{"a"}, [][]any{{"x", "y"}}); err == nil {
		t.Fatalf("expected width error")
	}
	if _, err := repo.CopyFrom(ctx, []string{"nope"}, [][]any{{"x"}}); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}

/*
TestSQL verifies quoting in the generated statements.
*/
func TestSQL(t *testing.T) {
	t.Parallel()

	if got, want := insertSQL("main.t", []string{"a", `b"c`}), `INSERT INTO "main"."t" ("a", "b""c") VALUES (?, ?)`; got != want {
		t.Fatalf("insertSQL = %s", got)
	}
	got, err := createTableSQL("t", []string{"x"})
	if err != nil || got != "CREATE TABLE IF NOT EXISTS \"t\" (\n  \"x\" TEXT\n);" {
		t.Fatalf("createTableSQL = %q, %v", got, err)
	}
}

// TestAdapterUsesHook verifies that storage.New routes through newRepository.
func TestAdapterUsesHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	called, closed := false, false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		called = true
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "x.db", Table: "t"})
	if err != nil || !called {
		t.Fatalf("storage.New err=%v called=%v", err, called)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not reach closeFn")
	}
}
