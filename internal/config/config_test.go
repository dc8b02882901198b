package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const samplePipeline = `{
  "job": "mint_to_ynab",
  "source": { "kind": "file", "file": { "path": "mint.csv" } },
  "parser": { "kind": "csv", "options": { "comma": ";", "trim_space": true } },
  "script": [
    { "op": "copy", "column": "Date" },
    { "op": "rename", "from": "Description", "to": "Payee" },
    { "op": "map", "from": ["Amount", "Transaction Type"], "to": "Inflow",
      "func": "when_equals", "options": { "equals": "credit" } },
    { "op": "create", "column": "Memo" }
  ],
  "sink": { "kind": "sqlite", "db": { "dsn": "file:out.db", "table": "ynab", "auto_create_table": true } },
  "runtime": { "batch_size": 250 }
}`

/*
TestDecode_Sample verifies that a full pipeline decodes into the expected
shape, including single and list-valued "from" fields.
*/
func TestDecode_Sample(t *testing.T) {
	t.Parallel()

	p, err := Decode(strings.NewReader(samplePipeline))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Job != "mint_to_ynab" || p.Source.File.Path != "mint.csv" {
		t.Fatalf("unexpected top level: %+v", p)
	}
	if got := p.Parser.Options.Rune("comma", ','); got != ';' {
		t.Fatalf("comma = %q", got)
	}
	if len(p.Script) != 4 {
		t.Fatalf("script length = %d", len(p.Script))
	}
	if got := p.Script[1].From; got.List || !reflect.DeepEqual(got.Values, []string{"Description"}) {
		t.Fatalf("rename from = %+v", got)
	}
	if got := p.Script[2].From; !got.List || !reflect.DeepEqual(got.Values, []string{"Amount", "Transaction Type"}) {
		t.Fatalf("map from = %+v", got)
	}
	if got := p.Script[2].Options.String("equals", ""); got != "credit" {
		t.Fatalf("map options equals = %q", got)
	}
	if p.Sink.Kind != "sqlite" || !p.Sink.DB.AutoCreateTable || p.Sink.DB.Table != "ynab" {
		t.Fatalf("sink = %+v", p.Sink)
	}
	if p.Runtime.BatchSizeOrDefault() != 250 {
		t.Fatalf("batch size = %d", p.Runtime.BatchSizeOrDefault())
	}
}

/*
TestDecode_RejectsUnknownFields verifies that a misspelled key is an error.
*/
func TestDecode_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`{"script":[{"op":"copy","colum":"x"}]}`))
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

/*
TestNames_JSON covers decoding and encoding of the string-or-list form.
*/
func TestNames_JSON(t *testing.T) {
	t.Parallel()

	var n Names
	if err := json.Unmarshal([]byte(`"a"`), &n); err != nil || n.List || !reflect.DeepEqual(n.Values, []string{"a"}) {
		t.Fatalf("string form: %+v %v", n, err)
	}
	if err := json.Unmarshal([]byte(`["a"]`), &n); err != nil || !n.List || !reflect.DeepEqual(n.Values, []string{"a"}) {
		t.Fatalf("list form: %+v %v", n, err)
	}
	if err := json.Unmarshal([]byte(`42`), &n); err == nil {
		t.Fatalf("expected error for a number")
	}

	b, _ := json.Marshal(One("x"))
	if string(b) != `"x"` {
		t.Fatalf("One marshals to %s", b)
	}
	b, _ = json.Marshal(Many("x"))
	if string(b) != `["x"]` {
		t.Fatalf("Many marshals to %s", b)
	}
}

/*
TestOptions_Accessors verifies typed access with defaults for missing or
mistyped keys, including JSON float64 numbers.
*/
func TestOptions_Accessors(t *testing.T) {
	t.Parallel()

	var o Options
	if err := json.Unmarshal([]byte(`{"s":"x","b":true,"n":3,"r":"|","empty":""}`), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o.String("s", "d") != "x" || o.String("missing", "d") != "d" || o.String("b", "d") != "d" {
		t.Fatalf("String accessor")
	}
	if !o.Bool("b", false) || o.Bool("s", true) != true {
		t.Fatalf("Bool accessor")
	}
	if o.Int("n", 0) != 3 || o.Int("s", 7) != 7 {
		t.Fatalf("Int accessor")
	}
	if o.Rune("r", ',') != '|' || o.Rune("empty", ',') != ',' {
		t.Fatalf("Rune accessor")
	}
	if !o.Has("empty") || o.Has("nope") {
		t.Fatalf("Has accessor")
	}

	var lists Options
	if err := json.Unmarshal([]byte(`{"cols":["a","b"],"mixed":["a",1],"m":{"x":"y","n":2}}`), &lists); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := lists.Strings("cols"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Strings = %v", got)
	}
	if lists.Strings("mixed") != nil || lists.Strings("m") != nil {
		t.Fatalf("Strings must reject non-string lists")
	}
	if got := lists.StringMap("m"); !reflect.DeepEqual(got, map[string]string{"x": "y"}) {
		t.Fatalf("StringMap = %v", got)
	}
	if (Options{"s": []string{"z"}}).Strings("s")[0] != "z" {
		t.Fatalf("Strings on a Go slice")
	}

	var null Options
	if err := json.Unmarshal([]byte(`null`), &null); err != nil || null == nil {
		t.Fatalf("null options should decode to an empty map: %v %v", null, err)
	}
}

/*
TestLoad_File verifies Load from disk and its error on a missing file.
*/
func TestLoad_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")
	if err := os.WriteFile(path, []byte(samplePipeline), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
