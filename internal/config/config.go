// Package config defines the JSON pipeline model for the transform binary:
// where rows come from, how they are parsed, which column operations run, and
// where the result goes.
//
// Example:
//
//	{
//	  "job":    "mint_to_ynab",
//	  "source": { "kind": "file", "file": { "path": "mint.csv" } },
//	  "parser": { "kind": "csv", "options": { "comma": ",", "encoding": "windows-1250" } },
//	  "script": [
//	    { "op": "copy",   "column": "Date" },
//	    { "op": "rename", "from": "Description", "to": "Payee" },
//	    { "op": "map",    "from": ["Amount", "Transaction Type"], "to": "Inflow",
//	      "func": "when_equals", "options": { "equals": "credit" } }
//	  ],
//	  "sink":   { "kind": "file", "file": { "path": "ynab.csv" } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `json:"job"`

	Source  Source        `json:"source"`
	Parser  Parser        `json:"parser"`
	Script  []Step        `json:"script"`
	Sink    Sink          `json:"sink"`
	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig holds tuning knobs for sinks.
type RuntimeConfig struct {
	// BatchSize is the number of rows per storage flush. Zero means the
	// default (DefaultBatchSize).
	BatchSize int `json:"batch_size"`
}

// DefaultBatchSize is used when runtime.batch_size is unset.
const DefaultBatchSize = 1000

// Source identifies where input rows come from.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string     `json:"kind"`
	File SourceFile `json:"file"`
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind. Path "-" reads
// standard input.
type SourceFile struct {
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL                string            `json:"url"`
	Headers            map[string]string `json:"headers,omitempty"`
	TimeoutSeconds     int               `json:"timeout_seconds,omitempty"`
	MaxRetries         int               `json:"max_retries,omitempty"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify,omitempty"`
}

// Parser selects how raw bytes become rows.
type Parser struct {
	// Kind selects the parser: "csv" (default) or "json".
	Kind string `json:"kind"`

	// Options for CSV: comma (string), comment (string), lazy_quotes (bool),
	// trim_space (bool), strip_bom (bool), encoding (string).
	//
	// Options for JSON: columns (list, required), header_map (object),
	// encoding (string).
	Options Options `json:"options"`
}

// Step is one declared column operation.
//
//	create:  column
//	copy:    column
//	rename:  from (one name), to
//	map:     from (one name or a list), to, func, options
type Step struct {
	Op      string  `json:"op"`
	Column  string  `json:"column,omitempty"`
	From    Names   `json:"from,omitempty"`
	To      string  `json:"to,omitempty"`
	Func    string  `json:"func,omitempty"`
	Options Options `json:"options,omitempty"`
}

// Names is a list of column names that also decodes from a single JSON
// string. List records whether the JSON value was an array.
type Names struct {
	Values []string
	List   bool
}

// One returns a single-name Names.
func One(name string) Names { return Names{Values: []string{name}} }

// Many returns a list-valued Names.
func Many(names ...string) Names { return Names{Values: names, List: true} }

// UnmarshalJSON accepts "name" or ["a", "b"].
func (n *Names) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Names{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = Names{Values: []string{s}}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("from: expected a column name or a list of names: %w", err)
	}
	*n = Names{Values: list, List: true}
	return nil
}

// MarshalJSON writes a string for single names and an array for lists.
func (n Names) MarshalJSON() ([]byte, error) {
	if !n.List && len(n.Values) == 1 {
		return json.Marshal(n.Values[0])
	}
	if n.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(n.Values)
}

// Sink describes where output rows go.
type Sink struct {
	// Kind is "file" or a storage backend kind ("postgres", "mssql",
	// "sqlite", "mysql").
	Kind string   `json:"kind"`
	File SinkFile `json:"file"`
	DB   DBConfig `json:"db"`

	// Options for the file sink: comma (string), use_crlf (bool),
	// encoding (string).
	Options Options `json:"options"`
}

// SinkFile holds configuration for the "file" sink kind.
type SinkFile struct {
	Path string `json:"path"`
}

// DBConfig configures a database sink. Column names come from the output
// header of the script.
type DBConfig struct {
	DSN   string `json:"dsn"`
	Table string `json:"table"`

	// AutoCreateTable creates the table (all text columns) when missing.
	AutoCreateTable bool `json:"auto_create_table"`

	// EmptyAsNull stores empty output values as NULL.
	EmptyAsNull bool `json:"empty_as_null"`
}

// BatchSizeOrDefault returns the configured batch size or the default.
func (r RuntimeConfig) BatchSizeOrDefault() int {
	if r.BatchSize > 0 {
		return r.BatchSize
	}
	return DefaultBatchSize
}

// Decode reads a pipeline from r. Unknown fields are rejected so typos in
// operation keys do not silently drop columns.
func Decode(r io.Reader) (Pipeline, error) {
	var p Pipeline
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode pipeline: %w", err)
	}
	return p, nil
}

// Load opens and decodes the pipeline file at path.
func Load(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("open pipeline: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Options is a free-form option bag with typed accessors. Accessors return
// the default when a key is missing or holds an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

// Rune returns the first rune of the string value for key, or def when the
// key is missing or empty. Used for single-character CSV settings.
func (o Options) Rune(key string, def rune) rune {
	if s, ok := o[key].(string); ok && s != "" {
		return []rune(s)[0]
	}
	return def
}

// Strings returns the string list for key, or nil when the key is missing or
// holds anything other than a list of strings.
func (o Options) Strings(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}

// StringMap returns the string-to-string object for key. Non-string values
// are skipped.
func (o Options) StringMap(key string) map[string]string {
	switch v := o[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, e := range v {
			if s, ok := e.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}

// Has reports whether key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// UnmarshalJSON decodes a missing or null options object to an empty map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
