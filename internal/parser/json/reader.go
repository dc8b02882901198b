// Package json reads JSON records as transformer rows.
//
// Two input shapes are accepted: a root array of objects, streamed element
// by element, or a sequence of objects (NDJSON). JSON objects carry no column
// order, so the header comes from the "columns" option; every record yields
// one value per column.
package json

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"transform/internal/config"
	"transform/internal/transformer"
)

// ErrNoColumns is returned when the "columns" option is missing or empty.
var ErrNoColumns = errors.New("json parser: columns option is required")

// Reader implements transformer.Source over JSON records.
//
// Options: columns (list of names, required), header_map (object mapping
// source keys to column names).
type Reader struct {
	dec       *json.Decoder
	columns   []string
	headerMap map[string]string

	started bool // header returned
	array   bool // root is an array
	records int64
}

var _ transformer.Source = (*Reader)(nil)

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opt config.Options) (*Reader, error) {
	cols := opt.Strings("columns")
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}
	br := bufio.NewReader(r)
	array, err := startsWithArray(br)
	if err != nil {
		return nil, fmt.Errorf("json parser: %w", err)
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()
	if array {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("json parser: open array: %w", err)
		}
	}
	return &Reader{
		dec:       dec,
		columns:   append([]string(nil), cols...),
		headerMap: opt.StringMap("header_map"),
		array:     array,
	}, nil
}

// startsWithArray peeks past leading whitespace.
func startsWithArray(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.Peek(1)
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
		default:
			return b[0] == '[', nil
		}
	}
}

// Read returns the header on the first call and one row per JSON object
// afterwards; io.EOF ends the stream.
func (r *Reader) Read() (transformer.Row, error) {
	if !r.started {
		r.started = true
		return append(transformer.Row(nil), r.columns...), nil
	}

	if r.array && !r.dec.More() {
		return nil, io.EOF
	}
	var obj map[string]any
	if err := r.dec.Decode(&obj); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("json record %d: %w", r.records+1, err)
	}
	r.records++
	if obj == nil {
		return nil, fmt.Errorf("json record %d: expected an object", r.records)
	}
	return r.row(obj)
}

// Records returns the number of JSON objects read.
func (r *Reader) Records() int64 { return r.records }

func (r *Reader) row(obj map[string]any) (transformer.Row, error) {
	if len(r.headerMap) > 0 {
		canon := make(map[string]any, len(obj))
		for k, v := range obj {
			if mapped := r.headerMap[k]; mapped != "" {
				k = mapped
			}
			canon[k] = v
		}
		obj = canon
	}

	row := make(transformer.Row, len(r.columns))
	for i, c := range r.columns {
		s, err := stringify(obj[c])
		if err != nil {
			return nil, fmt.Errorf("json record %d, column %q: %w", r.records, c, err)
		}
		row[i] = s
	}
	return row, nil
}

// stringify renders a decoded value as cell text. null and missing keys are
// empty; nested values are compact JSON.
func stringify(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	default:
		var b strings.Builder
		enc := json.NewEncoder(&b)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return "", err
		}
		return strings.TrimSuffix(b.String(), "\n"), nil
	}
}
