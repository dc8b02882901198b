// Package csv adapts encoding/csv to the transformer row interfaces: Reader
// is a transformer.Source and Writer is a transformer.Sink.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"transform/internal/config"
	"transform/internal/transformer"
)

// utf8BOM is stripped from the first cell of the first record.
const utf8BOM = "\uFEFF"

// Reader reads CSV records as rows. Records may have any width; short rows
// are reported by the engine when a missing column is read.
type Reader struct {
	cr       *csv.Reader
	trim     bool
	stripBOM bool
	records  int64
}

var _ transformer.Source = (*Reader)(nil)

// NewReader configures a Reader from parser options:
//
//	comma        field delimiter (default ",")
//	comment      comment line prefix (default none)
//	lazy_quotes  accept bare quotes in fields (default false)
//	trim_space   trim surrounding white space in every value (default false)
//	strip_bom    drop a UTF-8 BOM before the first cell (default true)
func NewReader(r io.Reader, opt config.Options) *Reader {
	cr := csv.NewReader(r)
	cr.Comma = opt.Rune("comma", ',')
	cr.Comment = opt.Rune("comment", 0)
	cr.LazyQuotes = opt.Bool("lazy_quotes", false)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	return &Reader{
		cr:       cr,
		trim:     opt.Bool("trim_space", false),
		stripBOM: opt.Bool("strip_bom", true),
	}
}

// Read returns the next record, or io.EOF when the input is exhausted.
// Parse errors are returned with the record number; they are not skipped.
func (r *Reader) Read() (transformer.Row, error) {
	rec, err := r.cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("csv record %d: %w", r.records+1, err)
	}
	r.records++

	if r.records == 1 && r.stripBOM && len(rec) > 0 {
		rec[0] = strings.TrimPrefix(rec[0], utf8BOM)
	}
	if r.trim {
		for i, v := range rec {
			rec[i] = strings.TrimSpace(v)
		}
	}
	return transformer.Row(rec), nil
}

// Records returns the number of records read so far.
func (r *Reader) Records() int64 { return r.records }

// Line returns the input line where the most recent record started, or 0
// before the first record.
func (r *Reader) Line() int {
	if r.records == 0 {
		return 0
	}
	line, _ := r.cr.FieldPos(0)
	return line
}
