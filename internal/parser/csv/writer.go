package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"transform/internal/config"
	"transform/internal/transformer"
)

// Writer writes rows as CSV records.
type Writer struct {
	cw   *csv.Writer
	rows int64
}

var _ transformer.Sink = (*Writer)(nil)

// NewWriter configures a Writer from sink options:
//
//	comma     field delimiter (default ",")
//	use_crlf  terminate lines with \r\n (default false)
func NewWriter(w io.Writer, opt config.Options) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = opt.Rune("comma", ',')
	cw.UseCRLF = opt.Bool("use_crlf", false)
	return &Writer{cw: cw}
}

// Write buffers one record.
func (w *Writer) Write(row transformer.Row) error {
	if err := w.cw.Write(row); err != nil {
		return fmt.Errorf("csv write row %d: %w", w.rows+1, err)
	}
	w.rows++
	return nil
}

// Rows returns the number of records written, header included.
func (w *Writer) Rows() int64 { return w.rows }

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}
