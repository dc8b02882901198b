package transformer

import "io"

// Row is one ordered sequence of field values.
type Row []string

// Source yields rows in order. Read returns io.EOF once no rows remain and
// keeps returning io.EOF afterwards. Rows are consumed exactly once.
type Source interface {
	Read() (Row, error)
}

// Sink accepts rows one at a time, in the order presented.
type Sink interface {
	Write(Row) error
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (Row, error)

func (f SourceFunc) Read() (Row, error) { return f() }

// SinkFunc adapts a function to Sink.
type SinkFunc func(Row) error

func (f SinkFunc) Write(r Row) error { return f(r) }

// SliceSource serves rows from memory, front to back.
type SliceSource struct {
	rows []Row
	pos  int
}

// NewSliceSource returns a Source over rows. The slice is not copied.
func NewSliceSource(rows ...Row) *SliceSource { return &SliceSource{rows: rows} }

func (s *SliceSource) Read() (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	r := s.rows[s.pos]
	s.pos++
	return r, nil
}

// Remaining reports how many rows have not been read yet.
func (s *SliceSource) Remaining() int { return len(s.rows) - s.pos }

// SliceSink collects rows in memory.
type SliceSink struct {
	Rows []Row
}

func (s *SliceSink) Write(r Row) error {
	s.Rows = append(s.Rows, r)
	return nil
}
