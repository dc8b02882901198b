package transformer

import (
	"errors"
	"fmt"
	"io"
)

// Transform writes the output header of script to sink, reads the input
// header row from src and streams every remaining input row through the
// script into sink. It returns the number of data rows written.
//
// An empty src (no header row) is not an error: the output header is still
// written and no data rows follow.
func Transform(src Source, sink Sink, script Script) (int64, error) {
	if err := sink.Write(ResolveHeader(script)); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	e, err := Open(src, script)
	if err != nil {
		return 0, err
	}
	return e.DrainInto(sink)
}

// Open reads the header row from src and returns an Engine primed with the
// first data row. An empty src yields an exhausted engine with an empty
// column mapping.
func Open(src Source, script Script) (*Engine, error) {
	columns, err := src.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if errors.Is(err, io.EOF) {
		return NewEngine(nil, exhausted{}, script)
	}
	return NewEngine(columns, src, script)
}

// TransformRows is Transform over in-memory rows; input[0] is the header.
func TransformRows(input []Row, script Script) ([]Row, error) {
	out := &SliceSink{Rows: make([]Row, 0, len(input))}
	_, err := Transform(NewSliceSource(input...), out, script)
	return out.Rows, err
}

type exhausted struct{}

func (exhausted) Read() (Row, error) { return nil, io.EOF }
