package transformer

import (
	"errors"
	"fmt"
	"io"
)

// State is the lifecycle position of an Engine.
type State uint8

const (
	// StatePrimed: an input row is buffered and its output is not computed.
	StatePrimed State = iota
	// StateProcessed: the buffered row has been evaluated and the engine is
	// about to pull the next one.
	StateProcessed
	// StateExhausted: no input row is pending. Terminal.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePrimed:
		return "primed"
	case StateProcessed:
		return "processed"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Engine evaluates a script once per input row with one row of lookahead.
//
// An Engine is not safe for concurrent use. It owns its Source for the
// duration of the run; closing the underlying file (if any) is the caller's
// job.
type Engine struct {
	script  Script
	columns map[string]int
	width   int // number of output columns, used to size output rows
	src     Source

	pending Row
	state   State
	err     error // sticky
	rows    int64 // data rows evaluated
}

// NewEngine builds the column mapping from columns (normally the input's
// header row) and primes the lookahead by pulling the first data row from
// src. When columns repeats a name, the last position wins.
//
// An io.EOF from src leaves the engine exhausted; any other read error is
// returned.
func NewEngine(columns Row, src Source, script Script) (*Engine, error) {
	m := make(map[string]int, len(columns))
	for i, c := range columns {
		m[c] = i
	}
	e := &Engine{
		script:  script,
		columns: m,
		width:   len(script),
		src:     src,
	}
	if err := e.prime(); err != nil {
		return nil, fmt.Errorf("read first row: %w", err)
	}
	return e, nil
}

// prime pulls the next input row into the lookahead buffer.
func (e *Engine) prime() error {
	row, err := e.src.Read()
	if err != nil {
		e.pending = nil
		e.state = StateExhausted
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if row == nil {
		row = Row{}
	}
	e.pending = row
	e.state = StatePrimed
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Pending reports whether a buffered input row is waiting to be evaluated.
// It never reads from the source.
func (e *Engine) Pending() bool { return e.err == nil && e.state == StatePrimed }

// Rows returns the number of input rows evaluated so far.
func (e *Engine) Rows() int64 { return e.rows }

// Index returns the input position of column name.
func (e *Engine) Index(name string) (int, bool) {
	i, ok := e.columns[name]
	return i, ok
}

// Advance evaluates the script against the buffered row, pulls the next
// input row into the buffer and returns the completed output row. It
// returns io.EOF when no row is pending.
//
// A script without operations yields an empty, non-nil row for every input
// row. Evaluation errors are wrapped in *RowError and are sticky: every
// later call returns the same error. A read error hit while refilling the
// buffer is deferred to the next call so the computed row is not lost.
func (e *Engine) Advance() (Row, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.state == StateExhausted {
		return nil, io.EOF
	}

	rc := rowContext{
		columns: e.columns,
		in:      e.pending,
		out:     make(Row, 0, e.width),
	}
	if err := e.script.apply(&rc); err != nil {
		e.err = &RowError{Row: e.rows + 1, Err: err}
		return nil, e.err
	}
	e.rows++
	e.state = StateProcessed

	if err := e.prime(); err != nil {
		e.err = &RowError{Row: e.rows + 1, Err: fmt.Errorf("read: %w", err)}
	}
	return rc.out, nil
}

// DrainInto advances until the input is exhausted, writing every output row
// to sink. It returns the number of rows written. Rows already written are
// not retracted when a later row fails.
func (e *Engine) DrainInto(sink Sink) (int64, error) {
	var n int64
	for {
		row, err := e.Advance()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := sink.Write(row); err != nil {
			return n, fmt.Errorf("write row %d: %w", e.rows, err)
		}
		n++
	}
}

// rowContext is the interpretation state of one row pass: the column
// mapping, the input row being read and the output row being built.
type rowContext struct {
	columns map[string]int
	in      Row
	out     Row
}

func (c *rowContext) read(name string) (string, error) {
	i, ok := c.columns[name]
	if !ok {
		return "", &ColumnError{Column: name, Index: -1, Err: ErrUnknownColumn}
	}
	if i >= len(c.in) {
		return "", &ColumnError{Column: name, Index: i, Width: len(c.in), Err: ErrMissingValue}
	}
	return c.in[i], nil
}

func (c *rowContext) readAll(names []string) ([]string, error) {
	vals := make([]string, len(names))
	for i, n := range names {
		v, err := c.read(n)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (c *rowContext) write(v string) { c.out = append(c.out, v) }

func (c *rowContext) create(string) error {
	c.write("")
	return nil
}

func (c *rowContext) copy(name string) error {
	v, err := c.read(name)
	if err != nil {
		return err
	}
	c.write(v)
	return nil
}

func (c *rowContext) rename(from, _ string) error {
	return c.copy(from)
}

func (c *rowContext) mapTo(from []string, _ string, fn MapFunc) error {
	args, err := c.readAll(from)
	if err != nil {
		return err
	}
	v, err := fn.Call(args...)
	if err != nil {
		return err
	}
	c.write(v)
	return nil
}
