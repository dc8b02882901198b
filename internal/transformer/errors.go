package transformer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is returned when an operation reads a column name that
	// is not part of the input header.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrMissingValue is returned when the input row is shorter than the
	// header position of a referenced column.
	ErrMissingValue = errors.New("missing value")

	// ErrMapArity is returned when a map function cannot take the number of
	// input columns declared by its operation.
	ErrMapArity = errors.New("map arity mismatch")

	// ErrNilFunc is returned when a map operation carries no function.
	ErrNilFunc = errors.New("map function is nil")

	// ErrInvalidOperation is returned for an operation with an unknown kind.
	ErrInvalidOperation = errors.New("invalid operation")
)

// ColumnError reports a failed column read.
type ColumnError struct {
	Column string
	Index  int // header position, -1 when the name is unknown
	Width  int // width of the offending input row
	Err    error
}

func (e *ColumnError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("column %q: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("column %q (index %d, row width %d): %v", e.Column, e.Index, e.Width, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }

// OperationError locates a failure inside a script.
type OperationError struct {
	Index int // position of the operation in the script
	Op    Kind
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// RowError attaches the 1-based data row number to a row failure.
type RowError struct {
	Row int64
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

func arityError(want, got int) error {
	return fmt.Errorf("%w: function takes %d argument(s), operation reads %d column(s)", ErrMapArity, want, got)
}
