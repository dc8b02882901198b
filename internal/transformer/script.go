// Package transformer implements a streaming, declarative row/column
// transformation engine.
//
// A Script is an ordered list of column operations (create, copy, rename,
// map). The same script is interpreted twice:
//
//   - once by the Header resolver, against no data, to compute the output
//     column names, and
//   - once per input row by the Engine, to compute the output values.
//
// Both passes walk the identical script through one dispatch loop, so the
// header and every data row always have the same width and order.
//
// The engine keeps a single row of lookahead and never buffers the input.
// Rows can be pulled one at a time (Engine.Advance) or pushed into a Sink
// (Engine.DrainInto); the push path is a loop over the pull path.
//
// Example:
//
//	script := transformer.Script{
//	    transformer.Copy("Date"),
//	    transformer.Rename("Description", "Payee"),
//	    transformer.MapColumns([]string{"Amount", "Type"}, "Inflow",
//	        transformer.Binary(func(amount, typ string) string {
//	            if typ == "credit" {
//	                return amount
//	            }
//	            return ""
//	        })),
//	}
//	n, err := transformer.Transform(src, sink, script)
package transformer

import "fmt"

// Kind tags an Operation. The zero value is not a valid kind.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindCreate
	KindCopy
	KindRename
	KindMap
)

// String returns the lower-case operation name used in configs and errors.
func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindCopy:
		return "copy"
	case KindRename:
		return "rename"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Operation is one declared column operation.
//
// From lists the input columns the operation reads (empty for create, one
// name for copy and rename, one or more for map). To is the output column
// name. Fn is only used by map.
type Operation struct {
	Kind Kind
	From []string
	To   string
	Fn   MapFunc
}

// Create declares a new column that is always empty.
func Create(name string) Operation {
	return Operation{Kind: KindCreate, To: name}
}

// Copy declares an output column carrying input column name unchanged.
func Copy(name string) Operation {
	return Operation{Kind: KindCopy, From: []string{name}, To: name}
}

// Rename declares an output column named to carrying input column from.
func Rename(from, to string) Operation {
	return Operation{Kind: KindRename, From: []string{from}, To: to}
}

// Map declares an output column to computed by fn from a single input column.
func Map(from, to string, fn MapFunc) Operation {
	return Operation{Kind: KindMap, From: []string{from}, To: to, Fn: fn}
}

// MapColumns declares an output column to computed by fn from several input
// columns. fn receives one argument per name, in the order given.
func MapColumns(from []string, to string, fn MapFunc) Operation {
	names := make([]string, len(from))
	copy(names, from)
	return Operation{Kind: KindMap, From: names, To: to, Fn: fn}
}

// Script is an ordered list of operations. A script is never modified by the
// header or row passes and may be shared between them.
type Script []Operation

// visitor receives one call per operation. The header resolver and the row
// context are the two implementations.
type visitor interface {
	create(name string) error
	copy(name string) error
	rename(from, to string) error
	mapTo(from []string, to string, fn MapFunc) error
}

// apply is the single dispatch loop shared by both passes.
func (s Script) apply(v visitor) error {
	for i, op := range s {
		var err error
		switch op.Kind {
		case KindCreate:
			err = v.create(op.To)
		case KindCopy:
			err = v.copy(op.source())
		case KindRename:
			err = v.rename(op.source(), op.To)
		case KindMap:
			err = v.mapTo(op.From, op.To, op.Fn)
		default:
			err = ErrInvalidOperation
		}
		if err != nil {
			return &OperationError{Index: i, Op: op.Kind, Err: err}
		}
	}
	return nil
}

// source returns the single input column of copy and rename. A copy built by
// hand without From falls back to To.
func (op Operation) source() string {
	if len(op.From) > 0 {
		return op.From[0]
	}
	return op.To
}

// Names returns the output column names of the script.
func (s Script) Names() Row { return ResolveHeader(s) }

// Validate reports the first malformed operation: an invalid kind, a map
// without a function or without input columns, or a map whose function
// cannot take len(From) arguments. Unknown column names are not checked;
// they depend on the input.
func (s Script) Validate() error {
	for i, op := range s {
		var err error
		switch op.Kind {
		case KindCreate, KindCopy, KindRename:
		case KindMap:
			switch {
			case len(op.From) == 0:
				err = fmt.Errorf("%w: map needs at least one input column", ErrMapArity)
			case op.Fn.fn == nil:
				err = ErrNilFunc
			case !op.Fn.accepts(len(op.From)):
				err = arityError(op.Fn.arity, len(op.From))
			}
		default:
			err = ErrInvalidOperation
		}
		if err != nil {
			return &OperationError{Index: i, Op: op.Kind, Err: err}
		}
	}
	return nil
}
