// Package script turns the declarative steps of a pipeline file into a
// transformer.Script.
package script

import (
	"errors"
	"fmt"
	"strings"

	"transform/internal/config"
	"transform/internal/transformer"
	"transform/internal/transformer/builtin"
)

// ErrStep marks a step that cannot be compiled.
var ErrStep = errors.New("script: invalid step")

// LookupFunc resolves a map function by name.
type LookupFunc func(name string, opt config.Options) (transformer.MapFunc, error)

// StepError reports the index of a failing step.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("script[%d] %s: %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Compile builds a script using the builtin function registry.
func Compile(steps []config.Step) (transformer.Script, error) {
	return CompileWith(steps, builtin.Lookup)
}

// CompileWith builds a script resolving map functions with lookup. The
// result is validated before it is returned.
func CompileWith(steps []config.Step, lookup LookupFunc) (transformer.Script, error) {
	out := make(transformer.Script, 0, len(steps))
	for i, s := range steps {
		op, err := compileStep(s, lookup)
		if err != nil {
			return nil, &StepError{Index: i, Op: s.Op, Err: err}
		}
		out = append(out, op)
	}
	if err := out.Validate(); err != nil {
		var oe *transformer.OperationError
		if errors.As(err, &oe) && oe.Index < len(steps) {
			return nil, &StepError{Index: oe.Index, Op: steps[oe.Index].Op, Err: oe.Err}
		}
		return nil, err
	}
	return out, nil
}

func compileStep(s config.Step, lookup LookupFunc) (transformer.Operation, error) {
	switch s.Op {
	case "create", "copy":
		if strings.TrimSpace(s.Column) == "" {
			return transformer.Operation{}, fmt.Errorf("%w: column is required", ErrStep)
		}
		if s.Op == "create" {
			return transformer.Create(s.Column), nil
		}
		return transformer.Copy(s.Column), nil

	case "rename":
		if len(s.From.Values) != 1 || s.From.List {
			return transformer.Operation{}, fmt.Errorf("%w: from must name exactly one column", ErrStep)
		}
		if s.To == "" {
			return transformer.Operation{}, fmt.Errorf("%w: to is required", ErrStep)
		}
		return transformer.Rename(s.From.Values[0], s.To), nil

	case "map":
		if len(s.From.Values) == 0 {
			return transformer.Operation{}, fmt.Errorf("%w: from is required", ErrStep)
		}
		if s.To == "" {
			return transformer.Operation{}, fmt.Errorf("%w: to is required", ErrStep)
		}
		if s.Func == "" {
			return transformer.Operation{}, fmt.Errorf("%w: func is required", ErrStep)
		}
		fn, err := lookup(s.Func, s.Options)
		if err != nil {
			return transformer.Operation{}, err
		}
		if !s.From.List {
			return transformer.Map(s.From.Values[0], s.To, fn), nil
		}
		return transformer.MapColumns(s.From.Values, s.To, fn), nil

	case "":
		return transformer.Operation{}, fmt.Errorf("%w: op is required", ErrStep)
	default:
		return transformer.Operation{}, fmt.Errorf("%w: unknown op %q", ErrStep, s.Op)
	}
}
