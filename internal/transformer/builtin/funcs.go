package builtin

import (
	"fmt"
	"strings"
	"time"

	"transform/internal/config"
	"transform/internal/transformer"
)

// newReplace replaces every "old" with "new". Options: old (required,
// non-empty), new (default "").
func newReplace(opt config.Options) (transformer.MapFunc, error) {
	old, err := requireString(opt, "old")
	if err != nil {
		return transformer.MapFunc{}, err
	}
	if old == "" {
		return transformer.MapFunc{}, fmt.Errorf("%w: \"old\" must not be empty", ErrOption)
	}
	repl := opt.String("new", "")
	return transformer.Unary(func(s string) string {
		return strings.ReplaceAll(s, old, repl)
	}), nil
}

// newDefault substitutes "value" for an empty input.
func newDefault(opt config.Options) (transformer.MapFunc, error) {
	def, err := requireString(opt, "value")
	if err != nil {
		return transformer.MapFunc{}, err
	}
	return transformer.Unary(func(s string) string {
		if s == "" {
			return def
		}
		return s
	}), nil
}

// newConcat joins any number of inputs with "sep" (default "").
func newConcat(opt config.Options) (transformer.MapFunc, error) {
	sep := opt.String("sep", "")
	return transformer.Variadic(func(args ...string) string {
		return strings.Join(args, sep)
	}), nil
}

// coalesce returns the first non-empty argument.
func coalesce(args ...string) string {
	for _, a := range args {
		if a != "" {
			return a
		}
	}
	return ""
}

// newWhenEquals keeps value when cond equals the "equals" option and yields
// "" otherwise. It splits a signed amount column into inflow and outflow
// columns keyed by a transaction type column.
func newWhenEquals(opt config.Options) (transformer.MapFunc, error) {
	want, err := requireString(opt, "equals")
	if err != nil {
		return transformer.MapFunc{}, err
	}
	fold := opt.Bool("ignore_case", false)
	return transformer.Binary(func(value, cond string) string {
		if cond == want || (fold && strings.EqualFold(cond, want)) {
			return value
		}
		return ""
	}), nil
}

// newDate re-formats a timestamp from the Go layout "layout" to the Go
// layout "format". Empty input stays empty; unparsable input fails the row.
func newDate(opt config.Options) (transformer.MapFunc, error) {
	layout, err := requireString(opt, "layout")
	if err != nil {
		return transformer.MapFunc{}, err
	}
	format := opt.String("format", time.DateOnly)
	return transformer.Checked(1, func(args []string) (string, error) {
		if args[0] == "" {
			return "", nil
		}
		t, err := time.Parse(layout, args[0])
		if err != nil {
			return "", fmt.Errorf("date: %w", err)
		}
		return t.Format(format), nil
	}), nil
}
