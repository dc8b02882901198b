// Package builtin holds the named map functions that pipeline files refer to
// with "func". Each entry builds a transformer.MapFunc from the step options.
package builtin

import (
	"errors"
	"fmt"
	"sort"

	"transform/internal/config"
	"transform/internal/transformer"
)

var (
	// ErrUnknownFunc is returned by Lookup for unregistered names.
	ErrUnknownFunc = errors.New("builtin: unknown function")
	// ErrOption is returned when a required option is missing or malformed.
	ErrOption = errors.New("builtin: bad option")
)

// Factory builds a map function from step options.
type Factory func(opt config.Options) (transformer.MapFunc, error)

var registry = map[string]Factory{
	"upper":       unary(upper),
	"lower":       unary(lower),
	"trim":        unary(trim),
	"normalize":   unary(normalizeSpace),
	"title":       unary(title),
	"ascii":       unary(foldASCII),
	"identifier":  unary(identifier),
	"replace":     newReplace,
	"default":     newDefault,
	"concat":      newConcat,
	"coalesce":    fixed(transformer.Variadic(coalesce)),
	"when_equals": newWhenEquals,
	"date":        newDate,
}

// Lookup returns the function registered under name, configured by opt.
func Lookup(name string, opt config.Options) (transformer.MapFunc, error) {
	f, ok := registry[name]
	if !ok {
		return transformer.MapFunc{}, fmt.Errorf("%w %q", ErrUnknownFunc, name)
	}
	fn, err := f(opt)
	if err != nil {
		return transformer.MapFunc{}, fmt.Errorf("%s: %w", name, err)
	}
	return fn, nil
}

// Names lists the registered function names in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func unary(f func(string) string) Factory { return fixed(transformer.Unary(f)) }

// fixed is a Factory for functions without options.
func fixed(fn transformer.MapFunc) Factory {
	return func(config.Options) (transformer.MapFunc, error) { return fn, nil }
}

func requireString(opt config.Options, key string) (string, error) {
	s, ok := opt[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string", ErrOption, key)
	}
	return s, nil
}
