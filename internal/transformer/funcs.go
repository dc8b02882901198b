package transformer

// MapFunc is the per-row function of a map operation. It carries its arity so
// a mismatch with the declared input columns is reported instead of
// silently dropping or inventing arguments.
//
// The zero MapFunc is invalid (ErrNilFunc).
type MapFunc struct {
	arity int // -1: any number of arguments
	fn    func(args []string) (string, error)
}

// Unary wraps a one-argument function.
func Unary(f func(string) string) MapFunc {
	if f == nil {
		return MapFunc{}
	}
	return MapFunc{arity: 1, fn: func(a []string) (string, error) { return f(a[0]), nil }}
}

// Binary wraps a two-argument function.
func Binary(f func(a, b string) string) MapFunc {
	if f == nil {
		return MapFunc{}
	}
	return MapFunc{arity: 2, fn: func(a []string) (string, error) { return f(a[0], a[1]), nil }}
}

// Variadic wraps a function accepting any number of arguments.
func Variadic(f func(args ...string) string) MapFunc {
	if f == nil {
		return MapFunc{}
	}
	return MapFunc{arity: -1, fn: func(a []string) (string, error) { return f(a...), nil }}
}

// Checked wraps a fallible function over the argument slice. A negative
// arity accepts any number of arguments. An error returned by f aborts the
// current row like any other read error.
func Checked(arity int, f func(args []string) (string, error)) MapFunc {
	if f == nil {
		return MapFunc{}
	}
	if arity < 0 {
		arity = -1
	}
	return MapFunc{arity: arity, fn: f}
}

// Arity returns the number of arguments the function takes, or -1 for any.
func (m MapFunc) Arity() int { return m.arity }

// Valid reports whether m wraps a function.
func (m MapFunc) Valid() bool { return m.fn != nil }

func (m MapFunc) accepts(n int) bool { return m.arity < 0 || m.arity == n }

// Call invokes the function with args after checking the arity.
func (m MapFunc) Call(args ...string) (string, error) {
	if m.fn == nil {
		return "", ErrNilFunc
	}
	if !m.accepts(len(args)) {
		return "", arityError(m.arity, len(args))
	}
	return m.fn(args)
}
