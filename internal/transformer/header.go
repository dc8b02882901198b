package transformer

// Header computes the output column names of a script. It never sees input
// data: map functions are not invoked and input column names are not
// checked.
type Header struct {
	names Row
}

// NewHeader interprets script once, appending one name per operation to acc.
// An operation with an invalid kind stops the pass; the row engine reports
// the same operation as an error.
func NewHeader(acc Row, script Script) *Header {
	if acc == nil {
		acc = Row{}
	}
	h := &Header{names: acc}
	_ = script.apply(h)
	return h
}

// ResolveHeader returns the output column names of script. The result is
// never nil; a script without operations yields an empty row.
func ResolveHeader(script Script) Row {
	return NewHeader(make(Row, 0, len(script)), script).Row()
}

// Row returns the accumulated column names.
func (h *Header) Row() Row { return h.names }

func (h *Header) write(name string) { h.names = append(h.names, name) }

func (h *Header) create(name string) error { h.write(name); return nil }

func (h *Header) copy(name string) error { h.write(name); return nil }

func (h *Header) rename(_, to string) error { h.write(to); return nil }

func (h *Header) mapTo(_ []string, to string, _ MapFunc) error { h.write(to); return nil }
