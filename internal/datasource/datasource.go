// Package datasource defines where pipeline bytes are read from and written
// to. Concrete kinds live in subpackages.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw input of a pipeline.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Destination creates the raw output of a pipeline.
type Destination interface {
	Create(ctx context.Context) (io.WriteCloser, error)
}
