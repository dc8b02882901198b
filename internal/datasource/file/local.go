// Package file implements datasource.Source and datasource.Destination on
// the local filesystem.
package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"transform/internal/datasource"
)

// Local is a file path used for input or output.
type Local struct{ path string }

var (
	_ datasource.Source      = (*Local)(nil)
	_ datasource.Destination = (*Local)(nil)
)

// NewLocal returns a Local bound to path. The path "-" means stdin for Open
// and stdout for Create.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured path.
func (l *Local) Path() string { return l.path }

// Open opens the file for reading. A canceled context is reported before the
// filesystem is touched. Errors keep the os error chain, so
// errors.Is(err, os.ErrNotExist) works.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Create truncates or creates the file, making parent directories as
// needed. Writes are buffered; Close flushes, syncs and closes the file.
func (l *Local) Create(ctx context.Context) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.path == "-" {
		return &bufferedFile{w: bufio.NewWriter(os.Stdout)}, nil
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", l.path, err)
		}
	}
	f, err := os.Create(l.path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", l.path, err)
	}
	return &bufferedFile{w: bufio.NewWriterSize(f, 64*1024), f: f}, nil
}

// bufferedFile is a bufio.Writer over an optional *os.File. A nil f means
// stdout, which is flushed but never closed.
type bufferedFile struct {
	w *bufio.Writer
	f *os.File
}

func (b *bufferedFile) Write(p []byte) (int, error) { return b.w.Write(p) }

func (b *bufferedFile) Close() error {
	err := b.w.Flush()
	if b.f == nil {
		return err
	}
	if err == nil {
		err = b.f.Sync()
	}
	if cerr := b.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("close %s: %w", b.f.Name(), err)
	}
	return nil
}
