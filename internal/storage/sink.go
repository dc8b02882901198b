package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"transform/internal/transformer"
)

// ErrSinkClosed is returned by Write after Close.
var ErrSinkClosed = errors.New("storage sink is closed")

// SinkConfig configures a Sink.
type SinkConfig struct {
	// Kind selects the DDL dialect for AutoCreate.
	Kind string
	// Table receives the rows.
	Table string
	// BatchSize is the number of rows per CopyFrom; zero or less means 1000.
	BatchSize int
	// AutoCreate creates Table from the header row when missing.
	AutoCreate bool
	// EmptyAsNull stores empty strings as NULL.
	EmptyAsNull bool
	// Logger receives per-batch progress. The zero value discards.
	Logger zerolog.Logger
	// OnFlush, when set, is called after every successful batch.
	OnFlush func(rows int64, elapsed time.Duration)
}

// Stats summarizes a sink's work.
type Stats struct {
	Rows    int64
	Batches int64
}

// Sink writes transformed rows to a Repository. The first row it receives is
// the output header; it fixes the column list and, with AutoCreate, the
// table layout. Later rows are buffered and copied in batches.
//
// Sink implements transformer.Sink, whose Write carries no context, so the
// context given to NewSink is used for every database call.
type Sink struct {
	ctx  context.Context
	repo Repository
	cfg  SinkConfig
	log  zerolog.Logger

	columns []string
	batch   [][]any
	stats   Stats
	start   time.Time
	last    time.Time
	closed  bool
}

var _ transformer.Sink = (*Sink)(nil)

// NewSink returns a Sink over repo.
func NewSink(ctx context.Context, repo Repository, cfg SinkConfig) (*Sink, error) {
	if repo == nil {
		return nil, errors.New("storage sink: repository is nil")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, errors.New("storage sink: table must not be empty")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	now := time.Now()
	return &Sink{
		ctx:   ctx,
		repo:  repo,
		cfg:   cfg,
		log:   cfg.Logger.With().Str("table", cfg.Table).Logger(),
		batch: make([][]any, 0, cfg.BatchSize),
		start: now,
		last:  now,
	}, nil
}

// Write takes the header on the first call and a data row afterwards.
func (s *Sink) Write(row transformer.Row) error {
	if s.closed {
		return ErrSinkClosed
	}
	if s.columns == nil {
		return s.writeHeader(row)
	}
	if len(row) != len(s.columns) {
		return fmt.Errorf("storage sink: row has %d values, table has %d columns", len(row), len(s.columns))
	}

	vals := make([]any, len(row))
	for i, v := range row {
		if v == "" && s.cfg.EmptyAsNull {
			vals[i] = nil
			continue
		}
		vals[i] = v
	}
	s.batch = append(s.batch, vals)
	if len(s.batch) >= s.cfg.BatchSize {
		return s.flush()
	}
	return nil
}

func (s *Sink) writeHeader(row transformer.Row) error {
	if err := CheckColumns(row); err != nil {
		return fmt.Errorf("storage sink header: %w", err)
	}
	cols := make([]string, len(row))
	copy(cols, row)

	if s.cfg.AutoCreate {
		if err := EnsureTable(s.ctx, s.cfg.Kind, s.repo, s.cfg.Table, cols); err != nil {
			return err
		}
		s.log.Debug().Strs("columns", cols).Msg("table ensured")
	}
	s.columns = cols
	return nil
}

func (s *Sink) flush() error {
	if len(s.batch) == 0 {
		return nil
	}
	n, err := s.repo.CopyFrom(s.ctx, s.columns, s.batch)
	s.stats.Rows += n
	s.batch = s.batch[:0]
	if err != nil {
		s.log.Error().Err(err).Int64("inserted", n).Int64("total", s.stats.Rows).Msg("copy failed")
		return fmt.Errorf("copy into %s: %w", s.cfg.Table, err)
	}

	s.stats.Batches++
	now := time.Now()
	since := now.Sub(s.last)
	rps := float64(0)
	if since > 0 {
		rps = float64(n) / since.Seconds()
	}
	s.log.Info().
		Int64("batch", s.stats.Batches).
		Int64("inserted", n).
		Int64("total", s.stats.Rows).
		Float64("rps", rps).
		Dur("elapsed", now.Sub(s.start)).
		Msg("batch copied")
	s.last = now

	if s.cfg.OnFlush != nil {
		s.cfg.OnFlush(n, since)
	}
	return nil
}

// Close copies buffered rows. It does not close the Repository. Calling
// Close again is a no-op.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.flush()
}

// Columns returns the column list taken from the header, or nil before it.
func (s *Sink) Columns() []string { return s.columns }

// Stats returns the rows and batches copied so far.
func (s *Sink) Stats() Stats { return s.stats }
