package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"transform/internal/config"
	"transform/internal/datasource"
	"transform/internal/datasource/file"
	"transform/internal/datasource/httpds"
	"transform/internal/logging"
	"transform/internal/metrics"
	"transform/internal/metrics/datadog"
	"transform/internal/metrics/prompush"
	csvparser "transform/internal/parser/csv"
	jsonparser "transform/internal/parser/json"
	"transform/internal/script"
	"transform/internal/storage"
	"transform/internal/textenc"
	"transform/internal/transformer"
)

const defaultJob = "transform"

// options are the parsed command-line flags.
type options struct {
	configPath     string
	envFile        string
	metricsBackend string
	pushgatewayURL string
	validateOnly   bool
	verbose        bool
}

// Test seams.
var (
	newRepositoryFn = storage.New
)

// summary holds the end-of-run counters.
type summary struct {
	read    int64
	written int64
	batches int64
}

// rowSink is a transformer.Sink that must be closed to flush its output.
type rowSink interface {
	transformer.Sink
	Close() error
}

// run executes one pipeline and returns the process exit code. Diagnostics
// and logs go to stderr.
func run(ctx context.Context, opt options, stderr io.Writer) int {
	env, err := config.LoadEnv(opt.envFile)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	level := env.LogLevel
	if opt.verbose && level == "info" {
		level = "debug"
	}
	logger := logging.New(logging.Config{Level: level, Format: env.LogFormat, Output: stderr})

	p, err := config.Load(opt.configPath)
	if err != nil {
		logger.Error().Err(err).Str("config", opt.configPath).Msg("load pipeline")
		return 1
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		logger.Error().Str("config", opt.configPath).Msg("configuration is invalid")
		return 1
	}

	compiled, err := script.Compile(p.Script)
	if err != nil {
		logger.Error().Err(err).Str("config", opt.configPath).Msg("compile script")
		return 1
	}
	if opt.validateOnly {
		logger.Info().Str("config", opt.configPath).Strs("columns", compiled.Names()).Msg("configuration is valid")
		return 0
	}

	job := p.Job
	if job == "" {
		job = defaultJob
	}
	logger = logger.With().Str("job", job).Logger()

	shutdown := setupMetrics(opt, env, job, logger)
	defer shutdown()

	logger.Debug().
		Str("source", p.Source.Kind).
		Str("parser", p.Parser.Kind).
		Str("sink", p.Sink.Kind).
		Int("operations", len(compiled)).
		Msg("pipeline")

	start := time.Now()
	sum, err := runPipeline(ctx, p, job, compiled, logger)
	elapsed := time.Since(start)

	metrics.RecordStep(job, "run", err, elapsed)
	metrics.RecordRow(job, "read", sum.read)
	metrics.RecordRow(job, "written", sum.written)

	var ev *zerolog.Event
	msg := "run complete"
	if err != nil {
		metrics.RecordRow(job, "failed", 1)
		ev, msg = logger.Error().Err(err), "run failed"
	} else {
		ev = logger.Info()
	}
	rps := 0.0
	if s := elapsed.Seconds(); s > 0 {
		rps = float64(sum.written) / s
	}
	ev.Int64("rows_read", sum.read).
		Int64("rows_written", sum.written).
		Int64("batches", sum.batches).
		Dur("elapsed", elapsed.Truncate(time.Millisecond)).
		Float64("rows_per_sec", rps).
		Msg(msg)

	if err != nil {
		return 1
	}
	return 0
}

// runPipeline opens the source and sink, writes the output header and pulls
// rows through the engine until the input is exhausted, the context is
// canceled or a row fails. The sink is closed in every case, so rows already
// written are kept.
func runPipeline(ctx context.Context, p config.Pipeline, job string, s transformer.Script, logger zerolog.Logger) (sum summary, err error) {
	src, err := newSource(p.Source)
	if err != nil {
		return sum, fmt.Errorf("open source: %w", err)
	}
	in, err := src.Open(ctx)
	if err != nil {
		return sum, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	decoded, err := textenc.NewReader(in, p.Parser.Options.String("encoding", ""))
	if err != nil {
		return sum, fmt.Errorf("source encoding: %w", err)
	}
	reader, err := newReader(decoded, p.Parser)
	if err != nil {
		return sum, err
	}

	sink, err := openSink(ctx, p, job, &sum, logger)
	if err != nil {
		return sum, err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close sink: %w", cerr)
		}
	}()

	if err := sink.Write(transformer.ResolveHeader(s)); err != nil {
		return sum, fmt.Errorf("write header: %w", err)
	}

	eng, err := transformer.Open(reader, s)
	if err != nil {
		return sum, err
	}
	defer func() { sum.read = eng.Rows() }()

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		row, err := eng.Advance()
		if errors.Is(err, io.EOF) {
			return sum, nil
		}
		if err != nil {
			return sum, err
		}
		if err := sink.Write(row); err != nil {
			return sum, fmt.Errorf("write row %d: %w", eng.Rows(), err)
		}
		sum.written++
	}
}

// newReader picks the row decoder for the parser kind.
func newReader(r io.Reader, cfg config.Parser) (transformer.Source, error) {
	if cfg.Kind == "json" {
		return jsonparser.NewReader(r, cfg.Options)
	}
	return csvparser.NewReader(r, cfg.Options), nil
}

// newSource maps the source config onto a datasource.
func newSource(cfg config.Source) (datasource.Source, error) {
	if cfg.Kind != "http" {
		return file.NewLocal(cfg.File.Path), nil
	}
	hdr := make(http.Header, len(cfg.HTTP.Headers))
	for k, v := range cfg.HTTP.Headers {
		hdr.Set(k, v)
	}
	return httpds.New(httpds.Config{
		URL:                cfg.HTTP.URL,
		Headers:            hdr,
		Timeout:            time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		MaxRetries:         cfg.HTTP.MaxRetries,
		InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
	})
}

// openSink builds the configured sink. Storage sinks report batches into
// sum and the metrics facade.
func openSink(ctx context.Context, p config.Pipeline, job string, sum *summary, logger zerolog.Logger) (rowSink, error) {
	if p.Sink.Kind == "file" {
		return openFileSink(ctx, p.Sink)
	}

	repo, err := newRepositoryFn(ctx, storage.Config{Kind: p.Sink.Kind, DSN: p.Sink.DB.DSN, Table: p.Sink.DB.Table})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	sink, err := storage.NewSink(ctx, repo, storage.SinkConfig{
		Kind:        p.Sink.Kind,
		Table:       p.Sink.DB.Table,
		BatchSize:   p.Runtime.BatchSizeOrDefault(),
		AutoCreate:  p.Sink.DB.AutoCreateTable,
		EmptyAsNull: p.Sink.DB.EmptyAsNull,
		Logger:      logging.Component(logger, "storage"),
		OnFlush: func(rows int64, _ time.Duration) {
			sum.batches++
			metrics.RecordBatches(job, 1)
			metrics.RecordRow(job, "inserted", rows)
		},
	})
	if err != nil {
		repo.Close()
		return nil, err
	}
	return &storageSink{Sink: sink, repo: repo}, nil
}

// storageSink closes the repository after the final batch.
type storageSink struct {
	*storage.Sink
	repo storage.Repository
}

func (s *storageSink) Close() error {
	defer s.repo.Close()
	return s.Sink.Close()
}

// fileSink writes CSV through an optional charset encoder.
type fileSink struct {
	*csvparser.Writer
	enc io.WriteCloser
	out io.WriteCloser
}

func openFileSink(ctx context.Context, cfg config.Sink) (rowSink, error) {
	out, err := file.NewLocal(cfg.File.Path).Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("open sink: %w", err)
	}
	enc, err := textenc.NewWriter(out, cfg.Options.String("encoding", ""))
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("sink encoding: %w", err)
	}
	return &fileSink{Writer: csvparser.NewWriter(enc, cfg.Options), enc: enc, out: out}, nil
}

func (s *fileSink) Close() error {
	err := s.Writer.Flush()
	if cerr := s.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := s.out.Close(); err == nil {
		err = cerr
	}
	return err
}

// setupMetrics installs the backend chosen by flag, then environment, and
// returns a function that flushes it and restores the no-op backend.
func setupMetrics(opt options, env config.Env, job string, logger zerolog.Logger) func() {
	log := logging.Component(logger, "metrics")

	name := opt.metricsBackend
	if name == "" {
		name = env.MetricsBackend
	}

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "pushgateway":
		url := opt.pushgatewayURL
		if url == "" {
			url = env.PushgatewayURL
		}
		b, err = prompush.NewBackend(job, url)
		log = log.With().Str("url", url).Logger()
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       env.DatadogAddr,
			Namespace:  env.DatadogNamespace,
			GlobalTags: []string{"job:" + job},
		})
	case "", "none":
		log.Debug().Msg("metrics disabled")
		return func() {}
	default:
		log.Warn().Str("backend", name).Msg("unknown metrics backend; metrics disabled")
		return func() {}
	}
	if err != nil {
		log.Warn().Err(err).Str("backend", name).Msg("metrics backend init failed; using nop")
		return func() {}
	}

	log.Debug().Str("backend", name).Msg("metrics enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics flush")
		}
		metrics.SetBackend(nil)
	}
}
