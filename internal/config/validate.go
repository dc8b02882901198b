// Package config provides configuration models and helpers for transform
// pipelines.
//
// This file adds a linter for Pipeline values. It performs static checks over
// a decoded Pipeline and returns a list of issues (errors and warnings) that
// callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates something suspicious that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single lint finding.
//
// Path is a dotted path into the config (e.g. "sink.db.table",
// "script[1].to"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// StorageKinds lists the database sink kinds known to the linter.
var StorageKinds = []string{"postgres", "mssql", "sqlite", "mysql"}

// ValidatePipeline lints p without mutating it. Column names referenced by
// the script are not checked against the input; that happens per row.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; logs and metrics will use a generic name",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateScript(p.Script)...)
	issues = append(issues, validateSink(p.Sink)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		issues = append(issues, Issue{SeverityError, "source.kind", "source.kind must not be empty"})
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{SeverityError, "source.file.path", "file source requires a non-empty path"})
		}
	case "http":
		u, err := url.Parse(strings.TrimSpace(s.HTTP.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, Issue{SeverityError, "source.http.url", "http source requires an absolute http(s) url"})
		}
		if s.HTTP.MaxRetries < 0 || s.HTTP.TimeoutSeconds < 0 {
			issues = append(issues, Issue{SeverityError, "source.http", "max_retries and timeout_seconds must not be negative"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unsupported source kind %q", s.Kind)})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	switch strings.TrimSpace(p.Kind) {
	case "", "csv":
		// csv is the default.
	case "json":
		if len(p.Options.Strings("columns")) == 0 {
			issues = append(issues, Issue{SeverityError, "parser.options.columns", "json parser requires a non-empty list of columns"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "parser.kind", fmt.Sprintf("unsupported parser kind %q", p.Kind)})
	}
	if p.Options.Has("comma") && p.Options.Rune("comma", 0) == 0 {
		issues = append(issues, Issue{SeverityError, "parser.options.comma", "comma must be a non-empty string"})
	}
	return issues
}

func validateScript(steps []Step) []Issue {
	var issues []Issue

	if len(steps) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "script",
			Message:  "script has no operations; every output row will be empty",
		})
		return issues
	}

	seen := make(map[string]int, len(steps))
	for i, s := range steps {
		at := func(field string) string { return fmt.Sprintf("script[%d].%s", i, field) }
		errorf := func(field, format string, a ...any) {
			issues = append(issues, Issue{SeverityError, at(field), fmt.Sprintf(format, a...)})
		}

		var out string
		switch s.Op {
		case "create", "copy":
			if strings.TrimSpace(s.Column) == "" {
				errorf("column", "%s requires a column name", s.Op)
			}
			if len(s.From.Values) > 0 || s.To != "" || s.Func != "" {
				issues = append(issues, Issue{SeverityWarning, at("op"), fmt.Sprintf("%s only uses column; from/to/func are ignored", s.Op)})
			}
			out = s.Column
		case "rename":
			if len(s.From.Values) != 1 || s.From.List {
				errorf("from", "rename reads exactly one column")
			}
			if strings.TrimSpace(s.To) == "" {
				errorf("to", "rename requires a target name")
			}
			out = s.To
		case "map":
			if len(s.From.Values) == 0 {
				errorf("from", "map reads at least one column")
			}
			if strings.TrimSpace(s.To) == "" {
				errorf("to", "map requires a target name")
			}
			if strings.TrimSpace(s.Func) == "" {
				errorf("func", "map requires a function name")
			}
			out = s.To
		case "":
			errorf("op", "op must not be empty")
		default:
			errorf("op", "unknown op %q (want create, copy, rename or map)", s.Op)
		}

		if out == "" {
			continue
		}
		if prev, dup := seen[out]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     at("to"),
				Message:  fmt.Sprintf("output column %q is also produced by script[%d]", out, prev),
			})
			continue
		}
		seen[out] = i
	}
	return issues
}

func validateSink(s Sink) []Issue {
	var issues []Issue

	kind := strings.TrimSpace(s.Kind)
	switch {
	case kind == "":
		issues = append(issues, Issue{SeverityError, "sink.kind", "sink.kind must not be empty"})
	case kind == "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{SeverityError, "sink.file.path", "file sink requires a non-empty path"})
		}
	case isStorageKind(kind):
		if strings.TrimSpace(s.DB.DSN) == "" {
			issues = append(issues, Issue{SeverityError, "sink.db.dsn", "sink.db.dsn must not be empty"})
		}
		if strings.TrimSpace(s.DB.Table) == "" {
			issues = append(issues, Issue{SeverityError, "sink.db.table", "sink.db.table must not be empty"})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sink.kind",
			Message:  fmt.Sprintf("unknown sink kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	if r.BatchSize < 0 {
		return []Issue{{SeverityError, "runtime.batch_size", "batch_size must not be negative"}}
	}
	return nil
}

func isStorageKind(kind string) bool {
	for _, k := range StorageKinds {
		if k == kind {
			return true
		}
	}
	return false
}
