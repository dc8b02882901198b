package config

import (
	"os"
	"path/filepath"
	"testing"
)

// envKeys are cleared before each env test so the host environment does not
// leak in.
var envKeys = []string{"LOG_LEVEL", "LOG_FORMAT", "METRICS_BACKEND", "PUSHGATEWAY_URL", "DATADOG_ADDR", "DATADOG_NAMESPACE"}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

/*
TestLoadEnv_Defaults verifies the defaults when nothing is set.
*/
func TestLoadEnv_Defaults(t *testing.T) {
	clearEnv(t)

	e, err := LoadEnv("")
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.LogLevel != "info" || e.LogFormat != "json" || e.MetricsBackend != "none" {
		t.Fatalf("unexpected defaults: %+v", e)
	}
	if e.PushgatewayURL != "http://localhost:9091" {
		t.Fatalf("pushgateway default = %q", e.PushgatewayURL)
	}
}

/*
TestLoadEnv_ProcessEnv verifies that process variables override defaults and
are normalized to lower case.
*/
func TestLoadEnv_ProcessEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("METRICS_BACKEND", "datadog")
	t.Setenv("DATADOG_ADDR", "127.0.0.1:8125")

	e, err := LoadEnv("")
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.LogLevel != "debug" || e.MetricsBackend != "datadog" || e.DatadogAddr != "127.0.0.1:8125" {
		t.Fatalf("unexpected env: %+v", e)
	}
}

/*
TestLoadEnv_File verifies that a .env file is read, and that variables already
present in the process win over it.
*/
func TestLoadEnv_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "console")

	path := filepath.Join(t.TempDir(), ".env")
	content := "LOG_LEVEL=warn\nLOG_FORMAT=json\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	e, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.LogLevel != "warn" {
		t.Fatalf("LOG_LEVEL from file: got %q", e.LogLevel)
	}
	if e.LogFormat != "console" {
		t.Fatalf("process env must win: got %q", e.LogFormat)
	}
}

/*
TestLoadEnv_Invalid covers validator failures and a missing env file.
*/
func TestLoadEnv_Invalid(t *testing.T) {
	clearEnv(t)

	t.Setenv("METRICS_BACKEND", "graphite")
	if _, err := LoadEnv(""); err == nil {
		t.Fatalf("expected error for unknown metrics backend")
	}

	t.Setenv("METRICS_BACKEND", "datadog")
	if _, err := LoadEnv(""); err == nil {
		t.Fatalf("expected error for datadog without address")
	}

	t.Setenv("METRICS_BACKEND", "none")
	t.Setenv("LOG_FORMAT", "xml")
	if _, err := LoadEnv(""); err == nil {
		t.Fatalf("expected error for unknown log format")
	}

	t.Setenv("LOG_FORMAT", "json")
	if _, err := LoadEnv(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatalf("expected error for missing env file")
	}
}
