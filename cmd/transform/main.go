// Command transform streams a delimited file through a declarative column
// script into a CSV file or a database table.
//
// Usage:
//
//	transform -config pipeline.json [-env-file .env] [-validate] [-v]
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	// Register every storage backend; the pipeline picks one by kind.
	_ "transform/internal/storage/all"
)

func main() {
	var opt options

	flag.StringVar(&opt.configPath, "config", "configs/pipelines/sample.json", "pipeline config JSON path")
	flag.StringVar(&opt.envFile, "env-file", "", "optional .env file loaded before reading the environment")
	flag.StringVar(&opt.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog or none (overrides env METRICS_BACKEND)")
	flag.StringVar(&opt.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&opt.validateOnly, "validate", false, "validate the configuration and script, then exit")
	flag.BoolVar(&opt.verbose, "v", false, "enable debug logs")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, opt, os.Stderr)
	stop()
	os.Exit(code)
}
