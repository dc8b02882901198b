package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Env holds process-level settings read from the environment (12-factor
// style). The pipeline file describes the data flow; Env describes how the
// process reports on it.
type Env struct {
	LogLevel  string `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json console"`

	MetricsBackend   string `mapstructure:"metrics_backend" validate:"oneof=pushgateway datadog none"`
	PushgatewayURL   string `mapstructure:"pushgateway_url" validate:"required_if=MetricsBackend pushgateway,omitempty,url"`
	DatadogAddr      string `mapstructure:"datadog_addr" validate:"required_if=MetricsBackend datadog"`
	DatadogNamespace string `mapstructure:"datadog_namespace"`
}

var envDefaults = map[string]any{
	"log_level":         "info",
	"log_format":        "json",
	"metrics_backend":   "none",
	"pushgateway_url":   "http://localhost:9091",
	"datadog_addr":      "",
	"datadog_namespace": "transform.",
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// LoadEnv reads Env from the process environment. When envFile is not empty
// it is loaded first with godotenv; variables already set in the environment
// win over the file. Keys are upper-cased: LOG_LEVEL, LOG_FORMAT,
// METRICS_BACKEND, PUSHGATEWAY_URL, DATADOG_ADDR, DATADOG_NAMESPACE.
func LoadEnv(envFile string) (Env, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Env{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for k, def := range envDefaults {
		v.SetDefault(k, def)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var e Env
	if err := v.Unmarshal(&e); err != nil {
		return Env{}, fmt.Errorf("decode env: %w", err)
	}
	e.LogLevel = strings.ToLower(e.LogLevel)
	e.LogFormat = strings.ToLower(e.LogFormat)
	e.MetricsBackend = strings.ToLower(e.MetricsBackend)

	if err := getValidator().Struct(e); err != nil {
		return Env{}, fmt.Errorf("invalid environment: %w", err)
	}
	return e, nil
}
