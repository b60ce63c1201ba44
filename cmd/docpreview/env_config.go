package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Abdul-Razack/docpreview/internal/config"
)

const envPrefix = "DOCPREVIEW_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath   string        // DOCPREVIEW_CONFIG: config file name or path
	OutputDir    string        // DOCPREVIEW_OUTPUT_DIR: artifact directory
	Timeout      time.Duration // DOCPREVIEW_TIMEOUT: per-document timeout
	Workers      int           // DOCPREVIEW_WORKERS: parallel workers
	Style        string        // DOCPREVIEW_STYLE: CSS style name or path
	TemplateSet  string        // DOCPREVIEW_TEMPLATE: template set name
	AssetPath    string        // DOCPREVIEW_ASSET_PATH: custom asset directory
	Oversampling int           // DOCPREVIEW_OVERSAMPLING: capture scale factor
	LogLevel     string        // DOCPREVIEW_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid DOCPREVIEW_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCPREVIEW_CONFIG":       true,
	"DOCPREVIEW_OUTPUT_DIR":   true,
	"DOCPREVIEW_TIMEOUT":      true,
	"DOCPREVIEW_WORKERS":      true,
	"DOCPREVIEW_STYLE":        true,
	"DOCPREVIEW_TEMPLATE":     true,
	"DOCPREVIEW_ASSET_PATH":   true,
	"DOCPREVIEW_OVERSAMPLING": true,
	"DOCPREVIEW_LOG_LEVEL":    true,
	"DOCPREVIEW_CONTAINER":    true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored, not errors.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("DOCPREVIEW_CONFIG"),
		OutputDir:   os.Getenv("DOCPREVIEW_OUTPUT_DIR"),
		Style:       os.Getenv("DOCPREVIEW_STYLE"),
		TemplateSet: os.Getenv("DOCPREVIEW_TEMPLATE"),
		AssetPath:   os.Getenv("DOCPREVIEW_ASSET_PATH"),
		LogLevel:    os.Getenv("DOCPREVIEW_LOG_LEVEL"),
	}

	if timeout := os.Getenv("DOCPREVIEW_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("DOCPREVIEW_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if n := os.Getenv("DOCPREVIEW_OVERSAMPLING"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			cfg.Oversampling = v
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for every unrecognized DOCPREVIEW_*
// variable, e.g. DOCPREVIEW_WORKER instead of DOCPREVIEW_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Timeout > 0 {
		cfg.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.Style != "" {
		cfg.Assets.Style = env.Style
	}
	if env.TemplateSet != "" {
		cfg.Assets.TemplateSet = env.TemplateSet
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Oversampling > 0 {
		cfg.Page.Oversampling = env.Oversampling
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
}
