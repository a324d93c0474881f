package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	office2png "github.com/officepix/go-office2png"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // OFFICE2PNG_CONFIG: config file path
	Soffice    string        // OFFICE2PNG_SOFFICE: soffice binary path
	Timeout    time.Duration // OFFICE2PNG_TIMEOUT: per-document timeout
	Workers    int           // OFFICE2PNG_WORKERS: pool size
	DPI        int           // OFFICE2PNG_DPI: output resolution
}

// knownEnvVars lists valid OFFICE2PNG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"OFFICE2PNG_CONFIG":  true,
	"OFFICE2PNG_SOFFICE": true,
	"OFFICE2PNG_TIMEOUT": true,
	"OFFICE2PNG_WORKERS": true,
	"OFFICE2PNG_DPI":     true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("OFFICE2PNG_CONFIG"),
		Soffice:    os.Getenv("OFFICE2PNG_SOFFICE"),
	}

	if timeout := os.Getenv("OFFICE2PNG_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("OFFICE2PNG_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if dpi := os.Getenv("OFFICE2PNG_DPI"); dpi != "" {
		if d, err := strconv.Atoi(dpi); err == nil && d > 0 {
			cfg.DPI = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized OFFICE2PNG_* variables.
// Helps catch typos like OFFICE2PNG_WORKER instead of OFFICE2PNG_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "OFFICE2PNG_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Precedence: CLI flags > env vars > config file > defaults; CLI flags
// are applied later via mergeFlags, so env vars overwrite here.
func applyEnvConfig(env *envConfig, cfg *office2png.Config) {
	if env.Soffice != "" {
		cfg.Pool.SofficePath = env.Soffice
	}
	if env.Timeout > 0 {
		cfg.Pool.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Pool.PoolSize = office2png.ResolvePoolSize(env.Workers)
	}
	if env.DPI > 0 {
		cfg.Render.DPI = env.DPI
	}
}
