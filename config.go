package office2png

import (
	"fmt"
	"runtime"
	"time"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one soffice instance is available.
	MinPoolSize = 1

	// MaxPoolSize caps soffice instances to limit memory (~150MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for soffice child processes.
	cpuDivisor = 2
)

// Rendering bounds.
const (
	// MinDPI and MaxDPI bound the output resolution.
	MinDPI = 1
	MaxDPI = 1200

	// MaxCompression is the highest PNG compression level.
	MaxCompression = 9
)

// Defaults applied by DefaultConfig.
const (
	DefaultTimeout            = 120 * time.Second
	DefaultMaxDocsPerInstance = 100
	DefaultDPI                = 300
	DefaultCompression        = 6
)

// PoolConfig configures the soffice worker pool.
type PoolConfig struct {
	// PoolSize is the number of soffice instances. Zero means
	// auto-size via ResolvePoolSize.
	PoolSize int `yaml:"poolSize"`

	// Timeout bounds a single document-to-PDF conversion, measured
	// from subprocess launch.
	Timeout time.Duration `yaml:"timeout"`

	// MaxDocsPerInstance is the processed-document count at which an
	// instance is reported as recycling-eligible via Health.
	MaxDocsPerInstance int `yaml:"maxDocsPerInstance"`

	// WorkDir is the root for instance profile directories and
	// intermediate PDFs. Empty means the system temp directory.
	WorkDir string `yaml:"workDir"`

	// SofficePath is an explicit path to the soffice binary. Empty
	// means search well-known install locations, then PATH.
	SofficePath string `yaml:"sofficePath"`
}

// RenderConfig configures PDF-to-PNG rendering.
type RenderConfig struct {
	// DPI is the output resolution. Pixel size is computed as
	// round(points * DPI / 72).
	DPI int `yaml:"dpi"`

	// EncodeWorkers is the number of parallel PNG encoders. Zero means
	// GOMAXPROCS.
	EncodeWorkers int `yaml:"encodeWorkers"`

	// Compression is the PNG compression level (0-9). Values above 9
	// are clamped. Lower levels favor throughput over size.
	Compression int `yaml:"compression"`

	// Alpha keeps the alpha channel in output images. When false,
	// semi-transparent pixels are composited over Background.
	Alpha bool `yaml:"alpha"`

	// Background is the flat page background used when Alpha is false.
	Background RGB `yaml:"background"`
}

// RGB is a flat background color.
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// White is the default page background.
var White = RGB{R: 255, G: 255, B: 255}

// Config combines pool and render configuration.
type Config struct {
	Pool   PoolConfig   `yaml:"pool"`
	Render RenderConfig `yaml:"render"`
}

// DefaultConfig returns a configuration with documented defaults:
// auto-sized pool, 120s timeout, 300 DPI, fast PNG encoding over a
// white background.
func DefaultConfig() Config {
	return Config{
		Pool: PoolConfig{
			PoolSize:           ResolvePoolSize(0),
			Timeout:            DefaultTimeout,
			MaxDocsPerInstance: DefaultMaxDocsPerInstance,
		},
		Render: RenderConfig{
			DPI:           DefaultDPI,
			EncodeWorkers: runtime.GOMAXPROCS(0),
			Compression:   DefaultCompression,
			Alpha:         false,
			Background:    White,
		},
	}
}

// Validate checks pool configuration bounds.
func (c *PoolConfig) Validate() error {
	if c.PoolSize < 1 {
		return fmt.Errorf("%w: pool size must be at least 1, got %d", ErrInvalidConfig, c.PoolSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be greater than 0, got %s", ErrInvalidConfig, c.Timeout)
	}
	if c.MaxDocsPerInstance < 1 {
		return fmt.Errorf("%w: max docs per instance must be at least 1, got %d", ErrInvalidConfig, c.MaxDocsPerInstance)
	}
	return nil
}

// Validate checks render configuration bounds.
func (c *RenderConfig) Validate() error {
	if c.DPI < MinDPI || c.DPI > MaxDPI {
		return fmt.Errorf("%w: dpi must be between %d and %d, got %d", ErrInvalidConfig, MinDPI, MaxDPI, c.DPI)
	}
	if c.EncodeWorkers < 1 {
		return fmt.Errorf("%w: encode workers must be at least 1, got %d", ErrInvalidConfig, c.EncodeWorkers)
	}
	if c.Compression < 0 {
		return fmt.Errorf("%w: compression must not be negative, got %d", ErrInvalidConfig, c.Compression)
	}
	return nil
}

// Validate checks the entire configuration.
func (c *Config) Validate() error {
	if err := c.Pool.Validate(); err != nil {
		return err
	}
	return c.Render.Validate()
}

// clampedCompression returns the compression level clamped to 0-9.
func (c *RenderConfig) clampedCompression() int {
	if c.Compression > MaxCompression {
		return MaxCompression
	}
	if c.Compression < 0 {
		return 0
	}
	return c.Compression
}

// ResolvePoolSize determines the pool size.
// Priority: explicit value > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs in containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
