package office2png

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// SupportedExtensions lists the Office file extensions accepted by the
// pool, without leading dots.
var SupportedExtensions = []string{"docx", "doc", "xlsx", "xls"}

// IsSupportedExtension reports whether ext (with or without a leading
// dot) is a supported Office format. Comparison is case-insensitive.
func IsSupportedExtension(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	for _, e := range SupportedExtensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// ConversionRequest describes a single document conversion.
type ConversionRequest struct {
	// InputPath is the Office document to convert.
	InputPath string

	// OutputDir receives the rendered PNG pages.
	OutputDir string

	// Prefix overrides the output filename prefix. Empty means the
	// input filename without extension.
	Prefix string

	// DPIOverride overrides the configured DPI for this request only.
	// Zero means use the pipeline DPI.
	DPIOverride int
}

// OutputPrefix returns the output filename prefix, defaulting to the
// input filename without its extension.
func (r *ConversionRequest) OutputPrefix() string {
	if r.Prefix != "" {
		return r.Prefix
	}
	base := filepath.Base(r.InputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		return "output"
	}
	return stem
}

// Page is one rendered, encoded page of a document.
type Page struct {
	// PageNumber is 1-indexed.
	PageNumber int

	// Data holds the encoded PNG bytes.
	Data []byte

	// Width and Height are pixel dimensions.
	Width  int
	Height int

	// OutputPath is where the page was written, if saved to disk.
	OutputPath string
}

// FileResult records one successful conversion.
type FileResult struct {
	InputPath   string
	OutputPaths []string
	PageCount   int
	Duration    time.Duration
}

// FailedFile records one failed conversion within a batch.
type FailedFile struct {
	InputPath string
	Error     string
}

// BatchResult aggregates a batch conversion. For every batch call,
// len(Successful)+len(Failed) equals the number of requests.
type BatchResult struct {
	Successful    []FileResult
	Failed        []FailedFile
	TotalDuration time.Duration
	TotalPages    int
}

// Stage identifies the current step of a conversion.
type Stage int

// Conversion stages. Completed and Failed are terminal.
const (
	StageQueued Stage = iota
	StageConvertingToPDF
	StageRenderingPages
	StageEncodingImages
	StageCompleted
	StageFailed
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageConvertingToPDF:
		return "converting"
	case StageRenderingPages:
		return "rendering"
	case StageEncodingImages:
		return "encoding"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the stage is a terminal state.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// ConversionProgress is a push-based progress snapshot. TotalPages is
// zero until rasterization starts and the page count is known.
type ConversionProgress struct {
	FileIndex      int
	TotalFiles     int
	CurrentFile    string
	PagesCompleted int
	TotalPages     int
	Stage          Stage
}

// ProgressFunc receives progress snapshots. It is invoked synchronously
// from the conversion goroutine and must not block significantly.
type ProgressFunc func(ConversionProgress)

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used by the converter, its pool, and its
// renderer.
func WithLogger(logger *logrus.Logger) Option {
	if logger == nil {
		panic("office2png: WithLogger logger must not be nil")
	}
	return func(c *Converter) {
		c.logger = logger
	}
}

// defaultLogger returns the library's quiet-by-default logger.
func defaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}
