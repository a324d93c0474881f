package office2png

import "errors"

// Sentinel errors for library operations.
var (
	// Tool and pool lifecycle errors.
	ErrSofficeNotFound = errors.New("soffice not found: install LibreOffice or set PoolConfig.SofficePath")
	ErrPoolShutdown    = errors.New("worker pool has been shut down")
	ErrPoolExhausted   = errors.New("worker pool exhausted")

	// Input validation errors. These fail fast and consume no admission slot.
	ErrInputNotFound     = errors.New("input file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// Per-job conversion errors.
	ErrConversionFailed  = errors.New("document conversion failed")
	ErrConversionTimeout = errors.New("document conversion timed out")
	ErrMissingOutput     = errors.New("conversion produced no PDF output")

	// Rendering and encoding errors.
	ErrRenderFailed = errors.New("PDF rendering failed")
	ErrEncodeFailed = errors.New("PNG encoding failed")

	// I/O errors.
	ErrOutputDir = errors.New("output directory error")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Streaming errors.
	ErrIteratorClosed = errors.New("page iterator is closed")
)
