package main

import (
	"errors"
	"os"

	office2png "github.com/officepix/go-office2png"
)

// Exit codes for the office2png CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitSoffice = 4 // LibreOffice errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// LibreOffice errors (exit 4)
	if errors.Is(err, office2png.ErrSofficeNotFound) ||
		errors.Is(err, office2png.ErrConversionFailed) ||
		errors.Is(err, office2png.ErrConversionTimeout) ||
		errors.Is(err, office2png.ErrMissingOutput) {
		return ExitSoffice
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, office2png.ErrInputNotFound) ||
		errors.Is(err, office2png.ErrOutputDir) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, office2png.ErrInvalidConfig) ||
		errors.Is(err, office2png.ErrUnsupportedFormat) ||
		errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrConfigParse) ||
		errors.Is(err, ErrNoInput) {
		return ExitUsage
	}

	return ExitGeneral
}
