package main

import (
	"errors"
	"os"

	"github.com/Abdul-Razack/docpreview"
	"github.com/Abdul-Razack/docpreview/internal/config"
	"github.com/Abdul-Razack/docpreview/internal/dateutil"
)

// Exit codes for the docpreview CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every document exported
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, input document or assets
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser, render or capture failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, docpreview.ErrBrowserConnect) ||
		errors.Is(err, docpreview.ErrPageCreate) ||
		errors.Is(err, docpreview.ErrPageLoad) ||
		errors.Is(err, docpreview.ErrPDFGeneration) ||
		errors.Is(err, docpreview.ErrCaptureFailed) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteArtifact) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoDocuments) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, docpreview.ErrEmptyKind) ||
		errors.Is(err, docpreview.ErrUnknownRecordKind) ||
		errors.Is(err, docpreview.ErrInvalidCapacity) ||
		errors.Is(err, docpreview.ErrInvalidThreshold) ||
		errors.Is(err, docpreview.ErrInvalidPageHeight) ||
		errors.Is(err, docpreview.ErrInvalidOversample) ||
		errors.Is(err, docpreview.ErrInvalidImageCodec) ||
		errors.Is(err, docpreview.ErrStyleNotFound) ||
		errors.Is(err, docpreview.ErrTemplateSetNotFound) ||
		errors.Is(err, docpreview.ErrIncompleteTemplateSet) ||
		errors.Is(err, docpreview.ErrInvalidAssetPath) ||
		errors.Is(err, ErrParseInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}
