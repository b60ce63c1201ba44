package docpreview

import (
	"errors"
	"fmt"

	"github.com/Abdul-Razack/docpreview/internal/assets"
)

// Sentinel errors for library operations.
var (
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrPDFGeneration   = errors.New("PDF generation failed")
	ErrCaptureFailed   = errors.New("surface capture failed")
	ErrComposeFailed   = errors.New("document composition failed")
	ErrPreviewClosed   = errors.New("preview is closed")
	ErrExporterClosed  = errors.New("exporter is closed")
	ErrArtifactCorrupt = errors.New("assembled artifact failed verification")

	// ErrExportInProgress is returned when an export is requested while another
	// one is still running on the same preview.
	ErrExportInProgress = errors.New("export already in progress")

	// ErrLayoutNotReady is soft: header and footer were not measured in time
	// and the default budget estimate was used instead.
	ErrLayoutNotReady = errors.New("layout not measured yet")

	ErrTrackerOpen = errors.New("height observation already installed")

	// ErrImageLoad marks an image that settled without loading.
	ErrImageLoad = errors.New("image failed to load")

	// Policy validation errors.
	ErrInvalidCapacity  = errors.New("invalid page capacity")
	ErrInvalidThreshold = errors.New("invalid split threshold")

	// Document validation errors.
	ErrEmptyKind         = errors.New("document kind cannot be empty")
	ErrUnknownRecordKind = errors.New("unknown record kind")
	ErrInvalidPageHeight = errors.New("physical page height must be positive")
	ErrInvalidOversample = errors.New("oversampling factor must be between 1 and 4")
	ErrInvalidImageCodec = errors.New("invalid band image encoding")

	// Asset loading errors, shared with the loaders.
	ErrStyleNotFound         = assets.ErrStyleNotFound
	ErrTemplateSetNotFound   = assets.ErrTemplateSetNotFound
	ErrIncompleteTemplateSet = assets.ErrIncompleteTemplateSet
	ErrInvalidAssetPath      = errors.New("invalid asset path")
)

// CaptureError is the hard failure of one export attempt. The export is
// aborted, the in-progress guard is released and the user is told to retry.
type CaptureError struct {
	ExportID string
	Err      error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("%v (export %s): %v", ErrCaptureFailed, e.ExportID, e.Err)
}

func (e *CaptureError) Unwrap() []error {
	return []error{ErrCaptureFailed, e.Err}
}

// Retry returns the single actionable message shown to the user.
func (e *CaptureError) Retry() string {
	return "Export failed while capturing the document. Please retry the export."
}
