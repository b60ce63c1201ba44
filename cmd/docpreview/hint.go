package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Abdul-Razack/docpreview"
	"github.com/Abdul-Razack/docpreview/internal/assets"
	"github.com/Abdul-Razack/docpreview/internal/config"
	"github.com/Abdul-Razack/docpreview/internal/hints"
)

// printError writes err followed by an actionable hint when one applies.
func printError(w io.Writer, err error) {
	var be *batchError
	if errors.As(err, &be) {
		// Each failure was already reported with its hint.
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err))
}

// hintFor returns the hint matching err, or "".
func hintFor(err error) string {
	var (
		notFound *config.ConfigNotFoundError
		capture  *docpreview.CaptureError
	)
	switch {
	case errors.As(err, &notFound):
		return hints.ForConfigNotFound(notFound.Tried)
	case errors.Is(err, docpreview.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, docpreview.ErrTemplateSetNotFound):
		return hints.ForTemplateSetNotFound(assets.NewEmbeddedLoader().TemplateSets())
	case errors.Is(err, ErrWriteArtifact):
		return hints.ForOutputDirectory()
	case errors.As(err, &capture):
		return "\n  " + capture.Retry() + hints.ForCaptureFailure()
	case errors.Is(err, docpreview.ErrLayoutNotReady):
		return hints.ForLayoutNotReady()
	}
	return ""
}
