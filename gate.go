package docpreview

import (
	"context"
	"errors"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Image is one image element in a rendered surface.
type Image interface {
	Source() string
	// Settle blocks until the image has loaded (nil) or failed (error).
	Settle(ctx context.Context) error
}

// ImageSource enumerates the images of a rendered surface.
type ImageSource interface {
	Images(ctx context.Context) ([]Image, error)
}

// AssetReport summarizes one readiness wait.
type AssetReport struct {
	Total         int
	Failed        int
	FailedSources []string
}

// AssetReadinessGate waits until every image of a surface has settled.
// An image that fails to load is reported, never fatal: the export goes on
// with the browser's broken-image placeholder.
type AssetReadinessGate struct {
	log *zap.Logger
}

func NewAssetReadinessGate(logger *zap.Logger) *AssetReadinessGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetReadinessGate{log: logger}
}

// Ready settles every image of src concurrently. It returns an error only
// if enumeration fails or ctx is done. Calling it again on a settled source
// returns at once with the same report.
func (g *AssetReadinessGate) Ready(ctx context.Context, src ImageSource) (AssetReport, error) {
	images, err := src.Images(ctx)
	if err != nil {
		return AssetReport{}, err
	}
	report := AssetReport{Total: len(images)}
	if len(images) == 0 {
		return report, nil
	}

	errs := make([]error, len(images))
	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = img.Settle(ctx)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return AssetReport{}, err
	}

	for i, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return AssetReport{}, err
		}
		report.Failed++
		report.FailedSources = append(report.FailedSources, truncateSource(images[i].Source()))
		g.log.Warn("image failed to load", zap.String("src", truncateSource(images[i].Source())), zap.Error(err))
	}
	return report, nil
}

// ReadyRoot is a render root whose images have all settled. Only the gate
// creates one, and capture takes nothing else, so a capture can never start
// before the wait.
type ReadyRoot struct {
	root    renderRoot
	surface *CaptureSurface
	report  AssetReport
}

func (r *ReadyRoot) Report() AssetReport       { return r.report }
func (r *ReadyRoot) Surface() *CaptureSurface { return r.surface }

func (g *AssetReadinessGate) await(ctx context.Context, root renderRoot, surface *CaptureSurface) (*ReadyRoot, error) {
	report, err := g.Ready(ctx, root)
	if err != nil {
		return nil, err
	}
	if surface != nil && report.Total != surface.ImageCount {
		g.log.Debug("image count differs from composed surface",
			zap.Int("rendered", report.Total), zap.Int("composed", surface.ImageCount))
	}
	return &ReadyRoot{root: root, surface: surface, report: report}, nil
}

// truncateSource keeps data URIs out of logs.
func truncateSource(src string) string {
	const maxLen = 80
	if len(src) <= maxLen {
		return src
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(src[cut]) {
		cut--
	}
	return src[:cut] + "..."
}
