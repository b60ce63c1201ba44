package docpreview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Preview is an open document: planned, composed and loaded in the
// browser, with header and footer heights under observation. One export
// runs at a time; a concurrent call fails fast with ErrExportInProgress.
type Preview struct {
	exp     *Exporter
	doc     Document
	pages   []Page
	tracker *HeightBudgetTracker
	root    renderRoot
	log     *zap.Logger

	unsubscribe func()
	stale       atomic.Bool // budget changed since the surface was composed
	busy        atomic.Bool
	closed      atomic.Bool

	// running is held for the whole export so Close can wait for it.
	running sync.Mutex

	mu      sync.Mutex
	surface *CaptureSurface
}

func newPreview(e *Exporter, doc Document, pages []Page, tracker *HeightBudgetTracker, root renderRoot, surface *CaptureSurface, log *zap.Logger) *Preview {
	p := &Preview{
		exp:     e,
		doc:     doc,
		pages:   pages,
		tracker: tracker,
		root:    root,
		surface: surface,
		log:     log,
	}
	p.unsubscribe = tracker.Subscribe(func(HeightBudget) {
		p.stale.Store(true)
	})
	return p
}

// Pages returns the page plan.
func (p *Preview) Pages() []Page { return p.pages }

// Budget returns the current height budget.
func (p *Preview) Budget() HeightBudget { return p.tracker.Budget() }

// Surface returns the surface currently loaded in the browser.
func (p *Preview) Surface() *CaptureSurface {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surface
}

// Export captures the preview and assembles a raster PDF. A configured
// ArtifactSink stores it; if saving fails the artifact is still returned
// along with the error.
func (p *Preview) Export(ctx context.Context) (*ExportArtifact, error) {
	return p.run(ctx, ModeRaster, func(ctx context.Context, ready *ReadyRoot) (*ExportArtifact, error) {
		return p.exp.raster.Export(ctx, ready, p.doc.Kind)
	})
}

// Print renders the preview through the browser's print-to-PDF. It shares
// planning and composition with Export but not the raster pipeline.
func (p *Preview) Print(ctx context.Context) (*ExportArtifact, error) {
	return p.run(ctx, ModePrint, p.print)
}

func (p *Preview) run(ctx context.Context, mode ExportMode, export func(context.Context, *ReadyRoot) (*ExportArtifact, error)) (*ExportArtifact, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer p.busy.Store(false)

	p.running.Lock()
	defer p.running.Unlock()
	if p.closed.Load() {
		return nil, ErrPreviewClosed
	}

	ready, err := p.prepare(ctx)
	if err != nil {
		return nil, p.fail(&CaptureError{ExportID: uuid.NewString(), Err: err})
	}

	art, err := export(ctx, ready)
	if err != nil {
		return nil, p.fail(err)
	}

	p.log.Info("export complete",
		zap.String("export_id", art.ExportID),
		zap.String("mode", string(mode)),
		zap.String("filename", art.Filename),
		zap.Int("pages", art.PageCount),
		zap.Int("warnings", art.Warnings))
	if art.Warnings > 0 {
		p.log.Warn("some images failed to load",
			zap.Int("failed", art.Warnings), zap.Strings("sources", art.FailedAssets))
	}

	if p.exp.sink != nil {
		if _, err := p.exp.sink.Save(ctx, art); err != nil {
			return art, err
		}
	}
	return art, nil
}

// prepare waits for the layout, recomposes if the budget moved and runs
// the readiness gate. Missing measurements are not fatal.
func (p *Preview) prepare(ctx context.Context) (*ReadyRoot, error) {
	budget, err := p.tracker.WaitMeasured(ctx, p.exp.cfg.mountTimeout)
	switch {
	case errors.Is(err, ErrLayoutNotReady):
		p.log.Warn("header and footer not measured, using default budget",
			zap.Float64("header_px", budget.HeaderHeightPx),
			zap.Float64("footer_px", budget.FooterHeightPx))
	case err != nil:
		return nil, err
	}

	surface := p.Surface()
	if p.stale.Swap(false) || !sameLayout(budget, surface.Budget) {
		next, err := p.exp.composer.Compose(ctx, &p.doc, p.pages, budget)
		if err != nil {
			return nil, err
		}
		if err := p.root.reload(ctx, next); err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.surface = next
		p.mu.Unlock()
		surface = next
		p.log.Debug("surface recomposed",
			zap.Float64("content_first_px", budget.ContentHeight(true)),
			zap.Float64("content_px", budget.ContentHeight(false)))
	}

	return p.exp.gate.await(ctx, p.root, surface)
}

func (p *Preview) print(ctx context.Context, ready *ReadyRoot) (*ExportArtifact, error) {
	id := uuid.NewString()

	data, err := ready.root.printPDF(ctx, p.exp.cfg.boundary)
	if err != nil {
		return nil, &CaptureError{ExportID: id, Err: err}
	}
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, &CaptureError{ExportID: id, Err: fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)}
	}
	if surface := ready.Surface(); surface != nil && n != surface.PageCount {
		p.log.Warn("printed page count differs from planned pages",
			zap.Int("printed", n), zap.Int("planned", surface.PageCount))
	}

	now := p.exp.cfg.now()
	report := ready.Report()
	return &ExportArtifact{
		ExportID:     id,
		Mode:         ModePrint,
		Filename:     ArtifactFilename(p.doc.Kind, now),
		Data:         data,
		PageCount:    n,
		Warnings:     report.Failed,
		FailedAssets: report.FailedSources,
		CreatedAt:    now,
	}, nil
}

// fail notifies once for a hard failure. Cancellation by the caller is not
// reported.
func (p *Preview) fail(err error) error {
	var ce *CaptureError
	if !errors.As(err, &ce) || errors.Is(err, context.Canceled) {
		return err
	}
	p.exp.notifier.Notify(Failure{
		ExportID: ce.ExportID,
		Kind:     p.doc.Kind,
		Message:  ce.Retry(),
		Err:      ce.Err,
	})
	return err
}

// Close stops observation at once, waits for a running export to finish
// and unloads the surface. Safe to call more than once.
func (p *Preview) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.unsubscribe()
	err := p.tracker.Close()

	p.running.Lock()
	defer p.running.Unlock()
	return multierr.Append(err, p.root.close())
}

// sameLayout reports whether two budgets give the same content heights.
func sameLayout(a, b HeightBudget) bool {
	return a.ContentHeight(true) == b.ContentHeight(true) &&
		a.ContentHeight(false) == b.ContentHeight(false)
}
