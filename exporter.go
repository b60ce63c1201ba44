package docpreview

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Abdul-Razack/docpreview/internal/assets"
	"github.com/Abdul-Razack/docpreview/internal/fileutil"
)

var _ Notifier = logNotifier{}

// Exporter owns the pipeline stages and one browser. Create with
// NewExporter, open previews or export directly, and Close when done.
type Exporter struct {
	cfg      exporterConfig
	loader   assets.Loader
	composer *DocumentComposer
	gate     *AssetReadinessGate
	raster   *RasterExportPipeline
	renderer renderer
	notifier Notifier
	sink     ArtifactSink
	log      *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewExporter creates an Exporter. The browser starts lazily on the first
// Open. Returns an error if assets cannot be loaded or an option value is
// invalid.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg: exporterConfig{
			timeout:      defaultTimeout,
			boundary:     A4,
			defaults:     DefaultBudgetDefaults,
			debounce:     DefaultDebounce,
			mountTimeout: DefaultMountTimeout,
			templateSet:  assets.DefaultTemplateSetName,
			style:        assets.DefaultStyleName,
			now:          time.Now,
		},
		log: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.boundary.Validate(); err != nil {
		return nil, err
	}

	resolver, err := assets.NewResolver(e.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	e.loader = resolver

	ts, err := e.loader.LoadTemplateSet(e.cfg.templateSet)
	if err != nil {
		return nil, fmt.Errorf("loading template set: %w", err)
	}
	style, err := e.resolveStyle()
	if err != nil {
		return nil, err
	}

	e.composer, err = NewDocumentComposer(ts, style, e.cfg.boundary, ComposerConfig{
		Lang:   e.cfg.lang,
		Note:   e.cfg.note,
		Now:    e.cfg.now,
		Logger: e.log.Named("composer"),
	})
	if err != nil {
		return nil, err
	}

	rc := e.cfg.raster
	rc.Now = e.cfg.now
	rc.Logger = e.log.Named("raster")
	e.raster, err = NewRasterExportPipeline(e.cfg.boundary, rc)
	if err != nil {
		return nil, err
	}

	e.gate = NewAssetReadinessGate(e.log.Named("gate"))

	if e.notifier == nil {
		e.notifier = logNotifier{log: e.log}
	}
	if e.renderer == nil {
		e.renderer = newRodRenderer(e.cfg.timeout, e.log.Named("browser"))
	}
	return e, nil
}

// resolveStyle loads the style by file path or by name.
func (e *Exporter) resolveStyle() (string, error) {
	input := e.cfg.style
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	}
	css, err := e.loader.LoadStyle(input)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", input, err)
	}
	return css, nil
}

// Boundary returns the page size every stage uses.
func (e *Exporter) Boundary() PageBoundary { return e.cfg.boundary }

// Open plans and composes doc, loads it in the browser and starts height
// observation. The caller must Close the returned Preview.
func (e *Exporter) Open(ctx context.Context, doc Document) (*Preview, error) {
	if e.isClosed() {
		return nil, ErrExporterClosed
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	pages := doc.Pages()

	log := e.log.With(zap.String("kind", doc.Kind))
	tracker := NewHeightBudgetTracker(e.cfg.boundary, e.cfg.defaults, e.cfg.debounce, log.Named("budget"))

	surface, err := e.composer.Compose(ctx, &doc, pages, tracker.Budget())
	if err != nil {
		return nil, err
	}

	root, err := e.renderer.Load(ctx, surface)
	if err != nil {
		return nil, err
	}
	if err := tracker.Open(ctx, root); err != nil {
		return nil, multierr.Append(fmt.Errorf("observing layout: %w", err), root.close())
	}

	log.Debug("preview opened",
		zap.Int("records", len(doc.Records)),
		zap.Int("pages", len(pages)),
		zap.Stringer("policy", doc.EffectivePolicy()))

	return newPreview(e, doc, pages, tracker, root, surface, log), nil
}

// Export opens a preview of doc, exports it once and closes it.
// Recovers from internal panics so they never reach the caller.
func (e *Exporter) Export(ctx context.Context, doc Document) (art *ExportArtifact, err error) {
	return e.oneShot(ctx, doc, (*Preview).Export)
}

// Print is Export through the browser's native print path.
func (e *Exporter) Print(ctx context.Context, doc Document) (art *ExportArtifact, err error) {
	return e.oneShot(ctx, doc, (*Preview).Print)
}

func (e *Exporter) oneShot(ctx context.Context, doc Document, run func(*Preview, context.Context) (*ExportArtifact, error)) (art *ExportArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			art, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	prev, err := e.Open(ctx, doc)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, prev.Close())
	}()

	return run(prev, ctx)
}

// Close shuts the browser down. Open previews stop working.
func (e *Exporter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	return e.renderer.Close()
}

func (e *Exporter) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
