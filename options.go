package docpreview

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds the settings options write before NewExporter
// builds the pipeline stages.
type exporterConfig struct {
	timeout      time.Duration
	boundary     PageBoundary
	raster       RasterConfig
	defaults     BudgetDefaults
	debounce     time.Duration
	mountTimeout time.Duration
	templateSet  string
	assetPath    string
	style        string
	lang         string
	note         string
	now          func() time.Time
}

// defaultTimeout bounds one-shot exports when the context has no deadline.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the browser operation timeout.
// Panics if d <= 0.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docpreview: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// WithBoundary sets the physical page size. Default A4.
func WithBoundary(b PageBoundary) Option {
	return func(e *Exporter) {
		e.cfg.boundary = b
	}
}

// WithOversampling sets the capture scale factor (1 to 4). Default 2.
func WithOversampling(n int) Option {
	return func(e *Exporter) {
		e.cfg.raster.Oversampling = n
	}
}

// WithLegacyTrailingBand restores the extra blank page emitted when the
// surface height is an exact multiple of the page height.
func WithLegacyTrailingBand(on bool) Option {
	return func(e *Exporter) {
		e.cfg.raster.LegacyTrailingBand = on
	}
}

// WithBandEncoding selects PNG or JPEG for the embedded bitmap.
// quality is used for JPEG only; 0 keeps the default.
func WithBandEncoding(enc BandEncoding, quality int) Option {
	return func(e *Exporter) {
		e.cfg.raster.Encoding = enc
		e.cfg.raster.JPEGQuality = quality
	}
}

// WithBudgetDefaults sets the header, footer and margin estimates used
// until the real blocks are measured.
func WithBudgetDefaults(d BudgetDefaults) Option {
	return func(e *Exporter) {
		e.cfg.defaults = d
	}
}

func WithDebounce(d time.Duration) Option {
	return func(e *Exporter) {
		e.cfg.debounce = d
	}
}

// WithMountTimeout bounds how long an export waits for the first
// measurement before falling back to the default budget.
func WithMountTimeout(d time.Duration) Option {
	return func(e *Exporter) {
		e.cfg.mountTimeout = d
	}
}

// WithTemplateSet selects a template set by name. Default "default".
func WithTemplateSet(name string) Option {
	return func(e *Exporter) {
		e.cfg.templateSet = name
	}
}

// WithAssetPath adds a directory searched for template sets and styles
// before the embedded ones.
func WithAssetPath(path string) Option {
	return func(e *Exporter) {
		e.cfg.assetPath = path
	}
}

// WithStyle selects a style by name or by CSS file path.
func WithStyle(nameOrPath string) Option {
	return func(e *Exporter) {
		e.cfg.style = nameOrPath
	}
}

// WithLang sets the document language attribute.
func WithLang(lang string) Option {
	return func(e *Exporter) {
		e.cfg.lang = lang
	}
}

// WithNote sets the footer note for documents without one.
func WithNote(note string) Option {
	return func(e *Exporter) {
		e.cfg.note = note
	}
}

// WithNotifier sets who is told about failed exports. The default logs.
func WithNotifier(n Notifier) Option {
	return func(e *Exporter) {
		e.notifier = n
	}
}

// WithSink stores every successful artifact, e.g. NewDirSink("exports").
func WithSink(s ArtifactSink) Option {
	return func(e *Exporter) {
		e.sink = s
	}
}

// WithClock sets the time source for filenames and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.cfg.now = now
	}
}

// withRenderer replaces the browser backend.
func withRenderer(r renderer) Option {
	return func(e *Exporter) {
		e.renderer = r
	}
}
