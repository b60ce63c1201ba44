package docpreview

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Abdul-Razack/docpreview/internal/fileutil"
	"github.com/Abdul-Razack/docpreview/internal/process"
)

// renderer loads composed surfaces into a browser.
type renderer interface {
	Load(ctx context.Context, surface *CaptureSurface) (renderRoot, error)
	Close() error
}

// renderRoot is one loaded surface. Capture and print are unexported so
// only this package can drive them, and only through a ReadyRoot.
type renderRoot interface {
	ImageSource
	ObservationTarget
	reload(ctx context.Context, surface *CaptureSurface) error
	capture(ctx context.Context, req captureRequest) ([]byte, error)
	printPDF(ctx context.Context, boundary PageBoundary) ([]byte, error)
	close() error
}

// captureRequest describes a full-surface screenshot in CSS px.
type captureRequest struct {
	WidthPx  int
	HeightPx int
	Scale    float64
}

var (
	_ renderer   = (*rodRenderer)(nil)
	_ renderRoot = (*rodRoot)(nil)
)

// blockBinding is the page function the surface script calls with
// header and footer sizes.
const blockBinding = "docpreviewBlocks"

const (
	measureJS = `() => { if (window.docpreviewMeasure) { window.docpreviewMeasure(); } }`
	releaseJS = `() => { if (window.docpreviewRelease) { window.docpreviewRelease(); } }`
	heightJS  = `() => document.documentElement.scrollHeight`

	// settleJS resolves true once the image has loaded and false if it
	// failed. complete is also true for broken images, hence naturalWidth.
	settleJS = `() => new Promise((resolve) => {
		if (this.complete) { resolve(this.naturalWidth > 0); return; }
		this.addEventListener('load', () => resolve(true), { once: true });
		this.addEventListener('error', () => resolve(false), { once: true });
	})`
)

// rodRenderer drives headless Chrome through go-rod. The browser is
// launched on first use; rod downloads Chromium if none is found.
type rodRenderer struct {
	timeout time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func newRodRenderer(timeout time.Duration, logger *zap.Logger) *rodRenderer {
	return &rodRenderer{timeout: timeout, log: logger}
}

func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}
	// Sandboxing is unavailable in most CI runners and containers.
	if bin != "" || os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.log.Debug("browser launched", zap.Int("pid", l.PID()))
	r.browser, r.launcher = b, l
	return b, nil
}

func (r *rodRenderer) Load(ctx context.Context, surface *CaptureSurface) (renderRoot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	root := &rodRoot{page: page, timeout: r.timeout}
	if err := root.reload(ctx, surface); err != nil {
		_ = root.close()
		return nil, err
	}
	return root, nil
}

// Close shuts the browser down and kills its process group so renderer
// helpers do not linger.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	b, l := r.browser, r.launcher
	r.browser, r.launcher = nil, nil
	r.mu.Unlock()

	var err error
	if b != nil {
		err = b.Close()
	}
	if l != nil {
		if pid := l.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		l.Kill()
		l.Cleanup()
	}
	return err
}

// rodRoot is one browser tab holding a composed surface.
type rodRoot struct {
	page    *rod.Page
	timeout time.Duration

	mu      sync.Mutex
	cleanup func() // removes the current temp file
}

// effectiveTimeout prefers the context deadline over the configured timeout.
func (r *rodRoot) effectiveTimeout(ctx context.Context) (time.Duration, error) {
	if deadline, ok := ctx.Deadline(); ok {
		d := time.Until(deadline)
		if d <= 0 {
			return 0, context.DeadlineExceeded
		}
		return d, nil
	}
	return r.timeout, nil
}

// reload navigates the tab to a fresh copy of surface. The viewport is one
// page tall so ResizeObserver sees the same layout as the capture.
func (r *rodRoot) reload(ctx context.Context, surface *CaptureSurface) error {
	timeout, err := r.effectiveTimeout(ctx)
	if err != nil {
		return err
	}

	path, cleanup, err := fileutil.WriteTempFile(surface.HTML, "html")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	err = r.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             surface.WidthPx,
		Height:            surface.Boundary.HeightPx,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		cleanup()
		return fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}

	p := r.page.Context(ctx).Timeout(timeout)
	if err := p.Navigate("file://" + path); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	r.mu.Lock()
	prev := r.cleanup
	r.cleanup = cleanup
	r.mu.Unlock()
	if prev != nil {
		prev()
	}
	return nil
}

func (r *rodRoot) Images(ctx context.Context) ([]Image, error) {
	els, err := r.page.Context(ctx).Elements("img")
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	images := make([]Image, len(els))
	for i, el := range els {
		src := ""
		if attr, err := el.Attribute("src"); err == nil && attr != nil {
			src = *attr
		}
		images[i] = &rodImage{el: el, src: src}
	}
	return images, nil
}

// ObserveBlocks exposes the measurement binding and asks the page for a
// first report, since the surface script ran before the binding existed.
// The binding is re-registered on every navigation until released.
func (r *rodRoot) ObserveBlocks(ctx context.Context, report func(BlockSizes)) (func() error, error) {
	stop, err := r.page.Expose(blockBinding, func(j gson.JSON) (interface{}, error) {
		report(BlockSizes{
			HeaderPx: j.Get("header").Num(),
			FooterPx: j.Get("footer").Num(),
		})
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := r.page.Context(ctx).Eval(measureJS); err != nil {
		return nil, multierr.Append(err, stop())
	}

	return func() error {
		_, evalErr := r.page.Eval(releaseJS)
		return multierr.Append(evalErr, stop())
	}, nil
}

// capture screenshots the whole document beyond the viewport. The clip
// height is the rendered document height, not the composed one, so any
// drift shows up as an extra or missing band instead of being hidden.
func (r *rodRoot) capture(ctx context.Context, req captureRequest) ([]byte, error) {
	p := r.page.Context(ctx)

	height := req.HeightPx
	if obj, err := p.Eval(heightJS); err == nil {
		if h := obj.Value.Int(); h > 0 {
			height = h
		}
	}
	if height <= 0 {
		return nil, nil
	}

	return p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  float64(req.WidthPx),
			Height: float64(height),
			Scale:  req.Scale,
		},
		CaptureBeyondViewport: true,
		FromSurface:           true,
	})
}

// printPDF uses Chrome's own print pipeline. Page size comes from the
// surface's @page rule; margins are part of the page layout.
func (r *rodRoot) printPDF(ctx context.Context, boundary PageBoundary) ([]byte, error) {
	stream, err := r.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PaperWidth:        floatPtr(boundary.WidthInches()),
		PaperHeight:       floatPtr(boundary.HeightInches()),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

func (r *rodRoot) close() error {
	r.mu.Lock()
	cleanup := r.cleanup
	r.cleanup = nil
	r.mu.Unlock()
	if cleanup != nil {
		cleanup()
	}
	return r.page.Close()
}

type rodImage struct {
	el  *rod.Element
	src string
}

func (i *rodImage) Source() string { return i.src }

func (i *rodImage) Settle(ctx context.Context) error {
	obj, err := i.el.Context(ctx).Eval(settleJS)
	if err != nil {
		return err
	}
	if !obj.Value.Bool() {
		return ErrImageLoad
	}
	return nil
}

func floatPtr(v float64) *float64 {
	return &v
}
