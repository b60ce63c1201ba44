package docpreview

import (
	"bytes"
	"context"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

// ---------------------------------------------------------------------------
// Fake images
// ---------------------------------------------------------------------------

type fakeImage struct {
	src     string
	err     error
	delay   time.Duration
	settled atomic.Int32
}

func (f *fakeImage) Source() string { return f.src }

func (f *fakeImage) Settle(ctx context.Context) error {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delay):
		}
	}
	f.settled.Add(1)
	return f.err
}

type fakeImageSource struct {
	images []Image
	err    error
}

func (f *fakeImageSource) Images(context.Context) ([]Image, error) {
	return f.images, f.err
}

// ---------------------------------------------------------------------------
// Fake render root and renderer
// ---------------------------------------------------------------------------

type fakeRoot struct {
	mockTarget

	mu         sync.Mutex
	images     []Image
	imagesErr  error
	bitmap     []byte
	captureErr error
	pdf        []byte
	printErr   error

	// block, when set, is waited on inside capture.
	block chan struct{}
	// entered is closed when capture starts.
	entered chan struct{}

	events    []string // "images" and "capture" in call order
	captures  []captureRequest
	surfaces  []*CaptureSurface
	prints    int
	reloads   int
	closed    int
	gatedOnce bool
}

func (f *fakeRoot) Images(context.Context) ([]Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gatedOnce = true
	f.events = append(f.events, "images")
	return f.images, f.imagesErr
}

func (f *fakeRoot) reload(_ context.Context, surface *CaptureSurface) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	f.surfaces = append(f.surfaces, surface)
	return nil
}

func (f *fakeRoot) capture(ctx context.Context, req captureRequest) ([]byte, error) {
	f.mu.Lock()
	f.captures = append(f.captures, req)
	f.events = append(f.events, "capture")
	block, entered := f.block, f.entered
	f.entered = nil
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return f.bitmap, nil
}

func (f *fakeRoot) printPDF(context.Context, PageBoundary) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prints++
	return f.pdf, f.printErr
}

func (f *fakeRoot) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeRoot) captureCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.captures)
}

func (f *fakeRoot) setCaptureErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captureErr = err
}

func (f *fakeRoot) reloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reloads
}

func (f *fakeRoot) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeRenderer struct {
	mu      sync.Mutex
	newRoot func(*CaptureSurface) *fakeRoot
	loadErr error
	roots   []*fakeRoot
	closed  int
}

func (f *fakeRenderer) Load(_ context.Context, surface *CaptureSurface) (renderRoot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	var root *fakeRoot
	if f.newRoot != nil {
		root = f.newRoot(surface)
	} else {
		root = &fakeRoot{}
	}
	root.surfaces = append(root.surfaces, surface)
	f.roots = append(f.roots, root)
	return root, nil
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeRenderer) lastRoot() *fakeRoot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.roots) == 0 {
		return nil
	}
	return f.roots[len(f.roots)-1]
}

// ---------------------------------------------------------------------------
// Bitmap helpers
// ---------------------------------------------------------------------------

// solidPNG encodes a w x h opaque PNG.
func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encoding test bitmap: %v", err)
	}
	return buf.Bytes()
}
