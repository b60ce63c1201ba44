package docpreview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HeightBudget is the vertical space available for records on a page.
type HeightBudget struct {
	HeaderHeightPx       float64
	FooterHeightPx       float64
	PhysicalPageHeightPx float64
	FirstPageMarginPx    float64 // title block and padding on page one
	PageMarginPx         float64 // content padding on other pages
	Measured             bool    // false while running on the default estimate
}

// FixedMarginPx returns the non-record space reserved on a page besides
// header and footer.
func (b HeightBudget) FixedMarginPx(isFirst bool) float64 {
	if isFirst {
		return b.FirstPageMarginPx
	}
	return b.PageMarginPx
}

// ContentHeight is the minimum height of a page's record area. Never negative.
func (b HeightBudget) ContentHeight(isFirst bool) float64 {
	h := b.PhysicalPageHeightPx - b.HeaderHeightPx - b.FooterHeightPx - b.FixedMarginPx(isFirst)
	if h < 0 {
		return 0
	}
	return h
}

// BudgetDefaults are used until header and footer are measured.
type BudgetDefaults struct {
	HeaderPx          float64
	FooterPx          float64
	FirstPageMarginPx float64
	PageMarginPx      float64
}

// DefaultBudgetDefaults match the built-in template set.
var DefaultBudgetDefaults = BudgetDefaults{
	HeaderPx:          120,
	FooterPx:          60,
	FirstPageMarginPx: 96,
	PageMarginPx:      32,
}

// BlockSizes is one measurement of the rendered header and footer.
type BlockSizes struct {
	HeaderPx float64
	FooterPx float64
}

// ObservationTarget reports header and footer sizes as they change.
// ObserveBlocks must keep calling report until release is called.
type ObservationTarget interface {
	ObserveBlocks(ctx context.Context, report func(BlockSizes)) (release func() error, err error)
}

// Debounce and mount defaults.
const (
	DefaultDebounce     = 300 * time.Millisecond
	DefaultMountTimeout = 2 * time.Second
)

// HeightBudgetTracker follows header and footer sizes and publishes a new
// HeightBudget once they have been stable for the debounce window. Until the
// first measurement lands it serves the default estimate.
//
// The tracker holds observation only between Open and Close; Close is safe
// to call on any path and more than once.
type HeightBudgetTracker struct {
	boundary PageBoundary
	defaults BudgetDefaults
	debounce time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	open     bool
	gen      uint64 // bumped on Open and Close; stale timers compare against it
	budget   HeightBudget
	pending  BlockSizes
	timer    *time.Timer
	release  func() error
	measured chan struct{}
	subs     map[int]func(HeightBudget)
	nextSub  int
}

// NewHeightBudgetTracker returns a closed tracker serving the default estimate.
func NewHeightBudgetTracker(boundary PageBoundary, defaults BudgetDefaults, debounce time.Duration, logger *zap.Logger) *HeightBudgetTracker {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &HeightBudgetTracker{
		boundary: boundary,
		defaults: defaults,
		debounce: debounce,
		log:      logger,
		measured: make(chan struct{}),
		subs:     make(map[int]func(HeightBudget)),
	}
	t.budget = t.fallback()
	return t
}

func (t *HeightBudgetTracker) fallback() HeightBudget {
	return t.fromSizes(BlockSizes{HeaderPx: t.defaults.HeaderPx, FooterPx: t.defaults.FooterPx})
}

func (t *HeightBudgetTracker) fromSizes(s BlockSizes) HeightBudget {
	return HeightBudget{
		HeaderHeightPx:       s.HeaderPx,
		FooterHeightPx:       s.FooterPx,
		PhysicalPageHeightPx: float64(t.boundary.HeightPx),
		FirstPageMarginPx:    t.defaults.FirstPageMarginPx,
		PageMarginPx:         t.defaults.PageMarginPx,
	}
}

// Open installs observation on target. Each Open starts a fresh cycle on
// the default estimate.
func (t *HeightBudgetTracker) Open(ctx context.Context, target ObservationTarget) error {
	t.mu.Lock()
	if t.open {
		t.mu.Unlock()
		return ErrTrackerOpen
	}
	t.open = true
	t.gen++
	gen := t.gen
	t.budget = t.fallback()
	t.measured = make(chan struct{})
	t.mu.Unlock()

	release, err := target.ObserveBlocks(ctx, t.Observe)
	if err != nil {
		t.mu.Lock()
		if t.gen == gen {
			t.open = false
		}
		t.mu.Unlock()
		return fmt.Errorf("installing height observation: %w", err)
	}

	t.mu.Lock()
	if !t.open || t.gen != gen {
		// Closed while installing.
		t.mu.Unlock()
		return release()
	}
	t.release = release
	t.mu.Unlock()
	return nil
}

// Observe records a measurement and restarts the debounce window.
// Measurements outside an Open/Close cycle are dropped.
func (t *HeightBudgetTracker) Observe(sizes BlockSizes) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return
	}
	t.pending = sizes
	if t.timer != nil {
		t.timer.Stop()
	}
	gen := t.gen
	t.timer = time.AfterFunc(t.debounce, func() { t.flush(gen) })
}

func (t *HeightBudgetTracker) flush(gen uint64) {
	t.mu.Lock()
	if !t.open || gen != t.gen {
		t.mu.Unlock()
		return
	}

	next := t.fromSizes(t.pending)
	next.Measured = true
	changed := next != t.budget
	t.budget = next

	select {
	case <-t.measured:
	default:
		close(t.measured)
	}

	var subs []func(HeightBudget)
	if changed {
		subs = make([]func(HeightBudget), 0, len(t.subs))
		for _, fn := range t.subs {
			subs = append(subs, fn)
		}
	}
	t.mu.Unlock()

	if changed {
		t.log.Debug("height budget updated",
			zap.Float64("header_px", next.HeaderHeightPx),
			zap.Float64("footer_px", next.FooterHeightPx),
			zap.Float64("content_first_px", next.ContentHeight(true)),
			zap.Float64("content_px", next.ContentHeight(false)),
		)
	}
	for _, fn := range subs {
		fn(next)
	}
}

// Budget returns the current budget.
func (t *HeightBudgetTracker) Budget() HeightBudget {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.budget
}

// WaitMeasured blocks until the first measurement of this cycle is
// published or timeout passes. On timeout it returns the default estimate
// with ErrLayoutNotReady, which callers treat as a warning.
func (t *HeightBudgetTracker) WaitMeasured(ctx context.Context, timeout time.Duration) (HeightBudget, error) {
	t.mu.Lock()
	open, measured := t.open, t.measured
	t.mu.Unlock()

	if !open {
		return t.Budget(), ErrLayoutNotReady
	}
	if timeout <= 0 {
		timeout = DefaultMountTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-measured:
		return t.Budget(), nil
	case <-timer.C:
		return t.Budget(), ErrLayoutNotReady
	case <-ctx.Done():
		return HeightBudget{}, ctx.Err()
	}
}

// Subscribe registers fn for budget changes. fn runs on the timer goroutine
// and must not block. Call the returned func to unsubscribe.
func (t *HeightBudgetTracker) Subscribe(fn func(HeightBudget)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Observing reports whether observation is installed.
func (t *HeightBudgetTracker) Observing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// Close releases observation and drops subscribers.
func (t *HeightBudgetTracker) Close() error {
	t.mu.Lock()
	if !t.open {
		t.mu.Unlock()
		return nil
	}
	t.open = false
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	release := t.release
	t.release = nil
	clear(t.subs)
	t.mu.Unlock()

	if release == nil {
		return nil
	}
	return release()
}
