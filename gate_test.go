package docpreview

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// TestAssetReadinessGate_Ready
// ---------------------------------------------------------------------------

func TestAssetReadinessGate_Ready(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		images     []Image
		wantTotal  int
		wantFailed int
	}{
		{
			name:      "no images resolves immediately",
			images:    nil,
			wantTotal: 0,
		},
		{
			name: "all images load",
			images: []Image{
				&fakeImage{src: "a.png"},
				&fakeImage{src: "b.png", delay: 10 * time.Millisecond},
			},
			wantTotal: 2,
		},
		{
			name: "failure unblocks like success",
			images: []Image{
				&fakeImage{src: "ok.png"},
				&fakeImage{src: "missing.png", err: ErrImageLoad},
			},
			wantTotal:  2,
			wantFailed: 1,
		},
		{
			name: "all images fail",
			images: []Image{
				&fakeImage{src: "x.png", err: ErrImageLoad},
				&fakeImage{src: "y.png", err: errors.New("decode error")},
				&fakeImage{src: "z.png", err: ErrImageLoad, delay: 5 * time.Millisecond},
			},
			wantTotal:  3,
			wantFailed: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gate := NewAssetReadinessGate(nil)
			report, err := gate.Ready(context.Background(), &fakeImageSource{images: tt.images})
			if err != nil {
				t.Fatalf("Ready() unexpected error: %v", err)
			}
			if report.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", report.Total, tt.wantTotal)
			}
			if report.Failed != tt.wantFailed {
				t.Errorf("Failed = %d, want %d", report.Failed, tt.wantFailed)
			}
			if len(report.FailedSources) != tt.wantFailed {
				t.Errorf("FailedSources = %v, want %d entries", report.FailedSources, tt.wantFailed)
			}
			for _, img := range tt.images {
				if n := img.(*fakeImage).settled.Load(); n != 1 {
					t.Errorf("image %s settled %d times, want 1", img.Source(), n)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestAssetReadinessGate_Idempotent
// ---------------------------------------------------------------------------

func TestAssetReadinessGate_Idempotent(t *testing.T) {
	t.Parallel()

	src := &fakeImageSource{images: []Image{
		&fakeImage{src: "a.png"},
		&fakeImage{src: "b.png", err: ErrImageLoad},
	}}
	gate := NewAssetReadinessGate(nil)

	first, err := gate.Ready(context.Background(), src)
	if err != nil {
		t.Fatalf("first Ready() error: %v", err)
	}
	second, err := gate.Ready(context.Background(), src)
	if err != nil {
		t.Fatalf("second Ready() error: %v", err)
	}
	if first.Total != second.Total || first.Failed != second.Failed {
		t.Errorf("reports differ: %+v vs %+v", first, second)
	}
}

// ---------------------------------------------------------------------------
// TestAssetReadinessGate_Errors
// ---------------------------------------------------------------------------

func TestAssetReadinessGate_Errors(t *testing.T) {
	t.Parallel()

	t.Run("enumeration error is returned", func(t *testing.T) {
		t.Parallel()

		want := errors.New("page gone")
		_, err := NewAssetReadinessGate(nil).Ready(context.Background(), &fakeImageSource{err: want})
		if !errors.Is(err, want) {
			t.Errorf("Ready() error = %v, want %v", err, want)
		}
	})

	t.Run("context deadline is fatal", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		src := &fakeImageSource{images: []Image{&fakeImage{src: "slow.png", delay: time.Second}}}
		_, err := NewAssetReadinessGate(nil).Ready(ctx, src)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Ready() error = %v, want DeadlineExceeded", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestAssetReadinessGate_Await
// ---------------------------------------------------------------------------

func TestAssetReadinessGate_Await(t *testing.T) {
	t.Parallel()

	root := &fakeRoot{images: []Image{&fakeImage{src: "logo.png", err: ErrImageLoad}}}
	surface := &CaptureSurface{ImageCount: 2}

	ready, err := NewAssetReadinessGate(nil).await(context.Background(), root, surface)
	if err != nil {
		t.Fatalf("await() error: %v", err)
	}
	if ready.Surface() != surface {
		t.Error("ReadyRoot does not carry the awaited surface")
	}
	if got := ready.Report().Failed; got != 1 {
		t.Errorf("Report().Failed = %d, want 1", got)
	}
	if !root.gatedOnce {
		t.Error("await() did not enumerate the root's images")
	}
}

// ---------------------------------------------------------------------------
// TestTruncateSource
// ---------------------------------------------------------------------------

func TestTruncateSource(t *testing.T) {
	t.Parallel()

	short := "images/logo.png"
	if got := truncateSource(short); got != short {
		t.Errorf("truncateSource(%q) = %q", short, got)
	}

	long := "data:image/png;base64," + strings.Repeat("A", 500)
	got := truncateSource(long)
	if len(got) != 83 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncateSource(long) = %q (len %d)", got, len(got))
	}

	// "images/" is 7 bytes and each é is 2, so byte 80 falls inside a rune.
	accented := "images/" + strings.Repeat("é", 60) + ".png"
	got = truncateSource(accented)
	if !utf8.ValidString(got) {
		t.Errorf("truncateSource(accented) = %q, not valid UTF-8", got)
	}
	if want := accented[:79] + "..."; got != want {
		t.Errorf("truncateSource(accented) = %q, want %q", got, want)
	}
}
