package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel(): they use t.Setenv and
//   replace the package-level IsInContainer.

import (
	"strings"
	"testing"
)

func stubContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func clearCI(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(key, "")
	}
}

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment detection
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		ci          string
		noSandbox   string
		browserBin  string
		wantSandbox bool
		wantBin     bool
	}{
		{name: "in CI", ci: "true", wantSandbox: true, wantBin: true},
		{name: "in container", container: true, wantSandbox: true, wantBin: true},
		{name: "sandbox already disabled", container: true, noSandbox: "1", wantBin: true},
		{name: "browser bin set", browserBin: "/usr/bin/chrome"},
		{name: "all configured", container: true, ci: "true", noSandbox: "1", browserBin: "/usr/bin/chrome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubContainer(t, tt.container)
			clearCI(t)
			t.Setenv("CI", tt.ci)
			t.Setenv("ROD_NO_SANDBOX", tt.noSandbox)
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()

			if got := strings.Contains(hint, "ROD_NO_SANDBOX"); got != tt.wantSandbox {
				t.Errorf("ROD_NO_SANDBOX suggested = %v, want %v (hint %q)", got, tt.wantSandbox, hint)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("ROD_BROWSER_BIN suggested = %v, want %v (hint %q)", got, tt.wantBin, hint)
			}
			if !tt.wantSandbox && !tt.wantBin && hint != "" {
				t.Errorf("expected empty hint, got %q", hint)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Static hints
// ---------------------------------------------------------------------------

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hint     string
		contains string
	}{
		{"timeout", ForTimeout(), "--timeout"},
		{"output directory", ForOutputDirectory(), "parent directory"},
		{"capture failure", ForCaptureFailure(), "retry"},
		{"layout not ready", ForLayoutNotReady(), "mountTimeout"},
	}
	for _, tt := range tests {
		if !strings.HasPrefix(tt.hint, "\n  hint: ") {
			t.Errorf("%s: missing hint prefix in %q", tt.name, tt.hint)
		}
		if !strings.Contains(tt.hint, tt.contains) {
			t.Errorf("%s: %q does not contain %q", tt.name, tt.hint, tt.contains)
		}
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	if hint := ForConfigNotFound(nil); !strings.Contains(hint, "--config") {
		t.Errorf("hint = %q, want --config", hint)
	}

	hint := ForConfigNotFound([]string{"./po.yaml", "/home/u/.config/docpreview/po.yaml"})
	if !strings.Contains(hint, "create /home/u/.config/docpreview/po.yaml") {
		t.Errorf("hint = %q, want user config suggestion", hint)
	}
}

func TestForTemplateSetNotFound(t *testing.T) {
	t.Parallel()

	if hint := ForTemplateSetNotFound(nil); hint != "" {
		t.Errorf("expected empty hint, got %q", hint)
	}
	if hint := ForTemplateSetNotFound([]string{"compact", "default"}); !strings.Contains(hint, "compact, default") {
		t.Errorf("hint = %q", hint)
	}
}

func TestForAssetWarnings(t *testing.T) {
	t.Parallel()

	if hint := ForAssetWarnings(nil); hint != "" {
		t.Errorf("expected empty hint, got %q", hint)
	}

	hint := ForAssetWarnings([]string{"a.png", "b.png", "c.png", "d.png"})
	if !strings.Contains(hint, "a.png, b.png, c.png, ...") {
		t.Errorf("hint = %q, want first three and ellipsis", hint)
	}
	if strings.Contains(hint, "d.png") {
		t.Errorf("hint = %q, should truncate after three", hint)
	}
}
