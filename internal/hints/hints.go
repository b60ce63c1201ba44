// Package hints provides actionable follow-ups for common failures.
// Every hint is formatted as "\n  hint: <text>" so it can be appended to an
// error message.
package hints

import (
	"os"
	"strings"

	"github.com/Abdul-Razack/docpreview/internal/fileutil"
)

// IsInContainer detects Docker and similar runtimes via /.dockerenv.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

func inCI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect suggests the rod environment variables that usually fix
// a browser launch failure.
func ForBrowserConnect() string {
	var hs []string
	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hs = append(hs, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hs = append(hs, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	return join(hs)
}

func ForTimeout() string {
	return format("for long documents, raise --timeout")
}

// ForConfigNotFound suggests --config, or creating the user config file
// if one of the searched paths lives under ~/.config/docpreview.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, ".config/docpreview") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateSetNotFound lists the embedded template sets.
func ForTemplateSetNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForCaptureFailure is attached to capture errors. The common cause is an
// image served without CORS headers tainting the surface.
func ForCaptureFailure() string {
	return format("retry the export; if it keeps failing, check images hosted on other origins")
}

// ForAssetWarnings names the images that did not load. The export still
// completed, with placeholders in their place.
func ForAssetWarnings(failed []string) string {
	if len(failed) == 0 {
		return ""
	}
	const maxListed = 3
	listed := failed
	suffix := ""
	if len(listed) > maxListed {
		listed = listed[:maxListed]
		suffix = ", ..."
	}
	return format("images not loaded: " + strings.Join(listed, ", ") + suffix)
}

// ForLayoutNotReady explains a fallback to the default height estimate.
func ForLayoutNotReady() string {
	return format("header/footer not measured in time; raise budget.mountTimeout if pages look short")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func join(hs []string) string {
	if len(hs) == 0 {
		return ""
	}
	return format(strings.Join(hs, "; "))
}
