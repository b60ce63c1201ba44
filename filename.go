package docpreview

import (
	"time"

	"github.com/gosimple/slug"

	"github.com/Abdul-Razack/docpreview/internal/dateutil"
)

// defaultKindSlug names artifacts whose kind slugs to nothing.
const defaultKindSlug = "document"

// ArtifactFilename returns "<kind>-preview-<DD-MM-YYYY_HH-mm>.pdf" with kind
// reduced to a URL- and filesystem-safe slug.
func ArtifactFilename(kind string, t time.Time) string {
	s := slug.Make(kind)
	if s == "" {
		s = defaultKindSlug
	}
	// FilenameFormat is a fixed valid pattern.
	stamp, _ := dateutil.Format(dateutil.FilenameFormat, t)
	return s + "-preview-" + stamp + ".pdf"
}
