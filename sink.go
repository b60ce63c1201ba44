package docpreview

import (
	"context"
	"fmt"
	"os"

	"github.com/Abdul-Razack/docpreview/internal/fileutil"
)

// ArtifactSink stores a finished artifact and returns where it went.
type ArtifactSink interface {
	Save(ctx context.Context, art *ExportArtifact) (string, error)
}

// DirSink writes artifacts into a directory under their generated
// filename. Writes are atomic: a reader never sees a partial PDF.
type DirSink struct {
	Dir  string
	Perm os.FileMode // default 0644
}

var _ ArtifactSink = (*DirSink)(nil)

func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir, Perm: 0o644}
}

func (s *DirSink) Save(ctx context.Context, art *ExportArtifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}

	path, err := fileutil.WriteFileAtomic(dir, art.Filename, art.Data, perm)
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", art.Filename, err)
	}
	art.Path = path
	return path, nil
}
