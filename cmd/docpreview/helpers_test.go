package main

// Notes:
// - Test infrastructure shared by the command tests: a fake exporter and
//   pool standing in for the browser, plus document file builders.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abdul-Razack/docpreview"
)

// ---------------------------------------------------------------------------
// Mock Implementations - Exporter and pool
// ---------------------------------------------------------------------------

var testNow = time.Date(2026, 5, 4, 16, 20, 0, 0, time.UTC)

// fakeExporter records calls and returns an artifact sized by the plan.
type fakeExporter struct {
	mu      sync.Mutex
	exports []docpreview.Document
	prints  []docpreview.Document
	err     error
	keepArt bool // return the artifact together with err
	dir     string
}

func (f *fakeExporter) Export(ctx context.Context, doc docpreview.Document) (*docpreview.ExportArtifact, error) {
	f.mu.Lock()
	f.exports = append(f.exports, doc)
	f.mu.Unlock()
	return f.result(ctx, doc, docpreview.ModeRaster)
}

func (f *fakeExporter) Print(ctx context.Context, doc docpreview.Document) (*docpreview.ExportArtifact, error) {
	f.mu.Lock()
	f.prints = append(f.prints, doc)
	f.mu.Unlock()
	return f.result(ctx, doc, docpreview.ModePrint)
}

func (f *fakeExporter) result(ctx context.Context, doc docpreview.Document, mode docpreview.ExportMode) (*docpreview.ExportArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := docpreview.ArtifactFilename(doc.Kind, testNow)
	art := &docpreview.ExportArtifact{
		Mode:      mode,
		Filename:  name,
		PageCount: len(docpreview.PageSizes(len(doc.Records), doc.Policy)),
		Path:      filepath.Join(f.dir, name),
	}
	if f.err != nil {
		if f.keepArt {
			return art, f.err
		}
		return nil, f.err
	}
	return art, nil
}

func (f *fakeExporter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.exports) + len(f.prints)
}

// fakePool hands out a single shared fakeExporter.
type fakePool struct {
	exp        *fakeExporter
	size       int
	acquireErr error
	opts       int

	mu       sync.Mutex
	acquired int
	released int
	closed   bool
}

func (p *fakePool) Acquire() (Exporter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return p.exp, nil
}

func (p *fakePool) Release(Exporter) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// testEnv returns an environment writing to buffers and using pool.
func testEnv(pool *fakePool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return testNow },
		Stdout: &stdout,
		Stderr: &stderr,
		NewPool: func(size int, opts ...docpreview.Option) Pool {
			if pool.size == 0 {
				pool.size = size
			}
			pool.opts = len(opts)
			return pool
		},
	}
	return env, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// Document builders
// ---------------------------------------------------------------------------

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// orderYAML builds a purchase order document with n rows.
func orderYAML(n int) string {
	var b strings.Builder
	b.WriteString("kind: purchase-order\n")
	b.WriteString("title: Purchase Order PO-1042\n")
	b.WriteString("reference: PO-1042\n")
	b.WriteString("columns: [Part, Description, Qty]\n")
	b.WriteString("records:\n")
	for i := 0; i < n; i++ {
		b.WriteString("  - type: row\n    cells: [P-1, Part, \"1\"]\n")
	}
	return b.String()
}
