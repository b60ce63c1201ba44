package main

import (
	"context"
	"fmt"

	"github.com/Abdul-Razack/docpreview"
)

// Exporter is what a batch worker needs from an exporter.
type Exporter interface {
	Export(ctx context.Context, doc docpreview.Document) (*docpreview.ExportArtifact, error)
	Print(ctx context.Context, doc docpreview.Document) (*docpreview.ExportArtifact, error)
}

// Compile-time interface implementation check.
var _ Exporter = (*docpreview.Exporter)(nil)

// Pool abstracts exporter pool operations for testability.
type Pool interface {
	Acquire() (Exporter, error)
	Release(Exporter)
	Size() int
	Close() error
}

// poolAdapter exposes a docpreview.ExporterPool through Pool.
type poolAdapter struct {
	pool *docpreview.ExporterPool
}

func (a *poolAdapter) Acquire() (Exporter, error) {
	exp, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// Release panics on a foreign Exporter: only values from Acquire go back.
func (a *poolAdapter) Release(e Exporter) {
	exp, ok := e.(*docpreview.Exporter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", e))
	}
	a.pool.Release(exp)
}

func (a *poolAdapter) Size() int    { return a.pool.Size() }
func (a *poolAdapter) Close() error { return a.pool.Close() }
