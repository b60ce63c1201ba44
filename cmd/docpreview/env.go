package main

import (
	"io"
	"os"
	"time"

	"github.com/Abdul-Razack/docpreview"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// NewPool builds the exporter pool for export and print.
	NewPool func(size int, opts ...docpreview.Option) Pool
}

// DefaultEnv returns the production environment backed by headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewPool: func(size int, opts ...docpreview.Option) Pool {
			return &poolAdapter{pool: docpreview.NewExporterPool(size, opts...)}
		},
	}
}
