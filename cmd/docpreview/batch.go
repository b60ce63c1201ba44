package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Abdul-Razack/docpreview"
	"github.com/Abdul-Razack/docpreview/internal/hints"
)

// exportJob is one document to export.
type exportJob struct {
	InputPath string
	Doc       docpreview.Document
}

// exportResult holds the outcome of a single export.
type exportResult struct {
	InputPath string
	Artifact  *docpreview.ExportArtifact
	Err       error
	Duration  time.Duration
}

// exportBatch runs jobs concurrently, one worker per pooled exporter.
// Results keep the order of jobs.
func exportBatch(ctx context.Context, pool Pool, mode string, jobs []exportJob) []exportResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(jobs) {
		concurrency = len(jobs)
	}

	results := make([]exportResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			exp, err := pool.Acquire()
			if err != nil {
				// Exporter creation failed, mark the jobs this worker takes as failed.
				for idx := range queue {
					results[idx] = exportResult{InputPath: jobs[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(exp)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = exportResult{InputPath: jobs[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = exportOne(ctx, exp, mode, jobs[idx])
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// exportOne exports a single document. An artifact returned together with
// an error was produced but could not be stored.
func exportOne(ctx context.Context, exp Exporter, mode string, job exportJob) exportResult {
	start := time.Now()
	run := exp.Export
	if mode == cmdPrint {
		run = exp.Print
	}

	art, err := run(ctx, job.Doc)
	if err != nil && art != nil {
		err = fmt.Errorf("%w: %w", ErrWriteArtifact, err)
	}
	return exportResult{
		InputPath: job.InputPath,
		Artifact:  art,
		Err:       err,
		Duration:  time.Since(start),
	}
}

// batchSink stores artifacts in one directory. Two documents of the same
// kind exported in the same minute share a generated filename, so later
// ones get a numeric suffix instead of overwriting.
type batchSink struct {
	dir  *docpreview.DirSink
	mu   sync.Mutex
	seen map[string]int
}

var _ docpreview.ArtifactSink = (*batchSink)(nil)

func newBatchSink(dir string) *batchSink {
	return &batchSink{dir: docpreview.NewDirSink(dir), seen: make(map[string]int)}
}

func (s *batchSink) Save(ctx context.Context, art *docpreview.ExportArtifact) (string, error) {
	s.mu.Lock()
	n := s.seen[art.Filename]
	s.seen[art.Filename] = n + 1
	s.mu.Unlock()

	if n > 0 {
		base := strings.TrimSuffix(art.Filename, ".pdf")
		art.Filename = fmt.Sprintf("%s-%d.pdf", base, n+1)
	}
	return s.dir.Save(ctx, art)
}

// resultSummary holds the count of succeeded and failed exports.
type resultSummary struct {
	Succeeded int
	Failed    int
	FirstErr  error
}

func countResults(results []exportResult) resultSummary {
	var s resultSummary
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			if s.FirstErr == nil {
				s.FirstErr = r.Err
			}
			continue
		}
		s.Succeeded++
	}
	return s
}

// printResults reports every result and returns an error wrapping the
// first failure, so the exit code reflects its cause.
func printResults(results []exportResult, common commonFlags, env *Environment) error {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			continue
		}
		art := r.Artifact
		if art.Warnings > 0 {
			fmt.Fprintf(env.Stderr, "warning: %s: %d image(s) did not load%s\n",
				r.InputPath, art.Warnings, hints.ForAssetWarnings(art.FailedAssets))
		}

		if common.quiet {
			continue
		}
		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d pages, %v)\n",
				r.InputPath, art.Path, art.PageCount, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", art.Path)
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if summary.Failed == 0 {
		return nil
	}
	if errors.Is(summary.FirstErr, context.Canceled) {
		return summary.FirstErr
	}
	return &batchError{failed: summary.Failed, first: summary.FirstErr}
}

// batchError is reported after the per-file lines, so it stays short.
type batchError struct {
	failed int
	first  error
}

func (e *batchError) Error() string { return fmt.Sprintf("%d export(s) failed", e.failed) }
func (e *batchError) Unwrap() error { return e.first }
