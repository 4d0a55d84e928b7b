// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package sequence applies an operation to every configuration entry, either
// one at a time in file order or distributed over a worker pool. The cache
// manager's per-key locking is what makes the parallel mode safe: two workers
// racing for the same key serialize, and only one performs the fetch.
package sequence

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/gitwire/gitwire/internal/cache"
	"github.com/gitwire/gitwire/internal/config"
	"github.com/gitwire/gitwire/internal/logging"
)

// Mode selects how entries are executed.
type Mode int

const (
	// Sequential processes entries one at a time, in file order, on the
	// calling goroutine.
	Sequential Mode = iota
	// Parallel distributes entries across a bounded worker pool.
	Parallel
)

func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "sequential"
}

// Operation is one action applied per entry against its resolved checkout.
type Operation interface {
	Name() string
	Apply(ctx context.Context, e config.Entry, repo *cache.CachedRepository) Result
}

// Result is the per-entry outcome. Err carries operational failures;
// OK false with a nil Err means the operation completed but did not pass
// (a check that found drift).
type Result struct {
	Entry  string
	OK     bool
	Detail []string
	Err    error
}

// Report aggregates all per-entry results of one run.
type Report struct {
	Operation string
	Results   []Result
}

// OK is the logical AND of all per-entry successes.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

type Options struct {
	Mode     Mode
	Workers  int
	Progress bool
	Log      *logging.Logger
}

// Run resolves each entry's cached checkout and applies the operation to it.
// A failing entry never stops the remaining entries; every mismatch and
// failure ends up in the report.
func Run(ctx context.Context, entries []config.Entry, cm *cache.Manager, op Operation, opts Options) Report {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	results := make([]Result, len(entries))
	bar := newBar(len(entries), op.Name(), opts.Progress)

	apply := func(i int) {
		defer func() { _ = bar.Add(1) }()

		e := entries[i]
		label := e.Label(i)

		repo, err := cm.GetOrFetch(ctx, e)
		if err != nil {
			log.Warnf("entry %s: %v", label, err)
			results[i] = Result{Entry: label, Err: err}
			return
		}

		res := op.Apply(ctx, e, repo)
		res.Entry = label
		results[i] = res
	}

	switch opts.Mode {
	case Parallel:
		var g errgroup.Group
		g.SetLimit(workers(opts.Workers))
		for i := range entries {
			g.Go(func() error {
				apply(i)
				return nil
			})
		}
		_ = g.Wait() // workers never return errors, failures live in results
	default:
		for i := range entries {
			apply(i)
		}
	}

	return Report{Operation: op.Name(), Results: results}
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

func newBar(n int, description string, enabled bool) *progressbar.ProgressBar {
	w := io.Discard
	if enabled {
		w = os.Stderr
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
	)
}
