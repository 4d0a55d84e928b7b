// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire is the programmatic entry point for gitwire. It reads the
// .gitwire file of the enclosing repository and either syncs the declared
// source trees into the working tree or checks that the working tree still
// matches upstream. The CLI is a thin wrapper over this package.
package wire

import (
	"context"

	"github.com/gitwire/gitwire/internal/cache"
	"github.com/gitwire/gitwire/internal/config"
	"github.com/gitwire/gitwire/internal/logging"
	"github.com/gitwire/gitwire/internal/sequence"
	internalwire "github.com/gitwire/gitwire/internal/wire"
	"github.com/gitwire/gitwire/internal/workspace"
)

// Mode selects sequential or parallel execution of the configured entries.
type Mode = sequence.Mode

const (
	Sequential = sequence.Sequential
	Parallel   = sequence.Parallel
)

// Operation is the per-entry contract dispatched by the sequencer. Sync and
// Check are the two implementations shipped with gitwire.
type Operation = sequence.Operation

type Result = sequence.Result

// Report is the whole-run outcome; Report.OK is the logical AND of every
// entry's success.
type Report = sequence.Report

type Options struct {
	// Mode defaults to Sequential.
	Mode Mode
	// Workers bounds the pool in Parallel mode; 0 means GOMAXPROCS.
	Workers int
	// Progress renders a progress bar on stderr.
	Progress bool
	// LogLevel is a zerolog level name; empty means info.
	LogLevel string
}

// Sync wires all configured source trees into the working tree.
func Sync(ctx context.Context, opts Options) (Report, error) {
	return run(ctx, opts, func(root string, _ *workspace.Workspace, log *logging.Logger) sequence.Operation {
		return internalwire.NewSync(root, log)
	})
}

// Check verifies the working tree against fresh upstream checkouts. A failed
// verification surfaces in the report, not as an error.
func Check(ctx context.Context, opts Options) (Report, error) {
	return run(ctx, opts, func(root string, ws *workspace.Workspace, log *logging.Logger) sequence.Operation {
		return internalwire.NewCheck(root, ws, log)
	})
}

func run(ctx context.Context, opts Options, makeOp func(string, *workspace.Workspace, *logging.Logger) sequence.Operation) (Report, error) {
	log := logging.New(opts.LogLevel)

	root, entries, err := config.Load()
	if err != nil {
		return Report{}, err
	}

	ws, err := workspace.New()
	if err != nil {
		return Report{}, err
	}
	defer ws.Close()

	cm := cache.NewManager(ws, entries, log)

	return sequence.Run(ctx, entries, cm, makeOp(root, ws, log), sequence.Options{
		Mode:     opts.Mode,
		Workers:  opts.Workers,
		Progress: opts.Progress,
		Log:      log,
	}), nil
}
