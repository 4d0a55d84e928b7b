// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Command gitwire wires parts of other repositories' source code into the
// current repository, as declared by the .gitwire file at the repository
// root.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"

	"github.com/gitwire/gitwire/pkg/wire"
)

var modeIDs = map[wire.Mode][]string{
	wire.Sequential: {"sequential", "single"},
	wire.Parallel:   {"parallel", "multi"},
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		mode       = wire.Parallel
		workers    int
		logLevel   string
		noProgress bool
	)

	opts := func() wire.Options {
		return wire.Options{
			Mode:     mode,
			Workers:  workers,
			Progress: !noProgress,
			LogLevel: logLevel,
		}
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy the declared source trees into this repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := wire.Sync(cmd.Context(), opts())
			if err != nil {
				return err
			}
			return summarize(cmd, report)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify this repository's wired trees against fresh upstream checkouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := wire.Check(cmd.Context(), opts())
			if err != nil {
				return err
			}
			return summarize(cmd, report)
		},
	}

	root := &cobra.Command{
		Use:           "gitwire",
		Short:         "Declaratively wire parts of other repositories into this one",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Bare `gitwire` behaves like `gitwire sync`.
		RunE: syncCmd.RunE,
	}

	addRunFlags(root.PersistentFlags(), &mode, &workers, &logLevel, &noProgress)

	root.AddCommand(syncCmd, checkCmd)
	return root
}

func addRunFlags(fs *pflag.FlagSet, mode *wire.Mode, workers *int, logLevel *string, noProgress *bool) {
	fs.Var(enumflag.New(mode, "mode", modeIDs, enumflag.EnumCaseInsensitive),
		"mode", "execution mode; 'sequential' or 'parallel'")
	fs.IntVar(workers, "workers", 0, "worker count in parallel mode (0 = number of CPUs)")
	fs.StringVar(logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.BoolVar(noProgress, "no-progress", false, "disable the progress bar")
}

// summarize prints every per-entry outcome and turns a failed aggregate into
// a non-zero exit.
func summarize(cmd *cobra.Command, report wire.Report) error {
	failed := 0
	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "entry %s: %v\n", res.Entry, res.Err)
		case !res.OK:
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "entry %s: does not match upstream\n", res.Entry)
		default:
			for _, line := range res.Detail {
				fmt.Fprintf(cmd.OutOrStdout(), "entry %s: %s\n", res.Entry, line)
			}
		}
	}

	if !report.OK() {
		return fmt.Errorf("%s failed for %d of %d entries", report.Operation, failed, len(report.Results))
	}
	return nil
}
