// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/akedrou/textdiff"
	"github.com/fatih/color"

	"github.com/gitwire/gitwire/internal/cache"
	"github.com/gitwire/gitwire/internal/checkout"
	"github.com/gitwire/gitwire/internal/config"
	"github.com/gitwire/gitwire/internal/logging"
	"github.com/gitwire/gitwire/internal/metrics"
	"github.com/gitwire/gitwire/internal/sequence"
	"github.com/gitwire/gitwire/internal/workspace"
)

// Check verifies that an entry's destination tree is byte-identical to a
// fresh upstream checkout. It always fetches into a throwaway directory
// instead of reusing the shared cache, so a stale cache can never produce a
// false pass. The working tree is never modified.
type Check struct {
	root        string
	ws          *workspace.Workspace
	log         *logging.Logger
	out         io.Writer
	newStrategy func(config.Method) checkout.Strategy
}

func NewCheck(root string, ws *workspace.Workspace, log *logging.Logger) *Check {
	if log == nil {
		log = logging.Discard()
	}
	return &Check{
		root:        root,
		ws:          ws,
		log:         log,
		out:         os.Stdout,
		newStrategy: func(m config.Method) checkout.Strategy { return checkout.New(m, nil) },
	}
}

// WithOutput redirects the per-path diagnostics. Tests use this.
func (c *Check) WithOutput(w io.Writer) *Check {
	c.out = w
	return c
}

// WithStrategyFactory overrides how fresh checkouts are materialized.
func (c *Check) WithStrategyFactory(f func(config.Method) checkout.Strategy) *Check {
	c.newStrategy = f
	return c
}

func (*Check) Name() string { return "check" }

func (c *Check) Apply(ctx context.Context, e config.Entry, _ *cache.CachedRepository) sequence.Result {
	m, err := newMatcher(e.Filters)
	if err != nil {
		return sequence.Result{Err: fmt.Errorf("check %s: invalid filter: %w", e.Dst, err)}
	}

	dir, err := c.ws.NewDir("check-")
	if err != nil {
		return sequence.Result{Err: fmt.Errorf("check %s: %w", e.Dst, err)}
	}

	strategy := c.newStrategy(e.CheckoutMethod())
	if err := strategy.Materialize(ctx, checkout.Request{
		URL:         e.URL,
		Branch:      e.EffectiveBranch(),
		Commit:      e.CommitHash,
		Dir:         dir,
		SparsePaths: []string{e.Src},
	}); err != nil {
		return sequence.Result{Err: fmt.Errorf("check %s: failed to materialize %s: %w", e.Dst, e.URL, err)}
	}

	freshRoot := filepath.Join(dir, filepath.FromSlash(e.Src))
	dstRoot := filepath.Join(c.root, filepath.FromSlash(e.Dst))

	mismatches, err := compare(freshRoot, dstRoot, m)
	if err != nil {
		return sequence.Result{Err: fmt.Errorf("check %s: %w", e.Dst, err)}
	}

	if len(mismatches) > 0 {
		metrics.CheckMismatch(e.Dst)
		detail := make([]string, len(mismatches))
		for i, mm := range mismatches {
			detail[i] = mm.line
			fmt.Fprintln(c.out, color.RedString("  ! %s", mm.line))
			if mm.diff != "" {
				fmt.Fprint(c.out, mm.diff)
			}
		}
		return sequence.Result{OK: false, Detail: detail}
	}

	c.log.Debugf("%s matches upstream", e.Dst)
	return sequence.Result{OK: true}
}

// mismatch is one offending path; for content drift, diff carries the unified
// diff between the fresh checkout and the destination.
type mismatch struct {
	line string
	diff string
}

// compare diffs the filtered fresh checkout against the destination in both
// directions: files missing at the destination, files present only at the
// destination, and files whose contents drifted from upstream.
func compare(freshRoot, dstRoot string, m *matcher) ([]mismatch, error) {
	fresh, err := listFiles(freshRoot, m)
	if err != nil {
		return nil, err
	}
	dst, err := listFiles(dstRoot, m)
	if err != nil {
		return nil, err
	}

	inDst := make(map[string]struct{}, len(dst))
	for _, rel := range dst {
		inDst[rel] = struct{}{}
	}
	inFresh := make(map[string]struct{}, len(fresh))
	for _, rel := range fresh {
		inFresh[rel] = struct{}{}
	}

	var mismatches []mismatch
	for _, rel := range fresh {
		if _, ok := inDst[rel]; !ok {
			mismatches = append(mismatches, mismatch{line: fmt.Sprintf("file %q does not exist", rel)})
			continue
		}
		upstream, err := os.ReadFile(filepath.Join(freshRoot, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		local, err := os.ReadFile(filepath.Join(dstRoot, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(upstream, local) {
			mismatches = append(mismatches, mismatch{
				line: fmt.Sprintf("file %q is not identical to original", rel),
				diff: textdiff.Unified("original/"+rel, "local/"+rel, string(upstream), string(local)),
			})
		}
	}
	for _, rel := range dst {
		if _, ok := inFresh[rel]; !ok {
			mismatches = append(mismatches, mismatch{line: fmt.Sprintf("file %q does not exist on original", rel)})
		}
	}

	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].line < mismatches[j].line })
	return mismatches, nil
}
