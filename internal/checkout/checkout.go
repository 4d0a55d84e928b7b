// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package checkout materializes remote repositories on the local filesystem
// by shelling out to the external git client. Three strategies exist: shallow
// (depth-1 fetch, sparse-checkout limited to the needed subpaths), shallow
// without sparse-checkout, and partial (blobless clone, objects downloaded on
// demand). All strategies leave the checkout clean on the requested branch or
// commit.
package checkout

import (
	"context"

	"github.com/gitwire/gitwire/internal/config"
)

// Request describes one materialization. SparsePaths is the union of source
// subpaths every entry under the same cache key needs; it is ignored by
// strategies that check out the full tree.
type Request struct {
	URL         string
	Branch      string
	Commit      string
	Dir         string
	SparsePaths []string
}

type Strategy interface {
	Name() string
	// Materialize fetches the repository into req.Dir and checks out the
	// requested branch or commit. A failure aborts only this request.
	Materialize(ctx context.Context, req Request) error
}

// New returns the strategy for a checkout method. A nil runner selects the
// real git client.
func New(m config.Method, r Runner) Strategy {
	if r == nil {
		r = execRunner{}
	}
	switch m {
	case config.ShallowNoSparse:
		return shallowNoSparse{r: r}
	case config.Partial:
		return partial{r: r}
	default:
		return shallow{r: r}
	}
}

type shallow struct{ r Runner }

func (shallow) Name() string { return string(config.Shallow) }

func (s shallow) Materialize(ctx context.Context, req Request) error {
	if !wantSparse(req.SparsePaths) {
		if err := clone(ctx, s.r, req, "--depth=1", "--no-checkout"); err != nil {
			return err
		}
		return checkoutRef(ctx, s.r, req)
	}

	if err := clone(ctx, s.r, req, "--depth=1", "--no-checkout", "--sparse"); err != nil {
		return err
	}
	if err := sparseSet(ctx, s.r, req); err != nil {
		return err
	}
	return checkoutRef(ctx, s.r, req)
}

type shallowNoSparse struct{ r Runner }

func (shallowNoSparse) Name() string { return string(config.ShallowNoSparse) }

func (s shallowNoSparse) Materialize(ctx context.Context, req Request) error {
	if err := clone(ctx, s.r, req, "--depth=1", "--no-checkout"); err != nil {
		return err
	}
	return checkoutRef(ctx, s.r, req)
}

type partial struct{ r Runner }

func (partial) Name() string { return string(config.Partial) }

func (p partial) Materialize(ctx context.Context, req Request) error {
	if !wantSparse(req.SparsePaths) {
		if err := clone(ctx, p.r, req, "--filter=blob:none", "--no-checkout"); err != nil {
			return err
		}
		return checkoutRef(ctx, p.r, req)
	}

	if err := clone(ctx, p.r, req, "--filter=blob:none", "--no-checkout", "--sparse"); err != nil {
		return err
	}
	if err := sparseSet(ctx, p.r, req); err != nil {
		return err
	}
	return checkoutRef(ctx, p.r, req)
}

func clone(ctx context.Context, r Runner, req Request, extra ...string) error {
	args := append([]string{"clone", "--quiet", "--single-branch"}, extra...)
	if req.Branch != "" {
		args = append(args, "--branch", req.Branch)
	}
	args = append(args, req.URL, req.Dir)
	_, err := r.Run(ctx, "", args...)
	return err
}

// wantSparse reports whether the checkout can be restricted to subpaths. An
// empty or root subpath means the whole tree is needed, and the clone must
// then not run with --sparse either: a --sparse clone initializes a root-only
// sparse-checkout, so the later checkout would materialize top-level files
// but nothing nested.
func wantSparse(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if p == "" {
			return false
		}
	}
	return true
}

// sparseSet restricts the worktree to the requested subpaths. Callers only
// invoke it after wantSparse approved the path set.
func sparseSet(ctx context.Context, r Runner, req Request) error {
	args := append([]string{"sparse-checkout", "set", "--no-cone"}, req.SparsePaths...)
	_, err := r.Run(ctx, req.Dir, args...)
	return err
}

// checkoutRef checks out the pinned commit if any, the branch otherwise. A
// commit outside the depth-1 history is fetched explicitly before retrying.
func checkoutRef(ctx context.Context, r Runner, req Request) error {
	if req.Commit == "" {
		_, err := r.Run(ctx, req.Dir, "checkout", "--quiet", req.Branch)
		return err
	}

	if _, err := r.Run(ctx, req.Dir, "checkout", "--quiet", req.Commit); err == nil {
		return nil
	}
	if _, err := r.Run(ctx, req.Dir, "fetch", "--quiet", "--depth=1", "origin", req.Commit); err != nil {
		return err
	}
	_, err := r.Run(ctx, req.Dir, "checkout", "--quiet", req.Commit)
	return err
}
