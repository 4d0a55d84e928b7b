// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package workspace owns the per-run temporary directory holding every
// cached checkout and throwaway verification fetch. The workspace is removed
// wholesale when the run ends, also on error paths, as long as callers defer
// Close.
package workspace

import "os"

type Workspace struct {
	root string
}

func New() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "gitwire-")
	if err != nil {
		return nil, err
	}
	return &Workspace{root: dir}, nil
}

func (w *Workspace) Root() string {
	return w.root
}

// NewDir creates a fresh, uniquely named directory inside the workspace.
func (w *Workspace) NewDir(prefix string) (string, error) {
	return os.MkdirTemp(w.root, prefix)
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.root)
}
