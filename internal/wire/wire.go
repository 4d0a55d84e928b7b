// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the two per-entry operations: Sync copies the
// filtered file set of a cached checkout into the destination tree, Check
// verifies the destination against a fresh upstream checkout.
package wire

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

// matcher decides which files under a source subpath take part in an entry.
// An empty filter list matches everything. A filter matches either the
// slash-separated path relative to the source subpath, or the bare file name.
type matcher struct {
	globs []glob.Glob
}

func newMatcher(filters []string) (*matcher, error) {
	m := &matcher{}
	for _, f := range filters {
		g, err := glob.Compile(f, '/')
		if err != nil {
			return nil, err
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

func (m *matcher) Match(rel string) bool {
	if len(m.globs) == 0 {
		return true
	}
	for _, g := range m.globs {
		if g.Match(rel) || g.Match(path.Base(rel)) {
			return true
		}
	}
	return false
}

// listFiles returns the slash-separated relative paths of all matching files
// under root, sorted. A missing root yields an empty list.
func listFiles(root string, m *matcher) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if m.Match(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
