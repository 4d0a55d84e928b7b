// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gitwire/gitwire/internal/cache"
	"github.com/gitwire/gitwire/internal/config"
	"github.com/gitwire/gitwire/internal/logging"
	"github.com/gitwire/gitwire/internal/metrics"
	"github.com/gitwire/gitwire/internal/sequence"
)

// Sync copies every file under an entry's source subpath that matches its
// filters into the destination subpath under the repository root, creating
// directories as needed and overwriting what is there. It mutates the
// working tree only; staging and committing stay with the user.
type Sync struct {
	root string
	log  *logging.Logger
}

func NewSync(root string, log *logging.Logger) *Sync {
	if log == nil {
		log = logging.Discard()
	}
	return &Sync{root: root, log: log}
}

func (*Sync) Name() string { return "sync" }

func (s *Sync) Apply(_ context.Context, e config.Entry, repo *cache.CachedRepository) sequence.Result {
	m, err := newMatcher(e.Filters)
	if err != nil {
		return s.fail(e, fmt.Errorf("invalid filter: %w", err))
	}

	srcRoot := filepath.Join(repo.Path, filepath.FromSlash(e.Src))
	if _, err := os.Stat(srcRoot); err != nil {
		return s.fail(e, fmt.Errorf("source path %q not present in checkout: %w", e.Src, err))
	}
	dstRoot := filepath.Join(s.root, filepath.FromSlash(e.Dst))

	files, err := listFiles(srcRoot, m)
	if err != nil {
		return s.fail(e, err)
	}

	for _, rel := range files {
		src := filepath.Join(srcRoot, filepath.FromSlash(rel))
		dst := filepath.Join(dstRoot, filepath.FromSlash(rel))
		if err := copyFile(src, dst); err != nil {
			return s.fail(e, fmt.Errorf("failed to copy %q: %w", rel, err))
		}
	}

	if e.Prune {
		if err := pruneStale(dstRoot, files); err != nil {
			return s.fail(e, fmt.Errorf("failed to prune: %w", err))
		}
	}

	s.log.Debugf("synced %d files from %s to %s", len(files), e.URL, e.Dst)
	return sequence.Result{OK: true, Detail: []string{fmt.Sprintf("%d files written to %s", len(files), e.Dst)}}
}

func (s *Sync) fail(e config.Entry, err error) sequence.Result {
	metrics.SyncFailed(e.Dst)
	return sequence.Result{Err: fmt.Errorf("sync %s: %w", e.Dst, err)}
}

// pruneStale removes destination files that no longer correspond to a
// matching source file, then any directories left empty.
func pruneStale(dstRoot string, written []string) error {
	keep := make(map[string]struct{}, len(written))
	for _, rel := range written {
		keep[rel] = struct{}{}
	}

	all := &matcher{}
	existing, err := listFiles(dstRoot, all)
	if err != nil {
		return err
	}

	var dirs []string
	for _, rel := range existing {
		if _, ok := keep[rel]; ok {
			continue
		}
		p := filepath.Join(dstRoot, filepath.FromSlash(rel))
		if err := os.Remove(p); err != nil {
			return err
		}
		for d := filepath.Dir(p); d != dstRoot && len(d) > len(dstRoot); d = filepath.Dir(d) {
			dirs = append(dirs, d)
		}
	}

	// Deepest first so nested empty directories collapse.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, d := range dirs {
		_ = os.Remove(d) // fails while non-empty, which is fine
	}
	return nil
}
