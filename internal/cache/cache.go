// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache owns the mapping from cache keys to materialized local
// checkouts. For any number of entries that agree on (url, branch, commit),
// exactly one fetch happens per run; every other entry reuses the checkout.
// The per-key lock also serializes concurrent workers, so no reader ever
// observes a half-materialized checkout.
package cache

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/gitwire/gitwire/internal/cache/key"
	"github.com/gitwire/gitwire/internal/cache/lock"
	"github.com/gitwire/gitwire/internal/checkout"
	"github.com/gitwire/gitwire/internal/config"
	"github.com/gitwire/gitwire/internal/logging"
	"github.com/gitwire/gitwire/internal/metrics"
	"github.com/gitwire/gitwire/internal/workspace"
)

// CachedRepository is one materialized checkout. It is created once per key,
// reused for the rest of the run and removed with the workspace. Access is
// serialized by the Manager's per-key lock.
type CachedRepository struct {
	Key      key.Key
	Path     string
	Strategy string
	Ref      string
}

type Manager struct {
	mu          sync.Mutex
	repos       map[key.Key]*CachedRepository
	locks       *lock.Manager
	ws          *workspace.Workspace
	log         *logging.Logger
	newStrategy func(config.Method) checkout.Strategy
	sparse      map[key.Key][]string
}

// NewManager builds a cache manager for the given run. The full entry list
// is needed upfront so the sparse-checkout plan can cover every subpath any
// entry under a shared key will read.
func NewManager(ws *workspace.Workspace, entries []config.Entry, log *logging.Logger) *Manager {
	return &Manager{
		repos:       make(map[key.Key]*CachedRepository),
		locks:       lock.NewManager(),
		ws:          ws,
		log:         log,
		newStrategy: func(m config.Method) checkout.Strategy { return checkout.New(m, nil) },
		sparse:      sparsePlan(entries),
	}
}

// WithStrategyFactory overrides how checkout strategies are constructed.
// Tests use this to count or fake materializations.
func (m *Manager) WithStrategyFactory(f func(config.Method) checkout.Strategy) *Manager {
	m.newStrategy = f
	return m
}

// GetOrFetch returns the checkout for the entry's key, materializing it on
// first access. The key lock is held for the whole fetch-then-register
// critical section; a caller that waited on the lock re-checks the map so the
// fetch its predecessor performed is reused instead of repeated. A failed
// materialization leaves the key unregistered so a later entry may retry.
func (m *Manager) GetOrFetch(ctx context.Context, e config.Entry) (*CachedRepository, error) {
	k := key.ForEntry(e)

	release := m.locks.Acquire(string(k))
	defer release()

	if repo := m.lookup(k); repo != nil {
		metrics.CacheHit(e.URL)
		m.log.Debugf("cache hit for %s (%s)", e.URL, e.EffectiveBranch())
		return repo, nil
	}

	dir, err := m.ws.NewDir("repo-")
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout directory: %w", err)
	}

	strategy := m.newStrategy(e.CheckoutMethod())
	ref := e.EffectiveBranch()
	if e.CommitHash != "" {
		ref = e.CommitHash
	}

	m.log.Debugf("materializing %s at %s (%s)", e.URL, ref, strategy.Name())
	start := time.Now()

	if err := strategy.Materialize(ctx, checkout.Request{
		URL:         e.URL,
		Branch:      e.EffectiveBranch(),
		Commit:      e.CommitHash,
		Dir:         dir,
		SparsePaths: m.sparse[key.ForURLBranch(e.URL, e.EffectiveBranch())],
	}); err != nil {
		metrics.FetchFailed(e.URL)
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to materialize %s at %s: %w", e.URL, ref, err)
	}

	metrics.FetchSucceeded(e.URL, start)

	repo := &CachedRepository{Key: k, Path: dir, Strategy: strategy.Name(), Ref: ref}
	m.mu.Lock()
	m.repos[k] = repo
	m.mu.Unlock()

	return repo, nil
}

func (m *Manager) lookup(k key.Key) *CachedRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repos[k]
}

// sparsePlan unions the source subpaths of all entries per (url, branch), so
// a sparse strategy fetches everything any of them needs. Commit pins are
// deliberately ignored here: a broader sparse set is harmless, a narrower one
// is not.
func sparsePlan(entries []config.Entry) map[key.Key][]string {
	plan := make(map[key.Key][]string)
	for _, e := range entries {
		k := key.ForURLBranch(e.URL, e.EffectiveBranch())
		if !slices.Contains(plan[k], e.Src) {
			plan[k] = append(plan[k], e.Src)
		}
	}
	for _, paths := range plan {
		slices.Sort(paths)
	}
	return plan
}
