// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package lock serializes access to shared repository checkouts. Each cache
// key gets a lazily created exclusive lock that lives for the rest of the
// process; the table is bounded by the distinct keys of one configuration.
package lock

import "sync"

// Manager is a table of per-key exclusive locks. The zero value is not
// usable, construct with NewManager.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager() *Manager {
	return &Manager{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the caller holds the exclusive lock for key and
// returns the release function. Callers must defer the release so it runs on
// every exit path of the protected section.
func (m *Manager) Acquire(key string) (release func()) {
	l := m.lock(key)
	l.Lock()
	return l.Unlock
}

// TryAcquire attempts to take the lock for key without blocking. On success
// it returns the release function and true; otherwise the caller must not
// proceed with a conflicting fetch.
func (m *Manager) TryAcquire(key string) (release func(), ok bool) {
	l := m.lock(key)
	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}

// Len reports the number of distinct keys seen so far.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func (m *Manager) lock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}
