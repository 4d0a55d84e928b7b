// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package key derives stable identities for remote checkouts. Entries that
// agree on URL, branch and commit pin share a key and therefore share exactly
// one fetch per run.
package key

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/gitwire/gitwire/internal/config"
)

// Key is an opaque digest over a repository coordinate. It is deterministic
// within and across runs, but not guaranteed stable across versions.
type Key string

// ForEntry derives the key for an entry from its URL, branch and, when
// pinned, its commit hash.
func ForEntry(e config.Entry) Key {
	h := sha256.New()
	writeField(h, e.URL)
	writeField(h, e.EffectiveBranch())
	if e.CommitHash != "" {
		writeField(h, e.CommitHash)
	}
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// ForURLBranch derives a key from a URL and branch alone. It equals
// ForEntry for entries without a commit pin.
func ForURLBranch(url, branch string) Key {
	h := sha256.New()
	writeField(h, url)
	writeField(h, branch)
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// writeField length-prefixes each input so that adjacent fields cannot run
// into each other ("a"+"bc" vs "ab"+"c").
func writeField(h hash.Hash, s string) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(s)))
	h.Write(buf[:n])
	h.Write([]byte(s))
}
