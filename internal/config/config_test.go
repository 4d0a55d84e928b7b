// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	entries, err := Parse([]byte(`[
		{"name": "docs", "url": "https://github.com/example/mono.git", "branch": "main", "src": "docs", "dst": "vendor/docs", "filters": ["**/*.md"]},
		{"url": "https://github.com/example/mono.git", "src": "pkg/util", "dst": "vendor/util", "commit_hash": "0123456789abcdef0123456789abcdef01234567", "mtd": "partial", "prune": true}
	]`))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "docs", entries[0].Name)
	assert.Equal(t, "main", entries[0].EffectiveBranch())
	assert.Equal(t, Shallow, entries[0].CheckoutMethod())
	assert.Equal(t, []string{"**/*.md"}, entries[0].Filters)

	assert.Equal(t, Partial, entries[1].CheckoutMethod())
	assert.True(t, entries[1].Prune)
	assert.Equal(t, "#2", entries[1].Label(1))
}

func TestParseDefaults(t *testing.T) {
	entries, err := Parse([]byte(`[{"url": "https://example.com/r.git", "src": "", "dst": "vendor/r"}]`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "main", entries[0].EffectiveBranch())
	assert.Equal(t, Shallow, entries[0].CheckoutMethod())
}

func TestParseMalformed(t *testing.T) {
	for name, data := range map[string]string{
		"not json":      `{`,
		"not an array":  `{"url": "https://example.com/r.git"}`,
		"missing url":   `[{"src": "a", "dst": "b"}]`,
		"missing dst":   `[{"url": "https://example.com/r.git", "src": "a"}]`,
		"unknown field": `[{"url": "https://example.com/r.git", "src": "a", "dst": "b", "frobnicate": true}]`,
		"bad method":    `[{"url": "https://example.com/r.git", "src": "a", "dst": "b", "mtd": "deep"}]`,
		"bad commit":    `[{"url": "https://example.com/r.git", "src": "a", "dst": "b", "commit_hash": "not-a-hash"}]`,
		"wrong type":    `[{"url": "https://example.com/r.git", "src": "a", "dst": "b", "filters": "x"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParseUnsound(t *testing.T) {
	for name, data := range map[string]string{
		"dst parent escape": `[{"url": "https://example.com/r.git", "src": "a", "dst": "../escape"}]`,
		"src parent escape": `[{"url": "https://example.com/r.git", "src": "a/../../b", "dst": "vendor"}]`,
		"dot component":     `[{"url": "https://example.com/r.git", "src": "./a", "dst": "vendor"}]`,
		"dot git segment":   `[{"url": "https://example.com/r.git", "src": "a", "dst": "vendor/.git/hooks"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.ErrorIs(t, err, ErrUnsound)
		})
	}
}

func TestParseDuplicateNames(t *testing.T) {
	_, err := Parse([]byte(`[
		{"name": "same", "url": "https://example.com/a.git", "src": "a", "dst": "vendor/a"},
		{"name": "same", "url": "https://example.com/b.git", "src": "b", "dst": "vendor/b"}
	]`))
	assert.ErrorIs(t, err, ErrDuplicateName)

	// Unnamed entries never collide.
	_, err = Parse([]byte(`[
		{"url": "https://example.com/a.git", "src": "a", "dst": "vendor/a"},
		{"url": "https://example.com/a.git", "src": "b", "dst": "vendor/b"}
	]`))
	assert.NoError(t, err)
}

func TestParseFileNotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), FileName))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseFileUnreadable(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("file modes are not enforced for root")
	}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o000))

	_, err := ParseFile(path)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestSoundPath(t *testing.T) {
	assert.True(t, soundPath("a/b/c"))
	assert.True(t, soundPath(""))
	assert.True(t, soundPath("a/.github/b"))
	assert.False(t, soundPath(".."))
	assert.False(t, soundPath("a/./b"))
	assert.False(t, soundPath("a/.git"))
}
