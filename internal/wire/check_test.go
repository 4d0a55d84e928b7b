// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitwire/gitwire/internal/cache"
	"github.com/gitwire/gitwire/internal/checkout"
	"github.com/gitwire/gitwire/internal/config"
	"github.com/gitwire/gitwire/internal/logging"
	"github.com/gitwire/gitwire/internal/workspace"
)

// fixtureStrategy plays the role of the remote: materializing copies the
// fixture tree into the requested directory.
type fixtureStrategy struct {
	t     *testing.T
	files map[string]string
}

func (fixtureStrategy) Name() string { return "fixture" }

func (f fixtureStrategy) Materialize(_ context.Context, req checkout.Request) error {
	writeTree(f.t, req.Dir, f.files)
	return nil
}

func newTestCheck(t *testing.T, root string, files map[string]string) (*Check, *bytes.Buffer) {
	t.Helper()

	ws, err := workspace.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	out := &bytes.Buffer{}
	c := NewCheck(root, ws, logging.Discard()).
		WithOutput(out).
		WithStrategyFactory(func(config.Method) checkout.Strategy {
			return fixtureStrategy{t: t, files: files}
		})
	return c, out
}

func TestCheckPassesWhenIdentical(t *testing.T) {
	upstream := map[string]string{"docs/a.md": "alpha", "docs/sub/b.md": "beta"}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"vendor/docs/a.md":     "alpha",
		"vendor/docs/sub/b.md": "beta",
	})

	c, out := newTestCheck(t, root, upstream)
	res := c.Apply(context.Background(), config.Entry{
		URL: "https://example.com/r.git", Src: "docs", Dst: "vendor/docs",
	}, nil)

	require.NoError(t, res.Err)
	assert.True(t, res.OK)
	assert.Empty(t, out.String())
}

func TestCheckReportsDrift(t *testing.T) {
	upstream := map[string]string{"docs/a.md": "alpha", "docs/b.md": "beta"}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"vendor/docs/a.md":     "alpha but drifted",
		"vendor/docs/extra.md": "only local",
	})

	c, out := newTestCheck(t, root, upstream)
	res := c.Apply(context.Background(), config.Entry{
		URL: "https://example.com/r.git", Src: "docs", Dst: "vendor/docs",
	}, nil)

	require.NoError(t, res.Err, "a mismatch is a reported outcome, not an error")
	assert.False(t, res.OK)
	assert.Equal(t, []string{
		`file "a.md" is not identical to original`,
		`file "b.md" does not exist`,
		`file "extra.md" does not exist on original`,
	}, res.Detail)
	assert.Contains(t, out.String(), `file "b.md" does not exist`)

	// Content drift prints the unified diff alongside the offending path.
	assert.Contains(t, out.String(), "original/a.md")
	assert.Contains(t, out.String(), "-alpha")
	assert.Contains(t, out.String(), "+alpha but drifted")
}

func TestCheckHonorsFilters(t *testing.T) {
	upstream := map[string]string{"docs/a.md": "alpha", "docs/skip.txt": "unfiltered upstream"}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"vendor/docs/a.md":      "alpha",
		"vendor/docs/local.tmp": "unfiltered local",
	})

	c, _ := newTestCheck(t, root, upstream)
	res := c.Apply(context.Background(), config.Entry{
		URL: "https://example.com/r.git", Src: "docs", Dst: "vendor/docs", Filters: []string{"*.md"},
	}, nil)

	require.NoError(t, res.Err)
	assert.True(t, res.OK, "files outside the filters are not compared")
}

func TestCheckDoesNotTouchWorkingTree(t *testing.T) {
	upstream := map[string]string{"docs/a.md": "alpha"}
	root := t.TempDir()

	c, _ := newTestCheck(t, root, upstream)
	res := c.Apply(context.Background(), config.Entry{
		URL: "https://example.com/r.git", Src: "docs", Dst: "vendor/docs",
	}, nil)

	require.NoError(t, res.Err)
	assert.False(t, res.OK, "empty destination differs from upstream")

	_, err := os.Stat(filepath.Join(root, "vendor"))
	assert.True(t, os.IsNotExist(err), "check must not create destination paths")
}

// Sync then Check on the same entries must pass: the round-trip proves the
// synced output is byte-identical to a fresh checkout.
func TestSyncCheckRoundTrip(t *testing.T) {
	upstream := map[string]string{
		"docs/a.md":     "alpha",
		"docs/sub/b.md": "beta",
		"docs/c.txt":    "gamma",
	}
	root := t.TempDir()

	entry := config.Entry{URL: "https://example.com/r.git", Src: "docs", Dst: "vendor/docs"}

	repo := &cache.CachedRepository{Path: t.TempDir()}
	writeTree(t, repo.Path, upstream)

	res := NewSync(root, logging.Discard()).Apply(context.Background(), entry, repo)
	require.NoError(t, res.Err)
	require.True(t, res.OK)

	c, _ := newTestCheck(t, root, upstream)
	res = c.Apply(context.Background(), entry, nil)
	require.NoError(t, res.Err)
	assert.True(t, res.OK, "sync followed by check reports no drift")

	// Introduce drift and re-check.
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor/docs/a.md"), []byte("edited"), 0o644))

	res = c.Apply(context.Background(), entry, nil)
	require.NoError(t, res.Err)
	assert.False(t, res.OK)
	assert.Equal(t, []string{`file "a.md" is not identical to original`}, res.Detail)
}
