// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package config reads and validates the .gitwire file that declares which
// parts of other repositories are wired into this one. Parsing is total and
// upfront: every entry is validated before any fetch or filesystem mutation
// happens, so a malformed file never causes partial side effects.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// FileName is the declarative configuration file, located at the root of the
// consuming repository.
const FileName = ".gitwire"

var (
	ErrNotFound      = errors.New("there is no .gitwire file in this repository")
	ErrUnreadable    = errors.New(".gitwire file could not be read")
	ErrMalformed     = errors.New(".gitwire file format is wrong")
	ErrUnsound       = errors.New(".gitwire file's `src` and `dst` must not include '.', '..', and '.git'")
	ErrDuplicateName = errors.New(".gitwire file's `name`s must differ from each other")
)

// Method selects how a remote repository is materialized locally.
type Method string

const (
	// Shallow fetches history depth 1 with sparse-checkout restricted to the
	// subpaths the configuration actually needs.
	Shallow Method = "shallow"
	// ShallowNoSparse fetches history depth 1 but checks out the full tree.
	ShallowNoSparse Method = "shallow_no_sparse"
	// Partial performs a blobless clone, deferring object download until
	// paths are read.
	Partial Method = "partial"
)

func (m Method) valid() bool {
	switch m {
	case "", Shallow, ShallowNoSparse, Partial:
		return true
	}
	return false
}

// Entry is one item of the .gitwire file. Entries are immutable once parsed.
type Entry struct {
	Name       string   `json:"name,omitempty"`
	URL        string   `json:"url"`
	Branch     string   `json:"branch,omitempty"`
	Src        string   `json:"src"`
	Dst        string   `json:"dst"`
	Filters    []string `json:"filters,omitempty"`
	CommitHash string   `json:"commit_hash,omitempty"`
	Method     Method   `json:"mtd,omitempty"`
	Prune      bool     `json:"prune,omitempty"`
}

// EffectiveBranch returns the branch to fetch, defaulting to "main".
func (e Entry) EffectiveBranch() string {
	if e.Branch == "" {
		return "main"
	}
	return e.Branch
}

// CheckoutMethod returns the checkout method, defaulting to Shallow.
func (e Entry) CheckoutMethod() Method {
	if e.Method == "" {
		return Shallow
	}
	return e.Method
}

// Label identifies the entry in diagnostics: its name if set, its position
// in the file otherwise.
func (e Entry) Label(index int) string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("#%d", index+1)
}

// Load locates the enclosing repository root, reads the .gitwire file from it
// and returns the root path together with the parsed entries.
func Load() (string, []Entry, error) {
	root, err := FindRoot(".")
	if err != nil {
		return "", nil, err
	}
	entries, err := ParseFile(filepath.Join(root, FileName))
	return root, entries, err
}

// FindRoot resolves the root of the git repository enclosing path.
func FindRoot(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to locate enclosing git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("repository has no worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// ParseFile reads and validates the .gitwire file at path.
func ParseFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return Parse(data)
}

// Parse validates data against the configuration schema and decodes it into
// entries. Unknown fields are rejected.
func Parse(data []byte) ([]Entry, error) {
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var entries []Entry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func validate(entries []Entry) error {
	names := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.URL == "" {
			return fmt.Errorf("%w: entry %s: `url` is required", ErrMalformed, e.Label(i))
		}
		if !e.Method.valid() {
			return fmt.Errorf("%w: entry %s: unknown checkout method %q", ErrMalformed, e.Label(i), e.Method)
		}
		if e.CommitHash != "" && !plumbing.IsHash(e.CommitHash) {
			return fmt.Errorf("%w: entry %s: %q is not a commit hash", ErrMalformed, e.Label(i), e.CommitHash)
		}
		if !soundPath(e.Src) || !soundPath(e.Dst) {
			return fmt.Errorf("%w (entry %s)", ErrUnsound, e.Label(i))
		}
		if e.Name != "" {
			if _, ok := names[e.Name]; ok {
				return fmt.Errorf("%w (name %q)", ErrDuplicateName, e.Name)
			}
			names[e.Name] = struct{}{}
		}
	}
	return nil
}

// soundPath rejects path components that would escape the repository root or
// touch version-control metadata.
func soundPath(p string) bool {
	for _, c := range strings.Split(filepath.ToSlash(p), "/") {
		switch c {
		case ".", "..", ".git":
			return false
		}
	}
	return true
}
