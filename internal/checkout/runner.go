// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

package checkout

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git with the given arguments. Tests substitute a fake to
// assert on the issued commands without touching the network.
type Runner interface {
	// Run executes git in dir (the process working directory when dir is
	// empty) and returns the combined output.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), &Error{Args: args, Output: strings.TrimSpace(string(out)), Err: err}
	}
	return string(out), nil
}

// Error is a failed git invocation. Any non-zero exit of the subprocess is a
// checkout failure; the captured output carries the reason (unreachable
// remote, unknown ref, authentication failure).
type Error struct {
	Args   []string
	Output string
	Err    error
}

func (e *Error) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, e.Output)
}

func (e *Error) Unwrap() error {
	return e.Err
}
