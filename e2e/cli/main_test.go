// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

//go:build e2e

package cli

import (
	"cmp"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestScript runs the txtar scripts in this directory against a real gitwire
// binary and a real git. Set GITWIRE to the binary under test, for example:
//
//	go build -o /tmp/gitwire ./cmd/gitwire
//	GITWIRE=/tmp/gitwire go test -tags e2e ./e2e/cli -v
func TestScript(t *testing.T) {
	gitwire := cmp.Or(os.Getenv("GITWIRE"), "gitwire")

	testscript.Run(t, testscript.Params{
		Dir: ".",
		Setup: func(e *testscript.Env) error {
			e.Vars = append(e.Vars,
				"GITWIRE="+gitwire,
				// Scripts create their own upstream repos; keep git
				// deterministic and offline.
				"GIT_AUTHOR_NAME=e2e",
				"GIT_AUTHOR_EMAIL=e2e@localhost",
				"GIT_COMMITTER_NAME=e2e",
				"GIT_COMMITTER_EMAIL=e2e@localhost",
				"GIT_CONFIG_NOSYSTEM=1",
			)
			for _, kv := range os.Environ() {
				if strings.HasPrefix(kv, "E2E_") {
					e.Vars = append(e.Vars, kv)
				}
			}
			return nil
		},
		Condition: func(cond string) (bool, error) {
			args := strings.Split(cond, ":")
			switch args[0] {
			case "env":
				if len(args) < 2 {
					return false, fmt.Errorf("syntax: [env:SOME_VAR]")
				}
				return os.Getenv(args[1]) != "", nil
			default:
				return false, fmt.Errorf("unknown condition %s", args[0])
			}
		},
		Cmds: map[string]func(*testscript.TestScript, bool, []string){
			"expand": expandCmd,
		},
		// NB: To quickly update expectations in txtar files, re-run with
		// E2E_UPDATE=y, for example:
		//   E2E_UPDATE=y GITWIRE=/tmp/gitwire go test -tags e2e ./e2e/cli -run TestScript/sync_and_check -v -count=1
		UpdateScripts: os.Getenv("E2E_UPDATE") != "",
	})
}

// expandCmd implements a builtin command that rewrites a file in place,
// expanding ${VAR} references against the script environment. Scripts use it
// to point .gitwire entries at upstream repos created under $WORK.
func expandCmd(ts *testscript.TestScript, neg bool, args []string) {
	if neg || len(args) != 1 {
		ts.Fatalf("usage: expand file")
	}

	path := ts.MkAbs(args[0])
	data, err := os.ReadFile(path)
	ts.Check(err)

	expanded := os.Expand(string(data), func(name string) string {
		return ts.Getenv(name)
	})
	ts.Check(os.WriteFile(path, []byte(expanded), 0o644))
}
