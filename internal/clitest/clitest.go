// Copyright 2019 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clitest runs cmd/isl's Command against in-memory stdin/stdout
// and compares the output to a golden string, the way the teacher's
// internal/cuetest ran cmd/cue. Unlike the teacher's harness, there is no
// working directory to change into and no shell-style quoted command
// string to split apart: every isl invocation is just a PolyLib stream on
// stdin and a flat argument list, so Run takes args directly.
package clitest

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/diff"

	"github.com/Meinersbur/islgo/cmd/isl/cmd"
	"github.com/Meinersbur/islgo/internal/ctxio"
)

// Config holds the optional input and expected output of a Run.
type Config struct {
	Stdin  string
	Golden string
}

// Run executes the isl command tree with args and cfg.Stdin wired up as
// stdin, and compares the captured stdout against cfg.Golden.
func Run(t *testing.T, args []string, cfg Config) {
	t.Helper()

	var out bytes.Buffer
	ctx := context.Background()
	ctx = ctxio.WithStdin(ctx, strings.NewReader(cfg.Stdin))
	ctx = ctxio.WithStdout(ctx, &out)
	ctx = ctxio.WithStderr(ctx, &out)

	c, err := cmd.New(ctx, args)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(ctx); err != nil {
		t.Fatalf("isl %s: %v\noutput so far:\n%s", strings.Join(args, " "), err, out.String())
	}

	got := strings.TrimSpace(out.String())
	want := strings.TrimSpace(cfg.Golden)
	if got != want {
		t.Errorf("isl %s: output differs:\n%s", strings.Join(args, " "), diff.Diff(got, want))
	}
}
