// Copyright 2020 CUE Authors
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

// Package cmd implements the bundled CLI drivers of spec §6: pip, sample,
// minimize, detect-equalities and scan. Each reads one or two PolyLib
// matrices from stdin and writes its result to stdout (spec's "Persistent
// state: none. All artefacts are in-memory.").
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Meinersbur/islgo/internal/ctxio"
)

// Command wraps the active cobra command the way the teacher's cmd/cue
// does, so subcommands can reach the injected stdin/stdout through ctx
// instead of the process-global os.Stdin/os.Stdout.
type Command struct {
	*cobra.Command
	root *cobra.Command
}

func newRootCmd() *Command {
	root := &cobra.Command{
		Use:          "isl",
		Short:        "isl evaluates Presburger arithmetic problems over integer polyhedra.",
		Long: `isl reads basic sets and basic maps in PolyLib matrix format from
stdin and runs one of the bundled solvers: pip (parametric integer
programming), sample (find one integer point), minimize (integer linear
programming), detect-equalities (tighten implicit equalities) or scan
(enumerate every integer point of a bounded set).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &Command{Command: root, root: root}

	root.AddCommand(
		newPipCmd(c),
		newSampleCmd(c),
		newMinimizeCmd(c),
		newDetectEqualitiesCmd(c),
		newScanCmd(c),
	)

	root.PersistentFlags().BoolP("verify", "T", false, "cross-check the parametric solution against a brute-force scan")

	return c
}

// New builds the command tree and primes it with args, mirroring the
// teacher's New(args) entry point.
func New(ctx context.Context, args []string) (*Command, error) {
	c := newRootCmd()
	c.root.SetArgs(args)
	c.root.SetIn(ctxio.Stdin(ctx))
	c.root.SetOut(ctxio.Stdout(ctx))
	c.root.SetErr(ctxio.Stderr(ctx))
	return c, nil
}

// Run executes the command tree.
func (c *Command) Run(ctx context.Context) error {
	return c.root.ExecuteContext(ctx)
}

// Main runs the isl tool and returns the code for passing to os.Exit.
func Main() int {
	ctx := context.Background()
	cmd, err := New(ctx, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := cmd.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
