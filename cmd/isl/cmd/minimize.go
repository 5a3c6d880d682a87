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

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Meinersbur/islgo/internal/core/ilp"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/tab"
	"github.com/Meinersbur/islgo/internal/encoding/polylib"
)

// readObjective reads one line of whitespace-separated integers: either
// dim coefficients (a linear objective, implicitly affine with constant
// term 0) or dim+1 (the constant term first), matching
// polyhedron_minimize.c's isl_vec_lin_to_aff/vec_ror pair.
func readObjective(rd *polylib.Reader, dim int) (num.Row, error) {
	line, err := rd.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("minimize: reading objective: %w", err)
	}
	fields := strings.Fields(line)
	vals := make([]num.Int, len(fields))
	for i, f := range fields {
		v, err := num.FromString(f)
		if err != nil {
			return nil, fmt.Errorf("minimize: objective coefficient %q: %w", f, err)
		}
		vals[i] = v
	}
	switch len(vals) {
	case dim:
		return append(num.Row{num.Zero}, vals...), nil
	case dim + 1:
		return vals, nil
	default:
		return nil, fmt.Errorf("minimize: objective has %d coefficients, want %d or %d", len(vals), dim, dim+1)
	}
}

func newMinimizeCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "minimize",
		Short: "solve an integer linear program: minimize an affine objective over a basic set read from stdin",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			rd := polylib.NewReader(cobraCmd.InOrStdin())
			m, err := rd.ReadMatrix(0, 0, -1)
			if err != nil {
				return fmt.Errorf("minimize: %w", err)
			}
			obj, err := readObjective(rd, m.NOut)
			if err != nil {
				return err
			}

			b := m.ToBasicSet()
			// obj only carries the tuple's own coefficients; pad it out to
			// b.Width() so the div columns tab.build allocates for m's
			// exist columns get a zero coefficient rather than going
			// unaddressed.
			full := make(num.Row, b.Width())
			copy(full, obj)
			obj = full

			w := cobraCmd.OutOrStdout()
			oc, opt, sol, err := ilp.Minimize(b, obj)
			if err != nil {
				return fmt.Errorf("minimize: %w", err)
			}
			switch oc {
			case tab.ErrorResult:
				fmt.Fprintln(w, "error")
			case tab.EmptyResult:
				fmt.Fprintln(w, "empty")
			case tab.Unbounded:
				fmt.Fprintln(w, "unbounded")
			case tab.Ok:
				// sol's leading entry is the constant-column's own
				// coefficient (always 1); only the coordinates after it
				// are the solution point.
				coords := sol[1:]
				terms := make([]string, len(coords))
				for i, v := range coords {
					terms[i] = v.String()
				}
				fmt.Fprintf(w, "%s %s\n", strings.Join(terms, " "), opt.String())
			}
			return nil
		},
	}
}
