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

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/tab"
	"github.com/Meinersbur/islgo/internal/encoding/polylib"
)

// scanAll enumerates every integer point of a bounded basic set, in the
// dimension-by-dimension depth-first style of polytope_scan.c's
// scan_basic_set: fix the leading free dimensions one at a time, bound
// the next by a pair of tab.Minimize/tab.Maximize calls over the
// partially fixed set, and recurse over every integer value in that
// range. Unlike polytope_scan.c, no reduced basis is computed first; a
// CLI-scale enumeration tool has no need for polytope_scan.c's
// performance tuning for deeply skewed shapes.
func scanAll(b *adt.BasicMap, dim int, emit func(num.Row)) error {
	total := b.Space().Total()
	fixed := make(num.Row, total)
	fixed[0] = num.One
	return scanDim(b, 0, dim, fixed, emit)
}

func scanDim(b *adt.BasicMap, i, dim int, fixed num.Row, emit func(num.Row)) error {
	if i == dim {
		emit(append(num.Row(nil), fixed...))
		return nil
	}

	col := 1 + i
	obj := make(num.Row, b.Width())
	obj[col] = num.One

	ocMin, lo, _, err := tab.Minimize(b, obj)
	if err != nil {
		return err
	}
	switch ocMin {
	case tab.EmptyResult:
		return nil
	case tab.Unbounded:
		return fmt.Errorf("scan: dimension %d is unbounded below", i)
	case tab.ErrorResult:
		return fmt.Errorf("scan: dimension %d: %v", i, err)
	}
	ocMax, hi, _, err := tab.Maximize(b, obj)
	if err != nil {
		return err
	}
	switch ocMax {
	case tab.EmptyResult:
		return nil
	case tab.Unbounded:
		return fmt.Errorf("scan: dimension %d is unbounded above", i)
	case tab.ErrorResult:
		return fmt.Errorf("scan: dimension %d: %v", i, err)
	}

	loN, hiN := lo.Ceil(), hi.Floor()
	for v := loN; v.Cmp(hiN) <= 0; v = v.Add(num.One) {
		pinned := b.Copy()
		var idx int
		pinned, idx = pinned.AddEquality()
		pinned.SetEqCoeff(idx, col, num.MinusOne)
		pinned.SetEqCoeff(idx, 0, v)

		next := append(num.Row(nil), fixed...)
		next[col] = v
		if err := scanDim(pinned, i+1, dim, next, emit); err != nil {
			return err
		}
	}
	return nil
}

func newScanCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "enumerate every integer point of a bounded basic set read from stdin",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			m, err := polylib.ReadMatrix(cobraCmd.InOrStdin(), 0, 0, -1)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			b := m.ToBasicSet()
			w := cobraCmd.OutOrStdout()
			return scanAll(b, m.NOut, func(pt num.Row) {
				terms := make([]string, m.NOut)
				for j := 0; j < m.NOut; j++ {
					terms[j] = pt[1+j].String()
				}
				fmt.Fprintln(w, strings.Join(terms, " "))
			})
		},
	}
}
