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
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/debug"
	"github.com/Meinersbur/islgo/internal/core/ilp"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/pip"
	"github.com/Meinersbur/islgo/internal/core/tab"
	"github.com/Meinersbur/islgo/internal/encoding/polylib"
)

// pipOptions is pip.c's trailing keyword-line grammar: Maximize,
// Rational, Urs_parms, Urs_unknowns, one per line after the two matrices.
type pipOptions struct {
	maximize    bool
	rational    bool
	ursParms    bool
	ursUnknowns bool
}

// readPipInput follows pip.c's own input grammar: a context matrix (the
// parameter domain, as a basic set over its own "set dims"), a literal
// "-1" line, the problem matrix (a basic set over context's dims as
// parameters), then the optional keyword lines.
func readPipInput(r io.Reader) (context, problem *polylib.Matrix, opts pipOptions, err error) {
	rd := polylib.NewReader(r)

	context, err = rd.ReadMatrix(0, 0, -1)
	if err != nil {
		return nil, nil, opts, fmt.Errorf("pip: reading context matrix: %w", err)
	}

	sentinel, err := rd.ReadLine()
	if err != nil {
		return nil, nil, opts, fmt.Errorf("pip: reading -1 sentinel: %w", err)
	}
	if sentinel != "-1" {
		return nil, nil, opts, fmt.Errorf("pip: expected -1 sentinel, got %q", sentinel)
	}

	problem, err = rd.ReadMatrix(context.NOut, 0, -1)
	if err != nil {
		return nil, nil, opts, fmt.Errorf("pip: reading problem matrix: %w", err)
	}

	for {
		line, err := rd.ReadLine()
		if err != nil {
			break
		}
		switch {
		case strings.EqualFold(line, "Maximize"):
			opts.maximize = true
		case strings.EqualFold(line, "Rational"):
			opts.rational = true
		case strings.EqualFold(line, "Urs_parms"):
			opts.ursParms = true
		case strings.EqualFold(line, "Urs_unknowns"):
			opts.ursUnknowns = true
		}
	}
	return context, problem, opts, nil
}

func newPipCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "pip",
		Short: "solve a parametric integer program: lexicographically minimize a basic map over a parameter domain",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			context, problem, opts, err := readPipInput(cobraCmd.InOrStdin())
			if err != nil {
				return err
			}
			if opts.rational {
				return fmt.Errorf("pip: Rational mode is not supported")
			}
			if opts.maximize {
				return fmt.Errorf("pip: Maximize is not supported, only lexicographic minimization")
			}

			domain := context.ToBasicSet()
			b := problem.ToBasicMap()

			pieces, empty := pip.PartialLexmin(b, domain)

			if verify, _ := cobraCmd.Flags().GetBool("verify"); verify {
				if err := verifyPip(b, domain, pieces, empty); err != nil {
					return fmt.Errorf("pip: verify: %w", err)
				}
			}

			w := cobraCmd.OutOrStdout()
			for _, leaf := range pieces {
				fmt.Fprintf(w, "%s => ", debug.BasicMapString(leaf.Domain, &debug.Config{Compact: true}))
				formulas := make([]string, len(leaf.Formula))
				for i, row := range leaf.Formula {
					terms := make([]string, len(row))
					for j, v := range row {
						terms[j] = v.String()
					}
					formulas[i] = strings.Join(terms, ", ")
				}
				fmt.Fprintln(w, strings.Join(formulas, " ; "))
			}
			fmt.Fprintln(w, "no solution:")
			for _, e := range empty {
				fmt.Fprintln(w, debug.BasicMapString(e, &debug.Config{Compact: true}))
			}
			return nil
		},
	}
}

// verifyPip is pip.c's check_solution/opt_at verify mode: scan every
// integer point of domain and, at each, compute the lexicographic
// optimum of b "manually" by successively ilp-solving one output
// dimension at a time and fixing it before moving to the next, then
// compare that against whichever piece's formula covers the point (or,
// if none does, confirm the point falls in one of the empty pieces).
//
// domain must be bounded, since the cross-check itself relies on
// enumerating it in full.
func verifyPip(b, domain *adt.BasicMap, pieces []pip.Leaf, empty []*adt.BasicMap) (err error) {
	defer func() {
		if r := recover(); r != nil {
			mismatch, ok := r.(verifyMismatch)
			if !ok {
				panic(r)
			}
			err = mismatch
		}
	}()

	nParam := domain.Space().NOut()
	return scanAll(domain, nParam, func(paramPt num.Row) {
		opt, ok, err := optAt(b, paramPt)
		if err != nil {
			panic(verifyMismatch{paramPt, err.Error()})
		}
		if !ok {
			for _, e := range empty {
				if e.ContainsPoint(paramPt) {
					return
				}
			}
			panic(verifyMismatch{paramPt, "no piece claims emptiness at this parameter point"})
		}

		for _, leaf := range pieces {
			if !leaf.Domain.ContainsPoint(paramPt) {
				continue
			}
			for i, row := range leaf.Formula {
				if num.Dot(row, paramPt).Cmp(opt[i]) != 0 {
					panic(verifyMismatch{paramPt, fmt.Sprintf("dimension %d: formula gives %s, opt_at gives %s", i, num.Dot(row, paramPt), opt[i])})
				}
			}
			return
		}
		panic(verifyMismatch{paramPt, "no piece's domain covers this parameter point"})
	})
}

// verifyMismatch carries a verification failure out of scanAll's emit
// callback, which has no error return of its own; verifyPip recovers it
// at its own top level and reports it as a plain error.
type verifyMismatch struct {
	at  num.Row
	msg string
}

func (m verifyMismatch) Error() string {
	terms := make([]string, len(m.at))
	for i, v := range m.at {
		terms[i] = v.String()
	}
	return fmt.Sprintf("at parameters [%s]: %s", strings.Join(terms, " "), m.msg)
}

// optAt computes the lexicographically minimal point of b for the given
// parameter values, by fixing params then repeatedly calling ilp.Minimize
// on the next output dimension and fixing its optimum before moving on,
// mirroring pip.c's opt_at.
func optAt(b *adt.BasicMap, paramPt num.Row) (num.Row, bool, error) {
	sp := b.Space()
	nParam, nOut := sp.NParam(), sp.NOut()

	cur := b.Copy()
	for j := 0; j < nParam; j++ {
		var idx int
		cur, idx = cur.AddEquality()
		cur.SetEqCoeff(idx, 1+j, num.MinusOne)
		cur.SetEqCoeff(idx, 0, paramPt[1+j])
	}

	opt := make(num.Row, nOut)
	for i := 0; i < nOut; i++ {
		obj := make(num.Row, cur.Width())
		obj[1+nParam+i] = num.One

		oc, v, _, err := ilp.Minimize(cur, obj)
		switch oc {
		case tab.EmptyResult:
			return nil, false, nil
		case tab.Unbounded:
			return nil, false, fmt.Errorf("optAt: dimension %d is unbounded", i)
		case tab.ErrorResult:
			return nil, false, err
		}
		opt[i] = v

		var idx int
		cur, idx = cur.AddEquality()
		cur.SetEqCoeff(idx, 1+nParam+i, num.MinusOne)
		cur.SetEqCoeff(idx, 0, v)
	}
	return opt, true, nil
}
