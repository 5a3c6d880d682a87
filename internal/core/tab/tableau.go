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

package tab

import (
	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
)

// Outcome is spec §7's LP/sampling result taxonomy: a recoverable, typed
// return value, never a panic (that split belongs to adt.Fault).
type Outcome int

const (
	Ok Outcome = iota
	EmptyResult
	Unbounded
	ErrorResult
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case EmptyResult:
		return "empty"
	case Unbounded:
		return "unbounded"
	}
	return "error"
}

// Vector is a rational point, one entry per structural variable (spec
// §3's param/in/out/div columns, omitting the leading constant column).
type Vector []Rat

// maxPivots bounds both the feasibility search and the optimization loop.
// Bland's rule (smallest-index entering/leaving variable) guarantees
// termination without cycling, so this is a defensive backstop against a
// bug, not a normal exit path; hitting it reports ErrorResult rather than
// looping forever.
const maxPivots = 200000

// state is the dense dictionary-form simplex tableau that spec §4.3
// builds from a basic map's constraints. Every row expresses a currently
// basic variable — either a structural variable (param/in/out/div column,
// sign-unrestricted) or a constraint's slack (sign-restricted, >= 0) — as
// RHS + sum(coeff[c] * nonbasic column c). Pivoting is the same full
// Gauss-Jordan row-combination idiom as adt.(*BasicMap).Gauss and
// mat.HermiteNormalForm, generalized from num.Int to Rat.
//
// isl_tab.c instead keeps one incremental tableau with an undo stack, so
// a caller can backtrack to an earlier state cheaply (sample's recursive
// search, subtract's DFS). Here each exploration branch clones the dense
// matrix instead (see clone); simpler to get right, at the cost of a copy
// per branch — an explicit, budget-driven simplification, not an
// oversight.
type state struct {
	k        int // number of structural variables (== b.Width())
	nCon     int // number of constraint rows (2*NEq + NIneq)
	cols     int // 1 (RHS) + k + nCon
	rows     [][]Rat
	basis    []int // basis[row] = variable index: structural 0..k-1, slack k..k+nCon-1
	basicRow []int // basicRow[v] = row index if v is basic, else -1
}

func isSlack(s *state, v int) bool { return v >= s.k }

// build installs one row per "sign*row >= 0" constraint, as a slack
// variable basic on its own identity column: slack = sign*row[0] +
// sum(sign*row[1+j]*x_j). An equality is split into its two directions so
// every row is a plain >= bound, matching tableau's uniform row shape.
func build(b *adt.BasicMap) *state {
	// b.Width() includes the leading constant column; k counts only the
	// structural variables (param/in/out/div), each of which gets its own
	// tableau column alongside the per-constraint slacks.
	k := b.Width() - 1
	nCon := 2*b.NEq() + b.NIneq()
	s := &state{k: k, nCon: nCon, cols: 1 + k + nCon}
	s.rows = make([][]Rat, nCon)
	s.basis = make([]int, nCon)
	s.basicRow = make([]int, k+nCon)
	for i := range s.basicRow {
		s.basicRow[i] = -1
	}

	r := 0
	install := func(row num.Row, sign int) {
		m := make([]Rat, s.cols)
		sr := RatFromInt(num.FromInt64(int64(sign)))
		m[0] = sr.Mul(RatFromInt(row[0]))
		for j := 0; j < k; j++ {
			m[1+j] = sr.Mul(RatFromInt(row[1+j]))
		}
		m[1+k+r] = RatOne
		s.rows[r] = m
		s.basis[r] = k + r
		s.basicRow[k+r] = r
		r++
	}
	for i := 0; i < b.NEq(); i++ {
		row := b.Eq(i)
		install(row, 1)
		install(row, -1)
	}
	for i := 0; i < b.NIneq(); i++ {
		install(b.Ineq(i), 1)
	}
	return s
}

func (s *state) clone() *state {
	out := &state{k: s.k, nCon: s.nCon, cols: s.cols}
	out.rows = make([][]Rat, len(s.rows))
	for i, r := range s.rows {
		nr := make([]Rat, len(r))
		copy(nr, r)
		out.rows[i] = nr
	}
	out.basis = append([]int(nil), s.basis...)
	out.basicRow = append([]int(nil), s.basicRow...)
	return out
}

// pivot makes column e basic in row r via Gauss-Jordan elimination: row r
// is scaled so M[r][e]==1, then subtracted (scaled) from every other row
// to zero out their e column.
func (s *state) pivot(r, e int) {
	piv := s.rows[r][e]
	row := s.rows[r]
	for c := range row {
		row[c] = row[c].Div(piv)
	}
	for i, other := range s.rows {
		if i == r {
			continue
		}
		factor := other[e]
		if factor.IsZero() {
			continue
		}
		for c := range other {
			other[c] = other[c].Sub(factor.Mul(row[c]))
		}
	}
	leaving := s.basis[r]
	s.basicRow[leaving] = -1
	s.basis[r] = e
	s.basicRow[e] = r
}

// feasible runs dual-simplex-style Phase 1: while some row basic on a
// slack has a negative RHS, it is infeasible under the current basis, so
// pivot a nonbasic variable into that row. Structural (sign-unrestricted)
// columns are preferred and may be used regardless of the sign of their
// coefficient, since an unrestricted variable can move either direction;
// a slack column is only usable with a positive coefficient, since it can
// only increase from its current nonbasic value of 0.
//
// This is a deliberate simplification of isl_tab.c's incremental
// undo-stack dual simplex: no anti-cycling ratio test beyond Bland's rule
// (smallest column index), and a bounded iteration count that reports
// ErrorResult rather than looping forever on a case this scheme cannot
// resolve.
func (s *state) feasible() (Outcome, error) {
	for iter := 0; iter < maxPivots; iter++ {
		r := -1
		for i, row := range s.rows {
			if isSlack(s, s.basis[i]) && row[0].IsNegative() {
				r = i
				break
			}
		}
		if r == -1 {
			return Ok, nil
		}
		row := s.rows[r]
		e := -1
		for j := 0; j < s.k; j++ {
			if s.basicRow[j] == -1 && !row[1+j].IsZero() {
				e = 1 + j
				break
			}
		}
		if e == -1 {
			for j := 0; j < s.nCon; j++ {
				v := s.k + j
				if s.basicRow[v] == -1 && row[1+v].IsPositive() {
					e = 1 + v
					break
				}
			}
		}
		if e == -1 {
			return EmptyResult, nil
		}
		s.pivot(r, e)
	}
	return ErrorResult, convergenceError("feasibility search", maxPivots)
}

// Feasible reports whether b's constraints admit a rational point at all
// (spec §7's feasibility check), independent of objective optimization.
func Feasible(b *adt.BasicMap) Outcome {
	s := build(b)
	oc, _ := s.feasible()
	return oc
}

// sample reads out the current dictionary's vertex: nonbasic structural
// variables are 0, basic ones are their row's RHS, each scaled back by
// sign (see optimize's column-negation trick for unrestricted variables).
func (s *state) sample(sign []int) Vector {
	v := make(Vector, s.k)
	for j := 0; j < s.k; j++ {
		if r := s.basicRow[j]; r != -1 {
			v[j] = s.rows[r][0]
		} else {
			v[j] = RatZero
		}
		if sign != nil && sign[j] < 0 {
			v[j] = v[j].Neg()
		}
	}
	return v
}
