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

// Minimize returns the minimum value of obj (a row laid out like a
// constraint: [const, param..., in..., out..., div...]) over b's feasible
// region, along with the vertex attaining it. Maximize is its mirror. A
// non-nil error is only ever paired with ErrorResult (see ErrNoConvergence).
func Minimize(b *adt.BasicMap, obj num.Row) (Outcome, Rat, Vector, error) {
	oc, v, pt, err := Maximize(b, negateRow(obj))
	if oc != Ok {
		return oc, RatZero, pt, err
	}
	return Ok, v.Neg(), pt, nil
}

// Maximize returns the maximum value of obj over b's feasible region.
func Maximize(b *adt.BasicMap, obj num.Row) (Outcome, Rat, Vector, error) {
	s := build(b)
	if oc, err := s.feasible(); oc != Ok {
		return oc, RatZero, nil, err
	}
	return s.optimize(obj)
}

func negateRow(r num.Row) num.Row {
	out := make(num.Row, len(r))
	for i, v := range r {
		out[i] = v.Neg()
	}
	return out
}

// optimize runs Phase 2 of the simplex method (s already feasible):
// maximize the objective by repeatedly entering a column with a positive
// reduced cost (Bland's rule: smallest index) and leaving via the minimum
// ratio test over rows basic on a slack.
//
// Structural columns are sign-unrestricted, so a negative reduced cost on
// one is made usable by negating that column (an equivalent "x' = -x"
// substitution, recorded in sign) rather than left uncandidated; slack
// columns, being sign-restricted, are never negated — a negative reduced
// cost there is genuinely not improving.
func (s *state) optimize(obj num.Row) (Outcome, Rat, Vector, error) {
	objRow := make([]Rat, s.cols)
	objRow[0] = RatFromInt(obj[0])
	for j := 0; j < s.k; j++ {
		objRow[1+j] = RatFromInt(obj[1+j])
	}
	// Eliminate every currently-basic column from the objective row so it
	// reads purely in terms of the current nonbasic variables.
	for v := 0; v < s.k; v++ {
		r := s.basicRow[v]
		if r == -1 || objRow[1+v].IsZero() {
			continue
		}
		eliminate(objRow, s.rows[r], 1+v)
	}

	sign := make([]int, s.k)
	for i := range sign {
		sign[i] = 1
	}

	for iter := 0; iter < maxPivots; iter++ {
		for j := 0; j < s.k; j++ {
			if s.basicRow[j] == -1 && objRow[1+j].IsNegative() {
				negateColumn(s, objRow, 1+j)
				sign[j] = -sign[j]
			}
		}

		e := -1
		for c := 1; c < s.cols; c++ {
			v := c - 1
			if s.basicRow[v] != -1 {
				continue
			}
			if objRow[c].IsPositive() {
				e = c
				break
			}
		}
		if e == -1 {
			return Ok, objRow[0], s.sample(sign), nil
		}

		r := -1
		best := RatZero
		for i, row := range s.rows {
			if !isSlack(s, s.basis[i]) || !row[e].IsNegative() {
				continue
			}
			ratio := row[0].Div(row[e].Neg())
			if r == -1 || ratio.Cmp(best) < 0 ||
				(ratio.Cmp(best) == 0 && s.basis[i] < s.basis[r]) {
				r, best = i, ratio
			}
		}
		if r == -1 {
			return Unbounded, RatZero, nil, nil
		}
		s.pivot(r, e)
		eliminate(objRow, s.rows[r], e)
	}
	return ErrorResult, RatZero, nil, convergenceError("optimization", maxPivots)
}

// eliminate subtracts row[col]-scaled target from dst so that dst[col]
// becomes zero, mirroring the row operation pivot performs on the main
// tableau but applied to the auxiliary objective row.
func eliminate(dst, row []Rat, col int) {
	factor := dst[col]
	if factor.IsZero() {
		return
	}
	for c := range dst {
		dst[c] = dst[c].Sub(factor.Mul(row[c]))
	}
}

func negateColumn(s *state, objRow []Rat, col int) {
	for _, row := range s.rows {
		row[col] = row[col].Neg()
	}
	objRow[col] = objRow[col].Neg()
}

// DetectImplicitEqualities promotes every inequality of b that is tight
// at every feasible point (its minimum value over b is exactly 0) to an
// equality, mirroring isl_tab.c's detect_implicit_equalities.
func DetectImplicitEqualities(b *adt.BasicMap) *adt.BasicMap {
	for i := 0; i < b.NIneq(); i++ {
		row := b.Ineq(i)
		oc, v, _, _ := Minimize(b, row)
		if oc == Ok && v.IsZero() {
			b = b.InequalityToEquality(i)
			i--
		}
	}
	return b
}

// DetectRedundant drops every inequality of b that is implied by the
// others: with that one constraint temporarily removed, its own row still
// minimizes to >= 0 over what remains, so it was adding nothing.
func DetectRedundant(b *adt.BasicMap) *adt.BasicMap {
	for i := 0; i < b.NIneq(); i++ {
		row := b.Ineq(i)
		rest := b.Copy().DropInequality(i)
		oc, v, _, _ := Minimize(rest, row)
		if oc == Ok && !v.IsNegative() {
			b = b.DropInequality(i)
			i--
		}
	}
	return b
}
