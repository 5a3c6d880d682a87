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

package adt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/space"
)

func i64row(vs ...int64) num.Row {
	r := make(num.Row, len(vs))
	for i, v := range vs {
		r[i] = num.FromInt64(v)
	}
	return r
}

// square builds { [x,y] : 0 <= x <= n, 0 <= y <= n }, a set over two out
// dims and no params.
func square(n int64) *adt.BasicMap {
	sp := space.NewSet(0, 2)
	b := adt.Alloc(sp, 0, 4)
	add := func(row num.Row) {
		var idx int
		b, idx = b.AddInequality()
		for i, v := range row {
			b.SetIneqCoeff(idx, i, v)
		}
	}
	add(i64row(0, 1, 0))  // x >= 0
	add(i64row(n, -1, 0)) // n - x >= 0
	add(i64row(0, 0, 1))  // y >= 0
	add(i64row(n, 0, -1)) // n - y >= 0
	return b
}

func TestRefCountCopyFree(t *testing.T) {
	b := square(3)
	require.EqualValues(t, 1, b.RefCount())
	c := b.Copy()
	require.Same(t, b, c)
	require.EqualValues(t, 2, b.RefCount())
	c.Free()
	require.EqualValues(t, 1, b.RefCount())
}

func TestCopyOnWriteDoesNotAliasAfterMutation(t *testing.T) {
	b := square(3)
	c := b.Copy()
	c2, idx := c.AddInequality()
	c2.SetIneqCoeff(idx, 0, num.FromInt64(1))
	require.Equal(t, 4, b.NIneq(), "mutating the copy must not affect the original")
	require.Equal(t, 5, c2.NIneq())
}

func TestContainsPoint(t *testing.T) {
	// ContainsPoint takes a full coefficient-row-shaped vector: a leading
	// 1 for the constant column, then one entry per param/in/out dim.
	b := square(3)
	require.True(t, b.ContainsPoint(i64row(1, 1, 2)))
	require.False(t, b.ContainsPoint(i64row(1, 4, 0)))
	require.False(t, b.ContainsPoint(i64row(1, -1, 0)))
}

func TestEmptySetIsEmpty(t *testing.T) {
	sp := space.NewSet(0, 1)
	e := adt.EmptySet(sp)
	require.True(t, e.FastIsEmpty())
	require.True(t, e.IsEmpty())
}

func TestUniverseIsNotEmpty(t *testing.T) {
	sp := space.NewSet(0, 1)
	u := adt.Universe(sp)
	require.True(t, u.IsUniverse())
	require.False(t, u.IsEmpty())
}

func TestNormalizeConstraintsDividesByGcd(t *testing.T) {
	sp := space.NewSet(0, 2)
	b := adt.Alloc(sp, 0, 1)
	b, idx := b.AddInequality()
	b.SetIneqCoeff(idx, 0, num.FromInt64(6)) // const
	b.SetIneqCoeff(idx, 1, num.FromInt64(4)) // 4x
	b.SetIneqCoeff(idx, 2, num.FromInt64(2)) // 2y; 4x + 2y + 6 >= 0, gcd=2
	b = b.NormalizeConstraints()
	require.True(t, b.Ineq(0)[1].Cmp(num.FromInt64(2)) == 0)
	require.True(t, b.Ineq(0)[2].Cmp(num.FromInt64(1)) == 0)
	require.True(t, b.Ineq(0)[0].Cmp(num.FromInt64(3)) == 0)
}

func TestNormalizeConstraintsDetectsInfeasibleEquality(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 1, 0)
	b, idx := b.AddEquality()
	b.SetEqCoeff(idx, 0, num.FromInt64(1)) // const
	b.SetEqCoeff(idx, 1, num.FromInt64(2)) // 2x + 1 = 0, no integer solution
	b = b.NormalizeConstraints()
	require.True(t, b.FastIsEmpty())
}

func TestGaussEliminatesEquality(t *testing.T) {
	// y - 2x = 0, 3 >= x >= 0 (2 dims), Gauss should leave the equality in
	// reduced form and not change the set of solutions.
	sp := space.NewSet(0, 2)
	b := adt.Alloc(sp, 1, 2)
	b, eidx := b.AddEquality()
	b.SetEqCoeff(eidx, 1, num.FromInt64(-2))
	b.SetEqCoeff(eidx, 2, num.FromInt64(1))
	var idx int
	b, idx = b.AddInequality()
	b.SetIneqCoeff(idx, 1, num.FromInt64(1))
	b, idx = b.AddInequality()
	b.SetIneqCoeff(idx, 0, num.FromInt64(3))
	b.SetIneqCoeff(idx, 1, num.FromInt64(-1))

	b = b.Gauss()
	require.Equal(t, 1, b.NEq())
	require.True(t, b.ContainsPoint(i64row(1, 1, 2)))
	require.False(t, b.ContainsPoint(i64row(1, 1, 3)))
}

func TestProjectOutRemovesDimension(t *testing.T) {
	b := square(3)
	p := b.ProjectOut(space.Out, 1, 1)
	require.Equal(t, 1, p.Space().NOut())
	require.True(t, p.ContainsPoint(i64row(1, 2)))
	require.False(t, p.ContainsPoint(i64row(1, 5)))
}

func TestReverseSwapsInOut(t *testing.T) {
	sp := space.New(0, 1, 2)
	b := adt.Alloc(sp, 0, 1)
	b, idx := b.AddInequality()
	b.SetIneqCoeff(idx, 0, num.FromInt64(0))
	b.SetIneqCoeff(idx, 1, num.FromInt64(1)) // in0 >= 0

	r := b.Reverse()
	require.Equal(t, 2, r.Space().NIn())
	require.Equal(t, 1, r.Space().NOut())
}

func TestIntersectCombinesConstraints(t *testing.T) {
	a := square(5)
	sp := space.NewSet(0, 2)
	lower := adt.Alloc(sp, 0, 1)
	lower, idx := lower.AddInequality()
	lower.SetIneqCoeff(idx, 0, num.FromInt64(-2))
	lower.SetIneqCoeff(idx, 1, num.FromInt64(1)) // x - 2 >= 0

	r := adt.Intersect(a, lower)
	require.True(t, r.ContainsPoint(i64row(1, 3, 1)))
	require.False(t, r.ContainsPoint(i64row(1, 1, 1)))
}

func TestAddDimsWidensSpace(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Universe(sp)
	b = b.AddDims(space.Out, 2)
	require.Equal(t, 3, b.Space().NOut())
	require.Equal(t, 4, b.Width())
}

// TestSimplifyEliminatesDivPinnedByUnitEquality covers spec §4.1's
// eliminate_divs_eq: x - δ = 0, δ >= 0 pins δ to x and substitutes it
// away entirely, leaving x >= 0 over no divs.
func TestSimplifyEliminatesDivPinnedByUnitEquality(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 1, 1)
	b, didx := b.AddDiv()
	b = b.SetDiv(didx, num.FromInt64(2), i64row(0, 1)) // δ = floor(x/2)
	b, eidx := b.AddEquality()
	b.SetEqCoeff(eidx, 1, num.FromInt64(1))  // x
	b.SetEqCoeff(eidx, 2, num.FromInt64(-1)) // -δ
	b, iidx := b.AddInequality()
	b.SetIneqCoeff(iidx, 2, num.FromInt64(1)) // δ >= 0

	b = b.Simplify()
	require.Equal(t, 0, b.NDiv())
	require.Equal(t, 0, b.NEq())
	require.Equal(t, 1, b.NIneq())
	require.True(t, b.ContainsPoint(i64row(1, 0)))
	require.False(t, b.ContainsPoint(i64row(1, -1)))
}

// TestSimplifyEliminatesDivViaBoundedInequalities covers
// eliminate_divs_ineq: x - δ >= 0 and δ - x >= 0 bound δ to exactly x
// with only ±1 coefficients and no equality, so Fourier-Motzkin collapses
// them to a trivial row and the div disappears, leaving the universe.
func TestSimplifyEliminatesDivViaBoundedInequalities(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 2)
	b, didx := b.AddDiv()
	b = b.SetDiv(didx, num.FromInt64(1), i64row(0, 1))
	b, i1 := b.AddInequality()
	b.SetIneqCoeff(i1, 1, num.FromInt64(1))  // x
	b.SetIneqCoeff(i1, 2, num.FromInt64(-1)) // -δ
	b, i2 := b.AddInequality()
	b.SetIneqCoeff(i2, 1, num.FromInt64(-1)) // -x
	b.SetIneqCoeff(i2, 2, num.FromInt64(1))  // δ

	b = b.Simplify()
	require.Equal(t, 0, b.NDiv())
	require.True(t, b.IsUniverse())
}

// TestSimplifyDropsUnreferencedDiv covers remove_redundant_divs: a div
// that appears in no row at all constrains nothing and is dropped.
func TestSimplifyDropsUnreferencedDiv(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 1)
	b, didx := b.AddDiv()
	b = b.SetDiv(didx, num.FromInt64(2), i64row(0, 1))
	b, iidx := b.AddInequality()
	b.SetIneqCoeff(iidx, 1, num.FromInt64(1)) // x >= 0, never mentions δ

	b = b.Simplify()
	require.Equal(t, 0, b.NDiv())
	require.Equal(t, 1, b.NIneq())
}

// TestSimplifyNormalizesDivToLowestTerms covers normalize_divs: a div
// definition floor(2x/4) is equivalent to floor(x/2), and Simplify
// rewrites it to that lowest-terms form. The referencing row uses
// coefficient 3 on δ (coprime with x's coefficient 2, so
// NormalizeConstraints can't reduce it further and it never becomes ±1),
// so eliminate_divs_ineq never fires and the div survives to be
// normalized rather than eliminated.
func TestSimplifyNormalizesDivToLowestTerms(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 1)
	b, didx := b.AddDiv()
	b = b.SetDiv(didx, num.FromInt64(4), i64row(0, 2))
	b, iidx := b.AddInequality()
	b.SetIneqCoeff(iidx, 1, num.FromInt64(2)) // 2x
	b.SetIneqCoeff(iidx, 2, num.FromInt64(3)) // 3δ

	b = b.Simplify()
	require.Equal(t, 1, b.NDiv())
	got := b.DivDef(0)
	require.True(t, got.Denom.Cmp(num.FromInt64(2)) == 0)
	require.True(t, got.Def[1].Cmp(num.FromInt64(1)) == 0)
}

// TestSimplifyCollapsesDuplicateDivs covers remove_duplicate_divs: two
// divs with the same (Denom, Def) denote the same value, so one is
// pinned equal to the other and then eliminated, leaving a single div
// and a single (deduplicated) inequality.
func TestSimplifyCollapsesDuplicateDivs(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 2)
	b, d0 := b.AddDiv()
	b = b.SetDiv(d0, num.FromInt64(2), i64row(0, 1))
	b, d1 := b.AddDiv()
	b = b.SetDiv(d1, num.FromInt64(2), i64row(0, 1, 0))
	// Coefficients 2 and 3 (not ±1) keep eliminate_divs_ineq from firing
	// before NormalizeConstraints reduces each row by its own gcd.
	b, i1 := b.AddInequality()
	b.SetIneqCoeff(i1, 2, num.FromInt64(2)) // 2*δ0 >= 0
	b, i2 := b.AddInequality()
	b.SetIneqCoeff(i2, 3, num.FromInt64(3)) // 3*δ1 >= 0

	b = b.Simplify()
	require.Equal(t, 1, b.NDiv())
	require.Equal(t, 0, b.NEq())
	require.Equal(t, 1, b.NIneq())
	require.True(t, b.ContainsPoint(i64row(1, 2)))
	require.False(t, b.ContainsPoint(i64row(1, -3)))
}
