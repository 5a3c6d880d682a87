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

package sample_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/sample"
	"github.com/Meinersbur/islgo/internal/core/space"
)

func i64row(vs ...int64) num.Row {
	r := make(num.Row, len(vs))
	for i, v := range vs {
		r[i] = num.FromInt64(v)
	}
	return r
}

func addIneq(b *adt.BasicMap, row num.Row) *adt.BasicMap {
	var idx int
	b, idx = b.AddInequality()
	for c, v := range row {
		b.SetIneqCoeff(idx, c, v)
	}
	return b
}

func interval(lo, hi int64) *adt.BasicMap {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 2)
	b = addIneq(b, i64row(-lo, 1))
	b = addIneq(b, i64row(hi, -1))
	return b
}

func TestBasicFindsPointInNonEmptyInterval(t *testing.T) {
	b := interval(3, 7)
	out, pt, ok := sample.Basic(b)
	require.True(t, ok)
	require.True(t, pt[1].Cmp(num.FromInt64(3)) >= 0)
	require.True(t, pt[1].Cmp(num.FromInt64(7)) <= 0)
	require.True(t, out.ContainsPoint(pt))
}

func TestBasicReportsEmptyForContradiction(t *testing.T) {
	b := interval(5, 3) // x >= 5 and x <= 3: empty
	out, _, ok := sample.Basic(b)
	require.False(t, ok)
	require.True(t, out.FastIsEmpty())
}

func TestBasicResolvesEqualityThatPinsAPoint(t *testing.T) {
	// x - 4 = 0, y free in [0,2]: the only integer point has x == 4.
	sp := space.NewSet(0, 2)
	b := adt.Alloc(sp, 1, 2)
	var idx int
	b, idx = b.AddEquality()
	b.SetEqCoeff(idx, 0, num.FromInt64(-4))
	b.SetEqCoeff(idx, 1, num.One)
	b = addIneq(b, i64row(0, 0, 1))
	b = addIneq(b, i64row(2, 0, -1))

	out, pt, ok := sample.Basic(b)
	require.True(t, ok)
	require.True(t, pt[1].Cmp(num.FromInt64(4)) == 0)
	require.True(t, out.ContainsPoint(pt))
}

func halfLine() *adt.BasicMap {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 1)
	b = addIneq(b, i64row(0, 1)) // x >= 0, no upper bound
	return b
}

func TestBasicFindsPointInAHalfLineUnboundedAbove(t *testing.T) {
	b := halfLine()
	out, pt, ok := sample.Basic(b)
	require.True(t, ok)
	require.True(t, pt[1].Cmp(num.Zero) >= 0)
	require.True(t, out.ContainsPoint(pt))
	// The set was never proven empty, so sampling it must not have
	// corrupted it via MarkEmpty (spec §8's "sample(B) ∈ B" invariant).
	require.False(t, out.FastIsEmpty())
}

func TestBasicFindsPointInADimensionUnboundedInBothDirections(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 0) // no constraints at all: x ranges over all of Z
	out, pt, ok := sample.Basic(b)
	require.True(t, ok)
	require.True(t, out.ContainsPoint(pt))
	require.False(t, out.FastIsEmpty())
}

func TestBasicCombinesABoundedAndAnUnboundedDimension(t *testing.T) {
	// {[x,y] : 0<=x<=2, y>=0}: x is bounded, y is unbounded above.
	sp := space.NewSet(0, 2)
	b := adt.Alloc(sp, 0, 3)
	b = addIneq(b, i64row(0, 1, 0))
	b = addIneq(b, i64row(2, -1, 0))
	b = addIneq(b, i64row(0, 0, 1))
	out, pt, ok := sample.Basic(b)
	require.True(t, ok)
	require.True(t, out.ContainsPoint(pt))
	require.False(t, out.FastIsEmpty())
}

func TestBasicReturnsCachedSampleWithoutResearching(t *testing.T) {
	b := interval(0, 10)
	b, pt1, ok := sample.Basic(b)
	require.True(t, ok)

	b, pt2, ok := sample.Basic(b)
	require.True(t, ok)
	require.True(t, pt1[1].Cmp(pt2[1]) == 0)
}
