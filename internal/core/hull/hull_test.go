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

package hull_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/hull"
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

func addIneq(b *adt.BasicMap, row num.Row) *adt.BasicMap {
	var idx int
	b, idx = b.AddInequality()
	for c, v := range row {
		b.SetIneqCoeff(idx, c, v)
	}
	return b
}

func addEq(b *adt.BasicMap, row num.Row) *adt.BasicMap {
	var idx int
	b, idx = b.AddEquality()
	for c, v := range row {
		b.SetEqCoeff(idx, c, v)
	}
	return b
}

// segment returns {(x, y) | y == k, lo <= x <= hi}: a 1-dimensional
// segment embedded in a 2-dimensional space, so its affine hull has
// exactly one equality (y == k) and one free direction (x).
func segment(lo, hi, k int64) *adt.BasicMap {
	sp := space.NewSet(0, 2)
	b := adt.Alloc(sp, 1, 2)
	b = addEq(b, i64row(-k, 0, 1))
	b = addIneq(b, i64row(-lo, 1, 0))
	b = addIneq(b, i64row(hi, -1, 0))
	return b
}

func TestAffineHullOfSinglePointIsThatPoint(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 2)
	b = addIneq(b, i64row(-3, 1))
	b = addIneq(b, i64row(3, -1))

	ah := hull.AffineHull([]*adt.BasicMap{b})
	require.Equal(t, 1, ah.NEq())
	require.True(t, ah.ContainsPoint(i64row(1, 3)))
	require.False(t, ah.ContainsPoint(i64row(1, 4)))
}

func TestAffineHullOfIntervalHasNoEqualities(t *testing.T) {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 2)
	b = addIneq(b, i64row(-3, 1))
	b = addIneq(b, i64row(7, -1))

	ah := hull.AffineHull([]*adt.BasicMap{b})
	require.Equal(t, 0, ah.NEq())
	require.True(t, ah.ContainsPoint(i64row(1, 3)))
	require.True(t, ah.ContainsPoint(i64row(1, 100)))
}

func TestAffineHullOfSegmentPinsTheConstantDimension(t *testing.T) {
	b := segment(0, 5, 9)
	ah := hull.AffineHull([]*adt.BasicMap{b})
	require.Equal(t, 1, ah.NEq())
	require.True(t, ah.ContainsPoint(i64row(1, 2, 9)))
	require.False(t, ah.ContainsPoint(i64row(1, 2, 8)))
}

func TestConvexHullOfTwoIntervalsIsTheirSpan(t *testing.T) {
	sp := space.NewSet(0, 1)
	a := adt.Alloc(sp, 0, 2)
	a = addIneq(a, i64row(0, 1))
	a = addIneq(a, i64row(2, -1))
	b := adt.Alloc(sp, 0, 2)
	b = addIneq(b, i64row(-5, 1))
	b = addIneq(b, i64row(8, -1))

	ch := hull.ConvexHull([]*adt.BasicMap{a, b})
	require.True(t, ch.ContainsPoint(i64row(1, 0)))
	require.True(t, ch.ContainsPoint(i64row(1, 8)))
	require.True(t, ch.ContainsPoint(i64row(1, 4)))
	require.False(t, ch.ContainsPoint(i64row(1, 9)))
	require.False(t, ch.ContainsPoint(i64row(1, -1)))
}

func TestConvexHullOfTwoSegmentsIsTheSpanOnTheSharedLine(t *testing.T) {
	a := segment(0, 2, 9)
	b := segment(5, 8, 9)

	ch := hull.ConvexHull([]*adt.BasicMap{a, b})
	require.Equal(t, 1, ch.NEq())
	require.True(t, ch.ContainsPoint(i64row(1, 0, 9)))
	require.True(t, ch.ContainsPoint(i64row(1, 8, 9)))
	require.True(t, ch.ContainsPoint(i64row(1, 4, 9)))
	require.False(t, ch.ContainsPoint(i64row(1, 9, 9)))
	require.False(t, ch.ContainsPoint(i64row(1, 0, 8)))
}

func TestConvexHullOfSinglePointIsThatPoint(t *testing.T) {
	sp := space.NewSet(0, 2)
	b := adt.Alloc(sp, 2, 0)
	b = addEq(b, i64row(-1, 1, 0))
	b = addEq(b, i64row(-2, 0, 1))

	ch := hull.ConvexHull([]*adt.BasicMap{b})
	require.True(t, ch.ContainsPoint(i64row(1, 1, 2)))
	require.False(t, ch.ContainsPoint(i64row(1, 1, 3)))
}
