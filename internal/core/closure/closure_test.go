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

package closure_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/closure"
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

func contains(pieces []*adt.BasicMap, pt num.Row) bool {
	for _, p := range pieces {
		if p.ContainsPoint(pt) {
			return true
		}
	}
	return false
}

// translation builds R = { [x] -> [x+1] : 0 <= x < 10 }, spec §8
// scenario 6.
func translation() *adt.BasicMap {
	sp := space.New(0, 1, 1)
	b := adt.Alloc(sp, 1, 2)
	b = addEq(b, i64row(-1, -1, 1)) // y - x - 1 = 0
	b = addIneq(b, i64row(0, 1, 0)) // x >= 0
	b = addIneq(b, i64row(9, -1, 0))
	return b
}

func TestBoxClosureOfTranslationMatchesWorkedExample(t *testing.T) {
	r := translation()
	pieces, exact := closure.Closure(closure.Box, []*adt.BasicMap{r})
	require.True(t, exact)
	require.Len(t, pieces, 1)

	// Expected: { [x] -> [y] : 0 <= x < y <= 10 }.
	for x := int64(0); x <= 9; x++ {
		for y := int64(1); y <= 10; y++ {
			pt := i64row(1, x, y)
			want := y > x
			require.Equal(t, want, contains(pieces, pt), "x=%d y=%d", x, y)
		}
	}
}

func TestISLClosureOfTranslationMatchesBox(t *testing.T) {
	r := translation()
	pieces, exact := closure.Closure(closure.ISL, []*adt.BasicMap{r})
	require.True(t, exact)
	require.True(t, contains(pieces, i64row(1, 0, 1)))
	require.True(t, contains(pieces, i64row(1, 0, 10)))
	require.False(t, contains(pieces, i64row(1, 5, 5)))
}

func TestOmegaClosureOfTranslationMatchesBox(t *testing.T) {
	r := translation()
	pieces, exact := closure.Closure(closure.OMEGA, []*adt.BasicMap{r})
	require.True(t, exact)
	require.True(t, contains(pieces, i64row(1, 2, 3)))
	require.False(t, contains(pieces, i64row(1, 3, 2)))
}

// TestClosureContainsOriginalRelation checks the universal property R ⊆
// R+ (spec §8) for a two-disjunct relation: step by 1 or step by 2, over
// [0,20).
func TestClosureContainsOriginalRelation(t *testing.T) {
	sp := space.New(0, 1, 1)
	step1 := adt.Alloc(sp, 1, 2)
	step1 = addEq(step1, i64row(-1, -1, 1))
	step1 = addIneq(step1, i64row(0, 1, 0))
	step1 = addIneq(step1, i64row(19, -1, 0))

	step2 := adt.Alloc(sp, 1, 2)
	step2 = addEq(step2, i64row(-2, -1, 1))
	step2 = addIneq(step2, i64row(0, 1, 0))
	step2 = addIneq(step2, i64row(19, -1, 0))

	pieces, _ := closure.Closure(closure.ISL, []*adt.BasicMap{step1, step2})
	require.True(t, contains(pieces, i64row(1, 3, 4)))
	require.True(t, contains(pieces, i64row(1, 3, 5)))
	// Two applications of the +2 step: 3 -> 5 -> 7.
	require.True(t, contains(pieces, i64row(1, 3, 7)))
}

func TestClosureOfEmptyRelationIsEmptyAndExact(t *testing.T) {
	sp := space.New(0, 1, 1)
	empty := adt.EmptySet(sp)
	pieces, exact := closure.Closure(closure.Box, []*adt.BasicMap{empty})
	require.Empty(t, pieces)
	require.True(t, exact)
}
