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

package coalesce_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/coalesce"
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

func interval(lo, hi int64) *adt.BasicMap {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 2)
	b = addIneq(b, i64row(-lo, 1)) // x - lo >= 0
	b = addIneq(b, i64row(hi, -1)) // hi - x >= 0
	return b
}

func TestPairwiseFusesAdjacentIntervals(t *testing.T) {
	// [0,2] and [3,5] touch at the integer boundary 2/3: every point of
	// one is one step away from the other along the shared dimension,
	// and every other constraint (there are none besides the two bounds)
	// trivially agrees, so the adjacent-pair fuse applies.
	a := interval(0, 2)
	b := interval(3, 5)

	out := coalesce.Pairwise([]*adt.BasicMap{a, b})
	require.Len(t, out, 1)
	require.True(t, out[0].ContainsPoint(i64row(1, 0)))
	require.True(t, out[0].ContainsPoint(i64row(1, 5)))
	require.False(t, out[0].ContainsPoint(i64row(1, 6)))
	require.False(t, out[0].ContainsPoint(i64row(1, -1)))
}

func TestPairwiseDropsContainedInterval(t *testing.T) {
	// [1,4] ⊆ [0,5]: every constraint of the larger one holds throughout
	// the smaller one, so the smaller is the side that gets dropped
	// (inclusion keeps the superset, not the subset — see DESIGN.md's
	// resolution of spec.md §4.6 step 3's literal wording).
	big := interval(0, 5)
	small := interval(1, 4)

	out := coalesce.Pairwise([]*adt.BasicMap{big, small})
	require.Len(t, out, 1)
	require.True(t, out[0].ContainsPoint(i64row(1, 0)))
	require.True(t, out[0].ContainsPoint(i64row(1, 5)))
}

func TestPairwiseLeavesDisjointIntervalsAlone(t *testing.T) {
	a := interval(0, 2)
	b := interval(10, 12)

	out := coalesce.Pairwise([]*adt.BasicMap{a, b})
	require.Len(t, out, 2)
}

func TestPairwiseLeavesGappedIntervalsAlone(t *testing.T) {
	// [0,2] and [4,6] are two steps apart, not adjacent: neither contains
	// the other and neither constraint pair is AdjIneq, so no fuse.
	a := interval(0, 2)
	b := interval(4, 6)

	out := coalesce.Pairwise([]*adt.BasicMap{a, b})
	require.Len(t, out, 2)
}
