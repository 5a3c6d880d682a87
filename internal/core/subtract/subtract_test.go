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

package subtract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/space"
	"github.com/Meinersbur/islgo/internal/core/subtract"
)

func i64row(vs ...int64) num.Row {
	r := make(num.Row, len(vs))
	for i, v := range vs {
		r[i] = num.FromInt64(v)
	}
	return r
}

func interval(lo, hi int64) *adt.BasicMap {
	sp := space.NewSet(0, 1)
	b := adt.Alloc(sp, 0, 2)
	var idx int
	b, idx = b.AddInequality()
	b.SetIneqCoeff(idx, 0, num.FromInt64(-lo))
	b.SetIneqCoeff(idx, 1, num.One) // x - lo >= 0
	b, idx = b.AddInequality()
	b.SetIneqCoeff(idx, 0, num.FromInt64(hi))
	b.SetIneqCoeff(idx, 1, num.MinusOne) // hi - x >= 0
	return b
}

func TestBasicSplitsIntervalAroundHole(t *testing.T) {
	a := interval(0, 5)
	b := interval(2, 3)

	pieces := subtract.Basic(a, []*adt.BasicMap{b})
	require.Len(t, pieces, 2)

	require.True(t, pieces[0].ContainsPoint(i64row(1, 0)))
	require.True(t, pieces[0].ContainsPoint(i64row(1, 1)))
	require.False(t, pieces[0].ContainsPoint(i64row(1, 2)))

	require.True(t, pieces[1].ContainsPoint(i64row(1, 4)))
	require.True(t, pieces[1].ContainsPoint(i64row(1, 5)))
	require.False(t, pieces[1].ContainsPoint(i64row(1, 3)))
}

func TestBasicWithFullyCoveringSubtrahendIsEmpty(t *testing.T) {
	a := interval(0, 5)
	b := interval(-1, 6)

	pieces := subtract.Basic(a, []*adt.BasicMap{b})
	require.Len(t, pieces, 0)
}

func TestBasicWithDisjointSubtrahendIsUnchanged(t *testing.T) {
	a := interval(0, 5)
	b := interval(10, 12)

	pieces := subtract.Basic(a, []*adt.BasicMap{b})
	require.Len(t, pieces, 1)
	require.True(t, pieces[0].ContainsPoint(i64row(1, 0)))
	require.True(t, pieces[0].ContainsPoint(i64row(1, 5)))
}
