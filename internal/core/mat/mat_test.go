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

package mat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/mat"
	"github.com/Meinersbur/islgo/internal/core/num"
)

func row(vs ...int64) num.Row {
	r := make(num.Row, len(vs))
	for i, v := range vs {
		r[i] = num.FromInt64(v)
	}
	return r
}

func TestHermiteNormalFormInvariant(t *testing.T) {
	a := mat.FromRows([]num.Row{
		row(2, 4, 4),
		row(1, 2, 3),
	})
	h, u, pivots := mat.HermiteNormalForm(a)
	require.Len(t, pivots, 2)

	got := a.Mul(u)
	for i := 0; i < h.Rows(); i++ {
		for j := 0; j < h.Cols(); j++ {
			require.Truef(t, got.At(i, j).Cmp(h.At(i, j)) == 0, "a*u != h at (%d,%d)", i, j)
		}
	}
}

func TestVariableCompressSolvesEquality(t *testing.T) {
	// y = 3x, i.e. -3x + y = 0.
	a := mat.FromRows([]num.Row{row(-3, 1)})
	x0, u, ok := mat.VariableCompress(a, row(0))
	require.True(t, ok)
	require.Equal(t, 1, u.Cols())

	for _, y := range []int64{-2, 0, 1, 5} {
		free := row(y)
		x := x0.Clone()
		uy := u.MulVec(free)
		for i := range x {
			x[i] = x[i].Add(uy[i])
		}
		// a*x + b == 0
		chk := a.MulVec(x)
		require.True(t, chk[0].IsZero())
	}
}

func TestVariableCompressDetectsEmpty(t *testing.T) {
	// 2x = 1 has no integer solution.
	a := mat.FromRows([]num.Row{row(2)})
	_, _, ok := mat.VariableCompress(a, row(-1))
	require.False(t, ok)
}

func TestRightInverse(t *testing.T) {
	a := mat.FromRows([]num.Row{
		row(1, 0, 0),
		row(0, 1, 0),
	})
	b, ok := mat.RightInverse(a)
	require.True(t, ok)
	prod := a.Mul(b)
	id := mat.Identity(2)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			require.Truef(t, prod.At(i, j).Cmp(id.At(i, j)) == 0, "a*b != I at (%d,%d)", i, j)
		}
	}
}

func TestRank(t *testing.T) {
	a := mat.FromRows([]num.Row{
		row(1, 2, 3),
		row(2, 4, 6),
	})
	require.Equal(t, 1, mat.Rank(a))
}
