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

package mat

import "github.com/Meinersbur/islgo/internal/core/num"

// HermiteNormalForm computes a column-style Hermite normal form of a: a
// unimodular n x n matrix u (n = a.Cols()) and h = a*u such that, reading
// rows top to bottom, each row's nonzero entries among not-yet-pivoted
// columns are reduced to at most one survivor. pivotCols lists, top to
// bottom, the column of h/u that absorbed each pivoted row's surviving
// entry; a row left with no nonzero entry among the free columns gets
// none, so len(pivotCols) is the rank of a; the remaining, never-pivoted columns of u form an
// integer basis of a's null space, since h is zero in every row on those
// columns (spec §4.1: "variable compression: compute the Hermite normal
// form of the equality matrix to obtain x = x0 + U*x'").
func HermiteNormalForm(a *Matrix) (h, u *Matrix, pivotCols []int) {
	h = a.Clone()
	u = Identity(a.cols)
	free := make([]int, a.cols)
	for i := range free {
		free[i] = i
	}
	for row := 0; row < a.rows; row++ {
		pivot, rest, found := reduceRowToSingleNonzero(h, u, row, free)
		free = rest
		if !found {
			continue
		}
		if h.At(row, pivot).IsNegative() {
			negateColumn(h, pivot)
			negateColumn(u, pivot)
		}
		pivotCols = append(pivotCols, pivot)
	}
	return h, u, pivotCols
}

// reduceRowToSingleNonzero repeatedly combines pairs of free columns using
// the extended Euclidean algorithm until row has at most one nonzero
// entry among the free columns, applying every combination to both h and
// u so that h = a*u is preserved as an invariant.
func reduceRowToSingleNonzero(h, u *Matrix, row int, free []int) (pivot int, rest []int, found bool) {
	cols := append([]int(nil), free...)
	for {
		var nz []int
		for _, c := range cols {
			if !h.At(row, c).IsZero() {
				nz = append(nz, c)
			}
		}
		if len(nz) == 0 {
			return 0, cols, false
		}
		if len(nz) == 1 {
			return nz[0], removeCol(cols, nz[0]), true
		}
		c1, c2 := nz[0], nz[1]
		v1, v2 := h.At(row, c1), h.At(row, c2)
		g, x, y := v1.ExtGCD(v2)
		a1, _ := v2.ExactDiv(g) // coefficient of c1 in the new c2 (which becomes 0)
		a2, _ := v1.ExactDiv(g) // coefficient of c2 in the new c2
		combineColumns(h, c1, c2, x, y, a1, a2)
		combineColumns(u, c1, c2, x, y, a1, a2)
	}
}

// combineColumns replaces columns c1, c2 of m by:
//
//	newC1 = x*c1 + y*c2
//	newC2 = a1*c1 - a2*c2
//
// This is applied with x,y,a1,a2 chosen so that, when m's row `row` held
// (v1, v2) at (c1, c2), the new row `row` holds (gcd(v1,v2), 0): the 2x2
// transform [[x,y],[a1,-a2]] has determinant x*(-a2) - y*a1 = -1 when
// a1=v2/g, a2=v1/g (since x*v1+y*v2=g implies x*a2+y*a1=g/g=1), so it is
// unimodular and the combination preserves the lattice m generates.
func combineColumns(m *Matrix, c1, c2 int, x, y, a1, a2 num.Int) {
	for r := 0; r < m.rows; r++ {
		old1, old2 := m.data[r][c1], m.data[r][c2]
		m.data[r][c1] = x.Mul(old1).Add(y.Mul(old2))
		m.data[r][c2] = a1.Mul(old1).Sub(a2.Mul(old2))
	}
}

func negateColumn(m *Matrix, c int) {
	for r := 0; r < m.rows; r++ {
		m.data[r][c] = m.data[r][c].Neg()
	}
}

func removeCol(cols []int, c int) []int {
	out := make([]int, 0, len(cols)-1)
	for _, v := range cols {
		if v != c {
			out = append(out, v)
		}
	}
	return out
}

// Rank returns the rank of a, computed via HermiteNormalForm.
func Rank(a *Matrix) int {
	_, _, pivots := HermiteNormalForm(a)
	return len(pivots)
}

// VariableCompress implements spec §4.3 step 1 / §4.1's "variable
// compression": given the equalities `a*x + b = 0` (a is m x n, b has
// length m), it returns a particular integer solution x0 and a matrix u
// (n x k, k = n - rank(a)) such that the general integer solution is
// exactly { x0 + u*y : y in Z^k }. ok is false if the equalities have no
// integer solution at all (the basic set they belong to is then EMPTY).
func VariableCompress(a *Matrix, b num.Row) (x0 num.Row, u *Matrix, ok bool) {
	if a.rows != len(b) {
		panic("mat: VariableCompress: row count mismatch")
	}
	h, uFull, pivots := HermiteNormalForm(a)
	n := a.cols
	z := make(num.Row, n)

	free := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		free[i] = true
	}
	for _, p := range pivots {
		free[p] = false
	}

	// Forward-substitute for the pivot components of z: the pivoted rows
	// of h, top to bottom, are lower triangular in pivot-column order (see
	// HermiteNormalForm doc); r skips the rows that got no pivot.
	r := 0
	for i, p := range pivots {
		for h.At(r, p).IsZero() {
			r++
		}
		rhs := b[r].Neg()
		for j := 0; j < i; j++ {
			rhs = rhs.Sub(h.At(r, pivots[j]).Mul(z[pivots[j]]))
		}
		q, exact := rhs.ExactDiv(h.At(r, p))
		if !exact {
			return nil, nil, false
		}
		z[p] = q
		r++
	}
	// Consistency check over every row: pivoted rows hold by construction,
	// and a row without a pivot must agree with the solved components.
	for i := 0; i < a.rows; i++ {
		rhs := b[i].Neg()
		for j, p := range pivots {
			_ = j
			rhs = rhs.Sub(h.At(i, p).Mul(z[p]))
		}
		if !rhs.IsZero() {
			return nil, nil, false
		}
	}

	x0 = uFull.MulVec(z)

	var freeCols []int
	for i := 0; i < n; i++ {
		if free[i] {
			freeCols = append(freeCols, i)
		}
	}
	u = New(n, len(freeCols))
	for j, c := range freeCols {
		for r := 0; r < n; r++ {
			u.Set(r, j, uFull.At(r, c))
		}
	}
	return x0, u, true
}

// RightInverse returns an integer matrix b (n x m) such that a*b is the
// m x m identity, for a full-row-rank m x n matrix a. ok is false when no
// integer right inverse exists (the rows of a do not form part of a
// unimodular basis — some pivot in the Hermite form has |diagonal| > 1).
func RightInverse(a *Matrix) (b *Matrix, ok bool) {
	h, u, pivots := HermiteNormalForm(a)
	if len(pivots) != a.rows {
		return nil, false // a is not full row rank
	}
	for i, p := range pivots {
		if !h.At(i, p).Abs().IsOne() {
			return nil, false
		}
	}
	// Solve h[:, pivots] * y_col = e_k for each standard basis vector e_k,
	// by forward substitution (h restricted to pivot columns, in pivot
	// order, is lower triangular with unit diagonal magnitude).
	m := a.rows
	y := New(m, m)
	for k := 0; k < m; k++ {
		col := make(num.Row, m)
		for i := 0; i < m; i++ {
			rhs := num.Zero
			if i == k {
				rhs = num.One
			}
			for j := 0; j < i; j++ {
				rhs = rhs.Sub(h.At(i, pivots[j]).Mul(col[j]))
			}
			d := h.At(i, pivots[i])
			v, _ := rhs.ExactDiv(d) // exact since |d|=1
			col[i] = v
		}
		for i := 0; i < m; i++ {
			y.Set(i, k, col[i])
		}
	}
	// b's rows are u's rows restricted to pivot columns, times y.
	uPivot := New(a.cols, m)
	for j, p := range pivots {
		for r := 0; r < a.cols; r++ {
			uPivot.Set(r, j, u.At(r, p))
		}
	}
	return uPivot.Mul(y), true
}
