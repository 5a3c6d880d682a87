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

// Package mat implements spec component C2: an owned 2-D integer matrix
// with Hermite normal form, unimodular completion, a right inverse, and
// variable/parameter compression built on top of it.
package mat

import (
	"fmt"

	"github.com/Meinersbur/islgo/internal/core/num"
)

// Matrix is a dense, owned, rectangular matrix of num.Int.
type Matrix struct {
	rows, cols int
	data       []num.Row // one Row per matrix row
}

// New returns a zeroed r x c matrix.
func New(r, c int) *Matrix {
	if r < 0 || c < 0 {
		panic("mat: negative dimension")
	}
	m := &Matrix{rows: r, cols: c, data: make([]num.Row, r)}
	for i := range m.data {
		m.data[i] = make(num.Row, c)
		for j := range m.data[i] {
			m.data[i][j] = num.Zero
		}
	}
	return m
}

// FromRows returns a matrix whose rows are (independent copies of) rows.
// All rows must have equal length.
func FromRows(rows []num.Row) *Matrix {
	m := &Matrix{rows: len(rows)}
	if len(rows) > 0 {
		m.cols = len(rows[0])
	}
	m.data = make([]num.Row, len(rows))
	for i, r := range rows {
		if len(r) != m.cols {
			panic("mat: FromRows: ragged input")
		}
		m.data[i] = r.Clone()
	}
	return m
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = num.One
	}
	return m
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) At(i, j int) num.Int { return m.data[i][j] }

func (m *Matrix) Set(i, j int, v num.Int) { m.data[i][j] = v }

// Row returns the underlying Row for row i. Callers that mutate it mutate
// m; use Clone first if that is not intended.
func (m *Matrix) Row(i int) num.Row { return m.data[i] }

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{rows: m.rows, cols: m.cols, data: make([]num.Row, m.rows)}
	for i, r := range m.data {
		out.data[i] = r.Clone()
	}
	return out
}

// SwapRows exchanges rows i and j in place.
func (m *Matrix) SwapRows(i, j int) {
	m.data[i], m.data[j] = m.data[j], m.data[i]
}

// SwapCols exchanges columns i and j in place.
func (m *Matrix) SwapCols(i, j int) {
	for _, r := range m.data {
		r[i], r[j] = r[j], r[i]
	}
}

// Column returns column j as a freshly allocated Row.
func (m *Matrix) Column(j int) num.Row {
	out := make(num.Row, m.rows)
	for i := range m.data {
		out[i] = m.data[i][j]
	}
	return out
}

// Transpose returns the transpose of m.
func (m *Matrix) Transpose() *Matrix {
	out := New(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j][i] = m.data[i][j]
		}
	}
	return out
}

// Mul returns m*n. m.Cols() must equal n.Rows().
func (m *Matrix) Mul(n *Matrix) *Matrix {
	if m.cols != n.rows {
		panic(fmt.Sprintf("mat: Mul: dimension mismatch (%dx%d)*(%dx%d)", m.rows, m.cols, n.rows, n.cols))
	}
	out := New(m.rows, n.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			if m.data[i][k].IsZero() {
				continue
			}
			for j := 0; j < n.cols; j++ {
				out.data[i][j] = out.data[i][j].Add(m.data[i][k].Mul(n.data[k][j]))
			}
		}
	}
	return out
}

// MulVec returns m*v as a column vector (a Row of length m.Rows()).
// v must have length m.Cols().
func (m *Matrix) MulVec(v num.Row) num.Row {
	if len(v) != m.cols {
		panic("mat: MulVec: dimension mismatch")
	}
	out := make(num.Row, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = num.Dot(m.data[i], v)
	}
	return out
}

// IsZero reports whether every entry of m is zero.
func (m *Matrix) IsZero() bool {
	for _, r := range m.data {
		if !r.IsZero() {
			return false
		}
	}
	return true
}
