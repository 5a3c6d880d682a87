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

package pip_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/pip"
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

func toInt64(n num.Int) int64 {
	v, ok := n.Int64()
	if !ok {
		panic("pip_test: value does not fit in int64")
	}
	return v
}

func evalFormula(row num.Row, p num.Row) int64 {
	v := row[0]
	for i, c := range p {
		v = v.Add(c.Mul(row[1+i]))
	}
	return toInt64(v)
}

// samplePoint returns a params-only point (no leading constant) inside b.
func samplePoint(b *adt.BasicMap) (num.Row, bool) {
	_, pt, ok := sample.Basic(b.Copy())
	if !ok {
		return nil, false
	}
	return pt[1:], true
}

// TestPartialLexminOfFixedOutputBox: B = {p -> y | 0 <= y <= 5}, domain
// p in [0,3]. No parameter dependence at all: lex-min is always y=0.
func TestPartialLexminOfFixedOutputBox(t *testing.T) {
	bsp := space.New(1, 0, 1)
	b := adt.Alloc(bsp, 0, 2)
	b = addIneq(b, i64row(0, 0, 1))
	b = addIneq(b, i64row(5, 0, -1))

	dsp := space.NewSet(0, 1)
	domain := adt.Alloc(dsp, 0, 2)
	domain = addIneq(domain, i64row(0, 1))
	domain = addIneq(domain, i64row(3, -1))

	pieces, empty := pip.PartialLexmin(b, domain)
	require.Empty(t, empty)
	require.NotEmpty(t, pieces)
	for _, leaf := range pieces {
		require.Len(t, leaf.Formula, 1)
		pt, ok := samplePoint(leaf.Domain)
		require.True(t, ok)
		require.Equal(t, int64(0), evalFormula(leaf.Formula[0], pt))
	}
}

// TestPartialLexminTracksParameterLowerBound: B = {p -> y | y >= p, y <=
// p+10}, domain p in [0,4]. Lex-min output is always y == p.
func TestPartialLexminTracksParameterLowerBound(t *testing.T) {
	bsp := space.New(1, 0, 1)
	b := adt.Alloc(bsp, 0, 2)
	b = addIneq(b, i64row(0, -1, 1)) // y - p >= 0
	b = addIneq(b, i64row(10, 1, -1))

	dsp := space.NewSet(0, 1)
	domain := adt.Alloc(dsp, 0, 2)
	domain = addIneq(domain, i64row(0, 1))
	domain = addIneq(domain, i64row(4, -1))

	pieces, empty := pip.PartialLexmin(b, domain)
	require.Empty(t, empty)
	require.NotEmpty(t, pieces)
	for _, leaf := range pieces {
		pt, ok := samplePoint(leaf.Domain)
		require.True(t, ok)
		require.Equal(t, toInt64(pt[0]), evalFormula(leaf.Formula[0], pt))
	}
}

// TestPartialLexminReportsInfeasibleParameters: B = {p -> y | y >= 0, y
// <= p - 6} is empty whenever p < 6; domain is p in [0,10].
func TestPartialLexminReportsInfeasibleParameters(t *testing.T) {
	bsp := space.New(1, 0, 1)
	b := adt.Alloc(bsp, 0, 2)
	b = addIneq(b, i64row(0, 0, 1))
	b = addIneq(b, i64row(-6, 1, -1))

	dsp := space.NewSet(0, 1)
	domain := adt.Alloc(dsp, 0, 2)
	domain = addIneq(domain, i64row(0, 1))
	domain = addIneq(domain, i64row(10, -1))

	pieces, empty := pip.PartialLexmin(b, domain)
	require.NotEmpty(t, empty)
	require.NotEmpty(t, pieces)

	lowP := i64row(1, 2)
	foundEmpty := false
	for _, e := range empty {
		if e.ContainsPoint(lowP) {
			foundEmpty = true
		}
	}
	require.True(t, foundEmpty)

	highP := i64row(1, 9)
	foundPiece := false
	for _, leaf := range pieces {
		if leaf.Domain.ContainsPoint(highP) {
			foundPiece = true
		}
	}
	require.True(t, foundPiece)
}

// TestPartialLexminOfUnboundedDomainStillCoversIt: D = {n : n>=0} is
// unbounded above, and B = {n -> y : y>=0}. This must still yield
// M = {n -> 0 : n>=0}, E = {} rather than silently dropping the whole
// domain (spec concrete scenario 5), which is exactly what happened
// before sample.Basic correctly handled an Unbounded LP bound instead of
// treating it as infeasible.
func TestPartialLexminOfUnboundedDomainStillCoversIt(t *testing.T) {
	bsp := space.New(1, 0, 1)
	b := adt.Alloc(bsp, 0, 1)
	b = addIneq(b, i64row(0, 0, 1)) // y >= 0

	dsp := space.NewSet(0, 1)
	domain := adt.Alloc(dsp, 0, 1)
	domain = addIneq(domain, i64row(0, 1)) // n >= 0, no upper bound

	pieces, empty := pip.PartialLexmin(b, domain)
	require.Empty(t, empty)
	require.NotEmpty(t, pieces)
	for _, leaf := range pieces {
		pt, ok := samplePoint(leaf.Domain)
		require.True(t, ok)
		require.Equal(t, int64(0), evalFormula(leaf.Formula[0], pt))
	}

	// A handful of representative parameter values, including ones well
	// beyond any small fixed window, must all be covered by some piece.
	for _, n := range []int64{0, 1, 5, 1000} {
		covered := false
		for _, leaf := range pieces {
			if leaf.Domain.ContainsPoint(i64row(1, n)) {
				covered = true
				require.Equal(t, int64(0), evalFormula(leaf.Formula[0], i64row(n)))
			}
		}
		require.True(t, covered, "n=%d not covered by any piece", n)
	}
}

// TestPartialLexminOfNonParametricMap: a map with no parameters at all
// (nParam=0) degenerates to a single leaf over the trivial domain.
func TestPartialLexminOfNonParametricMap(t *testing.T) {
	bsp := space.New(0, 0, 1)
	b := adt.Alloc(bsp, 0, 2)
	b = addIneq(b, i64row(-3, 1))
	b = addIneq(b, i64row(7, -1))

	dsp := space.NewSet(0, 0)
	domain := adt.Alloc(dsp, 0, 0)

	pieces, empty := pip.PartialLexmin(b, domain)
	require.Empty(t, empty)
	require.Len(t, pieces, 1)
	require.Equal(t, int64(3), toInt64(pieces[0].Formula[0][0]))
}
