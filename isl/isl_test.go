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

package isl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/tab"
	"github.com/Meinersbur/islgo/isl"
)

// box is {[x,y] : 0<=x<=hi, 0<=y<=hi} in PolyLib format.
func box(hi int) string {
	return `4 4
1 1 0 0
1 -1 0 ` + itoa(hi) + `
1 0 1 0
1 0 -1 ` + itoa(hi) + `
`
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func mustReadBasicSet(t *testing.T, c *isl.Context, text string) isl.BasicSet {
	t.Helper()
	b, err := c.ReadBasicSet(strings.NewReader(text), 0)
	require.NoError(t, err)
	return b
}

func TestBasicSetSampleFindsAPointInANonEmptyBox(t *testing.T) {
	c := isl.NewContext()
	b := mustReadBasicSet(t, c, box(3))
	pt, ok := b.Sample()
	require.True(t, ok)
	require.True(t, b.ContainsPoint(pt))
}

func TestBasicSetSampleReportsEmptyForAContradiction(t *testing.T) {
	c := isl.NewContext()
	b := mustReadBasicSet(t, c, `4 4
1 1 0 -5
1 -1 0 3
1 0 1 0
1 0 -1 3
`)
	_, ok := b.Sample()
	require.False(t, ok)
	require.True(t, b.IsEmpty())
}

func TestBasicSetMinimizeOfBoxReturnsOriginCorner(t *testing.T) {
	c := isl.NewContext()
	b := mustReadBasicSet(t, c, box(3))
	oc, opt, pt, err := b.Minimize([]int64{1, 1})
	require.NoError(t, err)
	require.Equal(t, tab.Ok, oc)
	require.Equal(t, int64(0), opt)
	require.Equal(t, []int64{0, 0}, pt)
}

func TestBasicSetMaximizeOfBoxReturnsFarCorner(t *testing.T) {
	c := isl.NewContext()
	b := mustReadBasicSet(t, c, box(3))
	oc, opt, pt, err := b.Maximize([]int64{1, 1})
	require.NoError(t, err)
	require.Equal(t, tab.Ok, oc)
	require.Equal(t, int64(6), opt)
	require.Equal(t, []int64{3, 3}, pt)
}

func TestBasicSetDetectEqualitiesOfASinglePointKeepsOnlyThatPoint(t *testing.T) {
	c := isl.NewContext()
	b := mustReadBasicSet(t, c, `4 4
1 1 0 0
1 -1 0 0
1 0 1 0
1 0 -1 0
`)
	got := b.DetectEqualities()
	require.True(t, got.ContainsPoint([]int64{0, 0}))
	require.False(t, got.ContainsPoint([]int64{1, 0}))
}

func TestSetUnionContainsPointsFromEitherOperand(t *testing.T) {
	c := isl.NewContext()
	left := mustReadBasicSet(t, c, box(1))
	right, err := c.ReadBasicSet(strings.NewReader(`2 4
1 1 0 -5
1 0 1 -5
`), 0)
	require.NoError(t, err)

	u := isl.FromBasicSet(left).Union(isl.FromBasicSet(right))
	require.Equal(t, 2, u.NumBasicSets())
	require.False(t, u.IsEmpty())

	found := false
	u.Foreach(func(b isl.BasicSet) bool {
		if b.ContainsPoint([]int64{5, 5}) {
			found = true
		}
		return true
	})
	require.True(t, found)
}

func TestSetSubtractRemovesTheSharedPoint(t *testing.T) {
	c := isl.NewContext()
	whole := mustReadBasicSet(t, c, box(3))
	corner := mustReadBasicSet(t, c, `4 4
1 1 0 0
1 -1 0 0
1 0 1 0
1 0 -1 0
`)
	diff := isl.FromBasicSet(whole).Subtract(isl.FromBasicSet(corner))
	require.False(t, diff.IsEmpty())
	diff.Foreach(func(b isl.BasicSet) bool {
		require.False(t, b.ContainsPoint([]int64{0, 0}))
		return true
	})
}

func TestMapApplyRangeComposesTwoShifts(t *testing.T) {
	c := isl.NewContext()
	// {[x] -> [x+1]}, as the equality -x + x' - 1 = 0.
	shiftBy1, err := c.ReadBasicMap(strings.NewReader(`1 4
0 -1 1 -1
`), 0, 1)
	require.NoError(t, err)
	composed := isl.FromBasicMap(shiftBy1).ApplyRange(isl.FromBasicMap(shiftBy1))
	require.Equal(t, 1, composed.NumBasicMaps())
	bm := composed.BasicMap(0)
	require.False(t, bm.IsEmpty())
	require.True(t, bm.Space().NOut() == 1)
}

func TestBasicMapPartialLexminOfBoundedOutputPicksTheLowerBound(t *testing.T) {
	c := isl.NewContext()
	// {[p] -> [y] : 0 <= y <= p}
	m, err := c.ReadBasicMap(strings.NewReader(`2 4
1 1 0 0
1 -1 1 0
`), 1, 0)
	require.NoError(t, err)
	domain, err := c.ReadBasicSet(strings.NewReader(`2 3
1 1 0
1 -1 3
`), 1)
	require.NoError(t, err)

	pieces, empty := m.PartialLexmin(domain)
	require.Len(t, empty, 0)
	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		require.Len(t, p.Formula, 1)
		for _, coeff := range p.Formula[0] {
			require.True(t, coeff.IsZero())
		}
	}
}

// Concrete scenario: D={n:n>=0}, M={n -> [y]: 0<=y}. PartialLexmin must
// cover the whole (unbounded) domain with M={n->0:n>=0} and E={}, not
// silently drop it — the unbounded-domain case that used to make
// sample.Basic report a spurious empty result and corrupt the domain.
func TestBasicMapPartialLexminCoversAnUnboundedDomain(t *testing.T) {
	c := isl.NewContext()
	// {[n] -> [y] : y >= 0}
	m, err := c.ReadBasicMap(strings.NewReader(`1 4
1 1 0 0
`), 1, 0)
	require.NoError(t, err)
	domain, err := c.ReadBasicSet(strings.NewReader(`1 3
1 1 0
`), 1)
	require.NoError(t, err)

	pieces, empty := m.PartialLexmin(domain)
	require.Len(t, empty, 0)
	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		require.Len(t, p.Formula, 1)
		for _, coeff := range p.Formula[0] {
			require.True(t, coeff.IsZero())
		}
	}
}
