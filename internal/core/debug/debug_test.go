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

package debug_test

import (
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/debug"
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

// box builds { [x,y] : 0 <= x <= 3, 0 <= y <= 3 } with named set dims.
func box() *adt.BasicMap {
	sp := space.NewSet(0, 2).WithNames(nil, nil, []string{"x", "y"})
	b := adt.Alloc(sp, 0, 4)
	var idx int
	b, idx = b.AddInequality()
	b.SetIneqCoeff(idx, 1, num.FromInt64(1))
	b, idx = b.AddInequality()
	b.SetIneqCoeff(idx, 0, num.FromInt64(3))
	b.SetIneqCoeff(idx, 1, num.FromInt64(-1))
	b, idx = b.AddInequality()
	b.SetIneqCoeff(idx, 2, num.FromInt64(1))
	b, idx = b.AddInequality()
	b.SetIneqCoeff(idx, 0, num.FromInt64(3))
	b.SetIneqCoeff(idx, 2, num.FromInt64(-1))
	return b
}

func TestBasicMapStringNamesEachDimension(t *testing.T) {
	got := debug.BasicMapString(box(), nil)
	require.True(t, strings.Contains(got, "x"), "expected x in output, got %q", got)
	require.True(t, strings.Contains(got, "y"), "expected y in output, got %q", got)
	require.True(t, strings.HasPrefix(got, "[] -> { [] -> [x, y]"), "got %q", got)
}

func TestBasicMapStringCompactIsOneLine(t *testing.T) {
	got := debug.BasicMapString(box(), &debug.Config{Compact: true})
	require.False(t, strings.Contains(got, "\n"), "expected single line, got %q", got)
}

func TestBasicMapStringOfUniverseHasTrueBody(t *testing.T) {
	sp := space.NewSet(0, 1)
	got := debug.BasicMapString(adt.Universe(sp), nil)
	require.True(t, strings.Contains(got, "true"), "got %q", got)
}

func TestMapStringOfEmptyDisjunctListIsEmptyBraces(t *testing.T) {
	got := debug.MapString(nil, nil)
	require.Equal(t, "{}", got)
}

func TestMapStringJoinsDisjunctsWithSemicolon(t *testing.T) {
	sp := space.NewSet(0, 1)
	a := adt.Universe(sp)
	b := adt.Universe(sp)
	got := debug.MapString([]*adt.BasicMap{a, b}, &debug.Config{Compact: true})
	require.Equal(t, 1, strings.Count(got, ";"), "got %q", got)
}

// TestRenderingDivergesOnFailureDumpsBothSides mirrors the pretty.Println
// diagnostic dump pattern used elsewhere in the corpus: on a mismatch the
// failure message gets a full field-by-field dump of the offending value,
// not just its String().
func TestRenderingDivergesOnFailureDumpsBothSides(t *testing.T) {
	b := box()
	got := debug.BasicMapString(b, nil)
	want := "[] -> { [] -> [x, y] : "
	if !strings.HasPrefix(got, want) {
		t.Errorf("prefix mismatch:\n%# v", pretty.Formatter(b))
	}
}
