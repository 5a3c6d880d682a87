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

package isl

import (
	"io"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/debug"
	"github.com/Meinersbur/islgo/internal/core/ilp"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/sample"
	"github.com/Meinersbur/islgo/internal/core/space"
	"github.com/Meinersbur/islgo/internal/core/tab"
	"github.com/Meinersbur/islgo/internal/encoding/polylib"
)

// A BasicSet is a single conjunction of affine equalities and
// inequalities over a tuple of dimensions, optionally parameterized.
// It corresponds to one basic set in a disjunctive Set, the way a
// single isl_basic_set corresponds to one disjunct of an isl_set.
type BasicSet struct {
	b *adt.BasicMap
}

// UniverseBasicSet returns the basic set containing every point of sp.
// sp must have NIn() == 0.
func (c *Context) UniverseBasicSet(sp space.Space) BasicSet {
	return BasicSet{b: adt.Universe(sp)}
}

// EmptyBasicSet returns the basic set containing no points of sp.
func (c *Context) EmptyBasicSet(sp space.Space) BasicSet {
	return BasicSet{b: adt.EmptySet(sp)}
}

// ReadBasicSet reads one basic set in PolyLib matrix format: a "rows
// cols" header followed by one row per constraint (tag, tuple
// coefficients, existential coefficients, parameter coefficients,
// constant), the format polyhedron_sample.c and friends read from
// stdin.
func (c *Context) ReadBasicSet(r io.Reader, nParam int) (BasicSet, error) {
	m, err := polylib.ReadMatrix(r, nParam, 0, -1)
	if err != nil {
		return BasicSet{}, err
	}
	return BasicSet{b: m.ToBasicSet()}, nil
}

// WriteTo writes s in PolyLib matrix format.
func (s BasicSet) WriteTo(w io.Writer) error {
	return polylib.WriteMatrix(w, polylib.FromBasicMap(s.b))
}

// Space returns s's space. NIn() is always 0.
func (s BasicSet) Space() space.Space { return s.b.Space() }

// IsEmpty reports whether s contains no points, running the full
// emptiness test (Simplex-based sampling) rather than just checking
// the cached Empty flag.
func (s BasicSet) IsEmpty() bool { return s.b.IsEmpty() }

// ContainsPoint reports whether coords, a point in s's combined
// parameter+output dimensions, satisfies every constraint of s.
func (s BasicSet) ContainsPoint(coords []int64) bool {
	return s.b.ContainsPoint(pointRow(coords))
}

// Sample finds one integer point of s, returning ok=false if s is
// empty.
func (s BasicSet) Sample() (point []int64, ok bool) {
	_, pt, ok := sample.Basic(s.b)
	if !ok {
		return nil, false
	}
	return coordsFrom(pt), true
}

// Minimize solves the integer linear program "minimize obj over s",
// where obj gives one coefficient per dimension of s's space (param
// then out).
func (s BasicSet) Minimize(obj []int64) (tab.Outcome, int64, []int64, error) {
	return s.optimize(obj, ilp.Minimize)
}

// Maximize solves "maximize obj over s", with obj laid out as for
// Minimize.
func (s BasicSet) Maximize(obj []int64) (tab.Outcome, int64, []int64, error) {
	return s.optimize(obj, ilp.Maximize)
}

type optimizeFunc func(*adt.BasicMap, num.Row) (tab.Outcome, num.Int, num.Row, error)

// optimize pads obj out to s.b.Width() before calling solve: tab's
// tableau indexes the objective row up to s.k = Width()-1, which
// includes any div columns the caller's plain coefficient list never
// mentions.
func (s BasicSet) optimize(obj []int64, solve optimizeFunc) (tab.Outcome, int64, []int64, error) {
	full := objRow(s.b.Width(), obj)
	oc, opt, sol, err := solve(s.b, full)
	if err != nil || oc != tab.Ok {
		return oc, 0, nil, err
	}
	n, _ := opt.Int64()
	return oc, n, coordsFrom(sol), nil
}

// DetectEqualities promotes every implicit equality of s (an
// inequality that is tight over all of s) to an explicit equality.
func (s BasicSet) DetectEqualities() BasicSet {
	return BasicSet{b: tab.DetectImplicitEqualities(s.b)}
}

// DetectRedundant drops every inequality of s implied by the others.
func (s BasicSet) DetectRedundant() BasicSet {
	return BasicSet{b: tab.DetectRedundant(s.b)}
}

// ProjectOut eliminates the n output dimensions starting at first via
// Fourier-Motzkin elimination.
func (s BasicSet) ProjectOut(first, n int) BasicSet {
	return BasicSet{b: s.b.ProjectOut(space.Out, first, n)}
}

// Intersect returns the points common to s and t.
func (s BasicSet) Intersect(t BasicSet) BasicSet {
	return BasicSet{b: adt.Intersect(s.b, t.b)}
}

// String renders s in ISL text format, one constraint per line.
func (s BasicSet) String() string {
	return debug.BasicMapString(s.b, nil)
}
