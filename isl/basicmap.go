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
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/pip"
	"github.com/Meinersbur/islgo/internal/core/space"
	"github.com/Meinersbur/islgo/internal/encoding/polylib"
)

// A BasicMap is a single conjunction of affine constraints relating an
// input tuple to an output tuple, optionally parameterized: one
// disjunct of a Map, the way BasicSet is one disjunct of a Set.
type BasicMap struct {
	b *adt.BasicMap
}

// UniverseBasicMap returns the basic map containing every pair of sp.
func (c *Context) UniverseBasicMap(sp space.Space) BasicMap {
	return BasicMap{b: adt.Universe(sp)}
}

// ReadBasicMap reads one basic map in PolyLib matrix format, with an
// explicit input-tuple width (PolyLib format alone cannot distinguish
// input from output dimensions).
func (c *Context) ReadBasicMap(r io.Reader, nParam, nIn int) (BasicMap, error) {
	m, err := polylib.ReadMatrix(r, nParam, nIn, -1)
	if err != nil {
		return BasicMap{}, err
	}
	return BasicMap{b: m.ToBasicMap()}, nil
}

// WriteTo writes m in PolyLib matrix format.
func (m BasicMap) WriteTo(w io.Writer) error {
	return polylib.WriteMatrix(w, polylib.FromBasicMap(m.b))
}

// Space returns m's space.
func (m BasicMap) Space() space.Space { return m.b.Space() }

// IsEmpty reports whether m relates no pairs.
func (m BasicMap) IsEmpty() bool { return m.b.IsEmpty() }

// String renders m in ISL text format.
func (m BasicMap) String() string {
	return debug.BasicMapString(m.b, nil)
}

// Domain restricts m's input tuple to the basic set whose points
// appear as the domain of some pair in m.
func (m BasicMap) ApplyDomain(n BasicMap) BasicMap {
	return BasicMap{b: adt.ApplyDomain(m.b, n.b)}
}

// ApplyRange composes m with n on m's output / n's input tuple.
func (m BasicMap) ApplyRange(n BasicMap) BasicMap {
	return BasicMap{b: adt.ApplyRange(m.b, n.b)}
}

// Reverse swaps m's input and output tuples.
func (m BasicMap) Reverse() BasicMap {
	return BasicMap{b: m.b.Reverse()}
}

// Intersect returns the pairs common to m and n.
func (m BasicMap) Intersect(n BasicMap) BasicMap {
	return BasicMap{b: adt.Intersect(m.b, n.b)}
}

// Product returns the basic map relating (m.in, n.in) to (m.out, n.out).
func (m BasicMap) Product(n BasicMap) BasicMap {
	return BasicMap{b: adt.Product(m.b, n.b)}
}

// ProjectOut eliminates the n dimensions of the given kind starting at
// first via Fourier-Motzkin elimination.
func (m BasicMap) ProjectOut(k space.Kind, first, n int) BasicMap {
	return BasicMap{b: m.b.ProjectOut(k, first, n)}
}

// PartialLexmin computes, piecewise over domain, the lexicographically
// smallest output tuple satisfying m for each parameter point. Pieces
// report their formula as one affine expression over the parameters
// per output dimension; empty reports the portion of domain with no
// solution at all.
func (m BasicMap) PartialLexmin(domain BasicSet) (pieces []Leaf, empty []BasicSet) {
	rawPieces, rawEmpty := pip.PartialLexmin(m.b, domain.b)
	pieces = make([]Leaf, len(rawPieces))
	for i, p := range rawPieces {
		pieces[i] = Leaf{Domain: BasicSet{b: p.Domain}, Formula: p.Formula}
	}
	empty = make([]BasicSet, len(rawEmpty))
	for i, e := range rawEmpty {
		empty[i] = BasicSet{b: e}
	}
	return pieces, empty
}

// A Leaf is one piece of a PartialLexmin result: the parameter region
// Domain, paired with one affine Formula row per output dimension. Each
// row has length 1+nParam and is dotted with [1, param...] to evaluate
// that output coordinate.
type Leaf struct {
	Domain  BasicSet
	Formula []num.Row
}
