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

// Package space implements spec component C3: the typed "space" that
// frames a basic set or basic map, and the interned dimension-name table
// isl_ctx owns (spec §5, "a string interning table for dimension names").
package space

import "fmt"

// Kind distinguishes which of a Space's dimension groups an index belongs
// to, used by operations that address dimensions by (Kind, position)
// rather than a raw column number (spec §4.1: move_dims, insert_dims,
// project_out).
type Kind int

const (
	Param Kind = iota
	In
	Out
	Div
)

func (k Kind) String() string {
	switch k {
	case Param:
		return "param"
	case In:
		return "in"
	case Out:
		return "out"
	case Div:
		return "div"
	}
	return "unknown"
}

// A Space is the tuple (nparam, n_in, n_out, name_table) of spec §3.
// Spaces are immutable once constructed and are shared by value; all
// fields are unexported so that sharing is safe.
type Space struct {
	nParam int
	nIn    int
	nOut   int
	names  *names
}

// names holds the optional identifiers for parameters, input dims and
// output dims. A nil *names means no dimension in the space is named.
type names struct {
	param []string
	in    []string
	out   []string
}

// New returns the space with nParam parameters, nIn input dimensions and
// nOut output dimensions, all unnamed.
func New(nParam, nIn, nOut int) Space {
	if nParam < 0 || nIn < 0 || nOut < 0 {
		panic("space: negative dimension count")
	}
	return Space{nParam: nParam, nIn: nIn, nOut: nOut}
}

// NewSet is New for a basic set: a space with no input dimensions, the set
// dimensions occupying the Out slot, per spec §3 ("For a basic set, i=0
// and 'set dims' occupy the o slot").
func NewSet(nParam, nDims int) Space {
	return New(nParam, 0, nDims)
}

func (s Space) NParam() int { return s.nParam }
func (s Space) NIn() int    { return s.nIn }
func (s Space) NOut() int   { return s.nOut }

// Dim returns the dimension count for the given Kind. Div is not valid
// here: the number of divs is a property of the BasicMap, not the Space,
// since two basic maps sharing a Space may carry different divs.
func (s Space) Dim(k Kind) int {
	switch k {
	case Param:
		return s.nParam
	case In:
		return s.nIn
	case Out:
		return s.nOut
	}
	panic(fmt.Sprintf("space: Dim: invalid kind %v", k))
}

// Total returns 1 (the constant column) plus the parameter, input and
// output dimension counts — the row width before any divs are appended,
// per spec §3's coefficient row layout.
func (s Space) Total() int {
	return 1 + s.nParam + s.nIn + s.nOut
}

// Offset returns the column at which dimensions of kind k begin.
func (s Space) Offset(k Kind) int {
	switch k {
	case Param:
		return 1
	case In:
		return 1 + s.nParam
	case Out:
		return 1 + s.nParam + s.nIn
	case Div:
		return 1 + s.nParam + s.nIn + s.nOut
	}
	panic(fmt.Sprintf("space: Offset: invalid kind %v", k))
}

// Equal reports whether two spaces have identical dimension counts and
// identical names: spec §3 says spaces are "equal when the tuple is
// equal", and the tuple is (p, i, o, name_table); two differently-named
// spaces of the same shape are compatible (see Compatible) but not Equal.
func (s Space) Equal(t Space) bool {
	if s.nParam != t.nParam || s.nIn != t.nIn || s.nOut != t.nOut {
		return false
	}
	return sameNames(s.names, t.names)
}

func sameNames(a, b *names) bool {
	if a == nil || b == nil {
		return a == b
	}
	return sliceEqual(a.param, b.param) && sliceEqual(a.in, b.in) && sliceEqual(a.out, b.out)
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Compatible reports whether s and t share dimensions pairwise equal up to
// one renaming (spec §3): same shape, names ignored.
func (s Space) Compatible(t Space) bool {
	return s.nParam == t.nParam && s.nIn == t.nIn && s.nOut == t.nOut
}

// WithNames returns a copy of s with the given per-kind names attached.
// Any of the slices may be nil or shorter than the corresponding
// dimension count, in which case the remaining dimensions are unnamed.
func (s Space) WithNames(param, in, out []string) Space {
	s.names = &names{param: param, in: in, out: out}
	return s
}

// Name returns the name of dimension i of kind k, or "" if unnamed or out
// of range.
func (s Space) Name(k Kind, i int) string {
	if s.names == nil {
		return ""
	}
	var list []string
	switch k {
	case Param:
		list = s.names.param
	case In:
		list = s.names.in
	case Out:
		list = s.names.out
	}
	if i < 0 || i >= len(list) {
		return ""
	}
	return list[i]
}

// Reverse swaps the In and Out dimension groups, the space-level part of
// spec §4.1's reverse(M) operation.
func (s Space) Reverse() Space {
	s.nIn, s.nOut = s.nOut, s.nIn
	if s.names != nil {
		n := *s.names
		n.in, n.out = s.names.out, s.names.in
		s.names = &n
	}
	return s
}

// Domain returns the space of the domain of a map space: a set space over
// just the input dimensions.
func (s Space) Domain() Space {
	return NewSet(s.nParam, s.nIn).WithNames(namesOrNil(s.names, func(n *names) []string { return n.param }), namesOrNil(s.names, func(n *names) []string { return n.in }), nil)
}

// Range returns the space of the range of a map space: a set space over
// just the output dimensions.
func (s Space) Range() Space {
	return NewSet(s.nParam, s.nOut).WithNames(namesOrNil(s.names, func(n *names) []string { return n.param }), namesOrNil(s.names, func(n *names) []string { return n.out }), nil)
}

func namesOrNil(n *names, f func(*names) []string) []string {
	if n == nil {
		return nil
	}
	return f(n)
}

// Product returns the space formed by concatenating the In and Out
// dimensions of s and t pairwise (spec §4.1's product(A,B)).
func Product(s, t Space) Space {
	if s.nParam != t.nParam {
		panic("space: Product: parameter count mismatch")
	}
	return New(s.nParam, s.nIn+t.nIn, s.nOut+t.nOut)
}
