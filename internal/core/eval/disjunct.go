// Copyright 2021 CUE Authors
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

package eval

import (
	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/coalesce"
	"github.com/Meinersbur/islgo/internal/core/subtract"
)

// Coalesce returns a new Map holding m's disjunct list simplified (spec
// §4.6): merging
// pairs of basic maps into one where possible, and dropping any disjunct
// contained in another.
func (m *Map) Coalesce() *Map {
	return &Map{space: m.space, disjuncts: coalesce.Pairwise(m.disjuncts)}
}

// Subtract returns m \ n (spec §4.7): every disjunct of m with every
// disjunct of n's union subtracted out, unioned back together.
func Subtract(m, n *Map) *Map {
	out := &Map{space: m.space}
	for _, a := range m.disjuncts {
		rest := subtract.Basic(a, n.disjuncts)
		out.disjuncts = append(out.disjuncts, rest...)
	}
	return out.dropEmpty()
}
