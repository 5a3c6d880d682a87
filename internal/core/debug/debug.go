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

// Package debug prints a given basic set or basic map.
//
// The result follows spec §6's informative ISL text format, but is not
// meant to be re-parsed: it exists to make constraint systems readable
// during development and to give test failures a diff-friendly
// rendering, the same role the teacher's own node printer plays for ADT
// values.
package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/space"
)

// Config controls the rendering.
type Config struct {
	// Compact renders each basic map on a single line instead of one
	// constraint per line.
	Compact bool
	// Raw additionally lists each existentially quantified div, normally
	// elided as an implementation detail, as "divN known=<bool>"; the div
	// definitions themselves are not printed.
	Raw bool
}

// WriteBasicMap writes b in ISL text format to w.
func WriteBasicMap(w io.Writer, b *adt.BasicMap, config *Config) {
	if config == nil {
		config = &Config{}
	}
	p := printer{Writer: w, cfg: config}
	p.basicMap(b)
}

// BasicMapString is WriteBasicMap rendered to a string.
func BasicMapString(b *adt.BasicMap, config *Config) string {
	var sb strings.Builder
	WriteBasicMap(&sb, b, config)
	return sb.String()
}

// WriteMap writes a union of basic maps as a disjunction.
func WriteMap(w io.Writer, disjuncts []*adt.BasicMap, config *Config) {
	if config == nil {
		config = &Config{}
	}
	p := printer{Writer: w, cfg: config}
	if len(disjuncts) == 0 {
		io.WriteString(w, "{}")
		return
	}
	for i, b := range disjuncts {
		if i > 0 {
			p.string(" ;\n")
		}
		p.basicMap(b)
	}
}

// MapString is WriteMap rendered to a string.
func MapString(disjuncts []*adt.BasicMap, config *Config) string {
	var sb strings.Builder
	WriteMap(&sb, disjuncts, config)
	return sb.String()
}

type printer struct {
	io.Writer
	indent string
	cfg    *Config
}

func (p *printer) string(s string) {
	s = strings.Replace(s, "\n", "\n"+p.indent, -1)
	_, _ = io.WriteString(p, s)
}

func (p *printer) basicMap(b *adt.BasicMap) {
	sp := b.Space()
	p.string("[")
	p.names(sp, space.Param)
	p.string("] -> { ")
	p.tuple(sp, space.In)
	p.string(" -> ")
	p.tuple(sp, space.Out)
	p.string(" : ")

	saved := p.indent
	if !p.cfg.Compact {
		p.indent += "  "
	}

	first := true
	sep := func() {
		if first {
			first = false
			return
		}
		if p.cfg.Compact {
			p.string(" && ")
		} else {
			p.string("\n")
		}
	}
	for i := 0; i < b.NEq(); i++ {
		sep()
		p.constraint(sp, b.Eq(i), "=")
	}
	for i := 0; i < b.NIneq(); i++ {
		sep()
		p.constraint(sp, b.Ineq(i), ">=")
	}
	if p.cfg.Raw {
		for i := 0; i < b.NDiv(); i++ {
			sep()
			fmt.Fprintf(p, "div%d known=%v", i, b.DivDef(i).Known())
		}
	}
	if first {
		p.string("true")
	}

	p.indent = saved
	p.string(" }")
}

func (p *printer) names(sp space.Space, k space.Kind) {
	n := sp.Dim(k)
	for i := 0; i < n; i++ {
		if i > 0 {
			p.string(", ")
		}
		p.string(p.dimName(sp, k, i))
	}
}

func (p *printer) tuple(sp space.Space, k space.Kind) {
	p.string("[")
	p.names(sp, k)
	p.string("]")
}

func (p *printer) dimName(sp space.Space, k space.Kind, i int) string {
	if n := sp.Name(k, i); n != "" {
		return n
	}
	switch k {
	case space.Param:
		return fmt.Sprintf("p%d", i)
	case space.In:
		return fmt.Sprintf("i%d", i)
	default:
		return fmt.Sprintf("o%d", i)
	}
}

// constraint prints row (a length sp.Total() affine row: [const, params,
// in, out]) as "<linear combination> op 0".
func (p *printer) constraint(sp space.Space, row num.Row, op string) {
	names := make([]string, 0, sp.Total()-1)
	for i := 0; i < sp.NParam(); i++ {
		names = append(names, p.dimName(sp, space.Param, i))
	}
	for i := 0; i < sp.NIn(); i++ {
		names = append(names, p.dimName(sp, space.In, i))
	}
	for i := 0; i < sp.NOut(); i++ {
		names = append(names, p.dimName(sp, space.Out, i))
	}

	var terms []string
	for i, name := range names {
		c := row[1+i]
		if c.IsZero() {
			continue
		}
		terms = append(terms, fmt.Sprintf("%s*%s", c.String(), name))
	}
	if len(terms) == 0 {
		terms = append(terms, "0")
	}
	fmt.Fprintf(p, "%s + %s %s 0", row[0].String(), strings.Join(terms, " + "), op)
}
