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

// Package runtime implements the isl_ctx contract of spec §5-6: a
// Context bundles the engine's tunable Options with the two pieces of
// state isl_ctx owns on behalf of every value allocated from it — an
// integer-vector block cache (num.Pool) and a dimension-name interning
// table (space.Interner). A Context is not safe for concurrent use; per
// spec §5 it, and every value allocated from it, is confined to the
// thread that created it.
package runtime

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/space"
)

// LPSolver selects the LP backend (spec §6).
type LPSolver string

const (
	LPTab LPSolver = "tab"
	LPPip LPSolver = "pip"
)

// ILPSolver selects the integer-sampling strategy (spec §6).
type ILPSolver string

const (
	ILPGBR ILPSolver = "gbr"
	ILPPip ILPSolver = "pip"
)

// PipBackend selects the parametric ILP backend (spec §6).
type PipBackend string

const (
	PipTab PipBackend = "tab"
	PipPip PipBackend = "pip"
)

// ContextRepr selects how symbolic contexts are represented during
// parametric ILP (spec §6).
type ContextRepr string

const (
	ContextGBR    ContextRepr = "gbr"
	ContextLexmin ContextRepr = "lexmin"
)

// GBRFrequency controls how often generalised basis reduction is
// re-run during the integer scan (spec §4.3).
type GBRFrequency string

const (
	GBRNever  GBRFrequency = "never"
	GBROnce   GBRFrequency = "once"
	GBRAlways GBRFrequency = "always"
)

// ClosureAlgorithm selects the transitive-closure strategy (spec §6).
// The values line up with closure.Algorithm, but runtime does not import
// the closure package and nothing converts Options.Closure into one:
// isl.Map.TransitiveClosure takes its algorithm as an explicit argument.
type ClosureAlgorithm string

const (
	ClosureISL   ClosureAlgorithm = "isl"
	ClosureOmega ClosureAlgorithm = "omega"
	ClosureBox   ClosureAlgorithm = "box"
)

// BoundBackend selects the polynomial bound backend (spec §6). Both
// values are consumed by an external collaborator; islgo only carries
// the setting.
type BoundBackend string

const (
	BoundBernstein BoundBackend = "bernstein"
	BoundRange     BoundBackend = "range"
)

// ConvexBackend selects the convex-hull algorithm (spec §4.5).
type ConvexBackend string

const (
	ConvexWrap ConvexBackend = "wrap"
	ConvexFM   ConvexBackend = "fm"
)

// Options is the configuration structure of spec §6. Zero value is not
// meaningful; use DefaultOptions to obtain the documented defaults.
type Options struct {
	LPSolver     LPSolver     `yaml:"lp_solver"`
	ILPSolver    ILPSolver    `yaml:"ilp_solver"`
	Pip          PipBackend   `yaml:"pip"`
	Context      ContextRepr  `yaml:"context"`
	GBR          GBRFrequency `yaml:"gbr"`
	GBROnlyFirst bool         `yaml:"gbr_only_first"`
	Closure      ClosureAlgorithm `yaml:"closure"`
	Bound        BoundBackend     `yaml:"bound"`
	Convex       ConvexBackend    `yaml:"convex"`
}

// DefaultOptions returns the documented defaults (spec §6). Pip, Context,
// Closure, Bound and Convex, which have no named default there, are given
// the first enum value spec §6 lists for them; GBR, which has none
// either, is given GBROnce.
func DefaultOptions() Options {
	return Options{
		LPSolver:     LPTab,
		ILPSolver:    ILPGBR,
		Pip:          PipTab,
		Context:      ContextGBR,
		GBR:          GBROnce,
		GBROnlyFirst: false,
		Closure:      ClosureISL,
		Bound:        BoundBernstein,
		Convex:       ConvexWrap,
	}
}

// LoadOptions reads a YAML document from r and overrides the documented
// defaults with whatever fields it sets. A caller that wants the
// defaults alone need not call LoadOptions at all.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		return Options{}, fmt.Errorf("runtime: decoding options: %w", err)
	}
	return opts, nil
}

// Context is the isl_ctx contract of spec §5-6. It owns the engine's
// configuration plus the block cache and name interner shared by every
// value allocated while it is live.
type Context struct {
	Options Options

	vecs    *num.Pool
	names   *space.Interner
}

// NewContext returns a Context configured with opts, with a fresh block
// cache and name interner.
func NewContext(opts Options) *Context {
	return &Context{
		Options: opts,
		vecs:    num.NewPool(),
		names:   space.NewInterner(),
	}
}

// New returns a Context configured with DefaultOptions.
func New() *Context {
	return NewContext(DefaultOptions())
}

// Vecs returns the Context's integer-vector block cache.
func (c *Context) Vecs() *num.Pool {
	return c.vecs
}

// Names returns the Context's dimension-name interning table.
func (c *Context) Names() *space.Interner {
	return c.names
}
