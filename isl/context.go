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

// Package isl is the public API surface of the Presburger arithmetic
// engine: basic sets and maps, their disjunctive unions (Set and Map),
// and the solver operations over them. It is a thin wrapper over
// internal/core/*, the way the teacher's root cue package wraps
// internal/core/adt and internal/core/eval.
package isl

import (
	"io"

	"github.com/Meinersbur/islgo/internal/core/runtime"
)

// Options is the solver configuration of spec §6: which algorithm each
// component should use. See internal/core/runtime.Options for the field
// list and defaults.
type Options = runtime.Options

// LoadOptions decodes a YAML document into Options, starting from
// DefaultOptions and overriding only the fields the document sets.
func LoadOptions(r io.Reader) (Options, error) {
	return runtime.LoadOptions(r)
}

// DefaultOptions returns the solver configuration used when no Options
// are given explicitly.
func DefaultOptions() Options {
	return runtime.DefaultOptions()
}

// A Context owns the resources a sequence of basic set/map operations
// shares: a block-of-rows free list and a dimension-name interning
// table. Every value produced by a Context's constructors is only valid
// for the lifetime of that Context; there is no cross-Context sharing,
// matching isl_ctx's own one-allocator-per-computation contract (spec
// §5).
type Context struct {
	rt *runtime.Context
}

// NewContext creates a Context with DefaultOptions.
func NewContext() *Context {
	return &Context{rt: runtime.New()}
}

// NewContextWithOptions creates a Context configured by opts.
func NewContextWithOptions(opts Options) *Context {
	return &Context{rt: runtime.NewContext(opts)}
}

// Options returns the configuration this Context was created with.
func (c *Context) Options() Options {
	return c.rt.Options
}
