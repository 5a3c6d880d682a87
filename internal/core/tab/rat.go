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

// Package tab implements spec component C6: a simplex tableau over the
// rational relaxation of a basic map's constraints, used by ilp, sample,
// hull, pip and coalesce to answer LP feasibility/optimization and
// redundancy/implicit-equality questions.
package tab

import "github.com/Meinersbur/islgo/internal/core/num"

// Rat is an exact rational number, numerator over a strictly positive
// denominator, always kept in lowest terms.
type Rat struct {
	Num, Den num.Int
}

func normalize(n, d num.Int) Rat {
	if d.IsNegative() {
		n, d = n.Neg(), d.Neg()
	}
	if n.IsZero() {
		return Rat{num.Zero, num.One}
	}
	g := n.Gcd(d)
	n2, _ := n.ExactDiv(g)
	d2, _ := d.ExactDiv(g)
	return Rat{n2, d2}
}

// NewRat returns n/d in lowest terms, d must be non-zero.
func NewRat(n, d num.Int) Rat {
	if d.IsZero() {
		panic("tab: NewRat: zero denominator")
	}
	return normalize(n, d)
}

// RatFromInt lifts an integer to a Rat.
func RatFromInt(n num.Int) Rat { return Rat{n, num.One} }

var (
	RatZero = RatFromInt(num.Zero)
	RatOne  = RatFromInt(num.One)
)

func (r Rat) IsZero() bool     { return r.Num.IsZero() }
func (r Rat) IsNegative() bool { return r.Num.IsNegative() }
func (r Rat) IsPositive() bool { return r.Num.IsPositive() }

func (r Rat) Add(s Rat) Rat {
	return normalize(r.Num.Mul(s.Den).Add(s.Num.Mul(r.Den)), r.Den.Mul(s.Den))
}

func (r Rat) Sub(s Rat) Rat {
	return normalize(r.Num.Mul(s.Den).Sub(s.Num.Mul(r.Den)), r.Den.Mul(s.Den))
}

func (r Rat) Mul(s Rat) Rat {
	return normalize(r.Num.Mul(s.Num), r.Den.Mul(s.Den))
}

func (r Rat) Div(s Rat) Rat {
	if s.IsZero() {
		panic("tab: Rat.Div: division by zero")
	}
	return normalize(r.Num.Mul(s.Den), r.Den.Mul(s.Num))
}

func (r Rat) Neg() Rat { return Rat{r.Num.Neg(), r.Den} }

func (r Rat) Cmp(s Rat) int {
	return r.Num.Mul(s.Den).Cmp(s.Num.Mul(r.Den))
}

// Floor returns the greatest integer <= r.
func (r Rat) Floor() num.Int { return r.Num.FloorDiv(r.Den) }

// Ceil returns the smallest integer >= r.
func (r Rat) Ceil() num.Int { return r.Num.CeilDiv(r.Den) }

// IsInteger reports whether r's denominator is 1 (in lowest terms).
func (r Rat) IsInteger() bool { return r.Den.IsOne() }

func (r Rat) String() string {
	if r.Den.IsOne() {
		return r.Num.String()
	}
	return r.Num.String() + "/" + r.Den.String()
}
