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

// Package num provides the arbitrary-precision integer primitive (spec
// component C1) that every other component builds on: coefficient rows,
// matrix entries and tableau samples are all num.Int.
//
// An Int is an apd.Decimal constrained to exponent 0. apd was chosen over
// math/big because it is already the arbitrary-precision number type the
// rest of this module's lineage (cuelang.org/go) standardizes on; using it
// here keeps one bignum implementation in the dependency graph instead of
// two.
package num

import (
	"fmt"

	"github.com/cockroachdb/apd/v2"
)

// Context is the shared apd.Context used for all Int arithmetic. Its
// precision is set generously high: coefficient rows in this engine rarely
// exceed a few hundred decimal digits even after several eliminations, but
// unlike CUE's fixed-precision display numbers, an Int must never lose
// digits to rounding, so precision is set far above any value group of
// constraints is expected to need and grown on demand by EnsurePrecision.
var Context = &apd.Context{
	Precision:   200,
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundDown,
}

// EnsurePrecision grows Context's precision if a computation is about to
// exceed it (e.g. repeated multiplication while computing determinants in
// mat.HermiteNormalForm). It is idempotent and cheap to call defensively.
func EnsurePrecision(digits uint32) {
	if Context.Precision < digits {
		Context.Precision = digits
	}
}

// Int is an arbitrary-precision signed integer.
type Int struct {
	d apd.Decimal
}

// Zero, One and MinusOne are convenience constants. They must not be
// mutated; copy them with FromInt64 if a mutable value is needed.
var (
	Zero     = FromInt64(0)
	One      = FromInt64(1)
	MinusOne = FromInt64(-1)
)

// FromInt64 constructs an Int from a machine integer.
func FromInt64(v int64) Int {
	var n Int
	n.d.SetInt64(v)
	return n
}

// FromString parses a base-10 integer literal.
func FromString(s string) (Int, error) {
	var n Int
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return n, fmt.Errorf("num: invalid integer literal %q: %w", s, err)
	}
	n.d = *d
	return n, nil
}

// MustFromString is FromString but panics on a malformed literal; intended
// for tests and literal constants in code, not for parsing user input.
func MustFromString(s string) Int {
	n, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Int) String() string { return n.d.String() }

// Int64 returns the value as a machine integer, and false if it does not
// fit.
func (n Int) Int64() (int64, bool) {
	v, err := n.d.Int64()
	return v, err == nil
}

func (n Int) IsZero() bool    { return n.d.IsZero() }
func (n Int) IsOne() bool     { return n.Cmp(One) == 0 }
func (n Int) IsNegOne() bool  { return n.Cmp(MinusOne) == 0 }
func (n Int) Sign() int       { return n.d.Sign() }
func (n Int) IsNegative() bool { return n.Sign() < 0 }
func (n Int) IsPositive() bool { return n.Sign() > 0 }

func (n Int) Cmp(m Int) int { return n.d.Cmp(&m.d) }

func must(c apd.Condition, err error) {
	if err != nil {
		panic(fmt.Errorf("num: arithmetic fault: %w", err))
	}
	if c.Inexact() || c.Rounded() {
		panic(fmt.Errorf("num: arithmetic fault: lost precision (%v); increase num.Context.Precision", c))
	}
}

// Add returns n+m.
func (n Int) Add(m Int) Int {
	var r Int
	c, err := Context.Add(&r.d, &n.d, &m.d)
	must(c, err)
	return r
}

// Sub returns n-m.
func (n Int) Sub(m Int) Int {
	var r Int
	c, err := Context.Sub(&r.d, &n.d, &m.d)
	must(c, err)
	return r
}

// Mul returns n*m.
func (n Int) Mul(m Int) Int {
	var r Int
	c, err := Context.Mul(&r.d, &n.d, &m.d)
	must(c, err)
	return r
}

// Neg returns -n.
func (n Int) Neg() Int {
	var r Int
	c, err := Context.Neg(&r.d, &n.d)
	must(c, err)
	return r
}

// Abs returns |n|.
func (n Int) Abs() Int {
	var r Int
	c, err := Context.Abs(&r.d, &n.d)
	must(c, err)
	return r
}

// FloorDiv returns floor(n/m). m must be non-zero.
func (n Int) FloorDiv(m Int) Int {
	if m.IsZero() {
		panic("num: division by zero")
	}
	var q, r Int
	_, err := Context.QuoInteger(&q.d, &n.d, &m.d)
	if err != nil {
		panic(fmt.Errorf("num: arithmetic fault: %w", err))
	}
	_, err = Context.Rem(&r.d, &n.d, &m.d)
	if err != nil {
		panic(fmt.Errorf("num: arithmetic fault: %w", err))
	}
	// QuoInteger truncates toward zero; adjust to floor when the signs of
	// the remainder and divisor differ and the remainder is non-zero.
	if !r.IsZero() && (r.Sign() < 0) != (m.Sign() < 0) {
		q = q.Sub(One)
	}
	return q
}

// CeilDiv returns ceil(n/m).
func (n Int) CeilDiv(m Int) Int {
	return n.Neg().FloorDiv(m).Neg()
}

// ExactDiv returns n/m and reports false if m does not exactly divide n.
func (n Int) ExactDiv(m Int) (Int, bool) {
	q := n.FloorDiv(m)
	if q.Mul(m).Cmp(n) != 0 {
		return Int{}, false
	}
	return q, true
}

// Gcd returns the non-negative greatest common divisor of n and m. Gcd(0,0)
// is 0.
func (n Int) Gcd(m Int) Int {
	a, b := n.Abs(), m.Abs()
	for !b.IsZero() {
		var r Int
		_, err := Context.Rem(&r.d, &a.d, &b.d)
		if err != nil {
			panic(fmt.Errorf("num: arithmetic fault: %w", err))
		}
		a, b = b, r
	}
	return a
}

// Lcm returns the non-negative least common multiple of n and m. Lcm with
// a zero argument is 0.
func (n Int) Lcm(m Int) Int {
	if n.IsZero() || m.IsZero() {
		return Zero
	}
	g := n.Gcd(m)
	q, _ := n.ExactDiv(g)
	return q.Mul(m).Abs()
}

// ExtGCD returns (g, x, y) such that x*n + y*m = g = gcd(n, m), via the
// extended Euclidean algorithm. Used by mat's Hermite normal form to build
// the unimodular (determinant ±1) column/row combinations spec §4.1's
// elimination step and §3's HNF rely on.
func (n Int) ExtGCD(m Int) (g, x, y Int) {
	oldR, r := n, m
	oldS, s := One, Zero
	oldT, t := Zero, One
	for !r.IsZero() {
		q := oldR.FloorDiv(r)
		oldR, r = r, oldR.Sub(q.Mul(r))
		oldS, s = s, oldS.Sub(q.Mul(s))
		oldT, t = t, oldT.Sub(q.Mul(t))
	}
	if oldR.IsNegative() {
		oldR, oldS, oldT = oldR.Neg(), oldS.Neg(), oldT.Neg()
	}
	return oldR, oldS, oldT
}

// Min returns the smaller of n and m.
func Min(n, m Int) Int {
	if n.Cmp(m) <= 0 {
		return n
	}
	return m
}

// Max returns the larger of n and m.
func Max(n, m Int) Int {
	if n.Cmp(m) >= 0 {
		return n
	}
	return m
}
