// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package xmath

import "fmt"

// Infinite is the interval enclosing every other interval.
var Infinite = Interval{NegInfinity, PosInfinity}

// Interval provides a discrete range of integers, such as 0..1, 1..18, etc.
// It is used to bound a compound arithmetic expression's domain by lifting
// +, -, *, etc to interval arithmetic, and to decide the bit-width of a SAT
// bit-vector representation.
type Interval struct {
	min InfInt
	max InfInt
}

// NewInterval creates a finite interval [lower, upper]. Panics if lower>upper.
func NewInterval(lower, upper int64) Interval {
	if lower > upper {
		panic("invalid interval")
	}

	return Interval{FromInt64(lower), FromInt64(upper)}
}

// Single constructs the degenerate interval [v, v].
func Single(v int64) Interval {
	return NewInterval(v, v)
}

// NewIntervalFromInfInt builds an interval directly from a pair of
// (potentially infinite) bounds, e.g. to lift a Domain's range list to a
// single enclosing interval.
func NewIntervalFromInfInt(lower, upper InfInt) Interval {
	return Interval{lower, upper}
}

// IsFinite determines whether this interval excludes any infinity.
func (p Interval) IsFinite() bool {
	return p.min.IsFinite() && p.max.IsFinite()
}

// Min returns the minimum value of this interval.
func (p Interval) Min() InfInt {
	return p.min
}

// Max returns the maximum value of this interval.
func (p Interval) Max() InfInt {
	return p.max
}

// BitWidth returns the minimum number of two's-complement bits required to
// store every element of this (necessarily finite) interval, and whether a
// sign bit is required. Used by the SAT bit-blasting encoder to size a
// decision variable's bit-vector representation.
func (p Interval) BitWidth() (width uint, signed bool) {
	if !p.IsFinite() {
		panic("cannot determine bit-width of an infinite interval")
	}

	minV := p.min.IntVal()
	maxV := p.max.IntVal()
	signed = minV.Sign() < 0
	bits := uint(0)

	if maxV.Sign() > 0 {
		bits = uint(maxV.BitLen())
	}

	if signed {
		// a negative bound -m needs BitLen(m-1) value bits plus the sign bit
		negMag := p.min.Add(FromInt64(1)).Negate().IntVal()
		bits = max(bits, uint(negMag.BitLen())) + 1
	}

	if bits == 0 {
		bits = 1
	}

	return bits, signed
}

// Contains checks whether a concrete value lies within this interval.
func (p Interval) Contains(val int64) bool {
	v := FromInt64(val)
	return p.min.Cmp(v) <= 0 && p.max.Cmp(v) >= 0
}

// Within checks whether this interval is contained within the given bounds.
func (p Interval) Within(bound Interval) bool {
	return p.min.Cmp(bound.min) >= 0 && p.max.Cmp(bound.max) <= 0
}

// Union returns the smallest interval enclosing both operands.
func (p Interval) Union(q Interval) Interval {
	return Interval{p.min.Min(q.min), p.max.Max(q.max)}
}

// Add returns the interval sum of p and q.
func (p Interval) Add(q Interval) Interval {
	return Interval{p.min.Add(q.min), p.max.Add(q.max)}
}

// Sub returns the interval difference of p and q.
func (p Interval) Sub(q Interval) Interval {
	return Interval{p.min.Sub(q.max), p.max.Sub(q.min)}
}

// Mul returns the interval product of p and q.
func (p Interval) Mul(q Interval) Interval {
	x1 := p.min.Mul(q.min)
	x2 := p.min.Mul(q.max)
	x3 := p.max.Mul(q.min)
	x4 := p.max.Mul(q.max)

	lo := x1.Min(x2).Min(x3.Min(x4))
	hi := x1.Max(x2).Max(x3.Max(x4))

	return Interval{lo, hi}
}

// Neg returns the interval negation of p.
func (p Interval) Neg() Interval {
	return Interval{p.max.Negate(), p.min.Negate()}
}

func (p Interval) String() string {
	return fmt.Sprintf("%s..%s", p.min.String(), p.max.String())
}
