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

// Package xmath provides the unbounded-integer and interval arithmetic used
// to represent domain ranges.
package xmath

import (
	"fmt"
	"math/big"
)

const notAnInfinity = 0
const negativeInfinity = 1
const positiveInfinity = 2
const infinity = 3

// PosInfinity represents positive infinity.
var PosInfinity = InfInt{big.Int{}, positiveInfinity}

// NegInfinity represents negative infinity.
var NegInfinity = InfInt{big.Int{}, negativeInfinity}

// Infinity represents plain (unsigned) infinity.
var Infinity = InfInt{big.Int{}, infinity}

// InfInt represents an unbounded integer value which, additionally, can be
// negative infinity, positive infinity, or plain infinity (covering both
// directions). This underlies the unbounded-left/unbounded-right range
// variants of an integer Domain.
type InfInt struct {
	val  big.Int
	sign uint8
}

// FromInt64 constructs a finite InfInt from an int64.
func FromInt64(v int64) InfInt {
	var i InfInt
	i.SetInt(*big.NewInt(v))

	return i
}

// Add two (potentially infinite) integers together.
func (p InfInt) Add(other InfInt) InfInt {
	var val big.Int

	switch {
	case p.sign == notAnInfinity && other.sign == notAnInfinity:
		val.Add(&p.val, &other.val)
		return InfInt{val, notAnInfinity}
	case p.sign == other.sign:
		return p
	default:
		return Infinity
	}
}

// Cmp compares two (potentially infinite) integer values. Panics if either
// side is plain infinity.
func (p InfInt) Cmp(o InfInt) int {
	switch {
	case p.sign == infinity || o.sign == infinity:
		panic("cannot compare against infinity")
	case p.sign == notAnInfinity && o.sign == notAnInfinity:
		return p.val.Cmp(&o.val)
	case p.sign == o.sign:
		return 0
	case p.sign == negativeInfinity || o.sign == positiveInfinity:
		return -1
	case p.sign == positiveInfinity || o.sign == negativeInfinity:
		return 1
	default:
		panic(fmt.Sprintf("unreachable (%s ~ %s)", p.String(), o.String()))
	}
}

// CmpInt compares a potentially infinite value against a finite big.Int.
func (p InfInt) CmpInt(other big.Int) int {
	switch p.sign {
	case infinity:
		panic("cannot compare against infinity")
	case notAnInfinity:
		return p.val.Cmp(&other)
	case negativeInfinity:
		return -1
	case positiveInfinity:
		return 1
	default:
		panic(fmt.Sprintf("unreachable (%s ~ %s)", p.String(), other.String()))
	}
}

// IntVal converts a finite InfInt into a big.Int. Panics if infinite.
func (p InfInt) IntVal() big.Int {
	if p.sign != notAnInfinity {
		panic("cannot cast infinity into a big integer")
	}

	return p.val
}

// Int64Val converts a finite InfInt into an int64, if representable.
func (p InfInt) Int64Val() (int64, bool) {
	if p.sign != notAnInfinity || !p.val.IsInt64() {
		return 0, false
	}

	return p.val.Int64(), true
}

// IsFinite returns true if this represents a concrete (non-infinite) value.
func (p InfInt) IsFinite() bool {
	return p.sign == notAnInfinity
}

// Min determines the least of two values. The minimum of plain infinity and
// anything is negative infinity.
func (p InfInt) Min(o InfInt) InfInt {
	switch {
	case p.sign == notAnInfinity && o.sign == notAnInfinity:
		if p.val.Cmp(&o.val) <= 0 {
			return p
		}

		return o
	case p.sign == positiveInfinity && o.sign == positiveInfinity:
		return PosInfinity
	default:
		return NegInfinity
	}
}

// Max determines the greatest of two values. The maximum of plain infinity
// and anything is positive infinity.
func (p InfInt) Max(o InfInt) InfInt {
	switch {
	case p.sign == notAnInfinity && o.sign == notAnInfinity:
		if p.val.Cmp(&o.val) >= 0 {
			return p
		}

		return o
	case p.sign == negativeInfinity && o.sign == negativeInfinity:
		return NegInfinity
	default:
		return PosInfinity
	}
}

// Mul multiplies two (potentially infinite) values.
func (p InfInt) Mul(o InfInt) InfInt {
	var val big.Int

	switch {
	case p.sign == infinity || o.sign == infinity:
		return Infinity
	case p.sign == notAnInfinity && p.val.Sign() == 0:
		return FromInt64(0)
	case o.sign == notAnInfinity && o.val.Sign() == 0:
		return FromInt64(0)
	case p.sign == negativeInfinity && o.sign == negativeInfinity:
		return PosInfinity
	case p.sign == negativeInfinity || o.sign == negativeInfinity:
		return NegInfinity
	case p.sign == positiveInfinity || o.sign == positiveInfinity:
		return PosInfinity
	default:
		val.Mul(&p.val, &o.val)
		return InfInt{val, notAnInfinity}
	}
}

// Negate this (potentially infinite) integer.
func (p InfInt) Negate() InfInt {
	switch p.sign {
	case positiveInfinity:
		return NegInfinity
	case negativeInfinity:
		return PosInfinity
	case infinity:
		return Infinity
	default:
		var val big.Int

		val.Neg(&p.val)

		return InfInt{val, notAnInfinity}
	}
}

// SetInt sets this InfInt to a finite big integer value.
func (p *InfInt) SetInt(other big.Int) {
	var val big.Int

	val.Set(&other)
	p.val = val
	p.sign = notAnInfinity
}

// Sub subtracts another (potentially infinite) value from this one.
func (p InfInt) Sub(other InfInt) InfInt {
	return p.Add(other.Negate())
}

// String renders an InfInt for debugging and error messages.
func (p InfInt) String() string {
	switch p.sign {
	case negativeInfinity:
		return "-inf"
	case positiveInfinity:
		return "+inf"
	case infinity:
		return "inf"
	default:
		return p.val.String()
	}
}
