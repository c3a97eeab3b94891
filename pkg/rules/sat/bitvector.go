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
package sat

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/conjure-cp/conjure-go/pkg/cerr"
)

// BitVector is a two's-complement (if Signed) bit pattern, Bits[0] the least
// significant bit, each entry a CNF literal (a variable, its negation, or
// TrueLit/FalseLit).
type BitVector struct {
	Bits   []int
	Signed bool
}

// Width reports the bit-vector's width.
func (v BitVector) Width() uint { return uint(len(v.Bits)) }

// ConstVector encodes value as a constant bit-vector of the given width,
// auto-widening up to 64 bits when value does not fit rather than silently
// truncating; it returns cerr.DomainError{Kind: TooLarge} only once 64 bits
// still isn't enough.
func (b *Builder) ConstVector(value int64, width uint, signed bool) (BitVector, error) {
	needed := bitsNeeded(value, signed)
	if needed > 64 {
		return BitVector{}, cerr.NewDomainError(cerr.TooLarge, "constant %d needs more than 64 bits", value)
	}

	if needed > width {
		width = needed
	}

	pattern := bitset.New(width)

	for i := uint(0); i < width; i++ {
		if (value>>i)&1 == 1 {
			pattern.Set(i)
		}
	}

	bits := make([]int, width)

	for i := uint(0); i < width; i++ {
		if pattern.Test(i) {
			bits[i] = b.TrueLit()
		} else {
			bits[i] = b.FalseLit()
		}
	}

	return BitVector{Bits: bits, Signed: signed}, nil
}

func bitsNeeded(value int64, signed bool) uint {
	if value == 0 {
		return 1
	}

	if !signed {
		n := uint(0)
		for v := uint64(value); v != 0; v >>= 1 {
			n++
		}

		return n
	}

	// Two's-complement: account for both positive and negative ranges.
	n := uint(1)

	for {
		lo := -(int64(1) << (n - 1))
		hi := int64(1)<<(n-1) - 1

		if value >= lo && value <= hi {
			return n
		}

		n++

		if n > 64 {
			return n
		}
	}
}

// AllocVector allocates width fresh Boolean variables as a new bit-vector.
func (b *Builder) AllocVector(width uint, signed bool) BitVector {
	bits := make([]int, width)
	for i := range bits {
		bits[i] = b.NewVar()
	}

	return BitVector{Bits: bits, Signed: signed}
}

// extend sign- or zero-extends v to width.
func (b *Builder) extend(v BitVector, width uint) []int {
	bits := append([]int{}, v.Bits...)

	signBit := b.FalseLit()
	if v.Signed && len(v.Bits) > 0 {
		signBit = v.Bits[len(v.Bits)-1]
	}

	for uint(len(bits)) < width {
		bits = append(bits, signBit)
	}

	return bits
}

func (b *Builder) fullAdder(x, y, cin int) (sum, cout int) {
	xorXY := b.Xor(x, y)
	sum = b.Xor(xorXY, cin)
	cout = b.Or(b.And(x, y), b.And(cin, xorXY))

	return sum, cout
}

// Add is the ripple-carry adder: z = x + y, zero-extended/sign-extended to
// the wider of the two inputs' widths, with the final carry-out returned
// separately (callers needing overflow detection can inspect it).
func (b *Builder) Add(x, y BitVector) (BitVector, int) {
	width := x.Width()
	if y.Width() > width {
		width = y.Width()
	}

	xb := b.extend(x, width)
	yb := b.extend(y, width)

	sum := make([]int, width)
	carry := b.FalseLit()

	for i := uint(0); i < width; i++ {
		sum[i], carry = b.fullAdder(xb[i], yb[i], carry)
	}

	return BitVector{Bits: sum, Signed: x.Signed || y.Signed}, carry
}

// Negate is the two's-complement negate: invert every bit, then add one.
func (b *Builder) Negate(x BitVector) BitVector {
	inv := make([]int, len(x.Bits))
	for i, bit := range x.Bits {
		inv[i] = b.Not(bit)
	}

	one, _ := b.ConstVector(1, x.Width(), x.Signed)
	sum, _ := b.Add(BitVector{Bits: inv, Signed: x.Signed}, one)

	return sum
}

// Sub computes x - y via x + (-y).
func (b *Builder) Sub(x, y BitVector) BitVector {
	sum, _ := b.Add(x, b.Negate(y))
	return sum
}

// Multiply is the shift-add multiplier: for each bit i of y, AND-mask a
// copy of x shifted left by i into a running ripple-carry sum. The result
// is sized to the sum of both operand widths, wide enough to hold any
// product without truncation.
func (b *Builder) Multiply(x, y BitVector) BitVector {
	width := x.Width() + y.Width()
	xExt := b.extend(x, width)

	product := make([]int, width)
	for i := range product {
		product[i] = b.FalseLit()
	}

	for i, ybit := range y.Bits {
		partial := make([]int, width)

		for j := uint(0); j < width; j++ {
			src := b.FalseLit()
			if j >= uint(i) {
				src = xExt[int(j)-i]
			}

			partial[j] = b.And(src, ybit)
		}

		sum, _ := b.Add(BitVector{Bits: product}, BitVector{Bits: partial})
		product = sum.Bits[:width]
	}

	return BitVector{Bits: product, Signed: x.Signed || y.Signed}
}

// muxVector selects a (when sel) or c (otherwise), bit by bit.
func (b *Builder) muxVector(sel int, a, c BitVector) BitVector {
	out := make([]int, len(a.Bits))
	for i := range out {
		out[i] = b.Mux(sel, a.Bits[i], c.Bits[i])
	}

	return BitVector{Bits: out, Signed: a.Signed}
}

// Divide is the restoring unsigned-division algorithm: shift x's bits one
// at a time into a running remainder, trial-subtract the divisor, and keep
// the subtraction only when it didn't borrow. Returns (quotient, remainder),
// both the width of x.
func (b *Builder) Divide(x, y BitVector) (quotient, remainder BitVector) {
	n := x.Width()
	yExt := b.extend(y, n)

	rem := make([]int, n)
	for i := range rem {
		rem[i] = b.FalseLit()
	}

	quot := make([]int, n)

	for i := int(n) - 1; i >= 0; i-- {
		// remainder = (remainder << 1) | x.Bits[i]
		shifted := append([]int{x.Bits[i]}, rem[:n-1]...)

		trial, carry := b.Add(BitVector{Bits: shifted}, b.Negate(BitVector{Bits: yExt}))
		noBorrow := carry // carry-out of x + (-y) is 1 iff x >= y (no borrow)

		quot[i] = noBorrow
		rem = b.muxVector(noBorrow, trial, BitVector{Bits: shifted}).Bits
	}

	return BitVector{Bits: quot}, BitVector{Bits: rem}
}

// Abs selects between x and its negation based on the sign bit
// (sign-bit-mux), returning x unchanged if it carries no sign bit
// (unsigned).
func (b *Builder) Abs(x BitVector) BitVector {
	if !x.Signed || len(x.Bits) == 0 {
		return x
	}

	sign := x.Bits[len(x.Bits)-1]
	return b.muxVector(sign, b.Negate(x), x)
}

// leq returns a literal true iff x <= y, comparing both as unsigned bit
// patterns extended to a common width: it is the carry-out of y + ^x + 1
// (the subtraction y - x), which is set exactly when no borrow occurs.
func (b *Builder) leq(x, y BitVector) int {
	width := x.Width()
	if y.Width() > width {
		width = y.Width()
	}

	xb := b.extend(x, width)
	yb := b.extend(y, width)
	carry := b.TrueLit()

	for i := uint(0); i < width; i++ {
		_, carry = b.fullAdder(yb[i], b.Not(xb[i]), carry)
	}

	return carry
}

// Min returns the bitwise mux(x<=y, x, y); Max the dual.
func (b *Builder) Min(x, y BitVector) BitVector {
	return b.muxVector(b.leq(x, y), x, y)
}

// Max returns mux(x<=y, y, x).
func (b *Builder) Max(x, y BitVector) BitVector {
	return b.muxVector(b.leq(x, y), y, x)
}

// Eq returns a literal true iff every bit of x equals the corresponding bit
// of y, via an XOR/IFF reduction (XOR each bit pair, OR the results, then
// negate: equal iff no bit differs). A bit pair holding the same literal on
// both sides cannot differ and is skipped, so two vectors of identical
// literals compare to TrueLit() without allocating any gate.
func (b *Builder) Eq(x, y BitVector) int {
	width := x.Width()
	if y.Width() > width {
		width = y.Width()
	}

	xb := b.extend(x, width)
	yb := b.extend(y, width)

	anyDiff := b.FalseLit()
	for i := uint(0); i < width; i++ {
		if xb[i] == yb[i] {
			continue
		}

		anyDiff = b.Or(anyDiff, b.Xor(xb[i], yb[i]))
	}

	return b.Not(anyDiff)
}

// Neq is the negation of Eq.
func (b *Builder) Neq(x, y BitVector) int { return b.Not(b.Eq(x, y)) }
