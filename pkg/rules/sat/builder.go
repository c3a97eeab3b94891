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

// Package sat implements the SAT/CNF lowering catalogue: a Tseytin-encoding
// CNF builder, two's-complement bit-vector gadgets built on it, and the
// model-level encoder that walks a rewritten (CP-free) model and appends
// clauses to ast.Model.
package sat

import (
	"github.com/conjure-cp/conjure-go/pkg/ast"
)

// Builder assigns fresh DIMACS-style variable numbers and emits clauses
// (via Tseytin encoding) to the attached model.
type Builder struct {
	model   *ast.Model
	nextVar int
	trueLit int
}

// NewBuilder constructs a Builder appending clauses to model. Variable
// numbers start at 1, matching DIMACS convention (0 is never a valid
// literal).
func NewBuilder(model *ast.Model) *Builder {
	return &Builder{model: model, nextVar: 1}
}

// NewVar allocates and returns a fresh variable number.
func (b *Builder) NewVar() int {
	v := b.nextVar
	b.nextVar++

	return v
}

func (b *Builder) addClause(lits ...int) {
	c := make(ast.Clause, len(lits))
	copy(c, lits)
	b.model.AddClause(c)
}

// TrueLit returns a literal permanently asserted true, allocating the
// backing variable and its unit clause on first use.
func (b *Builder) TrueLit() int {
	if b.trueLit == 0 {
		v := b.NewVar()
		b.addClause(v)
		b.trueLit = v
	}

	return b.trueLit
}

// FalseLit returns a literal permanently asserted false.
func (b *Builder) FalseLit() int { return -b.TrueLit() }

// Not returns the negated literal (no gate needed: DIMACS literals are
// already signed).
func (b *Builder) Not(x int) int { return -x }

// And Tseytin-encodes z <-> (x AND y) and returns z.
func (b *Builder) And(x, y int) int {
	z := b.NewVar()
	b.addClause(-x, -y, z)
	b.addClause(x, -z)
	b.addClause(y, -z)

	return z
}

// Or Tseytin-encodes z <-> (x OR y) and returns z.
func (b *Builder) Or(x, y int) int {
	z := b.NewVar()
	b.addClause(x, y, -z)
	b.addClause(-x, z)
	b.addClause(-y, z)

	return z
}

// Xor Tseytin-encodes z <-> (x XOR y) and returns z.
func (b *Builder) Xor(x, y int) int {
	z := b.NewVar()
	b.addClause(-x, -y, -z)
	b.addClause(x, y, -z)
	b.addClause(x, -y, z)
	b.addClause(-x, y, z)

	return z
}

// Iff returns a literal equivalent to (x XOR y) negated, i.e. x <-> y,
// without allocating a second variable: the literal form of Xor's output
// variable, negated, already denotes "not xor" = "iff".
func (b *Builder) Iff(x, y int) int { return b.Not(b.Xor(x, y)) }

// Imply returns a literal equivalent to (x -> y), reusing Or.
func (b *Builder) Imply(x, y int) int { return b.Or(-x, y) }

// AndAll folds And over xs, returning TrueLit() for an empty list.
func (b *Builder) AndAll(xs []int) int {
	if len(xs) == 0 {
		return b.TrueLit()
	}

	acc := xs[0]
	for _, x := range xs[1:] {
		acc = b.And(acc, x)
	}

	return acc
}

// OrAll folds Or over xs, returning FalseLit() for an empty list.
func (b *Builder) OrAll(xs []int) int {
	if len(xs) == 0 {
		return b.FalseLit()
	}

	acc := xs[0]
	for _, x := range xs[1:] {
		acc = b.Or(acc, x)
	}

	return acc
}

// Mux Tseytin-encodes z <-> (sel ? a : c) and returns z.
func (b *Builder) Mux(sel, a, c int) int {
	z := b.NewVar()
	b.addClause(-sel, -a, z)
	b.addClause(-sel, a, -z)
	b.addClause(sel, -c, z)
	b.addClause(sel, c, -z)

	return z
}

// AssertTrue emits the unit clause forcing x true.
func (b *Builder) AssertTrue(x int) { b.addClause(x) }
