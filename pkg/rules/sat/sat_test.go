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
	"testing"

	"github.com/conjure-cp/conjure-go/pkg/assert"
	"github.com/conjure-cp/conjure-go/pkg/ast"
)

func newBuilder() *Builder {
	symtab := ast.NewSymbolTable()
	return NewBuilder(ast.NewModel(symtab))
}

func Test_TrueLit_FalseLit_AreComplementary(t *testing.T) {
	b := newBuilder()
	assert.Equal(t, -b.TrueLit(), b.FalseLit())
}

func Test_And_TseytinEncodesConjunction(t *testing.T) {
	b := newBuilder()
	x, y := b.NewVar(), b.NewVar()
	z := b.And(x, y)
	assert.True(t, z != x && z != y)
}

func Test_AndAll_EmptyIsTrue(t *testing.T) {
	b := newBuilder()
	assert.Equal(t, b.TrueLit(), b.AndAll(nil))
}

func Test_OrAll_EmptyIsFalse(t *testing.T) {
	b := newBuilder()
	assert.Equal(t, b.FalseLit(), b.OrAll(nil))
}

func Test_Imply_IsOrOfNegatedAntecedent(t *testing.T) {
	b := newBuilder()
	x, y := b.NewVar(), b.NewVar()
	// Every gate allocates a fresh variable, so Imply is compared against Or
	// applied on a second builder in the same state.
	ref := newBuilder()
	rx, ry := ref.NewVar(), ref.NewVar()
	assert.Equal(t, ref.Or(-rx, ry), b.Imply(x, y))
	assert.Equal(t, ref.model.Clauses(), b.model.Clauses())
}

func Test_ConstVector_WidensPastRequestedWidth(t *testing.T) {
	b := newBuilder()
	v, err := b.ConstVector(200, 4, false)
	assert.NoError(t, err)
	assert.Equal(t, uint(8), v.Width())
}

func Test_ConstVector_AcceptsWidthAboveSixtyFourBits(t *testing.T) {
	b := newBuilder()
	_, err := b.ConstVector(1, 65, false)
	assert.NoError(t, err)
}

func constLit(b *Builder, value int64, width uint, signed bool) BitVector {
	v, _ := b.ConstVector(value, width, signed)
	return v
}

func Test_Add_ConstantsProduceWidenedSum(t *testing.T) {
	b := newBuilder()
	x := constLit(b, 3, 4, false)
	y := constLit(b, 5, 4, false)
	sum, _ := b.Add(x, y)
	assert.Equal(t, uint(4), sum.Width())
}

func Test_Negate_IsInvolutive_OnConstantShape(t *testing.T) {
	b := newBuilder()
	x := constLit(b, 3, 8, true)
	neg := b.Negate(x)
	negNeg := b.Negate(neg)
	assert.Equal(t, x.Width(), negNeg.Width())
}

func Test_Multiply_WidthIsSumOfOperandWidths(t *testing.T) {
	b := newBuilder()
	x := constLit(b, 3, 4, false)
	y := constLit(b, 5, 4, false)
	prod := b.Multiply(x, y)
	assert.Equal(t, uint(8), prod.Width())
}

func Test_Divide_QuotientAndRemainderMatchDividendWidth(t *testing.T) {
	b := newBuilder()
	x := constLit(b, 7, 8, false)
	y := constLit(b, 2, 8, false)
	q, r := b.Divide(x, y)
	assert.Equal(t, x.Width(), q.Width())
	assert.Equal(t, x.Width(), r.Width())
}

func Test_Abs_UnsignedIsIdentity(t *testing.T) {
	b := newBuilder()
	x := constLit(b, 3, 8, false)
	assert.Equal(t, x.Bits, b.Abs(x).Bits)
}

func Test_Eq_OfIdenticalConstantsHoldsTrueLit(t *testing.T) {
	b := newBuilder()
	x := constLit(b, 4, 6, false)
	y := constLit(b, 4, 6, false)
	assert.Equal(t, b.TrueLit(), b.Eq(x, y))
}

func Test_Neq_OfIdenticalConstantsHoldsFalseLit(t *testing.T) {
	b := newBuilder()
	x := constLit(b, 4, 6, false)
	y := constLit(b, 4, 6, false)
	assert.Equal(t, b.FalseLit(), b.Neq(x, y))
}

func intRef(symtab *ast.SymbolTable, name string, lo, hi int64) ast.Expression {
	ptr := ast.NewDeclPtr(ast.NewDecisionVariable(ast.UserName(name), ast.Int(ast.BoundedRange(lo, hi))))
	symtab.Insert(ptr)

	return ast.NewAtomExpr(ast.AtomRef(ptr))
}

func Test_EncodeInt_AllocatesAndCachesVariableVector(t *testing.T) {
	symtab := ast.NewSymbolTable()
	model := ast.NewModel(symtab)
	b := NewBuilder(model)

	x := intRef(symtab, "x", 0, 15)

	v1, err := b.EncodeInt(symtab, x)
	assert.NoError(t, err)
	assert.Equal(t, uint(4), v1.Width())

	v2, err := b.EncodeInt(symtab, x)
	assert.NoError(t, err)
	assert.Equal(t, v1.Bits, v2.Bits)
}

func Test_EncodeBool_LiteralAtom(t *testing.T) {
	symtab := ast.NewSymbolTable()
	model := ast.NewModel(symtab)
	b := NewBuilder(model)

	lit, err := b.EncodeBool(symtab, ast.NewAtomExpr(ast.AtomLit(ast.BoolLit(true))))
	assert.NoError(t, err)
	assert.Equal(t, b.TrueLit(), lit)
}

func Test_EncodeBool_EqOfIntAtoms(t *testing.T) {
	symtab := ast.NewSymbolTable()
	model := ast.NewModel(symtab)
	b := NewBuilder(model)

	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 0, 10)

	lit, err := b.EncodeBool(symtab, ast.NewBinOp(ast.OpEq, x, y))
	assert.NoError(t, err)
	assert.True(t, lit != 0)
}

func Test_EncodeBool_AllDiffOverTwoVars(t *testing.T) {
	symtab := ast.NewSymbolTable()
	model := ast.NewModel(symtab)
	b := NewBuilder(model)

	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 0, 10)

	lit, err := b.EncodeBool(symtab, ast.NewNaryOp(ast.OpAllDiff, x, y))
	assert.NoError(t, err)
	assert.True(t, lit != 0)
}

func Test_EncodeModel_AssertsEachRootChild(t *testing.T) {
	symtab := ast.NewSymbolTable()
	model := ast.NewModel(symtab)
	b := NewBuilder(model)

	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 0, 10)
	model.AddConstraint(ast.NewBinOp(ast.OpLeq, x, y))

	err := EncodeModel(b, symtab, model)
	assert.NoError(t, err)
}

func Test_EncodeInt_UnsupportedPartialOpErrors(t *testing.T) {
	symtab := ast.NewSymbolTable()
	model := ast.NewModel(symtab)
	b := NewBuilder(model)

	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 1, 10)

	pow := ast.NewPartialOp(ast.OpPow, false, x, y)

	_, err := b.EncodeInt(symtab, pow)
	assert.Error(t, err)
}
