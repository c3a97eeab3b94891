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
package cp

import (
	"testing"

	"github.com/conjure-cp/conjure-go/pkg/assert"
	"github.com/conjure-cp/conjure-go/pkg/ast"
)

func intRef(symtab *ast.SymbolTable, name string, lo, hi int64) ast.Expression {
	ptr := ast.NewDeclPtr(ast.NewDecisionVariable(ast.UserName(name), ast.Int(ast.BoundedRange(lo, hi))))
	symtab.Insert(ptr)

	return ast.NewAtomExpr(ast.AtomRef(ptr))
}

func Test_FlattenBinOp_EqOfAtoms(t *testing.T) {
	symtab := ast.NewSymbolTable()
	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 0, 10)

	eq := ast.NewBinOp(ast.OpEq, x, y)

	red, err := flattenBinOp(eq, symtab)
	assert.NoError(t, err)

	flat, ok := red.Expr.(*MinionEq)
	assert.True(t, ok)
	assert.Equal(t, x, flat.Lhs)
	assert.Equal(t, y, flat.Rhs)
}

func Test_FlattenBinOp_LtBecomesOffsetIneq(t *testing.T) {
	symtab := ast.NewSymbolTable()
	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 0, 10)

	lt := ast.NewBinOp(ast.OpLt, x, y)

	red, err := flattenBinOp(lt, symtab)
	assert.NoError(t, err)

	flat, ok := red.Expr.(*MinionIneq)
	assert.True(t, ok)
	assert.Equal(t, int64(-1), flat.Offset)
}

func Test_FlattenSumDirect_LeqAgainstLiteral(t *testing.T) {
	symtab := ast.NewSymbolTable()
	a := intRef(symtab, "a", 0, 10)
	b := intRef(symtab, "b", 0, 10)
	c := intRef(symtab, "c", 0, 10)

	sum := ast.NewNaryOp(ast.OpSum, a, b, c)
	leq := ast.NewBinOp(ast.OpLeq, sum, ast.NewAtomExpr(ast.AtomLit(ast.IntLit(4))))

	red, err := flattenSumDirect(leq, symtab)
	assert.NoError(t, err)

	flat, ok := red.Expr.(*FlatSum)
	assert.True(t, ok)
	assert.False(t, flat.Geq)
	assert.Equal(t, int64(4), flat.Const)
	assert.Equal(t, 3, len(flat.Args))
}

func Test_FlattenSumDirect_GeqWithSumOnRight(t *testing.T) {
	symtab := ast.NewSymbolTable()
	a := intRef(symtab, "a", 0, 10)
	b := intRef(symtab, "b", 0, 10)

	sum := ast.NewNaryOp(ast.OpSum, a, b)
	// 4 <= sum(a, b)  ~>  sum(a, b) >= 4
	geq := ast.NewBinOp(ast.OpLeq, ast.NewAtomExpr(ast.AtomLit(ast.IntLit(4))), sum)

	red, err := flattenSumDirect(geq, symtab)
	assert.NoError(t, err)

	flat, ok := red.Expr.(*FlatSum)
	assert.True(t, ok)
	assert.True(t, flat.Geq)
	assert.Equal(t, int64(4), flat.Const)
}

func Test_FlattenSumDirect_EqReusesMinionSumEq(t *testing.T) {
	symtab := ast.NewSymbolTable()
	a := intRef(symtab, "a", 0, 10)
	b := intRef(symtab, "b", 0, 10)

	sum := ast.NewNaryOp(ast.OpSum, a, b)
	eq := ast.NewBinOp(ast.OpEq, sum, ast.NewAtomExpr(ast.AtomLit(ast.IntLit(4))))

	red, err := flattenSumDirect(eq, symtab)
	assert.NoError(t, err)

	flat, ok := red.Expr.(*MinionSumEq)
	assert.True(t, ok)
	assert.Equal(t, 2, len(flat.Args))
}

func Test_FlattenSumDirect_NotApplicableWhenNotASum(t *testing.T) {
	symtab := ast.NewSymbolTable()
	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 0, 10)

	leq := ast.NewBinOp(ast.OpLeq, x, y)

	_, err := flattenSumDirect(leq, symtab)
	assert.Error(t, err)
}

func Test_AuxifyBinOpOperand_WrapsNonAtomicLhs(t *testing.T) {
	symtab := ast.NewSymbolTable()
	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 0, 10)

	sum := ast.NewNaryOp(ast.OpSum, x, y)
	eq := ast.NewBinOp(ast.OpEq, sum, y)

	red, err := auxifyBinOpOperand(eq, symtab)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(red.NewConstraints))

	newEq, ok := red.Expr.(*ast.BinOp)
	assert.True(t, ok)
	assert.True(t, isAtomic(newEq.Lhs))

	_, ok = red.NewConstraints[0].(*ast.AuxDeclaration)
	assert.True(t, ok)
}

func Test_FlattenAuxDeclaration_Sum(t *testing.T) {
	symtab := ast.NewSymbolTable()
	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 0, 10)

	ptr := symtab.Gensym(ast.Int(ast.BoundedRange(0, 20)))
	auxDecl := ast.NewAuxDeclaration(ptr, ast.NewNaryOp(ast.OpSum, x, y))

	red, err := flattenAuxDeclaration(auxDecl, symtab)
	assert.NoError(t, err)

	flat, ok := red.Expr.(*MinionSumEq)
	assert.True(t, ok)
	assert.Equal(t, 2, len(flat.Args))
}

func Test_FlattenAllDiff_AtomicArgs(t *testing.T) {
	symtab := ast.NewSymbolTable()
	x := intRef(symtab, "x", 0, 10)
	y := intRef(symtab, "y", 0, 10)

	n := ast.NewNaryOp(ast.OpAllDiff, x, y)

	red, err := flattenAllDiff(n, symtab)
	assert.NoError(t, err)

	_, ok := red.Expr.(*MinionAllDiff)
	assert.True(t, ok)
}

func Test_FlattenNot_AtomBecomesWatchedLiteral(t *testing.T) {
	symtab := ast.NewSymbolTable()
	x := intRef(symtab, "x", 0, 1)

	not := ast.NewUnOp(ast.OpNot, x)

	red, err := flattenUnOpNot(not, symtab)
	assert.NoError(t, err)

	flat, ok := red.Expr.(*MinionWatchedLiteral)
	assert.True(t, ok)
	assert.Equal(t, int64(0), flat.Val)
}

func Test_ReduceProductArity_SplitsThreeArgProduct(t *testing.T) {
	symtab := ast.NewSymbolTable()
	x := intRef(symtab, "x", 1, 10)
	y := intRef(symtab, "y", 1, 10)
	z := intRef(symtab, "z", 1, 10)

	p := ast.NewNaryOp(ast.OpProduct, x, y, z)

	red, err := reduceProductArity(p, symtab)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(red.NewConstraints))

	newProd, ok := red.Expr.(*ast.NaryOp)
	assert.True(t, ok)
	assert.Equal(t, 2, len(newProd.Args))
}
