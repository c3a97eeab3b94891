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
package rewrite

import (
	"testing"

	"github.com/conjure-cp/conjure-go/pkg/assert"
	"github.com/conjure-cp/conjure-go/pkg/ast"
)

func boolLitExpr(v bool) ast.Expression { return litExpr(ast.BoolLit(v)) }
func intLitExpr(v int64) ast.Expression { return litExpr(ast.IntLit(v)) }

func Test_DoubleNegation(t *testing.T) {
	x := ast.NewUnOp(ast.OpNot, ast.NewUnOp(ast.OpNot, boolLitExpr(true)))

	red, err := doubleNegation(x, nil)
	assert.NoError(t, err)

	lit, ok := asLit(red.Expr)
	assert.True(t, ok)
	assert.Equal(t, ast.LitKindBool, lit.Kind())
	assert.True(t, lit.BoolVal())
}

func Test_DeMorganNotAnd_DistributesOverChildren(t *testing.T) {
	p := ast.NewAtomExpr(ast.AtomLit(ast.BoolLit(true)))
	q := ast.NewAtomExpr(ast.AtomLit(ast.BoolLit(false)))
	not := ast.NewUnOp(ast.OpNot, ast.NewNaryOp(ast.OpAnd, p, q))

	red, err := deMorganNotAnd(not, nil)
	assert.NoError(t, err)

	or, ok := red.Expr.(*ast.NaryOp)
	assert.True(t, ok)
	assert.Equal(t, ast.OpOr, or.Op)
	assert.Equal(t, 2, len(or.Args))

	for _, a := range or.Args {
		un, ok := a.(*ast.UnOp)
		assert.True(t, ok)
		assert.Equal(t, ast.OpNot, un.Op)
	}
}

func Test_OrPairwiseTautology_TotalityOfImplication(t *testing.T) {
	tbl := ast.NewSymbolTable()
	p := ast.NewAtomExpr(ast.AtomRef(tbl.Gensym(ast.Bool())))
	q := ast.NewAtomExpr(ast.AtomRef(tbl.Gensym(ast.Bool())))

	pImpliesQ := ast.NewBinOp(ast.OpImply, p, q)
	qImpliesP := ast.NewBinOp(ast.OpImply, q, p)
	or := ast.NewNaryOp(ast.OpOr, pImpliesQ, qImpliesP)

	red, err := orPairwiseTautology(or, nil)
	assert.NoError(t, err)

	lit, ok := asLit(red.Expr)
	assert.True(t, ok)
	assert.True(t, lit.BoolVal())
}

func Test_OrPairwiseTautology_ConditionalExcludedMiddle(t *testing.T) {
	tbl := ast.NewSymbolTable()
	p := ast.NewAtomExpr(ast.AtomRef(tbl.Gensym(ast.Bool())))
	q := ast.NewAtomExpr(ast.AtomRef(tbl.Gensym(ast.Bool())))

	pImpliesQ := ast.NewBinOp(ast.OpImply, p, q)
	pImpliesNotQ := ast.NewBinOp(ast.OpImply, p, ast.NewUnOp(ast.OpNot, q))
	or := ast.NewNaryOp(ast.OpOr, pImpliesQ, pImpliesNotQ)

	red, err := orPairwiseTautology(or, nil)
	assert.NoError(t, err)

	lit, ok := asLit(red.Expr)
	assert.True(t, ok)
	assert.True(t, lit.BoolVal())
}

func Test_OrPairwiseTautology_NotApplicableOnUnrelatedImplications(t *testing.T) {
	tbl := ast.NewSymbolTable()
	p := ast.NewAtomExpr(ast.AtomRef(tbl.Gensym(ast.Bool())))
	q := ast.NewAtomExpr(ast.AtomRef(tbl.Gensym(ast.Bool())))
	r := ast.NewAtomExpr(ast.AtomRef(tbl.Gensym(ast.Bool())))

	or := ast.NewNaryOp(ast.OpOr, ast.NewBinOp(ast.OpImply, p, q), ast.NewBinOp(ast.OpImply, q, r))

	_, err := orPairwiseTautology(or, nil)
	assert.Error(t, err)
}

func Test_AllDiffConstants_DuplicateIsFalse(t *testing.T) {
	n := ast.NewNaryOp(ast.OpAllDiff, intLitExpr(1), intLitExpr(2), intLitExpr(1))

	red, err := allDiffConstants(n, nil)
	assert.NoError(t, err)

	lit, ok := asLit(red.Expr)
	assert.True(t, ok)
	assert.False(t, lit.BoolVal())
}

func Test_AllDiffConstants_DistinctIsTrue(t *testing.T) {
	n := ast.NewNaryOp(ast.OpAllDiff, intLitExpr(1), intLitExpr(2), intLitExpr(3))

	red, err := allDiffConstants(n, nil)
	assert.NoError(t, err)

	lit, ok := asLit(red.Expr)
	assert.True(t, ok)
	assert.True(t, lit.BoolVal())
}

func Test_FoldConstantNaryOp_SumOfConstants(t *testing.T) {
	n := ast.NewNaryOp(ast.OpSum, intLitExpr(2), intLitExpr(3), intLitExpr(4))

	red, err := foldConstantNaryOp(n, nil)
	assert.NoError(t, err)

	lit, ok := asLit(red.Expr)
	assert.True(t, ok)
	assert.Equal(t, int64(9), lit.IntVal())
}

func Test_IdentityElimination_SumDropsZero(t *testing.T) {
	x := ast.NewAtomExpr(ast.AtomLit(ast.IntLit(7)))
	n := ast.NewNaryOp(ast.OpSum, intLitExpr(0), x)

	red, err := identityElimination(n, nil)
	assert.NoError(t, err)
	assert.Equal(t, x, red.Expr)
}

func Test_AbsorbingElimination_ProductZero(t *testing.T) {
	x := ast.NewAtomExpr(ast.AtomLit(ast.IntLit(7)))
	n := ast.NewNaryOp(ast.OpProduct, x, intLitExpr(0))

	red, err := absorbingElimination(n, nil)
	assert.NoError(t, err)

	lit, ok := asLit(red.Expr)
	assert.True(t, ok)
	assert.Equal(t, int64(0), lit.IntVal())
}

func Test_RootBooleanEval_CollapsesOnFalse(t *testing.T) {
	x := ast.NewAtomExpr(ast.AtomLit(ast.IntLit(1)))
	root := ast.NewRoot(ast.NewInDomain(x, ast.Int(ast.SingleRange(1))), boolLitExpr(false))

	red, err := rootBooleanEval(root, nil)
	assert.NoError(t, err)

	newRoot, ok := red.Expr.(*ast.Root)
	assert.True(t, ok)
	assert.Equal(t, 1, len(newRoot.Children()))

	lit, ok := asLit(newRoot.Children()[0])
	assert.True(t, ok)
	assert.False(t, lit.BoolVal())
}

func Test_RootBooleanEval_DropsTrueConjuncts(t *testing.T) {
	x := ast.NewAtomExpr(ast.AtomLit(ast.IntLit(1)))
	in := ast.NewInDomain(x, ast.Int(ast.SingleRange(1)))
	root := ast.NewRoot(in, boolLitExpr(true))

	red, err := rootBooleanEval(root, nil)
	assert.NoError(t, err)

	newRoot, ok := red.Expr.(*ast.Root)
	assert.True(t, ok)
	assert.Equal(t, 1, len(newRoot.Children()))
	assert.Equal(t, in, newRoot.Children()[0])
}

func Test_FlattenRootAnd_SplicesNestedAnd(t *testing.T) {
	a := ast.NewAtomExpr(ast.AtomLit(ast.BoolLit(true)))
	b := ast.NewAtomExpr(ast.AtomLit(ast.BoolLit(false)))
	c := ast.NewAtomExpr(ast.AtomLit(ast.BoolLit(true)))

	nested := ast.NewNaryOp(ast.OpAnd, a, b)
	root := ast.NewRoot(nested, c)

	red, err := flattenRootAnd(root, nil)
	assert.NoError(t, err)

	newRoot, ok := red.Expr.(*ast.Root)
	assert.True(t, ok)
	assert.Equal(t, 3, len(newRoot.Children()))
}

func Test_ResolveRuleSet_OrdersByPriorityThenName(t *testing.T) {
	rules := ResolveRuleSet([]string{"partial_eval"})
	assert.True(t, len(rules) > 0)

	for i := 1; i < len(rules); i++ {
		assert.True(t, rules[i-1].Priority >= rules[i].Priority)

		if rules[i-1].Priority == rules[i].Priority {
			assert.True(t, rules[i-1].Name <= rules[i].Name)
		}
	}
}
