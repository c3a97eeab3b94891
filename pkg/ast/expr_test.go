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
package ast_test

import (
	"testing"

	"github.com/conjure-cp/conjure-go/pkg/assert"
	"github.com/conjure-cp/conjure-go/pkg/ast"
)

func lit(v int64) ast.Expression { return ast.NewAtomExpr(ast.AtomLit(ast.IntLit(v))) }

func Test_Expression_Universe_CountsAllNodes(t *testing.T) {
	e := ast.NewNaryOp(ast.OpSum, lit(1), lit(2), lit(3))
	u := ast.Universe(e)
	assert.Equal(t, 4, len(u))
}

func Test_Expression_Transform_BottomUp(t *testing.T) {
	e := ast.NewUnOp(ast.OpNeg, lit(5))

	calls := []string{}
	ast.Transform(e, func(x ast.Expression) ast.Expression {
		if _, ok := x.(*ast.AtomExpr); ok {
			calls = append(calls, "atom")
		} else {
			calls = append(calls, "neg")
		}

		return x
	})

	assert.Equal(t, []string{"atom", "neg"}, calls)
}

func Test_Expression_IsSafe_UnsafeDivPropagates(t *testing.T) {
	safeDiv := ast.NewPartialOp(ast.OpDiv, true, lit(10), lit(2))
	unsafeDiv := ast.NewPartialOp(ast.OpDiv, false, lit(10), lit(0))

	assert.True(t, safeDiv.IsSafe())
	assert.False(t, unsafeDiv.IsSafe())

	wrapped := ast.NewNaryOp(ast.OpSum, safeDiv, unsafeDiv)
	assert.False(t, wrapped.IsSafe())
}

func Test_Expression_DomainOf_Sum(t *testing.T) {
	a := ast.NewAtomExpr(ast.AtomLit(ast.IntLit(1)))
	b := ast.NewAtomExpr(ast.AtomLit(ast.IntLit(2)))
	sum := ast.NewNaryOp(ast.OpSum, a, b)

	dom := sum.DomainOf()
	ok, err := dom.Contains(ast.IntLit(3), nil)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func Test_Zipper_ReplaceAndRebuild(t *testing.T) {
	root := ast.NewNaryOp(ast.OpSum, lit(1), lit(2))

	z := ast.NewZipper(root)
	assert.True(t, z.GoDown())
	z.Replace(lit(99))
	assert.True(t, z.GoRight())
	z.Replace(lit(2))

	rebuilt := z.RebuildRoot().(*ast.NaryOp)
	got := rebuilt.Args[0].(*ast.AtomExpr).Val.Lit().IntVal()
	assert.Equal(t, int64(99), got)
}
