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
	"errors"
	"testing"

	"github.com/conjure-cp/conjure-go/pkg/assert"
	"github.com/conjure-cp/conjure-go/pkg/ast"
	"github.com/conjure-cp/conjure-go/pkg/cerr"
)

func Test_Domain_Int_NormalisesAdjacentRanges(t *testing.T) {
	d := ast.Int(ast.BoundedRange(1, 3), ast.SingleRange(4), ast.BoundedRange(10, 12))
	ranges := d.Ranges()
	assert.Equal(t, 2, len(ranges))
}

func Test_Domain_Int_Contains(t *testing.T) {
	d := ast.Int(ast.BoundedRange(1, 3), ast.BoundedRange(10, 12))
	ok, err := d.Contains(ast.IntLit(2), nil)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Contains(ast.IntLit(5), nil)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func Test_Domain_Length_Int(t *testing.T) {
	d := ast.Int(ast.BoundedRange(1, 3))
	n, err := d.Length(nil)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func Test_Domain_Union_Int(t *testing.T) {
	a := ast.Int(ast.BoundedRange(1, 3))
	b := ast.Int(ast.BoundedRange(5, 7))
	u, err := a.Union(b)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(u.Ranges()))
}

func Test_Domain_Intersect_Int(t *testing.T) {
	a := ast.Int(ast.BoundedRange(1, 5))
	b := ast.Int(ast.BoundedRange(3, 7))
	u, err := a.Intersect(b)
	assert.NoError(t, err)
	ok, _ := u.Contains(ast.IntLit(4), nil)
	assert.True(t, ok)
	ok, _ = u.Contains(ast.IntLit(2), nil)
	assert.False(t, ok)
}

func Test_Domain_FromLiteralVec(t *testing.T) {
	d, err := ast.FromLiteralVec([]ast.Literal{ast.IntLit(1), ast.IntLit(3), ast.IntLit(2)})
	assert.NoError(t, err)
	ok, _ := d.Contains(ast.IntLit(2), nil)
	assert.True(t, ok)
}

func Test_Domain_Values_Bool(t *testing.T) {
	vs, err := ast.Bool().Values(nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(vs))
}

func Test_Domain_Values_Int(t *testing.T) {
	d := ast.Int(ast.BoundedRange(1, 3))
	vs, err := d.Values(nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(vs))
	assert.Equal(t, int64(1), vs[0].IntVal())
	assert.Equal(t, int64(3), vs[2].IntVal())
}

func Test_Domain_Values_Int_UnboundedFails(t *testing.T) {
	d := ast.Int(ast.UnboundedRightRange(0))
	_, err := d.Values(nil)
	assert.Error(t, err)

	var derr *cerr.DomainError
	assert.True(t, errors.As(err, &derr))
	assert.Equal(t, cerr.Unbounded, derr.Kind)
}

func Test_Domain_Values_Set_EnumeratesSubsets(t *testing.T) {
	elem := ast.Int(ast.BoundedRange(1, 2))
	d := ast.Set(ast.SetAttrNone, 0, 0, elem)
	vs, err := d.Values(nil)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(vs))
}

func Test_Domain_Values_Tuple_CartesianProduct(t *testing.T) {
	d := ast.Tuple(ast.Int(ast.BoundedRange(1, 2)), ast.Bool())
	vs, err := d.Values(nil)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(vs))
}

func Test_SymbolTable_InsertRefusesOverwrite(t *testing.T) {
	tbl := ast.NewSymbolTable()
	a := ast.NewDeclPtr(ast.NewDecisionVariable(ast.UserName("x"), ast.Int(ast.BoundedRange(1, 3))))
	b := ast.NewDeclPtr(ast.NewDecisionVariable(ast.UserName("x"), ast.Bool()))

	assert.True(t, tbl.Insert(a))
	assert.False(t, tbl.Insert(b))

	got, ok := tbl.LookupLocal(ast.UserName("x"))
	assert.True(t, ok)
	assert.Equal(t, a.ID(), got.ID())
}

func Test_SymbolTable_Gensym_DistinctNames(t *testing.T) {
	tbl := ast.NewSymbolTable()
	a := tbl.Gensym(ast.Bool())
	b := tbl.Gensym(ast.Bool())
	assert.True(t, a.ID() != b.ID())
	assert.True(t, ast.With(a, ast.Declaration.DeclName) != ast.With(b, ast.Declaration.DeclName))
}

func Test_SymbolTable_Lookup_WalksParent(t *testing.T) {
	parent := ast.NewSymbolTable()
	child := ast.NewChildSymbolTable(parent)

	ptr := ast.NewDeclPtr(ast.NewDecisionVariable(ast.UserName("y"), ast.Bool()))
	parent.Insert(ptr)

	_, ok := child.LookupLocal(ast.UserName("y"))
	assert.False(t, ok)

	got, ok := child.Lookup(ast.UserName("y"))
	assert.True(t, ok)
	assert.Equal(t, ptr.ID(), got.ID())
}

func Test_DeclPtr_Detach_FreshID(t *testing.T) {
	a := ast.NewDeclPtr(ast.NewDecisionVariable(ast.UserName("z"), ast.Bool()))
	b := a.Detach()
	assert.True(t, a.ID() != b.ID())
}
