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
package jsonir

import (
	"testing"

	"github.com/conjure-cp/conjure-go/pkg/assert"
	"github.com/conjure-cp/conjure-go/pkg/ast"
)

func Test_Decode_FindAndConstraint(t *testing.T) {
	doc := `{
		"mStatements": [
			{"Declaration": {"FindOrGiven": ["Find", {"Name": "x"}, {"DomainInt": [[], [{"RangeBounded": [
				{"Constant": {"ConstantInt": ["IntTag", 1]}},
				{"Constant": {"ConstantInt": ["IntTag", 5]}}
			]}]]}]}},
			{"SuchThat": [
				{"Op": {"MkOpGeq": [
					{"Reference": [{"Name": "x"}, null]},
					{"Constant": {"ConstantInt": ["IntTag", 2]}}
				]}}
			]}
		]
	}`

	model, err := Decode([]byte(doc))
	assert.NoError(t, err)

	var (
		ptr   ast.DeclPtr
		found bool
	)

	model.SymbolTable().Read(func(t *ast.SymbolTable) {
		ptr, found = t.LookupLocal(ast.UserName("x"))
	})
	assert.True(t, found)

	ptr.Read(func(d ast.Declaration) {
		dv, ok := d.(*ast.DecisionVariable)
		assert.True(t, ok)
		assert.True(t, dv.Dom.Kind() == ast.DomainKindInt)
	})

	root := model.Root()
	assert.True(t, len(root.Children()) == 1)

	bin, ok := root.Children()[0].(*ast.BinOp)
	assert.True(t, ok)
	assert.True(t, bin.Op == ast.OpGeq)
}

func Test_Decode_GivenKindIsParameter(t *testing.T) {
	doc := `{
		"mStatements": [
			{"Declaration": {"FindOrGiven": ["Given", {"Name": "n"}, {"DomainInt": [[], [{"RangeBounded": [
				{"ConstantInt": ["IntTag", 0]},
				{"ConstantInt": ["IntTag", 10]}
			]}]]}]}}
		]
	}`

	model, err := Decode([]byte(doc))
	assert.NoError(t, err)

	var (
		ptr   ast.DeclPtr
		found bool
	)

	model.SymbolTable().Read(func(t *ast.SymbolTable) {
		ptr, found = t.LookupLocal(ast.UserName("n"))
	})
	assert.True(t, found)

	ptr.Read(func(d ast.Declaration) {
		_, ok := d.(*ast.Given)
		assert.True(t, ok)
	})
}

func Test_Decode_RejectsUnhandledStatementKind(t *testing.T) {
	_, err := Decode([]byte(`{"mStatements": [{"Bogus": []}]}`))
	assert.Error(t, err)
}

func Test_Decode_RejectsMissingStatements(t *testing.T) {
	_, err := Decode([]byte(`{}`))
	assert.Error(t, err)
}

func Test_ParseIndexingSlicing_FlattensChainInOrder(t *testing.T) {
	// a[1][2] is encoded right-associated: MkOpIndexing(MkOpIndexing(a,1),2)
	inner := map[string]interface{}{
		"Op": map[string]interface{}{
			"MkOpIndexing": []interface{}{
				map[string]interface{}{"Reference": []interface{}{map[string]interface{}{"Name": "a"}, nil}},
				map[string]interface{}{"Constant": map[string]interface{}{"ConstantInt": []interface{}{"IntTag", float64(1)}}},
			},
		},
	}

	outer := map[string]interface{}{
		"Op": map[string]interface{}{
			"MkOpIndexing": []interface{}{
				inner,
				map[string]interface{}{"Constant": map[string]interface{}{"ConstantInt": []interface{}{"IntTag", float64(2)}}},
			},
		},
	}

	symtab := ast.NewSymbolTable()
	ptr := ast.NewDeclPtr(ast.NewDecisionVariable(ast.UserName("a"), ast.Matrix(ast.Int(ast.BoundedRange(0, 9)), ast.Int(ast.BoundedRange(0, 9)), ast.Int(ast.BoundedRange(0, 9)))))
	symtab.Insert(ptr)

	expr, err := parseExpression(outer, symtab)
	assert.NoError(t, err)

	partial, ok := expr.(*ast.PartialOp)
	assert.True(t, ok)
	assert.True(t, partial.Op == ast.OpIndex)
	assert.Equal(t, 2, len(partial.Args))

	first, ok := partial.Args[0].(*ast.AtomExpr)
	assert.True(t, ok)
	assert.Equal(t, int64(1), first.Val.Lit().IntVal())

	second, ok := partial.Args[1].(*ast.AtomExpr)
	assert.True(t, ok)
	assert.Equal(t, int64(2), second.Val.Lit().IntVal())
}

func Test_ParseNaryUnaryOp_UnwrapsAbstractMatrix(t *testing.T) {
	raw := map[string]interface{}{
		"Op": map[string]interface{}{
			"MkOpSum": map[string]interface{}{
				"AbstractLiteral": map[string]interface{}{
					"AbsLitMatrix": []interface{}{
						map[string]interface{}{"DomainInt": []interface{}{}},
						[]interface{}{
							map[string]interface{}{"Constant": map[string]interface{}{"ConstantInt": []interface{}{"IntTag", float64(1)}}},
							map[string]interface{}{"Constant": map[string]interface{}{"ConstantInt": []interface{}{"IntTag", float64(2)}}},
						},
					},
				},
			},
		},
	}

	symtab := ast.NewSymbolTable()

	expr, err := parseExpression(raw, symtab)
	assert.NoError(t, err)

	nary, ok := expr.(*ast.NaryOp)
	assert.True(t, ok)
	assert.True(t, nary.Op == ast.OpSum)
	assert.Equal(t, 2, len(nary.Args))
}

func Test_ParseDomain_RecordRegistersFields(t *testing.T) {
	raw := []interface{}{
		[]interface{}{map[string]interface{}{"Name": "f"}, map[string]interface{}{"DomainBool": []interface{}{}}},
	}

	symtab := ast.NewSymbolTable()

	dom, err := parseDomain("DomainRecord", raw, symtab)
	assert.NoError(t, err)
	assert.True(t, dom.Kind() == ast.DomainKindRecord)

	_, ok := symtab.LookupLocal(ast.UserName("f"))
	assert.True(t, ok)
}
