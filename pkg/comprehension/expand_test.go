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
package comprehension

import (
	"testing"

	"github.com/conjure-cp/conjure-go/pkg/assert"
	"github.com/conjure-cp/conjure-go/pkg/ast"
)

// fixedSolver always reports the same canned solutions, regardless of the
// model passed in — sufficient to exercise Expand's own plumbing without a
// real CP engine.
type fixedSolver struct {
	solutions []Solution
}

func (f fixedSolver) Solve(*ast.Model) ([]Solution, error) { return f.solutions, nil }

func newQuantified(symtab *ast.SymbolTable, name string, lo, hi int64) ast.DeclPtr {
	ptr := ast.NewDeclPtr(&ast.Quantified{Name: ast.UserName(name), Dom: ast.Int(ast.BoundedRange(lo, hi))})
	symtab.Insert(ptr)

	return ptr
}

func paramRef(symtab *ast.SymbolTable, name string, lo, hi int64) ast.Expression {
	ptr := ast.NewDeclPtr(ast.NewDecisionVariable(ast.UserName(name), ast.Int(ast.BoundedRange(lo, hi))))
	symtab.Insert(ptr)

	return ast.NewAtomExpr(ast.AtomRef(ptr))
}

func Test_Expand_SumOverTwoSolutions(t *testing.T) {
	symtab := ast.NewSymbolTable()
	i := newQuantified(symtab, "i", 0, 3)
	iRef := ast.NewAtomExpr(ast.AtomRef(i))

	comp := ast.NewComprehension([]ast.DeclPtr{i}, nil, iRef)

	solver := fixedSolver{solutions: []Solution{
		NewSolution(map[uint64]int64{i.ID(): 1}),
		NewSolution(map[uint64]int64{i.ID(): 2}),
	}}

	exprs, err := Expand(comp, ast.OpSum, symtab, []string{"partial_eval"}, solver)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(exprs))
}

func Test_Expand_RejectsNonACOperator(t *testing.T) {
	symtab := ast.NewSymbolTable()
	i := newQuantified(symtab, "i", 0, 3)
	comp := ast.NewComprehension([]ast.DeclPtr{i}, nil, ast.NewAtomExpr(ast.AtomRef(i)))

	_, err := Expand(comp, ast.OpMin, symtab, []string{"partial_eval"}, fixedSolver{})
	assert.Error(t, err)
}

func Test_PruneIdentity_ReplacesQuantifierFreeSubtree(t *testing.T) {
	symtab := ast.NewSymbolTable()
	genSymtab := ast.NewChildSymbolTable(symtab)
	i := newQuantified(genSymtab, "i", 0, 3)

	c := paramRef(symtab, "c", 5, 5)
	cRef := c.(*ast.AtomExpr).Val.Ref()
	body := ast.NewBinOp(ast.OpMinus, ast.NewAtomExpr(ast.AtomRef(i)), c)

	quant := map[ast.DeclPtr]bool{i: true}
	pruned := pruneIdentity(body, quant, identityDomain(ast.OpSum), genSymtab)

	bin, ok := pruned.(*ast.BinOp)
	assert.True(t, ok)

	atom, ok := bin.Rhs.(*ast.AtomExpr)
	assert.True(t, ok)
	assert.True(t, atom.Val.IsRef())
	assert.True(t, !atom.Val.Ref().Equal(cRef))
}

func Test_SubstituteLiterals_ReplacesGeneratorRef(t *testing.T) {
	symtab := ast.NewSymbolTable()
	i := newQuantified(symtab, "i", 0, 3)
	iRef := ast.NewAtomExpr(ast.AtomRef(i))

	values := map[uint64]ast.Literal{i.ID(): ast.IntLit(2)}
	out := substituteLiterals(iRef, values)

	atom, ok := out.(*ast.AtomExpr)
	assert.True(t, ok)
	assert.True(t, !atom.Val.IsRef())
	assert.Equal(t, int64(2), atom.Val.Lit().IntVal())
}

func Test_RenameDecls_RewritesAuxDeclarationDecl(t *testing.T) {
	symtab := ast.NewSymbolTable()
	old := symtab.Gensym(ast.Int(ast.BoundedRange(0, 10)))
	fresh := symtab.Gensym(ast.Int(ast.BoundedRange(0, 10)))

	auxDecl := ast.NewAuxDeclaration(old, ast.NewAtomExpr(ast.AtomRef(old)))

	renamed := renameDecls(auxDecl, map[uint64]ast.DeclPtr{old.ID(): fresh})

	out, ok := renamed.(*ast.AuxDeclaration)
	assert.True(t, ok)
	assert.True(t, out.Decl.Equal(fresh))
}
