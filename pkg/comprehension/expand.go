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
	"github.com/conjure-cp/conjure-go/pkg/ast"
	"github.com/conjure-cp/conjure-go/pkg/cerr"
	"github.com/conjure-cp/conjure-go/pkg/rewrite"
)

// Expand unrolls comp, which must sit as a direct argument of an AC
// operator (op — sum/product/and/or), into the list of expressions the
// caller splices back into that operator's argument list in comp's place.
// ruleSets selects which rewrite rules pre-solve the generator model and
// independently rewrite each instantiated return expression (the same
// target rule-set the surrounding compilation is using, e.g. []string{"cp"}
// or []string{"sat"}).
//
// This consolidates the source narrative's two comprehension-expansion
// paths to the single AC-aware-pruning strategy (see DESIGN.md, Open
// Question 2): before solving, the largest subexpressions of the return
// expression that reference no generator variable are replaced by fresh
// dummy variables of the operator's identity type, and
// `prunedBody != identity` is added to the generator model, letting the
// sub-solver skip combinations whose contribution would vanish.
func Expand(comp *ast.Comprehension, op ast.NaryOpKind, symtab *ast.SymbolTable, ruleSets []string, solver Solver) ([]ast.Expression, error) {
	if !op.IsIdentityAC() {
		return nil, cerr.NewModelInvalid("comprehension expansion requires an AC operator, got %s", op)
	}

	genSymtab := ast.NewChildSymbolTable(symtab)

	quant := make(map[ast.DeclPtr]bool, len(comp.Generators))
	for _, g := range comp.Generators {
		genSymtab.UpdateInsert(g)
		quant[g] = true
	}

	prunedBody := pruneIdentity(comp.Body, quant, identityDomain(op), genSymtab)
	neqIdentity := ast.NewBinOp(ast.OpNeq, prunedBody, ast.NewAtomExpr(ast.AtomLit(op.Identity())))

	genModel := ast.NewModel(genSymtab)
	for _, g := range comp.Guards {
		genModel.AddConstraint(g)
	}

	genModel.AddConstraint(neqIdentity)

	rules := rewrite.ResolveRuleSet(ruleSets)
	if err := rewrite.Run(genModel, genSymtab, rules); err != nil {
		return nil, err
	}

	solutions, err := solver.Solve(genModel)
	if err != nil {
		return nil, err
	}

	var results []ast.Expression

	for _, sol := range solutions {
		exprs, err := instantiateOne(comp, sol, genSymtab, symtab, rules)
		if err != nil {
			return nil, err
		}

		results = append(results, exprs...)
	}

	return results, nil
}

func instantiateOne(
	comp *ast.Comprehension,
	sol Solution,
	genSymtab, enclosing *ast.SymbolTable,
	rules []rewrite.Rule,
) ([]ast.Expression, error) {
	values := make(map[uint64]ast.Literal, len(comp.Generators))

	for _, g := range comp.Generators {
		v, ok := sol.Value(g)
		if !ok {
			return nil, cerr.NewModelInvalid("sub-solver solution is missing a value for %s", ast.With(g, ast.Declaration.DeclName))
		}

		values[g.ID()] = literalFor(v, declDomain(g))
	}

	instantiated := substituteLiterals(comp.Body, values)

	bodyModel := ast.NewModel(genSymtab)
	bodyModel.AddConstraint(instantiated)

	if err := rewrite.Run(bodyModel, genSymtab, rules); err != nil {
		return nil, err
	}

	rename := map[uint64]ast.DeclPtr{}

	for _, c := range bodyModel.Root().Children() {
		if aux, ok := c.(*ast.AuxDeclaration); ok {
			rename[aux.Decl.ID()] = enclosing.Gensym(declDomain(aux.Decl))
		}
	}

	children := bodyModel.Root().Children()
	out := make([]ast.Expression, len(children))

	for i, c := range children {
		out[i] = renameDecls(c, rename)
	}

	return out, nil
}

func declDomain(ptr ast.DeclPtr) ast.Domain {
	return ast.With(ptr, func(d ast.Declaration) ast.Domain {
		dom, _ := ast.DeclDomain(d)
		return dom
	})
}

// identityDomain returns the TYPE (not the value range) of op's identity
// element: unbounded Int for sum/product, Bool for and/or.
func identityDomain(op ast.NaryOpKind) ast.Domain {
	switch op {
	case ast.OpSum, ast.OpProduct:
		return ast.Int(ast.UnboundedLeftRange(0), ast.UnboundedRightRange(0))
	default: // OpAnd, OpOr
		return ast.Bool()
	}
}

func literalFor(v int64, dom ast.Domain) ast.Literal {
	if dom.Kind() == ast.DomainKindBool {
		return ast.BoolLit(v != 0)
	}

	return ast.IntLit(v)
}

// pruneIdentity replaces every maximal subexpression of e containing no
// reference to a generator variable with a fresh dummy declaration of
// dummyDom, gensymed in genSymtab. "Maximal" means the replacement happens
// at the first (outermost) node found quantifier-free during the top-down
// walk; its own descendants are never visited.
func pruneIdentity(e ast.Expression, quant map[ast.DeclPtr]bool, dummyDom ast.Domain, genSymtab *ast.SymbolTable) ast.Expression {
	if !containsQuantRef(e, quant) {
		ptr := genSymtab.Gensym(dummyDom)
		return ast.NewAtomExpr(ast.AtomRef(ptr))
	}

	children := e.Children()
	if len(children) == 0 {
		return e
	}

	newChildren := make([]ast.Expression, len(children))
	for i, c := range children {
		newChildren[i] = pruneIdentity(c, quant, dummyDom, genSymtab)
	}

	return e.WithChildren(newChildren)
}

func containsQuantRef(e ast.Expression, quant map[ast.DeclPtr]bool) bool {
	for _, n := range ast.Universe(e) {
		if a, ok := n.(*ast.AtomExpr); ok && a.Val.IsRef() && quant[a.Val.Ref()] {
			return true
		}
	}

	return false
}

// substituteLiterals rebinds every atom referencing a generator variable to
// its solved literal value. Grounded on the teacher's For-loop expansion
// (preprocessForInModule's index-to-Constant substitution), generalised
// from a single induction variable to the full generator tuple.
func substituteLiterals(e ast.Expression, values map[uint64]ast.Literal) ast.Expression {
	return ast.Transform(e, func(n ast.Expression) ast.Expression {
		a, ok := n.(*ast.AtomExpr)
		if !ok || !a.Val.IsRef() {
			return n
		}

		if lit, ok := values[a.Val.Ref().ID()]; ok {
			return ast.NewAtomExpr(ast.AtomLit(lit))
		}

		return n
	})
}

// renameDecls rewrites every atom reference and AuxDeclaration.Decl found
// in rename to its replacement handle. Unlike substituteLiterals this
// cannot ride ast.Transform alone: AuxDeclaration.Decl is not one of its
// Children, so it needs its own case.
func renameDecls(e ast.Expression, rename map[uint64]ast.DeclPtr) ast.Expression {
	switch n := e.(type) {
	case *ast.AtomExpr:
		if n.Val.IsRef() {
			if np, ok := rename[n.Val.Ref().ID()]; ok {
				return ast.NewAtomExpr(ast.AtomRef(np))
			}
		}

		return n
	case *ast.AuxDeclaration:
		expr := renameDecls(n.Expr, rename)

		decl := n.Decl
		if np, ok := rename[n.Decl.ID()]; ok {
			decl = np
		}

		return ast.NewAuxDeclaration(decl, expr)
	default:
		children := n.Children()
		if len(children) == 0 {
			return n
		}

		newChildren := make([]ast.Expression, len(children))
		for i, c := range children {
			newChildren[i] = renameDecls(c, rename)
		}

		return n.WithChildren(newChildren)
	}
}
