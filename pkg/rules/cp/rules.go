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
	"github.com/conjure-cp/conjure-go/pkg/ast"
	"github.com/conjure-cp/conjure-go/pkg/rewrite"
)

// Rule-set membership for every rule in this file.
var ruleSets = []string{"cp"}

const (
	// priorityAuxify must outrank priorityFlatten so an operand gets
	// aux-ified before its enclosing node is considered for direct
	// flattening; priorityArity sits above both since arity reduction must
	// happen before either operand-auxify or flatten sees the node.
	// prioritySumDirect sits above priorityAuxify so a top-level
	// Sum(xs) <=/>=/== t gets one shot at the direct FlatSumLeq/FlatSumGeq/
	// MinionSumEq form before cp-auxify-binop-operand wraps the sum in an
	// AuxDeclaration.
	priorityArity      = 700
	prioritySumDirect  = 650
	priorityAuxify     = 600
	priorityFlatten    = 500
)

func init() {
	Register := rewrite.Register

	Register(rewrite.Rule{Name: "cp-reduce-product-arity", RuleSets: ruleSets, Priority: priorityArity, Transform: reduceProductArity})

	Register(rewrite.Rule{Name: "cp-flatten-sum-direct", RuleSets: ruleSets, Priority: prioritySumDirect, Transform: flattenSumDirect})

	Register(rewrite.Rule{Name: "cp-auxify-binop-operand", RuleSets: ruleSets, Priority: priorityAuxify, Transform: auxifyBinOpOperand})
	Register(rewrite.Rule{Name: "cp-auxify-naryop-operand", RuleSets: ruleSets, Priority: priorityAuxify, Transform: auxifyNaryOpOperand})
	Register(rewrite.Rule{Name: "cp-auxify-partialop-operand", RuleSets: ruleSets, Priority: priorityAuxify, Transform: auxifyPartialOpOperand})
	Register(rewrite.Rule{Name: "cp-auxify-unop-operand", RuleSets: ruleSets, Priority: priorityAuxify, Transform: auxifyUnOpOperand})

	Register(rewrite.Rule{Name: "cp-flatten-binop", RuleSets: ruleSets, Priority: priorityFlatten, Transform: flattenBinOp})
	Register(rewrite.Rule{Name: "cp-flatten-not", RuleSets: ruleSets, Priority: priorityFlatten, Transform: flattenUnOpNot})
	Register(rewrite.Rule{Name: "cp-flatten-alldiff", RuleSets: ruleSets, Priority: priorityFlatten, Transform: flattenAllDiff})
	Register(rewrite.Rule{Name: "cp-flatten-or", RuleSets: ruleSets, Priority: priorityFlatten, Transform: flattenOr})
	Register(rewrite.Rule{Name: "cp-flatten-auxdecl", RuleSets: ruleSets, Priority: priorityFlatten, Transform: flattenAuxDeclaration})
}

func isAtomic(e ast.Expression) bool {
	_, ok := e.(*ast.AtomExpr)
	return ok
}

// reduceProductArity rewrites an n-ary (n>2) Product into a right-leaning
// binary chain, since MinionProductEq is strictly binary: Product(a,b,c,...)
// becomes Product(a, aux) with aux := Product(b,c,...) introduced as a new
// top-level constraint.
func reduceProductArity(e ast.Expression, symtab *ast.SymbolTable) (rewrite.Reduction, error) {
	n, ok := e.(*ast.NaryOp)
	if !ok || n.Op != ast.OpProduct || len(n.Args) <= 2 {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-reduce-product-arity")
	}

	rest := ast.NewNaryOp(ast.OpProduct, n.Args[1:]...)
	atom, defining := rewrite.ToAuxVar(rest, symtab)

	return rewrite.Reduction{
		Expr:           ast.NewNaryOp(ast.OpProduct, n.Args[0], ast.NewAtomExpr(atom)),
		NewConstraints: []ast.Expression{defining},
	}, nil
}

func auxifyOperand(e ast.Expression, symtab *ast.SymbolTable) (rewrite.Reduction, error) {
	atom, defining := rewrite.ToAuxVar(e, symtab)
	return rewrite.Reduction{Expr: ast.NewAtomExpr(atom), NewConstraints: []ast.Expression{defining}}, nil
}

func auxifyBinOpOperand(e ast.Expression, symtab *ast.SymbolTable) (rewrite.Reduction, error) {
	b, ok := e.(*ast.BinOp)
	if !ok {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-auxify-binop-operand")
	}

	if !isAtomic(b.Lhs) {
		red, err := auxifyOperand(b.Lhs, symtab)
		if err != nil {
			return rewrite.Reduction{}, err
		}

		return rewrite.Reduction{Expr: ast.NewBinOp(b.Op, red.Expr, b.Rhs), NewConstraints: red.NewConstraints}, nil
	}

	if !isAtomic(b.Rhs) {
		red, err := auxifyOperand(b.Rhs, symtab)
		if err != nil {
			return rewrite.Reduction{}, err
		}

		return rewrite.Reduction{Expr: ast.NewBinOp(b.Op, b.Lhs, red.Expr), NewConstraints: red.NewConstraints}, nil
	}

	return rewrite.Reduction{}, rewrite.NotApplicable("cp-auxify-binop-operand")
}

func auxifyNaryOpOperand(e ast.Expression, symtab *ast.SymbolTable) (rewrite.Reduction, error) {
	n, ok := e.(*ast.NaryOp)
	if !ok {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-auxify-naryop-operand")
	}

	for i, a := range n.Args {
		if isAtomic(a) {
			continue
		}

		red, err := auxifyOperand(a, symtab)
		if err != nil {
			return rewrite.Reduction{}, err
		}

		newArgs := append(append([]ast.Expression{}, n.Args[:i]...), red.Expr)
		newArgs = append(newArgs, n.Args[i+1:]...)

		return rewrite.Reduction{Expr: ast.NewNaryOp(n.Op, newArgs...), NewConstraints: red.NewConstraints}, nil
	}

	return rewrite.Reduction{}, rewrite.NotApplicable("cp-auxify-naryop-operand")
}

func auxifyPartialOpOperand(e ast.Expression, symtab *ast.SymbolTable) (rewrite.Reduction, error) {
	p, ok := e.(*ast.PartialOp)
	if !ok {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-auxify-partialop-operand")
	}

	if !isAtomic(p.Subject) {
		red, err := auxifyOperand(p.Subject, symtab)
		if err != nil {
			return rewrite.Reduction{}, err
		}

		return rewrite.Reduction{Expr: ast.NewPartialOp(p.Op, p.Safe, red.Expr, p.Args...), NewConstraints: red.NewConstraints}, nil
	}

	for i, a := range p.Args {
		if a == nil || isAtomic(a) {
			continue
		}

		red, err := auxifyOperand(a, symtab)
		if err != nil {
			return rewrite.Reduction{}, err
		}

		newArgs := append(append([]ast.Expression{}, p.Args[:i]...), red.Expr)
		newArgs = append(newArgs, p.Args[i+1:]...)

		return rewrite.Reduction{Expr: ast.NewPartialOp(p.Op, p.Safe, p.Subject, newArgs...), NewConstraints: red.NewConstraints}, nil
	}

	return rewrite.Reduction{}, rewrite.NotApplicable("cp-auxify-partialop-operand")
}

func auxifyUnOpOperand(e ast.Expression, symtab *ast.SymbolTable) (rewrite.Reduction, error) {
	u, ok := e.(*ast.UnOp)
	if !ok || u.Op == ast.OpNot || isAtomic(u.Arg) {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-auxify-unop-operand")
	}

	red, err := auxifyOperand(u.Arg, symtab)
	if err != nil {
		return rewrite.Reduction{}, err
	}

	return rewrite.Reduction{Expr: ast.NewUnOp(u.Op, red.Expr), NewConstraints: red.NewConstraints}, nil
}

// binOpToMinion builds the flat node for a Boolean-returning BinOp whose
// operands are both already atomic.
func binOpToMinion(op ast.BinOpKind, lhs, rhs ast.Expression) (ast.Expression, bool) {
	switch op {
	case ast.OpEq:
		return NewMinionEq(lhs, rhs), true
	case ast.OpNeq:
		return NewMinionReify(NewMinionEq(lhs, rhs), ast.NewAtomExpr(ast.AtomLit(ast.BoolLit(true))), true), true
	case ast.OpLeq:
		return NewMinionIneq(lhs, rhs, 0), true
	case ast.OpLt:
		return NewMinionIneq(lhs, rhs, -1), true
	case ast.OpGeq:
		return NewMinionIneq(rhs, lhs, 0), true
	case ast.OpGt:
		return NewMinionIneq(rhs, lhs, -1), true
	case ast.OpIff:
		return NewMinionEq(lhs, rhs), true
	case ast.OpImply:
		return NewMinionImply(lhs, rhs), true
	default:
		return nil, false
	}
}

// sumOperand reports whether one side of b is a Sum NaryOp, returning it
// along with the other operand and whether the sum was found on the right
// (in which case the comparison direction must be flipped by the caller).
func sumOperand(b *ast.BinOp) (sum *ast.NaryOp, other ast.Expression, swapped bool) {
	if n, ok := b.Lhs.(*ast.NaryOp); ok && n.Op == ast.OpSum {
		return n, b.Rhs, false
	}

	if n, ok := b.Rhs.(*ast.NaryOp); ok && n.Op == ast.OpSum {
		return n, b.Lhs, true
	}

	return nil, nil, false
}

func flipComparison(op ast.BinOpKind) ast.BinOpKind {
	switch op {
	case ast.OpLeq:
		return ast.OpGeq
	case ast.OpGeq:
		return ast.OpLeq
	default:
		return op
	}
}

func asIntLit(e ast.Expression) (int64, bool) {
	a, ok := e.(*ast.AtomExpr)
	if !ok || a.Val.IsRef() || a.Val.Lit().Kind() != ast.LitKindInt {
		return 0, false
	}

	return a.Val.Lit().IntVal(), true
}

// flattenSumDirect matches a top-level `Sum(xs) <=/>=/== t` with atomic xs
// and a literal constant t, rewriting straight to FlatSumLeq/FlatSumGeq/
// MinionSumEq rather than falling through to cp-auxify-binop-operand's
// AuxDeclaration detour (spec scenario "Add-Eq-ShowDomain": `a+b+c <=
// 2+3-1` rewrites to exactly `FlatSumLeq([a,b,c], 4)`, no auxiliary
// variable — the `2+3-1` constant is already folded to `4` by the partial
// evaluator, which always runs first).
func flattenSumDirect(e ast.Expression, _ *ast.SymbolTable) (rewrite.Reduction, error) {
	b, ok := e.(*ast.BinOp)
	if !ok || (b.Op != ast.OpLeq && b.Op != ast.OpGeq && b.Op != ast.OpEq) {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-sum-direct")
	}

	sum, other, swapped := sumOperand(b)
	if sum == nil || !allAtomic(sum.Args) || !isAtomic(other) {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-sum-direct")
	}

	op := b.Op
	if swapped {
		op = flipComparison(op)
	}

	if op == ast.OpEq {
		return rewrite.Reduction{Expr: NewMinionSumEq(sum.Args, other)}, nil
	}

	c, ok := asIntLit(other)
	if !ok {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-sum-direct")
	}

	if op == ast.OpLeq {
		return rewrite.Reduction{Expr: NewFlatSumLeq(sum.Args, c)}, nil
	}

	return rewrite.Reduction{Expr: NewFlatSumGeq(sum.Args, c)}, nil
}

func flattenBinOp(e ast.Expression, _ *ast.SymbolTable) (rewrite.Reduction, error) {
	b, ok := e.(*ast.BinOp)
	if !ok || b.Op == ast.OpMinus || !isAtomic(b.Lhs) || !isAtomic(b.Rhs) {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-binop")
	}

	flat, ok := binOpToMinion(b.Op, b.Lhs, b.Rhs)
	if !ok {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-binop")
	}

	return rewrite.Reduction{Expr: flat}, nil
}

// flattenUnOpNot flattens `not(atom)` to a watched literal and
// `not(alreadyFlattened)` to a negated reification.
func flattenUnOpNot(e ast.Expression, _ *ast.SymbolTable) (rewrite.Reduction, error) {
	u, ok := e.(*ast.UnOp)
	if !ok || u.Op != ast.OpNot {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-not")
	}

	if isAtomic(u.Arg) {
		return rewrite.Reduction{Expr: NewMinionWatchedLiteral(u.Arg, 0)}, nil
	}

	switch u.Arg.(type) {
	case *ast.NaryOp, *ast.BinOp:
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-not")
	}

	return rewrite.Reduction{
		Expr: NewMinionReify(u.Arg, ast.NewAtomExpr(ast.AtomLit(ast.BoolLit(true))), true),
	}, nil
}

func flattenAllDiff(e ast.Expression, _ *ast.SymbolTable) (rewrite.Reduction, error) {
	n, ok := e.(*ast.NaryOp)
	if !ok || n.Op != ast.OpAllDiff {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-alldiff")
	}

	for _, a := range n.Args {
		if !isAtomic(a) {
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-alldiff")
		}
	}

	return rewrite.Reduction{Expr: NewMinionAllDiff(n.Args)}, nil
}

func flattenOr(e ast.Expression, _ *ast.SymbolTable) (rewrite.Reduction, error) {
	n, ok := e.(*ast.NaryOp)
	if !ok || n.Op != ast.OpOr {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-or")
	}

	for _, a := range n.Args {
		if !isAtomic(a) {
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-or")
		}
	}

	return rewrite.Reduction{Expr: NewMinionOr(n.Args)}, nil
}

// flattenAuxDeclaration dispatches on the defining expression's shape to
// produce the one flat Minion node tying the auxiliary variable to it.
func flattenAuxDeclaration(e ast.Expression, symtab *ast.SymbolTable) (rewrite.Reduction, error) {
	aux, ok := e.(*ast.AuxDeclaration)
	if !ok {
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
	}

	result := ast.NewAtomExpr(ast.AtomRef(aux.Decl))

	if isAtomic(aux.Expr) {
		return rewrite.Reduction{Expr: NewMinionEq(result, aux.Expr)}, nil
	}

	switch expr := aux.Expr.(type) {
	case *ast.NaryOp:
		if !allAtomic(expr.Args) {
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
		}

		switch expr.Op {
		case ast.OpSum:
			return rewrite.Reduction{Expr: NewMinionSumEq(expr.Args, result)}, nil
		case ast.OpProduct:
			if len(expr.Args) != 2 {
				return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
			}

			return rewrite.Reduction{Expr: NewMinionProductEq(expr.Args[0], expr.Args[1], result)}, nil
		case ast.OpMin, ast.OpMax:
			return rewrite.Reduction{Expr: NewMinionMinMaxEq(expr.Args, result, expr.Op == ast.OpMax)}, nil
		case ast.OpAnd, ast.OpOr:
			return rewrite.Reduction{Expr: NewMinionReify(ast.NewNaryOp(expr.Op, expr.Args...), result, false)}, nil
		default:
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
		}
	case *ast.PartialOp:
		if !isAtomic(expr.Subject) || len(expr.Args) == 0 || !isAtomic(expr.Args[0]) {
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
		}

		switch expr.Op {
		case ast.OpDiv:
			return rewrite.Reduction{Expr: NewMinionArithRel("div", expr.Subject, expr.Args[0], result)}, nil
		case ast.OpMod:
			return rewrite.Reduction{Expr: NewMinionArithRel("mod", expr.Subject, expr.Args[0], result)}, nil
		case ast.OpPow:
			return rewrite.Reduction{Expr: NewMinionArithRel("pow", expr.Subject, expr.Args[0], result)}, nil
		case ast.OpIndex:
			return rewrite.Reduction{Expr: NewMinionElement(expr.Subject, expr.Args[0], result)}, nil
		default:
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
		}
	case *ast.UnOp:
		if !isAtomic(expr.Arg) {
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
		}

		switch expr.Op {
		case ast.OpNeg:
			return rewrite.Reduction{Expr: NewMinionArithRel("neg", expr.Arg, nil, result)}, nil
		case ast.OpAbs:
			return rewrite.Reduction{Expr: NewMinionArithRel("abs", expr.Arg, nil, result)}, nil
		case ast.OpToInt:
			return rewrite.Reduction{Expr: NewMinionArithRel("toint", expr.Arg, nil, result)}, nil
		case ast.OpNot:
			return rewrite.Reduction{Expr: NewMinionReify(expr.Arg, result, true)}, nil
		default:
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
		}
	case *ast.BinOp:
		if !isAtomic(expr.Lhs) || !isAtomic(expr.Rhs) {
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
		}

		if expr.Op == ast.OpMinus {
			return rewrite.Reduction{Expr: NewMinionArithRel("minus", expr.Lhs, expr.Rhs, result)}, nil
		}

		flat, ok := binOpToMinion(expr.Op, expr.Lhs, expr.Rhs)
		if !ok {
			return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
		}

		return rewrite.Reduction{Expr: NewMinionReify(flat, result, false)}, nil
	default:
		return rewrite.Reduction{}, rewrite.NotApplicable("cp-flatten-auxdecl")
	}
}

func allAtomic(es []ast.Expression) bool {
	for _, e := range es {
		if !isAtomic(e) {
			return false
		}
	}

	return true
}
