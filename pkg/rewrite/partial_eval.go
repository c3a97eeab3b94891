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

import "github.com/conjure-cp/conjure-go/pkg/ast"

// partialEvalRuleSets names the rule-sets every partial-evaluation rule
// belongs to: the dedicated "partial_eval" set, plus both solver families,
// since constant folding and algebraic simplification are always a sound
// first move regardless of target.
var partialEvalRuleSets = []string{"partial_eval", "cp", "sat"}

// partialEvalPriority is deliberately higher than any flattening rule's, so
// the partial evaluator always gets first refusal at a node.
const partialEvalPriority = 10_000

func init() {
	Register(Rule{Name: "fold-constant-naryop", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority, Transform: foldConstantNaryOp})
	Register(Rule{Name: "alldiff-constants", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority, Transform: allDiffConstants})
	Register(Rule{Name: "identity-elimination", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority - 1, Transform: identityElimination})
	Register(Rule{Name: "absorbing-elimination", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority - 1, Transform: absorbingElimination})
	Register(Rule{Name: "double-negation", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority, Transform: doubleNegation})
	Register(Rule{Name: "fold-not-literal", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority, Transform: foldNotLiteral})
	Register(Rule{Name: "demorgan-not-and", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority - 2, Transform: deMorganNotAnd})
	Register(Rule{Name: "demorgan-not-or", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority - 2, Transform: deMorganNotOr})
	Register(Rule{Name: "fold-binop-literal", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority, Transform: foldBinOpLiteral})
	Register(Rule{Name: "flatten-root-and", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority, Transform: flattenRootAnd})
	Register(Rule{Name: "root-boolean-eval", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority, Transform: rootBooleanEval})
	Register(Rule{Name: "or-pairwise-tautology", RuleSets: partialEvalRuleSets, Priority: partialEvalPriority, Transform: orPairwiseTautology})
}

func asLit(e ast.Expression) (ast.Literal, bool) {
	atom, ok := e.(*ast.AtomExpr)
	if !ok || atom.Val.IsRef() {
		return ast.Literal{}, false
	}

	return atom.Val.Lit(), true
}

func litExpr(l ast.Literal) ast.Expression {
	return ast.NewAtomExpr(ast.AtomLit(l))
}

func allLits(args []ast.Expression) ([]ast.Literal, bool) {
	out := make([]ast.Literal, len(args))

	for i, a := range args {
		l, ok := asLit(a)
		if !ok {
			return nil, false
		}

		out[i] = l
	}

	return out, true
}

// foldConstantNaryOp evaluates Sum/Product/Min/Max/And/Or when every
// argument is already a literal (spec scenario "Sum of constants").
func foldConstantNaryOp(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	n, ok := e.(*ast.NaryOp)
	if !ok || n.Op == ast.OpAllDiff {
		return Reduction{}, NotApplicable("fold-constant-naryop")
	}

	lits, ok := allLits(n.Args)
	if !ok || len(lits) == 0 {
		return Reduction{}, NotApplicable("fold-constant-naryop")
	}

	switch n.Op {
	case ast.OpSum:
		total := int64(0)
		for _, l := range lits {
			total += l.IntVal()
		}

		return Reduction{Expr: litExpr(ast.IntLit(total))}, nil
	case ast.OpProduct:
		total := int64(1)
		for _, l := range lits {
			total *= l.IntVal()
		}

		return Reduction{Expr: litExpr(ast.IntLit(total))}, nil
	case ast.OpMin, ast.OpMax:
		best := lits[0].IntVal()
		for _, l := range lits[1:] {
			if (n.Op == ast.OpMin && l.IntVal() < best) || (n.Op == ast.OpMax && l.IntVal() > best) {
				best = l.IntVal()
			}
		}

		return Reduction{Expr: litExpr(ast.IntLit(best))}, nil
	case ast.OpAnd:
		result := true
		for _, l := range lits {
			result = result && l.BoolVal()
		}

		return Reduction{Expr: litExpr(ast.BoolLit(result))}, nil
	case ast.OpOr:
		result := false
		for _, l := range lits {
			result = result || l.BoolVal()
		}

		return Reduction{Expr: litExpr(ast.BoolLit(result))}, nil
	default:
		return Reduction{}, NotApplicable("fold-constant-naryop")
	}
}

// allDiffConstants evaluates AllDiff([...]) when every argument is a
// literal: false if any value repeats, true otherwise (spec scenario
// "AllDiff constants").
func allDiffConstants(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	n, ok := e.(*ast.NaryOp)
	if !ok || n.Op != ast.OpAllDiff {
		return Reduction{}, NotApplicable("alldiff-constants")
	}

	lits, ok := allLits(n.Args)
	if !ok {
		return Reduction{}, NotApplicable("alldiff-constants")
	}

	seen := make(map[int64]bool, len(lits))

	for _, l := range lits {
		if seen[l.IntVal()] {
			return Reduction{Expr: litExpr(ast.BoolLit(false))}, nil
		}

		seen[l.IntVal()] = true
	}

	return Reduction{Expr: litExpr(ast.BoolLit(true))}, nil
}

// identityElimination drops identity-element arguments (0 in Sum, 1 in
// Product, true in And, false in Or) and unwraps a resulting singleton.
func identityElimination(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	n, ok := e.(*ast.NaryOp)
	if !ok {
		return Reduction{}, NotApplicable("identity-elimination")
	}

	var isIdentity func(ast.Literal) bool

	switch n.Op {
	case ast.OpSum:
		isIdentity = func(l ast.Literal) bool { return l.Kind() == ast.LitKindInt && l.IntVal() == 0 }
	case ast.OpProduct:
		isIdentity = func(l ast.Literal) bool { return l.Kind() == ast.LitKindInt && l.IntVal() == 1 }
	case ast.OpAnd:
		isIdentity = func(l ast.Literal) bool { return l.Kind() == ast.LitKindBool && l.BoolVal() }
	case ast.OpOr:
		isIdentity = func(l ast.Literal) bool { return l.Kind() == ast.LitKindBool && !l.BoolVal() }
	default:
		return Reduction{}, NotApplicable("identity-elimination")
	}

	var kept []ast.Expression

	removed := false

	for _, a := range n.Args {
		if l, ok := asLit(a); ok && isIdentity(l) {
			removed = true
			continue
		}

		kept = append(kept, a)
	}

	if !removed {
		return Reduction{}, NotApplicable("identity-elimination")
	}

	switch len(kept) {
	case 0:
		return Reduction{Expr: litExpr(n.Op.Identity())}, nil
	case 1:
		return Reduction{Expr: kept[0]}, nil
	default:
		return Reduction{Expr: ast.NewNaryOp(n.Op, kept...)}, nil
	}
}

// absorbingElimination short-circuits on an absorbing-element argument (0
// in Product, false in And, true in Or).
func absorbingElimination(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	n, ok := e.(*ast.NaryOp)
	if !ok {
		return Reduction{}, NotApplicable("absorbing-elimination")
	}

	var isAbsorbing func(ast.Literal) bool

	var result ast.Literal

	switch n.Op {
	case ast.OpProduct:
		isAbsorbing = func(l ast.Literal) bool { return l.Kind() == ast.LitKindInt && l.IntVal() == 0 }
		result = ast.IntLit(0)
	case ast.OpAnd:
		isAbsorbing = func(l ast.Literal) bool { return l.Kind() == ast.LitKindBool && !l.BoolVal() }
		result = ast.BoolLit(false)
	case ast.OpOr:
		isAbsorbing = func(l ast.Literal) bool { return l.Kind() == ast.LitKindBool && l.BoolVal() }
		result = ast.BoolLit(true)
	default:
		return Reduction{}, NotApplicable("absorbing-elimination")
	}

	for _, a := range n.Args {
		if l, ok := asLit(a); ok && isAbsorbing(l) {
			return Reduction{Expr: litExpr(result)}, nil
		}
	}

	return Reduction{}, NotApplicable("absorbing-elimination")
}

// doubleNegation rewrites not(not(x)) to x (spec scenario "Double negation").
func doubleNegation(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	outer, ok := e.(*ast.UnOp)
	if !ok || outer.Op != ast.OpNot {
		return Reduction{}, NotApplicable("double-negation")
	}

	inner, ok := outer.Arg.(*ast.UnOp)
	if !ok || inner.Op != ast.OpNot {
		return Reduction{}, NotApplicable("double-negation")
	}

	return Reduction{Expr: inner.Arg}, nil
}

// foldNotLiteral evaluates not(true)/not(false).
func foldNotLiteral(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	n, ok := e.(*ast.UnOp)
	if !ok || n.Op != ast.OpNot {
		return Reduction{}, NotApplicable("fold-not-literal")
	}

	l, ok := asLit(n.Arg)
	if !ok || l.Kind() != ast.LitKindBool {
		return Reduction{}, NotApplicable("fold-not-literal")
	}

	return Reduction{Expr: litExpr(ast.BoolLit(!l.BoolVal()))}, nil
}

// deMorganNotAnd rewrites not(and(a,b,...)) to or(not(a), not(b), ...)
// (spec scenario "Distribute not over and").
func deMorganNotAnd(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	n, ok := e.(*ast.UnOp)
	if !ok || n.Op != ast.OpNot {
		return Reduction{}, NotApplicable("demorgan-not-and")
	}

	and, ok := n.Arg.(*ast.NaryOp)
	if !ok || and.Op != ast.OpAnd {
		return Reduction{}, NotApplicable("demorgan-not-and")
	}

	negated := make([]ast.Expression, len(and.Args))
	for i, a := range and.Args {
		negated[i] = ast.NewUnOp(ast.OpNot, a)
	}

	return Reduction{Expr: ast.NewNaryOp(ast.OpOr, negated...)}, nil
}

// deMorganNotOr rewrites not(or(a,b,...)) to and(not(a), not(b), ...).
func deMorganNotOr(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	n, ok := e.(*ast.UnOp)
	if !ok || n.Op != ast.OpNot {
		return Reduction{}, NotApplicable("demorgan-not-or")
	}

	or, ok := n.Arg.(*ast.NaryOp)
	if !ok || or.Op != ast.OpOr {
		return Reduction{}, NotApplicable("demorgan-not-or")
	}

	negated := make([]ast.Expression, len(or.Args))
	for i, a := range or.Args {
		negated[i] = ast.NewUnOp(ast.OpNot, a)
	}

	return Reduction{Expr: ast.NewNaryOp(ast.OpAnd, negated...)}, nil
}

// foldBinOpLiteral evaluates a binary comparison or Minus over two literal
// operands.
func foldBinOpLiteral(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	b, ok := e.(*ast.BinOp)
	if !ok {
		return Reduction{}, NotApplicable("fold-binop-literal")
	}

	lhs, ok1 := asLit(b.Lhs)
	rhs, ok2 := asLit(b.Rhs)

	if !ok1 || !ok2 {
		return Reduction{}, NotApplicable("fold-binop-literal")
	}

	if b.Op == ast.OpMinus {
		return Reduction{Expr: litExpr(ast.IntLit(lhs.IntVal() - rhs.IntVal()))}, nil
	}

	if lhs.Kind() == ast.LitKindBool && rhs.Kind() == ast.LitKindBool {
		switch b.Op {
		case ast.OpIff:
			return Reduction{Expr: litExpr(ast.BoolLit(lhs.BoolVal() == rhs.BoolVal()))}, nil
		case ast.OpImply:
			return Reduction{Expr: litExpr(ast.BoolLit(!lhs.BoolVal() || rhs.BoolVal()))}, nil
		case ast.OpEq:
			return Reduction{Expr: litExpr(ast.BoolLit(lhs.BoolVal() == rhs.BoolVal()))}, nil
		case ast.OpNeq:
			return Reduction{Expr: litExpr(ast.BoolLit(lhs.BoolVal() != rhs.BoolVal()))}, nil
		default:
			return Reduction{}, NotApplicable("fold-binop-literal")
		}
	}

	if lhs.Kind() != ast.LitKindInt || rhs.Kind() != ast.LitKindInt {
		return Reduction{}, NotApplicable("fold-binop-literal")
	}

	l, r := lhs.IntVal(), rhs.IntVal()

	var result bool

	switch b.Op {
	case ast.OpEq:
		result = l == r
	case ast.OpNeq:
		result = l != r
	case ast.OpLt:
		result = l < r
	case ast.OpLeq:
		result = l <= r
	case ast.OpGt:
		result = l > r
	case ast.OpGeq:
		result = l >= r
	default:
		return Reduction{}, NotApplicable("fold-binop-literal")
	}

	return Reduction{Expr: litExpr(ast.BoolLit(result))}, nil
}

// flattenRootAnd splices a nested Root or And's children directly into the
// enclosing Root/And, one level at a time (repeated application flattens
// arbitrarily deep nesting).
func flattenRootAnd(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	switch n := e.(type) {
	case *ast.Root:
		var flat []ast.Expression

		changed := false

		for _, c := range n.Children() {
			if inner, ok := c.(*ast.Root); ok {
				flat = append(flat, inner.Children()...)
				changed = true
			} else if and, ok := c.(*ast.NaryOp); ok && and.Op == ast.OpAnd {
				flat = append(flat, and.Args...)
				changed = true
			} else {
				flat = append(flat, c)
			}
		}

		if !changed {
			return Reduction{}, NotApplicable("flatten-root-and")
		}

		return Reduction{Expr: n.WithChildren(flat)}, nil
	case *ast.NaryOp:
		if n.Op != ast.OpAnd {
			return Reduction{}, NotApplicable("flatten-root-and")
		}

		var flat []ast.Expression

		changed := false

		for _, c := range n.Args {
			if and, ok := c.(*ast.NaryOp); ok && and.Op == ast.OpAnd {
				flat = append(flat, and.Args...)
				changed = true
			} else {
				flat = append(flat, c)
			}
		}

		if !changed {
			return Reduction{}, NotApplicable("flatten-root-and")
		}

		return Reduction{Expr: ast.NewNaryOp(ast.OpAnd, flat...)}, nil
	default:
		return Reduction{}, NotApplicable("flatten-root-and")
	}
}

// orPairwiseTautology collapses an Or to true when it contains two Imply
// terms witnessing a tautology:
//
//	(p -> q) \/ (q -> p)   totality of implication
//	(p -> q) \/ (p -> !q)  conditional excluded middle
func orPairwiseTautology(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	n, ok := e.(*ast.NaryOp)
	if !ok || n.Op != ast.OpOr {
		return Reduction{}, NotApplicable("or-pairwise-tautology")
	}

	var implies []impliedPair

	for _, a := range n.Args {
		b, ok := a.(*ast.BinOp)
		if !ok || b.Op != ast.OpImply {
			continue
		}

		implies = append(implies, impliedPair{p: b.Lhs, q: b.Rhs})
	}

	for i, a := range implies {
		for _, b := range implies[i+1:] {
			// p -> q \/ q -> p
			if identicalExpr(a.p, b.q) && identicalExpr(a.q, b.p) {
				return Reduction{Expr: litExpr(ast.BoolLit(true))}, nil
			}

			if notOf(a.q, b.q) || notOf(b.q, a.q) {
				if identicalExpr(a.p, b.p) {
					return Reduction{Expr: litExpr(ast.BoolLit(true))}, nil
				}
			}
		}
	}

	return Reduction{}, NotApplicable("or-pairwise-tautology")
}

type impliedPair struct {
	p, q ast.Expression
}

// notOf reports whether a is syntactically not(b).
func notOf(a, b ast.Expression) bool {
	n, ok := a.(*ast.UnOp)
	return ok && n.Op == ast.OpNot && identicalExpr(n.Arg, b)
}

// identicalExpr reports whether a and b are structurally identical: same
// node shape throughout, atoms matching by referenced declaration identity
// or literal equality.
func identicalExpr(a, b ast.Expression) bool {
	switch x := a.(type) {
	case *ast.AtomExpr:
		y, ok := b.(*ast.AtomExpr)
		if !ok || x.Val.IsRef() != y.Val.IsRef() {
			return false
		}

		if x.Val.IsRef() {
			return x.Val.Ref().Equal(y.Val.Ref())
		}

		return x.Val.Lit().Equal(y.Val.Lit())
	case *ast.NaryOp:
		y, ok := b.(*ast.NaryOp)
		return ok && x.Op == y.Op && identicalExprList(x.Args, y.Args)
	case *ast.BinOp:
		y, ok := b.(*ast.BinOp)
		return ok && x.Op == y.Op && identicalExpr(x.Lhs, y.Lhs) && identicalExpr(x.Rhs, y.Rhs)
	case *ast.UnOp:
		y, ok := b.(*ast.UnOp)
		return ok && x.Op == y.Op && identicalExpr(x.Arg, y.Arg)
	default:
		return false
	}
}

func identicalExprList(a, b []ast.Expression) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !identicalExpr(a[i], b[i]) {
			return false
		}
	}

	return true
}

// rootBooleanEval collapses Root([..., false, ...]) to Root([false])
// (unsatisfiable) and drops redundant `true` conjuncts, collapsing an
// all-true Root to the empty (trivially satisfied) Root().
func rootBooleanEval(e ast.Expression, _ *ast.SymbolTable) (Reduction, error) {
	root, ok := e.(*ast.Root)
	if !ok {
		return Reduction{}, NotApplicable("root-boolean-eval")
	}

	children := root.Children()

	for _, c := range children {
		if l, ok := asLit(c); ok && l.Kind() == ast.LitKindBool && !l.BoolVal() {
			if len(children) == 1 && children[0] == c {
				return Reduction{}, NotApplicable("root-boolean-eval")
			}

			return Reduction{Expr: ast.NewRoot(litExpr(ast.BoolLit(false)))}, nil
		}
	}

	var kept []ast.Expression

	removed := false

	for _, c := range children {
		if l, ok := asLit(c); ok && l.Kind() == ast.LitKindBool && l.BoolVal() {
			removed = true
			continue
		}

		kept = append(kept, c)
	}

	if !removed {
		return Reduction{}, NotApplicable("root-boolean-eval")
	}

	return Reduction{Expr: ast.NewRoot(kept...)}, nil
}
