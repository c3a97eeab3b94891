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

// Package cp implements the CP/Minion flattening catalogue: a family of flat
// constraint node types, produced only by lowering, plus the rewrite rules
// that progressively reduce a general expression tree into them.
package cp

import "github.com/conjure-cp/conjure-go/pkg/ast"

func flatChildren(parts ...ast.Expression) []ast.Expression {
	out := make([]ast.Expression, 0, len(parts))

	for _, p := range parts {
		if p != nil {
			out = append(out, p)
		}
	}

	return out
}

func allSafe(es []ast.Expression) bool {
	for _, e := range es {
		if !e.IsSafe() {
			return false
		}
	}

	return true
}

// MinionEq is the flat constraint `Lhs = Rhs` over two atomic operands.
type MinionEq struct {
	meta     ast.Meta
	Lhs, Rhs ast.Expression
}

// NewMinionEq constructs a MinionEq node.
func NewMinionEq(lhs, rhs ast.Expression) *MinionEq { return &MinionEq{Lhs: lhs, Rhs: rhs} }

func (e *MinionEq) Children() []ast.Expression { return []ast.Expression{e.Lhs, e.Rhs} }
func (e *MinionEq) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionEq{meta: e.meta, Lhs: c[0], Rhs: c[1]}
}
func (e *MinionEq) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionEq) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionEq) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionEq) Meta() *ast.Meta        { return &e.meta }

// MinionIneq is the flat constraint `Lhs <= Rhs + Offset`: Lt/Gt/Geq/Leq all
// reduce to this one form by swapping operands and/or adjusting Offset by
// one, performed by the flattening rule, not stored here as distinct node
// types.
type MinionIneq struct {
	meta     ast.Meta
	Lhs, Rhs ast.Expression
	Offset   int64
}

// NewMinionIneq constructs a MinionIneq node.
func NewMinionIneq(lhs, rhs ast.Expression, offset int64) *MinionIneq {
	return &MinionIneq{Lhs: lhs, Rhs: rhs, Offset: offset}
}

func (e *MinionIneq) Children() []ast.Expression { return []ast.Expression{e.Lhs, e.Rhs} }
func (e *MinionIneq) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionIneq{meta: e.meta, Lhs: c[0], Rhs: c[1], Offset: e.Offset}
}
func (e *MinionIneq) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionIneq) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionIneq) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionIneq) Meta() *ast.Meta        { return &e.meta }

// MinionAllDiff is the flat all-different constraint over atomic operands.
type MinionAllDiff struct {
	meta ast.Meta
	Args []ast.Expression
}

// NewMinionAllDiff constructs a MinionAllDiff node.
func NewMinionAllDiff(args []ast.Expression) *MinionAllDiff { return &MinionAllDiff{Args: args} }

func (e *MinionAllDiff) Children() []ast.Expression { return e.Args }
func (e *MinionAllDiff) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionAllDiff{meta: e.meta, Args: c}
}
func (e *MinionAllDiff) IsSafe() bool           { return allSafe(e.Args) }
func (e *MinionAllDiff) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionAllDiff) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionAllDiff) Meta() *ast.Meta        { return &e.meta }

// MinionSumEq is the flat constraint `sum(Args) = Result`.
type MinionSumEq struct {
	meta   ast.Meta
	Args   []ast.Expression
	Result ast.Expression
}

// NewMinionSumEq constructs a MinionSumEq node.
func NewMinionSumEq(args []ast.Expression, result ast.Expression) *MinionSumEq {
	return &MinionSumEq{Args: args, Result: result}
}

func (e *MinionSumEq) Children() []ast.Expression { return append(append([]ast.Expression{}, e.Args...), e.Result) }
func (e *MinionSumEq) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionSumEq{meta: e.meta, Args: c[:len(c)-1], Result: c[len(c)-1]}
}
func (e *MinionSumEq) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionSumEq) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionSumEq) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionSumEq) Meta() *ast.Meta        { return &e.meta }

// FlatSum is the flat constraint `sum(Args) <= Const`, or `sum(Args) >=
// Const` when Geq: a top-level Sum compared directly against a constant,
// produced instead of MinionSumEq's auxiliary-variable indirection when the
// comparison is Leq/Geq against a literal (Eq still reuses MinionSumEq,
// whose Result slot already accepts a literal atom directly).
type FlatSum struct {
	meta  ast.Meta
	Args  []ast.Expression
	Const int64
	Geq   bool
}

// NewFlatSumLeq constructs the `sum(Args) <= c` flat constraint.
func NewFlatSumLeq(args []ast.Expression, c int64) *FlatSum {
	return &FlatSum{Args: args, Const: c}
}

// NewFlatSumGeq constructs the `sum(Args) >= c` flat constraint.
func NewFlatSumGeq(args []ast.Expression, c int64) *FlatSum {
	return &FlatSum{Args: args, Const: c, Geq: true}
}

func (e *FlatSum) Children() []ast.Expression { return e.Args }
func (e *FlatSum) WithChildren(c []ast.Expression) ast.Expression {
	return &FlatSum{meta: e.meta, Args: c, Const: e.Const, Geq: e.Geq}
}
func (e *FlatSum) IsSafe() bool               { return allSafe(e.Args) }
func (e *FlatSum) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *FlatSum) DomainOf() ast.Domain       { return ast.Bool() }
func (e *FlatSum) Meta() *ast.Meta            { return &e.meta }

// MinionProductEq is the flat constraint `X * Y = Result`.
type MinionProductEq struct {
	meta         ast.Meta
	X, Y, Result ast.Expression
}

// NewMinionProductEq constructs a MinionProductEq node.
func NewMinionProductEq(x, y, result ast.Expression) *MinionProductEq {
	return &MinionProductEq{X: x, Y: y, Result: result}
}

func (e *MinionProductEq) Children() []ast.Expression { return []ast.Expression{e.X, e.Y, e.Result} }
func (e *MinionProductEq) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionProductEq{meta: e.meta, X: c[0], Y: c[1], Result: c[2]}
}
func (e *MinionProductEq) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionProductEq) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionProductEq) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionProductEq) Meta() *ast.Meta        { return &e.meta }

// MinionMinMaxEq is the flat constraint `min(Args) = Result` or
// `max(Args) = Result`, selected by Max.
type MinionMinMaxEq struct {
	meta   ast.Meta
	Args   []ast.Expression
	Result ast.Expression
	Max    bool
}

// NewMinionMinMaxEq constructs a MinionMinMaxEq node.
func NewMinionMinMaxEq(args []ast.Expression, result ast.Expression, max bool) *MinionMinMaxEq {
	return &MinionMinMaxEq{Args: args, Result: result, Max: max}
}

func (e *MinionMinMaxEq) Children() []ast.Expression {
	return append(append([]ast.Expression{}, e.Args...), e.Result)
}
func (e *MinionMinMaxEq) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionMinMaxEq{meta: e.meta, Args: c[:len(c)-1], Result: c[len(c)-1], Max: e.Max}
}
func (e *MinionMinMaxEq) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionMinMaxEq) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionMinMaxEq) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionMinMaxEq) Meta() *ast.Meta        { return &e.meta }

// MinionArithRel is the flat constraint `X <Kind> Y = Result` for a binary
// arithmetic relation ("div", "mod", "pow", "minus"), or `<Kind>(X) = Result`
// for a unary one ("neg", "abs", "toint"), in which case Y is nil.
type MinionArithRel struct {
	meta         ast.Meta
	Kind         string
	X, Y, Result ast.Expression
}

// NewMinionArithRel constructs a MinionArithRel node.
func NewMinionArithRel(kind string, x, y, result ast.Expression) *MinionArithRel {
	return &MinionArithRel{Kind: kind, X: x, Y: y, Result: result}
}

func (e *MinionArithRel) Children() []ast.Expression { return flatChildren(e.X, e.Y, e.Result) }
func (e *MinionArithRel) WithChildren(c []ast.Expression) ast.Expression {
	if e.Y == nil {
		return &MinionArithRel{meta: e.meta, Kind: e.Kind, X: c[0], Result: c[1]}
	}

	return &MinionArithRel{meta: e.meta, Kind: e.Kind, X: c[0], Y: c[1], Result: c[2]}
}
func (e *MinionArithRel) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionArithRel) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionArithRel) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionArithRel) Meta() *ast.Meta        { return &e.meta }

// MinionElement is the flat constraint `Matrix[Index] = Result`.
type MinionElement struct {
	meta                  ast.Meta
	Matrix, Index, Result ast.Expression
}

// NewMinionElement constructs a MinionElement node.
func NewMinionElement(matrix, index, result ast.Expression) *MinionElement {
	return &MinionElement{Matrix: matrix, Index: index, Result: result}
}

func (e *MinionElement) Children() []ast.Expression {
	return []ast.Expression{e.Matrix, e.Index, e.Result}
}
func (e *MinionElement) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionElement{meta: e.meta, Matrix: c[0], Index: c[1], Result: c[2]}
}
func (e *MinionElement) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionElement) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionElement) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionElement) Meta() *ast.Meta        { return &e.meta }

// MinionReify is the flat reification `Target <-> (Negate ? !Inner : Inner)`,
// where Inner is itself an already-flattened boolean node and Target is an
// atomic boolean (a reference, or a literal true/false standing for
// "assert"/"assert not").
type MinionReify struct {
	meta          ast.Meta
	Inner, Target ast.Expression
	Negate        bool
}

// NewMinionReify constructs a MinionReify node.
func NewMinionReify(inner, target ast.Expression, negate bool) *MinionReify {
	return &MinionReify{Inner: inner, Target: target, Negate: negate}
}

func (e *MinionReify) Children() []ast.Expression { return []ast.Expression{e.Inner, e.Target} }
func (e *MinionReify) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionReify{meta: e.meta, Inner: c[0], Target: c[1], Negate: e.Negate}
}
func (e *MinionReify) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionReify) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionReify) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionReify) Meta() *ast.Meta        { return &e.meta }

// MinionReifyImply is the flat half-reification `Cond -> Inner`.
type MinionReifyImply struct {
	meta        ast.Meta
	Cond, Inner ast.Expression
}

// NewMinionReifyImply constructs a MinionReifyImply node.
func NewMinionReifyImply(cond, inner ast.Expression) *MinionReifyImply {
	return &MinionReifyImply{Cond: cond, Inner: inner}
}

func (e *MinionReifyImply) Children() []ast.Expression { return []ast.Expression{e.Cond, e.Inner} }
func (e *MinionReifyImply) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionReifyImply{meta: e.meta, Cond: c[0], Inner: c[1]}
}
func (e *MinionReifyImply) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionReifyImply) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionReifyImply) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionReifyImply) Meta() *ast.Meta        { return &e.meta }

// MinionWatchedLiteral is the flat constraint that Var's Boolean value is
// fixed to Val (0 or 1) — Minion's cheapest constraint form, used for
// `not(atom)` and bare Boolean-atom constraints.
type MinionWatchedLiteral struct {
	meta ast.Meta
	Var  ast.Expression
	Val  int64
}

// NewMinionWatchedLiteral constructs a MinionWatchedLiteral node.
func NewMinionWatchedLiteral(v ast.Expression, val int64) *MinionWatchedLiteral {
	return &MinionWatchedLiteral{Var: v, Val: val}
}

func (e *MinionWatchedLiteral) Children() []ast.Expression { return []ast.Expression{e.Var} }
func (e *MinionWatchedLiteral) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionWatchedLiteral{meta: e.meta, Var: c[0], Val: e.Val}
}
func (e *MinionWatchedLiteral) IsSafe() bool           { return e.Var.IsSafe() }
func (e *MinionWatchedLiteral) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionWatchedLiteral) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionWatchedLiteral) Meta() *ast.Meta        { return &e.meta }

// MinionOr is the flat disjunction over atomic Boolean operands.
type MinionOr struct {
	meta ast.Meta
	Args []ast.Expression
}

// NewMinionOr constructs a MinionOr node.
func NewMinionOr(args []ast.Expression) *MinionOr { return &MinionOr{Args: args} }

func (e *MinionOr) Children() []ast.Expression { return e.Args }
func (e *MinionOr) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionOr{meta: e.meta, Args: c}
}
func (e *MinionOr) IsSafe() bool           { return allSafe(e.Args) }
func (e *MinionOr) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionOr) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionOr) Meta() *ast.Meta        { return &e.meta }

// MinionImply is the flat top-level implication `Lhs -> Rhs` over atomic
// Boolean operands (the constraint-level form; MinionReifyImply is its
// value-producing counterpart).
type MinionImply struct {
	meta     ast.Meta
	Lhs, Rhs ast.Expression
}

// NewMinionImply constructs a MinionImply node.
func NewMinionImply(lhs, rhs ast.Expression) *MinionImply { return &MinionImply{Lhs: lhs, Rhs: rhs} }

func (e *MinionImply) Children() []ast.Expression { return []ast.Expression{e.Lhs, e.Rhs} }
func (e *MinionImply) WithChildren(c []ast.Expression) ast.Expression {
	return &MinionImply{meta: e.meta, Lhs: c[0], Rhs: c[1]}
}
func (e *MinionImply) IsSafe() bool           { return allSafe(e.Children()) }
func (e *MinionImply) ReturnType() ast.DomainKind { return ast.DomainKindBool }
func (e *MinionImply) DomainOf() ast.Domain   { return ast.Bool() }
func (e *MinionImply) Meta() *ast.Meta        { return &e.meta }
