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
package ast

import "github.com/conjure-cp/conjure-go/pkg/xmath"

// Meta is the mutable metadata every expression node carries: a "clean" flag
// the morph/optimised rewrite driver uses to skip re-examining subtrees no
// rule in the active rule-set can touch.
type Meta struct {
	clean bool
}

// Clean reports whether no rule in the active rule-set can rewrite this node
// or any descendant.
func (m *Meta) Clean() bool { return m.clean }

// SetClean sets the clean flag.
func (m *Meta) SetClean(v bool) { m.clean = v }

// Expression is the uniform interface every tree node implements: atoms,
// n-ary/binary/unary operators, set operators, comprehensions, bubbles,
// AuxDeclaration, Root, and (defined in pkg/rules/cp) the flat/Minion
// constraint family produced only by lowering.
type Expression interface {
	// Children returns the immediate sub-expressions, in order.
	Children() []Expression
	// WithChildren rebuilds this node with a new child list of the same
	// length and order as Children().
	WithChildren(children []Expression) Expression
	// IsSafe is true iff no UnsafeDiv/UnsafeMod/UnsafePow/UnsafeIndex/
	// UnsafeSlice appears anywhere in this subtree.
	IsSafe() bool
	// ReturnType is this node's structural type.
	ReturnType() DomainKind
	// DomainOf recursively derives this node's domain.
	DomainOf() Domain
	// Meta returns the node's mutable rewrite-engine metadata.
	Meta() *Meta
}

// Universe returns e and every descendant, in pre-order (self first).
func Universe(e Expression) []Expression {
	out := []Expression{e}
	for _, c := range e.Children() {
		out = append(out, Universe(c)...)
	}

	return out
}

// Transform applies fn bottom-up: every descendant is transformed before e
// itself.
func Transform(e Expression, fn func(Expression) Expression) Expression {
	children := e.Children()
	if len(children) > 0 {
		newChildren := make([]Expression, len(children))
		for i, c := range children {
			newChildren[i] = Transform(c, fn)
		}

		e = e.WithChildren(newChildren)
	}

	return fn(e)
}

// allSafe reports whether every child subtree is safe.
func allSafe(children []Expression) bool {
	for _, c := range children {
		if !c.IsSafe() {
			return false
		}
	}

	return true
}

// ---- Atom ----

// AtomExpr wraps an Atom (literal or declaration reference) as a leaf
// expression node.
type AtomExpr struct {
	meta Meta
	Val  Atom
}

// NewAtomExpr constructs an AtomExpr.
func NewAtomExpr(a Atom) *AtomExpr { return &AtomExpr{Val: a} }

// Children implements Expression; atoms are leaves.
func (e *AtomExpr) Children() []Expression { return nil }

// WithChildren implements Expression; atoms ignore (have no) children.
func (e *AtomExpr) WithChildren([]Expression) Expression { return e }

// IsSafe implements Expression; atoms are always safe.
func (e *AtomExpr) IsSafe() bool { return true }

// ReturnType implements Expression.
func (e *AtomExpr) ReturnType() DomainKind { return e.Val.DomainOf().Kind() }

// DomainOf implements Expression.
func (e *AtomExpr) DomainOf() Domain { return e.Val.DomainOf() }

// Meta implements Expression.
func (e *AtomExpr) Meta() *Meta { return &e.meta }

// ---- n-ary operators: Sum, Product, Min, Max, And, Or, AllDiff ----

// NaryOpKind enumerates the associative/commutative and AllDiff operators.
type NaryOpKind int

// The seven n-ary operator kinds.
const (
	OpSum NaryOpKind = iota
	OpProduct
	OpMin
	OpMax
	OpAnd
	OpOr
	OpAllDiff
)

func (k NaryOpKind) String() string {
	return [...]string{"Sum", "Product", "Min", "Max", "And", "Or", "AllDiff"}[k]
}

// IsIdentityAC reports whether k is one of the AC operators (sum, product,
// and, or) admitting identity-based pruning during comprehension expansion.
func (k NaryOpKind) IsIdentityAC() bool {
	switch k {
	case OpSum, OpProduct, OpAnd, OpOr:
		return true
	default:
		return false
	}
}

// Identity returns the identity literal of an AC operator (0 for sum, 1 for
// product, true for and, false for or).
func (k NaryOpKind) Identity() Literal {
	switch k {
	case OpSum:
		return IntLit(0)
	case OpProduct:
		return IntLit(1)
	case OpAnd:
		return BoolLit(true)
	case OpOr:
		return BoolLit(false)
	default:
		panic("Identity: not an AC operator")
	}
}

// NaryOp is an n-ary arithmetic/logic operator over a flattened argument
// list (the argument list is, conceptually, an abstract-matrix expression;
// this implementation stores it directly as a child slice for simplicity).
type NaryOp struct {
	meta Meta
	Op   NaryOpKind
	Args []Expression
}

// NewNaryOp constructs an n-ary operator node.
func NewNaryOp(op NaryOpKind, args ...Expression) *NaryOp {
	return &NaryOp{Op: op, Args: args}
}

// Children implements Expression.
func (e *NaryOp) Children() []Expression { return e.Args }

// WithChildren implements Expression.
func (e *NaryOp) WithChildren(children []Expression) Expression {
	return &NaryOp{meta: e.meta, Op: e.Op, Args: children}
}

// IsSafe implements Expression.
func (e *NaryOp) IsSafe() bool { return allSafe(e.Args) }

// ReturnType implements Expression.
func (e *NaryOp) ReturnType() DomainKind {
	switch e.Op {
	case OpSum, OpProduct, OpMin, OpMax:
		return DomainKindInt
	default:
		return DomainKindBool
	}
}

// DomainOf implements Expression.
func (e *NaryOp) DomainOf() Domain {
	switch e.Op {
	case OpSum:
		iv := xmath.Single(0)
		for _, a := range e.Args {
			iv = iv.Add(IntervalOf(a.DomainOf()))
		}

		return DomainFromInterval(iv)
	case OpProduct:
		if len(e.Args) == 0 {
			return Int(SingleRange(1))
		}

		iv := IntervalOf(e.Args[0].DomainOf())
		for _, a := range e.Args[1:] {
			iv = iv.Mul(IntervalOf(a.DomainOf()))
		}

		return DomainFromInterval(iv)
	case OpMin, OpMax:
		if len(e.Args) == 0 {
			return Int()
		}

		lo, hi := IntervalOf(e.Args[0].DomainOf()).Min(), IntervalOf(e.Args[0].DomainOf()).Max()

		for _, a := range e.Args[1:] {
			iv := IntervalOf(a.DomainOf())
			if e.Op == OpMin {
				lo, hi = lo.Min(iv.Min()), hi.Min(iv.Max())
			} else {
				lo, hi = lo.Max(iv.Min()), hi.Max(iv.Max())
			}
		}

		return DomainFromInterval(xmath.NewIntervalFromInfInt(lo, hi))
	default:
		return Bool()
	}
}

// Meta implements Expression.
func (e *NaryOp) Meta() *Meta { return &e.meta }

// ---- binary operators: Eq, Neq, Lt, Leq, Gt, Geq, Iff, Imply, Minus ----

// BinOpKind enumerates the binary operators.
type BinOpKind int

// The nine binary operator kinds.
const (
	OpEq BinOpKind = iota
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq
	OpIff
	OpImply
	OpMinus
)

func (k BinOpKind) String() string {
	return [...]string{"Eq", "Neq", "Lt", "Leq", "Gt", "Geq", "Iff", "Imply", "Minus"}[k]
}

// BinOp is a binary comparison or arithmetic-difference operator.
type BinOp struct {
	meta     Meta
	Op       BinOpKind
	Lhs, Rhs Expression
}

// NewBinOp constructs a binary operator node.
func NewBinOp(op BinOpKind, lhs, rhs Expression) *BinOp {
	return &BinOp{Op: op, Lhs: lhs, Rhs: rhs}
}

// Children implements Expression.
func (e *BinOp) Children() []Expression { return []Expression{e.Lhs, e.Rhs} }

// WithChildren implements Expression.
func (e *BinOp) WithChildren(children []Expression) Expression {
	return &BinOp{meta: e.meta, Op: e.Op, Lhs: children[0], Rhs: children[1]}
}

// IsSafe implements Expression.
func (e *BinOp) IsSafe() bool { return e.Lhs.IsSafe() && e.Rhs.IsSafe() }

// ReturnType implements Expression.
func (e *BinOp) ReturnType() DomainKind {
	if e.Op == OpMinus {
		return DomainKindInt
	}

	return DomainKindBool
}

// DomainOf implements Expression.
func (e *BinOp) DomainOf() Domain {
	if e.Op == OpMinus {
		return DomainFromInterval(IntervalOf(e.Lhs.DomainOf()).Sub(IntervalOf(e.Rhs.DomainOf())))
	}

	return Bool()
}

// Meta implements Expression.
func (e *BinOp) Meta() *Meta { return &e.meta }

// ---- unary operators: Not, Neg, Abs, ToInt ----

// UnOpKind enumerates the unary operators.
type UnOpKind int

// The four unary operator kinds.
const (
	OpNot UnOpKind = iota
	OpNeg
	OpAbs
	OpToInt
)

func (k UnOpKind) String() string {
	return [...]string{"Not", "Neg", "Abs", "ToInt"}[k]
}

// UnOp is a unary operator.
type UnOp struct {
	meta Meta
	Op   UnOpKind
	Arg  Expression
}

// NewUnOp constructs a unary operator node.
func NewUnOp(op UnOpKind, arg Expression) *UnOp {
	return &UnOp{Op: op, Arg: arg}
}

// Children implements Expression.
func (e *UnOp) Children() []Expression { return []Expression{e.Arg} }

// WithChildren implements Expression.
func (e *UnOp) WithChildren(children []Expression) Expression {
	return &UnOp{meta: e.meta, Op: e.Op, Arg: children[0]}
}

// IsSafe implements Expression.
func (e *UnOp) IsSafe() bool { return e.Arg.IsSafe() }

// ReturnType implements Expression.
func (e *UnOp) ReturnType() DomainKind {
	if e.Op == OpNot {
		return DomainKindBool
	}

	return DomainKindInt
}

// DomainOf implements Expression.
func (e *UnOp) DomainOf() Domain {
	switch e.Op {
	case OpNot:
		return Bool()
	case OpNeg:
		return DomainFromInterval(IntervalOf(e.Arg.DomainOf()).Neg())
	case OpAbs:
		iv := IntervalOf(e.Arg.DomainOf())
		negIv := iv.Neg()
		return DomainFromInterval(iv.Union(negIv))
	default: // ToInt
		return Int(BoundedRange(0, 1))
	}
}

// Meta implements Expression.
func (e *UnOp) Meta() *Meta { return &e.meta }

// ---- partial operators: safe/unsafe Div, Mod, Pow, Index, Slice ----

// PartialOpKind enumerates the five partial operations.
type PartialOpKind int

// The five partial-operation kinds.
const (
	OpDiv PartialOpKind = iota
	OpMod
	OpPow
	OpIndex
	OpSlice
)

func (k PartialOpKind) String() string {
	return [...]string{"Div", "Mod", "Pow", "Index", "Slice"}[k]
}

// PartialOp is a safe/unsafe partial operation: the unsafe form denotes the
// bare (possibly undefined) mathematical operation; the safe form is the
// same value guarded by a proof of definedness discharged by a dedicated
// rewrite rule, never silently assumed by this type.
type PartialOp struct {
	meta Meta
	Op   PartialOpKind
	Safe bool
	// Subject and Args hold the operands: for Div/Mod/Pow, Subject is the
	// left operand and Args[0] the right; for Index/Slice, Subject is the
	// indexed expression and Args the (possibly multi-dimensional) index
	// list, with a nil entry in Args standing for a full-range slice axis.
	Subject Expression
	Args    []Expression
}

// NewPartialOp constructs a partial-operation node.
func NewPartialOp(op PartialOpKind, safe bool, subject Expression, args ...Expression) *PartialOp {
	return &PartialOp{Op: op, Safe: safe, Subject: subject, Args: args}
}

// Children implements Expression.
func (e *PartialOp) Children() []Expression {
	return append([]Expression{e.Subject}, e.Args...)
}

// WithChildren implements Expression.
func (e *PartialOp) WithChildren(children []Expression) Expression {
	return &PartialOp{meta: e.meta, Op: e.Op, Safe: e.Safe, Subject: children[0], Args: children[1:]}
}

// IsSafe implements Expression: an unsafe node makes the whole subtree
// unsafe regardless of its children.
func (e *PartialOp) IsSafe() bool {
	if !e.Safe {
		return false
	}

	return e.Subject.IsSafe() && allSafe(e.Args)
}

// ReturnType implements Expression.
func (e *PartialOp) ReturnType() DomainKind {
	switch e.Op {
	case OpIndex, OpSlice:
		return elementReturnType(e.Subject.DomainOf())
	default:
		return DomainKindInt
	}
}

func elementReturnType(d Domain) DomainKind {
	switch d.Kind() {
	case DomainKindMatrix:
		return d.Elem().Kind()
	case DomainKindTuple:
		return DomainKindInt
	default:
		return d.Kind()
	}
}

// DomainOf implements Expression.
func (e *PartialOp) DomainOf() Domain {
	switch e.Op {
	case OpDiv, OpMod:
		base := DomainFromInterval(IntervalOf(e.Subject.DomainOf()))
		if e.Safe {
			unioned, err := base.Union(Int(SingleRange(0)))
			if err == nil {
				return unioned
			}
		}

		return base
	case OpPow:
		subj := IntervalOf(e.Subject.DomainOf())
		return DomainFromInterval(subj)
	case OpIndex, OpSlice:
		d := e.Subject.DomainOf()
		if d.Kind() == DomainKindMatrix {
			return d.Elem()
		}

		return d
	default:
		return Int()
	}
}

// Meta implements Expression.
func (e *PartialOp) Meta() *Meta { return &e.meta }

// ---- Bubble ----

// Bubble marks "Value is valid provided Proof holds", propagated upward by
// the rewriter and collapsed once the proof is discharged.
type Bubble struct {
	meta  Meta
	Value Expression
	Proof Expression
}

// NewBubble constructs a Bubble node.
func NewBubble(value, proof Expression) *Bubble {
	return &Bubble{Value: value, Proof: proof}
}

// Children implements Expression.
func (e *Bubble) Children() []Expression { return []Expression{e.Value, e.Proof} }

// WithChildren implements Expression.
func (e *Bubble) WithChildren(children []Expression) Expression {
	return &Bubble{meta: e.meta, Value: children[0], Proof: children[1]}
}

// IsSafe implements Expression: a Bubble is, by construction, how an unsafe
// operation gets discharged, so it reports the safety of its wrapped value.
func (e *Bubble) IsSafe() bool { return e.Value.IsSafe() }

// ReturnType implements Expression.
func (e *Bubble) ReturnType() DomainKind { return e.Value.ReturnType() }

// DomainOf implements Expression.
func (e *Bubble) DomainOf() Domain { return e.Value.DomainOf() }

// Meta implements Expression.
func (e *Bubble) Meta() *Meta { return &e.meta }

// ---- set operators: Union, Intersect, Subset, SubsetEq, In, Supset, SupsetEq ----

// SetOpKind enumerates the set operators.
type SetOpKind int

// The seven set operator kinds.
const (
	OpSetUnion SetOpKind = iota
	OpSetIntersect
	OpSubset
	OpSubsetEq
	OpIn
	OpSupset
	OpSupsetEq
)

func (k SetOpKind) String() string {
	return [...]string{"Union", "Intersect", "Subset", "SubsetEq", "In", "Supset", "SupsetEq"}[k]
}

// SetOp is a binary set-algebra or set-membership operator.
type SetOp struct {
	meta     Meta
	Op       SetOpKind
	Lhs, Rhs Expression
}

// NewSetOp constructs a set-operator node.
func NewSetOp(op SetOpKind, lhs, rhs Expression) *SetOp {
	return &SetOp{Op: op, Lhs: lhs, Rhs: rhs}
}

// Children implements Expression.
func (e *SetOp) Children() []Expression { return []Expression{e.Lhs, e.Rhs} }

// WithChildren implements Expression.
func (e *SetOp) WithChildren(children []Expression) Expression {
	return &SetOp{meta: e.meta, Op: e.Op, Lhs: children[0], Rhs: children[1]}
}

// IsSafe implements Expression.
func (e *SetOp) IsSafe() bool { return e.Lhs.IsSafe() && e.Rhs.IsSafe() }

// ReturnType implements Expression.
func (e *SetOp) ReturnType() DomainKind {
	if e.Op == OpSetUnion || e.Op == OpSetIntersect {
		return DomainKindSet
	}

	return DomainKindBool
}

// DomainOf implements Expression.
func (e *SetOp) DomainOf() Domain {
	switch e.Op {
	case OpSetUnion:
		d, err := e.Lhs.DomainOf().Union(e.Rhs.DomainOf())
		if err != nil {
			return e.Lhs.DomainOf()
		}

		return d
	case OpSetIntersect:
		d, err := e.Lhs.DomainOf().Intersect(e.Rhs.DomainOf())
		if err != nil {
			return e.Lhs.DomainOf()
		}

		return d
	default:
		return Bool()
	}
}

// Meta implements Expression.
func (e *SetOp) Meta() *Meta { return &e.meta }

// ---- InDomain ----

// InDomain is the domain-membership test `atom in domain`.
type InDomain struct {
	meta Meta
	Arg  Expression
	Dom  Domain
}

// NewInDomain constructs an InDomain node.
func NewInDomain(arg Expression, dom Domain) *InDomain {
	return &InDomain{Arg: arg, Dom: dom}
}

// Children implements Expression.
func (e *InDomain) Children() []Expression { return []Expression{e.Arg} }

// WithChildren implements Expression.
func (e *InDomain) WithChildren(children []Expression) Expression {
	return &InDomain{meta: e.meta, Arg: children[0], Dom: e.Dom}
}

// IsSafe implements Expression.
func (e *InDomain) IsSafe() bool { return e.Arg.IsSafe() }

// ReturnType implements Expression.
func (e *InDomain) ReturnType() DomainKind { return DomainKindBool }

// DomainOf implements Expression.
func (e *InDomain) DomainOf() Domain { return Bool() }

// Meta implements Expression.
func (e *InDomain) Meta() *Meta { return &e.meta }

// ---- AuxDeclaration ----

// AuxDeclaration means "introduce Decl = Expr as a new defining equation".
type AuxDeclaration struct {
	meta Meta
	Decl DeclPtr
	Expr Expression
}

// NewAuxDeclaration constructs an AuxDeclaration node.
func NewAuxDeclaration(decl DeclPtr, expr Expression) *AuxDeclaration {
	return &AuxDeclaration{Decl: decl, Expr: expr}
}

// Children implements Expression.
func (e *AuxDeclaration) Children() []Expression { return []Expression{e.Expr} }

// WithChildren implements Expression.
func (e *AuxDeclaration) WithChildren(children []Expression) Expression {
	return &AuxDeclaration{meta: e.meta, Decl: e.Decl, Expr: children[0]}
}

// IsSafe implements Expression.
func (e *AuxDeclaration) IsSafe() bool { return e.Expr.IsSafe() }

// ReturnType implements Expression.
func (e *AuxDeclaration) ReturnType() DomainKind { return DomainKindBool }

// DomainOf implements Expression.
func (e *AuxDeclaration) DomainOf() Domain { return Bool() }

// Meta implements Expression.
func (e *AuxDeclaration) Meta() *Meta { return &e.meta }

// ---- Root ----

// Root is the top-level conjunction marker; a Model's root expression is
// always a Root(...).
type Root struct {
	meta     Meta
	Kids []Expression
}

// NewRoot constructs a Root node.
func NewRoot(children ...Expression) *Root {
	return &Root{Kids: children}
}

// Children implements Expression.
func (e *Root) Children() []Expression { return e.Kids }

// WithChildren implements Expression.
func (e *Root) WithChildren(children []Expression) Expression {
	return &Root{meta: e.meta, Kids: children}
}

// IsSafe implements Expression.
func (e *Root) IsSafe() bool { return allSafe(e.Kids) }

// ReturnType implements Expression.
func (e *Root) ReturnType() DomainKind { return DomainKindBool }

// DomainOf implements Expression.
func (e *Root) DomainOf() Domain { return Bool() }

// Meta implements Expression.
func (e *Root) Meta() *Meta { return &e.meta }
