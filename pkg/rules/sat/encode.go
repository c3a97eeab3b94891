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
package sat

import (
	"github.com/conjure-cp/conjure-go/pkg/ast"
	"github.com/conjure-cp/conjure-go/pkg/cerr"
)

const (
	reprBool = "sat-bool"
	reprInt  = "sat-int"
)

// EncodeModel Tseytin-encodes every top-level constraint of model's root
// into CNF clauses appended to model directly (via the Builder attached to
// it), asserting each one true. Unlike pkg/rules/cp, this package needs no
// intermediate flat node family or registered rewrite rules: bit-blasting
// recurses straight over the (already partial-evaluated) expression tree,
// so EncodeBool/EncodeInt together are the flattening step.
func EncodeModel(b *Builder, symtab *ast.SymbolTable, model *ast.Model) error {
	for _, c := range model.Root().Children() {
		lit, err := b.EncodeBool(symtab, c)
		if err != nil {
			return err
		}

		b.AssertTrue(lit)
	}

	return nil
}

func (b *Builder) boolVarLit(symtab *ast.SymbolTable, ref ast.DeclPtr) (int, error) {
	name := ast.With(ref, ast.Declaration.DeclName)

	rep, err := symtab.GetOrAddRepresentation(name, reprBool, func() any { return b.NewVar() })
	if err != nil {
		return 0, err
	}

	return rep.(int), nil
}

func (b *Builder) intVarVector(symtab *ast.SymbolTable, ref ast.DeclPtr, dom ast.Domain) (BitVector, error) {
	name := ast.With(ref, ast.Declaration.DeclName)

	rep, err := symtab.GetOrAddRepresentation(name, reprInt, func() any {
		iv := ast.IntervalOf(dom)
		width, signed := iv.BitWidth()

		return b.AllocVector(width, signed)
	})
	if err != nil {
		return BitVector{}, err
	}

	return rep.(BitVector), nil
}

// EncodeBool lowers a Boolean-returning expression to a single CNF literal.
func (b *Builder) EncodeBool(symtab *ast.SymbolTable, e ast.Expression) (int, error) {
	switch n := e.(type) {
	case *ast.Root:
		return b.encodeConjunction(symtab, n.Children())
	case *ast.AtomExpr:
		return b.encodeBoolAtom(symtab, n.Val)
	case *ast.NaryOp:
		return b.encodeBoolNaryOp(symtab, n)
	case *ast.UnOp:
		if n.Op != ast.OpNot {
			return 0, cerr.NewModelFeatureNotSupported("sat", "unary operator %s is not Boolean-valued", n.Op)
		}

		inner, err := b.EncodeBool(symtab, n.Arg)
		if err != nil {
			return 0, err
		}

		return b.Not(inner), nil
	case *ast.BinOp:
		return b.encodeBoolBinOp(symtab, n)
	case *ast.InDomain:
		return b.encodeInDomain(symtab, n)
	default:
		return 0, cerr.NewModelFeatureNotSupported("sat", "%T is not supported by the SAT encoder", e)
	}
}

func (b *Builder) encodeConjunction(symtab *ast.SymbolTable, children []ast.Expression) (int, error) {
	lits := make([]int, len(children))

	for i, c := range children {
		lit, err := b.EncodeBool(symtab, c)
		if err != nil {
			return 0, err
		}

		lits[i] = lit
	}

	return b.AndAll(lits), nil
}

func (b *Builder) encodeBoolAtom(symtab *ast.SymbolTable, a ast.Atom) (int, error) {
	if a.IsRef() {
		return b.boolVarLit(symtab, a.Ref())
	}

	lit := a.Lit()
	if lit.Kind() != ast.LitKindBool {
		return 0, cerr.NewModelFeatureNotSupported("sat", "expected a Boolean atom")
	}

	if lit.BoolVal() {
		return b.TrueLit(), nil
	}

	return b.FalseLit(), nil
}

func (b *Builder) encodeBoolNaryOp(symtab *ast.SymbolTable, n *ast.NaryOp) (int, error) {
	switch n.Op {
	case ast.OpAnd:
		return b.encodeConjunction(symtab, n.Args)
	case ast.OpOr:
		lits := make([]int, len(n.Args))

		for i, a := range n.Args {
			lit, err := b.EncodeBool(symtab, a)
			if err != nil {
				return 0, err
			}

			lits[i] = lit
		}

		return b.OrAll(lits), nil
	case ast.OpAllDiff:
		return b.encodeAllDiff(symtab, n.Args)
	default:
		return 0, cerr.NewModelFeatureNotSupported("sat", "n-ary operator %s is not Boolean-valued", n.Op)
	}
}

func (b *Builder) encodeAllDiff(symtab *ast.SymbolTable, args []ast.Expression) (int, error) {
	vecs := make([]BitVector, len(args))

	for i, a := range args {
		v, err := b.EncodeInt(symtab, a)
		if err != nil {
			return 0, err
		}

		vecs[i] = v
	}

	result := b.TrueLit()

	for i := 0; i < len(vecs); i++ {
		for j := i + 1; j < len(vecs); j++ {
			result = b.And(result, b.Neq(vecs[i], vecs[j]))
		}
	}

	return result, nil
}

func (b *Builder) encodeBoolBinOp(symtab *ast.SymbolTable, n *ast.BinOp) (int, error) {
	boolOperands := n.Lhs.ReturnType() == ast.DomainKindBool

	switch n.Op {
	case ast.OpIff, ast.OpImply:
		lhs, err := b.EncodeBool(symtab, n.Lhs)
		if err != nil {
			return 0, err
		}

		rhs, err := b.EncodeBool(symtab, n.Rhs)
		if err != nil {
			return 0, err
		}

		if n.Op == ast.OpIff {
			return b.Iff(lhs, rhs), nil
		}

		return b.Imply(lhs, rhs), nil
	case ast.OpEq, ast.OpNeq:
		if boolOperands {
			lhs, err := b.EncodeBool(symtab, n.Lhs)
			if err != nil {
				return 0, err
			}

			rhs, err := b.EncodeBool(symtab, n.Rhs)
			if err != nil {
				return 0, err
			}

			if n.Op == ast.OpEq {
				return b.Iff(lhs, rhs), nil
			}

			return b.Not(b.Iff(lhs, rhs)), nil
		}

		lhs, rhs, err := b.encodeIntPair(symtab, n.Lhs, n.Rhs)
		if err != nil {
			return 0, err
		}

		if n.Op == ast.OpEq {
			return b.Eq(lhs, rhs), nil
		}

		return b.Neq(lhs, rhs), nil
	case ast.OpLt, ast.OpLeq, ast.OpGt, ast.OpGeq:
		lhs, rhs, err := b.encodeIntPair(symtab, n.Lhs, n.Rhs)
		if err != nil {
			return 0, err
		}

		switch n.Op {
		case ast.OpLeq:
			return b.leq(lhs, rhs), nil
		case ast.OpGeq:
			return b.leq(rhs, lhs), nil
		case ast.OpLt:
			return b.Not(b.leq(rhs, lhs)), nil
		default: // OpGt
			return b.Not(b.leq(lhs, rhs)), nil
		}
	default:
		return 0, cerr.NewModelFeatureNotSupported("sat", "binary operator %s is not Boolean-valued", n.Op)
	}
}

func (b *Builder) encodeIntPair(symtab *ast.SymbolTable, lhs, rhs ast.Expression) (BitVector, BitVector, error) {
	l, err := b.EncodeInt(symtab, lhs)
	if err != nil {
		return BitVector{}, BitVector{}, err
	}

	r, err := b.EncodeInt(symtab, rhs)
	if err != nil {
		return BitVector{}, BitVector{}, err
	}

	return l, r, nil
}

// encodeInDomain picks its representation by domain kind: Int ranges lower
// to the bounds-disjunction encoding below, and Bool lowers by enumerating
// Values and asserting equality to one of them; any other domain kind is
// reported as not supported.
func (b *Builder) encodeInDomain(symtab *ast.SymbolTable, n *ast.InDomain) (int, error) {
	if n.Dom.Kind() == ast.DomainKindBool {
		arg, err := b.EncodeBool(symtab, n.Arg)
		if err != nil {
			return 0, err
		}

		vals, err := n.Dom.Values(symtab)
		if err != nil {
			return 0, err
		}

		disjuncts := make([]int, 0, len(vals))

		for _, v := range vals {
			lit := b.FalseLit()
			if v.BoolVal() {
				lit = b.TrueLit()
			}

			disjuncts = append(disjuncts, b.Iff(arg, lit))
		}

		return b.OrAll(disjuncts), nil
	}

	if n.Dom.Kind() != ast.DomainKindInt {
		return 0, cerr.NewModelFeatureNotSupported("sat", "InDomain over a %s domain", n.Dom.Kind())
	}

	arg, err := b.EncodeInt(symtab, n.Arg)
	if err != nil {
		return 0, err
	}

	disjuncts := make([]int, 0, len(n.Dom.Ranges()))

	for _, r := range n.Dom.Ranges() {
		loVal, loOK := r.Lo.Int64Val()
		hiVal, hiOK := r.Hi.Int64Val()

		if !loOK || !hiOK {
			return 0, cerr.NewModelFeatureNotSupported("sat", "InDomain over an unbounded range")
		}

		width, signed := arg.Width(), arg.Signed

		lo, err := b.ConstVector(loVal, width, signed)
		if err != nil {
			return 0, err
		}

		hi, err := b.ConstVector(hiVal, width, signed)
		if err != nil {
			return 0, err
		}

		inRange := b.And(b.leq(lo, arg), b.leq(arg, hi))
		disjuncts = append(disjuncts, inRange)
	}

	return b.OrAll(disjuncts), nil
}

// EncodeInt lowers an integer-returning expression to a bit-vector.
func (b *Builder) EncodeInt(symtab *ast.SymbolTable, e ast.Expression) (BitVector, error) {
	switch n := e.(type) {
	case *ast.AtomExpr:
		return b.encodeIntAtom(symtab, n.Val)
	case *ast.NaryOp:
		return b.encodeIntNaryOp(symtab, n)
	case *ast.UnOp:
		return b.encodeIntUnOp(symtab, n)
	case *ast.BinOp:
		if n.Op != ast.OpMinus {
			return BitVector{}, cerr.NewModelFeatureNotSupported("sat", "binary operator %s is not integer-valued", n.Op)
		}

		lhs, rhs, err := b.encodeIntPair(symtab, n.Lhs, n.Rhs)
		if err != nil {
			return BitVector{}, err
		}

		return b.Sub(lhs, rhs), nil
	case *ast.PartialOp:
		return b.encodeIntPartialOp(symtab, n)
	default:
		return BitVector{}, cerr.NewModelFeatureNotSupported("sat", "%T is not integer-valued", e)
	}
}

func (b *Builder) encodeIntAtom(symtab *ast.SymbolTable, a ast.Atom) (BitVector, error) {
	if a.IsRef() {
		return b.intVarVector(symtab, a.Ref(), a.DomainOf())
	}

	lit := a.Lit()
	if lit.Kind() != ast.LitKindInt {
		return BitVector{}, cerr.NewModelFeatureNotSupported("sat", "expected an integer atom")
	}

	width, signed := ast.IntervalOf(lit.DomainOf()).BitWidth()

	return b.ConstVector(lit.IntVal(), width, signed)
}

func (b *Builder) encodeIntArgs(symtab *ast.SymbolTable, args []ast.Expression) ([]BitVector, error) {
	out := make([]BitVector, len(args))

	for i, a := range args {
		v, err := b.EncodeInt(symtab, a)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (b *Builder) encodeIntNaryOp(symtab *ast.SymbolTable, n *ast.NaryOp) (BitVector, error) {
	switch n.Op {
	case ast.OpSum, ast.OpProduct, ast.OpMin, ast.OpMax:
		vecs, err := b.encodeIntArgs(symtab, n.Args)
		if err != nil {
			return BitVector{}, err
		}

		if len(vecs) == 0 {
			if !n.Op.IsIdentityAC() {
				return BitVector{}, cerr.NewModelInvalid("%s over an empty argument list has no identity", n.Op)
			}

			return b.ConstVector(n.Op.Identity().IntVal(), 1, false)
		}

		acc := vecs[0]

		for _, v := range vecs[1:] {
			switch n.Op {
			case ast.OpSum:
				acc, _ = b.Add(acc, v)
			case ast.OpProduct:
				acc = b.Multiply(acc, v)
			case ast.OpMin:
				acc = b.Min(acc, v)
			default: // OpMax
				acc = b.Max(acc, v)
			}
		}

		return acc, nil
	default:
		return BitVector{}, cerr.NewModelFeatureNotSupported("sat", "n-ary operator %s is not integer-valued", n.Op)
	}
}

func (b *Builder) encodeIntUnOp(symtab *ast.SymbolTable, n *ast.UnOp) (BitVector, error) {
	switch n.Op {
	case ast.OpNeg:
		v, err := b.EncodeInt(symtab, n.Arg)
		if err != nil {
			return BitVector{}, err
		}

		return b.Negate(v), nil
	case ast.OpAbs:
		v, err := b.EncodeInt(symtab, n.Arg)
		if err != nil {
			return BitVector{}, err
		}

		return b.Abs(v), nil
	case ast.OpToInt:
		lit, err := b.EncodeBool(symtab, n.Arg)
		if err != nil {
			return BitVector{}, err
		}

		return BitVector{Bits: []int{lit}, Signed: false}, nil
	default:
		return BitVector{}, cerr.NewModelFeatureNotSupported("sat", "unary operator %s is not integer-valued", n.Op)
	}
}

func (b *Builder) encodeIntPartialOp(symtab *ast.SymbolTable, n *ast.PartialOp) (BitVector, error) {
	switch n.Op {
	case ast.OpDiv, ast.OpMod:
		if len(n.Args) == 0 {
			return BitVector{}, cerr.NewModelInvalid("Div/Mod missing divisor")
		}

		x, y, err := b.encodeIntPair(symtab, n.Subject, n.Args[0])
		if err != nil {
			return BitVector{}, err
		}

		quotient, remainder := b.Divide(x, y)
		if n.Op == ast.OpDiv {
			return quotient, nil
		}

		return remainder, nil
	default:
		return BitVector{}, cerr.NewModelFeatureNotSupported("sat", "partial operator %s is not yet lowered by this encoder", n.Op)
	}
}
