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

import "fmt"

// LitKind discriminates the variants of Literal.
type LitKind int

// The literal variants: a plain Int or Bool, or one of the abstract-literal
// shapes (set/matrix/tuple/record/function-graph), each built from
// sub-literals.
const (
	LitKindInt LitKind = iota
	LitKindBool
	LitKindSet
	LitKindMatrix
	LitKindTuple
	LitKindRecord
	LitKindFunctionGraph
)

// FuncPair is one (argument, value) pair of a function-graph literal.
type FuncPair struct {
	Arg Literal
	Val Literal
}

// Literal is a fully-evaluated constant value. Every literal carries a
// domain-of derivation, computed once at construction via FromLiteralVec /
// the matching domain constructor rather than recomputed on every query.
type Literal struct {
	kind LitKind

	intVal  int64
	boolVal bool

	setElems    []Literal
	matrixElems []Literal
	tupleElems  []Literal
	recordElems map[Name]Literal
	funcElems   []FuncPair

	domainOf Domain
}

// IntLit constructs an integer literal.
func IntLit(v int64) Literal {
	return Literal{kind: LitKindInt, intVal: v, domainOf: Int(SingleRange(v))}
}

// BoolLit constructs a Boolean literal.
func BoolLit(v bool) Literal {
	return Literal{kind: LitKindBool, boolVal: v, domainOf: Bool()}
}

// SetLit constructs a set literal holding elems as given; it does not
// deduplicate them, so callers hand in an already de-duplicated slice.
func SetLit(elems []Literal, domainOf Domain) Literal {
	return Literal{kind: LitKindSet, setElems: elems, domainOf: domainOf}
}

// MatrixLit constructs a matrix literal (an n-D matrix is represented, per
// the data model, as a matrix of matrices, normalised on construction by the
// caller before reaching here).
func MatrixLit(elems []Literal, domainOf Domain) Literal {
	return Literal{kind: LitKindMatrix, matrixElems: elems, domainOf: domainOf}
}

// TupleLit constructs a tuple literal.
func TupleLit(elems []Literal, domainOf Domain) Literal {
	return Literal{kind: LitKindTuple, tupleElems: elems, domainOf: domainOf}
}

// RecordLit constructs a record literal.
func RecordLit(fields map[Name]Literal, domainOf Domain) Literal {
	return Literal{kind: LitKindRecord, recordElems: fields, domainOf: domainOf}
}

// FunctionGraphLit constructs a function-graph literal (a set of
// argument/value pairs).
func FunctionGraphLit(pairs []FuncPair, domainOf Domain) Literal {
	return Literal{kind: LitKindFunctionGraph, funcElems: pairs, domainOf: domainOf}
}

// Kind reports the literal's variant.
func (l Literal) Kind() LitKind { return l.kind }

// IntVal returns the wrapped value of an Int literal.
func (l Literal) IntVal() int64 { return l.intVal }

// BoolVal returns the wrapped value of a Bool literal.
func (l Literal) BoolVal() bool { return l.boolVal }

// SetElems returns the elements of a Set literal.
func (l Literal) SetElems() []Literal { return l.setElems }

// MatrixElems returns the elements of a Matrix literal.
func (l Literal) MatrixElems() []Literal { return l.matrixElems }

// TupleElems returns the components of a Tuple literal.
func (l Literal) TupleElems() []Literal { return l.tupleElems }

// RecordFields returns the field values of a Record literal.
func (l Literal) RecordFields() map[Name]Literal { return l.recordElems }

// FunctionPairs returns the argument/value pairs of a FunctionGraph literal.
func (l Literal) FunctionPairs() []FuncPair { return l.funcElems }

// DomainOf returns the cached smallest domain this literal belongs to.
func (l Literal) DomainOf() Domain { return l.domainOf }

// Equal reports structural equality between two literals.
func (l Literal) Equal(o Literal) bool {
	if l.kind != o.kind {
		return false
	}

	switch l.kind {
	case LitKindInt:
		return l.intVal == o.intVal
	case LitKindBool:
		return l.boolVal == o.boolVal
	case LitKindSet, LitKindMatrix, LitKindTuple:
		a, b := l.flatElems(), o.flatElems()
		if len(a) != len(b) {
			return false
		}

		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}

		return true
	case LitKindRecord:
		if len(l.recordElems) != len(o.recordElems) {
			return false
		}

		for k, v := range l.recordElems {
			ov, ok := o.recordElems[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}

		return true
	case LitKindFunctionGraph:
		if len(l.funcElems) != len(o.funcElems) {
			return false
		}

		for i, p := range l.funcElems {
			if !p.Arg.Equal(o.funcElems[i].Arg) || !p.Val.Equal(o.funcElems[i].Val) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func (l Literal) flatElems() []Literal {
	switch l.kind {
	case LitKindSet:
		return l.setElems
	case LitKindMatrix:
		return l.matrixElems
	case LitKindTuple:
		return l.tupleElems
	default:
		return nil
	}
}

func (l Literal) String() string {
	switch l.kind {
	case LitKindInt:
		return fmt.Sprintf("%d", l.intVal)
	case LitKindBool:
		return fmt.Sprintf("%t", l.boolVal)
	case LitKindSet:
		return fmt.Sprintf("%v", l.setElems)
	case LitKindMatrix:
		return fmt.Sprintf("%v", l.matrixElems)
	case LitKindTuple:
		return fmt.Sprintf("%v", l.tupleElems)
	case LitKindRecord:
		return fmt.Sprintf("%v", l.recordElems)
	default:
		return "<function-graph>"
	}
}

// Atom is either a literal or a reference to a declaration (the leaves of
// the expression tree).
type Atom struct {
	isRef bool
	lit   Literal
	ref   DeclPtr
}

// AtomLit wraps a Literal as an Atom.
func AtomLit(l Literal) Atom { return Atom{isRef: false, lit: l} }

// AtomRef wraps a DeclPtr reference as an Atom.
func AtomRef(p DeclPtr) Atom { return Atom{isRef: true, ref: p} }

// IsRef reports whether this atom is a reference (as opposed to a literal).
func (a Atom) IsRef() bool { return a.isRef }

// Lit returns the wrapped literal; only valid when !IsRef().
func (a Atom) Lit() Literal { return a.lit }

// Ref returns the wrapped declaration pointer; only valid when IsRef().
func (a Atom) Ref() DeclPtr { return a.ref }

// DomainOf returns the atom's domain: the literal's own domain, or the
// referenced declaration's domain.
func (a Atom) DomainOf() Domain {
	if !a.isRef {
		return a.lit.DomainOf()
	}

	var (
		dom Domain
		ok  bool
	)

	a.ref.Read(func(d Declaration) {
		dom, ok = DeclDomain(d)
	})

	if !ok {
		// ValueLetting reference: fall back to its expression's domain.
		return With(a.ref, func(d Declaration) Domain {
			vl, ok := d.(*ValueLetting)
			if !ok {
				panic("atom references a declaration with no domain")
			}

			return vl.Expr.DomainOf()
		})
	}

	return dom
}

func (a Atom) String() string {
	if a.isRef {
		return With(a.ref, func(d Declaration) string { return d.DeclName().String() })
	}

	return a.lit.String()
}
