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

import "github.com/conjure-cp/conjure-go/pkg/ast"

// binaryOps is the MkOp-name-to-constructor table for the nineteen binary
// operators, matching the source parser's binary_operators map exactly
// (MkOpDiv/MkOpMod/MkOpPow map to the unsafe partial forms, discharged by a
// later rewrite rule rather than at parse time).
var binaryOps = map[string]func(lhs, rhs ast.Expression) ast.Expression{
	"MkOpIn":     func(l, r ast.Expression) ast.Expression { return ast.NewSetOp(ast.OpIn, l, r) },
	"MkOpUnion":  func(l, r ast.Expression) ast.Expression { return ast.NewSetOp(ast.OpSetUnion, l, r) },
	"MkOpIntersect": func(l, r ast.Expression) ast.Expression {
		return ast.NewSetOp(ast.OpSetIntersect, l, r)
	},
	"MkOpSupset":   func(l, r ast.Expression) ast.Expression { return ast.NewSetOp(ast.OpSupset, l, r) },
	"MkOpSupsetEq": func(l, r ast.Expression) ast.Expression { return ast.NewSetOp(ast.OpSupsetEq, l, r) },
	"MkOpSubset":   func(l, r ast.Expression) ast.Expression { return ast.NewSetOp(ast.OpSubset, l, r) },
	"MkOpSubsetEq": func(l, r ast.Expression) ast.Expression { return ast.NewSetOp(ast.OpSubsetEq, l, r) },
	"MkOpEq":       func(l, r ast.Expression) ast.Expression { return ast.NewBinOp(ast.OpEq, l, r) },
	"MkOpNeq":      func(l, r ast.Expression) ast.Expression { return ast.NewBinOp(ast.OpNeq, l, r) },
	"MkOpGeq":      func(l, r ast.Expression) ast.Expression { return ast.NewBinOp(ast.OpGeq, l, r) },
	"MkOpLeq":      func(l, r ast.Expression) ast.Expression { return ast.NewBinOp(ast.OpLeq, l, r) },
	"MkOpGt":       func(l, r ast.Expression) ast.Expression { return ast.NewBinOp(ast.OpGt, l, r) },
	"MkOpLt":       func(l, r ast.Expression) ast.Expression { return ast.NewBinOp(ast.OpLt, l, r) },
	"MkOpDiv": func(l, r ast.Expression) ast.Expression {
		return ast.NewPartialOp(ast.OpDiv, false, l, r)
	},
	"MkOpMod": func(l, r ast.Expression) ast.Expression {
		return ast.NewPartialOp(ast.OpMod, false, l, r)
	},
	"MkOpMinus":  func(l, r ast.Expression) ast.Expression { return ast.NewBinOp(ast.OpMinus, l, r) },
	"MkOpImply":  func(l, r ast.Expression) ast.Expression { return ast.NewBinOp(ast.OpImply, l, r) },
	"MkOpIff":    func(l, r ast.Expression) ast.Expression { return ast.NewBinOp(ast.OpIff, l, r) },
	"MkOpPow": func(l, r ast.Expression) ast.Expression {
		return ast.NewPartialOp(ast.OpPow, false, l, r)
	},
}

// naryUnaryOps is the MkOp-name-to-constructor table for the remaining
// operators, split by arity-of-the-JSON-argument rather than of the
// resulting node: Sum/Product/And/Or/Min/Max/AllDiff wrap a single
// abstract-literal-matrix argument the source unwraps into its elements.
var naryUnaryOps = map[string]ast.NaryOpKind{
	"MkOpAnd":     ast.OpAnd,
	"MkOpSum":     ast.OpSum,
	"MkOpProduct": ast.OpProduct,
	"MkOpOr":      ast.OpOr,
	"MkOpMin":     ast.OpMin,
	"MkOpMax":     ast.OpMax,
	"MkOpAllDiff": ast.OpAllDiff,
}

var plainUnaryOps = map[string]ast.UnOpKind{
	"MkOpNot":     ast.OpNot,
	"MkOpNegate":  ast.OpNeg,
	"MkOpTwoBars": ast.OpAbs,
	"MkOpToInt":   ast.OpToInt,
}

// parseExpression decodes one expression node, dispatching on whichever of
// Op/Reference/Constant/AbstractLiteral/Comprehension is present - the same
// key set spec.md §6 enumerates.
func parseExpression(value interface{}, symtab *ast.SymbolTable) (ast.Expression, error) {
	obj, err := asObject(value)
	if err != nil {
		return nil, err
	}

	if opRaw, ok := obj["Op"]; ok {
		return parseOp(opRaw, symtab)
	}

	if refRaw, ok := obj["Reference"]; ok {
		return parseReference(refRaw, symtab)
	}

	if _, ok := obj["Comprehension"]; ok {
		return parseComprehensionExpr(obj, symtab)
	}

	if absRaw, ok := obj["AbstractLiteral"]; ok {
		return parseAbstractLiteral(absRaw, symtab)
	}

	if _, ok := obj["Constant"]; ok {
		return parseConstant(obj, symtab)
	}

	if _, ok := obj["ConstantInt"]; ok {
		return parseConstant(obj, symtab)
	}

	if _, ok := obj["ConstantBool"]; ok {
		return parseConstant(obj, symtab)
	}

	return nil, perr("expression object has no recognised key")
}

func parseOp(opRaw interface{}, symtab *ast.SymbolTable) (ast.Expression, error) {
	opObj, err := asObject(opRaw)
	if err != nil {
		return nil, perr("Op is not an object: %s", err)
	}

	key, val, err := singleKey(opObj)
	if err != nil {
		return nil, perr("Op: %s", err)
	}

	if ctor, ok := binaryOps[key]; ok {
		return parseBinOp(ctor, val, symtab)
	}

	if opKind, ok := naryUnaryOps[key]; ok {
		return parseNaryUnaryOp(opKind, key, val, symtab)
	}

	if opKind, ok := plainUnaryOps[key]; ok {
		arg, err := parseExpression(val, symtab)
		if err != nil {
			return nil, err
		}

		return ast.NewUnOp(opKind, arg), nil
	}

	if key == "MkOpIndexing" || key == "MkOpSlicing" {
		return parseIndexingSlicing(key, val, symtab)
	}

	return nil, perr("unhandled Op key %q", key)
}

func parseBinOp(ctor func(lhs, rhs ast.Expression) ast.Expression, val interface{}, symtab *ast.SymbolTable) (ast.Expression, error) {
	arr, err := asArray(val)
	if err != nil || len(arr) != 2 {
		return nil, perr("binary operator argument is not a 2-element array")
	}

	lhs, err := parseExpression(arr[0], symtab)
	if err != nil {
		return nil, err
	}

	rhs, err := parseExpression(arr[1], symtab)
	if err != nil {
		return nil, err
	}

	return ctor(lhs, rhs), nil
}

// parseNaryUnaryOp unwraps the single JSON "unary" argument of an AC/AllDiff
// operator into its element list: either an {AbstractLiteral:{AbsLitMatrix:
// [domain, [args...]]}} wrapper, a bare {Constant:{ConstantAbstract:
// {AbsLitMatrix: [...]}}} (the empty/constant-input case, e.g. or([])), or a
// Comprehension (left un-expanded here; pkg/comprehension consumes it
// later, so the comprehension itself becomes the node's sole argument).
func parseNaryUnaryOp(opKind ast.NaryOpKind, key string, val interface{}, symtab *ast.SymbolTable) (ast.Expression, error) {
	if valObj, err := asObject(val); err == nil {
		if _, ok := valObj["Comprehension"]; ok {
			comp, err := parseComprehensionExpr(valObj, symtab)
			if err != nil {
				return nil, err
			}

			return ast.NewNaryOp(opKind, comp), nil
		}
	}

	args, err := parseMatrixArgs(val, symtab)
	if err != nil {
		return nil, perr("%s: %s", key, err)
	}

	return ast.NewNaryOp(opKind, args...), nil
}

// parseMatrixArgs extracts the element list out of the several shapes the
// source parser tries in turn for an abstract-literal matrix argument.
func parseMatrixArgs(val interface{}, symtab *ast.SymbolTable) ([]ast.Expression, error) {
	if elems, err := indexed(val, "AbstractLiteral", "AbsLitMatrix", 1); err == nil {
		return parseExprArray(elems, symtab)
	}

	if elems, err := indexed(val, "Constant", "ConstantAbstract", "AbsLitMatrix", 1); err == nil {
		return parseExprArray(elems, symtab)
	}

	if elems, err := indexed(val, "ConstantAbstract", "AbsLitMatrix", 1); err == nil {
		return parseExprArray(elems, symtab)
	}

	return nil, perr("could not find an abstract-literal matrix argument")
}

func parseExprArray(val interface{}, symtab *ast.SymbolTable) ([]ast.Expression, error) {
	arr, err := asArray(val)
	if err != nil {
		return nil, err
	}

	out := make([]ast.Expression, len(arr))

	for i, item := range arr {
		e, err := parseExpression(item, symtab)
		if err != nil {
			return nil, perr("element %d: %s", i, err)
		}

		out[i] = e
	}

	return out, nil
}

// parseIndexingSlicing flattens a right-associated chain of
// MkOpIndexing/MkOpSlicing nodes into a single PartialOp carrying every
// axis, the innermost node's index first (so
// MkOpIndexing(MkOpIndexing(MkOpIndexing(a,1),2),3) becomes a[1,2,3]),
// mandatory per spec.md §6. A slicing axis
// contributes a nil Args entry, the documented "full range" marker.
func parseIndexingSlicing(key string, val interface{}, symtab *ast.SymbolTable) (ast.Expression, error) {
	var (
		target  ast.Expression
		indices []ast.Expression
		allKnown = true
		err     error
	)

	switch key {
	case "MkOpIndexing":
		arr, arrErr := asArray(val)
		if arrErr != nil || len(arr) != 2 {
			return nil, perr("MkOpIndexing argument is not a 2-element array")
		}

		target, err = parseExpression(arr[0], symtab)
		if err != nil {
			return nil, err
		}

		idx, idxErr := parseExpression(arr[1], symtab)
		if idxErr != nil {
			return nil, idxErr
		}

		indices = append(indices, idx)
	case "MkOpSlicing":
		arr, arrErr := asArray(val)
		if arrErr != nil || len(arr) != 3 {
			return nil, perr("MkOpSlicing argument is not a 3-element array")
		}

		allKnown = false

		target, err = parseExpression(arr[0], symtab)
		if err != nil {
			return nil, err
		}

		indices = append(indices, nil)
	default:
		return nil, perr("unreachable: %s", key)
	}

	for {
		inner, ok := target.(*ast.PartialOp)
		if !ok || (inner.Op != ast.OpIndex && inner.Op != ast.OpSlice) {
			break
		}

		if inner.Op == ast.OpSlice {
			allKnown = false
		}

		reversed := make([]ast.Expression, len(inner.Args))
		for i, a := range inner.Args {
			reversed[len(inner.Args)-1-i] = a
		}

		indices = append(indices, reversed...)
		target = inner.Subject
	}

	for l, r := 0, len(indices)-1; l < r; l, r = l+1, r-1 {
		indices[l], indices[r] = indices[r], indices[l]
	}

	op := ast.OpIndex
	if !allKnown {
		op = ast.OpSlice
	}

	return ast.NewPartialOp(op, false, target, indices...), nil
}

func parseReference(refRaw interface{}, symtab *ast.SymbolTable) (ast.Expression, error) {
	nameRaw, err := indexed(refRaw, 0, "Name")
	if err != nil {
		return nil, perr("Reference: %s", err)
	}

	name, err := asString(nameRaw)
	if err != nil {
		return nil, err
	}

	ptr, ok := symtab.Lookup(ast.UserName(name))
	if !ok {
		return nil, perr("reference to undeclared %q", name)
	}

	return ast.NewAtomExpr(ast.AtomRef(ptr)), nil
}

func parseConstant(obj map[string]interface{}, symtab *ast.SymbolTable) (ast.Expression, error) {
	constRaw, wrapped := obj["Constant"]
	if !wrapped {
		constRaw = obj
	}

	constObj, err := asObject(constRaw)
	if err != nil {
		return nil, perr("Constant is not an object: %s", err)
	}

	if v, ok := constObj["ConstantInt"]; ok {
		n, err := indexed(v, 1)
		if err != nil {
			return nil, err
		}

		i, err := asInt64(n)
		if err != nil {
			return nil, err
		}

		return ast.NewAtomExpr(ast.AtomLit(ast.IntLit(i))), nil
	}

	if v, ok := constObj["ConstantBool"]; ok {
		b, err := asBool(v)
		if err != nil {
			return nil, err
		}

		return ast.NewAtomExpr(ast.AtomLit(ast.BoolLit(b))), nil
	}

	if v, ok := constObj["ConstantAbstract"]; ok {
		return parseAbstractLiteral(v, symtab)
	}

	return nil, perr("Constant has no recognised field")
}

// parseAbstractLiteral decodes an AbsLitSet/AbsLitMatrix/AbsLitTuple/
// AbsLitRecord appearing outside an AC operator's argument position (the
// position parseMatrixArgs handles instead). This module has no dedicated
// matrix-literal expression node, so the element list is folded into a
// NaryOp(And); later rewrite rules are expected to retype it from context.
func parseAbstractLiteral(raw interface{}, symtab *ast.SymbolTable) (ast.Expression, error) {
	obj, err := asObject(raw)
	if err != nil {
		return nil, perr("AbstractLiteral is not an object: %s", err)
	}

	if v, ok := obj["AbsLitMatrix"]; ok {
		elems, err := indexed(v, 1)
		if err != nil {
			return nil, err
		}

		args, err := parseExprArray(elems, symtab)
		if err != nil {
			return nil, err
		}

		return ast.NewNaryOp(ast.OpAnd, args...), nil
	}

	if v, ok := obj["AbsLitSet"]; ok {
		args, err := parseExprArray(v, symtab)
		if err != nil {
			return nil, err
		}

		return ast.NewNaryOp(ast.OpAnd, args...), nil
	}

	if v, ok := obj["AbsLitTuple"]; ok {
		args, err := parseExprArray(v, symtab)
		if err != nil {
			return nil, err
		}

		return ast.NewNaryOp(ast.OpAnd, args...), nil
	}

	if v, ok := obj["AbsLitRecord"]; ok {
		arr, err := asArray(v)
		if err != nil {
			return nil, perr("AbsLitRecord is not an array")
		}

		var args []ast.Expression

		for _, entry := range arr {
			pair, err := asArray(entry)
			if err != nil || len(pair) != 2 {
				return nil, perr("AbsLitRecord entry is not a 2-element array")
			}

			e, err := parseExpression(pair[1], symtab)
			if err != nil {
				return nil, err
			}

			args = append(args, e)
		}

		return ast.NewNaryOp(ast.OpAnd, args...), nil
	}

	return nil, perr("AbstractLiteral has no recognised field")
}

// parseComprehensionExpr decodes `{Comprehension: [body, [generators-and-
// guards...]]}` into an *ast.Comprehension, using one child scope for both
// the generators' own domains and the guard/body expressions (the source
// parser's ComprehensionBuilder keeps these as two scopes; one suffices
// here since neither this decoder nor pkg/comprehension needs them kept
// separate).
func parseComprehensionExpr(obj map[string]interface{}, symtab *ast.SymbolTable) (ast.Expression, error) {
	value := obj["Comprehension"]

	genScope := ast.NewChildSymbolTable(symtab)

	entries, err := indexed(value, 1)
	if err != nil {
		return nil, perr("Comprehension[1]: %s", err)
	}

	entryArr, err := asArray(entries)
	if err != nil {
		return nil, perr("Comprehension[1] is not an array")
	}

	var (
		generators []ast.DeclPtr
		guards     []ast.Expression
	)

	for _, entry := range entryArr {
		entryObj, err := asObject(entry)
		if err != nil {
			return nil, err
		}

		key, val, err := singleKey(entryObj)
		if err != nil {
			return nil, err
		}

		switch key {
		case "Generator":
			ptr, err := parseGenerator(val, genScope)
			if err != nil {
				return nil, err
			}

			generators = append(generators, ptr)
		case "Condition":
			guard, err := parseExpression(val, genScope)
			if err != nil {
				return nil, err
			}

			guards = append(guards, guard)
		default:
			return nil, perr("unknown comprehension field %q", key)
		}
	}

	body, err := indexed(value, 0)
	if err != nil {
		return nil, perr("Comprehension[0]: %s", err)
	}

	bodyExpr, err := parseExpression(body, genScope)
	if err != nil {
		return nil, err
	}

	return ast.NewComprehension(generators, guards, bodyExpr), nil
}

// parseGenerator decodes `{Generator: {GenDomainNoRepr: [{Single:{Name:s}},
// {<domain>}]}}`, the one generator shape this decoder supports (per the
// source parser's own "TODO: more things than GenDomainNoRepr and Single
// names here?").
func parseGenerator(val interface{}, genScope *ast.SymbolTable) (ast.DeclPtr, error) {
	nameRaw, err := indexed(val, "GenDomainNoRepr", 0, "Single", "Name")
	if err != nil {
		return ast.DeclPtr{}, perr("Generator: %s", err)
	}

	name, err := asString(nameRaw)
	if err != nil {
		return ast.DeclPtr{}, err
	}

	domWrap, err := indexed(val, "GenDomainNoRepr", 1)
	if err != nil {
		return ast.DeclPtr{}, perr("Generator: %s", err)
	}

	domName, domVal, err := singleKeyOf(domWrap)
	if err != nil {
		return ast.DeclPtr{}, err
	}

	dom, err := parseDomain(domName, domVal, genScope)
	if err != nil {
		return ast.DeclPtr{}, err
	}

	ptr := ast.NewDeclPtr(&ast.Quantified{Name: ast.UserName(name), Dom: dom})
	genScope.Insert(ptr)

	return ptr, nil
}
