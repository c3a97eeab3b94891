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

// Package jsonir decodes the wire JSON IR (mStatements: an ordered list of
// Declaration/SuchThat objects) into an *ast.Model. It is grounded on the
// teacher's own analogous "read an external JSON constraint dump" code
// (pkg/binfile/json.go): a stdlib encoding/json decode into
// map[string]interface{}, walked by hand with key-presence dispatch rather
// than struct-tag unmarshalling, since the wire format is a tagged union
// per node (Rust's serde-derived enum encoding) with no fixed Go shape.
package jsonir

import (
	"encoding/json"

	"github.com/conjure-cp/conjure-go/pkg/ast"
	"github.com/conjure-cp/conjure-go/pkg/cerr"
)

// Decode parses a wire JSON document into a fresh Model over a fresh
// top-level symbol table.
func Decode(data []byte) (*ast.Model, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, cerr.NewParseError("invalid JSON: %s", err)
	}

	raw, ok := doc["mStatements"]
	if !ok {
		return nil, cerr.NewParseError("missing mStatements")
	}

	statements, err := asArray(raw)
	if err != nil {
		return nil, cerr.NewParseError("mStatements is not an array: %s", err)
	}

	symtab := ast.NewSymbolTable()
	model := ast.NewModel(symtab)

	for i, stmt := range statements {
		obj, err := asObject(stmt)
		if err != nil {
			return nil, cerr.NewParseError("mStatements[%d] is not an object: %s", i, err)
		}

		key, val, err := singleKey(obj)
		if err != nil {
			return nil, cerr.NewParseError("mStatements[%d]: %s", i, err)
		}

		switch key {
		case "Declaration":
			if err := decodeDeclaration(val, symtab); err != nil {
				return nil, cerr.NewParseError("mStatements[%d].Declaration: %s", i, err)
			}
		case "SuchThat":
			if err := decodeSuchThat(val, symtab, model); err != nil {
				return nil, cerr.NewParseError("mStatements[%d].SuchThat: %s", i, err)
			}
		default:
			return nil, cerr.NewParseError("mStatements[%d]: unhandled statement kind %q", i, key)
		}
	}

	return model, nil
}

func decodeSuchThat(val interface{}, symtab *ast.SymbolTable, model *ast.Model) error {
	constraints, err := asArray(val)
	if err != nil {
		return cerr.NewParseError("SuchThat is not an array: %s", err)
	}

	for i, c := range constraints {
		expr, err := parseExpression(c, symtab)
		if err != nil {
			return cerr.NewParseError("SuchThat[%d]: %s", i, err)
		}

		model.AddConstraint(expr)
	}

	return nil
}

// decodeDeclaration dispatches a Declaration object to whichever of
// FindOrGiven/Letting is present, looking up FindOrGiven first and then
// Letting.
func decodeDeclaration(val interface{}, symtab *ast.SymbolTable) error {
	obj, err := asObject(val)
	if err != nil {
		return cerr.NewParseError("Declaration is not an object: %s", err)
	}

	if fog, ok := obj["FindOrGiven"]; ok {
		return decodeFindOrGiven(fog, symtab)
	}

	if letting, ok := obj["Letting"]; ok {
		return decodeLetting(letting, symtab)
	}

	return cerr.NewParseError("Declaration has no FindOrGiven or Letting field")
}

// decodeFindOrGiven parses `[kind, {Name: s}, domain]`: kind is "Find" for a
// decision variable or "Given" for a parameter.
func decodeFindOrGiven(val interface{}, symtab *ast.SymbolTable) error {
	arr, err := asArray(val)
	if err != nil || len(arr) != 3 {
		return cerr.NewParseError("FindOrGiven is not a 3-element array")
	}

	kind, err := asString(arr[0])
	if err != nil {
		return cerr.NewParseError("FindOrGiven[0]: %s", err)
	}

	name, err := parseDeclName(arr[1])
	if err != nil {
		return cerr.NewParseError("FindOrGiven[1]: %s", err)
	}

	domObj, err := asObject(arr[2])
	if err != nil {
		return cerr.NewParseError("FindOrGiven[2] is not an object: %s", err)
	}

	domName, domVal, err := singleKey(domObj)
	if err != nil {
		return cerr.NewParseError("FindOrGiven[2]: %s", err)
	}

	dom, err := parseDomain(domName, domVal, symtab)
	if err != nil {
		return err
	}

	var ptr ast.DeclPtr

	switch kind {
	case "Find":
		ptr = ast.NewDeclPtr(ast.NewDecisionVariable(name, dom))
	case "Given":
		ptr = ast.NewDeclPtr(&ast.Given{Name: name, Dom: dom})
	default:
		return cerr.NewParseError("FindOrGiven[0]: unknown kind %q", kind)
	}

	if !symtab.Insert(ptr) {
		return cerr.NewParseError("%q is already declared", name.String())
	}

	return nil
}

// decodeLetting parses `[{Name: s}, <expression-or-{Domain: ...}>]`: a value
// letting when arr[1] parses as an expression, a domain letting otherwise.
func decodeLetting(val interface{}, symtab *ast.SymbolTable) error {
	arr, err := asArray(val)
	if err != nil || len(arr) != 2 {
		return cerr.NewParseError("Letting is not a 2-element array")
	}

	name, err := parseDeclName(arr[0])
	if err != nil {
		return cerr.NewParseError("Letting[0]: %s", err)
	}

	if expr, exprErr := parseExpression(arr[1], symtab); exprErr == nil {
		ptr := ast.NewDeclPtr(&ast.ValueLetting{Name: name, Expr: expr})
		if !symtab.Insert(ptr) {
			return cerr.NewParseError("%q is already declared", name.String())
		}

		return nil
	}

	domWrap, err := asObject(arr[1])
	if err != nil {
		return cerr.NewParseError("Letting[1] is neither an expression nor a domain: %s", err)
	}

	domRaw, ok := domWrap["Domain"]
	if !ok {
		return cerr.NewParseError("Letting[1] has no Domain field")
	}

	domObj, err := asObject(domRaw)
	if err != nil {
		return cerr.NewParseError("Letting[1].Domain is not an object: %s", err)
	}

	domName, domVal, err := singleKey(domObj)
	if err != nil {
		return cerr.NewParseError("Letting[1].Domain: %s", err)
	}

	dom, err := parseDomain(domName, domVal, symtab)
	if err != nil {
		return err
	}

	ptr := ast.NewDeclPtr(&ast.DomainLetting{Name: name, Dom: dom})
	if !symtab.Insert(ptr) {
		return cerr.NewParseError("%q is already declared", name.String())
	}

	return nil
}

func parseDeclName(val interface{}) (ast.Name, error) {
	obj, err := asObject(val)
	if err != nil {
		return ast.Name{}, err
	}

	s, err := asString(obj["Name"])
	if err != nil {
		return ast.Name{}, cerr.NewParseError("Name is not a string: %s", err)
	}

	return ast.UserName(s), nil
}
