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

// parseDomain dispatches on one of the DomainInt/DomainBool/.../DomainRecord
// keys, exactly the set enumerated by spec.md §6.
func parseDomain(name string, value interface{}, symtab *ast.SymbolTable) (ast.Domain, error) {
	switch name {
	case "DomainInt":
		return parseIntDomain(value, symtab)
	case "DomainBool":
		return ast.Bool(), nil
	case "DomainReference":
		arr, err := asArray(value)
		if err != nil || len(arr) == 0 {
			return ast.Domain{}, perr("DomainReference is not a non-empty array")
		}

		s, err := indexed(arr[0], "Name")
		if err != nil {
			return ast.Domain{}, err
		}

		name, err := asString(s)
		if err != nil {
			return ast.Domain{}, err
		}

		return ast.Reference(ast.UserName(name)), nil
	case "DomainSet":
		arr, err := asArray(value)
		if err != nil || len(arr) < 3 {
			return ast.Domain{}, perr("DomainSet is not a 3+-element array")
		}

		elemName, elemVal, err := singleKeyOf(arr[2])
		if err != nil {
			return ast.Domain{}, err
		}

		elem, err := parseDomain(elemName, elemVal, symtab)
		if err != nil {
			return ast.Domain{}, err
		}

		return ast.Set(ast.SetAttrNone, 0, 0, elem), nil
	case "DomainMatrix":
		return parseMatrixDomain(value, symtab)
	case "DomainTuple":
		arr, err := asArray(value)
		if err != nil {
			return ast.Domain{}, perr("DomainTuple is not an array")
		}

		domains := make([]ast.Domain, len(arr))

		for i, item := range arr {
			fieldName, fieldVal, err := singleKeyOf(item)
			if err != nil {
				return ast.Domain{}, err
			}

			d, err := parseDomain(fieldName, fieldVal, symtab)
			if err != nil {
				return ast.Domain{}, err
			}

			domains[i] = d
		}

		return ast.Tuple(domains...), nil
	case "DomainRecord":
		return parseRecordDomain(value, symtab)
	default:
		return ast.Domain{}, perr("unknown domain kind %q", name)
	}
}

func parseMatrixDomain(value interface{}, symtab *ast.SymbolTable) (ast.Domain, error) {
	arr, err := asArray(value)
	if err != nil || len(arr) != 2 {
		return ast.Domain{}, perr("DomainMatrix is not a 2-element array")
	}

	idxName, idxVal, err := singleKeyOf(arr[0])
	if err != nil {
		return ast.Domain{}, err
	}

	idxDom, err := parseDomain(idxName, idxVal, symtab)
	if err != nil {
		return ast.Domain{}, err
	}

	valName, valVal, err := singleKeyOf(arr[1])
	if err != nil {
		return ast.Domain{}, err
	}

	valDom, err := parseDomain(valName, valVal, symtab)
	if err != nil {
		return ast.Domain{}, err
	}

	// Conjure stores an n-D matrix as a matrix of matrices; flatten it to a
	// single Matrix domain carrying every dimension's index domain.
	indexDomains := []ast.Domain{idxDom}
	for valDom.Kind() == ast.DomainKindMatrix {
		indexDomains = append(indexDomains, valDom.IndexDomains()...)
		valDom = valDom.Elem()
	}

	return ast.Matrix(valDom, indexDomains...), nil
}

func parseRecordDomain(value interface{}, symtab *ast.SymbolTable) (ast.Domain, error) {
	arr, err := asArray(value)
	if err != nil {
		return ast.Domain{}, perr("DomainRecord is not an array")
	}

	fields := make([]ast.RecordFieldDomain, len(arr))

	for i, item := range arr {
		entry, err := asArray(item)
		if err != nil || len(entry) != 2 {
			return ast.Domain{}, perr("DomainRecord[%d] is not a 2-element array", i)
		}

		fieldName, err := parseDeclName(entry[0])
		if err != nil {
			return ast.Domain{}, err
		}

		domName, domVal, err := singleKeyOf(entry[1])
		if err != nil {
			return ast.Domain{}, err
		}

		dom, err := parseDomain(domName, domVal, symtab)
		if err != nil {
			return ast.Domain{}, err
		}

		fields[i] = ast.RecordFieldDomain{Name: fieldName, Dom: dom}

		// The source parser also registers each field as a standalone
		// RecordField declaration, so a record-typed expression's `.field`
		// access can resolve it by name; mirrored here for the same reason.
		symtab.UpdateInsert(ast.NewDeclPtr(&ast.RecordField{Name: fieldName, Dom: dom}))
	}

	return ast.Record(fields...), nil
}

// parseIntDomain accepts either the source wire shape (a 2-element array
// whose second element is the range list) or a bare range list, since
// spec.md §6 describes only the latter.
func parseIntDomain(value interface{}, symtab *ast.SymbolTable) (ast.Domain, error) {
	ranges, err := rangeList(value)
	if err != nil {
		return ast.Domain{}, err
	}

	out := make([]ast.Range, len(ranges))

	for i, r := range ranges {
		rangeName, rangeVal, err := singleKeyOf(r)
		if err != nil {
			return ast.Domain{}, err
		}

		switch rangeName {
		case "RangeBounded":
			arr, err := asArray(rangeVal)
			if err != nil || len(arr) != 2 {
				return ast.Domain{}, perr("RangeBounded is not a 2-element array")
			}

			lo, err := parseIntDomainValue(arr[0], symtab)
			if err != nil {
				return ast.Domain{}, err
			}

			hi, err := parseIntDomainValue(arr[1], symtab)
			if err != nil {
				return ast.Domain{}, err
			}

			out[i] = ast.BoundedRange(lo, hi)
		case "RangeSingle":
			v, err := parseIntDomainValue(rangeVal, symtab)
			if err != nil {
				return ast.Domain{}, err
			}

			out[i] = ast.SingleRange(v)
		default:
			return ast.Domain{}, perr("unknown int-domain range kind %q", rangeName)
		}
	}

	return ast.Int(out...), nil
}

func rangeList(value interface{}) ([]interface{}, error) {
	arr, err := asArray(value)
	if err != nil {
		return nil, perr("DomainInt value is not an array")
	}

	if len(arr) == 2 {
		if inner, innerErr := asArray(arr[1]); innerErr == nil {
			return inner, nil
		}
	}

	return arr, nil
}

// parseIntDomainValue resolves a domain-range endpoint: a positive literal
// (Constant/ConstantInt/1 or ConstantInt/1), a negated literal
// (Op/MkOpNegate/<same>), or a reference to a previously-declared integer
// value letting, tried in that order.
func parseIntDomainValue(obj interface{}, symtab *ast.SymbolTable) (int64, error) {
	if v, err := tryPositiveIntConstant(obj); err == nil {
		return v, nil
	}

	if neg, err := indexed(obj, "Op", "MkOpNegate"); err == nil {
		if v, err := tryPositiveIntConstant(neg); err == nil {
			return -v, nil
		}
	}

	if nameRaw, err := indexed(obj, "Reference", 0, "Name"); err == nil {
		name, err := asString(nameRaw)
		if err != nil {
			return 0, err
		}

		ptr, ok := symtab.Lookup(ast.UserName(name))
		if !ok {
			return 0, perr("domain reference to undeclared %q", name)
		}

		var (
			value  int64
			valErr error
		)

		ptr.Read(func(d ast.Declaration) {
			vl, ok := d.(*ast.ValueLetting)
			if !ok {
				valErr = perr("%q is not a value letting", name)
				return
			}

			atom, ok := vl.Expr.(*ast.AtomExpr)
			if !ok || atom.Val.IsRef() || atom.Val.Lit().Kind() != ast.LitKindInt {
				valErr = perr("%q does not resolve to an integer literal", name)
				return
			}

			value = atom.Val.Lit().IntVal()
		})

		if valErr != nil {
			return 0, valErr
		}

		return value, nil
	}

	return 0, perr("could not parse a domain endpoint from %v", obj)
}

func tryPositiveIntConstant(obj interface{}) (int64, error) {
	if leaf, err := indexed(obj, "Constant", "ConstantInt", 1); err == nil {
		return asInt64(leaf)
	}

	if leaf, err := indexed(obj, "ConstantInt", 1); err == nil {
		return asInt64(leaf)
	}

	return 0, perr("not a positive int constant")
}

func singleKeyOf(v interface{}) (string, interface{}, error) {
	o, err := asObject(v)
	if err != nil {
		return "", nil, err
	}

	return singleKey(o)
}
