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

import "github.com/conjure-cp/conjure-go/pkg/cerr"

// SymbolTable is an ordered map from Name to DeclPtr, a counter for the next
// auxiliary machine name, and an optional parent link to an enclosing scope.
// Lookups may be local-only (this scope) or walked (this scope, then
// parents). Like DeclPtr, a SymbolTable is normally shared through a
// TablePtr handle with its own stable ID.
type SymbolTable struct {
	order  []Name
	byName map[Name]DeclPtr
	parent *SymbolTable

	nextMachineName uint64
}

// NewSymbolTable constructs an empty top-level symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[Name]DeclPtr)}
}

// NewChildSymbolTable constructs an empty symbol table scoped under parent.
func NewChildSymbolTable(parent *SymbolTable) *SymbolTable {
	return &SymbolTable{byName: make(map[Name]DeclPtr), parent: parent}
}

// LookupLocal looks up name in this scope only.
func (t *SymbolTable) LookupLocal(name Name) (DeclPtr, bool) {
	p, ok := t.byName[name]
	return p, ok
}

// Lookup looks up name in this scope, then walks enclosing scopes.
func (t *SymbolTable) Lookup(name Name) (DeclPtr, bool) {
	for s := t; s != nil; s = s.parent {
		if p, ok := s.byName[name]; ok {
			return p, true
		}
	}

	return DeclPtr{}, false
}

// Insert adds decl under its own name in local scope. It refuses to
// overwrite an existing local binding, returning false in that case; use
// UpdateInsert to force an overwrite.
func (t *SymbolTable) Insert(decl DeclPtr) bool {
	name := With(decl, Declaration.DeclName)
	if _, exists := t.byName[name]; exists {
		return false
	}

	t.byName[name] = decl
	t.order = append(t.order, name)

	return true
}

// UpdateInsert adds decl under its own name, overwriting any existing local
// binding of the same name.
func (t *SymbolTable) UpdateInsert(decl DeclPtr) {
	name := With(decl, Declaration.DeclName)
	if _, exists := t.byName[name]; !exists {
		t.order = append(t.order, name)
	}

	t.byName[name] = decl
}

// Gensym creates a fresh decision variable with a machine-generated name,
// inserts it into this scope, and returns the new handle.
func (t *SymbolTable) Gensym(dom Domain) DeclPtr {
	for {
		name := MachineName(t.nextMachineName)
		t.nextMachineName++

		if _, exists := t.byName[name]; exists {
			continue
		}

		ptr := NewDeclPtr(NewDecisionVariable(name, dom))
		t.byName[name] = ptr
		t.order = append(t.order, name)

		return ptr
	}
}

// ReturnType returns the structural type of name's declaration, resolving
// ValueLetting to its expression's return type.
func (t *SymbolTable) ReturnType(name Name) (DomainKind, error) {
	ptr, ok := t.Lookup(name)
	if !ok {
		return 0, cerr.NewModelInvalid("undeclared name %q", name)
	}

	return With(ptr, func(d Declaration) DomainKind {
		if vl, ok := d.(*ValueLetting); ok {
			return vl.Expr.ReturnType()
		}

		dom, _ := DeclDomain(d)
		return dom.Kind()
	}), nil
}

// Domain returns the unresolved domain of name's declaration.
func (t *SymbolTable) Domain(name Name) (Domain, error) {
	ptr, ok := t.Lookup(name)
	if !ok {
		return Domain{}, cerr.NewModelInvalid("undeclared name %q", name)
	}

	var (
		dom Domain
	)

	ptr.Read(func(decl Declaration) {
		dom, ok = DeclDomain(decl)
	})

	if !ok {
		return Domain{}, cerr.NewModelInvalid("%q does not name a domain-bearing declaration", name)
	}

	return dom, nil
}

// ResolveDomain returns name's domain with every nested reference resolved.
func (t *SymbolTable) ResolveDomain(name Name) (Domain, error) {
	dom, err := t.Domain(name)
	if err != nil {
		return Domain{}, err
	}

	return dom.Resolve(t), nil
}

// GetOrAddRepresentation materialises a variable representation (e.g. a
// SAT bit-vector encoding) on first request, caching it on the
// decision-variable's declaration for subsequent lookups. build is called at
// most once per (name, kind) pair.
func (t *SymbolTable) GetOrAddRepresentation(name Name, kind string, build func() any) (any, error) {
	ptr, ok := t.Lookup(name)
	if !ok {
		return nil, cerr.NewModelInvalid("undeclared name %q", name)
	}

	var (
		result  any
		declErr error
	)

	ptr.Write(func(d Declaration) Declaration {
		rep, ok := d.(Representable)
		if !ok {
			declErr = cerr.NewModelInvalid("%q cannot carry a representation", name)
			return d
		}

		if existing, ok := rep.representation(kind); ok {
			result = existing
			return d
		}

		result = build()
		rep.setRepresentation(kind, result)

		return d
	})

	return result, declErr
}

// Extend merges other into t, advancing t.nextMachineName past any
// machine-named declaration carried over so that future Gensym calls cannot
// collide with merged-in auxiliaries.
func (t *SymbolTable) Extend(other *SymbolTable) {
	for _, name := range other.order {
		ptr := other.byName[name]
		t.UpdateInsert(ptr)

		if name.IsMachine() && name.index >= t.nextMachineName {
			t.nextMachineName = name.index + 1
		}
	}

	if other.nextMachineName > t.nextMachineName {
		t.nextMachineName = other.nextMachineName
	}
}

// Names returns every locally-declared name, in insertion order.
func (t *SymbolTable) Names() []Name {
	out := make([]Name, len(t.order))
	copy(out, t.order)

	return out
}

// Parent returns the enclosing scope, or nil for a top-level table.
func (t *SymbolTable) Parent() *SymbolTable { return t.parent }
