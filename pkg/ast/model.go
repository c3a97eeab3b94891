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

// Literal (signed DIMACS-style) form of one clause of the accumulated CNF.
// A positive entry is the variable's index; a negative entry its negation.
type Clause []int

// Model bundles a Root expression, the symbol table for its outermost scope,
// and the optional accumulators a SAT lowering or comprehension-aware search
// populates: a CNF clause list, a search-order hint (names to branch on
// first), and a dominance-relation expression for optimisation.
type Model struct {
	root    *Root
	symtab  TablePtr
	clauses []Clause

	searchOrder []Name
	dominance   Expression
}

// NewModel constructs a Model with an empty Root and the given outermost
// symbol table.
func NewModel(symtab *SymbolTable) *Model {
	return &Model{root: NewRoot(), symtab: NewTablePtr(symtab)}
}

// Root returns the model's top-level Root(...) expression. Replacing it
// (via SetRoot) must preserve the Root(_) invariant.
func (m *Model) Root() *Root { return m.root }

// SetRoot replaces the model's root expression; it panics (a Bug) if root is
// nil, enforcing the "root is always Root(_)" invariant.
func (m *Model) SetRoot(root *Root) {
	if root == nil {
		panic(cerr.NewBug("Model.SetRoot: nil root"))
	}

	m.root = root
}

// AddConstraint appends expr as a new top-level conjunct.
func (m *Model) AddConstraint(expr Expression) {
	m.root = m.root.WithChildren(append(m.root.Children(), expr)).(*Root)
}

// SymbolTable returns the handle to the model's outermost scope.
func (m *Model) SymbolTable() TablePtr { return m.symtab }

// Clauses returns the accumulated CNF clause list (for SAT lowering).
func (m *Model) Clauses() []Clause { return m.clauses }

// AddClause appends one CNF clause.
func (m *Model) AddClause(c Clause) { m.clauses = append(m.clauses, c) }

// SearchOrder returns the optional branch-on-first name hint.
func (m *Model) SearchOrder() []Name { return m.searchOrder }

// SetSearchOrder sets the branch-on-first name hint.
func (m *Model) SetSearchOrder(names []Name) { m.searchOrder = names }

// Dominance returns the optional dominance-relation expression used for
// optimisation, or nil if none was set.
func (m *Model) Dominance() Expression { return m.dominance }

// SetDominance sets the dominance-relation expression.
func (m *Model) SetDominance(expr Expression) { m.dominance = expr }
