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

// Package ast implements the three tightly coupled subsystems named "THE
// CORE" by the specification: the expression algebra and symbol table
// (identity pointers, domains, literals, expressions, declarations), the
// Model which bundles them together, and the traversal primitives the
// rewrite engine (pkg/rewrite) and rule catalogues (pkg/rules/...) build on.
//
// The package is grounded on the teacher's pkg/corset sub-compiler: a
// concrete-struct-per-variant AST with hand-written children/substitute
// dispatch (pkg/corset/expression.go's Substitute/SubstituteAll), and a
// parent-linked scope chain with refuse-to-overwrite insertion
// (pkg/corset/scope.go, pkg/corset/environment.go).
package ast

import "fmt"

// Name is a symbol identifier: either a user-supplied string, or a
// machine-generated integer allocated by SymbolTable.Gensym.
type Name struct {
	// machine is true for an auxiliary, compiler-introduced name.
	machine bool
	user    string
	index   uint64
}

// UserName constructs a user-supplied Name.
func UserName(s string) Name {
	return Name{machine: false, user: s}
}

// MachineName constructs a machine-generated Name with the given index.
func MachineName(index uint64) Name {
	return Name{machine: true, index: index}
}

// IsMachine reports whether this is a machine-generated name.
func (n Name) IsMachine() bool {
	return n.machine
}

// String renders the name the way it would appear in diagnostics: plain
// user names as-is, machine names as "__aux_<n>".
func (n Name) String() string {
	if n.machine {
		return fmt.Sprintf("__aux_%d", n.index)
	}

	return n.user
}

// Equal reports whether two names have the same variant and contents.
func (n Name) Equal(o Name) bool {
	return n == o
}
