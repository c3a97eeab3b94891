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
package rewrite

import (
	"github.com/conjure-cp/conjure-go/pkg/ast"
	"github.com/conjure-cp/conjure-go/pkg/cerr"
)

// NotApplicable wraps cerr.RuleNotApplicable for rule authors, signalling
// "try the next rule" without aborting the rewrite.
func NotApplicable(ruleName string) error {
	return &cerr.RuleNotApplicable{Rule: ruleName}
}

// Run drives model to a fixed point under rules using the naive algorithm:
// each full pass walks the tree bottom-up, applying at each node the
// highest-priority applicable rule; top-level constraints a rule
// introduces are appended after the pass completes, and the whole process
// repeats until a pass performs no rewrite. This applies every rewrite
// found during a pass rather than restarting the walk after the very first
// one — an engineering simplification of the one-rewrite-then-restart
// pseudocode that reaches the same fixed point, since a subsequent pass
// with no further rewrites is exactly the naive driver's stopping
// condition.
func Run(model *ast.Model, symtab *ast.SymbolTable, rules []Rule) error {
	for {
		var (
			newConstraints []ast.Expression
			firstErr       error
			changed        bool
		)

		newRoot := ast.Transform(model.Root(), func(e ast.Expression) ast.Expression {
			if firstErr != nil {
				return e
			}

			red, applied, err := tryRules(e, symtab, rules)
			if err != nil {
				firstErr = err
				return e
			}

			if !applied {
				return e
			}

			if red.SymbolTable != nil {
				symtab = red.SymbolTable
			}

			changed = true
			newConstraints = append(newConstraints, red.NewConstraints...)

			return red.Expr
		})

		if firstErr != nil {
			return firstErr
		}

		model.SetRoot(newRoot.(*ast.Root))

		for _, c := range newConstraints {
			model.AddConstraint(c)
		}

		if !changed {
			return nil
		}
	}
}

// RunMorph drives model to a fixed point using the clean-flag-optimised
// driver: a subtree whose root reports Meta().Clean() is skipped entirely.
// WithChildren carries the node's own Meta over to the rebuilt node, and
// the driver only descends into (and so only rebuilds) nodes that are not
// clean, so a rebuilt node starts out not clean; a node is marked clean only
// once neither it nor any of its children changed on the current pass. This
// must be observationally equivalent to Run modulo rule-priority ties.
func RunMorph(model *ast.Model, symtab *ast.SymbolTable, rules []Rule) error {
	for {
		var (
			newConstraints []ast.Expression
			firstErr       error
		)

		newRoot, changed := transformDirty(model.Root(), &symtab, rules, &newConstraints, &firstErr)

		if firstErr != nil {
			return firstErr
		}

		model.SetRoot(newRoot.(*ast.Root))

		for _, c := range newConstraints {
			model.AddConstraint(c)
		}

		if !changed {
			return nil
		}
	}
}

func transformDirty(
	e ast.Expression,
	symtab **ast.SymbolTable,
	rules []Rule,
	newConstraints *[]ast.Expression,
	firstErr *error,
) (ast.Expression, bool) {
	if *firstErr != nil {
		return e, false
	}

	if e.Meta().Clean() {
		return e, false
	}

	children := e.Children()
	anyChildChanged := false

	if len(children) > 0 {
		newChildren := make([]ast.Expression, len(children))

		for i, c := range children {
			nc, changed := transformDirty(c, symtab, rules, newConstraints, firstErr)
			newChildren[i] = nc

			if changed {
				anyChildChanged = true
			}
		}

		if *firstErr != nil {
			return e, false
		}

		if anyChildChanged {
			e = e.WithChildren(newChildren)
		}
	}

	red, applied, err := tryRules(e, *symtab, rules)
	if err != nil {
		*firstErr = err
		return e, false
	}

	if applied {
		if red.SymbolTable != nil {
			*symtab = red.SymbolTable
		}

		*newConstraints = append(*newConstraints, red.NewConstraints...)
		return red.Expr, true
	}

	if !anyChildChanged {
		e.Meta().SetClean(true)
	}

	return e, anyChildChanged
}

// tryRules runs rules in order against e, returning the first applicable
// reduction.
func tryRules(e ast.Expression, symtab *ast.SymbolTable, rules []Rule) (Reduction, bool, error) {
	for _, r := range rules {
		red, err := r.Transform(e, symtab)
		if err == nil {
			return red, true, nil
		}

		if !cerr.IsRuleNotApplicable(err) {
			return Reduction{}, false, err
		}
	}

	return Reduction{}, false, nil
}

// ToAuxVar flattens a non-atomic argument: it gensyms a fresh auxiliary
// decision variable whose domain is expr.DomainOf(), inserts it into
// symtab, and returns both an atom referencing it and the defining
// top-level constraint `aux = expr` (an ast.AuxDeclaration) the caller must
// splice into the enclosing model.
func ToAuxVar(expr ast.Expression, symtab *ast.SymbolTable) (ast.Atom, ast.Expression) {
	ptr := symtab.Gensym(expr.DomainOf())
	atom := ast.AtomRef(ptr)
	defining := ast.NewAuxDeclaration(ptr, expr)

	return atom, defining
}
