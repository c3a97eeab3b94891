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

// Package rewrite implements the solver-independent term-rewriting engine:
// a process-wide rule registry, rule-set resolution, a naive fixed-point
// driver and a dirty-flag-optimised ("morph") driver, the auxiliary
// variable introduction helper, and the partial evaluator.
//
// The registry and driver shapes are grounded on the teacher's
// pkg/mir/optimiser.go: a precanned list of named optimisation levels, each
// a set of named passes applied in sequence until the term stops changing
// (eliminateNormalisationInTerm's type-switch fixed-point loop).
package rewrite

import (
	"sort"

	"github.com/conjure-cp/conjure-go/pkg/ast"
)

// Reduction is what a rule's Transform returns on success: the replacement
// expression, any new top-level constraints to splice into the enclosing
// model, and, if the rule opened a new scope (e.g. for a comprehension's
// generator variables), the symbol table the driver must use for every rule
// application for the remainder of the current Run/RunMorph call. Most
// rules mutate the symbol table they are given in place (via Gensym/Insert)
// and leave this nil; it only needs setting when a rule hands back a
// genuinely different *ast.SymbolTable.
type Reduction struct {
	Expr           ast.Expression
	NewConstraints []ast.Expression
	SymbolTable    *ast.SymbolTable
}

// TransformFunc is a rule's core logic. It returns
// cerr.RuleNotApplicable (via rewrite.NotApplicable) to mean "try the next
// rule"; any other error aborts the rewrite and is surfaced verbatim.
type TransformFunc func(expr ast.Expression, symtab *ast.SymbolTable) (Reduction, error)

// Rule is a named, prioritised, rule-set-tagged rewrite rule.
type Rule struct {
	Name      string
	RuleSets  []string
	Priority  int
	Transform TransformFunc
}

// registry is the process-wide set of registered rules. Registration is
// purely additive and happens at package-init time, before any model is
// read, matching the teacher's precanned-optimisation-level pattern.
var registry []Rule

// Register adds r to the process-wide registry. It is called from the
// package-level init() functions of this package's partial evaluator and of
// pkg/rules/cp; pkg/rules/sat registers no rules.
func Register(r Rule) {
	registry = append(registry, r)
}

// Registered returns every rule registered so far (mainly for testing).
func Registered() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry)

	return out
}

// ResolveRuleSet collects every registered rule whose rule-set list
// intersects names, then sorts descending by priority, ties broken
// ascending by name.
func ResolveRuleSet(names []string) []Rule {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var out []Rule

	for _, r := range registry {
		if ruleSetIntersects(r.RuleSets, wanted) {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}

		return out[i].Name < out[j].Name
	})

	return out
}

func ruleSetIntersects(sets []string, wanted map[string]bool) bool {
	for _, s := range sets {
		if wanted[s] {
			return true
		}
	}

	return false
}
