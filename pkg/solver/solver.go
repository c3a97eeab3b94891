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

// Package solver defines the seams this module hands a fully-rewritten
// Model across to an actual constraint engine. Neither CPAdaptor nor
// SATAdaptor is implemented here: both are external collaborators, wired in
// by whatever concrete solver a caller has chosen (a Minion binary for CP,
// a DIMACS-speaking SAT engine such as github.com/irifrance/gini for SAT).
package solver

import "github.com/conjure-cp/conjure-go/pkg/ast"

// CPAdaptor accepts a model whose constraints have already been rewritten
// to the flat Minion-constraint catalogue (pkg/rules/cp) and hands it to a
// concrete CP solver. It also backs pkg/comprehension.Solver: a CPAdaptor
// can enumerate solutions of a generator sub-model the same way it can
// solve the top-level model, so an adapter implementation typically
// satisfies both interfaces from the same underlying solver handle.
type CPAdaptor interface {
	// Solve runs model's flat constraints through the CP engine and reports
	// whether it is satisfiable, along with one satisfying assignment if
	// so. Solve does not enumerate further solutions; callers needing every
	// solution use comprehension.Solver instead.
	Solve(model *ast.Model) (satisfiable bool, assignment map[string]int64, err error)
}

// SATAdaptor accepts a model whose constraints have been Tseytin-encoded
// into model.Clauses() (pkg/rules/sat) and hands the resulting CNF to a
// concrete SAT solver.
type SATAdaptor interface {
	// SolveCNF runs the given clause set through the SAT engine, reporting
	// satisfiability and, if satisfiable, the assignment as a map from
	// DIMACS variable number to its Boolean value.
	SolveCNF(clauses []ast.Clause) (satisfiable bool, assignment map[int]bool, err error)
}
