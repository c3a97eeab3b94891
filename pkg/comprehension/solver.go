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

// Package comprehension implements quantifier (comprehension) expansion:
// unrolling a [Body | generators, guards] node inside its enclosing AC
// operator into one instantiation of Body per solution of the generator
// sub-model, found by an external CP sub-solver.
package comprehension

import "github.com/conjure-cp/conjure-go/pkg/ast"

// Solver is the external collaborator that enumerates solutions of a
// generator sub-model. It is invoked synchronously and blocks; cancellation
// is not supported, and a solver error aborts expansion with the error
// surfaced verbatim. No concrete implementation lives in this module — it
// is wired in by whatever CP engine the caller has chosen (pkg/solver).
type Solver interface {
	// Solve enumerates every solution of model's constraints restricted to
	// model's own declared decision variables. An empty, non-error result
	// means the generator region is unsatisfiable (zero unrolled terms).
	Solve(model *ast.Model) ([]Solution, error)
}

// Solution is one satisfying assignment, keyed by the DeclPtr.ID of each
// decision variable the sub-solver bound.
type Solution struct {
	values map[uint64]int64
}

// NewSolution wraps a completed value assignment as a Solution.
func NewSolution(values map[uint64]int64) Solution {
	return Solution{values: values}
}

// Value returns the value the solver assigned to ptr, if any.
func (s Solution) Value(ptr ast.DeclPtr) (int64, bool) {
	v, ok := s.values[ptr.ID()]
	return v, ok
}
