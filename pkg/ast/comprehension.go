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

// Comprehension is `[Body | generators, guards]`: a generator (the
// quantified induction variables and their domains, plus Boolean guards)
// paired with a return expression. Expansion (pkg/comprehension) unrolls it
// inside the enclosing AC operator via a CP sub-solver call over the
// generator as a sub-model.
type Comprehension struct {
	meta Meta

	// Generators are the induction variables this comprehension quantifies
	// over, each ranging over its own declared domain.
	Generators []DeclPtr

	// Guards are additional Boolean conditions the generator sub-model must
	// satisfy, beyond each generator's own domain.
	Guards []Expression

	// Body is the return expression, evaluated once per generator solution.
	Body Expression
}

// NewComprehension constructs a Comprehension node.
func NewComprehension(generators []DeclPtr, guards []Expression, body Expression) *Comprehension {
	return &Comprehension{Generators: generators, Guards: guards, Body: body}
}

// Children implements Expression: the guards, then the body, in order.
func (e *Comprehension) Children() []Expression {
	return append(append([]Expression{}, e.Guards...), e.Body)
}

// WithChildren implements Expression.
func (e *Comprehension) WithChildren(children []Expression) Expression {
	n := len(children)
	return &Comprehension{
		meta:       e.meta,
		Generators: e.Generators,
		Guards:     children[:n-1],
		Body:       children[n-1],
	}
}

// IsSafe implements Expression.
func (e *Comprehension) IsSafe() bool {
	return allSafe(e.Guards) && e.Body.IsSafe()
}

// ReturnType implements Expression: a comprehension inherits the return
// type of its body.
func (e *Comprehension) ReturnType() DomainKind { return e.Body.ReturnType() }

// DomainOf implements Expression.
func (e *Comprehension) DomainOf() Domain { return e.Body.DomainOf() }

// Meta implements Expression.
func (e *Comprehension) Meta() *Meta { return &e.meta }
