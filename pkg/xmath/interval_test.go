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
package xmath_test

import (
	"testing"

	"github.com/conjure-cp/conjure-go/pkg/assert"
	"github.com/conjure-cp/conjure-go/pkg/xmath"
)

func Test_Interval_Add(t *testing.T) {
	p := xmath.NewInterval(1, 3)
	q := xmath.NewInterval(2, 3)
	r := p.Add(q)
	assert.True(t, r.Contains(3))
	assert.True(t, r.Contains(6))
	assert.False(t, r.Contains(7))
}

func Test_Interval_Mul_Signed(t *testing.T) {
	p := xmath.NewInterval(-2, 3)
	q := xmath.NewInterval(-1, 1)
	r := p.Mul(q)
	assert.True(t, r.Contains(-3))
	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(4))
}

func Test_Interval_BitWidth_Unsigned(t *testing.T) {
	p := xmath.NewInterval(0, 15)
	w, signed := p.BitWidth()
	assert.Equal(t, uint(4), w)
	assert.False(t, signed)
}

func Test_Interval_BitWidth_Signed(t *testing.T) {
	p := xmath.NewInterval(-8, 7)
	_, signed := p.BitWidth()
	assert.True(t, signed)
}

func Test_Interval_Union(t *testing.T) {
	p := xmath.NewInterval(1, 3)
	q := xmath.NewInterval(10, 12)
	r := p.Union(q)
	assert.True(t, r.Contains(5))
	assert.False(t, xmath.NewInterval(1, 3).Contains(5))
}
