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

// Package assert provides tiny testing.T-based assertion helpers, used
// throughout this module's tests in place of a third-party assertion
// library.
package assert

import (
	"reflect"
	"testing"
)

// Equal errors if actual is not equal to expected.
func Equal(t *testing.T, expected, actual any, msg ...any) {
	t.Helper()

	if reflect.DeepEqual(expected, actual) {
		return
	}

	t.Errorf("expected: %v, actual: %v", expected, actual)

	if len(msg) != 0 {
		t.Errorf(msg[0].(string), msg[1:]...)
	}

	t.FailNow()
}

// True errors unless cond holds.
func True(t *testing.T, cond bool, msg ...any) {
	t.Helper()

	if cond {
		return
	}

	if len(msg) != 0 {
		t.Errorf(msg[0].(string), msg[1:]...)
	} else {
		t.Error("expected true, got false")
	}

	t.FailNow()
}

// False errors if cond holds.
func False(t *testing.T, cond bool, msg ...any) {
	t.Helper()
	True(t, !cond, msg...)
}

// NoError errors if err is non-nil.
func NoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Errorf("unexpected error: %v", err)
		t.FailNow()
	}
}

// Error errors unless err is non-nil.
func Error(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		t.Error("expected an error, got nil")
		t.FailNow()
	}
}
