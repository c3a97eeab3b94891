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
package jsonir

import "github.com/conjure-cp/conjure-go/pkg/cerr"

// perr is a terser alias for cerr.NewParseError, used throughout this
// package's many small shape-mismatch checks.
func perr(format string, args ...any) error {
	return cerr.NewParseError(format, args...)
}

func asObject(v interface{}) (map[string]interface{}, error) {
	o, ok := v.(map[string]interface{})
	if !ok {
		return nil, cerr.NewParseError("expected a JSON object, got %T", v)
	}

	return o, nil
}

func asArray(v interface{}) ([]interface{}, error) {
	a, ok := v.([]interface{})
	if !ok {
		return nil, cerr.NewParseError("expected a JSON array, got %T", v)
	}

	return a, nil
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", cerr.NewParseError("expected a JSON string, got %T", v)
	}

	return s, nil
}

func asBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, cerr.NewParseError("expected a JSON bool, got %T", v)
	}

	return b, nil
}

// asInt64 accepts a JSON number (decoded by encoding/json as float64) and
// truncates it to an int64, erroring if it has a fractional part.
func asInt64(v interface{}) (int64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, cerr.NewParseError("expected a JSON number, got %T", v)
	}

	i := int64(f)
	if float64(i) != f {
		return 0, cerr.NewParseError("expected an integral JSON number, got %v", f)
	}

	return i, nil
}

// singleKey extracts the sole (key, value) pair of a single-field object,
// the shape the wire format uses for every tagged union (the Rust source's
// serde-derived enum encoding).
func singleKey(o map[string]interface{}) (string, interface{}, error) {
	if len(o) != 1 {
		return "", nil, cerr.NewParseError("expected a single-key object, got %d keys", len(o))
	}

	for k, v := range o {
		return k, v, nil
	}

	panic("unreachable")
}

// indexed resolves a JSON-pointer-like path of array/object lookups,
// returning an error the first time a step doesn't match.
func indexed(v interface{}, path ...interface{}) (interface{}, error) {
	cur := v

	for _, step := range path {
		switch s := step.(type) {
		case int:
			arr, err := asArray(cur)
			if err != nil {
				return nil, err
			}

			if s < 0 || s >= len(arr) {
				return nil, cerr.NewParseError("index %d out of range", s)
			}

			cur = arr[s]
		case string:
			obj, err := asObject(cur)
			if err != nil {
				return nil, err
			}

			next, ok := obj[s]
			if !ok {
				return nil, cerr.NewParseError("missing field %q", s)
			}

			cur = next
		default:
			panic("indexed: path step must be int or string")
		}
	}

	return cur, nil
}
