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

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/conjure-cp/conjure-go/pkg/cerr"
	"github.com/conjure-cp/conjure-go/pkg/xmath"
)

// DomainKind discriminates the variants of Domain.
type DomainKind int

// The domain variants named by the data model.
const (
	DomainKindBool DomainKind = iota
	DomainKindInt
	DomainKindReference
	DomainKindSet
	DomainKindMatrix
	DomainKindTuple
	DomainKindRecord
	DomainKindEmpty
)

func (k DomainKind) String() string {
	switch k {
	case DomainKindBool:
		return "Bool"
	case DomainKindInt:
		return "Int"
	case DomainKindReference:
		return "Reference"
	case DomainKindSet:
		return "Set"
	case DomainKindMatrix:
		return "Matrix"
	case DomainKindTuple:
		return "Tuple"
	case DomainKindRecord:
		return "Record"
	case DomainKindEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// SetAttr constrains the cardinality of a Set domain.
type SetAttr int

// The five set-size attributes.
const (
	SetAttrNone SetAttr = iota
	SetAttrSize
	SetAttrMinSize
	SetAttrMaxSize
	SetAttrMinMaxSize
)

// Range is one contiguous run of an Int domain: Single(i) is Lo==Hi,
// Bounded(i,j) is a finite span, UnboundedLeft(j) has Lo==xmath.NegInfinity,
// UnboundedRight(i) has Hi==xmath.PosInfinity.
type Range struct {
	Lo xmath.InfInt
	Hi xmath.InfInt
}

// SingleRange constructs a one-point range.
func SingleRange(i int64) Range {
	v := xmath.FromInt64(i)
	return Range{v, v}
}

// BoundedRange constructs a finite [i,j] range; panics if i>j.
func BoundedRange(i, j int64) Range {
	if i > j {
		panic("invalid range")
	}

	return Range{xmath.FromInt64(i), xmath.FromInt64(j)}
}

// UnboundedLeftRange constructs a (-inf, j] range.
func UnboundedLeftRange(j int64) Range {
	return Range{xmath.NegInfinity, xmath.FromInt64(j)}
}

// UnboundedRightRange constructs a [i, +inf) range.
func UnboundedRightRange(i int64) Range {
	return Range{xmath.FromInt64(i), xmath.PosInfinity}
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.Lo, r.Hi)
}

// RecordFieldDomain names one field of a Record domain.
type RecordFieldDomain struct {
	Name Name
	Dom  Domain
}

// Domain is a sum type describing the shape and value-range of an
// expression. Zero value is DomainKindBool, the nullary Boolean domain.
type Domain struct {
	kind DomainKind

	ranges []Range // Int

	refName Name // Reference

	attr  SetAttr // Set
	attrN uint64
	attrM uint64

	elem *Domain // Set / Matrix element domain

	indexDomains []Domain // Matrix (one per dimension, flat list)

	tupleDomains []Domain // Tuple

	fields []RecordFieldDomain // Record

	emptyShape *Domain // Empty: the return_type this empty domain mimics
}

// Bool is the Boolean domain {false, true}.
func Bool() Domain { return Domain{kind: DomainKindBool} }

// Int constructs an integer domain from a list of ranges, normalising them
// (sorted ascending, no overlapping or adjacent ranges) on construction.
func Int(ranges ...Range) Domain {
	return Domain{kind: DomainKindInt, ranges: normaliseRanges(ranges)}
}

// Reference constructs an unresolved domain alias.
func Reference(name Name) Domain {
	return Domain{kind: DomainKindReference, refName: name}
}

// Set constructs a set domain with the given cardinality attribute over
// elem.
func Set(attr SetAttr, n, m uint64, elem Domain) Domain {
	return Domain{kind: DomainKindSet, attr: attr, attrN: n, attrM: m, elem: &elem}
}

// Matrix constructs a matrix domain; indexDomains must have at least one
// entry (n-D matrices are a flat list of index domains, not nested
// matrices).
func Matrix(elem Domain, indexDomains ...Domain) Domain {
	if len(indexDomains) == 0 {
		panic("matrix domain requires at least one index domain")
	}

	return Domain{kind: DomainKindMatrix, elem: &elem, indexDomains: indexDomains}
}

// Tuple constructs a tuple domain.
func Tuple(domains ...Domain) Domain {
	return Domain{kind: DomainKindTuple, tupleDomains: domains}
}

// Record constructs a record domain.
func Record(fields ...RecordFieldDomain) Domain {
	return Domain{kind: DomainKindRecord, fields: fields}
}

// Empty constructs the empty domain of the given shape (return type).
func Empty(shape Domain) Domain {
	return Domain{kind: DomainKindEmpty, emptyShape: &shape}
}

// Kind reports the domain's variant.
func (d Domain) Kind() DomainKind { return d.kind }

// Ranges returns the normalised range list of an Int domain.
func (d Domain) Ranges() []Range { return d.ranges }

// RefName returns the aliased name of a Reference domain.
func (d Domain) RefName() Name { return d.refName }

// SetAttr returns the cardinality attribute, min, and max of a Set domain.
func (d Domain) SetAttr() (attr SetAttr, n, m uint64) { return d.attr, d.attrN, d.attrM }

// Elem returns the element domain of a Set or Matrix domain.
func (d Domain) Elem() Domain { return *d.elem }

// IndexDomains returns the per-dimension index domains of a Matrix domain.
func (d Domain) IndexDomains() []Domain { return d.indexDomains }

// TupleDomains returns the component domains of a Tuple domain.
func (d Domain) TupleDomains() []Domain { return d.tupleDomains }

// Fields returns the field list of a Record domain.
func (d Domain) Fields() []RecordFieldDomain { return d.fields }

// EmptyShape returns the return-type shape of an Empty domain.
func (d Domain) EmptyShape() Domain { return *d.emptyShape }

// normaliseRanges sorts and squeezes a list of ranges into the unique
// minimal covering list: overlapping or adjacent (touching/off-by-one)
// ranges are merged.
func normaliseRanges(in []Range) []Range {
	if len(in) == 0 {
		return nil
	}

	sorted := make([]Range, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo.Cmp(sorted[j].Lo) < 0 })

	out := make([]Range, 0, len(sorted))
	cur := sorted[0]

	for _, r := range sorted[1:] {
		if adjacentOrOverlapping(cur, r) {
			cur = Range{cur.Lo.Min(r.Lo), cur.Hi.Max(r.Hi)}
		} else {
			out = append(out, cur)
			cur = r
		}
	}

	out = append(out, cur)

	return out
}

// adjacentOrOverlapping reports whether b starts at or before one past a's
// end, i.e. the two ranges should merge.
func adjacentOrOverlapping(a, b Range) bool {
	if a.Hi.Cmp(b.Lo) >= 0 {
		return true
	}

	if !a.Hi.IsFinite() {
		return false
	}

	next, ok := a.Hi.Int64Val()
	if !ok {
		return false
	}

	return b.Lo.Cmp(xmath.FromInt64(next + 1)) <= 0
}

// Contains reports whether lit is a member of d. It fails with
// ContainsReference if d transitively contains an unresolved reference.
func (d Domain) Contains(lit Literal, symtab *SymbolTable) (bool, error) {
	d, err := d.resolveShallow(symtab)
	if err != nil {
		return false, err
	}

	switch d.kind {
	case DomainKindBool:
		return lit.Kind() == LitKindBool, nil
	case DomainKindInt:
		if lit.Kind() != LitKindInt {
			return false, nil
		}

		v := xmath.FromInt64(lit.IntVal())
		for _, r := range d.ranges {
			if r.Lo.Cmp(v) <= 0 && r.Hi.Cmp(v) >= 0 {
				return true, nil
			}
		}

		return false, nil
	case DomainKindSet:
		if lit.Kind() != LitKindSet {
			return false, nil
		}

		elems := lit.SetElems()
		if !d.setAttrSatisfied(uint64(len(elems))) {
			return false, nil
		}

		for _, e := range elems {
			ok, err := d.Elem().Contains(e, symtab)
			if err != nil || !ok {
				return false, err
			}
		}

		return true, nil
	case DomainKindMatrix:
		if lit.Kind() != LitKindMatrix {
			return false, nil
		}

		for _, e := range lit.MatrixElems() {
			ok, err := d.Elem().Contains(e, symtab)
			if err != nil || !ok {
				return false, err
			}
		}

		return true, nil
	case DomainKindTuple:
		if lit.Kind() != LitKindTuple {
			return false, nil
		}

		comps := lit.TupleElems()
		if len(comps) != len(d.tupleDomains) {
			return false, nil
		}

		for i, c := range comps {
			ok, err := d.tupleDomains[i].Contains(c, symtab)
			if err != nil || !ok {
				return false, err
			}
		}

		return true, nil
	case DomainKindRecord:
		if lit.Kind() != LitKindRecord {
			return false, nil
		}

		vals := lit.RecordFields()
		for _, f := range d.fields {
			v, ok := vals[f.Name]
			if !ok {
				return false, nil
			}

			contained, err := f.Dom.Contains(v, symtab)
			if err != nil || !contained {
				return false, err
			}
		}

		return true, nil
	case DomainKindEmpty:
		return false, nil
	default:
		return false, cerr.NewBug("Contains: unhandled domain kind %s", d.kind)
	}
}

func (d Domain) setAttrSatisfied(n uint64) bool {
	switch d.attr {
	case SetAttrNone:
		return true
	case SetAttrSize:
		return n == d.attrN
	case SetAttrMinSize:
		return n >= d.attrN
	case SetAttrMaxSize:
		return n <= d.attrN
	case SetAttrMinMaxSize:
		return n >= d.attrN && n <= d.attrM
	default:
		return false
	}
}

// IsFinite reports whether d has finitely many members.
func (d Domain) IsFinite(symtab *SymbolTable) (bool, error) {
	d, err := d.resolveShallow(symtab)
	if err != nil {
		return false, err
	}

	switch d.kind {
	case DomainKindBool, DomainKindEmpty:
		return true, nil
	case DomainKindInt:
		for _, r := range d.ranges {
			if !r.Lo.IsFinite() || !r.Hi.IsFinite() {
				return false, nil
			}
		}

		return true, nil
	case DomainKindSet:
		return d.Elem().IsFinite(symtab)
	case DomainKindMatrix:
		for _, idx := range d.indexDomains {
			fin, err := idx.IsFinite(symtab)
			if err != nil || !fin {
				return fin, err
			}
		}

		return d.Elem().IsFinite(symtab)
	case DomainKindTuple:
		for _, c := range d.tupleDomains {
			fin, err := c.IsFinite(symtab)
			if err != nil || !fin {
				return fin, err
			}
		}

		return true, nil
	case DomainKindRecord:
		for _, f := range d.fields {
			fin, err := f.Dom.IsFinite(symtab)
			if err != nil || !fin {
				return fin, err
			}
		}

		return true, nil
	default:
		return false, cerr.NewBug("IsFinite: unhandled domain kind %s", d.kind)
	}
}

// Length returns d's cardinality.
func (d Domain) Length(symtab *SymbolTable) (uint64, error) {
	d, err := d.resolveShallow(symtab)
	if err != nil {
		return 0, err
	}

	switch d.kind {
	case DomainKindBool:
		return 2, nil
	case DomainKindEmpty:
		return 0, nil
	case DomainKindInt:
		var total uint64

		for _, r := range d.ranges {
			if !r.Lo.IsFinite() || !r.Hi.IsFinite() {
				return 0, cerr.NewDomainError(cerr.Unbounded, "length of an unbounded int domain")
			}

			lo, _ := r.Lo.Int64Val()
			hi, _ := r.Hi.Int64Val()
			span := uint64(hi-lo) + 1

			if total+span < total {
				return 0, cerr.NewDomainError(cerr.TooLarge, "domain cardinality overflows 64 bits")
			}

			total += span
		}

		return total, nil
	case DomainKindSet:
		n, err := d.Elem().Length(symtab)
		if err != nil {
			return 0, err
		}

		return setCardinality(d.attr, d.attrN, d.attrM, n)
	case DomainKindMatrix:
		elemLen, err := d.Elem().Length(symtab)
		if err != nil {
			return 0, err
		}

		total := uint64(1)

		for _, idx := range d.indexDomains {
			n, err := idx.Length(symtab)
			if err != nil {
				return 0, err
			}

			newTotal := total * n
			if n != 0 && newTotal/n != total {
				return 0, cerr.NewDomainError(cerr.TooLarge, "matrix domain cardinality overflows 64 bits")
			}

			total = newTotal
		}

		newTotal, err := powOverflow(elemLen, total)
		if err != nil {
			return 0, err
		}

		return newTotal, nil
	case DomainKindTuple:
		total := uint64(1)

		for _, c := range d.tupleDomains {
			n, err := c.Length(symtab)
			if err != nil {
				return 0, err
			}

			newTotal := total * n
			if n != 0 && newTotal/n != total {
				return 0, cerr.NewDomainError(cerr.TooLarge, "tuple domain cardinality overflows 64 bits")
			}

			total = newTotal
		}

		return total, nil
	case DomainKindRecord:
		total := uint64(1)

		for _, f := range d.fields {
			n, err := f.Dom.Length(symtab)
			if err != nil {
				return 0, err
			}

			newTotal := total * n
			if n != 0 && newTotal/n != total {
				return 0, cerr.NewDomainError(cerr.TooLarge, "record domain cardinality overflows 64 bits")
			}

			total = newTotal
		}

		return total, nil
	default:
		return 0, cerr.NewBug("Length: unhandled domain kind %s", d.kind)
	}
}

// maxEnumeratedValues caps the number of members Values will materialise,
// guarding against domains that are finite but impractically large.
const maxEnumeratedValues = 1 << 20

// Values enumerates every member of d. It fails with Unbounded if d (or any
// domain it is built from) has infinitely many members, with TooLarge if d
// is finite but exceeds maxEnumeratedValues, and with ContainsReference if
// resolution leaves an unresolved reference behind.
func (d Domain) Values(symtab *SymbolTable) ([]Literal, error) {
	d, err := d.resolveShallow(symtab)
	if err != nil {
		return nil, err
	}

	n, err := d.Length(symtab)
	if err != nil {
		return nil, err
	}

	if n > maxEnumeratedValues {
		return nil, cerr.NewDomainError(cerr.TooLarge, "domain has %d members, exceeding the enumeration limit", n)
	}

	switch d.kind {
	case DomainKindBool:
		return []Literal{BoolLit(false), BoolLit(true)}, nil
	case DomainKindEmpty:
		return nil, nil
	case DomainKindInt:
		out := make([]Literal, 0, n)

		for _, r := range d.ranges {
			lo, _ := r.Lo.Int64Val()
			hi, _ := r.Hi.Int64Val()

			for v := lo; v <= hi; v++ {
				out = append(out, IntLit(v))
			}
		}

		return out, nil
	case DomainKindSet:
		elemVals, err := d.Elem().Values(symtab)
		if err != nil {
			return nil, err
		}

		elemDomain := d.Elem()
		setDomain := Set(d.attr, d.attrN, d.attrM, elemDomain)

		var out []Literal

		for mask := uint64(0); mask < uint64(1)<<len(elemVals); mask++ {
			if !d.setAttrSatisfied(uint64(bits.OnesCount64(mask))) {
				continue
			}

			elems := make([]Literal, 0, bits.OnesCount64(mask))

			for i, v := range elemVals {
				if mask&(uint64(1)<<i) != 0 {
					elems = append(elems, v)
				}
			}

			out = append(out, SetLit(elems, setDomain))
		}

		return out, nil
	case DomainKindMatrix:
		elemVals, err := d.Elem().Values(symtab)
		if err != nil {
			return nil, err
		}

		points := uint64(1)

		for _, idx := range d.indexDomains {
			idxLen, err := idx.Length(symtab)
			if err != nil {
				return nil, err
			}

			points *= idxLen
		}

		return cartesianMatrices(elemVals, int(points), d), nil
	case DomainKindTuple:
		compVals := make([][]Literal, len(d.tupleDomains))

		for i, c := range d.tupleDomains {
			vs, err := c.Values(symtab)
			if err != nil {
				return nil, err
			}

			compVals[i] = vs
		}

		return cartesianTuples(compVals, d), nil
	case DomainKindRecord:
		fieldVals := make([][]Literal, len(d.fields))

		for i, f := range d.fields {
			vs, err := f.Dom.Values(symtab)
			if err != nil {
				return nil, err
			}

			fieldVals[i] = vs
		}

		return cartesianRecords(fieldVals, d), nil
	case DomainKindReference:
		return nil, cerr.NewDomainError(cerr.ContainsReference, "values: unresolved reference to %q", d.refName)
	default:
		return nil, cerr.NewBug("Values: unhandled domain kind %s", d.kind)
	}
}

// cartesianMatrices enumerates every length-points matrix built from elems,
// in mixed-radix counting order.
func cartesianMatrices(elems []Literal, points int, d Domain) []Literal {
	if points == 0 {
		return []Literal{MatrixLit(nil, d)}
	}

	if len(elems) == 0 {
		return nil
	}

	var out []Literal

	idx := make([]int, points)

	for {
		cur := make([]Literal, points)
		for i, e := range idx {
			cur[i] = elems[e]
		}

		out = append(out, MatrixLit(cur, d))

		pos := points - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(elems) {
				break
			}

			idx[pos] = 0
			pos--
		}

		if pos < 0 {
			break
		}
	}

	return out
}

// cartesianTuples enumerates the cartesian product of compVals, one slot
// per tuple component.
func cartesianTuples(compVals [][]Literal, d Domain) []Literal {
	if len(compVals) == 0 {
		return []Literal{TupleLit(nil, d)}
	}

	var out []Literal

	idx := make([]int, len(compVals))

	for {
		cur := make([]Literal, len(compVals))
		for i, e := range idx {
			cur[i] = compVals[i][e]
		}

		out = append(out, TupleLit(cur, d))

		pos := len(compVals) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(compVals[pos]) {
				break
			}

			idx[pos] = 0
			pos--
		}

		if pos < 0 {
			break
		}
	}

	return out
}

// cartesianRecords enumerates the cartesian product of fieldVals, one slot
// per record field, keyed by d.fields' names.
func cartesianRecords(fieldVals [][]Literal, d Domain) []Literal {
	if len(fieldVals) == 0 {
		return []Literal{RecordLit(map[Name]Literal{}, d)}
	}

	var out []Literal

	idx := make([]int, len(fieldVals))

	for {
		cur := make(map[Name]Literal, len(fieldVals))
		for i, e := range idx {
			cur[d.fields[i].Name] = fieldVals[i][e]
		}

		out = append(out, RecordLit(cur, d))

		pos := len(fieldVals) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(fieldVals[pos]) {
				break
			}

			idx[pos] = 0
			pos--
		}

		if pos < 0 {
			break
		}
	}

	return out
}

func powOverflow(base, exp uint64) (uint64, error) {
	result := uint64(1)

	for i := uint64(0); i < exp; i++ {
		newResult := result * base
		if base != 0 && newResult/base != result {
			return 0, cerr.NewDomainError(cerr.TooLarge, "domain cardinality overflows 64 bits")
		}

		result = newResult
	}

	return result, nil
}

// setCardinality computes the number of subsets of an n-element universe
// satisfying attr, as the appropriate binomial sum.
func setCardinality(attr SetAttr, n, m, universe uint64) (uint64, error) {
	switch attr {
	case SetAttrNone:
		return powOverflow(2, universe)
	case SetAttrSize:
		return binomial(universe, n)
	case SetAttrMinSize:
		return binomialSumRange(universe, n, universe)
	case SetAttrMaxSize:
		return binomialSumRange(universe, 0, n)
	case SetAttrMinMaxSize:
		return binomialSumRange(universe, n, m)
	default:
		return 0, cerr.NewBug("setCardinality: unhandled attr %d", attr)
	}
}

func binomialSumRange(universe, lo, hi uint64) (uint64, error) {
	var total uint64

	for k := lo; k <= hi && k <= universe; k++ {
		c, err := binomial(universe, k)
		if err != nil {
			return 0, err
		}

		newTotal := total + c
		if newTotal < total {
			return 0, cerr.NewDomainError(cerr.TooLarge, "set domain cardinality overflows 64 bits")
		}

		total = newTotal
	}

	return total, nil
}

func binomial(n, k uint64) (uint64, error) {
	if k > n {
		return 0, nil
	}

	if k > n-k {
		k = n - k
	}

	result := uint64(1)

	for i := uint64(0); i < k; i++ {
		newResult := result * (n - i)
		if newResult/(n-i) != result {
			return 0, cerr.NewDomainError(cerr.TooLarge, "binomial coefficient overflows 64 bits")
		}

		result = newResult / (i + 1)
	}

	return result, nil
}

// Union returns the smallest normalised domain enclosing both operands.
func (d Domain) Union(o Domain) (Domain, error) {
	if d.kind != o.kind {
		return Domain{}, cerr.NewDomainError(cerr.WrongType, "cannot union %s with %s", d.kind, o.kind)
	}

	switch d.kind {
	case DomainKindBool:
		return Bool(), nil
	case DomainKindInt:
		return Int(append(append([]Range{}, d.ranges...), o.ranges...)...), nil
	case DomainKindSet:
		elem, err := d.Elem().Union(o.Elem())
		if err != nil {
			return Domain{}, err
		}

		return Set(SetAttrNone, 0, 0, elem), nil
	case DomainKindMatrix:
		if len(d.indexDomains) != len(o.indexDomains) {
			return Domain{}, cerr.NewDomainError(cerr.WrongType, "matrix domains have different index shapes")
		}

		elem, err := d.Elem().Union(o.Elem())
		if err != nil {
			return Domain{}, err
		}

		return Matrix(elem, d.indexDomains...), nil
	case DomainKindEmpty:
		return o, nil
	default:
		return Domain{}, cerr.NewDomainError(cerr.WrongType, "union is not defined on %s domains", d.kind)
	}
}

// Intersect returns the largest normalised domain contained in both operands.
func (d Domain) Intersect(o Domain) (Domain, error) {
	if d.kind != o.kind {
		return Domain{}, cerr.NewDomainError(cerr.WrongType, "cannot intersect %s with %s", d.kind, o.kind)
	}

	switch d.kind {
	case DomainKindBool:
		return Bool(), nil
	case DomainKindInt:
		var out []Range

		for _, a := range d.ranges {
			for _, b := range o.ranges {
				lo := a.Lo.Max(b.Lo)
				hi := a.Hi.Min(b.Hi)

				if lo.Cmp(hi) <= 0 {
					out = append(out, Range{lo, hi})
				}
			}
		}

		return Int(out...), nil
	case DomainKindEmpty:
		return d, nil
	default:
		return Domain{}, cerr.NewDomainError(cerr.WrongType, "intersect is not defined on %s domains", d.kind)
	}
}

// FromLiteralVec computes the smallest ground domain containing every
// literal in vs.
func FromLiteralVec(vs []Literal) (Domain, error) {
	if len(vs) == 0 {
		return Empty(Bool()), nil
	}

	switch vs[0].Kind() {
	case LitKindBool:
		return Bool(), nil
	case LitKindInt:
		ranges := make([]Range, len(vs))

		for i, v := range vs {
			if v.Kind() != LitKindInt {
				return Domain{}, cerr.NewDomainError(cerr.WrongType, "mixed literal types in from_literal_vec")
			}

			ranges[i] = SingleRange(v.IntVal())
		}

		return Int(ranges...), nil
	case LitKindMatrix:
		first := vs[0].MatrixElems()
		elemDom, err := FromLiteralVec(first)
		if err != nil {
			return Domain{}, err
		}

		for _, v := range vs[1:] {
			if v.Kind() != LitKindMatrix {
				return Domain{}, cerr.NewDomainError(cerr.WrongType, "mixed literal types in from_literal_vec")
			}

			elems := v.MatrixElems()
			if len(elems) != len(first) {
				return Domain{}, cerr.NewDomainError(cerr.WrongType, "matrix literals of differing index shape")
			}

			d2, err := FromLiteralVec(elems)
			if err != nil {
				return Domain{}, err
			}

			elemDom, err = elemDom.Union(d2)
			if err != nil {
				return Domain{}, err
			}
		}

		return Matrix(elemDom, Int(BoundedRange(0, int64(len(first)-1)))), nil
	default:
		return Domain{}, cerr.NewDomainError(cerr.WrongType, "from_literal_vec: unsupported literal kind")
	}
}

// resolveShallow substitutes a single Reference layer by looking it up in
// symtab; it fails with ContainsReference if symtab is nil or the name is
// absent.
func (d Domain) resolveShallow(symtab *SymbolTable) (Domain, error) {
	if d.kind != DomainKindReference {
		return d, nil
	}

	if symtab == nil {
		return Domain{}, cerr.NewDomainError(cerr.ContainsReference, "unresolved domain reference %q (no symbol table)", d.refName)
	}

	ptr, ok := symtab.Lookup(d.refName)
	if !ok {
		return Domain{}, cerr.NewDomainError(cerr.ContainsReference, "unresolved domain reference %q", d.refName)
	}

	var (
		dom Domain
	)

	ptr.Read(func(decl Declaration) {
		dom, ok = DeclDomain(decl)
	})

	if !ok {
		return Domain{}, cerr.NewDomainError(cerr.WrongType, "%q does not name a domain", d.refName)
	}

	return dom.resolveShallow(symtab)
}

// Resolve substitutes every domain reference transitively reachable from d
// by looking it up in symtab.
func (d Domain) Resolve(symtab *SymbolTable) Domain {
	d, err := d.resolveShallow(symtab)
	if err != nil {
		panic(err)
	}

	switch d.kind {
	case DomainKindSet:
		elem := d.Elem().Resolve(symtab)
		return Set(d.attr, d.attrN, d.attrM, elem)
	case DomainKindMatrix:
		elem := d.Elem().Resolve(symtab)
		idx := make([]Domain, len(d.indexDomains))

		for i, x := range d.indexDomains {
			idx[i] = x.Resolve(symtab)
		}

		return Matrix(elem, idx...)
	case DomainKindTuple:
		out := make([]Domain, len(d.tupleDomains))
		for i, x := range d.tupleDomains {
			out[i] = x.Resolve(symtab)
		}

		return Tuple(out...)
	case DomainKindRecord:
		out := make([]RecordFieldDomain, len(d.fields))
		for i, f := range d.fields {
			out[i] = RecordFieldDomain{Name: f.Name, Dom: f.Dom.Resolve(symtab)}
		}

		return Record(out...)
	default:
		return d
	}
}

// IntervalOf collapses an Int domain's range list to the single smallest
// enclosing interval, used to lift arithmetic operators to domain_of
// derivations. Non-Int domains collapse to the unbounded interval.
func IntervalOf(d Domain) xmath.Interval {
	if d.kind != DomainKindInt || len(d.ranges) == 0 {
		return xmath.Infinite
	}

	lo, hi := d.ranges[0].Lo, d.ranges[0].Hi

	for _, r := range d.ranges[1:] {
		lo = lo.Min(r.Lo)
		hi = hi.Max(r.Hi)
	}

	return xmath.NewIntervalFromInfInt(lo, hi)
}

// DomainFromInterval builds the (single-range) Int domain enclosing iv.
func DomainFromInterval(iv xmath.Interval) Domain {
	return Domain{kind: DomainKindInt, ranges: []Range{{iv.Min(), iv.Max()}}}
}

func (d Domain) String() string {
	switch d.kind {
	case DomainKindBool:
		return "bool"
	case DomainKindInt:
		parts := make([]string, len(d.ranges))
		for i, r := range d.ranges {
			parts[i] = r.String()
		}

		return fmt.Sprintf("int(%v)", parts)
	case DomainKindReference:
		return d.refName.String()
	case DomainKindEmpty:
		return "empty"
	default:
		return d.kind.String()
	}
}
