// Copyright (C) 2024 Florian Wilhelm
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package column

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dchest/siphash"
)

// Column is the contract the grouping/aggregation core needs from
// columnar storage: length, nullability, chunk-free random access
// (Take), key equality (§3 of the spec this package backs), and a
// seeded row hash used for hash-based group discovery.
//
// Concrete dtype access (the typed fast paths the aggregation kernels
// need) is exposed through the narrower *At interfaces below, which a
// concrete Column implementation satisfies for its own dtype only.
type Column interface {
	Name() string
	Dtype() Dtype
	Len() int
	NullCount() int
	Valid(row int) bool

	// Take returns a new Column holding the values at the given row
	// indices, in order. This is the "take_unchecked" operator of
	// the spec: out-of-range indices panic rather than error, since
	// callers (GroupIndex members) are expected to always be
	// in-bounds by construction (invariant G2).
	Take(indices []uint32) Column

	// WithName returns a shallow copy of the column renamed to name.
	WithName(name string) Column

	// EqualRows reports whether rows i and j hold the same key value
	// under the equality rules of §3 (bitwise for integral/bool,
	// raw-bit-pattern for float per invariant F1, byte-wise for
	// string, and nullable-equal: null == null).
	EqualRows(i, j int) bool

	// HashRow mixes the value at row into the running hash (k0, k1),
	// the way repeated calls to siphash.Hash128 chain across the
	// columns of a multi-key row (see internal/rowhash).
	HashRow(row int, k0, k1 uint64) (lo, hi uint64)
}

var nullMarker = []byte{0x00}

func hashPayload(k0, k1 uint64, valid bool, payload []byte) (uint64, uint64) {
	if !valid {
		return siphash.Hash128(k0, k1, nullMarker)
	}
	return siphash.Hash128(k0, k1, payload)
}

// Int64At is implemented by integer-backed columns (including
// date32/date64 and categorical codes) that can expose a widened
// int64 view for reduction kernels.
type Int64At interface {
	Int64At(row int) int64
}

// Float64At is implemented by float-backed columns.
type Float64At interface {
	Float64At(row int) float64
}

// StringAt is implemented by string-backed columns.
type StringAt interface {
	StringAt(row int) string
}

// BoolAt is implemented by bool-backed columns.
type BoolAt interface {
	BoolAt(row int) bool
}

// Integer is the set of underlying widths IntColumn may be
// instantiated over.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func intBits[T Integer](v T) uint64 {
	switch x := any(v).(type) {
	case int8:
		return uint64(uint8(x))
	case int16:
		return uint64(uint16(x))
	case int32:
		return uint64(uint32(x))
	case int64:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	default:
		panic(fmt.Sprintf("column: unreachable integer kind %T", v))
	}
}

func intToInt64[T Integer](v T) int64 {
	switch x := any(v).(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	default:
		panic(fmt.Sprintf("column: unreachable integer kind %T", v))
	}
}

// IntColumn is a generic column over one of the integer widths.
// Date32/Date64/Categorical reuse this same representation tagged
// with the appropriate Dtype (invariant K1 for categorical: grouping
// operates on the u32 code column).
type IntColumn[T Integer] struct {
	name   string
	dtype  Dtype
	values []T
	valid  Validity
}

// NewIntColumn builds an IntColumn with the given dtype tag. valid
// may be nil to mean "no nulls".
func NewIntColumn[T Integer](name string, dtype Dtype, values []T, valid Validity) *IntColumn[T] {
	return &IntColumn[T]{name: name, dtype: dtype, values: values, valid: valid}
}

func (c *IntColumn[T]) Name() string       { return c.name }
func (c *IntColumn[T]) Dtype() Dtype       { return c.dtype }
func (c *IntColumn[T]) Len() int           { return len(c.values) }
func (c *IntColumn[T]) NullCount() int     { return c.valid.NullCount(len(c.values)) }
func (c *IntColumn[T]) Valid(row int) bool { return c.valid.Get(row) }
func (c *IntColumn[T]) Values() []T        { return c.values }

func (c *IntColumn[T]) Int64At(row int) int64 { return intToInt64(c.values[row]) }

func (c *IntColumn[T]) WithName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

func (c *IntColumn[T]) Take(indices []uint32) Column {
	out := make([]T, len(indices))
	var outValid Validity
	if c.valid != nil {
		outValid = NewValidity(len(indices))
	}
	for i, idx := range indices {
		out[i] = c.values[idx]
		if c.valid != nil {
			outValid.Set(i, c.valid.Get(int(idx)))
		}
	}
	return &IntColumn[T]{name: c.name, dtype: c.dtype, values: out, valid: outValid}
}

func (c *IntColumn[T]) EqualRows(i, j int) bool {
	vi, vj := c.Valid(i), c.Valid(j)
	if vi != vj {
		return false
	}
	if !vi {
		return true
	}
	return c.values[i] == c.values[j]
}

func (c *IntColumn[T]) HashRow(row int, k0, k1 uint64) (uint64, uint64) {
	if !c.Valid(row) {
		return hashPayload(k0, k1, false, nil)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], intBits(c.values[row]))
	return hashPayload(k0, k1, true, buf[:])
}

// Float32Column and Float64Column are kept non-generic (rather than
// folded into one generic floatKind type) so the raw bit width used
// for F1 key equality is exact: widening float32 to float64 before
// hashing would change its bit pattern.

// Float32Column holds float32 values; key equality is over the raw
// 32-bit pattern (invariant F1).
type Float32Column struct {
	name   string
	values []float32
	valid  Validity
}

func NewFloat32Column(name string, values []float32, valid Validity) *Float32Column {
	return &Float32Column{name: name, values: values, valid: valid}
}

func (c *Float32Column) Name() string          { return c.name }
func (c *Float32Column) Dtype() Dtype          { return DtypeFloat32 }
func (c *Float32Column) Len() int              { return len(c.values) }
func (c *Float32Column) NullCount() int        { return c.valid.NullCount(len(c.values)) }
func (c *Float32Column) Valid(row int) bool    { return c.valid.Get(row) }
func (c *Float32Column) Values() []float32     { return c.values }
func (c *Float32Column) Float64At(row int) float64 { return float64(c.values[row]) }

func (c *Float32Column) WithName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

func (c *Float32Column) Take(indices []uint32) Column {
	out := make([]float32, len(indices))
	var outValid Validity
	if c.valid != nil {
		outValid = NewValidity(len(indices))
	}
	for i, idx := range indices {
		out[i] = c.values[idx]
		if c.valid != nil {
			outValid.Set(i, c.valid.Get(int(idx)))
		}
	}
	return &Float32Column{name: c.name, values: out, valid: outValid}
}

func (c *Float32Column) EqualRows(i, j int) bool {
	vi, vj := c.Valid(i), c.Valid(j)
	if vi != vj {
		return false
	}
	if !vi {
		return true
	}
	// raw bit pattern equality: +0.0 != -0.0, bit-identical NaN == NaN.
	return math.Float32bits(c.values[i]) == math.Float32bits(c.values[j])
}

func (c *Float32Column) HashRow(row int, k0, k1 uint64) (uint64, uint64) {
	if !c.Valid(row) {
		return hashPayload(k0, k1, false, nil)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(c.values[row]))
	return hashPayload(k0, k1, true, buf[:])
}

// Float64Column holds float64 values; key equality is over the raw
// 64-bit pattern (invariant F1).
type Float64Column struct {
	name   string
	values []float64
	valid  Validity
}

func NewFloat64Column(name string, values []float64, valid Validity) *Float64Column {
	return &Float64Column{name: name, values: values, valid: valid}
}

func (c *Float64Column) Name() string       { return c.name }
func (c *Float64Column) Dtype() Dtype       { return DtypeFloat64 }
func (c *Float64Column) Len() int           { return len(c.values) }
func (c *Float64Column) NullCount() int     { return c.valid.NullCount(len(c.values)) }
func (c *Float64Column) Valid(row int) bool { return c.valid.Get(row) }
func (c *Float64Column) Values() []float64  { return c.values }
func (c *Float64Column) Float64At(row int) float64 { return c.values[row] }

func (c *Float64Column) WithName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

func (c *Float64Column) Take(indices []uint32) Column {
	out := make([]float64, len(indices))
	var outValid Validity
	if c.valid != nil {
		outValid = NewValidity(len(indices))
	}
	for i, idx := range indices {
		out[i] = c.values[idx]
		if c.valid != nil {
			outValid.Set(i, c.valid.Get(int(idx)))
		}
	}
	return &Float64Column{name: c.name, values: out, valid: outValid}
}

func (c *Float64Column) EqualRows(i, j int) bool {
	vi, vj := c.Valid(i), c.Valid(j)
	if vi != vj {
		return false
	}
	if !vi {
		return true
	}
	return math.Float64bits(c.values[i]) == math.Float64bits(c.values[j])
}

func (c *Float64Column) HashRow(row int, k0, k1 uint64) (uint64, uint64) {
	if !c.Valid(row) {
		return hashPayload(k0, k1, false, nil)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c.values[row]))
	return hashPayload(k0, k1, true, buf[:])
}

// BoolColumn holds boolean values.
type BoolColumn struct {
	name   string
	values []bool
	valid  Validity
}

func NewBoolColumn(name string, values []bool, valid Validity) *BoolColumn {
	return &BoolColumn{name: name, values: values, valid: valid}
}

func (c *BoolColumn) Name() string       { return c.name }
func (c *BoolColumn) Dtype() Dtype       { return DtypeBool }
func (c *BoolColumn) Len() int           { return len(c.values) }
func (c *BoolColumn) NullCount() int     { return c.valid.NullCount(len(c.values)) }
func (c *BoolColumn) Valid(row int) bool { return c.valid.Get(row) }
func (c *BoolColumn) Values() []bool     { return c.values }
func (c *BoolColumn) BoolAt(row int) bool { return c.values[row] }

func (c *BoolColumn) WithName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

func (c *BoolColumn) Take(indices []uint32) Column {
	out := make([]bool, len(indices))
	var outValid Validity
	if c.valid != nil {
		outValid = NewValidity(len(indices))
	}
	for i, idx := range indices {
		out[i] = c.values[idx]
		if c.valid != nil {
			outValid.Set(i, c.valid.Get(int(idx)))
		}
	}
	return &BoolColumn{name: c.name, values: out, valid: outValid}
}

func (c *BoolColumn) EqualRows(i, j int) bool {
	vi, vj := c.Valid(i), c.Valid(j)
	if vi != vj {
		return false
	}
	if !vi {
		return true
	}
	return c.values[i] == c.values[j]
}

func (c *BoolColumn) HashRow(row int, k0, k1 uint64) (uint64, uint64) {
	if !c.Valid(row) {
		return hashPayload(k0, k1, false, nil)
	}
	buf := []byte{0}
	if c.values[row] {
		buf[0] = 1
	}
	return hashPayload(k0, k1, true, buf)
}

// StringColumn holds UTF-8 string values.
type StringColumn struct {
	name   string
	values []string
	valid  Validity
}

func NewStringColumn(name string, values []string, valid Validity) *StringColumn {
	return &StringColumn{name: name, values: values, valid: valid}
}

func (c *StringColumn) Name() string            { return c.name }
func (c *StringColumn) Dtype() Dtype            { return DtypeString }
func (c *StringColumn) Len() int                { return len(c.values) }
func (c *StringColumn) NullCount() int          { return c.valid.NullCount(len(c.values)) }
func (c *StringColumn) Valid(row int) bool      { return c.valid.Get(row) }
func (c *StringColumn) Values() []string        { return c.values }
func (c *StringColumn) StringAt(row int) string { return c.values[row] }

func (c *StringColumn) WithName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

func (c *StringColumn) Take(indices []uint32) Column {
	out := make([]string, len(indices))
	var outValid Validity
	if c.valid != nil {
		outValid = NewValidity(len(indices))
	}
	for i, idx := range indices {
		out[i] = c.values[idx]
		if c.valid != nil {
			outValid.Set(i, c.valid.Get(int(idx)))
		}
	}
	return &StringColumn{name: c.name, values: out, valid: outValid}
}

func (c *StringColumn) EqualRows(i, j int) bool {
	vi, vj := c.Valid(i), c.Valid(j)
	if vi != vj {
		return false
	}
	if !vi {
		return true
	}
	return c.values[i] == c.values[j]
}

func (c *StringColumn) HashRow(row int, k0, k1 uint64) (uint64, uint64) {
	if !c.Valid(row) {
		return hashPayload(k0, k1, false, nil)
	}
	return hashPayload(k0, k1, true, []byte(c.values[row]))
}

// CategoricalColumn is a dictionary-encoded string column: u32 codes
// into a shared dictionary. Per invariant K1, grouping reinterprets a
// categorical as its underlying code column, so Categorical embeds an
// IntColumn[uint32] and only adds the dictionary for display.
type CategoricalColumn struct {
	*IntColumn[uint32]
	dict []string
}

func NewCategoricalColumn(name string, codes []uint32, valid Validity, dict []string) *CategoricalColumn {
	return &CategoricalColumn{
		IntColumn: NewIntColumn(name, DtypeCategorical, codes, valid),
		dict:      dict,
	}
}

func (c *CategoricalColumn) Dict() []string { return c.dict }

// DictSize returns the distinct-category count, used by the
// partitioned executor's cardinality-fraction estimate (§4.4) as an
// exact distinct count rather than a sampled estimate.
func (c *CategoricalColumn) DictSize() int { return len(c.dict) }

func (c *CategoricalColumn) WithName(name string) Column {
	return &CategoricalColumn{
		IntColumn: c.IntColumn.WithName(name).(*IntColumn[uint32]),
		dict:      c.dict,
	}
}

func (c *CategoricalColumn) Take(indices []uint32) Column {
	return &CategoricalColumn{
		IntColumn: c.IntColumn.Take(indices).(*IntColumn[uint32]),
		dict:      c.dict,
	}
}

// ListColumn holds one slice of T per row; used for the `list` and
// `groups` aggregation kernel outputs. List-of-list elements are
// never null at the list level: every group produces a (possibly
// empty) list.
type ListColumn[T any] struct {
	name     string
	elemType Dtype
	values   [][]T
}

func NewListColumn[T any](name string, elemType Dtype, values [][]T) *ListColumn[T] {
	return &ListColumn[T]{name: name, elemType: elemType, values: values}
}

func (c *ListColumn[T]) Name() string        { return c.name }
func (c *ListColumn[T]) Dtype() Dtype        { return DtypeList }
func (c *ListColumn[T]) ElemDtype() Dtype    { return c.elemType }
func (c *ListColumn[T]) Len() int            { return len(c.values) }
func (c *ListColumn[T]) NullCount() int      { return 0 }
func (c *ListColumn[T]) Valid(row int) bool  { return true }
func (c *ListColumn[T]) Values() [][]T       { return c.values }
func (c *ListColumn[T]) ListAt(row int) []T  { return c.values[row] }

func (c *ListColumn[T]) WithName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

func (c *ListColumn[T]) Take(indices []uint32) Column {
	out := make([][]T, len(indices))
	for i, idx := range indices {
		out[i] = c.values[idx]
	}
	return &ListColumn[T]{name: c.name, elemType: c.elemType, values: out}
}

func (c *ListColumn[T]) EqualRows(i, j int) bool {
	invariantPanic("list columns are not valid group keys")
	return false
}

func (c *ListColumn[T]) HashRow(row int, k0, k1 uint64) (uint64, uint64) {
	invariantPanic("list columns are not valid group keys")
	return 0, 0
}

func invariantPanic(msg string) {
	panic("column: " + msg)
}

// ObjectColumn holds an opaque per-row value of unspecified Go type.
// Equality and hashing fall back to a string representation, which is
// sufficient for first/last/count but not a meaningful key space for
// any dtype-aware reduction.
type ObjectColumn struct {
	name   string
	values []any
	valid  Validity
}

func NewObjectColumn(name string, values []any, valid Validity) *ObjectColumn {
	return &ObjectColumn{name: name, values: values, valid: valid}
}

func (c *ObjectColumn) Name() string       { return c.name }
func (c *ObjectColumn) Dtype() Dtype       { return DtypeObject }
func (c *ObjectColumn) Len() int           { return len(c.values) }
func (c *ObjectColumn) NullCount() int     { return c.valid.NullCount(len(c.values)) }
func (c *ObjectColumn) Valid(row int) bool { return c.valid.Get(row) }
func (c *ObjectColumn) Values() []any      { return c.values }

func (c *ObjectColumn) WithName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

func (c *ObjectColumn) Take(indices []uint32) Column {
	out := make([]any, len(indices))
	var outValid Validity
	if c.valid != nil {
		outValid = NewValidity(len(indices))
	}
	for i, idx := range indices {
		out[i] = c.values[idx]
		if c.valid != nil {
			outValid.Set(i, c.valid.Get(int(idx)))
		}
	}
	return &ObjectColumn{name: c.name, values: out, valid: outValid}
}

func (c *ObjectColumn) EqualRows(i, j int) bool {
	vi, vj := c.Valid(i), c.Valid(j)
	if vi != vj {
		return false
	}
	if !vi {
		return true
	}
	return fmt.Sprintf("%v", c.values[i]) == fmt.Sprintf("%v", c.values[j])
}

func (c *ObjectColumn) HashRow(row int, k0, k1 uint64) (uint64, uint64) {
	if !c.Valid(row) {
		return hashPayload(k0, k1, false, nil)
	}
	return hashPayload(k0, k1, true, []byte(fmt.Sprintf("%v", c.values[row])))
}
