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

package polars

import "github.com/FlorianWilhelm/polars/internal/column"

// Column is the external columnar-storage contract the engine is
// built against (named/typed/validity-tracked values), satisfied by
// every concrete column type below. It is safe to alias here, unlike
// Frame: an interface's method set is fixed at declaration, so there
// is no way for code outside internal/column to extend it, whereas
// Frame needs root-level methods (GroupBy) that must be added via
// composition instead.
type Column = column.Column

// Integer is the set of fixed-width integer kinds IntColumn can hold.
type Integer = column.Integer

// IntColumn is a fixed-width signed or unsigned integer column.
type IntColumn[T Integer] = column.IntColumn[T]

// Float32Column and Float64Column compare and hash by raw bit pattern
// (invariant F1), not IEEE float semantics.
type (
	Float32Column = column.Float32Column
	Float64Column = column.Float64Column
)

// BoolColumn is a column of booleans.
type BoolColumn = column.BoolColumn

// StringColumn is a column of UTF-8 strings, compared byte-wise.
type StringColumn = column.StringColumn

// CategoricalColumn is a dictionary-encoded string column: grouping
// operates on its u32 codes directly (invariant K1).
type CategoricalColumn = column.CategoricalColumn

// ListColumn holds one slice of T per row; produced by the list
// aggregation kernel and the groups() kernel. It is not a valid group
// key (EqualRows/HashRow panic).
type ListColumn[T any] = column.ListColumn[T]

// ObjectColumn holds opaque values compared/hashed via their string
// form, a fallback for dtypes with no dedicated representation.
type ObjectColumn = column.ObjectColumn

var (
	NewFloat32Column     = column.NewFloat32Column
	NewFloat64Column     = column.NewFloat64Column
	NewBoolColumn        = column.NewBoolColumn
	NewStringColumn      = column.NewStringColumn
	NewCategoricalColumn = column.NewCategoricalColumn
	NewObjectColumn      = column.NewObjectColumn
)

// NewIntColumn builds an IntColumn with the given dtype tag. valid may
// be nil, meaning no nulls.
func NewIntColumn[T Integer](name string, dtype Dtype, values []T, valid Validity) *IntColumn[T] {
	return column.NewIntColumn(name, dtype, values, valid)
}

// NewListColumn builds a ListColumn of element type T holding values,
// one list per row.
func NewListColumn[T any](name string, elemType Dtype, values [][]T) *ListColumn[T] {
	return column.NewListColumn(name, elemType, values)
}

// Validity is a per-element null bitmap; a nil Validity means "no
// nulls".
type Validity = column.Validity

// NewValidity allocates a bitmap able to hold n elements, initialized
// to all-valid.
func NewValidity(n int) Validity { return column.NewValidity(n) }
