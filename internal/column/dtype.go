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

// Package column is the opaque columnar-storage stand-in the core
// grouping/aggregation engine is built against. The real production
// collaborator (a chunked array of primitive/utf8/bool values with a
// per-element validity bit) is out of scope for this core; this
// package supplies a minimal, concrete implementation of that contract
// so the engine has something to compile and test against.
package column

// Dtype is one of the primitive typed domains a Column's values live
// in.
type Dtype int

const (
	DtypeInt8 Dtype = iota
	DtypeInt16
	DtypeInt32
	DtypeInt64
	DtypeUint8
	DtypeUint16
	DtypeUint32
	DtypeUint64
	DtypeFloat32
	DtypeFloat64
	DtypeBool
	DtypeString
	DtypeCategorical
	DtypeDate32
	DtypeDate64
	DtypeList
	DtypeObject
)

func (d Dtype) String() string {
	switch d {
	case DtypeInt8:
		return "int8"
	case DtypeInt16:
		return "int16"
	case DtypeInt32:
		return "int32"
	case DtypeInt64:
		return "int64"
	case DtypeUint8:
		return "uint8"
	case DtypeUint16:
		return "uint16"
	case DtypeUint32:
		return "uint32"
	case DtypeUint64:
		return "uint64"
	case DtypeFloat32:
		return "float32"
	case DtypeFloat64:
		return "float64"
	case DtypeBool:
		return "bool"
	case DtypeString:
		return "string"
	case DtypeCategorical:
		return "categorical"
	case DtypeDate32:
		return "date32"
	case DtypeDate64:
		return "date64"
	case DtypeList:
		return "list"
	case DtypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// IsInteger reports whether d is backed by an integer payload,
// including the date dtypes (date32/date64 are i32/i64 day or
// millisecond counts) and categorical (a u32 dictionary code, per
// invariant K1).
func (d Dtype) IsInteger() bool {
	switch d {
	case DtypeInt8, DtypeInt16, DtypeInt32, DtypeInt64,
		DtypeUint8, DtypeUint16, DtypeUint32, DtypeUint64,
		DtypeDate32, DtypeDate64, DtypeCategorical:
		return true
	}
	return false
}

// IsFloat reports whether d is float32 or float64.
func (d Dtype) IsFloat() bool {
	return d == DtypeFloat32 || d == DtypeFloat64
}

// IsNumeric reports whether d supports arithmetic reduction.
func (d Dtype) IsNumeric() bool {
	return d.IsInteger() || d.IsFloat()
}
