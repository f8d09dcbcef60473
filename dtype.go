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

// Dtype is one of the primitive typed domains a Column's values live in.
type Dtype = column.Dtype

const (
	DtypeInt8        = column.DtypeInt8
	DtypeInt16       = column.DtypeInt16
	DtypeInt32       = column.DtypeInt32
	DtypeInt64       = column.DtypeInt64
	DtypeUint8       = column.DtypeUint8
	DtypeUint16      = column.DtypeUint16
	DtypeUint32      = column.DtypeUint32
	DtypeUint64      = column.DtypeUint64
	DtypeFloat32     = column.DtypeFloat32
	DtypeFloat64     = column.DtypeFloat64
	DtypeBool        = column.DtypeBool
	DtypeString      = column.DtypeString
	DtypeCategorical = column.DtypeCategorical
	DtypeDate32      = column.DtypeDate32
	DtypeDate64      = column.DtypeDate64
	DtypeList        = column.DtypeList
	DtypeObject      = column.DtypeObject
)
