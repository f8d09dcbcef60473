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

// ShapeMismatchError is returned when key columns, or frames being
// concatenated, have incompatible lengths.
type ShapeMismatchError = column.ShapeMismatchError

// ValueError is returned for out-of-range or otherwise invalid
// parameters, e.g. a quantile outside [0, 1].
type ValueError = column.ValueError

// UnsupportedAggregationError is returned when a kernel token is not
// recognized, or is recognized but undefined for a column's dtype.
type UnsupportedAggregationError = column.UnsupportedAggregationError

// SchemaMismatchError is returned when apply's UDF returns frames
// whose schemas disagree.
type SchemaMismatchError = column.SchemaMismatchError

// DowncastError is returned when a caller requests a typed view of a
// column that does not match its dtype.
type DowncastError = column.DowncastError
