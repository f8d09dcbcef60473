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

import "fmt"

// ShapeMismatchError is returned when key columns, or frames being
// concatenated, have incompatible lengths.
type ShapeMismatchError struct {
	Left, Right int
	Context     string
}

func (e *ShapeMismatchError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("shape mismatch in %s: %d != %d", e.Context, e.Left, e.Right)
	}
	return fmt.Sprintf("shape mismatch: %d != %d", e.Left, e.Right)
}

// ValueError is returned for out-of-range or otherwise invalid
// parameters, e.g. a quantile outside [0, 1].
type ValueError struct {
	Param string
	Value any
	Msg   string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value for %s (%v): %s", e.Param, e.Value, e.Msg)
}

// UnsupportedAggregationError is returned when a kernel token is not
// recognized, or is recognized but undefined for a column's dtype.
type UnsupportedAggregationError struct {
	Token string
	Dtype string
}

func (e *UnsupportedAggregationError) Error() string {
	if e.Dtype != "" {
		return fmt.Sprintf("unsupported aggregation %q for dtype %s", e.Token, e.Dtype)
	}
	return fmt.Sprintf("unsupported aggregation %q", e.Token)
}

// SchemaMismatchError is returned when apply's UDF returns frames
// whose schemas disagree.
type SchemaMismatchError struct {
	Detail string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %s", e.Detail)
}

// DowncastError is returned when a caller requests a typed view of a
// column that does not match its dtype.
type DowncastError struct {
	Want, Got string
}

func (e *DowncastError) Error() string {
	return fmt.Sprintf("cannot downcast column of dtype %s to %s", e.Got, e.Want)
}
