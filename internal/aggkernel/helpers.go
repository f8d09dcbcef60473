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

package aggkernel

import "github.com/FlorianWilhelm/polars/internal/column"

// float64Accessor returns a function reading row i of value widened
// to float64, for the numeric dtypes mean/median/quantile/var/std
// operate over. ok is false if value has no numeric accessor.
func float64Accessor(value column.Column) (func(i int) float64, bool) {
	switch c := value.(type) {
	case column.Float64At:
		return c.Float64At, true
	case column.Int64At:
		return func(i int) float64 { return float64(c.Int64At(i)) }, true
	default:
		return nil, false
	}
}

// lessFn returns an ordering predicate over value's rows suitable for
// min (wantMax=false) or max (wantMax=true), covering the dtype rule
// of §4.2: numeric, bool, utf8, date. Bool orders false < true; string
// orders byte-wise (Go's native string <).
func lessFn(value column.Column, wantMax bool) (func(i, j int) bool, bool) {
	switch c := value.(type) {
	case column.Int64At:
		if wantMax {
			return func(i, j int) bool { return c.Int64At(i) > c.Int64At(j) }, true
		}
		return func(i, j int) bool { return c.Int64At(i) < c.Int64At(j) }, true
	case column.Float64At:
		if wantMax {
			return func(i, j int) bool { return c.Float64At(i) > c.Float64At(j) }, true
		}
		return func(i, j int) bool { return c.Float64At(i) < c.Float64At(j) }, true
	case column.BoolAt:
		if wantMax {
			return func(i, j int) bool { return c.BoolAt(i) && !c.BoolAt(j) }, true
		}
		return func(i, j int) bool { return !c.BoolAt(i) && c.BoolAt(j) }, true
	case column.StringAt:
		if wantMax {
			return func(i, j int) bool { return c.StringAt(i) > c.StringAt(j) }, true
		}
		return func(i, j int) bool { return c.StringAt(i) < c.StringAt(j) }, true
	default:
		return nil, false
	}
}
