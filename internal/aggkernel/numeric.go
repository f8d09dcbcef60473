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

import (
	"math"
	"sort"

	"github.com/FlorianWilhelm/polars/internal/column"
	"github.com/FlorianWilhelm/polars/internal/groupby"
)

func reduceMinMax(name string, value column.Column, groups *groupby.GroupIndex, wantMax bool) (column.Column, bool, error) {
	less, ok := lessFn(value, wantMax)
	if !ok {
		return nil, false, nil
	}
	n := groups.Len()
	winners := make([]uint32, n)
	for g := 0; g < n; g++ {
		members := groups.Members(g)
		best := -1
		for _, m := range members {
			row := int(m)
			if !value.Valid(row) {
				continue
			}
			if best == -1 || less(row, best) {
				best = row
			}
		}
		if best == -1 {
			// all-null group: any member row is null, so Take from
			// it below yields a null result (skip-null, all-null
			// group -> null per §4.2).
			best = int(members[0])
		}
		winners[g] = uint32(best)
	}
	k := Min
	if wantMax {
		k = Max
	}
	return value.Take(winners).WithName(OutputName(name, k, 0)), true, nil
}

func reduceSum(name string, value column.Column, groups *groupby.GroupIndex) (column.Column, bool, error) {
	n := groups.Len()
	switch c := value.(type) {
	case column.Int64At:
		out := make([]int64, n)
		for g := 0; g < n; g++ {
			var s int64
			for _, m := range groups.Members(g) {
				if value.Valid(int(m)) {
					s += c.Int64At(int(m))
				}
			}
			out[g] = s
		}
		return column.NewIntColumn(OutputName(name, Sum, 0), column.DtypeInt64, out, nil), true, nil
	case column.Float64At:
		out := make([]float64, n)
		for g := 0; g < n; g++ {
			var s float64
			for _, m := range groups.Members(g) {
				if value.Valid(int(m)) {
					s += c.Float64At(int(m))
				}
			}
			out[g] = s
		}
		return column.NewFloat64Column(OutputName(name, Sum, 0), out, nil), true, nil
	default:
		return nil, false, nil
	}
}

func reduceMean(name string, value column.Column, groups *groupby.GroupIndex) (column.Column, bool, error) {
	accessor, ok := float64Accessor(value)
	if !ok {
		return nil, false, nil
	}
	n := groups.Len()
	out := make([]float64, n)
	valid := column.NewValidity(n)
	for g := 0; g < n; g++ {
		var sum float64
		var count int
		for _, m := range groups.Members(g) {
			if value.Valid(int(m)) {
				sum += accessor(int(m))
				count++
			}
		}
		if count == 0 {
			valid.Set(g, false)
			continue
		}
		out[g] = sum / float64(count)
	}
	return column.NewFloat64Column(OutputName(name, Mean, 0), out, valid), true, nil
}

func reduceVarStd(name string, value column.Column, groups *groupby.GroupIndex, std bool) (column.Column, bool, error) {
	accessor, ok := float64Accessor(value)
	if !ok {
		return nil, false, nil
	}
	n := groups.Len()
	out := make([]float64, n)
	valid := column.NewValidity(n)
	for g := 0; g < n; g++ {
		var vals []float64
		for _, m := range groups.Members(g) {
			if value.Valid(int(m)) {
				vals = append(vals, accessor(int(m)))
			}
		}
		if len(vals) < 2 {
			valid.Set(g, false)
			continue
		}
		mean := 0.0
		for _, v := range vals {
			mean += v
		}
		mean /= float64(len(vals))
		ss := 0.0
		for _, v := range vals {
			d := v - mean
			ss += d * d
		}
		variance := ss / float64(len(vals)-1)
		if std {
			out[g] = math.Sqrt(variance)
		} else {
			out[g] = variance
		}
	}
	k := Var
	if std {
		k = Std
	}
	return column.NewFloat64Column(OutputName(name, k, 0), out, valid), true, nil
}

// reduceQuantile implements both median (k=Median, q=0.5) and
// quantile(q) (k=Quantile) via nearest-rank on sorted non-null
// values, ties resolved to the lower index (§4.2).
func reduceQuantile(name string, k Kernel, value column.Column, groups *groupby.GroupIndex, q float64) (column.Column, bool, error) {
	accessor, ok := float64Accessor(value)
	if !ok {
		return nil, false, nil
	}
	n := groups.Len()
	out := make([]float64, n)
	valid := column.NewValidity(n)
	for g := 0; g < n; g++ {
		var vals []float64
		for _, m := range groups.Members(g) {
			if value.Valid(int(m)) {
				vals = append(vals, accessor(int(m)))
			}
		}
		if len(vals) == 0 {
			valid.Set(g, false)
			continue
		}
		sort.Float64s(vals)
		rank := int(math.Ceil(q*float64(len(vals)))) - 1
		if rank < 0 {
			rank = 0
		}
		if rank >= len(vals) {
			rank = len(vals) - 1
		}
		out[g] = vals[rank]
	}
	return column.NewFloat64Column(OutputName(name, k, q), out, valid), true, nil
}
