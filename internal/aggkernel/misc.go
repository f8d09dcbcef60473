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
	"github.com/FlorianWilhelm/polars/internal/column"
	"github.com/FlorianWilhelm/polars/internal/groupby"
	"github.com/FlorianWilhelm/polars/internal/rowhash"
)

func reduceFirstLast(name string, value column.Column, groups *groupby.GroupIndex, last bool) (column.Column, bool, error) {
	n := groups.Len()
	idx := make([]uint32, n)
	for g := 0; g < n; g++ {
		m := groups.Members(g)
		if last {
			idx[g] = m[len(m)-1]
		} else {
			idx[g] = m[0]
		}
	}
	k := First
	if last {
		k = Last
	}
	return value.Take(idx).WithName(OutputName(name, k, 0)), true, nil
}

func reduceCount(name string, value column.Column, groups *groupby.GroupIndex, validOnly bool) column.Column {
	n := groups.Len()
	out := make([]uint32, n)
	for g := 0; g < n; g++ {
		members := groups.Members(g)
		if !validOnly || value == nil {
			out[g] = uint32(len(members))
			continue
		}
		c := uint32(0)
		for _, m := range members {
			if value.Valid(int(m)) {
				c++
			}
		}
		out[g] = c
	}
	k := Count
	if validOnly {
		k = CountValid
	}
	return column.NewIntColumn(OutputName(name, k, 0), column.DtypeUint32, out, nil)
}

// reduceNUnique counts distinct non-null values per group, plus one
// if the group contains any null (§4.2). It reuses group discovery
// (C2) on each group's member values: two rows are "the same value"
// under exactly the key-equality rules §3 already defines, and a null
// key forms its own group (G2) — so the distinct-group count of that
// sub-discovery already equals "distinct non-null count, plus one if
// any null is present".
func reduceNUnique(name string, value column.Column, groups *groupby.GroupIndex) (column.Column, bool, error) {
	if value.Dtype() == column.DtypeList || value.Dtype() == column.DtypeObject {
		return nil, false, nil
	}
	n := groups.Len()
	out := make([]uint32, n)
	seed := rowhash.NewSeed()
	for g := 0; g < n; g++ {
		sub := value.Take(groups.Members(g))
		gi, err := groupby.Discover([]column.Column{sub}, groupby.Options{Seed: seed})
		if err != nil {
			return nil, false, err
		}
		out[g] = uint32(gi.Len())
	}
	return column.NewIntColumn(OutputName(name, NUnique, 0), column.DtypeUint32, out, nil), true, nil
}

func reduceGroups(groups *groupby.GroupIndex) (column.Column, bool, error) {
	n := groups.Len()
	values := make([][]uint32, n)
	for g := 0; g < n; g++ {
		m := groups.Members(g)
		cp := make([]uint32, len(m))
		copy(cp, m)
		values[g] = cp
	}
	return column.NewListColumn("groups", column.DtypeUint32, values), true, nil
}

func reduceList(name string, value column.Column, groups *groupby.GroupIndex) (column.Column, bool, error) {
	n := groups.Len()
	out := OutputName(name, List, 0)
	switch c := value.(type) {
	case *column.IntColumn[int8]:
		return listOf(out, column.DtypeInt8, c.Values(), groups), true, nil
	case *column.IntColumn[int16]:
		return listOf(out, column.DtypeInt16, c.Values(), groups), true, nil
	case *column.IntColumn[int32]:
		return listOf(out, c.Dtype(), c.Values(), groups), true, nil
	case *column.IntColumn[int64]:
		return listOf(out, c.Dtype(), c.Values(), groups), true, nil
	case *column.IntColumn[uint8]:
		return listOf(out, column.DtypeUint8, c.Values(), groups), true, nil
	case *column.IntColumn[uint16]:
		return listOf(out, column.DtypeUint16, c.Values(), groups), true, nil
	case *column.IntColumn[uint32]:
		return listOf(out, c.Dtype(), c.Values(), groups), true, nil
	case *column.IntColumn[uint64]:
		return listOf(out, column.DtypeUint64, c.Values(), groups), true, nil
	case *column.Float32Column:
		return listOf(out, column.DtypeFloat32, c.Values(), groups), true, nil
	case *column.Float64Column:
		return listOf(out, column.DtypeFloat64, c.Values(), groups), true, nil
	case *column.BoolColumn:
		return listOf(out, column.DtypeBool, c.Values(), groups), true, nil
	case *column.StringColumn:
		return listOf(out, column.DtypeString, c.Values(), groups), true, nil
	default:
		return nil, false, nil
	}
}

func listOf[T any](name string, dtype column.Dtype, values []T, groups *groupby.GroupIndex) column.Column {
	n := groups.Len()
	out := make([][]T, n)
	for g := 0; g < n; g++ {
		members := groups.Members(g)
		lst := make([]T, len(members))
		for i, m := range members {
			lst[i] = values[m]
		}
		out[g] = lst
	}
	return column.NewListColumn(name, dtype, out)
}
