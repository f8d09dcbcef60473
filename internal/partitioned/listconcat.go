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

package partitioned

import (
	"fmt"

	"github.com/FlorianWilhelm/polars/internal/column"
	"github.com/FlorianWilhelm/polars/internal/groupby"
)

// concatGroupedLists flattens the per-shard partial lists in raw (one
// list per partial group) into one concatenated list per final group
// (§4.4's "outer: list (concat)"), rather than collecting them into a
// list-of-lists the way a second aggkernel.List pass would.
func concatGroupedLists(raw column.Column, groups *groupby.GroupIndex, output string) (column.Column, error) {
	switch c := raw.(type) {
	case *column.ListColumn[int8]:
		return concatLists(output, column.DtypeInt8, c, groups), nil
	case *column.ListColumn[int16]:
		return concatLists(output, column.DtypeInt16, c, groups), nil
	case *column.ListColumn[int32]:
		return concatLists(output, c.ElemDtype(), c, groups), nil
	case *column.ListColumn[int64]:
		return concatLists(output, c.ElemDtype(), c, groups), nil
	case *column.ListColumn[uint8]:
		return concatLists(output, column.DtypeUint8, c, groups), nil
	case *column.ListColumn[uint16]:
		return concatLists(output, column.DtypeUint16, c, groups), nil
	case *column.ListColumn[uint32]:
		return concatLists(output, c.ElemDtype(), c, groups), nil
	case *column.ListColumn[uint64]:
		return concatLists(output, column.DtypeUint64, c, groups), nil
	case *column.ListColumn[float32]:
		return concatLists(output, column.DtypeFloat32, c, groups), nil
	case *column.ListColumn[float64]:
		return concatLists(output, column.DtypeFloat64, c, groups), nil
	case *column.ListColumn[bool]:
		return concatLists(output, column.DtypeBool, c, groups), nil
	case *column.ListColumn[string]:
		return concatLists(output, column.DtypeString, c, groups), nil
	default:
		return nil, fmt.Errorf("partitioned: list concatenation unsupported for dtype %s", raw.Dtype())
	}
}

func concatLists[T any](name string, elemType column.Dtype, lc *column.ListColumn[T], groups *groupby.GroupIndex) column.Column {
	n := groups.Len()
	out := make([][]T, n)
	for g := 0; g < n; g++ {
		members := groups.Members(g)
		var total int
		for _, m := range members {
			total += len(lc.ListAt(int(m)))
		}
		lst := make([]T, 0, total)
		for _, m := range members {
			lst = append(lst, lc.ListAt(int(m))...)
		}
		out[g] = lst
	}
	return column.NewListColumn(name, elemType, out)
}
