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

import (
	"fmt"

	"github.com/FlorianWilhelm/polars/internal/groupby"
	"github.com/FlorianWilhelm/polars/internal/rowhash"
	"github.com/FlorianWilhelm/polars/internal/workerpool"
)

// groupBy is the shared implementation behind GroupBy and
// GroupByWithSeries: discover groups over keyCols (a fresh seed
// sampled once for this call per the deterministic-seed-across-workers
// requirement), optionally run the sharded-parallel path, optionally
// stable-sort the result, and bind everything into a GroupSession.
func (f *Frame) groupBy(keyCols []Column, multithreaded, stable bool) (*GroupSession, error) {
	n := f.Height()
	for _, k := range keyCols {
		if k.Len() != n {
			return nil, &ShapeMismatchError{Left: n, Right: k.Len(), Context: "group_by keys"}
		}
	}
	seed := rowhash.NewSeed()
	groups, err := groupby.Discover(keyCols, groupby.Options{
		Multithreaded: multithreaded,
		Workers:       workerpool.Workers(),
		Seed:          seed,
	})
	if err != nil {
		return nil, err
	}
	if stable {
		groups.StableSort()
	}
	return newGroupSession(f, keyCols, groups, seed)
}

// GroupBy discovers groups over the named key columns using the
// single-threaded, stable-ordered path (§6): groups come out sorted by
// ascending first_row_index (G4), independent of hash iteration order.
func (f *Frame) GroupBy(keys []string) (*GroupSession, error) {
	cols := make([]Column, len(keys))
	for i, name := range keys {
		c, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("polars: no such column %q", name)
		}
		cols[i] = c
	}
	return f.groupBy(cols, false, true)
}

// GroupByWithSeries discovers groups over caller-supplied key columns
// rather than column names — the keys need not already belong to f;
// the session's working frame gains any missing ones via WithColumns
// so later projections (Keys, agg output) can name them. When
// multithreaded is true and the input is large enough (§4.1), group
// discovery runs the sharded-parallel path; group order is then
// unspecified (G4) unless the caller sorts the result downstream.
func (f *Frame) GroupByWithSeries(keys []Column, multithreaded bool) (*GroupSession, error) {
	return f.groupBy(keys, multithreaded, false)
}
