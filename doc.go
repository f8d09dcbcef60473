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

// Package polars implements the grouped-aggregation core of a columnar
// DataFrame engine: partitioning rows into groups by one or more key
// columns and computing per-group reductions, optionally in parallel
// across a sharded hash table.
//
// The entry points are Frame.GroupBy and Frame.GroupByWithSeries, both
// of which return a *GroupSession bound to the discovered GroupIndex.
package polars
