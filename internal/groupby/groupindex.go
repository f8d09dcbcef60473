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

// Package groupby implements group discovery (C2): building a
// GroupIndex from one or more key columns, serially or via a
// sharded-parallel hash partition.
package groupby

import "golang.org/x/exp/slices"

// GroupIndex is a sequence of (first, members) entries partitioning
// [0, n) into key-equivalence classes. It satisfies invariants
// G1 (members[0] == first), G2 (every row appears exactly once), G3
// (two rows share an entry iff their key tuples are equal), and G4
// (entry order is unspecified unless StableSort is called).
//
// Internally it has two representations (the GroupsProxy/GroupsIdx
// duality of the original implementation): the general case stores an
// explicit member-index vector per group, while sliceMode stores each
// group as a (start, length) run over a contiguous range of rows —
// the shape discoverContiguousRuns produces when the input's key
// columns turn out to already be grouped contiguously. Both
// representations answer Len/First/Members/Firsts identically; the
// run form just skips materializing an index vector per group.
type GroupIndex struct {
	first   []uint32
	members [][]uint32

	sliceMode bool
	runStart  []uint32
	runLen    []uint32
}

// Len is the number of groups.
func (g *GroupIndex) Len() int {
	if g.sliceMode {
		return len(g.runStart)
	}
	return len(g.first)
}

// First returns the first row index of group i.
func (g *GroupIndex) First(i int) uint32 {
	if g.sliceMode {
		return g.runStart[i]
	}
	return g.first[i]
}

// Members returns the member row indices of group i, in the order
// they were inserted (ascending within a shard, per invariant O1). In
// sliceMode the run is materialized into a fresh slice on every call.
func (g *GroupIndex) Members(i int) []uint32 {
	if g.sliceMode {
		start, n := g.runStart[i], g.runLen[i]
		m := make([]uint32, n)
		for j := range m {
			m[j] = start + uint32(j)
		}
		return m
	}
	return g.members[i]
}

// Firsts returns every group's first row index, in group order. This
// is the index set GroupSession.Keys projects the key columns
// through.
func (g *GroupIndex) Firsts() []uint32 {
	if g.sliceMode {
		return g.runStart
	}
	return g.first
}

// StableSort reorders the groups by ascending first_row_index, the
// behavior callers opt into for deterministic output ordering (G4).
// After StableSort, First(0) is the global minimum first_row_index.
func (g *GroupIndex) StableSort() {
	if g.sliceMode {
		order := sortOrderByFirst(g.runStart)
		runStart := make([]uint32, len(order))
		runLen := make([]uint32, len(order))
		for i, o := range order {
			runStart[i] = g.runStart[o]
			runLen[i] = g.runLen[o]
		}
		g.runStart, g.runLen = runStart, runLen
		return
	}
	order := sortOrderByFirst(g.first)
	first := make([]uint32, len(order))
	members := make([][]uint32, len(order))
	for i, o := range order {
		first[i] = g.first[o]
		members[i] = g.members[o]
	}
	g.first, g.members = first, members
}

// sortOrderByFirst returns a permutation of [0, len(firsts)) that
// sorts firsts ascending.
func sortOrderByFirst(firsts []uint32) []int {
	order := make([]int, len(firsts))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		switch {
		case firsts[a] < firsts[b]:
			return -1
		case firsts[a] > firsts[b]:
			return 1
		default:
			return 0
		}
	})
	return order
}

// newBuilder constructs an empty GroupIndex builder with room for
// roughly expectedGroups entries.
type builder struct {
	// hashToGroups maps a row hash to the candidate group indices
	// sharing that hash, resolved to a true group by comparing
	// against each candidate's first row (M1: column-by-column,
	// short-circuiting on first mismatch).
	hashToGroups map[uint64][]int
	first        []uint32
	members      [][]uint32
	sizeHint     int
}

func newBuilder(expectedGroups, sizeHint int) *builder {
	if expectedGroups < 1 {
		expectedGroups = 1
	}
	return &builder{
		hashToGroups: make(map[uint64][]int, expectedGroups),
		first:        make([]uint32, 0, expectedGroups),
		members:      make([][]uint32, 0, expectedGroups),
		sizeHint:     sizeHint,
	}
}

// insert adds row (with precomputed hash h) to the group whose first
// member satisfies equal(row, candidateFirst), creating a new group
// if none matches.
func (b *builder) insert(row uint32, h uint64, equal func(a, c uint32) bool) {
	for _, gid := range b.hashToGroups[h] {
		if equal(row, b.first[gid]) {
			b.members[gid] = append(b.members[gid], row)
			return
		}
	}
	gid := len(b.first)
	b.first = append(b.first, row)
	initCap := b.sizeHint
	if initCap < 1 {
		initCap = 1
	}
	mem := make([]uint32, 1, initCap)
	mem[0] = row
	b.members = append(b.members, mem)
	b.hashToGroups[h] = append(b.hashToGroups[h], gid)
}

func (b *builder) index() *GroupIndex {
	return &GroupIndex{first: b.first, members: b.members}
}
