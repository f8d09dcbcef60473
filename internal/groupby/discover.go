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

package groupby

import (
	"sync"

	"github.com/FlorianWilhelm/polars/internal/column"
	"github.com/FlorianWilhelm/polars/internal/rowhash"
)

// MTThreshold is the row count above which Discover will consider the
// sharded-parallel path when multithreaded is requested (§4.1).
const MTThreshold = 1000

// Options configures a Discover call.
type Options struct {
	// Multithreaded requests the sharded-parallel path (§4.1) when
	// the input is large enough (n > MTThreshold) and Workers > 1.
	Multithreaded bool
	// Workers is the shard/worker count for the parallel path.
	// Callers should clamp this to at least 1 themselves (the
	// process-wide worker pool does so based on host CPU count).
	Workers int
	// SizeHint is the expected average group size, used as the
	// initial capacity of each group's member-index slice. 0 means
	// unknown.
	SizeHint int
	// Seed is the siphash key pair shared across every shard's
	// hashing for this call. Must be sampled once per Discover call
	// by the caller (see rowhash.NewSeed).
	Seed rowhash.Seed
}

// Discover builds a GroupIndex from the given key columns (C2). All
// keys must share the same length, or ShapeMismatchError is returned.
//
// Single-key and multi-key grouping share one implementation: every
// row's key tuple is reduced to a 64-bit composite hash by chaining
// rowhash.HashRow across the key columns (identical to the
// single-column case when len(keys) == 1), and collisions are
// resolved by comparing the full key tuple column-by-column,
// short-circuiting at the first mismatch (invariant M1). This is a
// deliberate unification of the spec's nominally separate
// single-key/multi-key algorithms: both produce the same
// (first, members) partition (G1-G4), and sharing one code path
// avoids the "identical tables, different key" duplication the source
// pushes into macros.
func Discover(keys []column.Column, opts Options) (*GroupIndex, error) {
	if len(keys) == 0 {
		return &GroupIndex{}, nil
	}
	n := keys[0].Len()
	for _, k := range keys[1:] {
		if k.Len() != n {
			return nil, &column.ShapeMismatchError{Left: n, Right: k.Len(), Context: "group_by keys"}
		}
	}
	if n == 0 {
		return &GroupIndex{}, nil
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if opts.Multithreaded && n > MTThreshold && workers > 1 {
		return discoverParallel(keys, n, workers, opts.SizeHint, opts.Seed), nil
	}
	return discoverSerial(keys, n, opts.SizeHint, opts.Seed), nil
}

func rowEqual(keys []column.Column, a, b uint32) bool {
	for _, k := range keys {
		if !k.EqualRows(int(a), int(b)) {
			return false
		}
	}
	return true
}

// discoverSerial is the single-pass hash-table build of §4.1 item 1,
// preceded by a cheap attempt at the contiguous-run ("GroupsProxy
// slice") representation of §C.1: when the key columns turn out to
// already be grouped contiguously (the shape pre-sorted input
// produces), that representation is cheaper to build and to hold than
// an explicit member-index vector per group.
func discoverSerial(keys []column.Column, n int, sizeHint int, seed rowhash.Seed) *GroupIndex {
	hashes := make([]uint64, n)
	for row := 0; row < n; row++ {
		hashes[row] = rowhash.HashRow(keys, row, seed)
	}
	if gi, ok := discoverContiguousRuns(keys, n, hashes); ok {
		return gi
	}

	expected := n
	if sizeHint > 0 {
		expected = n/sizeHint + 1
	}
	b := newBuilder(expected, sizeHint)
	equal := func(row, first uint32) bool { return rowEqual(keys, row, first) }
	for row := 0; row < n; row++ {
		b.insert(uint32(row), hashes[row], equal)
	}
	return b.index()
}

// discoverContiguousRuns builds a GroupIndex in sliceMode (§C.1) in a
// single forward pass, bailing out (ok=false) the moment a row's key
// matches an already-closed run out of order — at which point the
// input isn't grouped contiguously and the caller falls back to
// discoverSerial's general hash-table build. Hash collisions alone
// never trigger a false bail-out or a false contiguous-run result:
// every candidate match is confirmed with rowEqual against the actual
// representative row.
func discoverContiguousRuns(keys []column.Column, n int, hashes []uint64) (*GroupIndex, bool) {
	if n == 0 {
		return &GroupIndex{sliceMode: true}, true
	}
	runStart := []uint32{0}
	runLen := []uint32{1}
	closedReps := make(map[uint64][]uint32)
	curFirst := uint32(0)
	for row := 1; row < n; row++ {
		r := uint32(row)
		if rowEqual(keys, r, curFirst) {
			runLen[len(runLen)-1]++
			continue
		}
		for _, rep := range closedReps[hashes[r]] {
			if rowEqual(keys, r, rep) {
				return nil, false
			}
		}
		closedReps[hashes[curFirst]] = append(closedReps[hashes[curFirst]], curFirst)
		curFirst = r
		runStart = append(runStart, r)
		runLen = append(runLen, 1)
	}
	return &GroupIndex{sliceMode: true, runStart: runStart, runLen: runLen}, true
}

// discoverParallel is the sharded-parallel path of §4.1 item 2: the
// input is sliced into `workers` contiguous shards, every worker scans
// every shard's (hash, row) pairs but only inserts the ones the
// partition predicate assigns to it (invariant P1), and the per-worker
// results are concatenated in worker order.
func discoverParallel(keys []column.Column, n, workers, sizeHint int, seed rowhash.Seed) *GroupIndex {
	shardLen := (n + workers - 1) / workers
	type shard struct{ lo, hi int }
	shards := make([]shard, 0, workers)
	for lo := 0; lo < n; lo += shardLen {
		hi := lo + shardLen
		if hi > n {
			hi = n
		}
		shards = append(shards, shard{lo, hi})
	}

	// Hash every row once, shared by every worker.
	hashes := make([]uint64, n)
	for row := 0; row < n; row++ {
		hashes[row] = rowhash.HashRow(keys, row, seed)
	}

	results := make([]*GroupIndex, workers)
	var wg sync.WaitGroup
	equal := func(row, first uint32) bool { return rowEqual(keys, row, first) }
	for t := 0; t < workers; t++ {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()
			expected := n / workers
			if sizeHint > 0 {
				expected = expected/sizeHint + 1
			}
			b := newBuilder(expected, sizeHint)
			for _, s := range shards {
				for row := s.lo; row < s.hi; row++ {
					if !rowhash.Partition(hashes[row], t, workers) {
						continue
					}
					b.insert(uint32(row), hashes[row], equal)
				}
			}
			results[t] = b.index()
		}()
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += r.Len()
	}
	first := make([]uint32, 0, total)
	members := make([][]uint32, 0, total)
	for _, r := range results {
		first = append(first, r.first...)
		members = append(members, r.members...)
	}
	return &GroupIndex{first: first, members: members}
}
