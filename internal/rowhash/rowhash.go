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

// Package rowhash implements the stable hashing and partition
// predicate primitives (C1) the grouping engine builds on: a seeded
// 64-bit hash of a row's key tuple, and the predicate used to shard
// rows across worker hash tables.
package rowhash

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/FlorianWilhelm/polars/internal/column"
)

// Seed is the pair of 64-bit siphash keys shared by every worker for
// a single group_by call. It must be sampled exactly once per call
// and passed unchanged into every shard's hashing, or the partition
// predicate (Partition) would not agree on which worker owns which
// row (see the source-level design note on deterministic seeds across
// workers).
type Seed struct {
	K0, K1 uint64
}

// NewSeed samples a fresh random Seed. Seeds are per-call, not
// process-global: each group_by call samples its own. A Seed is a
// plain value, so passing it to several goroutines shares no mutable
// state.
func NewSeed() Seed {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read on a real OS does not fail; if it ever
		// does, degrade to a fixed seed rather than abort a
		// CPU-bound aggregation over it.
		return Seed{K0: 0x9e3779b97f4a7c15, K1: 0xbf58476d1ce4e5b9}
	}
	return Seed{
		K0: binary.LittleEndian.Uint64(buf[0:8]),
		K1: binary.LittleEndian.Uint64(buf[8:16]),
	}
}

// HashRow computes the 64-bit row hash of the key tuple at row across
// cols, chaining each column's HashRow output into the seed for the
// next column (the same technique sneller's bytecode interpreter uses
// to combine successive siphash invocations across columns: each call
// folds the previous (lo, hi) pair back in as (k0, k1)). A single-key
// hash is just the one-column case of this loop.
func HashRow(cols []column.Column, row int, seed Seed) uint64 {
	k0, k1 := seed.K0, seed.K1
	for _, c := range cols {
		k0, k1 = c.HashRow(row, k0, k1)
	}
	return k0 ^ k1
}

// Partition reports whether row hash h is owned by worker t out of
// total workers, under the total partition function (h + t) mod
// total == 0 (§4.1). Every row hashes to exactly one owning worker
// because this is a total function of h alone combined with t
// (invariant P1).
func Partition(h uint64, t, total int) bool {
	return (h+uint64(t))%uint64(total) == 0
}
