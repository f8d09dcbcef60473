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

// Package partitioned implements the partitioned executor (C5):
// map -> reduce -> reduce over a single grouping key, avoiding one
// giant hash table when the key's cardinality is low relative to the
// row count.
package partitioned

import (
	"fmt"

	"github.com/FlorianWilhelm/polars/internal/aggkernel"
	"github.com/FlorianWilhelm/polars/internal/column"
	"github.com/FlorianWilhelm/polars/internal/config"
	"github.com/FlorianWilhelm/polars/internal/groupby"
	"github.com/FlorianWilhelm/polars/internal/planner"
	"github.com/FlorianWilhelm/polars/internal/rowhash"
	"github.com/FlorianWilhelm/polars/internal/workerpool"
)

// CardinalityFraction estimates the unique-key fraction of key (§4.4
// "Cardinality adaptation"): the exact dictionary-size fraction for a
// categorical column, or the unique fraction of a contiguous middle
// sample of size sampleSize otherwise.
func CardinalityFraction(key column.Column, sampleSize int, seed rowhash.Seed) (float64, error) {
	n := key.Len()
	if n == 0 {
		return 0, nil
	}
	if cat, ok := key.(*column.CategoricalColumn); ok {
		return float64(cat.DictSize()) / float64(n), nil
	}
	if sampleSize > n {
		sampleSize = n
	}
	start := (n - sampleSize) / 2
	idx := make([]uint32, sampleSize)
	for i := range idx {
		idx[i] = uint32(start + i)
	}
	sample := key.Take(idx)
	groups, err := groupby.Discover([]column.Column{sample}, groupby.Options{Seed: seed})
	if err != nil {
		return 0, err
	}
	return float64(groups.Len()) / float64(sampleSize), nil
}

// ShouldRun decides whether the partitioned path is worth running for
// the given key column, per §4.4's cardinality adaptation and the
// NO_PARTITION escape hatch (§6).
func ShouldRun(key column.Column, seed rowhash.Seed) (bool, error) {
	if config.NoPartition() {
		return false, nil
	}
	frac, err := CardinalityFraction(key, config.PartitionSampleSize(), seed)
	if err != nil {
		return false, err
	}
	run := frac <= config.PartitionCardinalityFrac()
	if config.Verbose() {
		fmt.Printf("partitioned: estimated cardinality: %.1f%%\n", frac*100)
	}
	return run, nil
}

// Execute runs the §4.4 map -> reduce -> reduce algorithm: shard the
// frame into len(shards) row-contiguous pieces, run a partial C4
// reduction on each in parallel, concatenate the partial results, then
// run an outer C4 reduction over the merged frame and finalize each
// aggregate (§4.5's partial/outer rewrite, consumed from plan).
func Execute(frame *column.Frame, keyName string, plan *planner.Plan, workers int, seed rowhash.Seed) (*column.Frame, error) {
	if workers < 1 {
		workers = 1
	}
	keyCol, ok := frame.Column(keyName)
	if !ok {
		return nil, fmt.Errorf("partitioned: no such key column %q", keyName)
	}
	shards := shardIndices(frame.Height(), workers)

	partials := make([]*column.Frame, len(shards))
	fns := make([]func(), len(shards))
	errs := make([]error, len(shards))
	for i, idx := range shards {
		i, idx := i, idx
		fns[i] = func() {
			pf, err := partialReduce(frame, keyName, idx, plan.Partial, seed)
			partials[i], errs[i] = pf, err
		}
	}
	workerpool.Run(fns)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged, err := column.ConcatFrames(partials...)
	if err != nil {
		return nil, err
	}
	debugDump(merged)

	mergedKey, ok := merged.Column(keyName)
	if !ok {
		return nil, fmt.Errorf("partitioned: merged frame missing key column %q", keyName)
	}
	outerGroups, err := groupby.Discover([]column.Column{mergedKey}, groupby.Options{Seed: seed})
	if err != nil {
		return nil, err
	}
	outKey := mergedKey.Take(outerGroups.Firsts()).WithName(keyName)

	outerResults := make(map[string]column.Column, len(plan.Outer))
	for _, a := range plan.Outer {
		value, ok := merged.Column(a.Input)
		if !ok {
			return nil, fmt.Errorf("partitioned: merged frame missing column %q", a.Input)
		}
		col, ok, err := aggkernel.Reduce(a.Kernel, a.Input, value, outerGroups, a.Q)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &column.UnsupportedAggregationError{Token: a.Kernel.Token(), Dtype: value.Dtype().String()}
		}
		outerResults[a.Output] = col.WithName(a.Output)
	}

	finalCols := make([]column.Column, 0, len(plan.Finalize)+1)
	finalCols = append(finalCols, outKey)
	for _, f := range plan.Finalize {
		switch f.Kind {
		case planner.FinalizeRename:
			col, ok := outerResults[f.Col]
			if !ok {
				return nil, fmt.Errorf("partitioned: missing outer result %q", f.Col)
			}
			finalCols = append(finalCols, col.WithName(f.Output))
		case planner.FinalizeMean:
			sumCol, ok := outerResults[f.Sum]
			if !ok {
				return nil, fmt.Errorf("partitioned: missing outer sum %q", f.Sum)
			}
			cntCol, ok := outerResults[f.Count]
			if !ok {
				return nil, fmt.Errorf("partitioned: missing outer count %q", f.Count)
			}
			finalCols = append(finalCols, finalizeMean(sumCol, cntCol, f.Output))
		case planner.FinalizeListConcat:
			raw, ok := merged.Column(f.Col)
			if !ok {
				return nil, fmt.Errorf("partitioned: missing partial list column %q", f.Col)
			}
			col, err := concatGroupedLists(raw, outerGroups, f.Output)
			if err != nil {
				return nil, err
			}
			finalCols = append(finalCols, col)
		default:
			return nil, fmt.Errorf("partitioned: unknown finalize kind %d", f.Kind)
		}
	}
	return column.NewFrame(finalCols...)
}

// shardIndices splits [0, n) into up to workers row-contiguous pieces.
func shardIndices(n, workers int) [][]uint32 {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	base := n / workers
	rem := n % workers
	shards := make([][]uint32, 0, workers)
	start := 0
	for t := 0; t < workers; t++ {
		size := base
		if t < rem {
			size++
		}
		if size == 0 {
			continue
		}
		idx := make([]uint32, size)
		for i := range idx {
			idx[i] = uint32(start + i)
		}
		shards = append(shards, idx)
		start += size
	}
	return shards
}

func partialReduce(frame *column.Frame, keyName string, rows []uint32, partial []planner.AggSpec, seed rowhash.Seed) (*column.Frame, error) {
	shard := frame.Take(rows)
	key, ok := shard.Column(keyName)
	if !ok {
		return nil, fmt.Errorf("partitioned: shard missing key column %q", keyName)
	}
	groups, err := groupby.Discover([]column.Column{key}, groupby.Options{Seed: seed})
	if err != nil {
		return nil, err
	}
	cols := make([]column.Column, 0, len(partial)+1)
	cols = append(cols, key.Take(groups.Firsts()).WithName(keyName))
	for _, a := range partial {
		value, ok := shard.Column(a.Input)
		if !ok {
			return nil, fmt.Errorf("partitioned: shard missing column %q", a.Input)
		}
		col, ok, err := aggkernel.Reduce(a.Kernel, a.Input, value, groups, a.Q)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &column.UnsupportedAggregationError{Token: a.Kernel.Token(), Dtype: value.Dtype().String()}
		}
		cols = append(cols, col.WithName(a.Output))
	}
	return column.NewFrame(cols...)
}

func finalizeMean(sumCol, cntCol column.Column, output string) column.Column {
	n := sumCol.Len()
	out := make([]float64, n)
	valid := column.NewValidity(n)
	for i := 0; i < n; i++ {
		count := float64Of(cntCol, i)
		if count == 0 {
			valid.Set(i, false)
			continue
		}
		out[i] = float64Of(sumCol, i) / count
	}
	return column.NewFloat64Column(output, out, valid)
}

func float64Of(c column.Column, row int) float64 {
	switch v := c.(type) {
	case column.Float64At:
		return v.Float64At(row)
	case column.Int64At:
		return float64(v.Int64At(row))
	default:
		return 0
	}
}
