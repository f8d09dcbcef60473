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

// Package planner implements the physical-plan gate (C6): given a
// grouping key count, an optional per-group UDF, and the requested
// aggregations, it decides whether the partitioned executor (C5) can
// run instead of the plain group-by path (C4), and if so rewrites the
// aggregation list into the partial/outer kernel pairs C5 needs.
//
// This engine has no general expression tree over aggregate arguments
// (no SortBy/Filter/binary subexpressions, unlike sneller's plan/pir
// package, which this is grounded on): an AggSpec names exactly one
// input column and one kernel. The reference gate's "agg subtree
// contains SortBy or Filter" clause therefore can never trigger here —
// it's structurally unreachable rather than silently dropped, since
// there is no expression position for either to occupy.
package planner

import (
	"fmt"

	"github.com/FlorianWilhelm/polars/internal/aggkernel"
	"github.com/FlorianWilhelm/polars/internal/config"
)

// AggSpec names one requested aggregation: reduce the Input column
// with Kernel (Q is only meaningful for aggkernel.Quantile) and expose
// the result as Output.
type AggSpec struct {
	Input  string
	Kernel aggkernel.Kernel
	Q      float64
	Output string
}

// partitionableKernels is the decomposable set of §4.4: each has a
// partial kernel (run per shard) and an outer kernel (run on the
// merged partial frame) that together reproduce the plain result.
var partitionableKernels = map[aggkernel.Kernel]bool{
	aggkernel.Min:   true,
	aggkernel.Max:   true,
	aggkernel.Sum:   true,
	aggkernel.Mean:  true,
	aggkernel.First: true,
	aggkernel.Last:  true,
	aggkernel.List:  true,
}

// FinalizeKind describes how an outer-reduce result column becomes
// the user-facing output column.
type FinalizeKind int

const (
	// FinalizeRename: the outer kernel's output already has final
	// values; only the column name needs to change to Output.
	FinalizeRename FinalizeKind = iota
	// FinalizeMean: Output = outer sum column / outer count column.
	FinalizeMean
	// FinalizeListConcat: no outer kernel runs; the per-shard partial
	// lists in the merged frame are concatenated per final group into
	// a single list.
	FinalizeListConcat
)

// Finalize describes the step after C4's outer reduce that produces
// one user-facing output column.
type Finalize struct {
	Kind FinalizeKind
	// Col is the outer-reduce column to rename (FinalizeRename) or the
	// merged frame's partial list column to concatenate
	// (FinalizeListConcat).
	Col string
	// Sum and Count are the outer-reduce column names carrying the
	// partial sums and partial counts (FinalizeMean only).
	Sum, Count string
	Output     string
}

// Plan is the output of New: either "run the plain path" (Partitionable
// == false, every other field is zero) or the partial/outer rewrite
// C5 needs to run the partitioned path.
type Plan struct {
	Partitionable bool
	Partial       []AggSpec
	Outer         []AggSpec
	Finalize      []Finalize
}

// New runs the §4.5 gate and, when the request is partitionable,
// rewrites aggs into the partial/outer kernel pairs of §4.4's
// decomposability table.
//
//   - numKeys must be 1 (gate: "|keys| ≠ 1").
//   - hasApply reports whether a per-group UDF (GroupSession.Apply)
//     accompanies this request (gate: "apply is present").
//   - every agg must be in partitionableKernels (gate: "any agg is not
//     in the partitionable set").
func New(numKeys int, hasApply bool, aggs []AggSpec) *Plan {
	p := &Plan{Partitionable: numKeys == 1 && !hasApply}
	if p.Partitionable {
		for _, a := range aggs {
			if !partitionableKernels[a.Kernel] {
				p.Partitionable = false
				break
			}
		}
	}
	if !p.Partitionable {
		if config.Verbose() {
			fmt.Println("planner: run PLAIN HASH AGGREGATION")
		}
		return p
	}

	for _, a := range aggs {
		switch a.Kernel {
		case aggkernel.Mean:
			sumCol := a.Input + "_partial_sum"
			cntCol := a.Input + "_partial_count"
			p.Partial = append(p.Partial,
				AggSpec{Input: a.Input, Kernel: aggkernel.Sum, Output: sumCol},
				AggSpec{Input: a.Input, Kernel: aggkernel.CountValid, Output: cntCol},
			)
			p.Outer = append(p.Outer,
				AggSpec{Input: sumCol, Kernel: aggkernel.Sum, Output: sumCol},
				AggSpec{Input: cntCol, Kernel: aggkernel.Sum, Output: cntCol},
			)
			p.Finalize = append(p.Finalize, Finalize{
				Kind: FinalizeMean, Sum: sumCol, Count: cntCol, Output: a.Output,
			})
		case aggkernel.List:
			// No outer AggSpec: aggkernel.Reduce's List kernel expects a
			// plain scalar-dtype column, not a column of already-listed
			// values, so "outer: list (concat)" isn't a second kernel
			// application — it's a per-group concatenation of the
			// per-shard partial lists, which the partitioned executor
			// performs directly against the merged ListColumn (see
			// FinalizeListConcat).
			partial := a.Input + "_partial_list"
			p.Partial = append(p.Partial, AggSpec{Input: a.Input, Kernel: aggkernel.List, Output: partial})
			p.Finalize = append(p.Finalize, Finalize{Kind: FinalizeListConcat, Col: partial, Output: a.Output})
		default:
			partial := a.Input + "_" + a.Kernel.Token()
			p.Partial = append(p.Partial, AggSpec{Input: a.Input, Kernel: a.Kernel, Output: partial})
			p.Outer = append(p.Outer, AggSpec{Input: partial, Kernel: a.Kernel, Output: partial})
			p.Finalize = append(p.Finalize, Finalize{Kind: FinalizeRename, Col: partial, Output: a.Output})
		}
	}
	if config.Verbose() {
		fmt.Printf("planner: run PARTITIONED HASH AGGREGATION (%d aggs)\n", len(aggs))
	}
	return p
}
