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

	"github.com/google/uuid"

	"github.com/FlorianWilhelm/polars/internal/aggkernel"
	"github.com/FlorianWilhelm/polars/internal/groupby"
	"github.com/FlorianWilhelm/polars/internal/partitioned"
	"github.com/FlorianWilhelm/polars/internal/planner"
	"github.com/FlorianWilhelm/polars/internal/rowhash"
	"github.com/FlorianWilhelm/polars/internal/workerpool"
)

// GroupIndex is the (first, members) partition of [0, height) into
// key-equivalence classes that backs a GroupSession (C2).
type GroupIndex = groupby.GroupIndex

// GroupSession is the value-type binding of C4: a Frame, the key
// columns it was grouped by, the discovered GroupIndex, an optional
// narrowed aggregation target set, and the seed that produced the
// GroupIndex (reused so any follow-on partitioned-path discovery
// agrees with the session's own group boundaries). A GroupSession
// never mutates its Frame; every method returns a new Frame or a new
// GroupSession.
type GroupSession struct {
	frame     *Frame
	keyNames  []string
	keyCols   []Column
	groups    *GroupIndex
	selected  []string
	dropNulls bool
	seed      rowhash.Seed
	id        uuid.UUID
}

// newGroupSession binds frame, keyCols and groups together, widening
// frame with any key column not already present by name so later
// column-name lookups (Keys, agg output, the partitioned path) always
// resolve. id is a fresh uuid.New() per session, used only to tag
// apply()'s parallel sub-frame invocations for log correlation.
func newGroupSession(frame *Frame, keyCols []Column, groups *GroupIndex, seed rowhash.Seed) (*GroupSession, error) {
	names := make([]string, len(keyCols))
	var extra []Column
	for i, kc := range keyCols {
		names[i] = kc.Name()
		if _, ok := frame.Column(kc.Name()); !ok {
			extra = append(extra, kc)
		}
	}
	if len(extra) > 0 {
		var err error
		frame, err = frame.WithColumns(extra...)
		if err != nil {
			return nil, err
		}
	}
	return &GroupSession{
		frame:    frame,
		keyNames: names,
		keyCols:  keyCols,
		groups:   groups,
		seed:     seed,
		id:       uuid.New(),
	}, nil
}

// Select narrows the aggregation target columns (§4.3). If never
// called, the implicit target is every column of the frame whose name
// doesn't appear among the key columns.
func (s *GroupSession) Select(cols ...string) *GroupSession {
	cp := *s
	cp.selected = append([]string(nil), cols...)
	return &cp
}

// DropNulls excludes the null-key group from every result Frame this
// session produces (a feature the source exposes but spec.md's G2
// default — grouping nulls together as their own group — doesn't).
// Off by default.
func (s *GroupSession) DropNulls(drop bool) *GroupSession {
	cp := *s
	cp.dropNulls = drop
	return &cp
}

// GetGroups returns the GroupIndex this session was bound to.
func (s *GroupSession) GetGroups() *GroupIndex { return s.groups }

// Keys projects the key columns to one row per group via
// first_row_index, using Take for direct indexed access — safe
// because G2 guarantees every first_row_index is in range.
func (s *GroupSession) Keys() (*Frame, error) {
	frame, err := NewFrame(s.keyProjection()...)
	if err != nil {
		return nil, err
	}
	return s.finalize(frame), nil
}

func (s *GroupSession) keyProjection() []Column {
	firsts := s.groups.Firsts()
	cols := make([]Column, len(s.keyCols))
	for i, k := range s.keyCols {
		cols[i] = k.Take(firsts)
	}
	return cols
}

// targets resolves the current aggregation target columns: Select's
// explicit list, or every frame column not among the key columns.
func (s *GroupSession) targets() ([]Column, error) {
	if s.selected != nil {
		cols := make([]Column, 0, len(s.selected))
		for _, name := range s.selected {
			c, ok := s.frame.Column(name)
			if !ok {
				return nil, fmt.Errorf("polars: no such column %q", name)
			}
			cols = append(cols, c)
		}
		return cols, nil
	}
	keySet := make(map[string]bool, len(s.keyNames))
	for _, k := range s.keyNames {
		keySet[k] = true
	}
	var cols []Column
	for _, c := range s.frame.Columns() {
		if !keySet[c.Name()] {
			cols = append(cols, c)
		}
	}
	return cols, nil
}

// finalize applies DropNulls to a result frame built over every group
// (key columns are always frame's first len(s.keyNames) columns, in
// order, across every method that builds one).
func (s *GroupSession) finalize(frame *Frame) *Frame {
	if !s.dropNulls {
		return frame
	}
	n := frame.Height()
	keep := make([]uint32, 0, n)
	for row := 0; row < n; row++ {
		nullKey := false
		for _, name := range s.keyNames {
			col, ok := frame.Column(name)
			if ok && !col.Valid(row) {
				nullKey = true
				break
			}
		}
		if !nullKey {
			keep = append(keep, uint32(row))
		}
	}
	return frame.Take(keep)
}

// aggRequest is one column/kernel pair normalized from either a
// convenience method (Min, Sum, ...) or an Agg call, the shape both
// the plain path and the §4.5 planner gate consume.
type aggRequest struct {
	Column string
	Kernel aggkernel.Kernel
	Q      float64
	Output string
}

func toAggSpecs(reqs []aggRequest) []planner.AggSpec {
	specs := make([]planner.AggSpec, len(reqs))
	for i, r := range reqs {
		specs[i] = planner.AggSpec{Input: r.Column, Kernel: r.Kernel, Q: r.Q, Output: r.Output}
	}
	return specs
}

// run is the §4.5 gate point shared by every kernel-producing method:
// with exactly one key column and at least one requested aggregate,
// try the planner's partial/outer rewrite and the partitioned
// executor (C5/C6) before falling back to the plain per-group reduce
// (C4). Every caller's result passes through finalize for DropNulls.
func (s *GroupSession) run(reqs []aggRequest) (*Frame, error) {
	if len(reqs) > 0 && len(s.keyCols) == 1 {
		pl := planner.New(1, false, toAggSpecs(reqs))
		if pl.Partitionable {
			run, err := partitioned.ShouldRun(s.keyCols[0], s.seed)
			if err != nil {
				return nil, err
			}
			if run {
				out, err := partitioned.Execute(s.frame.inner, s.keyCols[0].Name(), pl, workerpool.Workers(), s.seed)
				if err != nil {
					return nil, err
				}
				return s.finalize(wrapFrame(out)), nil
			}
		}
	}
	return s.runPlain(reqs)
}

func (s *GroupSession) runPlain(reqs []aggRequest) (*Frame, error) {
	cols := append([]Column{}, s.keyProjection()...)
	for _, r := range reqs {
		value, ok := s.frame.Column(r.Column)
		if !ok {
			return nil, fmt.Errorf("polars: no such column %q", r.Column)
		}
		col, ok, err := aggkernel.Reduce(r.Kernel, r.Column, value, s.groups, r.Q)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &UnsupportedAggregationError{Token: r.Kernel.Token(), Dtype: value.Dtype().String()}
		}
		cols = append(cols, col.WithName(r.Output))
	}
	frame, err := NewFrame(cols...)
	if err != nil {
		return nil, err
	}
	return s.finalize(frame), nil
}

// runKernel applies one kernel to every current target column,
// naming each output column per aggkernel.OutputName.
func (s *GroupSession) runKernel(k aggkernel.Kernel, q float64) (*Frame, error) {
	targets, err := s.targets()
	if err != nil {
		return nil, err
	}
	reqs := make([]aggRequest, len(targets))
	for i, t := range targets {
		reqs[i] = aggRequest{Column: t.Name(), Kernel: k, Q: q, Output: aggkernel.OutputName(t.Name(), k, q)}
	}
	return s.run(reqs)
}

func (s *GroupSession) Min() (*Frame, error)        { return s.runKernel(aggkernel.Min, 0) }
func (s *GroupSession) Max() (*Frame, error)        { return s.runKernel(aggkernel.Max, 0) }
func (s *GroupSession) Sum() (*Frame, error)        { return s.runKernel(aggkernel.Sum, 0) }
func (s *GroupSession) Mean() (*Frame, error)       { return s.runKernel(aggkernel.Mean, 0) }
func (s *GroupSession) Median() (*Frame, error)     { return s.runKernel(aggkernel.Median, 0) }
func (s *GroupSession) Var() (*Frame, error)        { return s.runKernel(aggkernel.Var, 0) }
func (s *GroupSession) Std() (*Frame, error)        { return s.runKernel(aggkernel.Std, 0) }
func (s *GroupSession) First() (*Frame, error)      { return s.runKernel(aggkernel.First, 0) }
func (s *GroupSession) Last() (*Frame, error)       { return s.runKernel(aggkernel.Last, 0) }
func (s *GroupSession) NUnique() (*Frame, error)    { return s.runKernel(aggkernel.NUnique, 0) }
func (s *GroupSession) Count() (*Frame, error)      { return s.runKernel(aggkernel.Count, 0) }
func (s *GroupSession) CountValid() (*Frame, error) { return s.runKernel(aggkernel.CountValid, 0) }

// AggList runs the list (concat-per-group) kernel over every current
// target column.
func (s *GroupSession) AggList() (*Frame, error) { return s.runKernel(aggkernel.List, 0) }

// Quantile runs the quantile kernel (q in [0, 1]; median is
// Quantile(0.5) under a dedicated name) over every current target
// column.
func (s *GroupSession) Quantile(q float64) (*Frame, error) {
	return s.runKernel(aggkernel.Quantile, q)
}

// Groups returns the key columns plus a "groups" column holding each
// group's member row indices (§4.2), ignoring Select's target set:
// groups() describes the partition itself, not any particular column.
func (s *GroupSession) Groups() (*Frame, error) {
	col, ok, err := aggkernel.Reduce(aggkernel.Groups, "", nil, s.groups, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &UnsupportedAggregationError{Token: aggkernel.Groups.Token()}
	}
	cols := append(append([]Column{}, s.keyProjection()...), col)
	frame, err := NewFrame(cols...)
	if err != nil {
		return nil, err
	}
	return s.finalize(frame), nil
}

// AggRequest names the kernel tokens to run over one column in a
// single Agg call.
type AggRequest struct {
	Column  string
	Methods []string
}

// Agg runs, for each AggRequest, every named kernel over that column
// in a single pass over the target set (§6). Unknown tokens, or tokens
// outside the set agg() accepts (quantile/list/groups are reached only
// through their own GroupSession methods), fail with
// UnsupportedAggregationError.
func (s *GroupSession) Agg(specs []AggRequest) (*Frame, error) {
	var reqs []aggRequest
	for _, spec := range specs {
		col, ok := s.frame.Column(spec.Column)
		if !ok {
			return nil, fmt.Errorf("polars: no such column %q", spec.Column)
		}
		for _, method := range spec.Methods {
			k, err := parseAggToken(method)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, aggRequest{Column: spec.Column, Kernel: k, Output: aggkernel.OutputName(col.Name(), k, 0)})
		}
	}
	return s.run(reqs)
}

// Apply partitions the frame into one sub-frame per group (via
// member_row_indices), runs udf on every sub-frame concurrently, and
// vertically concatenates the results (invariant U1: every returned
// frame must share udf's first result's schema, or SchemaMismatchError
// is returned). There is no separate re-chunking step to perform
// afterward: this engine's Frame has no physical-chunk concept for
// ConcatFrames to need collapsing.
func (s *GroupSession) Apply(udf func(*Frame) (*Frame, error)) (*Frame, error) {
	n := s.groups.Len()
	results := make([]*Frame, n)
	errs := make([]error, n)
	fns := make([]func(), n)
	for g := 0; g < n; g++ {
		g := g
		fns[g] = func() {
			sub := s.frame.Take(s.groups.Members(g))
			out, err := udf(sub)
			if err != nil {
				errs[g] = fmt.Errorf("polars: apply: session %s group %d: %w", s.id, g, err)
				return
			}
			results[g] = out
		}
	}
	workerpool.Run(fns)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return ConcatFrames(results...)
}
