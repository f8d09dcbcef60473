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
	"sort"
	"testing"
)

// S4 — null handling in mean: nulls are excluded from both the sum
// and the count, not treated as zero.
func TestS4NullHandlingInMean(t *testing.T) {
	a := stringCol(t, "a", []string{"a", "a", "a", "b", "b"})
	valid := NewValidity(5)
	valid.Set(2, false)
	valid.Set(3, false)
	b := NewIntColumn("b", DtypeInt64, []int64{1, 2, 0, 0, 1}, valid)
	frame, err := NewFrame(a, b)
	if err != nil {
		t.Fatal(err)
	}
	session, err := frame.GroupBy([]string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := session.Select("b").Mean()
	if err != nil {
		t.Fatal(err)
	}
	acol := mustStringCol(t, out, "a")
	mcol := mustFloat64(t, out, "b_mean")
	got := map[string]float64{}
	for i := 0; i < out.Height(); i++ {
		got[acol.Values()[i]] = mcol.Values()[i]
	}
	if got["a"] != 1.5 {
		t.Errorf("mean(a) = %v, want 1.5", got["a"])
	}
	if got["b"] != 1.0 {
		t.Errorf("mean(b) = %v, want 1.0", got["b"])
	}
}

// S6 — apply identity: applying the identity function to every group
// and reassembling reproduces the original rows (up to group order).
func TestS6ApplyIdentity(t *testing.T) {
	a := int64Col(t, "a", []int64{1, 1, 2, 2, 2})
	b := int64Col(t, "b", []int64{1, 2, 3, 4, 5})
	frame, err := NewFrame(a, b)
	if err != nil {
		t.Fatal(err)
	}
	session, err := frame.GroupBy([]string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := session.Apply(func(sub *Frame) (*Frame, error) { return sub, nil })
	if err != nil {
		t.Fatal(err)
	}
	if out.Height() != 5 {
		t.Fatalf("height = %d, want 5", out.Height())
	}
	bcol := mustInt64(t, out, "b")
	got := append([]int64(nil), bcol.Values()...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []int64{1, 2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDropNulls(t *testing.T) {
	valid := NewValidity(4)
	valid.Set(3, false)
	key := NewStringColumn("k", []string{"a", "a", "b", "x"}, valid)
	val := int64Col(t, "v", []int64{1, 2, 3, 4})
	frame, err := NewFrame(key, val)
	if err != nil {
		t.Fatal(err)
	}
	session, err := frame.GroupBy([]string{"k"})
	if err != nil {
		t.Fatal(err)
	}
	withNulls, err := session.Select("v").Sum()
	if err != nil {
		t.Fatal(err)
	}
	if withNulls.Height() != 3 {
		t.Fatalf("height = %d, want 3 (a, b, null)", withNulls.Height())
	}

	dropped, err := session.DropNulls(true).Select("v").Sum()
	if err != nil {
		t.Fatal(err)
	}
	if dropped.Height() != 2 {
		t.Fatalf("height = %d, want 2 (a, b only)", dropped.Height())
	}
}

func TestAggMultipleKernelsOneColumn(t *testing.T) {
	key := stringCol(t, "k", []string{"a", "a", "b"})
	val := int64Col(t, "v", []int64{1, 2, 3})
	frame, err := NewFrame(key, val)
	if err != nil {
		t.Fatal(err)
	}
	session, err := frame.GroupBy([]string{"k"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := session.Agg([]AggRequest{{Column: "v", Methods: []string{"sum", "count"}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.Column("v_sum"); !ok {
		t.Error("missing v_sum")
	}
	if _, ok := out.Column("v_count"); !ok {
		t.Error("missing v_count")
	}
}

func TestAggUnknownTokenFails(t *testing.T) {
	key := stringCol(t, "k", []string{"a", "b"})
	val := int64Col(t, "v", []int64{1, 2})
	frame, err := NewFrame(key, val)
	if err != nil {
		t.Fatal(err)
	}
	session, err := frame.GroupBy([]string{"k"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = session.Agg([]AggRequest{{Column: "v", Methods: []string{"bogus"}}})
	if err == nil {
		t.Fatal("expected UnsupportedAggregationError")
	}
	if _, ok := err.(*UnsupportedAggregationError); !ok {
		t.Fatalf("got %T, want *UnsupportedAggregationError", err)
	}
}

func TestGroupsKernel(t *testing.T) {
	key := stringCol(t, "k", []string{"a", "a", "b"})
	val := int64Col(t, "v", []int64{1, 2, 3})
	frame, err := NewFrame(key, val)
	if err != nil {
		t.Fatal(err)
	}
	session, err := frame.GroupBy([]string{"k"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := session.Groups()
	if err != nil {
		t.Fatal(err)
	}
	if out.Height() != 2 {
		t.Fatalf("height = %d, want 2", out.Height())
	}
	if _, ok := out.Column("groups"); !ok {
		t.Fatal("missing groups column")
	}
}

// Invariant 1: partition exhaustiveness — every group's member row
// indices, concatenated, form a permutation of [0, height).
func TestPropertyPartitionExhaustiveness(t *testing.T) {
	key := stringCol(t, "k", []string{"a", "b", "a", "c", "b", "a"})
	frame, err := NewFrame(key)
	if err != nil {
		t.Fatal(err)
	}
	session, err := frame.GroupBy([]string{"k"})
	if err != nil {
		t.Fatal(err)
	}
	groups := session.GetGroups()
	seen := make([]bool, frame.Height())
	total := 0
	for g := 0; g < groups.Len(); g++ {
		for _, m := range groups.Members(g) {
			if seen[m] {
				t.Fatalf("row %d seen twice", m)
			}
			seen[m] = true
			total++
		}
	}
	if total != frame.Height() {
		t.Fatalf("covered %d rows, want %d", total, frame.Height())
	}
	for i, s := range seen {
		if !s {
			t.Fatalf("row %d never covered", i)
		}
	}
}

// Invariant 6: count associativity — the sum of per-group counts
// equals the frame's height.
func TestPropertyCountAssociativity(t *testing.T) {
	key := stringCol(t, "k", []string{"a", "b", "a", "c", "b", "a", "c"})
	val := int64Col(t, "v", []int64{1, 2, 3, 4, 5, 6, 7})
	frame, err := NewFrame(key, val)
	if err != nil {
		t.Fatal(err)
	}
	session, err := frame.GroupBy([]string{"k"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := session.Select("v").Count()
	if err != nil {
		t.Fatal(err)
	}
	counts := mustUint32(t, out, "v_count")
	var total uint32
	for _, c := range counts.Values() {
		total += c
	}
	if int(total) != frame.Height() {
		t.Fatalf("sum of counts = %d, want %d", total, frame.Height())
	}
}

func mustStringCol(t *testing.T, f *Frame, name string) *StringColumn {
	t.Helper()
	c, ok := f.Column(name)
	if !ok {
		t.Fatalf("missing column %q", name)
	}
	sc, ok := c.(*StringColumn)
	if !ok {
		t.Fatalf("column %q is %T, not *StringColumn", name, c)
	}
	return sc
}

func mustUint32(t *testing.T, f *Frame, name string) *IntColumn[uint32] {
	t.Helper()
	c, ok := f.Column(name)
	if !ok {
		t.Fatalf("missing column %q", name)
	}
	ic, ok := c.(*IntColumn[uint32])
	if !ok {
		t.Fatalf("column %q is %T, not *IntColumn[uint32]", name, c)
	}
	return ic
}
