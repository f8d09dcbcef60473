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

package aggkernel

import (
	"sort"
	"testing"

	"github.com/FlorianWilhelm/polars/internal/column"
	"github.com/FlorianWilhelm/polars/internal/groupby"
	"github.com/FlorianWilhelm/polars/internal/rowhash"
)

// two groups: {0,1,2} -> values 1,2,3 and {3,4} -> values 10,20
func twoGroups(t *testing.T) *groupby.GroupIndex {
	t.Helper()
	key := column.NewIntColumn("k", column.DtypeInt64, []int64{0, 0, 0, 1, 1}, nil)
	g, err := groupby.Discover([]column.Column{key}, groupby.Options{Seed: rowhash.NewSeed()})
	if err != nil {
		t.Fatal(err)
	}
	g.StableSort()
	return g
}

func TestTokensSortedAndRoundTrip(t *testing.T) {
	toks := Tokens()
	sorted := append([]string(nil), toks...)
	sort.Strings(sorted)
	for i := range toks {
		if toks[i] != sorted[i] {
			t.Fatalf("Tokens() not sorted: %v", toks)
		}
	}
	for _, tok := range toks {
		k, ok := ParseToken(tok)
		if !ok {
			t.Fatalf("ParseToken(%q) failed for a token Tokens() reported", tok)
		}
		if k.Token() != tok {
			t.Fatalf("Token() round-trip mismatch: %q -> %d -> %q", tok, k, k.Token())
		}
	}
}

func TestParseTokenUnknown(t *testing.T) {
	if _, ok := ParseToken("bogus"); ok {
		t.Fatal("ParseToken(\"bogus\") = true, want false")
	}
}

func TestOutputNameFormatting(t *testing.T) {
	if got := OutputName("x", Sum, 0); got != "x_sum" {
		t.Errorf("OutputName(sum) = %q, want x_sum", got)
	}
	if got := OutputName("x", Groups, 0); got != "groups" {
		t.Errorf("OutputName(groups) = %q, want groups", got)
	}
	if got := OutputName("x", Quantile, 0.9); got != "x_quantile_0.90" {
		t.Errorf("OutputName(quantile) = %q, want x_quantile_0.90", got)
	}
}

func TestReduceSumInt64(t *testing.T) {
	g := twoGroups(t)
	val := column.NewIntColumn("v", column.DtypeInt64, []int64{1, 2, 3, 10, 20}, nil)
	out, ok, err := Reduce(Sum, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatalf("Reduce(Sum) = (%v, %v, %v)", out, ok, err)
	}
	sums := out.(*column.IntColumn[int64]).Values()
	if sums[0] != 6 || sums[1] != 30 {
		t.Fatalf("got sums %v, want [6 30]", sums)
	}
}

func TestReduceSumSkipsNulls(t *testing.T) {
	g := twoGroups(t)
	valid := column.NewValidity(5)
	valid.Set(0, false)
	val := column.NewIntColumn("v", column.DtypeInt64, []int64{100, 2, 3, 10, 20}, valid)
	out, ok, err := Reduce(Sum, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	sums := out.(*column.IntColumn[int64]).Values()
	if sums[0] != 5 {
		t.Fatalf("null row counted into sum: got %d, want 5", sums[0])
	}
}

func TestReduceMinMax(t *testing.T) {
	g := twoGroups(t)
	val := column.NewIntColumn("v", column.DtypeInt64, []int64{5, 1, 3, 20, 10}, nil)
	minOut, ok, err := Reduce(Min, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	maxOut, ok, err := Reduce(Max, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	mins := minOut.(*column.IntColumn[int64]).Values()
	maxs := maxOut.(*column.IntColumn[int64]).Values()
	if mins[0] != 1 || mins[1] != 10 {
		t.Fatalf("mins = %v, want [1 10]", mins)
	}
	if maxs[0] != 5 || maxs[1] != 20 {
		t.Fatalf("maxs = %v, want [5 20]", maxs)
	}
}

func TestReduceMeanAllNullGroupIsNull(t *testing.T) {
	key := column.NewIntColumn("k", column.DtypeInt64, []int64{0, 0}, nil)
	g, err := groupby.Discover([]column.Column{key}, groupby.Options{Seed: rowhash.NewSeed()})
	if err != nil {
		t.Fatal(err)
	}
	valid := column.NewValidity(2)
	valid.Set(0, false)
	valid.Set(1, false)
	val := column.NewIntColumn("v", column.DtypeInt64, []int64{1, 2}, valid)
	out, ok, err := Reduce(Mean, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	fc := out.(*column.Float64Column)
	if fc.Valid(0) {
		t.Fatal("all-null group produced a valid mean")
	}
}

func TestReduceCount(t *testing.T) {
	g := twoGroups(t)
	valid := column.NewValidity(5)
	valid.Set(1, false)
	val := column.NewIntColumn("v", column.DtypeInt64, []int64{1, 2, 3, 10, 20}, valid)
	countOut, ok, err := Reduce(Count, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	validOut, ok, err := Reduce(CountValid, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	counts := countOut.(*column.IntColumn[uint32]).Values()
	valids := validOut.(*column.IntColumn[uint32]).Values()
	if counts[0] != 3 || counts[1] != 2 {
		t.Fatalf("counts = %v, want [3 2]", counts)
	}
	if valids[0] != 2 || valids[1] != 2 {
		t.Fatalf("count_valid = %v, want [2 2]", valids)
	}
}

func TestReduceQuantileNearestRank(t *testing.T) {
	key := column.NewIntColumn("k", column.DtypeInt64, []int64{0, 0, 0, 0}, nil)
	g, err := groupby.Discover([]column.Column{key}, groupby.Options{Seed: rowhash.NewSeed()})
	if err != nil {
		t.Fatal(err)
	}
	val := column.NewFloat64Column("v", []float64{1, 2, 3, 4}, nil)
	out, ok, err := Reduce(Median, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	median := out.(*column.Float64Column).Values()[0]
	if median != 2 {
		t.Fatalf("median of [1 2 3 4] = %v, want 2 (nearest-rank, lower tie)", median)
	}
}

func TestReduceQuantileOutOfRange(t *testing.T) {
	g := twoGroups(t)
	val := column.NewFloat64Column("v", []float64{1, 2, 3, 4, 5}, nil)
	_, _, err := Reduce(Quantile, "v", val, g, 1.5)
	if err == nil {
		t.Fatal("expected a ValueError for q > 1")
	}
	if _, ok := err.(*column.ValueError); !ok {
		t.Fatalf("got %T, want *column.ValueError", err)
	}
}

func TestReduceNUniqueCountsNullAsOne(t *testing.T) {
	key := column.NewIntColumn("k", column.DtypeInt64, []int64{0, 0, 0, 0, 0}, nil)
	g, err := groupby.Discover([]column.Column{key}, groupby.Options{Seed: rowhash.NewSeed()})
	if err != nil {
		t.Fatal(err)
	}
	valid := column.NewValidity(5)
	valid.Set(4, false)
	val := column.NewIntColumn("v", column.DtypeInt64, []int64{1, 1, 2, 2, 0}, valid)
	out, ok, err := Reduce(NUnique, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	n := out.(*column.IntColumn[uint32]).Values()[0]
	if n != 3 {
		t.Fatalf("n_unique = %d, want 3 (1, 2, null)", n)
	}
}

func TestReduceFirstLast(t *testing.T) {
	g := twoGroups(t)
	val := column.NewIntColumn("v", column.DtypeInt64, []int64{1, 2, 3, 10, 20}, nil)
	firstOut, ok, err := Reduce(First, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	lastOut, ok, err := Reduce(Last, "v", val, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	firsts := firstOut.(*column.IntColumn[int64]).Values()
	lasts := lastOut.(*column.IntColumn[int64]).Values()
	if firsts[0] != 1 || firsts[1] != 10 {
		t.Fatalf("first = %v, want [1 10]", firsts)
	}
	if lasts[0] != 3 || lasts[1] != 20 {
		t.Fatalf("last = %v, want [3 20]", lasts)
	}
}

func TestReduceGroupsIgnoresValueAndName(t *testing.T) {
	g := twoGroups(t)
	out, ok, err := Reduce(Groups, "", nil, g, 0)
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	if out.Name() != "groups" {
		t.Fatalf("groups kernel output name = %q, want groups", out.Name())
	}
	if out.Len() != 2 {
		t.Fatalf("groups kernel output length = %d, want 2", out.Len())
	}
}
