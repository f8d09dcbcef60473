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
	"os"
	"sort"
	"testing"

	"github.com/FlorianWilhelm/polars/internal/config"
)

func intCol(t *testing.T, name string, dtype Dtype, values []int32) *IntColumn[int32] {
	t.Helper()
	return NewIntColumn(name, dtype, values, nil)
}

func int64Col(t *testing.T, name string, values []int64) *IntColumn[int64] {
	t.Helper()
	return NewIntColumn(name, DtypeInt64, values, nil)
}

func float64Col(t *testing.T, name string, values []float64) *Float64Column {
	t.Helper()
	return NewFloat64Column(name, values, nil)
}

func stringCol(t *testing.T, name string, values []string) *StringColumn {
	t.Helper()
	return NewStringColumn(name, values, nil)
}

// S1 — simple sum over dates. Dates are encoded as a date32-tagged
// int32 column (days since epoch, here just small integers standing
// in for 2020-08-21/22/23).
func TestS1SimpleSumOverDates(t *testing.T) {
	date := intCol(t, "date", DtypeDate32, []int32{21, 21, 22, 23, 22})
	temp := int64Col(t, "temp", []int64{20, 10, 7, 9, 1})
	frame, err := NewFrame(date, temp)
	if err != nil {
		t.Fatal(err)
	}

	session, err := frame.GroupBy([]string{"date"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := session.Select("temp").Sum()
	if err != nil {
		t.Fatal(err)
	}
	if out.Height() != 3 {
		t.Fatalf("height = %d, want 3", out.Height())
	}
	dcol := mustInt32(t, out, "date")
	scol := mustInt64(t, out, "temp_sum")
	got := map[int32]int64{}
	for i := 0; i < out.Height(); i++ {
		got[dcol.Values()[i]] = scol.Values()[i]
	}
	want := map[int32]int64{21: 30, 22: 8, 23: 9}
	for k, w := range want {
		if g := got[k]; g != w {
			t.Errorf("date %d: got sum %d, want %d", k, g, w)
		}
	}
}

// S2 — multi-key sum: twelve identical key columns grouped together,
// summing N. Four distinct key tuples (A, B, C, D); the repeated "A"
// rows must collapse into one group under G3 regardless of how many
// key columns carry it.
func TestS2MultiKeySum(t *testing.T) {
	g1 := []string{"A", "A", "B", "C", "D"}
	n := []int64{1, 2, 2, 4, 2}
	cols := make([]Column, 0, 13)
	for i := 0; i < 12; i++ {
		cols = append(cols, stringCol(t, fmt.Sprintf("g%d", i), append([]string(nil), g1...)))
	}
	cols = append(cols, int64Col(t, "n", n))
	frame, err := NewFrame(cols...)
	if err != nil {
		t.Fatal(err)
	}
	keyNames := make([]string, 12)
	for i, c := range cols[:12] {
		keyNames[i] = c.Name()
	}
	session, err := frame.GroupBy(keyNames)
	if err != nil {
		t.Fatal(err)
	}
	out, err := session.Select("n").Sum()
	if err != nil {
		t.Fatal(err)
	}
	if out.Height() != 4 {
		t.Fatalf("height = %d, want 4", out.Height())
	}
	sums := mustInt64(t, out, "n_sum").Values()
	got := append([]int64(nil), sums...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []int64{2, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got sums %v, want %v", got, want)
		}
	}
}

// S3 — float key equality is by raw bit pattern (F1): 1.0 and 1.0
// group together, producing three groups here.
func TestS3FloatKeyEqualityByBits(t *testing.T) {
	flt := float64Col(t, "flt", []float64{1.0, 1.0, 2.0, 2.0, 3.0})
	val := int64Col(t, "val", []int64{1, 1, 1, 1, 1})
	frame, err := NewFrame(flt, val)
	if err != nil {
		t.Fatal(err)
	}
	session, err := frame.GroupBy([]string{"flt"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := session.Select("val").Sum()
	if err != nil {
		t.Fatal(err)
	}
	if out.Height() != 3 {
		t.Fatalf("height = %d, want 3", out.Height())
	}
	fcol := mustFloat64(t, out, "flt")
	scol := mustInt64(t, out, "val_sum")
	got := map[float64]int64{}
	for i := 0; i < out.Height(); i++ {
		got[fcol.Values()[i]] = scol.Values()[i]
	}
	want := map[float64]int64{1.0: 2, 2.0: 2, 3.0: 1}
	for k, w := range want {
		if g := got[k]; g != w {
			t.Errorf("flt %v: got sum %d, want %d", k, g, w)
		}
	}
}

// S5 — partitioned executor equivalence with the cardinality gate:
// both NO_PARTITION=1 and unset must produce identical per-key sums.
func TestS5PartitionedPlainEquivalence(t *testing.T) {
	const n = 10000
	const categories = 20
	codes := make([]uint32, n)
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		codes[i] = uint32(i % categories)
		vals[i] = float64(i % 7)
	}
	dict := make([]string, categories)
	for i := range dict {
		dict[i] = string(rune('a' + i))
	}

	build := func() *Frame {
		key := NewCategoricalColumn("key", append([]uint32(nil), codes...), nil, dict)
		val := NewFloat64Column("val", append([]float64(nil), vals...), nil)
		frame, err := NewFrame(key, val)
		if err != nil {
			t.Fatal(err)
		}
		return frame
	}

	run := func() map[uint32]float64 {
		frame := build()
		session, err := frame.GroupBy([]string{"key"})
		if err != nil {
			t.Fatal(err)
		}
		out, err := session.Select("val").Sum()
		if err != nil {
			t.Fatal(err)
		}
		kcol := out.Columns()[0].(*CategoricalColumn)
		vcol := mustFloat64(t, out, "val_sum")
		got := make(map[uint32]float64, out.Height())
		for i := 0; i < out.Height(); i++ {
			got[kcol.Values()[i]] = vcol.Values()[i]
		}
		return got
	}

	os.Unsetenv("NO_PARTITION")
	config.Reset()
	baseline := run()

	os.Setenv("NO_PARTITION", "1")
	config.Reset()
	defer func() {
		os.Unsetenv("NO_PARTITION")
		config.Reset()
	}()
	plain := run()

	if len(baseline) != len(plain) {
		t.Fatalf("group count differs: %d vs %d", len(baseline), len(plain))
	}
	for k, v := range baseline {
		if p := plain[k]; p != v {
			t.Errorf("key %d: partitioned sum %v != plain sum %v", k, v, p)
		}
	}
}

func mustInt32(t *testing.T, f *Frame, name string) *IntColumn[int32] {
	t.Helper()
	c, ok := f.Column(name)
	if !ok {
		t.Fatalf("missing column %q", name)
	}
	ic, ok := c.(*IntColumn[int32])
	if !ok {
		t.Fatalf("column %q is %T, not *IntColumn[int32]", name, c)
	}
	return ic
}

func mustInt64(t *testing.T, f *Frame, name string) *IntColumn[int64] {
	t.Helper()
	c, ok := f.Column(name)
	if !ok {
		t.Fatalf("missing column %q", name)
	}
	ic, ok := c.(*IntColumn[int64])
	if !ok {
		t.Fatalf("column %q is %T, not *IntColumn[int64]", name, c)
	}
	return ic
}

func mustFloat64(t *testing.T, f *Frame, name string) *Float64Column {
	t.Helper()
	c, ok := f.Column(name)
	if !ok {
		t.Fatalf("missing column %q", name)
	}
	fc, ok := c.(*Float64Column)
	if !ok {
		t.Fatalf("column %q is %T, not *Float64Column", name, c)
	}
	return fc
}
