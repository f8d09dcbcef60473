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

package column

import "fmt"

// Frame is an ordered, immutable set of equal-length named columns.
// Mutation happens through construction of a new Frame.
type Frame struct {
	cols  []Column
	index map[string]int
}

// NewFrame builds a Frame from columns, all of which must share the
// same length and have unique names.
func NewFrame(cols ...Column) (*Frame, error) {
	idx := make(map[string]int, len(cols))
	var height = -1
	for i, c := range cols {
		if height == -1 {
			height = c.Len()
		} else if c.Len() != height {
			return nil, &ShapeMismatchError{Left: height, Right: c.Len(), Context: "frame construction"}
		}
		if _, dup := idx[c.Name()]; dup {
			return nil, fmt.Errorf("column: duplicate column name %q", c.Name())
		}
		idx[c.Name()] = i
	}
	return &Frame{cols: cols, index: idx}, nil
}

// Height is the Frame's row count (0 for a zero-width Frame).
func (f *Frame) Height() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// Width is the Frame's column count.
func (f *Frame) Width() int { return len(f.cols) }

// Columns returns the Frame's columns in order. The returned slice
// must not be mutated.
func (f *Frame) Columns() []Column { return f.cols }

// Column returns the named column, or (nil, false) if absent.
func (f *Frame) Column(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Names returns the Frame's column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	return names
}

// Take projects the Frame to the rows at the given indices, applying
// Take to every column.
func (f *Frame) Take(indices []uint32) *Frame {
	out := make([]Column, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Take(indices)
	}
	fr, err := NewFrame(out...)
	if err != nil {
		// columns share the parent Frame's schema invariants, so
		// this can only fail if Take implementations are broken.
		panic(err)
	}
	return fr
}

// WithColumns returns a new Frame with extra appended after f's
// existing columns. extra must share f's height.
func (f *Frame) WithColumns(extra ...Column) (*Frame, error) {
	cols := make([]Column, 0, len(f.cols)+len(extra))
	cols = append(cols, f.cols...)
	cols = append(cols, extra...)
	return NewFrame(cols...)
}

// Select returns a new Frame containing only the named columns, in
// the order requested.
func (f *Frame) Select(names []string) (*Frame, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := f.Column(n)
		if !ok {
			return nil, fmt.Errorf("column: no such column %q", n)
		}
		cols = append(cols, c)
	}
	return NewFrame(cols...)
}

// ConcatFrames vertically concatenates frames that share an identical
// schema (column names, order, and dtype). Used by the partitioned
// executor (§4.4 step 3) to merge per-shard partial results, and by
// GroupSession.Apply to reassemble a UDF's per-group outputs.
func ConcatFrames(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return NewFrame()
	}
	first := frames[0]
	names := first.Names()
	for _, fr := range frames[1:] {
		if fr.Width() != first.Width() {
			return nil, &SchemaMismatchError{Detail: fmt.Sprintf("width %d != %d", fr.Width(), first.Width())}
		}
		for i, n := range fr.Names() {
			if n != names[i] {
				return nil, &SchemaMismatchError{Detail: fmt.Sprintf("column %d named %q, expected %q", i, n, names[i])}
			}
			if fr.cols[i].Dtype() != first.cols[i].Dtype() {
				return nil, &SchemaMismatchError{Detail: fmt.Sprintf("column %q dtype %s != %s", n, fr.cols[i].Dtype(), first.cols[i].Dtype())}
			}
		}
	}
	out := make([]Column, first.Width())
	for i := range out {
		cols := make([]Column, len(frames))
		for fi, fr := range frames {
			cols[fi] = fr.cols[i]
		}
		cat, err := concatColumns(names[i], cols)
		if err != nil {
			return nil, err
		}
		out[i] = cat
	}
	return NewFrame(out...)
}

func concatColumns(name string, cols []Column) (Column, error) {
	total := 0
	for _, c := range cols {
		total += c.Len()
	}
	indices := make([]uint32, 0, total)
	// Build a synthetic take over a virtual concatenation: we can't
	// Take across columns directly, so delegate to each dtype's own
	// concat via repeated Take isn't possible either (indices are
	// column-local). Concatenation is therefore implemented per-dtype
	// below using a type switch on the first column.
	_ = indices
	switch first := cols[0].(type) {
	case *IntColumn[int8]:
		return concatInt(name, first.dtype, cols, func(c Column) *IntColumn[int8] { return c.(*IntColumn[int8]) })
	case *IntColumn[int16]:
		return concatInt(name, first.dtype, cols, func(c Column) *IntColumn[int16] { return c.(*IntColumn[int16]) })
	case *IntColumn[int32]:
		return concatInt(name, first.dtype, cols, func(c Column) *IntColumn[int32] { return c.(*IntColumn[int32]) })
	case *IntColumn[int64]:
		return concatInt(name, first.dtype, cols, func(c Column) *IntColumn[int64] { return c.(*IntColumn[int64]) })
	case *IntColumn[uint8]:
		return concatInt(name, first.dtype, cols, func(c Column) *IntColumn[uint8] { return c.(*IntColumn[uint8]) })
	case *IntColumn[uint16]:
		return concatInt(name, first.dtype, cols, func(c Column) *IntColumn[uint16] { return c.(*IntColumn[uint16]) })
	case *IntColumn[uint32]:
		return concatInt(name, first.dtype, cols, func(c Column) *IntColumn[uint32] { return c.(*IntColumn[uint32]) })
	case *IntColumn[uint64]:
		return concatInt(name, first.dtype, cols, func(c Column) *IntColumn[uint64] { return c.(*IntColumn[uint64]) })
	case *CategoricalColumn:
		codes := make([]uint32, 0, total)
		var valid Validity
		hasNull := false
		for _, c := range cols {
			cc := c.(*CategoricalColumn)
			if cc.NullCount() > 0 {
				hasNull = true
			}
		}
		if hasNull {
			valid = NewValidity(total)
		}
		row := 0
		for _, c := range cols {
			cc := c.(*CategoricalColumn)
			for i := 0; i < cc.Len(); i++ {
				codes = append(codes, cc.Values()[i])
				if valid != nil {
					valid.Set(row, cc.Valid(i))
				}
				row++
			}
		}
		return NewCategoricalColumn(name, codes, valid, first.dict), nil
	case *Float32Column:
		values := make([]float32, 0, total)
		var valid Validity
		if anyNulls(cols) {
			valid = NewValidity(total)
		}
		row := 0
		for _, c := range cols {
			fc := c.(*Float32Column)
			for i := 0; i < fc.Len(); i++ {
				values = append(values, fc.values[i])
				if valid != nil {
					valid.Set(row, fc.Valid(i))
				}
				row++
			}
		}
		return NewFloat32Column(name, values, valid), nil
	case *Float64Column:
		values := make([]float64, 0, total)
		var valid Validity
		if anyNulls(cols) {
			valid = NewValidity(total)
		}
		row := 0
		for _, c := range cols {
			fc := c.(*Float64Column)
			for i := 0; i < fc.Len(); i++ {
				values = append(values, fc.values[i])
				if valid != nil {
					valid.Set(row, fc.Valid(i))
				}
				row++
			}
		}
		return NewFloat64Column(name, values, valid), nil
	case *BoolColumn:
		values := make([]bool, 0, total)
		var valid Validity
		if anyNulls(cols) {
			valid = NewValidity(total)
		}
		row := 0
		for _, c := range cols {
			bc := c.(*BoolColumn)
			for i := 0; i < bc.Len(); i++ {
				values = append(values, bc.values[i])
				if valid != nil {
					valid.Set(row, bc.Valid(i))
				}
				row++
			}
		}
		return NewBoolColumn(name, values, valid), nil
	case *StringColumn:
		values := make([]string, 0, total)
		var valid Validity
		if anyNulls(cols) {
			valid = NewValidity(total)
		}
		row := 0
		for _, c := range cols {
			sc := c.(*StringColumn)
			for i := 0; i < sc.Len(); i++ {
				values = append(values, sc.values[i])
				if valid != nil {
					valid.Set(row, sc.Valid(i))
				}
				row++
			}
		}
		return NewStringColumn(name, values, valid), nil
	default:
		return nil, fmt.Errorf("column: concatenation unsupported for dtype %s", cols[0].Dtype())
	}
}

func anyNulls(cols []Column) bool {
	for _, c := range cols {
		if c.NullCount() > 0 {
			return true
		}
	}
	return false
}

func concatInt[T Integer](name string, dtype Dtype, cols []Column, as func(Column) *IntColumn[T]) (Column, error) {
	total := 0
	for _, c := range cols {
		total += c.Len()
	}
	values := make([]T, 0, total)
	var valid Validity
	if anyNulls(cols) {
		valid = NewValidity(total)
	}
	row := 0
	for _, c := range cols {
		ic := as(c)
		for i := 0; i < ic.Len(); i++ {
			values = append(values, ic.values[i])
			if valid != nil {
				valid.Set(row, ic.Valid(i))
			}
			row++
		}
	}
	return NewIntColumn(name, dtype, values, valid), nil
}
