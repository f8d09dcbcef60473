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

import "github.com/FlorianWilhelm/polars/internal/column"

// Frame is an ordered, immutable set of equal-length named columns —
// the external collaborator this engine groups and aggregates. Unlike
// Column, Frame cannot be a type alias of internal/column.Frame: it
// needs root-level methods (GroupBy, GroupByWithSeries) that Go
// forbids attaching to a type from outside its declaring package, so
// Frame wraps *column.Frame by composition instead.
type Frame struct {
	inner *column.Frame
}

// NewFrame builds a Frame from cols, all of which must share the same
// length and have unique names.
func NewFrame(cols ...Column) (*Frame, error) {
	inner, err := column.NewFrame(cols...)
	if err != nil {
		return nil, err
	}
	return &Frame{inner: inner}, nil
}

func wrapFrame(inner *column.Frame) *Frame { return &Frame{inner: inner} }

// Height is the Frame's row count.
func (f *Frame) Height() int { return f.inner.Height() }

// Width is the Frame's column count.
func (f *Frame) Width() int { return f.inner.Width() }

// Columns returns the Frame's columns in order. The returned slice
// must not be mutated.
func (f *Frame) Columns() []Column { return f.inner.Columns() }

// Column returns the named column, or (nil, false) if absent.
func (f *Frame) Column(name string) (Column, bool) { return f.inner.Column(name) }

// Names returns the Frame's column names in order.
func (f *Frame) Names() []string { return f.inner.Names() }

// Take projects the Frame to the rows at the given indices.
func (f *Frame) Take(indices []uint32) *Frame { return wrapFrame(f.inner.Take(indices)) }

// WithColumns returns a new Frame with extra appended after f's
// existing columns. extra must share f's height.
func (f *Frame) WithColumns(extra ...Column) (*Frame, error) {
	inner, err := f.inner.WithColumns(extra...)
	if err != nil {
		return nil, err
	}
	return wrapFrame(inner), nil
}

// Select returns a new Frame containing only the named columns, in
// the order requested.
func (f *Frame) Select(names []string) (*Frame, error) {
	inner, err := f.inner.Select(names)
	if err != nil {
		return nil, err
	}
	return wrapFrame(inner), nil
}

// ConcatFrames vertically concatenates frames that share an identical
// schema (column names, order, and dtype).
func ConcatFrames(frames ...*Frame) (*Frame, error) {
	inners := make([]*column.Frame, len(frames))
	for i, fr := range frames {
		inners[i] = fr.inner
	}
	inner, err := column.ConcatFrames(inners...)
	if err != nil {
		return nil, err
	}
	return wrapFrame(inner), nil
}
