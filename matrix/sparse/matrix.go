// Copyright 2024 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sparse

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gorse-io/erised/common/parallel"
	"github.com/gorse-io/erised/common/util"
	"github.com/juju/errors"
	"go.uber.org/atomic"
	"golang.org/x/exp/constraints"
)

// Number is the element type of a sparse matrix.
type Number interface {
	constraints.Integer | constraints.Float
}

// Axis selects whether line i means row i or column i.
type Axis int

const (
	Row Axis = iota
	Col
)

func (axis Axis) String() string {
	switch axis {
	case Row:
		return "row"
	case Col:
		return "col"
	default:
		return fmt.Sprintf("axis(%d)", int(axis))
	}
}

// Other returns the opposite axis.
func (axis Axis) Other() Axis {
	if axis == Row {
		return Col
	}
	return Row
}

// ParseAxis parses "row" or "col" (also "column").
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "row", "rows":
		return Row, nil
	case "col", "cols", "column", "columns":
		return Col, nil
	}
	return 0, errors.NotValidf("axis %q", s)
}

// segment is a sparse row: column indices sorted in ascending order and the
// values stored at them.
type segment[T Number] struct {
	indices []int
	values  []T
}

func (s *segment[T]) find(col int) (int, bool) {
	return slices.BinarySearch(s.indices, col)
}

// Matrix is a sparse matrix stored row by row. Only non-zero values are
// stored, absent entries read as zero. The shape is fixed at construction.
type Matrix[T Number] struct {
	rows     []segment[T]
	sizeRows int
	sizeCols int
	jobs     int
}

// Triplet is a single (row, col, value) entry.
type Triplet[T Number] struct {
	Row   int
	Col   int
	Value T
}

// New creates an empty rows x cols matrix.
func New[T Number](rows, cols int) *Matrix[T] {
	return &Matrix[T]{
		rows:     make([]segment[T], rows),
		sizeRows: rows,
		sizeCols: cols,
		jobs:     1,
	}
}

// NewFromDense creates a matrix from a nested literal. Zeros are not stored.
// The number of columns is the length of the longest literal row.
func NewFromDense[T Number](data [][]T) *Matrix[T] {
	cols := 0
	for _, row := range data {
		cols = max(cols, len(row))
	}
	m := New[T](len(data), cols)
	for i, row := range data {
		seg := &m.rows[i]
		for j, v := range row {
			if v != 0 {
				seg.indices = append(seg.indices, j)
				seg.values = append(seg.values, v)
			}
		}
	}
	return m
}

// NewFromTriplets creates a rows x cols matrix from entries in any order. If
// an entry appears more than once, the last one wins. Zero entries are not stored.
func NewFromTriplets[T Number](rows, cols int, triplets []Triplet[T]) (*Matrix[T], error) {
	m := New[T](rows, cols)
	for _, t := range triplets {
		if err := m.checkElement(t.Row, t.Col); err != nil {
			return nil, errors.Trace(err)
		}
	}
	sorted := slices.Clone(triplets)
	slices.SortStableFunc(sorted, func(a, b Triplet[T]) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	for i, t := range sorted {
		if i+1 < len(sorted) && sorted[i+1].Row == t.Row && sorted[i+1].Col == t.Col {
			continue
		}
		if t.Value != 0 {
			seg := &m.rows[t.Row]
			seg.indices = append(seg.indices, t.Col)
			seg.values = append(seg.values, t.Value)
		}
	}
	return m, nil
}

// SetJobs sets the number of workers used by parallel operations.
func (m *Matrix[T]) SetJobs(jobs int) *Matrix[T] {
	m.jobs = jobs
	return m
}

// Jobs returns the number of workers used by parallel operations.
func (m *Matrix[T]) Jobs() int {
	return m.jobs
}

func (m *Matrix[T]) Rows() int {
	return m.sizeRows
}

func (m *Matrix[T]) Cols() int {
	return m.sizeCols
}

// Size returns the number of lines on an axis.
func (m *Matrix[T]) Size(axis Axis) int {
	if axis == Row {
		return m.sizeRows
	}
	return m.sizeCols
}

func (m *Matrix[T]) checkElement(x, y int) error {
	if x < 0 || x >= m.sizeRows {
		return util.Errorf(util.OutOfRange, "row %d is out of [0, %d)", x, m.sizeRows)
	}
	if y < 0 || y >= m.sizeCols {
		return util.Errorf(util.OutOfRange, "col %d is out of [0, %d)", y, m.sizeCols)
	}
	return nil
}

func (m *Matrix[T]) checkLine(axis Axis, i int) error {
	if i < 0 || i >= m.Size(axis) {
		return util.Errorf(util.OutOfRange, "%v %d is out of [0, %d)", axis, i, m.Size(axis))
	}
	return nil
}

// Element returns the value at (x, y), zero if absent.
func (m *Matrix[T]) Element(x, y int) (T, error) {
	if err := m.checkElement(x, y); err != nil {
		return 0, errors.Trace(err)
	}
	seg := &m.rows[x]
	if pos, ok := seg.find(y); ok {
		return seg.values[pos], nil
	}
	return 0, nil
}

// Set stores v at (x, y). Setting zero removes the entry.
func (m *Matrix[T]) Set(x, y int, v T) error {
	if err := m.checkElement(x, y); err != nil {
		return errors.Trace(err)
	}
	seg := &m.rows[x]
	pos, ok := seg.find(y)
	switch {
	case ok && v == 0:
		seg.indices = slices.Delete(seg.indices, pos, pos+1)
		seg.values = slices.Delete(seg.values, pos, pos+1)
	case ok:
		seg.values[pos] = v
	case v != 0:
		seg.indices = slices.Insert(seg.indices, pos, y)
		seg.values = slices.Insert(seg.values, pos, v)
	}
	return nil
}

// Clone returns a deep copy of the matrix.
func (m *Matrix[T]) Clone() *Matrix[T] {
	c := New[T](m.sizeRows, m.sizeCols).SetJobs(m.jobs)
	for i := range m.rows {
		c.rows[i].indices = slices.Clone(m.rows[i].indices)
		c.rows[i].values = slices.Clone(m.rows[i].values)
	}
	return c
}

// Transpose returns a new matrix whose rows are the columns of m.
func (m *Matrix[T]) Transpose() *Matrix[T] {
	t := New[T](m.sizeCols, m.sizeRows).SetJobs(m.jobs)
	counts := m.NumElementsAxis(Col)
	for j := range t.rows {
		t.rows[j].indices = make([]int, 0, counts[j])
		t.rows[j].values = make([]T, 0, counts[j])
	}
	// rows are visited in order, so every transposed segment stays sorted
	for i := range m.rows {
		seg := &m.rows[i]
		for k, j := range seg.indices {
			t.rows[j].indices = append(t.rows[j].indices, i)
			t.rows[j].values = append(t.rows[j].values, seg.values[k])
		}
	}
	return t
}

// NumElements returns the number of stored values.
func (m *Matrix[T]) NumElements() int {
	n := 0
	for i := range m.rows {
		n += len(m.rows[i].indices)
	}
	return n
}

// NumElementsLine returns the number of stored values in row i.
func (m *Matrix[T]) NumElementsLine(i int) (int, error) {
	if err := m.checkLine(Row, i); err != nil {
		return 0, errors.Trace(err)
	}
	return len(m.rows[i].indices), nil
}

// NumElementsCol returns the number of stored values in column i.
func (m *Matrix[T]) NumElementsCol(i int) (int, error) {
	if err := m.checkLine(Col, i); err != nil {
		return 0, errors.Trace(err)
	}
	var count atomic.Int64
	err := parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
		for row := r.Begin; row < r.End; row++ {
			if _, ok := m.rows[row].find(i); ok {
				count.Inc()
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Trace(err)
	}
	return int(count.Load()), nil
}

// NumElementsAxis returns the number of stored values of every line on an axis.
func (m *Matrix[T]) NumElementsAxis(axis Axis) []int {
	counts := make([]int, m.Size(axis))
	if axis == Row {
		// each partition owns its rows
		_ = parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
			for i := r.Begin; i < r.End; i++ {
				counts[i] = len(m.rows[i].indices)
			}
			return nil
		})
		return counts
	}
	locks := make([]sync.Mutex, m.sizeCols)
	_ = parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
		for i := r.Begin; i < r.End; i++ {
			for _, j := range m.rows[i].indices {
				locks[j].Lock()
				counts[j]++
				locks[j].Unlock()
			}
		}
		return nil
	})
	return counts
}

// ForEach calls fn for every stored value of line i in index order. For a row
// the index passed to fn is the column, for a column it is the row.
func (m *Matrix[T]) ForEach(axis Axis, i int, fn func(index int, value T)) error {
	if err := m.checkLine(axis, i); err != nil {
		return errors.Trace(err)
	}
	if axis == Row {
		seg := &m.rows[i]
		for k, j := range seg.indices {
			fn(j, seg.values[k])
		}
		return nil
	}
	for row := range m.rows {
		seg := &m.rows[row]
		if pos, ok := seg.find(i); ok {
			fn(row, seg.values[pos])
		}
	}
	return nil
}

// ForIntersection calls fn for every index stored in both line i1 and line i2,
// in index order, with the values of both lines.
func (m *Matrix[T]) ForIntersection(axis Axis, i1, i2 int, fn func(index int, a, b T)) error {
	if err := m.checkLine(axis, i1); err != nil {
		return errors.Trace(err)
	}
	if err := m.checkLine(axis, i2); err != nil {
		return errors.Trace(err)
	}
	if axis == Row {
		a, b := &m.rows[i1], &m.rows[i2]
		i, j := 0, 0
		for i < len(a.indices) && j < len(b.indices) {
			if a.indices[i] == b.indices[j] {
				fn(a.indices[i], a.values[i], b.values[j])
				i++
				j++
			} else if a.indices[i] < b.indices[j] {
				i++
			} else {
				j++
			}
		}
		return nil
	}
	for row := range m.rows {
		seg := &m.rows[row]
		p1, ok1 := seg.find(i1)
		if !ok1 {
			continue
		}
		if p2, ok2 := seg.find(i2); ok2 {
			fn(row, seg.values[p1], seg.values[p2])
		}
	}
	return nil
}

func (m *Matrix[T]) String() string {
	var builder strings.Builder
	for i := range m.rows {
		builder.WriteString(fmt.Sprintf("%d:", i))
		seg := &m.rows[i]
		for k, j := range seg.indices {
			builder.WriteString(fmt.Sprintf(" %d:%v", j, seg.values[k]))
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}
