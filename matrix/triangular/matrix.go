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

// Package triangular stores a symmetric n x n matrix with a unit diagonal in
// n(n-1)/2 slots, one per unordered pair.
package triangular

import (
	"github.com/gorse-io/erised/common/util"
	"github.com/gorse-io/erised/matrix/sparse"
	"github.com/juju/errors"
)

// Matrix is a symmetric matrix whose diagonal is fixed at one. Only the
// upper triangle is stored, row by row.
type Matrix[T sparse.Number] struct {
	elems []T
	size  int
}

// Len returns the number of stored slots of an n x n matrix.
func Len(n int) int {
	return n * (n - 1) / 2
}

// New creates an n x n matrix with zero off-diagonal elements.
func New[T sparse.Number](n int) *Matrix[T] {
	return &Matrix[T]{
		elems: make([]T, Len(n)),
		size:  n,
	}
}

// NewFromData wraps the upper triangle elems of an n x n matrix. The slice is
// not copied.
func NewFromData[T sparse.Number](n int, elems []T) (*Matrix[T], error) {
	if n < 0 {
		return nil, util.Errorf(util.InvalidArgument, "negative size %d", n)
	}
	if len(elems) != Len(n) {
		return nil, util.Errorf(util.InvalidArgument,
			"expect %d elements for size %d, got %d", Len(n), n, len(elems))
	}
	return &Matrix[T]{elems: elems, size: n}, nil
}

// Size returns n.
func (m *Matrix[T]) Size() int {
	return m.size
}

// Data returns the backing buffer.
func (m *Matrix[T]) Data() []T {
	return m.elems
}

// index returns the slot of (x, y) for x < y.
func (m *Matrix[T]) index(x, y int) int {
	n := m.size
	return Len(n) - (n-x)*(n-x-1)/2 + (y - x - 1)
}

func (m *Matrix[T]) check(x, y int) error {
	if x < 0 || x >= m.size || y < 0 || y >= m.size {
		return util.Errorf(util.OutOfRange, "(%d, %d) is out of [0, %d)", x, y, m.size)
	}
	return nil
}

// At returns the element at (x, y) without bounds checking.
func (m *Matrix[T]) At(x, y int) T {
	switch {
	case x == y:
		return 1
	case x > y:
		x, y = y, x
	}
	return m.elems[m.index(x, y)]
}

// Set writes v at (x, y) and (y, x) without bounds checking. Writes to the
// diagonal are ignored.
func (m *Matrix[T]) Set(x, y int, v T) {
	switch {
	case x == y:
		return
	case x > y:
		x, y = y, x
	}
	m.elems[m.index(x, y)] = v
}

// Element returns the element at (x, y).
func (m *Matrix[T]) Element(x, y int) (T, error) {
	if err := m.check(x, y); err != nil {
		return 0, errors.Trace(err)
	}
	return m.At(x, y), nil
}

// SetElement writes v at (x, y) and (y, x).
func (m *Matrix[T]) SetElement(x, y int, v T) error {
	if err := m.check(x, y); err != nil {
		return errors.Trace(err)
	}
	m.Set(x, y, v)
	return nil
}

// Row returns a view of row i without its diagonal element.
func (m *Matrix[T]) Row(i int) View[T] {
	return View[T]{matrix: m, line: i}
}

// Col returns a view of column i without its diagonal element.
func (m *Matrix[T]) Col(i int) View[T] {
	return View[T]{matrix: m, line: i, col: true}
}

// Dense expands the matrix into n rows of n values.
func (m *Matrix[T]) Dense() [][]T {
	dense := make([][]T, m.size)
	for x := range dense {
		dense[x] = make([]T, m.size)
		for y := range dense[x] {
			dense[x][y] = m.At(x, y)
		}
	}
	return dense
}
