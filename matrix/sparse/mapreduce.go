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
	"sync"

	"github.com/gorse-io/erised/common/parallel"
	"github.com/juju/errors"
)

// MapFunc maps a stored value to a new value.
type MapFunc[T Number] func(value T) T

// LineMapFunc maps a stored value of line `line` to a new value.
type LineMapFunc[T Number] func(line int, value T) T

// FoldFunc accumulates a stored value into acc.
type FoldFunc[T Number] func(value, acc T) T

// LineFoldFunc accumulates a stored value of line `line` into acc.
type LineFoldFunc[T Number] func(line int, value, acc T) T

// CombineFunc merges two partial folds. It must be associative and commutative.
type CombineFunc[T Number] func(a, b T) T

// Add is the combiner of sums.
func Add[T Number](a, b T) T {
	return a + b
}

// Map replaces every stored value v by fn(v). Values mapped to zero stay
// stored. If fn panics, partitions already processed keep their new values.
func (m *Matrix[T]) Map(fn MapFunc[T]) error {
	return m.MapRows(func(_ int, v T) T {
		return fn(v)
	})
}

// RowMap replaces every stored value v of row i by fn(v).
func (m *Matrix[T]) RowMap(i int, fn MapFunc[T]) error {
	if err := m.checkLine(Row, i); err != nil {
		return errors.Trace(err)
	}
	seg := &m.rows[i]
	return parallel.For(parallel.NewRange(0, len(seg.values)), m.jobs, func(r parallel.Range) error {
		for k := r.Begin; k < r.End; k++ {
			seg.values[k] = fn(seg.values[k])
		}
		return nil
	})
}

// ColMap replaces every stored value v of column i by fn(v).
func (m *Matrix[T]) ColMap(i int, fn MapFunc[T]) error {
	if err := m.checkLine(Col, i); err != nil {
		return errors.Trace(err)
	}
	return parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
		for row := r.Begin; row < r.End; row++ {
			seg := &m.rows[row]
			if pos, ok := seg.find(i); ok {
				seg.values[pos] = fn(seg.values[pos])
			}
		}
		return nil
	})
}

// MapRows replaces every stored value v of row i by fn(i, v).
func (m *Matrix[T]) MapRows(fn LineMapFunc[T]) error {
	return parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
		for i := r.Begin; i < r.End; i++ {
			seg := &m.rows[i]
			for k := range seg.values {
				seg.values[k] = fn(i, seg.values[k])
			}
		}
		return nil
	})
}

// MapCols replaces every stored value v of column j by fn(j, v). Every stored
// slot belongs to exactly one row, so partitioning rows needs no lock.
func (m *Matrix[T]) MapCols(fn LineMapFunc[T]) error {
	return parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
		for i := r.Begin; i < r.End; i++ {
			seg := &m.rows[i]
			for k, j := range seg.indices {
				seg.values[k] = fn(j, seg.values[k])
			}
		}
		return nil
	})
}

// MapAxis maps every stored value with the index of its line on an axis.
func (m *Matrix[T]) MapAxis(axis Axis, fn LineMapFunc[T]) error {
	if axis == Row {
		return m.MapRows(fn)
	}
	return m.MapCols(fn)
}

// Reduce folds every stored value. Rows are partitioned and partial folds are
// merged by combine, so fold must start from the neutral element of combine.
func (m *Matrix[T]) Reduce(fold FoldFunc[T], combine CombineFunc[T]) (T, error) {
	return parallel.Reduce(parallel.NewRange(0, m.sizeRows), m.jobs, T(0),
		func(r parallel.Range, acc T) (T, error) {
			for i := r.Begin; i < r.End; i++ {
				for _, v := range m.rows[i].values {
					acc = fold(v, acc)
				}
			}
			return acc, nil
		}, combine)
}

// RowReduce folds the stored values of row i in column order.
func (m *Matrix[T]) RowReduce(i int, fold FoldFunc[T]) (T, error) {
	if err := m.checkLine(Row, i); err != nil {
		return 0, errors.Trace(err)
	}
	var acc T
	for _, v := range m.rows[i].values {
		acc = fold(v, acc)
	}
	return acc, nil
}

// ColReduce folds the stored values of column i. Rows are partitioned and
// partial folds are merged by combine.
func (m *Matrix[T]) ColReduce(i int, fold FoldFunc[T], combine CombineFunc[T]) (T, error) {
	if err := m.checkLine(Col, i); err != nil {
		return 0, errors.Trace(err)
	}
	return parallel.Reduce(parallel.NewRange(0, m.sizeRows), m.jobs, T(0),
		func(r parallel.Range, acc T) (T, error) {
			for row := r.Begin; row < r.End; row++ {
				seg := &m.rows[row]
				if pos, ok := seg.find(i); ok {
					acc = fold(seg.values[pos], acc)
				}
			}
			return acc, nil
		}, combine)
}

// ReduceRows folds every row independently.
func (m *Matrix[T]) ReduceRows(fold FoldFunc[T]) ([]T, error) {
	return m.reduceRowsWith(func(_ int, v, acc T) T {
		return fold(v, acc)
	})
}

// ReduceCols folds every column independently. Rows are scanned in parallel
// and each column accumulator is guarded by its own lock, so the result must
// not depend on the order values are folded in.
func (m *Matrix[T]) ReduceCols(fold FoldFunc[T]) ([]T, error) {
	return m.reduceColsWith(func(_ int, v, acc T) T {
		return fold(v, acc)
	})
}

// ReduceAxis folds every line of an axis independently.
func (m *Matrix[T]) ReduceAxis(axis Axis, fold FoldFunc[T]) ([]T, error) {
	if axis == Row {
		return m.ReduceRows(fold)
	}
	return m.ReduceCols(fold)
}

// ReduceAxisWith folds every line of an axis independently, passing the line
// index to fold.
func (m *Matrix[T]) ReduceAxisWith(axis Axis, fold LineFoldFunc[T]) ([]T, error) {
	if axis == Row {
		return m.reduceRowsWith(fold)
	}
	return m.reduceColsWith(fold)
}

func (m *Matrix[T]) reduceRowsWith(fold LineFoldFunc[T]) ([]T, error) {
	results := make([]T, m.sizeRows)
	err := parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
		for i := r.Begin; i < r.End; i++ {
			var acc T
			for _, v := range m.rows[i].values {
				acc = fold(i, v, acc)
			}
			results[i] = acc
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return results, nil
}

func (m *Matrix[T]) reduceColsWith(fold LineFoldFunc[T]) ([]T, error) {
	results := make([]T, m.sizeCols)
	locks := make([]sync.Mutex, m.sizeCols)
	err := parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
		for i := r.Begin; i < r.End; i++ {
			seg := &m.rows[i]
			for k, j := range seg.indices {
				locks[j].Lock()
				results[j] = fold(j, seg.values[k], results[j])
				locks[j].Unlock()
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return results, nil
}

// ReducePair folds the values stored in both line i1 and line i2 of an axis.
// Indices present in only one of the lines contribute nothing.
func ReducePair[T Number, A any](m SparseMatrix[T], axis Axis, i1, i2 int, identity A, fold func(a, b T, acc A) A) (A, error) {
	acc := identity
	err := m.ForIntersection(axis, i1, i2, func(_ int, a, b T) {
		acc = fold(a, b, acc)
	})
	if err != nil {
		return identity, errors.Trace(err)
	}
	return acc, nil
}
