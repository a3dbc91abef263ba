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
	"github.com/gorse-io/erised/common/util"
	"github.com/juju/errors"
)

// Min returns the minimum stored value of line i. An empty line has no
// minimum and fails with OutOfRange.
func (m *Matrix[T]) Min(i int, axis Axis) (T, error) {
	return m.extreme(i, axis, func(a, b T) bool { return a < b })
}

// Max returns the maximum stored value of line i. An empty line has no
// maximum and fails with OutOfRange.
func (m *Matrix[T]) Max(i int, axis Axis) (T, error) {
	return m.extreme(i, axis, func(a, b T) bool { return a > b })
}

// MinAxis returns the minimum stored value of every line of an axis.
func (m *Matrix[T]) MinAxis(axis Axis) ([]T, error) {
	mins, _, counts := m.ExtremaAxis(axis)
	if err := checkCounts(axis, counts); err != nil {
		return nil, errors.Trace(err)
	}
	return mins, nil
}

// MaxAxis returns the maximum stored value of every line of an axis.
func (m *Matrix[T]) MaxAxis(axis Axis) ([]T, error) {
	_, maxs, counts := m.ExtremaAxis(axis)
	if err := checkCounts(axis, counts); err != nil {
		return nil, errors.Trace(err)
	}
	return maxs, nil
}

func checkCounts(axis Axis, counts []int) error {
	for i, count := range counts {
		if count == 0 {
			return util.Errorf(util.OutOfRange, "%v %d has no stored values", axis, i)
		}
	}
	return nil
}

func (m *Matrix[T]) extreme(i int, axis Axis, better func(a, b T) bool) (T, error) {
	var (
		result T
		found  bool
	)
	err := m.ForEach(axis, i, func(_ int, v T) {
		if !found || better(v, result) {
			result, found = v, true
		}
	})
	if err != nil {
		return 0, errors.Trace(err)
	}
	if !found {
		return 0, util.Errorf(util.OutOfRange, "%v %d has no stored values", axis, i)
	}
	return result, nil
}

// ExtremaAxis returns the minimum, the maximum and the number of stored
// values of every line of an axis in a single pass. Lines without stored
// values get zeros.
func (m *Matrix[T]) ExtremaAxis(axis Axis) (mins, maxs []T, counts []int) {
	mins = make([]T, m.Size(axis))
	maxs = make([]T, m.Size(axis))
	counts = make([]int, m.Size(axis))
	update := func(line int, v T) {
		if counts[line] == 0 || v < mins[line] {
			mins[line] = v
		}
		if counts[line] == 0 || v > maxs[line] {
			maxs[line] = v
		}
		counts[line]++
	}
	if axis == Row {
		_ = parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
			for i := r.Begin; i < r.End; i++ {
				for _, v := range m.rows[i].values {
					update(i, v)
				}
			}
			return nil
		})
		return
	}
	locks := make([]sync.Mutex, m.sizeCols)
	_ = parallel.For(parallel.NewRange(0, m.sizeRows), m.jobs, func(r parallel.Range) error {
		for i := r.Begin; i < r.End; i++ {
			seg := &m.rows[i]
			for k, j := range seg.indices {
				locks[j].Lock()
				update(j, seg.values[k])
				locks[j].Unlock()
			}
		}
		return nil
	})
	return
}
