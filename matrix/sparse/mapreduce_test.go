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
	"testing"

	"github.com/gorse-io/erised/common/util"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func sum(v, acc float64) float64 {
	return v + acc
}

func TestMap(t *testing.T) {
	for _, jobs := range []int{1, 4} {
		m := newTestMatrix().SetJobs(jobs)
		assert.NoError(t, m.Map(func(v float64) float64 { return v * 10 }))
		v, _ := m.Element(3, 7)
		assert.InDelta(t, 7.0, v, delta)
		assert.Equal(t, 19, m.NumElements())

		// mapped zeros stay stored
		assert.NoError(t, m.Map(func(float64) float64 { return 0 }))
		assert.Equal(t, 19, m.NumElements())
		v, _ = m.Min(0, Row)
		assert.Zero(t, v)
	}
}

func TestRowMapColMap(t *testing.T) {
	for _, jobs := range []int{1, 2} {
		m := newTestMatrix().SetJobs(jobs)
		assert.NoError(t, m.RowMap(1, func(v float64) float64 { return v + 1 }))
		row, _ := m.ReduceRows(sum)
		assert.InDelta(t, 6.9, row[1], delta)
		assert.InDelta(t, 1.24, row[0], delta)

		assert.NoError(t, m.ColMap(0, func(v float64) float64 { return -v }))
		v, _ := m.Element(5, 0)
		assert.Equal(t, -0.22, v)
		v, _ = m.Element(0, 1)
		assert.Equal(t, 0.8, v)

		assert.ErrorIs(t, m.RowMap(6, func(v float64) float64 { return v }), util.OutOfRange)
		assert.ErrorIs(t, m.ColMap(9, func(v float64) float64 { return v }), util.OutOfRange)
	}
}

func TestMapRowsCols(t *testing.T) {
	for _, jobs := range []int{1, 3} {
		m := newTestMatrix().SetJobs(jobs)
		assert.NoError(t, m.MapRows(func(i int, v float64) float64 { return float64(i) }))
		v, _ := m.Element(4, 8)
		assert.Equal(t, 4.0, v)
		assert.NoError(t, m.MapCols(func(j int, v float64) float64 { return v + float64(j) }))
		v, _ = m.Element(4, 8)
		assert.Equal(t, 12.0, v)
		assert.NoError(t, m.MapAxis(Col, func(j int, v float64) float64 { return float64(j) }))
		v, _ = m.Element(5, 7)
		assert.Equal(t, 7.0, v)
		assert.NoError(t, m.MapAxis(Row, func(i int, v float64) float64 { return float64(i) }))
		v, _ = m.Element(5, 7)
		assert.Equal(t, 5.0, v)
	}
}

func TestReduce(t *testing.T) {
	for _, jobs := range []int{1, 2, 4} {
		m := newTestMatrix().SetJobs(jobs)
		total, err := m.Reduce(sum, Add[float64])
		assert.NoError(t, err)
		assert.InDelta(t, 11.1, total, delta)

		count, err := m.Reduce(func(_, acc float64) float64 { return acc + 1 }, Add[float64])
		assert.NoError(t, err)
		assert.Equal(t, 19.0, count)

		rowSum, err := m.RowReduce(3, sum)
		assert.NoError(t, err)
		assert.InDelta(t, 2.32, rowSum, delta)
		colSum, err := m.ColReduce(0, sum, Add[float64])
		assert.NoError(t, err)
		assert.InDelta(t, 1.1, colSum, delta)

		_, err = m.RowReduce(-1, sum)
		assert.ErrorIs(t, err, util.OutOfRange)
		_, err = m.ColReduce(9, sum, Add[float64])
		assert.ErrorIs(t, err, util.OutOfRange)
	}
}

func TestReduceAxis(t *testing.T) {
	for _, jobs := range []int{1, 4} {
		m := newTestMatrix().SetJobs(jobs)
		rows, err := m.ReduceAxis(Row, sum)
		assert.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1.24, 3.9, 1.32, 2.32, 1.3, 1.02}, rows, delta)
		cols, err := m.ReduceAxis(Col, sum)
		assert.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1.1, 1.6, 1.4, 0.9, 1.2, 0.7, 2.7, 0.8, 0.7}, cols, delta)
		assert.InDelta(t, floats.Sum(rows), floats.Sum(cols), delta)

		// fold with the line index: count values above the line index / 10
		above, err := m.ReduceAxisWith(Col, func(j int, v, acc float64) float64 {
			if v > float64(j)/10 {
				return acc + 1
			}
			return acc
		})
		assert.NoError(t, err)
		assert.Equal(t, []float64{4, 2, 1, 1, 0, 1, 2, 0, 0}, above)
	}
}

func TestReducePair(t *testing.T) {
	m := newTestMatrix()
	type terms struct {
		dot   float64
		count int
	}
	fold := func(a, b float64, acc terms) terms {
		return terms{dot: acc.dot + a*b, count: acc.count + 1}
	}
	// rows 2 and 5 share columns 0 and 4
	result, err := ReducePair[float64](m, Row, 2, 5, terms{}, fold)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.count)
	assert.InDelta(t, 0.2084, result.dot, delta)
	// columns 4 and 6 share row 5 only
	result, err = ReducePair[float64](m, Col, 4, 6, terms{}, fold)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.count)
	assert.InDelta(t, 0.12, result.dot, delta)
	// disjoint lines
	result, err = ReducePair[float64](m, Row, 0, 4, terms{}, fold)
	assert.NoError(t, err)
	assert.Zero(t, result.count)
	// same line on the transposed matrix
	result, err = ReducePair[float64](m.Transpose(), Row, 4, 6, terms{}, fold)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.count)

	_, err = ReducePair[float64](m, Row, 0, 6, terms{}, fold)
	assert.ErrorIs(t, err, util.OutOfRange)
	_, err = ReducePair[float64](m, Col, 9, 0, terms{}, fold)
	assert.ErrorIs(t, err, util.OutOfRange)
}
