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

// Package stats computes descriptive statistics over the stored values of a
// sparse matrix. Absent entries never take part: the average of a line is the
// sum of its stored values divided by their count.
package stats

import (
	"math"

	"github.com/gorse-io/erised/common/util"
	"github.com/gorse-io/erised/matrix/sparse"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/constraints"
)

func add[T constraints.Float](v, acc T) T {
	return v + acc
}

func sqrt[T constraints.Float](v T) T {
	return T(math.Sqrt(float64(v)))
}

func lineSum[T constraints.Float](m sparse.SparseMatrix[T], i int, axis sparse.Axis) (T, int, error) {
	var (
		sum   T
		count int
		err   error
	)
	if axis == sparse.Row {
		if sum, err = m.RowReduce(i, add[T]); err != nil {
			return 0, 0, errors.Trace(err)
		}
		count, err = m.NumElementsLine(i)
	} else {
		if sum, err = m.ColReduce(i, add[T], sparse.Add[T]); err != nil {
			return 0, 0, errors.Trace(err)
		}
		count, err = m.NumElementsCol(i)
	}
	if err != nil {
		return 0, 0, errors.Trace(err)
	}
	return sum, count, nil
}

// lineMean returns the mean of the stored values of line i and their count.
// The mean of a line whose values are all equal is that value exactly.
func lineMean[T constraints.Float](m sparse.SparseMatrix[T], i int, axis sparse.Axis) (T, int, error) {
	sum, count, err := lineSum(m, i, axis)
	if err != nil {
		return 0, 0, errors.Trace(err)
	}
	if count == 0 {
		return 0, 0, util.Errorf(util.DivideByZero, "%v %d has no stored values", axis, i)
	}
	low, err := m.Min(i, axis)
	if err != nil {
		return 0, 0, errors.Trace(err)
	}
	high, err := m.Max(i, axis)
	if err != nil {
		return 0, 0, errors.Trace(err)
	}
	if low == high {
		return low, count, nil
	}
	return sum / T(count), count, nil
}

// Average returns the mean of the stored values of line i.
func Average[T constraints.Float](m sparse.SparseMatrix[T], i int, axis sparse.Axis) (T, error) {
	mean, _, err := lineMean(m, i, axis)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return mean, nil
}

// AverageAll returns the mean of every stored value.
func AverageAll[T constraints.Float](m sparse.SparseMatrix[T]) (T, error) {
	sum, err := m.Reduce(add[T], sparse.Add[T])
	if err != nil {
		return 0, errors.Trace(err)
	}
	count := m.NumElements()
	if count == 0 {
		return 0, util.Errorf(util.DivideByZero, "matrix has no stored values")
	}
	return sum / T(count), nil
}

// countsOf returns counts if given, otherwise counts the stored values of
// every line of an axis.
func countsOf[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis, counts []int) ([]int, error) {
	if counts == nil {
		return m.NumElementsAxis(axis), nil
	}
	if len(counts) != m.Size(axis) {
		return nil, util.Errorf(util.InvalidArgument,
			"expect %d counts for %v axis, got %d", m.Size(axis), axis, len(counts))
	}
	if i := lo.IndexOf(counts, 0); i >= 0 {
		return nil, util.Errorf(util.DivideByZero, "%v %d has no stored values", axis, i)
	}
	return counts, nil
}

// meansAxis divides the sum of every line of an axis by its count. A line
// whose values are all equal gets that value exactly, so its deviations are
// exactly zero. A line without values gets zero.
func meansAxis[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis, counts []int) ([]T, error) {
	sums, err := m.ReduceAxis(axis, add[T])
	if err != nil {
		return nil, errors.Trace(err)
	}
	mins, maxs, _ := m.ExtremaAxis(axis)
	for i := range sums {
		switch {
		case counts[i] == 0:
			sums[i] = 0
		case mins[i] == maxs[i]:
			sums[i] = mins[i]
		default:
			sums[i] /= T(counts[i])
		}
	}
	return sums, nil
}

// AverageAxis returns the mean of every line of an axis. Pass precomputed
// counts to skip counting, or nil.
func AverageAxis[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis, counts []int) ([]T, error) {
	counts, err := countsOf(m, axis, counts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if i := lo.IndexOf(counts, 0); i >= 0 {
		return nil, util.Errorf(util.DivideByZero, "%v %d has no stored values", axis, i)
	}
	return meansAxis(m, axis, counts)
}

// PartialAverageAxis returns the mean of every line of an axis that stores a
// value and zero for the other lines, along with the counts.
func PartialAverageAxis[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis) ([]T, []int, error) {
	counts := m.NumElementsAxis(axis)
	means, err := meansAxis(m, axis, counts)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return means, counts, nil
}

// Variance returns the population variance of the stored values of line i.
func Variance[T constraints.Float](m sparse.SparseMatrix[T], i int, axis sparse.Axis) (T, error) {
	mean, count, err := lineMean(m, i, axis)
	if err != nil {
		return 0, errors.Trace(err)
	}
	squares := func(v, acc T) T {
		return acc + (v-mean)*(v-mean)
	}
	var sq T
	if axis == sparse.Row {
		sq, err = m.RowReduce(i, squares)
	} else {
		sq, err = m.ColReduce(i, squares, sparse.Add[T])
	}
	if err != nil {
		return 0, errors.Trace(err)
	}
	return sq / T(count), nil
}

// VarianceAxis returns the population variance of every line of an axis.
func VarianceAxis[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis, counts []int) ([]T, error) {
	counts, err := countsOf(m, axis, counts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	means, err := AverageAxis(m, axis, counts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return varianceAround(m, axis, counts, means)
}

func varianceAround[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis, counts []int, means []T) ([]T, error) {
	squares, err := m.ReduceAxisWith(axis, func(line int, v, acc T) T {
		return acc + (v-means[line])*(v-means[line])
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i := range squares {
		squares[i] /= T(counts[i])
	}
	return squares, nil
}

// StandardDeviation returns the population standard deviation of line i.
func StandardDeviation[T constraints.Float](m sparse.SparseMatrix[T], i int, axis sparse.Axis) (T, error) {
	variance, err := Variance(m, i, axis)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return sqrt(variance), nil
}

// StandardDeviationAxis returns the population standard deviation of every
// line of an axis.
func StandardDeviationAxis[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis, counts []int) ([]T, error) {
	variances, err := VarianceAxis(m, axis, counts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return lo.Map(variances, func(v T, _ int) T { return sqrt(v) }), nil
}

// Standardization replaces every stored value x by (x - mean) / stddev of its
// line. Every line is checked before the matrix is touched, so a line with
// zero deviation, i.e. whose values are all equal, fails with DivideByZero
// and leaves m unchanged.
func Standardization[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis, counts []int) error {
	counts, err := countsOf(m, axis, counts)
	if err != nil {
		return errors.Trace(err)
	}
	means, err := AverageAxis(m, axis, counts)
	if err != nil {
		return errors.Trace(err)
	}
	variances, err := varianceAround(m, axis, counts, means)
	if err != nil {
		return errors.Trace(err)
	}
	if i := lo.IndexOf(variances, 0); i >= 0 {
		return util.Errorf(util.DivideByZero, "%v %d has zero standard deviation", axis, i)
	}
	stddevs := lo.Map(variances, func(v T, _ int) T { return sqrt(v) })
	return errors.Trace(m.MapAxis(axis, func(line int, v T) T {
		return (v - means[line]) / stddevs[line]
	}))
}

// Rescaling replaces every stored value x by (x - min) / (max - min) of its
// line. A line whose values are all equal fails with DivideByZero before any
// value is rewritten.
func Rescaling[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis, counts []int) error {
	if _, err := countsOf(m, axis, counts); err != nil {
		return errors.Trace(err)
	}
	mins, err := m.MinAxis(axis)
	if err != nil {
		return errors.Trace(err)
	}
	maxs, err := m.MaxAxis(axis)
	if err != nil {
		return errors.Trace(err)
	}
	for i := range mins {
		if mins[i] == maxs[i] {
			return util.Errorf(util.DivideByZero, "%v %d has zero range", axis, i)
		}
	}
	return errors.Trace(m.MapAxis(axis, func(line int, v T) T {
		return (v - mins[line]) / (maxs[line] - mins[line])
	}))
}

// Summary holds the statistics of every line of an axis.
type Summary[T constraints.Float] struct {
	Axis      sparse.Axis
	Counts    []int
	Averages  []T
	Variances []T
	StdDevs   []T
}

// Describe computes a Summary with a single count pass.
func Describe[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis) (*Summary[T], error) {
	counts := m.NumElementsAxis(axis)
	averages, err := AverageAxis(m, axis, counts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	variances, err := varianceAround(m, axis, counts, averages)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Summary[T]{
		Axis:      axis,
		Counts:    counts,
		Averages:  averages,
		Variances: variances,
		StdDevs:   lo.Map(variances, func(v T, _ int) T { return sqrt(v) }),
	}, nil
}
