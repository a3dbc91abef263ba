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

// Package correlation fills a triangular similarity matrix with the mean
// centered cosine of every pair of rows or columns of a sparse matrix. Only
// indices stored in both lines of a pair take part.
package correlation

import (
	"math"
	"time"

	"github.com/gorse-io/erised/common/log"
	"github.com/gorse-io/erised/common/parallel"
	"github.com/gorse-io/erised/common/util"
	"github.com/gorse-io/erised/matrix/sparse"
	"github.com/gorse-io/erised/matrix/triangular"
	"github.com/gorse-io/erised/stats"
	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// Terms are the numerator and the two sums of squares of a pair.
type Terms[T constraints.Float] [3]T

// Value returns numerator / (sqrt(sumSqI) * sqrt(sumSqJ)). ok is false if the
// denominator is zero.
func (t Terms[T]) Value() (value T, ok bool) {
	denominator := math.Sqrt(float64(t[1])) * math.Sqrt(float64(t[2]))
	if denominator == 0 {
		return 0, false
	}
	return T(float64(t[0]) / denominator), true
}

type Correlation[T constraints.Float] struct {
	axis       sparse.Axis
	config     *Config
	averages   []T
	similarity *triangular.Matrix[T]
}

// NewCorrelation creates an unfit engine comparing the lines of an axis. A nil
// config means NewConfig().
func NewCorrelation[T constraints.Float](axis sparse.Axis, config *Config) *Correlation[T] {
	if config == nil {
		config = NewConfig()
	}
	return &Correlation[T]{axis: axis, config: config}
}

func (c *Correlation[T]) Axis() sparse.Axis {
	return c.axis
}

func (c *Correlation[T]) IsFit() bool {
	return c.similarity != nil
}

// Similarity returns the matrix computed by the last successful Fit, or nil.
func (c *Correlation[T]) Similarity() *triangular.Matrix[T] {
	return c.similarity
}

// Averages returns the line averages used by the last successful Fit.
func (c *Correlation[T]) Averages() []T {
	return c.averages
}

// PairTerms reduces the intersection of lines i and j into Terms. means are
// the averages of the lines of the axis, opposite the averages of the other
// axis, which only AdjustedCosine reads. A line whose values are all equal
// must have that value as its average for its deviations to be zero.
func PairTerms[T constraints.Float](m sparse.SparseMatrix[T], axis sparse.Axis, method Method, i, j int, means, opposite []T) (Terms[T], error) {
	if method == Pearson {
		mi, mj := means[i], means[j]
		terms, err := sparse.ReducePair(m, axis, i, j, Terms[T]{}, func(a, b T, acc Terms[T]) Terms[T] {
			da, db := a-mi, b-mj
			return Terms[T]{acc[0] + da*db, acc[1] + da*da, acc[2] + db*db}
		})
		return terms, errors.Trace(err)
	}
	if method != AdjustedCosine {
		return Terms[T]{}, util.Errorf(util.InvalidArgument, "unknown correlation %v", method)
	}
	// the opposite mean depends on the shared index
	var terms Terms[T]
	err := m.ForIntersection(axis, i, j, func(index int, a, b T) {
		da, db := a-opposite[index], b-opposite[index]
		terms[0] += da * db
		terms[1] += da * da
		terms[2] += db * db
	})
	if err != nil {
		return Terms[T]{}, errors.Trace(err)
	}
	return terms, nil
}

// Fit computes the similarity of every pair of lines. A failed fit leaves the
// engine as it was.
func (c *Correlation[T]) Fit(m sparse.SparseMatrix[T]) error {
	start := time.Now()
	method := c.config.Method
	if method != Pearson && method != AdjustedCosine {
		return util.Errorf(util.InvalidArgument, "unknown correlation %v", method)
	}
	jobs := parallel.Jobs(c.config.Jobs)

	// averages
	counts := m.NumElementsAxis(c.axis)
	averages, err := stats.AverageAxis(m, c.axis, counts)
	if err != nil {
		return errors.Annotatef(err, "failed to average %v axis", c.axis)
	}
	// an empty opposite line shares no index with any line
	var opposite []T
	if method == AdjustedCosine {
		if opposite, _, err = stats.PartialAverageAxis(m, c.axis.Other()); err != nil {
			return errors.Annotatef(err, "failed to average %v axis", c.axis.Other())
		}
	}

	// columns are compared as rows of the transpose
	work, axis := m, c.axis
	if concrete, ok := m.(*sparse.Matrix[T]); ok && axis == sparse.Col {
		work, axis = concrete.Transpose(), sparse.Row
	}

	n := m.Size(c.axis)
	log.Logger().Debug("start fitting correlation",
		zap.Stringer("method", method),
		zap.Stringer("axis", c.axis),
		zap.Int("n_lines", n),
		zap.Int("n_pairs", triangular.Len(n)),
		zap.Int("n_jobs", jobs))
	similarity := triangular.New[T](n)
	var pairs atomic.Int64
	err = parallel.For(parallel.NewRange(0, n), jobs, func(r parallel.Range) error {
		for i := r.Begin; i < r.End; i++ {
			for j := i + 1; j < n; j++ {
				terms, err := PairTerms(work, axis, method, i, j, averages, opposite)
				if err != nil {
					return errors.Trace(err)
				}
				value, ok := terms.Value()
				if !ok && c.config.ZeroVariance == ZeroVarianceError {
					return util.Errorf(util.DivideByZero, "%v %d and %v %d have zero variance", c.axis, i, c.axis, j)
				}
				similarity.Set(i, j, value)
			}
			pairs.Add(int64(n - i - 1))
			if c.config.Progress != nil {
				c.config.Progress(1)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Trace(err)
	}

	c.averages = averages
	c.similarity = similarity
	elapsed := time.Since(start)
	FitSeconds.WithLabelValues(method.String(), c.axis.String()).Observe(elapsed.Seconds())
	PairsTotal.WithLabelValues(method.String()).Add(float64(pairs.Load()))
	log.Logger().Info("fit correlation complete",
		zap.Stringer("method", method),
		zap.Stringer("axis", c.axis),
		zap.Int("n_lines", n),
		zap.Int64("n_pairs", pairs.Load()),
		zap.Duration("used_time", elapsed))
	return nil
}
