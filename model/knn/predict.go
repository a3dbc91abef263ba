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

package knn

import (
	"math"

	"github.com/gorse-io/erised/common/heap"
	"github.com/gorse-io/erised/common/parallel"
	"github.com/gorse-io/erised/common/util"
	"github.com/gorse-io/erised/matrix/sparse"
	"github.com/gorse-io/erised/matrix/triangular"
	"github.com/juju/errors"
	"golang.org/x/exp/constraints"
)

// Predictor estimates the value of a line at a missing index from the lines
// similar to it that store a value at that index:
//
//	mean(line) + sum(sim * (r - mean(n))) / sum(|sim|)
//
// With axis Row the lines are users and the index is an item (user filter),
// with axis Col the lines are items and the index is a user (item filter).
type Predictor[T constraints.Float] struct {
	matrix     sparse.SparseMatrix[T]
	similarity *triangular.Matrix[T]
	axis       sparse.Axis
	averages   []T
	topK       int
	jobs       int
}

// NewPredictor creates a predictor. averages are the line means of the axis
// the similarity matrix was computed on.
func NewPredictor[T constraints.Float](m sparse.SparseMatrix[T], sim *triangular.Matrix[T], axis sparse.Axis, averages []T) (*Predictor[T], error) {
	if sim.Size() != m.Size(axis) {
		return nil, util.Errorf(util.InvalidArgument,
			"similarity of size %d does not match %d lines", sim.Size(), m.Size(axis))
	}
	if len(averages) != m.Size(axis) {
		return nil, util.Errorf(util.InvalidArgument,
			"expect %d averages, got %d", m.Size(axis), len(averages))
	}
	return &Predictor[T]{
		matrix:     m,
		similarity: sim,
		axis:       axis,
		averages:   averages,
		jobs:       1,
	}, nil
}

// SetTopK keeps only the k most similar neighbors. Zero means all.
func (p *Predictor[T]) SetTopK(k int) *Predictor[T] {
	p.topK = k
	return p
}

func (p *Predictor[T]) SetJobs(jobs int) *Predictor[T] {
	p.jobs = jobs
	return p
}

// Predict estimates the value of line at index target of the other axis.
func (p *Predictor[T]) Predict(line, target int) (T, error) {
	if line < 0 || line >= p.similarity.Size() {
		return 0, util.Errorf(util.OutOfRange, "%v %d is out of [0, %d)", p.axis, line, p.similarity.Size())
	}
	// lines that store a value at target
	var candidates []heap.Elem[int, T]
	err := p.matrix.ForEach(p.axis.Other(), target, func(index int, value T) {
		if index != line {
			candidates = append(candidates, heap.Elem[int, T]{Value: index, Weight: value})
		}
	})
	if err != nil {
		return 0, errors.Trace(err)
	}
	if p.topK > 0 && len(candidates) > p.topK {
		filter := heap.NewTopKFilter[heap.Elem[int, T], T](p.topK)
		for _, c := range candidates {
			filter.Push(c, p.similarity.At(line, c.Value))
		}
		candidates = filter.PopAllValues()
	}

	terms, err := parallel.Reduce(parallel.NewRange(0, len(candidates)), p.jobs, [2]T{},
		func(r parallel.Range, acc [2]T) ([2]T, error) {
			for k := r.Begin; k < r.End; k++ {
				n, rating := candidates[k].Value, candidates[k].Weight
				sim := p.similarity.At(line, n)
				acc[0] += sim * (rating - p.averages[n])
				acc[1] += T(math.Abs(float64(sim)))
			}
			return acc, nil
		}, func(a, b [2]T) [2]T {
			return [2]T{a[0] + b[0], a[1] + b[1]}
		})
	if err != nil {
		return 0, errors.Trace(err)
	}
	if terms[1] == 0 {
		return 0, util.Errorf(util.DivideByZero, "no neighbor of %v %d rated %d", p.axis, line, target)
	}
	return p.averages[line] + terms[0]/terms[1], nil
}
