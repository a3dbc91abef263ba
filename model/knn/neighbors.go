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

// Package knn selects the nearest lines of a similarity matrix and predicts
// missing ratings from them.
package knn

import (
	"cmp"
	"slices"

	"github.com/gorse-io/erised/common/heap"
	"github.com/gorse-io/erised/common/util"
	"github.com/gorse-io/erised/matrix/triangular"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/constraints"
)

type Neighbor[T constraints.Float] struct {
	Index      int
	Similarity T
}

func checkLine[T constraints.Float](sim *triangular.Matrix[T], i int) error {
	if i < 0 || i >= sim.Size() {
		return util.Errorf(util.OutOfRange, "line %d is out of [0, %d)", i, sim.Size())
	}
	return nil
}

// Neighbors returns every other line whose similarity to line i is at least
// threshold, most similar first. Ties keep index order.
func Neighbors[T constraints.Float](sim *triangular.Matrix[T], i int, threshold T) ([]Neighbor[T], error) {
	if err := checkLine(sim, i); err != nil {
		return nil, errors.Trace(err)
	}
	var neighbors []Neighbor[T]
	sim.Row(i).Range(func(index int, value T) {
		if value >= threshold {
			neighbors = append(neighbors, Neighbor[T]{Index: index, Similarity: value})
		}
	})
	slices.SortStableFunc(neighbors, func(a, b Neighbor[T]) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	return neighbors, nil
}

// TopK returns the k lines most similar to line i, most similar first.
func TopK[T constraints.Float](sim *triangular.Matrix[T], i, k int) ([]Neighbor[T], error) {
	if err := checkLine(sim, i); err != nil {
		return nil, errors.Trace(err)
	}
	filter := heap.NewTopKFilter[int, T](k)
	sim.Row(i).Range(func(index int, value T) {
		filter.Push(index, value)
	})
	return lo.Map(filter.PopAll(), func(e heap.Elem[int, T], _ int) Neighbor[T] {
		return Neighbor[T]{Index: e.Value, Similarity: e.Weight}
	}), nil
}
