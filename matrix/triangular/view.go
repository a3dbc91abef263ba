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

package triangular

import "github.com/gorse-io/erised/matrix/sparse"

// View is a zero-copy row or column of a Matrix that skips the diagonal. Its
// k-th element is the element at Index(k) of the line.
type View[T sparse.Number] struct {
	matrix *Matrix[T]
	line   int
	col    bool
}

func (v View[T]) Len() int {
	return max(v.matrix.size-1, 0)
}

// Index maps a view position to the index of the row or column it reads.
func (v View[T]) Index(k int) int {
	if k < v.line {
		return k
	}
	return k + 1
}

// At returns the k-th off-diagonal element of the line.
func (v View[T]) At(k int) T {
	if v.col {
		return v.matrix.At(v.Index(k), v.line)
	}
	return v.matrix.At(v.line, v.Index(k))
}

// Range calls fn for every off-diagonal element in index order.
func (v View[T]) Range(fn func(index int, value T)) {
	for k := 0; k < v.Len(); k++ {
		fn(v.Index(k), v.At(k))
	}
}

// Values copies the view into a slice.
func (v View[T]) Values() []T {
	values := make([]T, v.Len())
	for k := range values {
		values[k] = v.At(k)
	}
	return values
}
