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

// SparseMatrix is the contract shared by every storage backend. Statistics and
// similarity are written against it only.
type SparseMatrix[T Number] interface {
	Rows() int
	Cols() int
	Size(axis Axis) int
	Element(x, y int) (T, error)

	NumElements() int
	NumElementsLine(i int) (int, error)
	NumElementsCol(i int) (int, error)
	NumElementsAxis(axis Axis) []int

	Map(fn MapFunc[T]) error
	RowMap(i int, fn MapFunc[T]) error
	ColMap(i int, fn MapFunc[T]) error
	MapAxis(axis Axis, fn LineMapFunc[T]) error

	Reduce(fold FoldFunc[T], combine CombineFunc[T]) (T, error)
	RowReduce(i int, fold FoldFunc[T]) (T, error)
	ColReduce(i int, fold FoldFunc[T], combine CombineFunc[T]) (T, error)
	ReduceAxis(axis Axis, fold FoldFunc[T]) ([]T, error)
	ReduceAxisWith(axis Axis, fold LineFoldFunc[T]) ([]T, error)

	ForEach(axis Axis, i int, fn func(index int, value T)) error
	ForIntersection(axis Axis, i1, i2 int, fn func(index int, a, b T)) error

	Min(i int, axis Axis) (T, error)
	Max(i int, axis Axis) (T, error)
	MinAxis(axis Axis) ([]T, error)
	MaxAxis(axis Axis) ([]T, error)
	ExtremaAxis(axis Axis) (mins, maxs []T, counts []int)
}

var (
	_ SparseMatrix[float32] = (*Matrix[float32])(nil)
	_ SparseMatrix[float64] = (*Matrix[float64])(nil)
	_ SparseMatrix[int]     = (*Matrix[int])(nil)
)
