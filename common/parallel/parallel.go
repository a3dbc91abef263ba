// Copyright 2020 gorse Project Authors
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

package parallel

import (
	"runtime"
	"sync"

	"github.com/juju/errors"
	"modernc.org/mathutil"
)

/* Fork-join Schedulers */

// Range is a half-open interval [Begin, End) of indices.
type Range struct {
	Begin int
	End   int
}

// NewRange creates the range [begin, end).
func NewRange(begin, end int) Range {
	return Range{Begin: begin, End: end}
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.End < r.Begin {
		return 0
	}
	return r.End - r.Begin
}

// Empty returns true if the range contains no index.
func (r Range) Empty() bool {
	return r.Len() == 0
}

// Split divides the range into at most n contiguous, disjoint partitions in
// index order. Sizes of partitions differ by at most one.
func (r Range) Split(n int) []Range {
	size := r.Len()
	if size == 0 {
		return nil
	}
	n = mathutil.Max(1, mathutil.Min(n, size))
	minChunkSize := size / n
	maxChunkNum := size % n
	chunks := make([]Range, n)
	for i, begin := 0, r.Begin; i < n; i++ {
		chunkSize := minChunkSize
		if i < maxChunkNum {
			chunkSize++
		}
		chunks[i] = Range{Begin: begin, End: begin + chunkSize}
		begin += chunkSize
	}
	return chunks
}

// Jobs returns the number of workers to use for a requested count. A count
// less than one means one worker per CPU.
func Jobs(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// For partitions r into nJobs sub-ranges and calls worker once per partition.
// If nJobs <= 1 the whole range is passed to worker on the calling goroutine.
// For returns after every partition completes. Side effects of worker must
// target disjoint memory across partitions. The first error in partition
// order is returned; a panic in worker is returned as an error.
func For(r Range, nJobs int, worker func(Range) error) error {
	if nJobs <= 1 || r.Len() <= 1 {
		if r.Empty() {
			return nil
		}
		return errors.Trace(call(r, worker))
	}
	chunks := r.Split(nJobs)
	errs := make([]error, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Go(func() {
			errs[i] = call(chunk, worker)
		})
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Reduce folds every partition of r with worker starting from identity and
// merges partition results with combine. combine must be associative and
// commutative and identity must be its neutral element, since neither the
// partitioning nor the merge order is specified.
func Reduce[T any](r Range, nJobs int, identity T, worker func(Range, T) (T, error), combine func(a, b T) T) (T, error) {
	if nJobs <= 1 || r.Len() <= 1 {
		if r.Empty() {
			return identity, nil
		}
		var result T
		err := call(r, func(r Range) (err error) {
			result, err = worker(r, identity)
			return
		})
		if err != nil {
			return identity, errors.Trace(err)
		}
		return result, nil
	}
	chunks := r.Split(nJobs)
	results := make([]T, len(chunks))
	errs := make([]error, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Go(func() {
			errs[i] = call(chunk, func(r Range) (err error) {
				results[i], err = worker(r, identity)
				return
			})
		})
	}
	wg.Wait()
	result := identity
	for i := range chunks {
		if errs[i] != nil {
			return identity, errors.Trace(errs[i])
		}
		result = combine(result, results[i])
	}
	return result, nil
}

func call(r Range, worker func(Range) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("panic in partition [%d, %d): %v", r.Begin, r.End, p)
		}
	}()
	return worker(r)
}
