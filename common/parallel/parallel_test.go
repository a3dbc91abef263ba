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
	"fmt"
	"runtime"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestRangeSplit(t *testing.T) {
	assert.Equal(t, []Range{{0, 2}, {2, 4}, {4, 6}}, NewRange(0, 6).Split(3))
	assert.Equal(t, []Range{{1, 4}, {4, 6}, {6, 8}}, NewRange(1, 8).Split(3))
	assert.Equal(t, []Range{{0, 1}, {1, 2}}, NewRange(0, 2).Split(8))
	assert.Equal(t, []Range{{3, 5}}, NewRange(3, 5).Split(0))
	assert.Nil(t, NewRange(5, 5).Split(4))
	assert.True(t, NewRange(5, 3).Empty())
	assert.Equal(t, 0, NewRange(5, 3).Len())
}

func TestJobs(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), Jobs(0))
	assert.Equal(t, runtime.NumCPU(), Jobs(-1))
	assert.Equal(t, 3, Jobs(3))
}

func TestFor(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		a := lo.Range(10000)
		b := make([]int, len(a))
		// multiple threads
		var mu sync.Mutex
		partitions := mapset.NewSet[Range]()
		err := For(NewRange(0, len(a)), 4, func(r Range) error {
			mu.Lock()
			partitions.Add(r)
			mu.Unlock()
			for i := r.Begin; i < r.End; i++ {
				b[i] = a[i]
				time.Sleep(time.Microsecond)
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, 4, partitions.Cardinality())
		// single thread
		partitions.Clear()
		b = make([]int, len(a))
		err = For(NewRange(0, len(a)), 1, func(r Range) error {
			partitions.Add(r)
			for i := r.Begin; i < r.End; i++ {
				b[i] = a[i]
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, a, b)
		assert.True(t, partitions.Equal(mapset.NewSet(NewRange(0, len(a)))))
	})
}

func TestForEmpty(t *testing.T) {
	called := false
	err := For(NewRange(0, 0), 4, func(r Range) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestForFail(t *testing.T) {
	// multiple threads
	err := For(NewRange(0, 10000), 4, func(r Range) error {
		for i := r.Begin; i < r.End; i++ {
			if i%2 == 1 {
				return fmt.Errorf("error from %d", i)
			}
		}
		return nil
	})
	assert.EqualError(t, err, "error from 1")
	// single thread
	err = For(NewRange(0, 10000), 1, func(r Range) error {
		return fmt.Errorf("error from %d", r.Begin)
	})
	assert.EqualError(t, err, "error from 0")
}

func TestForPanic(t *testing.T) {
	err := For(NewRange(0, 100), 4, func(r Range) error {
		if r.Begin > 0 {
			panic("boom")
		}
		return nil
	})
	assert.ErrorContains(t, err, "panic in partition [25, 50): boom")
	assert.NotEmpty(t, errors.ErrorStack(err))

	// single thread
	err = For(NewRange(0, 10), 1, func(r Range) error {
		panic("boom")
	})
	assert.ErrorContains(t, err, "panic in partition [0, 10): boom")
}

func TestReduce(t *testing.T) {
	a := lo.Range(10001)
	sum := func(r Range, acc int) (int, error) {
		for i := r.Begin; i < r.End; i++ {
			acc += a[i]
		}
		return acc, nil
	}
	add := func(x, y int) int { return x + y }
	for _, jobs := range []int{1, 2, 3, 8} {
		total, err := Reduce(NewRange(0, len(a)), jobs, 0, sum, add)
		assert.NoError(t, err)
		assert.Equal(t, lo.Sum(a), total)
	}
	// empty range returns identity
	total, err := Reduce(NewRange(0, 0), 4, 42, sum, add)
	assert.NoError(t, err)
	assert.Equal(t, 42, total)
}

func TestReduceFail(t *testing.T) {
	_, err := Reduce(NewRange(0, 100), 4, 0, func(r Range, acc int) (int, error) {
		if r.Begin >= 50 {
			return 0, fmt.Errorf("error from %d", r.Begin)
		}
		return acc, nil
	}, func(x, y int) int { return x + y })
	assert.EqualError(t, err, "error from 50")
}
