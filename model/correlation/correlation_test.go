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

package correlation

import (
	"math"
	"testing"

	"github.com/gorse-io/erised/common/util"
	"github.com/gorse-io/erised/matrix/sparse"
	"github.com/gorse-io/erised/stats"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func newRatings() *sparse.Matrix[float64] {
	return sparse.NewFromDense([][]float64{
		{5, 3, 4, 4, 0},
		{3, 1, 2, 3, 3},
		{4, 3, 4, 3, 5},
		{3, 3, 1, 5, 4},
		{1, 5, 5, 2, 1},
	})
}

func newSparseRatings() *sparse.Matrix[float64] {
	return sparse.NewFromDense([][]float64{
		{0.44, 0.8, 0, 0, 0, 0, 0, 0, 0},
		{0, 0.8, 1.4, 0, 0, 0, 1.7, 0, 0},
		{0.22, 0, 0, 0.7, 0.4, 0, 0, 0, 0},
		{0.22, 0, 0, 0, 0, 0.7, 0.7, 0.7, 0},
		{0, 0, 0, 0.2, 0.4, 0, 0, 0, 0.7},
		{0.22, 0, 0, 0, 0.4, 0, 0.3, 0.1, 0},
	})
}

// backend hides the concrete type so that columns are compared in place.
type backend struct {
	sparse.SparseMatrix[float64]
}

func TestParse(t *testing.T) {
	method, err := ParseMethod("Pearson")
	assert.NoError(t, err)
	assert.Equal(t, Pearson, method)
	method, err = ParseMethod("adjusted-cosine")
	assert.NoError(t, err)
	assert.Equal(t, AdjustedCosine, method)
	_, err = ParseMethod("cosine")
	assert.True(t, errors.Is(err, errors.NotValid))

	policy, err := ParseZeroVariancePolicy("zero")
	assert.NoError(t, err)
	assert.Equal(t, ZeroVarianceZero, policy)
	_, err = ParseZeroVariancePolicy("nan")
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Equal(t, "adjusted-cosine", AdjustedCosine.String())
	assert.Equal(t, "error", ZeroVarianceError.String())
}

func TestPairTerms(t *testing.T) {
	m := newRatings()
	means, err := stats.AverageAxis[float64](m, sparse.Col, nil)
	assert.NoError(t, err)
	assert.InDelta(t, 3.2, means[0], 1e-9)
	assert.InDelta(t, 3.25, means[4], 1e-9)
	terms, err := PairTerms[float64](m, sparse.Col, Pearson, 0, 4, means, nil)
	assert.NoError(t, err)
	assert.InDeltaSlice(t, []float64{6.25, 5.56, 8.75}, terms[:], 1e-9)
	value, ok := terms.Value()
	assert.True(t, ok)
	assert.InDelta(t, 0.89606, value, 1e-5)

	_, ok = Terms[float64]{1, 0, 2}.Value()
	assert.False(t, ok)
	_, err = PairTerms[float64](m, sparse.Col, Pearson, 0, 5, means, nil)
	assert.ErrorIs(t, err, util.OutOfRange)
}

func TestPearson(t *testing.T) {
	m := newRatings()
	c := NewCorrelation[float64](sparse.Col, NewConfig().SetJobs(2))
	assert.False(t, c.IsFit())
	assert.Nil(t, c.Similarity())
	before := testutil.ToFloat64(PairsTotal.WithLabelValues("pearson"))
	assert.NoError(t, c.Fit(m))
	assert.Equal(t, 10.0, testutil.ToFloat64(PairsTotal.WithLabelValues("pearson"))-before)
	assert.True(t, c.IsFit())
	assert.Equal(t, sparse.Col, c.Axis())
	assert.InDeltaSlice(t, []float64{3.2, 3, 3.2, 3.4, 3.25}, c.Averages(), 1e-9)

	sim := c.Similarity()
	assert.Equal(t, 5, sim.Size())
	v, err := sim.Element(0, 4)
	assert.NoError(t, err)
	assert.InDelta(t, 0.89606, v, 1e-5)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			a, _ := sim.Element(i, j)
			b, _ := sim.Element(j, i)
			assert.Equal(t, a, b)
			assert.LessOrEqual(t, a, 1+1e-9)
			assert.GreaterOrEqual(t, a, -1-1e-9)
		}
	}
}

func TestAdjustedCosine(t *testing.T) {
	c := NewCorrelation[float64](sparse.Col, NewConfig().SetMethod(AdjustedCosine))
	assert.NoError(t, c.Fit(newRatings()))
	v, err := c.Similarity().Element(4, 0)
	assert.NoError(t, err)
	// centered by the row means 2.4, 3.8, 3.2 and 2.8
	assert.InDelta(t, 0.80491, v, 1e-5)
}

func TestSerialParallel(t *testing.T) {
	for _, method := range []Method{Pearson, AdjustedCosine} {
		for _, axis := range []sparse.Axis{sparse.Row, sparse.Col} {
			serial := NewCorrelation[float64](axis, NewConfig().
				SetMethod(method).
				SetZeroVariance(ZeroVarianceZero))
			assert.NoError(t, serial.Fit(newSparseRatings()))
			parallel := NewCorrelation[float64](axis, NewConfig().
				SetJobs(4).
				SetMethod(method).
				SetZeroVariance(ZeroVarianceZero))
			assert.NoError(t, parallel.Fit(newSparseRatings().SetJobs(4)))
			assert.Equal(t, serial.Similarity().Data(), parallel.Similarity().Data())

			// columns compared in place match columns compared as rows
			generic := NewCorrelation[float64](axis, NewConfig().
				SetJobs(3).
				SetMethod(method).
				SetZeroVariance(ZeroVarianceZero))
			assert.NoError(t, generic.Fit(backend{newSparseRatings()}))
			assert.InDeltaSlice(t, serial.Similarity().Data(), generic.Similarity().Data(), 1e-12)
		}
	}
}

func TestZeroVariance(t *testing.T) {
	config := NewConfig().SetZeroVariance(ZeroVarianceZero)
	c := NewCorrelation[float64](sparse.Row, config)
	assert.NoError(t, c.Fit(newSparseRatings()))
	// rows 0 and 4 share no column
	v, err := c.Similarity().Element(0, 4)
	assert.NoError(t, err)
	assert.Zero(t, v)
	fitted := c.Similarity()

	// a failed fit keeps the previous result
	config.SetZeroVariance(ZeroVarianceError)
	err = c.Fit(newSparseRatings())
	assert.ErrorIs(t, err, util.DivideByZero)
	assert.Same(t, fitted, c.Similarity())

	// a line without values has no average
	empty := sparse.New[float64](3, 3)
	assert.NoError(t, empty.Set(0, 0, 1))
	assert.ErrorIs(t, NewCorrelation[float64](sparse.Row, nil).Fit(empty), util.DivideByZero)
}

func TestProgress(t *testing.T) {
	var lines atomic.Int64
	c := NewCorrelation[float64](sparse.Row, NewConfig().
		SetJobs(3).
		SetZeroVariance(ZeroVarianceZero).
		SetProgress(func(n int) { lines.Add(int64(n)) }))
	assert.NoError(t, c.Fit(newSparseRatings()))
	assert.Equal(t, int64(6), lines.Load())
}

func TestConstantLine(t *testing.T) {
	// the mean of three 0.1 is not 0.1 in floating point
	m := sparse.NewFromDense([][]float64{
		{0.1, 0.1, 0.1},
		{1, 2, 3},
	})
	c := NewCorrelation[float64](sparse.Row, nil)
	assert.ErrorIs(t, c.Fit(m), util.DivideByZero)
	assert.False(t, c.IsFit())

	c = NewCorrelation[float64](sparse.Row, NewConfig().SetZeroVariance(ZeroVarianceZero))
	assert.NoError(t, c.Fit(m))
	assert.Equal(t, 0.1, c.Averages()[0])
	v, err := c.Similarity().Element(0, 1)
	assert.NoError(t, err)
	assert.Zero(t, v)

	// every user rates alike, so no item deviates from its user mean
	users := sparse.NewFromDense([][]float64{
		{0.1, 0.1, 0.1},
		{0.7, 0.7, 0.7},
	})
	c = NewCorrelation[float64](sparse.Col, NewConfig().SetMethod(AdjustedCosine))
	assert.ErrorIs(t, c.Fit(users), util.DivideByZero)
}

func TestEmptyOppositeLine(t *testing.T) {
	// user 2 rated nothing
	m := sparse.NewFromDense([][]float64{
		{5, 3, 1},
		{2, 4, 1},
		{0, 0, 0},
	})
	for _, method := range []Method{Pearson, AdjustedCosine} {
		c := NewCorrelation[float64](sparse.Col, NewConfig().
			SetMethod(method).
			SetZeroVariance(ZeroVarianceZero))
		assert.NoError(t, c.Fit(m))
	}
	c := NewCorrelation[float64](sparse.Col, NewConfig().SetMethod(AdjustedCosine))
	assert.NoError(t, c.Fit(backend{m}))
	// centered by the user means 3 and 7/3
	v, err := c.Similarity().Element(0, 1)
	assert.NoError(t, err)
	assert.InDelta(t, -1/math.Sqrt(37), v, 1e-9)

	// user 2 is still a line of its own
	assert.ErrorIs(t, NewCorrelation[float64](sparse.Row, nil).Fit(m), util.DivideByZero)
}

func TestUnknownMethod(t *testing.T) {
	m := newRatings()
	c := NewCorrelation[float64](sparse.Col, NewConfig().SetMethod(Method(7)))
	assert.ErrorIs(t, c.Fit(m), util.InvalidArgument)
	assert.False(t, c.IsFit())

	means, err := stats.AverageAxis[float64](m, sparse.Col, nil)
	assert.NoError(t, err)
	_, err = PairTerms[float64](m, sparse.Col, Method(7), 0, 1, means, nil)
	assert.ErrorIs(t, err, util.InvalidArgument)
}
