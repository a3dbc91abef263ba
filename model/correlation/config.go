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
	"fmt"
	"strings"

	"github.com/juju/errors"
)

// Method selects how values are centered before the cosine is taken.
type Method int

const (
	// Pearson centers each value by the mean of its own line.
	Pearson Method = iota
	// AdjustedCosine centers each value by the mean of the line of the
	// opposite axis it belongs to, e.g. item-item similarity centered by
	// user means.
	AdjustedCosine
)

func (method Method) String() string {
	switch method {
	case Pearson:
		return "pearson"
	case AdjustedCosine:
		return "adjusted-cosine"
	default:
		return fmt.Sprintf("method(%d)", int(method))
	}
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "pearson":
		return Pearson, nil
	case "adjusted-cosine", "adjusted_cosine", "adjustedcosine":
		return AdjustedCosine, nil
	}
	return 0, errors.NotValidf("correlation method %q", s)
}

// ZeroVariancePolicy decides the similarity of a pair whose centered values
// have no deviation, including pairs that share no index.
type ZeroVariancePolicy int

const (
	// ZeroVarianceError fails the fit with DivideByZero.
	ZeroVarianceError ZeroVariancePolicy = iota
	// ZeroVarianceZero writes 0 for the pair.
	ZeroVarianceZero
)

func (policy ZeroVariancePolicy) String() string {
	switch policy {
	case ZeroVarianceError:
		return "error"
	case ZeroVarianceZero:
		return "zero"
	default:
		return fmt.Sprintf("policy(%d)", int(policy))
	}
}

func ParseZeroVariancePolicy(s string) (ZeroVariancePolicy, error) {
	switch strings.ToLower(s) {
	case "error":
		return ZeroVarianceError, nil
	case "zero":
		return ZeroVarianceZero, nil
	}
	return 0, errors.NotValidf("zero variance policy %q", s)
}

type Config struct {
	Jobs         int
	Method       Method
	ZeroVariance ZeroVariancePolicy
	// Progress is called with the number of lines finished since its last
	// call. It is called from multiple goroutines.
	Progress func(lines int)
}

func NewConfig() *Config {
	return &Config{Jobs: 1}
}

func (config *Config) SetJobs(jobs int) *Config {
	config.Jobs = jobs
	return config
}

func (config *Config) SetMethod(method Method) *Config {
	config.Method = method
	return config
}

func (config *Config) SetZeroVariance(policy ZeroVariancePolicy) *Config {
	config.ZeroVariance = policy
	return config
}

func (config *Config) SetProgress(progress func(lines int)) *Config {
	config.Progress = progress
	return config
}
