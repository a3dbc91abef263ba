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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelMethod = "method"
	LabelAxis   = "axis"
)

var (
	FitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "erised",
		Subsystem: "correlation",
		Name:      "fit_seconds",
	}, []string{LabelMethod, LabelAxis})
	PairsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "erised",
		Subsystem: "correlation",
		Name:      "pairs_total",
	}, []string{LabelMethod})
)
