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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
	assert.NoError(t, config.Validate())
}

func TestUnmarshal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "erised.toml")
	assert.NoError(t, os.WriteFile(path, []byte(`
[data]
separator = "\t"
header = true

[correlation]
axis = "row"
method = "adjusted-cosine"
zero_variance = "error"
jobs = 8

[predict]
top_k = 5
threshold = 0.1
`), 0o644))
	config, err := LoadConfig(path)
	assert.NoError(t, err)
	// [data]
	assert.Equal(t, "\t", config.Data.Separator)
	assert.True(t, config.Data.Header)
	// [correlation]
	assert.Equal(t, "row", config.Correlation.Axis)
	assert.Equal(t, "adjusted-cosine", config.Correlation.Method)
	assert.Equal(t, "error", config.Correlation.ZeroVariance)
	assert.Equal(t, 8, config.Correlation.Jobs)
	// [predict]
	assert.Equal(t, 5, config.Predict.TopK)
	assert.Equal(t, 0.1, config.Predict.Threshold)
}

func TestBindEnv(t *testing.T) {
	t.Setenv("ERISED_CORRELATION_JOBS", "3")
	t.Setenv("ERISED_CORRELATION_METHOD", "adjusted-cosine")
	t.Setenv("ERISED_PREDICT_TOP_K", "7")
	config, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, 3, config.Correlation.Jobs)
	assert.Equal(t, "adjusted-cosine", config.Correlation.Method)
	assert.Equal(t, 7, config.Predict.TopK)
}

func TestValidate(t *testing.T) {
	config := GetDefaultConfig()
	config.Correlation.Method = "cosine"
	assert.Error(t, config.Validate())
	config = GetDefaultConfig()
	config.Correlation.Jobs = -1
	assert.Error(t, config.Validate())
	config = GetDefaultConfig()
	config.Data.Separator = ";;"
	assert.Error(t, config.Validate())
	config = GetDefaultConfig()
	config.Predict.Threshold = 2
	assert.Error(t, config.Validate())

	t.Setenv("ERISED_CORRELATION_AXIS", "diagonal")
	_, err := LoadConfig("")
	assert.Error(t, err)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
