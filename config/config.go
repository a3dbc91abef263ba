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
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of the command line tool.
type Config struct {
	Data        DataConfig        `mapstructure:"data"`
	Correlation CorrelationConfig `mapstructure:"correlation"`
	Predict     PredictConfig     `mapstructure:"predict"`
}

// DataConfig describes the rating file.
type DataConfig struct {
	Separator string `mapstructure:"separator" validate:"len=1"`
	Header    bool   `mapstructure:"header"`
}

// CorrelationConfig is the configuration of similarity fitting.
type CorrelationConfig struct {
	Axis         string `mapstructure:"axis" validate:"oneof=row col"`
	Method       string `mapstructure:"method" validate:"oneof=pearson adjusted-cosine"`
	ZeroVariance string `mapstructure:"zero_variance" validate:"oneof=error zero"`
	Jobs         int    `mapstructure:"jobs" validate:"gte=0"`
}

// PredictConfig is the configuration of rating prediction.
type PredictConfig struct {
	TopK      int     `mapstructure:"top_k" validate:"gte=0"`
	Threshold float64 `mapstructure:"threshold" validate:"gte=-1,lte=1"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Separator: ",",
		},
		Correlation: CorrelationConfig{
			Axis:         "col",
			Method:       "pearson",
			ZeroVariance: "zero",
		},
		Predict: PredictConfig{
			TopK:      20,
			Threshold: 0,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [data]
	v.SetDefault("data.separator", defaultConfig.Data.Separator)
	v.SetDefault("data.header", defaultConfig.Data.Header)
	// [correlation]
	v.SetDefault("correlation.axis", defaultConfig.Correlation.Axis)
	v.SetDefault("correlation.method", defaultConfig.Correlation.Method)
	v.SetDefault("correlation.zero_variance", defaultConfig.Correlation.ZeroVariance)
	v.SetDefault("correlation.jobs", defaultConfig.Correlation.Jobs)
	// [predict]
	v.SetDefault("predict.top_k", defaultConfig.Predict.TopK)
	v.SetDefault("predict.threshold", defaultConfig.Predict.Threshold)
}

// Validate checks every field against its tag.
func (config *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return errors.Trace(validate.Struct(config))
}

// LoadConfig reads the configuration file at path, or only defaults and
// environment variables if path is empty. Environment variables are named
// ERISED_<SECTION>_<KEY>, e.g. ERISED_CORRELATION_JOBS.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetEnvPrefix("ERISED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "failed to read config %s", path)
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}
