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

package main

import (
	"fmt"

	"github.com/gorse-io/erised/cmd/version"
	"github.com/gorse-io/erised/common/log"
	"github.com/gorse-io/erised/config"
	"github.com/gorse-io/erised/dataset"
	"github.com/gorse-io/erised/matrix/sparse"
	"github.com/gorse-io/erised/model/correlation"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:          "erised",
	Short:        "Statistics and similarity of sparse rating matrices.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
	},
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.Bool("debug", false, "use debug log mode")
	flags.StringP("config", "c", "", "configuration file path")
	flags.StringP("ratings", "r", "", "rating file of user, item and rating records")
	flags.String("separator", "", "field separator of the rating file")
	flags.Bool("header", false, "skip the first record of the rating file")
	flags.String("axis", "", "compare rows (users) or columns (items)")
	flags.String("method", "", "similarity method: pearson or adjusted-cosine")
	flags.String("zero-variance", "", "similarity of zero variance pairs: error or zero")
	flags.IntP("jobs", "j", 0, "number of working jobs, 0 for all CPUs")
	log.AddFlags(flags)
	rootCommand.AddCommand(versionCommand, statsCommand, similarityCommand, predictCommand)
}

// loadConfig reads the configuration file and applies command line flags
// on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	flags := cmd.Flags()
	if flags.Changed("separator") {
		conf.Data.Separator, _ = flags.GetString("separator")
	}
	if flags.Changed("header") {
		conf.Data.Header, _ = flags.GetBool("header")
	}
	if flags.Changed("axis") {
		conf.Correlation.Axis, _ = flags.GetString("axis")
	}
	if flags.Changed("method") {
		conf.Correlation.Method, _ = flags.GetString("method")
	}
	if flags.Changed("zero-variance") {
		conf.Correlation.ZeroVariance, _ = flags.GetString("zero-variance")
	}
	if flags.Changed("jobs") {
		conf.Correlation.Jobs, _ = flags.GetInt("jobs")
	}
	if err = conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return conf, nil
}

// loadRatings reads the rating file named by --ratings.
func loadRatings(cmd *cobra.Command, conf *config.Config) (*dataset.Ratings, error) {
	path, _ := cmd.Flags().GetString("ratings")
	if path == "" {
		return nil, errors.NotValidf("empty rating file path")
	}
	ratings, err := dataset.LoadRatingsFile(path, dataset.LoadOptions{
		Separator: []rune(conf.Data.Separator)[0],
		Header:    conf.Data.Header,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load ratings",
		zap.String("path", path),
		zap.Int("n_users", ratings.Users.Count()),
		zap.Int("n_items", ratings.Items.Count()),
		zap.Int("n_ratings", ratings.Matrix.NumElements()))
	return ratings, nil
}

// lineNames returns the ids of the lines of an axis: users for rows, items
// for columns.
func lineNames(ratings *dataset.Ratings, axis sparse.Axis) *dataset.FreqDict {
	if axis == sparse.Row {
		return ratings.Users
	}
	return ratings.Items
}

func correlationConfig(conf *config.Config) (sparse.Axis, *correlation.Config, error) {
	axis, err := sparse.ParseAxis(conf.Correlation.Axis)
	if err != nil {
		return 0, nil, errors.Trace(err)
	}
	method, err := correlation.ParseMethod(conf.Correlation.Method)
	if err != nil {
		return 0, nil, errors.Trace(err)
	}
	policy, err := correlation.ParseZeroVariancePolicy(conf.Correlation.ZeroVariance)
	if err != nil {
		return 0, nil, errors.Trace(err)
	}
	return axis, correlation.NewConfig().
		SetJobs(conf.Correlation.Jobs).
		SetMethod(method).
		SetZeroVariance(policy), nil
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute command", zap.Error(err))
	}
}
