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
	"io"
	"os"

	"github.com/gorse-io/erised/common/parallel"
	"github.com/gorse-io/erised/config"
	"github.com/gorse-io/erised/dataset"
	"github.com/gorse-io/erised/model/correlation"
	"github.com/gorse-io/erised/model/knn"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var similarityCommand = &cobra.Command{
	Use:   "similarity",
	Short: "Find the most similar users or items",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		if cmd.Flags().Changed("top-k") {
			conf.Predict.TopK, _ = cmd.Flags().GetInt("top-k")
		}
		if cmd.Flags().Changed("threshold") {
			conf.Predict.Threshold, _ = cmd.Flags().GetFloat64("threshold")
		}
		ratings, err := loadRatings(cmd, conf)
		if err != nil {
			return errors.Trace(err)
		}
		c, err := fitCorrelation(ratings, conf, true)
		if err != nil {
			return errors.Trace(err)
		}
		limit, _ := cmd.Flags().GetInt("limit")
		return writeSimilarity(cmd.OutOrStdout(), ratings, c, conf, limit)
	},
}

func init() {
	similarityCommand.Flags().IntP("top-k", "k", 0, "number of neighbors per line, 0 for all")
	similarityCommand.Flags().Float64("threshold", 0, "minimal similarity of neighbors")
	similarityCommand.Flags().IntP("limit", "n", 0, "maximum number of lines to print, 0 for all")
}

// fitCorrelation fits the similarity of the configured axis, optionally
// drawing a progress bar on stderr.
func fitCorrelation(ratings *dataset.Ratings, conf *config.Config, progress bool) (*correlation.Correlation[float64], error) {
	axis, fitConfig, err := correlationConfig(conf)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ratings.Matrix.SetJobs(parallel.Jobs(conf.Correlation.Jobs))
	if progress {
		bar := progressbar.NewOptions(ratings.Matrix.Size(axis),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("fit "+fitConfig.Method.String()),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish())
		defer func() { _ = bar.Finish() }()
		fitConfig.SetProgress(func(lines int) { _ = bar.Add(lines) })
	}
	c := correlation.NewCorrelation[float64](axis, fitConfig)
	if err = c.Fit(ratings.Matrix); err != nil {
		return nil, errors.Trace(err)
	}
	return c, nil
}

func writeSimilarity(w io.Writer, ratings *dataset.Ratings, c *correlation.Correlation[float64], conf *config.Config, limit int) error {
	sim := c.Similarity()
	names := lineNames(ratings, c.Axis())
	n := sim.Size()
	if limit > 0 {
		n = min(n, limit)
	}
	table := tablewriter.NewWriter(w)
	table.Header("id", "neighbor", "similarity")
	for i := 0; i < n; i++ {
		var (
			neighbors []knn.Neighbor[float64]
			err       error
		)
		if conf.Predict.TopK > 0 {
			neighbors, err = knn.TopK(sim, i, conf.Predict.TopK)
			neighbors = lo.Filter(neighbors, func(n knn.Neighbor[float64], _ int) bool {
				return n.Similarity >= conf.Predict.Threshold
			})
		} else {
			neighbors, err = knn.Neighbors(sim, i, conf.Predict.Threshold)
		}
		if err != nil {
			return errors.Trace(err)
		}
		name, _ := names.String(i)
		for _, neighbor := range neighbors {
			neighborName, _ := names.String(neighbor.Index)
			if err = table.Append([]string{name, neighborName, formatFloat(neighbor.Similarity)}); err != nil {
				return errors.Trace(err)
			}
		}
	}
	return errors.Trace(table.Render())
}
