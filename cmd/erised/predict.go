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
	"io"

	"github.com/gorse-io/erised/common/parallel"
	"github.com/gorse-io/erised/config"
	"github.com/gorse-io/erised/dataset"
	"github.com/gorse-io/erised/matrix/sparse"
	"github.com/gorse-io/erised/model/knn"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

var predictCommand = &cobra.Command{
	Use:   "predict <user> <item>",
	Short: "Predict the rating of a user to an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		if cmd.Flags().Changed("top-k") {
			conf.Predict.TopK, _ = cmd.Flags().GetInt("top-k")
		}
		ratings, err := loadRatings(cmd, conf)
		if err != nil {
			return errors.Trace(err)
		}
		return writePrediction(cmd.OutOrStdout(), ratings, conf, args[0], args[1])
	},
}

func init() {
	predictCommand.Flags().IntP("top-k", "k", 0, "number of neighbors used, 0 for all")
}

func writePrediction(w io.Writer, ratings *dataset.Ratings, conf *config.Config, user, item string) error {
	userIndex, ok := ratings.Users.Lookup(user)
	if !ok {
		return errors.NotFoundf("user %s", user)
	}
	itemIndex, ok := ratings.Items.Lookup(item)
	if !ok {
		return errors.NotFoundf("item %s", item)
	}
	c, err := fitCorrelation(ratings, conf, false)
	if err != nil {
		return errors.Trace(err)
	}
	predictor, err := knn.NewPredictor[float64](ratings.Matrix, c.Similarity(), c.Axis(), c.Averages())
	if err != nil {
		return errors.Trace(err)
	}
	predictor.SetTopK(conf.Predict.TopK).SetJobs(parallel.Jobs(conf.Correlation.Jobs))
	// user filter compares users, item filter compares items
	line, target := userIndex, itemIndex
	if c.Axis() == sparse.Col {
		line, target = itemIndex, userIndex
	}
	score, err := predictor.Predict(line, target)
	if err != nil {
		return errors.Annotatef(err, "failed to predict %s to %s", user, item)
	}
	if rating, _ := ratings.Matrix.Element(userIndex, itemIndex); rating != 0 {
		_, err = fmt.Fprintf(w, "%s %s %s (rated %s)\n", user, item, formatFloat(score), formatFloat(rating))
	} else {
		_, err = fmt.Fprintf(w, "%s %s %s\n", user, item, formatFloat(score))
	}
	return errors.Trace(err)
}
