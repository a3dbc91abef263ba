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
	"strconv"

	"github.com/gorse-io/erised/common/parallel"
	"github.com/gorse-io/erised/dataset"
	"github.com/gorse-io/erised/matrix/sparse"
	"github.com/gorse-io/erised/stats"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Describe every user or item of a rating file",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		ratings, err := loadRatings(cmd, conf)
		if err != nil {
			return errors.Trace(err)
		}
		axis, err := sparse.ParseAxis(conf.Correlation.Axis)
		if err != nil {
			return errors.Trace(err)
		}
		ratings.Matrix.SetJobs(parallel.Jobs(conf.Correlation.Jobs))
		limit, _ := cmd.Flags().GetInt("limit")
		return writeStats(cmd.OutOrStdout(), ratings, axis, limit)
	},
}

func init() {
	statsCommand.Flags().IntP("limit", "n", 0, "maximum number of lines to print, 0 for all")
}

func writeStats(w io.Writer, ratings *dataset.Ratings, axis sparse.Axis, limit int) error {
	summary, err := stats.Describe[float64](ratings.Matrix, axis)
	if err != nil {
		return errors.Trace(err)
	}
	mins, err := ratings.Matrix.MinAxis(axis)
	if err != nil {
		return errors.Trace(err)
	}
	maxs, err := ratings.Matrix.MaxAxis(axis)
	if err != nil {
		return errors.Trace(err)
	}
	average, err := stats.AverageAll[float64](ratings.Matrix)
	if err != nil {
		return errors.Trace(err)
	}

	names := lineNames(ratings, axis)
	n := len(summary.Counts)
	if limit > 0 {
		n = min(n, limit)
	}
	table := tablewriter.NewWriter(w)
	table.Header("#", "id", "count", "mean", "std", "min", "max")
	for i := 0; i < n; i++ {
		name, _ := names.String(i)
		if err = table.Append([]string{
			strconv.Itoa(i),
			name,
			strconv.Itoa(summary.Counts[i]),
			formatFloat(summary.Averages[i]),
			formatFloat(summary.StdDevs[i]),
			formatFloat(mins[i]),
			formatFloat(maxs[i]),
		}); err != nil {
			return errors.Trace(err)
		}
	}
	if err = table.Render(); err != nil {
		return errors.Trace(err)
	}
	_, err = fmt.Fprintf(w, "%d ratings of %d users and %d items, global mean %s\n",
		ratings.Matrix.NumElements(), ratings.Users.Count(), ratings.Items.Count(), formatFloat(average))
	return errors.Trace(err)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
