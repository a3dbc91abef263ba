// Copyright 2025 gorse Project Authors
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

package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/gorse-io/erised/common/log"
	"github.com/gorse-io/erised/common/util"
	"github.com/gorse-io/erised/matrix/sparse"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Ratings is a user-item rating matrix. Rows are users and columns are items,
// indexed by the dictionaries.
type Ratings struct {
	Matrix *sparse.Matrix[float64]
	Users  *FreqDict
	Items  *FreqDict
}

type LoadOptions struct {
	// Separator between fields, ',' if zero.
	Separator rune
	// Header skips the first record.
	Header bool
}

// LoadRatings reads records of user, item and rating. Extra fields such as
// timestamps are ignored. If a pair is rated more than once the last rating
// wins, and zero ratings are not stored.
func LoadRatings(r io.Reader, opts LoadOptions) (*Ratings, error) {
	reader := csv.NewReader(r)
	if opts.Separator != 0 {
		reader.Comma = opts.Separator
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	ratings := &Ratings{Users: NewFreqDict(), Items: NewFreqDict()}
	var triplets []sparse.Triplet[float64]
	for first := true; ; first = false {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Annotate(err, "failed to read ratings")
		}
		if first && opts.Header {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(record) < 3 {
			return nil, errors.NotValidf("line %d: expect user, item and rating, got %q", line, strings.Join(record, string(reader.Comma)))
		}
		rating, err := util.ParseFloat[float64](record[2])
		if err != nil {
			return nil, errors.NotValidf("line %d: rating %q", line, record[2])
		}
		triplets = append(triplets, sparse.Triplet[float64]{
			Row:   ratings.Users.Id(record[0]),
			Col:   ratings.Items.Id(record[1]),
			Value: rating,
		})
	}
	m, err := sparse.NewFromTriplets(ratings.Users.Count(), ratings.Items.Count(), triplets)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ratings.Matrix = m
	log.Logger().Debug("load ratings complete",
		zap.Int("n_users", ratings.Users.Count()),
		zap.Int("n_items", ratings.Items.Count()),
		zap.Int("n_ratings", m.NumElements()))
	return ratings, nil
}

// LoadRatingsFile opens path and reads it with LoadRatings.
func LoadRatingsFile(path string, opts LoadOptions) (*Ratings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	return LoadRatings(file, opts)
}
