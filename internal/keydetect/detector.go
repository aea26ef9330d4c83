/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package keydetect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-errors/errors"
	"github.com/quarrydata/schemamapper/internal/supporting/logging"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/keydetection"
	"github.com/quarrydata/schemamapper/spi/sample"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/zeebo/xxh3"
)

// keyNamePattern matches column names that conventionally carry keys
var keyNamePattern = regexp.MustCompile(`(?i)(id|key|pk)`)

const (
	uniquenessWeight   = 0.5
	completenessWeight = 0.2
	nameBonus          = 0.15
	typeBonus          = 0.1
	compositePenalty   = 0.1
)

// tupleSeparator keeps multi-column hashes from colliding on values
// that merely concatenate the same way
const tupleSeparator = "\x1f"

type Detector struct {
	uniquenessThreshold float64
	minConfidence       float64
	maxCompositeSize    int
	logger              *logging.Logger
}

func NewDetector(
	config *spiconfig.Config,
) (*Detector, error) {

	logger, err := logging.NewLogger("KeyDetector")
	if err != nil {
		return nil, err
	}

	return &Detector{
		uniquenessThreshold: spiconfig.GetOrDefault(
			config, spiconfig.PropertyKeyDetectionUniqueness, 0.995,
		),
		minConfidence: spiconfig.GetOrDefault(
			config, spiconfig.PropertyKeyDetectionMinConfidence, 0.7,
		),
		maxCompositeSize: spiconfig.GetOrDefault(
			config, spiconfig.PropertyKeyDetectionCompositeSize, 2,
		),
		logger: logger,
	}, nil
}

type columnProfile struct {
	name        string
	logicalType schema.LogicalType
	values      []*string
}

// DetectCandidates profiles every single column and, where the
// composite size allows, every column combination, and returns the
// qualifying candidates ordered by descending confidence. Ties break
// towards fewer columns, then towards schema column order.
func (d *Detector) DetectCandidates(
	smp sample.Sample, canonicalSchema *schema.CanonicalSchema,
) ([]keydetection.KeyCandidate, error) {

	profiles, err := d.collectProfiles(smp, canonicalSchema)
	if err != nil {
		return nil, err
	}

	candidates := make([]keydetection.KeyCandidate, 0)
	for _, combination := range combinations(len(profiles), d.maxCompositeSize) {
		members := make([]columnProfile, 0, len(combination))
		for _, index := range combination {
			members = append(members, profiles[index])
		}

		candidate, qualifies := d.scoreCandidate(members, smp.RowCount())
		if qualifies {
			d.logger.Debugf(
				"key candidate %s scored %.3f", candidate.String(), candidate.Confidence,
			)
			candidates = append(candidates, candidate)
		}
	}

	order := make(map[string]int, len(profiles))
	for index, profile := range profiles {
		order[profile.name] = index
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		if len(candidates[i].Columns) != len(candidates[j].Columns) {
			return len(candidates[i].Columns) < len(candidates[j].Columns)
		}
		return order[candidates[i].Columns[0]] < order[candidates[j].Columns[0]]
	})
	return candidates, nil
}

// BestCandidate returns the top candidate clearing the configured
// minimal confidence, and false when none does
func (d *Detector) BestCandidate(
	smp sample.Sample, canonicalSchema *schema.CanonicalSchema,
) (keydetection.KeyCandidate, bool, error) {

	candidates, err := d.DetectCandidates(smp, canonicalSchema)
	if err != nil {
		return keydetection.KeyCandidate{}, false, err
	}
	if len(candidates) == 0 || candidates[0].Confidence < d.minConfidence {
		return keydetection.KeyCandidate{}, false, nil
	}
	return candidates[0], true, nil
}

func (d *Detector) collectProfiles(
	smp sample.Sample, canonicalSchema *schema.CanonicalSchema,
) ([]columnProfile, error) {

	profiles := make([]columnProfile, 0, len(canonicalSchema.Columns()))
	for _, column := range canonicalSchema.Columns() {
		sampleColumn, present := smp.Column(column.OriginalName())
		if !present {
			// Schemas handed in alongside their own sample always match;
			// anything else is a caller error
			return nil, errors.Errorf(
				"sample has no column '%s'", column.OriginalName(),
			)
		}
		profiles = append(profiles, columnProfile{
			name:        column.Name(),
			logicalType: column.Type(),
			values:      sampleColumn.Values(),
		})
	}
	return profiles, nil
}

func (d *Detector) scoreCandidate(
	members []columnProfile, rowCount int,
) (keydetection.KeyCandidate, bool) {

	distinct := make(map[uint64]struct{}, rowCount)
	completeRows := 0
	for row := 0; row < rowCount; row++ {
		tuple, complete := tupleAt(members, row)
		if !complete {
			continue
		}
		completeRows++
		distinct[xxh3.HashString(tuple)] = struct{}{}
	}

	if completeRows == 0 {
		return keydetection.KeyCandidate{}, false
	}

	// Rows with a null in the candidate carry no tuple, so they count
	// against uniqueness as well as completeness
	uniqueness := float64(len(distinct)) / float64(rowCount)
	completeness := float64(completeRows) / float64(rowCount)
	if uniqueness < d.uniquenessThreshold {
		return keydetection.KeyCandidate{}, false
	}

	confidence := uniquenessWeight*uniqueness + completenessWeight*completeness
	reasons := []string{
		fmt.Sprintf("%.1f%% unique", uniqueness*100),
		fmt.Sprintf("%.1f%% complete", completeness*100),
	}

	if allKeyLikeNames(members) {
		confidence += nameBonus
		reasons = append(reasons, "key-like column name")
	}
	if allKeyLikeTypes(members) {
		confidence += typeBonus
		reasons = append(reasons, "key-suited type")
	}
	confidence -= compositePenalty * float64(len(members)-1)
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	columns := make([]string, 0, len(members))
	for _, member := range members {
		columns = append(columns, member.name)
	}
	return keydetection.KeyCandidate{
		Columns:      columns,
		Confidence:   confidence,
		Uniqueness:   uniqueness,
		Completeness: completeness,
		Cardinality:  len(distinct),
		IsComposite:  len(members) > 1,
		Reasoning:    strings.Join(reasons, ", "),
	}, true
}

func tupleAt(
	members []columnProfile, row int,
) (string, bool) {

	parts := make([]string, 0, len(members))
	for _, member := range members {
		value := member.values[row]
		if value == nil {
			return "", false
		}
		parts = append(parts, *value)
	}
	return strings.Join(parts, tupleSeparator), true
}

func allKeyLikeNames(members []columnProfile) bool {
	for _, member := range members {
		if !keyNamePattern.MatchString(member.name) {
			return false
		}
	}
	return true
}

func allKeyLikeTypes(members []columnProfile) bool {
	for _, member := range members {
		switch member.logicalType {
		case schema.Integer, schema.BigInt, schema.String:
		default:
			return false
		}
	}
	return true
}

// combinations yields index combinations of sizes 1..maxSize in
// column order, singles first
func combinations(count, maxSize int) [][]int {
	result := make([][]int, 0)
	for size := 1; size <= maxSize && size <= count; size++ {
		indexes := make([]int, size)
		for i := range indexes {
			indexes[i] = i
		}
		for {
			combination := make([]int, size)
			copy(combination, indexes)
			result = append(result, combination)

			position := size - 1
			for position >= 0 && indexes[position] == count-size+position {
				position--
			}
			if position < 0 {
				break
			}
			indexes[position]++
			for next := position + 1; next < size; next++ {
				indexes[next] = indexes[next-1] + 1
			}
		}
	}
	return result
}
