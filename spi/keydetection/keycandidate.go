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

package keydetection

import (
	"strings"

	"github.com/quarrydata/schemamapper/spi/sample"
	"github.com/quarrydata/schemamapper/spi/schema"
)

// KeyCandidate is a ranked primary key proposal for a sampled table.
// A candidate never implies a constraint; it reports how key-like the
// column set looked in the sample.
type KeyCandidate struct {
	// Columns are the standardized column names forming the candidate
	Columns []string `yaml:"columns" json:"columns"`
	// Confidence is the overall score in [0,1]
	Confidence float64 `yaml:"confidence" json:"confidence"`
	// Uniqueness is the share of distinct tuples among all sampled
	// rows; rows with nulls in the candidate lower it
	Uniqueness float64 `yaml:"uniqueness" json:"uniqueness"`
	// Completeness is the share of rows without nulls in the candidate
	Completeness float64 `yaml:"completeness" json:"completeness"`
	// Cardinality is the number of distinct tuples observed
	Cardinality int    `yaml:"cardinality" json:"cardinality"`
	IsComposite bool   `yaml:"is_composite" json:"is_composite"`
	Reasoning   string `yaml:"reasoning" json:"reasoning"`
}

func (c KeyCandidate) String() string {
	return strings.Join(c.Columns, "+")
}

// Detector finds primary key candidates by profiling sample data
// against an inferred schema.
type Detector interface {
	// DetectCandidates returns all qualifying candidates ordered by
	// descending confidence
	DetectCandidates(
		smp sample.Sample, canonicalSchema *schema.CanonicalSchema,
	) ([]KeyCandidate, error)
	// BestCandidate returns the highest ranked candidate whose
	// confidence clears the configured minimum, and false when no
	// candidate qualifies
	BestCandidate(
		smp sample.Sample, canonicalSchema *schema.CanonicalSchema,
	) (KeyCandidate, bool, error)
}
