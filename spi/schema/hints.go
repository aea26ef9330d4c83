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

package schema

import (
	"github.com/quarrydata/schemamapper/internal/functional"
)

// OptimizationHints carries the platform-neutral optimization intent
// of a canonical schema. Every referenced column name must exist in
// the owning schema; renderers treat violations as validation errors.
type OptimizationHints struct {
	partitionColumns        []string
	clusterColumns          []string
	sortColumns             []string
	distributionColumn      *string
	partitionExpirationDays *int
	requirePartitionFilter  bool
}

// HintOption customizes optimization hints during construction
type HintOption func(*OptimizationHints)

// WithPartitionColumns sets the partition column sequence
func WithPartitionColumns(columns ...string) HintOption {
	return func(h *OptimizationHints) {
		h.partitionColumns = columns
	}
}

// WithClusterColumns sets the clustering column sequence
func WithClusterColumns(columns ...string) HintOption {
	return func(h *OptimizationHints) {
		h.clusterColumns = columns
	}
}

// WithSortColumns sets the sort key column sequence
func WithSortColumns(columns ...string) HintOption {
	return func(h *OptimizationHints) {
		h.sortColumns = columns
	}
}

// WithDistributionColumn sets the distribution key column
func WithDistributionColumn(column string) HintOption {
	return func(h *OptimizationHints) {
		h.distributionColumn = &column
	}
}

// WithPartitionExpirationDays sets the partition expiration in days
func WithPartitionExpirationDays(days int) HintOption {
	return func(h *OptimizationHints) {
		h.partitionExpirationDays = &days
	}
}

// WithRequirePartitionFilter requires queries to filter on the
// partition column
func WithRequirePartitionFilter() HintOption {
	return func(h *OptimizationHints) {
		h.requirePartitionFilter = true
	}
}

// NewOptimizationHints instantiates a new OptimizationHints instance
func NewOptimizationHints(options ...HintOption) OptimizationHints {
	hints := OptimizationHints{}
	for _, option := range options {
		option(&hints)
	}
	return hints
}

// PartitionColumns returns the partition column sequence
func (h OptimizationHints) PartitionColumns() []string {
	return h.partitionColumns
}

// ClusterColumns returns the clustering column sequence
func (h OptimizationHints) ClusterColumns() []string {
	return h.clusterColumns
}

// SortColumns returns the sort key column sequence
func (h OptimizationHints) SortColumns() []string {
	return h.sortColumns
}

// DistributionColumn returns the distribution key column, otherwise nil
func (h OptimizationHints) DistributionColumn() *string {
	return h.distributionColumn
}

// PartitionExpirationDays returns the partition expiration in days,
// otherwise nil
func (h OptimizationHints) PartitionExpirationDays() *int {
	return h.partitionExpirationDays
}

// RequiresPartitionFilter returns true if queries must filter on the
// partition column
func (h OptimizationHints) RequiresPartitionFilter() bool {
	return h.requirePartitionFilter
}

// HasOptimizations returns true if any hint is set
func (h OptimizationHints) HasOptimizations() bool {
	return len(h.partitionColumns) > 0 ||
		len(h.clusterColumns) > 0 ||
		len(h.sortColumns) > 0 ||
		h.distributionColumn != nil ||
		h.partitionExpirationDays != nil ||
		h.requirePartitionFilter
}

// ReferencedColumns returns every column name any hint refers to
func (h OptimizationHints) ReferencedColumns() []string {
	referenced := make([]string, 0)
	referenced = append(referenced, h.partitionColumns...)
	referenced = append(referenced, h.clusterColumns...)
	referenced = append(referenced, h.sortColumns...)
	if h.distributionColumn != nil {
		referenced = append(referenced, *h.distributionColumn)
	}
	return referenced
}

// Equal compares two hint sets field by field
func (h OptimizationHints) Equal(other OptimizationHints) bool {
	return functional.ArrayEqual(h.partitionColumns, other.partitionColumns) &&
		functional.ArrayEqual(h.clusterColumns, other.clusterColumns) &&
		functional.ArrayEqual(h.sortColumns, other.sortColumns) &&
		equalPtr(h.distributionColumn, other.distributionColumn) &&
		equalPtr(h.partitionExpirationDays, other.partitionExpirationDays) &&
		h.requirePartitionFilter == other.requirePartitionFilter
}
