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
	"fmt"
	"strings"
)

// CanonicalSchema is the platform-neutral intermediate representation
// of a table's structure and optimization intent. Instances are value
// types: constructed once, never mutated afterwards. Renderers and
// generators only read them.
type CanonicalSchema struct {
	tableName    string
	datasetName  *string
	projectId    *string
	description  *string
	columns      Columns
	optimization OptimizationHints
}

// SchemaOption customizes optional schema metadata during construction
type SchemaOption func(*CanonicalSchema)

// WithDatasetName sets the dataset/namespace qualifier
func WithDatasetName(datasetName string) SchemaOption {
	return func(s *CanonicalSchema) {
		s.datasetName = &datasetName
	}
}

// WithProjectId sets the top-level project qualifier
func WithProjectId(projectId string) SchemaOption {
	return func(s *CanonicalSchema) {
		s.projectId = &projectId
	}
}

// WithSchemaDescription attaches a human-readable table description
func WithSchemaDescription(description string) SchemaOption {
	return func(s *CanonicalSchema) {
		s.description = &description
	}
}

// WithOptimization attaches optimization hints to the schema
func WithOptimization(hints OptimizationHints) SchemaOption {
	return func(s *CanonicalSchema) {
		s.optimization = hints
	}
}

// NewCanonicalSchema instantiates a new CanonicalSchema instance. The
// column order is retained as the physical column order.
func NewCanonicalSchema(
	tableName string, columns Columns, options ...SchemaOption,
) *CanonicalSchema {

	s := &CanonicalSchema{
		tableName: tableName,
		columns:   columns,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// TableName returns the table name
func (s *CanonicalSchema) TableName() string {
	return s.tableName
}

// DatasetName returns the dataset/namespace qualifier, otherwise nil
func (s *CanonicalSchema) DatasetName() *string {
	return s.datasetName
}

// ProjectId returns the top-level project qualifier, otherwise nil
func (s *CanonicalSchema) ProjectId() *string {
	return s.projectId
}

// Description returns the table description, otherwise nil
func (s *CanonicalSchema) Description() *string {
	return s.description
}

// Columns returns the ordered column definitions
func (s *CanonicalSchema) Columns() Columns {
	return s.columns
}

// ColumnNames returns the column names in schema order
func (s *CanonicalSchema) ColumnNames() []string {
	return s.columns.Names()
}

// Column returns the column with the given name (case-insensitive)
func (s *CanonicalSchema) Column(name string) (ColumnDefinition, bool) {
	return s.columns.Get(name)
}

// Optimization returns the optimization hints
func (s *CanonicalSchema) Optimization() OptimizationHints {
	return s.optimization
}

// Rebuild returns a new schema with the given table name and the same
// columns, qualifiers, and description. Optimization hints are not
// carried over; the typical use is deriving a staging table schema.
func (s *CanonicalSchema) Rebuild(
	tableName string, options ...SchemaOption,
) *CanonicalSchema {

	base := make([]SchemaOption, 0, len(options)+3)
	if s.datasetName != nil {
		base = append(base, WithDatasetName(*s.datasetName))
	}
	if s.projectId != nil {
		base = append(base, WithProjectId(*s.projectId))
	}
	if s.description != nil {
		base = append(base, WithSchemaDescription(*s.description))
	}
	base = append(base, options...)
	return NewCanonicalSchema(tableName, s.columns, base...)
}

// Validate checks the internal consistency of the schema and returns
// one message per violation. An empty result means the schema is well
// formed; platform compatibility is checked by the renderers.
func (s *CanonicalSchema) Validate() []string {
	violations := make([]string, 0)

	if strings.TrimSpace(s.tableName) == "" {
		violations = append(violations, "schema requires a table name")
	}
	if len(s.columns) == 0 {
		violations = append(violations, "schema requires at least one column")
	}

	seen := make(map[string]bool)
	for _, column := range s.columns {
		lower := strings.ToLower(column.Name())
		if seen[lower] {
			violations = append(violations, fmt.Sprintf(
				"duplicate column name '%s' (column names are case-insensitive)", column.Name(),
			))
		}
		seen[lower] = true
		violations = append(violations, column.Validate()...)
	}

	for _, referenced := range s.optimization.ReferencedColumns() {
		if !s.columns.HasColumn(referenced) {
			violations = append(violations, fmt.Sprintf(
				"optimization hint references non-existent column '%s'", referenced,
			))
		}
	}

	if days := s.optimization.PartitionExpirationDays(); days != nil && *days <= 0 {
		violations = append(violations, fmt.Sprintf(
			"partition_expiration_days must be positive, got %d", *days,
		))
	}

	return violations
}

// Equal compares two schemas field by field, including column order
func (s *CanonicalSchema) Equal(other *CanonicalSchema) bool {
	if other == nil {
		return false
	}
	return s.tableName == other.tableName &&
		equalPtr(s.datasetName, other.datasetName) &&
		equalPtr(s.projectId, other.projectId) &&
		equalPtr(s.description, other.description) &&
		s.columns.equals(other.columns) &&
		s.optimization.Equal(other.optimization)
}

func (s *CanonicalSchema) String() string {
	builder := strings.Builder{}
	builder.WriteString("{")
	builder.WriteString(fmt.Sprintf("tableName:%s ", s.tableName))
	if s.datasetName != nil {
		builder.WriteString(fmt.Sprintf("datasetName:%s ", *s.datasetName))
	}
	if s.projectId != nil {
		builder.WriteString(fmt.Sprintf("projectId:%s ", *s.projectId))
	}
	builder.WriteString(fmt.Sprintf("columns:%d", len(s.columns)))
	builder.WriteString("}")
	return builder.String()
}
