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

// Package renderers carries the dialect-independent pieces every
// platform renderer shares: identifier quoting, column clause
// assembly, and capability validation over optimization hints.
package renderers

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/schema"
)

// Quote is an identifier quoting strategy of one dialect
type Quote = func(identifier string) string

// QuoteBacktick quotes an identifier with backticks
func QuoteBacktick(identifier string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(identifier, "`", "``"))
}

// QuoteBracket quotes an identifier with square brackets
func QuoteBracket(identifier string) string {
	return fmt.Sprintf("[%s]", strings.ReplaceAll(identifier, "]", "]]"))
}

// QuotePostgres quotes an identifier following PostgreSQL rules
func QuotePostgres(identifier string) string {
	return pgx.Identifier{identifier}.Sanitize()
}

// PlainIdentifier leaves the identifier unquoted
func PlainIdentifier(identifier string) string {
	return identifier
}

// EscapeSingleQuotes doubles single quotes for use inside a SQL
// string literal
func EscapeSingleQuotes(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// TypeMapper resolves one column to its platform physical type
type TypeMapper = func(column schema.ColumnDefinition) (string, error)

// PhysicalTypes builds the total column-to-physical-type mapping of a
// schema. The first unsupported column aborts the mapping.
func PhysicalTypes(
	canonicalSchema *schema.CanonicalSchema, mapper TypeMapper,
) (map[string]string, error) {

	physicalTypes := make(map[string]string, len(canonicalSchema.Columns()))
	for _, column := range canonicalSchema.Columns() {
		physicalType, err := mapper(column)
		if err != nil {
			return nil, err
		}
		physicalTypes[column.Name()] = physicalType
	}
	return physicalTypes, nil
}

// ColumnClauses renders the per-column definition lines of a CREATE
// TABLE statement in schema order
func ColumnClauses(
	canonicalSchema *schema.CanonicalSchema, quote Quote, mapper TypeMapper,
) ([]string, error) {

	clauses := make([]string, 0, len(canonicalSchema.Columns()))
	for _, column := range canonicalSchema.Columns() {
		physicalType, err := mapper(column)
		if err != nil {
			return nil, err
		}

		clause := fmt.Sprintf("%s %s", quote(column.Name()), physicalType)
		if !column.IsNullable() {
			clause += " NOT NULL"
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

// ValidateHints checks a schema's optimization hints against the
// platform capability table entry and reports one message per hint
// the platform cannot honor
func ValidateHints(
	platform spiconfig.PlatformType, capabilities renderer.Capabilities,
	canonicalSchema *schema.CanonicalSchema,
) []string {

	violations := make([]string, 0)
	hints := canonicalSchema.Optimization()

	if len(hints.PartitionColumns()) > 0 && !capabilities.Partitioning {
		violations = append(violations, fmt.Sprintf(
			"partition_columns set but platform '%s' doesn't support partitioning",
			platform,
		))
	}
	if len(hints.ClusterColumns()) > 0 && !capabilities.Clustering {
		violations = append(violations, fmt.Sprintf(
			"cluster_columns set but platform '%s' doesn't support clustering",
			platform,
		))
	}
	if capabilities.Clustering && capabilities.MaxClusterColumns > 0 &&
		len(hints.ClusterColumns()) > capabilities.MaxClusterColumns {

		violations = append(violations, fmt.Sprintf(
			"cluster_columns count %d exceeds platform '%s' cluster column limit %d",
			len(hints.ClusterColumns()), platform, capabilities.MaxClusterColumns,
		))
	}
	if len(hints.SortColumns()) > 0 && !capabilities.SortKeys {
		violations = append(violations, fmt.Sprintf(
			"sort_columns set but platform '%s' doesn't support sort keys",
			platform,
		))
	}
	if hints.DistributionColumn() != nil && !capabilities.DistributionKeys {
		violations = append(violations, fmt.Sprintf(
			"distribution_column set but platform '%s' doesn't support distribution keys",
			platform,
		))
	}
	if capabilities.RequiresProjectId && canonicalSchema.ProjectId() == nil {
		violations = append(violations, fmt.Sprintf(
			"platform '%s' requires a project id qualifier", platform,
		))
	}
	return violations
}

// EnsureValid re-runs schema and dialect validation before any
// generation; malformed schemas never yield partial DDL
func EnsureValid(
	platform spiconfig.PlatformType, canonicalSchema *schema.CanonicalSchema,
	validate func(*schema.CanonicalSchema) []string,
) error {

	violations := canonicalSchema.Validate()
	violations = append(violations, validate(canonicalSchema)...)
	if len(violations) > 0 {
		return renderer.NewValidationError(platform, violations)
	}
	return nil
}

// QuoteAll applies the quoting strategy to every identifier
func QuoteAll(
	identifiers []string, quote Quote,
) []string {

	quoted := make([]string, 0, len(identifiers))
	for _, identifier := range identifiers {
		quoted = append(quoted, quote(identifier))
	}
	return quoted
}
