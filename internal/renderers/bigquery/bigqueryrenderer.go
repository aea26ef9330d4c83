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

package bigquery

import (
	"fmt"
	"strings"

	"github.com/quarrydata/schemamapper/internal/renderers"
	"github.com/quarrydata/schemamapper/internal/supporting/logging"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/encoding"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/schema"
)

func init() {
	renderer.RegisterRenderer(
		spiconfig.BigQuery,
		func(config *spiconfig.Config) (renderer.Renderer, error) {
			return newBigQueryRenderer(config)
		},
	)
}

type bigQueryRenderer struct {
	logger *logging.Logger
}

func newBigQueryRenderer(
	_ *spiconfig.Config,
) (*bigQueryRenderer, error) {

	logger, err := logging.NewLogger("BigQueryRenderer")
	if err != nil {
		return nil, err
	}
	return &bigQueryRenderer{logger: logger}, nil
}

func (b *bigQueryRenderer) PlatformType() spiconfig.PlatformType {
	return spiconfig.BigQuery
}

func (b *bigQueryRenderer) Capabilities() renderer.Capabilities {
	capabilities, _ := renderer.PlatformCapabilities(spiconfig.BigQuery)
	return capabilities
}

func (b *bigQueryRenderer) Validate(
	canonicalSchema *schema.CanonicalSchema,
) []string {

	violations := renderers.ValidateHints(
		spiconfig.BigQuery, b.Capabilities(), canonicalSchema,
	)
	if len(canonicalSchema.Optimization().PartitionColumns()) > 1 {
		violations = append(violations,
			"platform 'bigquery' supports a single partition column",
		)
	}
	return violations
}

func (b *bigQueryRenderer) ToPhysicalTypes(
	canonicalSchema *schema.CanonicalSchema,
) (map[string]string, error) {

	return renderers.PhysicalTypes(canonicalSchema, b.physicalType)
}

func (b *bigQueryRenderer) ToDDL(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.BigQuery, canonicalSchema, b.Validate,
	); err != nil {
		return "", err
	}

	clauses, err := renderers.ColumnClauses(
		canonicalSchema, renderers.QuoteBacktick, b.physicalType,
	)
	if err != nil {
		return "", err
	}

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		b.tableName(canonicalSchema), strings.Join(clauses, ",\n  "),
	))

	hints := canonicalSchema.Optimization()
	if len(hints.PartitionColumns()) == 1 {
		builder.WriteString(fmt.Sprintf(
			"\nPARTITION BY %s",
			b.partitionExpression(canonicalSchema, hints.PartitionColumns()[0]),
		))
	}
	if len(hints.ClusterColumns()) > 0 {
		builder.WriteString(fmt.Sprintf(
			"\nCLUSTER BY %s",
			strings.Join(
				renderers.QuoteAll(hints.ClusterColumns(), renderers.QuoteBacktick), ", ",
			),
		))
	}
	if options := b.tableOptions(canonicalSchema); len(options) > 0 {
		builder.WriteString(fmt.Sprintf(
			"\nOPTIONS (\n  %s\n)", strings.Join(options, ",\n  "),
		))
	}
	builder.WriteString(";")

	b.logger.Debugf("rendered DDL for table '%s'", canonicalSchema.TableName())
	return builder.String(), nil
}

func (b *bigQueryRenderer) ToCliCreate(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.BigQuery, canonicalSchema, b.Validate,
	); err != nil {
		return "", err
	}

	command := []string{"bq mk --table"}
	hints := canonicalSchema.Optimization()
	if len(hints.PartitionColumns()) == 1 {
		command = append(command, fmt.Sprintf(
			"--time_partitioning_field %s --time_partitioning_type DAY",
			hints.PartitionColumns()[0],
		))
	}
	if expiration := hints.PartitionExpirationDays(); expiration != nil {
		command = append(command, fmt.Sprintf(
			"--time_partitioning_expiration %d", *expiration*24*60*60,
		))
	}
	if hints.RequiresPartitionFilter() {
		command = append(command, "--require_partition_filter")
	}
	if len(hints.ClusterColumns()) > 0 {
		command = append(command, fmt.Sprintf(
			"--clustering_fields %s", strings.Join(hints.ClusterColumns(), ","),
		))
	}
	if description := canonicalSchema.Description(); description != nil {
		command = append(command, fmt.Sprintf("--description '%s'",
			renderers.EscapeSingleQuotes(*description),
		))
	}
	command = append(command,
		b.tableReference(canonicalSchema), b.schemaFileName(canonicalSchema),
	)
	return strings.Join(command, " "), nil
}

func (b *bigQueryRenderer) ToCliLoad(
	canonicalSchema *schema.CanonicalSchema, dataReference string,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.BigQuery, canonicalSchema, b.Validate,
	); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"bq load --source_format=CSV --skip_leading_rows=1 %s %s %s",
		b.tableReference(canonicalSchema), dataReference,
		b.schemaFileName(canonicalSchema),
	), nil
}

type schemaArtifactField struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Mode        string  `json:"mode"`
	Description *string `json:"description,omitempty"`
}

// ToSchemaArtifact emits the JSON schema document `bq mk`/`bq load`
// accept through their schema file argument
func (b *bigQueryRenderer) ToSchemaArtifact(
	canonicalSchema *schema.CanonicalSchema,
) ([]byte, error) {

	if err := renderers.EnsureValid(
		spiconfig.BigQuery, canonicalSchema, b.Validate,
	); err != nil {
		return nil, err
	}

	fields := make([]schemaArtifactField, 0, len(canonicalSchema.Columns()))
	for _, column := range canonicalSchema.Columns() {
		physicalType, err := b.physicalType(column)
		if err != nil {
			return nil, err
		}

		mode := "REQUIRED"
		if column.IsNullable() {
			mode = "NULLABLE"
		}
		fields = append(fields, schemaArtifactField{
			Name: column.Name(),
			// Schema files take the bare type token, not parameters
			Type:        strings.SplitN(physicalType, "(", 2)[0],
			Mode:        mode,
			Description: column.Description(),
		})
	}
	return encoding.NewJsonEncoder(true).Marshal(fields)
}

func (b *bigQueryRenderer) physicalType(
	column schema.ColumnDefinition,
) (string, error) {

	switch column.Type() {
	case schema.Integer, schema.BigInt:
		return "INT64", nil
	case schema.Float:
		return "FLOAT64", nil
	case schema.Decimal:
		if column.Precision() != nil && column.Scale() != nil {
			return fmt.Sprintf(
				"NUMERIC(%d, %d)", *column.Precision(), *column.Scale(),
			), nil
		}
		return "NUMERIC", nil
	case schema.String, schema.Text:
		return "STRING", nil
	case schema.Boolean:
		return "BOOL", nil
	case schema.Date:
		return "DATE", nil
	case schema.Timestamp, schema.TimestampTz:
		return "TIMESTAMP", nil
	case schema.Json:
		return "JSON", nil
	case schema.Binary:
		return "BYTES", nil
	}
	return "", renderer.NewUnsupportedCapabilityError(
		spiconfig.BigQuery,
		fmt.Sprintf("logical type '%s' of column '%s'", column.Type(), column.Name()),
	)
}

func (b *bigQueryRenderer) partitionExpression(
	canonicalSchema *schema.CanonicalSchema, columnName string,
) string {

	quoted := renderers.QuoteBacktick(columnName)
	if column, present := canonicalSchema.Column(columnName); present {
		if column.Type() == schema.Timestamp || column.Type() == schema.TimestampTz {
			return fmt.Sprintf("DATE(%s)", quoted)
		}
	}
	return quoted
}

func (b *bigQueryRenderer) tableOptions(
	canonicalSchema *schema.CanonicalSchema,
) []string {

	options := make([]string, 0)
	if description := canonicalSchema.Description(); description != nil {
		options = append(options, fmt.Sprintf(
			"description = '%s'", renderers.EscapeSingleQuotes(*description),
		))
	}
	hints := canonicalSchema.Optimization()
	if expiration := hints.PartitionExpirationDays(); expiration != nil {
		options = append(options, fmt.Sprintf(
			"partition_expiration_days = %d", *expiration,
		))
	}
	if hints.RequiresPartitionFilter() {
		options = append(options, "require_partition_filter = true")
	}
	return options
}

// tableName renders the fully qualified backticked name used in SQL
func (b *bigQueryRenderer) tableName(
	canonicalSchema *schema.CanonicalSchema,
) string {

	parts := make([]string, 0, 3)
	if projectId := canonicalSchema.ProjectId(); projectId != nil {
		parts = append(parts, *projectId)
	}
	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		parts = append(parts, *datasetName)
	}
	parts = append(parts, canonicalSchema.TableName())
	return renderers.QuoteBacktick(strings.Join(parts, "."))
}

// tableReference renders the project:dataset.table form the bq CLI
// expects
func (b *bigQueryRenderer) tableReference(
	canonicalSchema *schema.CanonicalSchema,
) string {

	reference := canonicalSchema.TableName()
	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		reference = fmt.Sprintf("%s.%s", *datasetName, reference)
	}
	if projectId := canonicalSchema.ProjectId(); projectId != nil {
		reference = fmt.Sprintf("%s:%s", *projectId, reference)
	}
	return reference
}

func (b *bigQueryRenderer) schemaFileName(
	canonicalSchema *schema.CanonicalSchema,
) string {

	return fmt.Sprintf("./%s_schema.json", canonicalSchema.TableName())
}
