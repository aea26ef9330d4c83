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

package postgresql

import (
	"fmt"
	"strings"

	"github.com/quarrydata/schemamapper/internal/renderers"
	"github.com/quarrydata/schemamapper/internal/supporting/logging"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/schema"
)

func init() {
	renderer.RegisterRenderer(
		spiconfig.PostgreSQL,
		func(config *spiconfig.Config) (renderer.Renderer, error) {
			return newPostgresqlRenderer(config)
		},
	)
}

type postgresqlRenderer struct {
	logger *logging.Logger
}

func newPostgresqlRenderer(
	_ *spiconfig.Config,
) (*postgresqlRenderer, error) {

	logger, err := logging.NewLogger("PostgresqlRenderer")
	if err != nil {
		return nil, err
	}
	return &postgresqlRenderer{logger: logger}, nil
}

func (p *postgresqlRenderer) PlatformType() spiconfig.PlatformType {
	return spiconfig.PostgreSQL
}

func (p *postgresqlRenderer) Capabilities() renderer.Capabilities {
	capabilities, _ := renderer.PlatformCapabilities(spiconfig.PostgreSQL)
	return capabilities
}

func (p *postgresqlRenderer) Validate(
	canonicalSchema *schema.CanonicalSchema,
) []string {

	return renderers.ValidateHints(
		spiconfig.PostgreSQL, p.Capabilities(), canonicalSchema,
	)
}

func (p *postgresqlRenderer) ToPhysicalTypes(
	canonicalSchema *schema.CanonicalSchema,
) (map[string]string, error) {

	return renderers.PhysicalTypes(canonicalSchema, p.physicalType)
}

func (p *postgresqlRenderer) ToDDL(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.PostgreSQL, canonicalSchema, p.Validate,
	); err != nil {
		return "", err
	}

	clauses, err := renderers.ColumnClauses(
		canonicalSchema, renderers.QuotePostgres, p.physicalType,
	)
	if err != nil {
		return "", err
	}

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		p.tableName(canonicalSchema), strings.Join(clauses, ",\n  "),
	))

	if partitionColumns := canonicalSchema.Optimization().PartitionColumns(); len(partitionColumns) > 0 {
		builder.WriteString(fmt.Sprintf(
			"\nPARTITION BY RANGE (%s)",
			strings.Join(
				renderers.QuoteAll(partitionColumns, renderers.QuotePostgres), ", ",
			),
		))
	}
	builder.WriteString(";")

	if description := canonicalSchema.Description(); description != nil {
		builder.WriteString(fmt.Sprintf(
			"\nCOMMENT ON TABLE %s IS '%s';",
			p.tableName(canonicalSchema), renderers.EscapeSingleQuotes(*description),
		))
	}

	p.logger.Debugf("rendered DDL for table '%s'", canonicalSchema.TableName())
	return builder.String(), nil
}

func (p *postgresqlRenderer) ToCliCreate(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.PostgreSQL, canonicalSchema, p.Validate,
	); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"psql -f ./%s_create.sql", canonicalSchema.TableName(),
	), nil
}

func (p *postgresqlRenderer) ToCliLoad(
	canonicalSchema *schema.CanonicalSchema, dataReference string,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.PostgreSQL, canonicalSchema, p.Validate,
	); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"psql -c \"\\copy %s FROM '%s' WITH (FORMAT csv, HEADER true)\"",
		p.plainTableName(canonicalSchema), dataReference,
	), nil
}

func (p *postgresqlRenderer) ToSchemaArtifact(
	_ *schema.CanonicalSchema,
) ([]byte, error) {

	return nil, renderer.NewUnsupportedCapabilityError(
		spiconfig.PostgreSQL, "a structured schema artifact",
	)
}

func (p *postgresqlRenderer) physicalType(
	column schema.ColumnDefinition,
) (string, error) {

	switch column.Type() {
	case schema.Integer:
		return "INTEGER", nil
	case schema.BigInt:
		return "BIGINT", nil
	case schema.Float:
		return "DOUBLE PRECISION", nil
	case schema.Decimal:
		if column.Precision() != nil && column.Scale() != nil {
			return fmt.Sprintf(
				"NUMERIC(%d,%d)", *column.Precision(), *column.Scale(),
			), nil
		}
		return "NUMERIC", nil
	case schema.String:
		if column.MaxLength() != nil {
			return fmt.Sprintf("VARCHAR(%d)", *column.MaxLength()), nil
		}
		return "VARCHAR(255)", nil
	case schema.Text:
		return "TEXT", nil
	case schema.Boolean:
		return "BOOLEAN", nil
	case schema.Date:
		return "DATE", nil
	case schema.Timestamp:
		return "TIMESTAMP", nil
	case schema.TimestampTz:
		return "TIMESTAMPTZ", nil
	case schema.Json:
		return "JSONB", nil
	case schema.Binary:
		return "BYTEA", nil
	}
	return "", renderer.NewUnsupportedCapabilityError(
		spiconfig.PostgreSQL,
		fmt.Sprintf("logical type '%s' of column '%s'", column.Type(), column.Name()),
	)
}

func (p *postgresqlRenderer) tableName(
	canonicalSchema *schema.CanonicalSchema,
) string {

	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		return fmt.Sprintf(
			"%s.%s",
			renderers.QuotePostgres(*datasetName),
			renderers.QuotePostgres(canonicalSchema.TableName()),
		)
	}
	return renderers.QuotePostgres(canonicalSchema.TableName())
}

func (p *postgresqlRenderer) plainTableName(
	canonicalSchema *schema.CanonicalSchema,
) string {

	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		return fmt.Sprintf("%s.%s", *datasetName, canonicalSchema.TableName())
	}
	return canonicalSchema.TableName()
}
