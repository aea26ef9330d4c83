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

package snowflake

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
		spiconfig.Snowflake,
		func(config *spiconfig.Config) (renderer.Renderer, error) {
			return newSnowflakeRenderer(config)
		},
	)
}

type snowflakeRenderer struct {
	logger *logging.Logger
}

func newSnowflakeRenderer(
	_ *spiconfig.Config,
) (*snowflakeRenderer, error) {

	logger, err := logging.NewLogger("SnowflakeRenderer")
	if err != nil {
		return nil, err
	}
	return &snowflakeRenderer{logger: logger}, nil
}

func (s *snowflakeRenderer) PlatformType() spiconfig.PlatformType {
	return spiconfig.Snowflake
}

func (s *snowflakeRenderer) Capabilities() renderer.Capabilities {
	capabilities, _ := renderer.PlatformCapabilities(spiconfig.Snowflake)
	return capabilities
}

func (s *snowflakeRenderer) Validate(
	canonicalSchema *schema.CanonicalSchema,
) []string {

	return renderers.ValidateHints(
		spiconfig.Snowflake, s.Capabilities(), canonicalSchema,
	)
}

func (s *snowflakeRenderer) ToPhysicalTypes(
	canonicalSchema *schema.CanonicalSchema,
) (map[string]string, error) {

	return renderers.PhysicalTypes(canonicalSchema, s.physicalType)
}

func (s *snowflakeRenderer) ToDDL(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.Snowflake, canonicalSchema, s.Validate,
	); err != nil {
		return "", err
	}

	clauses, err := renderers.ColumnClauses(
		canonicalSchema, renderers.QuotePostgres, s.physicalType,
	)
	if err != nil {
		return "", err
	}

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		s.tableName(canonicalSchema), strings.Join(clauses, ",\n  "),
	))

	if clusterColumns := canonicalSchema.Optimization().ClusterColumns(); len(clusterColumns) > 0 {
		builder.WriteString(fmt.Sprintf(
			"\nCLUSTER BY (%s)",
			strings.Join(
				renderers.QuoteAll(clusterColumns, renderers.QuotePostgres), ", ",
			),
		))
	}
	if description := canonicalSchema.Description(); description != nil {
		builder.WriteString(fmt.Sprintf(
			"\nCOMMENT = '%s'", renderers.EscapeSingleQuotes(*description),
		))
	}
	builder.WriteString(";")

	s.logger.Debugf("rendered DDL for table '%s'", canonicalSchema.TableName())
	return builder.String(), nil
}

func (s *snowflakeRenderer) ToCliCreate(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.Snowflake, canonicalSchema, s.Validate,
	); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"snowsql -f ./%s_create.sql", canonicalSchema.TableName(),
	), nil
}

func (s *snowflakeRenderer) ToCliLoad(
	canonicalSchema *schema.CanonicalSchema, dataReference string,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.Snowflake, canonicalSchema, s.Validate,
	); err != nil {
		return "", err
	}

	target := s.plainTableName(canonicalSchema)
	return fmt.Sprintf(
		"snowsql -q 'PUT file://%s @%%%s' && "+
			"snowsql -q 'COPY INTO %s FROM @%%%s FILE_FORMAT = (TYPE = CSV SKIP_HEADER = 1)'",
		dataReference, canonicalSchema.TableName(), target, canonicalSchema.TableName(),
	), nil
}

func (s *snowflakeRenderer) ToSchemaArtifact(
	_ *schema.CanonicalSchema,
) ([]byte, error) {

	return nil, renderer.NewUnsupportedCapabilityError(
		spiconfig.Snowflake, "a structured schema artifact",
	)
}

func (s *snowflakeRenderer) physicalType(
	column schema.ColumnDefinition,
) (string, error) {

	switch column.Type() {
	case schema.Integer, schema.BigInt:
		return "NUMBER(38,0)", nil
	case schema.Float:
		return "FLOAT", nil
	case schema.Decimal:
		if column.Precision() != nil && column.Scale() != nil {
			return fmt.Sprintf(
				"NUMBER(%d,%d)", *column.Precision(), *column.Scale(),
			), nil
		}
		return "NUMBER(38,9)", nil
	case schema.String:
		if column.MaxLength() != nil {
			return fmt.Sprintf("VARCHAR(%d)", *column.MaxLength()), nil
		}
		return "VARCHAR(16777216)", nil
	case schema.Text:
		return "VARCHAR(16777216)", nil
	case schema.Boolean:
		return "BOOLEAN", nil
	case schema.Date:
		return "DATE", nil
	case schema.Timestamp:
		return "TIMESTAMP_NTZ", nil
	case schema.TimestampTz:
		return "TIMESTAMP_TZ", nil
	case schema.Json:
		return "VARIANT", nil
	case schema.Binary:
		return "BINARY", nil
	}
	return "", renderer.NewUnsupportedCapabilityError(
		spiconfig.Snowflake,
		fmt.Sprintf("logical type '%s' of column '%s'", column.Type(), column.Name()),
	)
}

func (s *snowflakeRenderer) tableName(
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

func (s *snowflakeRenderer) plainTableName(
	canonicalSchema *schema.CanonicalSchema,
) string {

	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		return fmt.Sprintf("%s.%s", *datasetName, canonicalSchema.TableName())
	}
	return canonicalSchema.TableName()
}
