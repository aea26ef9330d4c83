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

package sqlserver

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
		spiconfig.SQLServer,
		func(config *spiconfig.Config) (renderer.Renderer, error) {
			return newSqlServerRenderer(config)
		},
	)
}

type sqlServerRenderer struct {
	logger *logging.Logger
}

func newSqlServerRenderer(
	_ *spiconfig.Config,
) (*sqlServerRenderer, error) {

	logger, err := logging.NewLogger("SqlServerRenderer")
	if err != nil {
		return nil, err
	}
	return &sqlServerRenderer{logger: logger}, nil
}

func (s *sqlServerRenderer) PlatformType() spiconfig.PlatformType {
	return spiconfig.SQLServer
}

func (s *sqlServerRenderer) Capabilities() renderer.Capabilities {
	capabilities, _ := renderer.PlatformCapabilities(spiconfig.SQLServer)
	return capabilities
}

func (s *sqlServerRenderer) Validate(
	canonicalSchema *schema.CanonicalSchema,
) []string {

	return renderers.ValidateHints(
		spiconfig.SQLServer, s.Capabilities(), canonicalSchema,
	)
}

func (s *sqlServerRenderer) ToPhysicalTypes(
	canonicalSchema *schema.CanonicalSchema,
) (map[string]string, error) {

	return renderers.PhysicalTypes(canonicalSchema, s.physicalType)
}

func (s *sqlServerRenderer) ToDDL(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.SQLServer, canonicalSchema, s.Validate,
	); err != nil {
		return "", err
	}

	clauses, err := renderers.ColumnClauses(
		canonicalSchema, renderers.QuoteBracket, s.physicalType,
	)
	if err != nil {
		return "", err
	}

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n);",
		s.tableName(canonicalSchema), strings.Join(clauses, ",\n  "),
	))

	// Cluster hints become a clustered index on the fresh table
	if clusterColumns := canonicalSchema.Optimization().ClusterColumns(); len(clusterColumns) > 0 {
		builder.WriteString(fmt.Sprintf(
			"\nCREATE CLUSTERED INDEX %s ON %s (%s);",
			renderers.QuoteBracket(
				fmt.Sprintf("ix_%s_clustered", canonicalSchema.TableName()),
			),
			s.tableName(canonicalSchema),
			strings.Join(
				renderers.QuoteAll(clusterColumns, renderers.QuoteBracket), ", ",
			),
		))
	}

	s.logger.Debugf("rendered DDL for table '%s'", canonicalSchema.TableName())
	return builder.String(), nil
}

func (s *sqlServerRenderer) ToCliCreate(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.SQLServer, canonicalSchema, s.Validate,
	); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"sqlcmd -i ./%s_create.sql", canonicalSchema.TableName(),
	), nil
}

func (s *sqlServerRenderer) ToCliLoad(
	canonicalSchema *schema.CanonicalSchema, dataReference string,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.SQLServer, canonicalSchema, s.Validate,
	); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"bcp %s in %s -c -t ',' -F 2",
		s.plainTableName(canonicalSchema), dataReference,
	), nil
}

func (s *sqlServerRenderer) ToSchemaArtifact(
	_ *schema.CanonicalSchema,
) ([]byte, error) {

	return nil, renderer.NewUnsupportedCapabilityError(
		spiconfig.SQLServer, "a structured schema artifact",
	)
}

func (s *sqlServerRenderer) physicalType(
	column schema.ColumnDefinition,
) (string, error) {

	switch column.Type() {
	case schema.Integer:
		return "INT", nil
	case schema.BigInt:
		return "BIGINT", nil
	case schema.Float:
		return "FLOAT", nil
	case schema.Decimal:
		if column.Precision() != nil && column.Scale() != nil {
			return fmt.Sprintf(
				"DECIMAL(%d,%d)", *column.Precision(), *column.Scale(),
			), nil
		}
		return "DECIMAL(38,9)", nil
	case schema.String:
		if column.MaxLength() != nil {
			return fmt.Sprintf("NVARCHAR(%d)", *column.MaxLength()), nil
		}
		return "NVARCHAR(255)", nil
	case schema.Text:
		return "NVARCHAR(MAX)", nil
	case schema.Boolean:
		return "BIT", nil
	case schema.Date:
		return "DATE", nil
	case schema.Timestamp:
		return "DATETIME2", nil
	case schema.TimestampTz:
		return "DATETIMEOFFSET", nil
	case schema.Binary:
		return "VARBINARY(MAX)", nil
	}
	// JSON lands here: there is no native JSON column type
	return "", renderer.NewUnsupportedCapabilityError(
		spiconfig.SQLServer,
		fmt.Sprintf("logical type '%s' of column '%s'", column.Type(), column.Name()),
	)
}

func (s *sqlServerRenderer) tableName(
	canonicalSchema *schema.CanonicalSchema,
) string {

	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		return fmt.Sprintf(
			"%s.%s",
			renderers.QuoteBracket(*datasetName),
			renderers.QuoteBracket(canonicalSchema.TableName()),
		)
	}
	return renderers.QuoteBracket(canonicalSchema.TableName())
}

func (s *sqlServerRenderer) plainTableName(
	canonicalSchema *schema.CanonicalSchema,
) string {

	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		return fmt.Sprintf("%s.%s", *datasetName, canonicalSchema.TableName())
	}
	return canonicalSchema.TableName()
}
