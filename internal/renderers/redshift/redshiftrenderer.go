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

package redshift

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
		spiconfig.Redshift,
		func(config *spiconfig.Config) (renderer.Renderer, error) {
			return newRedshiftRenderer(config)
		},
	)
}

type redshiftRenderer struct {
	logger *logging.Logger
}

func newRedshiftRenderer(
	_ *spiconfig.Config,
) (*redshiftRenderer, error) {

	logger, err := logging.NewLogger("RedshiftRenderer")
	if err != nil {
		return nil, err
	}
	return &redshiftRenderer{logger: logger}, nil
}

func (r *redshiftRenderer) PlatformType() spiconfig.PlatformType {
	return spiconfig.Redshift
}

func (r *redshiftRenderer) Capabilities() renderer.Capabilities {
	capabilities, _ := renderer.PlatformCapabilities(spiconfig.Redshift)
	return capabilities
}

func (r *redshiftRenderer) Validate(
	canonicalSchema *schema.CanonicalSchema,
) []string {

	return renderers.ValidateHints(
		spiconfig.Redshift, r.Capabilities(), canonicalSchema,
	)
}

func (r *redshiftRenderer) ToPhysicalTypes(
	canonicalSchema *schema.CanonicalSchema,
) (map[string]string, error) {

	return renderers.PhysicalTypes(canonicalSchema, r.physicalType)
}

func (r *redshiftRenderer) ToDDL(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.Redshift, canonicalSchema, r.Validate,
	); err != nil {
		return "", err
	}

	clauses, err := renderers.ColumnClauses(
		canonicalSchema, renderers.QuotePostgres, r.physicalType,
	)
	if err != nil {
		return "", err
	}

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		r.tableName(canonicalSchema), strings.Join(clauses, ",\n  "),
	))

	hints := canonicalSchema.Optimization()
	if distributionColumn := hints.DistributionColumn(); distributionColumn != nil {
		builder.WriteString(fmt.Sprintf(
			"\nDISTSTYLE KEY\nDISTKEY(%s)",
			renderers.QuotePostgres(*distributionColumn),
		))
	}
	if sortColumns := hints.SortColumns(); len(sortColumns) > 0 {
		builder.WriteString(fmt.Sprintf(
			"\nSORTKEY(%s)",
			strings.Join(
				renderers.QuoteAll(sortColumns, renderers.QuotePostgres), ", ",
			),
		))
	}
	builder.WriteString(";")

	if description := canonicalSchema.Description(); description != nil {
		builder.WriteString(fmt.Sprintf(
			"\nCOMMENT ON TABLE %s IS '%s';",
			r.tableName(canonicalSchema), renderers.EscapeSingleQuotes(*description),
		))
	}

	r.logger.Debugf("rendered DDL for table '%s'", canonicalSchema.TableName())
	return builder.String(), nil
}

func (r *redshiftRenderer) ToCliCreate(
	canonicalSchema *schema.CanonicalSchema,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.Redshift, canonicalSchema, r.Validate,
	); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"psql -f ./%s_create.sql", canonicalSchema.TableName(),
	), nil
}

func (r *redshiftRenderer) ToCliLoad(
	canonicalSchema *schema.CanonicalSchema, dataReference string,
) (string, error) {

	if err := renderers.EnsureValid(
		spiconfig.Redshift, canonicalSchema, r.Validate,
	); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"psql -c \"COPY %s FROM '%s' IAM_ROLE '$IAM_ROLE' CSV IGNOREHEADER 1\"",
		r.plainTableName(canonicalSchema), dataReference,
	), nil
}

func (r *redshiftRenderer) ToSchemaArtifact(
	_ *schema.CanonicalSchema,
) ([]byte, error) {

	return nil, renderer.NewUnsupportedCapabilityError(
		spiconfig.Redshift, "a structured schema artifact",
	)
}

func (r *redshiftRenderer) physicalType(
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
				"DECIMAL(%d,%d)", *column.Precision(), *column.Scale(),
			), nil
		}
		return "DECIMAL(38,9)", nil
	case schema.String:
		if column.MaxLength() != nil {
			return fmt.Sprintf("VARCHAR(%d)", *column.MaxLength()), nil
		}
		return "VARCHAR(256)", nil
	case schema.Text:
		return "VARCHAR(65535)", nil
	case schema.Boolean:
		return "BOOLEAN", nil
	case schema.Date:
		return "DATE", nil
	case schema.Timestamp:
		return "TIMESTAMP", nil
	case schema.TimestampTz:
		return "TIMESTAMPTZ", nil
	case schema.Json:
		return "SUPER", nil
	case schema.Binary:
		return "VARBYTE", nil
	}
	return "", renderer.NewUnsupportedCapabilityError(
		spiconfig.Redshift,
		fmt.Sprintf("logical type '%s' of column '%s'", column.Type(), column.Name()),
	)
}

func (r *redshiftRenderer) tableName(
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

func (r *redshiftRenderer) plainTableName(
	canonicalSchema *schema.CanonicalSchema,
) string {

	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		return fmt.Sprintf("%s.%s", *datasetName, canonicalSchema.TableName())
	}
	return canonicalSchema.TableName()
}
