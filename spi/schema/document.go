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
	"github.com/go-errors/errors"
	"github.com/quarrydata/schemamapper/spi/encoding"
	"gopkg.in/yaml.v3"
)

// Document is the persisted form of a CanonicalSchema. It mirrors the
// schema 1:1 so that a round trip through the document reproduces an
// equal schema.
type Document struct {
	TableName    string               `yaml:"table_name" json:"table_name"`
	DatasetName  *string              `yaml:"dataset_name,omitempty" json:"dataset_name,omitempty"`
	ProjectId    *string              `yaml:"project_id,omitempty" json:"project_id,omitempty"`
	Description  *string              `yaml:"description,omitempty" json:"description,omitempty"`
	Columns      []ColumnDocument     `yaml:"columns" json:"columns"`
	Optimization OptimizationDocument `yaml:"optimization" json:"optimization"`
}

type ColumnDocument struct {
	Name         string  `yaml:"name" json:"name"`
	OriginalName *string `yaml:"original_name,omitempty" json:"original_name,omitempty"`
	Type         string  `yaml:"type" json:"type"`
	Nullable     bool    `yaml:"nullable" json:"nullable"`
	MaxLength    *int    `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	Precision    *int    `yaml:"precision,omitempty" json:"precision,omitempty"`
	Scale        *int    `yaml:"scale,omitempty" json:"scale,omitempty"`
	Description  *string `yaml:"description,omitempty" json:"description,omitempty"`
	DateFormat   *string `yaml:"date_format,omitempty" json:"date_format,omitempty"`
	Timezone     *string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
}

type OptimizationDocument struct {
	PartitionColumns        []string `yaml:"partition_columns,omitempty" json:"partition_columns,omitempty"`
	ClusterColumns          []string `yaml:"cluster_columns,omitempty" json:"cluster_columns,omitempty"`
	SortColumns             []string `yaml:"sort_columns,omitempty" json:"sort_columns,omitempty"`
	DistributionColumn      *string  `yaml:"distribution_column,omitempty" json:"distribution_column,omitempty"`
	PartitionExpirationDays *int     `yaml:"partition_expiration_days,omitempty" json:"partition_expiration_days,omitempty"`
	RequirePartitionFilter  bool     `yaml:"require_partition_filter,omitempty" json:"require_partition_filter,omitempty"`
}

// ToDocument converts the schema into its persisted representation
func (s *CanonicalSchema) ToDocument() Document {
	columns := make([]ColumnDocument, 0, len(s.columns))
	for _, column := range s.columns {
		document := ColumnDocument{
			Name:        column.Name(),
			Type:        column.Type().Token(),
			Nullable:    column.IsNullable(),
			MaxLength:   column.MaxLength(),
			Precision:   column.Precision(),
			Scale:       column.Scale(),
			Description: column.Description(),
			DateFormat:  column.DateFormat(),
			Timezone:    column.Timezone(),
		}
		if column.OriginalName() != column.Name() {
			originalName := column.OriginalName()
			document.OriginalName = &originalName
		}
		columns = append(columns, document)
	}

	return Document{
		TableName:   s.tableName,
		DatasetName: s.datasetName,
		ProjectId:   s.projectId,
		Description: s.description,
		Columns:     columns,
		Optimization: OptimizationDocument{
			PartitionColumns:        s.optimization.partitionColumns,
			ClusterColumns:          s.optimization.clusterColumns,
			SortColumns:             s.optimization.sortColumns,
			DistributionColumn:      s.optimization.distributionColumn,
			PartitionExpirationDays: s.optimization.partitionExpirationDays,
			RequirePartitionFilter:  s.optimization.requirePartitionFilter,
		},
	}
}

// FromDocument reconstructs a CanonicalSchema from its persisted
// representation. Unknown type tokens are reported as errors.
func FromDocument(document Document) (*CanonicalSchema, error) {
	columns := make(Columns, 0, len(document.Columns))
	for _, columnDocument := range document.Columns {
		logicalType, err := ParseLogicalType(columnDocument.Type)
		if err != nil {
			return nil, errors.Errorf(
				"column '%s': %s", columnDocument.Name, err.Error(),
			)
		}

		options := make([]ColumnOption, 0)
		if columnDocument.OriginalName != nil {
			options = append(options, WithOriginalName(*columnDocument.OriginalName))
		}
		if columnDocument.MaxLength != nil {
			options = append(options, WithMaxLength(*columnDocument.MaxLength))
		}
		if columnDocument.Precision != nil && columnDocument.Scale != nil {
			options = append(options, WithPrecision(*columnDocument.Precision, *columnDocument.Scale))
		}
		if columnDocument.Description != nil {
			options = append(options, WithDescription(*columnDocument.Description))
		}
		if columnDocument.DateFormat != nil {
			options = append(options, WithDateFormat(*columnDocument.DateFormat))
		}
		if columnDocument.Timezone != nil {
			options = append(options, WithTimezone(*columnDocument.Timezone))
		}

		columns = append(columns, NewColumn(
			columnDocument.Name, logicalType, columnDocument.Nullable, options...,
		))
	}

	hintOptions := make([]HintOption, 0)
	if len(document.Optimization.PartitionColumns) > 0 {
		hintOptions = append(hintOptions, WithPartitionColumns(document.Optimization.PartitionColumns...))
	}
	if len(document.Optimization.ClusterColumns) > 0 {
		hintOptions = append(hintOptions, WithClusterColumns(document.Optimization.ClusterColumns...))
	}
	if len(document.Optimization.SortColumns) > 0 {
		hintOptions = append(hintOptions, WithSortColumns(document.Optimization.SortColumns...))
	}
	if document.Optimization.DistributionColumn != nil {
		hintOptions = append(hintOptions, WithDistributionColumn(*document.Optimization.DistributionColumn))
	}
	if document.Optimization.PartitionExpirationDays != nil {
		hintOptions = append(hintOptions, WithPartitionExpirationDays(*document.Optimization.PartitionExpirationDays))
	}
	if document.Optimization.RequirePartitionFilter {
		hintOptions = append(hintOptions, WithRequirePartitionFilter())
	}

	schemaOptions := make([]SchemaOption, 0)
	if document.DatasetName != nil {
		schemaOptions = append(schemaOptions, WithDatasetName(*document.DatasetName))
	}
	if document.ProjectId != nil {
		schemaOptions = append(schemaOptions, WithProjectId(*document.ProjectId))
	}
	if document.Description != nil {
		schemaOptions = append(schemaOptions, WithSchemaDescription(*document.Description))
	}
	schemaOptions = append(schemaOptions, WithOptimization(NewOptimizationHints(hintOptions...)))

	return NewCanonicalSchema(document.TableName, columns, schemaOptions...), nil
}

// MarshalDocument serializes a document to YAML, or to indented JSON
// when asJson is set
func MarshalDocument(
	document Document, asJson bool,
) ([]byte, error) {

	if asJson {
		return encoding.NewJsonEncoder(true).Marshal(document)
	}
	return yaml.Marshal(document)
}

// UnmarshalDocument deserializes a document from YAML or JSON
func UnmarshalDocument(
	content []byte, asJson bool,
) (Document, error) {

	document := Document{}
	if asJson {
		if err := encoding.NewJsonDecoder().Unmarshal(content, &document); err != nil {
			return document, errors.Wrap(err, 0)
		}
		return document, nil
	}
	if err := yaml.Unmarshal(content, &document); err != nil {
		return document, errors.Wrap(err, 0)
	}
	return document, nil
}
