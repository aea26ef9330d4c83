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

// Package schemamapper is the embedding facade: schema inference from
// tabular samples, per-platform DDL and CLI rendering, incremental
// load script generation, primary key detection, and schema rule
// evaluation behind a single Mapper.
package schemamapper

import (
	"fmt"
	"strings"

	"github.com/quarrydata/schemamapper/internal/inference"
	"github.com/quarrydata/schemamapper/internal/keydetect"
	"github.com/quarrydata/schemamapper/internal/rules"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/incremental"
	"github.com/quarrydata/schemamapper/spi/keydetection"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/sample"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/samber/do"

	_ "github.com/quarrydata/schemamapper/internal/generators/bigquery"
	_ "github.com/quarrydata/schemamapper/internal/generators/postgresql"
	_ "github.com/quarrydata/schemamapper/internal/generators/redshift"
	_ "github.com/quarrydata/schemamapper/internal/generators/snowflake"
	_ "github.com/quarrydata/schemamapper/internal/generators/sqlserver"
)

// Mapper bundles the full pipeline behind one entry point. A Mapper
// is safe for concurrent use; every operation is a pure function of
// its arguments and the construction-time configuration.
type Mapper struct {
	config   *spiconfig.Config
	injector *do.Injector
}

// NewMapper wires the pipeline components from the given
// configuration; a nil config selects the documented defaults
func NewMapper(
	config *spiconfig.Config,
) (*Mapper, error) {

	if config == nil {
		config = spiconfig.Default()
	}

	injector := do.New()
	do.Provide(injector, func(_ *do.Injector) (*spiconfig.Config, error) {
		return config, nil
	})
	do.Provide(injector, func(i *do.Injector) (*inference.Inferencer, error) {
		return inference.NewInferencer(do.MustInvoke[*spiconfig.Config](i))
	})
	do.Provide(injector, func(i *do.Injector) (*keydetect.Detector, error) {
		return keydetect.NewDetector(do.MustInvoke[*spiconfig.Config](i))
	})
	do.Provide(injector, func(i *do.Injector) (*rules.Engine, error) {
		return rules.NewEngine(do.MustInvoke[*spiconfig.Config](i).Rules)
	})

	// Fail construction early when any component rejects the config
	if _, err := do.Invoke[*inference.Inferencer](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*keydetect.Detector](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*rules.Engine](injector); err != nil {
		return nil, err
	}

	return &Mapper{
		config:   config,
		injector: injector,
	}, nil
}

// InferSchema derives a CanonicalSchema from the sample's values
func (m *Mapper) InferSchema(
	smp sample.Sample, tableName string, options ...schema.SchemaOption,
) (*schema.CanonicalSchema, error) {

	inferencer := do.MustInvoke[*inference.Inferencer](m.injector)
	return inferencer.InferSchema(smp, tableName, options...)
}

// Renderer instantiates the platform renderer, validated against the
// given schema
func (m *Mapper) Renderer(
	platform spiconfig.PlatformType, canonicalSchema *schema.CanonicalSchema,
) (renderer.Renderer, error) {

	return renderer.NewRenderer(platform, m.config, canonicalSchema)
}

// IncrementalGenerator instantiates the platform load script generator
func (m *Mapper) IncrementalGenerator(
	platform spiconfig.PlatformType,
) (incremental.Generator, error) {

	return incremental.NewGenerator(platform, m.config)
}

// DetectKeys returns all qualifying primary key candidates of the
// sample, ordered by descending confidence
func (m *Mapper) DetectKeys(
	smp sample.Sample, canonicalSchema *schema.CanonicalSchema,
) ([]keydetection.KeyCandidate, error) {

	detector := do.MustInvoke[*keydetect.Detector](m.injector)
	return detector.DetectCandidates(smp, canonicalSchema)
}

// AutoDetectBestKey returns the most confident key candidate clearing
// the configured confidence floor, and false when none does
func (m *Mapper) AutoDetectBestKey(
	smp sample.Sample, canonicalSchema *schema.CanonicalSchema,
) (keydetection.KeyCandidate, bool, error) {

	detector := do.MustInvoke[*keydetect.Detector](m.injector)
	return detector.BestCandidate(smp, canonicalSchema)
}

// GenerateMergeStatements is the UPSERT shortcut: staging DDL plus a
// merge statement keyed on the given primary key columns
func (m *Mapper) GenerateMergeStatements(
	platform spiconfig.PlatformType, canonicalSchema *schema.CanonicalSchema,
	primaryKeys []string,
) (*incremental.LoadScript, error) {

	generator, err := m.IncrementalGenerator(platform)
	if err != nil {
		return nil, err
	}
	return generator.Generate(canonicalSchema, incremental.Config{
		LoadPattern: incremental.Upsert,
		PrimaryKeys: primaryKeys,
	})
}

// EvaluateRules runs the configured schema rules against the sample;
// explicit ruleConfigs override the configuration-time rules
func (m *Mapper) EvaluateRules(
	smp sample.Sample, canonicalSchema *schema.CanonicalSchema,
	ruleConfigs []spiconfig.RuleConfig,
) ([]rules.Violation, error) {

	engine := do.MustInvoke[*rules.Engine](m.injector)
	if ruleConfigs != nil {
		adHoc, err := rules.NewEngine(ruleConfigs)
		if err != nil {
			return nil, err
		}
		engine = adHoc
	}
	return engine.Evaluate(smp, canonicalSchema)
}

// DataDictionary renders a markdown data dictionary of the schema
func (m *Mapper) DataDictionary(
	canonicalSchema *schema.CanonicalSchema,
) string {

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("# %s\n\n", canonicalSchema.TableName()))
	if description := canonicalSchema.Description(); description != nil {
		builder.WriteString(fmt.Sprintf("%s\n\n", *description))
	}

	builder.WriteString("| Column | Type | Nullable | Description |\n")
	builder.WriteString("|--------|------|----------|-------------|\n")
	for _, column := range canonicalSchema.Columns() {
		nullable := "no"
		if column.IsNullable() {
			nullable = "yes"
		}
		description := ""
		if column.Description() != nil {
			description = *column.Description()
		}
		builder.WriteString(fmt.Sprintf(
			"| %s | %s | %s | %s |\n",
			column.Name(), dictionaryType(column), nullable, description,
		))
	}
	return builder.String()
}

func dictionaryType(column schema.ColumnDefinition) string {
	token := string(column.Type())
	if column.Type() == schema.Decimal &&
		column.Precision() != nil && column.Scale() != nil {
		return fmt.Sprintf("%s(%d, %d)", token, *column.Precision(), *column.Scale())
	}
	if column.MaxLength() != nil {
		return fmt.Sprintf("%s(%d)", token, *column.MaxLength())
	}
	return token
}
