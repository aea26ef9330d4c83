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

// Package generators carries the dialect-independent load pattern
// engine. Each platform package contributes a Dialect describing its
// quoting, time arithmetic, and merge flavor; the engine assembles
// the pattern recipes from it.
package generators

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quarrydata/schemamapper/internal/renderers"
	"github.com/quarrydata/schemamapper/internal/supporting/logging"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/incremental"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/samber/lo"
)

// MergeStyle selects how UPSERT-style patterns are expressed
type MergeStyle int

const (
	// MergeStyleNative emits a MERGE statement
	MergeStyleNative MergeStyle = iota
	// MergeStyleOnConflict emits INSERT .. ON CONFLICT
	MergeStyleOnConflict
	// MergeStyleUpdateFrom emits UPDATE .. FROM plus an anti-join
	// INSERT, for platforms without any native merge
	MergeStyleUpdateFrom
)

// Dialect describes the SQL flavor of one platform
type Dialect struct {
	Platform      spiconfig.PlatformType
	Quote         renderers.Quote
	TableName     func(canonicalSchema *schema.CanonicalSchema, tableName string) string
	Now           string
	EpochLiteral  string
	TrueLiteral   string
	FalseLiteral  string
	Coalesce      func(expression, fallback string) string
	Lookback      func(expression string, window time.Duration) string
	MergeStyle    MergeStyle
	Transactional bool
	DeleteAlias   bool
	Unsupported   map[incremental.LoadPattern]bool
}

// Engine implements incremental.Generator on top of a Dialect
type Engine struct {
	dialect       Dialect
	stagingSuffix string
	config        *spiconfig.Config
	logger        *logging.Logger
}

func NewEngine(
	config *spiconfig.Config, dialect Dialect,
) (*Engine, error) {

	logger, err := logging.NewLogger(
		fmt.Sprintf("IncrementalGenerator[%s]", dialect.Platform),
	)
	if err != nil {
		return nil, err
	}

	return &Engine{
		dialect: dialect,
		stagingSuffix: spiconfig.GetOrDefault(
			config, spiconfig.PropertyIncrementalStagingSuffix, "_staging",
		),
		config: config,
		logger: logger,
	}, nil
}

func (e *Engine) PlatformType() spiconfig.PlatformType {
	return e.dialect.Platform
}

func (e *Engine) SupportsPattern(
	pattern incremental.LoadPattern,
) bool {

	return !e.dialect.Unsupported[pattern]
}

// Generate validates the config, renders the staging DDL through the
// platform renderer where the pattern needs one, and emits the
// pattern's statements in execution order
func (e *Engine) Generate(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
) (*incremental.LoadScript, error) {

	if err := config.Validate(canonicalSchema); err != nil {
		return nil, err
	}
	if !e.SupportsPattern(config.LoadPattern) {
		return nil, renderer.NewUnsupportedCapabilityError(
			e.dialect.Platform,
			fmt.Sprintf("load pattern '%s'", config.LoadPattern),
		)
	}

	stagingTable := e.stagingTableName(canonicalSchema, config)
	target := e.dialect.TableName(canonicalSchema, canonicalSchema.TableName())
	staging := e.dialect.TableName(canonicalSchema, stagingTable)

	stagingDDL := ""
	if config.LoadPattern.NeedsStagingTable() {
		ddl, err := e.stagingDDL(canonicalSchema, stagingTable)
		if err != nil {
			return nil, err
		}
		stagingDDL = ddl
	}

	statements, err := e.buildStatements(canonicalSchema, config, target, staging)
	if err != nil {
		return nil, err
	}

	e.logger.Debugf(
		"generated %s script for table '%s' (%d statements)",
		config.LoadPattern, canonicalSchema.TableName(), len(statements),
	)
	return incremental.NewLoadScript(
		stagingDDL, statements, e.dialect.Transactional,
	), nil
}

func (e *Engine) stagingTableName(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
) string {

	if config.StagingTable != nil {
		return *config.StagingTable
	}
	return canonicalSchema.TableName() + e.stagingSuffix
}

// stagingDDL derives the staging table through the platform renderer;
// the staging table shares the column set but carries no optimization
// hints
func (e *Engine) stagingDDL(
	canonicalSchema *schema.CanonicalSchema, stagingTable string,
) (string, error) {

	stagingSchema := canonicalSchema.Rebuild(stagingTable)
	r, err := renderer.NewRenderer(e.dialect.Platform, e.config, stagingSchema)
	if err != nil {
		return "", err
	}
	return r.ToDDL(stagingSchema)
}

func (e *Engine) buildStatements(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string,
) ([]string, error) {

	switch config.LoadPattern {
	case incremental.FullRefresh:
		return []string{
			fmt.Sprintf("TRUNCATE TABLE %s;", target),
			e.insertSelectAll(canonicalSchema, target, staging),
		}, nil
	case incremental.AppendOnly:
		return []string{e.insertSelectAll(canonicalSchema, target, staging)}, nil
	case incremental.Upsert:
		return e.buildUpsert(
			canonicalSchema, config, target, staging, config.EffectiveMergeStrategy(),
		)
	case incremental.DeleteInsert:
		return e.buildDeleteInsert(canonicalSchema, config, target, staging), nil
	case incremental.IncrementalTimestamp:
		return e.buildIncrementalTimestamp(canonicalSchema, config, target, staging), nil
	case incremental.IncrementalAppend:
		return e.buildIncrementalAppend(canonicalSchema, config, target, staging), nil
	case incremental.ScdType1:
		return e.buildUpsert(
			canonicalSchema, config, target, staging, incremental.UpdateAll,
		)
	case incremental.ScdType2:
		return e.buildScdType2(canonicalSchema, config, target, staging), nil
	case incremental.CdcMerge:
		return e.buildCdcMerge(canonicalSchema, config, target, staging), nil
	case incremental.Snapshot:
		return e.buildSnapshot(canonicalSchema, config, target, staging), nil
	}
	return nil, renderer.NewUnsupportedCapabilityError(
		e.dialect.Platform,
		fmt.Sprintf("load pattern '%s'", config.LoadPattern),
	)
}

func (e *Engine) insertSelectAll(
	canonicalSchema *schema.CanonicalSchema, target, staging string,
) string {

	quoted := e.quotedColumns(canonicalSchema.ColumnNames())
	return fmt.Sprintf(
		"INSERT INTO %s (%s)\nSELECT %s\nFROM %s;",
		target, strings.Join(quoted, ", "), strings.Join(quoted, ", "), staging,
	)
}

func (e *Engine) buildUpsert(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string, strategy incremental.MergeStrategy,
) ([]string, error) {

	updateColumns := e.updateColumns(canonicalSchema, config, strategy)
	switch e.dialect.MergeStyle {
	case MergeStyleNative:
		return []string{e.mergeStatement(
			canonicalSchema, config, target, staging, strategy, updateColumns,
		)}, nil
	case MergeStyleOnConflict:
		return []string{e.onConflictStatement(
			canonicalSchema, config, target, staging, strategy, updateColumns,
		)}, nil
	case MergeStyleUpdateFrom:
		return e.updateFromStatements(
			canonicalSchema, config, target, staging, strategy, updateColumns,
		), nil
	}
	return nil, renderer.NewUnsupportedCapabilityError(
		e.dialect.Platform, fmt.Sprintf("load pattern '%s'", config.LoadPattern),
	)
}

func (e *Engine) mergeStatement(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string, strategy incremental.MergeStrategy,
	updateColumns []string,
) string {

	quoted := e.quotedColumns(canonicalSchema.ColumnNames())
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(
		"MERGE INTO %s AS t\nUSING %s AS s\nON %s",
		target, staging, e.keyCondition(config.PrimaryKeys, "t", "s"),
	))

	if strategy != incremental.UpdateNone && len(updateColumns) > 0 {
		matched := "WHEN MATCHED"
		if strategy == incremental.UpdateChanged {
			matched += fmt.Sprintf(
				" AND (%s)", e.differsCondition(updateColumns, "t", "s"),
			)
		}
		builder.WriteString(fmt.Sprintf(
			"\n%s THEN UPDATE SET %s",
			matched, e.assignments(updateColumns, "s"),
		))
	}
	builder.WriteString(fmt.Sprintf(
		"\nWHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);",
		strings.Join(quoted, ", "),
		strings.Join(e.prefixedColumns(canonicalSchema.ColumnNames(), "s"), ", "),
	))
	return builder.String()
}

func (e *Engine) onConflictStatement(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string, strategy incremental.MergeStrategy,
	updateColumns []string,
) string {

	quoted := e.quotedColumns(canonicalSchema.ColumnNames())
	conflict := fmt.Sprintf(
		"ON CONFLICT (%s)", strings.Join(e.quotedColumns(config.PrimaryKeys), ", "),
	)
	action := "DO NOTHING"
	if strategy != incremental.UpdateNone && len(updateColumns) > 0 {
		assignments := make([]string, 0, len(updateColumns))
		for _, columnName := range updateColumns {
			assignments = append(assignments, fmt.Sprintf(
				"%s = EXCLUDED.%s",
				e.dialect.Quote(columnName), e.dialect.Quote(columnName),
			))
		}
		action = fmt.Sprintf("DO UPDATE SET %s", strings.Join(assignments, ", "))
		if strategy == incremental.UpdateChanged {
			action += fmt.Sprintf(
				"\nWHERE %s", e.differsCondition(updateColumns, target, "EXCLUDED"),
			)
		}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s)\nSELECT %s\nFROM %s\n%s %s;",
		target, strings.Join(quoted, ", "), strings.Join(quoted, ", "),
		staging, conflict, action,
	)
}

func (e *Engine) updateFromStatements(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string, strategy incremental.MergeStrategy,
	updateColumns []string,
) []string {

	statements := make([]string, 0, 2)
	if strategy != incremental.UpdateNone && len(updateColumns) > 0 {
		update := fmt.Sprintf(
			"UPDATE %s\nSET %s\nFROM %s s\nWHERE %s",
			target, e.assignments(updateColumns, "s"), staging,
			e.keyCondition(config.PrimaryKeys, target, "s"),
		)
		if strategy == incremental.UpdateChanged {
			update += fmt.Sprintf(
				"\n  AND (%s)", e.differsCondition(updateColumns, target, "s"),
			)
		}
		statements = append(statements, update+";")
	}
	statements = append(statements,
		e.antiJoinInsert(canonicalSchema, config, target, staging),
	)
	return statements
}

func (e *Engine) buildDeleteInsert(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string,
) []string {

	targetRef := target
	deleteClause := fmt.Sprintf("DELETE FROM %s", target)
	if e.dialect.DeleteAlias {
		targetRef = "t"
		deleteClause = fmt.Sprintf("DELETE FROM %s AS t", target)
	}
	return []string{
		fmt.Sprintf(
			"%s\nWHERE EXISTS (\n  SELECT 1 FROM %s s WHERE %s\n);",
			deleteClause, staging, e.keyCondition(config.PrimaryKeys, targetRef, "s"),
		),
		e.insertSelectAll(canonicalSchema, target, staging),
	}
}

func (e *Engine) buildIncrementalTimestamp(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string,
) []string {

	quoted := e.quotedColumns(canonicalSchema.ColumnNames())
	incrementalColumn := e.dialect.Quote(*config.IncrementalColumn)

	bound := fmt.Sprintf(
		"(SELECT %s FROM %s)",
		e.dialect.Coalesce(
			fmt.Sprintf("MAX(%s)", incrementalColumn), e.dialect.EpochLiteral,
		),
		target,
	)
	if config.LookbackWindow != nil {
		bound = e.dialect.Lookback(bound, *config.LookbackWindow)
	}

	return []string{fmt.Sprintf(
		"INSERT INTO %s (%s)\nSELECT %s\nFROM %s s\nWHERE s.%s > %s;",
		target, strings.Join(quoted, ", "),
		strings.Join(e.prefixedColumns(canonicalSchema.ColumnNames(), "s"), ", "),
		staging, incrementalColumn, bound,
	)}
}

func (e *Engine) buildIncrementalAppend(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string,
) []string {

	return []string{e.antiJoinInsert(canonicalSchema, config, target, staging)}
}

func (e *Engine) buildScdType2(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string,
) []string {

	effective := e.dialect.Quote(*config.EffectiveDateColumn)
	expiration := e.dialect.Quote(*config.ExpirationDateColumn)
	isCurrent := e.dialect.Quote(*config.IsCurrentColumn)
	sentinel := fmt.Sprintf("'%s'", renderers.EscapeSingleQuotes(
		spiconfig.GetOrDefault(
			e.config, spiconfig.PropertyScd2ExpirationSentinel, "9999-12-31",
		),
	))

	dataColumns := lo.Filter(
		canonicalSchema.ColumnNames(), func(name string, _ int) bool {
			return !strings.EqualFold(name, *config.EffectiveDateColumn) &&
				!strings.EqualFold(name, *config.ExpirationDateColumn) &&
				!strings.EqualFold(name, *config.IsCurrentColumn)
		},
	)

	// Close out current versions whose tracked attributes changed
	closeOut := fmt.Sprintf(
		"UPDATE %s\nSET %s = %s, %s = %s\n"+
			"WHERE %s = %s\n  AND EXISTS (\n"+
			"    SELECT 1 FROM %s s\n    WHERE %s\n      AND (%s)\n  );",
		target, expiration, e.dialect.Now, isCurrent, e.dialect.FalseLiteral,
		isCurrent, e.dialect.TrueLiteral,
		staging, e.keyCondition(config.PrimaryKeys, target, "s"),
		e.differsCondition(config.HashColumns, target, "s"),
	)

	// Insert a fresh current version for every new or changed row
	firstKey := e.dialect.Quote(config.PrimaryKeys[0])
	insert := fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s)\nSELECT %s, %s, %s, %s\nFROM %s s\n"+
			"LEFT JOIN %s t\n  ON %s AND t.%s = %s\n"+
			"WHERE t.%s IS NULL\n   OR (%s);",
		target, strings.Join(e.quotedColumns(dataColumns), ", "),
		effective, expiration, isCurrent,
		strings.Join(e.prefixedColumns(dataColumns, "s"), ", "),
		e.dialect.Now, sentinel, e.dialect.TrueLiteral, staging,
		target, e.keyCondition(config.PrimaryKeys, "t", "s"),
		isCurrent, e.dialect.TrueLiteral,
		firstKey, e.differsCondition(config.HashColumns, "t", "s"),
	)
	return []string{closeOut, insert}
}

func (e *Engine) buildCdcMerge(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string,
) []string {

	operation := e.dialect.Quote(*config.OperationColumn)
	dataColumns := lo.Filter(
		canonicalSchema.ColumnNames(), func(name string, _ int) bool {
			return !strings.EqualFold(name, *config.OperationColumn)
		},
	)
	updateColumns := lo.Filter(dataColumns, func(name string, _ int) bool {
		return !lo.ContainsBy(config.PrimaryKeys, func(keyColumn string) bool {
			return strings.EqualFold(keyColumn, name)
		})
	})

	deleteAction := "DELETE"
	if config.EffectiveDeleteStrategy() == incremental.SoftDelete {
		deleteAction = fmt.Sprintf(
			"UPDATE SET %s = %s",
			e.dialect.Quote(*config.SoftDeleteColumn), e.dialect.TrueLiteral,
		)
	}

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(
		"MERGE INTO %s AS t\nUSING %s AS s\nON %s",
		target, staging, e.keyCondition(config.PrimaryKeys, "t", "s"),
	))
	builder.WriteString(fmt.Sprintf(
		"\nWHEN MATCHED AND s.%s = 'D' THEN %s", operation, deleteAction,
	))
	builder.WriteString(fmt.Sprintf(
		"\nWHEN MATCHED AND s.%s <> 'D' THEN UPDATE SET %s",
		operation, e.assignments(updateColumns, "s"),
	))
	builder.WriteString(fmt.Sprintf(
		"\nWHEN NOT MATCHED AND s.%s <> 'D' THEN INSERT (%s) VALUES (%s);",
		operation, strings.Join(e.quotedColumns(dataColumns), ", "),
		strings.Join(e.prefixedColumns(dataColumns, "s"), ", "),
	))
	return []string{builder.String()}
}

func (e *Engine) buildSnapshot(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string,
) []string {

	snapshotColumn := "snapshot_version"
	if config.SnapshotColumn != nil {
		snapshotColumn = *config.SnapshotColumn
	}
	version := uuid.NewString()
	if config.SnapshotVersion != nil {
		version = *config.SnapshotVersion
	}

	dataColumns := lo.Filter(
		canonicalSchema.ColumnNames(), func(name string, _ int) bool {
			return !strings.EqualFold(name, snapshotColumn)
		},
	)
	return []string{fmt.Sprintf(
		"INSERT INTO %s (%s, %s)\nSELECT %s, '%s'\nFROM %s;",
		target, strings.Join(e.quotedColumns(dataColumns), ", "),
		e.dialect.Quote(snapshotColumn),
		strings.Join(e.quotedColumns(dataColumns), ", "),
		renderers.EscapeSingleQuotes(version), staging,
	)}
}

// antiJoinInsert inserts staging rows whose keys are absent from the
// target
func (e *Engine) antiJoinInsert(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	target, staging string,
) string {

	quoted := e.quotedColumns(canonicalSchema.ColumnNames())
	return fmt.Sprintf(
		"INSERT INTO %s (%s)\nSELECT %s\nFROM %s s\n"+
			"WHERE NOT EXISTS (\n  SELECT 1 FROM %s t WHERE %s\n);",
		target, strings.Join(quoted, ", "),
		strings.Join(e.prefixedColumns(canonicalSchema.ColumnNames(), "s"), ", "),
		staging, target, e.keyCondition(config.PrimaryKeys, "t", "s"),
	)
}

func (e *Engine) updateColumns(
	canonicalSchema *schema.CanonicalSchema, config incremental.Config,
	strategy incremental.MergeStrategy,
) []string {

	if strategy == incremental.UpdateSelective {
		return config.UpdateColumns
	}
	return lo.Filter(canonicalSchema.ColumnNames(), func(name string, _ int) bool {
		return !lo.ContainsBy(config.PrimaryKeys, func(keyColumn string) bool {
			return strings.EqualFold(keyColumn, name)
		})
	})
}

func (e *Engine) quotedColumns(names []string) []string {
	return renderers.QuoteAll(names, e.dialect.Quote)
}

func (e *Engine) prefixedColumns(
	names []string, alias string,
) []string {

	prefixed := make([]string, 0, len(names))
	for _, name := range names {
		prefixed = append(prefixed, fmt.Sprintf("%s.%s", alias, e.dialect.Quote(name)))
	}
	return prefixed
}

func (e *Engine) keyCondition(
	keys []string, targetRef, stagingRef string,
) string {

	conditions := make([]string, 0, len(keys))
	for _, keyColumn := range keys {
		quoted := e.dialect.Quote(keyColumn)
		conditions = append(conditions, fmt.Sprintf(
			"%s.%s = %s.%s", targetRef, quoted, stagingRef, quoted,
		))
	}
	return strings.Join(conditions, " AND ")
}

func (e *Engine) assignments(
	columns []string, sourceRef string,
) string {

	assignments := make([]string, 0, len(columns))
	for _, columnName := range columns {
		quoted := e.dialect.Quote(columnName)
		assignments = append(assignments, fmt.Sprintf(
			"%s = %s.%s", quoted, sourceRef, quoted,
		))
	}
	return strings.Join(assignments, ", ")
}

// differsCondition builds a null-safe inequality over the given
// columns; true when any column differs between the two sides
func (e *Engine) differsCondition(
	columns []string, leftRef, rightRef string,
) string {

	conditions := make([]string, 0, len(columns))
	for _, columnName := range columns {
		quoted := e.dialect.Quote(columnName)
		left := fmt.Sprintf("%s.%s", leftRef, quoted)
		right := fmt.Sprintf("%s.%s", rightRef, quoted)
		conditions = append(conditions, fmt.Sprintf(
			"%s <> %s OR (%s IS NULL AND %s IS NOT NULL) OR (%s IS NOT NULL AND %s IS NULL)",
			left, right, left, right, left, right,
		))
	}
	return strings.Join(conditions, " OR ")
}
