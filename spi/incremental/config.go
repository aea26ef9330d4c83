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

package incremental

import (
	"fmt"
	"time"

	"github.com/quarrydata/schemamapper/spi/schema"
)

// Config is the per-generation load pattern configuration. Fields are
// pattern-dependent; Validate reports which ones the selected pattern
// is missing before any generation happens.
type Config struct {
	LoadPattern LoadPattern `toml:"loadpattern" yaml:"loadpattern"`
	PrimaryKeys []string    `toml:"primarykeys" yaml:"primarykeys"`

	// MergeStrategy defaults to UPDATE_ALL for UPSERT-style patterns
	MergeStrategy MergeStrategy `toml:"mergestrategy" yaml:"mergestrategy"`
	UpdateColumns []string      `toml:"updatecolumns" yaml:"updatecolumns"`

	DeleteStrategy   DeleteStrategy `toml:"deletestrategy" yaml:"deletestrategy"`
	SoftDeleteColumn *string        `toml:"softdeletecolumn" yaml:"softdeletecolumn"`

	IncrementalColumn *string        `toml:"incrementalcolumn" yaml:"incrementalcolumn"`
	LookbackWindow    *time.Duration `toml:"lookbackwindow" yaml:"lookbackwindow"`

	HashColumns          []string `toml:"hashcolumns" yaml:"hashcolumns"`
	EffectiveDateColumn  *string  `toml:"effectivedatecolumn" yaml:"effectivedatecolumn"`
	ExpirationDateColumn *string  `toml:"expirationdatecolumn" yaml:"expirationdatecolumn"`
	IsCurrentColumn      *string  `toml:"iscurrentcolumn" yaml:"iscurrentcolumn"`

	OperationColumn *string `toml:"operationcolumn" yaml:"operationcolumn"`

	SnapshotColumn  *string `toml:"snapshotcolumn" yaml:"snapshotcolumn"`
	SnapshotVersion *string `toml:"snapshotversion" yaml:"snapshotversion"`

	// StagingTable overrides the derived staging table name
	StagingTable *string `toml:"stagingtable" yaml:"stagingtable"`
}

// EffectiveMergeStrategy returns the configured merge strategy or the
// UPDATE_ALL default
func (c Config) EffectiveMergeStrategy() MergeStrategy {
	if c.MergeStrategy == "" {
		return UpdateAll
	}
	return c.MergeStrategy
}

// EffectiveDeleteStrategy returns the configured delete strategy or
// the HARD_DELETE default
func (c Config) EffectiveDeleteStrategy() DeleteStrategy {
	if c.DeleteStrategy == "" {
		return HardDelete
	}
	return c.DeleteStrategy
}

// Validate checks that every field the selected load pattern requires
// is present and refers to existing schema columns. The first missing
// field aborts with a ConfigurationError naming it.
func (c Config) Validate(
	canonicalSchema *schema.CanonicalSchema,
) error {

	if _, err := ParseLoadPattern(string(c.LoadPattern)); err != nil {
		return NewConfigurationError(c.LoadPattern, "load_pattern", err.Error())
	}

	switch c.LoadPattern {
	case Upsert, DeleteInsert, ScdType1, IncrementalAppend:
		if err := c.requirePrimaryKeys(canonicalSchema); err != nil {
			return err
		}
	case IncrementalTimestamp:
		if err := c.requireColumn(
			canonicalSchema, "incremental_column", c.IncrementalColumn,
		); err != nil {
			return err
		}
	case ScdType2:
		if err := c.requirePrimaryKeys(canonicalSchema); err != nil {
			return err
		}
		if len(c.HashColumns) == 0 {
			return NewConfigurationError(
				c.LoadPattern, "hash_columns", "must not be empty",
			)
		}
		for _, columnName := range c.HashColumns {
			if err := c.requireColumn(
				canonicalSchema, "hash_columns", &columnName,
			); err != nil {
				return err
			}
		}
		for field, columnName := range map[string]*string{
			"effective_date_column":  c.EffectiveDateColumn,
			"expiration_date_column": c.ExpirationDateColumn,
			"is_current_column":      c.IsCurrentColumn,
		} {
			if columnName == nil {
				return NewConfigurationError(c.LoadPattern, field, "is required")
			}
		}
	case CdcMerge:
		if err := c.requirePrimaryKeys(canonicalSchema); err != nil {
			return err
		}
		if c.OperationColumn == nil {
			return NewConfigurationError(
				c.LoadPattern, "operation_column", "is required",
			)
		}
	}

	if c.EffectiveMergeStrategy() == UpdateSelective && len(c.UpdateColumns) == 0 {
		return NewConfigurationError(
			c.LoadPattern, "update_columns",
			"must not be empty for merge strategy UPDATE_SELECTIVE",
		)
	}
	if c.EffectiveDeleteStrategy() == SoftDelete && c.SoftDeleteColumn == nil {
		return NewConfigurationError(
			c.LoadPattern, "soft_delete_column",
			"is required for delete strategy SOFT_DELETE",
		)
	}
	return nil
}

func (c Config) requirePrimaryKeys(
	canonicalSchema *schema.CanonicalSchema,
) error {

	if len(c.PrimaryKeys) == 0 {
		return NewConfigurationError(
			c.LoadPattern, "primary_keys", "must not be empty",
		)
	}
	for _, keyColumn := range c.PrimaryKeys {
		if !canonicalSchema.Columns().HasColumn(keyColumn) {
			return NewConfigurationError(
				c.LoadPattern, "primary_keys",
				fmt.Sprintf("column '%s' doesn't exist in the schema", keyColumn),
			)
		}
	}
	return nil
}

func (c Config) requireColumn(
	canonicalSchema *schema.CanonicalSchema, field string, columnName *string,
) error {

	if columnName == nil {
		return NewConfigurationError(c.LoadPattern, field, "is required")
	}
	if !canonicalSchema.Columns().HasColumn(*columnName) {
		return NewConfigurationError(
			c.LoadPattern, field,
			fmt.Sprintf("column '%s' doesn't exist in the schema", *columnName),
		)
	}
	return nil
}
