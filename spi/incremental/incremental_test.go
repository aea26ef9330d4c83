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
	"testing"

	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationSchema() *schema.CanonicalSchema {
	return schema.NewCanonicalSchema("orders", schema.Columns{
		schema.NewColumn("order_id", schema.BigInt, false),
		schema.NewColumn("status", schema.String, true),
		schema.NewColumn("updated_at", schema.Timestamp, false),
	})
}

func Test_ParseLoadPattern(t *testing.T) {
	pattern, err := ParseLoadPattern("scd_type2")
	require.NoError(t, err)
	assert.Equal(t, ScdType2, pattern)

	pattern, err = ParseLoadPattern(" FULL_REFRESH ")
	require.NoError(t, err)
	assert.Equal(t, FullRefresh, pattern)

	_, err = ParseLoadPattern("TRUNCATE_LOAD")
	assert.ErrorContains(t, err, "LoadPattern 'TRUNCATE_LOAD' doesn't exist")
}

func Test_ParseMergeStrategy(t *testing.T) {
	strategy, err := ParseMergeStrategy("update_changed")
	require.NoError(t, err)
	assert.Equal(t, UpdateChanged, strategy)

	_, err = ParseMergeStrategy("REPLACE")
	assert.ErrorContains(t, err, "MergeStrategy 'REPLACE' doesn't exist")
}

func Test_ParseDeleteStrategy(t *testing.T) {
	strategy, err := ParseDeleteStrategy("soft_delete")
	require.NoError(t, err)
	assert.Equal(t, SoftDelete, strategy)

	_, err = ParseDeleteStrategy("TOMBSTONE")
	assert.ErrorContains(t, err, "DeleteStrategy 'TOMBSTONE' doesn't exist")
}

func Test_LoadPattern_NeedsStagingTable(t *testing.T) {
	assert.False(t, FullRefresh.NeedsStagingTable())
	assert.False(t, AppendOnly.NeedsStagingTable())
	assert.False(t, Snapshot.NeedsStagingTable())
	assert.True(t, Upsert.NeedsStagingTable())
	assert.True(t, ScdType2.NeedsStagingTable())
	assert.True(t, CdcMerge.NeedsStagingTable())
}

func Test_Config_Validate_Unknown_Pattern(t *testing.T) {
	err := Config{LoadPattern: "REPLACE_ALL"}.Validate(validationSchema())

	configurationError := &ConfigurationError{}
	require.ErrorAs(t, err, &configurationError)
	assert.Equal(t, "load_pattern", configurationError.Field)
}

func Test_Config_Validate_Upsert_Unknown_Key_Column(t *testing.T) {
	err := Config{
		LoadPattern: Upsert,
		PrimaryKeys: []string{"order_number"},
	}.Validate(validationSchema())

	configurationError := &ConfigurationError{}
	require.ErrorAs(t, err, &configurationError)
	assert.Equal(t, "primary_keys", configurationError.Field)
	assert.ErrorContains(t, err, "column 'order_number' doesn't exist")
}

func Test_Config_Validate_Incremental_Timestamp_Requires_Column(t *testing.T) {
	err := Config{
		LoadPattern: IncrementalTimestamp,
	}.Validate(validationSchema())

	configurationError := &ConfigurationError{}
	require.ErrorAs(t, err, &configurationError)
	assert.Equal(t, "incremental_column", configurationError.Field)
}

func Test_Config_Validate_Update_Selective_Requires_Columns(t *testing.T) {
	err := Config{
		LoadPattern:   Upsert,
		PrimaryKeys:   []string{"order_id"},
		MergeStrategy: UpdateSelective,
	}.Validate(validationSchema())

	configurationError := &ConfigurationError{}
	require.ErrorAs(t, err, &configurationError)
	assert.Equal(t, "update_columns", configurationError.Field)
}

func Test_Config_Defaults(t *testing.T) {
	config := Config{LoadPattern: Upsert}
	assert.Equal(t, UpdateAll, config.EffectiveMergeStrategy())
	assert.Equal(t, HardDelete, config.EffectiveDeleteStrategy())
}

func Test_LoadScript_Render(t *testing.T) {
	script := NewLoadScript(
		"CREATE TABLE staging (id INT);",
		[]string{"UPDATE target;", "INSERT INTO target;"},
		false,
	)

	rendered := script.Render()
	assert.Equal(t,
		"CREATE TABLE staging (id INT);\n\nUPDATE target;\n\nINSERT INTO target;",
		rendered,
	)
	assert.False(t, script.IsTransactional())
}

func Test_LoadScript_Render_Transactional(t *testing.T) {
	script := NewLoadScript("", []string{"UPDATE target;"}, true)

	assert.Equal(t,
		"BEGIN TRANSACTION;\n\nUPDATE target;\n\nCOMMIT;",
		script.Render(),
	)
}
