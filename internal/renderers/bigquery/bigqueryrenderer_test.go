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
	"strings"
	"testing"

	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/encoding"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer(t *testing.T) *bigQueryRenderer {
	r, err := newBigQueryRenderer(spiconfig.Default())
	require.NoError(t, err)
	return r
}

func eventsSchema() *schema.CanonicalSchema {
	return schema.NewCanonicalSchema("events", schema.Columns{
		schema.NewColumn("event_id", schema.BigInt, false),
		schema.NewColumn("user_id", schema.BigInt, false),
		schema.NewColumn("event_type", schema.String, true, schema.WithMaxLength(64)),
		schema.NewColumn("event_date", schema.Date, false),
		schema.NewColumn("revenue", schema.Decimal, true, schema.WithPrecision(18, 2)),
		schema.NewColumn("payload", schema.Json, true),
	},
		schema.WithProjectId("my-project"),
		schema.WithDatasetName("analytics"),
		schema.WithOptimization(schema.NewOptimizationHints(
			schema.WithPartitionColumns("event_date"),
			schema.WithClusterColumns("user_id", "event_type"),
			schema.WithPartitionExpirationDays(90),
			schema.WithRequirePartitionFilter(),
		)),
	)
}

func Test_BigQuery_DDL(t *testing.T) {
	ddl, err := testRenderer(t).ToDDL(eventsSchema())
	require.NoError(t, err)

	assert.Contains(t, ddl, "CREATE TABLE `my-project.analytics.events` (")
	assert.Contains(t, ddl, "`event_id` INT64 NOT NULL")
	assert.Contains(t, ddl, "`revenue` NUMERIC(18, 2)")
	assert.Contains(t, ddl, "`payload` JSON")
	assert.Contains(t, ddl, "PARTITION BY `event_date`")
	assert.Contains(t, ddl, "CLUSTER BY `user_id`, `event_type`")
	assert.Contains(t, ddl, "partition_expiration_days = 90")
	assert.Contains(t, ddl, "require_partition_filter = true")

	for _, name := range eventsSchema().ColumnNames() {
		assert.Equal(t, 1, strings.Count(ddl, "`"+name+"` "))
	}
}

func Test_BigQuery_Timestamp_Partition_Uses_Date_Function(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("events", schema.Columns{
		schema.NewColumn("id", schema.Integer, false),
		schema.NewColumn("created_at", schema.Timestamp, false),
	},
		schema.WithProjectId("my-project"),
		schema.WithOptimization(schema.NewOptimizationHints(
			schema.WithPartitionColumns("created_at"),
		)),
	)

	ddl, err := testRenderer(t).ToDDL(canonicalSchema)
	require.NoError(t, err)
	assert.Contains(t, ddl, "PARTITION BY DATE(`created_at`)")
}

func Test_BigQuery_Cluster_Column_Limit(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("wide", schema.Columns{
		schema.NewColumn("a", schema.Integer, false),
		schema.NewColumn("b", schema.Integer, false),
		schema.NewColumn("c", schema.Integer, false),
		schema.NewColumn("d", schema.Integer, false),
		schema.NewColumn("e", schema.Integer, false),
	},
		schema.WithProjectId("my-project"),
		schema.WithOptimization(schema.NewOptimizationHints(
			schema.WithClusterColumns("a", "b", "c", "d", "e"),
		)),
	)

	violations := testRenderer(t).Validate(canonicalSchema)
	require.NotEmpty(t, violations)
	assert.Contains(t, violations[0], "cluster")
	assert.Contains(t, violations[0], "limit 4")

	_, err := testRenderer(t).ToDDL(canonicalSchema)
	require.Error(t, err)
	_, ok := err.(*renderer.ValidationError)
	assert.True(t, ok)
}

func Test_BigQuery_Requires_Project_Id(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("events", schema.Columns{
		schema.NewColumn("id", schema.Integer, false),
	})

	violations := testRenderer(t).Validate(canonicalSchema)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "project id")
}

func Test_BigQuery_Physical_Types(t *testing.T) {
	physicalTypes, err := testRenderer(t).ToPhysicalTypes(eventsSchema())
	require.NoError(t, err)

	assert.Len(t, physicalTypes, len(eventsSchema().Columns()))
	assert.Equal(t, "INT64", physicalTypes["event_id"])
	assert.Equal(t, "STRING", physicalTypes["event_type"])
	assert.Equal(t, "NUMERIC(18, 2)", physicalTypes["revenue"])
	assert.Equal(t, "JSON", physicalTypes["payload"])
}

func Test_BigQuery_Schema_Artifact(t *testing.T) {
	content, err := testRenderer(t).ToSchemaArtifact(eventsSchema())
	require.NoError(t, err)

	fields := make([]map[string]any, 0)
	require.NoError(t, encoding.NewJsonDecoder().Unmarshal(content, &fields))
	require.Len(t, fields, len(eventsSchema().Columns()))

	assert.Equal(t, "event_id", fields[0]["name"])
	assert.Equal(t, "INT64", fields[0]["type"])
	assert.Equal(t, "REQUIRED", fields[0]["mode"])

	assert.Equal(t, "revenue", fields[4]["name"])
	assert.Equal(t, "NUMERIC", fields[4]["type"])
	assert.Equal(t, "NULLABLE", fields[4]["mode"])
}

func Test_BigQuery_Cli_Commands(t *testing.T) {
	create, err := testRenderer(t).ToCliCreate(eventsSchema())
	require.NoError(t, err)
	assert.Contains(t, create, "bq mk --table")
	assert.Contains(t, create, "--time_partitioning_field event_date")
	assert.Contains(t, create, "--clustering_fields user_id,event_type")
	assert.Contains(t, create, "my-project:analytics.events")
	assert.Contains(t, create, "./events_schema.json")

	load, err := testRenderer(t).ToCliLoad(eventsSchema(), "gs://bucket/events.csv")
	require.NoError(t, err)
	assert.Contains(t, load, "bq load --source_format=CSV")
	assert.Contains(t, load, "gs://bucket/events.csv")
}
