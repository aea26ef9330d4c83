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
	"testing"

	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer(t *testing.T) *postgresqlRenderer {
	r, err := newPostgresqlRenderer(spiconfig.Default())
	require.NoError(t, err)
	return r
}

func measurementsSchema() *schema.CanonicalSchema {
	return schema.NewCanonicalSchema("measurements", schema.Columns{
		schema.NewColumn("device_id", schema.Integer, false),
		schema.NewColumn("reading", schema.Float, false),
		schema.NewColumn("notes", schema.Text, true),
		schema.NewColumn("payload", schema.Json, true),
		schema.NewColumn("measured_on", schema.Date, false),
	},
		schema.WithDatasetName("telemetry"),
		schema.WithSchemaDescription("device readings"),
		schema.WithOptimization(schema.NewOptimizationHints(
			schema.WithPartitionColumns("measured_on"),
		)),
	)
}

func Test_Postgresql_DDL(t *testing.T) {
	ddl, err := testRenderer(t).ToDDL(measurementsSchema())
	require.NoError(t, err)

	assert.Contains(t, ddl, `CREATE TABLE "telemetry"."measurements" (`)
	assert.Contains(t, ddl, `"device_id" INTEGER NOT NULL`)
	assert.Contains(t, ddl, `"reading" DOUBLE PRECISION NOT NULL`)
	assert.Contains(t, ddl, `"notes" TEXT`)
	assert.Contains(t, ddl, `"payload" JSONB`)
	assert.Contains(t, ddl, `PARTITION BY RANGE ("measured_on")`)
	assert.Contains(t, ddl, `COMMENT ON TABLE "telemetry"."measurements" IS 'device readings';`)
}

func Test_Postgresql_Rejects_Distribution_Keys(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("measurements", schema.Columns{
		schema.NewColumn("device_id", schema.Integer, false),
	}, schema.WithOptimization(schema.NewOptimizationHints(
		schema.WithDistributionColumn("device_id"),
	)))

	violations := testRenderer(t).Validate(canonicalSchema)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "distribution")
}

func Test_Postgresql_Physical_Types(t *testing.T) {
	physicalTypes, err := testRenderer(t).ToPhysicalTypes(measurementsSchema())
	require.NoError(t, err)

	assert.Equal(t, "INTEGER", physicalTypes["device_id"])
	assert.Equal(t, "TEXT", physicalTypes["notes"])
	assert.Equal(t, "JSONB", physicalTypes["payload"])
}

func Test_Postgresql_Quotes_Reserved_Identifiers(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("orders", schema.Columns{
		schema.NewColumn("order", schema.Integer, false),
	})

	ddl, err := testRenderer(t).ToDDL(canonicalSchema)
	require.NoError(t, err)
	assert.Contains(t, ddl, `"order" INTEGER NOT NULL`)
}

func Test_Postgresql_Cli_Load(t *testing.T) {
	load, err := testRenderer(t).ToCliLoad(measurementsSchema(), "readings.csv")
	require.NoError(t, err)
	assert.Contains(t, load, `\copy telemetry.measurements FROM 'readings.csv'`)
	assert.Contains(t, load, "FORMAT csv, HEADER true")
}

func Test_Postgresql_No_Schema_Artifact(t *testing.T) {
	_, err := testRenderer(t).ToSchemaArtifact(measurementsSchema())
	require.Error(t, err)
	_, ok := err.(*renderer.UnsupportedCapabilityError)
	assert.True(t, ok)
}
