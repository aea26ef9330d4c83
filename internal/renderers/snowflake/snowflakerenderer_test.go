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
	"testing"

	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer(t *testing.T) *snowflakeRenderer {
	r, err := newSnowflakeRenderer(spiconfig.Default())
	require.NoError(t, err)
	return r
}

func ordersSchema() *schema.CanonicalSchema {
	return schema.NewCanonicalSchema("orders", schema.Columns{
		schema.NewColumn("order_id", schema.BigInt, false),
		schema.NewColumn("customer", schema.String, false),
		schema.NewColumn("total", schema.Decimal, true, schema.WithPrecision(12, 2)),
		schema.NewColumn("attributes", schema.Json, true),
		schema.NewColumn("placed_at", schema.Timestamp, false),
	},
		schema.WithDatasetName("sales"),
		schema.WithSchemaDescription("order headers"),
		schema.WithOptimization(schema.NewOptimizationHints(
			schema.WithClusterColumns("order_id"),
		)),
	)
}

func Test_Snowflake_DDL(t *testing.T) {
	ddl, err := testRenderer(t).ToDDL(ordersSchema())
	require.NoError(t, err)

	assert.Contains(t, ddl, `CREATE TABLE "sales"."orders" (`)
	assert.Contains(t, ddl, `"order_id" NUMBER(38,0) NOT NULL`)
	assert.Contains(t, ddl, `"customer" VARCHAR(16777216) NOT NULL`)
	assert.Contains(t, ddl, `"total" NUMBER(12,2)`)
	assert.Contains(t, ddl, `"attributes" VARIANT`)
	assert.Contains(t, ddl, `"placed_at" TIMESTAMP_NTZ NOT NULL`)
	assert.Contains(t, ddl, `CLUSTER BY ("order_id")`)
	assert.Contains(t, ddl, "COMMENT = 'order headers'")
}

func Test_Snowflake_Rejects_Partitioning(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("orders", schema.Columns{
		schema.NewColumn("order_id", schema.BigInt, false),
		schema.NewColumn("order_date", schema.Date, false),
	}, schema.WithOptimization(schema.NewOptimizationHints(
		schema.WithPartitionColumns("order_date"),
	)))

	violations := testRenderer(t).Validate(canonicalSchema)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "partition")

	_, err := testRenderer(t).ToDDL(canonicalSchema)
	require.Error(t, err)
	_, ok := err.(*renderer.ValidationError)
	assert.True(t, ok)
}

func Test_Snowflake_Physical_Types(t *testing.T) {
	physicalTypes, err := testRenderer(t).ToPhysicalTypes(ordersSchema())
	require.NoError(t, err)

	assert.Equal(t, "NUMBER(38,0)", physicalTypes["order_id"])
	assert.Equal(t, "VARIANT", physicalTypes["attributes"])
	assert.Equal(t, "TIMESTAMP_NTZ", physicalTypes["placed_at"])
}

func Test_Snowflake_No_Schema_Artifact(t *testing.T) {
	_, err := testRenderer(t).ToSchemaArtifact(ordersSchema())
	require.Error(t, err)

	unsupported, ok := err.(*renderer.UnsupportedCapabilityError)
	require.True(t, ok)
	assert.Equal(t, spiconfig.Snowflake, unsupported.Platform)
}

func Test_Snowflake_Cli_Commands(t *testing.T) {
	create, err := testRenderer(t).ToCliCreate(ordersSchema())
	require.NoError(t, err)
	assert.Equal(t, "snowsql -f ./orders_create.sql", create)

	load, err := testRenderer(t).ToCliLoad(ordersSchema(), "/data/orders.csv")
	require.NoError(t, err)
	assert.Contains(t, load, "PUT file:///data/orders.csv @%orders")
	assert.Contains(t, load, "COPY INTO sales.orders FROM @%orders")
}
