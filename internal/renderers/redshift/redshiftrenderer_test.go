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
	"testing"

	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer(t *testing.T) *redshiftRenderer {
	r, err := newRedshiftRenderer(spiconfig.Default())
	require.NoError(t, err)
	return r
}

func clicksSchema() *schema.CanonicalSchema {
	return schema.NewCanonicalSchema("clicks", schema.Columns{
		schema.NewColumn("click_id", schema.BigInt, false),
		schema.NewColumn("session", schema.String, false, schema.WithMaxLength(128)),
		schema.NewColumn("clicked_at", schema.TimestampTz, false),
		schema.NewColumn("metadata", schema.Json, true),
	},
		schema.WithDatasetName("web"),
		schema.WithOptimization(schema.NewOptimizationHints(
			schema.WithDistributionColumn("session"),
			schema.WithSortColumns("clicked_at", "click_id"),
		)),
	)
}

func Test_Redshift_DDL(t *testing.T) {
	ddl, err := testRenderer(t).ToDDL(clicksSchema())
	require.NoError(t, err)

	assert.Contains(t, ddl, `CREATE TABLE "web"."clicks" (`)
	assert.Contains(t, ddl, `"click_id" BIGINT NOT NULL`)
	assert.Contains(t, ddl, `"session" VARCHAR(128) NOT NULL`)
	assert.Contains(t, ddl, `"clicked_at" TIMESTAMPTZ NOT NULL`)
	assert.Contains(t, ddl, `"metadata" SUPER`)
	assert.Contains(t, ddl, "DISTSTYLE KEY")
	assert.Contains(t, ddl, `DISTKEY("session")`)
	assert.Contains(t, ddl, `SORTKEY("clicked_at", "click_id")`)
}

func Test_Redshift_Rejects_Clustering(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("clicks", schema.Columns{
		schema.NewColumn("click_id", schema.BigInt, false),
	}, schema.WithOptimization(schema.NewOptimizationHints(
		schema.WithClusterColumns("click_id"),
	)))

	violations := testRenderer(t).Validate(canonicalSchema)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "clustering")
}

func Test_Redshift_Rejects_Partitioning(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("clicks", schema.Columns{
		schema.NewColumn("clicked_at", schema.TimestampTz, false),
	}, schema.WithOptimization(schema.NewOptimizationHints(
		schema.WithPartitionColumns("clicked_at"),
	)))

	violations := testRenderer(t).Validate(canonicalSchema)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "partitioning")
}

func Test_Redshift_Physical_Types(t *testing.T) {
	physicalTypes, err := testRenderer(t).ToPhysicalTypes(clicksSchema())
	require.NoError(t, err)

	assert.Equal(t, "BIGINT", physicalTypes["click_id"])
	assert.Equal(t, "VARCHAR(128)", physicalTypes["session"])
	assert.Equal(t, "SUPER", physicalTypes["metadata"])
}

func Test_Redshift_Cli_Load(t *testing.T) {
	load, err := testRenderer(t).ToCliLoad(clicksSchema(), "s3://bucket/clicks/")
	require.NoError(t, err)
	assert.Contains(t, load, "COPY web.clicks FROM 's3://bucket/clicks/'")
	assert.Contains(t, load, "IGNOREHEADER 1")
}

func Test_Redshift_No_Schema_Artifact(t *testing.T) {
	_, err := testRenderer(t).ToSchemaArtifact(clicksSchema())
	require.Error(t, err)
	_, ok := err.(*renderer.UnsupportedCapabilityError)
	assert.True(t, ok)
}
