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

package sqlserver

import (
	"testing"

	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/renderer"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer(t *testing.T) *sqlServerRenderer {
	r, err := newSqlServerRenderer(spiconfig.Default())
	require.NoError(t, err)
	return r
}

func invoicesSchema() *schema.CanonicalSchema {
	return schema.NewCanonicalSchema("invoices", schema.Columns{
		schema.NewColumn("invoice_id", schema.BigInt, false),
		schema.NewColumn("customer", schema.String, false, schema.WithMaxLength(100)),
		schema.NewColumn("amount", schema.Decimal, false, schema.WithPrecision(10, 2)),
		schema.NewColumn("paid", schema.Boolean, true),
		schema.NewColumn("issued_at", schema.Timestamp, false),
	},
		schema.WithDatasetName("billing"),
		schema.WithOptimization(schema.NewOptimizationHints(
			schema.WithClusterColumns("invoice_id"),
		)),
	)
}

func Test_SqlServer_DDL(t *testing.T) {
	ddl, err := testRenderer(t).ToDDL(invoicesSchema())
	require.NoError(t, err)

	assert.Contains(t, ddl, "CREATE TABLE [billing].[invoices] (")
	assert.Contains(t, ddl, "[invoice_id] BIGINT NOT NULL")
	assert.Contains(t, ddl, "[customer] NVARCHAR(100) NOT NULL")
	assert.Contains(t, ddl, "[amount] DECIMAL(10,2) NOT NULL")
	assert.Contains(t, ddl, "[paid] BIT")
	assert.Contains(t, ddl, "[issued_at] DATETIME2 NOT NULL")
	assert.Contains(t, ddl,
		"CREATE CLUSTERED INDEX [ix_invoices_clustered] ON [billing].[invoices] ([invoice_id]);",
	)
}

func Test_SqlServer_Json_Type_Unsupported(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("events", schema.Columns{
		schema.NewColumn("id", schema.Integer, false),
		schema.NewColumn("payload", schema.Json, true),
	})

	_, err := testRenderer(t).ToPhysicalTypes(canonicalSchema)
	require.Error(t, err)

	unsupported, ok := err.(*renderer.UnsupportedCapabilityError)
	require.True(t, ok)
	assert.Equal(t, spiconfig.SQLServer, unsupported.Platform)
	assert.Contains(t, unsupported.Capability, "payload")

	_, err = testRenderer(t).ToDDL(canonicalSchema)
	require.Error(t, err)
}

func Test_SqlServer_Rejects_Partitioning(t *testing.T) {
	canonicalSchema := schema.NewCanonicalSchema("events", schema.Columns{
		schema.NewColumn("event_date", schema.Date, false),
	}, schema.WithOptimization(schema.NewOptimizationHints(
		schema.WithPartitionColumns("event_date"),
	)))

	violations := testRenderer(t).Validate(canonicalSchema)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "partitioning")
}

func Test_SqlServer_Cli_Commands(t *testing.T) {
	create, err := testRenderer(t).ToCliCreate(invoicesSchema())
	require.NoError(t, err)
	assert.Equal(t, "sqlcmd -i ./invoices_create.sql", create)

	load, err := testRenderer(t).ToCliLoad(invoicesSchema(), "invoices.dat")
	require.NoError(t, err)
	assert.Contains(t, load, "bcp billing.invoices in invoices.dat")
}
