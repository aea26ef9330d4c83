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

package inference

import (
	"testing"

	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/sample"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInferencer(t *testing.T) *Inferencer {
	inferencer, err := NewInferencer(spiconfig.Default())
	require.NoError(t, err)
	return inferencer
}

func inferSingleColumn(
	t *testing.T, name string, rows []string,
) schema.ColumnDefinition {

	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{row})
	}
	smp, err := sample.FromRows([]string{name}, data)
	require.NoError(t, err)

	inferred, err := testInferencer(t).InferSchema(smp, "test_table")
	require.NoError(t, err)
	require.Len(t, inferred.Columns(), 1)
	return inferred.Columns()[0]
}

func Test_Infer_Decimal_With_Consistent_Scale(t *testing.T) {
	column := inferSingleColumn(t, "price", []string{"19.99", "29.99", "39.99"})

	assert.Equal(t, schema.Decimal, column.Type())
	assert.False(t, column.IsNullable())
	require.NotNil(t, column.Precision())
	require.NotNil(t, column.Scale())
	assert.Equal(t, 2, *column.Scale())
	assert.Equal(t, 4, *column.Precision())
}

func Test_Infer_Float_With_Mixed_Scale(t *testing.T) {
	column := inferSingleColumn(t, "ratio", []string{"0.5", "0.25", "1.125"})

	assert.Equal(t, schema.Float, column.Type())
	assert.Nil(t, column.Precision())
}

func Test_Infer_Boolean_With_Empty_Cells(t *testing.T) {
	column := inferSingleColumn(t, "active", []string{"yes", "no", "yes", ""})

	assert.Equal(t, schema.Boolean, column.Type())
	assert.True(t, column.IsNullable())
}

func Test_Infer_Single_Boolean_Token_Is_Not_Boolean(t *testing.T) {
	// A constant "1" column never demonstrates both boolean states
	column := inferSingleColumn(t, "flag", []string{"1", "1", "1"})
	assert.Equal(t, schema.Integer, column.Type())
}

func Test_Infer_Year_Integers_Stay_Integer(t *testing.T) {
	column := inferSingleColumn(t, "fiscal_year", []string{"2019", "2020", "2021"})

	assert.Equal(t, schema.Integer, column.Type())
	assert.False(t, column.IsNullable())
}

func Test_Infer_BigInt_Beyond_Int32_Range(t *testing.T) {
	column := inferSingleColumn(t, "id", []string{"1", "9223372036854775806"})
	assert.Equal(t, schema.BigInt, column.Type())
}

func Test_Infer_Date_And_Timestamp(t *testing.T) {
	column := inferSingleColumn(t, "order_date", []string{
		"2024-01-15", "2024-02-20", "2024-03-25",
	})
	assert.Equal(t, schema.Date, column.Type())
	require.NotNil(t, column.DateFormat())
	assert.Equal(t, "2006-01-02", *column.DateFormat())

	column = inferSingleColumn(t, "created_at", []string{
		"2024-01-15 10:30:00", "2024-02-20 11:45:10",
	})
	assert.Equal(t, schema.Timestamp, column.Type())

	column = inferSingleColumn(t, "updated_at", []string{
		"2024-01-15T10:30:00Z", "2024-02-20T11:45:10+02:00",
	})
	assert.Equal(t, schema.TimestampTz, column.Type())
}

func Test_Infer_Null_Markers(t *testing.T) {
	column := inferSingleColumn(t, "quantity", []string{"1", "N/A", "3", "null"})

	assert.Equal(t, schema.Integer, column.Type())
	assert.True(t, column.IsNullable())
}

func Test_Infer_All_Null_Column_Is_Nullable_String(t *testing.T) {
	column := inferSingleColumn(t, "notes", []string{"", "", ""})

	assert.Equal(t, schema.String, column.Type())
	assert.True(t, column.IsNullable())
}

func Test_Infer_Standardizes_And_Deduplicates_Names(t *testing.T) {
	smp, err := sample.FromRows(
		[]string{"User ID", "user_id", "Revenue (USD)"},
		[][]string{{"1", "2", "19.99"}},
	)
	require.NoError(t, err)

	inferred, err := testInferencer(t).InferSchema(smp, "users")
	require.NoError(t, err)

	assert.Equal(t, []string{"user_id", "user_id_2", "revenue_usd"}, inferred.ColumnNames())
	assert.Equal(t, "User ID", inferred.Columns()[0].OriginalName())
}

func Test_Infer_Is_Deterministic(t *testing.T) {
	smp, err := sample.FromRows(
		[]string{"id", "name", "price", "active"},
		[][]string{
			{"1", "widget", "19.99", "yes"},
			{"2", "gadget", "29.99", "no"},
		},
	)
	require.NoError(t, err)

	inferencer := testInferencer(t)
	first, err := inferencer.InferSchema(smp, "products")
	require.NoError(t, err)
	second, err := inferencer.InferSchema(smp, "products")
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}
