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

package keydetect

import (
	"fmt"
	"testing"

	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/sample"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetector(t *testing.T) *Detector {
	detector, err := NewDetector(spiconfig.Default())
	require.NoError(t, err)
	return detector
}

func ordersFixture(t *testing.T) (sample.Sample, *schema.CanonicalSchema) {
	rows := make([][]string, 0, 100)
	for i := 0; i < 100; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("customer_%d", i%10),
			"2024-01-15",
		})
	}
	smp, err := sample.FromRows([]string{"order_id", "customer", "order_date"}, rows)
	require.NoError(t, err)

	canonicalSchema := schema.NewCanonicalSchema("orders", schema.Columns{
		schema.NewColumn("order_id", schema.Integer, false, schema.WithOriginalName("order_id")),
		schema.NewColumn("customer", schema.String, false, schema.WithOriginalName("customer")),
		schema.NewColumn("order_date", schema.Date, false, schema.WithOriginalName("order_date")),
	})
	return smp, canonicalSchema
}

func Test_Detect_Unique_Id_Column(t *testing.T) {
	smp, canonicalSchema := ordersFixture(t)

	candidate, found, err := testDetector(t).BestCandidate(smp, canonicalSchema)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, []string{"order_id"}, candidate.Columns)
	assert.False(t, candidate.IsComposite)
	assert.GreaterOrEqual(t, candidate.Confidence, 0.9)
	assert.Equal(t, 1.0, candidate.Uniqueness)
	assert.Equal(t, 1.0, candidate.Completeness)
	assert.Equal(t, 100, candidate.Cardinality)
	assert.Contains(t, candidate.Reasoning, "unique")
}

func Test_Detect_Rejects_Low_Uniqueness(t *testing.T) {
	rows := make([][]string, 0, 100)
	for i := 0; i < 100; i++ {
		rows = append(rows, []string{fmt.Sprintf("region_%d", i%4)})
	}
	smp, err := sample.FromRows([]string{"region"}, rows)
	require.NoError(t, err)

	canonicalSchema := schema.NewCanonicalSchema("sales", schema.Columns{
		schema.NewColumn("region", schema.String, false, schema.WithOriginalName("region")),
	})

	candidates, err := testDetector(t).DetectCandidates(smp, canonicalSchema)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	_, found, err := testDetector(t).BestCandidate(smp, canonicalSchema)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Detect_Composite_When_No_Single_Column_Qualifies(t *testing.T) {
	rows := make([][]string, 0, 100)
	for store := 0; store < 10; store++ {
		for day := 0; day < 10; day++ {
			rows = append(rows, []string{
				fmt.Sprintf("store_%d", store),
				fmt.Sprintf("2024-01-%02d", day+1),
			})
		}
	}
	smp, err := sample.FromRows([]string{"store_id", "sales_date"}, rows)
	require.NoError(t, err)

	canonicalSchema := schema.NewCanonicalSchema("daily_sales", schema.Columns{
		schema.NewColumn("store_id", schema.String, false, schema.WithOriginalName("store_id")),
		schema.NewColumn("sales_date", schema.Date, false, schema.WithOriginalName("sales_date")),
	})

	candidates, err := testDetector(t).DetectCandidates(smp, canonicalSchema)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, []string{"store_id", "sales_date"}, candidates[0].Columns)
	assert.True(t, candidates[0].IsComposite)
	assert.Equal(t, 100, candidates[0].Cardinality)
}

func Test_Detect_Single_Column_Ranks_Above_Composite(t *testing.T) {
	smp, canonicalSchema := ordersFixture(t)

	candidates, err := testDetector(t).DetectCandidates(smp, canonicalSchema)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	assert.Equal(t, []string{"order_id"}, candidates[0].Columns)
	for _, candidate := range candidates[1:] {
		assert.LessOrEqual(t, candidate.Confidence, candidates[0].Confidence)
	}
}

func Test_Detect_Nulls_Count_Against_Uniqueness(t *testing.T) {
	rows := make([][]string, 0, 200)
	for i := 0; i < 100; i++ {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1)})
	}
	for i := 0; i < 100; i++ {
		rows = append(rows, []string{""})
	}
	smp, err := sample.FromRows([]string{"id"}, rows)
	require.NoError(t, err)

	canonicalSchema := schema.NewCanonicalSchema("items", schema.Columns{
		schema.NewColumn("id", schema.Integer, true, schema.WithOriginalName("id")),
	})

	candidates, err := testDetector(t).DetectCandidates(smp, canonicalSchema)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	_, found, err := testDetector(t).BestCandidate(smp, canonicalSchema)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Detect_Sparse_Nulls_Lower_Scores(t *testing.T) {
	rows := make([][]string, 0, 400)
	for i := 0; i < 399; i++ {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1)})
	}
	rows = append(rows, []string{""})
	smp, err := sample.FromRows([]string{"id"}, rows)
	require.NoError(t, err)

	canonicalSchema := schema.NewCanonicalSchema("items", schema.Columns{
		schema.NewColumn("id", schema.Integer, true, schema.WithOriginalName("id")),
	})

	candidates, err := testDetector(t).DetectCandidates(smp, canonicalSchema)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, 0.9975, candidates[0].Uniqueness)
	assert.Equal(t, 0.9975, candidates[0].Completeness)
	assert.Equal(t, 399, candidates[0].Cardinality)
}

func Test_Detect_Missing_Sample_Column(t *testing.T) {
	smp, _ := ordersFixture(t)

	canonicalSchema := schema.NewCanonicalSchema("orders", schema.Columns{
		schema.NewColumn("order_id", schema.Integer, false, schema.WithOriginalName("Order Number")),
	})

	_, err := testDetector(t).DetectCandidates(smp, canonicalSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Order Number")
}
