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

package rules

import (
	"sync"
	"testing"

	"github.com/quarrydata/schemamapper/internal/supporting"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/sample"
	"github.com/quarrydata/schemamapper/spi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rulesSample(t *testing.T) sample.Sample {
	smp, err := sample.NewSample(
		[]string{"order_id", "status"},
		map[string][]*string{
			"order_id": {
				supporting.AddrOf("1"), supporting.AddrOf("2"),
				supporting.AddrOf("3"), supporting.AddrOf("4"),
			},
			"status": {
				supporting.AddrOf("open"), nil, nil, nil,
			},
		},
	)
	require.NoError(t, err)
	return smp
}

func rulesSchema() *schema.CanonicalSchema {
	return schema.NewCanonicalSchema("orders", schema.Columns{
		schema.NewColumn(
			"order_id", schema.Integer, false,
			schema.WithOriginalName("order_id"),
		),
		schema.NewColumn(
			"status", schema.String, true,
			schema.WithOriginalName("status"),
		),
	})
}

func Test_RuleEngine_Fires_On_Matching_Columns(t *testing.T) {
	engine, err := NewEngine([]spiconfig.RuleConfig{
		{
			Name:      "mostly-null",
			Condition: "null_ratio > 0.5",
			Message:   "column is mostly null",
		},
	})
	require.NoError(t, err)

	violations, err := engine.Evaluate(rulesSample(t), rulesSchema())
	require.NoError(t, err)

	require.Len(t, violations, 1)
	assert.Equal(t, "mostly-null", violations[0].Rule)
	assert.Equal(t, "status", violations[0].Column)
	assert.Equal(t, "column is mostly null", violations[0].Message)
}

func Test_RuleEngine_Facts_Expose_Name_And_Type(t *testing.T) {
	engine, err := NewEngine([]spiconfig.RuleConfig{
		{
			Name:      "id-must-be-required",
			Condition: `name endsWith "_id" && nullable`,
			Message:   "identifier columns must not be nullable",
		},
		{
			Name:      "string-low-cardinality",
			Condition: `type == "STRING" && distinct_ratio == 1.0`,
			Message:   "string column looks like a key",
		},
	})
	require.NoError(t, err)

	violations, err := engine.Evaluate(rulesSample(t), rulesSchema())
	require.NoError(t, err)

	// order_id isn't nullable, status has a single distinct value
	require.Len(t, violations, 1)
	assert.Equal(t, "string-low-cardinality", violations[0].Rule)
	assert.Equal(t, "status", violations[0].Column)
}

func Test_RuleEngine_Rejects_Uncompilable_Condition(t *testing.T) {
	_, err := NewEngine([]spiconfig.RuleConfig{
		{Name: "broken", Condition: "null_ratio >"},
	})
	assert.ErrorContains(t, err, "rule 'broken'")
}

func Test_RuleEngine_Rejects_Non_Boolean_Condition(t *testing.T) {
	engine, err := NewEngine([]spiconfig.RuleConfig{
		{Name: "numeric", Condition: "null_ratio * 2"},
	})
	require.NoError(t, err)

	_, err = engine.Evaluate(rulesSample(t), rulesSchema())
	assert.ErrorContains(t, err, "isn't a boolean")
}

func Test_RuleEngine_Concurrent_Evaluation(t *testing.T) {
	engine, err := NewEngine([]spiconfig.RuleConfig{
		{
			Name:      "mostly-null",
			Condition: "null_ratio > 0.5",
			Message:   "column is mostly null",
		},
	})
	require.NoError(t, err)

	smp := rulesSample(t)
	canonicalSchema := rulesSchema()

	waitGroup := sync.WaitGroup{}
	results := make([][]Violation, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		waitGroup.Add(1)
		go func(index int) {
			defer waitGroup.Done()
			results[index], errs[index] = engine.Evaluate(smp, canonicalSchema)
		}(i)
	}
	waitGroup.Wait()

	for i := 0; i < 8; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 1)
		assert.Equal(t, "status", results[i][0].Column)
	}
}

func Test_RuleEngine_No_Rules_No_Violations(t *testing.T) {
	engine, err := NewEngine(nil)
	require.NoError(t, err)

	violations, err := engine.Evaluate(rulesSample(t), rulesSchema())
	require.NoError(t, err)
	assert.Empty(t, violations)
}
