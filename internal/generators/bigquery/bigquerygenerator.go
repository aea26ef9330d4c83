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
	"fmt"
	"strings"
	"time"

	"github.com/quarrydata/schemamapper/internal/generators"
	"github.com/quarrydata/schemamapper/internal/renderers"
	_ "github.com/quarrydata/schemamapper/internal/renderers/bigquery"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/incremental"
	"github.com/quarrydata/schemamapper/spi/schema"
)

func init() {
	incremental.RegisterGenerator(
		spiconfig.BigQuery,
		func(config *spiconfig.Config) (incremental.Generator, error) {
			return generators.NewEngine(config, generators.Dialect{
				Platform:     spiconfig.BigQuery,
				Quote:        renderers.QuoteBacktick,
				TableName:    tableName,
				Now:          "CURRENT_TIMESTAMP()",
				EpochLiteral: "TIMESTAMP '1970-01-01'",
				TrueLiteral:  "TRUE",
				FalseLiteral: "FALSE",
				Coalesce: func(expression, fallback string) string {
					return fmt.Sprintf("COALESCE(%s, %s)", expression, fallback)
				},
				Lookback: func(expression string, window time.Duration) string {
					return fmt.Sprintf(
						"TIMESTAMP_SUB(%s, INTERVAL %d MINUTE)",
						expression, int64(window.Minutes()),
					)
				},
				MergeStyle:  generators.MergeStyleNative,
				DeleteAlias: true,
				Unsupported: map[incremental.LoadPattern]bool{},
			})
		},
	)
}

func tableName(
	canonicalSchema *schema.CanonicalSchema, table string,
) string {

	parts := make([]string, 0, 3)
	if projectId := canonicalSchema.ProjectId(); projectId != nil {
		parts = append(parts, *projectId)
	}
	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		parts = append(parts, *datasetName)
	}
	parts = append(parts, table)
	return renderers.QuoteBacktick(strings.Join(parts, "."))
}
