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
	"fmt"
	"time"

	"github.com/quarrydata/schemamapper/internal/generators"
	"github.com/quarrydata/schemamapper/internal/renderers"
	_ "github.com/quarrydata/schemamapper/internal/renderers/redshift"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/incremental"
	"github.com/quarrydata/schemamapper/spi/schema"
)

func init() {
	incremental.RegisterGenerator(
		spiconfig.Redshift,
		func(config *spiconfig.Config) (incremental.Generator, error) {
			return generators.NewEngine(config, generators.Dialect{
				Platform:     spiconfig.Redshift,
				Quote:        renderers.QuotePostgres,
				TableName:    tableName,
				Now:          "GETDATE()",
				EpochLiteral: "'1970-01-01'",
				TrueLiteral:  "TRUE",
				FalseLiteral: "FALSE",
				Coalesce: func(expression, fallback string) string {
					return fmt.Sprintf("COALESCE(%s, %s)", expression, fallback)
				},
				Lookback: func(expression string, window time.Duration) string {
					return fmt.Sprintf(
						"DATEADD(minute, -%d, %s)",
						int64(window.Minutes()), expression,
					)
				},
				MergeStyle:  generators.MergeStyleUpdateFrom,
				DeleteAlias: true,
				Unsupported: map[incremental.LoadPattern]bool{
					incremental.Upsert:   true,
					incremental.CdcMerge: true,
				},
			})
		},
	)
}

func tableName(
	canonicalSchema *schema.CanonicalSchema, table string,
) string {

	if datasetName := canonicalSchema.DatasetName(); datasetName != nil {
		return fmt.Sprintf(
			"%s.%s",
			renderers.QuotePostgres(*datasetName),
			renderers.QuotePostgres(table),
		)
	}
	return renderers.QuotePostgres(table)
}
