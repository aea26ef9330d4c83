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
	"fmt"
	"time"

	"github.com/quarrydata/schemamapper/internal/generators"
	"github.com/quarrydata/schemamapper/internal/renderers"
	_ "github.com/quarrydata/schemamapper/internal/renderers/sqlserver"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/incremental"
	"github.com/quarrydata/schemamapper/spi/schema"
)

func init() {
	incremental.RegisterGenerator(
		spiconfig.SQLServer,
		func(config *spiconfig.Config) (incremental.Generator, error) {
			return generators.NewEngine(config, generators.Dialect{
				Platform:     spiconfig.SQLServer,
				Quote:        renderers.QuoteBracket,
				TableName:    tableName,
				Now:          "GETDATE()",
				EpochLiteral: "'1970-01-01'",
				TrueLiteral:  "1",
				FalseLiteral: "0",
				Coalesce: func(expression, fallback string) string {
					return fmt.Sprintf("ISNULL(%s, %s)", expression, fallback)
				},
				Lookback: func(expression string, window time.Duration) string {
					return fmt.Sprintf(
						"DATEADD(MINUTE, -%d, %s)",
						int64(window.Minutes()), expression,
					)
				},
				MergeStyle:    generators.MergeStyleNative,
				Transactional: true,
				Unsupported:   map[incremental.LoadPattern]bool{},
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
			renderers.QuoteBracket(*datasetName),
			renderers.QuoteBracket(table),
		)
	}
	return renderers.QuoteBracket(table)
}
