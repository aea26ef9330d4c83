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

package incremental

import (
	"strings"
)

// LoadScript is the result of one generation call: the staging table
// DDL (empty for patterns that load without a staging table) and the
// ordered load statements. Statement order is part of the contract:
// SCD_TYPE2 emits the close-out statement strictly before the insert.
type LoadScript struct {
	stagingDDL    string
	statements    []string
	transactional bool
}

func NewLoadScript(
	stagingDDL string, statements []string, transactional bool,
) *LoadScript {

	return &LoadScript{
		stagingDDL:    stagingDDL,
		statements:    statements,
		transactional: transactional,
	}
}

// StagingDDL returns the staging table DDL, or the empty string when
// the pattern needs none
func (s *LoadScript) StagingDDL() string {
	return s.stagingDDL
}

// Statements returns the load statements in execution order
func (s *LoadScript) Statements() []string {
	return s.statements
}

// IsTransactional reports whether the rendered script wraps the load
// statements in an explicit transaction
func (s *LoadScript) IsTransactional() bool {
	return s.transactional
}

// Render assembles the full runnable script text
func (s *LoadScript) Render() string {
	parts := make([]string, 0, len(s.statements)+3)
	if s.stagingDDL != "" {
		parts = append(parts, s.stagingDDL)
	}
	if s.transactional {
		parts = append(parts, "BEGIN TRANSACTION;")
	}
	parts = append(parts, s.statements...)
	if s.transactional {
		parts = append(parts, "COMMIT;")
	}
	return strings.Join(parts, "\n\n")
}
