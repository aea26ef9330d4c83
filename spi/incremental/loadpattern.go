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

	"github.com/go-errors/errors"
)

// LoadPattern selects the statement-emission recipe of a generation
// call. The enum is closed; generation is stateless per call.
type LoadPattern string

const (
	FullRefresh          LoadPattern = "FULL_REFRESH"
	AppendOnly           LoadPattern = "APPEND_ONLY"
	Upsert               LoadPattern = "UPSERT"
	DeleteInsert         LoadPattern = "DELETE_INSERT"
	IncrementalTimestamp LoadPattern = "INCREMENTAL_TIMESTAMP"
	IncrementalAppend    LoadPattern = "INCREMENTAL_APPEND"
	ScdType1             LoadPattern = "SCD_TYPE1"
	ScdType2             LoadPattern = "SCD_TYPE2"
	CdcMerge             LoadPattern = "CDC_MERGE"
	Snapshot             LoadPattern = "SNAPSHOT"
)

// LoadPatterns returns all load patterns in declaration order
func LoadPatterns() []LoadPattern {
	return []LoadPattern{
		FullRefresh, AppendOnly, Upsert, DeleteInsert, IncrementalTimestamp,
		IncrementalAppend, ScdType1, ScdType2, CdcMerge, Snapshot,
	}
}

// ParseLoadPattern resolves a pattern name (case-insensitive) or
// returns an error for unknown names
func ParseLoadPattern(name string) (LoadPattern, error) {
	pattern := LoadPattern(strings.ToUpper(strings.TrimSpace(name)))
	for _, candidate := range LoadPatterns() {
		if candidate == pattern {
			return pattern, nil
		}
	}
	return "", errors.Errorf("LoadPattern '%s' doesn't exist", name)
}

// NeedsStagingTable reports whether the pattern assumes a staging
// table whose DDL the generator emits alongside the load statements
func (p LoadPattern) NeedsStagingTable() bool {
	switch p {
	case FullRefresh, AppendOnly, Snapshot:
		return false
	}
	return true
}

// MergeStrategy selects how matched rows are updated by UPSERT-style
// patterns
type MergeStrategy string

const (
	UpdateAll       MergeStrategy = "UPDATE_ALL"
	UpdateChanged   MergeStrategy = "UPDATE_CHANGED"
	UpdateSelective MergeStrategy = "UPDATE_SELECTIVE"
	UpdateNone      MergeStrategy = "UPDATE_NONE"
)

// ParseMergeStrategy resolves a merge strategy name
// (case-insensitive) or returns an error for unknown names
func ParseMergeStrategy(name string) (MergeStrategy, error) {
	strategy := MergeStrategy(strings.ToUpper(strings.TrimSpace(name)))
	switch strategy {
	case UpdateAll, UpdateChanged, UpdateSelective, UpdateNone:
		return strategy, nil
	}
	return "", errors.Errorf("MergeStrategy '%s' doesn't exist", name)
}

// DeleteStrategy selects how CDC delete rows are applied
type DeleteStrategy string

const (
	HardDelete DeleteStrategy = "HARD_DELETE"
	SoftDelete DeleteStrategy = "SOFT_DELETE"
)

// ParseDeleteStrategy resolves a delete strategy name
// (case-insensitive) or returns an error for unknown names
func ParseDeleteStrategy(name string) (DeleteStrategy, error) {
	strategy := DeleteStrategy(strings.ToUpper(strings.TrimSpace(name)))
	switch strategy {
	case HardDelete, SoftDelete:
		return strategy, nil
	}
	return "", errors.Errorf("DeleteStrategy '%s' doesn't exist", name)
}
