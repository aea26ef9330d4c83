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

package schema

import (
	"strings"

	"github.com/go-errors/errors"
)

// LogicalType is a platform-neutral column type. It never carries a
// source dialect keyword; renderers map it to the physical type of
// their platform.
type LogicalType string

const (
	Integer     LogicalType = "INTEGER"
	BigInt      LogicalType = "BIGINT"
	Float       LogicalType = "FLOAT"
	Decimal     LogicalType = "DECIMAL"
	String      LogicalType = "STRING"
	Text        LogicalType = "TEXT"
	Boolean     LogicalType = "BOOLEAN"
	Date        LogicalType = "DATE"
	Timestamp   LogicalType = "TIMESTAMP"
	TimestampTz LogicalType = "TIMESTAMPTZ"
	Json        LogicalType = "JSON"
	Binary      LogicalType = "BINARY"
)

// LogicalTypes returns the closed set of logical types in a stable order
func LogicalTypes() []LogicalType {
	return []LogicalType{
		Integer, BigInt, Float, Decimal, String, Text,
		Boolean, Date, Timestamp, TimestampTz, Json, Binary,
	}
}

// Token returns the lowercase document token of the logical type
func (lt LogicalType) Token() string {
	return strings.ToLower(string(lt))
}

// IsNumeric returns true for integer, float, and decimal types
func (lt LogicalType) IsNumeric() bool {
	switch lt {
	case Integer, BigInt, Float, Decimal:
		return true
	}
	return false
}

// IsTemporal returns true for date and timestamp types
func (lt LogicalType) IsTemporal() bool {
	switch lt {
	case Date, Timestamp, TimestampTz:
		return true
	}
	return false
}

// IsTextual returns true for string-like types
func (lt LogicalType) IsTextual() bool {
	return lt == String || lt == Text
}

// ParseLogicalType resolves a document token (case-insensitive) to its
// LogicalType, or returns an error for tokens outside the closed set
func ParseLogicalType(token string) (LogicalType, error) {
	candidate := LogicalType(strings.ToUpper(strings.TrimSpace(token)))
	for _, lt := range LogicalTypes() {
		if lt == candidate {
			return lt, nil
		}
	}
	return "", errors.Errorf("LogicalType '%s' doesn't exist", token)
}
