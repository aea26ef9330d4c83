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
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Columns represents the ordered collection of column definitions of
// a canonical schema. The order is the physical column order.
type Columns []ColumnDefinition

// Names returns the column names in schema order
func (c Columns) Names() []string {
	return lo.Map(c, func(item ColumnDefinition, _ int) string {
		return item.Name()
	})
}

// Get returns the column with the given name (case-insensitive)
func (c Columns) Get(name string) (ColumnDefinition, bool) {
	return lo.Find(c, func(item ColumnDefinition) bool {
		return strings.EqualFold(item.Name(), name)
	})
}

// HasColumn returns true if a column with the given name exists
// (case-insensitive)
func (c Columns) HasColumn(name string) bool {
	_, present := c.Get(name)
	return present
}

func (c Columns) equals(other Columns) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if !c[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// ColumnDefinition represents a single column of a canonical schema
type ColumnDefinition struct {
	name         string
	originalName string
	logicalType  LogicalType
	nullable     bool
	maxLength    *int
	precision    *int
	scale        *int
	description  *string
	dateFormat   *string
	timezone     *string
}

// ColumnOption customizes optional column metadata during construction
type ColumnOption func(*ColumnDefinition)

// WithOriginalName retains the pre-standardization column name
func WithOriginalName(originalName string) ColumnOption {
	return func(c *ColumnDefinition) {
		c.originalName = originalName
	}
}

// WithMaxLength sets the maximum length, meaningful for STRING columns
func WithMaxLength(maxLength int) ColumnOption {
	return func(c *ColumnDefinition) {
		c.maxLength = &maxLength
	}
}

// WithPrecision sets precision and scale, meaningful for DECIMAL columns
func WithPrecision(precision, scale int) ColumnOption {
	return func(c *ColumnDefinition) {
		c.precision = &precision
		c.scale = &scale
	}
}

// WithDescription attaches a human-readable column description
func WithDescription(description string) ColumnOption {
	return func(c *ColumnDefinition) {
		c.description = &description
	}
}

// WithDateFormat records the source date/time format of a temporal column
func WithDateFormat(dateFormat string) ColumnOption {
	return func(c *ColumnDefinition) {
		c.dateFormat = &dateFormat
	}
}

// WithTimezone records the source timezone of a temporal column
func WithTimezone(timezone string) ColumnOption {
	return func(c *ColumnDefinition) {
		c.timezone = &timezone
	}
}

// NewColumn instantiates a new ColumnDefinition. The original name
// defaults to the given name unless overridden by WithOriginalName.
func NewColumn(
	name string, logicalType LogicalType, nullable bool, options ...ColumnOption,
) ColumnDefinition {

	column := ColumnDefinition{
		name:         name,
		originalName: name,
		logicalType:  logicalType,
		nullable:     nullable,
	}
	for _, option := range options {
		option(&column)
	}
	return column
}

// Name returns the standardized column name
func (c ColumnDefinition) Name() string {
	return c.name
}

// OriginalName returns the pre-standardization column name
func (c ColumnDefinition) OriginalName() string {
	return c.originalName
}

// Type returns the logical type of the column
func (c ColumnDefinition) Type() LogicalType {
	return c.logicalType
}

// IsNullable returns true if the column is nullable
func (c ColumnDefinition) IsNullable() bool {
	return c.nullable
}

// MaxLength returns the maximum length of a STRING column, otherwise
// nil if no length restriction is defined
func (c ColumnDefinition) MaxLength() *int {
	return c.maxLength
}

// Precision returns the precision of a DECIMAL column, otherwise nil
func (c ColumnDefinition) Precision() *int {
	return c.precision
}

// Scale returns the scale of a DECIMAL column, otherwise nil
func (c ColumnDefinition) Scale() *int {
	return c.scale
}

// Description returns the column description, otherwise nil
func (c ColumnDefinition) Description() *string {
	return c.description
}

// DateFormat returns the source date/time format of a temporal
// column, otherwise nil
func (c ColumnDefinition) DateFormat() *string {
	return c.dateFormat
}

// Timezone returns the source timezone of a temporal column,
// otherwise nil
func (c ColumnDefinition) Timezone() *string {
	return c.timezone
}

// Validate checks the internal consistency of the column definition
// and returns one message per violation
func (c ColumnDefinition) Validate() []string {
	violations := make([]string, 0)
	if c.name == "" {
		violations = append(violations, "column name must not be empty")
	}
	if (c.precision != nil || c.scale != nil) && c.logicalType != Decimal {
		violations = append(violations, fmt.Sprintf(
			"column '%s': precision/scale are only valid for DECIMAL, not %s",
			c.name, c.logicalType,
		))
	}
	if c.maxLength != nil && c.logicalType != String {
		violations = append(violations, fmt.Sprintf(
			"column '%s': max_length is only valid for STRING, not %s",
			c.name, c.logicalType,
		))
	}
	if (c.dateFormat != nil || c.timezone != nil) && !c.logicalType.IsTemporal() {
		violations = append(violations, fmt.Sprintf(
			"column '%s': date_format/timezone are only valid for temporal types, not %s",
			c.name, c.logicalType,
		))
	}
	return violations
}

// Equal compares two column definitions field by field
func (c ColumnDefinition) Equal(other ColumnDefinition) bool {
	return c.name == other.name &&
		c.originalName == other.originalName &&
		c.logicalType == other.logicalType &&
		c.nullable == other.nullable &&
		equalPtr(c.maxLength, other.maxLength) &&
		equalPtr(c.precision, other.precision) &&
		equalPtr(c.scale, other.scale) &&
		equalPtr(c.description, other.description) &&
		equalPtr(c.dateFormat, other.dateFormat) &&
		equalPtr(c.timezone, other.timezone)
}

func (c ColumnDefinition) String() string {
	builder := strings.Builder{}
	builder.WriteString("{")
	builder.WriteString(fmt.Sprintf("name:%s ", c.name))
	builder.WriteString(fmt.Sprintf("type:%s ", c.logicalType))
	builder.WriteString(fmt.Sprintf("nullable:%t", c.nullable))
	if c.originalName != c.name {
		builder.WriteString(fmt.Sprintf(" originalName:%s", c.originalName))
	}
	if c.maxLength != nil {
		builder.WriteString(fmt.Sprintf(" maxLength:%d", *c.maxLength))
	}
	if c.precision != nil {
		builder.WriteString(fmt.Sprintf(" precision:%d", *c.precision))
	}
	if c.scale != nil {
		builder.WriteString(fmt.Sprintf(" scale:%d", *c.scale))
	}
	builder.WriteString("}")
	return builder.String()
}

func equalPtr[T comparable](this, that *T) bool {
	if this == nil || that == nil {
		return this == that
	}
	return *this == *that
}
