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
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/quarrydata/schemamapper/internal/supporting/logging"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/sample"
	"github.com/quarrydata/schemamapper/spi/schema"
)

// booleanTokens is the fixed recognized token set for the boolean
// check. Matching is case-insensitive.
var booleanTokens = map[string]bool{
	"true": true, "false": true, "yes": true, "no": true,
	"y": true, "n": true, "1": true, "0": true, "t": true, "f": true,
}

type temporalPattern struct {
	layout  string
	hasTime bool
	zoned   bool
}

// temporalPatterns is the small set of common date/time patterns the
// temporal check recognizes. A single pattern must match consistently.
var temporalPatterns = []temporalPattern{
	{layout: "2006-01-02T15:04:05Z07:00", hasTime: true, zoned: true},
	{layout: "2006-01-02T15:04:05", hasTime: true},
	{layout: "2006-01-02 15:04:05", hasTime: true},
	{layout: "2006-01-02", hasTime: false},
	{layout: "2006/01/02 15:04:05", hasTime: true},
	{layout: "2006/01/02", hasTime: false},
	{layout: "01/02/2006 15:04:05", hasTime: true},
	{layout: "01/02/2006", hasTime: false},
	{layout: "02.01.2006", hasTime: false},
}

// Inferencer turns sampled tabular data into a canonical schema. All
// methods are pure functions of their inputs.
type Inferencer struct {
	standardizeNames   bool
	maxStringLength    int
	temporalMatchRatio float64
	nullMarkers        map[string]bool
	logger             *logging.Logger
}

func NewInferencer(
	config *spiconfig.Config,
) (*Inferencer, error) {

	logger, err := logging.NewLogger("Inferencer")
	if err != nil {
		return nil, err
	}

	standardizeNames := true
	if config.Inference.StandardizeNames != nil {
		standardizeNames = *config.Inference.StandardizeNames
	}

	markers := config.Inference.NullMarkers
	if len(markers) == 0 {
		markers = spiconfig.Default().Inference.NullMarkers
	}
	nullMarkers := make(map[string]bool, len(markers))
	for _, marker := range markers {
		nullMarkers[strings.ToLower(marker)] = true
	}

	return &Inferencer{
		standardizeNames: standardizeNames,
		maxStringLength: spiconfig.GetOrDefault(
			config, spiconfig.PropertyInferenceMaxStringLength, 65535,
		),
		temporalMatchRatio: spiconfig.GetOrDefault(
			config, spiconfig.PropertyInferenceTemporalRatio, 0.5,
		),
		nullMarkers: nullMarkers,
		logger:      logger,
	}, nil
}

// InferSchema inspects every column of the sample and builds a
// canonical schema for the given table name. Column names are
// standardized (unless disabled) with the original names retained.
func (i *Inferencer) InferSchema(
	smp sample.Sample, tableName string, options ...schema.SchemaOption,
) (*schema.CanonicalSchema, error) {

	if strings.TrimSpace(tableName) == "" {
		return nil, errors.Errorf("table name must not be empty")
	}

	i.logger.Debugf("inferring schema for %d columns", len(smp.ColumnNames()))

	assigned := make(map[string]int)
	columns := make(schema.Columns, 0, len(smp.ColumnNames()))
	for _, originalName := range smp.ColumnNames() {
		column, present := smp.Column(originalName)
		if !present {
			return nil, errors.Errorf("sample has no column '%s'", originalName)
		}

		name := originalName
		if i.standardizeNames {
			name = schema.StandardizeName(originalName)
		}
		if count, collision := assigned[strings.ToLower(name)]; collision {
			assigned[strings.ToLower(name)] = count + 1
			name = fmt.Sprintf("%s_%d", name, count+1)
		} else {
			assigned[strings.ToLower(name)] = 1
		}

		columns = append(columns, i.inferColumn(name, originalName, column))
	}

	return schema.NewCanonicalSchema(tableName, columns, options...), nil
}

func (i *Inferencer) inferColumn(
	name, originalName string, column sample.Column,
) schema.ColumnDefinition {

	nonNull := i.nonNullValues(column.Values())
	nullable := len(nonNull) < len(column.Values())

	columnOptions := []schema.ColumnOption{schema.WithOriginalName(originalName)}

	logicalType, typeOptions := i.InferType(nonNull)
	columnOptions = append(columnOptions, typeOptions...)

	i.logger.Tracef(
		"column '%s' inferred as %s (nullable=%t)", name, logicalType, nullable,
	)
	return schema.NewColumn(name, logicalType, nullable, columnOptions...)
}

// InferType runs the type-inference priority order over a column's
// non-null values and returns the logical type together with any type
// parameter options (decimal precision/scale, date format). The empty
// set infers as STRING.
func (i *Inferencer) InferType(
	nonNull []string,
) (schema.LogicalType, []schema.ColumnOption) {

	if len(nonNull) == 0 {
		return schema.String, nil
	}

	if isBoolean(nonNull) {
		return schema.Boolean, nil
	}

	// The numeric check deliberately runs before the temporal check:
	// a column of year-like integers infers as INTEGER, never DATE.
	if logicalType, options, ok := inferNumeric(nonNull); ok {
		return logicalType, options
	}

	if logicalType, options, ok := i.inferTemporal(nonNull); ok {
		return logicalType, options
	}

	maxLength := 0
	for _, value := range nonNull {
		if length := len([]rune(value)); length > maxLength {
			maxLength = length
		}
	}
	if maxLength > i.maxStringLength {
		return schema.Text, nil
	}
	return schema.String, nil
}

func (i *Inferencer) nonNullValues(values []*string) []string {
	nonNull := make([]string, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		if i.nullMarkers[strings.ToLower(strings.TrimSpace(*value))] {
			continue
		}
		nonNull = append(nonNull, *value)
	}
	return nonNull
}

func isBoolean(nonNull []string) bool {
	distinct := make(map[string]bool)
	for _, value := range nonNull {
		token := strings.ToLower(strings.TrimSpace(value))
		if !booleanTokens[token] {
			return false
		}
		distinct[token] = true
	}
	return len(distinct) >= 2
}

func inferNumeric(
	nonNull []string,
) (schema.LogicalType, []schema.ColumnOption, bool) {

	allIntegers := true
	needsBigInt := false
	for _, value := range nonNull {
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			allIntegers = false
			break
		}
		if parsed > math.MaxInt32 || parsed < math.MinInt32 {
			needsBigInt = true
		}
	}
	if allIntegers {
		if needsBigInt {
			return schema.BigInt, nil, true
		}
		return schema.Integer, nil, true
	}

	scale := -1
	maxIntegerDigits := 0
	fixedScale := true
	for _, value := range nonNull {
		trimmed := strings.TrimSpace(value)
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return "", nil, false
		}

		integerDigits, fractionDigits, plain := splitDecimal(trimmed)
		if !plain {
			fixedScale = false
			continue
		}
		if scale == -1 {
			scale = fractionDigits
		} else if scale != fractionDigits {
			fixedScale = false
		}
		if integerDigits > maxIntegerDigits {
			maxIntegerDigits = integerDigits
		}
	}

	if fixedScale && scale >= 1 && scale <= 9 {
		return schema.Decimal, []schema.ColumnOption{
			schema.WithPrecision(maxIntegerDigits+scale, scale),
		}, true
	}
	return schema.Float, nil, true
}

// splitDecimal reports the digit counts of a plain fixed-point
// literal like "19.99". Scientific notation and other float forms
// are not plain.
func splitDecimal(value string) (integerDigits, fractionDigits int, plain bool) {
	value = strings.TrimPrefix(strings.TrimPrefix(value, "+"), "-")
	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return 0, 0, false
	}
	for _, part := range parts {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, 0, false
			}
		}
	}
	return len(parts[0]), len(parts[1]), true
}

func parseTemporal(layout, value string) (time.Time, error) {
	return time.Parse(layout, strings.TrimSpace(value))
}

func (i *Inferencer) inferTemporal(
	nonNull []string,
) (schema.LogicalType, []schema.ColumnOption, bool) {

	bestMatches := 0
	var bestPattern *temporalPattern
	for index := range temporalPatterns {
		pattern := temporalPatterns[index]
		matches := 0
		for _, value := range nonNull {
			if _, err := parseTemporal(pattern.layout, value); err == nil {
				matches++
			}
		}
		if matches > bestMatches {
			bestMatches = matches
			bestPattern = &temporalPatterns[index]
		}
	}

	if bestPattern == nil ||
		float64(bestMatches) < i.temporalMatchRatio*float64(len(nonNull)) {
		return "", nil, false
	}

	options := []schema.ColumnOption{schema.WithDateFormat(bestPattern.layout)}
	if !bestPattern.hasTime {
		return schema.Date, options, true
	}
	if bestPattern.zoned {
		return schema.TimestampTz, options, true
	}
	return schema.Timestamp, options, true
}
