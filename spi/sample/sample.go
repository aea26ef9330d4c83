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

package sample

import (
	"github.com/go-errors/errors"
)

// Sample is the boundary to the excluded tabular-file collaborators.
// It exposes a dataset's columns with their raw values; readers of a
// Sample never mutate it.
type Sample interface {
	// ColumnNames returns the column names in source order
	ColumnNames() []string
	// Column returns the named column and true when present
	Column(name string) (Column, bool)
	// RowCount returns the number of rows in the dataset
	RowCount() int
}

// Column is one column of a Sample. A nil value represents a missing
// value; null-marker recognition on non-nil values is left to the
// consumers.
type Column interface {
	Name() string
	// Values returns the raw values in row order
	Values() []*string
	// NullCount returns the number of nil values
	NullCount() int
}

type memorySample struct {
	columnNames []string
	columns     map[string]*memoryColumn
	rowCount    int
}

type memoryColumn struct {
	name      string
	values    []*string
	nullCount int
}

// NewSample creates an in-memory Sample from per-column value
// sequences. All columns must have the same length.
func NewSample(
	columnNames []string, columnValues map[string][]*string,
) (Sample, error) {

	rowCount := -1
	columns := make(map[string]*memoryColumn, len(columnNames))
	for _, name := range columnNames {
		values, present := columnValues[name]
		if !present {
			return nil, errors.Errorf("no values for column '%s'", name)
		}
		if rowCount == -1 {
			rowCount = len(values)
		} else if len(values) != rowCount {
			return nil, errors.Errorf(
				"column '%s' has %d values, expected %d", name, len(values), rowCount,
			)
		}

		nullCount := 0
		for _, value := range values {
			if value == nil {
				nullCount++
			}
		}
		columns[name] = &memoryColumn{
			name:      name,
			values:    values,
			nullCount: nullCount,
		}
	}
	if rowCount == -1 {
		rowCount = 0
	}

	return &memorySample{
		columnNames: columnNames,
		columns:     columns,
		rowCount:    rowCount,
	}, nil
}

// FromRows creates an in-memory Sample from row-oriented string data,
// as read from a delimited file. Empty cells become nil values.
func FromRows(
	columnNames []string, rows [][]string,
) (Sample, error) {

	columnValues := make(map[string][]*string, len(columnNames))
	for index, name := range columnNames {
		values := make([]*string, 0, len(rows))
		for _, row := range rows {
			if index >= len(row) || row[index] == "" {
				values = append(values, nil)
			} else {
				value := row[index]
				values = append(values, &value)
			}
		}
		columnValues[name] = values
	}
	return NewSample(columnNames, columnValues)
}

func (s *memorySample) ColumnNames() []string {
	return s.columnNames
}

func (s *memorySample) Column(name string) (Column, bool) {
	column, present := s.columns[name]
	return column, present
}

func (s *memorySample) RowCount() int {
	return s.rowCount
}

func (c *memoryColumn) Name() string {
	return c.name
}

func (c *memoryColumn) Values() []*string {
	return c.values
}

func (c *memoryColumn) NullCount() int {
	return c.nullCount
}
