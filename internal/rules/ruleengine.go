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

// Package rules evaluates named schema quality rules against the
// per-column facts of a sample. A rule's condition is an expr
// expression; a condition evaluating to true marks the column as
// violating the rule.
package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/go-errors/errors"
	"github.com/quarrydata/schemamapper/internal/supporting/logging"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/sample"
	"github.com/quarrydata/schemamapper/spi/schema"
)

// Violation reports one rule firing on one column
type Violation struct {
	Rule    string `toml:"rule" yaml:"rule" json:"rule"`
	Column  string `toml:"column" yaml:"column" json:"column"`
	Message string `toml:"message" yaml:"message" json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Rule, v.Column, v.Message)
}

type compiledRule struct {
	name      string
	condition string
	message   string
	prog      *vm.Program
}

type Engine struct {
	rules  []*compiledRule
	logger *logging.Logger
}

// NewEngine compiles the configured rules; an uncompilable condition
// fails construction, naming the rule
func NewEngine(
	ruleConfigs []spiconfig.RuleConfig,
) (*Engine, error) {

	logger, err := logging.NewLogger("RuleEngine")
	if err != nil {
		return nil, err
	}

	rules := make([]*compiledRule, 0, len(ruleConfigs))
	for _, ruleConfig := range ruleConfigs {
		if ruleConfig.Name == "" {
			return nil, errors.Errorf("rule without a name")
		}

		prog, err := expr.Compile(ruleConfig.Condition)
		if err != nil {
			return nil, errors.Errorf(
				"rule '%s': %s", ruleConfig.Name, err.Error(),
			)
		}

		rules = append(rules, &compiledRule{
			name:      ruleConfig.Name,
			condition: ruleConfig.Condition,
			message:   ruleConfig.Message,
			prog:      prog,
		})
	}
	return &Engine{
		rules:  rules,
		logger: logger,
	}, nil
}

// Evaluate runs every rule against every schema column and returns the
// violations in schema column order, rules in registration order
// within a column
func (e *Engine) Evaluate(
	smp sample.Sample, canonicalSchema *schema.CanonicalSchema,
) ([]Violation, error) {

	violations := make([]Violation, 0)
	for _, column := range canonicalSchema.Columns() {
		env, err := columnFacts(smp, column)
		if err != nil {
			return nil, err
		}

		for _, rule := range e.rules {
			fired, err := rule.evaluate(env)
			if err != nil {
				return nil, err
			}
			if fired {
				e.logger.Debugf(
					"rule '%s' fired on column '%s'", rule.name, column.Name(),
				)
				violations = append(violations, Violation{
					Rule:    rule.name,
					Column:  column.Name(),
					Message: rule.message,
				})
			}
		}
	}
	return violations, nil
}

func (r *compiledRule) evaluate(
	env map[string]any,
) (bool, error) {

	// A VM instance isn't safe for concurrent runs; allocating one per
	// evaluation keeps Evaluate safe for concurrent use
	result, err := (&vm.VM{}).Run(r.prog, env)
	if err != nil {
		return false, err
	}

	fired, ok := result.(bool)
	if !ok {
		return false, errors.Errorf(
			"result of rule condition «%s» isn't a boolean", r.condition,
		)
	}
	return fired, nil
}

// columnFacts assembles the expression environment of one column
func columnFacts(
	smp sample.Sample, column schema.ColumnDefinition,
) (map[string]any, error) {

	sampleColumn, present := smp.Column(column.OriginalName())
	if !present {
		return nil, errors.Errorf(
			"sample has no column '%s'", column.OriginalName(),
		)
	}

	rowCount := smp.RowCount()
	nullRatio := 0.0
	distinctRatio := 0.0
	maxLength := 0

	distinct := make(map[string]struct{}, rowCount)
	nonNull := 0
	for _, value := range sampleColumn.Values() {
		if value == nil {
			continue
		}
		nonNull++
		distinct[*value] = struct{}{}
		if length := len(*value); length > maxLength {
			maxLength = length
		}
	}
	if rowCount > 0 {
		nullRatio = float64(rowCount-nonNull) / float64(rowCount)
	}
	if nonNull > 0 {
		distinctRatio = float64(len(distinct)) / float64(nonNull)
	}

	return map[string]any{
		"name":           column.Name(),
		"type":           string(column.Type()),
		"nullable":       column.IsNullable(),
		"null_ratio":     nullRatio,
		"distinct_ratio": distinctRatio,
		"max_length":     maxLength,
		"row_count":      rowCount,
	}, nil
}
