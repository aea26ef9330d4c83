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

package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-errors/errors"
)

// PlatformType identifies one of the supported target platforms
type PlatformType string

const (
	BigQuery   PlatformType = "bigquery"
	Snowflake  PlatformType = "snowflake"
	Redshift   PlatformType = "redshift"
	PostgreSQL PlatformType = "postgresql"
	SQLServer  PlatformType = "sqlserver"
)

// SupportedPlatforms lists all platforms a Renderer and an
// IncrementalGenerator implementation exist for, in a stable order
func SupportedPlatforms() []PlatformType {
	return []PlatformType{BigQuery, Snowflake, Redshift, PostgreSQL, SQLServer}
}

// ParsePlatformType resolves a platform name (case-insensitive) to
// its PlatformType, or returns an error for unknown names
func ParsePlatformType(name string) (PlatformType, error) {
	platform := PlatformType(strings.ToLower(strings.TrimSpace(name)))
	for _, candidate := range SupportedPlatforms() {
		if candidate == platform {
			return platform, nil
		}
	}
	return "", errors.Errorf("PlatformType '%s' doesn't exist", name)
}

type Config struct {
	Inference    InferenceConfig    `toml:"inference" yaml:"inference"`
	KeyDetection KeyDetectionConfig `toml:"keydetection" yaml:"keydetection"`
	Incremental  IncrementalConfig  `toml:"incremental" yaml:"incremental"`
	Rules        []RuleConfig       `toml:"rules" yaml:"rules"`
	Logging      LoggerConfig       `toml:"logging" yaml:"logging"`
}

type InferenceConfig struct {
	// StandardizeNames toggles column name standardization (default true)
	StandardizeNames *bool `toml:"standardizenames" yaml:"standardizenames"`
	// MaxStringLength is the threshold above which a textual column
	// becomes TEXT instead of STRING
	MaxStringLength int `toml:"maxstringlength" yaml:"maxstringlength"`
	// TemporalMatchRatio is the minimal share of non-null values that
	// must match a single date/time pattern
	TemporalMatchRatio float64  `toml:"temporalmatchratio" yaml:"temporalmatchratio"`
	NullMarkers        []string `toml:"nullmarkers" yaml:"nullmarkers"`
}

type KeyDetectionConfig struct {
	UniquenessThreshold float64 `toml:"uniquenessthreshold" yaml:"uniquenessthreshold"`
	MinConfidence       float64 `toml:"minconfidence" yaml:"minconfidence"`
	MaxCompositeSize    int     `toml:"maxcompositesize" yaml:"maxcompositesize"`
}

type IncrementalConfig struct {
	StagingSuffix string     `toml:"stagingsuffix" yaml:"stagingsuffix"`
	Scd2          Scd2Config `toml:"scd2" yaml:"scd2"`
}

type Scd2Config struct {
	// ExpirationSentinel is the far-future expiration date written to
	// current-version rows
	ExpirationSentinel string `toml:"expirationsentinel" yaml:"expirationsentinel"`
}

type RuleConfig struct {
	Name      string `toml:"name" yaml:"name"`
	Condition string `toml:"condition" yaml:"condition"`
	Message   string `toml:"message" yaml:"message"`
}

type LoggerConfig struct {
	Level   string                     `toml:"level" yaml:"level"`
	Outputs LoggerOutputConfig         `toml:"output" yaml:"output"`
	Loggers map[string]SubLoggerConfig `toml:"loggers" yaml:"loggers"`
}

type LoggerOutputConfig struct {
	Console LoggerConsoleConfig `toml:"console" yaml:"console"`
	File    LoggerFileConfig    `toml:"file" yaml:"file"`
}

type SubLoggerConfig struct {
	Level   *string            `toml:"level" yaml:"level"`
	Outputs LoggerOutputConfig `toml:"output" yaml:"output"`
}

type LoggerConsoleConfig struct {
	Enabled *bool `toml:"enabled" yaml:"enabled"`
}

type LoggerFileConfig struct {
	Enabled     *bool          `toml:"enabled" yaml:"enabled"`
	Path        string         `toml:"path" yaml:"path"`
	Rotate      *bool          `toml:"rotate" yaml:"rotate"`
	MaxSize     *string        `toml:"maxsize" yaml:"maxsize"`
	MaxDuration *time.Duration `toml:"maxduration" yaml:"maxduration"`
	Compress    bool           `toml:"compress" yaml:"compress"`
}

// Default returns a Config pre-populated with the documented defaults
// for every tunable the mapper reads
func Default() *Config {
	return &Config{
		Inference: InferenceConfig{
			MaxStringLength:    65535,
			TemporalMatchRatio: 0.5,
			NullMarkers:        []string{"", "null", "none", "na", "n/a", "nan"},
		},
		KeyDetection: KeyDetectionConfig{
			UniquenessThreshold: 0.995,
			MinConfidence:       0.7,
			MaxCompositeSize:    2,
		},
		Incremental: IncrementalConfig{
			StagingSuffix: "_staging",
			Scd2: Scd2Config{
				ExpirationSentinel: "9999-12-31",
			},
		},
		Logging: LoggerConfig{
			Level: "info",
		},
	}
}

func GetOrDefault[V any](
	config *Config, canonicalProperty string, defaultValue V,
) V {

	if env, found := findEnvProperty(canonicalProperty, defaultValue); found {
		return env
	}

	properties := strings.Split(canonicalProperty, ".")

	element := reflect.ValueOf(*config)
	for _, property := range properties {
		if e, ok := findProperty(element, property); ok {
			element = e
		} else {
			return defaultValue
		}
	}

	if !element.IsZero() &&
		!(element.Kind() == reflect.Ptr && element.IsNil()) {

		if element.Kind() == reflect.Ptr {
			element = element.Elem()
		}

		return element.Convert(reflect.TypeOf(defaultValue)).Interface().(V)
	}
	return defaultValue
}

func findEnvProperty[V any](
	canonicalProperty string, defaultValue V,
) (V, bool) {

	t := reflect.TypeOf(defaultValue)

	envVarName := strings.ToUpper(canonicalProperty)
	envVarName = strings.ReplaceAll(envVarName, "_", "__")
	envVarName = strings.ReplaceAll(envVarName, ".", "_")
	if val, ok := os.LookupEnv(envVarName); ok {
		cv, ok := convertEnvValue(val, t)
		if !ok {
			return defaultValue, false
		}
		if !cv.IsZero() &&
			!(cv.Kind() == reflect.Ptr && cv.IsNil()) {
			return cv.Interface().(V), true
		}
	}
	return defaultValue, false
}

// convertEnvValue parses the raw environment value into the property
// type; reflect cannot convert strings to numerics or booleans
func convertEnvValue(
	val string, t reflect.Type,
) (reflect.Value, bool) {

	switch t.Kind() {
	case reflect.Bool:
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(parsed).Convert(t), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(parsed).Convert(t), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(parsed).Convert(t), true
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(parsed).Convert(t), true
	default:
		if !reflect.TypeOf(val).ConvertibleTo(t) {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(val).Convert(t), true
	}
}

func findProperty(
	element reflect.Value, property string,
) (reflect.Value, bool) {

	t := element.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}

		if f.Tag.Get("toml") == property {
			return element.Field(i), true
		}
	}
	return reflect.Value{}, false
}
