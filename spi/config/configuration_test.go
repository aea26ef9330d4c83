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
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Env_Vars(t *testing.T) {
	os.Setenv("FOO_BAR", "foo")
	defer os.Unsetenv("FOO_BAR")

	os.Setenv("FOO_BAR__BAZ", "bar")
	defer os.Unsetenv("FOO_BAR__BAZ")

	// On Windows environment variables are case-insensitive, therefore,
	// this test will always fail if trying to use different casing versions
	if runtime.GOOS != "windows" {
		os.Setenv("foo_bar", "bar")
		defer os.Unsetenv("foo_bar")

		os.Setenv("foo_bar__baz", "foo")
		defer os.Unsetenv("foo_bar__baz")
	}

	v, found := findEnvProperty("foo.bar", "test")
	assert.Equal(t, true, found)
	assert.Equal(t, "foo", v)

	v, found = findEnvProperty("foo.bar_baz", "test")
	assert.Equal(t, true, found)
	assert.Equal(t, "bar", v)

	v, found = findEnvProperty("oof.bar", "test")
	assert.Equal(t, false, found)
	assert.Equal(t, "test", v)
}

func Test_Env_Var_Numeric_Override(t *testing.T) {
	os.Setenv("KEYDETECTION_UNIQUENESSTHRESHOLD", "0.9")
	defer os.Unsetenv("KEYDETECTION_UNIQUENESSTHRESHOLD")

	os.Setenv("KEYDETECTION_MAXCOMPOSITESIZE", "3")
	defer os.Unsetenv("KEYDETECTION_MAXCOMPOSITESIZE")

	os.Setenv("INFERENCE_MAXSTRINGLENGTH", "not-a-number")
	defer os.Unsetenv("INFERENCE_MAXSTRINGLENGTH")

	config := Default()
	assert.Equal(t, 0.9, GetOrDefault(config, PropertyKeyDetectionUniqueness, 0.995))
	assert.Equal(t, 3, GetOrDefault(config, PropertyKeyDetectionCompositeSize, 2))

	// An unparsable value falls back to the configured value
	assert.Equal(t, 65535, GetOrDefault(config, PropertyInferenceMaxStringLength, 0))
}

func Test_GetOrDefault_Reads_Config_Values(t *testing.T) {
	config := Default()

	assert.Equal(t, 65535, GetOrDefault(config, PropertyInferenceMaxStringLength, 0))
	assert.Equal(t, 0.995, GetOrDefault(config, PropertyKeyDetectionUniqueness, 0.0))
	assert.Equal(t, "_staging", GetOrDefault(config, PropertyIncrementalStagingSuffix, ""))
	assert.Equal(t, "9999-12-31", GetOrDefault(config, PropertyScd2ExpirationSentinel, ""))
	assert.Equal(t, "fallback", GetOrDefault(config, "no.such.property", "fallback"))
}

func Test_Unmarshall_Toml_And_Yaml(t *testing.T) {
	tomlContent := []byte(`
[inference]
maxstringlength = 1024

[keydetection]
uniquenessthreshold = 0.9

[incremental.scd2]
expirationsentinel = "2999-12-31"
`)

	config := &Config{}
	err := Unmarshall(tomlContent, config, true)
	assert.NoError(t, err)
	assert.Equal(t, 1024, config.Inference.MaxStringLength)
	assert.Equal(t, 0.9, config.KeyDetection.UniquenessThreshold)
	assert.Equal(t, "2999-12-31", config.Incremental.Scd2.ExpirationSentinel)

	yamlContent := []byte(`
inference:
  maxstringlength: 2048
keydetection:
  maxcompositesize: 3
`)

	config = &Config{}
	err = Unmarshall(yamlContent, config, false)
	assert.NoError(t, err)
	assert.Equal(t, 2048, config.Inference.MaxStringLength)
	assert.Equal(t, 3, config.KeyDetection.MaxCompositeSize)
}

func Test_ParsePlatformType(t *testing.T) {
	platform, err := ParsePlatformType("BigQuery")
	assert.NoError(t, err)
	assert.Equal(t, BigQuery, platform)

	_, err = ParsePlatformType("oracle")
	assert.Error(t, err)
}
