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

package renderer

import (
	"fmt"
	"strings"

	spiconfig "github.com/quarrydata/schemamapper/spi/config"
)

// ValidationError reports the full set of capability violations of a
// schema against one platform. No generation happens after one.
type ValidationError struct {
	Platform   spiconfig.PlatformType
	Violations []string
}

func NewValidationError(
	platform spiconfig.PlatformType, violations []string,
) *ValidationError {

	return &ValidationError{
		Platform:   platform,
		Violations: violations,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf(
		"schema invalid for platform '%s': %s",
		e.Platform, strings.Join(e.Violations, "; "),
	)
}

// UnsupportedCapabilityError reports a requested artifact, physical
// type, or load pattern the target platform doesn't provide
type UnsupportedCapabilityError struct {
	Platform   spiconfig.PlatformType
	Capability string
}

func NewUnsupportedCapabilityError(
	platform spiconfig.PlatformType, capability string,
) *UnsupportedCapabilityError {

	return &UnsupportedCapabilityError{
		Platform:   platform,
		Capability: capability,
	}
}

func (e *UnsupportedCapabilityError) Error() string {
	return fmt.Sprintf(
		"platform '%s' doesn't support %s", e.Platform, e.Capability,
	)
}
