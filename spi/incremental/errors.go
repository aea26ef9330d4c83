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
	"fmt"
)

// ConfigurationError reports an invalid or missing Config field for
// the selected load pattern, naming the offending field
type ConfigurationError struct {
	Pattern LoadPattern
	Field   string
	Message string
}

func NewConfigurationError(
	pattern LoadPattern, field, message string,
) *ConfigurationError {

	return &ConfigurationError{
		Pattern: pattern,
		Field:   field,
		Message: message,
	}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf(
		"load pattern '%s': field '%s' %s", e.Pattern, e.Field, e.Message,
	)
}
