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
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticsRemover = transform.Chain(
	norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC,
)

// StandardizeName converts an arbitrary source column name into a
// standardized identifier: diacritics folded, case-folded to lower,
// runs of non-alphanumeric characters collapsed to a single
// underscore, and a leading digit escaped with an underscore. An
// empty result becomes "column".
func StandardizeName(name string) string {
	folded, _, err := transform.String(diacriticsRemover, name)
	if err != nil {
		folded = name
	}

	builder := strings.Builder{}
	lastUnderscore := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore && builder.Len() > 0 {
			builder.WriteRune('_')
			lastUnderscore = true
		}
	}

	standardized := strings.Trim(builder.String(), "_")
	if standardized == "" {
		return "column"
	}
	if standardized[0] >= '0' && standardized[0] <= '9' {
		standardized = "_" + standardized
	}
	return standardized
}
