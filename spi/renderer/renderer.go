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
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/schema"
)

// Renderer translates a canonical schema into one platform's concrete
// table-definition syntax. Implementations are stateless; all methods
// are pure functions of the schema.
type Renderer interface {
	// PlatformType returns the platform this renderer emits code for
	PlatformType() spiconfig.PlatformType
	// Capabilities returns the platform's static dialect metadata
	Capabilities() Capabilities
	// Validate checks the schema against the platform capabilities and
	// returns one message per violation, or an empty slice when the
	// schema is renderable
	Validate(canonicalSchema *schema.CanonicalSchema) []string
	// ToPhysicalTypes maps every column to the platform's physical
	// type string. The mapping is total: a logical type the platform
	// cannot represent is an UnsupportedCapabilityError, never a
	// silent degrade
	ToPhysicalTypes(canonicalSchema *schema.CanonicalSchema) (map[string]string, error)
	// ToDDL emits the platform's table-definition statement
	ToDDL(canonicalSchema *schema.CanonicalSchema) (string, error)
	// ToCliCreate emits a ready-to-run shell invocation creating the
	// table through the platform's tooling
	ToCliCreate(canonicalSchema *schema.CanonicalSchema) (string, error)
	// ToCliLoad emits a ready-to-run shell invocation loading the
	// referenced data file into the table
	ToCliLoad(canonicalSchema *schema.CanonicalSchema, dataReference string) (string, error)
	// ToSchemaArtifact emits the platform's structured schema document
	// for bulk-load tooling; platforms without one return an
	// UnsupportedCapabilityError
	ToSchemaArtifact(canonicalSchema *schema.CanonicalSchema) ([]byte, error)
}

// Capabilities is the static dialect capability table entry of a
// single platform
type Capabilities struct {
	Partitioning      bool
	Clustering        bool
	MaxClusterColumns int
	SortKeys          bool
	DistributionKeys  bool
	NativeMerge       bool
	SchemaArtifact    bool
	JsonType          bool
	RequiresProjectId bool
}

var capabilityTable = map[spiconfig.PlatformType]Capabilities{
	spiconfig.BigQuery: {
		Partitioning:      true,
		Clustering:        true,
		MaxClusterColumns: 4,
		NativeMerge:       true,
		SchemaArtifact:    true,
		JsonType:          true,
		RequiresProjectId: true,
	},
	spiconfig.Snowflake: {
		Clustering:  true,
		NativeMerge: true,
		JsonType:    true,
	},
	spiconfig.Redshift: {
		SortKeys:         true,
		DistributionKeys: true,
		JsonType:         true,
	},
	spiconfig.PostgreSQL: {
		Partitioning: true,
		JsonType:     true,
	},
	spiconfig.SQLServer: {
		Clustering:        true,
		MaxClusterColumns: 16,
		NativeMerge:       true,
	},
}

// PlatformCapabilities returns the capability table entry for the
// given platform
func PlatformCapabilities(
	platform spiconfig.PlatformType,
) (Capabilities, bool) {

	capabilities, present := capabilityTable[platform]
	return capabilities, present
}
