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
	"sync"

	"github.com/go-errors/errors"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/schema"
)

// Generator emits the staging DDL and load statements of one platform.
// Implementations are stateless; Generate is a pure function of
// (schema, config).
type Generator interface {
	// PlatformType returns the platform this generator emits SQL for
	PlatformType() spiconfig.PlatformType
	// SupportsPattern reports whether the platform can express the
	// pattern natively; unsupported patterns fail Generate with an
	// UnsupportedCapabilityError, never a silent substitution
	SupportsPattern(pattern LoadPattern) bool
	// Generate validates the config against the schema and emits the
	// pattern's load script
	Generate(
		canonicalSchema *schema.CanonicalSchema, config Config,
	) (*LoadScript, error)
}

// Provider instantiates the Generator implementation of one platform
type Provider = func(config *spiconfig.Config) (Generator, error)

var generatorRegistry = &registry{
	mutex:     sync.Mutex{},
	providers: make(map[spiconfig.PlatformType]Provider),
}

type registry struct {
	mutex     sync.Mutex
	providers map[spiconfig.PlatformType]Provider
}

// RegisterGenerator registers a Provider for the given platform,
// replacing a previously registered one
func RegisterGenerator(
	platform spiconfig.PlatformType, provider Provider,
) {

	generatorRegistry.mutex.Lock()
	defer generatorRegistry.mutex.Unlock()
	generatorRegistry.providers[platform] = provider
}

// NewGenerator instantiates the Generator of the selected platform
func NewGenerator(
	platform spiconfig.PlatformType, config *spiconfig.Config,
) (Generator, error) {

	generatorRegistry.mutex.Lock()
	defer generatorRegistry.mutex.Unlock()
	if provider, present := generatorRegistry.providers[platform]; present {
		return provider(config)
	}
	return nil, errors.Errorf("PlatformType '%s' doesn't exist", platform)
}
