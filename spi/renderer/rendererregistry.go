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
	"sync"

	"github.com/go-errors/errors"
	spiconfig "github.com/quarrydata/schemamapper/spi/config"
	"github.com/quarrydata/schemamapper/spi/schema"
)

// Provider instantiates the Renderer implementation of one platform
type Provider = func(config *spiconfig.Config) (Renderer, error)

var rendererRegistry = &registry{
	mutex:     sync.Mutex{},
	providers: make(map[spiconfig.PlatformType]Provider),
}

type registry struct {
	mutex     sync.Mutex
	providers map[spiconfig.PlatformType]Provider
}

// RegisterRenderer registers a Provider for the given platform,
// replacing a previously registered one
func RegisterRenderer(
	platform spiconfig.PlatformType, provider Provider,
) {

	rendererRegistry.mutex.Lock()
	defer rendererRegistry.mutex.Unlock()
	rendererRegistry.providers[platform] = provider
}

// NewRenderer instantiates the Renderer of the selected platform for
// the given schema. Construction fails closed: the schema is checked
// against the platform capabilities and a ValidationError carrying
// every violation is returned before any generation can happen.
func NewRenderer(
	platform spiconfig.PlatformType, config *spiconfig.Config,
	canonicalSchema *schema.CanonicalSchema,
) (Renderer, error) {

	rendererRegistry.mutex.Lock()
	defer rendererRegistry.mutex.Unlock()
	if provider, present := rendererRegistry.providers[platform]; present {
		r, err := provider(config)
		if err != nil {
			return nil, err
		}

		violations := canonicalSchema.Validate()
		violations = append(violations, r.Validate(canonicalSchema)...)
		if len(violations) > 0 {
			return nil, NewValidationError(platform, violations)
		}
		return r, nil
	}
	return nil, errors.Errorf("PlatformType '%s' doesn't exist", platform)
}

// AvailablePlatforms returns the platforms a Renderer is registered
// for, in registration-independent stable order
func AvailablePlatforms() []spiconfig.PlatformType {
	rendererRegistry.mutex.Lock()
	defer rendererRegistry.mutex.Unlock()

	platforms := make([]spiconfig.PlatformType, 0, len(rendererRegistry.providers))
	for _, platform := range spiconfig.SupportedPlatforms() {
		if _, present := rendererRegistry.providers[platform]; present {
			platforms = append(platforms, platform)
		}
	}
	return platforms
}
