// Copyright 2025 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package objects

import (
	"github.com/lednet/LedWorker/pkg/metrics"
)

const (
	subSystem = "objects"
)

var (
	// Number of created fixtures
	objectsCreatedTotal = metrics.MustRegisterGauge(subSystem,
		"created_total",
		"Number of created fixtures")

	// Number of configured fixtures
	objectsConfiguredTotal = metrics.MustRegisterGauge(subSystem,
		"configured_total",
		"Number of configured fixtures")

	// Fixture metrics
	fixtureRequestsTotal = metrics.MustRegisterCounterVec(subSystem,
		"fixture_requests_total",
		"Number of fixture set requests",
		"id")
	fixtureRequestErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"fixture_request_errors_total",
		"Number of fixture set requests that failed",
		"id")
	fixtureActualGauge = metrics.MustRegisterGaugeVec(subSystem,
		"fixture_actual",
		"Grayscale value last written for a channel of a fixture",
		"id", "channel")
)
