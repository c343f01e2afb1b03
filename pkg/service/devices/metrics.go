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

package devices

import (
	"github.com/lednet/LedWorker/pkg/metrics"
)

const (
	subSystem = "devices"
)

var (
	// devicesCreatedTotal counts the number of devices created from the active configuration.
	devicesCreatedTotal = metrics.MustRegisterGauge(subSystem,
		"created_total",
		"number of devices created from the active configuration")
	// devicesConfiguredTotal counts the number of devices that were configured successfully.
	devicesConfiguredTotal = metrics.MustRegisterGauge(subSystem,
		"configured_total",
		"number of devices that were configured successfully")
	// deviceUpdatesTotal counts the number of completed grayscale cycles per device.
	deviceUpdatesTotal = metrics.MustRegisterCounterVec(subSystem,
		"updates_total",
		"number of completed grayscale cycles",
		"device")
	// deviceUpdateErrorsTotal counts the number of failed grayscale cycles per device.
	deviceUpdateErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"update_errors_total",
		"number of failed grayscale cycles",
		"device")
	// deviceUpdateDuration tracks the duration of grayscale cycles.
	deviceUpdateDuration = metrics.MustRegisterHistogram(subSystem,
		"update_duration_seconds",
		"duration of grayscale cycles",
		[]float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5})
)
