//    Copyright 2025 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package service

import (
	"github.com/lednet/LedWorker/pkg/metrics"
)

const (
	subSystem = "service"
)

var (
	// Total number of changed configurations received
	configurationChangesTotal = metrics.MustRegisterCounter(subSystem,
		"configuration_changes_total",
		"Total number of changed configurations received")
	// Total number of configuration load failures
	configurationLoadErrorsTotal = metrics.MustRegisterCounter(subSystem,
		"configuration_load_errors_total",
		"Total number of configuration load failures")
	// ID of current worker
	currentWorkerIDGauge = metrics.MustRegisterGauge(subSystem,
		"worker_id",
		"ID of current worker")
	// Total number of workers, ever created
	workerCountTotal = metrics.MustRegisterCounter(subSystem,
		"worker_count_total",
		"Total number of workers created")
	// Total number of SetFixtureRequest calls per fixture ID
	setFixtureRequestTotal = metrics.MustRegisterCounterVec(subSystem,
		"api_set_fixture_request_total",
		"Total number of SetFixtureRequest calls per ID",
		"id")
	// Total number of ReloadConfiguration calls
	reloadConfigurationTotal = metrics.MustRegisterCounter(subSystem,
		"api_reload_configuration_total",
		"Total number of ReloadConfiguration calls")
)
