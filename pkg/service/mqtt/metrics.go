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

package mqtt

import (
	"github.com/lednet/LedWorker/pkg/metrics"
)

const (
	subSystem = "mqtt"
)

var (
	// Total number of messages published per topic
	publishedMessagesTotal = metrics.MustRegisterCounterVec(subSystem,
		"published_messages_total",
		"Total number of messages published",
		"topic")
	// Total number of publish failures per topic
	publishErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"publish_errors_total",
		"Total number of failed publishes",
		"topic")
	// Total number of messages received per subscribed topic
	receivedMessagesTotal = metrics.MustRegisterCounterVec(subSystem,
		"received_messages_total",
		"Total number of messages received",
		"topic")
	// Total number of lost broker connections
	connectionLostTotal = metrics.MustRegisterCounter(subSystem,
		"connection_lost_total",
		"Total number of times the broker connection was lost")
)
