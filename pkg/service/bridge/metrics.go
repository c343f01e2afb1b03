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

package bridge

import (
	"strconv"

	"github.com/lednet/LedWorker/pkg/metrics"
)

const (
	subSystem = "bridge"
)

var (
	// Total number of writes per GPIO output pin
	pinWritesTotal = metrics.MustRegisterCounterVec(subSystem,
		"pin_writes_total",
		"Total number of writes per GPIO output pin",
		"pin")
	// Total number of failed writes per GPIO output pin
	pinWriteErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"pin_write_errors_total",
		"Total number of failed writes per GPIO output pin",
		"pin")
)

// instrumentPin wraps the given pin with write counters.
func instrumentPin(pinNumber int, pin OutputPin) OutputPin {
	return &instrumentedPin{
		pin:   pin,
		label: strconv.Itoa(pinNumber),
	}
}

type instrumentedPin struct {
	pin   OutputPin
	label string
}

func (p *instrumentedPin) Write(value bool) error {
	pinWritesTotal.WithLabelValues(p.label).Inc()
	if err := p.pin.Write(value); err != nil {
		pinWriteErrorsTotal.WithLabelValues(p.label).Inc()
		return err
	}
	return nil
}
