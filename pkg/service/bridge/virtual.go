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
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	virtualPinCount = 32
)

type virtualBridge struct {
	mutex    sync.Mutex
	log      zerolog.Logger
	pins     map[int]*virtualPin
	greenLed bool
	redLed   bool
}

// NewVirtualBridge implements the bridge for a worker without hardware
// attached. All pins exist and writes are recorded in memory.
func NewVirtualBridge(log zerolog.Logger) (API, error) {
	return &virtualBridge{
		log:  log.With().Str("component", "virtual-bridge").Logger(),
		pins: make(map[int]*virtualPin),
	}, nil
}

// Returns number of local pins
func (p *virtualBridge) PinCount() int {
	return virtualPinCount
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *virtualBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	if pinNumber < 1 || pinNumber > virtualPinCount {
		return nil, errors.Errorf("Invalid pin %d", pinNumber)
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()

	pin, found := p.pins[pinNumber]
	if !found {
		pin = &virtualPin{}
		p.pins[pinNumber] = pin
		p.log.Debug().Int("pin", pinNumber).Bool("active-low", activeLow).Msg("created virtual output pin")
	}
	pin.activeLow = activeLow
	pin.Write(initialValue)
	return instrumentPin(pinNumber, pin), nil
}

// Turn Green status led on/off
func (p *virtualBridge) SetGreenLED(on bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.greenLed != on {
		p.greenLed = on
		p.log.Debug().Bool("on", on).Msg("green led")
	}
	return nil
}

// Turn Red status led on/off
func (p *virtualBridge) SetRedLED(on bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.redLed != on {
		p.redLed = on
		p.log.Debug().Bool("on", on).Msg("red led")
	}
	return nil
}

// Blink Green status led with given duration between on/off
func (p *virtualBridge) BlinkGreenLED(delay time.Duration) error {
	return p.SetGreenLED(true)
}

// Blink Red status led with given duration between on/off
func (p *virtualBridge) BlinkRedLED(delay time.Duration) error {
	return p.SetRedLED(true)
}

func (p *virtualBridge) Close() error {
	p.SetGreenLED(false)
	p.SetRedLED(false)
	return nil
}

// virtualPin records the writes made to it.
type virtualPin struct {
	mutex     sync.Mutex
	activeLow bool
	value     bool
	writes    uint64
}

func (p *virtualPin) Write(value bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.activeLow {
		value = !value
	}
	p.value = value
	p.writes++
	return nil
}
