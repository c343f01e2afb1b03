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

package bridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	hostInitOnce sync.Once
	hostInitErr  error
)

type periphBridge struct {
	greenLed *statusLed
	redLed   *statusLed
}

// NewPeriphBridge implements the bridge for any board supported by
// the periph.io host drivers.
func NewPeriphBridge() (API, error) {
	hostInitOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	if hostInitErr != nil {
		return nil, errors.Wrap(hostInitErr, "host.Init failed")
	}
	b := &periphBridge{}
	// Status leds are optional on generic boards.
	if pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", greenLedPin)); pin != nil {
		b.greenLed = &statusLed{pin: &periphPin{pin: pin, activeLow: true}}
	}
	if pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", redLedPin)); pin != nil {
		b.redLed = &statusLed{pin: &periphPin{pin: pin, activeLow: true}}
	}
	return b, nil
}

// Returns number of local pins
func (p *periphBridge) PinCount() int {
	return len(gpioreg.All())
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *periphBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", pinNumber))
	if pin == nil {
		return nil, errors.Errorf("Pin GPIO%d not found", pinNumber)
	}
	out := &periphPin{pin: pin, activeLow: activeLow}
	if err := out.Write(initialValue); err != nil {
		return nil, errors.Wrapf(err, "Output[%d] failed", pinNumber)
	}
	return instrumentPin(pinNumber, out), nil
}

// Turn Green status led on/off
func (p *periphBridge) SetGreenLED(on bool) error {
	if p.greenLed == nil {
		return nil
	}
	return p.greenLed.Set(on)
}

// Turn Red status led on/off
func (p *periphBridge) SetRedLED(on bool) error {
	if p.redLed == nil {
		return nil
	}
	return p.redLed.Set(on)
}

// Blink Green status led with given duration between on/off
func (p *periphBridge) BlinkGreenLED(delay time.Duration) error {
	if p.greenLed == nil {
		return nil
	}
	return p.greenLed.Blink(delay)
}

// Blink Red status led with given duration between on/off
func (p *periphBridge) BlinkRedLED(delay time.Duration) error {
	if p.redLed == nil {
		return nil
	}
	return p.redLed.Blink(delay)
}

func (p *periphBridge) Close() error {
	p.SetGreenLED(false)
	p.SetRedLED(false)
	return nil
}

// periphPin adapts a periph.io pin to the bridge OutputPin interface.
type periphPin struct {
	pin       gpio.PinOut
	activeLow bool
}

var _ OutputPin = &periphPin{}

func (p *periphPin) Write(value bool) error {
	if p.activeLow {
		value = !value
	}
	if err := p.pin.Out(gpio.Level(value)); err != nil {
		return errors.Wrapf(err, "Out[%s] failed", p.pin.Name())
	}
	return nil
}
