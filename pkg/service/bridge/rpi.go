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

	"github.com/ecc1/gpio"
	"github.com/pkg/errors"
)

const (
	greenLedPin = 23
	redLedPin   = 24
	rpiPinCount = 28
)

// statusLed drives a single status led that can be on, off or blinking.
type statusLed struct {
	name      string
	mutex     sync.Mutex
	pin       OutputPin
	stopBlink chan struct{}
}

// Set turns the led on or off, stopping a running blinker.
func (l *statusLed) Set(on bool) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.stopBlinker()
	if err := l.pin.Write(on); err != nil {
		return errors.Wrapf(err, "Write[%s] failed", l.name)
	}
	return nil
}

// Blink toggles the led with the given delay between toggles,
// replacing a running blinker.
func (l *statusLed) Blink(delay time.Duration) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.stopBlinker()
	stop := make(chan struct{})
	l.stopBlink = stop
	go l.runBlinker(delay, stop)
	return nil
}

// stopBlinker stops the running blinker (if any).
// The caller must hold the lock.
func (l *statusLed) stopBlinker() {
	if stop := l.stopBlink; stop != nil {
		l.stopBlink = nil
		close(stop)
	}
}

func (l *statusLed) runBlinker(delay time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	on := true
	for {
		l.mutex.Lock()
		select {
		case <-stop:
			// A Set call has taken over the led
			l.mutex.Unlock()
			return
		default:
			l.pin.Write(on)
			on = !on
		}
		l.mutex.Unlock()
		select {
		case <-ticker.C:
		case <-stop:
			return
		}
	}
}

type piBridge struct {
	greenLed statusLed
	redLed   statusLed
}

// NewRaspberryPiBridge implements the bridge for Raspberry PI's
func NewRaspberryPiBridge() (API, error) {
	// Status leds are wired active low and start off
	greenLed, err := gpio.Output(greenLedPin, true, false)
	if err != nil {
		return nil, errors.Wrap(err, "Output[greenLed] failed")
	}
	redLed, err := gpio.Output(redLedPin, true, false)
	if err != nil {
		return nil, errors.Wrap(err, "Output[redLed] failed")
	}
	return &piBridge{
		greenLed: statusLed{name: "green", pin: greenLed},
		redLed:   statusLed{name: "red", pin: redLed},
	}, nil
}

// Returns number of local pins
func (p *piBridge) PinCount() int {
	return rpiPinCount
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *piBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	pin, err := gpio.Output(pinNumber, activeLow, initialValue)
	if err != nil {
		return nil, errors.Wrapf(err, "Output[%d] failed", pinNumber)
	}
	return instrumentPin(pinNumber, pin), nil
}

// Turn Green status led on/off
func (p *piBridge) SetGreenLED(on bool) error {
	return p.greenLed.Set(on)
}

// Turn Red status led on/off
func (p *piBridge) SetRedLED(on bool) error {
	return p.redLed.Set(on)
}

// Blink Green status led with given duration between on/off
func (p *piBridge) BlinkGreenLED(delay time.Duration) error {
	return p.greenLed.Blink(delay)
}

// Blink Red status led with given duration between on/off
func (p *piBridge) BlinkRedLED(delay time.Duration) error {
	return p.redLed.Blink(delay)
}

func (p *piBridge) Close() error {
	p.greenLed.Set(false)
	p.redLed.Set(false)
	return nil
}
