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
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/gpio"
	"github.com/lednet/LedWorker/pkg/service/bridge"
	"github.com/lednet/LedWorker/pkg/service/util"
	tlc "github.com/lednet/LedWorker/pkg/tlc5940"
)

type tlc5940 struct {
	lock       util.SpinLock
	log        zerolog.Logger
	onActive   func()
	config     model.Device
	api        bridge.API
	controller *tlc.Controller
}

// newTLC5940 creates a PWM instance for a tlc5940 device with given config.
func newTLC5940(log zerolog.Logger, config model.Device, api bridge.API, onActive func()) (PWM, error) {
	if config.Type != model.DeviceTypeTLC5940 {
		return nil, errors.Wrapf(model.ValidationError, "Invalid device type '%s'", string(config.Type))
	}
	return &tlc5940{
		log:      log.With().Str("device", config.ID).Logger(),
		onActive: onActive,
		config:   config,
		api:      api,
	}, nil
}

// pinOut adapts a bridge output pin to the gpio.Output interface.
type pinOut struct {
	pin bridge.OutputPin
}

var _ gpio.Output = pinOut{}

func (p pinOut) SetLow() error  { return p.pin.Write(false) }
func (p pinOut) SetHigh() error { return p.pin.Write(true) }

// Configure is called once to put the device in the desired state.
func (d *tlc5940) Configure(ctx context.Context) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.onActive()
	sin, err := d.outputPin(model.PinNameSerialData, false)
	if err != nil {
		return err
	}
	sclk, err := d.outputPin(model.PinNameSerialClock, false)
	if err != nil {
		return err
	}
	xlat, err := d.outputPin(model.PinNameLatch, false)
	if err != nil {
		return err
	}
	gsclk, err := d.outputPin(model.PinNameGrayscaleClock, false)
	if err != nil {
		return err
	}
	blank, err := d.outputPin(model.PinNameBlank, true)
	if err != nil {
		return err
	}
	controller, err := tlc.New(pinOut{sin}, pinOut{sclk}, pinOut{blank}, pinOut{xlat}, pinOut{gsclk})
	if err != nil {
		return maskAny(err)
	}
	d.controller = controller
	d.log.Debug().Msg("configured tlc5940")
	return nil
}

// outputPin claims the board pin wired to the control line with given name.
func (d *tlc5940) outputPin(name model.PinName, initialValue bool) (bridge.OutputPin, error) {
	p, found := d.config.Pins[name]
	if !found {
		return nil, errors.Wrapf(model.ValidationError, "Pin '%s' of '%s' is missing", string(name), d.config.ID)
	}
	pin, err := d.api.Output(p.Pin, p.ActiveLow, initialValue)
	if err != nil {
		return nil, maskAny(err)
	}
	return pin, nil
}

// Close brings the device back to a safe state.
// All outputs are turned off and the chip is left blanked.
func (d *tlc5940) Close(ctx context.Context) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.controller == nil {
		return nil
	}
	d.onActive()
	d.controller.Clear()
	if err := d.controller.Update(); err != nil {
		return maskAny(err)
	}
	return nil
}

// OutputCount returns the number of PWM outputs of the device
func (d *tlc5940) OutputCount() int {
	return tlc.NumChannels
}

// MaxValue returns the maximum valid value for an output
func (d *tlc5940) MaxValue() int {
	return tlc.MaxValue
}

// Set the output at given index (0...) to the given value.
// The value is buffered until the next refresh cycle.
func (d *tlc5940) Set(ctx context.Context, output int, value uint16) error {
	if output < 0 || output >= tlc.NumChannels {
		return errors.Wrapf(InvalidOutputError, "output must be in 0..%d range, got %d", tlc.NumChannels-1, output)
	}
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.controller == nil {
		return maskAny(NotConfiguredError)
	}
	d.onActive()
	d.controller.SetChannel(output, value)
	return nil
}

// Get the last value set for the output at given index (0...)
func (d *tlc5940) Get(ctx context.Context, output int) (uint16, error) {
	if output < 0 || output >= tlc.NumChannels {
		return 0, errors.Wrapf(InvalidOutputError, "output must be in 0..%d range, got %d", tlc.NumChannels-1, output)
	}
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.controller == nil {
		return 0, maskAny(NotConfiguredError)
	}
	return d.controller.Channel(output), nil
}

// Run regenerates the grayscale cycle until the given context is canceled.
// The chip only emits light while grayscale clock pulses are being fed
// into it, so the cycle is repeated forever.
func (d *tlc5940) Run(ctx context.Context) error {
	interval := time.Duration(d.config.RefreshMillis) * time.Millisecond
	return util.UntilCanceled(ctx, d.log, "refresh", func() error {
		if err := d.update(); err != nil {
			return maskAny(err)
		}
		if interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
		return nil
	})
}

// update performs a single grayscale cycle.
func (d *tlc5940) update() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.controller == nil {
		// Not configured yet
		return nil
	}
	start := time.Now()
	err := d.controller.Update()
	deviceUpdateDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		deviceUpdateErrorsTotal.WithLabelValues(d.config.ID).Inc()
		return maskAny(err)
	}
	deviceUpdatesTotal.WithLabelValues(d.config.ID).Inc()
	return nil
}
