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
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/devices"
)

// binary is an on/off fixture on a single grayscale channel.
type binary struct {
	mutex            sync.Mutex
	log              zerolog.Logger
	config           model.Fixture
	outputDevice     devices.PWM
	output           int
	onValue          uint16
	initialOn        bool
	on               bool
	sendActualNeeded int32
}

// newBinary creates a new binary fixture for the given configuration.
func newBinary(config model.Fixture, log zerolog.Logger, devService devices.Service) (Object, error) {
	if config.Type != model.FixtureTypeBinary {
		return nil, errors.Wrapf(model.ValidationError, "Invalid fixture type '%s'", string(config.Type))
	}
	ref, err := getSingleChannel(config, model.ChannelNameOutput)
	if err != nil {
		return nil, err
	}
	device, err := getPWMForChannel(ref, devService)
	if err != nil {
		return nil, err
	}
	return &binary{
		log:          log,
		config:       config,
		outputDevice: device,
		output:       ref.Channel,
		onValue:      uint16(device.MaxValue()),
		initialOn:    config.GetBoolConfig(model.ConfigKeyInitial),
	}, nil
}

// Return the type of this object.
func (o *binary) Type() model.FixtureType {
	return model.FixtureTypeBinary
}

// Configure is called once to put the object in the desired state.
func (o *binary) Configure(ctx context.Context) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.setOn(ctx, o.initialOn)
}

// Run the object until the given context is canceled.
func (o *binary) Run(ctx context.Context, requests RequestService, statuses StatusService) error {
	cancel := requests.RegisterRequestReceiver(func(msg model.FixtureSetRequest) error {
		if msg.ID != o.config.ID {
			return nil
		}
		return o.ProcessMessage(ctx, msg)
	})
	defer cancel()
	for {
		if atomic.CompareAndSwapInt32(&o.sendActualNeeded, 1, 0) {
			statuses.PublishFixtureActual(o.Actual())
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Millisecond * 10):
			// Continue
		}
	}
}

// ProcessMessage acts upon a given set request.
func (o *binary) ProcessMessage(ctx context.Context, r model.FixtureSetRequest) error {
	on := r.Values[model.ChannelNameOutput] != 0
	log := o.log.With().Bool("on", on).Logger()
	log.Debug().Msg("got binary request")
	fixtureRequestsTotal.WithLabelValues(o.config.ID).Inc()

	o.mutex.Lock()
	defer o.mutex.Unlock()
	if err := o.setOn(ctx, on); err != nil {
		fixtureRequestErrorsTotal.WithLabelValues(o.config.ID).Inc()
		log.Debug().Err(err).Msg("PWM.set failed")
		return err
	}
	return nil
}

// Actual returns the last applied state of the object.
func (o *binary) Actual() model.FixtureActual {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	value := 0
	if o.on {
		value = int(o.onValue)
	}
	return model.FixtureActual{
		ID: o.config.ID,
		Values: map[string]int{
			model.ChannelNameOutput: value,
		},
	}
}

// setOn applies the given state to the device.
// The mutex must be held when calling this function.
func (o *binary) setOn(ctx context.Context, on bool) error {
	value := uint16(0)
	if on {
		value = o.onValue
	}
	if err := o.outputDevice.Set(ctx, o.output, value); err != nil {
		return maskAny(err)
	}
	o.on = on
	fixtureActualGauge.WithLabelValues(o.config.ID, model.ChannelNameOutput).Set(float64(value))
	atomic.StoreInt32(&o.sendActualNeeded, 1)
	return nil
}
