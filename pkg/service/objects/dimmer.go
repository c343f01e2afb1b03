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

// dimmer is a fixture with a variable brightness on a single
// grayscale channel.
type dimmer struct {
	mutex            sync.Mutex
	log              zerolog.Logger
	config           model.Fixture
	outputDevice     devices.PWM
	output           int
	maxValue         int
	initialValue     int
	value            int
	sendActualNeeded int32
}

// newDimmer creates a new dimmer fixture for the given configuration.
func newDimmer(config model.Fixture, log zerolog.Logger, devService devices.Service) (Object, error) {
	if config.Type != model.FixtureTypeDimmer {
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
	maxValue := device.MaxValue()
	return &dimmer{
		log:          log,
		config:       config,
		outputDevice: device,
		output:       ref.Channel,
		maxValue:     maxValue,
		initialValue: clampInt(config.GetIntConfig(model.ConfigKeyInitial, 0), 0, maxValue),
	}, nil
}

// Return the type of this object.
func (o *dimmer) Type() model.FixtureType {
	return model.FixtureTypeDimmer
}

// Configure is called once to put the object in the desired state.
func (o *dimmer) Configure(ctx context.Context) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.setValue(ctx, o.initialValue)
}

// Run the object until the given context is canceled.
func (o *dimmer) Run(ctx context.Context, requests RequestService, statuses StatusService) error {
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
func (o *dimmer) ProcessMessage(ctx context.Context, r model.FixtureSetRequest) error {
	value := clampInt(r.Values[model.ChannelNameOutput], 0, o.maxValue)
	log := o.log.With().Int("value", value).Logger()
	log.Debug().Msg("got dimmer request")
	fixtureRequestsTotal.WithLabelValues(o.config.ID).Inc()

	o.mutex.Lock()
	defer o.mutex.Unlock()
	if err := o.setValue(ctx, value); err != nil {
		fixtureRequestErrorsTotal.WithLabelValues(o.config.ID).Inc()
		log.Debug().Err(err).Msg("PWM.set failed")
		return err
	}
	return nil
}

// Actual returns the last applied state of the object.
func (o *dimmer) Actual() model.FixtureActual {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return model.FixtureActual{
		ID: o.config.ID,
		Values: map[string]int{
			model.ChannelNameOutput: o.value,
		},
	}
}

// setValue applies the given brightness to the device.
// The mutex must be held when calling this function.
func (o *dimmer) setValue(ctx context.Context, value int) error {
	if err := o.outputDevice.Set(ctx, o.output, uint16(value)); err != nil {
		return maskAny(err)
	}
	o.value = value
	fixtureActualGauge.WithLabelValues(o.config.ID, model.ChannelNameOutput).Set(float64(value))
	atomic.StoreInt32(&o.sendActualNeeded, 1)
	return nil
}
