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

// rgb is a fixture with red, green and blue grayscale channels.
// The 8 bit color components of a request are mapped to grayscale
// values through a gamma correction table.
type rgb struct {
	mutex            sync.Mutex
	log              zerolog.Logger
	config           model.Fixture
	channels         [3]rgbChannel
	gamma            [256]uint16
	components       [3]uint8
	sendActualNeeded int32
}

type rgbChannel struct {
	name   string
	device devices.PWM
	output int
}

// newRGB creates a new rgb fixture for the given configuration.
func newRGB(config model.Fixture, log zerolog.Logger, devService devices.Service) (Object, error) {
	if config.Type != model.FixtureTypeRGB {
		return nil, errors.Wrapf(model.ValidationError, "Invalid fixture type '%s'", string(config.Type))
	}
	var channels [3]rgbChannel
	maxValue := 0
	for i, name := range []string{model.ChannelNameRed, model.ChannelNameGreen, model.ChannelNameBlue} {
		ref, err := getSingleChannel(config, name)
		if err != nil {
			return nil, err
		}
		device, err := getPWMForChannel(ref, devService)
		if err != nil {
			return nil, err
		}
		channels[i] = rgbChannel{
			name:   name,
			device: device,
			output: ref.Channel,
		}
		if i == 0 {
			maxValue = device.MaxValue()
		} else {
			maxValue = minInt(maxValue, device.MaxValue())
		}
	}
	gamma := config.GetFloatConfig(model.ConfigKeyGamma, defaultGamma)
	return &rgb{
		log:      log,
		config:   config,
		channels: channels,
		gamma:    buildGammaTable(gamma, maxValue),
	}, nil
}

// Return the type of this object.
func (o *rgb) Type() model.FixtureType {
	return model.FixtureTypeRGB
}

// Configure is called once to put the object in the desired state.
func (o *rgb) Configure(ctx context.Context) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.setColor(ctx, 0, 0, 0)
}

// Run the object until the given context is canceled.
func (o *rgb) Run(ctx context.Context, requests RequestService, statuses StatusService) error {
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
// Channels that are absent from the request are turned off.
func (o *rgb) ProcessMessage(ctx context.Context, r model.FixtureSetRequest) error {
	red := uint8(clampInt(r.Values[model.ChannelNameRed], 0, 255))
	green := uint8(clampInt(r.Values[model.ChannelNameGreen], 0, 255))
	blue := uint8(clampInt(r.Values[model.ChannelNameBlue], 0, 255))
	log := o.log.With().
		Uint8("red", red).
		Uint8("green", green).
		Uint8("blue", blue).
		Logger()
	log.Debug().Msg("got rgb request")
	fixtureRequestsTotal.WithLabelValues(o.config.ID).Inc()

	o.mutex.Lock()
	defer o.mutex.Unlock()
	if err := o.setColor(ctx, red, green, blue); err != nil {
		fixtureRequestErrorsTotal.WithLabelValues(o.config.ID).Inc()
		log.Debug().Err(err).Msg("PWM.set failed")
		return err
	}
	return nil
}

// Actual returns the last applied state of the object.
func (o *rgb) Actual() model.FixtureActual {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return model.FixtureActual{
		ID: o.config.ID,
		Values: map[string]int{
			model.ChannelNameRed:   int(o.components[0]),
			model.ChannelNameGreen: int(o.components[1]),
			model.ChannelNameBlue:  int(o.components[2]),
		},
	}
}

// setColor applies the given color components to the devices.
// The mutex must be held when calling this function.
func (o *rgb) setColor(ctx context.Context, red, green, blue uint8) error {
	components := [3]uint8{red, green, blue}
	for i, ch := range o.channels {
		value := o.gamma[components[i]]
		if err := ch.device.Set(ctx, ch.output, value); err != nil {
			return maskAny(err)
		}
		fixtureActualGauge.WithLabelValues(o.config.ID, ch.name).Set(float64(value))
	}
	o.components = components
	atomic.StoreInt32(&o.sendActualNeeded, 1)
	return nil
}
