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
	"github.com/pkg/errors"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/devices"
)

// getSingleChannel looks up the channel with given name in the given fixture.
// If not found, an error is returned.
func getSingleChannel(config model.Fixture, channelName string) (model.ChannelRef, error) {
	ref, ok := config.Channels[channelName]
	if !ok {
		return model.ChannelRef{}, errors.Wrapf(model.ValidationError, "Channel '%s' not found in fixture '%s'", channelName, config.ID)
	}
	return ref, nil
}

// getPWMForChannel looks up the device for the given channel.
// If device not found, an error is returned.
// If device is not a PWM, an error is returned.
// If channel is not in output-range of device, an error is returned.
func getPWMForChannel(ref model.ChannelRef, devService devices.Service) (devices.PWM, error) {
	device, ok := devService.DeviceByID(ref.DeviceID)
	if !ok {
		return nil, errors.Wrapf(model.ValidationError, "Device '%s' not found", ref.DeviceID)
	}
	pwm, ok := device.(devices.PWM)
	if !ok {
		return nil, errors.Wrapf(model.ValidationError, "Device '%s' is not a PWM", ref.DeviceID)
	}
	if ref.Channel < 0 || ref.Channel >= pwm.OutputCount() {
		return nil, errors.Wrapf(model.ValidationError, "Channel %d is out of range for device '%s'", ref.Channel, ref.DeviceID)
	}
	return pwm, nil
}

// maxInt returns the maximum of the given integers.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// minInt returns the minimum of the given integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// clampInt limits the given value to the given inclusive range.
func clampInt(value, min, max int) int {
	return maxInt(min, minInt(max, value))
}
