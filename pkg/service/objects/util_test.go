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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/devices"
)

func TestGetSingleChannel(t *testing.T) {
	config := binaryFixtureConfig()
	ref, err := getSingleChannel(config, model.ChannelNameOutput)
	require.NoError(t, err)
	assert.Equal(t, "dev1", ref.DeviceID)
	assert.Equal(t, 3, ref.Channel)

	_, err = getSingleChannel(config, model.ChannelNameRed)
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}

func TestGetPWMForChannel(t *testing.T) {
	devService := newFakeDeviceService(map[string]devices.Device{
		"dev1": newFakePWMDevice(),
		"bare": &fakeBareDevice{},
	})

	pwm, err := getPWMForChannel(model.ChannelRef{DeviceID: "dev1", Channel: 3}, devService)
	require.NoError(t, err)
	assert.Equal(t, 16, pwm.OutputCount())

	tests := map[string]model.ChannelRef{
		"unknown device":   {DeviceID: "nope", Channel: 0},
		"not a pwm":        {DeviceID: "bare", Channel: 0},
		"channel too high": {DeviceID: "dev1", Channel: 16},
		"negative channel": {DeviceID: "dev1", Channel: -1},
	}
	for name, ref := range tests {
		_, err := getPWMForChannel(ref, devService)
		require.Error(t, err, name)
		assert.True(t, model.IsValidationError(err), name)
	}
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 0, clampInt(-5, 0, 4095))
	assert.Equal(t, 0, clampInt(0, 0, 4095))
	assert.Equal(t, 1234, clampInt(1234, 0, 4095))
	assert.Equal(t, 4095, clampInt(4095, 0, 4095))
	assert.Equal(t, 4095, clampInt(9999, 0, 4095))
}
