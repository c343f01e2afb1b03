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
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/devices"
)

func TestBinaryConfigure(t *testing.T) {
	ctx := context.Background()
	device := newFakePWMDevice()
	devService := newFakeDeviceService(map[string]devices.Device{"dev1": device})
	obj, err := newBinary(binaryFixtureConfig(), zerolog.Nop(), devService)
	require.NoError(t, err)
	require.NoError(t, obj.Configure(ctx))
	assert.Equal(t, uint16(0), device.value(3))

	// A fixture with initial=true starts on.
	config := binaryFixtureConfig()
	config.Config = map[string]string{model.ConfigKeyInitial: "true"}
	obj, err = newBinary(config, zerolog.Nop(), devService)
	require.NoError(t, err)
	require.NoError(t, obj.Configure(ctx))
	assert.Equal(t, uint16(4095), device.value(3))
}

func TestBinaryProcessMessage(t *testing.T) {
	ctx := context.Background()
	device := newFakePWMDevice()
	devService := newFakeDeviceService(map[string]devices.Device{"dev1": device})
	obj, err := newBinary(binaryFixtureConfig(), zerolog.Nop(), devService)
	require.NoError(t, err)
	require.NoError(t, obj.Configure(ctx))

	require.NoError(t, obj.ProcessMessage(ctx, model.FixtureSetRequest{
		ID:     "b1",
		Values: map[string]int{model.ChannelNameOutput: 1},
	}))
	assert.Equal(t, uint16(4095), device.value(3))
	assert.Equal(t, 4095, obj.Actual().Values[model.ChannelNameOutput])

	require.NoError(t, obj.ProcessMessage(ctx, model.FixtureSetRequest{
		ID:     "b1",
		Values: map[string]int{model.ChannelNameOutput: 0},
	}))
	assert.Equal(t, uint16(0), device.value(3))
	assert.Equal(t, 0, obj.Actual().Values[model.ChannelNameOutput])
}

func TestBinaryRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	device := newFakePWMDevice()
	devService := newFakeDeviceService(map[string]devices.Device{"dev1": device})
	obj, err := newBinary(binaryFixtureConfig(), zerolog.Nop(), devService)
	require.NoError(t, err)
	require.NoError(t, obj.Configure(ctx))

	requests := newRequestService(zerolog.Nop())
	statuses := &fakeStatusService{}
	done := make(chan error, 1)
	go func() {
		done <- obj.Run(ctx, requests, statuses)
	}()

	// The initial state set by Configure is published.
	assert.Eventually(t, func() bool {
		return statuses.count() >= 1
	}, time.Second*10, time.Millisecond*10)

	// A request for this fixture is applied.
	require.NoError(t, requests.SetFixtureRequest(ctx, model.FixtureSetRequest{
		ID:     "b1",
		Values: map[string]int{model.ChannelNameOutput: 1},
	}))
	assert.Eventually(t, func() bool {
		return device.value(3) == 4095
	}, time.Second*10, time.Millisecond*10)

	// A request for another fixture is ignored.
	require.NoError(t, requests.SetFixtureRequest(ctx, model.FixtureSetRequest{
		ID:     "other",
		Values: map[string]int{model.ChannelNameOutput: 0},
	}))
	time.Sleep(time.Millisecond * 100)
	assert.Equal(t, uint16(4095), device.value(3))

	cancel()
	require.NoError(t, <-done)
}
