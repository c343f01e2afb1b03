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

	"github.com/stretchr/testify/assert"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/devices"
)

// fakePWMDevice implements devices.PWM for tests.
type fakePWMDevice struct {
	mutex   sync.Mutex
	values  map[int]uint16
	failSet bool
}

func newFakePWMDevice() *fakePWMDevice {
	return &fakePWMDevice{values: make(map[int]uint16)}
}

func (d *fakePWMDevice) Configure(ctx context.Context) error { return nil }
func (d *fakePWMDevice) Close(ctx context.Context) error     { return nil }
func (d *fakePWMDevice) OutputCount() int                    { return 16 }
func (d *fakePWMDevice) MaxValue() int                       { return 4095 }

func (d *fakePWMDevice) Set(ctx context.Context, output int, value uint16) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.failSet {
		return assert.AnError
	}
	d.values[output] = value
	return nil
}

func (d *fakePWMDevice) Get(ctx context.Context, output int) (uint16, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.values[output], nil
}

func (d *fakePWMDevice) value(output int) uint16 {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.values[output]
}

// fakeBareDevice implements devices.Device but not devices.PWM.
type fakeBareDevice struct{}

func (fakeBareDevice) Configure(ctx context.Context) error { return nil }
func (fakeBareDevice) Close(ctx context.Context) error     { return nil }

// fakeDeviceService implements devices.Service for tests.
type fakeDeviceService struct {
	devices map[string]devices.Device
}

func newFakeDeviceService(devs map[string]devices.Device) *fakeDeviceService {
	return &fakeDeviceService{devices: devs}
}

func (s *fakeDeviceService) DeviceByID(id string) (devices.Device, bool) {
	d, ok := s.devices[id]
	return d, ok
}

func (s *fakeDeviceService) Configure(ctx context.Context) error { return nil }
func (s *fakeDeviceService) Run(ctx context.Context) error       { <-ctx.Done(); return nil }
func (s *fakeDeviceService) Close(ctx context.Context) error     { return nil }

func (s *fakeDeviceService) GetConfiguredDeviceIDs() []string {
	result := make([]string, 0, len(s.devices))
	for id := range s.devices {
		result = append(result, id)
	}
	return result
}

func (s *fakeDeviceService) GetUnconfiguredDeviceIDs() []string { return nil }

func (s *fakeDeviceService) GetDeviceActuals() []model.DeviceActual { return nil }

// fakeStatusService collects published actuals.
type fakeStatusService struct {
	mutex   sync.Mutex
	actuals []model.FixtureActual
}

func (s *fakeStatusService) PublishFixtureActual(msg model.FixtureActual) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.actuals = append(s.actuals, msg)
}

func (s *fakeStatusService) count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.actuals)
}

func binaryFixtureConfig() model.Fixture {
	return model.Fixture{
		ID:   "b1",
		Type: model.FixtureTypeBinary,
		Channels: map[string]model.ChannelRef{
			model.ChannelNameOutput: {DeviceID: "dev1", Channel: 3},
		},
	}
}

func dimmerFixtureConfig() model.Fixture {
	return model.Fixture{
		ID:   "d1",
		Type: model.FixtureTypeDimmer,
		Channels: map[string]model.ChannelRef{
			model.ChannelNameOutput: {DeviceID: "dev1", Channel: 7},
		},
	}
}

func rgbFixtureConfig() model.Fixture {
	return model.Fixture{
		ID:   "r1",
		Type: model.FixtureTypeRGB,
		Channels: map[string]model.ChannelRef{
			model.ChannelNameRed:   {DeviceID: "dev1", Channel: 0},
			model.ChannelNameGreen: {DeviceID: "dev1", Channel: 1},
			model.ChannelNameBlue:  {DeviceID: "dev1", Channel: 2},
		},
	}
}
