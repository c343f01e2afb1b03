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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestVirtualBridgeOutput(t *testing.T) {
	b, err := NewVirtualBridge(zerolog.Nop())
	require.NoError(t, err)

	pin, err := b.Output(5, false, true)
	require.NoError(t, err)
	assert.NoError(t, pin.Write(false))
	assert.NoError(t, pin.Write(true))

	// Out of range pins must fail.
	_, err = b.Output(0, false, false)
	assert.Error(t, err)
	_, err = b.Output(b.PinCount()+1, false, false)
	assert.Error(t, err)
}

func TestVirtualBridgeLeds(t *testing.T) {
	b, err := NewVirtualBridge(zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, b.SetGreenLED(true))
	assert.NoError(t, b.SetRedLED(true))
	assert.NoError(t, b.SetGreenLED(false))
	assert.NoError(t, b.Close())
}

func TestPeriphPinActiveLow(t *testing.T) {
	tests := []struct {
		activeLow bool
		write     bool
		expected  gpio.Level
	}{
		{false, true, gpio.High},
		{false, false, gpio.Low},
		{true, true, gpio.Low},
		{true, false, gpio.High},
	}
	for _, test := range tests {
		fake := &gpiotest.Pin{N: "GPIO5", Num: 5}
		pin := &periphPin{pin: fake, activeLow: test.activeLow}
		require.NoError(t, pin.Write(test.write))
		assert.Equal(t, test.expected, fake.L)
	}
}
