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

package tlc5940

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lednet/LedWorker/pkg/gpio"
)

var errBrokenPin = errors.New("broken pin")

// pinWrite is a single recorded transition on a named line.
type pinWrite struct {
	name  string
	level gpio.Level
}

// testPin records writes into a log shared by all lines of a chip, so
// tests can verify ordering across lines. It can be scripted to fail
// on the n-th write to this line.
type testPin struct {
	log    *[]pinWrite
	name   string
	writes int
	failAt int
}

func (p *testPin) write(l gpio.Level) error {
	p.writes++
	if p.failAt > 0 && p.writes == p.failAt {
		return errBrokenPin
	}
	*p.log = append(*p.log, pinWrite{p.name, l})
	return nil
}

func (p *testPin) SetLow() error  { return p.write(gpio.Low) }
func (p *testPin) SetHigh() error { return p.write(gpio.High) }

// testChip bundles the five lines of a single chip.
type testChip struct {
	log   []pinWrite
	sin   *testPin
	sclk  *testPin
	blank *testPin
	xlat  *testPin
	gsclk *testPin
}

func newTestChip() *testChip {
	c := &testChip{}
	pin := func(name string) *testPin {
		return &testPin{log: &c.log, name: name}
	}
	c.sin = pin("sin")
	c.sclk = pin("sclk")
	c.blank = pin("blank")
	c.xlat = pin("xlat")
	c.gsclk = pin("gsclk")
	return c
}

func (c *testChip) controller(t *testing.T) *Controller {
	ctrl, err := New(c.sin, c.sclk, c.blank, c.xlat, c.gsclk)
	require.NoError(t, err)
	c.log = nil
	return ctrl
}

// count returns the number of recorded writes of the given level on
// the named line.
func (c *testChip) count(name string, level gpio.Level) int {
	result := 0
	for _, w := range c.log {
		if w.name == name && w.level == level {
			result++
		}
	}
	return result
}

// shiftedBits replays the log and returns the level of sin at every
// rising edge of sclk.
func (c *testChip) shiftedBits() []gpio.Level {
	var bits []gpio.Level
	sin := gpio.Low
	for _, w := range c.log {
		if w.name == "sin" {
			sin = w.level
		}
		if w.name == "sclk" && w.level == gpio.High {
			bits = append(bits, sin)
		}
	}
	return bits
}

// expectedBits returns the wire order of the given channel values:
// channel 15 first, 12 bits each, most significant bit first.
func expectedBits(values [NumChannels]uint16) []gpio.Level {
	var bits []gpio.Level
	for channel := NumChannels - 1; channel >= 0; channel-- {
		for bit := 11; bit >= 0; bit-- {
			bits = append(bits, gpio.Level(values[channel]&(1<<bit) != 0))
		}
	}
	return bits
}

func TestNewInitializesLines(t *testing.T) {
	chip := newTestChip()
	_, err := New(chip.sin, chip.sclk, chip.blank, chip.xlat, chip.gsclk)
	require.NoError(t, err)
	expected := []pinWrite{
		{"sin", gpio.Low},
		{"sclk", gpio.Low},
		{"xlat", gpio.Low},
		{"gsclk", gpio.Low},
		{"blank", gpio.High},
	}
	assert.Equal(t, expected, chip.log)
}

func TestNewFailsFast(t *testing.T) {
	tests := []struct {
		name           string
		fail           func(*testChip)
		expectedLog    []pinWrite
		blankUntouched bool
	}{
		{
			name:           "sin fails",
			fail:           func(c *testChip) { c.sin.failAt = 1 },
			expectedLog:    nil,
			blankUntouched: true,
		},
		{
			name:           "sclk fails",
			fail:           func(c *testChip) { c.sclk.failAt = 1 },
			expectedLog:    []pinWrite{{"sin", gpio.Low}},
			blankUntouched: true,
		},
		{
			name: "xlat fails",
			fail: func(c *testChip) { c.xlat.failAt = 1 },
			expectedLog: []pinWrite{
				{"sin", gpio.Low},
				{"sclk", gpio.Low},
			},
			blankUntouched: true,
		},
		{
			name: "gsclk fails",
			fail: func(c *testChip) { c.gsclk.failAt = 1 },
			expectedLog: []pinWrite{
				{"sin", gpio.Low},
				{"sclk", gpio.Low},
				{"xlat", gpio.Low},
			},
			blankUntouched: true,
		},
		{
			name: "blank fails",
			fail: func(c *testChip) { c.blank.failAt = 1 },
			expectedLog: []pinWrite{
				{"sin", gpio.Low},
				{"sclk", gpio.Low},
				{"xlat", gpio.Low},
				{"gsclk", gpio.Low},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			chip := newTestChip()
			test.fail(chip)
			ctrl, err := New(chip.sin, chip.sclk, chip.blank, chip.xlat, chip.gsclk)
			assert.Equal(t, errBrokenPin, err)
			assert.Nil(t, ctrl)
			assert.Equal(t, test.expectedLog, chip.log)
			if test.blankUntouched {
				assert.Equal(t, 0, chip.blank.writes)
			}
		})
	}
}

func TestSetChannelBuffersOnly(t *testing.T) {
	chip := newTestChip()
	ctrl := chip.controller(t)
	ctrl.SetChannel(3, 123)
	ctrl.SetAll(42)
	ctrl.Clear()
	// Nothing may reach the lines until Update.
	assert.Empty(t, chip.log)
}

func TestSetChannelOutOfRangePanics(t *testing.T) {
	chip := newTestChip()
	ctrl := chip.controller(t)
	assert.Panics(t, func() { ctrl.SetChannel(NumChannels, 1) })
	assert.Panics(t, func() { ctrl.SetChannel(-1, 1) })
}

func TestSetAllAndClear(t *testing.T) {
	chip := newTestChip()
	ctrl := chip.controller(t)
	ctrl.SetAll(MaxValue)
	for i := 0; i < NumChannels; i++ {
		assert.Equal(t, uint16(MaxValue), ctrl.Channel(i))
	}
	ctrl.Clear()
	for i := 0; i < NumChannels; i++ {
		assert.Equal(t, uint16(0), ctrl.Channel(i))
	}
}

func TestUpdatePulseCounts(t *testing.T) {
	chip := newTestChip()
	ctrl := chip.controller(t)
	ctrl.SetAll(0x555)
	require.NoError(t, ctrl.Update())

	// One full grayscale cycle and one latch pulse.
	assert.Equal(t, 4096, chip.count("gsclk", gpio.High))
	assert.Equal(t, 4096, chip.count("gsclk", gpio.Low))
	// 16 channels of 12 bits on the serial clock.
	assert.Equal(t, 192, chip.count("sclk", gpio.High))
	assert.Equal(t, 192, chip.count("sclk", gpio.Low))
	assert.Equal(t, 1, chip.count("xlat", gpio.High))
	assert.Equal(t, 1, chip.count("xlat", gpio.Low))
	// Blank goes low once at the start and high once at the end.
	assert.Equal(t, 1, chip.count("blank", gpio.Low))
	assert.Equal(t, 1, chip.count("blank", gpio.High))

	// Ordering: blank low first, blank high and the latch pulse last.
	require.NotEmpty(t, chip.log)
	assert.Equal(t, pinWrite{"blank", gpio.Low}, chip.log[0])
	n := len(chip.log)
	assert.Equal(t, pinWrite{"blank", gpio.High}, chip.log[n-3])
	assert.Equal(t, pinWrite{"xlat", gpio.High}, chip.log[n-2])
	assert.Equal(t, pinWrite{"xlat", gpio.Low}, chip.log[n-1])
}

func TestUpdateShiftsChannelsHighToLowMSBFirst(t *testing.T) {
	chip := newTestChip()
	ctrl := chip.controller(t)
	var values [NumChannels]uint16
	values[15] = 0x800
	values[7] = 0xABC
	values[3] = MaxValue
	values[0] = 0x001
	for i, v := range values {
		ctrl.SetChannel(i, v)
	}
	require.NoError(t, ctrl.Update())

	bits := chip.shiftedBits()
	require.Len(t, bits, 192)
	assert.Equal(t, expectedBits(values), bits)
}

func TestUpdateMasksValuesTo12Bits(t *testing.T) {
	chip := newTestChip()
	ctrl := chip.controller(t)
	// Bits above bit 11 are stored but never shifted.
	ctrl.SetChannel(0, 0xF123)
	assert.Equal(t, uint16(0xF123), ctrl.Channel(0))
	require.NoError(t, ctrl.Update())

	var expected [NumChannels]uint16
	expected[0] = 0x123
	assert.Equal(t, expectedBits(expected), chip.shiftedBits())
}

func TestUpdateFailsFastWithoutLatch(t *testing.T) {
	chip := newTestChip()
	ctrl := chip.controller(t)
	ctrl.SetChannel(5, 1000)
	// Fail somewhere in the middle of the grayscale cycle.
	chip.gsclk.failAt = 1500
	err := ctrl.Update()
	assert.Equal(t, errBrokenPin, err)

	// No latch, no final blank.
	assert.Equal(t, 0, chip.xlat.writes)
	assert.Equal(t, 1, chip.count("blank", gpio.Low))
	assert.Equal(t, 0, chip.count("blank", gpio.High))
	// The buffer is unchanged.
	assert.Equal(t, uint16(1000), ctrl.Channel(5))

	// A later update runs the full cycle again.
	chip.gsclk.failAt = 0
	chip.log = nil
	require.NoError(t, ctrl.Update())
	assert.Equal(t, 4096, chip.count("gsclk", gpio.High))
	assert.Equal(t, 192, chip.count("sclk", gpio.High))
	assert.Equal(t, 1, chip.count("xlat", gpio.High))
}

func TestUpdateHoldsDataLowAfterShift(t *testing.T) {
	chip := newTestChip()
	ctrl := chip.controller(t)
	ctrl.SetAll(MaxValue)
	require.NoError(t, ctrl.Update())

	// After the last serial clock pulse the data line is driven low
	// and stays low for the rest of the cycle.
	lastSclk := -1
	for i, w := range chip.log {
		if w.name == "sclk" {
			lastSclk = i
		}
	}
	require.True(t, lastSclk >= 0)
	sawSinLow := false
	for _, w := range chip.log[lastSclk+1:] {
		if w.name == "sin" {
			sawSinLow = true
			assert.Equal(t, gpio.Low, w.level)
		}
	}
	assert.True(t, sawSinLow)
}
