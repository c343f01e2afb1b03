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

// Package tlc5940 drives the TI TLC5940 16 channel constant-current
// LED sink driver over five bit-banged digital output lines.
package tlc5940

import (
	"github.com/lednet/LedWorker/pkg/gpio"
)

const (
	// NumChannels is the number of output channels of a single chip.
	NumChannels = 16
	// MaxValue is the largest grayscale value a channel can hold (12 bits).
	MaxValue = 4095

	bitsPerChannel = 12
	pulsesPerCycle = 4096
)

// Controller holds a grayscale buffer for one TLC5940 and runs the
// serial load and grayscale PWM protocol on its five control lines.
// Mutating the buffer never touches hardware; values reach the chip
// on the next Update.
type Controller struct {
	sin    gpio.Output // serial data
	sclk   gpio.Output // serial clock
	blank  gpio.Output // blanks all outputs while high
	xlat   gpio.Output // latches shifted data into the grayscale registers
	gsclk  gpio.Output // grayscale PWM clock
	values [NumChannels]uint16
}

// New creates a Controller on the given lines and brings the interface
// to a known idle state: sin, sclk, xlat and gsclk are driven low in
// that order, then blank is driven high so all outputs are off.
// The first failing line aborts initialization; later lines, blank
// included, are left untouched.
func New(sin, sclk, blank, xlat, gsclk gpio.Output) (*Controller, error) {
	for _, p := range []gpio.Output{sin, sclk, xlat, gsclk} {
		if err := p.SetLow(); err != nil {
			return nil, err
		}
	}
	if err := blank.SetHigh(); err != nil {
		return nil, err
	}
	return &Controller{
		sin:   sin,
		sclk:  sclk,
		blank: blank,
		xlat:  xlat,
		gsclk: gsclk,
	}, nil
}

// SetChannel stores a grayscale value for the given channel (0...15).
// Only the lower 12 bits are ever shifted out.
// The channel index is not checked; out of range channels panic.
func (c *Controller) SetChannel(channel int, value uint16) {
	c.values[channel] = value
}

// SetAll stores the same grayscale value for all 16 channels.
func (c *Controller) SetAll(value uint16) {
	for i := range c.values {
		c.values[i] = value
	}
}

// Clear sets all channels to zero.
func (c *Controller) Clear() {
	c.SetAll(0)
}

// Channel returns the buffered grayscale value for the given channel (0...15).
func (c *Controller) Channel(channel int) uint16 {
	return c.values[channel]
}

// Update shifts all buffered values into the chip while running one
// full grayscale cycle of 4096 pulses, then latches the new data.
// Channel 15 is shifted first, each channel most significant bit first,
// 192 serial clock pulses in total.
// The first failing line aborts the cycle at once, which can leave the
// chip mid-protocol. The buffer is kept as is and the next Update
// starts over from the beginning.
func (c *Controller) Update() error {
	// Enable the outputs and start the grayscale cycle.
	if err := c.blank.SetLow(); err != nil {
		return err
	}
	// Shift the 12 grayscale bits of every channel, highest channel
	// first, pacing the grayscale clock along with the serial clock.
	pulses := 0
	for channel := NumChannels - 1; channel >= 0; channel-- {
		for bit := bitsPerChannel - 1; bit >= 0; bit-- {
			if err := gpio.Set(c.sin, c.bitLevel(channel, bit)); err != nil {
				return err
			}
			if err := gpio.Pulse(c.sclk); err != nil {
				return err
			}
			if err := gpio.Pulse(c.gsclk); err != nil {
				return err
			}
			pulses++
		}
	}
	// All data has been shifted. Hold the data line low and keep the
	// grayscale clock running until the cycle is complete.
	for ; pulses < pulsesPerCycle; pulses++ {
		if err := c.sin.SetLow(); err != nil {
			return err
		}
		if err := gpio.Pulse(c.gsclk); err != nil {
			return err
		}
	}
	// Blank the outputs and latch the new grayscale data.
	if err := c.blank.SetHigh(); err != nil {
		return err
	}
	return gpio.Pulse(c.xlat)
}

// bitLevel returns the level of the given bit (0...11) of the given channel.
func (c *Controller) bitLevel(channel, bit int) gpio.Level {
	return gpio.Level(c.values[channel]&(1<<bit) != 0)
}
