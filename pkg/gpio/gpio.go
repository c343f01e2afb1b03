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

// Package gpio holds the minimal capability a chip driver needs to
// command digital output lines, independent of how a platform
// implements them.
package gpio

// Level represents the logic level of a digital output line.
type Level bool

const (
	// Low is the logical low level.
	Low Level = false
	// High is the logical high level.
	High Level = true
)

// String returns "Low" or "High".
func (l Level) String() string {
	if l == High {
		return "High"
	}
	return "Low"
}

// Output is the capability needed to drive a single digital output line.
// Implementations decide what an error means; the driver never retries.
type Output interface {
	// SetLow drives the line to its low state.
	SetLow() error
	// SetHigh drives the line to its high state.
	SetHigh() error
}

// Set drives the given output to the given level.
func Set(p Output, level Level) error {
	if level == High {
		return p.SetHigh()
	}
	return p.SetLow()
}

// Pulse drives the given output high and low again.
// If the rising edge fails, the falling edge is not attempted and the
// line can be left high.
func Pulse(p Output) error {
	if err := p.SetHigh(); err != nil {
		return err
	}
	return p.SetLow()
}
