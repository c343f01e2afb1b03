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

package gpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBrokenPin = errors.New("broken pin")

// recordingPin records every level written to it and can be scripted
// to fail on the n-th write.
type recordingPin struct {
	writes []Level
	failAt int
}

func (p *recordingPin) write(l Level) error {
	if p.failAt > 0 && len(p.writes)+1 == p.failAt {
		return errBrokenPin
	}
	p.writes = append(p.writes, l)
	return nil
}

func (p *recordingPin) SetLow() error  { return p.write(Low) }
func (p *recordingPin) SetHigh() error { return p.write(High) }

func TestSet(t *testing.T) {
	tests := []struct {
		level  Level
		expect Level
	}{
		{Low, Low},
		{High, High},
	}
	for _, test := range tests {
		pin := &recordingPin{}
		require.NoError(t, Set(pin, test.level))
		assert.Equal(t, []Level{test.expect}, pin.writes)
	}
}

func TestPulse(t *testing.T) {
	pin := &recordingPin{}
	require.NoError(t, Pulse(pin))
	assert.Equal(t, []Level{High, Low}, pin.writes)
}

func TestPulseFailingRisingEdge(t *testing.T) {
	pin := &recordingPin{failAt: 1}
	err := Pulse(pin)
	assert.Equal(t, errBrokenPin, err)
	// The falling edge must not be attempted.
	assert.Len(t, pin.writes, 0)
}

func TestPulseFailingFallingEdge(t *testing.T) {
	pin := &recordingPin{failAt: 2}
	err := Pulse(pin)
	assert.Equal(t, errBrokenPin, err)
	assert.Equal(t, []Level{High}, pin.writes)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "Low", Low.String())
	assert.Equal(t, "High", High.String())
}
