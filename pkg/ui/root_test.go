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

package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lednet/LedWorker/model"
)

type fakeService struct {
	requests []model.FixtureSetRequest
	actuals  []model.FixtureActual
	devices  []model.DeviceActual
	broken   []string
	reloads  int
}

func (s *fakeService) ModuleID() string { return "tester" }

func (s *fakeService) Uptime() time.Duration { return time.Minute * 3 }

func (s *fakeService) ReloadConfiguration() { s.reloads++ }

func (s *fakeService) SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error {
	s.requests = append(s.requests, msg)
	return nil
}

func (s *fakeService) GetFixtureActuals() []model.FixtureActual { return s.actuals }

func (s *fakeService) GetUnconfiguredFixtureIDs() []string { return s.broken }

func (s *fakeService) GetDeviceActuals() []model.DeviceActual { return s.devices }

func (s *fakeService) GetUnconfiguredDeviceIDs() []string { return nil }

type fakeLogs struct{}

func (fakeLogs) Lines() []string { return []string{"line 1", "line 2"} }

func newTestRoot(svc Service) Root {
	r := Root{
		log:      zerolog.Nop(),
		version:  "1.2.3",
		service:  svc,
		logs:     fakeLogs{},
		moduleID: svc.ModuleID(),
		width:    80,
		height:   24,
	}
	r.apply(takeSnapshot(svc))
	return r
}

func TestLevelBars(t *testing.T) {
	assert.Equal(t, "▁█▄", levelBars([]int{0, 4095, 2048}, 4095))
	// Out of range values are clamped
	assert.Equal(t, "▁█", levelBars([]int{-5, 9999}, 4095))
	// Invalid maximum does not panic
	assert.Equal(t, "█", levelBars([]int{5}, 0))
	assert.Equal(t, "", levelBars(nil, 4095))
}

func TestFormatValues(t *testing.T) {
	assert.Equal(t, "blue=0 green=128 red=255", formatValues(map[string]int{
		"red":   255,
		"blue":  0,
		"green": 128,
	}))
	assert.Equal(t, "", formatValues(nil))
}

func TestRootView(t *testing.T) {
	svc := &fakeService{
		actuals: []model.FixtureActual{
			{ID: "cabin", Values: map[string]int{"value": 2048}},
		},
		devices: []model.DeviceActual{
			{ID: "led1", MaxValue: 4095, Values: make([]int, 16)},
		},
		broken: []string{"spot"},
	}
	r := newTestRoot(svc)

	view := r.View()
	assert.True(t, strings.Contains(view, "tester"))
	assert.True(t, strings.Contains(view, "led1"))
	assert.True(t, strings.Contains(view, "cabin"))
	assert.True(t, strings.Contains(view, "value=2048"))
	assert.True(t, strings.Contains(view, "spot"))
}

func TestRootUpdateKeys(t *testing.T) {
	svc := &fakeService{}
	r := newTestRoot(svc)

	key := func(c rune) tea.KeyMsg {
		return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune{c}})
	}

	// Reload configuration
	m, _ := r.Update(key('r'))
	assert.Equal(t, 1, svc.reloads)

	// Show logs
	m, _ = m.Update(key('l'))
	assert.True(t, strings.Contains(m.View(), "line 2"))

	// Back to the main view
	m, _ = m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyEscape}))
	assert.True(t, strings.Contains(m.View(), "Fixtures"))

	// Disconnect
	_, cmd := m.Update(key('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRootSendAll(t *testing.T) {
	svc := &fakeService{
		actuals: []model.FixtureActual{
			{ID: "cabin", Values: map[string]int{"value": 2048}},
			{ID: "dome", Values: map[string]int{"red": 1, "green": 2, "blue": 3}},
		},
	}
	r := newTestRoot(svc)

	r.sendAll(0)
	require.Len(t, svc.requests, 2)
	assert.Equal(t, "cabin", svc.requests[0].ID)
	assert.Equal(t, map[string]int{"value": 0}, svc.requests[0].Values)
	assert.Equal(t, map[string]int{"red": 0, "green": 0, "blue": 0}, svc.requests[1].Values)

	svc.requests = nil
	r.sendAll(testPatternValue)
	require.Len(t, svc.requests, 2)
	assert.Equal(t, map[string]int{"value": 4095}, svc.requests[0].Values)
}
