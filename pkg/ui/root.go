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
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/ssh"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/lednet/LedWorker/model"
)

// Service contains the part of the worker service that is used by the
// terminal console.
type Service interface {
	// ModuleID returns the identifier of this worker.
	ModuleID() string
	// Uptime returns the time since the service was started.
	Uptime() time.Duration
	// ReloadConfiguration triggers a reload of the worker configuration file.
	ReloadConfiguration()
	// SetFixtureRequest forwards the given request to the current worker.
	SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error
	// GetFixtureActuals returns the last applied state of all configured fixtures.
	GetFixtureActuals() []model.FixtureActual
	// Get a list of unconfigured fixture IDs
	GetUnconfiguredFixtureIDs() []string
	// GetDeviceActuals returns the current output values of all
	// configured PWM devices.
	GetDeviceActuals() []model.DeviceActual
	// Get a list of unconfigured device IDs
	GetUnconfiguredDeviceIDs() []string
}

// LogProvider returns the most recent log lines.
type LogProvider interface {
	Lines() []string
}

// UI creates the terminal console models for incoming SSH sessions.
type UI struct {
	log     zerolog.Logger
	version string
	service Service
	logs    LogProvider
}

// New creates a new UI.
func New(log zerolog.Logger, version string, service Service, logs LogProvider) *UI {
	return &UI{
		log:     log,
		version: version,
		service: service,
		logs:    logs,
	}
}

// Handler builds the model for an incoming ssh.Session. Here we just
// grab the terminal info and pass it to the new model.
func (u *UI) Handler(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := s.Pty()
	r := Root{
		log:      u.log,
		version:  u.version,
		service:  u.service,
		logs:     u.logs,
		moduleID: u.service.ModuleID(),
		term:     pty.Term,
		width:    pty.Window.Width,
		height:   pty.Window.Height,
	}
	r.apply(takeSnapshot(u.service))
	return r, []tea.ProgramOption{tea.WithAltScreen()}
}

type Root struct {
	log      zerolog.Logger
	version  string
	service  Service
	logs     LogProvider
	moduleID string

	term   string
	width  int
	height int

	uptime         time.Duration
	fixtureActuals []model.FixtureActual
	deviceActuals  []model.DeviceActual
	brokenFixtures []string
	brokenDevices  []string

	showLogs struct {
		active   bool
		viewPort viewport.Model
	}
}

var _ tea.Model = Root{}

// Value that turns every type of fixture fully on.
const testPatternValue = 4095

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	infoStyle    = lipgloss.NewStyle().Padding(0, 1).Faint(true)
	sectionStyle = lipgloss.NewStyle().Bold(true)
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	brokenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (r Root) Init() tea.Cmd {
	return doRefresh(r.service)
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (r Root) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case refreshMsg:
		r.apply(msg)
		return r, doRefresh(r.service)
	case tea.WindowSizeMsg:
		r.height = msg.Height
		r.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return r, tea.Quit
		case "l":
			r = r.openLogs()
		case "esc":
			r.showLogs.active = false
		case "r":
			r.service.ReloadConfiguration()
		case "c":
			r.sendAll(0)
		case "t":
			r.sendAll(testPatternValue)
		}
	}

	// Handle keyboard and mouse events in the log viewport
	if r.showLogs.active {
		var cmd tea.Cmd
		r.showLogs.viewPort, cmd = r.showLogs.viewPort.Update(msg)
		cmds = append(cmds, cmd)
	}

	return r, tea.Batch(cmds...)
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (r Root) View() string {
	s := r.headerView()
	if r.showLogs.active {
		return s + r.showLogs.viewPort.View()
	}
	s += r.devicesView()
	s += r.fixturesView()
	s += helpStyle.Render("l - Logs   r - Reload config   c - All off   t - Test pattern   q - Disconnect") + "\n"
	return s
}

func (r Root) headerView() string {
	uptime := strings.TrimSpace(humanize.RelTime(time.Now().Add(-r.uptime), time.Now(), "", ""))
	return lipgloss.JoinHorizontal(lipgloss.Left,
		headerStyle.Render(fmt.Sprintf("LED worker %s", r.moduleID)),
		infoStyle.Render(fmt.Sprintf("version %s, up %s", r.version, uptime)),
	) + "\n\n"
}

func (r Root) devicesView() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Devices") + "\n")
	for _, actual := range r.deviceActuals {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", actual.ID, barStyle.Render(levelBars(actual.Values, actual.MaxValue))))
	}
	for _, id := range r.brokenDevices {
		b.WriteString("  " + brokenStyle.Render(fmt.Sprintf("%-12s not configured", id)) + "\n")
	}
	if len(r.deviceActuals) == 0 && len(r.brokenDevices) == 0 {
		b.WriteString("  none\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (r Root) fixturesView() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Fixtures") + "\n")
	for _, actual := range r.fixtureActuals {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", actual.ID, formatValues(actual.Values)))
	}
	for _, id := range r.brokenFixtures {
		b.WriteString("  " + brokenStyle.Render(fmt.Sprintf("%-12s not configured", id)) + "\n")
	}
	if len(r.fixtureActuals) == 0 && len(r.brokenFixtures) == 0 {
		b.WriteString("  none\n")
	}
	b.WriteString("\n")
	return b.String()
}

// openLogs fills the log viewport with the most recent log lines.
func (r Root) openLogs() Root {
	headerHeight := lipgloss.Height(r.headerView())
	r.showLogs.viewPort = viewport.New(r.width, r.height-headerHeight)
	r.showLogs.viewPort.YPosition = headerHeight
	r.showLogs.viewPort.SetContent(strings.Join(r.logs.Lines(), "\n"))
	r.showLogs.viewPort.GotoBottom()
	r.showLogs.active = true
	return r
}

// sendAll requests the given value on every channel of every
// configured fixture.
func (r Root) sendAll(value int) {
	ctx := context.Background()
	for _, actual := range r.fixtureActuals {
		values := make(map[string]int, len(actual.Values))
		for name := range actual.Values {
			values[name] = value
		}
		msg := model.FixtureSetRequest{ID: actual.ID, Values: values}
		if err := r.service.SetFixtureRequest(ctx, msg); err != nil {
			r.log.Warn().Err(err).Str("fixture", actual.ID).Msg("Set fixture request failed")
		}
	}
}

// apply stores the given snapshot in the model.
func (r *Root) apply(msg refreshMsg) {
	r.uptime = msg.uptime
	r.fixtureActuals = msg.fixtureActuals
	r.deviceActuals = msg.deviceActuals
	r.brokenFixtures = msg.brokenFixtures
	r.brokenDevices = msg.brokenDevices
}

// refreshMsg carries a snapshot of the worker state.
type refreshMsg struct {
	uptime         time.Duration
	fixtureActuals []model.FixtureActual
	deviceActuals  []model.DeviceActual
	brokenFixtures []string
	brokenDevices  []string
}

func takeSnapshot(service Service) refreshMsg {
	return refreshMsg{
		uptime:         service.Uptime(),
		fixtureActuals: service.GetFixtureActuals(),
		deviceActuals:  service.GetDeviceActuals(),
		brokenFixtures: service.GetUnconfiguredFixtureIDs(),
		brokenDevices:  service.GetUnconfiguredDeviceIDs(),
	}
}

func doRefresh(service Service) tea.Cmd {
	return tea.Tick(time.Second*2, func(t time.Time) tea.Msg {
		return takeSnapshot(service)
	})
}

var levelBlocks = []rune("▁▂▃▄▅▆▇█")

// levelBars renders one block character per output value, scaled to
// the given maximum.
func levelBars(values []int, maxValue int) string {
	if maxValue <= 0 {
		maxValue = 1
	}
	var b strings.Builder
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		if v > maxValue {
			v = maxValue
		}
		b.WriteRune(levelBlocks[(v*(len(levelBlocks)-1))/maxValue])
	}
	return b.String()
}

// formatValues renders a channel value map as "name=value" pairs,
// ordered by channel name.
func formatValues(values map[string]int) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, values[name]))
	}
	return strings.Join(parts, " ")
}
