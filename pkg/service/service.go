//    Copyright 2025 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package service

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/bridge"
	"github.com/lednet/LedWorker/pkg/service/mqtt"
	"github.com/lednet/LedWorker/pkg/service/worker"
)

// Service contains the API exposed by the LED worker service.
type Service interface {
	// Run the worker until the given context is cancelled.
	Run(ctx context.Context)
	// ModuleID returns the identifier of this worker.
	ModuleID() string
	// Uptime returns the time since the service was started.
	Uptime() time.Duration
	// GetConfiguration returns the last loaded worker configuration.
	GetConfiguration() (model.LocalConfiguration, bool)
	// ReloadConfiguration triggers a reload of the worker configuration file.
	ReloadConfiguration()
	// SetFixtureRequest forwards the given request to the current worker.
	SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error
	// GetFixtureActuals returns the last applied state of all configured fixtures.
	GetFixtureActuals() []model.FixtureActual
	// Get a list of configured fixture IDs
	GetConfiguredFixtureIDs() []string
	// Get a list of unconfigured fixture IDs
	GetUnconfiguredFixtureIDs() []string
	// Get a list of configured device IDs
	GetConfiguredDeviceIDs() []string
	// Get a list of unconfigured device IDs
	GetUnconfiguredDeviceIDs() []string
	// GetDeviceActuals returns the current output values of all
	// configured PWM devices.
	GetDeviceActuals() []model.DeviceActual
}

type Config struct {
	ProgramVersion string
	// Path of the worker configuration file
	ConfigPath string
	// Module ID override (derived from the host when empty)
	ModuleID string
}

type Dependencies struct {
	Logger      zerolog.Logger
	Bridge      bridge.API
	MQTTService mqtt.Service
}

type service struct {
	Config
	Dependencies

	mutex          sync.Mutex
	moduleID       string
	startedAt      time.Time
	currentConfig  *model.LocalConfiguration
	currentWorker  worker.Service
	reloadRequests chan struct{}
}

var (
	maskAny = errors.WithStack
	// Error returned when config loader stopped unexpected
	errConfigLoaderStopped = errors.New("config loader stopped")
	// Error returned when workers stopped unexpected
	errWorkersStopped = errors.New("workers stopped")
)

// NewService creates a Service instance and returns it.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "service").Logger()
	// Create module ID
	moduleID := conf.ModuleID
	if moduleID == "" {
		var err error
		moduleID, err = createHostID()
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create host ID")
		}
	}
	deps.Logger = deps.Logger.With().Str("module-id", moduleID).Logger()
	return &service{
		Config:         conf,
		Dependencies:   deps,
		moduleID:       moduleID,
		startedAt:      time.Now(),
		reloadRequests: make(chan struct{}, 1),
	}, nil
}

// Run initializes the local worker and then keeps running workers with
// the configuration loaded from the configuration file, restarting the
// worker whenever the configuration changes.
func (s *service) Run(ctx context.Context) {
	log := s.Logger
	defer s.Bridge.Close()

	// Show that we are starting up
	s.Bridge.BlinkGreenLED(time.Millisecond * 250)
	s.Bridge.SetRedLED(false)

	defer func() {
		s.Bridge.SetGreenLED(false)
		s.Bridge.SetRedLED(true)
	}()

	configChanged := make(chan *model.LocalConfiguration)
	defer close(configChanged)
	g, lctx := errgroup.WithContext(ctx)

	// Keep loading the configuration file
	g.Go(func() error {
		s.runLoadConfig(lctx, configChanged)
		if err := lctx.Err(); err != nil {
			return err
		}
		return errConfigLoaderStopped
	})

	// Keep running a worker
	g.Go(func() error {
		s.runWorkers(lctx, configChanged)
		if err := lctx.Err(); err != nil {
			return err
		}
		return errWorkersStopped
	})

	// Watch for reload requests over MQTT
	g.Go(func() error { return s.runWatchReloadTopic(lctx) })

	// Watch for reboot requests over MQTT
	g.Go(func() error { return s.runWatchRebootTopic(lctx) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Service run failed")
	}
}

// setWorker records the worker that is currently running.
func (s *service) setWorker(w worker.Service) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.currentWorker = w
}

// setConfiguration records the last loaded configuration.
func (s *service) setConfiguration(conf model.LocalConfiguration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.currentConfig = &conf
}

// configReloadTopic returns the topic on which configuration reloads
// can be requested.
func (s *service) configReloadTopic() string {
	return path.Join("lednet", strings.ToLower(s.moduleID), "config", "reload")
}

// create a host ID based on the machine ID or network hardware addresses.
func createHostID() (string, error) {
	if content, err := os.ReadFile("/etc/machine-id"); err == nil {
		content = []byte(strings.TrimSpace(string(content)))
		id := fmt.Sprintf("%x", sha1.Sum(content))
		return id[:10], nil
	}

	ifs, err := net.Interfaces()
	if err != nil {
		return "", maskAny(err)
	}
	list := make([]string, 0, len(ifs))
	for _, v := range ifs {
		f := v.Flags
		if f&net.FlagUp != 0 && f&net.FlagLoopback == 0 {
			h := v.HardwareAddr.String()
			if len(h) > 0 {
				list = append(list, h)
			}
		}
	}
	sort.Strings(list) // sort host IDs
	list = append(list, runtime.GOOS, runtime.GOARCH)
	data := []byte(strings.Join(list, ","))
	id := fmt.Sprintf("%x", sha1.Sum(data))
	return id[:10], nil
}
