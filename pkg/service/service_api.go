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
	"time"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/intf"
	"github.com/lednet/LedWorker/pkg/service/objects"
)

// ModuleID returns the identifier of this worker.
func (s *service) ModuleID() string {
	return s.moduleID
}

// Uptime returns the time since the service was started.
func (s *service) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

// GetConfiguration returns the last loaded worker configuration.
func (s *service) GetConfiguration() (model.LocalConfiguration, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.currentConfig == nil {
		return model.LocalConfiguration{}, false
	}
	return *s.currentConfig, true
}

// ReloadConfiguration triggers a reload of the worker configuration file.
func (s *service) ReloadConfiguration() {
	reloadConfigurationTotal.Inc()
	select {
	case s.reloadRequests <- struct{}{}:
		// Reload scheduled
	default:
		// Reload already pending
	}
}

// SetFixtureRequest forwards the given request to the current worker.
func (s *service) SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error {
	setFixtureRequestTotal.WithLabelValues(msg.ID).Inc()
	rs := s.getRequestService()
	if rs == nil {
		s.Logger.Warn().Msg("No worker to handle SetFixtureRequest")
		return maskAny(objects.NotReadyError)
	}
	return rs.SetFixtureRequest(ctx, msg)
}

// GetFixtureActuals returns the last applied state of all configured fixtures.
func (s *service) GetFixtureActuals() []model.FixtureActual {
	if rs := s.getRequestService(); rs != nil {
		return rs.GetActuals()
	}
	return nil
}

// Get a list of configured fixture IDs
func (s *service) GetConfiguredFixtureIDs() []string {
	if rs := s.getRequestService(); rs != nil {
		return rs.GetConfiguredObjectIDs()
	}
	return nil
}

// Get a list of unconfigured fixture IDs
func (s *service) GetUnconfiguredFixtureIDs() []string {
	if rs := s.getRequestService(); rs != nil {
		return rs.GetUnconfiguredObjectIDs()
	}
	return nil
}

// Get a list of configured device IDs
func (s *service) GetConfiguredDeviceIDs() []string {
	if dl := s.getDeviceLister(); dl != nil {
		return dl.GetConfiguredDeviceIDs()
	}
	return nil
}

// Get a list of unconfigured device IDs
func (s *service) GetUnconfiguredDeviceIDs() []string {
	if dl := s.getDeviceLister(); dl != nil {
		return dl.GetUnconfiguredDeviceIDs()
	}
	return nil
}

// GetDeviceActuals returns the current output values of all
// configured PWM devices.
func (s *service) GetDeviceActuals() []model.DeviceActual {
	if dl := s.getDeviceLister(); dl != nil {
		return dl.GetDeviceActuals()
	}
	return nil
}

// getRequestService returns the request service of the current worker (if any).
func (s *service) getRequestService() intf.RequestService {
	s.mutex.Lock()
	w := s.currentWorker
	s.mutex.Unlock()
	if w != nil {
		return w.GetRequestService()
	}
	return nil
}

// getDeviceLister returns the device lister of the current worker (if any).
func (s *service) getDeviceLister() intf.DeviceLister {
	s.mutex.Lock()
	w := s.currentWorker
	s.mutex.Unlock()
	if w != nil {
		return w.GetDeviceLister()
	}
	return nil
}
