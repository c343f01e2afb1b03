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
	"path"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/devices"
	"github.com/lednet/LedWorker/pkg/service/mqtt"
	"github.com/lednet/LedWorker/pkg/service/util"
)

// Service contains the API that is exposed by the object service.
type Service interface {
	// ObjectByID returns the fixture with given ID.
	// Return false if not found
	ObjectByID(id string) (Object, bool)
	// Configure is called once to put all objects in the desired state.
	Configure(ctx context.Context) error
	// Run all fixtures until the given context is canceled.
	Run(ctx context.Context) error
	// Set the requested fixture state
	SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error
	// GetActuals returns the last applied state of all configured fixtures.
	GetActuals() []model.FixtureActual
	// Get a list of configured fixture IDs
	GetConfiguredObjectIDs() []string
	// Get a list of unconfigured fixture IDs
	GetUnconfiguredObjectIDs() []string
}

type service struct {
	startTime         time.Time
	moduleID          string
	programVersion    string
	topicPrefix       string
	devService        devices.Service
	mqttService       mqtt.Service
	objects           map[string]Object
	configuredObjects map[string]Object
	log               zerolog.Logger
	requestService    requestService
}

const (
	// Interval between alive messages
	aliveInterval = time.Second * 5
	// How often do we want to log sending alive messages
	aliveLogInterval = time.Minute
)

// NewService instantiates a new Service and Object's for the given
// fixture configurations.
func NewService(moduleID, programVersion string, configs []model.Fixture, devService devices.Service,
	mqttService mqtt.Service, log zerolog.Logger) (Service, error) {
	s := &service{
		startTime:         time.Now(),
		moduleID:          moduleID,
		programVersion:    programVersion,
		topicPrefix:       mqttTopicPrefix(moduleID),
		devService:        devService,
		mqttService:       mqttService,
		objects:           make(map[string]Object),
		configuredObjects: make(map[string]Object),
		log:               log.With().Str("component", "object-service").Logger(),
	}
	for _, c := range configs {
		var obj Object
		var err error
		log := log.With().
			Str("id", c.ID).
			Str("type", string(c.Type)).
			Logger()
		log.Debug().Msg("creating fixture...")
		switch c.Type {
		case model.FixtureTypeBinary:
			obj, err = newBinary(c, log, devService)
		case model.FixtureTypeDimmer:
			obj, err = newDimmer(c, log, devService)
		case model.FixtureTypeRGB:
			obj, err = newRGB(c, log, devService)
		default:
			err = errors.Wrapf(model.ValidationError, "Unsupported fixture type '%s'", string(c.Type))
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to create fixture")
		} else {
			s.objects[c.ID] = obj
		}
	}
	log.Debug().Msgf("created %d fixtures", len(s.objects))
	objectsCreatedTotal.Set(float64(len(s.objects)))
	return s, nil
}

// mqttTopicPrefix returns the root of all MQTT topics of the worker
// with given module id.
func mqttTopicPrefix(moduleID string) string {
	return path.Join("lednet", strings.ToLower(moduleID))
}

// fixtureRequestsTopic returns the topic filter that catches the set
// requests of all fixtures of the worker.
func fixtureRequestsTopic(topicPrefix string) string {
	return path.Join(topicPrefix, "fixture", "+", "request")
}

// fixtureActualTopic returns the topic on which the actual state of
// the fixture with given id is published.
func fixtureActualTopic(topicPrefix, id string) string {
	return path.Join(topicPrefix, "fixture", id, "actual")
}

// workerAliveTopic returns the topic on which the presence of the
// worker is published.
func workerAliveTopic(topicPrefix string) string {
	return path.Join(topicPrefix, "alive")
}

// ObjectByID returns the fixture with given ID.
// Return false if not found or not configured.
func (s *service) ObjectByID(id string) (Object, bool) {
	obj, ok := s.configuredObjects[id]
	return obj, ok
}

// Configure is called once to put all objects in the desired state.
func (s *service) Configure(ctx context.Context) error {
	var ae aerr.AggregateError
	configuredObjects := make(map[string]Object)
	log := s.log
	for id, obj := range s.objects {
		log := log.With().Str("id", id).Logger()
		log.Debug().Msg("configuring fixture...")
		if err := obj.Configure(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to configure fixture")
			ae.Add(err)
		} else {
			configuredObjects[id] = obj
			log.Debug().Msg("configured fixture")
		}
	}
	s.configuredObjects = configuredObjects
	log.Info().Int("count", len(configuredObjects)).Msg("Configured fixtures")
	objectsConfiguredTotal.Set(float64(len(configuredObjects)))
	return ae.AsError()
}

// Run all fixtures until the given context is canceled.
func (s *service) Run(ctx context.Context) error {
	defer func() {
		s.log.Debug().Msg("Run Objects ended")
	}()

	// Do nothing if we do not have configured objects
	if len(s.configuredObjects) == 0 {
		s.log.Warn().Msg("no configured fixtures, just waiting for context to be cancelled")
		<-ctx.Done()
		return nil
	}

	// Create request/status services
	requests := newRequestService(s.log)
	s.requestService = requests
	statuses := newStatusService(s.log, s.topicPrefix, s.mqttService)

	g, ctx := errgroup.WithContext(ctx)
	// Send fixture actuals
	g.Go(func() error { return statuses.Run(ctx) })
	// Receive fixture requests
	g.Go(func() error { return s.receiveFixtureRequests(ctx, requests) })
	// Keep sending alive messages
	g.Go(func() error { s.sendAliveMessages(ctx); return nil })

	// Run all objects
	var runningObjects int32
	for id, obj := range s.configuredObjects {
		id := id // Bring range variables in scope
		obj := obj
		g.Go(func() error {
			atomic.AddInt32(&runningObjects, 1)
			log := s.log.With().
				Str("id", id).
				Str("type", string(obj.Type())).
				Logger()
			defer func() {
				atomic.AddInt32(&runningObjects, -1)
				log.Debug().Msg("Stopped running fixture")
			}()
			log.Debug().Msg("Running fixture")
			return obj.Run(ctx, requests, statuses)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		for {
			objs := atomic.LoadInt32(&runningObjects)
			if objs == 0 {
				s.log.Debug().Msg("No more running fixtures")
				return nil
			}
			s.log.Debug().
				Int32("running_fixtures", objs).
				Msg("Still running fixtures")
			time.Sleep(time.Second * 2)
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Msg("Run Objects failed")
		return err
	}
	return nil
}

// Set the requested fixture state
func (s *service) SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error {
	if rs := s.requestService; rs != nil {
		return rs.SetFixtureRequest(ctx, msg)
	}
	return maskAny(NotReadyError)
}

// GetActuals returns the last applied state of all configured fixtures.
func (s *service) GetActuals() []model.FixtureActual {
	confObjs := s.configuredObjects
	result := make([]model.FixtureActual, 0, len(confObjs))
	for _, obj := range confObjs {
		result = append(result, obj.Actual())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Get a list of configured fixture IDs
func (s *service) GetConfiguredObjectIDs() []string {
	confObjs := s.configuredObjects
	result := make([]string, 0, len(confObjs))
	for k := range confObjs {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Get a list of unconfigured fixture IDs
func (s *service) GetUnconfiguredObjectIDs() []string {
	allObjs := s.objects
	result := make([]string, 0, len(allObjs))
	for id := range allObjs {
		if _, found := s.configuredObjects[id]; !found {
			result = append(result, id)
		}
	}
	sort.Strings(result)
	return result
}

// receiveFixtureRequests subscribes to the fixture request topics and
// forwards incoming messages to the given request service until the
// given context is canceled.
func (s *service) receiveFixtureRequests(ctx context.Context, requests requestService) error {
	log := s.log
	topic := fixtureRequestsTopic(s.topicPrefix)
	once := func() error {
		subscription, err := s.mqttService.Subscribe(ctx, topic, mqtt.QosAtLeastOnce)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("Failed to subscribe to fixture requests")
			return maskAny(err)
		}
		defer subscription.Close()
		for {
			var msg model.FixtureSetRequest
			if err := subscription.NextMsg(ctx, &msg); err != nil {
				if mqtt.IsSubscriptionClosed(err) || errors.Cause(err) == context.Canceled || ctx.Err() != nil {
					return nil
				}
				log.Debug().Err(err).Msg("NextMsg failed")
				return maskAny(err)
			}
			if err := requests.SetFixtureRequest(ctx, msg); err != nil {
				log.Warn().Err(err).Msg("Failed to process fixture request")
			}
		}
	}
	return util.UntilCanceled(ctx, log, "receiveFixtureRequests", once)
}

// sendAliveMessages keeps sending alive messages until the given
// context is canceled.
func (s *service) sendAliveMessages(ctx context.Context) {
	log := s.log
	log.Info().Msg("Sending alive messages")
	defer func() {
		log.Info().Msg("Stopped sending alive messages")
	}()
	topic := workerAliveTopic(s.topicPrefix)
	msg := model.WorkerInfo{
		ID:      s.moduleID,
		Version: s.programVersion,
	}
	lastAliveLog := time.Now()
	for {
		msg.Uptime = int64(time.Since(s.startTime).Seconds())
		msg.ConfiguredDeviceIDs = s.devService.GetConfiguredDeviceIDs()
		msg.UnconfiguredDeviceIDs = s.devService.GetUnconfiguredDeviceIDs()
		msg.ConfiguredFixtureIDs = s.GetConfiguredObjectIDs()
		msg.UnconfiguredFixtureIDs = s.GetUnconfiguredObjectIDs()
		delay := aliveInterval
		if err := s.mqttService.Publish(ctx, msg, topic, mqtt.QosDefault); err != nil && ctx.Err() == nil {
			log.Info().Err(err).Msg("Failed to publish alive message")
			delay = time.Second * 3
		} else if time.Since(lastAliveLog) > aliveLogInterval {
			log.Debug().Msg("Alive sent")
			lastAliveLog = time.Now()
		}

		// Wait
		select {
		case <-time.After(delay):
			// Continue
		case <-ctx.Done():
			// Context canceled
			return
		}
	}
}
