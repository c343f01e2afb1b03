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
	"time"

	"github.com/rs/zerolog"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/mqtt"
	"github.com/lednet/LedWorker/pkg/service/util"
)

// statusService pushes fixture actuals out over MQTT.
type statusService struct {
	log            zerolog.Logger
	topicPrefix    string
	mqttService    mqtt.Service
	fixtureActuals chan model.FixtureActual
}

const (
	sendActualTimeout    = time.Second * 5
	publishActualTimeout = time.Second * 10
)

// newStatusService creates a new StatusService.
func newStatusService(log zerolog.Logger, topicPrefix string, mqttService mqtt.Service) *statusService {
	return &statusService{
		log:            log,
		topicPrefix:    topicPrefix,
		mqttService:    mqttService,
		fixtureActuals: make(chan model.FixtureActual, 8),
	}
}

// Run the service until the given context is canceled
func (s *statusService) Run(ctx context.Context) error {
	log := s.log
	once := func() error {
		for {
			select {
			case msg := <-s.fixtureActuals:
				topic := fixtureActualTopic(s.topicPrefix, msg.ID)
				lctx, cancel := context.WithTimeout(ctx, sendActualTimeout)
				err := s.mqttService.Publish(lctx, msg, topic, mqtt.QosDefault)
				cancel()
				if err != nil {
					log.Debug().Err(err).Str("topic", topic).Msg("Send(FixtureActual) failed")
					return err
				}
			case <-ctx.Done():
				return nil
			}
		}
	}
	return util.UntilCanceled(ctx, log, "sendFixtureActuals", once)
}

func (s *statusService) PublishFixtureActual(msg model.FixtureActual) {
	select {
	case s.fixtureActuals <- msg:
		// Done
	case <-time.After(publishActualTimeout):
		// Timeout
		s.log.Warn().
			Str("id", msg.ID).
			Msg("Timeout in publishing fixture actual")
	}
}
