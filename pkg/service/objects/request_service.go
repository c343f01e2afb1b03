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

	"github.com/mattn/go-pubsub"
	"github.com/rs/zerolog"

	"github.com/lednet/LedWorker/model"
)

type requestService interface {
	// Set the requested fixture state
	SetFixtureRequest(context.Context, model.FixtureSetRequest) error

	RegisterRequestReceiver(cb func(model.FixtureSetRequest) error) context.CancelFunc
}

// requestServiceImpl fans incoming fixture requests out to the
// receivers registered by the fixtures.
type requestServiceImpl struct {
	log             zerolog.Logger
	fixtureRequests *pubsub.PubSub
}

// newRequestService creates a new RequestService.
func newRequestService(log zerolog.Logger) requestService {
	return &requestServiceImpl{
		log:             log,
		fixtureRequests: pubsub.New(),
	}
}

// Set the requested fixture state
func (s *requestServiceImpl) SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error {
	s.fixtureRequests.Pub(msg)
	return nil
}

func (s *requestServiceImpl) RegisterRequestReceiver(cb func(model.FixtureSetRequest) error) context.CancelFunc {
	wcb := func(x model.FixtureSetRequest) {
		if err := cb(x); err != nil {
			s.log.Warn().Err(err).Msg("Fixture request processing error")
		}
	}
	s.fixtureRequests.Sub(wcb)
	return func() {
		s.fixtureRequests.Leave(wcb)
	}
}
