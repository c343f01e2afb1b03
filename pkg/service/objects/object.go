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

	"github.com/lednet/LedWorker/model"
)

// Object contains the API supported by all types of fixtures.
type Object interface {
	// Return the type of this object.
	Type() model.FixtureType
	// Configure is called once to put the object in the desired state.
	Configure(ctx context.Context) error
	// Run the object until the given context is canceled.
	Run(ctx context.Context, requests RequestService, statuses StatusService) error
	// ProcessMessage acts upon a given set request.
	ProcessMessage(ctx context.Context, r model.FixtureSetRequest) error
	// Actual returns the last applied state of the object.
	Actual() model.FixtureActual
}

// RequestService is used by objects to receive fixture set requests.
type RequestService interface {
	RegisterRequestReceiver(func(model.FixtureSetRequest) error) context.CancelFunc
}

// StatusService is used by objects to report their last applied state.
type StatusService interface {
	PublishFixtureActual(model.FixtureActual)
}
