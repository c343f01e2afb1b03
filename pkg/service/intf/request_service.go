package intf

import (
	"context"

	"github.com/lednet/LedWorker/model"
)

// RequestService is implemented by services that accept fixture set
// requests and expose the resulting fixture state.
type RequestService interface {
	// Set the requested fixture state
	SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error
	// GetActuals returns the last applied state of all configured fixtures.
	GetActuals() []model.FixtureActual
	// Get a list of configured fixture IDs
	GetConfiguredObjectIDs() []string
	// Get a list of unconfigured fixture IDs
	GetUnconfiguredObjectIDs() []string
}

// DeviceLister is implemented by services that expose the state of the
// devices of a worker.
type DeviceLister interface {
	// Get a list of configured device IDs
	GetConfiguredDeviceIDs() []string
	// Get a list of unconfigured device IDs
	GetUnconfiguredDeviceIDs() []string
	// GetDeviceActuals returns the current output values of all
	// configured PWM devices.
	GetDeviceActuals() []model.DeviceActual
}

type GetRequestService interface {
	GetRequestService() RequestService
}

type GetDeviceLister interface {
	GetDeviceLister() DeviceLister
}
