package model

// FixtureSetRequest is the wire message that requests a new state for
// a fixture.
type FixtureSetRequest struct {
	// ID of the target fixture
	ID string `json:"id"`
	// Requested value per channel name.
	// The channel names and value ranges depend on the type of fixture.
	Values map[string]int `json:"values"`
}

// FixtureActual is the wire message that carries the last applied
// state of a fixture.
type FixtureActual struct {
	// ID of the fixture
	ID string `json:"id"`
	// Last applied value per channel name.
	Values map[string]int `json:"values"`
}

// DeviceActual is the wire message that carries the current output
// values of a device.
type DeviceActual struct {
	// ID of the device
	ID string `json:"id"`
	// Maximum valid value for an output
	MaxValue int `json:"max-value"`
	// Current value per output
	Values []int `json:"values"`
}

// WorkerInfo is the wire message that advertises the presence of a
// worker on the network.
type WorkerInfo struct {
	// ID of the worker
	ID string `json:"id"`
	// Version of the worker program
	Version string `json:"version,omitempty"`
	// Uptime of the worker in seconds
	Uptime int64 `json:"uptime"`
	// IDs of devices that were configured successfully
	ConfiguredDeviceIDs []string `json:"configured-devices,omitempty"`
	// IDs of devices that failed to configure
	UnconfiguredDeviceIDs []string `json:"unconfigured-devices,omitempty"`
	// IDs of fixtures that were configured successfully
	ConfiguredFixtureIDs []string `json:"configured-fixtures,omitempty"`
	// IDs of fixtures that failed to configure
	UnconfiguredFixtureIDs []string `json:"unconfigured-fixtures,omitempty"`
}
