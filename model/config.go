package model

import (
	"github.com/pkg/errors"
)

// LocalConfiguration holds the configuration of a single LED worker.
type LocalConfiguration struct {
	// List of LED driver chips attached to the worker
	Devices []Device `json:"devices,omitempty" yaml:"devices,omitempty"`
	// List of lighting fixtures controlled by the worker
	Fixtures []Fixture `json:"fixtures,omitempty" yaml:"fixtures,omitempty"`
}

// DeviceByID returns the device with given ID.
// Return false if not found.
func (c LocalConfiguration) DeviceByID(id string) (Device, bool) {
	for _, d := range c.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// FixtureByID returns the fixture with given ID.
// Return false if not found.
func (c LocalConfiguration) FixtureByID(id string) (Fixture, bool) {
	for _, f := range c.Fixtures {
		if f.ID == id {
			return f, true
		}
	}
	return Fixture{}, false
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c LocalConfiguration) Validate() error {
	for _, d := range c.Devices {
		if err := d.Validate(); err != nil {
			return maskAny(err)
		}
	}
	for _, f := range c.Fixtures {
		if err := f.Validate(); err != nil {
			return maskAny(err)
		}
		for name, ref := range f.Channels {
			if _, found := c.DeviceByID(ref.DeviceID); !found {
				return errors.Wrapf(ValidationError, "Device '%s' not found in channel '%s' in fixture '%s'", ref.DeviceID, name, f.ID)
			}
		}
	}
	return nil
}
