package model

import "github.com/pkg/errors"

// Device holds configuration data for a single LED driver chip.
// The chip is wired to the local board on a set of GPIO pins.
type Device struct {
	// Unique identifier of the device (instance)
	ID string `json:"id" yaml:"id"`
	// Type of the device
	Type DeviceType `json:"type" yaml:"type"`
	// Pins maps each control line of the chip to a pin on the board.
	Pins map[PinName]Pin `json:"pins" yaml:"pins"`
	// RefreshMillis is the pause between grayscale refresh cycles
	// in milliseconds. Zero means refresh continuously.
	RefreshMillis int `json:"refresh-ms,omitempty" yaml:"refresh-ms,omitempty"`
}

// DeviceType identifies a type of devices (typically chip name)
type DeviceType string

const (
	DeviceTypeTLC5940 DeviceType = "tlc5940"
)

// requiredPinNames lists the control lines a device type must have.
var requiredPinNames = map[DeviceType][]PinName{
	DeviceTypeTLC5940: {
		PinNameSerialData,
		PinNameSerialClock,
		PinNameBlank,
		PinNameLatch,
		PinNameGrayscaleClock,
	},
}

// Validate the given type, returning nil on ok,
// or an error upon validation issues.
func (t DeviceType) Validate() error {
	switch t {
	case DeviceTypeTLC5940:
		return nil
	default:
		return errors.Wrapf(ValidationError, "invalid device type '%s'", string(t))
	}
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (d Device) Validate() error {
	if d.ID == "" {
		return errors.Wrap(ValidationError, "ID is empty")
	}
	if err := d.Type.Validate(); err != nil {
		return errors.Wrapf(ValidationError, "Error in Type of '%s': %s", d.ID, err.Error())
	}
	for _, name := range requiredPinNames[d.Type] {
		pin, found := d.Pins[name]
		if !found {
			return errors.Wrapf(ValidationError, "Pin '%s' of '%s' is missing", name, d.ID)
		}
		if pin.Pin < 1 {
			return errors.Wrapf(ValidationError, "Pin '%s' of '%s' is out of range. Got %d", name, d.ID, pin.Pin)
		}
	}
	if d.RefreshMillis < 0 {
		return errors.Wrapf(ValidationError, "Refresh interval of '%s' must be >= 0", d.ID)
	}
	return nil
}
