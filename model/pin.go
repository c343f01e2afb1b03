package model

// Pin identifies a GPIO pin on the local board.
type Pin struct {
	// Pin number on the board (1...)
	Pin int `json:"pin" yaml:"pin"`
	// ActiveLow inverts the physical line.
	ActiveLow bool `json:"active-low,omitempty" yaml:"active-low,omitempty"`
}

// PinName identifies a control line of a driver chip.
type PinName string

const (
	// PinNameSerialData is the grayscale serial data input (SIN).
	PinNameSerialData PinName = "sin"
	// PinNameSerialClock is the serial data shift clock (SCLK).
	PinNameSerialClock PinName = "sclk"
	// PinNameBlank blanks all outputs while high (BLANK).
	PinNameBlank PinName = "blank"
	// PinNameLatch latches shifted data into the grayscale registers (XLAT).
	PinNameLatch PinName = "xlat"
	// PinNameGrayscaleClock drives the grayscale PWM counter (GSCLK).
	PinNameGrayscaleClock PinName = "gsclk"
)

// ChannelRef identifies a single output channel of a driver chip.
type ChannelRef struct {
	// Unique identifier of the device that contains the channel.
	DeviceID string `json:"device" yaml:"device"`
	// Channel number on the device (0...)
	Channel int `json:"channel" yaml:"channel"`
}
