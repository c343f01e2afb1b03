package model

import (
	"strconv"

	"github.com/pkg/errors"
)

// Fixture holds the base info for each type of lighting fixture.
type Fixture struct {
	// Unique ID of the fixture
	ID string `json:"id" yaml:"id"`
	// Type of fixture
	Type FixtureType `json:"type" yaml:"type"`
	// Channels used by this fixture.
	// The keys used in this map are specific to the type of fixture.
	Channels map[string]ChannelRef `json:"channels,omitempty" yaml:"channels,omitempty"`
	// Config contains type specific configuration parameters.
	Config map[string]string `json:"config,omitempty" yaml:"config,omitempty"`
}

// FixtureType identifies a type of lighting fixtures.
type FixtureType string

const (
	FixtureTypeBinary FixtureType = "binary"
	FixtureTypeDimmer FixtureType = "dimmer"
	FixtureTypeRGB    FixtureType = "rgb"
)

// FixtureTypeInfo holds builtin information for a type of fixtures.
type FixtureTypeInfo struct {
	Type         FixtureType
	ChannelNames []string
}

const (
	ChannelNameOutput = "output"
	ChannelNameRed    = "red"
	ChannelNameGreen  = "green"
	ChannelNameBlue   = "blue"
)

const (
	// ConfigKeyInitial holds the state a fixture takes right after it
	// has been configured.
	ConfigKeyInitial = "initial"
	// ConfigKeyGamma holds the gamma correction exponent of a fixture.
	ConfigKeyGamma = "gamma"
)

// GetStringConfig returns the configuration value for the given key.
// Returns the given default value when the key is not set.
func (f Fixture) GetStringConfig(key, defaultValue string) string {
	if value, found := f.Config[key]; found {
		return value
	}
	return defaultValue
}

// GetIntConfig returns the configuration value for the given key as int.
// Returns the given default value when the key is not set or not a
// valid number.
func (f Fixture) GetIntConfig(key string, defaultValue int) int {
	if value, found := f.Config[key]; found {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

// GetBoolConfig returns the configuration value for the given key as bool.
// Returns false when the key is not set or not a valid boolean.
func (f Fixture) GetBoolConfig(key string) bool {
	if value, found := f.Config[key]; found {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
	}
	return false
}

// GetFloatConfig returns the configuration value for the given key as
// float. Returns the given default value when the key is not set or
// not a valid number.
func (f Fixture) GetFloatConfig(key string, defaultValue float64) float64 {
	if value, found := f.Config[key]; found {
		if result, err := strconv.ParseFloat(value, 64); err == nil {
			return result
		}
	}
	return defaultValue
}

var (
	fixtureTypeInfos = []FixtureTypeInfo{
		{
			Type:         FixtureTypeBinary,
			ChannelNames: []string{ChannelNameOutput},
		},
		{
			Type:         FixtureTypeDimmer,
			ChannelNames: []string{ChannelNameOutput},
		},
		{
			Type:         FixtureTypeRGB,
			ChannelNames: []string{ChannelNameRed, ChannelNameGreen, ChannelNameBlue},
		},
	}
)

// Validate the given type, returning nil on ok,
// or an error upon validation issues.
func (t FixtureType) Validate() error {
	for _, typeInfo := range fixtureTypeInfos {
		if typeInfo.Type == t {
			return nil
		}
	}
	return errors.Wrapf(ValidationError, "invalid fixture type '%s'", string(t))
}

// TypeInfo returns the builtin information for the given fixture type.
func (t FixtureType) TypeInfo() (FixtureTypeInfo, bool) {
	for _, typeInfo := range fixtureTypeInfos {
		if typeInfo.Type == t {
			return typeInfo, true
		}
	}
	return FixtureTypeInfo{}, false
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (f Fixture) Validate() error {
	if f.ID == "" {
		return errors.Wrap(ValidationError, "ID is empty")
	}
	if err := f.Type.Validate(); err != nil {
		return errors.Wrapf(ValidationError, "Error in Type of '%s': %s", f.ID, err.Error())
	}
	typeInfo, _ := f.Type.TypeInfo()
	for _, name := range typeInfo.ChannelNames {
		ref, found := f.Channels[name]
		if !found {
			return errors.Wrapf(ValidationError, "Channel '%s' of '%s' is missing", name, f.ID)
		}
		if ref.DeviceID == "" {
			return errors.Wrapf(ValidationError, "Channel '%s' of '%s' has no device", name, f.ID)
		}
		if ref.Channel < 0 {
			return errors.Wrapf(ValidationError, "Channel '%s' of '%s' is out of range. Got %d", name, f.ID, ref.Channel)
		}
	}
	return nil
}
