// Package settings defines the display preferences a user can change from
// the settings sheet.
package settings

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidValue = errors.New("invalid preference value")

var validate = validator.New()

// Kind names one of the three preference groups.
type Kind string

const (
	KindTime        Kind = "time"
	KindUnits       Kind = "units"
	KindTemperature Kind = "temperature"
)

type TimeNotation string

const (
	TimeTwelveHour     TimeNotation = "12h"
	TimeTwentyFourHour TimeNotation = "24h"
)

type UnitsNotation string

const (
	UnitsImperial UnitsNotation = "imperial"
	UnitsMetric   UnitsNotation = "metric"
)

type TemperatureNotation string

const (
	TemperatureFahrenheit TemperatureNotation = "fahrenheit"
	TemperatureCelsius    TemperatureNotation = "celsius"
)

// Preferences is the full set of display choices.
type Preferences struct {
	Time        TimeNotation        `json:"timeNotation" validate:"required,oneof=12h 24h"`
	Units       UnitsNotation       `json:"unitsNotation" validate:"required,oneof=imperial metric"`
	Temperature TemperatureNotation `json:"temperatureNotation" validate:"required,oneof=fahrenheit celsius"`
}

// Defaults returns the preferences of a fresh install.
func Defaults() Preferences {
	return Preferences{
		Time:        TimeTwelveHour,
		Units:       UnitsImperial,
		Temperature: TemperatureFahrenheit,
	}
}

// With returns a copy of p with the given kind set to value. The result is
// checked against the Preferences validation tags.
func (p Preferences) With(kind Kind, value string) (Preferences, error) {
	next := p
	switch kind {
	case KindTime:
		next.Time = TimeNotation(value)
	case KindUnits:
		next.Units = UnitsNotation(value)
	case KindTemperature:
		next.Temperature = TemperatureNotation(value)
	default:
		return p, fmt.Errorf("%w: unknown kind %q", ErrInvalidValue, kind)
	}
	if err := next.Validate(); err != nil {
		return p, fmt.Errorf("%w: %q for %s", ErrInvalidValue, value, kind)
	}
	return next, nil
}

// Validate reports whether every preference holds one of its allowed values.
func (p Preferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

// Value returns the current value of kind as a string.
func (p Preferences) Value(kind Kind) string {
	switch kind {
	case KindTime:
		return string(p.Time)
	case KindUnits:
		return string(p.Units)
	case KindTemperature:
		return string(p.Temperature)
	}
	return ""
}
