package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
	ConditionWind    Condition = "wind"
)

// Coordinate is a single geographic point in WGS84 degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// String renders the coordinate as "lat,lon".
func (c Coordinate) String() string {
	return fmt.Sprintf("%g,%g", c.Latitude, c.Longitude)
}

// CurrentConditions is the "now" slice of a snapshot, shown by the day view.
// Values are stored in SI units; views convert on render.
type CurrentConditions struct {
	Time                 time.Time `json:"time"`
	Summary              string    `json:"summary"`
	Icon                 string    `json:"icon"`
	Condition            Condition `json:"condition"`
	TemperatureC         float64   `json:"temperatureC"`
	ApparentTemperatureC float64   `json:"apparentTemperatureC"`
	WindSpeedMS          float64   `json:"windSpeedMs"`
	WindBearing          int       `json:"windBearing"`
	HumidityPct          float64   `json:"humidityPercent"`
	PrecipProbability    float64   `json:"precipProbability"`
}

// DailyConditions is one entry of the daily series shown by the week view.
type DailyConditions struct {
	Time              time.Time `json:"time"`
	Summary           string    `json:"summary"`
	Icon              string    `json:"icon"`
	Condition         Condition `json:"condition"`
	TemperatureMinC   float64   `json:"temperatureMinC"`
	TemperatureMaxC   float64   `json:"temperatureMaxC"`
	WindSpeedMS       float64   `json:"windSpeedMs"`
	PrecipProbability float64   `json:"precipProbability"`
}

// Snapshot is one complete weather result for one coordinate.
// A new snapshot replaces the previous one in full.
type Snapshot struct {
	Coordinate Coordinate        `json:"coordinate"`
	FetchedAt  time.Time         `json:"fetchedAt"` // always UTC
	Current    CurrentConditions `json:"current"`
	// Daily entries are ordered by Time ascending.
	Daily []DailyConditions `json:"daily"`
}

// Week returns a copy of the daily series so callers cannot alias the
// snapshot's backing array.
func (s Snapshot) Week() []DailyConditions {
	if s.Daily == nil {
		return nil
	}
	out := make([]DailyConditions, len(s.Daily))
	copy(out, s.Daily)
	return out
}
