package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/i474232898/cloudy/internal/weather"
)

func TestOpenMeteoProvider_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "52.000000" || q.Get("longitude") != "4.300000" {
			t.Errorf("unexpected coordinates %q,%q", q.Get("latitude"), q.Get("longitude"))
		}
		if q.Get("timeformat") != "unixtime" {
			t.Errorf("timeformat = %q", q.Get("timeformat"))
		}
		w.Write([]byte(`{
		  "current": {"time": 1700000000, "temperature_2m": 9.5, "apparent_temperature": 7.0,
		              "relative_humidity_2m": 70, "wind_speed_10m": 3.1, "wind_direction_10m": 180, "weather_code": 61},
		  "daily": {"time": [1699920000, 1700006400, 1700092800],
		            "weather_code": [0, 3],
		            "temperature_2m_max": [12, 10, 8],
		            "temperature_2m_min": [4, 3, 2],
		            "wind_speed_10m_max": [5, 6, 7],
		            "precipitation_probability_max": [10, 60, 90]}
		}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL)
	snap, err := p.Fetch(context.Background(), 52.0, 4.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Current.Condition != weather.ConditionRain {
		t.Errorf("current condition = %q, want rain", snap.Current.Condition)
	}
	if snap.Current.TemperatureC != 9.5 {
		t.Errorf("temperature = %v", snap.Current.TemperatureC)
	}
	// weather_code is shorter than time; the series is truncated to it.
	if len(snap.Daily) != 2 {
		t.Fatalf("expected 2 daily entries, got %d", len(snap.Daily))
	}
	if snap.Daily[1].Condition != weather.ConditionCloudy {
		t.Errorf("day 2 condition = %q", snap.Daily[1].Condition)
	}
	if snap.Daily[1].PrecipProbability != 0.6 {
		t.Errorf("day 2 precip = %v, want 0.6", snap.Daily[1].PrecipProbability)
	}
}

func TestMapOpenMeteoCondition(t *testing.T) {
	tests := map[int]weather.Condition{
		0:  weather.ConditionClear,
		2:  weather.ConditionCloudy,
		45: weather.ConditionMist,
		63: weather.ConditionRain,
		81: weather.ConditionRain,
		73: weather.ConditionSnow,
		96: weather.ConditionStorm,
		30: weather.ConditionUnknown,
	}
	for code, want := range tests {
		if got := mapOpenMeteoCondition(code); got != want {
			t.Errorf("mapOpenMeteoCondition(%d) = %q, want %q", code, got, want)
		}
	}
}
