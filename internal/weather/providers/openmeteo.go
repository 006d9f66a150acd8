package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/cloudy/internal/weather"
)

const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoProvider implements weather.Client for Open-Meteo. It needs no API key.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoPayload struct {
	Current struct {
		Time                int64   `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Humidity            float64 `json:"relative_humidity_2m"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindDirection       int     `json:"wind_direction_10m"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time              []int64   `json:"time"`
		WeatherCode       []int     `json:"weather_code"`
		TemperatureMax    []float64 `json:"temperature_2m_max"`
		TemperatureMin    []float64 `json:"temperature_2m_min"`
		WindSpeedMax      []float64 `json:"wind_speed_10m_max"`
		PrecipProbability []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, latitude, longitude float64) (weather.Snapshot, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", latitude))
	values.Set("longitude", fmt.Sprintf("%f", longitude))
	values.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,wind_direction_10m,weather_code")
	values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,wind_speed_10m_max,precipitation_probability_max")
	values.Set("wind_speed_unit", "ms")
	values.Set("timeformat", "unixtime")
	values.Set("timezone", "auto")

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return weather.Snapshot{}, err
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("openmeteo request: %w", err)
	}
	defer resp.Body.Close()

	var payload openMeteoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("decode openmeteo response: %w", err)
	}

	c := payload.Current
	cond := mapOpenMeteoCondition(c.WeatherCode)
	snap := weather.Snapshot{
		Coordinate: weather.Coordinate{Latitude: latitude, Longitude: longitude},
		FetchedAt:  time.Now().UTC(),
		Current: weather.CurrentConditions{
			Time:                 unixTime(c.Time),
			Summary:              describeCondition(cond),
			Icon:                 string(cond),
			Condition:            cond,
			TemperatureC:         c.Temperature,
			ApparentTemperatureC: c.ApparentTemperature,
			WindSpeedMS:          c.WindSpeed,
			WindBearing:          c.WindDirection,
			HumidityPct:          c.Humidity,
		},
	}

	// Daily values arrive as parallel arrays; a short array ends the series.
	d := payload.Daily
	n := len(d.Time)
	for _, l := range []int{len(d.WeatherCode), len(d.TemperatureMax), len(d.TemperatureMin)} {
		if l < n {
			n = l
		}
	}
	snap.Daily = make([]weather.DailyConditions, 0, n)
	for i := 0; i < n; i++ {
		dc := mapOpenMeteoCondition(d.WeatherCode[i])
		day := weather.DailyConditions{
			Time:            unixTime(d.Time[i]),
			Summary:         describeCondition(dc),
			Icon:            string(dc),
			Condition:       dc,
			TemperatureMinC: d.TemperatureMin[i],
			TemperatureMaxC: d.TemperatureMax[i],
		}
		if i < len(d.WindSpeedMax) {
			day.WindSpeedMS = d.WindSpeedMax[i]
		}
		if i < len(d.PrecipProbability) {
			day.PrecipProbability = d.PrecipProbability[i] / 100
		}
		snap.Daily = append(snap.Daily, day)
	}

	return snap, nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// WMO weather interpretation codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

func describeCondition(c weather.Condition) string {
	switch c {
	case weather.ConditionClear:
		return "Clear"
	case weather.ConditionCloudy:
		return "Cloudy"
	case weather.ConditionMist:
		return "Fog"
	case weather.ConditionRain:
		return "Rain"
	case weather.ConditionSnow:
		return "Snow"
	case weather.ConditionStorm:
		return "Thunderstorm"
	case weather.ConditionWind:
		return "Windy"
	default:
		return "Unknown"
	}
}
