package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/cloudy/internal/common"
	"github.com/i474232898/cloudy/internal/weather"
)

// DefaultForecastBaseURL is a Dark Sky compatible endpoint. The API key is
// appended as a path segment to form the authenticated base URL.
const DefaultForecastBaseURL = "https://api.pirateweather.net/forecast"

// ForecastProvider implements weather.Client against a Dark Sky compatible
// forecast API: GET {authenticatedBaseURL}/{lat},{lon}.
type ForecastProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// AuthenticatedBaseURL joins the base endpoint and the API key.
func AuthenticatedBaseURL(baseURL, apiKey string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(apiKey)
}

// NewForecastProvider expects an authenticated base URL (see AuthenticatedBaseURL).
func NewForecastProvider(client *http.Client, authenticatedBaseURL string) *ForecastProvider {
	return &ForecastProvider{
		name:    "forecast",
		baseURL: strings.TrimRight(authenticatedBaseURL, "/"),
		client:  client,
		circuit: newBreaker("forecast"),
	}
}

func (p *ForecastProvider) Name() string {
	return p.name
}

type forecastPayload struct {
	Currently struct {
		Time                int64   `json:"time"`
		Summary             string  `json:"summary"`
		Icon                string  `json:"icon"`
		Temperature         float64 `json:"temperature"`
		ApparentTemperature float64 `json:"apparentTemperature"`
		Humidity            float64 `json:"humidity"`
		WindSpeed           float64 `json:"windSpeed"`
		WindBearing         int     `json:"windBearing"`
		PrecipProbability   float64 `json:"precipProbability"`
	} `json:"currently"`
	Daily struct {
		Data []struct {
			Time              int64   `json:"time"`
			Summary           string  `json:"summary"`
			Icon              string  `json:"icon"`
			TemperatureMin    float64 `json:"temperatureMin"`
			TemperatureMax    float64 `json:"temperatureMax"`
			WindSpeed         float64 `json:"windSpeed"`
			PrecipProbability float64 `json:"precipProbability"`
		} `json:"data"`
	} `json:"daily"`
}

func (p *ForecastProvider) Fetch(ctx context.Context, latitude, longitude float64) (weather.Snapshot, error) {
	if p.baseURL == "" {
		return weather.Snapshot{}, fmt.Errorf("forecast base url is not configured")
	}

	values := url.Values{}
	values.Set("units", "si")
	values.Set("exclude", "minutely,hourly,alerts,flags")

	u := fmt.Sprintf("%s/%f,%f?%s", p.baseURL, latitude, longitude, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return weather.Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	var payload forecastPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("decode forecast response: %w", err)
	}

	c := payload.Currently
	snap := weather.Snapshot{
		Coordinate: weather.Coordinate{Latitude: latitude, Longitude: longitude},
		FetchedAt:  time.Now().UTC(),
		Current: weather.CurrentConditions{
			Time:                 unixTime(c.Time),
			Summary:              c.Summary,
			Icon:                 c.Icon,
			Condition:            mapForecastIcon(c.Icon),
			TemperatureC:         c.Temperature,
			ApparentTemperatureC: c.ApparentTemperature,
			WindSpeedMS:          c.WindSpeed,
			WindBearing:          c.WindBearing,
			HumidityPct:          c.Humidity * 100,
			PrecipProbability:    c.PrecipProbability,
		},
		Daily: make([]weather.DailyConditions, 0, len(payload.Daily.Data)),
	}

	for _, d := range payload.Daily.Data {
		snap.Daily = append(snap.Daily, weather.DailyConditions{
			Time:              unixTime(d.Time),
			Summary:           d.Summary,
			Icon:              d.Icon,
			Condition:         mapForecastIcon(d.Icon),
			TemperatureMinC:   d.TemperatureMin,
			TemperatureMaxC:   d.TemperatureMax,
			WindSpeedMS:       d.WindSpeed,
			PrecipProbability: d.PrecipProbability,
		})
	}

	return snap, nil
}

// mapForecastIcon maps Dark Sky icon names (clear-day, partly-cloudy-night, ...).
func mapForecastIcon(icon string) weather.Condition {
	icon = strings.ToLower(icon)
	switch {
	case icon == "":
		return weather.ConditionUnknown
	case common.HasAny(icon, "thunderstorm", "hail", "tornado"):
		return weather.ConditionStorm
	case common.HasAny(icon, "rain", "drizzle"):
		return weather.ConditionRain
	case common.HasAny(icon, "snow", "sleet"):
		return weather.ConditionSnow
	case common.HasAny(icon, "fog"):
		return weather.ConditionMist
	case icon == "wind":
		return weather.ConditionWind
	case common.HasAny(icon, "cloudy"):
		return weather.ConditionCloudy
	case common.HasAny(icon, "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
