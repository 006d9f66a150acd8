package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"

	"github.com/i474232898/cloudy/internal/location"
	"github.com/i474232898/cloudy/internal/weather"
)

// Supported values for WEATHER_PROVIDER and LOCATION_SOURCE.
const (
	ProviderForecast  = "forecast"
	ProviderOpenMeteo = "openmeteo"

	SourceIP      = "ip"
	SourceAddress = "address"
	SourceNone    = "none"
)

// Brussels, the coordinate used when no fix is available.
const (
	defaultLatitude  = 50.8503
	defaultLongitude = 4.3517
)

var validate = validator.New()

type AppConfig struct {
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level
	Port     string `validate:"required,numeric"`

	// HTTPTimeout bounds every outbound request.
	HTTPTimeout time.Duration

	WeatherProvider string `validate:"oneof=forecast openmeteo"`
	WeatherBaseURL  string `validate:"omitempty,url"`
	WeatherAPIKey   string

	DefaultLocation weather.Coordinate

	LocationSource string `validate:"oneof=ip address none"`
	Permission     location.Permission
	IPLookupURL    string `validate:"omitempty,url"`
	Address        geocoder.Address
	GeocoderAPIKey string
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from the process environment only.
func LoadFromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		AppEnv:          strings.ToLower(getenvDefault("APP_ENV", "dev")),
		Port:            getenvDefault("PORT", "8080"),
		WeatherProvider: strings.ToLower(getenvDefault("WEATHER_PROVIDER", ProviderForecast)),
		WeatherBaseURL:  os.Getenv("WEATHER_BASE_URL"),
		WeatherAPIKey:   os.Getenv("WEATHER_API_KEY"),
		LocationSource:  strings.ToLower(getenvDefault("LOCATION_SOURCE", SourceIP)),
		IPLookupURL:     os.Getenv("LOCATION_IP_URL"),
		GeocoderAPIKey:  os.Getenv("GEOCODER_API_KEY"),
		Address: geocoder.Address{
			Street:     os.Getenv("LOCATION_ADDRESS_STREET"),
			City:       os.Getenv("LOCATION_ADDRESS_CITY"),
			State:      os.Getenv("LOCATION_ADDRESS_STATE"),
			PostalCode: os.Getenv("LOCATION_ADDRESS_POSTAL_CODE"),
			Country:    os.Getenv("LOCATION_ADDRESS_COUNTRY"),
		},
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q: must be positive", timeout)
	}
	cfg.HTTPTimeout = timeout

	lat, err := getenvFloat("DEFAULT_LATITUDE", defaultLatitude)
	if err != nil {
		return nil, err
	}
	lon, err := getenvFloat("DEFAULT_LONGITUDE", defaultLongitude)
	if err != nil {
		return nil, err
	}
	cfg.DefaultLocation = weather.Coordinate{Latitude: lat, Longitude: lon}

	status, err := location.ParseAuthorizationStatus(os.Getenv("LOCATION_PERMISSION"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_PERMISSION: %w", err)
	}
	answer, err := location.ParseAuthorizationStatus(getenvDefault("LOCATION_PROMPT_ANSWER", "deny"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_PROMPT_ANSWER: %w", err)
	}
	cfg.Permission = location.Permission{Status: status, Answer: answer}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.WeatherProvider == ProviderForecast && cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY is required for the %s provider", ProviderForecast)
	}
	if cfg.LocationSource == SourceAddress && cfg.Address.City == "" && cfg.Address.PostalCode == "" {
		return nil, fmt.Errorf("LOCATION_ADDRESS_CITY or LOCATION_ADDRESS_POSTAL_CODE is required for the %s location source", SourceAddress)
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
