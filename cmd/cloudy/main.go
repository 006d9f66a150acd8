package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/cloudy/internal/api/http"
	"github.com/i474232898/cloudy/internal/common"
	"github.com/i474232898/cloudy/internal/config"
	"github.com/i474232898/cloudy/internal/controller"
	"github.com/i474232898/cloudy/internal/location"
	"github.com/i474232898/cloudy/internal/logging"
	"github.com/i474232898/cloudy/internal/mainloop"
	"github.com/i474232898/cloudy/internal/panels"
	"github.com/i474232898/cloudy/internal/settings"
	"github.com/i474232898/cloudy/internal/store"
	"github.com/i474232898/cloudy/internal/weather"
	"github.com/i474232898/cloudy/internal/weather/providers"
)

const appName = "cloudy"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.AppEnv, cfg.LogLevel, appName, version)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound weather and location calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := newWeatherClient(cfg, httpClient)
	platform := newPlatform(cfg, httpClient)
	resolver := location.NewResolver(platform, cfg.DefaultLocation, log)

	prefs := store.NewPreferenceStore(settings.Defaults())
	day := panels.NewDayPanel(prefs, nil)
	week := panels.NewWeekPanel(prefs, nil)
	sheet := panels.NewSettingsPanel(prefs)

	loop := mainloop.New(log)
	ctrl := controller.New(ctx, controller.Config{
		Loop:     loop,
		Locator:  resolver,
		Client:   client,
		Day:      day,
		Week:     week,
		Settings: sheet,
		Logger:   log,
	})

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("main loop stopped", "err", err)
		}
	}()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Screen{
		Loop:       loop,
		Controller: ctrl,
		Day:        day,
		Week:       week,
		Settings:   sheet,
	})

	go func() {
		log.Info("listening", "port", cfg.Port, "provider", client.Name(), "location_source", cfg.LocationSource)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "err", err)
			stop()
		}
	}()

	// The screen appears: resolve once at startup.
	ctrl.ApplicationDidBecomeActive()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
	<-loopDone
}

func newWeatherClient(cfg *config.AppConfig, httpClient *http.Client) weather.Client {
	switch cfg.WeatherProvider {
	case config.ProviderOpenMeteo:
		return providers.NewOpenMeteoProvider(httpClient, cfg.WeatherBaseURL)
	default:
		base := common.FirstNonEmpty(cfg.WeatherBaseURL, providers.DefaultForecastBaseURL)
		return providers.NewForecastProvider(httpClient, providers.AuthenticatedBaseURL(base, cfg.WeatherAPIKey))
	}
}

func newPlatform(cfg *config.AppConfig, httpClient *http.Client) location.Platform {
	switch cfg.LocationSource {
	case config.SourceAddress:
		return location.NewAddressPlatform(cfg.GeocoderAPIKey, cfg.Address, cfg.Permission)
	case config.SourceNone:
		return location.DeniedPlatform{}
	default:
		return location.NewIPPlatform(httpClient, cfg.IPLookupURL, cfg.Permission)
	}
}
