// Package controller implements the root screen: it resolves the device
// location, fetches weather for it and hands the result to the day and week
// panels. It also routes the panels' signals (settings tap, refresh, changed
// preferences).
//
// All state lives on the main loop. Location resolution and the weather
// fetch run on their own goroutines and post their results back.
package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/i474232898/cloudy/internal/location"
	"github.com/i474232898/cloudy/internal/mainloop"
	"github.com/i474232898/cloudy/internal/settings"
	"github.com/i474232898/cloudy/internal/weather"
)

// State is the location resolution state.
type State string

const (
	StateIdle               State = "idle"
	StateAwaitingPermission State = "awaitingPermission"
	StateAwaitingFix        State = "awaitingFix"
	StateResolved           State = "resolved"
	StateFallback           State = "fallback"
)

// Route names a navigation destination.
type Route string

const (
	RouteDay      Route = "day"
	RouteWeek     Route = "week"
	RouteSettings Route = "settings"
)

// Locator produces one coordinate per call.
type Locator interface {
	Resolve(ctx context.Context) location.Resolution
	Observe(fn func(location.Phase))
}

type DayPanel interface {
	SetNow(now weather.CurrentConditions)
	Reload()
	OnSettingsRequested(fn func())
}

type WeekPanel interface {
	SetWeek(week []weather.DailyConditions)
	Reload()
	OnRefreshRequested(fn func())
}

type SettingsPanel interface {
	Present()
	OnPreferenceChanged(fn func(settings.Kind))
}

// Status is a consistent read of the controller's state.
type Status struct {
	State       State               `json:"state"`
	Coordinate  *weather.Coordinate `json:"coordinate,omitempty"`
	Source      location.Source     `json:"source,omitempty"`
	FetchedAt   *time.Time          `json:"fetchedAt,omitempty"`
	Fetches     int                 `json:"fetches"`
	LastError   string              `json:"lastError,omitempty"`
	LastRoute   Route               `json:"lastRoute,omitempty"`
	Provider    string              `json:"provider"`
	Resolutions int                 `json:"resolutions"`
}

// Controller is the root screen controller.
type Controller struct {
	loop     *mainloop.Loop
	locator  Locator
	client   weather.Client
	day      DayPanel
	week     WeekPanel
	settings SettingsPanel
	logger   *slog.Logger

	// ctx bounds the async work started by the controller.
	ctx context.Context

	// Everything below is owned by the main loop.
	state       State
	resolving   bool
	cycle       string
	coordinate  *weather.Coordinate
	source      location.Source
	snapshot    *weather.Snapshot
	generation  uint64
	fetches     int
	resolutions int
	lastErr     error
	lastRoute   Route
}

// Config bundles the collaborators. All fields are required except Logger.
type Config struct {
	Loop     *mainloop.Loop
	Locator  Locator
	Client   weather.Client
	Day      DayPanel
	Week     WeekPanel
	Settings SettingsPanel
	Logger   *slog.Logger
}

// New wires the controller to its collaborators. ctx bounds every location
// resolution and fetch the controller starts.
func New(ctx context.Context, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		loop:     cfg.Loop,
		locator:  cfg.Locator,
		client:   cfg.Client,
		day:      cfg.Day,
		week:     cfg.Week,
		settings: cfg.Settings,
		logger:   logger.With("component", "controller"),
		ctx:      ctx,
		state:    StateIdle,
	}

	// Panel signals arrive on the main loop already (the panels are driven
	// from it), so handlers run inline.
	c.day.OnSettingsRequested(c.showSettings)
	c.week.OnRefreshRequested(c.refresh)
	c.settings.OnPreferenceChanged(c.preferenceChanged)

	c.locator.Observe(func(p location.Phase) {
		c.loop.Dispatch(func() { c.phaseChanged(p) })
	})

	c.lastRoute = RouteDay
	return c
}

// ApplicationDidBecomeActive starts a location resolution cycle. It may be
// called from any goroutine.
func (c *Controller) ApplicationDidBecomeActive() {
	c.loop.Dispatch(c.requestLocation)
}

// Refresh refetches for the last known coordinate, as the week panel does.
// It may be called from any goroutine.
func (c *Controller) Refresh() {
	c.loop.Dispatch(c.refresh)
}

// Status reads the controller state on the main loop.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.loop.Call(ctx, func() { st = c.status() })
	return st, err
}

// Snapshot returns a copy of the held snapshot, if any.
func (c *Controller) Snapshot(ctx context.Context) (weather.Snapshot, bool, error) {
	var (
		snap weather.Snapshot
		ok   bool
	)
	err := c.loop.Call(ctx, func() {
		if c.snapshot != nil {
			snap = *c.snapshot
			snap.Daily = c.snapshot.Week()
			ok = true
		}
	})
	return snap, ok, err
}

func (c *Controller) status() Status {
	st := Status{
		State:       c.state,
		Source:      c.source,
		Fetches:     c.fetches,
		LastRoute:   c.lastRoute,
		Provider:    c.client.Name(),
		Resolutions: c.resolutions,
	}
	if c.coordinate != nil {
		coord := *c.coordinate
		st.Coordinate = &coord
	}
	if c.snapshot != nil {
		at := c.snapshot.FetchedAt
		st.FetchedAt = &at
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}
