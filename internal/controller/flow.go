package controller

import (
	"github.com/google/uuid"

	"github.com/i474232898/cloudy/internal/location"
	"github.com/i474232898/cloudy/internal/settings"
	"github.com/i474232898/cloudy/internal/weather"
)

// requestLocation starts a resolution cycle unless one is in flight.
func (c *Controller) requestLocation() {
	if c.resolving {
		c.logger.Debug("location resolution already in progress", "cycle", c.cycle)
		return
	}

	// The state moves only when the resolver reports a phase, so an
	// authorized platform never shows a permission wait.
	c.resolving = true
	c.cycle = uuid.NewString()
	cycle := c.cycle

	c.logger.Info("resolving location", "cycle", cycle)

	go func() {
		res := c.locator.Resolve(c.ctx)
		c.loop.Dispatch(func() { c.locationResolved(cycle, res) })
	}()
}

func (c *Controller) phaseChanged(p location.Phase) {
	if !c.resolving {
		return
	}
	switch p {
	case location.PhaseAwaitingPermission:
		c.state = StateAwaitingPermission
	case location.PhaseAwaitingFix:
		c.state = StateAwaitingFix
	}
}

func (c *Controller) locationResolved(cycle string, res location.Resolution) {
	c.resolving = false
	c.resolutions++

	coord := res.Coordinate
	c.coordinate = &coord
	c.source = res.Source

	if res.Source == location.SourceFix {
		c.state = StateResolved
		c.logger.Info("location resolved", "cycle", cycle, "coordinate", coord.String())
	} else {
		c.state = StateFallback
		c.logger.Info("using default location", "cycle", cycle, "coordinate", coord.String(), "reason", res.Reason)
	}

	c.fetchWeatherData()
}

// fetchWeatherData issues one fetch for the current coordinate. Only the
// response to the most recent fetch is applied.
func (c *Controller) fetchWeatherData() {
	if c.coordinate == nil {
		c.logger.Warn("no location yet; skipping weather fetch")
		return
	}

	coord := *c.coordinate
	c.generation++
	c.fetches++
	gen := c.generation

	c.logger.Info("fetching weather",
		"provider", c.client.Name(),
		"coordinate", coord.String(),
		"generation", gen,
	)

	go func() {
		snap, err := c.client.Fetch(c.ctx, coord.Latitude, coord.Longitude)
		c.loop.Dispatch(func() { c.weatherArrived(gen, coord, snap, err) })
	}()
}

func (c *Controller) weatherArrived(gen uint64, coord weather.Coordinate, snap weather.Snapshot, err error) {
	if gen != c.generation {
		c.logger.Warn("dropping stale weather response",
			"generation", gen,
			"latest", c.generation,
			"coordinate", coord.String(),
		)
		return
	}

	if err != nil {
		c.lastErr = err
		c.logger.Error("weather fetch failed", "coordinate", coord.String(), "err", err)
		return
	}

	c.lastErr = nil
	c.snapshot = &snap

	// Both panels get slices of the same snapshot in the same loop turn.
	c.day.SetNow(snap.Current)
	c.week.SetWeek(snap.Week())

	c.logger.Debug("weather updated",
		"coordinate", coord.String(),
		"days", len(snap.Daily),
		"summary", snap.Current.Summary,
	)
}

func (c *Controller) showSettings() {
	c.lastRoute = RouteSettings
	c.settings.Present()
}

// SettingsDismissed records the unwind back to the root screen.
func (c *Controller) SettingsDismissed() {
	c.loop.Dispatch(func() { c.lastRoute = RouteDay })
}

func (c *Controller) refresh() {
	if c.coordinate == nil {
		c.logger.Info("refresh requested before a location is known; ignoring")
		return
	}
	c.fetchWeatherData()
}

func (c *Controller) preferenceChanged(kind settings.Kind) {
	c.logger.Debug("preference changed; reloading panels", "kind", kind)
	c.day.Reload()
	c.week.Reload()
}
