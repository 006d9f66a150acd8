package httpapi

import (
	"bytes"
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/cloudy/internal/controller"
	"github.com/i474232898/cloudy/internal/mainloop"
	"github.com/i474232898/cloudy/internal/panels"
	"github.com/i474232898/cloudy/internal/settings"
)

var validate = validator.New()

// Screen is what the HTTP surface drives. Panel access always goes through
// the loop.
type Screen struct {
	Loop       *mainloop.Loop
	Controller *controller.Controller
	Day        *panels.DayPanel
	Week       *panels.WeekPanel
	Settings   *panels.SettingsPanel
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, s Screen) {
	v1 := app.Group("/api/v1")

	v1.Post("/lifecycle/active", func(c *fiber.Ctx) error {
		s.Controller.ApplicationDidBecomeActive()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true})
	})

	v1.Get("/day", func(c *fiber.Ctx) error {
		q, err := parseViewQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var (
			view      panels.DayView
			renders   int
			text      bytes.Buffer
			renderErr error
		)
		err = onLoop(c, s.Loop, func() {
			view = s.Day.View()
			renders = s.Day.Renders()
			if q.text() {
				renderErr = s.Day.Render(&text)
			}
		})
		if err != nil {
			return err
		}
		if renderErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render panel")
		}
		if q.text() {
			return c.SendString(text.String())
		}
		return c.JSON(fiber.Map{"view": view, "renders": renders})
	})

	v1.Post("/day/settings", func(c *fiber.Ctx) error {
		var presented bool
		err := onLoop(c, s.Loop, func() {
			s.Day.RequestSettings()
			presented = s.Settings.Presented()
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"presented": presented})
	})

	v1.Get("/week", func(c *fiber.Ctx) error {
		q, err := parseViewQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var (
			view      panels.WeekView
			renders   int
			text      bytes.Buffer
			renderErr error
		)
		err = onLoop(c, s.Loop, func() {
			view = s.Week.View()
			renders = s.Week.Renders()
			if q.text() {
				renderErr = s.Week.Render(&text)
			}
		})
		if err != nil {
			return err
		}
		if renderErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render panel")
		}
		if q.text() {
			return c.SendString(text.String())
		}
		return c.JSON(fiber.Map{"view": view, "renders": renders})
	})

	v1.Post("/week/refresh", func(c *fiber.Ctx) error {
		if err := onLoop(c, s.Loop, s.Week.RequestRefresh); err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true})
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		var state settingsState
		if err := onLoop(c, s.Loop, func() { state = currentSettings(s.Settings) }); err != nil {
			return err
		}
		return c.JSON(state)
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var req settingsUpdate
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var (
			state  settingsState
			setErr error
		)
		err := onLoop(c, s.Loop, func() {
			setErr = s.Settings.Set(settings.Kind(req.Kind), req.Value)
			state = currentSettings(s.Settings)
		})
		if err != nil {
			return err
		}
		if setErr != nil {
			if errors.Is(setErr, settings.ErrInvalidValue) {
				return fiber.NewError(fiber.StatusBadRequest, setErr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to update settings")
		}
		return c.JSON(state)
	})

	v1.Post("/settings/dismiss", func(c *fiber.Ctx) error {
		var presented bool
		err := onLoop(c, s.Loop, func() {
			s.Settings.Dismiss()
			presented = s.Settings.Presented()
		})
		if err != nil {
			return err
		}
		s.Controller.SettingsDismissed()
		return c.JSON(fiber.Map{"presented": presented})
	})

	v1.Get("/state", func(c *fiber.Ctx) error {
		st, err := s.Controller.Status(c.UserContext())
		if err != nil {
			return loopError(err)
		}
		return c.JSON(st)
	})
}

// onLoop runs fn on the main loop for the duration of the request.
func onLoop(c *fiber.Ctx, loop *mainloop.Loop, fn func()) error {
	if err := loop.Call(c.UserContext(), fn); err != nil {
		return loopError(err)
	}
	return nil
}

func loopError(err error) error {
	switch {
	case errors.Is(err, mainloop.ErrStopped):
		return fiber.NewError(fiber.StatusServiceUnavailable, "screen is shutting down")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusServiceUnavailable, "screen is busy")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// viewQuery holds query parameters for the panel endpoints.
type viewQuery struct {
	Format string `validate:"omitempty,oneof=json text"`
}

func (q viewQuery) text() bool { return q.Format == "text" }

func parseViewQuery(c *fiber.Ctx) (viewQuery, error) {
	q := viewQuery{Format: c.Query("format")}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// settingsUpdate is the body of PUT /settings.
type settingsUpdate struct {
	Kind  string `json:"kind" validate:"required,oneof=time units temperature"`
	Value string `json:"value" validate:"required"`
}

type settingsState struct {
	Presented   bool                 `json:"presented"`
	Preferences settings.Preferences `json:"preferences"`
}

func currentSettings(p *panels.SettingsPanel) settingsState {
	return settingsState{Presented: p.Presented(), Preferences: p.Preferences()}
}
