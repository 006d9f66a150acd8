package panels

import (
	"io"
	"text/template"
	"time"

	"github.com/i474232898/cloudy/internal/weather"
)

// DayView is the rendered state of the day panel.
type DayView struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Temperature string `json:"temperature"`
	Wind        string `json:"wind"`
	Humidity    string `json:"humidity"`
	Icon        string `json:"icon"`
}

var dayTmpl = template.Must(template.New("day").Parse(
	`{{.Date}}  {{.Time}}
{{.Description}} [{{.Icon}}]
Temperature {{.Temperature}}  Wind {{.Wind}}  Humidity {{.Humidity}}
`))

// DayPanel shows current conditions. It is not safe for concurrent use;
// callers drive it from the main loop.
type DayPanel struct {
	prefs    PreferenceSource
	location *time.Location

	now     *weather.CurrentConditions
	view    DayView
	renders int

	onSettings func()
}

// NewDayPanel renders times in loc (time.Local when nil).
func NewDayPanel(prefs PreferenceSource, loc *time.Location) *DayPanel {
	if loc == nil {
		loc = time.Local
	}
	p := &DayPanel{prefs: prefs, location: loc}
	p.view = emptyDayView()
	return p
}

func emptyDayView() DayView {
	return DayView{
		Date:        Placeholder,
		Time:        Placeholder,
		Description: Placeholder,
		Temperature: Placeholder,
		Wind:        Placeholder,
		Humidity:    Placeholder,
		Icon:        string(weather.ConditionUnknown),
	}
}

// SetNow replaces the displayed conditions and re-renders.
func (p *DayPanel) SetNow(now weather.CurrentConditions) {
	p.now = &now
	p.Reload()
}

// Reload re-renders from the held conditions with the current preferences.
func (p *DayPanel) Reload() {
	p.renders++
	if p.now == nil {
		p.view = emptyDayView()
		return
	}

	prefs := p.prefs.Get()
	t := p.now.Time.In(p.location)
	p.view = DayView{
		Date:        t.Format("Monday, January 2"),
		Time:        formatClock(t, prefs),
		Description: p.now.Summary,
		Temperature: formatTemperature(p.now.TemperatureC, prefs),
		Wind:        formatWindSpeed(p.now.WindSpeedMS, prefs),
		Humidity:    formatPercent(p.now.HumidityPct / 100),
		Icon:        string(p.now.Condition),
	}
}

func (p *DayPanel) View() DayView {
	return p.view
}

// Renders counts Reload calls, including those made by SetNow.
func (p *DayPanel) Renders() int {
	return p.renders
}

// Render writes the current view as text.
func (p *DayPanel) Render(w io.Writer) error {
	return dayTmpl.Execute(w, p.view)
}

// OnSettingsRequested registers the handler for the settings button.
func (p *DayPanel) OnSettingsRequested(fn func()) {
	p.onSettings = fn
}

// RequestSettings is the user tapping the settings button.
func (p *DayPanel) RequestSettings() {
	if p.onSettings != nil {
		p.onSettings()
	}
}
