package panels

import (
	"io"
	"text/template"
	"time"

	"github.com/i474232898/cloudy/internal/weather"
)

// WeekRow is one rendered day of the week panel.
type WeekRow struct {
	Day         string `json:"day"`
	Date        string `json:"date"`
	Summary     string `json:"summary"`
	Temperature string `json:"temperature"`
	Wind        string `json:"wind"`
	Icon        string `json:"icon"`
}

// WeekView is the rendered state of the week panel. Empty means no data yet.
type WeekView struct {
	Days []WeekRow `json:"days"`
}

var weekTmpl = template.Must(template.New("week").Parse(
	`{{if not .Days}}No forecast available
{{end}}{{range .Days}}{{printf "%-9s" .Day}} {{.Date}}  {{.Temperature}}  {{.Wind}}  {{.Summary}}
{{end}}`))

// WeekPanel shows the daily series. Like DayPanel it is driven from the
// main loop only.
type WeekPanel struct {
	prefs    PreferenceSource
	location *time.Location

	week    []weather.DailyConditions
	view    WeekView
	renders int

	onRefresh func()
}

func NewWeekPanel(prefs PreferenceSource, loc *time.Location) *WeekPanel {
	if loc == nil {
		loc = time.Local
	}
	return &WeekPanel{prefs: prefs, location: loc, view: WeekView{Days: []WeekRow{}}}
}

// SetWeek replaces the displayed series and re-renders.
func (p *WeekPanel) SetWeek(week []weather.DailyConditions) {
	p.week = append([]weather.DailyConditions(nil), week...)
	p.Reload()
}

func (p *WeekPanel) Reload() {
	p.renders++
	prefs := p.prefs.Get()

	rows := make([]WeekRow, 0, len(p.week))
	for _, d := range p.week {
		t := d.Time.In(p.location)
		rows = append(rows, WeekRow{
			Day:         t.Format("Monday"),
			Date:        t.Format("January 2"),
			Summary:     d.Summary,
			Temperature: formatTemperature(d.TemperatureMinC, prefs) + " - " + formatTemperature(d.TemperatureMaxC, prefs),
			Wind:        formatWindSpeed(d.WindSpeedMS, prefs),
			Icon:        string(d.Condition),
		})
	}
	p.view = WeekView{Days: rows}
}

func (p *WeekPanel) View() WeekView {
	return p.view
}

func (p *WeekPanel) Renders() int {
	return p.renders
}

func (p *WeekPanel) Render(w io.Writer) error {
	return weekTmpl.Execute(w, p.view)
}

// OnRefreshRequested registers the handler for pull-to-refresh.
func (p *WeekPanel) OnRefreshRequested(fn func()) {
	p.onRefresh = fn
}

// RequestRefresh is the user pulling the list to refresh.
func (p *WeekPanel) RequestRefresh() {
	if p.onRefresh != nil {
		p.onRefresh()
	}
}
