package panels

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/cloudy/internal/settings"
	"github.com/i474232898/cloudy/internal/store"
	"github.com/i474232898/cloudy/internal/weather"
)

var noon = time.Date(2024, time.January, 15, 15, 30, 0, 0, time.UTC)

func sampleNow() weather.CurrentConditions {
	return weather.CurrentConditions{
		Time:         noon,
		Summary:      "Light Rain",
		Condition:    weather.ConditionRain,
		TemperatureC: 10,
		WindSpeedMS:  5,
		HumidityPct:  81,
	}
}

func sampleWeek() []weather.DailyConditions {
	return []weather.DailyConditions{
		{Time: noon, Summary: "Rain", Condition: weather.ConditionRain, TemperatureMinC: 0, TemperatureMaxC: 10, WindSpeedMS: 10},
		{Time: noon.AddDate(0, 0, 1), Summary: "Clear", Condition: weather.ConditionClear, TemperatureMinC: -5, TemperatureMaxC: 5, WindSpeedMS: 2},
	}
}

func TestDayPanel_EmptyState(t *testing.T) {
	p := NewDayPanel(store.NewPreferenceStore(settings.Defaults()), time.UTC)

	p.Reload()
	v := p.View()
	if v.Temperature != Placeholder || v.Date != Placeholder || v.Icon != "unknown" {
		t.Errorf("empty view = %+v", v)
	}
	if p.Renders() != 1 {
		t.Errorf("renders = %d, want 1", p.Renders())
	}
}

func TestDayPanel_RendersWithPreferences(t *testing.T) {
	prefs := store.NewPreferenceStore(settings.Defaults())
	p := NewDayPanel(prefs, time.UTC)

	p.SetNow(sampleNow())
	v := p.View()
	if v.Temperature != "50 °F" {
		t.Errorf("temperature = %q, want 50 °F", v.Temperature)
	}
	if v.Wind != "11 MPH" {
		t.Errorf("wind = %q, want 11 MPH", v.Wind)
	}
	if v.Time != "3:30 PM" {
		t.Errorf("time = %q, want 3:30 PM", v.Time)
	}
	if v.Date != "Monday, January 15" {
		t.Errorf("date = %q", v.Date)
	}
	if v.Humidity != "81 %" {
		t.Errorf("humidity = %q", v.Humidity)
	}

	prefs.Set(settings.KindTemperature, "celsius")
	prefs.Set(settings.KindUnits, "metric")
	prefs.Set(settings.KindTime, "24h")
	p.Reload()

	v = p.View()
	if v.Temperature != "10 °C" || v.Wind != "18 KPH" || v.Time != "15:30" {
		t.Errorf("metric view = %+v", v)
	}
}

func TestDayPanel_Render(t *testing.T) {
	p := NewDayPanel(store.NewPreferenceStore(settings.Defaults()), time.UTC)
	p.SetNow(sampleNow())

	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "Light Rain") {
		t.Errorf("output missing summary: %q", buf.String())
	}
}

func TestDayPanel_SettingsSignal(t *testing.T) {
	p := NewDayPanel(store.NewPreferenceStore(settings.Defaults()), time.UTC)

	p.RequestSettings() // no handler registered; must not panic

	calls := 0
	p.OnSettingsRequested(func() { calls++ })
	p.RequestSettings()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWeekPanel_Rows(t *testing.T) {
	prefs := store.NewPreferenceStore(settings.Defaults())
	p := NewWeekPanel(prefs, time.UTC)

	week := sampleWeek()
	p.SetWeek(week)
	week[0].Summary = "mutated"

	v := p.View()
	if len(v.Days) != 2 {
		t.Fatalf("rows = %d, want 2", len(v.Days))
	}
	if v.Days[0].Day != "Monday" || v.Days[1].Day != "Tuesday" {
		t.Errorf("days = %q, %q", v.Days[0].Day, v.Days[1].Day)
	}
	if v.Days[0].Temperature != "32 °F - 50 °F" {
		t.Errorf("temperature = %q", v.Days[0].Temperature)
	}

	p.Reload()
	if p.View().Days[0].Summary != "Rain" {
		t.Errorf("panel aliased caller's slice")
	}

	prefs.Set(settings.KindTemperature, "celsius")
	p.Reload()
	if got := p.View().Days[1].Temperature; got != "-5 °C - 5 °C" {
		t.Errorf("celsius temperature = %q", got)
	}
}

func TestWeekPanel_EmptyRender(t *testing.T) {
	p := NewWeekPanel(store.NewPreferenceStore(settings.Defaults()), time.UTC)
	p.Reload()

	if len(p.View().Days) != 0 {
		t.Errorf("expected no rows")
	}
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "No forecast available") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestWeekPanel_RefreshSignal(t *testing.T) {
	p := NewWeekPanel(store.NewPreferenceStore(settings.Defaults()), time.UTC)
	calls := 0
	p.OnRefreshRequested(func() { calls++ })
	p.RequestRefresh()
	p.RequestRefresh()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSettingsPanel(t *testing.T) {
	p := NewSettingsPanel(store.NewPreferenceStore(settings.Defaults()))

	if p.Presented() {
		t.Fatal("panel presented before Present")
	}
	p.Present()
	if !p.Presented() {
		t.Fatal("panel not presented")
	}

	var kinds []settings.Kind
	p.OnPreferenceChanged(func(k settings.Kind) { kinds = append(kinds, k) })

	if err := p.Set(settings.KindUnits, "metric"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := p.Set(settings.KindUnits, "metric"); err != nil {
		t.Fatalf("Set same value: %v", err)
	}
	if err := p.Set(settings.KindTime, "noon"); !errors.Is(err, settings.ErrInvalidValue) {
		t.Fatalf("Set invalid = %v", err)
	}

	if len(kinds) != 1 || kinds[0] != settings.KindUnits {
		t.Errorf("signals = %v, want [units]", kinds)
	}
	if p.Preferences().Units != settings.UnitsMetric {
		t.Errorf("preferences = %+v", p.Preferences())
	}

	p.Dismiss()
	if p.Presented() {
		t.Error("panel still presented after Dismiss")
	}
}

func TestFormatting(t *testing.T) {
	us := settings.Defaults()
	if got := formatTemperature(-17.8, us); got != "0 °F" {
		t.Errorf("formatTemperature(-17.8) = %q, want 0 °F", got)
	}
	if got := formatWindSpeed(0, us); got != "0 MPH" {
		t.Errorf("formatWindSpeed(0) = %q", got)
	}
	if got := formatClock(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC), us); got != "12:05 AM" {
		t.Errorf("formatClock = %q", got)
	}
}
