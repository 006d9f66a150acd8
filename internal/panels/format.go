package panels

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/cloudy/internal/settings"
)

// Placeholder is shown for any value that is not known yet.
const Placeholder = "--"

// PreferenceSource is read at render time.
type PreferenceSource interface {
	Get() settings.Preferences
}

func formatTemperature(celsius float64, p settings.Preferences) string {
	if p.Temperature == settings.TemperatureCelsius {
		return fmt.Sprintf("%.0f °C", roundHalf(celsius))
	}
	return fmt.Sprintf("%.0f °F", roundHalf(celsius*9/5+32))
}

func formatWindSpeed(ms float64, p settings.Preferences) string {
	if p.Units == settings.UnitsMetric {
		return fmt.Sprintf("%.0f KPH", roundHalf(ms*3.6))
	}
	return fmt.Sprintf("%.0f MPH", roundHalf(ms*2.23694))
}

func formatClock(t time.Time, p settings.Preferences) string {
	if p.Time == settings.TimeTwentyFourHour {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

func formatPercent(fraction float64) string {
	return fmt.Sprintf("%.0f %%", roundHalf(fraction*100))
}

// roundHalf rounds half away from zero and folds -0 into 0.
func roundHalf(v float64) float64 {
	r := math.Round(v)
	if r == 0 {
		return 0
	}
	return r
}
