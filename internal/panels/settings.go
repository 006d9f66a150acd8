package panels

import (
	"github.com/i474232898/cloudy/internal/settings"
)

// PreferenceStore is where the settings panel writes.
type PreferenceStore interface {
	PreferenceSource
	Set(kind settings.Kind, value string) (bool, error)
}

// SettingsPanel edits display preferences. It is presented modally over the
// root screen.
type SettingsPanel struct {
	store     PreferenceStore
	presented bool

	onChange func(settings.Kind)
}

func NewSettingsPanel(store PreferenceStore) *SettingsPanel {
	return &SettingsPanel{store: store}
}

func (p *SettingsPanel) Present() {
	p.presented = true
}

// Dismiss unwinds back to the root screen.
func (p *SettingsPanel) Dismiss() {
	p.presented = false
}

func (p *SettingsPanel) Presented() bool {
	return p.presented
}

func (p *SettingsPanel) Preferences() settings.Preferences {
	return p.store.Get()
}

// OnPreferenceChanged registers the handler fired after a preference changes.
func (p *SettingsPanel) OnPreferenceChanged(fn func(settings.Kind)) {
	p.onChange = fn
}

// Set changes one preference. Setting the current value is not a change and
// fires nothing.
func (p *SettingsPanel) Set(kind settings.Kind, value string) error {
	changed, err := p.store.Set(kind, value)
	if err != nil {
		return err
	}
	if changed && p.onChange != nil {
		p.onChange(kind)
	}
	return nil
}
