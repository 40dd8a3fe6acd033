package outline

import (
	"maps"

	"slideshow/show"
)

// Display holds process wide display settings. Documents opened in the same
// process should share one.
type Display struct {
	values map[string]any
}

// NewDisplay returns display with host defaults.
func NewDisplay() *Display {
	return &Display{values: map[string]any{
		show.SettingMetaLineBackground: "#f0f0f0",
		show.SettingMetaLineHeight:     1.0,
		show.SettingTypesetScale:       1.0,
		show.SettingTagsColumn:         -77,
		show.SettingSpellcheck:         true,
	}}
}

func (d *Display) Get(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

func (d *Display) Set(name string, value any) {
	d.values[name] = value
}

func (d *Display) Delete(name string) {
	delete(d.values, name)
}

// Values returns copy of all settings.
func (d *Display) Values() map[string]any {
	return maps.Clone(d.values)
}
