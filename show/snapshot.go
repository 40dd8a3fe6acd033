package show

import "slideshow/config"

type savedSetting struct {
	name    string
	value   any
	existed bool
}

// Snapshot keeps pre-show values of everything the show changes. It is filled
// one setting at a time right before the setting is changed, so restoring a
// partially started show touches only what was actually changed.
type Snapshot struct {
	globals  []savedSetting
	view     ViewMemento
	haveView bool
}

func (s *Snapshot) captureView(v View) {
	s.view, s.haveView = v.SaveView(), true
}

// apply remembers current value of a global display setting and replaces it.
// Settings unknown to the display are left alone.
func (s *Snapshot) apply(d Display, name string, value any) {
	if _, ok := d.GetGlobalDisplay(name); !ok {
		return
	}
	s.record(d, name)
	d.SetGlobalDisplay(name, value)
}

// record saves value setting has before its first change during the show.
// Absent settings are remembered as such and deleted on restore.
func (s *Snapshot) record(d Display, name string) {
	if s.Captured(name) {
		return
	}
	old, ok := d.GetGlobalDisplay(name)
	s.globals = append(s.globals, savedSetting{name: name, value: old, existed: ok})
}

// Captured reports whether setting was saved.
func (s *Snapshot) Captured(name string) bool {
	for _, g := range s.globals {
		if g.name == name {
			return true
		}
	}
	return false
}

func (s *Snapshot) restore(doc Document) {
	for i := len(s.globals) - 1; i >= 0; i-- {
		g := s.globals[i]
		if !g.existed {
			doc.DeleteGlobalDisplay(g.name)
			continue
		}
		doc.SetGlobalDisplay(g.name, g.value)
	}
	if s.haveView {
		doc.RestoreView(s.view)
		return
	}
	doc.Widen()
	doc.SetTextScale(1)
}

// recordingDocument is what fragments get to change: global display writes
// go through the snapshot so Stop can undo them.
type recordingDocument struct {
	Document
	snap *Snapshot
}

func (d recordingDocument) SetGlobalDisplay(name string, value any) {
	d.snap.record(d.Document, name)
	d.Document.SetGlobalDisplay(name, value)
}

func (d recordingDocument) DeleteGlobalDisplay(name string) {
	d.snap.record(d.Document, name)
	d.Document.DeleteGlobalDisplay(name)
}

// presentationSettings lists global display values in effect during the show.
func presentationSettings(cfg *config.ShowConfig) []savedSetting {
	return []savedSetting{
		{name: SettingMetaLineBackground, value: cfg.Presentation.MetaLineBackground},
		{name: SettingMetaLineHeight, value: cfg.Presentation.MetaLineHeight},
		{name: SettingTypesetScale, value: cfg.TypesetScale},
		{name: SettingTagsColumn, value: cfg.Presentation.TagsColumn},
		{name: SettingSpellcheck, value: cfg.Presentation.Spellcheck},
	}
}
