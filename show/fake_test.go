package show

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"slideshow/config"
)

var errFakeStale = errors.New("fake position is stale")

type fakePos struct {
	index int
	gen   int
}

func (p fakePos) String() string {
	return fmt.Sprintf("%d@%d", p.index, p.gen)
}

type fakeRegion string

func (r fakeRegion) String() string {
	return string(r)
}

type fakeSection struct {
	title string
	tags  []string
	level int
	frags []Fragment
	links []string
}

// fakeView is comparable so visible state could be checked for equality.
type fakeView struct {
	narrowed string
	wrap     bool
	scale    float64
	drawers  bool
	frame    string
	folded   string
	typeset  string
	media    string
	hidden   string
}

// fakeDoc records everything show does to a document.
type fakeDoc struct {
	name     string
	sections []fakeSection
	gen      int

	narrowed  string
	wrap      bool
	scale     float64
	drawers   bool
	frame     string
	folded    map[string]bool
	typeset   map[string]float64
	media     map[string]map[string]string
	specs     map[string][]Region
	display   map[string]any
	narrowErr error
	unfolds   int
}

func newFakeDoc(name string, sections ...fakeSection) *fakeDoc {
	return &fakeDoc{
		name:     name,
		sections: sections,
		scale:    1,
		folded:   make(map[string]bool),
		typeset:  make(map[string]float64),
		media:    make(map[string]map[string]string),
		specs:    make(map[string][]Region),
		display: map[string]any{
			SettingMetaLineBackground: "#f0f0f0",
			SettingMetaLineHeight:     1.0,
			SettingTypesetScale:       1.0,
			SettingTagsColumn:         -77,
			SettingSpellcheck:         true,
		},
	}
}

func slideSec(title string, tags ...string) fakeSection {
	return fakeSection{title: title, tags: append([]string{"slide"}, tags...), level: 1}
}

func (d *fakeDoc) Name() string { return d.name }

func (d *fakeDoc) section(i int) Section {
	s := d.sections[i]
	return Section{Title: s.title, Tags: s.tags, Level: s.level, Pos: fakePos{index: i, gen: d.gen}}
}

func (d *fakeDoc) Sections() []Section {
	out := make([]Section, 0, len(d.sections))
	for i := range d.sections {
		out = append(out, d.section(i))
	}
	return out
}

func (d *fakeDoc) index(pos Position) (int, error) {
	p, ok := pos.(fakePos)
	if !ok || p.gen != d.gen || p.index >= len(d.sections) {
		return 0, errFakeStale
	}
	return p.index, nil
}

func (d *fakeDoc) Resolve(pos Position) (Section, error) {
	i, err := d.index(pos)
	if err != nil {
		return Section{}, err
	}
	return d.section(i), nil
}

func (d *fakeDoc) Ancestors(pos Position) ([]Section, error) {
	i, err := d.index(pos)
	if err != nil {
		return nil, err
	}
	var out []Section
	level := d.sections[i].level
	for j := i - 1; j >= 0; j-- {
		if d.sections[j].level < level {
			out = append(out, d.section(j))
			level = d.sections[j].level
		}
	}
	return out, nil
}

func (d *fakeDoc) SubtreeText(sec Section) string {
	return sec.Title
}

func (d *fakeDoc) FindFragments(sec Section, kind string) []Fragment {
	i, err := d.index(sec.Pos)
	if err != nil {
		return nil
	}
	var out []Fragment
	for _, f := range d.sections[i].frags {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func (d *fakeDoc) MediaLinks(sec Section) []string {
	i, err := d.index(sec.Pos)
	if err != nil {
		return nil
	}
	return d.sections[i].links
}

func (d *fakeDoc) TagRegions(tag string, all bool) []Region {
	var out []Region
	for i, s := range d.sections {
		for _, t := range s.tags {
			if all || t == tag {
				out = append(out, fakeRegion(fmt.Sprintf("%d:%s", i, t)))
			}
		}
	}
	return out
}

func (d *fakeDoc) FragmentRegions(kind string) []Region {
	var out []Region
	for _, s := range d.sections {
		for _, f := range s.frags {
			if f.Kind == kind {
				out = append(out, fakeRegion(f.ID))
			}
		}
	}
	return out
}

func (d *fakeDoc) state() fakeView {
	var hidden []string
	for _, reason := range slices.Sorted(maps.Keys(d.specs)) {
		for _, r := range d.specs[reason] {
			hidden = append(hidden, reason+"="+r.String())
		}
	}
	var media []string
	for _, k := range slices.Sorted(maps.Keys(d.media)) {
		media = append(media, fmt.Sprintf("%s=%v", k, d.media[k]))
	}
	return fakeView{
		narrowed: d.narrowed,
		wrap:     d.wrap,
		scale:    d.scale,
		drawers:  d.drawers,
		frame:    d.frame,
		folded:   strings.Join(slices.Sorted(maps.Keys(d.folded)), ","),
		typeset:  fmt.Sprint(d.typeset),
		media:    strings.Join(media, ";"),
		hidden:   strings.Join(hidden, ";"),
	}
}

type fakeMemento struct {
	narrowed string
	wrap     bool
	scale    float64
	drawers  bool
	frame    string
}

func (d *fakeDoc) SaveView() ViewMemento {
	return fakeMemento{narrowed: d.narrowed, wrap: d.wrap, scale: d.scale, drawers: d.drawers, frame: d.frame}
}

func (d *fakeDoc) RestoreView(m ViewMemento) {
	v := m.(fakeMemento)
	d.narrowed, d.wrap, d.scale, d.drawers, d.frame = v.narrowed, v.wrap, v.scale, v.drawers, v.frame
	clear(d.folded)
	clear(d.typeset)
	clear(d.media)
}

func (d *fakeDoc) Unfold() {
	d.unfolds++
	clear(d.folded)
}

func (d *fakeDoc) Narrow(sec Section) error {
	if d.narrowErr != nil {
		return d.narrowErr
	}
	d.narrowed = sec.Title
	return nil
}

func (d *fakeDoc) Widen()                       { d.narrowed = "" }
func (d *fakeDoc) SetWrap(on bool)              { d.wrap = on }
func (d *fakeDoc) SetTextScale(scale float64)   { d.scale = scale }
func (d *fakeDoc) SetDrawersHidden(hidden bool) { d.drawers = hidden }
func (d *fakeDoc) SetFrameTitle(title string)   { d.frame = title }
func (d *fakeDoc) FoldFragment(f Fragment)      { d.folded[f.ID] = true }

func (d *fakeDoc) RequestTypeset(sec Section, scale float64) {
	d.typeset[sec.Title] = scale
}

func (d *fakeDoc) RequestMediaDisplay(sec Section, resolved map[string]string) {
	d.media[sec.Title] = maps.Clone(resolved)
}

func (d *fakeDoc) AddVisibilitySpec(reason string, regions []Region) {
	d.specs[reason] = regions
}

func (d *fakeDoc) RemoveVisibilitySpec(reason string) {
	delete(d.specs, reason)
}

func (d *fakeDoc) Render(w io.Writer, _ int) error {
	_, err := fmt.Fprintf(w, "%+v\n", d.state())
	return err
}

func (d *fakeDoc) GetGlobalDisplay(name string) (any, bool) {
	v, ok := d.display[name]
	return v, ok
}

func (d *fakeDoc) SetGlobalDisplay(name string, value any) {
	d.display[name] = value
}

func (d *fakeDoc) DeleteGlobalDisplay(name string) {
	delete(d.display, name)
}

// recordingEvaluator understands three statements: "x=<value>" stores a scope
// variable, "read x" appends its value to the log and "display k=v" changes
// global display setting. "panic" and "fail" do what they say.
type recordingEvaluator struct {
	log    []string
	scopes int
}

type recordingScope struct {
	ev   *recordingEvaluator
	doc  Document
	vars map[string]string
}

func (e *recordingEvaluator) Begin(doc Document, _ Slide, _ int) FragmentScope {
	e.scopes++
	return &recordingScope{ev: e, doc: doc, vars: make(map[string]string)}
}

func (s *recordingScope) Eval(f Fragment) error {
	switch {
	case f.Source == "panic":
		panic("boom")
	case f.Source == "fail":
		return errors.New("fragment failed")
	case strings.HasPrefix(f.Source, "read "):
		name := strings.TrimPrefix(f.Source, "read ")
		v, ok := s.vars[name]
		if !ok {
			v = "<unset>"
		}
		s.ev.log = append(s.ev.log, f.ID+":"+name+"="+v)
	case strings.HasPrefix(f.Source, "display "):
		name, value, _ := strings.Cut(strings.TrimPrefix(f.Source, "display "), "=")
		s.doc.SetGlobalDisplay(name, value)
	default:
		name, value, _ := strings.Cut(f.Source, "=")
		s.vars[name] = value
		s.ev.log = append(s.ev.log, f.ID+":set")
	}
	return nil
}

type fakeMedia struct {
	calls int
}

func (m *fakeMedia) Prepare(_ Slide, links []string, arts *Artifacts) map[string]string {
	m.calls++
	out := make(map[string]string)
	for _, l := range links {
		if a, ok := arts.Lookup(l); ok {
			out[l] = a.Path
			continue
		}
		p := "/nonexistent/generated/" + l
		arts.Add(Artifact{Source: l, Path: p})
		out[l] = p
	}
	return out
}

func testShowConfig() *config.ShowConfig {
	return &config.ShowConfig{
		SlideTag:      "slide",
		HideTags:      config.HideTagsModeSlideTagOnly,
		TextScale:     4,
		TypesetScale:  4.0,
		FragmentKind:  "starlark-slide",
		TitleTemplate: "{{ .Title }} [{{ .Ordinal }}/{{ .Total }}]",
		Presentation: config.PresentationConfig{
			MetaLineBackground: "#ffffff",
			MetaLineHeight:     0.2,
			Spellcheck:         false,
		},
	}
}

func frag(id, source string, args ...string) Fragment {
	return Fragment{ID: id, Kind: "starlark-slide", Args: args, Source: source}
}
