// Package show turns tagged sections of an outline document into a navigable
// slide show. The document itself is reached only through the Document
// interface, everything else (index, navigation, rendering, fragment
// execution and the show lifecycle) lives here.
package show

import "io"

// Names of global display settings changed for the duration of a show.
const (
	SettingMetaLineBackground = "meta-line.background"
	SettingMetaLineHeight     = "meta-line.height"
	SettingTypesetScale       = "typeset.scale"
	SettingTagsColumn         = "tags.column"
	SettingSpellcheck         = "spellcheck"
)

// Position is a durable pointer into a document. Adapter keeps it valid across
// edits which do not change document structure and invalidates it otherwise.
type Position interface {
	String() string
}

// Region is an adapter defined piece of document text which could be hidden.
type Region interface {
	String() string
}

// Section is a snapshot of a single heading taken when document was queried.
type Section struct {
	Title string
	Tags  []string
	Level int
	Pos   Position
}

// HasTag reports whether section carries tag.
func (s Section) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Fragment is a separately executable piece of code embedded in a section.
type Fragment struct {
	// ID is stable for the lifetime of the section the fragment belongs to.
	ID     string
	Kind   string
	Args   []string
	Source string
}

// HasArg reports whether fragment header carries argument.
func (f Fragment) HasArg(arg string) bool {
	for _, a := range f.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// Outline is the read side of a structured document.
type Outline interface {
	Name() string
	// Sections returns every heading in document order, nested ones included.
	Sections() []Section
	// Resolve turns position into live section or fails if position is stale.
	Resolve(pos Position) (Section, error)
	// Ancestors returns headings enclosing position, nearest first.
	Ancestors(pos Position) ([]Section, error)
	SubtreeText(sec Section) string
	FindFragments(sec Section, kind string) []Fragment
	MediaLinks(sec Section) []string
	// TagRegions returns tag text on every heading tagged with tag or, when
	// all is set, complete tag text on every heading with tags.
	TagRegions(tag string, all bool) []Region
	FragmentRegions(kind string) []Region
}

// ViewMemento is adapter specific copy of the view state.
type ViewMemento any

// View is how document is presented to the audience.
type View interface {
	SaveView() ViewMemento
	RestoreView(m ViewMemento)

	Unfold()
	Narrow(sec Section) error
	Widen()
	SetWrap(on bool)
	// SetTextScale sets absolute zoom factor, 1 is normal size.
	SetTextScale(scale float64)
	SetDrawersHidden(hidden bool)
	SetFrameTitle(title string)
	FoldFragment(f Fragment)

	RequestTypeset(sec Section, scale float64)
	// RequestMediaDisplay shows media inline, resolved maps link as written in
	// the document to the file which should be displayed instead.
	RequestMediaDisplay(sec Section, resolved map[string]string)

	// AddVisibilitySpec hides regions under reason, replacing whatever was
	// hidden under the same reason before.
	AddVisibilitySpec(reason string, regions []Region)
	RemoveVisibilitySpec(reason string)

	// Render draws visible part of the document.
	Render(w io.Writer, width int) error
}

// Display gives access to process wide display settings.
type Display interface {
	GetGlobalDisplay(name string) (any, bool)
	SetGlobalDisplay(name string, value any)
	DeleteGlobalDisplay(name string)
}

// Document is everything the show needs from a structured document.
type Document interface {
	Outline
	View
	Display
}
