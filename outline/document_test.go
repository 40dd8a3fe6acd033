package outline

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"slideshow/show"
)

func loadSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Load(filepath.Join("testdata", "sample.org"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return doc
}

func sectionByTitle(t *testing.T, doc *Document, title string) show.Section {
	t.Helper()
	for _, s := range doc.Sections() {
		if s.Title == title {
			return s
		}
	}
	t.Fatalf("section %q not found", title)
	return show.Section{}
}

func TestParse_Structure(t *testing.T) {
	doc := loadSample(t)

	if doc.Title() != "Sample Deck" {
		t.Errorf("Title() = %q, want Sample Deck", doc.Title())
	}
	if doc.Dir() != "testdata" {
		t.Errorf("Dir() = %q, want testdata", doc.Dir())
	}

	var titles []string
	for _, s := range doc.Sections() {
		titles = append(titles, s.Title)
	}
	want := []string{"Introduction", "Details", "Notes", "Second", "Conclusion"}
	if !slices.Equal(titles, want) {
		t.Fatalf("Sections() titles = %v, want %v", titles, want)
	}

	second := sectionByTitle(t, doc, "Second")
	if second.Level != 2 {
		t.Errorf("Second level = %d, want 2", second.Level)
	}
	if !slices.Equal(second.Tags, []string{"slide", "extra"}) {
		t.Errorf("Second tags = %v", second.Tags)
	}
	if sectionByTitle(t, doc, "Details").HasTag("slide") {
		t.Error("Details must not inherit tags")
	}
}

func TestParse_HeadingWithoutTags(t *testing.T) {
	doc, err := Parse("inline", strings.NewReader("* Plain heading\n** With colon: inside :a:b:\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	secs := doc.Sections()
	if len(secs) != 2 {
		t.Fatalf("got %d sections, want 2", len(secs))
	}
	if secs[0].Title != "Plain heading" || len(secs[0].Tags) != 0 {
		t.Errorf("first = %+v", secs[0])
	}
	if secs[1].Title != "With colon: inside" || !slices.Equal(secs[1].Tags, []string{"a", "b"}) {
		t.Errorf("second = %+v", secs[1])
	}
}

func TestAncestors(t *testing.T) {
	doc := loadSample(t)
	second := sectionByTitle(t, doc, "Second")

	anc, err := doc.Ancestors(second.Pos)
	if err != nil {
		t.Fatalf("Ancestors() error = %v", err)
	}
	if len(anc) != 1 || anc[0].Title != "Notes" {
		t.Errorf("Ancestors() = %+v, want [Notes]", anc)
	}

	top, err := doc.Ancestors(sectionByTitle(t, doc, "Notes").Pos)
	if err != nil || len(top) != 0 {
		t.Errorf("top level Ancestors() = %v, %v", top, err)
	}
}

func TestFindFragments(t *testing.T) {
	doc := loadSample(t)
	intro := sectionByTitle(t, doc, "Introduction")

	frags := doc.FindFragments(intro, "starlark-slide")
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2", len(frags))
	}
	if !strings.Contains(frags[0].Source, "set_text_scale(2)") {
		t.Errorf("first fragment source = %q", frags[0].Source)
	}
	if frags[0].HasArg(show.OnceArg) || !frags[1].HasArg(show.OnceArg) {
		t.Errorf("once args: %v %v", frags[0].Args, frags[1].Args)
	}
	if frags[0].ID == frags[1].ID {
		t.Errorf("fragment ids must differ: %q", frags[0].ID)
	}

	// ids stay the same across queries
	again := doc.FindFragments(intro, "starlark-slide")
	if again[1].ID != frags[1].ID {
		t.Errorf("id changed between queries: %q != %q", again[1].ID, frags[1].ID)
	}

	if got := doc.FindFragments(sectionByTitle(t, doc, "Second"), "starlark-slide"); len(got) != 0 {
		t.Errorf("Second has %d presentation fragments, want 0", len(got))
	}
	if got := doc.FindFragments(sectionByTitle(t, doc, "Second"), "python"); len(got) != 1 {
		t.Errorf("Second has %d python fragments, want 1", len(got))
	}
}

func TestMediaLinksAndMath(t *testing.T) {
	doc := loadSample(t)
	intro := sectionByTitle(t, doc, "Introduction")

	if got := doc.MediaLinks(intro); !slices.Equal(got, []string{"images/diagram.svg"}) {
		t.Errorf("MediaLinks() = %v", got)
	}
	if got := doc.MediaLinks(sectionByTitle(t, doc, "Conclusion")); len(got) != 0 {
		t.Errorf("MediaLinks() for Conclusion = %v", got)
	}
	if got := doc.MathSpans(intro); !slices.Equal(got, []string{"$E = mc^2$"}) {
		t.Errorf("MathSpans() = %v", got)
	}
}

func TestSubtreeText(t *testing.T) {
	doc := loadSample(t)
	text := doc.SubtreeText(sectionByTitle(t, doc, "Notes"))
	if !strings.HasPrefix(text, "* Notes :private:\n") {
		t.Errorf("SubtreeText() starts with %q", text[:min(len(text), 30)])
	}
	if !strings.Contains(text, "** Second :slide:extra:") || strings.Contains(text, "Conclusion") {
		t.Errorf("SubtreeText() = %q", text)
	}
}

func TestRegions(t *testing.T) {
	doc := loadSample(t)

	if got := doc.TagRegions("slide", false); len(got) != 3 {
		t.Errorf("TagRegions(slide) = %v, want 3 regions", got)
	}
	if got := doc.TagRegions("slide", true); len(got) != 4 {
		t.Errorf("TagRegions(all) = %v, want 4 regions", got)
	}
	if got := doc.FragmentRegions("starlark-slide"); len(got) != 2 {
		t.Errorf("FragmentRegions() = %v, want 2 regions", got)
	}
}

func TestPositions_StaleAfterStructuralEdit(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*testing.T, *Document, show.Section) error
		stale bool
	}{
		{"set title", func(_ *testing.T, d *Document, s show.Section) error { return d.SetTitle(s.Pos, "Opening") }, false},
		{"set tags", func(_ *testing.T, d *Document, s show.Section) error { return d.SetTags(s.Pos, "slide", "draft") }, false},
		{"set body", func(_ *testing.T, d *Document, s show.Section) error { return d.SetBody(s.Pos, "New text.\n") }, false},
		{"append section", func(_ *testing.T, d *Document, _ show.Section) error {
			_, err := d.AppendSection(nil, "Appendix", "slide")
			return err
		}, true},
		{"move section", func(t *testing.T, d *Document, s show.Section) error {
			return d.MoveSection(sectionByTitle(t, d, "Conclusion").Pos, s.Pos)
		}, true},
		{"delete section", func(t *testing.T, d *Document, _ show.Section) error {
			return d.DeleteSection(sectionByTitle(t, d, "Conclusion").Pos)
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := loadSample(t)
			intro := sectionByTitle(t, doc, "Introduction")
			if err := tt.edit(t, doc, intro); err != nil {
				t.Fatalf("edit error = %v", err)
			}
			_, err := doc.Resolve(intro.Pos)
			if tt.stale && !errors.Is(err, ErrStalePosition) {
				t.Errorf("Resolve() error = %v, want ErrStalePosition", err)
			}
			if !tt.stale && err != nil {
				t.Errorf("Resolve() error = %v, want position to survive", err)
			}
		})
	}
}

func TestContentEdits(t *testing.T) {
	doc := loadSample(t)
	intro := sectionByTitle(t, doc, "Introduction")

	if err := doc.SetTitle(intro.Pos, "Opening"); err != nil {
		t.Fatal(err)
	}
	if err := doc.SetTags(intro.Pos, "slide", "draft"); err != nil {
		t.Fatal(err)
	}
	if err := doc.SetBody(intro.Pos, "See [[file:images/new.png]] now.\n"); err != nil {
		t.Fatal(err)
	}
	sec, err := doc.Resolve(intro.Pos)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if sec.Title != "Opening" || !slices.Equal(sec.Tags, []string{"slide", "draft"}) {
		t.Errorf("resolved = %+v", sec)
	}
	// Details keeps its link, body of Introduction is replaced
	if got := doc.MediaLinks(sec); !slices.Equal(got, []string{"images/new.png", "images/diagram.svg"}) {
		t.Errorf("MediaLinks() = %v", got)
	}
	if got := doc.MathSpans(sec); len(got) != 0 {
		t.Errorf("MathSpans() = %v, replaced body had the only formula", got)
	}
	if got := doc.FindFragments(sec, "starlark-slide"); len(got) != 1 || got[0].ID != "2:0" {
		t.Errorf("FindFragments() = %+v", got)
	}

	if err := doc.SetBody(intro.Pos, "text\n* Sneaky heading\n"); !errors.Is(err, ErrHeadingInBody) {
		t.Errorf("SetBody() with heading error = %v, want ErrHeadingInBody", err)
	}
}

func TestMoveSection(t *testing.T) {
	doc := loadSample(t)
	notes := sectionByTitle(t, doc, "Notes")
	intro := sectionByTitle(t, doc, "Introduction")

	if err := doc.MoveSection(notes.Pos, sectionByTitle(t, doc, "Details").Pos); err != nil {
		t.Fatalf("MoveSection() error = %v", err)
	}

	levels := make(map[string]int)
	var titles []string
	for _, s := range doc.Sections() {
		levels[s.Title] = s.Level
		titles = append(titles, s.Title)
	}
	if want := []string{"Introduction", "Details", "Notes", "Second", "Conclusion"}; !slices.Equal(titles, want) {
		t.Errorf("Sections() = %v, want %v", titles, want)
	}
	if levels["Notes"] != 3 || levels["Second"] != 4 {
		t.Errorf("moved subtree levels = Notes %d, Second %d, want 3 and 4", levels["Notes"], levels["Second"])
	}
	anc, err := doc.Ancestors(sectionByTitle(t, doc, "Second").Pos)
	if err != nil || len(anc) != 3 || anc[2].Title != "Introduction" {
		t.Errorf("Ancestors() = %+v, %v", anc, err)
	}
	if !strings.Contains(doc.SubtreeText(sectionByTitle(t, doc, "Introduction")), "**** Second :slide:extra:") {
		t.Error("moved heading is not written at its new level")
	}
	if _, err := doc.Resolve(intro.Pos); !errors.Is(err, ErrStalePosition) {
		t.Errorf("Resolve() after move error = %v, want ErrStalePosition", err)
	}
}

func TestMoveSection_UnderItself(t *testing.T) {
	doc := loadSample(t)
	notes := sectionByTitle(t, doc, "Notes")
	second := sectionByTitle(t, doc, "Second")

	for name, parent := range map[string]show.Position{"itself": notes.Pos, "descendant": second.Pos} {
		if err := doc.MoveSection(notes.Pos, parent); err == nil {
			t.Errorf("move under %s accepted", name)
		}
	}
	// rejected moves leave positions valid
	if _, err := doc.Resolve(notes.Pos); err != nil {
		t.Errorf("Resolve() after rejected move error = %v", err)
	}
	if got := sectionByTitle(t, doc, "Second").Level; got != 2 {
		t.Errorf("Second level = %d after rejected move, want 2", got)
	}
}

func TestResolve_ForeignPosition(t *testing.T) {
	a := loadSample(t)
	b := loadSample(t)
	if _, err := a.Resolve(sectionByTitle(t, b, "Introduction").Pos); !errors.Is(err, ErrForeignPosition) {
		t.Errorf("Resolve() error = %v, want ErrForeignPosition", err)
	}
}

func TestDeleteSection(t *testing.T) {
	doc := loadSample(t)
	notes := sectionByTitle(t, doc, "Notes")
	if err := doc.Narrow(notes); err != nil {
		t.Fatalf("Narrow() error = %v", err)
	}
	if err := doc.DeleteSection(notes.Pos); err != nil {
		t.Fatalf("DeleteSection() error = %v", err)
	}
	for _, s := range doc.Sections() {
		if s.Title == "Notes" || s.Title == "Second" {
			t.Errorf("section %q survived deletion", s.Title)
		}
	}
	if _, ok := doc.Narrowed(); ok {
		t.Error("view still narrowed to deleted section")
	}
}

func TestWriteTo_RoundTrip(t *testing.T) {
	doc := loadSample(t)
	buf := new(bytes.Buffer)
	if _, err := doc.WriteTo(buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	again, err := Parse("copy", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(again.Sections()) != len(doc.Sections()) || again.Title() != doc.Title() {
		t.Errorf("document changed after round trip:\n%s", buf.String())
	}
}

func TestDump(t *testing.T) {
	doc := loadSample(t)
	out := doc.Dump()

	for _, want := range []string{
		`  title: "Sample Deck"` + "\n",
		"  * Introduction [1@0]\n    tags: slide\n    block 1:0 starlark-slide",
		`      source: "set_text_scale(2)\ngreeting = \"hello\""` + "\n",
		"    ** Details [2@0]\n",
		"      block 2:0 starlark-slide :once\n",
		"      links: images/diagram.svg\n",
		"      tags: slide, extra\n",
		"      block 4:0 python",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump lacks %q:\n%s", want, out)
		}
	}

	if _, err := doc.AppendSection(nil, "Extra"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.Dump(), "* Extra [6@1]") {
		t.Error("dump does not reflect structural edit")
	}
}

const richDeck = `#+TITLE: Rich
* TODO [#A] Plan :slide:
- see [[file:img/one.png][one]] and \(a^2\)
- plain item

#+NAME: setup
#+begin_src starlark-slide :once
x = 1
#+end_src

:NOTES:
speaker notes [[file:img/hidden.png]]
:END:
| col | [[file:img/cell.png]] |
`

func TestParse_OrgConstructs(t *testing.T) {
	doc, err := Parse("rich", strings.NewReader(richDeck))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	secs := doc.Sections()
	if len(secs) != 1 || secs[0].Title != "TODO [#A] Plan" || !secs[0].HasTag("slide") {
		t.Fatalf("Sections() = %+v", secs)
	}

	frags := doc.FindFragments(secs[0], "starlark-slide")
	if len(frags) != 1 || frags[0].Source != "x = 1" || !slices.Equal(frags[0].Args, []string{show.OnceArg}) {
		t.Errorf("FindFragments() = %+v", frags)
	}
	want := []string{"img/one.png", "img/hidden.png", "img/cell.png"}
	if got := doc.MediaLinks(secs[0]); !slices.Equal(got, want) {
		t.Errorf("MediaLinks() = %v, want %v", got, want)
	}
	if got := doc.MathSpans(secs[0]); !slices.Equal(got, []string{`\(a^2\)`}) {
		t.Errorf("MathSpans() = %v", got)
	}

	doc.SetDrawersHidden(true)
	out := render(t, doc, 80)
	if strings.Contains(out, "speaker notes") {
		t.Errorf("drawer is visible:\n%s", out)
	}
	if !strings.Contains(out, "* TODO [#A] Plan :slide:") || !strings.Contains(out, "- plain item") {
		t.Errorf("output = \n%s", out)
	}
}
