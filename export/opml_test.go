package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/beevik/etree"

	"slideshow/show"
)

func TestOPML(t *testing.T) {
	slides := []show.Slide{
		{Ordinal: 1, Title: "Intro", Level: 1},
		{Ordinal: 2, Title: "Details & more", Level: 2},
		{Ordinal: 3, Title: "Deep", Level: 3},
		{Ordinal: 4, Title: "Sibling", Level: 2},
		{Ordinal: 5, Title: "End", Level: 1},
	}

	buf := new(bytes.Buffer)
	if err := OPML(buf, "Deck", slides, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("OPML() error = %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(buf.Bytes()); err != nil {
		t.Fatalf("output is not XML: %v\n%s", err, buf.String())
	}

	if got := doc.FindElement("/opml/head/title").Text(); got != "Deck" {
		t.Errorf("title = %q, want Deck", got)
	}

	top := doc.FindElements("/opml/body/outline")
	if len(top) != 2 {
		t.Fatalf("got %d top level outlines, want 2", len(top))
	}
	if top[0].SelectAttrValue("text", "") != "Intro" || top[1].SelectAttrValue("text", "") != "End" {
		t.Errorf("unexpected top level: %s, %s", top[0].SelectAttrValue("text", ""), top[1].SelectAttrValue("text", ""))
	}

	children := top[0].SelectElements("outline")
	if len(children) != 2 {
		t.Fatalf("Intro has %d children, want 2", len(children))
	}
	if children[0].SelectAttrValue("text", "") != "Details & more" {
		t.Errorf("escaped title not preserved: %q", children[0].SelectAttrValue("text", ""))
	}
	if deep := children[0].SelectElements("outline"); len(deep) != 1 || deep[0].SelectAttrValue("ordinal", "") != "3" {
		t.Errorf("Deep is not nested under Details")
	}
}

func TestOPML_LevelGap(t *testing.T) {
	// a deeper slide without shallower predecessor stays at the top
	slides := []show.Slide{
		{Ordinal: 1, Title: "Second level first", Level: 2},
		{Ordinal: 2, Title: "Top", Level: 1},
	}
	buf := new(bytes.Buffer)
	if err := OPML(buf, "Deck", slides, time.Now()); err != nil {
		t.Fatalf("OPML() error = %v", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(buf.Bytes()); err != nil {
		t.Fatal(err)
	}
	if n := len(doc.FindElements("/opml/body/outline")); n != 2 {
		t.Errorf("got %d top level outlines, want 2", n)
	}
}
