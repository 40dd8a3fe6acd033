package show

import (
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestRender_Steps(t *testing.T) {
	doc := threeSlides()
	s := startSession(t, doc, WithMedia(&fakeMedia{}))
	defer s.Stop()

	if err := s.Goto(2); err != nil {
		t.Fatal(err)
	}
	if doc.narrowed != "Body" || !doc.wrap || !doc.drawers {
		t.Errorf("view not scoped: narrowed %q, wrap %v, drawers hidden %v", doc.narrowed, doc.wrap, doc.drawers)
	}
	if doc.typeset["Body"] != 4.0 {
		t.Errorf("typeset scale = %v, want 4", doc.typeset["Body"])
	}
	if got := doc.media["Body"]["a.png"]; got != "/nonexistent/generated/a.png" {
		t.Errorf("media display = %q", got)
	}
	if doc.frame != "Body [2/3]" {
		t.Errorf("frame title = %q", doc.frame)
	}
	if doc.unfolds < 2 {
		t.Errorf("Unfold called %d times, want every render", doc.unfolds)
	}
}

func TestRender_WithoutMediaPreparer(t *testing.T) {
	doc := threeSlides()
	s := startSession(t, doc)
	defer s.Stop()

	if err := s.Goto(2); err != nil {
		t.Fatal(err)
	}
	if m, ok := doc.media["Body"]; !ok || len(m) != 0 {
		t.Errorf("media display = %v, %v; want requested with nothing resolved", m, ok)
	}
}

func TestRender_NarrowFailureKeepsEarlierSteps(t *testing.T) {
	doc := threeSlides()
	s := startSession(t, doc)
	defer s.Stop()

	doc.narrowErr = errors.New("cannot narrow")
	unfolds := doc.unfolds
	if err := s.Goto(3); !errors.Is(err, doc.narrowErr) {
		t.Fatalf("Goto(3) error = %v", err)
	}
	if doc.unfolds != unfolds+1 {
		t.Error("unfold step was not applied")
	}
	if doc.frame != "Intro [1/3]" || s.Current() != 1 {
		t.Errorf("later steps ran or current moved: frame %q, current %d", doc.frame, s.Current())
	}
}

func TestFragments_DocumentOrder(t *testing.T) {
	ev := &recordingEvaluator{}
	doc := newFakeDoc("deck", fakeSection{title: "Code", tags: []string{"slide"}, level: 1, frags: []Fragment{
		frag("f1", "x=1"),
		{ID: "other", Kind: "python", Source: "x=2"},
		frag("f2", "read x"),
	}})
	s := startSession(t, doc, WithEvaluator(ev))
	defer s.Stop()

	if want := []string{"f1:set", "f2:x=1"}; !slices.Equal(ev.log, want) {
		t.Errorf("evaluation log = %v, want %v", ev.log, want)
	}
	if doc.folded["other"] || !doc.folded["f1"] || !doc.folded["f2"] {
		t.Errorf("folded fragments = %v", doc.folded)
	}

	// every render starts with fresh scope
	if err := s.Goto(1); err != nil {
		t.Fatal(err)
	}
	if ev.scopes != 2 {
		t.Errorf("scopes = %d, want 2", ev.scopes)
	}
}

func TestFragments_FailuresDoNotStopRender(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ev := &recordingEvaluator{}
	doc := newFakeDoc("deck", fakeSection{title: "Broken", tags: []string{"slide"}, level: 1, frags: []Fragment{
		frag("f1", "fail"),
		frag("f2", "panic"),
		frag("f3", "y=ok"),
	}})
	s := NewSession(testShowConfig(), zap.New(core), WithEvaluator(ev))
	if err := s.Start(doc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	res := s.LastFragments()
	if len(res) != 3 {
		t.Fatalf("got %d results, want 3", len(res))
	}
	if res[0].Err == nil || res[1].Err == nil || res[2].Err != nil {
		t.Errorf("results = %+v", res)
	}
	if !slices.Equal(ev.log, []string{"f3:set"}) {
		t.Errorf("evaluation log = %v", ev.log)
	}
	if len(doc.folded) != 3 {
		t.Errorf("folded = %v, failed fragments must be folded too", doc.folded)
	}
	if doc.frame != "Broken [1/1]" {
		t.Errorf("frame title = %q, render did not finish", doc.frame)
	}
	if got := logs.FilterMessage("Fragment evaluation failed").Len(); got != 2 {
		t.Errorf("logged %d failures, want 2", got)
	}
}

func TestFragments_Once(t *testing.T) {
	ev := &recordingEvaluator{}
	doc := newFakeDoc("deck",
		fakeSection{title: "Counter", tags: []string{"slide"}, level: 1, frags: []Fragment{
			frag("once", "n=1", OnceArg),
			frag("always", "read n"),
		}},
		slideSec("Next"),
	)
	s := startSession(t, doc, WithEvaluator(ev))

	if err := s.Goto(2); err != nil {
		t.Fatal(err)
	}
	if err := s.Goto(1); err != nil {
		t.Fatal(err)
	}
	res := s.LastFragments()
	if len(res) != 2 || !res[0].Skipped || res[1].Skipped {
		t.Errorf("results on revisit = %+v", res)
	}
	want := []string{"once:set", "always:n=1", "always:n=<unset>"}
	if !slices.Equal(ev.log, want) {
		t.Errorf("evaluation log = %v, want %v", ev.log, want)
	}
	if !doc.folded["once"] {
		t.Error("skipped fragment is not folded")
	}

	// new show runs it again
	s.Stop()
	if err := s.Start(doc); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()
	if got := ev.log[len(ev.log)-2]; got != "once:set" {
		t.Errorf("once fragment not evaluated in new show, log = %v", ev.log)
	}
}

func TestFrameTitle(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "default", template: "", want: "Intro [1/3]"},
		{name: "custom", template: `{{ .Ordinal }} of {{ .Total }}: {{ .Title | upper }} ({{ .Document }})`, want: "1 of 3: INTRO (deck)"},
		{name: "broken", template: `{{ .Title `, want: "Intro [1/3]"},
		{name: "failing", template: `{{ .Missing }}`, want: "Intro [1/3]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testShowConfig()
			cfg.TitleTemplate = tt.template
			doc := threeSlides()
			s := NewSession(cfg, zaptest.NewLogger(t))
			if err := s.Start(doc); err != nil {
				t.Fatal(err)
			}
			defer s.Stop()
			if doc.frame != tt.want {
				t.Errorf("frame title = %q, want %q", doc.frame, tt.want)
			}
		})
	}
}
