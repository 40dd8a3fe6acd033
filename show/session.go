package show

import (
	"go.uber.org/zap"

	"slideshow/config"
)

// State of the show lifecycle.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Visibility spec reasons owned by the show.
const (
	reasonTags      = "show/tags"
	reasonFragments = "show/fragments"
)

// Session is a single slide show. All methods are expected to be called from
// one goroutine.
type Session struct {
	cfg   *config.ShowConfig
	log   *zap.Logger
	eval  Evaluator
	media MediaPreparer

	state   State
	doc     Document
	index   *Index
	current int
	snap    *Snapshot
	arts    *Artifacts
	render  *renderer
	hidden  []string
	results []FragmentResult
}

type Option func(*Session)

// WithEvaluator sets evaluator for presentation fragments. Without it
// fragments are not executed.
func WithEvaluator(e Evaluator) Option {
	return func(s *Session) {
		s.eval = e
	}
}

// WithMedia sets media preparer. Without it media links are displayed as is.
func WithMedia(m MediaPreparer) Option {
	return func(s *Session) {
		s.media = m
	}
}

func NewSession(cfg *config.ShowConfig, log *zap.Logger, opts ...Option) *Session {
	s := &Session{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the show of doc positioned at the first slide. Starting the
// document which is already being shown resets the show.
func (s *Session) Start(doc Document) error {
	if s.state == Running {
		if s.doc != doc {
			return &AlreadyRunningError{Running: s.doc.Name(), Requested: doc.Name()}
		}
		s.log.Info("Restarting show", zap.String("document", doc.Name()))
		s.Stop()
	}

	s.doc = doc
	s.snap = &Snapshot{}
	s.snap.captureView(doc)
	for _, st := range presentationSettings(s.cfg) {
		s.snap.apply(doc, st.name, st.value)
	}

	index, err := BuildIndex(doc, s.cfg.SlideTag, s.log)
	if err != nil {
		s.Stop()
		return err
	}
	s.index = index
	s.arts = NewArtifacts()
	s.render = &renderer{
		doc:   doc,
		cfg:   s.cfg,
		media: s.media,
		arts:  s.arts,
		exec:  newExecutor(s.eval, s.cfg.FragmentKind, s.snap, s.log.Named("fragments")),
		title: parseTitleTemplate(s.cfg.TitleTemplate, s.log),
		log:   s.log.Named("render"),
	}
	s.hideRegions()
	s.state = Running

	s.log.Info("Show started", zap.String("document", doc.Name()), zap.Int("slides", index.Len()), zap.Stringer("hide", s.cfg.HideTags))
	if err := s.Goto(1); err != nil {
		s.Stop()
		return err
	}
	return nil
}

// hideRegions (re)applies visibility specs, regions change when document is
// edited so this is done on every index rebuild.
func (s *Session) hideRegions() {
	s.hide(reasonTags, s.doc.TagRegions(s.cfg.SlideTag, s.cfg.HideTags.HidesAll()))
	s.hide(reasonFragments, s.doc.FragmentRegions(s.cfg.FragmentKind))
}

func (s *Session) hide(reason string, regions []Region) {
	s.doc.AddVisibilitySpec(reason, regions)
	for _, r := range s.hidden {
		if r == reason {
			return
		}
	}
	s.hidden = append(s.hidden, reason)
}

// Stop ends the show and puts everything back as it was before Start. It is
// safe to call at any time, including after a failed Start, and never fails:
// cleanup problems are logged.
func (s *Session) Stop() {
	if s.doc == nil {
		return
	}

	for i := len(s.hidden) - 1; i >= 0; i-- {
		s.doc.RemoveVisibilitySpec(s.hidden[i])
	}
	if s.snap != nil {
		s.snap.restore(s.doc)
	}
	if s.arts != nil {
		count := s.arts.Len()
		if err := s.arts.Drain(); err != nil {
			s.log.Warn("Unable to clean up generated files", zap.Error(err))
		} else if count > 0 {
			s.log.Debug("Generated files removed", zap.Int("count", count))
		}
	}

	if s.state == Running {
		s.log.Info("Show stopped", zap.String("document", s.doc.Name()))
	}
	s.state = Stopped
	s.doc = nil
	s.index = nil
	s.current = 0
	s.snap = nil
	s.arts = nil
	s.render = nil
	s.hidden = nil
	s.results = nil
}

func (s *Session) State() State {
	return s.state
}

// Document returns document being shown or nil.
func (s *Session) Document() Document {
	return s.doc
}

// Current returns ordinal of the current slide, 0 when stopped.
func (s *Session) Current() int {
	return s.current
}

// Total returns number of slides, 0 when stopped.
func (s *Session) Total() int {
	return s.index.Len()
}

// Artifacts returns files generated so far, nil when stopped.
func (s *Session) Artifacts() *Artifacts {
	return s.arts
}

// LastFragments returns results of fragment evaluation during the last render.
func (s *Session) LastFragments() []FragmentResult {
	return s.results
}

// Slides lists slides of the running show.
func (s *Session) Slides() ([]Slide, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	return s.index.Slides(), nil
}

func (s *Session) running() error {
	if s.state != Running {
		return ErrNotRunning
	}
	return nil
}
