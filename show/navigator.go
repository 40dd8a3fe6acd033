package show

import (
	"go.uber.org/zap"
)

// Notice is reported when navigation hits a boundary of the show. It is not
// an error - the show stays where it was.
type Notice int

const (
	NoticeNone Notice = iota
	NoticeEndOfShow
	NoticeStartOfShow
)

func (n Notice) String() string {
	switch n {
	case NoticeEndOfShow:
		return "end of show"
	case NoticeStartOfShow:
		return "start of show"
	default:
		return ""
	}
}

// Next moves to the following slide. On the last slide it renders the
// current slide again and reports end of show.
func (s *Session) Next() (Notice, error) {
	if err := s.running(); err != nil {
		return NoticeNone, err
	}
	if s.current+1 <= s.index.Len() {
		return NoticeNone, s.show(s.current + 1)
	}
	return s.boundary(NoticeEndOfShow)
}

// Previous moves to the preceding slide. On the first slide it renders it
// again and reports start of show.
func (s *Session) Previous() (Notice, error) {
	if err := s.running(); err != nil {
		return NoticeNone, err
	}
	if s.current-1 >= 1 {
		return NoticeNone, s.show(s.current - 1)
	}
	return s.boundary(NoticeStartOfShow)
}

func (s *Session) boundary(n Notice) (Notice, error) {
	if err := s.show(s.current); err != nil {
		return NoticeNone, err
	}
	s.log.Info("Nowhere to go", zap.Stringer("notice", n), zap.Int("slide", s.current))
	return n, nil
}

// Goto moves to slide n. Invalid n leaves the show where it was.
func (s *Session) Goto(n int) error {
	if err := s.running(); err != nil {
		return err
	}
	if _, err := s.index.Slide(n); err != nil {
		return err
	}
	return s.show(n)
}

// OpenAt rebuilds the index and moves to the slide sec belongs to. Section
// title is looked up first, then titles of enclosing slides.
func (s *Session) OpenAt(sec Section) error {
	if err := s.running(); err != nil {
		return err
	}
	if err := s.reindex(); err != nil {
		return err
	}

	n, ok := s.index.Lookup(sec.Title)
	if !ok {
		ancestors, err := s.doc.Ancestors(sec.Pos)
		if err != nil {
			s.log.Debug("Unable to get enclosing sections", zap.String("title", sec.Title), zap.Error(err))
		}
		for _, a := range ancestors {
			if !a.HasTag(s.cfg.SlideTag) {
				continue
			}
			if n, ok = s.index.Lookup(a.Title); ok {
				break
			}
		}
	}
	if !ok {
		return &UnknownSlideError{Title: sec.Title}
	}
	return s.show(n)
}

// Rebuild replaces the index after document was edited and renders the
// current slide again. Current ordinal is kept when still valid.
func (s *Session) Rebuild() error {
	if err := s.running(); err != nil {
		return err
	}
	if err := s.reindex(); err != nil {
		return err
	}
	return s.show(min(max(s.current, 1), s.index.Len()))
}

func (s *Session) reindex() error {
	index, err := BuildIndex(s.doc, s.cfg.SlideTag, s.log)
	if err != nil {
		return err
	}
	s.index = index
	s.hideRegions()
	if s.current > index.Len() {
		s.current = index.Len()
	}
	return nil
}

// show renders slide n and makes it current.
func (s *Session) show(n int) error {
	slide, err := s.index.Slide(n)
	if err != nil {
		return err
	}
	results, err := s.render.render(slide, s.index.Len())
	if err != nil {
		return err
	}
	s.current, s.results = n, results
	return nil
}
