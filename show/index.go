package show

import (
	"fmt"

	"go.uber.org/zap"
)

// Slide is a tagged section of the document.
type Slide struct {
	// Ordinal is 1 based and valid until the index is rebuilt.
	Ordinal int
	// Title as it was when the index was built.
	Title string
	Level int
	Pos   Position
}

// Index is the ordered list of slides of a single document. It is never
// patched, any change means building a new one.
type Index struct {
	slides  []Slide
	ordinal map[string]int
}

// BuildIndex scans every section of the document in order and collects ones
// tagged with tag. Having no slides is an error.
func BuildIndex(doc Outline, tag string, log *zap.Logger) (*Index, error) {
	idx := &Index{ordinal: make(map[string]int)}

	for _, sec := range doc.Sections() {
		if !sec.HasTag(tag) {
			continue
		}
		s := Slide{
			Ordinal: len(idx.slides) + 1,
			Title:   sec.Title,
			Level:   sec.Level,
			Pos:     sec.Pos,
		}
		if prev, exists := idx.ordinal[s.Title]; exists {
			// NOTE: duplicate titles are not supported, the last one wins
			log.Debug("Duplicate slide title, lookup will use the later slide",
				zap.String("title", s.Title), zap.Int("was", prev), zap.Int("now", s.Ordinal))
		}
		idx.ordinal[s.Title] = s.Ordinal
		idx.slides = append(idx.slides, s)
	}

	if len(idx.slides) == 0 {
		return nil, fmt.Errorf("%w: no sections tagged %q in %q", ErrEmptyShow, tag, doc.Name())
	}
	return idx, nil
}

// Len returns number of slides.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.slides)
}

// Slide returns slide by ordinal.
func (idx *Index) Slide(n int) (Slide, error) {
	if n < 1 || n > idx.Len() {
		return Slide{}, &OutOfRangeError{Requested: n, Total: idx.Len()}
	}
	return idx.slides[n-1], nil
}

// Lookup resolves title to ordinal.
func (idx *Index) Lookup(title string) (int, bool) {
	if idx == nil {
		return 0, false
	}
	n, ok := idx.ordinal[title]
	return n, ok
}

// Slides returns copy of all slides in order.
func (idx *Index) Slides() []Slide {
	if idx == nil {
		return nil
	}
	return append([]Slide(nil), idx.slides...)
}
