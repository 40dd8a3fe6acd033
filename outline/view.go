package outline

import (
	"bufio"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/niklasfasching/go-org/org"

	"slideshow/show"
)

// narrowest text width Render would wrap to regardless of zoom
const minRenderWidth = 20

type view struct {
	narrowed      int
	folded        map[int]bool
	foldedBlocks  map[string]bool
	wrap          bool
	textScale     float64
	drawersHidden bool
	frameTitle    string
	typeset       map[int]float64
	media         map[int]map[string]string
	visibility    map[string][]show.Region
}

func newView() view {
	return view{
		folded:       make(map[int]bool),
		foldedBlocks: make(map[string]bool),
		textScale:    1,
		typeset:      make(map[int]float64),
		media:        make(map[int]map[string]string),
		visibility:   make(map[string][]show.Region),
	}
}

func (v view) clone() view {
	c := v
	c.folded = maps.Clone(v.folded)
	c.foldedBlocks = maps.Clone(v.foldedBlocks)
	c.typeset = maps.Clone(v.typeset)
	c.media = make(map[int]map[string]string, len(v.media))
	for k, m := range v.media {
		c.media[k] = maps.Clone(m)
	}
	c.visibility = make(map[string][]show.Region, len(v.visibility))
	for k, r := range v.visibility {
		c.visibility[k] = slices.Clone(r)
	}
	return c
}

// ViewState is comparable summary of how document is presented.
type ViewState struct {
	Narrowed        string
	Wrap            bool
	TextScale       float64
	DrawersHidden   bool
	FrameTitle      string
	Folded          int
	FoldedFragments int
	Typeset         int
	Media           int
	Hidden          string
}

func (d *Document) ViewState() ViewState {
	st := ViewState{
		Wrap:            d.view.wrap,
		TextScale:       d.view.textScale,
		DrawersHidden:   d.view.drawersHidden,
		FrameTitle:      d.view.frameTitle,
		Folded:          len(d.view.folded),
		FoldedFragments: len(d.view.foldedBlocks),
		Typeset:         len(d.view.typeset),
		Media:           len(d.view.media),
	}
	if n, ok := d.nodes[d.view.narrowed]; ok {
		st.Narrowed = n.title
	}
	var hidden []string
	for _, reason := range slices.Sorted(maps.Keys(d.view.visibility)) {
		for _, r := range d.view.visibility[reason] {
			hidden = append(hidden, reason+"="+r.String())
		}
	}
	st.Hidden = strings.Join(hidden, ";")
	return st
}

// Narrowed returns title of the section view is scoped to.
func (d *Document) Narrowed() (string, bool) {
	n, ok := d.nodes[d.view.narrowed]
	if !ok {
		return "", false
	}
	return n.title, true
}

// FrameTitle returns title of the display frame.
func (d *Document) FrameTitle() string {
	return d.view.frameTitle
}

// TextScale returns current zoom factor.
func (d *Document) TextScale() float64 {
	return d.view.textScale
}

func (d *Document) SaveView() show.ViewMemento {
	return d.view.clone()
}

func (d *Document) RestoreView(m show.ViewMemento) {
	if v, ok := m.(view); ok {
		d.view = v.clone()
	}
}

func (d *Document) Unfold() {
	clear(d.view.folded)
	clear(d.view.foldedBlocks)
}

// Fold collapses heading at pos.
func (d *Document) Fold(pos show.Position) error {
	n, err := d.lookup(pos)
	if err != nil {
		return err
	}
	d.view.folded[n.id] = true
	return nil
}

func (d *Document) Narrow(sec show.Section) error {
	n, err := d.lookup(sec.Pos)
	if err != nil {
		return err
	}
	d.view.narrowed = n.id
	return nil
}

func (d *Document) Widen() {
	d.view.narrowed = 0
}

func (d *Document) SetWrap(on bool) {
	d.view.wrap = on
}

func (d *Document) SetTextScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	d.view.textScale = scale
}

func (d *Document) SetDrawersHidden(hidden bool) {
	d.view.drawersHidden = hidden
}

func (d *Document) SetFrameTitle(title string) {
	d.view.frameTitle = title
}

func (d *Document) FoldFragment(f show.Fragment) {
	d.view.foldedBlocks[f.ID] = true
}

func (d *Document) RequestTypeset(sec show.Section, scale float64) {
	if n, err := d.lookup(sec.Pos); err == nil {
		d.view.typeset[n.id] = scale
	}
}

func (d *Document) RequestMediaDisplay(sec show.Section, resolved map[string]string) {
	if n, err := d.lookup(sec.Pos); err == nil {
		d.view.media[n.id] = maps.Clone(resolved)
		if d.view.media[n.id] == nil {
			d.view.media[n.id] = make(map[string]string)
		}
	}
}

func (d *Document) AddVisibilitySpec(reason string, regions []show.Region) {
	d.view.visibility[reason] = slices.Clone(regions)
}

func (d *Document) RemoveVisibilitySpec(reason string) {
	delete(d.view.visibility, reason)
}

type hiddenSet struct {
	allTags map[int]bool
	tags    map[int]map[string]bool
	blocks  map[blockRegion]bool
}

func (d *Document) hidden() hiddenSet {
	h := hiddenSet{allTags: make(map[int]bool), tags: make(map[int]map[string]bool), blocks: make(map[blockRegion]bool)}
	for _, regions := range d.view.visibility {
		for _, r := range regions {
			switch r := r.(type) {
			case tagRegion:
				if len(r.tag) == 0 {
					h.allTags[r.node] = true
					continue
				}
				if h.tags[r.node] == nil {
					h.tags[r.node] = make(map[string]bool)
				}
				h.tags[r.node][r.tag] = true
			case blockRegion:
				h.blocks[r] = true
			}
		}
	}
	return h
}

func (h hiddenSet) visibleTags(n *node) []string {
	if h.allTags[n.id] {
		return nil
	}
	var out []string
	for _, t := range n.tags {
		if !h.tags[n.id][t] {
			out = append(out, t)
		}
	}
	return out
}

// nearest returns value stored for node or its closest ancestor.
func nearest[T any](n *node, m map[int]T) (T, bool) {
	for ; n != nil; n = n.parent {
		if v, ok := m[n.id]; ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (d *Document) visibleNodes() []*node {
	var roots []*node
	if n, ok := d.nodes[d.view.narrowed]; ok {
		roots = []*node{n}
	} else {
		roots = d.root.children
	}
	var out []*node
	var walk func(n *node)
	walk = func(n *node) {
		out = append(out, n)
		if d.view.folded[n.id] {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

// Render draws visible part of the document. Text is wrapped to width divided
// by zoom factor when wrapping is on.
func (d *Document) Render(w io.Writer, width int) error {
	bw := bufio.NewWriter(w)

	if len(d.view.frameTitle) > 0 {
		bw.WriteString(d.view.frameTitle + "\n")
		bw.WriteString(strings.Repeat("=", max(min(width, len([]rune(d.view.frameTitle))), 1)) + "\n\n")
	}

	limit := width
	if d.view.textScale > 0 {
		limit = max(int(float64(width)/d.view.textScale), minRenderWidth)
	}
	emit := func(line string, wrap bool) {
		if wrap && d.view.wrap && limit > 0 {
			line = wordwrap.WrapString(line, uint(limit))
		}
		bw.WriteString(line + "\n")
	}

	if _, narrowed := d.nodes[d.view.narrowed]; !narrowed {
		for _, e := range d.preamble {
			for _, l := range e.lines {
				emit(l, true)
			}
		}
	}

	hidden := d.hidden()
	for _, n := range d.visibleNodes() {
		heading := headingLine(n, hidden.visibleTags(n))
		if d.view.folded[n.id] && (len(n.body) > 0 || len(n.children) > 0) {
			heading += " ..."
		}
		emit(heading, true)
		if d.view.folded[n.id] {
			continue
		}
		d.renderBody(n, hidden, emit)
	}
	return bw.Flush()
}

func (d *Document) renderBody(n *node, hidden hiddenSet, emit func(string, bool)) {
	media, showMedia := nearest(n, d.view.media)
	scale, typeset := nearest(n, d.view.typeset)

	blocks := make(map[int]block)
	for _, b := range scanBlocks(n) {
		blocks[b.elem] = b
	}

	for i, e := range n.body {
		if b, ok := blocks[i]; ok {
			switch {
			case hidden.blocks[blockRegion{node: n.id, block: b.index}]:
			case d.view.foldedBlocks[b.id(n)]:
				emit(strings.TrimRight(e.lines[0], " ")+" ...", false)
			default:
				for _, l := range e.lines {
					emit(l, false)
				}
			}
			continue
		}
		if d.view.drawersHidden && e.isDrawer() {
			continue
		}
		var subst []string
		if showMedia {
			for _, l := range e.mediaLinks() {
				link, _ := mediaLink(l)
				if r, ok := media[link]; ok {
					link = r
				}
				subst = append(subst, org.String(l), "[image: "+link+"]")
			}
		}
		if typeset {
			for _, m := range e.math() {
				subst = append(subst, org.String(m), "«"+org.String(m.Content...)+"»"+scaleMark(scale))
			}
		}
		r := strings.NewReplacer(subst...)
		for _, l := range e.lines {
			emit(r.Replace(l), true)
		}
	}
}

func scaleMark(scale float64) string {
	if scale == 1 {
		return ""
	}
	return "x" + strconv.FormatFloat(scale, 'g', -1, 64)
}
