// Package outline implements an org style outline document: nested headings
// with tags, drawers, source blocks and file links. Document keeps a view of
// itself (narrowing, folding, hidden regions, zoom) and satisfies
// show.Document.
package outline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/niklasfasching/go-org/org"
	"go.uber.org/zap"

	"slideshow/show"
)

var (
	ErrStalePosition   = errors.New("position is stale")
	ErrForeignPosition = errors.New("position belongs to another document")
)

type node struct {
	id       int
	level    int
	title    string
	tags     []string
	body     []element
	parent   *node
	children []*node
}

// Position points to a heading. It survives body, title and tag edits and
// goes stale once sections are added or removed.
type Position struct {
	doc *Document
	id  int
	gen int
}

func (p Position) String() string {
	return fmt.Sprintf("%d@%d", p.id, p.gen)
}

// Document is a parsed outline together with its view state.
type Document struct {
	name     string
	dir      string
	title    string
	preamble []element
	root     *node
	nodes    map[int]*node
	nextID   int
	gen      int

	log     *zap.Logger
	display *Display
	view    view
}

type Option func(*Document)

// WithDisplay makes document use shared display settings.
func WithDisplay(d *Display) Option {
	return func(doc *Document) {
		doc.display = d
	}
}

// WithLogger sets logger parser warnings go to.
func WithLogger(log *zap.Logger) Option {
	return func(doc *Document) {
		doc.log = log
	}
}

// Load reads outline from file. Relative media links are resolved against
// file directory.
func Load(path string, opts ...Option) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open document: %w", err)
	}
	defer f.Close()

	doc, err := Parse(path, f, opts...)
	if err != nil {
		return nil, err
	}
	doc.dir = filepath.Dir(path)
	return doc, nil
}

// Parse reads outline text.
func Parse(name string, r io.Reader, opts ...Option) (*Document, error) {
	d := &Document{
		name:  name,
		root:  &node{},
		nodes: make(map[int]*node),
		view:  newView(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.display == nil {
		d.display = NewDisplay()
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}

	parsed := d.parser().Parse(r, name)
	if parsed.Error != nil {
		return nil, fmt.Errorf("unable to read document %q: %w", name, parsed.Error)
	}
	d.build(parsed)
	return d, nil
}

func (d *Document) newNode(level int, title string, tags []string) *node {
	d.nextID++
	n := &node{id: d.nextID, level: level, title: title, tags: tags}
	d.nodes[n.id] = n
	return n
}

func (n *node) adopt(child *node) {
	child.parent = n
	n.children = append(n.children, child)
}

func (n *node) walk(fn func(*node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *node) hasTag(tag string) bool {
	for _, t := range n.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Name returns document name, for loaded documents it is file path.
func (d *Document) Name() string {
	return d.name
}

// Title returns value of #+TITLE keyword.
func (d *Document) Title() string {
	return d.title
}

// Dir returns directory relative media links are resolved against.
func (d *Document) Dir() string {
	return d.dir
}

func (d *Document) position(n *node) Position {
	return Position{doc: d, id: n.id, gen: d.gen}
}

func (d *Document) section(n *node) show.Section {
	return show.Section{
		Title: n.title,
		Tags:  append([]string(nil), n.tags...),
		Level: n.level,
		Pos:   d.position(n),
	}
}

func (d *Document) lookup(pos show.Position) (*node, error) {
	p, ok := pos.(Position)
	if !ok || p.doc != d {
		return nil, ErrForeignPosition
	}
	n, ok := d.nodes[p.id]
	if !ok || p.gen != d.gen {
		return nil, fmt.Errorf("%w: %s, document is at generation %d", ErrStalePosition, p, d.gen)
	}
	return n, nil
}

// Sections returns all headings in document order.
func (d *Document) Sections() []show.Section {
	var out []show.Section
	for _, top := range d.root.children {
		top.walk(func(n *node) {
			out = append(out, d.section(n))
		})
	}
	return out
}

func (d *Document) Resolve(pos show.Position) (show.Section, error) {
	n, err := d.lookup(pos)
	if err != nil {
		return show.Section{}, err
	}
	return d.section(n), nil
}

func (d *Document) Ancestors(pos show.Position) ([]show.Section, error) {
	n, err := d.lookup(pos)
	if err != nil {
		return nil, err
	}
	var out []show.Section
	for p := n.parent; p != nil && p != d.root; p = p.parent {
		out = append(out, d.section(p))
	}
	return out, nil
}

func (d *Document) subtree(sec show.Section) []*node {
	n, err := d.lookup(sec.Pos)
	if err != nil {
		return nil
	}
	var out []*node
	n.walk(func(c *node) {
		out = append(out, c)
	})
	return out
}

func headingLine(n *node, tags []string) string {
	line := strings.Repeat("*", n.level) + " " + n.title
	if len(tags) > 0 {
		line += " :" + strings.Join(tags, ":") + ":"
	}
	return line
}

// SubtreeText returns source text of section including nested sections.
func (d *Document) SubtreeText(sec show.Section) string {
	var b strings.Builder
	for _, n := range d.subtree(sec) {
		b.WriteString(headingLine(n, n.tags))
		b.WriteByte('\n')
		for _, l := range n.lines() {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FindFragments returns source blocks of kind in section subtree in document
// order.
func (d *Document) FindFragments(sec show.Section, kind string) []show.Fragment {
	var out []show.Fragment
	for _, n := range d.subtree(sec) {
		for _, b := range scanBlocks(n) {
			if strings.EqualFold(b.kind, kind) {
				out = append(out, b.fragment(n))
			}
		}
	}
	return out
}

// MediaLinks returns unique file links of section subtree in document order.
func (d *Document) MediaLinks(sec show.Section) []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, n := range d.subtree(sec) {
		for _, e := range n.body {
			for _, l := range e.mediaLinks() {
				link, _ := mediaLink(l)
				if !seen[link] {
					seen[link] = true
					out = append(out, link)
				}
			}
		}
	}
	return out
}

// MathSpans returns math fragments of section subtree.
func (d *Document) MathSpans(sec show.Section) []string {
	var out []string
	for _, n := range d.subtree(sec) {
		for _, e := range n.body {
			for _, m := range e.math() {
				out = append(out, org.String(m))
			}
		}
	}
	return out
}

func (d *Document) TagRegions(tag string, all bool) []show.Region {
	var out []show.Region
	for _, top := range d.root.children {
		top.walk(func(n *node) {
			switch {
			case all && len(n.tags) > 0:
				out = append(out, tagRegion{node: n.id})
			case !all && n.hasTag(tag):
				out = append(out, tagRegion{node: n.id, tag: tag})
			}
		})
	}
	return out
}

func (d *Document) FragmentRegions(kind string) []show.Region {
	var out []show.Region
	for _, top := range d.root.children {
		top.walk(func(n *node) {
			for _, b := range scanBlocks(n) {
				if strings.EqualFold(b.kind, kind) {
					out = append(out, blockRegion{node: n.id, block: b.index})
				}
			}
		})
	}
	return out
}

func (d *Document) GetGlobalDisplay(name string) (any, bool) {
	return d.display.Get(name)
}

func (d *Document) SetGlobalDisplay(name string, value any) {
	d.display.Set(name, value)
}

func (d *Document) DeleteGlobalDisplay(name string) {
	d.display.Delete(name)
}

// Display returns display settings document uses.
func (d *Document) Display() *Display {
	return d.display
}
