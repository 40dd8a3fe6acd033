package outline

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/niklasfasching/go-org/org"
	"go.uber.org/zap"
)

// ErrHeadingInBody is returned when text set as heading body would start a
// new heading.
var ErrHeadingInBody = errors.New("body text must not contain headings")

// element is one top level construct of a heading body: paragraph, drawer,
// source block, list and so on. Lines keep its printed org form.
type element struct {
	ast   org.Node
	lines []string
}

func newElement(n org.Node) element {
	return element{ast: n, lines: strings.Split(strings.TrimSuffix(org.String(n), "\n"), "\n")}
}

func (d *Document) parser() *org.Configuration {
	c := org.New()
	c.Log = zap.NewStdLog(d.log.Named("org"))
	return c
}

// build fills document tree from parsed org nodes.
func (d *Document) build(parsed *org.Document) {
	d.title = parsed.Get("TITLE")
	for _, n := range parsed.Nodes {
		if h, ok := n.(org.Headline); ok {
			d.adoptHeadline(d.root, h)
			continue
		}
		d.preamble = append(d.preamble, newElement(n))
	}
}

func (d *Document) adoptHeadline(parent *node, h org.Headline) {
	n := d.newNode(h.Lvl, headlineTitle(h), slices.Clone(h.Tags))
	parent.adopt(n)
	if h.Properties != nil {
		n.body = append(n.body, newElement(*h.Properties))
	}
	for _, c := range h.Children {
		if sub, ok := c.(org.Headline); ok {
			d.adoptHeadline(n, sub)
			continue
		}
		n.body = append(n.body, newElement(c))
	}
}

// headlineTitle keeps todo keyword, priority and comment marker as part of
// the title so they survive writing the document back.
func headlineTitle(h org.Headline) string {
	var parts []string
	if len(h.Status) > 0 {
		parts = append(parts, h.Status)
	}
	if len(h.Priority) > 0 {
		parts = append(parts, "[#"+h.Priority+"]")
	}
	if h.IsComment {
		parts = append(parts, "COMMENT")
	}
	return strings.Join(append(parts, strings.TrimSpace(org.String(h.Title...))), " ")
}

// parseBody turns text into body elements of a single heading.
func (d *Document) parseBody(text string) ([]element, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, nil
	}
	parsed := d.parser().Parse(strings.NewReader(text), d.name)
	if parsed.Error != nil {
		return nil, fmt.Errorf("unable to parse body: %w", parsed.Error)
	}
	var out []element
	for _, n := range parsed.Nodes {
		if _, ok := n.(org.Headline); ok {
			return nil, ErrHeadingInBody
		}
		out = append(out, newElement(n))
	}
	return out, nil
}

func isRawBlock(name string) bool {
	return name == "SRC" || name == "EXAMPLE" || name == "EXPORT"
}

// inspect calls fn for n and everything nested in it. Content of raw blocks
// and math is not descended into.
func inspect(n org.Node, fn func(org.Node)) {
	fn(n)
	var kids []org.Node
	switch n := n.(type) {
	case org.Paragraph:
		kids = n.Children
	case org.Emphasis:
		kids = n.Content
	case org.RegularLink:
		kids = n.Description
	case org.List:
		kids = n.Items
	case org.ListItem:
		kids = n.Children
	case org.DescriptiveListItem:
		kids = append(slices.Clone(n.Term), n.Details...)
	case org.Table:
		for _, r := range n.Rows {
			for _, c := range r.Columns {
				kids = append(kids, c.Children...)
			}
		}
	case org.Drawer:
		kids = n.Children
	case org.FootnoteDefinition:
		kids = n.Children
	case org.NodeWithName:
		kids = []org.Node{n.Node}
	case org.NodeWithMeta:
		kids = []org.Node{n.Node}
	case org.Block:
		if !isRawBlock(n.Name) {
			kids = n.Children
		}
	}
	for _, k := range kids {
		inspect(k, fn)
	}
}

// mediaLink returns path of file link.
func mediaLink(n org.Node) (string, bool) {
	l, ok := n.(org.RegularLink)
	if !ok || l.Protocol != "file" {
		return "", false
	}
	return strings.TrimPrefix(l.URL, "file:"), true
}

func (e element) mediaLinks() (out []org.RegularLink) {
	inspect(e.ast, func(n org.Node) {
		if _, ok := mediaLink(n); ok {
			out = append(out, n.(org.RegularLink))
		}
	})
	return out
}

func (e element) math() (out []org.LatexFragment) {
	inspect(e.ast, func(n org.Node) {
		if m, ok := n.(org.LatexFragment); ok {
			out = append(out, m)
		}
	})
	return out
}

func (e element) isDrawer() bool {
	switch e.ast.(type) {
	case org.Drawer, org.PropertyDrawer:
		return true
	}
	return false
}

func (n *node) lines() []string {
	var out []string
	for _, e := range n.body {
		out = append(out, e.lines...)
	}
	return out
}
