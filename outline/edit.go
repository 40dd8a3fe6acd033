package outline

import (
	"bufio"
	"fmt"
	"io"
	"slices"

	"slideshow/show"
)

// Edits which add or remove headings bump document generation and invalidate
// every position handed out before. Content edits keep positions valid.

// AppendSection adds heading as the last child of parent, nil parent adds top
// level heading.
func (d *Document) AppendSection(parent show.Position, title string, tags ...string) (show.Section, error) {
	p := d.root
	if parent != nil {
		n, err := d.lookup(parent)
		if err != nil {
			return show.Section{}, err
		}
		p = n
	}
	n := d.newNode(p.level+1, title, slices.Clone(tags))
	p.adopt(n)
	d.gen++
	return d.section(n), nil
}

// DeleteSection removes heading together with its subtree.
func (d *Document) DeleteSection(pos show.Position) error {
	n, err := d.lookup(pos)
	if err != nil {
		return err
	}
	n.walk(func(c *node) {
		delete(d.nodes, c.id)
		delete(d.view.folded, c.id)
		delete(d.view.typeset, c.id)
		delete(d.view.media, c.id)
		if d.view.narrowed == c.id {
			d.view.narrowed = 0
		}
	})
	n.parent.children = slices.DeleteFunc(n.parent.children, func(c *node) bool { return c == n })
	n.parent = nil
	d.gen++
	return nil
}

// MoveSection makes heading the last child of parent, nil parent moves it to
// the top level. Levels of the moved subtree are adjusted.
func (d *Document) MoveSection(pos, parent show.Position) error {
	n, err := d.lookup(pos)
	if err != nil {
		return err
	}
	p := d.root
	if parent != nil {
		if p, err = d.lookup(parent); err != nil {
			return err
		}
	}
	for a := p; a != nil; a = a.parent {
		if a == n {
			return fmt.Errorf("unable to move %q under itself", n.title)
		}
	}
	n.parent.children = slices.DeleteFunc(n.parent.children, func(c *node) bool { return c == n })
	p.adopt(n)
	shift := p.level + 1 - n.level
	n.walk(func(c *node) {
		c.level += shift
	})
	d.gen++
	return nil
}

// SetTitle renames heading.
func (d *Document) SetTitle(pos show.Position, title string) error {
	n, err := d.lookup(pos)
	if err != nil {
		return err
	}
	n.title = title
	return nil
}

// SetTags replaces heading tags.
func (d *Document) SetTags(pos show.Position, tags ...string) error {
	n, err := d.lookup(pos)
	if err != nil {
		return err
	}
	n.tags = slices.Clone(tags)
	return nil
}

// SetBody replaces text between heading and its first child. Text is parsed
// as org and must not contain headings.
func (d *Document) SetBody(pos show.Position, text string) error {
	n, err := d.lookup(pos)
	if err != nil {
		return err
	}
	body, err := d.parseBody(text)
	if err != nil {
		return err
	}
	n.body = body
	return nil
}

// WriteTo writes document source, the view does not affect it.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	for _, e := range d.preamble {
		for _, l := range e.lines {
			fmt.Fprintln(cw, l)
		}
	}
	for _, top := range d.root.children {
		top.walk(func(n *node) {
			fmt.Fprintln(cw, headingLine(n, n.tags))
			for _, l := range n.lines() {
				fmt.Fprintln(cw, l)
			}
		})
	}
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
