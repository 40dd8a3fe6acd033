package outline

import (
	"strings"

	"github.com/niklasfasching/go-org/org"

	"slideshow/utils/debug"
)

// Dump describes complete document structure: every heading with its
// position and tags, source blocks, media links and math.
func (d *Document) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "document %q generation %d", d.name, d.gen)
	tw.TextBlock(1, "title", d.title)

	for _, top := range d.root.children {
		top.walk(func(n *node) {
			depth := n.level
			tw.Line(depth, "%s %s [%s]", strings.Repeat("*", n.level), n.title, d.position(n))
			tw.List(depth+1, "tags", n.tags)
			for _, b := range scanBlocks(n) {
				tw.Line(depth+1, "block %s %s %s", b.id(n), b.kind, strings.Join(b.args, " "))
				tw.TextBlock(depth+2, "source", b.source)
			}
			var links, math []string
			for _, e := range n.body {
				for _, l := range e.mediaLinks() {
					link, _ := mediaLink(l)
					links = append(links, link)
				}
				for _, m := range e.math() {
					math = append(math, org.String(m))
				}
			}
			tw.List(depth+1, "links", links)
			tw.List(depth+1, "math", math)
		})
	}
	return tw.String()
}
