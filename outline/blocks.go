package outline

import (
	"fmt"
	"strings"

	"github.com/niklasfasching/go-org/org"

	"slideshow/show"
)

// block is a source block in the body of a heading, elem is its body element
// index.
type block struct {
	index  int
	elem   int
	kind   string
	args   []string
	source string
}

func (b block) id(n *node) string {
	return fmt.Sprintf("%d:%d", n.id, b.index)
}

func (b block) fragment(n *node) show.Fragment {
	return show.Fragment{
		ID:     b.id(n),
		Kind:   b.kind,
		Args:   append([]string(nil), b.args...),
		Source: b.source,
	}
}

// srcBlock unwraps named source block.
func srcBlock(n org.Node) (org.Block, bool) {
	switch w := n.(type) {
	case org.NodeWithName:
		n = w.Node
	case org.NodeWithMeta:
		n = w.Node
	}
	b, ok := n.(org.Block)
	return b, ok && b.Name == "SRC"
}

func scanBlocks(n *node) []block {
	var out []block
	for i, e := range n.body {
		sb, ok := srcBlock(e.ast)
		if !ok {
			continue
		}
		b := block{index: len(out), elem: i, source: strings.TrimSuffix(org.String(sb.Children...), "\n")}
		for j, p := range sb.Parameters {
			switch {
			case len(p) == 0:
			case j == 0 && !strings.HasPrefix(p, ":"):
				b.kind = p
			default:
				b.args = append(b.args, p)
			}
		}
		out = append(out, b)
	}
	return out
}

// tagRegion is tag text of a heading, empty tag means all tags.
type tagRegion struct {
	node int
	tag  string
}

func (r tagRegion) String() string {
	if len(r.tag) == 0 {
		return fmt.Sprintf("tags of %d", r.node)
	}
	return fmt.Sprintf("tag %q of %d", r.tag, r.node)
}

// blockRegion is a complete source block.
type blockRegion struct {
	node  int
	block int
}

func (r blockRegion) String() string {
	return fmt.Sprintf("block %d:%d", r.node, r.block)
}
