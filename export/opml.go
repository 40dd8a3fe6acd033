// Package export writes slide lists in formats other tools understand.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"slideshow/show"
)

// OPML writes slides as OPML 2.0 outline. Slides are nested under the closest
// preceding slide of a lower level, so the result mirrors document structure
// without sections which are not slides.
func OPML(w io.Writer, title string, slides []show.Slide, created time.Time) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	opml := doc.CreateElement("opml")
	opml.CreateAttr("version", "2.0")

	head := opml.CreateElement("head")
	head.CreateElement("title").SetText(title)
	head.CreateElement("dateCreated").SetText(created.UTC().Format(time.RFC1123Z))

	body := opml.CreateElement("body")

	type open struct {
		level int
		el    *etree.Element
	}
	stack := []open{{level: 0, el: body}}
	for _, s := range slides {
		for len(stack) > 1 && stack[len(stack)-1].level >= s.Level {
			stack = stack[:len(stack)-1]
		}
		el := stack[len(stack)-1].el.CreateElement("outline")
		el.CreateAttr("text", s.Title)
		el.CreateAttr("ordinal", strconv.Itoa(s.Ordinal))
		stack = append(stack, open{level: s.Level, el: el})
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write OPML: %w", err)
	}
	return nil
}
