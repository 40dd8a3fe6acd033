// Package debug has helpers producing human readable dumps of internal
// structures.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxText limits quoted text blocks, longer values are cut and marked.
const MaxText = 60

// TreeWriter accumulates indented lines, two spaces per depth level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes label and quoted value, empty values are left out
// entirely.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	if len(value) == 0 {
		return
	}
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// List writes label followed by comma separated values, nothing is written
// for empty list.
func (tw TreeWriter) List(depth int, label string, values []string) {
	if len(values) == 0 {
		return
	}
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(strings.Join(values, ", "))
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if utf8.RuneCountInString(raw) <= MaxText {
		return strconv.Quote(raw)
	}
	runes := []rune(raw)
	return strconv.Quote(string(runes[:MaxText])) + "..."
}
