// Package debug has helpers producing human readable dumps of internal
// structures for debug logs.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

const indent = "  "

// TreeWriter accumulates indented lines of a tree dump.
type TreeWriter struct {
	sb strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{}
}

func (tw *TreeWriter) String() string {
	return tw.sb.String()
}

func (tw *TreeWriter) pad(depth int) {
	tw.sb.WriteString(strings.Repeat(indent, max(depth, 0)))
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.sb, format, args...)
	tw.sb.WriteByte('\n')
}

// TextBlock writes "label: value" with value quoted, so whitespace and
// control characters are visible.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.sb.WriteString(label)
	tw.sb.WriteString(": ")
	tw.sb.WriteString(quote(value))
	tw.sb.WriteByte('\n')
}

// List writes "label: [a b c]" with every item quoted.
func (tw *TreeWriter) List(depth int, label string, items []string) {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = strconv.Quote(it)
	}
	tw.pad(depth)
	tw.sb.WriteString(label)
	tw.sb.WriteString(": [")
	tw.sb.WriteString(strings.Join(quoted, " "))
	tw.sb.WriteString("]\n")
}

func quote(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
