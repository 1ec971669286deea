package style

import (
	"strconv"
	"strings"

	"stylx/css"
	"stylx/utils/debug"
)

// Kind is the tag of a normalized rule node.
type Kind int

const (
	KindDeclaration Kind = iota // property with one or more values
	KindSelector                // nested selector scope
	KindAtRule                  // at-rule scope
	KindComposes                // composition list
	KindFrame                   // keyframe offset block
)

func (k Kind) String() string {
	switch k {
	case KindDeclaration:
		return "declaration"
	case KindSelector:
		return "selector"
	case KindAtRule:
		return "at-rule"
	case KindComposes:
		return "composes"
	case KindFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// Value is a single static declaration value.
type Value struct {
	Text     string
	Number   float64
	IsNumber bool
}

func (v Value) String() string {
	if v.IsNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// Node is a normalized rule node. Only fields relevant for Kind are set.
type Node struct {
	Kind Kind
	Key  string // key as authored

	// KindDeclaration
	Property string  // authored property name, "$name" for custom property reference
	Values   []Value // one per fallback element, in order

	// KindSelector
	Selector css.Template

	// KindAtRule
	AtRule css.AtRule

	// KindComposes
	Composes []string // "$name" references and literal class names

	// KindSelector, KindAtRule, KindFrame
	Children []*Node
}

// Definition is a normalized top-level entry of a definition set.
type Definition struct {
	Key   string
	Kind  DefKind
	Nodes []*Node // style rule body or keyframe frames

	// Variables
	Property *PropertyRule
}

// PropertyRule describes registered custom property. Nil fields were not
// specified by author.
type PropertyRule struct {
	Syntax       string
	Inherits     *bool
	InitialValue *Value
}

// Dump returns indented textual representation of the definition for debug
// logging.
func (d *Definition) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "%s %q", d.Kind, d.Key)
	if d.Property != nil {
		if d.Property.Syntax != "" {
			tw.TextBlock(1, "syntax", d.Property.Syntax)
		}
		if d.Property.Inherits != nil {
			tw.Line(1, "inherits: %t", *d.Property.Inherits)
		}
		if d.Property.InitialValue != nil {
			tw.TextBlock(1, "initial-value", d.Property.InitialValue.String())
		}
	}
	for _, n := range d.Nodes {
		n.dump(tw, 1)
	}
	return tw.String()
}

func (n *Node) dump(tw *debug.TreeWriter, depth int) {
	switch n.Kind {
	case KindDeclaration:
		vals := make([]string, len(n.Values))
		for i, v := range n.Values {
			vals[i] = v.String()
		}
		tw.TextBlock(depth, n.Property, strings.Join(vals, " | "))
	case KindSelector:
		tw.Line(depth, "selector %q", n.Selector.String())
	case KindAtRule:
		tw.Line(depth, "at-rule %q", n.AtRule.Header())
	case KindComposes:
		tw.List(depth, "composes", n.Composes)
	case KindFrame:
		tw.Line(depth, "frame %q", n.Key)
	}
	for _, c := range n.Children {
		c.dump(tw, depth+1)
	}
}
