package css

import (
	"fmt"
	"io"
	"strings"
)

// Declaration is a single property: value pair.
type Declaration struct {
	Property  string // Property name as written, e.g. "margin-top" or "--gap"
	Value     string // Raw value text without "!important"
	Important bool
}

// String returns compact CSS form of the declaration.
func (d Declaration) String() string {
	if d.Important {
		return d.Property + ":" + d.Value + "!important;"
	}
	return d.Property + ":" + d.Value + ";"
}

// Rule is a style rule (selector list + declarations).
type Rule struct {
	Selector     string        // Full selector list text, e.g. ".a:hover, .b"
	Declarations []Declaration // In source order, duplicates kept
}

// GetProperty returns the last value declared for property.
func (r Rule) GetProperty(name string) (Declaration, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == name {
			return r.Declarations[i], true
		}
	}
	return Declaration{}, false
}

// Block is an at-rule with a block: conditional group rules (@media,
// @supports, @container, @layer) contain nested items, descriptor rules
// (@property, @font-face) and keyframe rules carry declarations or frames.
type Block struct {
	AtRule       AtRule
	Items        []StylesheetItem
	Declarations []Declaration
}

// StylesheetItem is a single item in a stylesheet.
// Exactly one of Rule, Block or Statement is non-nil.
type StylesheetItem struct {
	Rule      *Rule   // A plain rule (selector + properties)
	Block     *Block  // An at-rule with block
	Statement *AtRule // An at-rule without block, e.g. @import or @layer a, b
}

// Stylesheet represents parsed CSS text.
type Stylesheet struct {
	Items    []StylesheetItem // All top-level items in source order
	Warnings []string         // Problems found by lenient parsing
}

// Rules returns all style rules in source order including rules nested in
// at-rule blocks.
func (s *Stylesheet) Rules() []Rule {
	var rules []Rule
	var walk func(items []StylesheetItem)
	walk = func(items []StylesheetItem) {
		for _, item := range items {
			switch {
			case item.Rule != nil:
				rules = append(rules, *item.Rule)
			case item.Block != nil:
				walk(item.Block.Items)
			}
		}
	}
	walk(s.Items)
	return rules
}

// RulesBySelector returns all rules (at any depth) matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, r := range s.Rules() {
		if r.Selector == selector {
			matches = append(matches, r)
		}
	}
	return matches
}

// Blocks returns top-level at-rule blocks with given name (without "@").
func (s *Stylesheet) Blocks(name string) []*Block {
	var blocks []*Block
	for _, item := range s.Items {
		if item.Block != nil && item.Block.AtRule.Name == name {
			blocks = append(blocks, item.Block)
		}
	}
	return blocks
}

// WriteTo writes the stylesheet to w in source order using compact form,
// implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, item := range s.Items {
		n, err := writeItem(w, item)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeItem(w io.Writer, item StylesheetItem) (int, error) {
	switch {
	case item.Rule != nil:
		return writeRule(w, item.Rule)
	case item.Block != nil:
		return writeBlock(w, item.Block)
	case item.Statement != nil:
		return fmt.Fprintf(w, "@%s %s;", item.Statement.Name, item.Statement.Prelude)
	}
	return 0, nil
}

// writeRule writes a single CSS rule to w.
func writeRule(w io.Writer, rule *Rule) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s{", rule.Selector)
	total += n
	if err != nil {
		return total, err
	}
	n, err = writeDeclarations(w, rule.Declarations)
	total += n
	if err != nil {
		return total, err
	}
	n, err = io.WriteString(w, "}")
	total += n
	return total, err
}

// writeDeclarations writes declarations in source order, order matters for
// fallback lists.
func writeDeclarations(w io.Writer, decls []Declaration) (int, error) {
	var total int
	for _, d := range decls {
		n, err := io.WriteString(w, d.String())
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// writeBlock writes an at-rule block to w.
func writeBlock(w io.Writer, b *Block) (int, error) {
	var total int
	header := "@" + b.AtRule.Name
	if b.AtRule.Prelude != "" {
		header += " " + b.AtRule.Prelude
	}
	n, err := fmt.Fprintf(w, "%s{", header)
	total += n
	if err != nil {
		return total, err
	}
	n, err = writeDeclarations(w, b.Declarations)
	total += n
	if err != nil {
		return total, err
	}
	for _, item := range b.Items {
		n, err = writeItem(w, item)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = io.WriteString(w, "}")
	total += n
	return total, err
}
