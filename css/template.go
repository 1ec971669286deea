package css

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// SegmentKind tells what a template segment stands for.
type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota // Text copied as is
	SegmentHole                       // Placeholder filled when the template is rendered
	SegmentRef                        // Reference token ($name) to be resolved by the caller
)

// Segment is a single piece of a Template.
type Segment struct {
	Kind SegmentKind
	Text string // literal text or referenced name, empty for holes
}

// Template is an ordered list of literal, placeholder and reference segments.
// Selector templates use a hole for "the generated class itself", placement
// templates use a hole for "the rule in place".
type Template []Segment

// Identity returns the template consisting of a single hole.
func Identity() Template {
	return Template{{Kind: SegmentHole}}
}

// Wrap returns placement template "header{" + hole + "}".
func Wrap(header string) Template {
	return Template{
		{Kind: SegmentLiteral, Text: header + "{"},
		{Kind: SegmentHole},
		{Kind: SegmentLiteral, Text: "}"},
	}
}

// Literal returns a template holding text without any holes or references.
func Literal(text string) Template {
	if text == "" {
		return Template{}
	}
	return Template{{Kind: SegmentLiteral, Text: text}}
}

// ParseTemplate tokenizes text and splits it into segments. When holes is
// true a "&" delimiter becomes a hole, otherwise it stays literal. "$name"
// (delimiter followed by an identifier or a name starting with a digit)
// becomes a reference. Characters inside
// strings, urls and comments are always literal.
func ParseTemplate(text string, holes bool) Template {
	var (
		t   Template
		lit strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			t = append(t, Segment{Kind: SegmentLiteral, Text: lit.String()})
			lit.Reset()
		}
	}

	l := css.NewLexer(parse.NewInputString(text))
	pendingDollar := false
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			break
		}
		if pendingDollar {
			pendingDollar = false
			switch tt {
			case css.IdentToken:
				flush()
				t = append(t, Segment{Kind: SegmentRef, Text: string(data)})
				continue
			case css.NumberToken, css.DimensionToken, css.PercentageToken:
				// names may start with a digit: "$1col" lexes as a dimension
				if n := refNameLen(data); n > 0 {
					flush()
					t = append(t, Segment{Kind: SegmentRef, Text: string(data[:n])})
					lit.Write(data[n:])
					continue
				}
			}
			lit.WriteByte('$')
		}
		if tt == css.DelimToken && len(data) == 1 {
			switch {
			case data[0] == '$':
				pendingDollar = true
				continue
			case data[0] == '&' && holes:
				flush()
				t = append(t, Segment{Kind: SegmentHole})
				continue
			}
		}
		lit.Write(data)
	}
	if pendingDollar {
		lit.WriteByte('$')
	}
	flush()
	return t
}

// refNameLen returns length of the leading run of word characters and
// hyphens in data.
func refNameLen(data []byte) int {
	for i, c := range data {
		if c != '_' && c != '-' && (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return i
		}
	}
	return len(data)
}

// HasHole reports whether template contains at least one placeholder.
func (t Template) HasHole() bool {
	for _, s := range t {
		if s.Kind == SegmentHole {
			return true
		}
	}
	return false
}

// Refs returns referenced names in order of appearance.
func (t Template) Refs() []string {
	var refs []string
	for _, s := range t {
		if s.Kind == SegmentRef {
			refs = append(refs, s.Text)
		}
	}
	return refs
}

// Resolve replaces every reference with literal text produced by fn. The
// first error returned by fn aborts resolution.
func (t Template) Resolve(fn func(name string) (string, error)) (Template, error) {
	res := make(Template, 0, len(t))
	for _, s := range t {
		if s.Kind != SegmentRef {
			res = append(res, s)
			continue
		}
		text, err := fn(s.Text)
		if err != nil {
			return nil, err
		}
		res = append(res, Segment{Kind: SegmentLiteral, Text: text})
	}
	return res.compact(), nil
}

// Substitute replaces every hole of t with the segments of child.
func (t Template) Substitute(child Template) Template {
	res := make(Template, 0, len(t)+len(child))
	for _, s := range t {
		if s.Kind == SegmentHole {
			res = append(res, child...)
			continue
		}
		res = append(res, s)
	}
	return res.compact()
}

// Render writes literal segments and replaces holes with fill. References
// are written back in their source form.
func (t Template) Render(fill string) string {
	var sb strings.Builder
	for _, s := range t {
		switch s.Kind {
		case SegmentLiteral:
			sb.WriteString(s.Text)
		case SegmentHole:
			sb.WriteString(fill)
		case SegmentRef:
			sb.WriteString("$" + s.Text)
		}
	}
	return sb.String()
}

// Key returns canonical encoding of the template suitable for use in cache
// keys. Unlike Render it never confuses a hole with a literal "&".
func (t Template) Key() string {
	var sb strings.Builder
	for _, s := range t {
		switch s.Kind {
		case SegmentLiteral:
			sb.WriteString(s.Text)
		case SegmentHole:
			sb.WriteByte(0)
		case SegmentRef:
			sb.WriteByte(1)
			sb.WriteString(s.Text)
			sb.WriteByte(1)
		}
	}
	return sb.String()
}

// String returns human readable form of the template, holes shown as "&".
func (t Template) String() string {
	return t.Render("&")
}

// compact merges adjacent literal segments.
func (t Template) compact() Template {
	res := t[:0]
	for _, s := range t {
		if s.Kind == SegmentLiteral {
			if s.Text == "" {
				continue
			}
			if n := len(res); n > 0 && res[n-1].Kind == SegmentLiteral {
				res[n-1].Text += s.Text
				continue
			}
		}
		res = append(res, s)
	}
	return res
}
