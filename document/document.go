// Package document is an in-memory HTML document acting as stylesheet
// surface for the injection runtime. It is used for static rendering and in
// tests.
package document

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"stylx/css"
	"stylx/inject"
)

const emptyDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// AdoptedAttr marks style element carrying adopted sheets in rendered output.
const AdoptedAttr = "data-stylx-adopted"

var (
	ErrForeignSheet   = errors.New("sheet was not constructed by this document")
	ErrAlreadyAdopted = errors.New("sheet is already adopted")
)

// Document implements inject.Surface. It is safe for concurrent use.
type Document struct {
	mu      sync.Mutex
	root    *html.Node
	adopted []*Sheet
	parser  *css.Parser
	log     *zap.Logger
}

// New creates empty document.
func New(log *zap.Logger) *Document {
	d, err := Parse(strings.NewReader(emptyDocument), log)
	if err != nil {
		// this should never happen
		panic(err)
	}
	return d
}

// Parse reads HTML document from r.
func Parse(r io.Reader, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}
	return &Document{
		root:   root,
		parser: css.NewParser(log),
		log:    log.Named("document"),
	}, nil
}

// Sheet is a constructed stylesheet.
type Sheet struct {
	doc     *Document
	rules   []string
	adopted bool
}

// InsertRule validates text and appends it to the sheet. Text which is not a
// sequence of well formed rules is rejected with *css.SyntaxError.
func (s *Sheet) InsertRule(text string) error {
	if _, err := s.doc.parser.Validate(text); err != nil {
		return err
	}
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.rules = append(s.rules, text)
	return nil
}

// Rules returns inserted texts in insertion order.
func (s *Sheet) Rules() []string {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return append([]string(nil), s.rules...)
}

// CSS returns content of the sheet.
func (s *Sheet) CSS() string {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return strings.Join(s.rules, "")
}

// NewSheet constructs new stylesheet not yet adopted by the document.
func (d *Document) NewSheet() inject.Sheet {
	return &Sheet{doc: d}
}

// Adopt makes sheet part of the document.
func (d *Document) Adopt(sheet inject.Sheet) error {
	s, ok := sheet.(*Sheet)
	if !ok || s.doc != d {
		return ErrForeignSheet
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.adopted {
		return ErrAlreadyAdopted
	}
	s.adopted = true
	d.adopted = append(d.adopted, s)
	d.log.Debug("Sheet adopted", zap.Int("adopted", len(d.adopted)))
	return nil
}

// Adopted returns adopted sheets in adoption order.
func (d *Document) Adopted() []*Sheet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Sheet(nil), d.adopted...)
}

// StyleElement is a style element of the document.
type StyleElement struct {
	doc  *Document
	node *html.Node
}

// SetText replaces content of the element.
func (e *StyleElement) SetText(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for c := e.node.FirstChild; c != nil; c = e.node.FirstChild {
		e.node.RemoveChild(c)
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Text returns content of the element.
func (e *StyleElement) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return nodeText(e.node)
}

// StyleElement finds style element with id or creates one at the end of
// document head.
func (d *Document) StyleElement(id string) (inject.StyleElement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n := d.find(func(n *html.Node) bool { return n.DataAtom == atom.Style && attr(n, "id") == id }); n != nil {
		return &StyleElement{doc: d, node: n}, nil
	}
	head := d.find(func(n *html.Node) bool { return n.DataAtom == atom.Head })
	if head == nil {
		return nil, errors.New("document has no head element")
	}
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	head.AppendChild(n)
	d.log.Debug("Style element created", zap.String("id", id))
	return &StyleElement{doc: d, node: n}, nil
}

// StyleSheets returns content of every stylesheet: style elements in tree
// order followed by adopted sheets in adoption order.
func (d *Document) StyleSheets() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var res []string
	d.walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			res = append(res, nodeText(n))
		}
		return false
	})
	for _, s := range d.adopted {
		res = append(res, strings.Join(s.rules, ""))
	}
	return res
}

// CSS returns all styles of the document concatenated.
func (d *Document) CSS() string {
	return strings.Join(d.StyleSheets(), "")
}

// Render writes document as HTML. Adopted sheets have no markup of their own,
// so they are serialized into a style element at the end of head.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var adopted strings.Builder
	for _, s := range d.adopted {
		adopted.WriteString(strings.Join(s.rules, ""))
	}
	if adopted.Len() > 0 {
		head := d.find(func(n *html.Node) bool { return n.DataAtom == atom.Head })
		if head != nil {
			n := &html.Node{
				Type:     html.ElementNode,
				Data:     "style",
				DataAtom: atom.Style,
				Attr:     []html.Attribute{{Key: AdoptedAttr, Val: ""}},
			}
			n.AppendChild(&html.Node{Type: html.TextNode, Data: adopted.String()})
			head.AppendChild(n)
			defer head.RemoveChild(n)
		}
	}
	return html.Render(w, d.root)
}

// find returns first element in tree order matching fn.
func (d *Document) find(fn func(*html.Node) bool) *html.Node {
	var res *html.Node
	d.walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && fn(n) {
			res = n
			return true
		}
		return false
	})
	return res
}

// walk visits nodes depth first until fn returns true.
func (d *Document) walk(n *html.Node, fn func(*html.Node) bool) bool {
	if fn(n) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if d.walk(c, fn) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
