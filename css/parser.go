package css

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// SyntaxError is returned when CSS text cannot be accepted as a sequence of
// rules.
type SyntaxError struct {
	Text   string
	Reason string
}

func (e *SyntaxError) Error() string {
	text := e.Text
	if len(text) > 64 {
		text = text[:61] + "..."
	}
	return fmt.Sprintf("css syntax error: %s in %q", e.Reason, text)
}

// Parser parses CSS text into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// container is a level of nesting while building the stylesheet.
type container struct {
	items *[]StylesheetItem
	decls *[]Declaration
	block *Block // nil for stylesheet and ruleset levels
}

// Parse parses CSS text into a Stylesheet. Parsing is lenient, problems are
// recorded as warnings. The optional source parameter identifies what's being
// parsed (for debug logging).
func (p *Parser) Parse(text string, source ...string) *Stylesheet {
	sheet, problems := p.parse(text)
	for _, pr := range problems {
		sheet.Warnings = append(sheet.Warnings, pr.Reason)
	}
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsed CSS", zap.String("source", source[0]), zap.Int("bytes", len(text)),
			zap.Int("items", len(sheet.Items)), zap.Int("warnings", len(sheet.Warnings)))
	}
	return sheet
}

// Validate parses text strictly. It returns *SyntaxError describing the first
// problem found or the parsed stylesheet when text consists of well formed rules.
func (p *Parser) Validate(text string) (*Stylesheet, error) {
	if err := checkBalance(text); err != nil {
		return nil, err
	}
	sheet, problems := p.parse(text)
	if len(problems) > 0 {
		return nil, problems[0]
	}
	if len(sheet.Items) == 0 {
		return nil, &SyntaxError{Text: text, Reason: "no rules"}
	}
	return sheet, nil
}

func (p *Parser) parse(text string) (*Stylesheet, []*SyntaxError) {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	var (
		problems  []*SyntaxError
		qualified []string
	)
	problem := func(format string, args ...any) {
		problems = append(problems, &SyntaxError{Text: text, Reason: fmt.Sprintf(format, args...)})
	}

	stack := []*container{{items: &sheet.Items}}
	top := func() *container { return stack[len(stack)-1] }

	parser := css.NewParser(parse.NewInputString(text), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				problem("%v", err)
			}
			if len(qualified) > 0 {
				problem("selector %q without block", strings.Join(qualified, ","))
			}
			if len(stack) > 1 {
				problem("unclosed block")
			}
			return sheet, problems

		case css.CommentGrammar:
			// ignore

		case css.QualifiedRuleGrammar:
			// all but last selectors of a selector list
			qualified = append(qualified, joinTokens(data, parser.Values()))

		case css.BeginRulesetGrammar:
			selectors := append(qualified, joinTokens(data, parser.Values()))
			qualified = nil
			rule := &Rule{Selector: strings.Join(selectors, ",")}
			if c := top(); c.items != nil {
				*c.items = append(*c.items, StylesheetItem{Rule: rule})
			} else {
				problem("rule %q is not allowed here", rule.Selector)
			}
			stack = append(stack, &container{decls: &rule.Declarations})

		case css.EndRulesetGrammar, css.EndAtRuleGrammar:
			if len(stack) == 1 {
				problem("unexpected end of block")
				continue
			}
			stack = stack[:len(stack)-1]

		case css.BeginAtRuleGrammar:
			ar := AtRule{Name: strings.TrimPrefix(string(data), "@"), Prelude: joinTokens(nil, parser.Values())}
			block := &Block{AtRule: ar}
			c := top()
			if c.items == nil {
				problem("@%s is not allowed here", ar.Name)
			} else {
				*c.items = append(*c.items, StylesheetItem{Block: block})
			}
			if !knownAtRules[atRuleName(ar.Name)] {
				// body of at-rules unknown to the tokenizer comes as raw tokens
				body, closed := rawBody(parser)
				if !closed {
					problem("unclosed block")
					continue
				}
				for _, pr := range p.parseBody(block, body) {
					pr.Text = text
					problems = append(problems, pr)
				}
				continue
			}
			stack = append(stack, &container{items: &block.Items, decls: &block.Declarations, block: block})

		case css.AtRuleGrammar:
			ar := AtRule{Name: strings.TrimPrefix(string(data), "@"), Prelude: joinTokens(nil, parser.Values())}
			if c := top(); c.items != nil {
				*c.items = append(*c.items, StylesheetItem{Statement: &ar})
			} else {
				problem("@%s is not allowed here", ar.Name)
			}

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d := declaration(string(data), parser.Values())
			c := top()
			if c.decls == nil {
				problem("declaration %q outside of rule", d.Property)
				continue
			}
			*c.decls = append(*c.decls, d)

		default:
			// stray tokens
			raw := joinTokens(data, parser.Values())
			if strings.TrimSpace(raw) != "" {
				problem("unexpected %q", raw)
			}
		}
	}
}

// knownAtRules are at-rules whose blocks the tokenizer parses into rules or
// declarations itself. Everything else arrives as raw tokens.
var knownAtRules = map[string]bool{
	"font-face": true,
	"page":      true,
	"document":  true,
	"keyframes": true,
	"layer":     true,
	"media":     true,
	"supports":  true,
}

// descriptorAtRules hold a declaration list in their block.
var descriptorAtRules = map[string]bool{
	"property":            true,
	"counter-style":       true,
	"font-palette-values": true,
	"position-try":        true,
	"view-transition":     true,
}

// atRuleName returns lower cased at-rule name without vendor prefix.
func atRuleName(name string) string {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "-") {
		if i := strings.IndexByte(name[1:], '-'); i >= 0 {
			name = name[i+2:]
		}
	}
	return name
}

// rawBody collects block text of an unknown at-rule up to its closing brace.
func rawBody(parser *css.Parser) (string, bool) {
	var sb strings.Builder
	for {
		gt, tt, data := parser.Next()
		switch gt {
		case css.TokenGrammar:
			sb.Write(data)
		case css.EndAtRuleGrammar:
			return sb.String(), tt != css.ErrorToken
		default:
			return sb.String(), false
		}
	}
}

// parseBody fills block from body text. Descriptor rules get declarations,
// other at-rules (@container, @scope, @starting-style) are treated as
// conditional groups holding nested rules.
func (p *Parser) parseBody(block *Block, body string) []*SyntaxError {
	if descriptorAtRules[atRuleName(block.AtRule.Name)] {
		return p.parseDescriptors(block, body)
	}
	if strings.TrimSpace(body) == "" {
		return nil
	}
	sub, problems := p.parse(body)
	block.Items = append(block.Items, sub.Items...)
	return problems
}

// parseDescriptors parses body as a declaration list.
func (p *Parser) parseDescriptors(block *Block, body string) []*SyntaxError {
	var problems []*SyntaxError
	parser := css.NewParser(parse.NewInputString(body), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				problems = append(problems, &SyntaxError{Reason: err.Error()})
			}
			return problems
		case css.CommentGrammar:
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			block.Declarations = append(block.Declarations, declaration(string(data), parser.Values()))
		default:
			problems = append(problems, &SyntaxError{
				Reason: fmt.Sprintf("unexpected %q in @%s", joinTokens(data, parser.Values()), block.AtRule.Name),
			})
		}
	}
}

// declaration builds declaration from property name and value tokens.
func declaration(name string, tokens []css.Token) Declaration {
	d := Declaration{Property: name}
	raw := strings.TrimSpace(joinTokens(nil, tokens))
	if before, found := strings.CutSuffix(raw, "important"); found {
		if b, ok := strings.CutSuffix(strings.TrimSpace(before), "!"); ok {
			raw = strings.TrimSpace(b)
			d.Important = true
		}
	}
	d.Value = raw
	return d
}

// joinTokens builds text from leading data and tokens, collapsing whitespace
// runs into single space.
func joinTokens(data []byte, tokens []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// checkBalance verifies that block delimiters are balanced outside of
// strings and comments.
func checkBalance(text string) error {
	l := css.NewLexer(parse.NewInputString(text))
	depth := 0
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if depth != 0 {
				return &SyntaxError{Text: text, Reason: "unclosed block"}
			}
			return nil
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			if depth < 0 {
				return &SyntaxError{Text: text, Reason: "unexpected end of block"}
			}
		case css.BadStringToken, css.BadURLToken:
			return &SyntaxError{Text: text, Reason: fmt.Sprintf("malformed token %q", data)}
		}
	}
}
