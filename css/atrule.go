package css

import (
	"errors"
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// AtRule is a parsed at-rule header, e.g. "@media (min-width: 600px)".
type AtRule struct {
	Name    string // Name without "@", e.g. "media"
	Prelude string // Arguments, trimmed
}

// Header returns normalized header text.
func (a AtRule) Header() string {
	return "@" + a.Name + " " + a.Prelude
}

var errNoAtKeyword = errors.New("header must start with @identifier")

// ParseAtRule checks that text has "@ident arguments" shape and splits it.
// Block delimiters and statement terminators are not allowed in the header.
func ParseAtRule(text string) (AtRule, error) {
	l := css.NewLexer(parse.NewInputString(text))

	var (
		ar      AtRule
		prelude strings.Builder
		seenAt  bool
		args    int
	)
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			break
		}
		if !seenAt {
			switch tt {
			case css.WhitespaceToken, css.CommentToken:
				continue
			case css.AtKeywordToken:
				ar.Name = string(data[1:])
				seenAt = true
				continue
			default:
				return AtRule{}, errNoAtKeyword
			}
		}
		switch tt {
		case css.LeftBraceToken, css.RightBraceToken, css.SemicolonToken:
			return AtRule{}, fmt.Errorf("unexpected %q in header", data)
		case css.BadStringToken, css.BadURLToken:
			return AtRule{}, fmt.Errorf("malformed token %q in header", data)
		case css.WhitespaceToken, css.CommentToken:
		default:
			args++
		}
		prelude.Write(data)
	}
	if !seenAt {
		return AtRule{}, errNoAtKeyword
	}
	if args == 0 {
		return AtRule{}, fmt.Errorf("@%s has no arguments", ar.Name)
	}
	ar.Prelude = strings.TrimSpace(prelude.String())
	return ar, nil
}
