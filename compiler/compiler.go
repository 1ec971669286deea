// Package compiler turns style, keyframe and custom property definitions into
// atomic CSS and maps logical keys to generated tokens.
package compiler

import (
	"strings"

	"go.uber.org/zap"

	"stylx/alias"
	"stylx/common"
	"stylx/inject"
	"stylx/style"
)

// Option configures Compiler.
type Option func(*Compiler)

// WithDebugLabels makes generated aliases carry sanitized logical keys.
func WithDebugLabels(on bool) Option {
	return func(c *Compiler) {
		c.debug = on
	}
}

// WithTransform sets function applied to unit CSS before it leaves the
// compiler (minification, prefixing and such).
func WithTransform(fn func(css string) string) Option {
	return func(c *Compiler) {
		c.transform = fn
	}
}

// Compiler creates compilation units sharing single compilation context.
type Compiler struct {
	ctx       *alias.Context
	log       *zap.Logger
	debug     bool
	transform func(string) string
}

// New creates compiler working with compilation context ctx.
func New(ctx *alias.Context, log *zap.Logger, opts ...Option) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Compiler{ctx: ctx, log: log.Named("compiler")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Context returns compilation context of the compiler.
func (c *Compiler) Context() *alias.Context {
	return c.ctx
}

// NewUnit creates compilation unit. Identity must be stable between builds
// (source path or content), it seeds unit aliases.
func (c *Compiler) NewUnit(identity string) *Unit {
	scope := alias.NewScope(identity, c.debug)
	u := &Unit{
		c:        c,
		identity: identity,
		scope:    scope,
		symbols:  make(map[string]*symbol),
		log:      c.log.With(zap.String("unit", scope.Hash())),
	}
	u.log.Debug("Compilation unit created", zap.String("identity", identity), zap.String("context", c.ctx.ID()))
	return u
}

// symbol is a compiled logical key of a unit.
type symbol struct {
	key    string
	kind   style.DefKind
	alias  string
	atoms  []string // atomic classes of style rule declarations, in walk order, unique
	record []string // composition record: composed aliases and own alias, nil without composition
	// classes is the full class list: composed classes, own alias, own atoms
	classes []string
}

func (s *symbol) token() Token {
	t := Token{Key: s.key, Kind: s.kind, Alias: s.alias, Composes: s.record, Atoms: s.atoms}
	switch s.kind {
	case style.Styles:
		t.Value = strings.Join(s.classes, " ")
	case style.Variables:
		t.Value = "--" + s.alias
	default:
		t.Value = s.alias
	}
	return t
}

// Unit is a compilation unit (usually one source module). Logical keys of
// all definition sets compiled by the unit share one namespace; each key maps
// to exactly one alias for the unit lifetime. Unit is not safe for concurrent
// use.
type Unit struct {
	c        *Compiler
	identity string
	scope    *alias.Scope
	symbols  map[string]*symbol
	order    []string
	css      strings.Builder
	log      *zap.Logger
}

// Hash returns unit scope hash. It is also used as delivery key of the unit
// CSS.
func (u *Unit) Hash() string {
	return u.scope.Hash()
}

// Identity returns identity unit was created with.
func (u *Unit) Identity() string {
	return u.identity
}

// CSS returns CSS accumulated by all successful compilations of the unit
// with transform applied.
func (u *Unit) CSS() string {
	css := u.css.String()
	if u.c.transform != nil && css != "" {
		css = u.c.transform(css)
	}
	return css
}

// Tokens returns tokens of all compiled keys in declaration order.
func (u *Unit) Tokens() []Token {
	res := make([]Token, 0, len(u.order))
	for _, k := range u.order {
		res = append(res, u.symbols[k].token())
	}
	return res
}

// Styles compiles style rules.
func (u *Unit) Styles(defs *style.Map) (*Result, error) {
	return u.compile(defSet{style.Styles, defs})
}

// Keyframes compiles keyframe rules.
func (u *Unit) Keyframes(defs *style.Map) (*Result, error) {
	return u.compile(defSet{style.Keyframes, defs})
}

// Variables compiles custom property rules.
func (u *Unit) Variables(defs *style.Map) (*Result, error) {
	return u.compile(defSet{style.Variables, defs})
}

// Deliver hands CSS of the unit to the injection runtime keyed by unit hash.
// Nothing is delivered when unit produced no CSS.
func (u *Unit) Deliver(rt *inject.Runtime, mode common.DeliveryMode) error {
	css := u.CSS()
	if css == "" {
		return nil
	}
	return inject.Deliver(rt, mode, u.Hash(), css)
}

type defSet struct {
	kind style.DefKind
	defs *style.Map
}

// compile is fail-fast: on error neither CSS, symbols, aliases nor cache
// entries of this call survive.
func (u *Unit) compile(sets ...defSet) (*Result, error) {
	normalized := make([][]*style.Definition, 0, len(sets))
	total := 0
	for _, s := range sets {
		defs, err := style.Normalize(s.kind, s.defs)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, defs)
		total += len(defs)
	}

	b := &build{
		unit:   u,
		txn:    u.c.ctx.Begin(),
		staged: make(map[string]*symbol, total),
	}
	defer b.txn.Rollback()
	mark := u.scope.Mark()

	for _, defs := range normalized {
		for _, d := range defs {
			if ce := u.log.Check(zap.DebugLevel, "Compiling definition"); ce != nil {
				ce.Write(zap.String("key", d.Key), zap.String("tree", d.Dump()))
			}
			if err := b.define(d); err != nil {
				u.scope.Reset(mark)
				return nil, err
			}
		}
	}

	added := b.txn.Commit()
	res := &Result{CSS: b.out.String(), Tokens: make([]Token, 0, len(b.order))}
	for _, k := range b.order {
		sym := b.staged[k]
		u.symbols[k] = sym
		u.order = append(u.order, k)
		res.Tokens = append(res.Tokens, sym.token())
	}
	u.css.WriteString(res.CSS)
	if u.c.transform != nil && res.CSS != "" {
		res.CSS = u.c.transform(res.CSS)
	}

	u.log.Debug("Definitions compiled",
		zap.Int("keys", len(res.Tokens)),
		zap.Int("atoms", added),
		zap.Int("bytes", len(res.CSS)))
	return res, nil
}
