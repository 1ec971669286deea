package compiler_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"stylx/alias"
	"stylx/compiler"
	"stylx/style"
)

// "src/button.ts" hashes to "ocqgb3"
const identity = "src/button.ts"

func newUnit(t *testing.T, opts ...compiler.Option) (*compiler.Unit, *alias.Context) {
	t.Helper()
	log := zaptest.NewLogger(t)
	ctx := alias.NewContext(log)
	return compiler.New(ctx, log, opts...).NewUnit(identity), ctx
}

func mustStyles(t *testing.T, u *compiler.Unit, defs *style.Map) *compiler.Result {
	t.Helper()
	res, err := u.Styles(defs)
	if err != nil {
		t.Fatalf("Styles() error = %v", err)
	}
	return res
}

func TestNumericUnits(t *testing.T) {
	u, _ := newUnit(t)

	res := mustStyles(t, u, style.NewMap(
		"box", style.NewMap("width", 10),
		"faded", style.NewMap("opacity", 0.5),
	))

	want := ".x0{width:10px;}.x1{opacity:0.5;}"
	if res.CSS != want {
		t.Errorf("CSS = %q, want %q", res.CSS, want)
	}
	m := res.Map()
	if m["box"] != "ocqgb30 x0" {
		t.Errorf("box = %q", m["box"])
	}
	if m["faded"] != "ocqgb31 x1" {
		t.Errorf("faded = %q", m["faded"])
	}
}

func TestDeduplication(t *testing.T) {
	u, ctx := newUnit(t)

	res := mustStyles(t, u, style.NewMap(
		"a", style.NewMap("color", "red"),
		"b", style.NewMap("color", "red", "width", 1),
	))
	if res.CSS != ".x0{color:red;}.x1{width:1px;}" {
		t.Errorf("CSS = %q", res.CSS)
	}
	if got, _ := res.Get("b"); got != "ocqgb31 x0 x1" {
		t.Errorf("b = %q", got)
	}

	// identical declaration in an unrelated unit is shared
	other := compiler.New(ctx, nil).NewUnit("src/other.ts")
	res2, err := other.Styles(style.NewMap("c", style.NewMap("color", "red")))
	if err != nil {
		t.Fatalf("Styles() error = %v", err)
	}
	if res2.CSS != "" {
		t.Errorf("shared declaration emitted again: %q", res2.CSS)
	}
	if tok := res2.Tokens[0]; len(tok.Atoms) != 1 || tok.Atoms[0] != "x0" {
		t.Errorf("atoms = %v, want [x0]", tok.Atoms)
	}
	if ctx.Len() != 2 {
		t.Errorf("cache size = %d, want 2", ctx.Len())
	}
}

func TestDeduplication_ContextMatters(t *testing.T) {
	u, _ := newUnit(t)

	res := mustStyles(t, u, style.NewMap(
		"a", style.NewMap(
			"color", "red",
			":hover", style.NewMap("color", "red"),
			"@media print", style.NewMap("color", "red"),
		),
	))
	want := ".x0{color:red;}.x1:hover{color:red;}@media print{.x2{color:red;}}"
	if res.CSS != want {
		t.Errorf("CSS = %q, want %q", res.CSS, want)
	}
}

func TestComposition(t *testing.T) {
	u, _ := newUnit(t)

	res := mustStyles(t, u, style.NewMap(
		"a", style.NewMap("color", "red"),
		"b", style.NewMap("composes", "$a", "width", 1),
		"c", style.NewMap("composes", []any{"$b"}),
	))

	c := res.Tokens[2]
	want := []string{"ocqgb30", "ocqgb31", "ocqgb32"}
	if strings.Join(c.Composes, " ") != strings.Join(want, " ") {
		t.Errorf("composition record = %v, want %v", c.Composes, want)
	}
	if c.Value != "ocqgb30 x0 ocqgb31 x1 ocqgb32" {
		t.Errorf("c = %q", c.Value)
	}
	if res.Tokens[0].Composes != nil {
		t.Errorf("a composes nothing, got %v", res.Tokens[0].Composes)
	}
}

func TestComposition_DuplicatesPreserved(t *testing.T) {
	u, _ := newUnit(t)

	res := mustStyles(t, u, style.NewMap(
		"a", style.NewMap(),
		"b", style.NewMap("composes", "$a $a external"),
	))
	b := res.Tokens[1]
	if strings.Join(b.Composes, " ") != "ocqgb30 ocqgb30 external ocqgb31" {
		t.Errorf("composition record = %v", b.Composes)
	}
	if b.Value != "ocqgb30 ocqgb30 external ocqgb31" {
		t.Errorf("b = %q", b.Value)
	}
}

func TestReferences(t *testing.T) {
	u, _ := newUnit(t)

	if _, err := u.Variables(style.NewMap("gap", nil)); err != nil {
		t.Fatalf("Variables() error = %v", err)
	}
	if _, err := u.Keyframes(style.NewMap("spin", style.NewMap("to", style.NewMap("rotate", "1turn")))); err != nil {
		t.Fatalf("Keyframes() error = %v", err)
	}

	res := mustStyles(t, u, style.NewMap(
		"card", style.NewMap(
			"gap", "var($gap)",
			"animationName", "$spin",
			"variables", style.NewMap("$gap", 4),
		),
		"title", style.NewMap(
			"$card:hover &", style.NewMap("color", "red"),
		),
	))

	want := ".x0{gap:var(--ocqgb30);}" +
		".x1{animation-name:ocqgb31;}" +
		".x2{--ocqgb30:4px;}" +
		".ocqgb32:hover .x3{color:red;}"
	if res.CSS != want {
		t.Errorf("CSS = %q, want %q", res.CSS, want)
	}

	tokens := u.Tokens()
	if tokens[0].Value != "--ocqgb30" || tokens[1].Value != "ocqgb31" {
		t.Errorf("tokens = %+v", tokens[:2])
	}
}

func TestReferenceErrors(t *testing.T) {
	tests := []struct {
		name  string
		defs  *style.Map
		check func(t *testing.T, err error)
	}{
		{
			name: "unknown in selector",
			defs: style.NewMap("a", style.NewMap("$missing &", style.NewMap("color", "red"))),
			check: func(t *testing.T, err error) {
				var e *style.UnknownReferenceError
				if !errors.As(err, &e) || e.Key != "a" || e.Reference != "missing" {
					t.Errorf("got %v", err)
				}
			},
		},
		{
			name: "unknown name starting with digit",
			defs: style.NewMap("a", style.NewMap("width", "$1col")),
			check: func(t *testing.T, err error) {
				var e *style.UnknownReferenceError
				if !errors.As(err, &e) || e.Key != "a" || e.Reference != "1col" {
					t.Errorf("got %v", err)
				}
			},
		},
		{
			name: "self reference",
			defs: style.NewMap("a", style.NewMap("composes", "$a")),
			check: func(t *testing.T, err error) {
				var e *style.UnknownReferenceError
				if !errors.As(err, &e) || e.Reference != "a" {
					t.Errorf("got %v", err)
				}
			},
		},
		{
			name: "forward reference",
			defs: style.NewMap(
				"a", style.NewMap("composes", "$b"),
				"b", style.NewMap("color", "red"),
			),
			check: func(t *testing.T, err error) {
				var e *style.UnknownReferenceError
				if !errors.As(err, &e) || e.Key != "a" || e.Reference != "b" {
					t.Errorf("got %v", err)
				}
			},
		},
		{
			name: "keyframes in selector",
			defs: style.NewMap("a", style.NewMap("$fade &", style.NewMap("color", "red"))),
			check: func(t *testing.T, err error) {
				var e *style.ReferenceKindMismatchError
				if !errors.As(err, &e) || e.Position != style.InSelector || e.Got != style.Keyframes {
					t.Errorf("got %v", err)
				}
			},
		},
		{
			name: "style in value",
			defs: style.NewMap(
				"a", style.NewMap(),
				"b", style.NewMap("animationName", "$a"),
			),
			check: func(t *testing.T, err error) {
				var e *style.ReferenceKindMismatchError
				if !errors.As(err, &e) || e.Position != style.InValue || e.Got != style.Styles {
					t.Errorf("got %v", err)
				}
			},
		},
		{
			name: "keyframes as property",
			defs: style.NewMap("a", style.NewMap("variables", style.NewMap("$fade", 1))),
			check: func(t *testing.T, err error) {
				var e *style.ReferenceKindMismatchError
				if !errors.As(err, &e) || e.Position != style.InProperty {
					t.Errorf("got %v", err)
				}
			},
		},
		{
			name: "composes keyframes",
			defs: style.NewMap("a", style.NewMap("composes", "$fade")),
			check: func(t *testing.T, err error) {
				var e *style.ReferenceKindMismatchError
				if !errors.As(err, &e) || e.Position != style.InComposes {
					t.Errorf("got %v", err)
				}
			},
		},
		{
			name: "nested composes",
			defs: style.NewMap("a", style.NewMap(":hover", style.NewMap("composes", "x"))),
			check: func(t *testing.T, err error) {
				if err == nil || !strings.Contains(err.Error(), "top level") {
					t.Errorf("got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ctx := newUnit(t)
			if _, err := u.Keyframes(style.NewMap("fade", style.NewMap("to", style.NewMap("opacity", 1)))); err != nil {
				t.Fatalf("Keyframes() error = %v", err)
			}
			before := u.CSS()

			res, err := u.Styles(tt.defs)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)

			if res != nil {
				t.Error("result must be nil on error")
			}
			if u.CSS() != before {
				t.Errorf("failed compilation changed unit CSS: %q", u.CSS())
			}
			if ctx.Len() != 0 {
				t.Errorf("failed compilation left %d cache entries", ctx.Len())
			}
		})
	}
}

func TestDuplicateKey(t *testing.T) {
	u, _ := newUnit(t)

	_, err := u.Styles(style.NewMap("a", style.NewMap("color", "red"), "a", style.NewMap("color", "blue")))
	var dup *style.DuplicateLogicalKeyError
	if !errors.As(err, &dup) || dup.Key != "a" {
		t.Fatalf("expected DuplicateLogicalKeyError, got %v", err)
	}

	mustStyles(t, u, style.NewMap("a", style.NewMap("color", "red")))
	// keys share one namespace across definition kinds
	_, err = u.Keyframes(style.NewMap("a", style.NewMap("to", style.NewMap("opacity", 1))))
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateLogicalKeyError, got %v", err)
	}
}

func TestFailedCompilationRollsBack(t *testing.T) {
	u, ctx := newUnit(t)

	defs := style.NewMap(
		"ok", style.NewMap("color", "red"),
		"bad", style.NewMap("composes", "$nope"),
	)
	if _, err := u.Styles(defs); err == nil {
		t.Fatal("expected error")
	}
	if u.CSS() != "" || ctx.Len() != 0 || len(u.Tokens()) != 0 {
		t.Fatalf("partial output kept: css=%q cache=%d tokens=%d", u.CSS(), ctx.Len(), len(u.Tokens()))
	}

	res := mustStyles(t, u, style.NewMap("ok", style.NewMap("color", "red")))
	if res.CSS != ".x0{color:red;}" {
		t.Errorf("CSS = %q", res.CSS)
	}
	if got, _ := res.Get("ok"); got != "ocqgb30 x0" {
		t.Errorf("ok = %q, aliases were not rolled back", got)
	}
}

func TestNesting(t *testing.T) {
	u, _ := newUnit(t)

	res := mustStyles(t, u, style.NewMap(
		"link", style.NewMap(
			"display", []any{"-webkit-box", "flex"},
			":hover", style.NewMap(
				"@media print", style.NewMap("textDecoration", "underline"),
			),
			"queries", style.NewMap(
				"@media (min-width: 600px)", style.NewMap(
					"@supports (display: grid)", style.NewMap("display", "grid"),
				),
			),
			"& > span", style.NewMap("zIndex", 2),
		),
	))

	want := ".x0{display:-webkit-box;display:flex;}" +
		"@media print{.x1:hover{text-decoration:underline;}}" +
		"@media (min-width: 600px){@supports (display: grid){.x2{display:grid;}}}" +
		".x3 > span{z-index:2;}"
	if res.CSS != want {
		t.Errorf("CSS = %q\nwant  %q", res.CSS, want)
	}
	if got, _ := res.Get("link"); got != "ocqgb30 x0 x1 x2 x3" {
		t.Errorf("link = %q", got)
	}
}

func TestKeyframes(t *testing.T) {
	u, _ := newUnit(t)

	res, err := u.Keyframes(style.NewMap(
		"fade", style.NewMap(
			"from", style.NewMap("opacity", 0),
			"to", style.NewMap("opacity", 1, "marginTop", 4),
		),
	))
	if err != nil {
		t.Fatalf("Keyframes() error = %v", err)
	}
	want := "@keyframes ocqgb30{from{opacity:0;}to{opacity:1;margin-top:4px;}}"
	if res.CSS != want {
		t.Errorf("CSS = %q, want %q", res.CSS, want)
	}
	if got, _ := res.Get("fade"); got != "ocqgb30" {
		t.Errorf("fade = %q", got)
	}
}

func TestVariables(t *testing.T) {
	u, _ := newUnit(t)

	res, err := u.Variables(style.NewMap(
		"plain", nil,
		"size", style.NewMap("syntax", "<length>", "inherits", true, "initialValue", 4),
		"color", style.NewMap("initialValue", "red"),
	))
	if err != nil {
		t.Fatalf("Variables() error = %v", err)
	}
	want := "@property --ocqgb31{syntax:'<length>';inherits:true;initial-value:4;}" +
		"@property --ocqgb32{syntax:'*';inherits:false;initial-value:red;}"
	if res.CSS != want {
		t.Errorf("CSS = %q, want %q", res.CSS, want)
	}
	m := res.Map()
	if m["plain"] != "--ocqgb30" || m["size"] != "--ocqgb31" {
		t.Errorf("map = %v", m)
	}
}

func TestDebugLabels(t *testing.T) {
	u, _ := newUnit(t, compiler.WithDebugLabels(true))

	res := mustStyles(t, u, style.NewMap("primary-button", style.NewMap()))
	if got, _ := res.Get("primary-button"); got != "ocqgb30_primary_button" {
		t.Errorf("token = %q", got)
	}
}

func TestTransform(t *testing.T) {
	u, _ := newUnit(t, compiler.WithTransform(strings.ToUpper))

	res := mustStyles(t, u, style.NewMap("a", style.NewMap("color", "red")))
	if res.CSS != ".X0{COLOR:RED;}" {
		t.Errorf("Result.CSS = %q", res.CSS)
	}
	if u.CSS() != ".X0{COLOR:RED;}" {
		t.Errorf("Unit.CSS() = %q", u.CSS())
	}
}

func TestDeterminism(t *testing.T) {
	defs := func() *style.Map {
		return style.NewMap(
			"a", style.NewMap("color", "red", ":hover", style.NewMap("color", "blue")),
			"b", style.NewMap("composes", "$a", "@media print", style.NewMap("display", "none")),
		)
	}

	u1, _ := newUnit(t)
	u2, _ := newUnit(t)
	r1 := mustStyles(t, u1, defs())
	r2 := mustStyles(t, u2, defs())

	if r1.CSS != r2.CSS {
		t.Errorf("CSS differs:\n%q\n%q", r1.CSS, r2.CSS)
	}
	for i := range r1.Tokens {
		if r1.Tokens[i].Value != r2.Tokens[i].Value {
			t.Errorf("token %q differs: %q vs %q", r1.Tokens[i].Key, r1.Tokens[i].Value, r2.Tokens[i].Value)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := compiler.Join("a b", "", "  c ", "d"); got != "a b c d" {
		t.Errorf("Join() = %q", got)
	}
	if got := compiler.Join(); got != "" {
		t.Errorf("Join() = %q", got)
	}
}
