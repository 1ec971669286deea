package css_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stylx/css"
)

func TestParser_ClassRule(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse(`.x0 { width: 10px; color: red }`)
	if len(sheet.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", sheet.Warnings)
	}

	rules := sheet.RulesBySelector(".x0")
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	d, ok := rules[0].GetProperty("width")
	if !ok {
		t.Fatal("expected width declaration")
	}
	if d.Value != "10px" {
		t.Errorf("width = %q, want %q", d.Value, "10px")
	}
	if d, ok := rules[0].GetProperty("color"); !ok || d.Value != "red" {
		t.Errorf("color = %q, want %q", d.Value, "red")
	}
}

func TestParser_FallbackDeclarationsKept(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse(`.a{display:-webkit-box;display:flex;}`)
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	decls := rules[0].Declarations
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	if decls[0].Value != "-webkit-box" || decls[1].Value != "flex" {
		t.Errorf("declarations out of order: %v", decls)
	}
	if d, _ := rules[0].GetProperty("display"); d.Value != "flex" {
		t.Errorf("GetProperty must return last declaration, got %q", d.Value)
	}
}

func TestParser_Important(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse(`.a{color:red !important}`)
	d, ok := sheet.Rules()[0].GetProperty("color")
	if !ok {
		t.Fatal("expected color declaration")
	}
	if !d.Important || d.Value != "red" {
		t.Errorf("got %+v, want important red", d)
	}
	if got := d.String(); got != "color:red!important;" {
		t.Errorf("String() = %q", got)
	}
}

func TestParser_MediaBlock(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse(`@media (min-width: 600px){.x1{width:20px}}.x2{color:blue}`)
	blocks := sheet.Blocks("media")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 media block, got %d", len(blocks))
	}
	if blocks[0].AtRule.Prelude == "" {
		t.Error("expected media prelude")
	}
	if len(blocks[0].Items) != 1 || blocks[0].Items[0].Rule == nil {
		t.Fatalf("expected nested rule, got %+v", blocks[0].Items)
	}

	rules := sheet.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Selector != ".x1" || rules[1].Selector != ".x2" {
		t.Errorf("rules out of source order: %q, %q", rules[0].Selector, rules[1].Selector)
	}
}

func TestParser_Keyframes(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse(`@keyframes fade{from{opacity:0}to{opacity:1}}`)
	blocks := sheet.Blocks("keyframes")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 keyframes block, got %d", len(blocks))
	}
	if blocks[0].AtRule.Prelude != "fade" {
		t.Errorf("prelude = %q, want fade", blocks[0].AtRule.Prelude)
	}
	if len(blocks[0].Items) != 2 {
		t.Errorf("expected 2 frames, got %d", len(blocks[0].Items))
	}
}

func TestParser_Comments(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse(`/* head */ .a { /* inner */ color: red; }`)
	if len(sheet.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", sheet.Warnings)
	}
	if len(sheet.RulesBySelector(".a")) != 1 {
		t.Error("expected .a rule")
	}
}

func TestParser_SourceOrderPreserved(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse(`.c{color:red}.a{color:green}.b{color:blue}`)
	var got []string
	for _, r := range sheet.Rules() {
		got = append(got, r.Selector)
	}
	if strings.Join(got, " ") != ".c .a .b" {
		t.Errorf("selectors = %v", got)
	}
}

func TestParser_Validate(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "single rule", input: ".a{color:red}", ok: true},
		{name: "several rules", input: ".a{color:red}.b{width:1px}", ok: true},
		{name: "nested in media", input: "@media screen{.a{color:red}}", ok: true},
		{name: "keyframes", input: "@keyframes k{0%{opacity:0}100%{opacity:1}}", ok: true},
		{name: "property", input: "@property --x{syntax:'*';inherits:false;}", ok: true},
		{name: "property with initial value", input: "@property --x{syntax:'<color>';inherits:false;initial-value:teal;}", ok: true},
		{name: "container", input: "@container (min-width: 1px){.x8{margin:0px;}}", ok: true},
		{name: "named container", input: "@container card (min-width: 400px){.a{color:red}.b{color:blue}}", ok: true},
		{name: "container in media", input: "@media screen{@container (min-width: 1px){.a{color:red}}}", ok: true},
		{name: "page", input: "@page :first{margin:1in;}", ok: true},
		{name: "counter style", input: "@counter-style thumbs{system:cyclic;symbols:\"*\";suffix:\" \";}", ok: true},
		{name: "font palette values", input: "@font-palette-values --identifier{font-family:Bixa;}", ok: true},
		{name: "layer block", input: "@layer base{.a{color:red}}", ok: true},
		{name: "property with rule inside", input: "@property --x{.a{color:red}}", ok: false},
		{name: "container with bare declaration", input: "@container (min-width: 1px){color:red;}", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "only whitespace", input: "  \n", ok: false},
		{name: "unclosed block", input: ".a{color:red", ok: false},
		{name: "extra closing brace", input: ".a{color:red}}", ok: false},
		{name: "bare declaration", input: "color:red;", ok: false},
		{name: "selector without block", input: ".a", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := p.Validate(tt.input)
			if tt.ok {
				if err != nil {
					t.Fatalf("Validate(%q) error = %v", tt.input, err)
				}
				if sheet == nil {
					t.Fatal("expected stylesheet")
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate(%q) expected error", tt.input)
			}
			var se *css.SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("expected *css.SyntaxError, got %T", err)
			}
		})
	}
}

func TestParser_DescriptorBlocks(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	input := `@property --x0 { syntax: '<color>'; inherits: false; initial-value: teal }`
	sheet, err := p.Validate(input)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	blocks := sheet.Blocks("property")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 property block, got %d", len(blocks))
	}
	b := blocks[0]
	if b.AtRule.Prelude != "--x0" {
		t.Errorf("prelude = %q, want --x0", b.AtRule.Prelude)
	}
	if len(b.Items) != 0 {
		t.Errorf("descriptor block must not hold rules, got %+v", b.Items)
	}
	want := "@property --x0{syntax:'<color>';inherits:false;initial-value:teal;}"
	if got := sheet.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParser_ContainerBlock(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet, err := p.Validate(`@container (min-width: 1px){.x8{margin:0px;}}.x9{color:red}`)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	blocks := sheet.Blocks("container")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 container block, got %d", len(blocks))
	}
	if blocks[0].AtRule.Prelude == "" {
		t.Error("expected container prelude")
	}
	rules := sheet.Rules()
	if len(rules) != 2 || rules[0].Selector != ".x8" || rules[1].Selector != ".x9" {
		t.Fatalf("rules = %+v", rules)
	}
	if d, ok := rules[0].GetProperty("margin"); !ok || d.Value != "0px" {
		t.Errorf("margin = %q", d.Value)
	}
}

func TestStylesheet_String(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	input := `.a { color : red ; } @media print { .b { display: none } }`
	sheet := p.Parse(input)
	want := ".a{color:red;}@media print{.b{display:none;}}"
	if got := sheet.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	// round trip is stable
	again := p.Parse(sheet.String())
	if again.String() != want {
		t.Errorf("round trip = %q, want %q", again.String(), want)
	}
}

func TestStylesheet_WriteTo(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse(`.a{color:red}`)

	var sb strings.Builder
	n, err := sheet.WriteTo(&sb)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if int(n) != sb.Len() {
		t.Errorf("WriteTo() = %d, wrote %d bytes", n, sb.Len())
	}
	if sb.String() != ".a{color:red;}" {
		t.Errorf("got %q", sb.String())
	}
}
