package css

import (
	"errors"
	"testing"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		holes bool
		want  Template
	}{
		{
			name:  "hover",
			text:  "&:hover",
			holes: true,
			want:  Template{{Kind: SegmentHole}, {Kind: SegmentLiteral, Text: ":hover"}},
		},
		{
			name:  "descendant",
			text:  "& p",
			holes: true,
			want:  Template{{Kind: SegmentHole}, {Kind: SegmentLiteral, Text: " p"}},
		},
		{
			name:  "ampersand is literal without holes",
			text:  "a&b",
			holes: false,
			want:  Template{{Kind: SegmentLiteral, Text: "a&b"}},
		},
		{
			name:  "reference in selector",
			text:  "$card:hover &",
			holes: true,
			want: Template{
				{Kind: SegmentRef, Text: "card"},
				{Kind: SegmentLiteral, Text: ":hover "},
				{Kind: SegmentHole},
			},
		},
		{
			name:  "reference in value",
			text:  "var($gap)",
			holes: false,
			want: Template{
				{Kind: SegmentLiteral, Text: "var("},
				{Kind: SegmentRef, Text: "gap"},
				{Kind: SegmentLiteral, Text: ")"},
			},
		},
		{
			name:  "markers inside strings are literal",
			text:  `"&$x"`,
			holes: true,
			want:  Template{{Kind: SegmentLiteral, Text: `"&$x"`}},
		},
		{
			name:  "reference starting with digit",
			text:  "$1col:hover &",
			holes: true,
			want: Template{
				{Kind: SegmentRef, Text: "1col"},
				{Kind: SegmentLiteral, Text: ":hover "},
				{Kind: SegmentHole},
			},
		},
		{
			name:  "numeric reference",
			text:  "var($2)",
			holes: false,
			want: Template{
				{Kind: SegmentLiteral, Text: "var("},
				{Kind: SegmentRef, Text: "2"},
				{Kind: SegmentLiteral, Text: ")"},
			},
		},
		{
			name:  "numeric reference stops at dot",
			text:  "$1.5px",
			holes: false,
			want: Template{
				{Kind: SegmentRef, Text: "1"},
				{Kind: SegmentLiteral, Text: ".5px"},
			},
		},
		{
			name:  "dangling dollar",
			text:  "1$",
			holes: false,
			want:  Template{{Kind: SegmentLiteral, Text: "1$"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTemplate(tt.text, tt.holes)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseTemplate(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTemplate_Substitute(t *testing.T) {
	sel := Identity().Substitute(ParseTemplate("&:hover", true))
	sel = sel.Substitute(ParseTemplate("& span", true))
	if got := sel.Render(".x0"); got != ".x0:hover span" {
		t.Errorf("Render() = %q", got)
	}

	place := Identity().Substitute(Wrap("@media screen"))
	place = place.Substitute(Wrap("@supports (display:grid)"))
	if got := place.Render(".a{b:c;}"); got != "@media screen{@supports (display:grid){.a{b:c;}}}" {
		t.Errorf("Render() = %q", got)
	}
}

func TestTemplate_Resolve(t *testing.T) {
	tmpl := ParseTemplate("$a > &", true)

	got, err := tmpl.Resolve(func(name string) (string, error) {
		return ".r_" + name, nil
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Render(".x") != ".r_a > .x" {
		t.Errorf("Render() = %q", got.Render(".x"))
	}
	if len(got.Refs()) != 0 {
		t.Errorf("references left after resolution: %v", got.Refs())
	}

	boom := errors.New("boom")
	if _, err := tmpl.Resolve(func(string) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Errorf("Resolve() error = %v, want %v", err, boom)
	}
}

func TestTemplate_Key(t *testing.T) {
	hole := ParseTemplate("&", true)
	literal := ParseTemplate("&", false)

	if hole.String() != literal.String() {
		t.Fatalf("String() forms should match: %q vs %q", hole.String(), literal.String())
	}
	if hole.Key() == literal.Key() {
		t.Error("Key() must distinguish hole from literal ampersand")
	}
	if Identity().Key() != hole.Key() {
		t.Error("Identity() must equal single hole template")
	}
}

func TestTemplate_HasHole(t *testing.T) {
	if !ParseTemplate("a &", true).HasHole() {
		t.Error("expected hole")
	}
	if ParseTemplate("a &", false).HasHole() {
		t.Error("unexpected hole")
	}
	if Literal("").HasHole() || len(Literal("")) != 0 {
		t.Error("empty literal must be empty template")
	}
}
