package css

import "testing"

func TestParseAtRule(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    AtRule
		wantErr bool
	}{
		{name: "media", text: "@media (min-width: 600px)", want: AtRule{Name: "media", Prelude: "(min-width: 600px)"}},
		{name: "supports", text: "  @supports (display: grid)  ", want: AtRule{Name: "supports", Prelude: "(display: grid)"}},
		{name: "container", text: "@container sidebar (min-width: 400px)", want: AtRule{Name: "container", Prelude: "sidebar (min-width: 400px)"}},
		{name: "no at keyword", text: "media screen", wantErr: true},
		{name: "no arguments", text: "@media", wantErr: true},
		{name: "only whitespace arguments", text: "@media   ", wantErr: true},
		{name: "block in header", text: "@media screen{", wantErr: true},
		{name: "statement terminator", text: "@media screen;", wantErr: true},
		{name: "empty", text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAtRule(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAtRule(%q) = %+v, expected error", tt.text, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAtRule(%q) error = %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseAtRule(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
			if got.Header() != "@"+tt.want.Name+" "+tt.want.Prelude {
				t.Errorf("Header() = %q", got.Header())
			}
		})
	}
}
