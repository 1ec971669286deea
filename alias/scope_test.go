package alias

import (
	"strings"
	"testing"
)

func TestScope_Allocate(t *testing.T) {
	s := NewScope("src/button.ts", false)

	got := []string{s.Allocate("root"), s.Allocate("label"), s.Allocate("root")}
	want := []string{"ocqgb30", "ocqgb31", "ocqgb32"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Allocate() #%d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScope_Deterministic(t *testing.T) {
	a := NewScope("same", false)
	b := NewScope("same", false)
	for i := range 40 {
		x, y := a.Allocate("k"), b.Allocate("k")
		if x != y {
			t.Fatalf("allocation %d differs: %q vs %q", i, x, y)
		}
	}
}

func TestScope_EscapesLeadingDigit(t *testing.T) {
	s := NewScope("hello world", false)
	if got := s.Allocate("k"); got != "_6opb3n0" {
		t.Errorf("Allocate() = %q, want %q", got, "_6opb3n0")
	}
}

func TestScope_DebugLabels(t *testing.T) {
	s := NewScope("src/button.ts", true)

	got := s.Allocate("primary-button:hover")
	if got != "ocqgb30_primary_button_hover" {
		t.Errorf("Allocate() = %q", got)
	}
	if strings.ContainsAny(got, "-: ") {
		t.Errorf("label not sanitized: %q", got)
	}
}

func TestScope_Reset(t *testing.T) {
	s := NewScope("src/button.ts", false)
	s.Allocate("a")
	mark := s.Mark()
	first := s.Allocate("b")
	s.Allocate("c")

	s.Reset(mark)
	if again := s.Allocate("b"); again != first {
		t.Errorf("after Reset Allocate() = %q, want %q", again, first)
	}
}
