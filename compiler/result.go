package compiler

import (
	"strings"

	"stylx/style"
)

// Token is the compiled form of a logical key.
type Token struct {
	Key   string
	Kind  style.DefKind
	Alias string
	// Value is what callers put into markup: space separated class names for
	// style rules, keyframes name or custom property name ("--alias").
	// Style values are in class attribute form: bare names, not "."-prefixed.
	Value string
	// Composes is composition record of style rule: aliases of composed rules
	// in composition order followed by own alias. Nil when rule composes
	// nothing.
	Composes []string
	// Atoms are classes of atomic declaration rules of the style rule.
	Atoms []string
}

// Result is the outcome of a single successful compile call.
type Result struct {
	// CSS emitted by this call only. Declarations already known to the
	// compilation context are never emitted again.
	CSS    string
	Tokens []Token
}

// Map returns logical key to token value mapping.
func (r *Result) Map() map[string]string {
	m := make(map[string]string, len(r.Tokens))
	for _, t := range r.Tokens {
		m[t.Key] = t.Value
	}
	return m
}

// Get returns token value of logical key.
func (r *Result) Get(key string) (string, bool) {
	for _, t := range r.Tokens {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Join concatenates class lists into single class attribute value dropping
// empty entries and extra whitespace.
func Join(classes ...string) string {
	var fields []string
	for _, c := range classes {
		fields = append(fields, strings.Fields(c)...)
	}
	return strings.Join(fields, " ")
}
