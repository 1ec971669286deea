package alias

import (
	"regexp"
	"strconv"
)

var invalidLabelChars = regexp.MustCompile(`\W`)

// Scope allocates aliases for logical keys of a single compilation unit.
// It is not safe for concurrent use, unit is compiled sequentially.
type Scope struct {
	hash    string
	counter uint64
	debug   bool
}

// NewScope returns allocator for unit with given stable identity. When debug
// is set, aliases carry sanitized logical key as a suffix.
func NewScope(identity string, debug bool) *Scope {
	return &Scope{hash: Hash(identity), debug: debug}
}

// Hash returns scope hash shared by all aliases of the unit.
func (s *Scope) Hash() string {
	return s.hash
}

// Allocate returns next alias of the unit. Allocation never fails and never
// returns the same alias twice.
func (s *Scope) Allocate(key string) string {
	alias := s.hash + strconv.FormatUint(s.counter, 36)
	s.counter++

	if s.debug {
		alias += "_" + invalidLabelChars.ReplaceAllString(key, "_")
	}
	return escape(alias)
}

// Mark returns current allocator position, see Reset.
func (s *Scope) Mark() uint64 {
	return s.counter
}

// Reset returns allocator to previously marked position. Used to drop aliases
// allocated by compilation which failed.
func (s *Scope) Reset(mark uint64) {
	s.counter = mark
}

// escape makes alias valid at the start of class name or identifier.
func escape(alias string) string {
	if alias != "" && '0' <= alias[0] && alias[0] <= '9' {
		return "_" + alias
	}
	return alias
}
