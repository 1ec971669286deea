package style

import (
	"fmt"
)

// UnknownReferenceError is returned when a reference token names a key which
// was not declared earlier in the compilation unit.
type UnknownReferenceError struct {
	Key       string // logical key being compiled
	Reference string // referenced name without "$"
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s: unknown reference $%s", e.Key, e.Reference)
}

// ReferenceKindMismatchError is returned when a reference is used in a
// position incompatible with the kind of definition it names, for example a
// keyframe name where a class is expected.
type ReferenceKindMismatchError struct {
	Key       string
	Reference string
	Position  Position
	Got       DefKind
}

func (e *ReferenceKindMismatchError) Error() string {
	return fmt.Sprintf("%s: $%s names %s and cannot be used in %s", e.Key, e.Reference, e.Got, e.Position)
}

// DuplicateLogicalKeyError is returned when a logical key is declared twice
// within one compilation unit.
type DuplicateLogicalKeyError struct {
	Key string
}

func (e *DuplicateLogicalKeyError) Error() string {
	return fmt.Sprintf("%s: logical key declared more than once", e.Key)
}

// InvalidAtRuleSyntaxError is returned when at-rule header does not have
// "@ident arguments" shape.
type InvalidAtRuleSyntaxError struct {
	Key  string
	Text string
	Err  error
}

func (e *InvalidAtRuleSyntaxError) Error() string {
	return fmt.Sprintf("%s: invalid at-rule %q: %v", e.Key, e.Text, e.Err)
}

func (e *InvalidAtRuleSyntaxError) Unwrap() error {
	return e.Err
}

// UnsupportedDynamicValueError is returned when a value cannot be reduced to
// a static string or number.
type UnsupportedDynamicValueError struct {
	Key   string
	Value any
}

func (e *UnsupportedDynamicValueError) Error() string {
	if tag, ok := e.Value.(string); ok {
		return fmt.Sprintf("%s: cannot statically evaluate value tagged %s", e.Key, tag)
	}
	return fmt.Sprintf("%s: cannot statically evaluate value of type %T", e.Key, e.Value)
}
