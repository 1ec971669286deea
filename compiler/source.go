package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v3"

	"stylx/style"
)

// Source is a definition document: custom properties, keyframes and style
// rules of one compilation unit. Sections are compiled in that order so later
// sections can reference earlier ones.
type Source struct {
	Variables *style.Map `yaml:"variables,omitempty"`
	Keyframes *style.Map `yaml:"keyframes,omitempty"`
	Styles    *style.Map `yaml:"styles,omitempty"`
}

// ReadSource decodes YAML definition stream. Every document of the stream
// ("---" separated) becomes its own Source, in stream order. Unknown top
// level sections are rejected.
func ReadSource(r io.Reader) ([]*Source, error) {
	var srcs []*Source
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	for {
		src := &Source{}
		if err := dec.Decode(src); err != nil {
			if errors.Is(err, io.EOF) {
				return srcs, nil
			}
			return nil, fmt.Errorf("failed to decode definitions (document %d): %w", len(srcs)+1, err)
		}
		srcs = append(srcs, src)
	}
}

// ParseSource decodes YAML definition stream from data.
func ParseSource(data []byte) ([]*Source, error) {
	return ReadSource(bytes.NewReader(data))
}

// Compile compiles all sections of srcs as a single unit of work: documents
// in order, sections of each document in declaration order. Any failure
// aborts compilation and nothing compiled by this call is kept.
func (u *Unit) Compile(srcs ...*Source) (*Result, error) {
	sets := make([]defSet, 0, 3*len(srcs))
	for _, src := range srcs {
		sets = append(sets,
			defSet{style.Variables, src.Variables},
			defSet{style.Keyframes, src.Keyframes},
			defSet{style.Styles, src.Styles},
		)
	}
	return u.compile(sets...)
}
