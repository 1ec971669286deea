package style

import (
	"fmt"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

// Entry is a single key-value pair of a Map.
type Entry struct {
	Key   string
	Value any
}

// Map is an ordered mapping. Iteration order is insertion order and is
// significant: it decides emitted CSS order and which keys are "declared
// earlier" for references. Duplicate keys are kept so the compiler can
// report them.
//
// Values are strings, numbers, bools, nil, lists (slices) of those and
// nested *Map.
type Map struct {
	entries []Entry
}

// NewMap creates map from alternating keys and values:
//
//	style.NewMap("width", 10, "color", "red")
//
// It panics when a key is not a string or a value is missing.
func NewMap(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("style: NewMap requires key value pairs")
	}
	m := &Map{entries: make([]Entry, 0, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("style: NewMap key %v is not a string", kv[i]))
		}
		m.Add(key, kv[i+1])
	}
	return m
}

// Add appends entry to the map and returns the map.
func (m *Map) Add(key string, value any) *Map {
	m.entries = append(m.entries, Entry{Key: key, Value: value})
	return m
}

// Get returns value of the first entry with key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys returns keys in order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns entries in order. Returned slice must not be modified.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return m.entries
}

// UnmarshalYAML decodes YAML mapping keeping document order. Anchors and
// aliases are resolved, custom tags are reported as dynamic values.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping, got %s", node.Line, nodeKindName(node.Kind))
	}
	res, err := decodeMapping("", node)
	if err != nil {
		return err
	}
	*m = *res
	return nil
}

// MarshalYAML encodes map as YAML mapping preserving order.
func (m *Map) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m.Entries() {
		var k, v yaml.Node
		if err := k.Encode(e.Key); err != nil {
			return nil, err
		}
		if err := v.Encode(e.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &k, &v)
	}
	return node, nil
}

func decodeMapping(path string, node *yaml.Node) (*Map, error) {
	m := &Map{entries: make([]Entry, 0, len(node.Content)/2)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		kn, vn := node.Content[i], node.Content[i+1]
		if kn.Kind == yaml.AliasNode {
			kn = kn.Alias
		}
		if kn.Kind != yaml.ScalarNode {
			return nil, &UnsupportedDynamicValueError{Key: joinPath(path, fmt.Sprintf("line %d", kn.Line)), Value: kn}
		}
		key := kn.Value
		v, err := decodeValue(joinPath(path, key), vn)
		if err != nil {
			return nil, err
		}
		m.Add(key, v)
	}
	return m, nil
}

func decodeValue(path string, node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return decodeValue(path, node.Alias)
	case yaml.MappingNode:
		return decodeMapping(path, node)
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for i, n := range node.Content {
			v, err := decodeValue(path+"["+strconv.Itoa(i)+"]", n)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!str":
			return node.Value, nil
		case "!!int", "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return f, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return b, nil
		case "!!null":
			return nil, nil
		}
	}
	return nil, &UnsupportedDynamicValueError{Key: path, Value: node.Tag}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "nothing"
	}
}
