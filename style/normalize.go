package style

import (
	"fmt"
	"reflect"
	"strings"

	"stylx/css"
)

// Reserved structural fields of style rules.
const (
	FieldComposes  = "composes"
	FieldSelectors = "selectors"
	FieldQueries   = "queries"
	FieldVariables = "variables"
)

// Fields of custom property rules.
const (
	FieldSyntax       = "syntax"
	FieldInherits     = "inherits"
	FieldInitialValue = "initialValue"
)

// Normalize converts definition set into tagged definitions, one per top
// level key, in input order. Duplicate keys are not checked here.
func Normalize(kind DefKind, defs *Map) ([]*Definition, error) {
	res := make([]*Definition, 0, defs.Len())
	for _, e := range defs.Entries() {
		def := &Definition{Key: e.Key, Kind: kind}

		var err error
		switch kind {
		case Styles:
			def.Nodes, err = normalizeStyle(e.Key, e.Value)
		case Keyframes:
			def.Nodes, err = normalizeKeyframes(e.Key, e.Value)
		case Variables:
			def.Property, err = normalizeProperty(e.Key, e.Value)
		default:
			err = fmt.Errorf("%s: unexpected definition kind %d", e.Key, kind)
		}
		if err != nil {
			return nil, err
		}
		res = append(res, def)
	}
	return res, nil
}

func asMap(key string, v any) (*Map, error) {
	switch m := v.(type) {
	case nil:
		return &Map{}, nil
	case *Map:
		return m, nil
	case Map:
		return &m, nil
	}
	return nil, &UnsupportedDynamicValueError{Key: key, Value: v}
}

func normalizeStyle(key string, v any) ([]*Node, error) {
	body, err := asMap(key, v)
	if err != nil {
		return nil, err
	}

	var nodes []*Node
	for _, e := range body.Entries() {
		path := key + "." + e.Key
		if e.Value == nil {
			continue
		}

		switch {
		case e.Key == FieldComposes:
			refs, err := stringList(path, e.Value)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &Node{Kind: KindComposes, Key: e.Key, Composes: refs})

		case e.Key == FieldSelectors, e.Key == FieldQueries:
			sub, err := asMap(path, e.Value)
			if err != nil {
				return nil, err
			}
			for _, se := range sub.Entries() {
				var n *Node
				if e.Key == FieldQueries || strings.HasPrefix(strings.TrimSpace(se.Key), "@") {
					n, err = atRuleNode(path, se.Key, se.Value)
				} else {
					n, err = selectorNode(path, se.Key, se.Value)
				}
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, n)
			}

		case e.Key == FieldVariables:
			decls, err := variableDeclarations(path, e.Value)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, decls...)

		case strings.HasPrefix(strings.TrimSpace(e.Key), "@"):
			n, err := atRuleNode(key, e.Key, e.Value)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)

		case css.ParseTemplate(e.Key, true).HasHole(), isMapValue(e.Value):
			n, err := selectorNode(key, e.Key, e.Value)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)

		default:
			n, err := declaration(path, e.Key, e.Value)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func isMapValue(v any) bool {
	switch v.(type) {
	case *Map, Map:
		return true
	}
	return false
}

// selectorNode builds nested selector scope. Selector without self reference
// marker is attached to the parent ("&:hover" for pseudo classes and
// attribute selectors, "& child" for anything else).
func selectorNode(path, text string, v any) (*Node, error) {
	sel := strings.TrimSpace(text)
	t := css.ParseTemplate(sel, true)
	if !t.HasHole() {
		if strings.HasPrefix(sel, ":") || strings.HasPrefix(sel, "[") {
			sel = "&" + sel
		} else {
			sel = "& " + sel
		}
		t = css.ParseTemplate(sel, true)
	}
	children, err := normalizeStyle(path+"."+text, v)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindSelector, Key: text, Selector: t, Children: children}, nil
}

func atRuleNode(path, text string, v any) (*Node, error) {
	ar, err := css.ParseAtRule(text)
	if err != nil {
		return nil, &InvalidAtRuleSyntaxError{Key: path, Text: text, Err: err}
	}
	children, err := normalizeStyle(path+"."+text, v)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindAtRule, Key: text, AtRule: ar, Children: children}, nil
}

// variableDeclarations normalizes "variables" field: keys are custom property
// names or references to custom properties declared by variable definitions.
func variableDeclarations(path string, v any) ([]*Node, error) {
	vars, err := asMap(path, v)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, vars.Len())
	for _, e := range vars.Entries() {
		if e.Value == nil {
			continue
		}
		name := strings.TrimSpace(e.Key)
		if !strings.HasPrefix(name, "$") && !css.IsCustomProperty(name) {
			name = "--" + name
		}
		n, err := declaration(path+"."+e.Key, name, e.Value)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func declaration(path, property string, v any) (*Node, error) {
	var values []Value
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		values = make([]Value, 0, rv.Len())
		for i := range rv.Len() {
			val, err := scalar(path, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			values = append(values, val)
		}
	} else {
		val, err := scalar(path, v)
		if err != nil {
			return nil, err
		}
		values = []Value{val}
	}
	return &Node{Kind: KindDeclaration, Key: property, Property: property, Values: values}, nil
}

// scalar reduces v to static string or number.
func scalar(path string, v any) (Value, error) {
	if s, ok := v.(string); ok {
		return Value{Text: s}, nil
	}
	if v == nil {
		return Value{}, &UnsupportedDynamicValueError{Key: path, Value: v}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Value{Number: float64(rv.Int()), IsNumber: true}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Value{Number: float64(rv.Uint()), IsNumber: true}, nil
	case reflect.Float32, reflect.Float64:
		return Value{Number: rv.Float(), IsNumber: true}, nil
	case reflect.String:
		return Value{Text: rv.String()}, nil
	}
	return Value{}, &UnsupportedDynamicValueError{Key: path, Value: v}
}

func stringList(path string, v any) ([]string, error) {
	if s, ok := v.(string); ok {
		return strings.Fields(s), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &UnsupportedDynamicValueError{Key: path, Value: v}
	}
	res := make([]string, 0, rv.Len())
	for i := range rv.Len() {
		item := rv.Index(i).Interface()
		s, ok := item.(string)
		if !ok {
			return nil, &UnsupportedDynamicValueError{Key: fmt.Sprintf("%s[%d]", path, i), Value: item}
		}
		res = append(res, strings.TrimSpace(s))
	}
	return res, nil
}

func normalizeKeyframes(key string, v any) ([]*Node, error) {
	frames, err := asMap(key, v)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, frames.Len())
	for _, fe := range frames.Entries() {
		path := key + "." + fe.Key
		body, err := asMap(path, fe.Value)
		if err != nil {
			return nil, err
		}
		frame := &Node{Kind: KindFrame, Key: strings.TrimSpace(fe.Key)}
		for _, e := range body.Entries() {
			if e.Value == nil {
				continue
			}
			if e.Key == FieldVariables {
				decls, err := variableDeclarations(path+"."+e.Key, e.Value)
				if err != nil {
					return nil, err
				}
				frame.Children = append(frame.Children, decls...)
				continue
			}
			n, err := declaration(path+"."+e.Key, e.Key, e.Value)
			if err != nil {
				return nil, err
			}
			frame.Children = append(frame.Children, n)
		}
		nodes = append(nodes, frame)
	}
	return nodes, nil
}

func normalizeProperty(key string, v any) (*PropertyRule, error) {
	body, err := asMap(key, v)
	if err != nil {
		return nil, err
	}
	pr := &PropertyRule{}
	for _, e := range body.Entries() {
		path := key + "." + e.Key
		if e.Value == nil {
			continue
		}
		switch e.Key {
		case FieldSyntax:
			s, ok := e.Value.(string)
			if !ok {
				return nil, &UnsupportedDynamicValueError{Key: path, Value: e.Value}
			}
			pr.Syntax = s
		case FieldInherits:
			b, ok := e.Value.(bool)
			if !ok {
				return nil, &UnsupportedDynamicValueError{Key: path, Value: e.Value}
			}
			pr.Inherits = &b
		case FieldInitialValue:
			val, err := scalar(path, e.Value)
			if err != nil {
				return nil, err
			}
			pr.InitialValue = &val
		default:
			return nil, fmt.Errorf("%s: unknown custom property field", path)
		}
	}
	return pr, nil
}
