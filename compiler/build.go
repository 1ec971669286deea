package compiler

import (
	"errors"
	"fmt"
	"strings"

	"stylx/alias"
	"stylx/css"
	"stylx/style"
)

// build is the state of a single compile call.
type build struct {
	unit   *Unit
	txn    *alias.Txn
	staged map[string]*symbol
	order  []string
	out    strings.Builder
}

// lookup finds symbol declared earlier in the unit, either by previous
// compile calls or earlier in this one.
func (b *build) lookup(name string) (*symbol, bool) {
	if sym, ok := b.unit.symbols[name]; ok {
		return sym, true
	}
	sym, ok := b.staged[name]
	return sym, ok
}

// resolver returns function resolving reference names found at position pos
// while compiling key.
func (b *build) resolver(key string, pos style.Position) func(string) (string, error) {
	return func(name string) (string, error) {
		sym, err := b.reference(key, name, pos)
		if err != nil {
			return "", err
		}
		switch pos {
		case style.InSelector:
			return "." + sym.alias, nil
		case style.InValue:
			if sym.kind == style.Variables {
				return "--" + sym.alias, nil
			}
			return sym.alias, nil
		case style.InProperty:
			return "--" + sym.alias, nil
		default:
			return sym.alias, nil
		}
	}
}

func (b *build) reference(key, name string, pos style.Position) (*symbol, error) {
	sym, ok := b.lookup(name)
	if !ok {
		return nil, &style.UnknownReferenceError{Key: key, Reference: name}
	}
	if !pos.Accepts(sym.kind) {
		return nil, &style.ReferenceKindMismatchError{Key: key, Reference: name, Position: pos, Got: sym.kind}
	}
	return sym, nil
}

// define compiles single definition. Key is registered only after its body
// compiled, so a definition cannot reference itself.
func (b *build) define(d *style.Definition) error {
	if _, ok := b.lookup(d.Key); ok {
		return &style.DuplicateLogicalKeyError{Key: d.Key}
	}
	sym := &symbol{key: d.Key, kind: d.Kind, alias: b.unit.scope.Allocate(d.Key)}

	var err error
	switch d.Kind {
	case style.Styles:
		err = b.styleRule(sym, d.Nodes)
	case style.Keyframes:
		err = b.keyframesRule(sym, d.Nodes)
	case style.Variables:
		err = b.propertyRule(sym, d.Property)
	default:
		err = fmt.Errorf("%s: unexpected definition kind %d", d.Key, d.Kind)
	}
	if err != nil {
		return err
	}

	b.staged[d.Key] = sym
	b.order = append(b.order, d.Key)
	return nil
}

// declText resolves property name and values of declaration node, returning
// property and every "property:value" pair.
func (b *build) declText(key string, n *style.Node) (string, []string, error) {
	prop := n.Property
	if name, ok := strings.CutPrefix(prop, "$"); ok {
		resolved, err := b.resolver(key, style.InProperty)(name)
		if err != nil {
			return "", nil, err
		}
		prop = resolved
	} else {
		prop = css.PropertyName(prop)
	}

	values := make([]string, 0, len(n.Values))
	for _, v := range n.Values {
		if v.IsNumber {
			values = append(values, css.FormatNumber(prop, v.Number))
			continue
		}
		t, err := css.ParseTemplate(v.Text, false).Resolve(b.resolver(key, style.InValue))
		if err != nil {
			return "", nil, err
		}
		values = append(values, strings.TrimSpace(t.Render("")))
	}
	return prop, values, nil
}

func declarations(prop string, values []string) string {
	var sb strings.Builder
	for _, v := range values {
		sb.WriteString(prop)
		sb.WriteByte(':')
		sb.WriteString(v)
		sb.WriteByte(';')
	}
	return sb.String()
}

var errNestedComposes = errors.New("composition is allowed only at the top level of a style rule")

func (b *build) styleRule(sym *symbol, nodes []*style.Node) error {
	var composed []string
	for _, n := range nodes {
		if n.Kind != style.KindComposes {
			continue
		}
		for _, item := range n.Composes {
			if item == "" {
				continue
			}
			name, isRef := strings.CutPrefix(item, "$")
			if !isRef {
				sym.record = append(sym.record, item)
				composed = append(composed, item)
				continue
			}
			ref, err := b.reference(sym.key, name, style.InComposes)
			if err != nil {
				return err
			}
			if ref.record != nil {
				sym.record = append(sym.record, ref.record...)
			} else {
				sym.record = append(sym.record, ref.alias)
			}
			composed = append(composed, ref.classes...)
		}
	}
	if sym.record != nil {
		sym.record = append(sym.record, sym.alias)
	}

	seen := make(map[string]bool)
	if err := b.walk(sym, nodes, css.Identity(), css.Identity(), true, seen); err != nil {
		return err
	}

	sym.classes = make([]string, 0, len(composed)+1+len(sym.atoms))
	sym.classes = append(sym.classes, composed...)
	sym.classes = append(sym.classes, sym.alias)
	sym.classes = append(sym.classes, sym.atoms...)
	return nil
}

// walk emits one atomic rule per fresh declaration. Selector template holes
// stand for the atom class, placement template holes for the rule itself.
func (b *build) walk(sym *symbol, nodes []*style.Node, selector, placement css.Template, top bool, seen map[string]bool) error {
	for _, n := range nodes {
		switch n.Kind {
		case style.KindComposes:
			if !top {
				return fmt.Errorf("%s: %w", sym.key, errNestedComposes)
			}

		case style.KindDeclaration:
			prop, values, err := b.declText(sym.key, n)
			if err != nil {
				return err
			}
			atom, fresh := b.txn.Intern(placement.Key(), selector.Key(), prop, strings.Join(values, "\x00"))
			if fresh {
				rule := selector.Render("."+atom) + "{" + declarations(prop, values) + "}"
				b.out.WriteString(placement.Render(rule))
			}
			if !seen[atom] {
				seen[atom] = true
				sym.atoms = append(sym.atoms, atom)
			}

		case style.KindSelector:
			t, err := n.Selector.Resolve(b.resolver(sym.key, style.InSelector))
			if err != nil {
				return err
			}
			if err := b.walk(sym, n.Children, selector.Substitute(t), placement, false, seen); err != nil {
				return err
			}

		case style.KindAtRule:
			wrap := css.Wrap(n.AtRule.Header())
			if err := b.walk(sym, n.Children, selector, placement.Substitute(wrap), false, seen); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%s: unexpected %s in style rule", sym.key, n.Kind)
		}
	}
	return nil
}

func (b *build) keyframesRule(sym *symbol, frames []*style.Node) error {
	var body strings.Builder
	for _, f := range frames {
		if f.Kind != style.KindFrame {
			return fmt.Errorf("%s: unexpected %s in keyframes rule", sym.key, f.Kind)
		}
		body.WriteString(f.Key)
		body.WriteByte('{')
		for _, n := range f.Children {
			prop, values, err := b.declText(sym.key, n)
			if err != nil {
				return err
			}
			body.WriteString(declarations(prop, values))
		}
		body.WriteByte('}')
	}
	b.out.WriteString("@keyframes " + sym.alias + "{" + body.String() + "}")
	return nil
}

// propertyRule registers custom property. Without any descriptor nothing is
// emitted and the property is just a unique name.
func (b *build) propertyRule(sym *symbol, pr *style.PropertyRule) error {
	if pr == nil || (pr.Syntax == "" && pr.Inherits == nil && pr.InitialValue == nil) {
		return nil
	}

	syntax := strings.TrimSpace(pr.Syntax)
	if syntax == "" {
		syntax = "*"
	}
	if !strings.HasPrefix(syntax, "'") && !strings.HasPrefix(syntax, `"`) {
		syntax = "'" + syntax + "'"
	}
	inherits := pr.Inherits != nil && *pr.Inherits

	var sb strings.Builder
	sb.WriteString("@property --" + sym.alias + "{")
	sb.WriteString("syntax:" + syntax + ";")
	fmt.Fprintf(&sb, "inherits:%t;", inherits)
	if pr.InitialValue != nil {
		value := pr.InitialValue.String()
		if !pr.InitialValue.IsNumber {
			t, err := css.ParseTemplate(value, false).Resolve(b.resolver(sym.key, style.InValue))
			if err != nil {
				return err
			}
			value = strings.TrimSpace(t.Render(""))
		}
		sb.WriteString("initial-value:" + value + ";")
	}
	sb.WriteString("}")
	b.out.WriteString(sb.String())
	return nil
}
