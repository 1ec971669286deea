package style

// DefKind is the kind of definition set a logical key belongs to.
type DefKind int

const (
	Styles DefKind = iota
	Keyframes
	Variables
)

func (k DefKind) String() string {
	switch k {
	case Styles:
		return "style rule"
	case Keyframes:
		return "keyframes rule"
	case Variables:
		return "custom property"
	default:
		return "unknown definition"
	}
}

// Position is the place in a rule where a reference token appears, it
// decides which definition kinds may be referenced and in which form.
type Position int

const (
	InSelector Position = iota // class form, ".alias"
	InComposes                 // class name, "alias"
	InValue                    // "--alias" for custom properties, "alias" for keyframes
	InProperty                 // "--alias"
)

func (p Position) String() string {
	switch p {
	case InSelector:
		return "selector"
	case InComposes:
		return "composition"
	case InValue:
		return "value"
	case InProperty:
		return "property name"
	default:
		return "unknown position"
	}
}

// Accepts reports whether definitions of kind k may be referenced at p.
func (p Position) Accepts(k DefKind) bool {
	switch p {
	case InSelector, InComposes:
		return k == Styles
	case InValue:
		return k == Variables || k == Keyframes
	case InProperty:
		return k == Variables
	}
	return false
}
