// Package symbols defines the vocabulary shared by every analysis pass:
// symbol kinds, semantic tokens, references, definitions, built-in
// descriptors, diagnostics, and the project-wide index contract.
package symbols

// SymbolKind classifies what a dialect name occurrence refers to. It is a
// closed enumeration; passes switch over it exhaustively rather than
// dispatching through interfaces.
type SymbolKind int

const (
	// KindVariable is a read of a story variable.
	KindVariable SymbolKind = iota
	// KindVariableSet is an assignment in the vars section.
	KindVariableSet
	// KindProperty is a read of a variable's property.
	KindProperty
	// KindPropertySet is a property assignment in the vars section.
	KindPropertySet
	// KindCustomInsert is a use of an author-registered insert.
	KindCustomInsert
	// KindCustomModifier is a use of an author-registered modifier.
	KindCustomModifier
	// KindBuiltInInsert is a use of an insert from the built-in catalog.
	KindBuiltInInsert
	// KindBuiltInModifier is a use of a modifier from the built-in catalog.
	KindBuiltInModifier
	// KindPassage is a reference to another passage by name.
	KindPassage
)

func (k SymbolKind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindVariableSet:
		return "variable-set"
	case KindProperty:
		return "property"
	case KindPropertySet:
		return "property-set"
	case KindCustomInsert:
		return "custom-insert"
	case KindCustomModifier:
		return "custom-modifier"
	case KindBuiltInInsert:
		return "built-in-insert"
	case KindBuiltInModifier:
		return "built-in-modifier"
	case KindPassage:
		return "passage"
	default:
		return "unknown"
	}
}

// ValueType declares how an insert argument or property value is interpreted,
// which governs what references its value yields.
type ValueType int

const (
	ValueUnknown ValueType = iota
	ValuePlain
	ValueExpression
	ValueNumber
	ValuePassage
	ValueURLOrPassage
)

func (v ValueType) String() string {
	switch v {
	case ValuePlain:
		return "plain"
	case ValueExpression:
		return "expression"
	case ValueNumber:
		return "number"
	case ValuePassage:
		return "passage"
	case ValueURLOrPassage:
		return "urlOrPassage"
	default:
		return "unknown"
	}
}

// ValueTypeFromString parses the textual form used by engine extensions.
// Unrecognized names come back as ValueUnknown rather than an error; the
// extension schema treats them as a warning, not a hard failure.
func ValueTypeFromString(s string) ValueType {
	switch s {
	case "plain":
		return ValuePlain
	case "expression":
		return ValueExpression
	case "number":
		return ValueNumber
	case "passage":
		return ValuePassage
	case "urlOrPassage":
		return ValueURLOrPassage
	default:
		return ValueUnknown
	}
}

// ArgRequirement says whether an insert's first argument must, may, or must
// not be supplied.
type ArgRequirement int

const (
	ArgRequired ArgRequirement = iota
	ArgOptional
	ArgIgnored
)

func (a ArgRequirement) String() string {
	switch a {
	case ArgRequired:
		return "required"
	case ArgOptional:
		return "optional"
	case ArgIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}
