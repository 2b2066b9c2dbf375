package parser

import (
	"regexp"
	"strings"

	"github.com/twinetools/chapbook-ls/pkg/builtins"
	"github.com/twinetools/chapbook-ls/pkg/scanner"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// urlScheme recognizes absolute URLs so urlOrPassage values pointing off-site
// never become passage references.
var urlScheme = regexp.MustCompile(`^[a-z][a-z0-9+.-]*://`)

// insertContract is the unified view of an insert's argument and property
// obligations, whether it came from the built-in catalog or a project
// registration.
type insertContract struct {
	name       string
	deprecated bool
	firstArg   *symbols.FirstArgument
	required   []symbols.Prop
	optional   []symbols.Prop
}

func (c *insertContract) prop(name string) *symbols.Prop {
	for i := range c.required {
		if c.required[i].Name == name {
			return &c.required[i]
		}
	}
	for i := range c.optional {
		if c.optional[i].Name == name {
			return &c.optional[i]
		}
	}
	return nil
}

// resolveInsert matches a name first against the built-in catalog, then
// against the project's custom registrations. The built-in descriptor is
// returned alongside the contract when one matched, for version gating.
func (s *state) resolveInsert(name string) (*insertContract, *symbols.Descriptor) {
	if d := builtins.MatchInsert(name); d != nil {
		return &insertContract{
			name:       d.Name,
			deprecated: d.Deprecated,
			firstArg:   d.FirstArgument,
			required:   d.RequiredProps,
			optional:   d.OptionalProps,
		}, d
	}
	for _, def := range s.customInserts() {
		if def.Match != nil && def.Match.MatchString(name) {
			return &insertContract{
				name:     def.Name,
				firstArg: def.FirstArgument,
				required: def.RequiredProps,
				optional: def.OptionalProps,
			}, nil
		}
	}
	return nil, nil
}

// isInsertName reports whether text is a plausible insert name: a word
// starting with a letter, $, or _, possibly continuing with word characters
// and internal spaces. Anything else is an expression.
func isInsertName(text string) bool {
	if text == "" || !isIdentStart(text[0]) {
		return false
	}
	for i := 1; i < len(text); i++ {
		c := text[i]
		if !isIdentByte(c) && c != ' ' {
			return false
		}
	}
	return true
}

// parseInsert analyzes the contents of a `{...}` form spanning
// [contentStart, contentEnd) in the document. A bare expression such as
// `{score + 1}` is scanned for references; everything shaped like a named
// insert is resolved and checked against its contract.
func (s *state) parseInsert(contentStart, contentEnd int) {
	content := s.passage.Document[contentStart:contentEnd]
	if strings.TrimSpace(content) == "" {
		return
	}

	parts := scanner.SplitInsert(content)
	leading := parts.Leading

	nameText := leading.Text
	argText := ""
	argOffset := -1
	if colon := scanner.IndexTopLevel(leading.Text, ':'); colon >= 0 {
		nameText = leading.Text[:colon]
		argText = leading.Text[colon+1:]
		argOffset = leading.Offset + colon + 1
	}

	nameStart, nameEnd := trimSpan(nameText, contentStart+leading.Offset)
	name := s.passage.Document[nameStart:nameEnd]

	if !isInsertName(name) {
		s.scanExpression(content, contentStart, true)
		return
	}
	// A lone word with no argument and no properties is a variable
	// reference, not an insert, unless something registered under it.
	contract, d := s.resolveInsert(name)
	if contract == nil && argOffset < 0 && len(parts.Properties) == 0 && !strings.Contains(name, " ") {
		s.scanExpression(content, contentStart, true)
		return
	}

	mods := symbols.ModifierNone
	if contract != nil && contract.deprecated {
		mods = symbols.ModifierDeprecated
	}
	s.token(nameStart, nameEnd, symbols.TokenFunction, mods)

	if d != nil {
		s.ref(d.Name, symbols.KindBuiltInInsert, nameStart, nameEnd)
		s.versionGate(d, nameStart, nameEnd)
	} else {
		s.ref(name, symbols.KindCustomInsert, nameStart, nameEnd)
	}

	displayName := name
	if contract != nil {
		displayName = contract.name
	}

	hasArg := argOffset >= 0 && strings.TrimSpace(argText) != ""
	if contract != nil && contract.firstArg != nil {
		switch {
		case contract.firstArg.Required == symbols.ArgRequired && !hasArg:
			s.errorAt(nameStart, nameEnd, `Insert "`+displayName+`" requires a first argument`)
		case contract.firstArg.Required == symbols.ArgIgnored && hasArg:
			aStart, aEnd := trimSpan(argText, contentStart+argOffset)
			s.warnAt(aStart, aEnd, `Insert "`+displayName+`" will ignore this first argument`)
		}
	}
	if hasArg {
		argType := symbols.ValueUnknown
		if contract != nil && contract.firstArg != nil {
			argType = contract.firstArg.Type
		}
		s.typedValue(argText, contentStart+argOffset, argType)
	}

	seen := map[string]bool{}
	for _, prop := range parts.Properties {
		pStart, pEnd := trimSpan(prop.Name, contentStart+prop.NameOffset)
		if pEnd <= pStart {
			continue
		}
		pname := s.passage.Document[pStart:pEnd]
		seen[pname] = true

		s.token(pStart, pEnd, symbols.TokenProperty, symbols.ModifierNone)
		if strings.ContainsAny(pname, " \t") {
			s.errorAt(pStart, pEnd, "Properties can't have spaces")
		} else if contract != nil && contract.prop(pname) == nil {
			s.warnAt(pStart, pEnd, `Insert "`+displayName+`" will ignore this property`)
		}

		if !prop.HasValue {
			continue
		}
		ptype := symbols.ValueUnknown
		if contract != nil {
			if p := contract.prop(pname); p != nil {
				ptype = p.Type
			}
		}
		s.typedValue(prop.Value, contentStart+prop.ValueOffset, ptype)
	}

	if contract != nil {
		var missing []string
		for _, p := range contract.required {
			if !seen[p.Name] {
				missing = append(missing, p.Name)
			}
		}
		if len(missing) > 0 {
			s.errorAt(nameStart, nameEnd,
				`Insert "`+displayName+`" is missing required properties: `+strings.Join(missing, ", "))
		}
	}
}

// typedValue tokenizes a first-argument or property value according to its
// declared type. Passage-typed quoted values yield a passage reference inside
// the quotes; urlOrPassage values skip the reference when the text is an
// absolute URL.
func (s *state) typedValue(text string, base int, t symbols.ValueType) {
	start, end := trimSpan(text, base)
	if end <= start {
		return
	}
	value := s.passage.Document[start:end]

	switch t {
	case symbols.ValuePassage, symbols.ValueURLOrPassage:
		if scanner.IsQuoted(value) {
			s.token(start, end, symbols.TokenString, symbols.ModifierNone)
			inner := value[1 : len(value)-1]
			if t == symbols.ValueURLOrPassage && urlScheme.MatchString(inner) {
				return
			}
			s.ref(inner, symbols.KindPassage, start+1, end-1)
			return
		}
		s.scanExpression(value, start, true)
	default:
		s.classifyValue(value, start)
	}
}
