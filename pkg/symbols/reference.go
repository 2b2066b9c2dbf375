package symbols

import (
	"regexp"

	"github.com/twinetools/chapbook-ls/pkg/position"
)

// Location is a range inside a specific document.
type Location struct {
	URI   string
	Range position.Range
}

// Reference records every occurrence of one dialect name within a single
// parse, aggregated by (contents, kind).
type Reference struct {
	Contents string
	Kind     SymbolKind
	Ranges   []position.Range
}

// ReferenceSet accumulates occurrences during a parse and hands back the
// aggregated, insertion-ordered reference list.
type ReferenceSet struct {
	order []refKey
	byKey map[refKey]*Reference
}

type refKey struct {
	contents string
	kind     SymbolKind
}

func NewReferenceSet() *ReferenceSet {
	return &ReferenceSet{byKey: make(map[refKey]*Reference)}
}

// Add records one occurrence.
func (s *ReferenceSet) Add(contents string, kind SymbolKind, rng position.Range) {
	key := refKey{contents: contents, kind: kind}
	ref, ok := s.byKey[key]
	if !ok {
		ref = &Reference{Contents: contents, Kind: kind}
		s.byKey[key] = ref
		s.order = append(s.order, key)
	}
	ref.Ranges = append(ref.Ranges, rng)
}

// References returns the aggregated list in first-occurrence order.
func (s *ReferenceSet) References() []Reference {
	out := make([]Reference, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.byKey[key])
	}
	return out
}

// Prop describes one named property an insert accepts. Order matters:
// missing-property diagnostics list names in declared order, and completion
// placeholders follow it.
type Prop struct {
	Name        string
	Type        ValueType
	Placeholder string
}

// FirstArgument is the contract for the value between an insert's name and
// its first property.
type FirstArgument struct {
	Required    ArgRequirement
	Type        ValueType
	Placeholder string
}

// Definition is an author-registered insert or modifier, produced by the
// extension parser. Contents is the raw matcher source; Name defaults to it
// when the extension supplies none.
type Definition struct {
	Name     string
	Contents string
	Kind     SymbolKind
	Location Location

	// Match is compiled once at registration and reused read-only.
	Match *regexp.Regexp

	Description   string
	Syntax        string
	Completions   []string
	FirstArgument *FirstArgument
	RequiredProps []Prop
	OptionalProps []Prop
}

// Descriptor is a built-in insert or modifier's static contract. Catalog
// entries are immutable; resolution walks the catalog in order and the first
// regex match wins.
type Descriptor struct {
	Name        string
	Match       *regexp.Regexp
	Syntax      string
	Description string

	// Since and Removed bound the story-format versions the entry exists in.
	// Empty means unbounded on that side.
	Since   string
	Removed string
	// Deprecated marks entries that still work but should not be offered
	// first in completions.
	Deprecated bool

	Completions   []string
	FirstArgument *FirstArgument
	RequiredProps []Prop
	OptionalProps []Prop
}
