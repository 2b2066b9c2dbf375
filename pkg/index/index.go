// Package index provides the project-wide symbol store. Parses write their
// passage's references and definitions by URI, wholesale replacing the prior
// contribution; the diagnostic, completion, and hover passes read
// project-wide snapshots.
package index

import (
	"sort"
	"sync"

	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// InMemory is the standard symbols.Index implementation. Writes replace an
// entire document's entries at once, so a re-parse can never leave stale
// references behind. Safe for concurrent use.
type InMemory struct {
	mu   sync.RWMutex
	refs map[string][]symbols.Reference
	defs map[string][]symbols.Definition
}

var _ symbols.Index = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		refs: make(map[string][]symbols.Reference),
		defs: make(map[string][]symbols.Definition),
	}
}

// SetReferences replaces the document's references. An empty or nil slice
// clears them.
func (x *InMemory) SetReferences(uri string, refs []symbols.Reference) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if len(refs) == 0 {
		delete(x.refs, uri)
		return
	}
	x.refs[uri] = append([]symbols.Reference(nil), refs...)
}

// SetDefinitions replaces the document's definitions.
func (x *InMemory) SetDefinitions(uri string, defs []symbols.Definition) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if len(defs) == 0 {
		delete(x.defs, uri)
		return
	}
	x.defs[uri] = append([]symbols.Definition(nil), defs...)
}

// Remove drops everything a document contributed, for use when a file
// closes or is deleted.
func (x *InMemory) Remove(uri string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.refs, uri)
	delete(x.defs, uri)
}

// ProjectReferences returns every reference of the kind across all
// documents, ordered by URI for deterministic output.
func (x *InMemory) ProjectReferences(kind symbols.SymbolKind) []symbols.Reference {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []symbols.Reference
	for _, uri := range sortedKeys(x.refs) {
		for _, ref := range x.refs[uri] {
			if ref.Kind == kind {
				out = append(out, ref)
			}
		}
	}
	return out
}

// ProjectDefinitions returns every definition of the kind across all
// documents, ordered by URI.
func (x *InMemory) ProjectDefinitions(kind symbols.SymbolKind) []symbols.Definition {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []symbols.Definition
	for _, uri := range sortedKeys(x.defs) {
		for _, def := range x.defs[uri] {
			if def.Kind == kind {
				out = append(out, def)
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
