package symbols

// Index is the project-wide store of references and definitions across
// documents. The analyzer treats it as an injected collaborator: read-mostly
// during diagnostics, completion, and hover, and an append-by-replace sink
// during parsing. Re-parsing a document must fully replace that document's
// prior contribution; storage mechanics belong to the implementation.
type Index interface {
	// SetReferences replaces the document's references.
	SetReferences(uri string, refs []Reference)
	// SetDefinitions replaces the document's custom definitions.
	SetDefinitions(uri string, defs []Definition)

	// ProjectReferences returns every reference of the given kind across all
	// indexed documents.
	ProjectReferences(kind SymbolKind) []Reference
	// ProjectDefinitions returns every custom definition of the given kind
	// across all indexed documents.
	ProjectDefinitions(kind SymbolKind) []Definition
}
