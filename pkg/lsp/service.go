// Package lsp serves the analysis backend over the Language Server
// Protocol. The Service owns open document state and the project index; the
// handler in this package adapts it to the wire protocol.
package lsp

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/twinetools/chapbook-ls/pkg/completion"
	"github.com/twinetools/chapbook-ls/pkg/diagnostic"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/hover"
	"github.com/twinetools/chapbook-ls/pkg/index"
	"github.com/twinetools/chapbook-ls/pkg/parser"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// Service tracks open documents and keeps the project index in step with
// them. Every query re-parses the current text; rapid edits just supersede
// earlier results.
type Service struct {
	format format.StoryFormat
	cfg    diagnostic.Config

	mu    sync.RWMutex
	docs  map[string]string
	index *index.InMemory
}

func NewService(storyFormat format.StoryFormat, cfg diagnostic.Config) *Service {
	return &Service{
		format: storyFormat,
		cfg:    cfg,
		docs:   make(map[string]string),
		index:  index.NewInMemory(),
	}
}

// Index exposes the project index for read access.
func (s *Service) Index() symbols.Index {
	return s.index
}

// UpdateDocument stores the document's new text, replaces its index
// contribution, and returns the full diagnostic set: the parse's own
// diagnostics plus the project-wide second pass.
func (s *Service) UpdateDocument(ctx context.Context, uri, text string) []symbols.Diagnostic {
	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()

	res := parser.Parse(ctx, parser.Whole(uri, text), s.format, s.index)
	s.index.SetReferences(uri, res.References)
	s.index.SetDefinitions(uri, res.Definitions)

	diags := append([]symbols.Diagnostic(nil), res.Diagnostics...)
	diags = append(diags, diagnostic.Generate(ctx, res.References, s.index, s.cfg)...)

	zerolog.Ctx(ctx).Debug().
		Str("uri", uri).
		Int("diagnostics", len(diags)).
		Msg("document analyzed")
	return diags
}

// CloseDocument forgets the document and clears its index contribution.
func (s *Service) CloseDocument(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
	s.index.Remove(uri)
}

// Document returns the tracked text for a URI.
func (s *Service) Document(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.docs[uri]
	return text, ok
}

// Analyze re-parses the document's current text.
func (s *Service) Analyze(ctx context.Context, uri string) *parser.Result {
	text, ok := s.Document(uri)
	if !ok {
		return nil
	}
	return parser.Parse(ctx, parser.Whole(uri, text), s.format, s.index)
}

// Completions generates candidates at pos, or nil for a position with
// nothing to offer.
func (s *Service) Completions(ctx context.Context, uri string, pos position.Pos) *completion.Result {
	text, ok := s.Document(uri)
	if !ok {
		return nil
	}
	return completion.Complete(ctx, parser.Whole(uri, text), pos, s.format, s.index)
}

// Hover documents the construct at pos, or nil.
func (s *Service) Hover(ctx context.Context, uri string, pos position.Pos) *hover.Result {
	text, ok := s.Document(uri)
	if !ok {
		return nil
	}
	return hover.Hover(ctx, parser.Whole(uri, text), pos, s.format, s.index)
}

// Definition resolves pos to a custom registration's source location, or
// nil.
func (s *Service) Definition(ctx context.Context, uri string, pos position.Pos) *symbols.Location {
	text, ok := s.Document(uri)
	if !ok {
		return nil
	}
	return hover.Definition(ctx, parser.Whole(uri, text), pos, s.format, s.index)
}
