package lsp

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

const serverName = "chapbook-ls"

// Handler adapts the Service to the wire protocol. One handler serves one
// client connection.
type Handler struct {
	ctx     context.Context
	service *Service
	version string
}

func NewHandler(ctx context.Context, service *Service, version string) *Handler {
	return &Handler{ctx: ctx, service: service, version: version}
}

// RunStdio serves the client on stdin/stdout until the connection closes.
func (h *Handler) RunStdio() error {
	srv := glspserver.NewServer(h.protocolHandler(), serverName, false)
	return srv.RunStdio()
}

func (h *Handler) protocolHandler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:                     h.initialize,
		Initialized:                    h.initialized,
		Shutdown:                       h.shutdown,
		SetTrace:                       h.setTrace,
		TextDocumentDidOpen:            h.didOpen,
		TextDocumentDidChange:          h.didChange,
		TextDocumentDidClose:           h.didClose,
		TextDocumentCompletion:         h.completion,
		TextDocumentHover:              h.hover,
		TextDocumentDefinition:         h.definition,
		TextDocumentFoldingRange:       h.foldingRange,
		TextDocumentSemanticTokensFull: h.semanticTokensFull,
	}
}

func (h *Handler) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	zerolog.Ctx(h.ctx).Info().
		Interface("client", params.ClientInfo).
		Msg("client initializing")

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: ptr(true),
			Change:    &syncKind,
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"{", "[", ":", " "},
		},
		HoverProvider:        &protocol.HoverOptions{},
		DefinitionProvider:   true,
		FoldingRangeProvider: true,
		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     symbols.LegendTokenTypes,
				TokenModifiers: symbols.LegendTokenModifiers,
			},
			Full: true,
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: ptr(h.version),
		},
	}, nil
}

func (h *Handler) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	zerolog.Ctx(h.ctx).Info().Msg("client initialized")
	return nil
}

func (h *Handler) shutdown(ctx *glsp.Context) error {
	zerolog.Ctx(h.ctx).Info().Msg("client shutting down")
	return nil
}

func (h *Handler) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (h *Handler) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	diags := h.service.UpdateDocument(h.ctx, uri, params.TextDocument.Text)
	h.publishDiagnostics(ctx, uri, diags)
	return nil
}

func (h *Handler) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	text, _ := h.service.Document(uri)
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, c)
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		}
	}
	diags := h.service.UpdateDocument(h.ctx, uri, text)
	h.publishDiagnostics(ctx, uri, diags)
	return nil
}

func (h *Handler) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	h.service.CloseDocument(uri)
	h.publishDiagnostics(ctx, uri, nil)
	return nil
}

func (h *Handler) publishDiagnostics(ctx *glsp.Context, uri string, diags []symbols.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: toProtocolDiagnostics(diags),
	})
}

func (h *Handler) completion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := string(params.TextDocument.URI)
	res := h.service.Completions(h.ctx, uri, fromProtocolPosition(params.Position))
	if res == nil {
		return nil, nil
	}
	return toProtocolCompletion(res), nil
}

func (h *Handler) hover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := string(params.TextDocument.URI)
	res := h.service.Hover(h.ctx, uri, fromProtocolPosition(params.Position))
	if res == nil {
		return nil, nil
	}
	rng := toProtocolRange(res.Range)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: res.Markdown,
		},
		Range: &rng,
	}, nil
}

func (h *Handler) definition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := string(params.TextDocument.URI)
	loc := h.service.Definition(h.ctx, uri, fromProtocolPosition(params.Position))
	if loc == nil {
		return nil, nil
	}
	return protocol.Location{
		URI:   protocol.DocumentUri(loc.URI),
		Range: toProtocolRange(loc.Range),
	}, nil
}

func (h *Handler) foldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	res := h.service.Analyze(h.ctx, string(params.TextDocument.URI))
	if res == nil {
		return nil, nil
	}
	return toProtocolFoldingRanges(res.FoldingRanges), nil
}

func (h *Handler) semanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	res := h.service.Analyze(h.ctx, string(params.TextDocument.URI))
	if res == nil {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}
	return &protocol.SemanticTokens{Data: encodeTokens(res.Tokens)}, nil
}

// applyChange splices one incremental edit into text. The service runs with
// full sync, but clients that send ranged edits anyway still work.
func applyChange(text string, change protocol.TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}
	m := position.NewMapper(text)
	start := m.Offset(fromProtocolPosition(change.Range.Start))
	end := m.Offset(fromProtocolPosition(change.Range.End))
	return text[:start] + change.Text + text[end:]
}

func ptr[T any](v T) *T {
	return &v
}
