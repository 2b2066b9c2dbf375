package lsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/twinetools/chapbook-ls/pkg/diagnostic"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

func TestEncodeTokens(t *testing.T) {
	tokens := []symbols.Token{
		{Line: 0, Character: 2, Length: 5, Type: symbols.TokenVariable},
		{Line: 0, Character: 10, Length: 3, Type: symbols.TokenNumber},
		{Line: 2, Character: 1, Length: 4, Type: symbols.TokenMacro, Modifiers: symbols.ModifierDeprecated},
	}

	want := []protocol.UInteger{
		0, 2, 5, protocol.UInteger(symbols.TokenVariable), 0,
		0, 8, 3, protocol.UInteger(symbols.TokenNumber), 0,
		2, 1, 4, protocol.UInteger(symbols.TokenMacro), protocol.UInteger(symbols.ModifierDeprecated),
	}
	assert.Equal(t, want, encodeTokens(tokens))
}

func TestEncodeTokensEmpty(t *testing.T) {
	assert.Empty(t, encodeTokens(nil))
}

func TestApplyChange(t *testing.T) {
	full := protocol.TextDocumentContentChangeEvent{Text: "replacement"}
	assert.Equal(t, "replacement", applyChange("old text", full))

	ranged := protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 1, Character: 3},
			End:   protocol.Position{Line: 1, Character: 6},
		},
		Text: "two",
	}
	assert.Equal(t, "one\nxx two yy", applyChange("one\nxx one yy", ranged))
}

func TestServiceUpdateDocument(t *testing.T) {
	svc := NewService(format.StoryFormat{Format: "chapbook"}, diagnostic.DefaultConfig())
	ctx := context.Background()

	diags := svc.UpdateDocument(ctx, "a.twee", "Try {test insert, one: 'here'}.")
	require.Len(t, diags, 1)
	assert.Equal(t, `Insert "test insert" not recognized`, diags[0].Message)

	// Registering the insert elsewhere clears the warning on re-analysis.
	script := "[JavaScript]\nengine.extend('2.0.0', () => {\n" +
		"engine.template.inserts.add({match: /test\\sinsert/});\n});"
	require.Empty(t, svc.UpdateDocument(ctx, "b.twee", script))

	diags = svc.UpdateDocument(ctx, "a.twee", "Try {test insert, one: 'here'}.")
	for _, d := range diags {
		assert.NotContains(t, d.Message, "not recognized")
	}
}

func TestServiceCloseDocument(t *testing.T) {
	svc := NewService(format.StoryFormat{Format: "chapbook"}, diagnostic.DefaultConfig())
	ctx := context.Background()

	svc.UpdateDocument(ctx, "a.twee", "score: 1\n--\nWelcome.")
	assert.NotEmpty(t, svc.Index().ProjectReferences(symbols.KindVariableSet))

	svc.CloseDocument("a.twee")
	assert.Empty(t, svc.Index().ProjectReferences(symbols.KindVariableSet))
	_, ok := svc.Document("a.twee")
	assert.False(t, ok)
}

func TestServiceQueriesNeedOpenDocuments(t *testing.T) {
	svc := NewService(format.StoryFormat{Format: "chapbook"}, diagnostic.DefaultConfig())
	ctx := context.Background()

	assert.Nil(t, svc.Analyze(ctx, "missing.twee"))
	assert.Nil(t, svc.Completions(ctx, "missing.twee", position.Pos{}))
	assert.Nil(t, svc.Hover(ctx, "missing.twee", position.Pos{}))
	assert.Nil(t, svc.Definition(ctx, "missing.twee", position.Pos{}))

	svc.UpdateDocument(ctx, "a.twee", "Go {back link} now.")
	res := svc.Hover(ctx, "a.twee", position.Pos{Line: 0, Character: 6})
	require.NotNil(t, res)
	assert.Contains(t, res.Markdown, "previous passage")
}
