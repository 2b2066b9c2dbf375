package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/twinetools/chapbook-ls/pkg/completion"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

func toProtocolRange(r position.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(r.Start.Line), Character: protocol.UInteger(r.Start.Character)},
		End:   protocol.Position{Line: protocol.UInteger(r.End.Line), Character: protocol.UInteger(r.End.Character)},
	}
}

func fromProtocolPosition(p protocol.Position) position.Pos {
	return position.Pos{Line: int(p.Line), Character: int(p.Character)}
}

func toProtocolDiagnostics(diags []symbols.Diagnostic) []protocol.Diagnostic {
	source := "chapbook"
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := protocol.DiagnosticSeverity(d.Severity)
		out = append(out, protocol.Diagnostic{
			Range:    toProtocolRange(d.Range),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

// encodeTokens emits the LSP wire form: 5-tuples of deltaLine, deltaStart,
// length, type index, modifier bits, each position a delta from the
// previous token.
func encodeTokens(tokens []symbols.Token) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(tokens)*5)
	var prevLine, prevChar int
	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		deltaStart := tok.Character
		if deltaLine == 0 {
			deltaStart = tok.Character - prevChar
		}
		data = append(data,
			protocol.UInteger(deltaLine),
			protocol.UInteger(deltaStart),
			protocol.UInteger(tok.Length),
			protocol.UInteger(tok.Type),
			protocol.UInteger(tok.Modifiers),
		)
		prevLine = tok.Line
		prevChar = tok.Character
	}
	return data
}

func toProtocolCompletion(res *completion.Result) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(res.Items))
	editRange := toProtocolRange(res.EditRange)
	for _, item := range res.Items {
		kind := completionKind(item.Kind)
		out := protocol.CompletionItem{
			Label: item.Label,
			Kind:  &kind,
			TextEdit: protocol.TextEdit{
				Range:   editRange,
				NewText: item.InsertText,
			},
		}
		if strings.Contains(item.InsertText, "${") {
			fmt := protocol.InsertTextFormatSnippet
			out.InsertTextFormat = &fmt
		}
		if item.Deprecated {
			deprecated := true
			out.Deprecated = &deprecated
		}
		items = append(items, out)
	}
	return items
}

func completionKind(kind symbols.SymbolKind) protocol.CompletionItemKind {
	switch kind {
	case symbols.KindBuiltInInsert, symbols.KindCustomInsert:
		return protocol.CompletionItemKindFunction
	case symbols.KindBuiltInModifier, symbols.KindCustomModifier:
		return protocol.CompletionItemKindKeyword
	case symbols.KindProperty:
		return protocol.CompletionItemKindProperty
	case symbols.KindPassage:
		return protocol.CompletionItemKindClass
	default:
		return protocol.CompletionItemKindText
	}
}

func toProtocolFoldingRanges(ranges []symbols.FoldingRange) []protocol.FoldingRange {
	out := make([]protocol.FoldingRange, 0, len(ranges))
	for _, fr := range ranges {
		out = append(out, protocol.FoldingRange{
			StartLine: protocol.UInteger(fr.StartLine),
			EndLine:   protocol.UInteger(fr.EndLine),
		})
	}
	return out
}
