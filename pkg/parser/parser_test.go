package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/parser"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

func parse(t *testing.T, text string) *parser.Result {
	t.Helper()
	return parser.Parse(context.Background(), parser.Whole("test.twee", text), format.StoryFormat{}, nil)
}

func parseWithVersion(t *testing.T, text, version string) *parser.Result {
	t.Helper()
	sf := format.StoryFormat{Format: "chapbook", FormatVersion: version}
	return parser.Parse(context.Background(), parser.Whole("test.twee", text), sf, nil)
}

func findRef(t *testing.T, res *parser.Result, kind symbols.SymbolKind, contents string) symbols.Reference {
	t.Helper()
	for _, ref := range res.References {
		if ref.Kind == kind && ref.Contents == contents {
			return ref
		}
	}
	t.Fatalf("no %s reference with contents %q; have %v", kind, contents, res.References)
	return symbols.Reference{}
}

func hasRef(res *parser.Result, kind symbols.SymbolKind, contents string) bool {
	for _, ref := range res.References {
		if ref.Kind == kind && ref.Contents == contents {
			return true
		}
	}
	return false
}

func rng(startLine, startChar, endLine, endChar int) position.Range {
	return position.Range{
		Start: position.Pos{Line: startLine, Character: startChar},
		End:   position.Pos{Line: endLine, Character: endChar},
	}
}

func TestVarsSection(t *testing.T) {
	t.Run("variable set range covers exactly the name", func(t *testing.T) {
		res := parse(t, "score: 10\n--\nbody text")

		ref := findRef(t, res, symbols.KindVariableSet, "score")
		require.Len(t, ref.Ranges, 1)
		assert.Equal(t, rng(0, 0, 0, 5), ref.Ranges[0])
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("property suffix sets both variable and property", func(t *testing.T) {
		res := parse(t, "player.name: 'Anna'\n--\n")

		varRef := findRef(t, res, symbols.KindVariableSet, "player")
		assert.Equal(t, rng(0, 0, 0, 6), varRef.Ranges[0])
		propRef := findRef(t, res, symbols.KindPropertySet, "name")
		assert.Equal(t, rng(0, 7, 0, 11), propRef.Ranges[0])
	})

	t.Run("space in name is a single error at the space", func(t *testing.T) {
		res := parse(t, "var1 nope: 17\n--\n")

		require.Len(t, res.Diagnostics, 1)
		d := res.Diagnostics[0]
		assert.Equal(t, symbols.SeverityError, d.Severity)
		assert.Equal(t, "Variable names can't have spaces", d.Message)
		assert.Equal(t, rng(0, 4, 0, 5), d.Range)
	})

	t.Run("illegal leading character", func(t *testing.T) {
		res := parse(t, "1up: 3\n--\n")

		require.NotEmpty(t, res.Diagnostics)
		assert.Equal(t, "Variable names must start with a letter, $, or _", res.Diagnostics[0].Message)
	})

	t.Run("missing colon is a warning and the line is skipped", func(t *testing.T) {
		res := parse(t, "lonely\n--\n")

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, symbols.SeverityWarning, res.Diagnostics[0].Severity)
		assert.Equal(t, "Missing colon; this line will be ignored", res.Diagnostics[0].Message)
	})

	t.Run("condition references are scanned", func(t *testing.T) {
		res := parse(t, "score (coins > 10): 20\n--\n")

		assert.True(t, hasRef(res, symbols.KindVariableSet, "score"))
		assert.True(t, hasRef(res, symbols.KindVariable, "coins"))
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("unterminated condition", func(t *testing.T) {
		res := parse(t, "score (coins > 10: 20\n--\n")

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, "Missing a close parenthesis", res.Diagnostics[0].Message)
	})

	t.Run("divider yields decoration and folding range", func(t *testing.T) {
		res := parse(t, "a: 1\nb: 2\n---\nbody")

		require.Len(t, res.Decorations, 1)
		assert.Equal(t, symbols.DecorationVarsDivider, res.Decorations[0].Type)
		assert.Equal(t, 2, res.Decorations[0].Range.Start.Line)

		require.Len(t, res.FoldingRanges, 1)
		assert.Equal(t, symbols.FoldingRange{StartLine: 0, EndLine: 1}, res.FoldingRanges[0])
	})

	t.Run("no divider means no vars section", func(t *testing.T) {
		res := parse(t, "just: body text, not vars")

		assert.False(t, hasRef(res, symbols.KindVariableSet, "just"))
		assert.Empty(t, res.Diagnostics)
	})
}

func TestModifiers(t *testing.T) {
	t.Run("unmatched modifier yields a custom reference", func(t *testing.T) {
		res := parse(t, "[mod-me]\nI'm modified!")

		ref := findRef(t, res, symbols.KindCustomModifier, "mod-me")
		require.Len(t, ref.Ranges, 1)
		assert.Equal(t, rng(0, 1, 0, 7), ref.Ranges[0])
	})

	t.Run("built-in modifier resolves by full text", func(t *testing.T) {
		res := parse(t, "[if coins > 10]\nrich")

		assert.True(t, hasRef(res, symbols.KindBuiltInModifier, "if"))
		assert.False(t, hasRef(res, symbols.KindCustomModifier, "if coins > 10"))
	})

	t.Run("semicolons separate independent modifiers", func(t *testing.T) {
		res := parse(t, "[if done; append]\ntext")

		assert.True(t, hasRef(res, symbols.KindBuiltInModifier, "if"))
		assert.True(t, hasRef(res, symbols.KindBuiltInModifier, "append"))
	})

	t.Run("leading whitespace is an error", func(t *testing.T) {
		res := parse(t, "  [append]\ntext")

		require.NotEmpty(t, res.Diagnostics)
		assert.Equal(t, "Modifiers can't have whitespace before them", res.Diagnostics[0].Message)
	})

	t.Run("note modifier hides its body as comments", func(t *testing.T) {
		res := parse(t, "[note]\nto myself\nstill hidden")

		require.Len(t, res.Decorations, 1)
		assert.Equal(t, symbols.DecorationComment, res.Decorations[0].Type)

		var commentTokens int
		for _, tok := range res.Tokens {
			if tok.Type == symbols.TokenComment {
				commentTokens++
			}
		}
		assert.Equal(t, 2, commentTokens)
	})

	t.Run("css body becomes an embedded document", func(t *testing.T) {
		res := parse(t, "[CSS]\nbody { color: red }")

		require.Len(t, res.EmbeddedDocuments, 1)
		doc := res.EmbeddedDocuments[0]
		assert.Equal(t, "css", doc.LanguageID)
		assert.Equal(t, "body { color: red }", doc.Document)
		assert.False(t, doc.DeferToStoryFormat)
	})

	t.Run("javascript body defers to the story format", func(t *testing.T) {
		res := parse(t, "[JavaScript]\nconsole.log('hi')")

		require.Len(t, res.EmbeddedDocuments, 1)
		assert.Equal(t, "javascript", res.EmbeddedDocuments[0].LanguageID)
		assert.True(t, res.EmbeddedDocuments[0].DeferToStoryFormat)
	})

	t.Run("modifier blocks fold, continue does not", func(t *testing.T) {
		res := parse(t, "[if done]\none\ntwo\n[continue]\nthree\nfour")

		require.Len(t, res.FoldingRanges, 1)
		assert.Equal(t, symbols.FoldingRange{StartLine: 0, EndLine: 2}, res.FoldingRanges[0])
	})
}

func TestInserts(t *testing.T) {
	t.Run("quoted commas and colons never split", func(t *testing.T) {
		res := parse(t, "{ins: 'a, b: c'}")

		ref := findRef(t, res, symbols.KindCustomInsert, "ins")
		require.Len(t, ref.Ranges, 1)
		assert.Equal(t, rng(0, 1, 0, 4), ref.Ranges[0])
		assert.Empty(t, res.Diagnostics)

		var stringTokens int
		for _, tok := range res.Tokens {
			if tok.Type == symbols.TokenString {
				stringTokens++
			}
		}
		assert.Equal(t, 1, stringTokens, "the whole quoted value should be one token")
	})

	t.Run("unterminated insert still yields its reference", func(t *testing.T) {
		res := parse(t, "Let's try {test insert, one: 'here',")

		ref := findRef(t, res, symbols.KindCustomInsert, "test insert")
		require.Len(t, ref.Ranges, 1)
		assert.Equal(t, rng(0, 11, 0, 22), ref.Ranges[0])
	})

	t.Run("bare word is a variable reference", func(t *testing.T) {
		res := parse(t, "Your score is {score}.")

		assert.True(t, hasRef(res, symbols.KindVariable, "score"))
		assert.False(t, hasRef(res, symbols.KindCustomInsert, "score"))
	})

	t.Run("dotted chains read variable then properties", func(t *testing.T) {
		res := parse(t, "{player.stats.strength}")

		assert.True(t, hasRef(res, symbols.KindVariable, "player"))
		assert.True(t, hasRef(res, symbols.KindProperty, "stats"))
		assert.True(t, hasRef(res, symbols.KindProperty, "strength"))
	})

	t.Run("namespaced calls yield no references", func(t *testing.T) {
		res := parse(t, "{Math.floor(limit / 2)}")

		assert.False(t, hasRef(res, symbols.KindVariable, "Math"))
		assert.True(t, hasRef(res, symbols.KindVariable, "limit"))
	})

	t.Run("built-in insert resolves case-insensitively", func(t *testing.T) {
		res := parse(t, "{Back Link, label: 'Return'}")

		assert.True(t, hasRef(res, symbols.KindBuiltInInsert, "back link"))
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("required first argument missing is an error", func(t *testing.T) {
		res := parse(t, "{embed passage}")

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, symbols.SeverityError, res.Diagnostics[0].Severity)
		assert.Equal(t, `Insert "embed passage" requires a first argument`, res.Diagnostics[0].Message)
	})

	t.Run("ignored first argument present is a warning", func(t *testing.T) {
		res := parse(t, "{back link: 'nope'}")

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, symbols.SeverityWarning, res.Diagnostics[0].Severity)
		assert.Equal(t, `Insert "back link" will ignore this first argument`, res.Diagnostics[0].Message)
	})

	t.Run("missing required properties listed in declared order", func(t *testing.T) {
		res := parse(t, "{cycling link}")

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, `Insert "cycling link" is missing required properties: choices`, res.Diagnostics[0].Message)
	})

	t.Run("unexpected property is a warning", func(t *testing.T) {
		res := parse(t, "{back link, label: 'ok', volume: 3}")

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, symbols.SeverityWarning, res.Diagnostics[0].Severity)
		assert.Equal(t, `Insert "back link" will ignore this property`, res.Diagnostics[0].Message)
	})

	t.Run("property with internal space is an error", func(t *testing.T) {
		res := parse(t, "{back link, the label: 'ok'}")

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, symbols.SeverityError, res.Diagnostics[0].Severity)
		assert.Equal(t, "Properties can't have spaces", res.Diagnostics[0].Message)
	})

	t.Run("passage-typed value yields a passage reference inside quotes", func(t *testing.T) {
		res := parse(t, "{embed passage: 'Intro'}")

		ref := findRef(t, res, symbols.KindPassage, "Intro")
		require.Len(t, ref.Ranges, 1)
		assert.Equal(t, rng(0, 17, 0, 22), ref.Ranges[0])
	})

	t.Run("url-typed value skips the passage reference", func(t *testing.T) {
		res := parse(t, "{link to: 'https://example.com', label: 'out'}")

		assert.False(t, hasRef(res, symbols.KindPassage, "https://example.com"))
	})

	t.Run("url-or-passage value that is not a url references a passage", func(t *testing.T) {
		res := parse(t, "{link to: 'Next Room'}")

		assert.True(t, hasRef(res, symbols.KindPassage, "Next Room"))
	})

	t.Run("two inserts on one line parse independently", func(t *testing.T) {
		res := parse(t, "{score} and {coins}")

		assert.True(t, hasRef(res, symbols.KindVariable, "score"))
		assert.True(t, hasRef(res, symbols.KindVariable, "coins"))
	})
}

func TestLinks(t *testing.T) {
	t.Run("bare target", func(t *testing.T) {
		res := parse(t, "[[Next Room]]")

		ref := findRef(t, res, symbols.KindPassage, "Next Room")
		assert.Equal(t, rng(0, 2, 0, 11), ref.Ranges[0])
	})

	t.Run("pipe separator", func(t *testing.T) {
		res := parse(t, "[[Go east|East Hall]]")

		assert.True(t, hasRef(res, symbols.KindPassage, "East Hall"))
		assert.False(t, hasRef(res, symbols.KindPassage, "Go east"))
	})

	t.Run("arrow separator", func(t *testing.T) {
		res := parse(t, "[[Go east->East Hall]]")

		assert.True(t, hasRef(res, symbols.KindPassage, "East Hall"))
	})

	t.Run("reversed arrow separator", func(t *testing.T) {
		res := parse(t, "[[East Hall<-Go east]]")

		assert.True(t, hasRef(res, symbols.KindPassage, "East Hall"))
		assert.False(t, hasRef(res, symbols.KindPassage, "Go east"))
	})

	t.Run("empty link yields nothing", func(t *testing.T) {
		res := parse(t, "[[]]")

		assert.Empty(t, res.References)
		assert.Empty(t, res.Tokens)
	})

	t.Run("targets are trimmed", func(t *testing.T) {
		res := parse(t, "[[ Next Room ]]")

		ref := findRef(t, res, symbols.KindPassage, "Next Room")
		assert.Equal(t, rng(0, 3, 0, 12), ref.Ranges[0])
	})
}

func TestPositions(t *testing.T) {
	t.Run("characters count utf-16 code units", func(t *testing.T) {
		res := parse(t, "\U0001F600 [[Target]]")

		ref := findRef(t, res, symbols.KindPassage, "Target")
		assert.Equal(t, rng(0, 5, 0, 11), ref.Ranges[0])
	})

	t.Run("crlf line endings", func(t *testing.T) {
		res := parse(t, "a: 1\r\n--\r\n[[Away]]")

		ref := findRef(t, res, symbols.KindPassage, "Away")
		assert.Equal(t, rng(2, 2, 2, 6), ref.Ranges[0])
	})

	t.Run("tokens are sorted ascending", func(t *testing.T) {
		res := parse(t, "a: 1\nb: 2\n--\n[[x]] {y}")

		for i := 1; i < len(res.Tokens); i++ {
			prev, cur := res.Tokens[i-1], res.Tokens[i]
			ok := prev.Line < cur.Line || (prev.Line == cur.Line && prev.Character <= cur.Character)
			assert.True(t, ok, "tokens out of order at %d", i)
		}
	})
}

func TestVersionGating(t *testing.T) {
	t.Run("insert unavailable before its since version", func(t *testing.T) {
		res := parseWithVersion(t, "{sound effect: 'boom'}", "1.0.0")

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, `"sound effect" isn't available until version 2.0.0`, res.Diagnostics[0].Message)
	})

	t.Run("removed insert can't be used", func(t *testing.T) {
		res := parseWithVersion(t, "{embed Flickr image: 'code'}", "2.0.0")

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, `"embed Flickr image" was removed in version 2.0.0 and can't be used`, res.Diagnostics[0].Message)
	})

	t.Run("no version means no gating", func(t *testing.T) {
		res := parse(t, "{sound effect: 'boom'}")

		assert.Empty(t, res.Diagnostics)
	})
}

func TestDeterminism(t *testing.T) {
	text := "score: 10\nname (score > 5): 'vet'\n--\n[if score]\n{back link, label: 'Back'}\n[[Next|The End]]"

	first := parse(t, text)
	second := parse(t, text)

	require.Equal(t, first.Tokens, second.Tokens)
	require.Equal(t, first.References, second.References)
	require.Equal(t, first.Diagnostics, second.Diagnostics)
	require.Equal(t, first.FoldingRanges, second.FoldingRanges)
}
