package completion_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinetools/chapbook-ls/pkg/completion"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/index"
	"github.com/twinetools/chapbook-ls/pkg/parser"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

func complete(t *testing.T, doc string, pos position.Pos, idx symbols.Index) *completion.Result {
	t.Helper()
	return completion.Complete(context.Background(), parser.Whole("test.twee", doc), pos, format.StoryFormat{Format: "chapbook"}, idx)
}

func findItem(t *testing.T, res *completion.Result, label string) completion.Item {
	t.Helper()
	require.NotNil(t, res)
	for _, item := range res.Items {
		if item.Label == label {
			return item
		}
	}
	t.Fatalf("no item labeled %q in %v", label, res.Items)
	return completion.Item{}
}

func rng(sl, sc, el, ec int) position.Range {
	return position.Range{
		Start: position.Pos{Line: sl, Character: sc},
		End:   position.Pos{Line: el, Character: ec},
	}
}

func TestInsertNameWithCustomRegistration(t *testing.T) {
	idx := index.NewInMemory()
	idx.SetDefinitions("script.twee", []symbols.Definition{
		{
			Name:          "test insert",
			Contents:      `^test\s+insert`,
			Kind:          symbols.KindCustomInsert,
			Match:         regexp.MustCompile(`(?i)^test\s+insert`),
			FirstArgument: &symbols.FirstArgument{Required: symbols.ArgRequired},
		},
	})

	res := complete(t, "Let's try {te", position.Pos{Line: 0, Character: 13}, idx)
	require.NotNil(t, res)
	assert.Equal(t, rng(0, 11, 0, 13), res.EditRange)

	item := findItem(t, res, "test insert")
	assert.Equal(t, "test insert: '${1:arg}'", item.InsertText)
	assert.Equal(t, symbols.KindCustomInsert, item.Kind)

	// Built-ins sharing the prefix stay in the list alongside it.
	builtin := findItem(t, res, "text input")
	assert.Equal(t, "text input", builtin.InsertText)
}

func TestInsertNameSnippetsCarryRequiredProps(t *testing.T) {
	res := complete(t, "{cyc", position.Pos{Line: 0, Character: 4}, nil)
	item := findItem(t, res, "cycling link")
	assert.Equal(t, "cycling link, choices: ${1:['one', 'two']}", item.InsertText)
	assert.Equal(t, rng(0, 1, 0, 4), res.EditRange)
}

func TestPropertyName(t *testing.T) {
	res := complete(t, "{cycling link, ch", position.Pos{Line: 0, Character: 17}, nil)
	require.NotNil(t, res)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "choices", res.Items[0].Label)
	assert.Equal(t, symbols.KindProperty, res.Items[0].Kind)
	assert.Equal(t, rng(0, 15, 0, 17), res.EditRange)
}

func TestPropertyNameSkipsUsedProps(t *testing.T) {
	res := complete(t, "{back link, label: 'Back', ", position.Pos{Line: 0, Character: 27}, nil)
	assert.Nil(t, res, "label is already present and back link has nothing else")
}

func TestPassageValue(t *testing.T) {
	idx := index.NewInMemory()
	idx.SetReferences("other.twee", []symbols.Reference{
		{Contents: "Intro", Kind: symbols.KindPassage, Ranges: []position.Range{rng(0, 2, 0, 7)}},
	})

	t.Run("unquoted position wraps candidates", func(t *testing.T) {
		res := complete(t, "{embed passage: ", position.Pos{Line: 0, Character: 16}, idx)
		require.NotNil(t, res)
		assert.Equal(t, rng(0, 16, 0, 16), res.EditRange)

		passage := findItem(t, res, "Intro")
		assert.Equal(t, "'Intro'", passage.InsertText)

		placeholder := findItem(t, res, "passage name")
		assert.Equal(t, "'passage name'", placeholder.InsertText)
	})

	t.Run("quoted position excludes the quotes", func(t *testing.T) {
		res := complete(t, "{embed passage: 'In", position.Pos{Line: 0, Character: 19}, idx)
		require.NotNil(t, res)
		assert.Equal(t, rng(0, 17, 0, 19), res.EditRange)

		passage := findItem(t, res, "Intro")
		assert.Equal(t, "Intro", passage.InsertText)
	})
}

func TestModifierName(t *testing.T) {
	res := complete(t, "[al", position.Pos{Line: 0, Character: 3}, nil)
	require.NotNil(t, res)
	assert.Equal(t, rng(0, 1, 0, 3), res.EditRange)

	labels := make([]string, 0, len(res.Items))
	for _, item := range res.Items {
		labels = append(labels, item.Label)
	}
	assert.ElementsMatch(t, []string{"align left", "align right", "align center"}, labels)
}

func TestModifierParameterPositionIsSilent(t *testing.T) {
	res := complete(t, "[if so", position.Pos{Line: 0, Character: 6}, nil)
	assert.Nil(t, res)
}

func TestSecondModifierSegment(t *testing.T) {
	res := complete(t, "[append; el", position.Pos{Line: 0, Character: 11}, nil)
	require.NotNil(t, res)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "else", res.Items[0].Label)
	assert.Equal(t, rng(0, 9, 0, 11), res.EditRange)
}

func TestNoContext(t *testing.T) {
	assert.Nil(t, complete(t, "plain text", position.Pos{Line: 0, Character: 5}, nil))
	assert.Nil(t, complete(t, "{foo bar, baz: qu", position.Pos{Line: 0, Character: 17}, nil))
	assert.Nil(t, complete(t, "done {back link} after", position.Pos{Line: 0, Character: 20}, nil))
}

func TestVersionGatedNames(t *testing.T) {
	doc := "{sound"
	pos := position.Pos{Line: 0, Character: 6}

	res := completion.Complete(context.Background(), parser.Whole("test.twee", doc), pos,
		format.StoryFormat{Format: "chapbook", FormatVersion: "2.0.0"}, nil)
	require.NotNil(t, res)
	findItem(t, res, "sound effect")

	res = completion.Complete(context.Background(), parser.Whole("test.twee", doc), pos,
		format.StoryFormat{Format: "chapbook", FormatVersion: "1.0.0"}, nil)
	assert.Nil(t, res, "sound effect arrived in 2.0.0")
}
