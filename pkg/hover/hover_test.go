package hover_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/hover"
	"github.com/twinetools/chapbook-ls/pkg/index"
	"github.com/twinetools/chapbook-ls/pkg/parser"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

func at(line, char int) position.Pos {
	return position.Pos{Line: line, Character: char}
}

func rng(sl, sc, el, ec int) position.Range {
	return position.Range{Start: at(sl, sc), End: at(el, ec)}
}

func TestHoverBuiltInInsert(t *testing.T) {
	passage := parser.Whole("test.twee", "Go {back link} now.")
	res := hover.Hover(context.Background(), passage, at(0, 6), format.StoryFormat{}, nil)

	require.NotNil(t, res)
	assert.Equal(t, "```chapbook\n{back link, label: 'label'}\n```\n\n"+
		"Renders a link that returns the player to the previous passage.", res.Markdown)
	assert.Equal(t, rng(0, 4, 0, 13), res.Range)
}

func TestHoverBuiltInModifier(t *testing.T) {
	passage := parser.Whole("test.twee", "[align center]\nCentered.")
	res := hover.Hover(context.Background(), passage, at(0, 3), format.StoryFormat{}, nil)

	require.NotNil(t, res)
	assert.Equal(t, "```chapbook\n[align center]\n```\n\n"+
		"Aligns the text that follows left, right, or centered.", res.Markdown)
	assert.Equal(t, rng(0, 1, 0, 13), res.Range)
}

func TestHoverCustomInsert(t *testing.T) {
	idx := index.NewInMemory()
	idx.SetDefinitions("script.twee", []symbols.Definition{
		{
			Name:        "test insert",
			Kind:        symbols.KindCustomInsert,
			Match:       regexp.MustCompile(`(?i)^test\s+insert`),
			Syntax:      "{test insert: 'arg'}",
			Description: "Inserts a test value.",
			Location:    symbols.Location{URI: "script.twee", Range: rng(3, 0, 9, 2)},
		},
	})

	passage := parser.Whole("test.twee", "Try {test insert, one: 2}.")
	res := hover.Hover(context.Background(), passage, at(0, 8), format.StoryFormat{}, idx)

	require.NotNil(t, res)
	assert.Equal(t, "```chapbook\n{test insert: 'arg'}\n```\n\nInserts a test value.", res.Markdown)
	assert.Equal(t, rng(0, 5, 0, 16), res.Range)
}

func TestHoverNothingToShow(t *testing.T) {
	// A variable read has no documentation.
	passage := parser.Whole("test.twee", "You have {score} points.")
	assert.Nil(t, hover.Hover(context.Background(), passage, at(0, 12), format.StoryFormat{}, nil))

	// Plain prose is off every reference.
	assert.Nil(t, hover.Hover(context.Background(), passage, at(0, 2), format.StoryFormat{}, nil))

	// An unregistered custom name has a reference but no docs.
	passage = parser.Whole("test.twee", "Try {test insert, one: 2}.")
	assert.Nil(t, hover.Hover(context.Background(), passage, at(0, 8), format.StoryFormat{}, nil))
}

func TestDefinition(t *testing.T) {
	idx := index.NewInMemory()
	idx.SetDefinitions("script.twee", []symbols.Definition{
		{
			Name:     "test insert",
			Kind:     symbols.KindCustomInsert,
			Match:    regexp.MustCompile(`(?i)^test\s+insert`),
			Location: symbols.Location{URI: "script.twee", Range: rng(3, 0, 9, 2)},
		},
	})

	passage := parser.Whole("test.twee", "Try {test insert, one: 2}.")
	loc := hover.Definition(context.Background(), passage, at(0, 8), format.StoryFormat{}, idx)
	require.NotNil(t, loc)
	assert.Equal(t, "script.twee", loc.URI)
	assert.Equal(t, rng(3, 0, 9, 2), loc.Range)

	// Built-ins have no source location.
	builtin := parser.Whole("test.twee", "Go {back link} now.")
	assert.Nil(t, hover.Definition(context.Background(), builtin, at(0, 6), format.StoryFormat{}, idx))

	// Without the registration in the index there is nothing to jump to.
	assert.Nil(t, hover.Definition(context.Background(), passage, at(0, 8), format.StoryFormat{}, nil))
}
