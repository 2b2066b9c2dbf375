package builtins_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinetools/chapbook-ls/pkg/builtins"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

func TestMatchInsert(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
	}{
		{name: "exact name", input: "back link", wantName: "back link"},
		{name: "case insensitive", input: "Cycling Link", wantName: "cycling link"},
		{name: "extra internal whitespace", input: "text  input", wantName: "text input"},
		{name: "variant form", input: "embed passage named", wantName: "embed passage"},
		{name: "unknown", input: "mystery box", wantName: ""},
		{name: "partial name does not match", input: "back", wantName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := builtins.MatchInsert(tt.input)
			if tt.wantName == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestMatchInsert_EveryCatalogNameRoundTrips(t *testing.T) {
	for _, d := range builtins.Inserts() {
		got := builtins.MatchInsert(d.Name)
		require.NotNil(t, got, "catalog name %q did not resolve", d.Name)
		assert.Equal(t, d.Name, got.Name, "catalog name %q resolved to a different entry", d.Name)
	}
}

func TestMatchModifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
	}{
		{name: "bare name", input: "append", wantName: "append"},
		{name: "with parameters", input: "after 2 seconds", wantName: "after"},
		{name: "case insensitive", input: "JAVASCRIPT", wantName: "JavaScript"},
		{name: "note alias", input: "n.b.", wantName: "note"},
		{name: "note with trailing text", input: "note to myself about pacing", wantName: "note"},
		{name: "todo alias", input: "todo", wantName: "note"},
		{name: "contraction alias", input: "cont'd", wantName: "continue"},
		{name: "if needs a condition", input: "if", wantName: ""},
		{name: "if with condition", input: "if visited", wantName: "if"},
		{name: "align with direction", input: "align center", wantName: "align"},
		{name: "align without direction", input: "align", wantName: ""},
		{name: "unknown", input: "mod-me", wantName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := builtins.MatchModifier(tt.input)
			if tt.wantName == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestModifierBehavior(t *testing.T) {
	assert.Equal(t, builtins.BehaviorNote, builtins.ModifierBehavior(builtins.MatchModifier("note")))
	assert.Equal(t, builtins.BehaviorCSS, builtins.ModifierBehavior(builtins.MatchModifier("CSS")))
	assert.Equal(t, builtins.BehaviorJavaScript, builtins.ModifierBehavior(builtins.MatchModifier("javascript")))
	assert.Equal(t, builtins.BehaviorContinue, builtins.ModifierBehavior(builtins.MatchModifier("continued")))
	assert.Equal(t, builtins.BehaviorNone, builtins.ModifierBehavior(builtins.MatchModifier("append")))
	assert.Equal(t, builtins.BehaviorNone, builtins.ModifierBehavior(nil))
}

func TestVersionBounds(t *testing.T) {
	themeSwitcher := builtins.MatchInsert("theme switcher")
	require.NotNil(t, themeSwitcher)
	assert.Equal(t, "2.1.0", themeSwitcher.Since)

	youtube := builtins.MatchInsert("embed YouTube video")
	require.NotNil(t, youtube)
	assert.Equal(t, "2.0.0", youtube.Removed)
}

func TestIsLookupVariable(t *testing.T) {
	assert.True(t, builtins.IsLookupVariable("now"))
	assert.True(t, builtins.IsLookupVariable("passage"))
	assert.False(t, builtins.IsLookupVariable("score"))
}

func TestFirstArgumentContracts(t *testing.T) {
	embed := builtins.MatchInsert("embed passage")
	require.NotNil(t, embed)
	require.NotNil(t, embed.FirstArgument)
	assert.Equal(t, symbols.ArgRequired, embed.FirstArgument.Required)
	assert.Equal(t, symbols.ValuePassage, embed.FirstArgument.Type)

	back := builtins.MatchInsert("back link")
	require.NotNil(t, back)
	assert.Equal(t, symbols.ArgIgnored, back.FirstArgument.Required)
}
