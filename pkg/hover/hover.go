// Package hover resolves a document position to documentation or to the
// source location of a custom registration. Both queries re-parse the
// passage and work off the reference covering the position; off any
// reference they return nil.
package hover

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/twinetools/chapbook-ls/pkg/builtins"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/parser"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// Result is a hover payload: rendered markdown plus the range it documents.
type Result struct {
	Markdown string
	Range    position.Range
}

// Hover documents the insert or modifier under pos. The markdown is the
// registered syntax as a fenced block followed by the description; with no
// description there is nothing worth showing and the result is nil.
func Hover(ctx context.Context, passage parser.Passage, pos position.Pos, storyFormat format.StoryFormat, index symbols.Index) *Result {
	ref, rng := referenceAt(ctx, passage, pos, storyFormat, index)
	if ref == nil {
		return nil
	}

	syntax, description := lookupDocs(*ref, index)
	if description == "" {
		return nil
	}

	md := ""
	if syntax != "" {
		md = "```chapbook\n" + syntax + "\n```\n\n"
	}
	md += description
	return &Result{Markdown: md, Range: rng}
}

// Definition resolves pos to the source location of the custom registration
// it uses. Built-ins have no source location; anything else is nil.
func Definition(ctx context.Context, passage parser.Passage, pos position.Pos, storyFormat format.StoryFormat, index symbols.Index) *symbols.Location {
	ref, _ := referenceAt(ctx, passage, pos, storyFormat, index)
	if ref == nil {
		return nil
	}
	if ref.Kind != symbols.KindCustomInsert && ref.Kind != symbols.KindCustomModifier {
		return nil
	}
	if def := matchDefinition(index, ref.Kind, ref.Contents); def != nil {
		loc := def.Location
		return &loc
	}
	return nil
}

// referenceAt re-parses the passage and returns the reference whose range
// covers pos, along with that covering range.
func referenceAt(ctx context.Context, passage parser.Passage, pos position.Pos, storyFormat format.StoryFormat, index symbols.Index) (*symbols.Reference, position.Range) {
	result := parser.Parse(ctx, passage, storyFormat, index)
	for i := range result.References {
		for _, rng := range result.References[i].Ranges {
			if rng.Contains(pos) {
				zerolog.Ctx(ctx).Debug().
					Str("contents", result.References[i].Contents).
					Stringer("kind", result.References[i].Kind).
					Msg("resolved reference at position")
				return &result.References[i], rng
			}
		}
	}
	return nil, position.Range{}
}

// lookupDocs finds the syntax and description for a reference, built-in
// catalog first, then project registrations.
func lookupDocs(ref symbols.Reference, index symbols.Index) (syntax, description string) {
	switch ref.Kind {
	case symbols.KindBuiltInInsert:
		for _, d := range builtins.Inserts() {
			if d.Name == ref.Contents {
				return d.Syntax, d.Description
			}
		}
	case symbols.KindBuiltInModifier:
		for _, d := range builtins.Modifiers() {
			if d.Name == ref.Contents {
				return d.Syntax, d.Description
			}
		}
	case symbols.KindCustomInsert, symbols.KindCustomModifier:
		if def := matchDefinition(index, ref.Kind, ref.Contents); def != nil {
			return def.Syntax, def.Description
		}
	}
	return "", ""
}

func matchDefinition(index symbols.Index, kind symbols.SymbolKind, contents string) *symbols.Definition {
	if index == nil {
		return nil
	}
	for _, def := range index.ProjectDefinitions(kind) {
		if def.Match != nil && def.Match.MatchString(contents) {
			d := def
			return &d
		}
	}
	return nil
}
