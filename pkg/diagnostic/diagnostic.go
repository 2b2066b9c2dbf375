// Package diagnostic is the project-wide second pass: it re-checks the
// references one parse produced against everything the whole project has
// registered. The parse itself can only see one passage; this pass owns the
// "is this name defined anywhere" questions.
package diagnostic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twinetools/chapbook-ls/pkg/builtins"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// Config selects which warning families are produced. Unknown-name warnings
// are warnings and never errors: an unrecognized name may still resolve at
// runtime.
type Config struct {
	// UnknownMacroWarnings enables "not recognized" warnings for insert and
	// modifier names that match nothing.
	UnknownMacroWarnings bool `mapstructure:"unknown-macro-warnings"`
	// UnsetVariableWarnings enables warnings for variable and property reads
	// that no vars section in the project assigns.
	UnsetVariableWarnings bool `mapstructure:"unset-variable-warnings"`
}

// DefaultConfig enables every warning family.
func DefaultConfig() Config {
	return Config{
		UnknownMacroWarnings:  true,
		UnsetVariableWarnings: true,
	}
}

// Generate runs the second pass over one passage's references. index may be
// nil, in which case only built-ins resolve.
func Generate(ctx context.Context, refs []symbols.Reference, index symbols.Index, cfg Config) []symbols.Diagnostic {
	g := &generator{index: index, cfg: cfg}
	var out []symbols.Diagnostic
	for _, ref := range refs {
		out = append(out, g.check(ref)...)
	}
	zerolog.Ctx(ctx).Debug().
		Int("references", len(refs)).
		Int("diagnostics", len(out)).
		Msg("generated project diagnostics")
	return out
}

type generator struct {
	index symbols.Index
	cfg   Config

	// lazily built lookup sets, shared across one Generate call
	setVariables  map[string]bool
	setProperties map[string]bool
}

func (g *generator) check(ref symbols.Reference) []symbols.Diagnostic {
	switch ref.Kind {
	case symbols.KindCustomInsert:
		if !g.cfg.UnknownMacroWarnings {
			return nil
		}
		if builtins.MatchInsert(ref.Contents) != nil || g.definitionMatches(symbols.KindCustomInsert, ref.Contents) {
			return nil
		}
		return warnEach(ref, fmt.Sprintf("Insert %q not recognized", ref.Contents))

	case symbols.KindCustomModifier:
		if !g.cfg.UnknownMacroWarnings {
			return nil
		}
		if builtins.MatchModifier(ref.Contents) != nil || g.definitionMatches(symbols.KindCustomModifier, ref.Contents) {
			return nil
		}
		return warnEach(ref, fmt.Sprintf("Modifier %q not recognized", ref.Contents))

	case symbols.KindVariable:
		if !g.cfg.UnsetVariableWarnings || builtins.IsLookupVariable(ref.Contents) {
			return nil
		}
		if g.assigned(symbols.KindVariableSet, ref.Contents) {
			return nil
		}
		return warnEach(ref, fmt.Sprintf("The variable %q isn't set anywhere in this story", ref.Contents))

	case symbols.KindProperty:
		if !g.cfg.UnsetVariableWarnings {
			return nil
		}
		if g.assigned(symbols.KindPropertySet, ref.Contents) {
			return nil
		}
		return warnEach(ref, fmt.Sprintf("The property %q isn't set anywhere in this story", ref.Contents))
	}
	return nil
}

// definitionMatches tests a name against every project registration of the
// given kind, first regex match wins.
func (g *generator) definitionMatches(kind symbols.SymbolKind, name string) bool {
	if g.index == nil {
		return false
	}
	for _, def := range g.index.ProjectDefinitions(kind) {
		if def.Match != nil && def.Match.MatchString(name) {
			return true
		}
	}
	return false
}

// assigned reports whether any passage in the project sets the name.
func (g *generator) assigned(kind symbols.SymbolKind, name string) bool {
	if g.index == nil {
		return false
	}
	set := &g.setVariables
	if kind == symbols.KindPropertySet {
		set = &g.setProperties
	}
	if *set == nil {
		*set = map[string]bool{}
		for _, ref := range g.index.ProjectReferences(kind) {
			(*set)[ref.Contents] = true
		}
	}
	return (*set)[name]
}

func warnEach(ref symbols.Reference, msg string) []symbols.Diagnostic {
	out := make([]symbols.Diagnostic, 0, len(ref.Ranges))
	for _, rng := range ref.Ranges {
		out = append(out, symbols.Diagnostic{
			Range:    rng,
			Severity: symbols.SeverityWarning,
			Message:  msg,
		})
	}
	return out
}
