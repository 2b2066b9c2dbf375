package builtins

import (
	"regexp"

	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// Behavior names the special handling a built-in modifier triggers in the
// parser beyond token emission.
type Behavior int

const (
	BehaviorNone Behavior = iota
	// BehaviorNote marks following lines as comments until the next modifier
	// block or the passage's end.
	BehaviorNote
	// BehaviorCSS hands the body to the embedded-document sink as CSS.
	BehaviorCSS
	// BehaviorJavaScript hands the body to the embedded-document sink as
	// script, deferred to the host story format.
	BehaviorJavaScript
	// BehaviorContinue resumes normal rendering and suppresses new-block
	// folding.
	BehaviorContinue
)

var modifiers = []symbols.Descriptor{
	{
		Name:        "after",
		Match:       regexp.MustCompile(`(?i)^after\s`),
		Syntax:      "[after 2 seconds]",
		Description: "Delays displaying the text that follows until an interval elapses.",
		Completions: []string{"after"},
	},
	{
		Name:        "align",
		Match:       regexp.MustCompile(`(?i)^align\s+(left|right|center)$`),
		Syntax:      "[align center]",
		Description: "Aligns the text that follows left, right, or centered.",
		Completions: []string{"align left", "align right", "align center"},
	},
	{
		Name:        "append",
		Match:       regexp.MustCompile(`(?i)^append$`),
		Syntax:      "[append]",
		Description: "Appends the text that follows to the previous paragraph instead of starting a new one.",
		Completions: []string{"append"},
	},
	{
		Name:        "CSS",
		Match:       regexp.MustCompile(`(?i)^css$`),
		Syntax:      "[CSS]",
		Description: "Treats the text that follows as CSS rules applied to the page.",
		Completions: []string{"CSS"},
	},
	{
		Name:        "JavaScript",
		Match:       regexp.MustCompile(`(?i)^javascript$`),
		Syntax:      "[JavaScript]",
		Description: "Treats the text that follows as JavaScript executed when the passage renders.",
		Completions: []string{"JavaScript"},
	},
	{
		Name:        "continue",
		Match:       regexp.MustCompile(`(?i)^(cont(')?d|continued?)$`),
		Syntax:      "[continue]",
		Description: "Ends the effect of all previous modifiers.",
		Completions: []string{"continue"},
	},
	{
		Name:        "if",
		Match:       regexp.MustCompile(`(?i)^if\s`),
		Syntax:      "[if condition]",
		Description: "Shows the text that follows only when the condition is truthy.",
		Completions: []string{"if"},
	},
	{
		Name:        "ifalways",
		Match:       regexp.MustCompile(`(?i)^ifalways\s`),
		Syntax:      "[ifalways condition]",
		Description: "Testing variant of [if] that always shows its text.",
		Since:       "1.2.0",
		Completions: []string{"ifalways"},
	},
	{
		Name:        "ifnever",
		Match:       regexp.MustCompile(`(?i)^ifnever\s`),
		Syntax:      "[ifnever condition]",
		Description: "Testing variant of [if] that never shows its text.",
		Since:       "1.2.0",
		Completions: []string{"ifnever"},
	},
	{
		Name:        "unless",
		Match:       regexp.MustCompile(`(?i)^unless\s`),
		Syntax:      "[unless condition]",
		Description: "Shows the text that follows only when the condition is falsy.",
		Completions: []string{"unless"},
	},
	{
		Name:        "else",
		Match:       regexp.MustCompile(`(?i)^else$`),
		Syntax:      "[else]",
		Description: "Shows the text that follows only when the previous [if] did not.",
		Completions: []string{"else"},
	},
	{
		Name:        "note",
		Match:       regexp.MustCompile(`(?i)^(note(\s+to\s+myself)?\b|n\.b\.|todo\b|fixme\b)`),
		Syntax:      "[note]",
		Description: "Hides the text that follows from players; use it for notes to yourself.",
		Completions: []string{"note"},
	},
}

// Modifiers returns the ordered built-in modifier catalog.
func Modifiers() []symbols.Descriptor {
	return modifiers
}

// MatchModifier resolves a modifier invocation (its full text, not just the
// first word) against the catalog. The first entry whose regex matches wins.
func MatchModifier(text string) *symbols.Descriptor {
	for i := range modifiers {
		if modifiers[i].Match.MatchString(text) {
			return &modifiers[i]
		}
	}
	return nil
}

// ModifierBehavior maps a matched built-in modifier to its special handling.
func ModifierBehavior(d *symbols.Descriptor) Behavior {
	if d == nil {
		return BehaviorNone
	}
	switch d.Name {
	case "note":
		return BehaviorNote
	case "CSS":
		return BehaviorCSS
	case "JavaScript":
		return BehaviorJavaScript
	case "continue":
		return BehaviorContinue
	default:
		return BehaviorNone
	}
}
