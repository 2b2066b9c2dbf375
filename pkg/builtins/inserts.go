// Package builtins holds the static catalogs of the dialect's built-in
// inserts and modifiers, plus the always-set lookup variables. Catalog
// entries are ordered; resolution walks each list front to back and the
// first regex match wins.
package builtins

import (
	"regexp"

	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

var inserts = []symbols.Descriptor{
	{
		Name:        "ambient sound",
		Match:       regexp.MustCompile(`(?i)^ambient\s+sound$`),
		Syntax:      "{ambient sound: 'sound name', volume: 0.5}",
		Description: "Begins playing a previously-defined ambient sound.",
		Since:       "2.0.0",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgRequired,
			Type:        symbols.ValuePlain,
			Placeholder: "'sound name'",
		},
		OptionalProps: []symbols.Prop{
			{Name: "volume", Type: symbols.ValueNumber, Placeholder: "0.5"},
		},
	},
	{
		Name:        "back link",
		Match:       regexp.MustCompile(`(?i)^back\s+link$`),
		Syntax:      "{back link, label: 'label'}",
		Description: "Renders a link that returns the player to the previous passage.",
		FirstArgument: &symbols.FirstArgument{
			Required: symbols.ArgIgnored,
		},
		OptionalProps: []symbols.Prop{
			{Name: "label", Type: symbols.ValuePlain, Placeholder: "'label'"},
		},
	},
	{
		Name:        "cycling link",
		Match:       regexp.MustCompile(`(?i)^cycling\s+link$`),
		Syntax:      "{cycling link for: 'variable name', choices: ['one', 'two']}",
		Description: "Renders a link that cycles through its choices when clicked, optionally saving the current choice to a variable.",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgOptional,
			Type:        symbols.ValuePlain,
			Placeholder: "'variable name'",
		},
		RequiredProps: []symbols.Prop{
			{Name: "choices", Type: symbols.ValueExpression, Placeholder: "['one', 'two']"},
		},
	},
	{
		Name:        "dropdown menu",
		Match:       regexp.MustCompile(`(?i)^dropdown\s+menu$`),
		Syntax:      "{dropdown menu for: 'variable name', choices: ['one', 'two']}",
		Description: "Renders a dropdown menu that saves the selected choice to a variable.",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgOptional,
			Type:        symbols.ValuePlain,
			Placeholder: "'variable name'",
		},
		RequiredProps: []symbols.Prop{
			{Name: "choices", Type: symbols.ValueExpression, Placeholder: "['one', 'two']"},
		},
	},
	{
		Name:        "embed passage",
		Match:       regexp.MustCompile(`(?i)^embed\s+passage(\s+named)?$`),
		Syntax:      "{embed passage: 'passage name'}",
		Description: "Renders the named passage's content in place of the insert.",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgRequired,
			Type:        symbols.ValuePassage,
			Placeholder: "'passage name'",
		},
	},
	{
		Name:        "embed image",
		Match:       regexp.MustCompile(`(?i)^embed\s+image(\s+from)?$`),
		Syntax:      "{embed image: 'url', alt: 'alternate text'}",
		Description: "Renders an image from a URL.",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgRequired,
			Type:        symbols.ValuePlain,
			Placeholder: "'url'",
		},
		OptionalProps: []symbols.Prop{
			{Name: "alt", Type: symbols.ValuePlain, Placeholder: "'alternate text'"},
		},
	},
	{
		Name:        "embed Flickr image",
		Match:       regexp.MustCompile(`(?i)^embed\s+flickr(\s+image)?$`),
		Syntax:      "{embed Flickr image: 'embed code', alt: 'alternate text'}",
		Description: "Renders an image hosted on Flickr.",
		Removed:     "2.0.0",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgRequired,
			Type:        symbols.ValuePlain,
			Placeholder: "'embed code'",
		},
		OptionalProps: []symbols.Prop{
			{Name: "alt", Type: symbols.ValuePlain, Placeholder: "'alternate text'"},
		},
	},
	{
		Name:        "embed YouTube video",
		Match:       regexp.MustCompile(`(?i)^embed\s+youtube(\s+video)?$`),
		Syntax:      "{embed YouTube video: 'url', autoplay: true}",
		Description: "Renders a YouTube player for the video at a URL.",
		Removed:     "2.0.0",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgRequired,
			Type:        symbols.ValuePlain,
			Placeholder: "'url'",
		},
		OptionalProps: []symbols.Prop{
			{Name: "autoplay", Type: symbols.ValueExpression, Placeholder: "true"},
			{Name: "loop", Type: symbols.ValueExpression, Placeholder: "false"},
		},
	},
	{
		Name:        "link to",
		Match:       regexp.MustCompile(`(?i)^link\s+to$`),
		Syntax:      "{link to: 'passage name or URL', label: 'label'}",
		Description: "Renders a link to a passage or an external URL.",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgRequired,
			Type:        symbols.ValueURLOrPassage,
			Placeholder: "'passage name or URL'",
		},
		OptionalProps: []symbols.Prop{
			{Name: "label", Type: symbols.ValuePlain, Placeholder: "'label'"},
		},
	},
	{
		Name:        "no ambient sound",
		Match:       regexp.MustCompile(`(?i)^no\s+ambient\s+sound$`),
		Syntax:      "{no ambient sound}",
		Description: "Stops any playing ambient sound.",
		Since:       "2.0.0",
		FirstArgument: &symbols.FirstArgument{
			Required: symbols.ArgIgnored,
		},
		OptionalProps: []symbols.Prop{
			{Name: "over", Type: symbols.ValueNumber, Placeholder: "2"},
		},
	},
	{
		Name:        "restart link",
		Match:       regexp.MustCompile(`(?i)^restart\s+link$`),
		Syntax:      "{restart link, label: 'label'}",
		Description: "Renders a link that restarts the story.",
		FirstArgument: &symbols.FirstArgument{
			Required: symbols.ArgIgnored,
		},
		OptionalProps: []symbols.Prop{
			{Name: "label", Type: symbols.ValuePlain, Placeholder: "'label'"},
		},
	},
	{
		Name:        "reveal link",
		Match:       regexp.MustCompile(`(?i)^reveal\s+link$`),
		Syntax:      "{reveal link: 'label', text: 'revealed text'}",
		Description: "Renders a link that expands into text or a passage's content when clicked.",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgRequired,
			Type:        symbols.ValuePlain,
			Placeholder: "'label'",
		},
		OptionalProps: []symbols.Prop{
			{Name: "text", Type: symbols.ValuePlain, Placeholder: "'revealed text'"},
			{Name: "passage", Type: symbols.ValuePassage, Placeholder: "'passage name'"},
		},
	},
	{
		Name:        "sound effect",
		Match:       regexp.MustCompile(`(?i)^sound\s+effect$`),
		Syntax:      "{sound effect: 'sound name', volume: 0.5}",
		Description: "Plays a previously-defined sound effect once.",
		Since:       "2.0.0",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgRequired,
			Type:        symbols.ValuePlain,
			Placeholder: "'sound name'",
		},
		OptionalProps: []symbols.Prop{
			{Name: "volume", Type: symbols.ValueNumber, Placeholder: "0.5"},
		},
	},
	{
		Name:        "text input",
		Match:       regexp.MustCompile(`(?i)^text\s+input$`),
		Syntax:      "{text input for: 'variable name', required: true}",
		Description: "Renders a text field, optionally saving the entered text to a variable.",
		FirstArgument: &symbols.FirstArgument{
			Required:    symbols.ArgOptional,
			Type:        symbols.ValuePlain,
			Placeholder: "'variable name'",
		},
		OptionalProps: []symbols.Prop{
			{Name: "required", Type: symbols.ValueExpression, Placeholder: "true"},
		},
	},
	{
		Name:        "theme switcher",
		Match:       regexp.MustCompile(`(?i)^theme\s+switcher$`),
		Syntax:      "{theme switcher, darkLabel: 'Dark', lightLabel: 'Light'}",
		Description: "Renders a link that toggles between light and dark themes.",
		Since:       "2.1.0",
		FirstArgument: &symbols.FirstArgument{
			Required: symbols.ArgIgnored,
		},
		OptionalProps: []symbols.Prop{
			{Name: "darkLabel", Type: symbols.ValuePlain, Placeholder: "'Dark'"},
			{Name: "lightLabel", Type: symbols.ValuePlain, Placeholder: "'Light'"},
		},
	},
}

// Inserts returns the ordered built-in insert catalog.
func Inserts() []symbols.Descriptor {
	return inserts
}

// MatchInsert resolves an insert name against the catalog. The first entry
// whose regex matches wins; nil means no built-in matched.
func MatchInsert(name string) *symbols.Descriptor {
	for i := range inserts {
		if inserts[i].Match.MatchString(name) {
			return &inserts[i]
		}
	}
	return nil
}
