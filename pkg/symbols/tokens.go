package symbols

import "sort"

// TokenType is the semantic classification of a highlighted span. The values
// line up with the LSP semantic token legend the server advertises.
type TokenType int

const (
	TokenVariable TokenType = iota
	TokenProperty
	TokenKeyword
	TokenString
	TokenNumber
	TokenFunction // insert names
	TokenMacro    // modifier names
	TokenParameter
	TokenComment
	TokenOperator
	TokenClass // link targets
	TokenDecorator
)

// LegendTokenTypes is the semantic token legend, indexed by TokenType.
var LegendTokenTypes = []string{
	"variable",
	"property",
	"keyword",
	"string",
	"number",
	"function",
	"macro",
	"parameter",
	"comment",
	"operator",
	"class",
	"decorator",
}

// TokenModifier is a bitmask of extra characteristics on a token.
type TokenModifier int

const (
	ModifierNone        TokenModifier = 0
	ModifierDeclaration TokenModifier = 1 << iota
	ModifierDeprecated
)

// LegendTokenModifiers is the modifier legend, indexed by bit position.
var LegendTokenModifiers = []string{
	"declaration",
	"deprecated",
}

// Token is one semantically highlighted span. Length is in UTF-16 code
// units, consistent with the character column.
type Token struct {
	Line      int
	Character int
	Length    int
	Type      TokenType
	Modifiers TokenModifier
}

// SortTokens orders tokens ascending by (line, character). Every parse emits
// tokens in this order; parsers that interleave passes sort once at the end.
func SortTokens(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Line != tokens[j].Line {
			return tokens[i].Line < tokens[j].Line
		}
		return tokens[i].Character < tokens[j].Character
	})
}
