package symbols

import "github.com/twinetools/chapbook-ls/pkg/position"

// Severity splits diagnostics into the two levels the dialect needs: Error
// for content that will misbehave at runtime, Warning for content that is
// probably a mistake but may be intentional or runtime-resolvable.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic attaches a message to a range in the originating document.
// No diagnostic carries an automated fix.
type Diagnostic struct {
	Range    position.Range
	Severity Severity
	Message  string
	Code     string
}

// EmbeddedDocument hands a sub-document (CSS or script inside a modifier
// body) to the host's embedded-language machinery. The analyzer never
// interprets the contents itself.
type EmbeddedDocument struct {
	// URI is a synthetic identifier for the sub-document.
	URI string
	// Range is the span of Document within the host passage.
	Range position.Range
	// Document is the raw embedded text.
	Document   string
	LanguageID string
	// IsPassage marks embedded content that is itself passage text.
	IsPassage bool
	// DeferToStoryFormat defers analysis to the host story format instead of
	// the generic language service (scripts, whose dialect the format owns).
	DeferToStoryFormat bool
}

// FoldingRange marks a line span an editor may collapse.
type FoldingRange struct {
	StartLine int
	EndLine   int
}

// DecorationType names a visual treatment the editor applies outside of
// semantic tokens.
type DecorationType int

const (
	// DecorationVarsDivider is the `--` line separating the vars section
	// from passage content.
	DecorationVarsDivider DecorationType = iota
	// DecorationComment covers note-modifier bodies.
	DecorationComment
)

// DecorationRange is one typed decoration span.
type DecorationRange struct {
	Type  DecorationType
	Range position.Range
}
