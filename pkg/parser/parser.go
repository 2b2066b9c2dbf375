// Package parser turns Chapbook passage text into semantic tokens,
// references, definitions, and diagnostics. The parse is a pure function of
// the passage text, the story-format context, and an index snapshot: it
// re-scans the full text on every call and never mutates shared state, so
// independent passages may be analyzed concurrently. Malformed constructs
// degrade to "no token for that construct" instead of halting analysis.
package parser

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/twinetools/chapbook-ls/pkg/extension"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/scanner"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// Passage is an immutable slice of a document: the full document text plus
// the byte span the passage occupies within it. Positions in every output
// are document positions, so a passage that starts mid-document still
// reports exact editor coordinates.
type Passage struct {
	URI      string
	Document string
	Start    int
	End      int
}

// Whole wraps an entire document as a single passage.
func Whole(uri, text string) Passage {
	return Passage{URI: uri, Document: text, Start: 0, End: len(text)}
}

// Text returns the passage's own text.
func (p Passage) Text() string {
	return p.Document[p.Start:p.End]
}

// Result is everything one parse call produces. Each parse yields a fresh
// Result that fully replaces the passage's prior contribution to the index.
type Result struct {
	Tokens            []symbols.Token
	References        []symbols.Reference
	Definitions       []symbols.Definition
	Diagnostics       []symbols.Diagnostic
	EmbeddedDocuments []symbols.EmbeddedDocument
	FoldingRanges     []symbols.FoldingRange
	Decorations       []symbols.DecorationRange
}

// state carries one parse call's working set. It is never shared.
type state struct {
	ctx     context.Context
	passage Passage
	m       *position.Mapper
	format  format.StoryFormat
	index   symbols.Index

	tokens []symbols.Token
	refs   *symbols.ReferenceSet
	result *Result
}

// Parse analyzes one passage. index may be nil when no project-wide
// registrations exist yet; resolution then covers built-ins only.
func Parse(ctx context.Context, passage Passage, storyFormat format.StoryFormat, index symbols.Index) *Result {
	s := &state{
		ctx:     ctx,
		passage: passage,
		m:       position.NewMapper(passage.Document),
		format:  storyFormat,
		index:   index,
		refs:    symbols.NewReferenceSet(),
		result:  &Result{},
	}

	zerolog.Ctx(ctx).Debug().
		Str("uri", passage.URI).
		Int("start", passage.Start).
		Int("end", passage.End).
		Msg("parsing passage")

	bodyStart := s.parseVarsSection()
	s.parseBody(bodyStart)

	symbols.SortTokens(s.tokens)
	s.result.Tokens = s.tokens
	s.result.References = s.refs.References()
	return s.result
}

// token records a semantic token over the byte span [start, end).
func (s *state) token(start, end int, t symbols.TokenType, mods symbols.TokenModifier) {
	if end <= start {
		return
	}
	pos := s.m.Pos(start)
	s.tokens = append(s.tokens, symbols.Token{
		Line:      pos.Line,
		Character: pos.Character,
		Length:    position.UTF16Len(s.passage.Document[start:end]),
		Type:      t,
		Modifiers: mods,
	})
}

func (s *state) ref(contents string, kind symbols.SymbolKind, start, end int) {
	s.refs.Add(contents, kind, s.m.Range(start, end))
}

func (s *state) diag(severity symbols.Severity, start, end int, msg string) {
	s.result.Diagnostics = append(s.result.Diagnostics, symbols.Diagnostic{
		Range:    s.m.Range(start, end),
		Severity: severity,
		Message:  msg,
	})
}

func (s *state) errorAt(start, end int, msg string) {
	s.diag(symbols.SeverityError, start, end, msg)
}

func (s *state) warnAt(start, end int, msg string) {
	s.diag(symbols.SeverityWarning, start, end, msg)
}

// lineSpan returns the byte span of line li clipped to the passage bounds.
func (s *state) lineSpan(li int) (int, int) {
	start := s.m.LineStart(li)
	end := s.m.LineEnd(li)
	if start < s.passage.Start {
		start = s.passage.Start
	}
	if end > s.passage.End {
		end = s.passage.End
	}
	if end < start {
		end = start
	}
	return start, end
}

func (s *state) firstLine() int {
	return s.m.Pos(s.passage.Start).Line
}

func (s *state) lastLine() int {
	if s.passage.End == s.passage.Start {
		return s.firstLine()
	}
	return s.m.Pos(s.passage.End - 1).Line
}

// isDividerLine reports whether the line is the vars-section divider: two or
// more hyphens and nothing else but trailing whitespace.
func isDividerLine(text string) bool {
	trimmed := strings.TrimRight(text, " \t")
	if len(trimmed) < 2 {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != '-' {
			return false
		}
	}
	return true
}

// parseVarsSection handles the optional header block. It returns the line
// index body parsing starts at. Without a divider line the whole passage is
// body.
func (s *state) parseVarsSection() int {
	first, last := s.firstLine(), s.lastLine()
	divider := -1
	for li := first; li <= last; li++ {
		start, end := s.lineSpan(li)
		if isDividerLine(s.passage.Document[start:end]) {
			divider = li
			break
		}
	}
	if divider < 0 {
		return first
	}

	for li := first; li < divider; li++ {
		start, end := s.lineSpan(li)
		s.parseVarsLine(start, end)
	}

	divStart, divEnd := s.lineSpan(divider)
	s.token(divStart, divEnd, symbols.TokenKeyword, symbols.ModifierNone)
	s.result.Decorations = append(s.result.Decorations, symbols.DecorationRange{
		Type:  symbols.DecorationVarsDivider,
		Range: s.m.Range(divStart, divEnd),
	})
	if divider > first {
		s.result.FoldingRanges = append(s.result.FoldingRanges, symbols.FoldingRange{
			StartLine: first,
			EndLine:   divider - 1,
		})
	}
	return divider + 1
}

// bodyMode tracks what the lines after a modifier block mean.
type bodyMode int

const (
	modeText bodyMode = iota
	modeComment
	modeCSS
	modeJavaScript
)

// parseBody walks the passage content line by line, dispatching modifier
// blocks, links, inserts, and the raw bodies that note/CSS/JavaScript
// modifiers introduce.
func (s *state) parseBody(fromLine int) {
	last := s.lastLine()
	mode := modeText
	rawStart := -1 // byte offset where the current raw body began

	flushRaw := func(endLine int) {
		if rawStart < 0 {
			mode = modeText
			return
		}
		_, rawEnd := s.lineSpan(endLine)
		switch mode {
		case modeComment:
			s.result.Decorations = append(s.result.Decorations, symbols.DecorationRange{
				Type:  symbols.DecorationComment,
				Range: s.m.Range(rawStart, rawEnd),
			})
		case modeCSS:
			s.emitEmbedded(rawStart, rawEnd, "css", false)
		case modeJavaScript:
			s.emitEmbedded(rawStart, rawEnd, "javascript", true)
			s.parseExtensions(rawStart, rawEnd)
		}
		rawStart = -1
		mode = modeText
	}

	foldStart := -1
	closeFold := func(endLine int) {
		if foldStart >= 0 && endLine > foldStart {
			s.result.FoldingRanges = append(s.result.FoldingRanges, symbols.FoldingRange{
				StartLine: foldStart,
				EndLine:   endLine,
			})
		}
		foldStart = -1
	}

	for li := fromLine; li <= last; li++ {
		start, end := s.lineSpan(li)
		line := s.passage.Document[start:end]

		if isModifierLine(line) {
			flushRaw(li - 1)
			closeFold(li - 1)
			newMode, foldable := s.parseModifierLine(start, end)
			mode = newMode
			rawStart = -1
			if foldable {
				foldStart = li
			}
			continue
		}

		switch mode {
		case modeComment:
			if strings.TrimSpace(line) != "" {
				if rawStart < 0 {
					rawStart = start
				}
				s.token(start, end, symbols.TokenComment, symbols.ModifierNone)
			}
		case modeCSS, modeJavaScript:
			if rawStart < 0 {
				rawStart = start
			}
		default:
			s.parseTextLine(start, end)
		}
	}

	flushRaw(last)
	closeFold(last)
}

func (s *state) emitEmbedded(start, end int, languageID string, deferToFormat bool) {
	if end <= start {
		return
	}
	s.result.EmbeddedDocuments = append(s.result.EmbeddedDocuments, symbols.EmbeddedDocument{
		URI:                "embedded:" + uuid.NewString(),
		Range:              s.m.Range(start, end),
		Document:           s.passage.Document[start:end],
		LanguageID:         languageID,
		DeferToStoryFormat: deferToFormat,
	})
}

// parseExtensions runs the engine.extend reader over a script body and
// folds its findings into the parse result.
func (s *state) parseExtensions(start, end int) {
	res := extension.Parse(extension.Input{
		URI:      s.passage.URI,
		Document: s.passage.Document,
		Start:    start,
		End:      end,
		Mapper:   s.m,
		Format:   s.format,
	})
	s.result.Definitions = append(s.result.Definitions, res.Definitions...)
	s.result.Diagnostics = append(s.result.Diagnostics, res.Diagnostics...)
}

// customInserts returns the project-wide custom insert definitions, or nil
// without an index.
func (s *state) customInserts() []symbols.Definition {
	if s.index == nil {
		return nil
	}
	return s.index.ProjectDefinitions(symbols.KindCustomInsert)
}

// parseTextLine scans one ordinary content line for links and inserts.
// Links are checked before inserts so `[[` is never misread, and each
// insert's closing brace is located quote-aware so adjacent inserts on one
// line parse independently.
func (s *state) parseTextLine(start, end int) {
	line := s.passage.Document[start:end]
	for i := 0; i < len(line); {
		if strings.HasPrefix(line[i:], "[[") {
			if closing := strings.Index(line[i+2:], "]]"); closing >= 0 {
				s.parseLink(start+i+2, start+i+2+closing)
				i += 2 + closing + 2
				continue
			}
		}
		if line[i] == '{' {
			contentStart := i + 1
			if closing := scanner.IndexUnquoted(line[contentStart:], '}'); closing >= 0 {
				s.parseInsert(start+contentStart, start+contentStart+closing)
				i = contentStart + closing + 1
			} else {
				// Unterminated insert: analyze what's there, then stop.
				s.parseInsert(start+contentStart, end)
				i = len(line)
			}
			continue
		}
		i++
	}
}

// versionGate checks a built-in descriptor's since/removed bounds against
// the active format version and reports violations at the name's span.
func (s *state) versionGate(d *symbols.Descriptor, start, end int) {
	if !s.format.VersionKnown() {
		return
	}
	if d.Since != "" && format.Compare(s.format.FormatVersion, d.Since) < 0 {
		s.errorAt(start, end, `"`+d.Name+`" isn't available until version `+d.Since)
	}
	if d.Removed != "" && format.Compare(s.format.FormatVersion, d.Removed) >= 0 {
		s.errorAt(start, end, `"`+d.Name+`" was removed in version `+d.Removed+` and can't be used`)
	}
}
