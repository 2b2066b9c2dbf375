package parser

import (
	"strings"

	"github.com/twinetools/chapbook-ls/pkg/builtins"
	"github.com/twinetools/chapbook-ls/pkg/scanner"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// isModifierLine reports whether the line is a modifier block: a line-start
// `[` (allowing stray whitespace, which is reported separately), a closing
// unquoted `]`, and nothing but whitespace after it. `[[` opens a link, not
// a block.
func isModifierLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "[[") {
		return false
	}
	inner := trimmed[1:]
	closing := scanner.IndexUnquoted(inner, ']')
	if closing < 0 {
		return false
	}
	return strings.TrimSpace(inner[closing+1:]) == ""
}

// parseModifierLine analyzes one modifier block. It returns the body mode
// the following lines take and whether the block opens a folding range
// (continuation modifiers resume the previous flow and do not).
func (s *state) parseModifierLine(start, end int) (bodyMode, bool) {
	line := s.passage.Document[start:end]

	leadLen := len(line) - len(strings.TrimLeft(line, " \t"))
	if leadLen > 0 {
		s.errorAt(start, start+leadLen, "Modifiers can't have whitespace before them")
	}
	trailLen := len(line) - len(strings.TrimRight(line, " \t"))
	if trailLen > 0 {
		s.errorAt(end-trailLen, end, "Modifiers can't have whitespace after them")
	}

	open := start + leadLen // at '['
	contentStart := open + 1
	rel := scanner.IndexUnquoted(s.passage.Document[contentStart:end], ']')
	if rel < 0 {
		return modeText, false
	}
	content := s.passage.Document[contentStart : contentStart+rel]

	mode := modeText
	foldable := true
	for _, seg := range scanner.SplitTopLevel(content, ';') {
		segStart, segEnd := trimSpan(seg.Text, contentStart+seg.Offset)
		if segEnd <= segStart {
			continue
		}
		full := s.passage.Document[segStart:segEnd]

		words := scanner.SplitWhitespace(full)
		nameStart, nameEnd := segStart, segEnd
		if len(words) > 0 {
			nameStart = segStart + words[0].Offset
			nameEnd = nameStart + len(words[0].Text)
		}

		d := builtins.MatchModifier(full)
		if d != nil {
			s.ref(d.Name, symbols.KindBuiltInModifier, segStart, segEnd)
			s.versionGate(d, nameStart, nameEnd)
			switch builtins.ModifierBehavior(d) {
			case builtins.BehaviorNote:
				mode = modeComment
			case builtins.BehaviorCSS:
				mode = modeCSS
			case builtins.BehaviorJavaScript:
				mode = modeJavaScript
			case builtins.BehaviorContinue:
				mode = modeText
				foldable = false
			}
		} else {
			// Custom or unrecognized: emit the generic reference either way.
			// Unrecognized-name diagnostics belong to the second pass.
			s.ref(full, symbols.KindCustomModifier, segStart, segEnd)
		}

		s.token(nameStart, nameEnd, symbols.TokenMacro, symbols.ModifierNone)
		for _, w := range words[1:] {
			wStart := segStart + w.Offset
			wEnd := wStart + len(w.Text)
			switch {
			case scanner.IsQuoted(w.Text):
				s.token(wStart, wEnd, symbols.TokenString, symbols.ModifierNone)
			case isNumberLiteral(w.Text):
				s.token(wStart, wEnd, symbols.TokenNumber, symbols.ModifierNone)
			default:
				s.token(wStart, wEnd, symbols.TokenParameter, symbols.ModifierNone)
			}
		}
	}

	return mode, foldable
}
