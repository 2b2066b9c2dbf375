package parser

import (
	"strings"

	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// parseLink analyzes the contents of a `[[...]]` form, spanning [start, end)
// in the document. The separator is the first unescaped `|`, `->`, or `<-`,
// checked in that priority. Whatever the form, the target text yields
// exactly one Passage reference at its own trimmed range.
func (s *state) parseLink(start, end int) {
	content := s.passage.Document[start:end]
	if strings.TrimSpace(content) == "" {
		return
	}

	sepAt, sepLen, targetFirst := -1, 0, false
	if p := indexUnescaped(content, "|"); p >= 0 {
		sepAt, sepLen = p, 1
	} else if p := indexUnescaped(content, "->"); p >= 0 {
		sepAt, sepLen = p, 2
	} else if p := indexUnescaped(content, "<-"); p >= 0 {
		sepAt, sepLen, targetFirst = p, 2, true
	}

	if sepAt < 0 {
		tStart, tEnd := trimSpan(content, start)
		s.token(tStart, tEnd, symbols.TokenClass, symbols.ModifierNone)
		s.ref(s.passage.Document[tStart:tEnd], symbols.KindPassage, tStart, tEnd)
		return
	}

	left, right := content[:sepAt], content[sepAt+sepLen:]
	displayText, targetText := left, right
	displayBase, targetBase := start, start+sepAt+sepLen
	if targetFirst {
		displayText, targetText = right, left
		displayBase, targetBase = start+sepAt+sepLen, start
	}

	dStart, dEnd := trimSpan(displayText, displayBase)
	s.token(dStart, dEnd, symbols.TokenString, symbols.ModifierNone)

	s.token(start+sepAt, start+sepAt+sepLen, symbols.TokenKeyword, symbols.ModifierNone)

	tStart, tEnd := trimSpan(targetText, targetBase)
	if tEnd > tStart {
		s.token(tStart, tEnd, symbols.TokenClass, symbols.ModifierNone)
		s.ref(s.passage.Document[tStart:tEnd], symbols.KindPassage, tStart, tEnd)
	}
}

// indexUnescaped finds the first occurrence of sep not preceded by a
// backslash, or -1.
func indexUnescaped(text, sep string) int {
	for i := 0; i+len(sep) <= len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(text[i:], sep) {
			return i
		}
	}
	return -1
}
