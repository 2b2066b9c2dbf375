package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// parseVarsLine analyzes one `name: value` line of the vars section.
// Grammar per line: variable name, optional `.property` suffix, optional
// parenthesized condition, mandatory colon, typed value. Every malformed
// piece degrades to a diagnostic; the rest of the line is still analyzed.
func (s *state) parseVarsLine(start, end int) {
	line := s.passage.Document[start:end]
	if strings.TrimSpace(line) == "" {
		return
	}

	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}

	nameStart := start + i
	i = s.scanVarName(line, i, start, true)
	nameEnd := start + i
	if nameEnd > nameStart {
		name := s.passage.Document[nameStart:nameEnd]
		s.token(nameStart, nameEnd, symbols.TokenVariable, symbols.ModifierDeclaration)
		s.ref(name, symbols.KindVariableSet, nameStart, nameEnd)
	}

	// Optional property suffix, anchored past the dot and unvalidated.
	if i < len(line) && line[i] == '.' {
		propStart := i + 1
		j := propStart
		for j < len(line) && line[j] != '(' && line[j] != ':' && line[j] != ' ' && line[j] != '\t' {
			j++
		}
		if j > propStart {
			s.token(start+propStart, start+j, symbols.TokenProperty, symbols.ModifierDeclaration)
			s.ref(line[propStart:j], symbols.KindPropertySet, start+propStart, start+j)
		}
		i = j
	}

	spaceStart := -1
	if i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		spaceStart = start + i
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
	}

	// Optional parenthesized condition, scanned for embedded references.
	afterCondition := false
	if i < len(line) && line[i] == '(' {
		closing := matchParen(line, i)
		if closing < 0 {
			s.errorAt(end, end, "Missing a close parenthesis")
			s.scanExpression(line[i+1:], start+i+1, true)
			return
		}
		s.scanExpression(line[i+1:closing], start+i+1, true)
		i = closing + 1
		afterCondition = true
		spaceStart = -1
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
	}

	if i >= len(line) || line[i] != ':' {
		colon := strings.IndexByte(line[i:], ':')
		if colon < 0 {
			s.warnAt(start, end, "Missing colon; this line will be ignored")
			return
		}
		junkStart, junkEnd := trimSpan(line[i:i+colon], start+i)
		if afterCondition {
			if junkEnd > junkStart {
				s.warnAt(junkStart, junkEnd, "This text will be ignored")
			}
		} else if spaceStart >= 0 {
			s.errorAt(spaceStart, spaceStart+1, "Variable names can't have spaces")
		}
		i += colon
	}
	i++ // past the colon

	s.classifyValue(line[i:], start+i)
}

// scanVarName validates a variable name starting at i, reporting every
// illegal character individually at its own span. It returns the index just
// past the name run. The name run ends at `.`, `(`, `:`, or whitespace.
func (s *state) scanVarName(line string, i, lineStart int, validate bool) int {
	first := true
	for i < len(line) {
		c := line[i]
		if c == '.' || c == '(' || c == ':' || c == ' ' || c == '\t' {
			break
		}
		r, size := utf8.DecodeRuneInString(line[i:])
		if validate {
			legal := unicode.IsLetter(r) || r == '$' || r == '_' || (!first && unicode.IsDigit(r))
			if !legal {
				if first {
					s.errorAt(lineStart+i, lineStart+i+size, "Variable names must start with a letter, $, or _")
				} else {
					s.errorAt(lineStart+i, lineStart+i+size, "Variable names can only contain letters, digits, $, and _")
				}
			}
		}
		first = false
		i += size
	}
	return i
}

// matchParen returns the index of the parenthesis closing the one at open,
// honoring nesting and string literals, or -1 when unterminated.
func matchParen(text string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(text); i++ {
		c := text[i]
		if c == '\\' && i+1 < len(text) {
			i++
			continue
		}
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
