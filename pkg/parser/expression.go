package parser

import (
	"github.com/twinetools/chapbook-ls/pkg/builtins"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// expression keywords that are never variable reads.
var exprKeywords = map[string]bool{
	"true":      true,
	"false":     true,
	"null":      true,
	"undefined": true,
}

// scanExpression walks an expression fragment, emitting string, number, and
// keyword tokens plus variable/property references for bare identifier
// chains. A chain immediately followed by `(` is a namespaced call (such as
// Math.floor(...)) and yields no references; its arguments are picked up by
// the continuing scan. base is the byte offset of text within the document.
func (s *state) scanExpression(text string, base int, emitRefs bool) {
	for i := 0; i < len(text); {
		c := text[i]

		if c == '\'' || c == '"' {
			end := i + 1
			for end < len(text) {
				if text[end] == '\\' && end+1 < len(text) {
					end += 2
					continue
				}
				if text[end] == c {
					end++
					break
				}
				end++
			}
			s.token(base+i, base+end, symbols.TokenString, symbols.ModifierNone)
			i = end
			continue
		}

		if isDigit(c) || (c == '.' && i+1 < len(text) && isDigit(text[i+1])) {
			end := i + 1
			for end < len(text) && (isDigit(text[end]) || text[end] == '.') {
				end++
			}
			s.token(base+i, base+end, symbols.TokenNumber, symbols.ModifierNone)
			i = end
			continue
		}

		if isIdentStart(c) {
			type segment struct{ start, end int }
			segments := []segment{}
			j := i
			for {
				segStart := j
				for j < len(text) && isIdentByte(text[j]) {
					j++
				}
				segments = append(segments, segment{start: segStart, end: j})
				if j+1 < len(text) && text[j] == '.' && isIdentStart(text[j+1]) {
					j++ // consume the dot, continue with the next segment
					continue
				}
				break
			}

			k := j
			for k < len(text) && (text[k] == ' ' || text[k] == '\t') {
				k++
			}
			isCall := k < len(text) && text[k] == '('

			first := text[segments[0].start:segments[0].end]
			switch {
			case len(segments) == 1 && exprKeywords[first]:
				s.token(base+segments[0].start, base+segments[0].end, symbols.TokenKeyword, symbols.ModifierNone)
			case isCall:
				// Calls are opaque; their arguments follow in the scan.
			default:
				s.token(base+segments[0].start, base+segments[0].end, symbols.TokenVariable, symbols.ModifierNone)
				if emitRefs {
					s.ref(first, symbols.KindVariable, base+segments[0].start, base+segments[0].end)
				}
				// Property reads on engine lookups are always set; emitting
				// them would only feed false unset-property warnings.
				lookup := builtins.IsLookupVariable(first)
				for _, seg := range segments[1:] {
					s.token(base+seg.start, base+seg.end, symbols.TokenProperty, symbols.ModifierNone)
					if emitRefs && !lookup {
						s.ref(text[seg.start:seg.end], symbols.KindProperty, base+seg.start, base+seg.end)
					}
				}
			}
			i = j
			continue
		}

		i++
	}
}

// classifyValue tokenizes a typed vars-section or insert value: literal
// numbers, booleans, and quoted strings get a single token of their own
// type; anything else is scanned as an expression with reference emission.
func (s *state) classifyValue(text string, base int) {
	start, end := trimSpan(text, base)
	trimmed := s.passage.Document[start:end]
	switch {
	case trimmed == "":
	case isNumberLiteral(trimmed):
		s.token(start, end, symbols.TokenNumber, symbols.ModifierNone)
	case trimmed == "true" || trimmed == "false":
		s.token(start, end, symbols.TokenKeyword, symbols.ModifierNone)
	case isQuotedLiteral(trimmed):
		s.token(start, end, symbols.TokenString, symbols.ModifierNone)
	default:
		s.scanExpression(trimmed, start, true)
	}
}

func isNumberLiteral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' {
		i = 1
	}
	digits, dot := 0, false
	for ; i < len(s); i++ {
		switch {
		case isDigit(s[i]):
			digits++
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

func isQuotedLiteral(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0]
}

// trimSpan narrows [base, base+len(text)) to the non-whitespace core of
// text, returning document offsets.
func trimSpan(text string, base int) (int, int) {
	lo := 0
	for lo < len(text) && (text[lo] == ' ' || text[lo] == '\t') {
		lo++
	}
	hi := len(text)
	for hi > lo && (text[hi-1] == ' ' || text[hi-1] == '\t') {
		hi--
	}
	return base + lo, base + hi
}
