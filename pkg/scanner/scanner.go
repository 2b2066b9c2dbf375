// Package scanner provides the quote- and bracket-aware substring primitives
// the syntactic parsers share. All scanning is a single left-to-right pass
// tracking an inside-string flag (honoring backslash escapes) and a bracket
// depth counter, so commas, colons, and closing delimiters inside string or
// array literals never terminate a construct early.
package scanner

import "strings"

// Segment is a slice of scanned text together with its offset relative to
// the start of the scanned string.
type Segment struct {
	Text   string
	Offset int
}

// quoteState tracks whether the scan is inside a string literal.
type quoteState struct {
	quote byte // 0 when outside a string
}

func (q *quoteState) step(text string, i int) (consumed int, inString bool) {
	c := text[i]
	if c == '\\' && i+1 < len(text) {
		return 2, q.quote != 0
	}
	if q.quote != 0 {
		if c == q.quote {
			q.quote = 0
		}
		return 1, true
	}
	if c == '\'' || c == '"' {
		q.quote = c
		return 1, true
	}
	return 1, false
}

// IndexUnquoted returns the index of the first occurrence of target that is
// not inside a string literal, or -1. Bracket depth is ignored: a modifier
// closes at the first unquoted `]` and an insert at the first unquoted `}`.
func IndexUnquoted(text string, target byte) int {
	var q quoteState
	for i := 0; i < len(text); {
		consumed, inString := q.step(text, i)
		if !inString && text[i] == target {
			return i
		}
		i += consumed
	}
	return -1
}

// IndexTopLevel returns the index of the first occurrence of target that is
// outside string literals and at bracket depth zero, or -1. Parentheses,
// square brackets, and braces all raise the depth.
func IndexTopLevel(text string, target byte) int {
	var q quoteState
	depth := 0
	for i := 0; i < len(text); {
		consumed, inString := q.step(text, i)
		if !inString {
			switch text[i] {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				if depth > 0 {
					depth--
				}
			default:
				if depth == 0 && text[i] == target {
					return i
				}
			}
		}
		i += consumed
	}
	return -1
}

// SplitTopLevel splits text on every top-level occurrence of sep, returning
// the separated segments with their offsets. Separators inside string
// literals or bracketed groups are left alone.
func SplitTopLevel(text string, sep byte) []Segment {
	var q quoteState
	depth := 0
	segments := []Segment{}
	start := 0
	for i := 0; i < len(text); {
		consumed, inString := q.step(text, i)
		if !inString {
			switch text[i] {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				if depth > 0 {
					depth--
				}
			default:
				if depth == 0 && text[i] == sep {
					segments = append(segments, Segment{Text: text[start:i], Offset: start})
					start = i + consumed
				}
			}
		}
		i += consumed
	}
	segments = append(segments, Segment{Text: text[start:], Offset: start})
	return segments
}

// Property is one `name: value` pair split out of an insert's contents.
// A property with no top-level colon comes back with HasValue false and the
// whole segment as its name, letting the caller flag it at the name's span.
type Property struct {
	Name        string
	NameOffset  int
	Value       string
	ValueOffset int
	HasValue    bool
}

// InsertContents is the decomposition of everything between an insert's
// braces: the leading segment (name plus optional first argument) and its
// comma-separated properties.
type InsertContents struct {
	Leading    Segment
	Properties []Property
}

// SplitInsert splits an insert's contents into its leading value and
// properties. Commas and colons inside quotes or array literals never split;
// each property name keeps its own offset so unnamed or whitespace-bearing
// names can be flagged exactly where they sit.
func SplitInsert(text string) InsertContents {
	segments := SplitTopLevel(text, ',')
	out := InsertContents{Leading: segments[0]}
	for _, seg := range segments[1:] {
		prop := Property{Name: seg.Text, NameOffset: seg.Offset}
		if colon := IndexTopLevel(seg.Text, ':'); colon >= 0 {
			prop.Name = seg.Text[:colon]
			prop.Value = seg.Text[colon+1:]
			prop.ValueOffset = seg.Offset + colon + 1
			prop.HasValue = true
		}
		out.Properties = append(out.Properties, prop)
	}
	return out
}

// SplitWhitespace splits text on runs of unquoted whitespace, used for
// modifier parameters. Quoted runs stay intact, quotes included.
func SplitWhitespace(text string) []Segment {
	var q quoteState
	var segments []Segment
	start := -1
	for i := 0; i < len(text); {
		consumed, inString := q.step(text, i)
		isSpace := !inString && (text[i] == ' ' || text[i] == '\t')
		if isSpace {
			if start >= 0 {
				segments = append(segments, Segment{Text: text[start:i], Offset: start})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		i += consumed
	}
	if start >= 0 {
		segments = append(segments, Segment{Text: text[start:], Offset: start})
	}
	return segments
}

// IsQuoted reports whether s is a single- or double-quoted string literal.
func IsQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	open := s[0]
	if open != '\'' && open != '"' {
		return false
	}
	if s[len(s)-1] != open {
		return false
	}
	// The closing quote must not be escaped.
	backslashes := 0
	for i := len(s) - 2; i >= 0 && s[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 0
}

// Unquote strips the surrounding quotes from a quoted literal and resolves
// backslash escapes. Callers check IsQuoted first.
func Unquote(s string) string {
	if !IsQuoted(s) {
		return s
	}
	inner := s[1 : len(s)-1]
	if !strings.ContainsRune(inner, '\\') {
		return inner
	}
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}
