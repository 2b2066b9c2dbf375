package extension

import "strings"

// The extension reader never executes script. It lexes just enough
// JavaScript to walk past string, template, regex, and comment literals so
// that braces and commas inside them can't derail the object-literal scan.

// regexCanFollow reports whether a `/` at this point opens a regex literal
// rather than division, judged by the last significant byte seen.
func regexCanFollow(last byte) bool {
	return last == 0 || strings.IndexByte("([{,;:=!&|?+-*%<>~^", last) >= 0
}

// skipString returns the index just past the string literal opening at i.
func skipString(text string, i int) int {
	quote := text[i]
	i++
	for i < len(text) {
		c := text[i]
		if c == '\\' && i+1 < len(text) {
			i += 2
			continue
		}
		i++
		if c == quote {
			break
		}
	}
	return i
}

// skipRegex returns the index just past the regex literal (flags included)
// opening at i. Slashes inside character classes don't close the literal.
func skipRegex(text string, i int) int {
	i++
	inClass := false
	for i < len(text) {
		c := text[i]
		if c == '\\' && i+1 < len(text) {
			i += 2
			continue
		}
		i++
		switch c {
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				for i < len(text) && text[i] >= 'a' && text[i] <= 'z' {
					i++
				}
				return i
			}
		case '\n':
			return i
		}
	}
	return i
}

// forEachCodeByte walks text, invoking fn for every byte that sits outside
// string, template, regex, and comment literals. fn returning false stops
// the walk.
func forEachCodeByte(text string, fn func(i int, c byte) bool) {
	var last byte
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipString(text, i)
			last = c
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return
			}
			i += 2 + end + 2
		case c == '/' && regexCanFollow(last):
			i = skipRegex(text, i)
			last = '/'
		default:
			if !fn(i, c) {
				return
			}
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				last = c
			}
			i++
		}
	}
}

// matchJSDelim returns the index of the delimiter closing the opener at
// open, or -1 when unterminated.
func matchJSDelim(text string, open int) int {
	depth := 0
	closing := -1
	forEachCodeByte(text[open:], func(i int, c byte) bool {
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				closing = open + i
				return false
			}
		}
		return true
	})
	return closing
}

type seg struct {
	text string
	off  int
}

// splitJSTop splits text on top-level occurrences of sep, keeping per-piece
// offsets.
func splitJSTop(text string, sep byte) []seg {
	depth := 0
	var out []seg
	start := 0
	forEachCodeByte(text, func(i int, c byte) bool {
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && c == sep {
				out = append(out, seg{text: text[start:i], off: start})
				start = i + 1
			}
		}
		return true
	})
	out = append(out, seg{text: text[start:], off: start})
	return out
}

// indexJSTop returns the offset of the first top-level occurrence of target,
// or -1.
func indexJSTop(text string, target byte) int {
	depth := 0
	found := -1
	forEachCodeByte(text, func(i int, c byte) bool {
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && c == target {
				found = i
				return false
			}
		}
		return true
	})
	return found
}

// trimSeg narrows a segment to its non-whitespace core, keeping the offset
// in step.
func trimSeg(s seg) seg {
	lo := 0
	for lo < len(s.text) && isJSSpace(s.text[lo]) {
		lo++
	}
	hi := len(s.text)
	for hi > lo && isJSSpace(s.text[hi-1]) {
		hi--
	}
	return seg{text: s.text[lo:hi], off: s.off + lo}
}

func isJSSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// isJSString reports whether s is a complete single-, double-, or
// backtick-quoted literal.
func isJSString(s string) bool {
	if len(s) < 2 {
		return false
	}
	q := s[0]
	if q != '\'' && q != '"' && q != '`' {
		return false
	}
	return skipString(s, 0) == len(s) && s[len(s)-1] == q
}

// unquoteJS strips the quotes and resolves backslash escapes. Callers check
// isJSString first.
func unquoteJS(s string) string {
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
