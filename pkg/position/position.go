// Package position centralizes offset <-> (line, character) bookkeeping for
// passage text. Lines are zero-based; characters are zero-based UTF-16 code
// units, which is what editors speak. Both `\n` and `\r\n` terminators are
// handled, and astral-plane runes (emoji and friends) count as two code units.
package position

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Pos is a zero-based line / UTF-16 character pair.
type Pos struct {
	Line      int
	Character int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Before reports whether p comes before other in document order.
func (p Pos) Before(other Pos) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// Range is a half-open [Start, End) span of document positions.
type Range struct {
	Start Pos
	End   Pos
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Contains reports whether pos lies within the range. The end position is
// included so that a caret sitting just past the last character of a word
// still resolves to it, matching editor hover behavior.
func (r Range) Contains(pos Pos) bool {
	if pos.Before(r.Start) {
		return false
	}
	return !r.End.Before(pos)
}

// Empty reports whether the range spans no characters.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// utf16RuneLen mirrors utf16.RuneLen, which requires Go 1.23; this keeps the
// package building on Go 1.21 toolchains.
func utf16RuneLen(r rune) int {
	switch {
	case 0 <= r && r < 0xd800, 0xe000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= utf8.MaxRune:
		return 2
	default:
		return -1
	}
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16RuneLen(r)
	}
	return n
}

// Mapper converts between byte offsets in a document and editor positions.
// Build one per document text and reuse it; construction indexes the line
// starts once, after which conversions walk at most a single line.
type Mapper struct {
	text       string
	lineStarts []int // byte offset of the first byte of each line
}

func NewMapper(text string) *Mapper {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Mapper{text: text, lineStarts: starts}
}

// Text returns the document text the mapper was built from.
func (m *Mapper) Text() string {
	return m.text
}

// LineCount returns the number of lines in the document.
func (m *Mapper) LineCount() int {
	return len(m.lineStarts)
}

// LineStart returns the byte offset of the first byte of the given line.
// Out-of-range lines clamp to the document bounds.
func (m *Mapper) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(m.lineStarts) {
		return len(m.text)
	}
	return m.lineStarts[line]
}

// LineEnd returns the byte offset just past the last content byte of the
// line, excluding the `\n` or `\r\n` terminator.
func (m *Mapper) LineEnd(line int) int {
	if line < 0 {
		return 0
	}
	var end int
	if line+1 < len(m.lineStarts) {
		end = m.lineStarts[line+1] - 1 // strip '\n'
		if end > 0 && end-1 >= m.lineStarts[line] && m.text[end-1] == '\r' {
			end--
		}
	} else {
		end = len(m.text)
	}
	return end
}

// LineText returns the content of the given line without its terminator.
func (m *Mapper) LineText(line int) string {
	if line < 0 || line >= len(m.lineStarts) {
		return ""
	}
	return m.text[m.LineStart(line):m.LineEnd(line)]
}

// lineFor returns the index of the line containing the byte offset.
func (m *Mapper) lineFor(offset int) int {
	lo, hi := 0, len(m.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Pos converts a byte offset into a line / UTF-16 character pair. Offsets
// outside the document clamp to its bounds.
func (m *Mapper) Pos(offset int) Pos {
	if offset < 0 {
		offset = 0
	}
	if offset > len(m.text) {
		offset = len(m.text)
	}
	line := m.lineFor(offset)
	col := 0
	for i := m.lineStarts[line]; i < offset; {
		r, size := utf8.DecodeRuneInString(m.text[i:])
		if size == 0 {
			break
		}
		col += utf16RuneLen(r)
		i += size
	}
	return Pos{Line: line, Character: col}
}

// Offset converts a line / UTF-16 character pair back into a byte offset.
// Characters past the end of the line clamp to the line end.
func (m *Mapper) Offset(p Pos) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(m.lineStarts) {
		return len(m.text)
	}
	end := m.LineEnd(p.Line)
	offset := m.lineStarts[p.Line]
	remaining := p.Character
	for offset < end && remaining > 0 {
		r, size := utf8.DecodeRuneInString(m.text[offset:])
		if size == 0 {
			break
		}
		units := utf16RuneLen(r)
		if units > remaining {
			break
		}
		remaining -= units
		offset += size
	}
	return offset
}

// Range converts a byte-offset span into an editor range.
func (m *Mapper) Range(start, end int) Range {
	return Range{Start: m.Pos(start), End: m.Pos(end)}
}

// WordRangeAt returns the byte-offset span of the identifier run touching
// the given byte offset. Identifier runs are letters, digits, `$`, `_` and
// interior single spaces never count; a caret between two runs attaches to
// the run it ends.
func (m *Mapper) WordRangeAt(offset int, isWordByte func(byte) bool) (int, int) {
	if offset > len(m.text) {
		offset = len(m.text)
	}
	start := offset
	for start > 0 && isWordByte(m.text[start-1]) {
		start--
	}
	end := offset
	for end < len(m.text) && isWordByte(m.text[end]) {
		end++
	}
	return start, end
}

// DescribeOffset renders an offset as "line:char" for log output.
func (m *Mapper) DescribeOffset(offset int) string {
	return m.Pos(offset).String()
}

// TrimmedSpan returns the byte-offset span of s within [start, start+len(s))
// after trimming surrounding whitespace, for anchoring references at the
// meaningful part of a padded segment.
func TrimmedSpan(s string, start int) (int, int) {
	trimmedLeft := strings.TrimLeft(s, " \t")
	lo := start + (len(s) - len(trimmedLeft))
	trimmed := strings.TrimRight(trimmedLeft, " \t")
	return lo, lo + len(trimmed)
}
