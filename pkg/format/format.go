// Package format carries the story-format context a parse runs under and the
// version arithmetic used for gating built-ins and engine extensions.
package format

import (
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// StoryFormat identifies the active story format. FormatVersion may be empty
// when the story does not pin one; version gating is skipped in that case.
type StoryFormat struct {
	Format        string
	FormatVersion string
}

// VersionKnown reports whether a format version is available for gating.
func (f StoryFormat) VersionKnown() bool {
	return f.FormatVersion != ""
}

// ParseVersion splits a dot-separated version string into its numeric
// components. Every component must be a non-negative integer.
func ParseVersion(s string) ([]int, error) {
	if s == "" {
		return nil, errors.New("empty version string")
	}
	parts := strings.Split(s, ".")
	components := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, errors.Errorf("version component %q is not a non-negative integer", part)
		}
		components = append(components, n)
	}
	return components, nil
}

// Compare orders two version strings component-wise left to right, with
// missing components reading as zero: "2.0" < "2.0.1", "2.2.1" > "2.1.17".
// Returns -1, 0, or 1. Non-numeric components compare as zero; callers that
// need to reject them validate with ParseVersion first.
func Compare(a, b string) int {
	av := lenientComponents(a)
	bv := lenientComponents(b)
	n := len(av)
	if len(bv) > n {
		n = len(bv)
	}
	for i := 0; i < n; i++ {
		x, y := 0, 0
		if i < len(av) {
			x = av[i]
		}
		if i < len(bv) {
			y = bv[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func lenientComponents(s string) []int {
	parts := strings.Split(s, ".")
	out := make([]int, len(parts))
	for i, part := range parts {
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			out[i] = n
		}
	}
	return out
}
