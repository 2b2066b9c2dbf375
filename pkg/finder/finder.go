// Package finder locates the story files an analysis run covers.
package finder

import (
	"context"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultPattern matches the conventional twee source layout.
const DefaultPattern = "**/*.twee"

// StoryFinder finds story source files beneath a root.
type StoryFinder interface {
	// FindStories returns the relative paths under root that match the glob
	// pattern, sorted for deterministic processing order.
	FindStories(ctx context.Context, root afero.Fs, pattern string) ([]string, error)
}

// DefaultFinder is the doublestar-backed StoryFinder.
type DefaultFinder struct{}

func NewDefaultFinder() *DefaultFinder {
	return &DefaultFinder{}
}

// FindStories implements StoryFinder. An empty pattern falls back to
// DefaultPattern.
func (f *DefaultFinder) FindStories(ctx context.Context, root afero.Fs, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	files, err := doublestar.Glob(afero.NewIOFS(root), pattern)
	if err != nil {
		return nil, errors.Errorf("expanding pattern %q: %w", pattern, err)
	}
	sort.Strings(files)

	zerolog.Ctx(ctx).Debug().
		Str("pattern", pattern).
		Int("files", len(files)).
		Msg("located story files")
	return files, nil
}
