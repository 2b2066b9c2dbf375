package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinetools/chapbook-ls/pkg/format"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "three components", input: "2.0.1", want: []int{2, 0, 1}},
		{name: "two components", input: "2.0", want: []int{2, 0}},
		{name: "single component", input: "3", want: []int{3}},
		{name: "non-numeric component", input: "2.x.1", wantErr: true},
		{name: "negative component", input: "2.-1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "trailing dot", input: "2.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := format.ParseVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2.0", "2.0.1", -1},
		{"2.0.1", "2.0", 1},
		{"2.2.1", "2.1.17", 1},
		{"2.1.17", "2.2.1", -1},
		{"2.0.1", "2.0.1", 0},
		{"2.0", "2.0.0", 0},
		{"2", "2.0.0", 0},
		{"1.9.9", "2", -1},
		{"10.0", "9.9.9", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, format.Compare(tt.a, tt.b), "Compare(%q, %q)", tt.a, tt.b)
	}
}

func TestStoryFormat_VersionKnown(t *testing.T) {
	assert.True(t, format.StoryFormat{Format: "chapbook", FormatVersion: "2.0.1"}.VersionKnown())
	assert.False(t, format.StoryFormat{Format: "chapbook"}.VersionKnown())
}
