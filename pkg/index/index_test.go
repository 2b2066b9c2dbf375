package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinetools/chapbook-ls/pkg/index"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

func ref(contents string, kind symbols.SymbolKind) symbols.Reference {
	return symbols.Reference{
		Contents: contents,
		Kind:     kind,
		Ranges:   []position.Range{{End: position.Pos{Character: len(contents)}}},
	}
}

func names(refs []symbols.Reference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Contents)
	}
	return out
}

func TestReplaceByURI(t *testing.T) {
	x := index.NewInMemory()
	x.SetReferences("a.twee", []symbols.Reference{
		ref("score", symbols.KindVariableSet),
		ref("score", symbols.KindVariable),
	})
	x.SetReferences("a.twee", []symbols.Reference{
		ref("health", symbols.KindVariableSet),
	})

	assert.Equal(t, []string{"health"}, names(x.ProjectReferences(symbols.KindVariableSet)))
	assert.Empty(t, x.ProjectReferences(symbols.KindVariable), "the re-parse dropped the read")
}

func TestKindFiltering(t *testing.T) {
	x := index.NewInMemory()
	x.SetReferences("a.twee", []symbols.Reference{
		ref("Start", symbols.KindPassage),
		ref("score", symbols.KindVariable),
		ref("back link", symbols.KindBuiltInInsert),
	})

	assert.Equal(t, []string{"Start"}, names(x.ProjectReferences(symbols.KindPassage)))
	assert.Equal(t, []string{"score"}, names(x.ProjectReferences(symbols.KindVariable)))
	assert.Empty(t, x.ProjectReferences(symbols.KindCustomInsert))
}

func TestDeterministicOrdering(t *testing.T) {
	x := index.NewInMemory()
	x.SetReferences("b.twee", []symbols.Reference{ref("Beta", symbols.KindPassage)})
	x.SetReferences("a.twee", []symbols.Reference{ref("Alpha", symbols.KindPassage)})
	x.SetReferences("c.twee", []symbols.Reference{ref("Gamma", symbols.KindPassage)})

	want := []string{"Alpha", "Beta", "Gamma"}
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, names(x.ProjectReferences(symbols.KindPassage)))
	}
}

func TestRemove(t *testing.T) {
	x := index.NewInMemory()
	x.SetReferences("a.twee", []symbols.Reference{ref("score", symbols.KindVariableSet)})
	x.SetDefinitions("a.twee", []symbols.Definition{{Name: "test insert", Kind: symbols.KindCustomInsert}})

	x.Remove("a.twee")
	assert.Empty(t, x.ProjectReferences(symbols.KindVariableSet))
	assert.Empty(t, x.ProjectDefinitions(symbols.KindCustomInsert))
}

func TestEmptyWriteClears(t *testing.T) {
	x := index.NewInMemory()
	x.SetDefinitions("a.twee", []symbols.Definition{{Name: "test insert", Kind: symbols.KindCustomInsert}})
	x.SetDefinitions("a.twee", nil)
	assert.Empty(t, x.ProjectDefinitions(symbols.KindCustomInsert))
}

func TestWriterOwnsItsSlice(t *testing.T) {
	x := index.NewInMemory()
	refs := []symbols.Reference{ref("score", symbols.KindVariableSet)}
	x.SetReferences("a.twee", refs)
	refs[0] = ref("health", symbols.KindVariableSet)

	got := x.ProjectReferences(symbols.KindVariableSet)
	require.Len(t, got, 1)
	assert.Equal(t, "score", got[0].Contents)
}
