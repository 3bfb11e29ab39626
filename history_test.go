package pdfannotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(ids ...string) Snapshot {
	snap := Snapshot{}
	for _, id := range ids {
		snap = append(snap, rect(id, 1, 0, 0, 10, 10))
	}
	return snap
}

func ids(snap Snapshot) []string {
	out := []string{}
	for _, a := range snap {
		out = append(out, a.ID)
	}
	return out
}

func TestHistory_Boundaries(t *testing.T) {
	h := NewHistory(0)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	_, ok := h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Cursor())
	assert.Equal(t, 1, h.Len())
}

func TestHistory_UndoRedoSymmetry(t *testing.T) {
	h := NewHistory(0)
	h.Commit(snapshotOf("a"))
	h.Commit(snapshotOf("a", "b"))
	h.Commit(snapshotOf("a", "b", "c"))

	for _, want := range [][]string{{"a", "b"}, {"a"}, {}} {
		snap, ok := h.Undo()
		require.True(t, ok)
		assert.Equal(t, want, ids(snap))
	}
	_, ok := h.Undo()
	assert.False(t, ok)

	for _, want := range [][]string{{"a"}, {"a", "b"}, {"a", "b", "c"}} {
		snap, ok := h.Redo()
		require.True(t, ok)
		assert.Equal(t, want, ids(snap))
	}
	_, ok = h.Redo()
	assert.False(t, ok)
}

func TestHistory_CommitDiscardsRedoBranch(t *testing.T) {
	h := NewHistory(0)
	h.Commit(snapshotOf("a"))
	h.Commit(snapshotOf("a", "b"))
	h.Undo()

	h.Commit(snapshotOf("a", "x"))
	assert.False(t, h.CanRedo())
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"a", "x"}, ids(h.Current()))

	snap, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, ids(snap))
}

func TestHistory_Limit(t *testing.T) {
	h := NewHistory(3)
	h.Commit(snapshotOf("a"))
	h.Commit(snapshotOf("a", "b"))
	h.Commit(snapshotOf("a", "b", "c"))

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Cursor())

	h.Undo()
	snap, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, ids(snap))
	assert.False(t, h.CanUndo())
}

func TestHistory_SnapshotsAreIsolated(t *testing.T) {
	h := NewHistory(0)
	snap := snapshotOf("a")
	h.Commit(snap)
	snap[0].X = 500

	assert.Equal(t, 0.0, h.Current()[0].X)
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory(0)
	h.Commit(snapshotOf("a"))
	h.Reset()

	assert.Equal(t, 1, h.Len())
	assert.Empty(t, h.Current())
	assert.False(t, h.CanUndo())
}
