package netlist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistory(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, defaultMaxDepth, h.maxDepth)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestHistory_UndoRedo(t *testing.T) {
	nl := New()
	h := NewHistory()

	h.Record(nl, "connect U1.5V")
	mustConnect(t, nl, "U1.5V", "R1.A")

	h.Record(nl, "connect U1.GND1")
	mustConnect(t, nl, "U1.GND1", "R1.B")
	require.Equal(t, 2, nl.Len())

	label, ok, err := h.Undo(nl)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "connect U1.GND1", label)
	assert.Equal(t, 1, nl.Len())
	_, ok = nl.NetOf(node("R1.B"))
	assert.False(t, ok)

	require.True(t, h.CanRedo())
	label, ok, err = h.Redo(nl)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "connect U1.GND1", label)
	assert.Equal(t, 2, nl.Len())
	id, ok := nl.NetOf(node("R1.B"))
	require.True(t, ok)
	assert.Equal(t, "NET_2", id)

	_, _, err = h.Undo(nl)
	require.NoError(t, err)
	label, ok, err = h.Undo(nl)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "connect U1.5V", label)
	assert.Equal(t, 0, nl.Len())
	assert.False(t, h.CanUndo())
}

func TestHistory_SnapshotIsIsolated(t *testing.T) {
	nl := New()
	mustConnect(t, nl, "A.1", "B.1")
	snap := nl.MakeSnapshot("before")

	mustConnect(t, nl, "B.1", "C.1")
	assert.Len(t, snap.Nets[0].Nodes, 2, "later edits must not leak into a snapshot")
}

func TestHistory_RecordClearsRedo(t *testing.T) {
	h := NewHistory()
	nl := New()
	h.Record(nl, "a")
	mustConnect(t, nl, "A.1", "B.1")
	_, ok, err := h.Undo(nl)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, h.CanRedo())

	h.Record(nl, "c")
	assert.False(t, h.CanRedo())
}

func TestHistory_MaxDepth(t *testing.T) {
	h := NewHistory()
	nl := New()
	for i := 0; i < defaultMaxDepth+10; i++ {
		h.Record(nl, fmt.Sprintf("edit %d", i))
	}
	assert.Len(t, h.undo, defaultMaxDepth)
	assert.Equal(t, "edit 10", h.undo[0].Label)
}

func TestHistory_EmptyStacks(t *testing.T) {
	h := NewHistory()
	nl := New()
	_, ok, err := h.Undo(nl)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = h.Redo(nl)
	require.NoError(t, err)
	assert.False(t, ok)

	h.Record(nl, "x")
	h.Clear()
	assert.False(t, h.CanUndo())
}
