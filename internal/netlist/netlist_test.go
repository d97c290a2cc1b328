package netlist

import (
	"fmt"
	"testing"

	"github.com/piwi3910/CircuitStudio/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(s string) model.Node {
	n, ok := model.ParseNode(s)
	if !ok {
		panic("bad node " + s)
	}
	return n
}

func mustConnect(t *testing.T, nl *Netlist, a, b string) string {
	t.Helper()
	id, err := nl.Connect(node(a), node(b))
	require.NoError(t, err)
	return id
}

// assertIndexConsistent checks that every node appears in exactly one net and
// that NetOf agrees with net membership.
func assertIndexConsistent(t *testing.T, nl *Netlist) {
	t.Helper()
	seen := make(map[string]string)
	for _, net := range nl.Nets() {
		for _, n := range net.Nodes {
			prev, dup := seen[n]
			require.False(t, dup, "node %s in both %s and %s", n, prev, net.ID)
			seen[n] = net.ID
			id, ok := nl.NetOf(node(n))
			require.True(t, ok)
			assert.Equal(t, net.ID, id)
		}
	}
	assert.Len(t, nl.index, len(seen))
}

func TestConnect_NewNet(t *testing.T) {
	nl := New()
	id := mustConnect(t, nl, "U1.D13", "R1.A")

	assert.Equal(t, "NET_1", id)
	net, ok := nl.Net(id)
	require.True(t, ok)
	assert.Equal(t, []string{"U1.D13", "R1.A"}, net.Nodes)
}

func TestConnect_SameNodeIsNoop(t *testing.T) {
	nl := New()
	id, err := nl.Connect(node("U1.D2"), node("U1.D2"))
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 0, nl.Len())
}

func TestConnect_JoinsExistingNet(t *testing.T) {
	nl := New()
	first := mustConnect(t, nl, "U1.5V", "R1.A")
	second := mustConnect(t, nl, "R1.A", "C1.A")

	assert.Equal(t, first, second)
	net, _ := nl.Net(first)
	assert.Equal(t, []string{"U1.5V", "R1.A", "C1.A"}, net.Nodes)
}

func TestConnect_AlreadyConnected(t *testing.T) {
	nl := New()
	id := mustConnect(t, nl, "A1.X", "B1.Y")
	again := mustConnect(t, nl, "B1.Y", "A1.X")
	assert.Equal(t, id, again)
	net, _ := nl.Net(id)
	assert.Len(t, net.Nodes, 2)
}

func TestConnect_InvalidNode(t *testing.T) {
	nl := New()
	_, err := nl.Connect(model.Node{ComponentID: "U1"}, node("R1.A"))
	assert.ErrorIs(t, err, ErrInvalidNode)
}

func TestConnect_TransitiveMembership(t *testing.T) {
	nl := New()
	mustConnect(t, nl, "A.1", "B.1")
	mustConnect(t, nl, "B.1", "C.1")

	netA, okA := nl.NetOf(node("A.1"))
	netC, okC := nl.NetOf(node("C.1"))
	require.True(t, okA)
	require.True(t, okC)
	assert.Equal(t, netA, netC)
}

func TestMerge_LowestIDSurvives(t *testing.T) {
	for _, order := range []string{"forward", "reverse"} {
		t.Run(order, func(t *testing.T) {
			nl := New()
			n1 := mustConnect(t, nl, "A.1", "A.2") // NET_1
			n2 := mustConnect(t, nl, "B.1", "B.2") // NET_2
			require.Equal(t, "NET_1", n1)
			require.Equal(t, "NET_2", n2)

			var merged string
			if order == "forward" {
				merged = mustConnect(t, nl, "A.1", "B.1")
			} else {
				merged = mustConnect(t, nl, "B.2", "A.2")
			}

			assert.Equal(t, "NET_1", merged)
			assert.Equal(t, 1, nl.Len())
			net, _ := nl.Net("NET_1")
			assert.ElementsMatch(t, []string{"A.1", "A.2", "B.1", "B.2"}, net.Nodes)
			_, exists := nl.Net("NET_2")
			assert.False(t, exists)
		})
	}
}

func TestMerge_CaseInsensitiveOrdering(t *testing.T) {
	nl := New()
	_, err := nl.ConnectNamed(node("A.1"), node("A.2"), "gnd")
	require.NoError(t, err)
	_, err = nl.ConnectNamed(node("B.1"), node("B.2"), "VCC")
	require.NoError(t, err)

	merged := mustConnect(t, nl, "B.1", "A.1")
	assert.Equal(t, "gnd", merged)
}

func TestConnect_RandomSequenceKeepsIndexConsistent(t *testing.T) {
	nl := New()
	// Deterministic pseudo-random pairs over a small pin universe.
	seed := uint32(7)
	next := func() uint32 {
		seed = seed*1103515245 + 12345
		return (seed >> 16) % 12
	}
	for i := 0; i < 200; i++ {
		a := fmt.Sprintf("C%d.P", next())
		b := fmt.Sprintf("C%d.P", next())
		mustConnect(t, nl, a, b)
		if i%17 == 0 {
			nl.Disconnect(node(fmt.Sprintf("C%d.P", next())))
		}
		assertIndexConsistent(t, nl)
	}
}

func TestConnectNamed_DuplicateRejected(t *testing.T) {
	nl := New()
	_, err := nl.ConnectNamed(node("A.1"), node("A.2"), "GND")
	require.NoError(t, err)

	_, err = nl.ConnectNamed(node("B.1"), node("B.2"), "gnd")
	assert.ErrorIs(t, err, ErrDuplicateNet)
	assert.Equal(t, 1, nl.Len())
}

func TestAutoNetIDSkipsTakenIDs(t *testing.T) {
	nl := New()
	_, err := nl.ConnectNamed(node("A.1"), node("A.2"), "net_1")
	require.NoError(t, err)
	id := mustConnect(t, nl, "B.1", "B.2")
	assert.Equal(t, "NET_2", id)
}

func TestDisconnect_AutoPrune(t *testing.T) {
	nl := New()
	id := mustConnect(t, nl, "A.1", "B.1")

	assert.True(t, nl.Disconnect(node("A.1")))
	_, exists := nl.Net(id)
	assert.False(t, exists, "net below two nodes should be pruned")
	_, connected := nl.NetOf(node("B.1"))
	assert.False(t, connected)
	assert.False(t, nl.Disconnect(node("A.1")))
}

func TestDisconnect_KeepsLargerNet(t *testing.T) {
	nl := New()
	id := mustConnect(t, nl, "A.1", "B.1")
	mustConnect(t, nl, "B.1", "C.1")

	nl.Disconnect(node("B.1"))
	net, ok := nl.Net(id)
	require.True(t, ok)
	assert.Equal(t, []string{"A.1", "C.1"}, net.Nodes)
}

func TestDisconnect_ManualPrune(t *testing.T) {
	nl := New()
	nl.SetAutoPrune(false)
	id := mustConnect(t, nl, "A.1", "B.1")
	nl.Disconnect(node("A.1"))

	net, ok := nl.Net(id)
	require.True(t, ok)
	assert.Equal(t, []string{"B.1"}, net.Nodes)

	assert.Equal(t, []string{id}, nl.Prune())
	assert.Equal(t, 0, nl.Len())
}

func TestAttach(t *testing.T) {
	nl := New()
	id, err := nl.Attach("GND", node("U1.GND1"))
	require.NoError(t, err)
	assert.Equal(t, "GND", id)

	id, err = nl.Attach("gnd", node("R1.B"))
	require.NoError(t, err)
	assert.Equal(t, "GND", id)

	other := mustConnect(t, nl, "C1.A", "C1.B")
	id, err = nl.Attach("GND", node("C1.A"))
	require.NoError(t, err)
	assert.Equal(t, "GND", id)
	_, exists := nl.Net(other)
	assert.False(t, exists)
	net, _ := nl.Net("GND")
	assert.Len(t, net.Nodes, 4)
}

func TestRenameComponent(t *testing.T) {
	nl := New()
	mustConnect(t, nl, "U1.5V", "R1.A")
	mustConnect(t, nl, "U1.GND1", "R1.B")

	require.NoError(t, nl.RenameComponent("R1", "R10"))

	id, ok := nl.NetOf(node("R10.A"))
	require.True(t, ok)
	other, _ := nl.NetOf(node("U1.5V"))
	assert.Equal(t, other, id)
	_, stale := nl.NetOf(node("R1.A"))
	assert.False(t, stale)
	assertIndexConsistent(t, nl)
}

func TestRenameComponent_PrefixOnly(t *testing.T) {
	nl := New()
	mustConnect(t, nl, "R1.A", "R10.A")
	require.NoError(t, nl.RenameComponent("R1", "R2"))

	_, ok := nl.NetOf(node("R10.A"))
	assert.True(t, ok, "R10 must not be touched by renaming R1")
	_, ok = nl.NetOf(node("R2.A"))
	assert.True(t, ok)
}

func TestRenameComponent_RejectedWithoutMutation(t *testing.T) {
	nl := New()
	mustConnect(t, nl, "R1.A", "R2.A")
	before := nl.Nets()

	err := nl.RenameComponent("R1", "R2")
	assert.ErrorIs(t, err, ErrRenameConflict)
	err = nl.RenameComponent("R1", "")
	assert.ErrorIs(t, err, ErrRenameConflict)
	err = nl.RenameComponent("R1", "R.3")
	assert.ErrorIs(t, err, ErrRenameConflict)

	assert.Equal(t, before, nl.Nets())
}

func TestRemoveComponent(t *testing.T) {
	nl := New()
	mustConnect(t, nl, "U1.5V", "R1.A")
	mustConnect(t, nl, "R1.A", "C1.A")
	mustConnect(t, nl, "U1.GND1", "R1.B")

	removed := nl.RemoveComponent("R1")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, nl.Len(), "ground net drops below two nodes and is pruned")
	assertIndexConsistent(t, nl)
}

func TestLoad_MergesOverlappingNets(t *testing.T) {
	nl, err := FromNets([]model.Net{
		{ID: "VCC", Nodes: []string{"U1.5V", "R1.A"}},
		{ID: "NET_9", Nodes: []string{"R1.A", "C1.A"}},
		{ID: "GND", Nodes: []string{"U1.GND1", "C1.B"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, nl.Len())
	id, _ := nl.NetOf(node("C1.A"))
	assert.Equal(t, "NET_9", id, "NET_9 sorts before VCC")
	assertIndexConsistent(t, nl)
}

func TestLoad_MergesWhenSharedNodeBelongsToEarlierID(t *testing.T) {
	nl, err := FromNets([]model.Net{
		{ID: "GND", Nodes: []string{"U1.GND", "R1.A"}},
		{ID: "VCC", Nodes: []string{"R1.A", "C1.A"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, nl.Len())
	for _, n := range []string{"U1.GND", "R1.A", "C1.A"} {
		id, ok := nl.NetOf(node(n))
		require.True(t, ok, n)
		assert.Equal(t, "GND", id, n)
	}
	gnd, ok := nl.Net("GND")
	require.True(t, ok)
	assert.Len(t, gnd.Nodes, 3)
	assertIndexConsistent(t, nl)
}

func TestLoad_ReverseOrderMergesTransitively(t *testing.T) {
	nl, err := FromNets([]model.Net{
		{ID: "VCC", Nodes: []string{"R1.A", "C1.A"}},
		{ID: "GND", Nodes: []string{"U1.GND", "R1.A", "L1.K"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, nl.Len())
	for _, n := range []string{"U1.GND", "R1.A", "C1.A", "L1.K"} {
		id, _ := nl.NetOf(node(n))
		assert.Equal(t, "GND", id, n)
	}
	assertIndexConsistent(t, nl)
}

func TestLoad_InvalidNode(t *testing.T) {
	_, err := FromNets([]model.Net{{ID: "N", Nodes: []string{"bogus"}}})
	assert.ErrorIs(t, err, ErrInvalidNode)
}

func TestLoad_FailureKeepsExistingNets(t *testing.T) {
	nl := New()
	mustConnect(t, nl, "A.1", "B.1")

	err := nl.Load([]model.Net{{ID: "N", Nodes: []string{"C.1", "bogus"}}})
	require.ErrorIs(t, err, ErrInvalidNode)

	assert.Equal(t, 1, nl.Len())
	id, ok := nl.NetOf(node("A.1"))
	require.True(t, ok)
	assert.Equal(t, "NET_1", id)
	_, ok = nl.NetOf(node("C.1"))
	assert.False(t, ok)
	assertIndexConsistent(t, nl)
}

func TestHistory_UndoFailureLeavesNetlistIntact(t *testing.T) {
	nl := New()
	h := NewHistory()
	h.undo = append(h.undo, Snapshot{Label: "broken", Nets: []model.Net{{ID: "X", Nodes: []string{"bogus"}}}})
	mustConnect(t, nl, "A.1", "B.1")

	_, ok, err := h.Undo(nl)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, nl.Len())
	assert.True(t, h.CanUndo())
	assertIndexConsistent(t, nl)
}

func TestNets_SortedByID(t *testing.T) {
	nl := New()
	_, _ = nl.ConnectNamed(node("A.1"), node("A.2"), "vcc")
	_, _ = nl.ConnectNamed(node("B.1"), node("B.2"), "GND")
	_, _ = nl.ConnectNamed(node("C.1"), node("C.2"), "aux")

	var ids []string
	for _, n := range nl.Nets() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"aux", "GND", "vcc"}, ids)
}

func TestRemoveNet(t *testing.T) {
	nl := New()
	_, err := nl.ConnectNamed(node("A.1"), node("B.1"), "SIG")
	require.NoError(t, err)

	assert.True(t, nl.RemoveNet("sig"))
	assert.False(t, nl.RemoveNet("SIG"))
	assert.Equal(t, 0, nl.Len())
	_, ok := nl.NetOf(node("A.1"))
	assert.False(t, ok)
	assertIndexConsistent(t, nl)
}
