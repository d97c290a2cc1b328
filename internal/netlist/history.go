package netlist

import "github.com/piwi3910/CircuitStudio/internal/model"

const defaultMaxDepth = 50

// Snapshot is a labelled copy of every net, e.g. "Connect U1.5V".
type Snapshot struct {
	Nets  []model.Net
	Label string
}

// MakeSnapshot copies the current nets under label.
func (nl *Netlist) MakeSnapshot(label string) Snapshot {
	return Snapshot{Nets: nl.Nets(), Label: label}
}

// Restore replaces every net with the contents of s.
func (nl *Netlist) Restore(s Snapshot) error {
	return nl.Load(model.CloneNets(s.Nets))
}

// History keeps bounded undo and redo stacks of netlist edits. Call Record
// before each edit; Undo and Redo then move the netlist between the recorded
// states.
type History struct {
	undo     []Snapshot
	redo     []Snapshot
	maxDepth int
}

func NewHistory() *History {
	return &History{maxDepth: defaultMaxDepth}
}

// Record stores the state of nl before an edit named label. Any redo
// states are discarded. The oldest entry is dropped past the depth limit.
func (h *History) Record(nl *Netlist, label string) {
	h.undo = append(h.undo, nl.MakeSnapshot(label))
	if over := len(h.undo) - h.maxDepth; over > 0 {
		h.undo = h.undo[over:]
	}
	h.redo = nil
}

// Undo reverts nl to the most recently recorded state and returns that
// edit's label. ok is false when there is nothing to undo.
func (h *History) Undo(nl *Netlist) (label string, ok bool, err error) {
	return h.step(nl, &h.undo, &h.redo)
}

// Redo reapplies the most recently undone edit.
func (h *History) Redo(nl *Netlist) (label string, ok bool, err error) {
	return h.step(nl, &h.redo, &h.undo)
}

// step pops from src into nl and pushes the displaced state onto dst under
// the same label, so repeated undo/redo keeps the edit names intact.
func (h *History) step(nl *Netlist, src, dst *[]Snapshot) (string, bool, error) {
	if len(*src) == 0 {
		return "", false, nil
	}
	target := (*src)[len(*src)-1]
	current := nl.MakeSnapshot(target.Label)
	if err := nl.Restore(target); err != nil {
		return "", false, err
	}
	*src = (*src)[:len(*src)-1]
	*dst = append(*dst, current)
	return target.Label, true, nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops all recorded states.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
