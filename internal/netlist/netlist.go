// Package netlist maintains the connectivity model: nets as ordered sets of
// component pins, merged and split as pins are joined or disconnected.
//
// A net keeps a user-visible identity across merges. When two nets merge, the
// one whose id sorts first (case-insensitive) survives, so repeated edits
// never churn net names.
package netlist

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

var (
	// ErrInvalidNode is returned when a node lacks a component id or pin name.
	ErrInvalidNode = errors.New("invalid node")
	// ErrDuplicateNet is returned when a new net would reuse a registered id.
	ErrDuplicateNet = errors.New("duplicate net id")
	// ErrRenameConflict is returned when a component rename cannot be applied.
	ErrRenameConflict = errors.New("component rename rejected")
)

// AutoNetPrefix is the prefix of generated net ids.
const AutoNetPrefix = "NET_"

// Netlist is the mutable connectivity model. It is not safe for concurrent use.
type Netlist struct {
	nets      map[string]*model.Net // keyed by folded id
	index     map[string]string     // node string -> folded net id
	autoPrune bool
}

// New creates an empty netlist with auto-pruning enabled.
func New() *Netlist {
	return &Netlist{
		nets:      make(map[string]*model.Net),
		index:     make(map[string]string),
		autoPrune: true,
	}
}

// FromNets builds a netlist from persisted nets. See Load.
func FromNets(nets []model.Net) (*Netlist, error) {
	nl := New()
	if err := nl.Load(nets); err != nil {
		return nil, err
	}
	return nl, nil
}

func fold(id string) string {
	return strings.ToLower(id)
}

// lessID orders net ids case-insensitively, falling back to byte order so
// the result is total.
func lessID(a, b string) bool {
	fa, fb := fold(a), fold(b)
	if fa != fb {
		return fa < fb
	}
	return a < b
}

// SetAutoPrune controls whether Disconnect removes nets that drop below two
// nodes. When disabled, such nets stay until Prune is called.
func (nl *Netlist) SetAutoPrune(enabled bool) {
	nl.autoPrune = enabled
}

// Len returns the number of registered nets.
func (nl *Netlist) Len() int {
	return len(nl.nets)
}

// NetOf returns the id of the net containing n.
func (nl *Netlist) NetOf(n model.Node) (string, bool) {
	key, ok := nl.index[n.String()]
	if !ok {
		return "", false
	}
	return nl.nets[key].ID, true
}

// Net returns a copy of the net with the given id (case-insensitive).
func (nl *Netlist) Net(id string) (model.Net, bool) {
	net, ok := nl.nets[fold(id)]
	if !ok {
		return model.Net{}, false
	}
	return net.Clone(), true
}

// Nets returns a snapshot of all nets sorted by id.
func (nl *Netlist) Nets() []model.Net {
	out := make([]model.Net, 0, len(nl.nets))
	for _, n := range nl.nets {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out
}

// Connect joins two nodes into one net and returns that net's id.
// Joining a node to itself is a no-op.
func (nl *Netlist) Connect(a, b model.Node) (string, error) {
	if !a.Valid() || !b.Valid() {
		return "", fmt.Errorf("connect %q to %q: %w", a.String(), b.String(), ErrInvalidNode)
	}
	if a == b {
		id, _ := nl.NetOf(a)
		return id, nil
	}
	return nl.join(a.String(), b.String(), ""), nil
}

// ConnectNamed behaves like Connect but uses name for the net when the pair
// starts a new one. The name must not already be registered.
func (nl *Netlist) ConnectNamed(a, b model.Node, name string) (string, error) {
	if !a.Valid() || !b.Valid() {
		return "", fmt.Errorf("connect %q to %q: %w", a.String(), b.String(), ErrInvalidNode)
	}
	_, inA := nl.index[a.String()]
	_, inB := nl.index[b.String()]
	if name != "" && !inA && !inB {
		if _, exists := nl.nets[fold(name)]; exists {
			return "", fmt.Errorf("net %q: %w", name, ErrDuplicateNet)
		}
	}
	if a == b {
		id, _ := nl.NetOf(a)
		return id, nil
	}
	return nl.join(a.String(), b.String(), name), nil
}

// Attach adds n to the named net, creating the net when it does not exist.
// If n already belongs to another net the two nets merge. When the named net
// does not exist and n is already connected, n's net is left unchanged.
func (nl *Netlist) Attach(netID string, n model.Node) (string, error) {
	if !n.Valid() {
		return "", fmt.Errorf("attach %q: %w", n.String(), ErrInvalidNode)
	}
	if netID == "" {
		return "", fmt.Errorf("attach %q: empty net id", n.String())
	}
	node := n.String()
	current, assigned := nl.index[node]
	target, exists := nl.nets[fold(netID)]
	switch {
	case exists && assigned && current == fold(netID):
		return target.ID, nil
	case exists && assigned:
		return nl.merge(target, nl.nets[current]).ID, nil
	case exists:
		nl.add(target, node)
		return target.ID, nil
	case assigned:
		return nl.nets[current].ID, nil
	default:
		net := nl.create(netID)
		nl.add(net, node)
		return net.ID, nil
	}
}

func (nl *Netlist) join(a, b, name string) string {
	ka, inA := nl.index[a]
	kb, inB := nl.index[b]
	switch {
	case !inA && !inB:
		id := name
		if id == "" {
			id = nl.nextID()
		}
		net := nl.create(id)
		nl.add(net, a)
		nl.add(net, b)
		return net.ID
	case inA && !inB:
		net := nl.nets[ka]
		nl.add(net, b)
		return net.ID
	case !inA && inB:
		net := nl.nets[kb]
		nl.add(net, a)
		return net.ID
	case ka == kb:
		return nl.nets[ka].ID
	default:
		return nl.merge(nl.nets[ka], nl.nets[kb]).ID
	}
}

// merge folds one net into the other. The net whose id sorts first survives.
func (nl *Netlist) merge(x, y *model.Net) *model.Net {
	target, source := x, y
	if lessID(y.ID, x.ID) {
		target, source = y, x
	}
	delete(nl.nets, fold(source.ID))
	for _, node := range source.Nodes {
		nl.add(target, node)
	}
	return target
}

func (nl *Netlist) create(id string) *model.Net {
	net := &model.Net{ID: id, Nodes: []string{}}
	nl.nets[fold(id)] = net
	return net
}

func (nl *Netlist) add(net *model.Net, node string) {
	if key, ok := nl.index[node]; ok && key == fold(net.ID) {
		return
	}
	net.Nodes = append(net.Nodes, node)
	nl.index[node] = fold(net.ID)
}

// nextID returns the smallest unused NET_<n> id.
func (nl *Netlist) nextID() string {
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s%d", AutoNetPrefix, n)
		if _, taken := nl.nets[fold(id)]; !taken {
			return id
		}
	}
}

// Disconnect removes n from its net and reports whether it was connected.
// With auto-pruning enabled a net left with fewer than two nodes is removed
// and its remaining node becomes unconnected.
func (nl *Netlist) Disconnect(n model.Node) bool {
	node := n.String()
	key, ok := nl.index[node]
	if !ok {
		return false
	}
	net := nl.nets[key]
	delete(nl.index, node)
	for i, existing := range net.Nodes {
		if existing == node {
			net.Nodes = append(net.Nodes[:i], net.Nodes[i+1:]...)
			break
		}
	}
	if nl.autoPrune && len(net.Nodes) < 2 {
		nl.removeNet(key)
	}
	return true
}

// Prune removes every net with fewer than two nodes and returns their ids.
func (nl *Netlist) Prune() []string {
	var removed []string
	for key, net := range nl.nets {
		if len(net.Nodes) < 2 {
			removed = append(removed, net.ID)
			nl.removeNet(key)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return lessID(removed[i], removed[j]) })
	return removed
}

// RemoveNet deletes a net and unassigns its nodes.
func (nl *Netlist) RemoveNet(id string) bool {
	key := fold(id)
	if _, ok := nl.nets[key]; !ok {
		return false
	}
	nl.removeNet(key)
	return true
}

func (nl *Netlist) removeNet(key string) {
	for _, node := range nl.nets[key].Nodes {
		delete(nl.index, node)
	}
	delete(nl.nets, key)
}

// RemoveComponent disconnects every pin of a component.
func (nl *Netlist) RemoveComponent(componentID string) int {
	prefix := componentID + "."
	var nodes []string
	for node := range nl.index {
		if strings.HasPrefix(node, prefix) {
			nodes = append(nodes, node)
		}
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		n, _ := model.ParseNode(node)
		nl.Disconnect(n)
	}
	return len(nodes)
}

// RenameComponent rewrites every node of oldID to newID across all nets.
// The rename is rejected without changes when newID is invalid or already
// has connected pins.
func (nl *Netlist) RenameComponent(oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	if newID == "" || strings.Contains(newID, ".") {
		return fmt.Errorf("rename %q to %q: %w: invalid id", oldID, newID, ErrRenameConflict)
	}
	oldPrefix, newPrefix := oldID+".", newID+"."
	for node := range nl.index {
		if strings.HasPrefix(node, newPrefix) {
			return fmt.Errorf("rename %q to %q: %w: id already connected", oldID, newID, ErrRenameConflict)
		}
	}

	for _, net := range nl.nets {
		for i, node := range net.Nodes {
			if !strings.HasPrefix(node, oldPrefix) {
				continue
			}
			renamed := newPrefix + strings.TrimPrefix(node, oldPrefix)
			net.Nodes[i] = renamed
			delete(nl.index, node)
			nl.index[renamed] = fold(net.ID)
		}
	}
	return nil
}

// Load replaces the netlist contents with persisted nets. Nets that share a
// node are merged so every node ends up in exactly one net. Nets without an
// id receive a generated one. On error the netlist is left unchanged.
func (nl *Netlist) Load(nets []model.Net) error {
	fresh := &Netlist{
		nets:      make(map[string]*model.Net),
		index:     make(map[string]string),
		autoPrune: nl.autoPrune,
	}
	for _, net := range nets {
		id := net.ID
		if id == "" {
			id = fresh.nextID()
		}
		if len(net.Nodes) == 0 {
			if _, exists := fresh.nets[fold(id)]; !exists {
				fresh.create(id)
			}
			continue
		}
		for _, s := range net.Nodes {
			n, ok := model.ParseNode(s)
			if !ok {
				return fmt.Errorf("net %q node %q: %w", id, s, ErrInvalidNode)
			}
			got, err := fresh.Attach(id, n)
			if err != nil {
				return err
			}
			// Attach leaves an already-assigned node alone when id is new;
			// the named net joins the node's net instead.
			if _, exists := fresh.nets[fold(id)]; !exists {
				target := fresh.create(id)
				got = fresh.merge(target, fresh.nets[fresh.index[n.String()]]).ID
			}
			// Later nodes of this net follow whichever id survived.
			id = got
		}
	}
	nl.nets = fresh.nets
	nl.index = fresh.index
	return nil
}
