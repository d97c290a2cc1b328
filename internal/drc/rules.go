package drc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// pinUse records the nets a component pin appears in.
type pinUse struct {
	pin  string
	nets []string
}

type checkContext struct {
	circuit    model.Circuit
	catalog    PinCatalog
	components map[string]model.Component // first component per id
	compOrder  []string                   // distinct ids, sorted
	nets       []model.Net                // sorted by id
	uses       map[string][]*pinUse       // component id -> connected pins
	issues     []Issue
}

func newCheckContext(c model.Circuit, catalog PinCatalog) *checkContext {
	ctx := &checkContext{
		circuit:    c,
		catalog:    catalog,
		components: make(map[string]model.Component, len(c.Components)),
		uses:       make(map[string][]*pinUse),
	}
	for _, comp := range c.Components {
		if _, seen := ctx.components[comp.ID]; seen {
			continue
		}
		ctx.components[comp.ID] = comp
		ctx.compOrder = append(ctx.compOrder, comp.ID)
	}
	sort.Strings(ctx.compOrder)

	ctx.nets = append([]model.Net(nil), c.Nets...)
	sort.SliceStable(ctx.nets, func(i, j int) bool {
		return strings.ToLower(ctx.nets[i].ID) < strings.ToLower(ctx.nets[j].ID)
	})

	for _, net := range ctx.nets {
		for _, s := range net.Nodes {
			n, ok := model.ParseNode(s)
			if !ok {
				continue
			}
			ctx.use(n, net.ID)
		}
	}
	return ctx
}

func (ctx *checkContext) use(n model.Node, netID string) {
	for _, u := range ctx.uses[n.ComponentID] {
		if strings.EqualFold(u.pin, n.Pin) {
			for _, id := range u.nets {
				if id == netID {
					return
				}
			}
			u.nets = append(u.nets, netID)
			return
		}
	}
	ctx.uses[n.ComponentID] = append(ctx.uses[n.ComponentID], &pinUse{pin: n.Pin, nets: []string{netID}})
}

func (ctx *checkContext) netsOf(componentID, pin string) []string {
	for _, u := range ctx.uses[componentID] {
		if strings.EqualFold(u.pin, pin) {
			return u.nets
		}
	}
	return nil
}

func (ctx *checkContext) add(sev Severity, code, ref, format string, args ...interface{}) {
	ctx.issues = append(ctx.issues, Issue{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Ref:      ref,
	})
}

func (ctx *checkContext) errorf(code, ref, format string, args ...interface{}) {
	ctx.add(SeverityError, code, ref, format, args...)
}

func (ctx *checkContext) warnf(code, ref, format string, args ...interface{}) {
	ctx.add(SeverityWarning, code, ref, format, args...)
}

func (ctx *checkContext) report() Report {
	r := Report{Issues: ctx.issues}
	if r.Issues == nil {
		r.Issues = []Issue{}
	}
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			r.ErrorCount++
		} else {
			r.WarningCount++
		}
	}
	return r
}

// declaredPins returns the pins a component is expected to expose: the
// catalog entry for its type when there is one, otherwise its own pins.
func (ctx *checkContext) declaredPins(comp model.Component) []string {
	if ctx.catalog != nil {
		if pins, ok := ctx.catalog.Pins(comp.Type); ok {
			return pins
		}
	}
	return comp.PinNames()
}

// checkStructure covers component presence, ids and types.
func (ctx *checkContext) checkStructure() {
	c := ctx.circuit
	if len(c.Components) >= 2 && len(c.Nets) == 0 {
		ctx.errorf(CodeNoNets, "", "circuit has %d components but no nets", len(c.Components))
	}

	counts := make(map[string]int, len(c.Components))
	for i, comp := range c.Components {
		if comp.ID == "" {
			ctx.errorf(CodeEmptyComponentID, "", "component #%d has an empty id", i+1)
			continue
		}
		counts[comp.ID]++
	}
	for _, id := range ctx.compOrder {
		if counts[id] > 1 {
			ctx.errorf(CodeDuplicateComponentID, id, "component id %q is used %d times", id, counts[id])
		}
	}
	for _, id := range ctx.compOrder {
		if id != "" && strings.TrimSpace(ctx.components[id].Type) == "" {
			ctx.warnf(CodeEmptyComponentType, id, "component %q has no type", id)
		}
	}
}

// checkNetNames covers empty and case-insensitively duplicated net ids.
func (ctx *checkContext) checkNetNames() {
	groups := make(map[string][]string)
	var order []string
	for i, net := range ctx.circuit.Nets {
		if strings.TrimSpace(net.ID) == "" {
			ctx.errorf(CodeEmptyNetID, "", "net #%d has an empty id", i+1)
			continue
		}
		key := strings.ToLower(net.ID)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], net.ID)
	}
	sort.Strings(order)
	for _, key := range order {
		if ids := groups[key]; len(ids) > 1 {
			ctx.errorf(CodeDuplicateNetID, ids[0], "net id %q is used by %d nets (%s)", ids[0], len(ids), strings.Join(ids, ", "))
		}
	}
}

// checkTopology covers node counts, node syntax and references.
func (ctx *checkContext) checkTopology() {
	membership := make(map[string][]string) // folded node -> net ids
	display := make(map[string]string)

	for _, net := range ctx.nets {
		if len(net.Nodes) < 2 {
			ctx.warnf(CodeNetInsufficientNodes, net.ID, "net %q has %d node(s); at least 2 are needed", net.ID, len(net.Nodes))
		}
		seen := make(map[string]bool, len(net.Nodes))
		for _, s := range net.Nodes {
			if seen[s] {
				ctx.warnf(CodeNetDuplicateNode, net.ID, "net %q lists node %q more than once", net.ID, s)
				continue
			}
			seen[s] = true

			n, ok := model.ParseNode(s)
			if !ok {
				ctx.errorf(CodeInvalidNode, net.ID, "net %q has malformed node %q; expected component.pin", net.ID, s)
				continue
			}
			key := n.ComponentID + "." + strings.ToUpper(n.Pin)
			if _, ok := display[key]; !ok {
				display[key] = s
			}
			if ids := membership[key]; len(ids) == 0 || ids[len(ids)-1] != net.ID {
				membership[key] = append(ids, net.ID)
			}

			comp, ok := ctx.components[n.ComponentID]
			if !ok {
				ctx.errorf(CodeUnknownComponent, net.ID, "net %q references unknown component %q", net.ID, n.ComponentID)
				continue
			}
			if pins := ctx.declaredPins(comp); len(pins) > 0 && !containsFold(pins, n.Pin) {
				ctx.errorf(CodeUnknownPin, net.ID, "net %q references pin %q which %s (%s) does not have", net.ID, n.Pin, comp.ID, comp.Type)
			}
		}
	}

	keys := make([]string, 0, len(membership))
	for k, ids := range membership {
		if len(ids) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		ids := membership[k]
		ctx.errorf(CodeNodeMultipleNets, display[k], "node %q belongs to %d nets (%s)", display[k], len(ids), strings.Join(ids, ", "))
	}
}

// netRoles summarizes the classified pins of one net.
type netRoles struct {
	nodes            int
	supply           bool
	ground           bool
	kinds            []string
	controllerSignal bool
}

func (ctx *checkContext) classifyNet(net model.Net) netRoles {
	var r netRoles
	kinds := make(map[SupplyKind]bool)
	seen := make(map[string]bool, len(net.Nodes))
	for _, s := range net.Nodes {
		if seen[s] {
			continue
		}
		seen[s] = true
		r.nodes++
		n, ok := model.ParseNode(s)
		if !ok {
			continue
		}
		comp, ok := ctx.components[n.ComponentID]
		if !ok {
			continue
		}
		role, kind := ClassifyPin(comp.Type, n.Pin)
		switch role {
		case RoleSupply:
			r.supply = true
			if kind != KindNone {
				kinds[kind] = true
			}
		case RoleGround:
			r.ground = true
		case RoleSignal:
			if IsController(comp.Type) {
				r.controllerSignal = true
			}
		}
	}
	for k := range kinds {
		r.kinds = append(r.kinds, string(k))
	}
	sort.Strings(r.kinds)
	return r
}

// checkElectrical covers shorts, mixed supplies, name/role agreement and
// floating nets.
func (ctx *checkContext) checkElectrical() {
	for _, net := range ctx.nets {
		r := ctx.classifyNet(net)
		if r.supply && r.ground {
			ctx.errorf(CodeNetShort, net.ID, "net %q connects a supply pin directly to ground", net.ID)
		}
		if len(r.kinds) > 1 {
			ctx.errorf(CodeNetMixedSupply, net.ID, "net %q mixes supply rails %s", net.ID, strings.Join(r.kinds, ", "))
		}

		nameGround, nameSupply := NetNameRoles(net.ID)
		switch {
		case nameSupply && !r.supply && !r.ground:
			ctx.errorf(CodePowerNetNoSource, net.ID, "net %q is named as a supply but has no supply pin", net.ID)
		case nameSupply && r.ground && !r.supply:
			ctx.warnf(CodePowerNetRoleMismatch, net.ID, "net %q is named as a supply but only carries ground pins", net.ID)
		}
		if nameGround && !r.ground {
			ctx.warnf(CodeGroundNetNoGround, net.ID, "net %q is named as ground but has no ground pin", net.ID)
		}

		if r.nodes >= 2 && !r.supply && !r.ground && !r.controllerSignal && !nameGround && !nameSupply {
			ctx.warnf(CodeNetFloating, net.ID, "net %q has no supply, ground or controller signal pin and is likely floating", net.ID)
		}
	}
}

// checkComponents covers per-component connection rules.
func (ctx *checkContext) checkComponents() {
	for _, id := range ctx.compOrder {
		if id == "" {
			continue
		}
		comp := ctx.components[id]
		uses := ctx.uses[id]
		if len(uses) == 0 && len(ctx.declaredPins(comp)) > 0 {
			ctx.warnf(CodeComponentUnconnected, id, "component %q has no connected pins", id)
		}

		if terms, ok := TwoTerminal(comp.Type); ok {
			ctx.checkTerminals(comp, terms)
		}
		if len(uses) == 0 {
			continue
		}

		if IsController(comp.Type) {
			var ground, supply bool
			for _, u := range uses {
				switch role, _ := ClassifyPin(comp.Type, u.pin); role {
				case RoleGround:
					ground = true
				case RoleSupply:
					supply = true
				}
			}
			if !ground {
				ctx.warnf(CodeControllerNoGround, id, "controller %q has no ground pin connected", id)
			}
			if !supply {
				ctx.warnf(CodeControllerNoSupply, id, "controller %q has no supply pin connected", id)
			}
		}
	}
}

func (ctx *checkContext) checkTerminals(comp model.Component, terms Terminals) {
	first := ctx.terminalNets(comp.ID, terms.First)
	second := ctx.terminalNets(comp.ID, terms.Second)
	if len(first) == 0 {
		ctx.errorf(CodeTerminalUnconnected, comp.ID, "%s %q terminal %s is not connected", comp.Type, comp.ID, terms.First[0])
	}
	if len(second) == 0 {
		ctx.errorf(CodeTerminalUnconnected, comp.ID, "%s %q terminal %s is not connected", comp.Type, comp.ID, terms.Second[0])
	}
	for _, a := range first {
		for _, b := range second {
			if a != b {
				continue
			}
			if IsPowerSource(comp.Type) {
				ctx.errorf(CodeTerminalsShorted, comp.ID, "%s %q has both terminals on net %q", comp.Type, comp.ID, a)
			} else {
				ctx.warnf(CodeTerminalsShorted, comp.ID, "%s %q has both terminals on net %q", comp.Type, comp.ID, a)
			}
			return
		}
	}
}

func (ctx *checkContext) terminalNets(componentID string, names []string) []string {
	var out []string
	for _, name := range names {
		out = append(out, ctx.netsOf(componentID, name)...)
	}
	return out
}

// checkCircuitPower warns when the circuit as a whole has no recognizable
// power source or ground reference.
func (ctx *checkContext) checkCircuitPower() {
	if len(ctx.nets) == 0 {
		return
	}
	var power, ground bool
	for _, id := range ctx.compOrder {
		if IsPowerSource(ctx.components[id].Type) {
			power, ground = true, true
		}
	}
	for _, net := range ctx.nets {
		r := ctx.classifyNet(net)
		nameGround, nameSupply := NetNameRoles(net.ID)
		power = power || r.supply || nameSupply
		ground = ground || r.ground || nameGround
	}
	if !power {
		ctx.warnf(CodeCircuitNoPower, "", "no power source detected (battery, supply or VCC/5V net)")
	}
	if !ground {
		ctx.warnf(CodeCircuitNoGround, "", "no ground reference detected (GND)")
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
