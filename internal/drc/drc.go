// Package drc runs design rule checks over a circuit's components and nets.
//
// Validate is a pure function: it never mutates its input and produces the
// same issue list for the same circuit. Invalid models are reported as
// issues rather than errors so the circuit stays editable.
package drc

import (
	"fmt"
	"strings"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// Severity indicates whether an issue blocks the circuit from passing.
type Severity int

const (
	SeverityError   Severity = iota // blocks
	SeverityWarning                 // advisory
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Issue codes.
const (
	CodeNoComponents          = "NO_COMPONENTS"
	CodeNoNets                = "NO_NETS"
	CodeEmptyComponentID      = "EMPTY_COMPONENT_ID"
	CodeDuplicateComponentID  = "DUPLICATE_COMPONENT_ID"
	CodeEmptyComponentType    = "EMPTY_COMPONENT_TYPE"
	CodeEmptyNetID            = "EMPTY_NET_ID"
	CodeDuplicateNetID        = "DUPLICATE_NET_ID"
	CodeNetInsufficientNodes  = "NET_INSUFFICIENT_NODES"
	CodeNetDuplicateNode      = "NET_DUPLICATE_NODE"
	CodeNodeMultipleNets      = "NODE_MULTIPLE_NETS"
	CodeInvalidNode           = "INVALID_NODE"
	CodeUnknownComponent      = "UNKNOWN_COMPONENT"
	CodeUnknownPin            = "UNKNOWN_PIN"
	CodeNetShort              = "NET_SHORT"
	CodeNetMixedSupply        = "NET_MIXED_SUPPLY"
	CodePowerNetNoSource      = "POWER_NET_NO_SOURCE"
	CodePowerNetRoleMismatch  = "POWER_NET_ROLE_MISMATCH"
	CodeGroundNetNoGround     = "GROUND_NET_NO_GROUND"
	CodeNetFloating           = "NET_FLOATING"
	CodeComponentUnconnected  = "COMPONENT_UNCONNECTED"
	CodeTerminalUnconnected   = "TERMINAL_UNCONNECTED"
	CodeTerminalsShorted      = "TERMINALS_SHORTED"
	CodeControllerNoGround    = "CONTROLLER_NO_GROUND"
	CodeControllerNoSupply    = "CONTROLLER_NO_SUPPLY"
	CodeCircuitNoPower        = "CIRCUIT_NO_POWER"
	CodeCircuitNoGround       = "CIRCUIT_NO_GROUND"
)

// Issue is a single rule finding. Ref names the component, net or node the
// issue is about, or is empty for circuit-level findings.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Ref      string   `json:"ref,omitempty"`
}

func (i Issue) String() string {
	if i.Ref == "" {
		return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s %s: %s", i.Severity, i.Code, i.Ref, i.Message)
}

// Report is the outcome of one validation run.
type Report struct {
	Issues       []Issue `json:"issues"`
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
}

// Passed reports whether the circuit has no errors. Warnings never block.
func (r Report) Passed() bool {
	return r.ErrorCount == 0
}

// Errors returns the error-severity issues.
func (r Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// HasCode reports whether any issue carries code.
func (r Report) HasCode(code string) bool {
	for _, i := range r.Issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Format renders the report one issue per line followed by a summary.
func (r Report) Format() string {
	var b strings.Builder
	for _, i := range r.Issues {
		b.WriteString(i.String())
		b.WriteByte('\n')
	}
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "%s: %d error(s), %d warning(s)\n", status, r.ErrorCount, r.WarningCount)
	return b.String()
}

// PinCatalog supplies the pin names a component type declares.
// *model.Catalog implements it.
type PinCatalog interface {
	Pins(componentType string) ([]string, bool)
}

// Validate runs every rule family over the circuit. catalog may be nil, in
// which case pins are checked against each component's own pin list.
func Validate(c model.Circuit, catalog PinCatalog) Report {
	ctx := newCheckContext(c, catalog)
	if len(c.Components) == 0 {
		ctx.errorf(CodeNoComponents, "", "circuit has no components")
		return ctx.report()
	}

	ctx.checkStructure()
	ctx.checkNetNames()
	ctx.checkTopology()
	ctx.checkElectrical()
	ctx.checkComponents()
	ctx.checkCircuitPower()
	return ctx.report()
}
