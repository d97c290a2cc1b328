package drc

import (
	"strings"
	"unicode"
)

// Role is the electrical role inferred from a pin name.
type Role int

const (
	RoleNone Role = iota
	RoleGround
	RoleSupply
	RoleSignal
)

func (r Role) String() string {
	switch r {
	case RoleGround:
		return "ground"
	case RoleSupply:
		return "supply"
	case RoleSignal:
		return "signal"
	default:
		return "none"
	}
}

// SupplyKind tags a supply pin with the rail it provides. Two different
// kinds on one net indicate mixed supplies.
type SupplyKind string

const (
	KindNone SupplyKind = ""
	Kind5V   SupplyKind = "5V"
	Kind3V3  SupplyKind = "3V3"
	KindVIN  SupplyKind = "VIN"
	KindVCC  SupplyKind = "VCC"
	KindVBUS SupplyKind = "VBUS"
	KindBAT  SupplyKind = "BAT"
)

var (
	groundPins = map[string]bool{"AGND": true, "DGND": true, "COM": true}
	supplyPins = map[string]SupplyKind{
		"5V":    Kind5V,
		"3V3":   Kind3V3,
		"3.3V":  Kind3V3,
		"VIN":   KindVIN,
		"VCC":   KindVCC,
		"IOREF": KindNone,
		"VBUS":  KindVBUS,
		"USB":   KindVBUS,
		"USB5V": KindVBUS,
	}
	signalPins = map[string]bool{"SDA": true, "SCL": true, "RX": true, "TX": true}

	positiveTerminals = map[string]bool{"+": true, "POS": true, "P": true}
	negativeTerminals = map[string]bool{"-": true, "NEG": true, "N": true}

	controllerKeywords = []string{
		"arduino", "uno", "nano", "mega", "esp32", "esp8266",
		"rpi", "raspberry", "pico", "mcu", "controller",
	}
	powerSourceKeywords = []string{"battery", "source", "power"}

	supplyNetMarkers = []string{"5V", "3V3", "3.3V", "VCC", "VIN", "VBUS"}
)

// ClassifyPin infers a pin's role from its name. Terminal names such as
// "+" and "-" only count as supply and ground on power sources.
func ClassifyPin(componentType, pin string) (Role, SupplyKind) {
	name := strings.ToUpper(strings.TrimSpace(pin))
	if name == "" {
		return RoleNone, KindNone
	}
	if strings.HasPrefix(name, "GND") || groundPins[name] {
		return RoleGround, KindNone
	}
	if kind, ok := supplyPins[name]; ok {
		return RoleSupply, kind
	}
	if IsPowerSource(componentType) {
		if positiveTerminals[name] {
			return RoleSupply, KindBAT
		}
		if negativeTerminals[name] {
			return RoleGround, KindNone
		}
	}
	if signalPins[name] || numbered(name, 'D') || numbered(name, 'A') {
		return RoleSignal, KindNone
	}
	return RoleNone, KindNone
}

// numbered reports whether name is prefix followed by one or more digits.
func numbered(name string, prefix byte) bool {
	if len(name) < 2 || name[0] != prefix {
		return false
	}
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

func typeHasAny(componentType string, keywords []string) bool {
	t := strings.ToLower(componentType)
	for _, k := range keywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// IsController reports whether a component type is a microcontroller board.
func IsController(componentType string) bool {
	return typeHasAny(componentType, controllerKeywords)
}

// IsPowerSource reports whether a component type supplies power.
func IsPowerSource(componentType string) bool {
	return typeHasAny(componentType, powerSourceKeywords)
}

// NetNameRoles reports whether a net's name implies a ground or a supply
// role. Both can be true.
func NetNameRoles(netID string) (ground, supply bool) {
	name := strings.ToUpper(netID)
	ground = strings.Contains(name, "GND")
	for _, m := range supplyNetMarkers {
		if strings.Contains(name, m) {
			supply = true
			break
		}
	}
	return ground, supply
}

// isLEDType reports whether "led" is the type's head word: it is the last
// word, or only size codes such as "5mm" follow it. "red_led" and "led_5mm"
// match; "oled_display" and "led_driver" do not.
func isLEDType(componentType string) bool {
	words := strings.FieldsFunc(strings.ToLower(componentType), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		if w != "led" {
			continue
		}
		head := true
		for _, rest := range words[i+1:] {
			if !unicode.IsDigit(rune(rest[0])) {
				head = false
				break
			}
		}
		if head {
			return true
		}
	}
	return false
}

// Terminals lists the accepted names of each terminal of a two-terminal part.
type Terminals struct {
	First  []string
	Second []string
}

// TwoTerminal returns the terminal names of a two-terminal component type.
// The second result is false for types that are not two-terminal parts.
func TwoTerminal(componentType string) (Terminals, bool) {
	t := strings.ToLower(componentType)
	switch {
	case isLEDType(t):
		return Terminals{First: []string{"Anode", "A"}, Second: []string{"Cathode", "K"}}, true
	case strings.Contains(t, "battery"):
		return Terminals{First: []string{"+", "POS", "P"}, Second: []string{"-", "NEG", "N"}}, true
	case typeHasAny(t, []string{"resistor", "capacitor", "motor", "switch", "button"}):
		return Terminals{First: []string{"A", "1"}, Second: []string{"B", "2"}}, true
	}
	return Terminals{}, false
}
