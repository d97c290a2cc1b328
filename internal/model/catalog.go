package model

import "strings"

// CatalogEntry describes a component type and the pins it exposes.
type CatalogEntry struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Pins        []string `json:"pins"`
	Width       float64  `json:"width"`  // default body width
	Height      float64  `json:"height"` // default body height
}

// HasPin reports whether the entry declares the pin (case-insensitive).
func (e CatalogEntry) HasPin(name string) bool {
	for _, p := range e.Pins {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// Catalog holds the known component types.
type Catalog struct {
	Entries []CatalogEntry `json:"entries"`
}

// NewCatalog creates an empty catalog.
func NewCatalog() Catalog {
	return Catalog{Entries: []CatalogEntry{}}
}

// DefaultCatalog returns the built-in component types.
func DefaultCatalog() Catalog {
	digital := []string{"D0", "D1", "D2", "D3", "D4", "D5", "D6", "D7", "D8", "D9", "D10", "D11", "D12", "D13"}
	analog := []string{"A0", "A1", "A2", "A3", "A4", "A5"}
	unoPins := append([]string{"IOREF", "RESET", "3V3", "5V", "GND1", "GND2", "GND3", "VIN", "AREF", "SDA", "SCL"}, digital...)
	unoPins = append(unoPins, analog...)
	nanoPins := append([]string{"VIN", "5V", "3V3", "GND1", "GND2", "RESET", "AREF"}, digital...)
	nanoPins = append(nanoPins, analog...)

	return Catalog{Entries: []CatalogEntry{
		{Type: "resistor", Name: "Resistor", Pins: []string{"A", "B"}, Width: 60, Height: 20},
		{Type: "capacitor", Name: "Capacitor", Pins: []string{"A", "B"}, Width: 40, Height: 30},
		{Type: "led", Name: "LED", Pins: []string{"Anode", "Cathode"}, Width: 40, Height: 30},
		{Type: "motor", Name: "DC Motor", Pins: []string{"A", "B"}, Width: 60, Height: 60},
		{Type: "battery", Name: "Battery", Pins: []string{"+", "-"}, Width: 60, Height: 40},
		{Type: "switch", Name: "Switch", Pins: []string{"A", "B"}, Width: 50, Height: 20},
		{Type: "button", Name: "Push Button", Pins: []string{"A", "B"}, Width: 40, Height: 40},
		{Type: "arduinouno", Name: "Arduino Uno", Pins: unoPins, Width: 220, Height: 160},
		{Type: "arduinonano", Name: "Arduino Nano", Pins: nanoPins, Width: 180, Height: 80},
		{Type: "source_5v", Name: "5V Source", Pins: []string{"VCC", "GND"}, Width: 60, Height: 40},
		{Type: "gnd", Name: "GND Node", Pins: []string{"GND"}, Width: 20, Height: 20},
	}}
}

// Add adds or replaces an entry by type.
func (c *Catalog) Add(e CatalogEntry) {
	for i := range c.Entries {
		if strings.EqualFold(c.Entries[i].Type, e.Type) {
			c.Entries[i] = e
			return
		}
	}
	c.Entries = append(c.Entries, e)
}

// Remove removes an entry by type. Returns true if found and removed.
func (c *Catalog) Remove(componentType string) bool {
	for i, e := range c.Entries {
		if strings.EqualFold(e.Type, componentType) {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// FindByType returns a pointer to the entry for the given type, or nil.
func (c *Catalog) FindByType(componentType string) *CatalogEntry {
	for i := range c.Entries {
		if strings.EqualFold(c.Entries[i].Type, componentType) {
			return &c.Entries[i]
		}
	}
	return nil
}

// Pins returns the catalog pin names for a component type.
func (c *Catalog) Pins(componentType string) ([]string, bool) {
	e := c.FindByType(componentType)
	if e == nil {
		return nil, false
	}
	return e.Pins, true
}

// Types returns a list of catalog types.
func (c *Catalog) Types() []string {
	types := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		types[i] = e.Type
	}
	return types
}
