// CircuitStudio routes orthogonal wires between component pins and checks
// circuits against electrical design rules.
//
// Build:
//
//	go build -o circuitstudio ./cmd/circuitstudio
package main

import "github.com/piwi3910/CircuitStudio/cmd/circuitstudio/cmd"

func main() {
	cmd.Execute()
}
