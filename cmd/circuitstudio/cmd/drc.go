package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CircuitStudio/internal/drc"
)

var drcJSON bool

// errDRCFailed makes the command exit non-zero without repeating the report.
var errDRCFailed = errors.New("design rule check failed")

var drcCmd = &cobra.Command{
	Use:   "drc <project|netlist>",
	Short: "Run the design rule check",
	Long: `Check a circuit for structural and electrical problems: dangling
nets, unknown pins, shorts, mixed supplies, floating nets and unpowered
controllers. Exits with status 1 when any error is found.

Examples:
  circuitstudio drc blink.net
  circuitstudio drc --json blink.cstudio`,
	Args: cobra.ExactArgs(1),
	RunE: runDRC,
}

func init() {
	rootCmd.AddCommand(drcCmd)
	drcCmd.Flags().BoolVar(&drcJSON, "json", false, "print the report as JSON")
}

func runDRC(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	report := drc.Validate(p.Circuit, &cat)
	logger.Debug("drc finished", "errors", report.ErrorCount, "warnings", report.WarningCount)

	if drcJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Print(report.Format())
	}

	if !report.Passed() {
		return errDRCFailed
	}
	return nil
}
