package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CircuitStudio/internal/engine"
	"github.com/piwi3910/CircuitStudio/internal/model"
	"github.com/piwi3910/CircuitStudio/internal/project"
)

var compareProfiles bool

var compareCmd = &cobra.Command{
	Use:   "compare <project|netlist>",
	Short: "Route with alternative settings and compare the results",
	Long: `Route the circuit once per scenario and print wire length, bends,
forced and unrouted pairs side by side. By default the scenarios are the
current settings with a finer grid, a coarser grid and no turn penalty.

Examples:
  circuitstudio compare blink.net
  circuitstudio compare --profiles blink.cstudio`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().BoolVar(&compareProfiles, "profiles", false, "compare every route profile instead")
}

func runCompare(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}

	scenarios := engine.BuildDefaultScenarios(p.Settings)
	if compareProfiles {
		profiles, err := project.AllProfiles(project.DefaultProfilesPath())
		if err != nil {
			logger.Warn("custom profiles unavailable", "err", err)
		}
		scenarios = profileScenarios(profiles)
	}

	results := engine.CompareScenarios(scenarios, &p.Circuit)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tWIRES\tLENGTH\tBENDS\tFORCED\tUNROUTED")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\t\t\t\t\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%.0f\t%d\t%d\t%d\n", r.Scenario.Name,
			len(r.Result.Paths), r.WireLength, r.Bends, r.ForcedPairs, r.UnroutedCount)
	}
	return tw.Flush()
}

func profileScenarios(profiles []model.RouteProfile) []engine.ComparisonScenario {
	scenarios := make([]engine.ComparisonScenario, 0, len(profiles))
	for _, prof := range profiles {
		scenarios = append(scenarios, engine.ComparisonScenario{Name: prof.Name, Settings: prof.Settings})
	}
	return scenarios
}
