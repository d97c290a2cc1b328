package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/piwi3910/CircuitStudio/internal/drc"
	"github.com/piwi3910/CircuitStudio/internal/engine"
	"github.com/piwi3910/CircuitStudio/internal/export"
	"github.com/piwi3910/CircuitStudio/internal/model"
	"github.com/piwi3910/CircuitStudio/internal/project"
)

var (
	routeProfile string
	routeOut     string
	routePDF     string
	routeDXF     string
	routeXLSX    string
	routeLabels  string
	routeMetrics bool
)

var routeCmd = &cobra.Command{
	Use:   "route <project|netlist>",
	Short: "Route wires for every net",
	Long: `Route orthogonal wires between the pins of every net. Pairs are tried
with the standard, crossing and force passes before the geometric fallback;
pairs that still fail are listed as unrouted.

Examples:
  circuitstudio route blink.net --out blink.cstudio
  circuitstudio route blink.cstudio --profile fine --pdf blink.pdf --dxf blink.dxf
  circuitstudio route blink.cstudio --xlsx wires.xlsx --labels labels.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)

	routeCmd.Flags().StringVarP(&routeProfile, "profile", "p", "", "route profile name (see 'profiles')")
	routeCmd.Flags().StringVarP(&routeOut, "out", "o", "", "save the routed project to this file")
	routeCmd.Flags().StringVar(&routePDF, "pdf", "", "write a PDF report")
	routeCmd.Flags().StringVar(&routeDXF, "dxf", "", "write a DXF drawing")
	routeCmd.Flags().StringVar(&routeXLSX, "xlsx", "", "write an Excel workbook")
	routeCmd.Flags().StringVar(&routeLabels, "labels", "", "write QR-coded net labels as PDF")
	routeCmd.Flags().BoolVar(&routeMetrics, "metrics", false, "print router metrics in Prometheus text format")
}

func runRoute(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}

	settings := p.Settings
	if routeProfile != "" {
		profiles, err := project.AllProfiles(project.DefaultProfilesPath())
		if err != nil {
			logger.Warn("custom profiles unavailable", "err", err)
		}
		prof, ok := model.FindRouteProfile(profiles, routeProfile)
		if !ok {
			return fmt.Errorf("unknown route profile %q", routeProfile)
		}
		settings = prof.Settings
		logger.Debug("using route profile", "profile", prof.Name)
	}

	reg := prometheus.NewRegistry()
	router := engine.New(settings).
		WithLogger(logger).
		WithMetrics(engine.NewMetrics(reg))

	result, err := router.Route(&p.Circuit)
	if err != nil {
		return err
	}
	p.Settings = router.Settings
	p.Result = &result

	printRouteSummary(result)

	conflicts := engine.CheckWireConflicts(&p.Circuit, result)
	for _, msg := range engine.FormatConflictWarnings(conflicts) {
		logger.Warn(msg)
	}
	fmt.Printf("Conflicts: %d\n", len(conflicts))

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	report := export.Report{
		Circuit:  p.Circuit,
		Result:   result,
		DRC:      drc.Validate(p.Circuit, &cat),
		Settings: router.Settings,
	}

	if err := writeOutputs(p, report); err != nil {
		return err
	}

	if routeMetrics {
		families, err := reg.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeOutputs(p model.Project, report export.Report) error {
	if routeOut != "" {
		if err := project.Save(routeOut, p); err != nil {
			return err
		}
		appConfig.AddRecentProject(routeOut, 10)
		if err := project.SaveAppConfig(configPath, appConfig); err != nil {
			logger.Warn("could not update recent projects", "err", err)
		}
		logger.Info("project saved", "path", routeOut)
	}
	if routePDF != "" {
		if err := export.ExportPDF(routePDF, report); err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
		logger.Info("pdf written", "path", routePDF)
	}
	if routeDXF != "" {
		if err := export.ExportDXF(routeDXF, report.Circuit, report.Result, report.Settings); err != nil {
			return fmt.Errorf("dxf export: %w", err)
		}
		logger.Info("dxf written", "path", routeDXF)
	}
	if routeXLSX != "" {
		if err := export.ExportXLSX(routeXLSX, report); err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
		logger.Info("workbook written", "path", routeXLSX)
	}
	if routeLabels != "" {
		if err := export.ExportNetLabels(routeLabels, report.Circuit, report.Result); err != nil {
			return fmt.Errorf("label export: %w", err)
		}
		logger.Info("labels written", "path", routeLabels)
	}
	return nil
}

func printRouteSummary(result model.RouteResult) {
	fmt.Printf("Nets:      %d\n", result.Stats.Nets)
	fmt.Printf("Pairs:     %d\n", result.Stats.Pairs)
	fmt.Printf("Wires:     %d\n", len(result.Paths))

	passes := make([]string, 0, len(result.Stats.ByPass))
	for name := range result.Stats.ByPass {
		passes = append(passes, name)
	}
	sort.Strings(passes)
	for _, name := range passes {
		fmt.Printf("  %-16s %d\n", name+":", result.Stats.ByPass[name])
	}

	if len(result.Skipped) > 0 {
		fmt.Printf("Skipped:   %v\n", result.Skipped)
	}
	if len(result.Unrouted) > 0 {
		fmt.Printf("Unrouted:  %d\n", len(result.Unrouted))
		for _, u := range result.Unrouted {
			fmt.Printf("  %s: %s -> %s (%s)\n", u.NetID, u.From, u.To, u.Reason)
		}
	}
}
