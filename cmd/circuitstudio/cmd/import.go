package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CircuitStudio/internal/importer"
	"github.com/piwi3910/CircuitStudio/internal/model"
	"github.com/piwi3910/CircuitStudio/internal/netlist"
	"github.com/piwi3910/CircuitStudio/internal/project"
)

var (
	importProject  string
	importKeepouts string
	importLayer    string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import connections, a netlist or keep-out zones into a project",
	Long: `Import a connection list (.csv, .xlsx) or a text netlist (.net) into a
project. Connection lists are merged into the project's existing nets; a
netlist replaces the circuit. Keep-out zones can be read from a DXF drawing.

Examples:
  circuitstudio import blink.net --project blink.cstudio
  circuitstudio import wiring.csv --project blink.cstudio
  circuitstudio import wiring.xlsx --project blink.cstudio --keepouts case.dxf --layer HOLES`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importProject, "project", "", "project file to create or update (required)")
	importCmd.Flags().StringVar(&importKeepouts, "keepouts", "", "DXF drawing with keep-out outlines")
	importCmd.Flags().StringVar(&importLayer, "layer", "", "only read keep-outs from this DXF layer")
	_ = importCmd.MarkFlagRequired("project")
}

func runImport(cmd *cobra.Command, args []string) error {
	p, err := openOrCreateProject(importProject)
	if err != nil {
		return err
	}

	path := args[0]
	switch strings.ToLower(filepath.Ext(path)) {
	case ".net", ".netlist":
		c, err := importer.ImportNetlist(path)
		if err != nil {
			return err
		}
		if c.Name == "" {
			c.Name = p.Circuit.Name
		}
		p.Circuit = c
		p.Result = nil

	case ".csv", ".txt", ".tsv":
		if err := mergeConnections(&p, importer.ImportCSV(path)); err != nil {
			return err
		}

	case ".xlsx":
		if err := mergeConnections(&p, importer.ImportExcel(path)); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unsupported import format %q", filepath.Ext(path))
	}

	if importKeepouts != "" {
		res := importer.ImportKeepoutsDXF(importKeepouts, importLayer)
		reportMessages(res.Errors, res.Warnings)
		if len(res.Errors) > 0 {
			return fmt.Errorf("keep-out import failed")
		}
		p.Circuit.Keepouts = append(p.Circuit.Keepouts, res.Keepouts...)
		p.Result = nil
		fmt.Printf("Imported %d keep-out zone(s)\n", len(res.Keepouts))
	}

	if err := project.Save(importProject, p); err != nil {
		return err
	}
	fmt.Printf("Saved %s: %d component(s), %d net(s)\n",
		importProject, len(p.Circuit.Components), len(p.Circuit.Nets))
	return nil
}

// openOrCreateProject loads path, or starts a new project when it does not
// exist yet.
func openOrCreateProject(path string) (model.Project, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		p := model.NewProject()
		appConfig.ApplyToSettings(&p.Settings)
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		p.Circuit.Name = p.Name
		return p, nil
	}
	return project.Load(path)
}

// mergeConnections joins imported connections into the project's nets.
func mergeConnections(p *model.Project, res importer.ImportResult) error {
	reportMessages(res.Errors, res.Warnings)
	if len(res.Connections) == 0 {
		return fmt.Errorf("no connections imported")
	}

	nl, err := netlist.FromNets(p.Circuit.Nets)
	if err != nil {
		return fmt.Errorf("existing nets: %w", err)
	}
	nl.SetAutoPrune(appConfig.AutoPruneNets)
	failed := res.Apply(nl)
	reportMessages(failed, nil)

	p.Circuit.Nets = nl.Nets()
	p.Result = nil
	fmt.Printf("Imported %d connection(s)\n", len(res.Connections)-len(failed))
	return nil
}

func reportMessages(errs, warnings []string) {
	for _, w := range warnings {
		logger.Warn(w)
	}
	for _, e := range errs {
		logger.Error(e)
	}
}
