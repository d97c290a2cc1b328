package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CircuitStudio/internal/importer"
	"github.com/piwi3910/CircuitStudio/internal/model"
	"github.com/piwi3910/CircuitStudio/internal/project"
)

var (
	// Global flags
	configPath string
	verbose    bool

	appConfig model.AppConfig
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "circuitstudio",
	Short: "Wire router and design rule checker for breadboard circuits",
	Long: `Route orthogonal wires between component pins around obstacles and
check circuits for electrical design rule violations.

Inputs are saved projects (.cstudio) or text netlists (.net).

Examples:
  circuitstudio drc blink.net                       # Check a netlist
  circuitstudio route blink.cstudio --pdf out.pdf   # Route and write a report
  circuitstudio import wiring.csv --project blink.cstudio`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.circuitstudio/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads the application config and builds the logger shared by all
// subcommands.
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if configPath == "" {
		configPath = project.DefaultConfigPath()
	}
	cfg, err := project.LoadAppConfig(configPath)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger.Debug("config loaded", "path", configPath)
	return nil
}

// loadProject reads a saved project or a text netlist. Netlists get the
// configured default settings.
func loadProject(path string) (model.Project, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".net", ".netlist":
		c, err := importer.ImportNetlist(path)
		if err != nil {
			return model.Project{}, err
		}
		p := model.NewProject()
		appConfig.ApplyToSettings(&p.Settings)
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if c.Name == "" {
			c.Name = p.Name
		}
		p.Circuit = c
		return p, nil
	default:
		return project.Load(path)
	}
}

// loadCatalog returns the configured component catalog.
func loadCatalog() (model.Catalog, error) {
	cat, path, err := project.LoadOrCreateCatalog(appConfig.CatalogPath)
	if err != nil {
		return cat, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}
