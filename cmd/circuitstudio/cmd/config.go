package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CircuitStudio/internal/model"
	"github.com/piwi3910/CircuitStudio/internal/project"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the application config",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(appConfig)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config, catalog and profile files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := project.SaveAppConfig(configPath, model.DefaultAppConfig()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", configPath)

		_, catPath, err := project.LoadOrCreateCatalog(appConfig.CatalogPath)
		if err != nil {
			return err
		}
		fmt.Printf("Catalog at %s\n", catPath)
		return nil
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available route profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := project.AllProfiles(project.DefaultProfilesPath())
		if err != nil {
			logger.Warn("custom profiles unavailable", "err", err)
		}
		for _, p := range profiles {
			kind := "custom"
			if p.IsBuiltIn {
				kind = "built-in"
			}
			fmt.Printf("%-12s %-8s step=%-5.1f iter=%-7d %s\n",
				p.Name, kind, p.Settings.GridStep, p.Settings.MaxIterations, p.Description)
		}
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Export config, catalog and custom profiles to one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		custom, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
		if err != nil {
			return err
		}
		return project.ExportAllData(args[0], appConfig, cat, custom)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore config, catalog and custom profiles from a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := project.ImportAllData(args[0])
		if err != nil {
			return err
		}
		if err := project.SaveAppConfig(configPath, data.Config); err != nil {
			return err
		}
		catPath := data.Config.CatalogPath
		if catPath == "" {
			catPath = project.DefaultCatalogPath()
		}
		if err := project.SaveCatalog(catPath, data.Catalog); err != nil {
			return err
		}
		if err := project.SaveCustomProfiles(project.DefaultProfilesPath(), data.Profiles); err != nil {
			return err
		}
		fmt.Printf("Restored backup from %s (version %s)\n", args[0], data.Version)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd, profilesCmd, backupCmd, restoreCmd)
}
