package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string               `json:"version"`
	CreatedAt string               `json:"created_at"`
	Config    model.AppConfig      `json:"config"`
	Catalog   model.Catalog        `json:"catalog"`
	Profiles  []model.RouteProfile `json:"profiles"`
}

// ExportAllData exports the config, catalog and custom route profiles to a
// single JSON file at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, cat model.Catalog, profiles []model.RouteProfile) error {
	if profiles == nil {
		profiles = []model.RouteProfile{}
	}
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Catalog:   cat,
		Profiles:  profiles,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported config.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if backup.Catalog.Entries == nil {
		backup.Catalog.Entries = []model.CatalogEntry{}
	}
	if backup.Profiles == nil {
		backup.Profiles = []model.RouteProfile{}
	}
	return backup, nil
}
