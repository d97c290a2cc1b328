package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// DefaultCatalogPath returns the default file path for the component catalog.
// This is located at ~/.circuitstudio/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the catalog to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveCatalog(path string, cat model.Catalog) error {
	return writeJSON(path, cat)
}

// LoadCatalog reads the catalog from the specified JSON file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cat := model.DefaultCatalog()
			if saveErr := SaveCatalog(path, cat); saveErr != nil {
				return cat, saveErr
			}
			return cat, nil
		}
		return model.Catalog{}, err
	}
	var cat model.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return model.Catalog{}, err
	}
	if cat.Entries == nil {
		cat.Entries = []model.CatalogEntry{}
	}
	return cat, nil
}

// LoadOrCreateCatalog loads the catalog from path, or from the default
// location when path is empty.
func LoadOrCreateCatalog(path string) (model.Catalog, string, error) {
	if path == "" {
		path = DefaultCatalogPath()
	}
	cat, err := LoadCatalog(path)
	return cat, path, err
}

// ImportCatalog merges the entries of a catalog file into existing.
// Types already present (case-insensitive) are skipped.
func ImportCatalog(path string, existing model.Catalog) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Catalog
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	types := make(map[string]bool, len(existing.Entries))
	for _, e := range existing.Entries {
		types[strings.ToLower(e.Type)] = true
	}
	for _, e := range imported.Entries {
		key := strings.ToLower(e.Type)
		if key == "" || types[key] {
			continue
		}
		existing.Entries = append(existing.Entries, e)
		types[key] = true
	}
	return existing, nil
}
