// Package project persists projects, the component catalog, route profiles
// and application settings as JSON files.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// FileExtension is the extension used for saved projects.
const FileExtension = ".cstudio"

// ErrNoCircuit is returned when a project file carries no circuit data.
var ErrNoCircuit = errors.New("project has no circuit")

// Save writes the project to path, stamping its modification time.
func Save(path string, p model.Project) error {
	p.Touch()
	if err := writeJSON(path, p); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// Load reads a project from path. Missing settings are filled with defaults
// and nil slices are replaced with empty ones.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("load project: %w", err)
	}
	var raw struct {
		model.Project
		Circuit *model.Circuit `json:"circuit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Project{}, fmt.Errorf("parse project %s: %w", path, err)
	}
	if raw.Circuit == nil {
		return model.Project{}, fmt.Errorf("parse project %s: %w", path, ErrNoCircuit)
	}
	p := raw.Project
	p.Circuit = *raw.Circuit
	if p.Circuit.Components == nil {
		p.Circuit.Components = []model.Component{}
	}
	if p.Circuit.Nets == nil {
		p.Circuit.Nets = []model.Net{}
	}
	p.Settings = p.Settings.Normalize()
	return p, nil
}
