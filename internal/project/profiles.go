package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// DefaultProfilesPath returns the default file path for custom route profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom route profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.RouteProfile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads custom route profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.RouteProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.RouteProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.RouteProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}

	for i := range profiles {
		profiles[i].IsBuiltIn = false
		profiles[i].Settings = profiles[i].Settings.Normalize()
	}
	return profiles, nil
}

// AllProfiles returns the built-in profiles followed by the custom ones
// stored at path.
func AllProfiles(path string) ([]model.RouteProfile, error) {
	custom, err := LoadCustomProfiles(path)
	if err != nil {
		return model.BuiltInRouteProfiles(), err
	}
	return append(model.BuiltInRouteProfiles(), custom...), nil
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile model.RouteProfile) error {
	profile.IsBuiltIn = false
	return writeJSON(path, profile)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.RouteProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RouteProfile{}, err
	}

	var profile model.RouteProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.RouteProfile{}, err
	}

	profile.IsBuiltIn = false
	if profile.Name == "" {
		return model.RouteProfile{}, errors.New("imported profile has no name")
	}
	profile.Settings = profile.Settings.Normalize()
	return profile, nil
}
