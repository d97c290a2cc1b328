package model

import "strings"

// RouteProfile is a named router settings preset.
type RouteProfile struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	IsBuiltIn   bool          `json:"is_built_in"`
	Settings    RouteSettings `json:"settings"`
}

// BuiltInRouteProfiles returns the presets that ship with the application.
func BuiltInRouteProfiles() []RouteProfile {
	fine := DefaultRouteSettings()
	fine.GridStep = 5
	fine.MaxIterations = 400000

	fast := DefaultRouteSettings()
	fast.GridStep = 20
	fast.MaxIterations = 20000

	dense := DefaultRouteSettings()
	dense.Costs.Cross = 200
	dense.Costs.WireBuffer = 20

	return []RouteProfile{
		{Name: "Default", Description: "Editor defaults", IsBuiltIn: true, Settings: DefaultRouteSettings()},
		{Name: "Fine", Description: "Half-size grid for tight layouts", IsBuiltIn: true, Settings: fine},
		{Name: "Fast", Description: "Coarse grid with a low search cap", IsBuiltIn: true, Settings: fast},
		{Name: "Dense", Description: "Cheaper crossings for crowded boards", IsBuiltIn: true, Settings: dense},
	}
}

// FindRouteProfile looks up a profile by name (case-insensitive). Later
// entries do not shadow earlier ones.
func FindRouteProfile(profiles []RouteProfile, name string) (RouteProfile, bool) {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return RouteProfile{}, false
}
