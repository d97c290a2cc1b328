package model

// AppConfig holds application-wide preferences and default router settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultGridStep         float64    `json:"default_grid_step"`
	DefaultObstaclePadding  float64    `json:"default_obstacle_padding"`
	DefaultMaxIterations    int        `json:"default_max_iterations"`
	DefaultFallbackAttempts int        `json:"default_fallback_attempts"`
	Costs                   RouteCosts `json:"costs"`

	// Application preferences
	AutoPruneNets  bool     `json:"auto_prune_nets"` // drop nets below two nodes on disconnect
	CatalogPath    string   `json:"catalog_path"`    // empty = default catalog location
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultRouteSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultRouteSettings()
	return AppConfig{
		DefaultGridStep:         defaults.GridStep,
		DefaultObstaclePadding:  defaults.ObstaclePadding,
		DefaultMaxIterations:    defaults.MaxIterations,
		DefaultFallbackAttempts: defaults.FallbackAttempts,
		Costs:                   defaults.Costs,
		AutoPruneNets:           true,
		RecentProjects:          []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a RouteSettings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *RouteSettings) {
	s.GridStep = c.DefaultGridStep
	s.ObstaclePadding = c.DefaultObstaclePadding
	s.MaxIterations = c.DefaultMaxIterations
	s.FallbackAttempts = c.DefaultFallbackAttempts
	s.Costs = c.Costs
	*s = s.Normalize()
}

// AddRecentProject moves path to the front of the recent list, keeping at most max entries.
func (c *AppConfig) AddRecentProject(path string, max int) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if max > 0 && len(recent) > max {
		recent = recent[:max]
	}
	c.RecentProjects = recent
}
