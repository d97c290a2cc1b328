package engine

import (
	"fmt"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// ComparisonScenario defines a named set of router settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.RouteSettings
}

// ComparisonResult holds the routing result and summary figures for a
// single scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.RouteResult
	WireLength    float64
	Bends         int
	ForcedPairs   int // pairs that needed the Force pass or the fallback
	UnroutedCount int
	Err           error
}

// CompareScenarios routes the circuit once per scenario, each on its own
// grid, and returns the results in scenario order.
func CompareScenarios(scenarios []ComparisonScenario, c *model.Circuit) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		res, err := New(scenario.Settings).Route(c)
		cr := ComparisonResult{Scenario: scenario, Result: res, Err: err}
		for _, p := range res.Paths {
			cr.WireLength += p.Length()
			cr.Bends += p.Bends()
			if p.Pass == model.PassForce || p.Pass == model.PassFallback {
				cr.ForcedPairs++
			}
		}
		cr.UnroutedCount = len(res.Unrouted)
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios generates what-if alternatives around the current
// settings: a finer and a coarser grid, and a variant without turn penalty.
func BuildDefaultScenarios(base model.RouteSettings) []ComparisonScenario {
	base = base.Normalize()
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Settings: base},
	}

	if fine := base.GridStep / 2; fine >= model.MinGridStep {
		s := base
		s.GridStep = fine
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Grid %.1f (fine)", fine),
			Settings: s,
		})
	}

	coarse := base
	coarse.GridStep = base.GridStep * 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Grid %.1f (coarse)", coarse.GridStep),
		Settings: coarse,
	})

	if base.Costs.Turn > 0 {
		noTurn := base
		noTurn.Costs.Turn = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Turn Penalty",
			Settings: noTurn,
		})
	}

	return scenarios
}
