package preflight

import (
	"context"

	"skiprice/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	results := []Result{
		CheckInputFile("Raw dataset", cfg.RawDataPath(), "Name", "state", cfg.Model.Target),
		CheckOutputDirectory("Data directory", cfg.Paths.DataDir),
		CheckOutputDirectory("Features directory", cfg.Paths.FeaturesDir),
		CheckOutputDirectory("Models directory", cfg.Paths.ModelsDir),
		CheckOutputDirectory("Scenarios directory", cfg.Paths.ScenariosDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckScenarios("Scenarios", cfg.Scenarios.Path),
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
