package preflight

import (
	"os"
	"path/filepath"
	"time"

	"skiprice/internal/config"
	"skiprice/internal/pipeline"
)

// OutputProbe reports whether one stage output file exists.
type OutputProbe struct {
	Stage   pipeline.Stage
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// ProbeOutputs returns the state of every stage output file, in stage order.
func ProbeOutputs(cfg *config.Config) []OutputProbe {
	if cfg == nil {
		return nil
	}
	outputs := []struct {
		stage pipeline.Stage
		path  string
	}{
		{pipeline.StageWrangle, filepath.Join(cfg.Paths.DataDir, pipeline.CleanDataFile)},
		{pipeline.StageWrangle, filepath.Join(cfg.Paths.DataDir, pipeline.StateSummaryFile)},
		{pipeline.StageFeatures, filepath.Join(cfg.Paths.FeaturesDir, pipeline.FeaturesFile)},
		{pipeline.StageTrain, filepath.Join(cfg.Paths.ModelsDir, pipeline.ModelFile)},
		{pipeline.StageApply, filepath.Join(cfg.Paths.ScenariosDir, pipeline.PredictionsFile)},
	}
	probes := make([]OutputProbe, 0, len(outputs))
	for _, out := range outputs {
		probe := OutputProbe{Stage: out.stage, Path: out.path}
		if info, err := os.Stat(out.path); err == nil && info.Mode().IsRegular() {
			probe.Exists = true
			probe.Size = info.Size()
			probe.ModTime = info.ModTime()
		}
		probes = append(probes, probe)
	}
	return probes
}

// NextStage returns the first stage whose outputs are not all present, or
// an empty Stage when every output exists.
func NextStage(probes []OutputProbe) pipeline.Stage {
	for _, p := range probes {
		if !p.Exists {
			return p.Stage
		}
	}
	return ""
}
