package pipeline

import (
	"fmt"
	"strings"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageWrangle  Stage = "wrangle"
	StageFeatures Stage = "features"
	StageTrain    Stage = "train"
	StageApply    Stage = "apply"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageWrangle, StageFeatures, StageTrain, StageApply}

// Output file names, one set per stage.
const (
	CleanDataFile    = "clean_data.csv"
	StateSummaryFile = "state_summary.csv"
	FeaturesFile     = "ski_data_step3_features.csv"
	ModelFile        = "ski_resort_pricing_model.pkl"
	PredictionsFile  = "scenario_predictions.csv"
)

// ParseStage maps a stage name to a Stage.
func ParseStage(name string) (Stage, error) {
	candidate := Stage(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range Stages {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown stage %q", ErrConfiguration, name)
}

func (s Stage) String() string { return string(s) }
