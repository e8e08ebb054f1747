package pipeline

import (
	"fmt"
	"math"

	"skiprice/internal/artifact"
	"skiprice/internal/dataset"
	"skiprice/internal/scenario"
)

// CurrentScenario labels the prediction for the resort as it is today.
const CurrentScenario = "current"

// ApplyOptions controls the scenario stage.
type ApplyOptions struct {
	Resort           string
	ExpectedVisitors float64
	DaysPerVisitor   float64
}

// Prediction is the modelled ticket price under one scenario.
type Prediction struct {
	Scenario    string
	Description string
	Price       float64
	// Change is relative to the current prediction.
	Change float64
	// RevenueChange is the seasonal revenue effect of Change.
	RevenueChange float64
}

// Apply predicts the resort's current ticket price and the price under each
// scenario. The artifact's metadata is validated before it is used. The
// scenario set's resort, when present, overrides opts.Resort.
func Apply(features *dataset.Dataset, art *artifact.Artifact, set *scenario.Set, opts ApplyOptions) (*dataset.Dataset, []Prediction, error) {
	if err := art.Validate(); err != nil {
		return nil, nil, Wrap(ErrValidation, string(StageApply), "check model", "model cannot be used for inference", err)
	}
	if set == nil || len(set.Scenarios) == 0 {
		return nil, nil, Wrap(ErrValidation, string(StageApply), "load scenarios", "no scenarios defined", nil)
	}
	resort := opts.Resort
	if set.Resort != "" {
		resort = set.Resort
	}

	base, err := resortFeatures(features, resort)
	if err != nil {
		return nil, nil, err
	}
	model := art.Model
	current := model.PredictOne(modelRow(art.Features(), base))
	visitorDays := opts.ExpectedVisitors * opts.DaysPerVisitor

	predictions := []Prediction{{
		Scenario:    CurrentScenario,
		Description: fmt.Sprintf("%s as it operates today", resort),
		Price:       current,
	}}
	for _, sc := range set.Scenarios {
		adjusted, err := sc.Apply(base)
		if err != nil {
			return nil, nil, Wrap(ErrValidation, string(StageApply), "evaluate scenario", sc.Name, err)
		}
		price := model.PredictOne(modelRow(art.Features(), adjusted))
		change := price - current
		predictions = append(predictions, Prediction{
			Scenario:      sc.Name,
			Description:   sc.Description,
			Price:         price,
			Change:        change,
			RevenueChange: change * visitorDays,
		})
	}

	out, err := predictionTable(predictions)
	if err != nil {
		return nil, nil, Wrap(ErrValidation, string(StageApply), "build output", "", err)
	}
	return out, predictions, nil
}

// resortFeatures returns the non-missing numeric features of the first row
// whose Name is resort.
func resortFeatures(ds *dataset.Dataset, resort string) (map[string]float64, error) {
	if err := requireColumns(StageApply, ds, colName); err != nil {
		return nil, err
	}
	names, err := ds.Strings(colName)
	if err != nil {
		return nil, err
	}
	row := -1
	for i, n := range names {
		if n == resort {
			row = i
			break
		}
	}
	if row < 0 {
		return nil, Wrap(ErrValidation, string(StageApply), "find resort",
			fmt.Sprintf("resort %q is not in the feature table", resort), nil)
	}

	base := make(map[string]float64)
	for _, name := range ds.Names() {
		if !ds.IsNumeric(name) {
			continue
		}
		values, err := ds.Floats(name)
		if err != nil {
			return nil, err
		}
		if v := values[row]; !math.IsNaN(v) {
			base[name] = v
		}
	}
	return base, nil
}

// modelRow orders values by the model's features; absent ones are NaN and
// imputed by the model.
func modelRow(features []string, values map[string]float64) []float64 {
	row := make([]float64, len(features))
	for i, name := range features {
		v, ok := values[name]
		if !ok {
			v = math.NaN()
		}
		row[i] = v
	}
	return row
}

func predictionTable(predictions []Prediction) (*dataset.Dataset, error) {
	n := len(predictions)
	names := make([]string, n)
	descriptions := make([]string, n)
	prices := make([]float64, n)
	changes := make([]float64, n)
	revenue := make([]float64, n)
	for i, p := range predictions {
		names[i] = p.Scenario
		descriptions[i] = p.Description
		prices[i] = p.Price
		changes[i] = p.Change
		revenue[i] = p.RevenueChange
	}
	return dataset.FromColumns(
		dataset.StringColumn("scenario", names),
		dataset.StringColumn("description", descriptions),
		dataset.FloatColumn("predicted_price", prices),
		dataset.FloatColumn("price_change", changes),
		dataset.FloatColumn("revenue_change", revenue),
	)
}
