package pipeline

import (
	"math"

	"skiprice/internal/dataset"
)

type ratio struct {
	name        string
	numerator   string
	denominator string
	// fromSummary marks a denominator read from the state summary.
	fromSummary bool
}

// engineeredRatios are the derived features, in output order.
var engineeredRatios = []ratio{
	{"resort_skiable_area_ac_state_ratio", colSkiable, "state_total_skiable_area_ac", true},
	{"resort_days_open_state_ratio", colDaysOpen, "state_total_days_open", true},
	{"resort_terrain_park_state_ratio", colTerrainParks, "state_total_terrain_parks", true},
	{"resort_night_skiing_state_ratio", colNightSkiing, "state_total_nightskiing_ac", true},
	{"total_chairs_runs_ratio", colTotalChairs, colRuns, false},
	{"total_chairs_skiable_ratio", colTotalChairs, colSkiable, false},
	{"fastQuads_runs_ratio", colFastQuads, colRuns, false},
	{"fastQuads_skiable_ratio", colFastQuads, colSkiable, false},
}

// EngineerFeatures joins the state summary onto the cleaned table by state
// and appends resorts_per_state plus resort-to-state share ratios and
// chair and run density ratios. A ratio is missing when its denominator is
// zero or missing; ratios whose source columns are absent are skipped.
func EngineerFeatures(clean, summary *dataset.Dataset) (*dataset.Dataset, error) {
	if err := requireColumns(StageFeatures, clean, colState); err != nil {
		return nil, err
	}
	if err := requireColumns(StageFeatures, summary, colState); err != nil {
		return nil, err
	}

	summaryStates, err := summary.Strings(colState)
	if err != nil {
		return nil, err
	}
	summaryRow := make(map[string]int, len(summaryStates))
	for i, s := range summaryStates {
		summaryRow[s] = i
	}
	states, err := clean.Strings(colState)
	if err != nil {
		return nil, err
	}
	// lookup returns the summary value for each cleaned row's state.
	lookup := func(column string) ([]float64, error) {
		values, err := summary.Floats(column)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(states))
		for i, s := range states {
			row, ok := summaryRow[s]
			if !ok {
				out[i] = math.NaN()
				continue
			}
			out[i] = values[row]
		}
		return out, nil
	}

	ds := clean
	if summary.Has(colResortsPerState) {
		counts, err := lookup(colResortsPerState)
		if err != nil {
			return nil, err
		}
		if ds, err = ds.WithColumn(dataset.FloatColumn(colResortsPerState, counts)); err != nil {
			return nil, Wrap(ErrValidation, string(StageFeatures), "join summary", colResortsPerState, err)
		}
	}

	for _, r := range engineeredRatios {
		if !clean.Has(r.numerator) {
			continue
		}
		var denominators []float64
		switch {
		case r.fromSummary && summary.Has(r.denominator):
			denominators, err = lookup(r.denominator)
		case !r.fromSummary && clean.Has(r.denominator):
			denominators, err = clean.Floats(r.denominator)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		numerators, err := clean.Floats(r.numerator)
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(numerators))
		for i := range values {
			values[i] = safeDivide(numerators[i], denominators[i])
		}
		if ds, err = ds.WithColumn(dataset.FloatColumn(r.name, values)); err != nil {
			return nil, Wrap(ErrValidation, string(StageFeatures), "derive", r.name, err)
		}
	}
	return ds, nil
}

func safeDivide(num, den float64) float64 {
	if math.IsNaN(num) || math.IsNaN(den) || den == 0 {
		return math.NaN()
	}
	return num / den
}
