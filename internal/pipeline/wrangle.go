package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"skiprice/internal/dataset"
)

// Columns the cleaning and feature stages rely on.
const (
	colName         = "Name"
	colState        = "state"
	colYearsOpen    = "yearsOpen"
	colSkiable      = "SkiableTerrain_ac"
	colDaysOpen     = "daysOpenLastYear"
	colTerrainParks = "TerrainParks"
	colNightSkiing  = "NightSkiing_ac"
	colRuns         = "Runs"
	colTotalChairs  = "total_chairs"
	colFastQuads    = "fastQuads"

	colResortsPerState = "resorts_per_state"
)

// maxYearsOpen bounds plausible yearsOpen values; larger values are data
// entry errors.
const maxYearsOpen = 1000

// WrangleOptions controls the cleaning stage.
type WrangleOptions struct {
	Target      string
	DropColumns []string
}

// Wrangle cleans the raw resort table: string cells are trimmed, state names
// title-cased, configured columns dropped, and rows without a target price,
// with implausible yearsOpen, or duplicating an earlier Name and state are
// removed.
func Wrangle(raw *dataset.Dataset, opts WrangleOptions) (*dataset.Dataset, error) {
	if err := requireColumns(StageWrangle, raw, colName, colState, opts.Target); err != nil {
		return nil, err
	}

	ds := raw
	title := cases.Title(language.English)
	for _, name := range ds.Names() {
		kind, err := ds.Kind(name)
		if err != nil || kind != dataset.KindString {
			continue
		}
		values, err := ds.Strings(name)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			v = strings.Join(strings.Fields(v), " ")
			if name == colState {
				v = title.String(strings.ToLower(v))
			}
			values[i] = v
		}
		if ds, err = ds.WithColumn(dataset.StringColumn(name, values)); err != nil {
			return nil, Wrap(ErrValidation, string(StageWrangle), "normalize", name, err)
		}
	}

	drop := make([]string, 0, len(opts.DropColumns))
	for _, name := range opts.DropColumns {
		if name != opts.Target && name != colName && name != colState {
			drop = append(drop, name)
		}
	}
	ds, err := ds.Drop(drop...)
	if err != nil {
		return nil, Wrap(ErrValidation, string(StageWrangle), "drop columns", "", err)
	}

	target, err := ds.Floats(opts.Target)
	if err != nil {
		return nil, err
	}
	var yearsOpen []float64
	if ds.Has(colYearsOpen) {
		if yearsOpen, err = ds.Floats(colYearsOpen); err != nil {
			return nil, err
		}
	}
	names, _ := ds.Strings(colName)
	states, _ := ds.Strings(colState)
	seen := make(map[string]bool, ds.Nrow())

	clean, err := ds.Filter(func(row int) bool {
		if math.IsNaN(target[row]) {
			return false
		}
		if yearsOpen != nil && yearsOpen[row] > maxYearsOpen {
			return false
		}
		key := names[row] + "\x00" + states[row]
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
	if err != nil {
		return nil, Wrap(ErrValidation, string(StageWrangle), "filter rows", "", err)
	}
	if clean.Nrow() == 0 {
		return nil, Wrap(ErrValidation, string(StageWrangle), "filter rows", fmt.Sprintf("no rows have a %s value", opts.Target), nil)
	}
	return clean, nil
}

// stateTotals maps summary columns to the resort column they total.
var stateTotals = []struct{ summary, source string }{
	{"state_total_skiable_area_ac", colSkiable},
	{"state_total_days_open", colDaysOpen},
	{"state_total_terrain_parks", colTerrainParks},
	{"state_total_nightskiing_ac", colNightSkiing},
}

// StateSummary aggregates the cleaned table per state: the resort count and
// the totals of skiable area, days open, terrain parks, and night skiing
// area. Missing cells count as zero. Totals whose source column is absent
// are omitted.
func StateSummary(clean *dataset.Dataset) (*dataset.Dataset, error) {
	if err := requireColumns(StageWrangle, clean, colState); err != nil {
		return nil, err
	}
	states, err := clean.Strings(colState)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	var order []string
	for _, s := range states {
		if s == "" {
			continue
		}
		if _, ok := index[s]; !ok {
			index[s] = len(order)
			order = append(order, s)
		}
	}
	sort.Strings(order)
	for i, s := range order {
		index[s] = i
	}

	counts := make([]int, len(order))
	for _, s := range states {
		if s != "" {
			counts[index[s]]++
		}
	}
	columns := []dataset.Column{
		dataset.StringColumn(colState, order),
		dataset.IntColumn(colResortsPerState, counts),
	}
	for _, total := range stateTotals {
		if !clean.Has(total.source) {
			continue
		}
		values, err := clean.Floats(total.source)
		if err != nil {
			return nil, err
		}
		sums := make([]float64, len(order))
		for row, s := range states {
			if s == "" || math.IsNaN(values[row]) {
				continue
			}
			sums[index[s]] += values[row]
		}
		columns = append(columns, dataset.FloatColumn(total.summary, sums))
	}
	summary, err := dataset.FromColumns(columns...)
	if err != nil {
		return nil, Wrap(ErrValidation, string(StageWrangle), "summarize states", "", err)
	}
	return summary, nil
}

func requireColumns(stage Stage, ds *dataset.Dataset, names ...string) error {
	var missing []string
	for _, name := range names {
		if !ds.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Wrap(ErrValidation, string(stage), "check columns",
			fmt.Sprintf("missing required column(s) %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}
