package dataset_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"skiprice/internal/dataset"
)

const sampleCSV = `Name,state,vertical_drop,Runs,AdultWeekend
Alpha Peak,Montana,2353,105,81.0
Beta Bowl,montana,1200,,65.5
Gamma Ridge,Idaho,NaN,40,
`

func mustRead(t *testing.T, text string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return ds
}

func TestReadCSVDetectsKindsAndMissing(t *testing.T) {
	ds := mustRead(t, sampleCSV)

	if ds.Nrow() != 3 || ds.Ncol() != 5 {
		t.Fatalf("unexpected shape: %s", ds)
	}
	kinds := map[string]dataset.Kind{
		"Name":          dataset.KindString,
		"vertical_drop": dataset.KindInt,
		"AdultWeekend":  dataset.KindFloat,
	}
	for name, want := range kinds {
		got, err := ds.Kind(name)
		if err != nil {
			t.Fatalf("Kind(%s): %v", name, err)
		}
		if got != want {
			t.Fatalf("Kind(%s) = %s, want %s", name, got, want)
		}
	}

	prices, err := ds.Floats("AdultWeekend")
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	if prices[0] != 81 || prices[1] != 65.5 || !math.IsNaN(prices[2]) {
		t.Fatalf("unexpected prices: %v", prices)
	}
	runs, _ := ds.Floats("Runs")
	if !math.IsNaN(runs[1]) {
		t.Fatalf("expected empty cell to be missing, got %v", runs[1])
	}
	if _, err := ds.Floats("missing"); !errors.Is(err, dataset.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	ds := mustRead(t, sampleCSV)
	withRatio, err := ds.WithColumn(dataset.FloatColumn("ratio", []float64{0.1, 1.0 / 3.0, math.NaN()}))
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}

	var buf bytes.Buffer
	if err := withRatio.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Name,state,vertical_drop,Runs,AdultWeekend,ratio\n") {
		t.Fatalf("missing header: %q", buf.String())
	}

	back, err := dataset.ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !withRatio.Equal(back) {
		t.Fatalf("round trip mismatch:\n%v\n%v", withRatio.Records(), back.Records())
	}
	ratios, _ := back.Floats("ratio")
	if ratios[1] != 1.0/3.0 {
		t.Fatalf("float precision lost: %v", ratios[1])
	}
}

func TestWholeFloatsStayFloats(t *testing.T) {
	ds, err := dataset.FromColumns(dataset.FloatColumn("price", []float64{80, 90}))
	if err != nil {
		t.Fatalf("FromColumns: %v", err)
	}
	var buf bytes.Buffer
	if err := ds.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	back, err := dataset.ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if kind, _ := back.Kind("price"); kind != dataset.KindFloat {
		t.Fatalf("expected float column after reload, got %s", kind)
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	ds := mustRead(t, sampleCSV)

	blob, err := msgpack.Marshal(ds)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back dataset.Dataset
	if err := msgpack.Unmarshal(blob, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !ds.Equal(&back) {
		t.Fatalf("msgpack round trip mismatch:\n%v\n%v", ds.Records(), back.Records())
	}
}

func TestFilterDropAndRows(t *testing.T) {
	ds := mustRead(t, sampleCSV)
	prices, _ := ds.Floats("AdultWeekend")

	priced, err := ds.Filter(func(row int) bool { return !math.IsNaN(prices[row]) })
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if priced.Nrow() != 2 {
		t.Fatalf("expected 2 priced rows, got %d", priced.Nrow())
	}

	trimmed, err := priced.Drop("Runs", "not_there")
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if trimmed.Has("Runs") || trimmed.Ncol() != 4 {
		t.Fatalf("unexpected columns after drop: %v", trimmed.Names())
	}

	none, err := trimmed.Rows(nil)
	if err != nil {
		t.Fatalf("Rows(nil): %v", err)
	}
	if none.Nrow() != 0 || len(none.Names()) != 4 {
		t.Fatalf("expected empty dataset with header, got %s", none)
	}
}

func TestWithColumnReplacesAndChecksLength(t *testing.T) {
	ds := mustRead(t, sampleCSV)
	if _, err := ds.WithColumn(dataset.IntColumn("Runs", []int{1})); err == nil {
		t.Fatal("expected length mismatch error")
	}
	replaced, err := ds.WithColumn(dataset.StringColumn("state", []string{"Montana", "Montana", "Idaho"}))
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	if replaced.Ncol() != ds.Ncol() {
		t.Fatalf("expected replacement, got columns %v", replaced.Names())
	}
	states, _ := replaced.Strings("state")
	if states[1] != "Montana" {
		t.Fatalf("unexpected state: %q", states[1])
	}
}

func TestFromRecordsHeaderOnly(t *testing.T) {
	ds, err := dataset.FromRecords([][]string{{"a", "b"}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if ds.Nrow() != 0 || ds.Ncol() != 2 {
		t.Fatalf("unexpected shape: %s", ds)
	}
	if _, err := dataset.FromRecords(nil); err == nil {
		t.Fatal("expected error for empty records")
	}
}

func roundTrip(t *testing.T, ds *dataset.Dataset) *dataset.Dataset {
	t.Helper()
	var buf bytes.Buffer
	if err := ds.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	back, err := dataset.ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return back
}

func TestCSVRoundTripEdgeColumns(t *testing.T) {
	cases := []struct {
		name string
		cols []dataset.Column
	}{
		{"all missing floats", []dataset.Column{
			dataset.StringColumn("Name", []string{"Alpha", "Beta"}),
			dataset.FloatColumn("ratio", []float64{math.NaN(), math.NaN()}),
		}},
		{"NA is a string value", []dataset.Column{
			dataset.StringColumn("code", []string{"NA", "CO"}),
		}},
		{"zero rows", []dataset.Column{
			dataset.FloatColumn("price", nil),
			dataset.FloatColumn("runs", nil),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ds, err := dataset.FromColumns(tc.cols...)
			if err != nil {
				t.Fatalf("FromColumns: %v", err)
			}
			back := roundTrip(t, ds)
			if !ds.Equal(back) {
				t.Fatalf("round trip mismatch:\n%v\n%v", ds.Records(), back.Records())
			}
		})
	}
}

func TestAllMissingColumnStaysNumeric(t *testing.T) {
	ds, err := dataset.FromColumns(dataset.FloatColumn("fastQuads_runs_ratio", []float64{math.NaN(), math.NaN(), math.NaN()}))
	if err != nil {
		t.Fatalf("FromColumns: %v", err)
	}
	back := roundTrip(t, ds)
	if !back.IsNumeric("fastQuads_runs_ratio") {
		kind, _ := back.Kind("fastQuads_runs_ratio")
		t.Fatalf("expected numeric column after reload, got %s", kind)
	}
}

func TestEmptyMatchesHeaderOnlyRead(t *testing.T) {
	empty, err := dataset.Empty([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Empty: %v", err)
	}
	read, err := dataset.FromRecords([][]string{{"a", "b"}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if !empty.Equal(read) {
		t.Fatal("expected Empty to match a header-only read")
	}
	if kind, _ := read.Kind("a"); kind != dataset.KindFloat {
		t.Fatalf("expected float column, got %s", kind)
	}
}
