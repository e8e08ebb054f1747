package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// naToken is the on-disk spelling of a missing value.
const naToken = "NaN"

// naValues are the cell spellings read back as missing. They match the
// spellings gota's type detection skips, so a column of missing values is
// typed by DefaultType rather than as strings.
var naValues = []string{"", naToken}

// ErrColumnNotFound reports a lookup of a column the dataset does not carry.
var ErrColumnNotFound = errors.New("column not found")

// Dataset is an immutable table of named, typed columns.
type Dataset struct {
	df dataframe.DataFrame
}

// FromDataFrame wraps an existing gota frame.
func FromDataFrame(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("dataset: %w", df.Err)
	}
	return &Dataset{df: df}, nil
}

// FromRecords builds a dataset from a header row followed by data rows.
// Column types are detected from the values; a column holding only missing
// values is typed as floats, the only kind that writes missing cells.
func FromRecords(records [][]string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.New("dataset: records must include a header row")
	}
	if len(records) == 1 {
		return Empty(records[0])
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.Float),
		dataframe.NaNValues(naValues),
	)
	return FromDataFrame(df)
}

// FromColumns builds a dataset from explicit columns, all of equal length.
func FromColumns(columns ...Column) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, errors.New("dataset: at least one column is required")
	}
	list := make([]series.Series, 0, len(columns))
	for _, col := range columns {
		s, err := col.series()
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return FromDataFrame(dataframe.New(list...))
}

// Empty returns a dataset with the given header and no rows. All columns are
// typed as floats, matching how a header-only CSV reads back.
func Empty(names []string) (*Dataset, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		cols = append(cols, FloatColumn(name, nil))
	}
	return FromColumns(cols...)
}

// ReadCSV parses delimited text with a header row.
func ReadCSV(r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read csv: %w", err)
	}
	return FromRecords(records)
}

// ReadCSVFile opens path and parses it with ReadCSV. A missing file is
// reported with an error wrapping fs.ErrNotExist.
func ReadCSVFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// WriteCSV writes the header row followed by every data row. Floats are
// written with the shortest representation that round-trips exactly; missing
// values are written as NaN.
func (d *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(d.Records()); err != nil {
		return fmt.Errorf("dataset: write csv: %w", err)
	}
	return nil
}

// Records returns the header row followed by every data row, formatted the
// way WriteCSV formats them.
func (d *Dataset) Records() [][]string {
	names := d.df.Names()
	rows := d.df.Nrow()
	out := make([][]string, 0, rows+1)
	out = append(out, append([]string(nil), names...))

	columns := make([][]string, len(names))
	for i, name := range names {
		columns[i] = formatSeries(d.df.Col(name))
	}
	for r := 0; r < rows; r++ {
		row := make([]string, len(names))
		for c := range names {
			row[c] = columns[c][r]
		}
		out = append(out, row)
	}
	return out
}

// Names returns the column names in order.
func (d *Dataset) Names() []string { return d.df.Names() }

// Nrow returns the number of data rows.
func (d *Dataset) Nrow() int { return d.df.Nrow() }

// Ncol returns the number of columns.
func (d *Dataset) Ncol() int { return d.df.Ncol() }

// Has reports whether the dataset carries the named column.
func (d *Dataset) Has(name string) bool {
	return slices.Contains(d.df.Names(), name)
}

// Kind returns the type of the named column.
func (d *Dataset) Kind(name string) (Kind, error) {
	if !d.Has(name) {
		return "", fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return kindOf(d.df.Col(name).Type()), nil
}

// IsNumeric reports whether the named column holds ints or floats.
func (d *Dataset) IsNumeric(name string) bool {
	kind, err := d.Kind(name)
	return err == nil && (kind == KindFloat || kind == KindInt)
}

// Floats returns the named column as float64 values; missing or non-numeric
// cells are NaN.
func (d *Dataset) Floats(name string) ([]float64, error) {
	if !d.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	s := d.df.Col(name)
	out := make([]float64, s.Len())
	for i := range out {
		el := s.Elem(i)
		if el.IsNA() {
			out[i] = math.NaN()
			continue
		}
		out[i] = el.Float()
	}
	return out, nil
}

// Strings returns the named column formatted as strings; missing cells are
// empty.
func (d *Dataset) Strings(name string) ([]string, error) {
	if !d.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	s := d.df.Col(name)
	out := make([]string, s.Len())
	for i := range out {
		el := s.Elem(i)
		if el.IsNA() {
			continue
		}
		out[i] = el.String()
	}
	return out, nil
}

// Rows returns a dataset holding only the rows at the given indexes, in the
// given order.
func (d *Dataset) Rows(indexes []int) (*Dataset, error) {
	if len(indexes) == 0 {
		return Empty(d.Names())
	}
	return FromDataFrame(d.df.Subset(indexes))
}

// Filter keeps the rows for which keep returns true.
func (d *Dataset) Filter(keep func(row int) bool) (*Dataset, error) {
	indexes := make([]int, 0, d.Nrow())
	for i := 0; i < d.Nrow(); i++ {
		if keep(i) {
			indexes = append(indexes, i)
		}
	}
	if len(indexes) == d.Nrow() {
		return d, nil
	}
	return d.Rows(indexes)
}

// Drop removes the named columns; names the dataset does not carry are ignored.
func (d *Dataset) Drop(names ...string) (*Dataset, error) {
	present := make([]string, 0, len(names))
	for _, name := range names {
		if d.Has(name) {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return d, nil
	}
	return FromDataFrame(d.df.Drop(present))
}

// WithColumn returns a dataset with col appended, or replacing an existing
// column of the same name in place.
func (d *Dataset) WithColumn(col Column) (*Dataset, error) {
	if col.Len() != d.Nrow() {
		return nil, fmt.Errorf("dataset: column %q has %d values, want %d", col.Name, col.Len(), d.Nrow())
	}
	s, err := col.series()
	if err != nil {
		return nil, err
	}
	return FromDataFrame(d.df.Mutate(s))
}

// Equal reports whether both datasets have the same header, column kinds,
// and cell values.
func (d *Dataset) Equal(other *Dataset) bool {
	if d == nil || other == nil {
		return d == other
	}
	if !slices.Equal(d.Names(), other.Names()) {
		return false
	}
	for _, name := range d.Names() {
		a, _ := d.Kind(name)
		b, _ := other.Kind(name)
		if a != b {
			return false
		}
	}
	left, right := d.Records(), other.Records()
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if !slices.Equal(left[i], right[i]) {
			return false
		}
	}
	return true
}

// String renders a short summary for logs.
func (d *Dataset) String() string {
	return fmt.Sprintf("dataset(%d rows x %d cols: %s)", d.Nrow(), d.Ncol(), strings.Join(d.Names(), ","))
}

func formatSeries(s series.Series) []string {
	out := make([]string, s.Len())
	for i := range out {
		el := s.Elem(i)
		if el.IsNA() {
			out[i] = naToken
			continue
		}
		switch s.Type() {
		case series.Float:
			out[i] = FormatFloat(el.Float())
		default:
			out[i] = el.String()
		}
	}
	return out
}

// FormatFloat renders v the way datasets write floats to disk: the shortest
// exact representation, always carrying a decimal point or exponent so the
// column is read back as floats rather than ints.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return naToken
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}
