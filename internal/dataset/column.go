package dataset

import (
	"fmt"
	"strconv"

	"github.com/go-gota/gota/series"
)

// Kind is the element type of a column.
type Kind string

const (
	KindFloat  Kind = "float"
	KindInt    Kind = "int"
	KindString Kind = "string"
	KindBool   Kind = "bool"
)

func kindOf(t series.Type) Kind {
	switch t {
	case series.Float:
		return KindFloat
	case series.Int:
		return KindInt
	case series.Bool:
		return KindBool
	default:
		return KindString
	}
}

func (k Kind) seriesType() (series.Type, error) {
	switch k {
	case KindFloat:
		return series.Float, nil
	case KindInt:
		return series.Int, nil
	case KindBool:
		return series.Bool, nil
	case KindString:
		return series.String, nil
	default:
		return "", fmt.Errorf("dataset: unknown column kind %q", string(k))
	}
}

// Column is a named, typed column ready to be placed in a dataset. Cells are
// held in their on-disk spelling with missing values as NaN.
type Column struct {
	Name  string
	kind  Kind
	cells []string
}

// FloatColumn builds a float column; NaN values are missing.
func FloatColumn(name string, values []float64) Column {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = FormatFloat(v)
	}
	return Column{Name: name, kind: KindFloat, cells: cells}
}

// IntColumn builds an int column.
func IntColumn(name string, values []int) Column {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strconv.Itoa(v)
	}
	return Column{Name: name, kind: KindInt, cells: cells}
}

// StringColumn builds a string column; empty values are missing.
func StringColumn(name string, values []string) Column {
	cells := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			cells[i] = naToken
			continue
		}
		cells[i] = v
	}
	return Column{Name: name, kind: KindString, cells: cells}
}

// Kind returns the column's element type.
func (c Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c Column) Len() int { return len(c.cells) }

func (c Column) series() (series.Series, error) {
	if c.Name == "" {
		return series.Series{}, fmt.Errorf("dataset: column name must not be empty")
	}
	typ, err := c.kind.seriesType()
	if err != nil {
		return series.Series{}, err
	}
	s := series.New(c.cells, typ, c.Name)
	if s.Err != nil {
		return series.Series{}, fmt.Errorf("dataset: column %q: %w", c.Name, s.Err)
	}
	return s, nil
}
