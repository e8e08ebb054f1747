package regression

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData reports a fit with too few rows or no features.
var ErrInsufficientData = errors.New("insufficient training data")

// Model is a fitted ridge regressor. Inputs are imputed with the training
// medians and standardized with the training means and scales before the
// coefficients apply.
type Model struct {
	Features     []string  `msgpack:"features"`
	Medians      []float64 `msgpack:"medians"`
	Means        []float64 `msgpack:"means"`
	Scales       []float64 `msgpack:"scales"`
	Coefficients []float64 `msgpack:"coefficients"`
	Intercept    float64   `msgpack:"intercept"`
	Alpha        float64   `msgpack:"alpha"`
}

// Fit trains a model on the rows of x (one slice per row, columns aligned
// with features) against y. NaN inputs are imputed; NaN targets are an error.
func Fit(x [][]float64, y []float64, features []string, alpha float64) (*Model, error) {
	n, p := len(x), len(features)
	if n < 2 || p == 0 {
		return nil, fmt.Errorf("%w: %d rows, %d features", ErrInsufficientData, n, p)
	}
	if len(y) != n {
		return nil, fmt.Errorf("regression: %d rows but %d targets", n, len(y))
	}
	if alpha < 0 {
		return nil, fmt.Errorf("regression: alpha must not be negative, got %v", alpha)
	}
	for i, row := range x {
		if len(row) != p {
			return nil, fmt.Errorf("regression: row %d has %d values, want %d", i, len(row), p)
		}
		if math.IsNaN(y[i]) {
			return nil, fmt.Errorf("regression: target missing at row %d", i)
		}
	}

	m := &Model{
		Features: slices.Clone(features),
		Medians:  make([]float64, p),
		Means:    make([]float64, p),
		Scales:   make([]float64, p),
		Alpha:    alpha,
	}

	column := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range x {
			column[i] = x[i][j]
		}
		m.Medians[j] = median(column)
		for i := range column {
			if math.IsNaN(column[i]) {
				column[i] = m.Medians[j]
			}
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		m.Means[j], m.Scales[j] = mean, std
	}

	z := mat.NewDense(n, p, nil)
	for i, row := range x {
		z.SetRow(i, m.standardize(row))
	}

	m.Intercept = stat.Mean(y, nil)
	centered := make([]float64, n)
	for i, v := range y {
		centered[i] = v - m.Intercept
	}

	var gram mat.SymDense
	gram.SymOuterK(1, z.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+alpha)
	}
	var rhs mat.VecDense
	rhs.MulVec(z.T(), mat.NewVecDense(n, centered))

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, errors.New("regression: normal equations are singular; increase ridge alpha")
	}
	var coef mat.VecDense
	if err := chol.SolveVecTo(&coef, &rhs); err != nil {
		return nil, fmt.Errorf("regression: solve: %w", err)
	}
	m.Coefficients = make([]float64, p)
	for j := range m.Coefficients {
		m.Coefficients[j] = coef.AtVec(j)
	}
	return m, nil
}

// PredictOne returns the prediction for a single row aligned with Features.
func (m *Model) PredictOne(row []float64) float64 {
	z := m.standardize(row)
	out := m.Intercept
	for j, v := range z {
		out += m.Coefficients[j] * v
	}
	return out
}

// Predict returns one prediction per row.
func (m *Model) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = m.PredictOne(row)
	}
	return out
}

// Validate checks that the fitted parameters are consistent with Features.
func (m *Model) Validate() error {
	p := len(m.Features)
	if p == 0 {
		return errors.New("regression: model has no features")
	}
	for name, vals := range map[string][]float64{
		"medians":      m.Medians,
		"means":        m.Means,
		"scales":       m.Scales,
		"coefficients": m.Coefficients,
	} {
		if len(vals) != p {
			return fmt.Errorf("regression: model has %d %s for %d features", len(vals), name, p)
		}
	}
	return nil
}

func (m *Model) standardize(row []float64) []float64 {
	out := make([]float64, len(m.Features))
	for j := range out {
		v := math.NaN()
		if j < len(row) {
			v = row[j]
		}
		if math.IsNaN(v) {
			v = m.Medians[j]
		}
		out[j] = (v - m.Means[j]) / m.Scales[j]
	}
	return out
}

// median of the non-NaN values; zero when every value is missing.
func median(values []float64) float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0
	}
	slices.Sort(present)
	mid := len(present) / 2
	if len(present)%2 == 0 {
		return (present[mid-1] + present[mid]) / 2
	}
	return present[mid]
}
