package regression

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics summarizes predictions against actual values.
type Metrics struct {
	MAE  float64 `msgpack:"mae"`
	RMSE float64 `msgpack:"rmse"`
	R2   float64 `msgpack:"r2"`
}

// Evaluate computes MAE, RMSE, and R² of predicted against actual.
func Evaluate(predicted, actual []float64) Metrics {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return Metrics{MAE: math.NaN(), RMSE: math.NaN(), R2: math.NaN()}
	}
	var absSum, sqSum float64
	for i := range predicted {
		d := predicted[i] - actual[i]
		absSum += math.Abs(d)
		sqSum += d * d
	}
	n := float64(len(predicted))
	return Metrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
		R2:   stat.RSquaredFrom(predicted, actual, nil),
	}
}
