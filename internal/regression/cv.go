package regression

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// CVResult holds per-fold scores from CrossValidate.
type CVResult struct {
	R2  []float64 `msgpack:"r2"`
	MAE []float64 `msgpack:"mae"`
}

// MeanR2 returns the mean R² across folds.
func (r CVResult) MeanR2() float64 { return stat.Mean(r.R2, nil) }

// MeanMAE returns the mean absolute error across folds.
func (r CVResult) MeanMAE() float64 { return stat.Mean(r.MAE, nil) }

// CrossValidate fits one model per fold on the remaining folds and scores it
// on the held-out fold.
func CrossValidate(x [][]float64, y []float64, features []string, alpha float64, k int, seed int64) (CVResult, error) {
	folds, err := Folds(len(x), k, seed)
	if err != nil {
		return CVResult{}, err
	}
	result := CVResult{R2: make([]float64, 0, k), MAE: make([]float64, 0, k)}
	for f, held := range folds {
		inHeld := make(map[int]bool, len(held))
		for _, i := range held {
			inHeld[i] = true
		}
		var trainX [][]float64
		var trainY []float64
		for i := range x {
			if !inHeld[i] {
				trainX = append(trainX, x[i])
				trainY = append(trainY, y[i])
			}
		}
		model, err := Fit(trainX, trainY, features, alpha)
		if err != nil {
			return CVResult{}, fmt.Errorf("fold %d: %w", f+1, err)
		}
		testX := make([][]float64, len(held))
		testY := make([]float64, len(held))
		for j, i := range held {
			testX[j], testY[j] = x[i], y[i]
		}
		m := Evaluate(model.Predict(testX), testY)
		result.R2 = append(result.R2, m.R2)
		result.MAE = append(result.MAE, m.MAE)
	}
	return result, nil
}
