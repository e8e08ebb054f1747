package pipeline

import (
	"fmt"
	"math"
	"slices"

	"skiprice/internal/artifact"
	"skiprice/internal/dataset"
	"skiprice/internal/regression"
)

// TrainOptions controls the training stage.
type TrainOptions struct {
	Target  string
	Version string
	Exclude []string
	// Resort is held out of training so scenarios predict it out of sample.
	Resort   string
	TestSize float64
	Seed     int64
	Folds    int
	Alpha    float64
}

// FeatureColumns returns the numeric columns used as model inputs: every
// numeric column except the target and the excluded ones, in table order.
func FeatureColumns(ds *dataset.Dataset, target string, exclude []string) []string {
	var out []string
	for _, name := range ds.Names() {
		if name == target || slices.Contains(exclude, name) {
			continue
		}
		if ds.IsNumeric(name) {
			out = append(out, name)
		}
	}
	return out
}

// Train fits the ticket-price model. Rows without a target and the resort
// under study are excluded; the remaining rows are split into train and test
// sets, the train set is cross-validated and fitted, and the test set scores
// the fitted model.
func Train(features *dataset.Dataset, opts TrainOptions) (*artifact.Artifact, error) {
	if err := requireColumns(StageTrain, features, opts.Target); err != nil {
		return nil, err
	}
	if !features.IsNumeric(opts.Target) {
		return nil, Wrap(ErrValidation, string(StageTrain), "check columns",
			fmt.Sprintf("target column %s is not numeric", opts.Target), nil)
	}
	columns := FeatureColumns(features, opts.Target, opts.Exclude)
	if len(columns) == 0 {
		return nil, Wrap(ErrValidation, string(StageTrain), "select features", "no numeric feature columns", nil)
	}

	target, err := features.Floats(opts.Target)
	if err != nil {
		return nil, err
	}
	var names []string
	if features.Has(colName) {
		names, _ = features.Strings(colName)
	}
	matrix, err := featureMatrix(features, columns)
	if err != nil {
		return nil, err
	}

	var x [][]float64
	var y []float64
	for i := range target {
		if math.IsNaN(target[i]) {
			continue
		}
		if names != nil && opts.Resort != "" && names[i] == opts.Resort {
			continue
		}
		x = append(x, matrix[i])
		y = append(y, target[i])
	}

	trainIdx, testIdx, err := regression.Split(len(x), opts.TestSize, opts.Seed)
	if err != nil {
		return nil, Wrap(ErrValidation, string(StageTrain), "split", "", err)
	}
	trainX, trainY := pick(x, y, trainIdx)
	testX, testY := pick(x, y, testIdx)

	folds := min(opts.Folds, len(trainX))
	cv, err := regression.CrossValidate(trainX, trainY, columns, opts.Alpha, folds, opts.Seed)
	if err != nil {
		return nil, Wrap(ErrValidation, string(StageTrain), "cross-validate", "", err)
	}
	model, err := regression.Fit(trainX, trainY, columns, opts.Alpha)
	if err != nil {
		return nil, Wrap(ErrValidation, string(StageTrain), "fit", "", err)
	}

	art := artifact.New(model, opts.Target, opts.Version)
	art.Holdout = regression.Evaluate(model.Predict(testX), testY)
	art.CV = cv
	art.TrainRows = len(trainX)
	art.TestRows = len(testX)
	return art, nil
}

// featureMatrix returns one row of feature values per dataset row.
func featureMatrix(ds *dataset.Dataset, columns []string) ([][]float64, error) {
	matrix := make([][]float64, ds.Nrow())
	for i := range matrix {
		matrix[i] = make([]float64, len(columns))
	}
	for j, name := range columns {
		values, err := ds.Floats(name)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			matrix[i][j] = v
		}
	}
	return matrix, nil
}

func pick(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	outX := make([][]float64, len(idx))
	outY := make([]float64, len(idx))
	for k, i := range idx {
		outX[k], outY[k] = x[i], y[i]
	}
	return outX, outY
}
