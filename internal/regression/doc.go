// Package regression fits the ticket-price predictor: median imputation,
// standardization, and an L2-regularized linear model solved with gonum.
// It also provides the seeded train/test split, k-fold cross-validation, and
// the holdout metrics recorded on model artifacts.
package regression
