// Package pipeline runs the four analysis stages in their fixed order.
//
// Each stage loads the previous stage's output, transforms it, and persists
// its own output through the safe-save utility into the directory it owns:
//
//	wrangle   raw_data/ski_resort_data.csv  -> data/clean_data.csv, data/state_summary.csv
//	features  data/*.csv                    -> data/features/ski_data_step3_features.csv
//	train     features file                 -> models/ski_resort_pricing_model.pkl
//	apply     features file + model         -> data/scenarios/scenario_predictions.csv
//
// A missing upstream file fails the stage with ErrNotFound and stops RunAll.
// A declined overwrite is not an error; downstream stages read the file that
// was kept. Runs are serialized per workspace with a file lock.
package pipeline
