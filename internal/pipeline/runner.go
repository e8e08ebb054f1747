package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"skiprice/internal/artifact"
	"skiprice/internal/config"
	"skiprice/internal/dataset"
	"skiprice/internal/logging"
	"skiprice/internal/runctx"
	"skiprice/internal/safesave"
	"skiprice/internal/scenario"
)

// Report summarizes one stage run.
type Report struct {
	Stage    Stage
	RunID    string
	Saves    []safesave.Result
	Duration time.Duration
	// Artifact is set by the train stage.
	Artifact *artifact.Artifact
	// Predictions and ScenarioSource are set by the apply stage.
	Predictions    []Prediction
	ScenarioSource string
}

// Runner executes stages against one configured workspace.
type Runner struct {
	cfg    *config.Config
	saver  *safesave.Saver
	logger *slog.Logger
	lock   *workspaceLock
	newID  func() string
}

// NewRunner returns a Runner writing through saver.
func NewRunner(cfg *config.Config, saver *safesave.Saver, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, Wrap(ErrConfiguration, "", "new runner", "config is required", nil)
	}
	if saver == nil {
		return nil, Wrap(ErrConfiguration, "", "new runner", "saver is required", nil)
	}
	return &Runner{
		cfg:    cfg,
		saver:  saver,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		lock:   newWorkspaceLock(cfg.LockPath()),
		newID:  uuid.NewString,
	}, nil
}

// Run executes a single stage under the workspace lock.
func (r *Runner) Run(ctx context.Context, stage Stage) (*Report, error) {
	if err := r.lock.acquire(); err != nil {
		return nil, err
	}
	defer r.releaseLock()
	return r.run(ctx, stage, r.newID())
}

// RunAll executes every stage in order under one lock and run ID, stopping at
// the first failure. Reports for the stages that completed are returned
// alongside the error.
func (r *Runner) RunAll(ctx context.Context) ([]*Report, error) {
	return r.RunFrom(ctx, Stages[0])
}

// RunFrom behaves like RunAll but starts at from, reusing the outputs earlier
// stages already left on disk.
func (r *Runner) RunFrom(ctx context.Context, from Stage) ([]*Report, error) {
	start := slices.Index(Stages, from)
	if start < 0 {
		return nil, Wrap(ErrConfiguration, string(from), "run", "unknown stage", nil)
	}
	if err := r.lock.acquire(); err != nil {
		return nil, err
	}
	defer r.releaseLock()

	runID := r.newID()
	reports := make([]*Report, 0, len(Stages)-start)
	for _, stage := range Stages[start:] {
		report, err := r.run(ctx, stage, runID)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *Runner) releaseLock() {
	if err := r.lock.release(); err != nil {
		logging.WarnWithContext(r.logger, "failed to release workspace lock", "lock_release_failed",
			logging.String("lock", r.lock.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next run may report the workspace as locked"),
		)
	}
}

func (r *Runner) run(ctx context.Context, stage Stage, runID string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = runctx.WithStage(runctx.WithRunID(ctx, runID), string(stage))
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	started := time.Now()
	report := &Report{Stage: stage, RunID: runID}
	var err error
	switch stage {
	case StageWrangle:
		err = r.wrangle(ctx, report)
	case StageFeatures:
		err = r.features(ctx, report)
	case StageTrain:
		err = r.train(ctx, report)
	case StageApply:
		err = r.apply(ctx, report)
	default:
		err = Wrap(ErrConfiguration, string(stage), "run", "unknown stage", nil)
	}
	report.Duration = time.Since(started)

	if err != nil {
		hint := "check logs for details"
		if errors.Is(err, ErrNotFound) {
			hint = "run the pipeline stages in order"
		}
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
		)
		return report, err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("files_written", report.written()),
		logging.Int("files_kept", len(report.Saves)-report.written()),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

func (r *Report) written() int {
	n := 0
	for _, s := range r.Saves {
		if s.Saved() {
			n++
		}
	}
	return n
}

func (r *Runner) save(ctx context.Context, report *Report, data any, filename, dir string) error {
	result, err := r.saver.Save(ctx, data, filename, dir)
	if err != nil {
		return fmt.Errorf("%s: save %s: %w", report.Stage, filename, err)
	}
	report.Saves = append(report.Saves, result)
	return nil
}

func (r *Runner) wrangle(ctx context.Context, report *Report) error {
	raw, err := LoadDataset("", r.cfg.RawDataPath())
	if err != nil {
		return err
	}
	clean, err := Wrangle(raw, WrangleOptions{
		Target:      r.cfg.Model.Target,
		DropColumns: r.cfg.Wrangle.DropColumns,
	})
	if err != nil {
		return err
	}
	summary, err := StateSummary(clean)
	if err != nil {
		return err
	}
	if err := r.save(ctx, report, clean, CleanDataFile, r.cfg.Paths.DataDir); err != nil {
		return err
	}
	return r.save(ctx, report, summary, StateSummaryFile, r.cfg.Paths.DataDir)
}

func (r *Runner) features(ctx context.Context, report *Report) error {
	clean, err := LoadDataset(StageWrangle, filepath.Join(r.cfg.Paths.DataDir, CleanDataFile))
	if err != nil {
		return err
	}
	summary, err := LoadDataset(StageWrangle, filepath.Join(r.cfg.Paths.DataDir, StateSummaryFile))
	if err != nil {
		return err
	}
	features, err := EngineerFeatures(clean, summary)
	if err != nil {
		return err
	}
	return r.save(ctx, report, features, FeaturesFile, r.cfg.Paths.FeaturesDir)
}

func (r *Runner) loadFeatures() (*dataset.Dataset, error) {
	return LoadDataset(StageFeatures, filepath.Join(r.cfg.Paths.FeaturesDir, FeaturesFile))
}

func (r *Runner) train(ctx context.Context, report *Report) error {
	features, err := r.loadFeatures()
	if err != nil {
		return err
	}
	m := r.cfg.Model
	art, err := Train(features, TrainOptions{
		Target:   m.Target,
		Version:  m.Version,
		Exclude:  m.Exclude,
		Resort:   r.cfg.Scenarios.Resort,
		TestSize: m.TestSize,
		Seed:     m.RandomSeed,
		Folds:    m.CVFolds,
		Alpha:    m.RidgeAlpha,
	})
	if err != nil {
		return err
	}
	report.Artifact = art
	logging.WithContext(ctx, r.logger).Info("model trained",
		logging.String(logging.FieldEventType, "model_trained"),
		logging.Int("features", len(art.Features())),
		logging.Int("train_rows", art.TrainRows),
		logging.Float64("holdout_mae", art.Holdout.MAE),
		logging.Float64("cv_r2", art.CV.MeanR2()),
	)
	return r.save(ctx, report, art, ModelFile, r.cfg.Paths.ModelsDir)
}

func (r *Runner) apply(ctx context.Context, report *Report) error {
	features, err := r.loadFeatures()
	if err != nil {
		return err
	}
	art, err := LoadArtifact(StageTrain, filepath.Join(r.cfg.Paths.ModelsDir, ModelFile))
	if err != nil {
		return err
	}
	set, err := scenario.Load(r.cfg.Scenarios.Path)
	if err != nil {
		return Wrap(ErrValidation, string(StageApply), "load scenarios", r.cfg.Scenarios.Path, err)
	}
	report.ScenarioSource = set.Source
	logging.WithContext(ctx, r.logger).Info("scenarios loaded",
		logging.String(logging.FieldEventType, "scenarios_loaded"),
		logging.String("source", set.Source),
		logging.String("scenarios", strings.Join(set.Names(), ",")),
	)
	table, predictions, err := Apply(features, art, set, ApplyOptions{
		Resort:           r.cfg.Scenarios.Resort,
		ExpectedVisitors: r.cfg.Scenarios.ExpectedVisitors,
		DaysPerVisitor:   r.cfg.Scenarios.DaysPerVisitor,
	})
	if err != nil {
		return err
	}
	report.Predictions = predictions
	return r.save(ctx, report, table, PredictionsFile, r.cfg.Paths.ScenariosDir)
}

// String renders a one-line summary of the report.
func (r *Report) String() string {
	return fmt.Sprintf("%s: %d written, %d kept in %s", r.Stage, r.written(), len(r.Saves)-r.written(), r.Duration.Round(time.Millisecond))
}
