package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skiprice/internal/config"
	"skiprice/internal/pipeline"
	"skiprice/internal/testsupport"
)

func TestRunWritesThenKeepsOutputs(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRawData(t, env.cfg)

	out, _, err := runCLI(t, []string{"run"}, env.configPath, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Count(out, "wrote "); got != 5 {
		t.Fatalf("expected 5 written files, got %d\n%s", got, out)
	}
	requireContains(t, out, filepath.Join(env.cfg.Paths.ModelsDir, pipeline.ModelFile))
	requireContains(t, out, "holdout MAE")
	requireContains(t, out, pipeline.CurrentScenario)
	requireContains(t, out, "add_run_and_chair")

	clean := filepath.Join(env.cfg.Paths.DataDir, pipeline.CleanDataFile)
	before, err := os.ReadFile(clean)
	if err != nil {
		t.Fatalf("read clean data: %v", err)
	}

	out, _, err = runCLI(t, []string{"run"}, env.configPath, "")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := strings.Count(out, "kept existing "); got != 5 {
		t.Fatalf("expected 5 kept files, got %d\n%s", got, out)
	}
	after, err := os.ReadFile(clean)
	if err != nil {
		t.Fatalf("read clean data: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("declined overwrite must leave the file unchanged")
	}

	out, _, err = runCLI(t, []string{"run", "--yes"}, env.configPath, "")
	if err != nil {
		t.Fatalf("run --yes: %v", err)
	}
	if got := strings.Count(out, "wrote "); got != 5 {
		t.Fatalf("expected --yes to rewrite 5 files, got %d\n%s", got, out)
	}

	out, _, err = runCLI(t, []string{"history", "--limit", "3"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "written")
	requireContains(t, out, pipeline.PredictionsFile)
}

func TestPromptDeclinesFromStdin(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithOverwrite(config.OverwritePrompt))
	testsupport.WriteRawData(t, env.cfg)

	if _, _, err := runCLI(t, []string{"wrangle"}, env.configPath, ""); err != nil {
		t.Fatalf("first wrangle: %v", err)
	}

	out, errOut, err := runCLI(t, []string{"wrangle"}, env.configPath, "n\ny\n")
	if err != nil {
		t.Fatalf("second wrangle: %v", err)
	}
	if got := strings.Count(errOut, "Overwrite? [y/N]"); got != 2 {
		t.Fatalf("expected two prompts, got %d\n%s", got, errOut)
	}
	requireContains(t, out, "kept existing "+filepath.Join(env.cfg.Paths.DataDir, pipeline.CleanDataFile))
	requireContains(t, out, "wrote "+filepath.Join(env.cfg.Paths.DataDir, pipeline.StateSummaryFile))
}

func TestNoClobberOverridesConfiguredPolicy(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithOverwrite(config.OverwriteAlways))
	testsupport.WriteRawData(t, env.cfg)

	if _, _, err := runCLI(t, []string{"wrangle"}, env.configPath, ""); err != nil {
		t.Fatalf("first wrangle: %v", err)
	}
	out, _, err := runCLI(t, []string{"wrangle", "--no-clobber"}, env.configPath, "")
	if err != nil {
		t.Fatalf("wrangle --no-clobber: %v", err)
	}
	if strings.Contains(out, "wrote ") {
		t.Fatalf("expected nothing written\n%s", out)
	}
}

func TestYesAndNoClobberAreExclusive(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"wrangle", "--yes", "--no-clobber"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected flag conflict error")
	}
}

func TestStageOutOfOrderExplainsNextStep(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRawData(t, env.cfg)

	_, errOut, err := runCLI(t, []string{"train"}, env.configPath, "")
	if !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	requireContains(t, errOut, "Run the earlier stages first")
	if _, statErr := os.Stat(env.cfg.Paths.ModelsDir); !os.IsNotExist(statErr) {
		t.Fatalf("failed stage must not create its output directory, stat err = %v", statErr)
	}
}

func TestHistoryWithLedgerDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLedgerDisabled())
	_, _, err := runCLI(t, []string{"history"}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled ledger error, got %v", err)
	}
}

func TestDoctorReportsMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected doctor to fail without raw data")
	}
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, "Next stage: wrangle")

	testsupport.WriteRawData(t, env.cfg)
	out, _, err = runCLI(t, []string{"doctor"}, env.configPath, "")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "built-in defaults")
}

func TestRunFromStage(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRawData(t, env.cfg)

	if _, _, err := runCLI(t, []string{"wrangle"}, env.configPath, ""); err != nil {
		t.Fatalf("wrangle: %v", err)
	}
	out, _, err := runCLI(t, []string{"run", "--from", "Features"}, env.configPath, "")
	if err != nil {
		t.Fatalf("run --from: %v", err)
	}
	if strings.Contains(out, pipeline.CleanDataFile) {
		t.Fatalf("wrangle outputs should not be touched\n%s", out)
	}
	if got := strings.Count(out, "wrote "); got != 3 {
		t.Fatalf("expected 3 written files, got %d\n%s", got, out)
	}

	_, _, err = runCLI(t, []string{"run", "--from", "deploy"}, env.configPath, "")
	if !errors.Is(err, pipeline.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
