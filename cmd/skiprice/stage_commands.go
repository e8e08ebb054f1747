package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"skiprice/internal/pipeline"
)

var stageDescriptions = map[pipeline.Stage]string{
	pipeline.StageWrangle:  "Clean the raw resort data and summarize it per state",
	pipeline.StageFeatures: "Derive state-relative features for modelling",
	pipeline.StageTrain:    "Fit the ticket price model and save it with metadata",
	pipeline.StageApply:    "Predict ticket prices under business scenarios",
}

func newStageCommands(ctx *commandContext) []*cobra.Command {
	commands := make([]*cobra.Command, 0, len(pipeline.Stages))
	for _, stage := range pipeline.Stages {
		commands = append(commands, newStageCommand(ctx, stage))
	}
	return commands
}

func newStageCommand(ctx *commandContext, stage pipeline.Stage) *cobra.Command {
	return &cobra.Command{
		Use:   stage.String(),
		Short: stageDescriptions[stage],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(cmd, func(runner *pipeline.Runner) error {
				report, err := runner.Run(cmd.Context(), stage)
				if err != nil {
					describeError(cmd.ErrOrStderr(), err)
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every pipeline stage in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := pipeline.ParseStage(from)
			if err != nil {
				return err
			}
			return ctx.withRunner(cmd, func(runner *pipeline.Runner) error {
				reports, err := runner.RunFrom(cmd.Context(), start)
				out := cmd.OutOrStdout()
				for _, report := range reports {
					printReport(out, report)
				}
				if err != nil {
					describeError(cmd.ErrOrStderr(), err)
					return err
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", pipeline.StageWrangle.String(), "First stage to run (wrangle, features, train, apply)")
	return cmd
}

func printReport(out io.Writer, report *pipeline.Report) {
	for _, save := range report.Saves {
		if save.Saved() {
			fmt.Fprintf(out, "wrote %s\n", save.Path)
		} else {
			fmt.Fprintf(out, "kept existing %s (not saved)\n", save.Path)
		}
	}
	if art := report.Artifact; art != nil {
		fmt.Fprintf(out, "model %s (%s, gonum %s) trained on %d rows, tested on %d\n",
			art.Version, art.Target, art.LibraryVersion, art.TrainRows, art.TestRows)
		fmt.Fprintf(out, "  holdout MAE %.2f  RMSE %.2f  R² %.3f\n", art.Holdout.MAE, art.Holdout.RMSE, art.Holdout.R2)
		fmt.Fprintf(out, "  %d-fold CV MAE %.2f  R² %.3f\n", len(art.CV.R2), art.CV.MeanMAE(), art.CV.MeanR2())
	}
	if len(report.Predictions) > 0 {
		fmt.Fprintf(out, "scenarios from %s\n", report.ScenarioSource)
		fmt.Fprintln(out, renderPredictions(report.Predictions))
	}
	fmt.Fprintln(out, report.String())
}

func renderPredictions(predictions []pipeline.Prediction) string {
	headers := []string{"Scenario", "Description", "Price", "Change", "Revenue Change"}
	rows := make([][]string, 0, len(predictions))
	for _, p := range predictions {
		rows = append(rows, []string{
			p.Scenario,
			p.Description,
			fmt.Sprintf("$%.2f", p.Price),
			fmt.Sprintf("%+.2f", p.Change),
			fmt.Sprintf("%+.0f", p.RevenueChange),
		})
	}
	return renderTable(headers, rows, []text.Align{text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignRight, text.AlignRight})
}
