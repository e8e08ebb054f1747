package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"skiprice/internal/config"
	"skiprice/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the workspace is ready to run the pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			fmt.Fprintln(out, renderHeading("Preflight", colorize))
			writeLines(out, preflightLines(results, colorize))
			fmt.Fprintln(out)

			probes := preflight.ProbeOutputs(cfg)
			fmt.Fprintln(out, renderHeading("Stage outputs", colorize))
			writeLines(out, outputLines(probes, colorize))
			if next := preflight.NextStage(probes); next != "" {
				fmt.Fprintf(out, "%sNext stage: %s\n", lineIndent, next)
			}
			fmt.Fprintf(out, "%sOverwrite policy: %s\n", lineIndent, ctx.overwritePolicy(cfg))
			fmt.Fprintf(out, "%sLedger: %s\n", lineIndent, ledgerLabel(cfg))

			if !preflight.Passed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		status := checkOK
		if !r.Passed {
			status = checkFailed
		}
		lines = append(lines, renderCheckLine(r.Name, status, r.Detail, colorize))
	}
	return lines
}

func outputLines(probes []preflight.OutputProbe, colorize bool) []string {
	lines := make([]string, 0, len(probes))
	for _, p := range probes {
		label := fmt.Sprintf("%s output", p.Stage)
		if !p.Exists {
			lines = append(lines, renderCheckLine(label, checkWarn, p.Path+" (missing)", colorize))
			continue
		}
		msg := fmt.Sprintf("%s (%d bytes, %s)", p.Path, p.Size, p.ModTime.Local().Format(time.DateTime))
		lines = append(lines, renderCheckLine(label, checkOK, msg, colorize))
	}
	return lines
}

func ledgerLabel(cfg *config.Config) string {
	if !cfg.Ledger.Enabled {
		return "disabled"
	}
	return cfg.Ledger.Path
}

func writeLines(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
