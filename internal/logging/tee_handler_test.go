package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerWithoutFileIsConsole(t *testing.T) {
	var buf bytes.Buffer
	console := slog.NewTextHandler(&buf, nil)
	if h := newTeeHandler(console, nil); h != console {
		t.Fatalf("expected console handler unwrapped, got %T", h)
	}
}

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	var console, file bytes.Buffer
	h := newTeeHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	logger := slog.New(h).With("stage", "train")

	logger.Info("model trained")
	logger.Warn("ledger unavailable")

	if strings.Contains(console.String(), "model trained") {
		t.Fatalf("console received info record: %q", console.String())
	}
	if !strings.Contains(console.String(), "ledger unavailable") {
		t.Fatalf("console missing warning: %q", console.String())
	}
	for _, want := range []string{"model trained", "ledger unavailable", "stage=train"} {
		if !strings.Contains(file.String(), want) {
			t.Fatalf("file missing %q: %q", want, file.String())
		}
	}
}
