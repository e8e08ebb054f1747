package safesave

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"skiprice/internal/logging"
)

// Status is the outcome of a Save call that did not fail.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
)

// Result describes one Save outcome.
type Result struct {
	Status Status
	// Path is the absolute destination path.
	Path   string
	Format Format
	// Bytes is the size of the file written; zero when skipped.
	Bytes int64
}

// Saved reports whether the file was written.
func (r Result) Saved() bool { return r.Status == StatusWritten }

// Recorder receives every Save outcome. Errors are logged, never returned
// from Save.
type Recorder interface {
	RecordSave(ctx context.Context, result Result) error
}

// Saver writes files with overwrite protection.
type Saver struct {
	confirm  Confirmer
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Saver.
type Option func(*Saver)

// WithConfirmer sets the overwrite policy. The default prompts on stderr and
// reads stdin.
func WithConfirmer(c Confirmer) Option {
	return func(s *Saver) {
		if c != nil {
			s.confirm = c
		}
	}
}

// WithRecorder hands every outcome to r.
func WithRecorder(r Recorder) Option {
	return func(s *Saver) { s.recorder = r }
}

// WithLogger sets the logger used for outcome events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Saver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Saver.
func New(opts ...Option) *Saver {
	s := &Saver{
		confirm: NewPrompt(os.Stdin, os.Stderr),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "safesave")
	return s
}

// Save writes data to directory/filename in the format implied by the
// extension. The directory and any missing parents are created. An existing
// destination is replaced only when the Confirmer agrees; otherwise the file
// is left untouched and the result reports StatusSkipped with a nil error.
//
// Filename and format problems fail with ErrInvalidFilename or
// ErrUnsupportedFormat, and unencodable data with ErrSerialization; none of
// them touch the filesystem. Filesystem failures are reported as ErrIO.
func (s *Saver) Save(ctx context.Context, data any, filename, directory string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := checkFilename(filename); err != nil {
		return Result{}, err
	}
	format, err := FormatFor(filename)
	if err != nil {
		return Result{}, err
	}
	payload, err := encode(format, data)
	if err != nil {
		return Result{}, fmt.Errorf("save %s: %w", filename, err)
	}

	if strings.TrimSpace(directory) == "" {
		directory = "."
	}
	dir, err := filepath.Abs(directory)
	if err != nil {
		return Result{}, wrap(ErrIO, "resolve directory", directory, err)
	}
	path := filepath.Join(dir, filename)
	result := Result{Path: path, Format: format}
	logger := logging.WithContext(ctx, s.logger)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, wrap(ErrIO, "create directory", dir, err)
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return Result{}, wrap(ErrIO, "destination is a directory", path, nil)
		}
		ok, err := s.confirm.ConfirmOverwrite(ctx, path)
		if err != nil {
			return Result{}, fmt.Errorf("confirm overwrite of %s: %w", path, err)
		}
		if !ok {
			result.Status = StatusSkipped
			logger.Info("existing file kept",
				logging.String(logging.FieldEventType, "save_skipped"),
				logging.String("path", path),
				logging.String("format", string(format)),
			)
			s.record(ctx, logger, result)
			return result, nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Result{}, wrap(ErrIO, "stat", path, err)
	}

	n, err := writeAtomic(dir, filename, payload)
	if err != nil {
		return Result{}, err
	}
	result.Status = StatusWritten
	result.Bytes = n
	logger.Info("file written",
		logging.String(logging.FieldEventType, "save_written"),
		logging.String("path", path),
		logging.String("format", string(format)),
		logging.Int64("bytes", n),
	)
	s.record(ctx, logger, result)
	return result, nil
}

func (s *Saver) record(ctx context.Context, logger *slog.Logger, result Result) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSave(ctx, result); err != nil {
		logging.WarnWithContext(logger, "save ledger update failed", "save_record_failed",
			logging.String("path", result.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ledger.path permissions or disable the ledger"),
			logging.String(logging.FieldImpact, "save history is incomplete"),
		)
	}
}

// writeAtomic writes payload to a temp file in dir and renames it over
// dir/filename.
func writeAtomic(dir, filename string, payload []byte) (int64, error) {
	target := filepath.Join(dir, filename)
	tmp, err := os.CreateTemp(dir, "."+filename+".*.tmp")
	if err != nil {
		return 0, wrap(ErrIO, "create temp file in", dir, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	n, err := tmp.Write(payload)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return 0, wrap(ErrIO, "write", target, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return 0, wrap(ErrIO, "chmod", target, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		cleanup()
		return 0, wrap(ErrIO, "rename", target, err)
	}
	return int64(n), nil
}
