// Package artifact defines the persisted form of a trained ticket-price
// model and the metadata checks that gate its use for inference.
package artifact

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"skiprice/internal/regression"
)

// numericModule is the module whose version is stamped on every artifact.
const numericModule = "gonum.org/v1/gonum"

// ErrMissingMetadata reports an artifact without its version metadata.
var ErrMissingMetadata = errors.New("artifact metadata missing")

// Artifact is a fitted predictor plus the metadata attached before it is
// serialized.
type Artifact struct {
	Version        string              `msgpack:"version"`
	LibraryVersion string              `msgpack:"library_version"`
	Target         string              `msgpack:"target"`
	Model          *regression.Model   `msgpack:"model"`
	Holdout        regression.Metrics  `msgpack:"holdout"`
	CV             regression.CVResult `msgpack:"cv"`
	TrainRows      int                 `msgpack:"train_rows"`
	TestRows       int                 `msgpack:"test_rows"`
	CreatedAt      string              `msgpack:"created_at"`
}

// New stamps model with version, the numeric library version, and the
// current time.
func New(model *regression.Model, target, version string) *Artifact {
	return &Artifact{
		Version:        version,
		LibraryVersion: LibraryVersion(),
		Target:         target,
		Model:          model,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
}

// Validate confirms the artifact carries both metadata fields and a usable
// model. Artifacts failing Validate must not be used for inference.
func (a *Artifact) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil artifact", ErrMissingMetadata)
	}
	var missing []string
	if strings.TrimSpace(a.Version) == "" {
		missing = append(missing, "version")
	}
	if strings.TrimSpace(a.LibraryVersion) == "" {
		missing = append(missing, "library_version")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingMetadata, strings.Join(missing, ", "))
	}
	if a.Model == nil {
		return errors.New("artifact has no model")
	}
	return a.Model.Validate()
}

// Features returns the model's input columns in order.
func (a *Artifact) Features() []string {
	if a == nil || a.Model == nil {
		return nil
	}
	return a.Model.Features
}

// LibraryVersion reports the version of the numeric library linked into the
// running binary, or "unknown" when build info is unavailable.
func LibraryVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path != numericModule {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		if dep.Version != "" {
			return dep.Version
		}
	}
	return "unknown"
}
