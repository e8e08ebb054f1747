package pipeline

import (
	"errors"
	"fmt"
	"io/fs"

	"skiprice/internal/artifact"
	"skiprice/internal/dataset"
	"skiprice/internal/safesave"
)

// LoadDataset reads a CSV written by producer. When the file is absent the
// error wraps both ErrNotFound and fs.ErrNotExist and names the stage that
// must run first. An empty producer marks the raw input.
func LoadDataset(producer Stage, path string) (*dataset.Dataset, error) {
	ds, err := dataset.ReadCSVFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Wrap(ErrNotFound, string(producer), "load", missingHint(producer, path), err)
		}
		return nil, Wrap(ErrValidation, string(producer), "load", fmt.Sprintf("read %s", path), err)
	}
	return ds, nil
}

// LoadArtifact reads a model artifact written by producer and validates its
// metadata. Artifacts without version metadata are rejected with an error
// wrapping artifact.ErrMissingMetadata.
func LoadArtifact(producer Stage, path string) (*artifact.Artifact, error) {
	var art artifact.Artifact
	if err := safesave.LoadBinary(path, &art); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Wrap(ErrNotFound, string(producer), "load model", missingHint(producer, path), err)
		}
		return nil, Wrap(ErrValidation, string(producer), "load model", fmt.Sprintf("decode %s", path), err)
	}
	if err := art.Validate(); err != nil {
		return nil, Wrap(ErrValidation, string(producer), "load model",
			fmt.Sprintf("%s cannot be used for inference; retrain it", path), err)
	}
	return &art, nil
}

func missingHint(producer Stage, path string) string {
	if producer == "" {
		return fmt.Sprintf("raw input %s does not exist", path)
	}
	return fmt.Sprintf("%s does not exist; run the %s stage first", path, producer)
}
