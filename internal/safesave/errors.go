package safesave

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat reports a filename whose extension is not .csv or .pkl.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrInvalidFilename reports a filename that is empty or carries a path.
	ErrInvalidFilename = errors.New("invalid filename")
	// ErrSerialization reports data that cannot be encoded in the requested format.
	ErrSerialization = errors.New("serialization error")
	// ErrIO reports a directory creation, stat, or write failure.
	ErrIO = errors.New("io error")
)

func wrap(marker error, operation, path string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", marker, operation, path, err)
	}
	return fmt.Errorf("%w: %s %s", marker, operation, path)
}
