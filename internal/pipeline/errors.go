package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a missing upstream file: stages were not run in order.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input data or artifacts the stage cannot use.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks a runner or stage configured incorrectly.
	ErrConfiguration = errors.New("configuration error")
	// ErrLocked reports another run holding the workspace lock.
	ErrLocked = errors.New("workspace locked")
)

// Wrap builds an error message that includes stage context while tagging it
// with marker for errors.Is classification.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
