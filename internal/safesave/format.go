package safesave

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is the on-disk encoding selected by a filename extension.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatBinary Format = "pkl"
)

// TabularWriter is implemented by data that can be written as delimited
// text with a header row.
type TabularWriter interface {
	WriteCSV(w io.Writer) error
}

// FormatFor returns the format implied by filename's extension. The match is
// case-insensitive.
func FormatFor(filename string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".pkl":
		return FormatBinary, nil
	case "":
		return "", fmt.Errorf("%w: %q has no extension (want .csv or .pkl)", ErrUnsupportedFormat, filename)
	default:
		return "", fmt.Errorf("%w: %q (want .csv or .pkl)", ErrUnsupportedFormat, ext)
	}
}

// checkFilename rejects names that would resolve outside the target
// directory or name no file at all.
func checkFilename(filename string) error {
	name := strings.TrimSpace(filename)
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	case name != filename:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidFilename, filename)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q must not contain a path separator", ErrInvalidFilename, filename)
	case strings.TrimSuffix(name, filepath.Ext(name)) == "":
		return fmt.Errorf("%w: %q has no name before the extension", ErrInvalidFilename, filename)
	}
	return nil
}

func encode(format Format, data any) ([]byte, error) {
	if isNil(data) {
		return nil, fmt.Errorf("%w: nothing to save", ErrSerialization)
	}
	switch format {
	case FormatCSV:
		table, ok := data.(TabularWriter)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a tabular dataset", ErrSerialization, data)
		}
		var buf bytes.Buffer
		if err := table.WriteCSV(&buf); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		return buf.Bytes(), nil
	case FormatBinary:
		payload, err := msgpack.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
