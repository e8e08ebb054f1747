package safesave

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// LoadBinary decodes a file written by Save with a .pkl name into v. A
// missing file is reported with an error wrapping fs.ErrNotExist; a payload
// that does not decode into v wraps ErrSerialization.
func LoadBinary(path string, v any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrSerialization, path, err)
	}
	return nil
}
