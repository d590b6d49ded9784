// Package catalog holds the read-only documents a persona consults: product catalogs,
// the sales FAQ, improv scenarios and tutor content. Every loader fails soft.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrMalformed = errors.New("catalog document is malformed")

// loadJSON decodes path into a value seeded with fallback. A missing file yields the
// fallback and no error; a malformed file yields the fallback and ErrMalformed.
func loadJSON[T any](path string, fallback func() T) (T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback(), nil
		}
		return fallback(), fmt.Errorf("read %s: %w", path, err)
	}

	out := fallback()
	if err := json.Unmarshal(raw, &out); err != nil {
		return fallback(), fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return out, nil
}
