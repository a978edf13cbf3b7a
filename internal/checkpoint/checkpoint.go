// Package checkpoint persists search progress so a killed run can resume
// without rescanning already-swept Y values.
package checkpoint

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/oisee/ipl3hasher/internal/apperr"
)

// Record is the gob-encoded state needed to resume a search.
type Record struct {
	Y           uint32
	CompletedAt time.Time
}

// Save writes the current search position to path, overwriting any
// existing checkpoint.
func Save(path string, y uint32, completedAt time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create checkpoint %s: %v", apperr.ErrIO, path, err)
	}
	defer f.Close()

	rec := Record{Y: y, CompletedAt: completedAt}
	if err := gob.NewEncoder(f).Encode(&rec); err != nil {
		return fmt.Errorf("%w: encode checkpoint %s: %v", apperr.ErrIO, path, err)
	}
	return nil
}

// Load reads a previously saved checkpoint, returning the saved Y value
// (the CLI saves the last fully swept Y and resumes at the next one) and
// when it was written.
func Load(path string) (y uint32, completedAt time.Time, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return 0, time.Time{}, fmt.Errorf("%w: open checkpoint %s: %v", apperr.ErrIO, path, openErr)
	}
	defer f.Close()

	var rec Record
	if decErr := gob.NewDecoder(f).Decode(&rec); decErr != nil {
		return 0, time.Time{}, fmt.Errorf("%w: decode checkpoint %s: %v", apperr.ErrIO, path, decErr)
	}
	return rec.Y, rec.CompletedAt, nil
}
