// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable means a blob could not be retrieved or read.
	ErrDataUnavailable = errors.New("catalog data unavailable")

	// ErrCorruptData means a blob failed its checksum, could not be decoded,
	// or the catalog and matrix shapes disagree.
	ErrCorruptData = errors.New("catalog data corrupt")
)

// Blob names used in errors, metrics and logs.
const (
	BlobCatalog    = "catalog"
	BlobSimilarity = "similarity"
)

// LoadError names the blob that failed a load. It unwraps to the
// underlying cause, which in turn wraps ErrDataUnavailable or ErrCorruptData.
type LoadError struct {
	Blob string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Blob, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func unavailable(blob, format string, args ...interface{}) error {
	return &LoadError{Blob: blob, Err: fmt.Errorf("%w: %s", ErrDataUnavailable, fmt.Sprintf(format, args...))}
}

func corrupt(blob, format string, args ...interface{}) error {
	return &LoadError{Blob: blob, Err: fmt.Errorf("%w: %s", ErrCorruptData, fmt.Sprintf(format, args...))}
}

// Outcome maps a load error to its metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCorruptData):
		return "corrupt_data"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	default:
		return "error"
	}
}
