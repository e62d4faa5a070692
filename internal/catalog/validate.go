// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"math"
)

// flattenMatrix checks that matrix is n rows of n columns and copies it
// into row-major order.
func flattenMatrix(n int, matrix [][]float64) ([]float64, error) {
	if len(matrix) != n {
		return nil, corrupt(BlobSimilarity, "matrix has %d rows, catalog has %d movies", len(matrix), n)
	}
	flat := make([]float64, 0, n*n)
	for i, row := range matrix {
		if len(row) != n {
			return nil, corrupt(BlobSimilarity, "matrix row %d has %d columns, want %d", i, len(row), n)
		}
		flat = append(flat, row...)
	}
	return flat, nil
}

// validateShape rejects an empty catalog, a matrix that is not n*n, and
// non-finite scores.
func validateShape(n int, flat []float64) error {
	if n == 0 {
		return corrupt(BlobCatalog, "catalog is empty")
	}
	if len(flat) != n*n {
		return corrupt(BlobSimilarity, "matrix has %d cells, want %d for %d movies", len(flat), n*n, n)
	}
	for idx, v := range flat {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return corrupt(BlobSimilarity, "non-finite score %v at row %d column %d", v, idx/n, idx%n)
		}
	}
	return nil
}
