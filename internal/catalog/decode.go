// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// BinaryMatrixMagic prefixes the compact matrix encoding: the magic, a
// little-endian uint32 n, then n*n little-endian float32 values row-major.
var BinaryMatrixMagic = []byte("RMX1")

// maxMatrixDim bounds n in the binary header so size arithmetic cannot
// overflow on a hostile file.
const maxMatrixDim = 1 << 16

// DecodeCatalog parses the movie catalog. Two JSON shapes are accepted:
//
//	[{"movie_id": 19995, "title": "Avatar"}, ...]
//	{"movie_id": {"0": 19995, ...}, "title": {"0": "Avatar", ...}}
//
// The second is a column-oriented dataframe export. Its row keys are
// sorted numerically and positions follow that order, so gaps left by
// dropped rows are tolerated.
func DecodeCatalog(data []byte) ([]Movie, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, corrupt(BlobCatalog, "empty document")
	}

	switch data[0] {
	case '[':
		var movies []Movie
		if err := json.Unmarshal(data, &movies); err != nil {
			return nil, corrupt(BlobCatalog, "decode records: %v", err)
		}
		return movies, nil
	case '{':
		return decodeColumnar(data)
	default:
		return nil, corrupt(BlobCatalog, "unrecognized catalog format")
	}
}

type columnarCatalog struct {
	MovieID map[string]int64  `json:"movie_id"`
	Title   map[string]string `json:"title"`
}

func decodeColumnar(data []byte) ([]Movie, error) {
	var cols columnarCatalog
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, corrupt(BlobCatalog, "decode columns: %v", err)
	}
	if cols.MovieID == nil || cols.Title == nil {
		return nil, corrupt(BlobCatalog, "columnar catalog needs movie_id and title columns")
	}
	if len(cols.MovieID) != len(cols.Title) {
		return nil, corrupt(BlobCatalog, "column lengths differ: movie_id=%d title=%d", len(cols.MovieID), len(cols.Title))
	}

	type row struct {
		pos int
		key string
	}
	rows := make([]row, 0, len(cols.MovieID))
	for key := range cols.MovieID {
		pos, err := strconv.Atoi(key)
		if err != nil || pos < 0 {
			return nil, corrupt(BlobCatalog, "row key %q is not a non-negative integer", key)
		}
		if _, ok := cols.Title[key]; !ok {
			return nil, corrupt(BlobCatalog, "row %q has movie_id but no title", key)
		}
		rows = append(rows, row{pos: pos, key: key})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].pos < rows[j].pos })

	movies := make([]Movie, len(rows))
	for i, r := range rows {
		movies[i] = Movie{ID: cols.MovieID[r.key], Title: cols.Title[r.key]}
	}
	return movies, nil
}

// DecodeMatrix parses the similarity matrix, sniffing the binary magic and
// falling back to a JSON array of rows. The result is row-major and its
// shape is checked later against the catalog.
func DecodeMatrix(data []byte) ([]float64, error) {
	if bytes.HasPrefix(data, BinaryMatrixMagic) {
		return decodeBinaryMatrix(data[len(BinaryMatrixMagic):])
	}

	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, corrupt(BlobSimilarity, "decode json matrix: %v", err)
	}
	flat := make([]float64, 0, len(rows)*len(rows))
	for i, r := range rows {
		if len(r) != len(rows) {
			return nil, corrupt(BlobSimilarity, "matrix row %d has %d columns, want %d", i, len(r), len(rows))
		}
		flat = append(flat, r...)
	}
	return flat, nil
}

func decodeBinaryMatrix(body []byte) ([]float64, error) {
	if len(body) < 4 {
		return nil, corrupt(BlobSimilarity, "binary matrix header truncated")
	}
	n := uint64(binary.LittleEndian.Uint32(body[:4]))
	body = body[4:]
	if n > maxMatrixDim {
		return nil, corrupt(BlobSimilarity, "binary matrix dimension %d exceeds %d", n, maxMatrixDim)
	}

	want := n * n * 4
	if uint64(len(body)) != want {
		return nil, corrupt(BlobSimilarity, "binary matrix body is %d bytes, want %d for n=%d", len(body), want, n)
	}

	flat := make([]float64, n*n)
	for i := range flat {
		bits := binary.LittleEndian.Uint32(body[i*4:])
		flat[i] = float64(math.Float32frombits(bits))
	}
	return flat, nil
}

// EncodeBinaryMatrix writes flat (n*n, row-major) in the RMX1 format.
// Values are narrowed to float32.
func EncodeBinaryMatrix(n int, flat []float64) []byte {
	out := make([]byte, len(BinaryMatrixMagic)+4+4*len(flat))
	copy(out, BinaryMatrixMagic)
	binary.LittleEndian.PutUint32(out[len(BinaryMatrixMagic):], uint32(n))
	body := out[len(BinaryMatrixMagic)+4:]
	for i, v := range flat {
		binary.LittleEndian.PutUint32(body[i*4:], math.Float32bits(float32(v)))
	}
	return out
}
