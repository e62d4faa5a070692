// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Movie is one catalog entry. ID is the TMDB movie id.
type Movie struct {
	ID    int64  `json:"movie_id"`
	Title string `json:"title"`
}

// SourceInfo records where a blob came from.
type SourceInfo struct {
	Path       string `json:"path"`
	SHA256     string `json:"sha256"`
	Size       int64  `json:"size"`
	Downloaded bool   `json:"downloaded"`
}

// Snapshot is an immutable, validated catalog with its similarity matrix.
// Catalog position i corresponds to matrix row and column i. A Snapshot is
// safe for concurrent use and must not be modified after publication.
type Snapshot struct {
	movies     []Movie
	matrix     []float64 // row-major n*n
	titleIndex map[string]int

	LoadedAt time.Time
	Sources  map[string]SourceInfo

	// Duplicates counts titles that appeared more than once. Lookups resolve
	// to the first occurrence.
	Duplicates int

	sortOnce sync.Once
	sorted   []int
}

// NewSnapshot validates movies and matrix and builds the title index.
// matrix must be n rows of n finite values, where n = len(movies).
func NewSnapshot(movies []Movie, matrix [][]float64) (*Snapshot, error) {
	flat, err := flattenMatrix(len(movies), matrix)
	if err != nil {
		return nil, err
	}
	return newSnapshot(movies, flat)
}

func newSnapshot(movies []Movie, flat []float64) (*Snapshot, error) {
	if err := validateShape(len(movies), flat); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(movies))
	dups := 0
	for i, m := range movies {
		key := NormalizeTitle(m.Title)
		if _, seen := index[key]; seen {
			dups++
			continue
		}
		index[key] = i
	}

	return &Snapshot{
		movies:     movies,
		matrix:     flat,
		titleIndex: index,
		LoadedAt:   time.Now().UTC(),
		Sources:    map[string]SourceInfo{},
		Duplicates: dups,
	}, nil
}

// NormalizeTitle is the canonical form used for title matching: Unicode
// NFC, otherwise exact. Case and whitespace are significant.
func NormalizeTitle(title string) string {
	return norm.NFC.String(title)
}

// Len returns the number of movies.
func (s *Snapshot) Len() int {
	return len(s.movies)
}

// Movie returns the movie at position i.
func (s *Snapshot) Movie(i int) Movie {
	return s.movies[i]
}

// Row returns similarity row i. The slice aliases snapshot memory and must
// not be modified.
func (s *Snapshot) Row(i int) []float64 {
	n := len(s.movies)
	return s.matrix[i*n : (i+1)*n : (i+1)*n]
}

// IndexOf returns the position of title after NFC normalization.
func (s *Snapshot) IndexOf(title string) (int, bool) {
	i, ok := s.titleIndex[NormalizeTitle(title)]
	return i, ok
}

// Sorted returns catalog positions in English collation order of title,
// ties broken by position. Computed once per snapshot.
func (s *Snapshot) Sorted() []int {
	s.sortOnce.Do(func() {
		col := collate.New(language.English, collate.Loose)
		keys := make([][]byte, len(s.movies))
		var buf collate.Buffer
		for i, m := range s.movies {
			keys[i] = append([]byte(nil), col.KeyFromString(&buf, m.Title)...)
			buf.Reset()
		}

		order := make([]int, len(s.movies))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return string(keys[order[a]]) < string(keys[order[b]])
		})
		s.sorted = order
	})
	return s.sorted
}

// Search returns positions of titles containing q, case-folded, in
// collation order, plus the total match count before paging. A negative
// offset starts at the first match; limit <= 0 returns every match.
func (s *Snapshot) Search(q string, limit, offset int) ([]int, int) {
	order := s.Sorted()

	var matches []int
	if q == "" {
		matches = order
	} else {
		folder := cases.Fold()
		needle := foldTitle(folder, q)
		for _, i := range order {
			if strings.Contains(foldTitle(folder, s.movies[i].Title), needle) {
				matches = append(matches, i)
			}
		}
	}

	total := len(matches)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []int{}, total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matches[offset:end], total
}

// foldTitle puts both sides of a substring match in the same form, so
// composed and decomposed spellings compare equal.
func foldTitle(folder cases.Caser, s string) string {
	return norm.NFC.String(folder.String(norm.NFC.String(s)))
}
