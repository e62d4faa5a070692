// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	t.Parallel()

	got := RedactURL("https://api.themoviedb.org/3/movie/550?api_key=s3cret&language=en-US")
	if strings.Contains(got, "s3cret") {
		t.Errorf("api key leaked: %s", got)
	}
	if !strings.Contains(got, "language=en-US") {
		t.Errorf("unrelated params should survive: %s", got)
	}

	plain := "https://example.com/path?a=1"
	if RedactURL(plain) != plain {
		t.Errorf("URL without secrets changed: %s", RedactURL(plain))
	}
}

func TestRedactString(t *testing.T) {
	t.Parallel()

	if got := RedactString("key=abc123 failed", "abc123"); got != "key=REDACTED failed" {
		t.Errorf("RedactString() = %q", got)
	}
	if got := RedactString("nothing", ""); got != "nothing" {
		t.Errorf("empty secret should be a no-op, got %q", got)
	}
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"john.doe@example.com": "jo***@example.com",
		"ab@example.com":       "***@example.com",
		"no-at-sign":           "***",
		"":                     "",
	}
	for in, want := range tests {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	if got := MaskToken("short"); got != "***" {
		t.Errorf("MaskToken(short) = %q", got)
	}
	if got := MaskToken("0123456789abcdef"); got != "0123...cdef" {
		t.Errorf("MaskToken(long) = %q", got)
	}
}
