// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// BlobSpec describes one remote artifact and its local cache file.
type BlobSpec struct {
	Name   string // BlobCatalog or BlobSimilarity
	URL    string // empty when the file is provisioned out of band
	SHA256 string // hex digest; empty disables verification
	File   string // bare file name inside the cache dir
}

// fetcher materializes blobs in a local directory. Downloads land in a
// ".part" file first and are renamed into place only when complete.
type fetcher struct {
	dir     string
	client  *http.Client
	timeout time.Duration
}

// ensure returns a local, verified copy of spec. A cached file is used
// as-is when its checksum matches; a mismatched cached file is replaced by
// one fresh download; a mismatch after downloading is corrupt data.
func (f *fetcher) ensure(ctx context.Context, spec BlobSpec) (SourceInfo, error) {
	path := filepath.Join(f.dir, spec.File)
	info := SourceInfo{Path: path}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := f.download(ctx, spec, path); err != nil {
			return info, err
		}
		info.Downloaded = true
	case err != nil:
		return info, unavailable(spec.Name, "stat %s: %v", path, err)
	}

	sum, size, err := fileChecksum(path)
	if err != nil {
		return info, unavailable(spec.Name, "read %s: %v", path, err)
	}
	info.SHA256, info.Size = sum, size

	if spec.SHA256 == "" || strings.EqualFold(sum, spec.SHA256) {
		return info, nil
	}
	if info.Downloaded {
		return info, corrupt(spec.Name, "checksum mismatch after download: got %s, want %s", sum, spec.SHA256)
	}

	logging.Warn().
		Str("blob", spec.Name).
		Str("path", path).
		Str("got", sum).
		Str("want", spec.SHA256).
		Msg("Cached blob failed checksum, downloading again")

	if err := f.download(ctx, spec, path); err != nil {
		return info, err
	}
	info.Downloaded = true

	sum, size, err = fileChecksum(path)
	if err != nil {
		return info, unavailable(spec.Name, "read %s: %v", path, err)
	}
	info.SHA256, info.Size = sum, size
	if !strings.EqualFold(sum, spec.SHA256) {
		return info, corrupt(spec.Name, "checksum mismatch after download: got %s, want %s", sum, spec.SHA256)
	}
	return info, nil
}

func (f *fetcher) download(ctx context.Context, spec BlobSpec, path string) (err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = Outcome(err)
		}
		metrics.RecordBlobFetch(spec.Name, outcome)
	}()

	if spec.URL == "" {
		return unavailable(spec.Name, "%s is missing and no URL is configured", path)
	}
	if err := os.MkdirAll(f.dir, 0o750); err != nil {
		return unavailable(spec.Name, "create cache dir: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	safeURL := logging.RedactURL(spec.URL)
	logging.Info().Str("blob", spec.Name).Str("url", safeURL).Msg("Downloading blob")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, http.NoBody)
	if err != nil {
		return unavailable(spec.Name, "create request: %v", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return unavailable(spec.Name, "GET %s: %v", safeURL, redactErr(err, spec.URL, safeURL))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return unavailable(spec.Name, "GET %s: status %d", safeURL, resp.StatusCode)
	}

	part := path + ".part"
	out, err := os.OpenFile(part, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return unavailable(spec.Name, "create %s: %v", part, err)
	}

	written, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(part) //nolint:errcheck
		if copyErr == nil {
			copyErr = closeErr
		}
		return unavailable(spec.Name, "write %s: %v", part, redactErr(copyErr, spec.URL, safeURL))
	}

	if err := os.Rename(part, path); err != nil {
		os.Remove(part) //nolint:errcheck
		return unavailable(spec.Name, "rename %s: %v", part, err)
	}

	logging.Info().
		Str("blob", spec.Name).
		Int64("bytes", written).
		Dur("took", time.Since(start)).
		Msg("Blob downloaded")
	return nil
}

func fileChecksum(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close() //nolint:errcheck

	hasher := sha256.New()
	n, err := io.Copy(hasher, file)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), n, nil
}

// redactErr strips credentials in the raw URL from transport errors,
// which embed the request URL verbatim.
func redactErr(err error, rawURL, safeURL string) error {
	if err == nil || rawURL == safeURL {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), rawURL, safeURL))
}
