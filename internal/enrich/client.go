// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// maxBodyBytes caps how much of a metadata response is read.
const maxBodyBytes = 1 << 20

// MovieDetails is the subset of the movie detail payload used for enrichment.
type MovieDetails struct {
	ID          int64    `json:"id"`
	PosterPath  string   `json:"poster_path"`
	VoteAverage *float64 `json:"vote_average"`
}

// ClientConfig configures Client.
type ClientConfig struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration

	RequestsPerSecond float64
	Burst             int

	BreakerName        string
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// Client calls the movie metadata API behind a circuit breaker and a token
// bucket limiter.
//
// The breaker uses real time for its interval and timeout; tests exercise
// it by driving request counts, not by manipulating the clock.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*MovieDetails]
}

// NewClient builds a metadata client. A zero RequestsPerSecond disables
// pacing.
func NewClient(cfg ClientConfig, httpClient *http.Client) *Client {
	if cfg.BreakerName == "" {
		cfg.BreakerName = "tmdb-api"
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
	}
	c.cb = newBreaker(cfg)
	return c
}

func newBreaker(cfg ClientConfig) *gobreaker.CircuitBreaker[*MovieDetails] {
	name := cfg.BreakerName
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[*MovieDetails](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,

		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening circuit")
				return true
			}
			return false
		},

		IsSuccessful: breakerSuccess,

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
}

// breakerSuccess decides which errors count against upstream health. A 404
// for an unknown id or a caller that went away says nothing about the API.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch fe.Kind {
	case KindStatus:
		return fe.StatusCode < 500 && fe.StatusCode != http.StatusTooManyRequests
	case KindTransport:
		return errors.Is(fe.Err, context.Canceled)
	default:
		return false
	}
}

// FetchMovie retrieves movie details by id. Every failure is a *FetchError.
func (c *Client) FetchMovie(ctx context.Context, id int64) (*MovieDetails, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Kind: KindRateLimited, MovieID: id, Err: err}
	}

	details, err := c.cb.Execute(func() (*MovieDetails, error) {
		return c.fetch(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.cfg.BreakerName, "rejected").Inc()
			return nil, &FetchError{Kind: KindCircuitOpen, MovieID: id, Err: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(c.cfg.BreakerName, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.cfg.BreakerName, "success").Inc()
	return details, nil
}

// State exposes the breaker state for health reporting.
func (c *Client) State() string {
	return stateToString(c.cb.State())
}

func (c *Client) fetch(ctx context.Context, id int64) (*MovieDetails, error) {
	endpoint := c.movieURL(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, MovieID: id, Err: c.redact(err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordEnrichmentFetch(time.Since(start))
	if err != nil {
		return nil, &FetchError{Kind: classifyTransport(err), MovieID: id, Err: c.redact(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &FetchError{Kind: KindStatus, MovieID: id, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Kind: classifyTransport(err), MovieID: id, Err: c.redact(err)}
	}

	var details MovieDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, &FetchError{Kind: KindMalformed, MovieID: id, Err: fmt.Errorf("decode response: %w", err)}
	}
	if details.VoteAverage == nil {
		return nil, &FetchError{Kind: KindMalformed, MovieID: id, Err: errors.New("vote_average missing")}
	}
	if v := *details.VoteAverage; v < 0 || v > 10 {
		return nil, &FetchError{Kind: KindMalformed, MovieID: id, Err: fmt.Errorf("vote_average %v out of range", v)}
	}
	return &details, nil
}

func (c *Client) movieURL(id int64) string {
	q := url.Values{}
	if c.cfg.APIKey != "" {
		q.Set("api_key", c.cfg.APIKey)
	}
	q.Set("language", c.cfg.Language)
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/movie/" + strconv.FormatInt(id, 10) + "?" + q.Encode()
}

// redact strips the api key from errors that embed the request URL.
func (c *Client) redact(err error) error {
	msg := logging.RedactString(err.Error(), url.QueryEscape(c.cfg.APIKey))
	msg = logging.RedactString(msg, c.cfg.APIKey)
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}

// redactedError keeps errors.Is working on the original chain while
// printing a scrubbed message.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func classifyTransport(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindTransport
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
