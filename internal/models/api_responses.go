// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package models holds the HTTP wire types: the response envelope shared
// by every endpoint and the request and response bodies of the API.
package models

import (
	"time"
)

// APIResponse is the envelope every endpoint returns.
//
// Status is "success" with Data populated, or "error" with Error populated.
//
//	{
//	  "status": "success",
//	  "data": {"query": "Avatar", "items": [...]},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 41}
//	}
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {"code": "NOT_FOUND", "message": "movie not found in catalog"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes in use:
//   - VALIDATION_ERROR: malformed or out-of-range input
//   - AUTHENTICATION_ERROR: missing, invalid or expired session token
//   - FORBIDDEN: session state does not permit the route
//   - NOT_FOUND: unknown movie title or route
//   - UNDERAGE: age verification failed the minimum age
//   - INVALID_STATE: session event not allowed from the current state
//   - ACCOUNT_EXISTS, INVALID_CREDENTIALS: registration and login outcomes
//   - DATA_UNAVAILABLE, CORRUPT_DATA: catalog could not be served
//   - RATE_LIMIT_EXCEEDED, INTERNAL_ERROR
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo describes an offset-paginated listing.
type PaginationInfo struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}
