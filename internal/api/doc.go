// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package api provides the HTTP REST API for Reelmatch.

Every response uses the models.APIResponse envelope. Routes:

	GET  /api/v1/health/live         public
	GET  /api/v1/health/ready        public, 503 until a catalog is loaded
	POST /api/v1/session             public, starts a session and returns its token
	GET  /api/v1/session             any session
	POST /api/v1/session/age         any session, {"aadhaar": "..."}
	POST /api/v1/session/register    any session, {"email": "...", "password": "..."}
	POST /api/v1/session/login       any session, {"email": "...", "password": "..."}
	POST /api/v1/session/logout      any session
	GET  /api/v1/movies              registered, ?q=&limit=&offset=
	GET  /api/v1/recommendations     registered, ?title=&k=
	POST /api/v1/catalog/reload      operator (X-Admin-Token)
	GET  /metrics                    Prometheus

Session routes authenticate with "Authorization: Bearer <token>". The token
only names the server-side session; which routes a session may reach is
decided by its current state through the authz policy. Whether an event is
legal in that state (verify age twice, say) is decided by the session state
machine and reported as INVALID_STATE.

Errors from the domain packages are translated to status codes and envelope
codes in one table (see errorMappings).
*/
package api
