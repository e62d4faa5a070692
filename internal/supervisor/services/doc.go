// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package services provides suture.Service wrappers for Reelmatch components.

Each wrapper turns a component's lifecycle into suture's context-aware
Serve(ctx) error and implements fmt.Stringer so supervisor logs name it.

  - HTTPServerService runs an *http.Server and shuts it down gracefully
    when the context ends.
  - CatalogWarmupService loads the movie catalog at startup, retrying with
    capped exponential backoff, then optionally refreshes it on an interval.
  - SessionCleanupService purges expired sessions on an interval.

Serve returns ctx.Err() on cancellation so the supervisor does not treat a
shutdown as a failure. Any other returned error triggers a restart.
*/
package services
