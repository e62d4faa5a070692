// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package supervisor provides process supervision for Reelmatch using suture v4.

Long-running services are grouped into three layers so a failure in one does
not take the others down:

	RootSupervisor ("reelmatch")
	├── DataSupervisor ("data-layer")
	│   ├── CatalogWarmupService
	│   └── SessionCleanupService
	├── MessagingSupervisor ("messaging-layer")
	│   └── events.AuditConsumer
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The HTTP server starts before the catalog has loaded; readiness reports 503
until the warmup service installs the first snapshot.

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog using the zerolog-backed slog handler from the logging package:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCatalogWarmupService(store, services.CatalogWarmupConfig{}))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
